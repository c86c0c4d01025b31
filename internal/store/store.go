package store

import (
	"context"
	"errors"

	"adcare/internal/model"
)

// Store persists conformity runs and instance metadata so batch results
// can be compared across rule versions and scenarios.
type Store interface {
	SaveConformityRun(ctx context.Context, run model.ConformityRun) error
	GetConformityRun(ctx context.Context, id string) (model.ConformityRun, error)
	ListConformityRuns(ctx context.Context, limit int) ([]model.ConformityRun, error)

	SaveInstanceMeta(ctx context.Context, meta model.InstanceMetadata) error
	ListInstanceMeta(ctx context.Context, limit int) ([]model.InstanceMetadata, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
