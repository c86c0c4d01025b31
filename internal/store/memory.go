package store

import (
	"context"
	"sort"
	"sync"

	"adcare/internal/model"
)

// Memory is the in-process store used when no database DSN is configured.
type Memory struct {
	mu        sync.Mutex
	runs      map[string]model.ConformityRun
	runOrder  []string
	instances []model.InstanceMetadata
}

func NewMemory() *Memory {
	return &Memory{runs: map[string]model.ConformityRun{}}
}

func (m *Memory) SaveConformityRun(ctx context.Context, run model.ConformityRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.runs[run.ID]; !seen {
		m.runOrder = append(m.runOrder, run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetConformityRun(ctx context.Context, id string) (model.ConformityRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.ConformityRun{}, ErrNotFound
	}
	return run, nil
}

// ListConformityRuns returns runs newest first.
func (m *Memory) ListConformityRuns(ctx context.Context, limit int) ([]model.ConformityRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ConformityRun, 0, len(m.runOrder))
	for _, id := range m.runOrder {
		out = append(out, m.runs[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SaveInstanceMeta(ctx context.Context, meta model.InstanceMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = append(m.instances, meta)
	return nil
}

func (m *Memory) ListInstanceMeta(ctx context.Context, limit int) ([]model.InstanceMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.InstanceMetadata(nil), m.instances...)
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
