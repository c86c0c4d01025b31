package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"adcare/internal/model"
)

// Postgres persists runs and instance metadata through database/sql with
// the pgx stdlib driver. Verdicts and sources ride along as jsonb.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveConformityRun(ctx context.Context, run model.ConformityRun) error {
	verdicts, err := json.Marshal(run.Verdicts)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO conformity_runs (id, created_at, rule_version, region, total, compliant, verdicts)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			rule_version = EXCLUDED.rule_version,
			region = EXCLUDED.region,
			total = EXCLUDED.total,
			compliant = EXCLUDED.compliant,
			verdicts = EXCLUDED.verdicts`,
		run.ID, run.CreatedAt, run.RuleVersion, nullIfEmpty(run.Region), run.Total, run.Compliant, verdicts)
	return err
}

func (p *Postgres) GetConformityRun(ctx context.Context, id string) (model.ConformityRun, error) {
	var run model.ConformityRun
	var region sql.NullString
	var verdicts []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT id, created_at, rule_version, region, total, compliant, verdicts
		FROM conformity_runs WHERE id = $1`, id).
		Scan(&run.ID, &run.CreatedAt, &run.RuleVersion, &region, &run.Total, &run.Compliant, &verdicts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConformityRun{}, ErrNotFound
	}
	if err != nil {
		return model.ConformityRun{}, err
	}
	run.Region = region.String
	if len(verdicts) > 0 {
		if err := json.Unmarshal(verdicts, &run.Verdicts); err != nil {
			return model.ConformityRun{}, fmt.Errorf("decode verdicts for run %s: %w", id, err)
		}
	}
	return run, nil
}

// ListConformityRuns returns run summaries newest first, without verdicts.
func (p *Postgres) ListConformityRuns(ctx context.Context, limit int) ([]model.ConformityRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, created_at, rule_version, region, total, compliant
		FROM conformity_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ConformityRun{}
	for rows.Next() {
		var run model.ConformityRun
		var region sql.NullString
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.RuleVersion, &region, &run.Total, &run.Compliant); err != nil {
			return nil, err
		}
		run.Region = region.String
		out = append(out, run)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveInstanceMeta(ctx context.Context, meta model.InstanceMetadata) error {
	sources, err := json.Marshal(meta.Sources)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO instances (id, name, generated_at, seed, region, scenario, speed_kmh, num_depots, num_patients, sources)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		meta.ID, meta.Name, meta.GeneratedAt, meta.Seed, nullIfEmpty(meta.Region), meta.Scenario,
		meta.SpeedKmh, meta.NumDepots, meta.NumPatients, sources)
	return err
}

func (p *Postgres) ListInstanceMeta(ctx context.Context, limit int) ([]model.InstanceMetadata, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, generated_at, seed, region, scenario, speed_kmh, num_depots, num_patients, sources
		FROM instances ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.InstanceMetadata{}
	for rows.Next() {
		var meta model.InstanceMetadata
		var region sql.NullString
		var sources []byte
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.GeneratedAt, &meta.Seed, &region,
			&meta.Scenario, &meta.SpeedKmh, &meta.NumDepots, &meta.NumPatients, &sources); err != nil {
			return nil, err
		}
		meta.Region = region.String
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &meta.Sources); err != nil {
				return nil, fmt.Errorf("decode sources for instance %s: %w", meta.ID, err)
			}
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
