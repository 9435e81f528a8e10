package storage

import (
	"context"

	"gene/internal/model"
)

// Store archives genomes and per-run fitness statistics.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, record model.GenomeRecord) error
	GetGenome(ctx context.Context, id string) (model.GenomeRecord, bool, error)
	// ListGenomes returns a run's genomes ordered by generation, then by
	// descending fitness.
	ListGenomes(ctx context.Context, runID string) ([]model.GenomeRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []model.GenerationStats) error
	GetFitnessHistory(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
}
