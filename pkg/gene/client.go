package gene

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gene/internal/population"
	"gene/internal/storage"

	"github.com/google/uuid"
)

const defaultDBPath = "gene.db"

type Options struct {
	StoreKind string
	DBPath    string
	// Compression is "zstd" (default), "lz4" or "none".
	Compression string
}

// Client archives genomes with their decode settings and replays them.
type Client struct {
	store storage.Store
}

type ArchiveRequest struct {
	RunID           string
	Generation      int
	Scheme          string
	D               int
	Distance        string
	Architecture    string
	LayerDimensions []int
	Fitness         float64
	Genome          []float64
}

type ListRequest struct {
	RunID string
	Limit int
	// Minimize lists the lowest fitness first within each generation.
	Minimize bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	compression, err := storage.ParseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(storeKind, dbPath, compression)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Archive validates the genome against its decode settings and stores it
// under a fresh id. A missing run id is generated as well.
func (c *Client) Archive(ctx context.Context, req ArchiveRequest) (GenomeRecord, error) {
	cfg, err := NewConfig(req.LayerDimensions, req.Scheme, req.D, req.Distance)
	if err != nil {
		return GenomeRecord{}, err
	}
	size, err := cfg.GenomeSize()
	if err != nil {
		return GenomeRecord{}, err
	}
	if len(req.Genome) != size {
		return GenomeRecord{}, fmt.Errorf("%w: got %d genes, want %d", ErrGenomeLengthMismatch, len(req.Genome), size)
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	record := GenomeRecord{
		ID:              uuid.NewString(),
		RunID:           runID,
		Generation:      req.Generation,
		Scheme:          cfg.Scheme.String(),
		D:               cfg.D,
		Distance:        cfg.DistanceName,
		Architecture:    req.Architecture,
		LayerDimensions: cfg.Topology.Dims(),
		Fitness:         req.Fitness,
		CreatedAt:       time.Now().UTC(),
		Genome:          append([]float64(nil), req.Genome...),
	}
	if err := c.store.SaveGenome(ctx, record); err != nil {
		return GenomeRecord{}, err
	}
	return storage.Stamp(record), nil
}

func (c *Client) Load(ctx context.Context, id string) (GenomeRecord, error) {
	if id == "" {
		return GenomeRecord{}, errors.New("genome id is required")
	}
	record, ok, err := c.store.GetGenome(ctx, id)
	if err != nil {
		return GenomeRecord{}, err
	}
	if !ok {
		return GenomeRecord{}, fmt.Errorf("genome not found: %s", id)
	}
	return record, nil
}

func (c *Client) List(ctx context.Context, req ListRequest) ([]GenomeRecord, error) {
	if req.RunID == "" {
		return nil, errors.New("run id is required")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	records, err := c.store.ListGenomes(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	if req.Minimize {
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Generation != records[j].Generation {
				return records[i].Generation < records[j].Generation
			}
			if records[i].Fitness != records[j].Fitness {
				return records[i].Fitness < records[j].Fitness
			}
			return records[i].ID < records[j].ID
		})
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	return records, nil
}

// DecodeStored loads a genome and decodes it with the settings it was
// archived with.
func (c *Client) DecodeStored(ctx context.Context, id string) (GenomeRecord, Params, error) {
	record, err := c.Load(ctx, id)
	if err != nil {
		return GenomeRecord{}, Params{}, err
	}
	params, err := Decode(record.Genome, record.LayerDimensions, record.Scheme, record.D, record.Distance)
	if err != nil {
		return GenomeRecord{}, Params{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return record, params, nil
}

// RecordGeneration summarises one generation's scores and appends it to
// the run's fitness history. maximize selects the optimisation direction
// used for the best score.
func (c *Client) RecordGeneration(ctx context.Context, runID string, generation int, scores []float64, maximize bool) (GenerationStats, error) {
	if runID == "" {
		return GenerationStats{}, errors.New("run id is required")
	}
	stats, err := population.Summarize(generation, scores, maximize)
	if err != nil {
		return GenerationStats{}, err
	}
	history, _, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return GenerationStats{}, err
	}
	history = append(history, stats)
	if err := c.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return GenerationStats{}, err
	}
	return stats, nil
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]GenerationStats, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	return history, nil
}
