package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"gene/internal/config"
	"gene/internal/storage"
	"gene/pkg/gene"

	"github.com/dustin/go-humanize"
)

type storeFlags struct {
	kind        *string
	dbPath      *string
	compression *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:        fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:      fs.String("db-path", "gene.db", "sqlite database path"),
		compression: fs.String("compression", "zstd", "genome vector compression: zstd|lz4|none"),
	}
}

func (f storeFlags) open(ctx context.Context) (*gene.Client, error) {
	client, err := gene.New(gene.Options{
		StoreKind:   *f.kind,
		DBPath:      *f.dbPath,
		Compression: *f.compression,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// directionFlags selects whether higher fitness is better. An experiment
// config, when given, wins over --minimize.
type directionFlags struct {
	minimize   *bool
	configPath *string
}

func addDirectionFlags(fs *flag.FlagSet) directionFlags {
	return directionFlags{
		minimize:   fs.Bool("minimize", false, "treat lower fitness as better"),
		configPath: fs.String("config", "", "experiment config (.json|.yaml) whose task.maximize sets the direction"),
	}
}

func (f directionFlags) maximize() (bool, error) {
	if *f.configPath == "" {
		return !*f.minimize, nil
	}
	exp, err := config.Load(*f.configPath)
	if err != nil {
		return false, err
	}
	return exp.Task.Maximize, nil
}

func runArchive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	store := addStoreFlags(fs)
	decode := addDecodeFlags(fs)
	genomePath := fs.String("genome", "", "genome file (JSON array or separated numbers, - for stdin)")
	values := fs.String("values", "", "inline comma-separated genome")
	runID := fs.String("run-id", "", "run id (generated when empty)")
	generation := fs.Int("generation", 0, "generation the genome belongs to")
	fitness := fs.Float64("fitness", 0, "fitness score")
	jsonOut := fs.Bool("json", false, "emit the archived record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *generation < 0 {
		return errors.New("--generation must be >= 0")
	}

	resolved, err := decode.resolve()
	if err != nil {
		return err
	}
	genome, err := readGenome(*genomePath, *values)
	if err != nil {
		return err
	}

	client, err := store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.Archive(ctx, gene.ArchiveRequest{
		RunID:           *runID,
		Generation:      *generation,
		Scheme:          resolved.cfg.Scheme.String(),
		D:               resolved.cfg.D,
		Distance:        resolved.cfg.DistanceName,
		Architecture:    resolved.arch,
		LayerDimensions: resolved.cfg.Topology.Dims(),
		Fitness:         *fitness,
		Genome:          genome,
	})
	if err != nil {
		return err
	}
	log.Printf("[archive] stored genome=%s run=%s genes=%d store=%s", record.ID, record.RunID, len(record.Genome), *store.kind)

	if *jsonOut {
		return writeJSON(record)
	}
	fmt.Fprintf(stdout, "archived id=%s run_id=%s\n", record.ID, record.RunID)
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	store := addStoreFlags(fs)
	id := fs.String("id", "", "genome id")
	withLayers := fs.Bool("layers", false, "include decoded layers in JSON output")
	jsonOut := fs.Bool("json", false, "emit record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("show requires --id")
	}

	client, err := store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, params, err := client.DecodeStored(ctx, *id)
	if err != nil {
		return err
	}

	if *jsonOut {
		view := struct {
			gene.GenomeRecord
			Parameters int         `json:"parameters"`
			Layers     []layerView `json:"layers,omitempty"`
		}{GenomeRecord: record, Parameters: params.NumParameters()}
		if *withLayers {
			view.Layers = viewParams(params)
		}
		return writeJSON(view)
	}
	fmt.Fprintf(stdout, "id=%s run_id=%s generation=%d fitness=%g\n", record.ID, record.RunID, record.Generation, record.Fitness)
	fmt.Fprintf(stdout, "dims=%v scheme=%s d=%d distance=%s architecture=%s\n", record.LayerDimensions, record.Scheme, record.D, record.Distance, record.Architecture)
	fmt.Fprintf(stdout, "genes=%s parameters=%s created=%s\n",
		humanize.Comma(int64(len(record.Genome))),
		humanize.Comma(int64(params.NumParameters())),
		humanize.Time(record.CreatedAt),
	)
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 20, "max genomes to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit genomes as JSON")
	direction := addDirectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("list requires --run-id")
	}
	if *limit < 0 {
		*limit = 0
	}
	maximize, err := direction.maximize()
	if err != nil {
		return err
	}

	client, err := store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.List(ctx, gene.ListRequest{RunID: *runID, Limit: *limit, Minimize: !maximize})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no genomes")
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(stdout, "generation=%d fitness=%g id=%s scheme=%s genes=%d\n", record.Generation, record.Fitness, record.ID, record.Scheme, len(record.Genome))
	}
	return nil
}

func runRecord(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	generation := fs.Int("generation", 0, "generation index")
	scores := fs.String("scores", "", "comma-separated fitness scores of the generation")
	direction := addDirectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("record requires --run-id")
	}
	values, err := parseFloats(*scores)
	if err != nil {
		return fmt.Errorf("--scores: %w", err)
	}
	maximize, err := direction.maximize()
	if err != nil {
		return err
	}

	client, err := store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	stats, err := client.RecordGeneration(ctx, *runID, *generation, values, maximize)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "generation=%d best=%g mean=%g variance=%g\n", stats.Generation, stats.Best, stats.Mean, stats.Variance)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("history requires --run-id")
	}

	client, err := store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(history)
	}
	for _, stats := range history {
		fmt.Fprintf(stdout, "generation=%d best=%g mean=%g variance=%g\n", stats.Generation, stats.Best, stats.Mean, stats.Variance)
	}
	return nil
}
