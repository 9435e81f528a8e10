package population

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"gene/internal/encoding"
)

// FitnessFunc scores one decoded genome. index is the genome's position in
// the population slice.
type FitnessFunc func(ctx context.Context, index int, params encoding.Params) (float64, error)

// DecodeAll decodes every genome with a shared decoder. The result order
// matches the input order and is identical to decoding serially. When
// several genomes fail, the error of the lowest index is returned.
func DecodeAll(ctx context.Context, cfg encoding.Config, genomes [][]float64, workers int) ([]encoding.Params, error) {
	decoder, err := encoding.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	out := make([]encoding.Params, len(genomes))
	err = run(ctx, len(genomes), workers, func(_ context.Context, i int) error {
		params, err := decoder.Decode(genomes[i])
		if err != nil {
			return fmt.Errorf("genome %d: %w", i, err)
		}
		out[i] = params
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate decodes each genome and hands the parameters to fitness.
func Evaluate(ctx context.Context, cfg encoding.Config, genomes [][]float64, workers int, fitness FitnessFunc) ([]float64, error) {
	if fitness == nil {
		return nil, errors.New("fitness function is required")
	}
	decoder, err := encoding.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(genomes))
	err = run(ctx, len(genomes), workers, func(ctx context.Context, i int) error {
		params, err := decoder.Decode(genomes[i])
		if err != nil {
			return fmt.Errorf("genome %d: %w", i, err)
		}
		score, err := fitness(ctx, i, params)
		if err != nil {
			return fmt.Errorf("evaluate genome %d: %w", i, err)
		}
		scores[i] = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// run feeds indices [0, n) to a fixed set of workers. Each worker writes
// only to its own index, so callers may fill a preallocated slice.
func run(ctx context.Context, n, workers int, work func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	type result struct {
		idx int
		err error
	}

	jobs := make(chan int)
	results := make(chan result, n)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				results <- result{idx: idx, err: work(ctx, idx)}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(results)

	first := result{idx: n}
	for res := range results {
		if res.err != nil && res.idx < first.idx {
			first = res
		}
	}
	if first.err == nil {
		return nil
	}
	if ctx.Err() != nil {
		log.Printf("[population] stopped after cancellation: %v", ctx.Err())
	}
	return first.err
}
