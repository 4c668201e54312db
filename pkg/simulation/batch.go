package simulation

import (
	"context"

	"github.com/aretw0/journey/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// RunBatch simulates the same journey once per seed, using at most workers
// goroutines (unbounded when workers <= 0). Results are returned in seed order
// and are identical to sequential Run calls with the same seeds.
func (s *Simulator) RunBatch(ctx context.Context, j *domain.Journey, cohortSize int, seeds []int64, workers int) ([]*Result, error) {
	if err := checkInput(j, cohortSize); err != nil {
		return nil, err
	}

	results := make([]*Result, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, seed := range seeds {
		g.Go(func() error {
			res, err := s.Run(gctx, j, cohortSize, seed)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
