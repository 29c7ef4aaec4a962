package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-topsis/internal/domain"
)

// RankRequest is one independent decision problem of a batch.
type RankRequest struct {
	// ID is echoed in the matching RankResult.
	ID      string
	Table   domain.Table
	Weights []float64
	Impacts []domain.Impact
}

// RankResult is the outcome of one RankRequest. Exactly one of Ranked and
// Err is set.
type RankResult struct {
	ID     string
	Ranked *domain.RankedTable
	Err    error
}

// RankBatch ranks independent requests concurrently, at most
// WithConcurrency of them at a time. Results are returned in request
// order. A failing request records its error on its own result and does
// not affect the others; RankBatch itself only fails when ctx is done, in
// which case no results are returned.
func (r *Ranker) RankBatch(ctx context.Context, requests []RankRequest) ([]RankResult, error) {
	ctx, span := r.tracer.Start(ctx, "Ranker.RankBatch",
		trace.WithAttributes(
			attribute.Int("batch.size", len(requests)),
			attribute.Int("batch.concurrency", r.concurrency),
		),
	)
	defer span.End()

	results := make([]RankResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked, err := r.Rank(gctx, req.Table, req.Weights, req.Impacts)
			results[i] = RankResult{ID: req.ID, Ranked: ranked, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("batch.failed", failed))
	return results, nil
}
