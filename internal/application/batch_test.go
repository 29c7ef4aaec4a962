package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-topsis/internal/domain"
)

func TestRanker_RankBatch(t *testing.T) {
	r := newTestRanker(t, DefaultPolicyConfig(), WithConcurrency(2))

	requests := make([]RankRequest, 0, 6)
	for i := range 5 {
		requests = append(requests, RankRequest{
			ID:      fmt.Sprintf("req-%d", i),
			Table:   scenarioTable(),
			Weights: scenarioWeights,
			Impacts: scenarioImpacts,
		})
	}
	requests = append(requests, RankRequest{
		ID:      "bad",
		Table:   scenarioTable(),
		Weights: []float64{1},
		Impacts: scenarioImpacts,
	})

	results, err := r.RankBatch(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, results, len(requests))

	want, err := r.Rank(context.Background(), scenarioTable(), scenarioWeights, scenarioImpacts)
	require.NoError(t, err)

	for i, res := range results[:5] {
		assert.Equal(t, requests[i].ID, res.ID, "results keep request order")
		require.NoError(t, res.Err)
		assert.Equal(t, want, res.Ranked)
	}

	bad := results[5]
	assert.Equal(t, "bad", bad.ID)
	assert.Nil(t, bad.Ranked)
	assert.ErrorIs(t, bad.Err, domain.ErrInputShape)
}

func TestRanker_RankBatch_Empty(t *testing.T) {
	r := newTestRanker(t, DefaultPolicyConfig())

	results, err := r.RankBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRanker_RankBatch_Cancelled(t *testing.T) {
	r := newTestRanker(t, DefaultPolicyConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.RankBatch(ctx, []RankRequest{{
		ID:      "x",
		Table:   scenarioTable(),
		Weights: scenarioWeights,
		Impacts: scenarioImpacts,
	}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}
