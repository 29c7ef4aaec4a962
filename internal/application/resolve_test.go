package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-topsis/internal/domain"
)

func TestRankConfig_Resolve(t *testing.T) {
	cost, benefit := domain.ImpactCost, domain.ImpactBenefit

	tests := []struct {
		name        string
		cfg         RankConfig
		columns     []string
		wantWeights []float64
		wantImpacts []domain.Impact
		wantField   string
	}{
		{
			name:        "positional",
			cfg:         RankConfig{Weights: []float64{2, 1}, Impacts: []string{"cost", "benefit"}},
			columns:     []string{"price", "battery"},
			wantWeights: []float64{2, 1},
			wantImpacts: []domain.Impact{cost, benefit},
		},
		{
			name:        "equal weights by default",
			cfg:         RankConfig{Impacts: []string{"-", "+", "+"}},
			columns:     []string{"a", "b", "c"},
			wantWeights: []float64{1, 1, 1},
			wantImpacts: []domain.Impact{cost, benefit, benefit},
		},
		{
			name: "matched by name",
			cfg: RankConfig{
				Criteria: []string{"Battery", "price"},
				Weights:  []float64{3, 1},
				Impacts:  []string{"benefit", "cost"},
			},
			columns:     []string{"price", "battery"},
			wantWeights: []float64{1, 3},
			wantImpacts: []domain.Impact{cost, benefit},
		},
		{
			name:      "missing impacts",
			cfg:       RankConfig{Weights: []float64{1, 1}},
			columns:   []string{"a", "b"},
			wantField: "impacts",
		},
		{
			name:      "positional impact count mismatch",
			cfg:       RankConfig{Weights: []float64{1, 1}, Impacts: []string{"cost", "cost"}},
			columns:   []string{"a", "b", "c"},
			wantField: "impacts",
		},
		{
			name:      "positional weight count mismatch",
			cfg:       RankConfig{Weights: []float64{1, 1}, Impacts: []string{"cost", "cost", "min"}},
			columns:   []string{"a", "b", "c"},
			wantField: "weights",
		},
		{
			name:      "unknown column",
			cfg:       RankConfig{Criteria: []string{"price", "battery"}, Impacts: []string{"cost", "benefit"}},
			columns:   []string{"price", "weight"},
			wantField: "criteria",
		},
		{
			name: "named weight count mismatch",
			cfg: RankConfig{
				Criteria: []string{"price", "quality"},
				Weights:  []float64{1},
				Impacts:  []string{"cost", "benefit"},
			},
			columns:   []string{"price", "quality"},
			wantField: "weights",
		},
		{
			name: "named impact count mismatch",
			cfg: RankConfig{
				Criteria: []string{"price", "quality"},
				Weights:  []float64{1, 1},
				Impacts:  []string{"cost"},
			},
			columns:   []string{"quality", "price"},
			wantField: "impacts",
		},
		{
			name:      "criteria count mismatch",
			cfg:       RankConfig{Criteria: []string{"price"}, Impacts: []string{"cost"}},
			columns:   []string{"price", "battery"},
			wantField: "criteria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights, impacts, err := tt.cfg.Resolve(tt.columns)
			if tt.wantField != "" {
				var shapeErr *domain.InputShapeError
				require.ErrorAs(t, err, &shapeErr)
				assert.Equal(t, tt.wantField, shapeErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeights, weights)
			assert.Equal(t, tt.wantImpacts, impacts)
		})
	}
}

func TestRankConfig_Resolve_SuggestsColumn(t *testing.T) {
	cfg := RankConfig{Criteria: []string{"price", "battery"}, Impacts: []string{"cost", "benefit"}}

	_, _, err := cfg.Resolve([]string{"price", "batery"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "batery" is not named in the profile (did you mean "battery"?)`)
}
