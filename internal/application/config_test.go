package application

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

func TestParseConfig_EmptyDocumentYieldsDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultRankConfig(), cfg)
}

func TestParseConfig_OverlaysDefaults(t *testing.T) {
	const profile = `
version: "1.0.0"
name: laptops
criteria: [price, battery]
weights: [0.5, 0.5]
impacts: [Cost, "+"]
policies:
  ties: dense
output:
  format: csv
`
	cfg, err := ParseConfig(strings.NewReader(profile))
	require.NoError(t, err)

	assert.Equal(t, "laptops", cfg.Name)
	assert.Equal(t, []string{"price", "battery"}, cfg.Criteria)
	assert.Equal(t, []float64{0.5, 0.5}, cfg.Weights)
	assert.Equal(t, units.TieDense, cfg.Policies.Ties)
	assert.Equal(t, units.ZeroNormError, cfg.Policies.ZeroNorm, "unset policies keep defaults")
	assert.Equal(t, units.ZeroDistanceHalf, cfg.Policies.ZeroDistance)
	assert.Equal(t, units.DefaultTieTolerance, cfg.Policies.TieTolerance)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Output.Precision)

	impacts, err := cfg.ParsedImpacts()
	require.NoError(t, err)
	assert.Equal(t, []domain.Impact{domain.ImpactCost, domain.ImpactBenefit}, impacts)
}

func TestParseConfig_UnknownFieldIsConfigError(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("wieghts: [1]\n"))
	require.Error(t, err)

	var cfgErr *ports.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "yaml", cfgErr.ConfigKey)
}

func TestParseConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		want    string
	}{
		{
			name:    "unknown tie policy with suggestion",
			profile: "policies:\n  ties: dens\n",
			want:    `policies.ties: "dens" is not one of [competition dense ordinal] (did you mean "dense"?)`,
		},
		{
			name:    "unknown zero norm policy",
			profile: "policies:\n  zero_norm: ignore\n",
			want:    `policies.zero_norm: "ignore" is not one of [error zero]`,
		},
		{
			name:    "negative weight",
			profile: "weights: [-0.5, 1]\n",
			want:    "weights[0]: must be at least 0, got -0.5",
		},
		{
			name:    "non-finite weight",
			profile: "weights: [.nan]\n",
			want:    "weights[0]: must be finite",
		},
		{
			name:    "misspelled impact",
			profile: "impacts: [benfit]\n",
			want:    `impacts[0]: unknown impact "benfit" (did you mean "benefit"?)`,
		},
		{
			name:    "precision out of range",
			profile: "output:\n  precision: 20\n",
			want:    "output.precision: must be at most 15, got 20",
		},
		{
			name:    "unknown format",
			profile: "output:\n  format: xml\n",
			want:    `output.format: "xml" is not one of [text csv json]`,
		},
		{
			name:    "bad version",
			profile: "version: one\n",
			want:    `version: failed "semver" validation`,
		},
		{
			name:    "weights do not match criteria",
			profile: "criteria: [a, b, c]\nweights: [1, 1]\n",
			want:    "weights: expected 3 values to match criteria, got 2",
		},
		{
			name:    "weights and impacts differ",
			profile: "weights: [1, 1]\nimpacts: [cost]\n",
			want:    "weights and impacts differ in length: 2 != 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.profile))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Errors, tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte("weights: [2, 1]\nimpacts: [max, min]\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 1}, cfg.Weights)
		assert.Equal(t, []string{"max", "min"}, cfg.Impacts)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)
	})
}
