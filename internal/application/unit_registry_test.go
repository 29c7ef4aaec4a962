package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/ports"
)

func TestDefaultUnitRegistry_SupportedTypes(t *testing.T) {
	registry := NewDefaultUnitRegistry()
	assert.Equal(t,
		[]string{"closeness", "distance", "ideal", "normalize", "rank", "weight"},
		registry.GetSupportedTypes(),
	)
}

func TestDefaultUnitRegistry_CreateUnit(t *testing.T) {
	registry := NewDefaultUnitRegistry()

	tests := []struct {
		name     string
		unitType string
		id       string
		params   map[string]any
		wantErr  error
		errText  string
	}{
		{name: "normalize with defaults", unitType: units.TypeNormalize, id: "n"},
		{name: "rank with params", unitType: units.TypeRank, id: "r", params: map[string]any{"ties": "dense"}},
		{name: "unknown type", unitType: "borda", id: "x", wantErr: ports.ErrUnknownUnitType},
		{name: "misspelled type", unitType: "normalise", id: "x", errText: `did you mean "normalize"?`},
		{name: "empty id", unitType: units.TypeWeight, id: "", errText: "unit ID cannot be empty"},
		{
			name:     "invalid params",
			unitType: units.TypeCloseness,
			id:       "c",
			params:   map[string]any{"zero_distance": "nan"},
			errText:  "failed to create unit c of type closeness",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := registry.CreateUnit(tt.unitType, tt.id, tt.params)
			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.id, unit.Name())
				assert.NoError(t, unit.Validate())
			}
		})
	}
}

func TestDefaultUnitRegistry_RegisterUnitFactory(t *testing.T) {
	registry := NewDefaultUnitRegistry()

	assert.Error(t, registry.RegisterUnitFactory("", units.NewWeightFromConfig))
	assert.Error(t, registry.RegisterUnitFactory("custom", nil))

	called := false
	require.NoError(t, registry.RegisterUnitFactory(units.TypeWeight, func(id string, params map[string]any) (ports.Unit, error) {
		called = true
		return units.NewWeightFromConfig(id, params)
	}))

	_, err := registry.CreateUnit(units.TypeWeight, "w", nil)
	require.NoError(t, err)
	assert.True(t, called, "registered factory replaces the built-in one")
}
