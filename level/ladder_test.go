package level

import (
	"testing"

	"github.com/raykavin/fibflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Long(t *testing.T) {
	levels, err := Compute(DefaultConfig(), 150.0, 161.8, true)
	require.NoError(t, err)
	require.Len(t, levels, 5)

	assert.Equal(t, 154.51, levels[0].Target)
	assert.Equal(t, 155.9, levels[1].Target)
	assert.Equal(t, 157.29, levels[2].Target)
	assert.Equal(t, 158.32, levels[3].Target)
	assert.Equal(t, 159.27, levels[4].Target)

	// Targets of a long ladder ascend
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Target, levels[i-1].Target)
	}
}

func TestCompute_Short(t *testing.T) {
	levels, err := Compute(DefaultConfig(), 150.0, 161.8, false)
	require.NoError(t, err)
	require.Len(t, levels, 5)

	assert.Equal(t, 157.29, levels[0].Target)
	assert.Equal(t, 155.9, levels[1].Target)

	// Targets of a short ladder descend
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i].Target, levels[i-1].Target)
	}
}

func TestCompute_InvalidRange(t *testing.T) {
	_, err := Compute(DefaultConfig(), 161.8, 150.0, true)
	require.ErrorIs(t, err, core.ErrInvalidRange)

	_, err = Compute(DefaultConfig(), 150.0, 150.0, true)
	require.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestCompute_TargetsInsideRange(t *testing.T) {
	levels, err := Compute(DefaultConfig(), 1.05, 1.12, true)
	require.NoError(t, err)

	for _, lvl := range levels {
		assert.Greater(t, lvl.Target, 1.05)
		assert.Less(t, lvl.Target, 1.12)
	}
}

func TestLevel_Label(t *testing.T) {
	assert.Equal(t, "0.382", Level{Fraction: 0.382}.Label())
	assert.Equal(t, "0.5", Level{Fraction: 0.5}.Label())
	assert.Equal(t, "0.786", Level{Fraction: 0.786}.Label())
}

func TestLevel_Crossed(t *testing.T) {
	lvl := Level{Target: 100.0}

	assert.True(t, lvl.Crossed(100.0, true))
	assert.True(t, lvl.Crossed(101.0, true))
	assert.False(t, lvl.Crossed(99.9, true))

	assert.True(t, lvl.Crossed(100.0, false))
	assert.True(t, lvl.Crossed(99.0, false))
	assert.False(t, lvl.Crossed(100.1, false))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	require.Error(t, Config{}.Validate())
	require.Error(t, Config{
		Levels:  []float64{0.5},
		Weights: []float64{0.3, 0.2},
	}.Validate())
	require.Error(t, Config{
		Levels:  []float64{0.5},
		Weights: []float64{0},
	}.Validate())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.08, Round(1.0849, 2))
	assert.Equal(t, 1.09, Round(1.086, 2))
	assert.Equal(t, 154.51, Round(154.5076, 2))
	assert.Equal(t, 2.0, Round(1.9999999, 2))
}
