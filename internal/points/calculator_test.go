package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trash2cash/platform/internal/config"
)

func defaultConfig() config.PointsConfig {
	return config.PointsConfig{
		Rates: map[string]int64{
			"plastic":   20,
			"paper":     15,
			"metal":     25,
			"glass":     15,
			"organic":   10,
			"cardboard": 15,
			"trash":     5,
		},
		DefaultRate: 10,
		MinAward:    5,
	}
}

func TestAwardAddsWeightBonus(t *testing.T) {
	calc := NewCalculator(defaultConfig())

	// 25 base for metal plus floor(2.4) bonus.
	assert.Equal(t, int64(27), calc.Award("metal", 2.4))
	assert.Equal(t, int64(21), calc.Award("plastic", 1.5))
	assert.Equal(t, int64(15), calc.Award("paper", 0.9))
}

func TestAwardUnknownCategoryUsesDefaultRate(t *testing.T) {
	calc := NewCalculator(defaultConfig())

	assert.Equal(t, int64(10), calc.Award("styrofoam", 0))
	assert.Equal(t, int64(13), calc.Award("Styrofoam", 3.7))
}

func TestAwardIgnoresNonPositiveWeight(t *testing.T) {
	calc := NewCalculator(defaultConfig())

	assert.Equal(t, int64(20), calc.Award("plastic", 0))
	assert.Equal(t, int64(20), calc.Award("plastic", -1.2))
}

func TestAwardFloorsAtMinimum(t *testing.T) {
	cfg := defaultConfig()
	cfg.Rates["trash"] = 2
	calc := NewCalculator(cfg)

	assert.Equal(t, int64(5), calc.Award("trash", 0.5))
}

func TestAwardIsCaseInsensitive(t *testing.T) {
	calc := NewCalculator(defaultConfig())

	assert.Equal(t, calc.Award("metal", 1), calc.Award(" METAL ", 1))
}
