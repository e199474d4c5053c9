package points

import (
	"math"
	"strings"

	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/fx"
)

// Calculator turns a classified disposal into a point award.
//
// The award is the per-category base rate plus one bonus point per whole
// kilogram, floored at the configured minimum so every completed disposal
// pays out something.
type Calculator struct {
	rates       map[string]int64
	defaultRate int64
	minAward    int64
}

func NewCalculator(cfg config.PointsConfig) *Calculator {
	rates := make(map[string]int64, len(cfg.Rates))
	for category, rate := range cfg.Rates {
		rates[strings.ToLower(strings.TrimSpace(category))] = rate
	}

	defaultRate := cfg.DefaultRate
	if defaultRate <= 0 {
		defaultRate = 10
	}
	minAward := cfg.MinAward
	if minAward < 0 {
		minAward = 0
	}

	return &Calculator{
		rates:       rates,
		defaultRate: defaultRate,
		minAward:    minAward,
	}
}

// Rate returns the base rate for a category, falling back to the default
// rate for unknown categories.
func (c *Calculator) Rate(category string) int64 {
	if rate, ok := c.rates[strings.ToLower(strings.TrimSpace(category))]; ok {
		return rate
	}
	return c.defaultRate
}

// Award computes the points for one disposal.
func (c *Calculator) Award(category string, weightKg float64) int64 {
	award := c.Rate(category)
	if weightKg > 0 {
		award += int64(math.Floor(weightKg))
	}
	if award < c.minAward {
		award = c.minAward
	}
	return award
}

func New(cfg config.Config) *Calculator {
	return NewCalculator(cfg.Points)
}

var Module = fx.Module("points",
	fx.Provide(New),
)
