package classifier

import (
	"context"
	"errors"
)

// Result is a normalized classification of one captured frame.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	WeightKg   float64 `json:"weight_kg"`
}

// Classifier labels a captured waste image. Classification runs in an
// external model service; this boundary keeps the pipeline testable.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Result, error)
}

var (
	ErrUnavailable   = errors.New("classifier_unavailable")
	ErrLowConfidence = errors.New("classifier_low_confidence")
	ErrEmptyImage    = errors.New("classifier_empty_image")
)
