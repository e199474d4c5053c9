package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/trash2cash/platform/internal/config"
	obsmetrics "github.com/trash2cash/platform/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type httpClassifier struct {
	cfg     config.ClassifierConfig
	client  *http.Client
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func New(p Params) Classifier {
	return &httpClassifier{
		cfg: p.Cfg.Classifier,
		client: &http.Client{
			Timeout: p.Cfg.Classifier.Timeout,
		},
		log:     p.Log.Named("classifier.http"),
		metrics: p.Metrics,
	}
}

type classifyRequest struct {
	ImageB64 string `json:"image_b64"`
}

type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	WeightKg   float64 `json:"weight_kg"`
}

func (c *httpClassifier) Classify(ctx context.Context, image []byte) (Result, error) {
	if len(image) == 0 {
		return Result{}, ErrEmptyImage
	}

	body, err := json.Marshal(classifyRequest{
		ImageB64: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordClassifierRequest(ctx, "unreachable")
		c.log.Warn("classifier unreachable", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordClassifierRequest(ctx, "error")
		c.log.Warn("classifier returned non-200", zap.Int("status", resp.StatusCode))
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.RecordClassifierRequest(ctx, "error")
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	result := Result{
		Category:   strings.ToLower(strings.TrimSpace(payload.Category)),
		Confidence: payload.Confidence,
		WeightKg:   payload.WeightKg,
	}
	if result.Category == "" {
		c.metrics.RecordClassifierRequest(ctx, "error")
		return Result{}, fmt.Errorf("%w: empty category", ErrUnavailable)
	}
	if c.cfg.MinConfidence > 0 && result.Confidence < c.cfg.MinConfidence {
		c.metrics.RecordClassifierRequest(ctx, "low_confidence")
		return result, ErrLowConfidence
	}

	c.metrics.RecordClassifierRequest(ctx, "ok")
	return result, nil
}

var Module = fx.Module("classifier",
	fx.Provide(New),
)
