package hardware

import (
	"context"
	"errors"
	"sync"
	"time"

	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/classifier"
	"github.com/trash2cash/platform/internal/config"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
	"github.com/trash2cash/platform/internal/observability/logger"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	"github.com/trash2cash/platform/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrBinBusy        = errors.New("bin_busy")
	ErrBinUnavailable = errors.New("bin_unavailable")
)

const (
	CompartmentPlastic = "plastic"
	CompartmentPaper   = "paper"
)

// CompartmentFor maps a waste category onto the two physical compartments.
// Paper-like waste goes to the paper side, everything else to plastic.
func CompartmentFor(category string) string {
	switch category {
	case "paper", "cardboard":
		return CompartmentPaper
	default:
		return CompartmentPlastic
	}
}

type TriggerRequest struct {
	BinSerial string
	User      accountdomain.User
}

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Device     *DeviceClient
	Classifier classifier.Classifier
	Bins       bindomain.Service
	Profiles   profiledomain.Service
	Disposals  disposaldomain.Service
	Limiter    *ratelimit.DisposeLimiter `optional:"true"`
}

// Controller runs the disposal choreography for one trigger: open the lid,
// wait for the drop, capture and classify the item, route it to a
// compartment, close up and settle the reward.
type Controller struct {
	cfg        config.HardwareConfig
	log        *zap.Logger
	device     *DeviceClient
	classifier classifier.Classifier
	bins       bindomain.Service
	profiles   profiledomain.Service
	disposals  disposaldomain.Service
	limiter    *ratelimit.DisposeLimiter

	mu   sync.Mutex
	busy map[string]bool
}

func NewController(p Params) *Controller {
	return &Controller{
		cfg:        p.Cfg.Hardware,
		log:        p.Log.Named("hardware.controller"),
		device:     p.Device,
		classifier: p.Classifier,
		bins:       p.Bins,
		profiles:   p.Profiles,
		disposals:  p.Disposals,
		limiter:    p.Limiter,
		busy:       make(map[string]bool),
	}
}

func (c *Controller) Trigger(ctx context.Context, req TriggerRequest) (disposaldomain.Receipt, error) {
	bin, err := c.bins.GetBySerial(ctx, req.BinSerial)
	if err != nil {
		return disposaldomain.Receipt{}, err
	}
	if bin.Status != bindomain.StatusActive {
		return disposaldomain.Receipt{}, ErrBinUnavailable
	}

	if !c.tryAcquire(bin.Serial) {
		return disposaldomain.Receipt{}, ErrBinBusy
	}
	defer c.release(bin.Serial)

	token, locked, err := c.limiter.TryLockBin(ctx, bin.ID.String())
	if err != nil {
		return disposaldomain.Receipt{}, err
	}
	if !locked {
		return disposaldomain.Receipt{}, ErrBinBusy
	}
	defer func() {
		if err := c.limiter.ReleaseBin(context.WithoutCancel(ctx), bin.ID.String(), token); err != nil {
			c.log.Warn("bin lock release failed", zap.String("bin_id", bin.ID.String()), zap.Error(err))
		}
	}()

	if _, err := c.profiles.EnsureForUser(ctx, req.User); err != nil {
		return disposaldomain.Receipt{}, err
	}

	log := logger.WithContext(ctx, c.log).With(
		zap.String("bin_id", bin.ID.String()),
		zap.String("serial", bin.Serial),
	)

	// Hardware steps are best effort once the cycle has started. A stuck
	// servo should not cost the user their reward.
	if err := c.device.OpenLid(ctx, bin.Serial); err != nil {
		log.Warn("lid open failed", zap.Error(err))
	}

	if err := sleep(ctx, c.cfg.LidSettle); err != nil {
		return disposaldomain.Receipt{}, err
	}

	result, err := c.captureAndClassify(ctx, bin.Serial, log)
	if err != nil {
		c.closeLid(ctx, bin.Serial, log)
		return disposaldomain.Receipt{}, err
	}

	compartment := CompartmentFor(result.Category)
	if err := c.device.OpenCompartment(ctx, bin.Serial, compartment); err != nil {
		log.Warn("compartment open failed", zap.String("compartment", compartment), zap.Error(err))
	}

	if err := sleep(ctx, c.cfg.CompartmentSettle); err != nil {
		c.closeLid(ctx, bin.Serial, log)
		return disposaldomain.Receipt{}, err
	}

	c.closeLid(ctx, bin.Serial, log)

	receipt, err := c.disposals.Dispose(ctx, disposaldomain.CreateDetectionRequest{
		UserID:     req.User.ID,
		BinID:      bin.ID,
		Category:   result.Category,
		Confidence: result.Confidence,
		WeightKg:   result.WeightKg,
	})
	if err != nil {
		return disposaldomain.Receipt{}, err
	}

	log.Info("disposal cycle finished",
		zap.String("waste_category", receipt.Record.Category),
		zap.Int64("points", receipt.PointsEarned),
		zap.Bool("level_up", receipt.LevelUp),
	)
	return receipt, nil
}

// captureAndClassify grabs a frame and labels it, substituting the configured
// fallback category when the camera or classifier is down.
func (c *Controller) captureAndClassify(ctx context.Context, serial string, log *zap.Logger) (classifier.Result, error) {
	fallback := classifier.Result{
		Category:   c.cfg.FallbackCategory,
		Confidence: c.cfg.FallbackConfidence,
	}

	frame, err := c.device.Capture(ctx, serial)
	if err != nil {
		if !c.cfg.FallbackOnCaptureFailure {
			return classifier.Result{}, err
		}
		log.Warn("capture failed, using fallback category", zap.Error(err))
		return fallback, nil
	}

	result, err := c.classifier.Classify(ctx, frame)
	if err != nil {
		if errors.Is(err, classifier.ErrLowConfidence) {
			// Low confidence still routes by the model's best guess.
			return result, nil
		}
		if !c.cfg.FallbackOnCaptureFailure {
			return classifier.Result{}, err
		}
		log.Warn("classification failed, using fallback category", zap.Error(err))
		return fallback, nil
	}
	return result, nil
}

func (c *Controller) closeLid(ctx context.Context, serial string, log *zap.Logger) {
	if err := c.device.CloseLid(context.WithoutCancel(ctx), serial); err != nil {
		log.Warn("lid close failed", zap.Error(err))
	}
}

func (c *Controller) tryAcquire(serial string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[serial] {
		return false
	}
	c.busy[serial] = true
	return true
}

func (c *Controller) release(serial string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, serial)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
