package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/alert"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/clock"
	redemptiondomain "github.com/trash2cash/platform/internal/redemption/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	RedemptionSvc redemptiondomain.Service
	Clock         clock.Clock
	Notifier      *alert.Notifier `optional:"true"`
	Config        Config          `optional:"true"`
}

// Scheduler runs the periodic maintenance jobs: it marks silent bins offline
// and rejects redemption requests that expired before an admin reviewed them.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	redemptionSvc redemptiondomain.Service
	notifier      *alert.Notifier
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.RedemptionSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		redemptionSvc: p.RedemptionSvc,
		notifier:      p.Notifier,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	err := fn(ctx)
	log.Debug("job finished", zap.Duration("elapsed", time.Since(start)))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"bin_offline_sweep", func(ctx context.Context) error {
			return s.runJob(ctx, "bin_offline_sweep", 30*time.Second, s.BinOfflineSweepJob)
		}},
		{"redemption_expiry", func(ctx context.Context) error {
			return s.runJob(ctx, "redemption_expiry", 30*time.Second, s.RedemptionExpiryJob)
		}},
	}

	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// An empty EnabledJobs list enables everything.
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// BinOfflineSweepJob marks bins offline when their last telemetry check-in is
// older than the configured threshold. Bins under maintenance and bins that
// never checked in are left alone.
func (s *Scheduler) BinOfflineSweepJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.BinOfflineAfter)

	res := s.db.WithContext(ctx).Exec(
		`UPDATE bins
		 SET status = ?, updated_at = ?
		 WHERE last_seen_at IS NOT NULL
		   AND last_seen_at < ?
		   AND status IN (?, ?)`,
		bindomain.StatusOffline, s.clock.Now(), cutoff,
		bindomain.StatusActive, bindomain.StatusFull,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.log.Info("marked silent bins offline",
			zap.Int64("count", res.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
		s.notifier.BinsOffline(ctx, res.RowsAffected, s.cfg.BinOfflineAfter.String())
	}
	return nil
}

// RedemptionExpiryJob rejects pending redemption requests whose claim window
// lapsed. Rejection goes through the service so points refund normally.
func (s *Scheduler) RedemptionExpiryJob(ctx context.Context) error {
	now := s.clock.Now()
	var jobErr error

	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		ids, err := s.fetchExpiredPending(ctx, now)
		if err != nil {
			return errors.Join(jobErr, err)
		}
		if len(ids) == 0 {
			return jobErr
		}

		settled := 0
		for _, id := range ids {
			if ctx.Err() != nil {
				return errors.Join(jobErr, ctx.Err())
			}
			if _, err := s.redemptionSvc.Reject(ctx, id.String(), "expired before review"); err != nil {
				// Another worker may have decided it first.
				if errors.Is(err, redemptiondomain.ErrInvalidTransition) || errors.Is(err, redemptiondomain.ErrNotFound) {
					settled++
					continue
				}
				jobErr = errors.Join(jobErr, err)
				s.log.Warn("redemption expiry reject failed",
					zap.String("redemption_id", id.String()),
					zap.Error(err),
				)
				continue
			}
			settled++
			s.log.Info("expired pending redemption rejected",
				zap.String("redemption_id", id.String()),
			)
		}
		if settled == 0 {
			// Nothing moved; retrying the same rows would spin.
			return jobErr
		}
	}
}

func (s *Scheduler) fetchExpiredPending(ctx context.Context, now time.Time) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := s.db.WithContext(ctx).
		Model(&redemptiondomain.Redemption{}).
		Select("id").
		Where("status = ? AND expires_at < ?", redemptiondomain.StatusPending, now).
		Order("expires_at ASC").
		Limit(s.cfg.BatchSize).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
