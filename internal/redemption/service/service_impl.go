package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/config"
	notificationdomain "github.com/trash2cash/platform/internal/notification/domain"
	obsmetrics "github.com/trash2cash/platform/internal/observability/metrics"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	"github.com/trash2cash/platform/internal/redemption/domain"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg      config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Profiles profiledomain.Repository
	Notifier notificationdomain.Service `optional:"true"`
	Metrics  *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	cfg      config.RedemptionConfig
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	profiles profiledomain.Repository
	notifier notificationdomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Cfg.Redemption,
		db:       p.DB,
		log:      p.Log.Named("redemption.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		profiles: p.Profiles,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

const voucherAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *Service) newVoucherCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in real trouble.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = voucherAlphabet[int(b)%len(voucherAlphabet)]
	}
	return s.cfg.VoucherPrefix + string(buf)
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Redemption, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.Redemption{}, domain.ErrInvalidID
	}
	if req.Points <= 0 {
		return domain.Redemption{}, domain.ErrInvalidPoints
	}
	if req.Points < s.cfg.MinPoints {
		return domain.Redemption{}, domain.ErrBelowMinimum
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = domain.CategoryVoucher
	}
	if !domain.ValidCategory(category) {
		return domain.Redemption{}, domain.ErrInvalidCategory
	}

	billProvider := strings.TrimSpace(req.BillProvider)
	billReference := strings.TrimSpace(req.BillReference)
	charityName := strings.TrimSpace(req.CharityName)
	switch category {
	case domain.CategoryElectricity, domain.CategoryGas:
		if billProvider == "" || billReference == "" {
			return domain.Redemption{}, domain.ErrMissingBillDetails
		}
	case domain.CategoryCharity:
		if charityName == "" {
			return domain.Redemption{}, domain.ErrMissingCharityName
		}
	}

	now := s.clock.Now()
	redemption := domain.Redemption{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Category:      category,
		Points:        req.Points,
		AmountPKR:     float64(req.Points) * s.cfg.PKRPerPoint,
		VoucherCode:   s.newVoucherCode(),
		BillProvider:  billProvider,
		BillReference: billReference,
		CharityName:   charityName,
		Status:        domain.StatusPending,
		ExpiresAt:     now.AddDate(0, 0, s.cfg.VoucherTTLDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deducted, err := s.profiles.DeductPoints(ctx, tx, userID, req.Points, now)
		if err != nil {
			return err
		}
		if !deducted {
			return domain.ErrInsufficientPoints
		}
		if err := s.repo.Insert(ctx, tx, &redemption); err != nil {
			return err
		}
		return s.syncLevel(ctx, tx, userID, now)
	})
	if err != nil {
		return domain.Redemption{}, err
	}

	s.metrics.RecordRedemption(ctx, redemption.Status)
	s.log.Info("redemption submitted",
		zap.String("redemption_id", redemption.ID.String()),
		zap.String("category", redemption.Category),
		zap.Int64("points", redemption.Points),
		zap.Float64("amount_pkr", redemption.AmountPKR),
	)
	return redemption, nil
}

// syncLevel recomputes the level from the post-mutation total inside the same
// transaction, so the stored tier is never stale after a deduction or refund.
func (s *Service) syncLevel(ctx context.Context, tx *gorm.DB, userID snowflake.ID, now time.Time) error {
	profile, err := s.profiles.FindByUserID(ctx, tx, userID)
	if err != nil || profile == nil {
		return err
	}
	if level := profiledomain.LevelForPoints(profile.TotalPoints); level != profile.Level {
		return s.profiles.SetLevel(ctx, tx, userID, level, now)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetRedemptionRequest) (domain.Redemption, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Redemption{}, domain.ErrInvalidID
	}

	redemption, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Redemption{}, err
	}
	if redemption == nil {
		return domain.Redemption{}, domain.ErrNotFound
	}
	return *redemption, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRedemptionsRequest) (domain.ListRedemptionsResponse, error) {
	filter := domain.ListFilter{}

	if trimmed := strings.TrimSpace(req.UserID); trimmed != "" {
		userID, err := snowflake.ParseString(trimmed)
		if err != nil || userID == 0 {
			return domain.ListRedemptionsResponse{}, domain.ErrInvalidID
		}
		filter.UserID = userID
	}

	if status := strings.TrimSpace(req.Status); status != "" {
		switch status {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted:
			filter.Status = status
		default:
			return domain.ListRedemptionsResponse{}, domain.ErrInvalidStatus
		}
	}

	size := req.PageSize
	if size <= 0 {
		size = 10
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListRedemptionsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(item *domain.Redemption) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(items) > int(size) {
		items = items[:size]
	}

	redemptions := make([]domain.Redemption, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		redemptions = append(redemptions, *item)
	}

	return domain.ListRedemptionsResponse{
		PageInfo:    *pageInfo,
		Redemptions: redemptions,
	}, nil
}

func (s *Service) Approve(ctx context.Context, id, note string) (domain.Redemption, error) {
	now := s.clock.Now()
	return s.transition(ctx, id, domain.StatusApproved, note, &now, nil, nil)
}

func (s *Service) Reject(ctx context.Context, id, note string) (domain.Redemption, error) {
	now := s.clock.Now()

	refund := func(tx *gorm.DB, redemption domain.Redemption) error {
		if !s.cfg.RefundOnReject {
			return nil
		}
		if err := s.profiles.AddPoints(ctx, tx, redemption.UserID, redemption.Points, now); err != nil {
			return err
		}
		return s.syncLevel(ctx, tx, redemption.UserID, now)
	}

	return s.transition(ctx, id, domain.StatusRejected, note, &now, nil, refund)
}

func (s *Service) Complete(ctx context.Context, id, note string) (domain.Redemption, error) {
	now := s.clock.Now()
	return s.transition(ctx, id, domain.StatusCompleted, note, nil, &now, nil)
}

// transition applies one status move. The conditional update keeps two admins
// deciding the same request from both succeeding, and the extra step runs in
// the same transaction as the move.
func (s *Service) transition(ctx context.Context, rawID, to, note string, decidedAt, completedAt *time.Time, extra func(*gorm.DB, domain.Redemption) error) (domain.Redemption, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Redemption{}, domain.ErrInvalidID
	}

	var redemption domain.Redemption
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		if !domain.CanTransition(found.Status, to) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		note = strings.TrimSpace(note)
		moved, err := s.repo.TransitionStatus(ctx, tx, id, found.Status, to, note, decidedAt, completedAt, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrInvalidTransition
		}

		redemption = *found
		redemption.Status = to
		redemption.UpdatedAt = now
		if note != "" {
			redemption.AdminNotes = note
		}
		if decidedAt != nil {
			redemption.DecidedAt = decidedAt
		}
		if completedAt != nil {
			redemption.CompletedAt = completedAt
		}

		if extra != nil {
			return extra(tx, redemption)
		}
		return nil
	})
	if err != nil {
		return domain.Redemption{}, err
	}

	s.metrics.RecordRedemption(ctx, redemption.Status)
	s.notifyDecision(ctx, redemption)
	s.log.Info("redemption transitioned",
		zap.String("redemption_id", redemption.ID.String()),
		zap.String("status", redemption.Status),
	)
	return redemption, nil
}

// notifyDecision tells the user about a status change. Best effort; the
// transition already committed.
func (s *Service) notifyDecision(ctx context.Context, redemption domain.Redemption) {
	if s.notifier == nil {
		return
	}

	var title, body string
	switch redemption.Status {
	case domain.StatusApproved:
		title = "Redemption approved"
		body = fmt.Sprintf("Your voucher %s worth PKR %.2f is approved.", redemption.VoucherCode, redemption.AmountPKR)
	case domain.StatusRejected:
		title = "Redemption rejected"
		if s.cfg.RefundOnReject {
			body = fmt.Sprintf("Your request was rejected and %d points were returned.", redemption.Points)
		} else {
			body = "Your redemption request was rejected."
		}
	case domain.StatusCompleted:
		title = "Redemption completed"
		body = fmt.Sprintf("Voucher %s has been paid out.", redemption.VoucherCode)
	default:
		return
	}

	_, err := s.notifier.Notify(ctx, notificationdomain.NotifyRequest{
		UserID: redemption.UserID,
		Title:  title,
		Body:   body,
		Kind:   notificationdomain.KindRedemption,
	})
	if err != nil {
		s.log.Warn("redemption notification failed",
			zap.String("redemption_id", redemption.ID.String()),
			zap.Error(err),
		)
	}
}
