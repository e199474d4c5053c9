package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/disposal/domain"
	obsmetrics "github.com/trash2cash/platform/internal/observability/metrics"
	"github.com/trash2cash/platform/internal/points"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Calc     *points.Calculator
	Repo     domain.Repository
	Profiles profiledomain.Repository
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	calc     *points.Calculator
	repo     domain.Repository
	profiles profiledomain.Repository
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("disposal.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		calc:     p.Calc,
		repo:     p.Repo,
		profiles: p.Profiles,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateDetection(ctx context.Context, req domain.CreateDetectionRequest) (domain.DetectionEvent, error) {
	if req.UserID == 0 {
		return domain.DetectionEvent{}, domain.ErrInvalidUser
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		return domain.DetectionEvent{}, domain.ErrInvalidCategory
	}

	now := s.clock.Now()
	event := domain.DetectionEvent{
		ID:         s.genID.Generate(),
		BinID:      req.BinID,
		UserID:     req.UserID,
		Category:   category,
		Confidence: req.Confidence,
		WeightKg:   req.WeightKg,
		ImageRef:   req.ImageRef,
		DetectedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.InsertDetection(ctx, s.db, &event); err != nil {
		return domain.DetectionEvent{}, err
	}

	s.log.Info("detection recorded",
		zap.String("detection_id", event.ID.String()),
		zap.String("waste_category", event.Category),
		zap.Float64("confidence", event.Confidence),
	)
	return event, nil
}

// ProcessDetection runs the settlement transaction. The conditional update on
// is_processed is the guard: whichever caller flips it first owns the award,
// everyone else gets ErrAlreadyProcessed.
func (s *Service) ProcessDetection(ctx context.Context, detectionID snowflake.ID) (domain.Receipt, error) {
	if detectionID == 0 {
		return domain.Receipt{}, domain.ErrInvalidID
	}

	var receipt domain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.FindDetectionByID(ctx, tx, detectionID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrDetectionNotFound
		}
		if event.UserID == 0 {
			return domain.ErrInvalidUser
		}

		now := s.clock.Now()

		// Get-or-create the profile up front so the award below always has a
		// row to credit; a first-ever disposal must never commit a record
		// without the matching profile mutation.
		profile, err := s.profiles.FindByUserID(ctx, tx, event.UserID)
		if err != nil {
			return err
		}
		if profile == nil {
			profile = &profiledomain.UserProfile{
				ID:        s.genID.Generate(),
				UserID:    event.UserID,
				Level:     1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.profiles.Insert(ctx, tx, profile); err != nil {
				return err
			}
		}

		award := s.calc.Award(event.Category, event.WeightKg)

		claimed, err := s.repo.MarkDetectionProcessed(ctx, tx, event.ID, award, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrAlreadyProcessed
		}

		record := domain.DisposalRecord{
			ID:               s.genID.Generate(),
			DetectionEventID: event.ID,
			UserID:           event.UserID,
			BinID:            event.BinID,
			Category:         event.Category,
			WeightKg:         event.WeightKg,
			Points:           award,
			Status:           domain.StatusCompleted,
			DisposedAt:       now,
			CreatedAt:        now,
		}
		if err := s.repo.InsertRecord(ctx, tx, &record); err != nil {
			return err
		}

		if err := s.profiles.ApplyDisposal(ctx, tx, event.UserID, award, event.WeightKg, event.Category, now); err != nil {
			return err
		}

		// Recompute the level from the post-increment total so concurrent
		// settlements converge on the right value.
		profile, err = s.profiles.FindByUserID(ctx, tx, event.UserID)
		if err != nil {
			return err
		}
		if profile == nil {
			return domain.ErrInvalidUser
		}

		level := profiledomain.LevelForPoints(profile.TotalPoints)
		if level != profile.Level {
			if err := s.profiles.SetLevel(ctx, tx, event.UserID, level, now); err != nil {
				return err
			}
		}

		receipt = domain.Receipt{
			Record:       record,
			PointsEarned: award,
			TotalPoints:  profile.TotalPoints,
			Level:        level,
			LevelUp:      level > profile.Level,
		}

		return nil
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	record := receipt.Record
	s.metrics.RecordDisposal(ctx, record.Category, record.Status)
	s.metrics.RecordPointsAwarded(ctx, record.Category, record.Points)
	s.log.Info("disposal settled",
		zap.String("disposal_id", record.ID.String()),
		zap.String("detection_id", record.DetectionEventID.String()),
		zap.String("waste_category", record.Category),
		zap.Int64("points", record.Points),
		zap.Bool("level_up", receipt.LevelUp),
	)
	return receipt, nil
}

func (s *Service) Dispose(ctx context.Context, req domain.CreateDetectionRequest) (domain.Receipt, error) {
	event, err := s.CreateDetection(ctx, req)
	if err != nil {
		return domain.Receipt{}, err
	}
	return s.ProcessDetection(ctx, event.ID)
}

func (s *Service) ListByUser(ctx context.Context, req domain.ListDisposalsRequest) (domain.ListDisposalsResponse, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.ListDisposalsResponse{}, domain.ErrInvalidID
	}

	size := req.PageSize
	if size <= 0 {
		size = 10
	}

	records, err := s.repo.ListRecordsByUser(ctx, s.db, userID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListDisposalsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(records, size, func(record *domain.DisposalRecord) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        record.ID.String(),
			CreatedAt: record.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(records) > int(size) {
		records = records[:size]
	}

	disposals := make([]domain.DisposalRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		disposals = append(disposals, *record)
	}

	return domain.ListDisposalsResponse{
		PageInfo:  *pageInfo,
		Disposals: disposals,
	}, nil
}
