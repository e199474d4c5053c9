package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/issue/domain"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("issue.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitReportRequest) (domain.Report, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return domain.Report{}, domain.ErrInvalidCategory
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Report{}, domain.ErrInvalidDescription
	}

	report := domain.Report{
		ID:          s.genID.Generate(),
		Category:    category,
		Description: description,
		Status:      domain.StatusOpen,
		CreatedAt:   s.clock.Now(),
		UpdatedAt:   s.clock.Now(),
	}

	if trimmed := strings.TrimSpace(req.UserID); trimmed != "" {
		userID, err := snowflake.ParseString(trimmed)
		if err != nil || userID == 0 {
			return domain.Report{}, domain.ErrInvalidID
		}
		report.UserID = userID
	}
	if trimmed := strings.TrimSpace(req.BinID); trimmed != "" {
		binID, err := snowflake.ParseString(trimmed)
		if err != nil || binID == 0 {
			return domain.Report{}, domain.ErrInvalidID
		}
		report.BinID = binID
	}

	if err := s.repo.Insert(ctx, s.db, &report); err != nil {
		return domain.Report{}, err
	}

	s.log.Info("issue reported",
		zap.String("report_id", report.ID.String()),
		zap.String("category", report.Category),
	)
	return report, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Report, error) {
	reportID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || reportID == 0 {
		return domain.Report{}, domain.ErrInvalidID
	}

	report, err := s.repo.FindByID(ctx, s.db, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	if report == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	return *report, nil
}

func (s *Service) List(ctx context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error) {
	filter := domain.ListFilter{}

	if trimmed := strings.TrimSpace(req.UserID); trimmed != "" {
		userID, err := snowflake.ParseString(trimmed)
		if err != nil || userID == 0 {
			return domain.ListReportsResponse{}, domain.ErrInvalidID
		}
		filter.UserID = userID
	}
	if trimmed := strings.TrimSpace(req.BinID); trimmed != "" {
		binID, err := snowflake.ParseString(trimmed)
		if err != nil || binID == 0 {
			return domain.ListReportsResponse{}, domain.ErrInvalidID
		}
		filter.BinID = binID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !domain.ValidStatus(status) {
			return domain.ListReportsResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	size := req.PageSize
	if size <= 0 {
		size = 20
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListReportsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(item *domain.Report) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(items) > int(size) {
		items = items[:size]
	}

	reports := make([]domain.Report, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reports = append(reports, *item)
	}

	return domain.ListReportsResponse{
		PageInfo: *pageInfo,
		Reports:  reports,
	}, nil
}

func (s *Service) SetStatus(ctx context.Context, req domain.SetReportStatusRequest) (domain.Report, error) {
	if !domain.ValidStatus(req.Status) {
		return domain.Report{}, domain.ErrInvalidStatus
	}

	report, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Report{}, err
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, report.ID, req.Status, now); err != nil {
		return domain.Report{}, err
	}

	report.Status = req.Status
	report.UpdatedAt = now
	return report, nil
}
