package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/audit/domain"
	"github.com/trash2cash/platform/internal/audit/masking"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) error {
	action := strings.TrimSpace(req.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	actorType := strings.TrimSpace(req.ActorType)
	if actorType == "" {
		actorType = domain.ActorTypeSystem
	}
	targetType := strings.TrimSpace(req.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := masking.Sanitize(req.Metadata)
	if payload == nil {
		payload = map[string]any{}
	}

	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    strings.TrimSpace(req.ActorID),
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(req.TargetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogsRequest) (domain.ListAuditLogsResponse, error) {
	size := req.PageSize
	if size <= 0 {
		size = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorType:  req.ActorType,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListAuditLogsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(item *domain.AuditLog) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(items) > int(size) {
		items = items[:size]
	}

	logs := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	return domain.ListAuditLogsResponse{
		PageInfo:  *pageInfo,
		AuditLogs: logs,
	}, nil
}
