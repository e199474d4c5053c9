package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/notification/domain"
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
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Notify(ctx context.Context, req domain.NotifyRequest) (domain.Notification, error) {
	if req.UserID == 0 {
		return domain.Notification{}, domain.ErrInvalidID
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Notification{}, domain.ErrInvalidTitle
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = domain.KindInfo
	}

	notification := domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		Kind:      kind,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}
	return notification, nil
}

func (s *Service) ListByUser(ctx context.Context, req domain.ListNotificationsRequest) (domain.ListNotificationsResponse, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.ListNotificationsResponse{}, domain.ErrInvalidID
	}

	size := req.PageSize
	if size <= 0 {
		size = 20
	}

	items, err := s.repo.ListByUser(ctx, s.db, userID, req.UnreadOnly, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListNotificationsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(item *domain.Notification) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(items) > int(size) {
		items = items[:size]
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	return domain.ListNotificationsResponse{
		PageInfo:      *pageInfo,
		Notifications: notifications,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	notificationID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || notificationID == 0 {
		return domain.ErrInvalidID
	}
	uid, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || uid == 0 {
		return domain.ErrInvalidID
	}

	marked, err := s.repo.MarkRead(ctx, s.db, notificationID, uid)
	if err != nil {
		return err
	}
	if !marked {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	uid, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || uid == 0 {
		return 0, domain.ErrInvalidID
	}
	return s.repo.MarkAllRead(ctx, s.db, uid)
}
