package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"github.com/trash2cash/platform/internal/profile/domain"
	"github.com/trash2cash/platform/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) EnsureForUser(ctx context.Context, user accountdomain.User) (domain.UserProfile, error) {
	existing, err := s.repo.FindByUserID(ctx, s.db, user.ID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := time.Now().UTC()
	profile := domain.UserProfile{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Level:     1,
		QRPayload: domain.QRPayloadFor(user),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		// Lost the race against a concurrent first touch.
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindByUserID(ctx, s.db, user.ID)
			if findErr != nil {
				return domain.UserProfile{}, findErr
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return domain.UserProfile{}, err
	}

	s.log.Info("profile created", zap.String("user_id", user.ID.String()))
	return profile, nil
}

func (s *Service) GetByUser(ctx context.Context, req domain.GetProfileRequest) (domain.UserProfile, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.UserProfile{}, domain.ErrInvalidID
	}

	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if profile == nil {
		return domain.UserProfile{}, domain.ErrNotFound
	}

	return *profile, nil
}

func (s *Service) RegenerateQR(ctx context.Context, user accountdomain.User) (domain.UserProfile, error) {
	profile, err := s.EnsureForUser(ctx, user)
	if err != nil {
		return domain.UserProfile{}, err
	}

	payload := domain.QRPayloadFor(user)
	now := time.Now().UTC()
	if err := s.repo.UpdateQRPayload(ctx, s.db, user.ID, payload, now); err != nil {
		return domain.UserProfile{}, err
	}

	profile.QRPayload = payload
	profile.UpdatedAt = now
	return profile, nil
}
