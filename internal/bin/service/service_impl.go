package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/alert"
	"github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fullThreshold is the fill percentage at which a check-in with no explicit
// status marks the bin full.
const fullThreshold = 90

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Notifier *alert.Notifier `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	notifier *alert.Notifier
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("bin.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		notifier: p.Notifier,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterBinRequest) (domain.Bin, error) {
	serial := strings.TrimSpace(req.Serial)
	if serial == "" {
		return domain.Bin{}, domain.ErrInvalidSerial
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	now := time.Now().UTC()
	bin := domain.Bin{
		ID:        s.genID.Generate(),
		Serial:    serial,
		Location:  strings.TrimSpace(req.Location),
		Status:    domain.StatusActive,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &bin); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Bin{}, domain.ErrBinExists
		}
		return domain.Bin{}, err
	}

	s.log.Info("bin registered", zap.String("bin_id", bin.ID.String()), zap.String("serial", bin.Serial))
	return bin, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBinRequest) (domain.Bin, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Bin{}, domain.ErrInvalidID
	}

	bin, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Bin{}, err
	}
	if bin == nil {
		return domain.Bin{}, domain.ErrNotFound
	}

	return *bin, nil
}

func (s *Service) GetBySerial(ctx context.Context, serial string) (domain.Bin, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return domain.Bin{}, domain.ErrInvalidSerial
	}

	bin, err := s.repo.FindBySerial(ctx, s.db, serial)
	if err != nil {
		return domain.Bin{}, err
	}
	if bin == nil {
		return domain.Bin{}, domain.ErrNotFound
	}

	return *bin, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBinsRequest) ([]domain.Bin, error) {
	status := strings.TrimSpace(req.Status)
	if status != "" && !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, domain.ListBinFilter{Status: status})
	if err != nil {
		return nil, err
	}

	bins := make([]domain.Bin, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bins = append(bins, *item)
	}
	return bins, nil
}

func (s *Service) SetStatus(ctx context.Context, req domain.SetStatusRequest) (domain.Bin, error) {
	if !domain.ValidStatus(req.Status) {
		return domain.Bin{}, domain.ErrInvalidStatus
	}

	bin, err := s.GetByID(ctx, domain.GetBinRequest{ID: req.ID})
	if err != nil {
		return domain.Bin{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, bin.ID, req.Status, now); err != nil {
		return domain.Bin{}, err
	}

	bin.Status = req.Status
	bin.UpdatedAt = now
	return bin, nil
}

func (s *Service) Checkin(ctx context.Context, req domain.CheckinRequest) error {
	bin, err := s.GetBySerial(ctx, req.Serial)
	if err != nil {
		return err
	}

	fillLevel := req.FillLevel
	if fillLevel < 0 {
		fillLevel = 0
	}
	if fillLevel > 100 {
		fillLevel = 100
	}

	status := strings.TrimSpace(req.Status)
	switch {
	case status == "" && fillLevel >= fullThreshold:
		status = domain.StatusFull
	case status == "":
		status = bin.Status
		// A bin that reported full and has since been emptied goes back to
		// active on its own.
		if status == domain.StatusFull && fillLevel < fullThreshold {
			status = domain.StatusActive
		}
	}
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}

	seenAt := req.At
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}

	if err := s.repo.UpdateTelemetry(ctx, s.db, bin.ID, status, fillLevel, req.BatteryLevel, seenAt); err != nil {
		return err
	}

	if status == domain.StatusFull && bin.Status != domain.StatusFull {
		s.notifier.BinFull(ctx, bin.Serial, bin.Location, fillLevel)
	}
	return nil
}
