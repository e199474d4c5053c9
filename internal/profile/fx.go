package profile

import (
	"github.com/trash2cash/platform/internal/profile/repository"
	"github.com/trash2cash/platform/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
