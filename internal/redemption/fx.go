package redemption

import (
	"github.com/trash2cash/platform/internal/redemption/repository"
	"github.com/trash2cash/platform/internal/redemption/service"
	"go.uber.org/fx"
)

var Module = fx.Module("redemption.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
