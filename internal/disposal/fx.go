package disposal

import (
	"github.com/trash2cash/platform/internal/disposal/repository"
	"github.com/trash2cash/platform/internal/disposal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("disposal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
