package bin

import (
	"github.com/trash2cash/platform/internal/bin/repository"
	"github.com/trash2cash/platform/internal/bin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
