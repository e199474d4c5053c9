package audit

import (
	"github.com/trash2cash/platform/internal/audit/repository"
	"github.com/trash2cash/platform/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
