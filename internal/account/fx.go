package account

import (
	"github.com/trash2cash/platform/internal/account/repository"
	"github.com/trash2cash/platform/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
