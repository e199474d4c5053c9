package notification

import (
	"github.com/trash2cash/platform/internal/notification/repository"
	"github.com/trash2cash/platform/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
