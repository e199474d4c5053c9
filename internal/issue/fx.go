package issue

import (
	"github.com/trash2cash/platform/internal/issue/repository"
	"github.com/trash2cash/platform/internal/issue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("issue.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
