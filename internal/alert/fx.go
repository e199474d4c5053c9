package alert

import (
	"go.uber.org/fx"
)

var Module = fx.Module("alert.notifier",
	fx.Provide(New),
)
