package camera

import "go.uber.org/fx"

var Module = fx.Module("camera",
	fx.Provide(NewRegistry),
)
