package hardware

import "go.uber.org/fx"

var Module = fx.Module("hardware",
	fx.Provide(NewDeviceClient),
	fx.Provide(NewController),
)
