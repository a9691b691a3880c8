package impl

import (
	"go.uber.org/fx"
)

// Module provides every action creator and the push delivery use case.
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewAuthServiceFactory,
		NewProfileService,
		NewCatalogService,
		NewOrderService,
		NewChatService,
		NewPortService,
		NewNotificationService,
	),
)
