package handler

import "go.uber.org/fx"

// Module provides every API handler
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewAuthHandler,
		NewProfileHandler,
		NewCatalogHandler,
		NewOrderHandler,
		NewChatHandler,
		NewPortHandler,
		NewStateHandler,
		NewSystemHandler,
	),
)
