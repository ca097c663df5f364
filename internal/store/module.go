package store

import (
	"go.uber.org/fx"
)

// NewStoreModule provides the event schema to the SQL module and the
// EventRepository.
func NewStoreModule() fx.Option {
	return fx.Module("store",
		fx.Provide(
			Migrations,
			NewEventRepository,
		),
	)
}
