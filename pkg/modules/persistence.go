package modules

import (
	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence/sqldb"
	"go.uber.org/fx"
)

// NewPersistenceModule provides persistence functionality: SQL store, txManager
func NewPersistenceModule(opts ...sqldb.Option) fx.Option {
	return sqldb.NewSQLModule(opts...)
}
