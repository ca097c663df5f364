package main

import (
	"github.com/Sokol111/mqtt-event-ingestor/internal/ingest"
	"github.com/Sokol111/mqtt-event-ingestor/internal/store"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/core"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/modules"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Subscribe to the configured topic and store identity events",
		Long: `Connect to the MQTT broker, subscribe to the configured topic and store
every message carrying first_name and last_name as an event row.

The process runs until interrupted. It exits with code 1 when the broker
cannot be reached within the configured number of attempts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(serveOptions(opts)).Run()
			return nil
		},
	}
}

func serveOptions(opts *rootOptions) fx.Option {
	return fx.Options(
		modules.NewCoreModule(core.WithConfigPath(opts.configPath)),
		modules.NewObservabilityModule(),
		modules.NewHTTPModule(),
		modules.NewPersistenceModule(),
		store.NewStoreModule(),
		ingest.NewIngestModule(),
		modules.NewMessagingModule(ingest.NewHandler),
	)
}
