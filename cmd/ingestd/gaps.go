package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sokol111/mqtt-event-ingestor/internal/analysis"
	"github.com/Sokol111/mqtt-event-ingestor/internal/store"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/core"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/modules"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/term"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

func newGapsCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Print statistics of the time between stored events",
		Long: `Read every stored event timestamp in ascending order and print
descriptive statistics of the gaps between consecutive events, in seconds.

Output is a table on a terminal and JSON otherwise, unless --format is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGaps(cmd.Context(), opts, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: auto, table or json")

	return cmd
}

func runGaps(ctx context.Context, opts *rootOptions, format string, out io.Writer) error {
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}

	var repo store.EventRepository
	app := fx.New(
		modules.NewCoreModule(core.WithConfigPath(opts.configPath)),
		modules.NewPersistenceModule(),
		store.NewStoreModule(),
		fx.Populate(&repo),
	)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	gaps, err := analysis.Load(ctx, repo)
	if errors.Is(err, analysis.ErrNoData) || errors.Is(err, analysis.ErrNotEnoughData) {
		return fmt.Errorf("nothing to analyse: %w", err)
	}
	if err != nil {
		return err
	}
	summary, err := analysis.Describe(gaps)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return analysis.WriteJSON(out, summary)
	}
	return analysis.WriteTable(out, summary)
}

func resolveFormat(format string, out io.Writer) (string, error) {
	switch format {
	case formatTable, formatJSON:
		return format, nil
	case formatAuto:
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return formatTable, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
