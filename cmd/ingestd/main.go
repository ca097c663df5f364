// Package main provides the ingestd CLI: an MQTT subscriber that stores
// identity events, and a report over the stored arrival times.
//
// Usage:
//
//	ingestd serve --config ./configs/config.yaml
//	ingestd gaps --format json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ingestd",
		Short:         "Store MQTT identity events in a relational database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (defaults to $CONFIG_FILE, then environment only)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newGapsCmd(opts))

	return rootCmd
}
