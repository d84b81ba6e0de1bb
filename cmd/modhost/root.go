package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the modhost CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modhost",
		Short: "modhost - an embeddable scripting callback host",
		Long: `Modhost runs sandboxed Lua scripts against a named callback
registry: scripts register listener handles, the host dispatches every
listener of a callback with fault isolation per listener.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
