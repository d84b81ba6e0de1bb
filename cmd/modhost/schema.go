// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/modhost/modhost/internal/luahost"
)

// NewSchemaCmd creates the schema subcommand, which prints the JSON Schema
// for script.yaml manifests so editors can validate them.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the script manifest JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := luahost.GenerateSchema()
			if err != nil {
				return err
			}
			cmd.Println(string(schema))
			return nil
		},
	}
}
