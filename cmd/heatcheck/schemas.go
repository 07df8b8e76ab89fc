package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the registered schemas and their error kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range domain.SchemaNames() {
				s, _ := domain.LookupSchema(string(name))
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, s.Kind)
			}
			return nil
		},
	}
}
