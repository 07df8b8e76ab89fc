// Command heatcheck validates heat-load documents offline and builds
// NaturalGasUsage bundles from utility CSV exports.
//
// Usage:
//
//	heatcheck validate --schema usage_data results/*.json
//	heatcheck bundle --csv billing.csv --out bundle.json
//	heatcheck schemas
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errChecksFailed signals a non-zero exit after the report has been printed.
var errChecksFailed = errors.New("validation failed")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "heatcheck",
		Short: "Validate heat-load analysis documents",
		Long: `heatcheck runs the heat-load validators against local files.
It checks intake forms and rules-engine results, and converts utility
billing exports into natural gas usage bundles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newValidateCmd(), newBundleCmd(), newSchemasCmd())
	return root
}
