package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

// Accepted header names for each CSV column, compared case-insensitively.
var columnAliases = map[string][]string{
	"start":     {"start_date", "period_start", "periodstartdate", "start"},
	"end":       {"end_date", "period_end", "periodenddate", "end"},
	"usage":     {"usage", "usage_quantity", "usagequantity", "therms"},
	"inclusion": {"inclusion", "inclusion_override", "inclusionoverride"},
}

func newBundleCmd() *cobra.Command {
	var csvPath, outPath string

	cmd := &cobra.Command{
		Use:   "bundle --csv FILE --out FILE",
		Short: "Build a natural gas usage bundle from a billing CSV",
		Long: `bundle reads a utility billing export with start date, end date and usage
columns (and an optional inclusion code), validates the resulting
natural_gas_usage document and writes it as JSON. Use --out - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			bundle, err := buildBundle(f)
			if err != nil {
				return fmt.Errorf("%s: %w", csvPath, err)
			}
			data, err := encodeBundle(bundle)
			if err != nil {
				return err
			}
			for _, w := range domain.Warnings(bundle) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning %s: %s\n", w.Path, w.Message)
			}

			if outPath == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeFile(outPath, data); err != nil {
				return fmt.Errorf("write bundle: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(bundle.Records), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "billing CSV export")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path for the bundle JSON")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// buildBundle parses billing rows into a bundle whose overall bounds span
// every record.
func buildBundle(r io.Reader) (domain.RawUsageBundle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.RawUsageBundle{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return domain.RawUsageBundle{}, errors.New("no data rows")
	}

	colIdx, err := resolveColumns(rows[0])
	if err != nil {
		return domain.RawUsageBundle{}, err
	}

	var errs []error
	records := make([]domain.RawBillingRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		rec, err := parseRow(row, colIdx)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		records = append(records, rec)
	}
	if len(errs) > 0 {
		return domain.RawUsageBundle{}, errors.Join(errs...)
	}

	start, end := records[0].PeriodStartDate.Time, records[0].PeriodEndDate.Time
	for _, rec := range records[1:] {
		if rec.PeriodStartDate.Before(start) {
			start = rec.PeriodStartDate.Time
		}
		if rec.PeriodEndDate.After(end) {
			end = rec.PeriodEndDate.Time
		}
	}

	// Bounds keep the calendar day of the row they came from, in its own offset.
	return domain.RawUsageBundle{
		OverallStartDate: start.Format(time.DateOnly),
		OverallEndDate:   end.Format(time.DateOnly),
		Records:          records,
	}, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for col, aliases := range columnAliases {
			for _, a := range aliases {
				if h == a {
					idx[col] = i
				}
			}
		}
	}
	for _, col := range []string{"start", "end", "usage"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing %s column (want one of %s)", col, strings.Join(columnAliases[col], ", "))
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (domain.RawBillingRecord, error) {
	var rec domain.RawBillingRecord

	start, err := domain.ParseBillingDate(get(row, idx, "start"))
	if err != nil {
		return rec, err
	}
	end, err := domain.ParseBillingDate(get(row, idx, "end"))
	if err != nil {
		return rec, err
	}
	usage, err := strconv.ParseFloat(get(row, idx, "usage"), 64)
	if err != nil {
		return rec, fmt.Errorf("usage: %w", err)
	}

	rec = domain.RawBillingRecord{
		PeriodStartDate: start,
		PeriodEndDate:   end,
		UsageQuantity:   usage,
	}
	if s := get(row, idx, "inclusion"); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			return rec, fmt.Errorf("inclusion: %w", err)
		}
		rec.InclusionOverride = domain.IncludeDecision(code)
	}
	return rec, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// encodeBundle marshals the bundle and runs it through the same validator the
// pipeline uses, so only admissible documents are written.
func encodeBundle(b domain.RawUsageBundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	if _, err := domain.ValidateRawUsageBundle(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
