package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

// fileResult is the outcome of validating one file.
type fileResult struct {
	path     string
	fields   []domain.FieldError
	warnings []domain.FieldError
	err      error // read or decode failure, not a validation failure
}

func (r fileResult) passed() bool { return r.err == nil && len(r.fields) == 0 }

func newValidateCmd() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "validate --schema NAME FILE...",
		Short: "Validate JSON or YAML documents against a schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := domain.LookupSchema(schema)
			if !ok {
				return fmt.Errorf("%w: %q (see heatcheck schemas)", domain.ErrUnknownSchema, schema)
			}
			results, err := validateFiles(cmd.Context(), s, args)
			if err != nil {
				return err
			}
			if !report(cmd.OutOrStdout(), s, results) {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema name to validate against")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// validateFiles checks every path concurrently. Results keep argument order.
func validateFiles(ctx context.Context, s domain.Schema, paths []string) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(s, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func validateFile(s domain.Schema, path string) fileResult {
	res := fileResult{path: path}

	data, err := readDocument(path)
	if err != nil {
		res.err = err
		return res
	}

	value, err := s.Validate(data)
	if err != nil {
		verr, ok := domain.AsValidationError(err)
		if !ok {
			res.err = err
			return res
		}
		res.fields = verr.Fields
		return res
	}
	res.warnings = domain.Warnings(value)
	return res
}

// readDocument returns the file as JSON. YAML files are converted.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// jsonCompatible rewrites values yaml decodes but encoding/json cannot carry:
// non-string map keys and timestamps.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = jsonCompatible(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = jsonCompatible(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = jsonCompatible(e)
		}
		return t
	case time.Time:
		if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// report prints one line per file followed by details, and reports whether
// every file passed.
func report(w io.Writer, s domain.Schema, results []fileResult) bool {
	allPassed := true
	for _, r := range results {
		status := "PASS"
		switch {
		case r.err != nil:
			status = "ERROR"
			allPassed = false
		case !r.passed():
			status = fmt.Sprintf("FAIL (%d errors)", len(r.fields))
			allPassed = false
		case len(r.warnings) > 0:
			status = fmt.Sprintf("PASS (%d warnings)", len(r.warnings))
		}
		fmt.Fprintf(w, "  %-42s %s\n", r.path, status)
	}

	for _, r := range results {
		if r.err == nil && len(r.fields) == 0 && len(r.warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", r.path)
		if r.err != nil {
			fmt.Fprintf(w, "  %v\n", r.err)
		}
		for _, f := range r.fields {
			fmt.Fprintf(w, "  %s: %s\n", pathOrRoot(f.Path), f.Message)
		}
		for _, f := range r.warnings {
			fmt.Fprintf(w, "  warning %s: %s\n", pathOrRoot(f.Path), f.Message)
		}
	}

	fmt.Fprintf(w, "\n%d files checked against %s (%s)\n", len(results), s.Name, s.Kind)
	return allPassed
}

func pathOrRoot(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
