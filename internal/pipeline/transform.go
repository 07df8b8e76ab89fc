package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
	"github.com/couchcryptid/heat-load-validator/internal/observability"
)

// SchemaValidator implements Transformer by running the schema named in the
// message's schema header against its payload.
type SchemaValidator struct {
	defaultSchema domain.SchemaName
	logger        *slog.Logger
	metrics       *observability.Metrics
	marshal       func(any) ([]byte, error)
}

// NewValidator creates a SchemaValidator. Messages without a schema header are
// validated as defaultSchema.
func NewValidator(defaultSchema domain.SchemaName, logger *slog.Logger, metrics *observability.Metrics) *SchemaValidator {
	return &SchemaValidator{
		defaultSchema: defaultSchema,
		logger:        logger,
		metrics:       metrics,
		marshal:       json.Marshal,
	}
}

func (v *SchemaValidator) schemaFor(raw domain.RawEvent) domain.SchemaName {
	if name := raw.Headers[domain.HeaderSchema]; name != "" {
		return domain.SchemaName(name)
	}
	return v.defaultSchema
}

// Transform returns an accepted event carrying the normalized document, or a
// rejected event carrying a rejection report. Only a rejection report that
// cannot be encoded is returned as an error.
func (v *SchemaValidator) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	name := v.schemaFor(raw)

	schema, ok := domain.LookupSchema(string(name))
	if !ok {
		v.logger.Warn("unknown schema",
			"schema", name,
			"topic", raw.Topic,
			"offset", raw.Offset,
		)
		return rejected(raw, name, domain.NewUnknownSchemaRejection(name, raw.Value))
	}

	value, err := schema.Validate(raw.Value)
	if err != nil {
		verr, ok := domain.AsValidationError(err)
		if !ok {
			return domain.OutputEvent{}, fmt.Errorf("validate %s: %w", name, err)
		}
		v.logger.Info("payload rejected",
			"schema", name,
			"kind", verr.Kind,
			"errors", len(verr.Fields),
			"offset", raw.Offset,
		)
		return rejected(raw, name, domain.NewRejection(name, verr, raw.Value))
	}

	warnings := domain.Warnings(value)
	for _, w := range warnings {
		v.logger.Warn("inverted billing period accepted",
			"schema", name,
			"path", w.Path,
			"offset", raw.Offset,
		)
	}
	if len(warnings) > 0 {
		v.metrics.InvertedPeriods.WithLabelValues(string(name)).Add(float64(len(warnings)))
	}

	body, err := v.marshal(value)
	if err != nil {
		v.logger.Error("validated value cannot be serialized",
			"schema", name,
			"error", err,
			"offset", raw.Offset,
		)
		return rejected(raw, name, domain.NewSerializationRejection(name, err, raw.Value))
	}

	headers := map[string]string{
		domain.HeaderSchema:      string(name),
		domain.HeaderValidatedAt: domain.Now().Format(time.RFC3339),
	}
	if len(warnings) > 0 {
		headers[domain.HeaderWarnings] = strconv.Itoa(len(warnings))
	}

	return domain.OutputEvent{
		Key:     raw.Key,
		Value:   body,
		Headers: headers,
		Outcome: domain.OutcomeAccepted,
		Schema:  name,
	}, nil
}

func rejected(raw domain.RawEvent, name domain.SchemaName, r domain.Rejection) (domain.OutputEvent, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("marshal rejection: %w", err)
	}
	return domain.OutputEvent{
		Key:   raw.Key,
		Value: body,
		Headers: map[string]string{
			domain.HeaderSchema:    string(name),
			domain.HeaderErrorKind: r.Kind,
		},
		Outcome: domain.OutcomeRejected,
		Schema:  name,
	}, nil
}
