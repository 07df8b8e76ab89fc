package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent is an unvalidated message from the rules-engine source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Disposition of a message after validation.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Message headers read and written by the validator.
const (
	HeaderSchema      = "schema"
	HeaderValidatedAt = "validated_at"
	HeaderErrorKind   = "error_kind"
	HeaderWarnings    = "warnings"
)

// KindUnknownSchema labels rejections whose schema header names no validator.
const KindUnknownSchema = "unknown_schema"

// OutputEvent is the serialized form destined for the sink or rejection topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
	// Outcome selects the destination topic.
	Outcome string
	Schema  SchemaName
}

// Rejection is the body written for a payload that failed validation.
type Rejection struct {
	Schema     SchemaName      `json:"schema"`
	Kind       string          `json:"kind"`
	Errors     []FieldError    `json:"errors"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RawPayload string          `json:"raw_payload,omitempty"`
	RejectedAt time.Time       `json:"rejected_at"`
}

// NewRejection builds a rejection report. A payload that is not valid JSON is
// kept verbatim as a string.
func NewRejection(schema SchemaName, verr *ValidationError, payload []byte) Rejection {
	r := Rejection{
		Schema:     schema,
		Kind:       verr.Kind.String(),
		Errors:     verr.Fields,
		RejectedAt: Now(),
	}
	if json.Valid(payload) {
		r.Payload = json.RawMessage(payload)
	} else {
		r.RawPayload = string(payload)
	}
	return r
}

// NewUnknownSchemaRejection reports a payload whose schema is not registered.
func NewUnknownSchemaRejection(schema SchemaName, payload []byte) Rejection {
	verr := &ValidationError{
		Schema: schema,
		Fields: []FieldError{{Message: fmt.Sprintf("%s %q", ErrUnknownSchema, schema), Err: ErrUnknownSchema}},
	}
	r := NewRejection(schema, verr, payload)
	r.Kind = KindUnknownSchema
	return r
}

// NewSerializationRejection reports a validated value that could not be
// re-encoded. It is a contract violation: the payload passed validation but
// cannot be forwarded as normalized JSON.
func NewSerializationRejection(schema SchemaName, err error, payload []byte) Rejection {
	verr := &ValidationError{
		Kind:   KindContract,
		Schema: schema,
		Fields: []FieldError{{Message: "Value cannot be serialized: " + err.Error(), Err: err}},
	}
	return NewRejection(schema, verr, payload)
}
