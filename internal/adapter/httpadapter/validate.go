package httpadapter

import (
	"errors"
	"io"
	"net/http"

	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

// Outcome labels for the validation request counter.
const (
	outcomeAccepted      = "accepted"
	outcomeRejected      = "rejected"
	outcomeUnknownSchema = "unknown_schema"
	outcomeTooLarge      = "too_large"
	outcomeBadRequest    = "bad_request"
)

type validateResponse struct {
	Schema        domain.SchemaName     `json:"schema"`
	Value         any                   `json:"value"`
	Warnings      []domain.FieldError   `json:"warnings,omitempty"`
	LocationCheck *domain.LocationCheck `json:"location_check,omitempty"`
}

type rejectResponse struct {
	Schema domain.SchemaName   `json:"schema"`
	Kind   string              `json:"kind"`
	Errors []domain.FieldError `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSchemas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.SchemaName{"schemas": domain.SchemaNames()})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("schema")
	schema, ok := domain.LookupSchema(name)
	if !ok {
		// Unregistered names share one label to keep cardinality bounded.
		s.count("unknown", outcomeUnknownSchema)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown schema " + name})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.count(name, outcomeTooLarge)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		s.count(name, outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read request body: " + err.Error()})
		return
	}

	value, err := schema.Validate(body)
	if err != nil {
		verr, ok := domain.AsValidationError(err)
		if !ok {
			s.logger.Error("validation failed", "schema", name, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		s.count(name, outcomeRejected)
		writeJSON(w, http.StatusUnprocessableEntity, rejectResponse{
			Schema: schema.Name,
			Kind:   verr.Kind.String(),
			Errors: verr.Fields,
		})
		return
	}

	resp := validateResponse{
		Schema:   schema.Name,
		Value:    value,
		Warnings: domain.Warnings(value),
	}
	if len(resp.Warnings) > 0 && s.opts.Metrics != nil {
		s.opts.Metrics.InvertedPeriods.WithLabelValues(name).Add(float64(len(resp.Warnings)))
	}
	if loc, ok := value.(domain.Location); ok && s.opts.Geocoder != nil {
		check := domain.VerifyLocation(r.Context(), loc, s.opts.Geocoder, s.logger)
		resp.LocationCheck = &check
	}

	s.count(name, outcomeAccepted)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) count(schema, outcome string) {
	if s.opts.Metrics == nil {
		return
	}
	s.opts.Metrics.ValidationRequests.WithLabelValues(schema, outcome).Inc()
}
