package domain

import (
	"encoding/json"
	"errors"
)

// FileDescriptor mirrors the browser File fields the intake form submits.
type FileDescriptor struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
	Type string  `json:"type"`
}

// UploadRef is the energy use upload field: exactly one of Token or File is set.
type UploadRef struct {
	Token string
	File  *FileDescriptor
}

// parseUpload accepts a non-empty string or a complete file descriptor. Any other
// shape fails with ErrUploadRequired; callers never see which branch failed.
func parseUpload(raw json.RawMessage) (UploadRef, error) {
	switch jsonType(raw) {
	case "string":
		var token string
		if err := json.Unmarshal(raw, &token); err != nil || token == "" {
			return UploadRef{}, ErrUploadRequired
		}
		return UploadRef{Token: token}, nil
	case "object":
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return UploadRef{}, ErrUploadRequired
		}
		var fd FileDescriptor
		name, okName := fields["name"]
		size, okSize := fields["size"]
		typ, okType := fields["type"]
		if !okName || !okSize || !okType ||
			jsonType(name) != "string" || jsonType(size) != "number" || jsonType(typ) != "string" {
			return UploadRef{}, ErrUploadRequired
		}
		if json.Unmarshal(name, &fd.Name) != nil ||
			json.Unmarshal(size, &fd.Size) != nil ||
			json.Unmarshal(typ, &fd.Type) != nil {
			return UploadRef{}, ErrUploadRequired
		}
		return UploadRef{File: &fd}, nil
	default:
		return UploadRef{}, ErrUploadRequired
	}
}

// ValidateEnergyUseUpload validates the raw JSON value of the upload field.
// An empty raw value stands for an absent field.
func ValidateEnergyUseUpload(raw json.RawMessage) (UploadRef, error) {
	ref, err := parseUpload(raw)
	if err != nil {
		return UploadRef{}, uploadError()
	}
	return ref, nil
}

func uploadError() error {
	return &ValidationError{
		Kind:   KindInput,
		Schema: SchemaEnergyUseUpload,
		Fields: []FieldError{{Path: "energy_use_upload", Message: UploadRequiredMessage, Err: ErrUploadRequired}},
	}
}

// Validate reports ErrUploadRequired unless exactly one variant is populated.
func (u UploadRef) Validate() error {
	switch {
	case u.Token != "" && u.File == nil:
		return nil
	case u.Token == "" && u.File != nil:
		is := newIssues()
		if checkFinite(is, "size", u.File.Size) {
			return nil
		}
	}
	return uploadError()
}

// MarshalJSON writes the token string or the file descriptor object.
func (u UploadRef) MarshalJSON() ([]byte, error) {
	switch {
	case u.File != nil:
		return json.Marshal(u.File)
	case u.Token != "":
		return json.Marshal(u.Token)
	default:
		return nil, errors.New("marshal upload ref: " + UploadRequiredMessage)
	}
}

// UnmarshalJSON applies the same rules as ValidateEnergyUseUpload.
func (u *UploadRef) UnmarshalJSON(data []byte) error {
	ref, err := parseUpload(data)
	if err != nil {
		return err
	}
	*u = ref
	return nil
}

// UploadForm is the intake form section carrying the upload field.
type UploadForm struct {
	EnergyUseUpload UploadRef `json:"energy_use_upload"`
}

// ValidateUploadForm validates {"energy_use_upload": ...}. A missing or null
// field yields the same fixed message as any other rejected value.
func ValidateUploadForm(data []byte) (UploadForm, error) {
	is := newIssues()
	raw, ok := parseDocument(data, is)
	if !ok {
		return UploadForm{}, is.result(KindInput, SchemaEnergyUseUpload)
	}
	o, ok := decodeObject(raw, is)
	if !ok {
		return UploadForm{}, is.result(KindInput, SchemaEnergyUseUpload)
	}
	ref, err := ValidateEnergyUseUpload(o.fields["energy_use_upload"])
	if err != nil {
		return UploadForm{}, err
	}
	return UploadForm{EnergyUseUpload: ref}, nil
}
