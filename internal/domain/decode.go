package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
)

const msgRequired = "Required"

// isoDateRe is the wire format for bundle bounds. Calendar validity is not checked.
var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const msgInvalidDateFormat = "Invalid date format. Use YYYY-MM-DD"

// jsonType names the JSON type of a raw value using the vocabulary of the
// intake form's error messages.
func jsonType(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "undefined"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func expected(want string, raw json.RawMessage) string {
	return fmt.Sprintf("Expected %s, received %s", want, jsonType(raw))
}

// parseDocument checks that data is well-formed JSON before any field is read.
func parseDocument(data []byte, is issues) (json.RawMessage, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		is.add("", msgRequired)
		return nil, false
	}
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		is.add("", "Malformed JSON: "+err.Error())
		return nil, false
	}
	return json.RawMessage(data), true
}

// object reads the members of one JSON object, recording problems in its issues scope.
type object struct {
	fields map[string]json.RawMessage
	is     issues
}

func decodeObject(raw json.RawMessage, is issues) (*object, bool) {
	if jsonType(raw) == "undefined" {
		is.add("", msgRequired)
		return nil, false
	}
	if jsonType(raw) != "object" {
		is.add("", expected("object", raw))
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		is.add("", "Malformed JSON: "+err.Error())
		return nil, false
	}
	return &object{fields: fields, is: is}, true
}

// keys returns the member names in sorted order so reports are deterministic.
func (o *object) keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// member returns a required member, recording "Required" when it is absent.
func (o *object) member(name string) (json.RawMessage, bool) {
	raw, ok := o.fields[name]
	if !ok {
		o.is.add(name, msgRequired)
		return nil, false
	}
	return raw, true
}

func (o *object) number(name string) (float64, bool) {
	raw, ok := o.member(name)
	if !ok {
		return 0, false
	}
	return readNumber(raw, o.is.at(name))
}

// optNumber reads an optional number; absent members yield nil.
func (o *object) optNumber(name string) *float64 {
	raw, ok := o.fields[name]
	if !ok {
		return nil
	}
	v, ok := readNumber(raw, o.is.at(name))
	if !ok {
		return nil
	}
	return &v
}

func (o *object) str(name string) (string, bool) {
	raw, ok := o.member(name)
	if !ok {
		return "", false
	}
	return readString(raw, o.is.at(name))
}

func (o *object) boolean(name string) (bool, bool) {
	raw, ok := o.member(name)
	if !ok {
		return false, false
	}
	var v bool
	if jsonType(raw) != "boolean" || json.Unmarshal(raw, &v) != nil {
		o.is.add(name, expected("boolean", raw))
		return false, false
	}
	return v, true
}

// dateString reads a required YYYY-MM-DD string.
func (o *object) dateString(name string) string {
	v, ok := o.str(name)
	if ok {
		checkDateString(o.is, name, v)
	}
	return v
}

func checkDateString(is issues, name, v string) {
	if !isoDateRe.MatchString(v) {
		is.add(name, msgInvalidDateFormat)
	}
}

func readNumber(raw json.RawMessage, is issues) (float64, bool) {
	if jsonType(raw) != "number" {
		is.add("", expected("number", raw))
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		is.add("", "Number must be finite")
		return 0, false
	}
	return v, true
}

func readString(raw json.RawMessage, is issues) (string, bool) {
	if jsonType(raw) != "string" {
		is.add("", expected("string", raw))
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		is.add("", expected("string", raw))
		return "", false
	}
	return v, true
}

func decodeArray(raw json.RawMessage, is issues) ([]json.RawMessage, bool) {
	if jsonType(raw) != "array" {
		is.add("", expected("array", raw))
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		is.add("", "Malformed JSON: "+err.Error())
		return nil, false
	}
	return items, true
}

// Range checks shared by the typed Validate methods and the decoders.

func checkFinite(is issues, name string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		is.add(name, "Number must be finite")
		return false
	}
	return true
}

func checkMin(is issues, name string, v, low float64, msg string) {
	if v < low {
		if msg == "" {
			msg = fmt.Sprintf("Number must be greater than or equal to %g", low)
		}
		is.add(name, msg)
	}
}

func checkMax(is issues, name string, v, high float64, msg string) {
	if v > high {
		if msg == "" {
			msg = fmt.Sprintf("Number must be less than or equal to %g", high)
		}
		is.add(name, msg)
	}
}
