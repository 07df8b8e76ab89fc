package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const msgInvalidDate = "Invalid date"

// BillingDate is a calendar instant on a raw meter reading. Midnight UTC values
// travel as YYYY-MM-DD; anything else as RFC 3339.
type BillingDate struct {
	time.Time
}

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) BillingDate {
	return BillingDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ErrZeroBillingDate rejects 0001-01-01T00:00:00Z, the instant BillingDate
// uses for "unset".
var ErrZeroBillingDate = errors.New("billing date is the zero instant")

// ParseBillingDate accepts YYYY-MM-DD or RFC 3339 and rejects impossible dates
// and the zero instant.
func ParseBillingDate(s string) (BillingDate, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return BillingDate{}, fmt.Errorf("parse billing date %q: %w", s, err)
		}
	}
	if t.IsZero() {
		return BillingDate{}, fmt.Errorf("parse billing date %q: %w", s, ErrZeroBillingDate)
	}
	return BillingDate{t}, nil
}

// Equal compares instants, ignoring location. go-cmp uses it.
func (d BillingDate) Equal(other BillingDate) bool { return d.Time.Equal(other.Time) }

func (d BillingDate) dateOnly() bool {
	return d.Location() == time.UTC && d.Time.Equal(d.Truncate(24*time.Hour))
}

func (d BillingDate) String() string {
	if d.dateOnly() {
		return d.Format(time.DateOnly)
	}
	return d.Format(time.RFC3339Nano)
}

// MarshalJSON fails for the zero date, which never passes validation.
func (d BillingDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("marshal billing date: %s", msgInvalidDate)
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the same forms as ParseBillingDate.
func (d *BillingDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("billing date: %w", err)
	}
	parsed, err := ParseBillingDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func readBillingDate(raw json.RawMessage, is issues) (BillingDate, bool) {
	s, ok := readString(raw, is)
	if !ok {
		return BillingDate{}, false
	}
	d, err := ParseBillingDate(s)
	if err != nil {
		is.add("", msgInvalidDate)
		return BillingDate{}, false
	}
	return d, true
}

// RawBillingRecord is one meter-reading period before the rules engine
// classifies it. UsageQuantity is in therms or ccf depending on the fuel.
type RawBillingRecord struct {
	PeriodStartDate   BillingDate     `json:"periodStartDate"`
	PeriodEndDate     BillingDate     `json:"periodEndDate"`
	UsageQuantity     float64         `json:"usageQuantity"`
	InclusionOverride IncludeDecision `json:"inclusionOverride"`
}

// Inverted reports a period whose start is after its end. Validation does not
// reject these; callers decide how to surface them.
func (r RawBillingRecord) Inverted() bool {
	return r.PeriodStartDate.After(r.PeriodEndDate.Time)
}

// ValidateRawBillingRecord validates one raw billing record document.
func ValidateRawBillingRecord(data []byte) (RawBillingRecord, error) {
	is := newIssues()
	var r RawBillingRecord
	if raw, ok := parseDocument(data, is); ok {
		r = decodeRawBillingRecord(raw, is)
	}
	return r, is.result(KindContract, SchemaRawBillingRecord)
}

func decodeRawBillingRecord(raw json.RawMessage, is issues) RawBillingRecord {
	var r RawBillingRecord
	o, ok := decodeObject(raw, is)
	if !ok {
		return r
	}
	if v, ok := o.member("periodStartDate"); ok {
		r.PeriodStartDate, _ = readBillingDate(v, is.at("periodStartDate"))
	}
	if v, ok := o.member("periodEndDate"); ok {
		r.PeriodEndDate, _ = readBillingDate(v, is.at("periodEndDate"))
	}
	o.numberInto("usageQuantity", &r.UsageQuantity)
	if v, ok := o.member("inclusionOverride"); ok {
		r.InclusionOverride, _ = readIncludeDecision(v, is.at("inclusionOverride"))
	}
	return r
}

// Validate re-checks an already decoded record.
func (r RawBillingRecord) Validate() error {
	is := newIssues()
	r.check(is)
	return is.result(KindContract, SchemaRawBillingRecord)
}

func (r RawBillingRecord) check(is issues) {
	if r.PeriodStartDate.IsZero() {
		is.add("periodStartDate", msgInvalidDate)
	}
	if r.PeriodEndDate.IsZero() {
		is.add("periodEndDate", msgInvalidDate)
	}
	checkNumber(is, "usageQuantity", r.UsageQuantity)
	checkIncludeDecision(is, "inclusionOverride", r.InclusionOverride)
}

// Bundle keys. No other key is accepted.
const (
	keyOverallStartDate = "overall_start_date"
	keyOverallEndDate   = "overall_end_date"
	keyRecords          = "records"
)

var bundleKeys = []string{keyOverallStartDate, keyOverallEndDate, keyRecords}

// RawUsageBundle (NaturalGasUsage) is one utility account's billing history.
type RawUsageBundle struct {
	OverallStartDate string             `json:"overall_start_date"`
	OverallEndDate   string             `json:"overall_end_date"`
	Records          []RawBillingRecord `json:"records"`
}

// ValidateRawUsageBundle validates a bundle, reporting every invalid record
// with its index.
func ValidateRawUsageBundle(data []byte) (RawUsageBundle, error) {
	is := newIssues()
	var b RawUsageBundle
	if raw, ok := parseDocument(data, is); ok {
		b = decodeRawUsageBundle(raw, is)
	}
	return b, is.result(KindContract, SchemaNaturalGasUsage)
}

func decodeRawUsageBundle(raw json.RawMessage, is issues) RawUsageBundle {
	var b RawUsageBundle
	o, ok := decodeObject(raw, is)
	if !ok {
		return b
	}
	for _, k := range o.keys() {
		if !isBundleKey(k) {
			is.add(k, fmt.Sprintf("Unrecognized key '%s'. Expected 'overall_start_date' | 'overall_end_date' | 'records'", k))
		}
	}
	b.OverallStartDate = o.dateString(keyOverallStartDate)
	b.OverallEndDate = o.dateString(keyOverallEndDate)
	if v, ok := o.member(keyRecords); ok {
		b.Records = decodeRawBillingRecords(v, is.at(keyRecords))
	}
	return b
}

func decodeRawBillingRecords(raw json.RawMessage, is issues) []RawBillingRecord {
	items, ok := decodeArray(raw, is)
	if !ok {
		return nil
	}
	records := make([]RawBillingRecord, len(items))
	for i, item := range items {
		records[i] = decodeRawBillingRecord(item, is.index(i))
	}
	return records
}

func isBundleKey(k string) bool {
	for _, b := range bundleKeys {
		if k == b {
			return true
		}
	}
	return false
}

// Validate re-checks the bundle bounds and every record.
func (b RawUsageBundle) Validate() error {
	is := newIssues()
	checkDateString(is, keyOverallStartDate, b.OverallStartDate)
	checkDateString(is, keyOverallEndDate, b.OverallEndDate)
	for i, r := range b.Records {
		r.check(is.at(keyRecords).index(i))
	}
	return is.result(KindContract, SchemaNaturalGasUsage)
}

// MarshalJSON always writes records as an array so the output re-validates.
func (b RawUsageBundle) MarshalJSON() ([]byte, error) {
	type alias RawUsageBundle
	if b.Records == nil {
		b.Records = []RawBillingRecord{}
	}
	return json.Marshal(alias(b))
}

// InvertedRecords returns the indices of records whose start is after their end.
func (b RawUsageBundle) InvertedRecords() []int {
	var idx []int
	for i, r := range b.Records {
		if r.Inverted() {
			idx = append(idx, i)
		}
	}
	return idx
}
