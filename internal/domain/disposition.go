package domain

import "fmt"

// Disposition is where a processed billing period ends up in aggregation.
type Disposition int

const (
	DispositionExcluded Disposition = iota
	DispositionHeating
	DispositionNonHeating
)

func (d Disposition) String() string {
	switch d {
	case DispositionHeating:
		return "heating"
	case DispositionNonHeating:
		return "non_heating"
	default:
		return "excluded"
	}
}

// Included reports the final inclusion decision: the user's override flips the
// engine's default.
func (b ProcessedEnergyBill) Included() bool {
	return b.DefaultInclusion != b.InclusionOverride
}

// Disposition classifies the bill for aggregation. Shoulder-season periods are
// always excluded, whatever the inclusion flags say.
func (b ProcessedEnergyBill) Disposition() Disposition {
	if !b.Included() {
		return DispositionExcluded
	}
	switch b.AnalysisType {
	case AllowedHeatingUsage:
		return DispositionHeating
	case AllowedNonHeatingUsage:
		return DispositionNonHeating
	default:
		return DispositionExcluded
	}
}

// Partition holds bill indices grouped by disposition, in input order.
type Partition struct {
	Heating    []int `json:"heating"`
	NonHeating []int `json:"non_heating"`
	Excluded   []int `json:"excluded"`
}

// PartitionForAggregation groups bills by their disposition.
func PartitionForAggregation(bills []ProcessedEnergyBill) Partition {
	p := Partition{Heating: []int{}, NonHeating: []int{}, Excluded: []int{}}
	for i, b := range bills {
		switch b.Disposition() {
		case DispositionHeating:
			p.Heating = append(p.Heating, i)
		case DispositionNonHeating:
			p.NonHeating = append(p.NonHeating, i)
		default:
			p.Excluded = append(p.Excluded, i)
		}
	}
	return p
}

// InvertedPeriods returns the indices of bills whose start date parses and is
// after their end date. Unparseable dates are not reported here.
func InvertedPeriods(bills []ProcessedEnergyBill) []int {
	var idx []int
	for i, b := range bills {
		start, err1 := ParseBillingDate(b.PeriodStartDate)
		end, err2 := ParseBillingDate(b.PeriodEndDate)
		if err1 == nil && err2 == nil && start.After(end.Time) {
			idx = append(idx, i)
		}
	}
	return idx
}

const msgInvertedPeriod = "Period start date is after period end date"

// Warnings lists non-fatal findings on an already validated value. Inverted
// billing periods are reported here instead of failing validation.
func Warnings(v any) []FieldError {
	var out []FieldError
	switch val := v.(type) {
	case RawUsageBundle:
		for _, i := range val.InvertedRecords() {
			out = append(out, FieldError{Path: fmt.Sprintf("records[%d]", i), Message: msgInvertedPeriod})
		}
	case RawBillingRecord:
		if val.Inverted() {
			out = append(out, FieldError{Message: msgInvertedPeriod})
		}
	case ProcessedEnergyBill:
		if len(InvertedPeriods([]ProcessedEnergyBill{val})) > 0 {
			out = append(out, FieldError{Message: msgInvertedPeriod})
		}
	case []ProcessedEnergyBill:
		for _, i := range InvertedPeriods(val) {
			out = append(out, FieldError{Path: fmt.Sprintf("[%d]", i), Message: msgInvertedPeriod})
		}
	case UsageData:
		for _, i := range InvertedPeriods(val.ProcessedEnergyBills) {
			out = append(out, FieldError{Path: fmt.Sprintf("processed_energy_bills[%d]", i), Message: msgInvertedPeriod})
		}
	}
	return out
}
