package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// FuelType is the home's primary heating fuel.
type FuelType string

const (
	FuelGas     FuelType = "GAS"
	FuelOil     FuelType = "OIL"
	FuelPropane FuelType = "PROPANE"
)

// FuelTypes lists the accepted fuel types in wire order.
var FuelTypes = []FuelType{FuelGas, FuelOil, FuelPropane}

// Valid reports whether f is one of the accepted fuel types.
func (f FuelType) Valid() bool {
	switch f {
	case FuelGas, FuelOil, FuelPropane:
		return true
	}
	return false
}

func checkFuelType(is issues, name string, f FuelType) {
	if !f.Valid() {
		is.add(name, fmt.Sprintf("Invalid enum value. Expected 'GAS' | 'OIL' | 'PROPANE', received '%s'", f))
	}
}

// IncludeDecision is the user's inclusion override on a raw billing record.
//
// Wire encoding (numeric, shared with the rules engine):
//
//	0  Include
//	1  Exclude ("Do not include")
//	2  IncludeInOtherAnalysis
type IncludeDecision int

const (
	Include                IncludeDecision = 0
	Exclude                IncludeDecision = 1
	IncludeInOtherAnalysis IncludeDecision = 2
)

// Valid reports whether d is one of the three wire codes.
func (d IncludeDecision) Valid() bool {
	return d >= Include && d <= IncludeInOtherAnalysis
}

func (d IncludeDecision) String() string {
	switch d {
	case Include:
		return "Include"
	case Exclude:
		return "Do not include"
	case IncludeInOtherAnalysis:
		return "Include in other analysis"
	default:
		return fmt.Sprintf("IncludeDecision(%d)", int(d))
	}
}

// AnalysisType is the rules engine's seasonal classification of a billing period.
//
// Wire encoding (numeric, shared with the rules engine):
//
//	 1  ALLOWED_HEATING_USAGE       winter
//	-1  ALLOWED_NON_HEATING_USAGE   summer
//	 0  NOT_ALLOWED_IN_CALCULATIONS shoulder season
type AnalysisType int

const (
	AllowedHeatingUsage      AnalysisType = 1
	AllowedNonHeatingUsage   AnalysisType = -1
	NotAllowedInCalculations AnalysisType = 0
)

// Valid reports whether a is 1, -1 or 0.
func (a AnalysisType) Valid() bool {
	return a >= AllowedNonHeatingUsage && a <= AllowedHeatingUsage
}

func (a AnalysisType) String() string {
	switch a {
	case AllowedHeatingUsage:
		return "ALLOWED_HEATING_USAGE"
	case AllowedNonHeatingUsage:
		return "ALLOWED_NON_HEATING_USAGE"
	case NotAllowedInCalculations:
		return "NOT_ALLOWED_IN_CALCULATIONS"
	default:
		return fmt.Sprintf("AnalysisType(%d)", int(a))
	}
}

// readCode decodes an integral numeric code. valid reports table membership;
// table is the human-readable list used in the message.
func readCode(raw json.RawMessage, is issues, valid func(int) bool, table string) (int, bool) {
	v, ok := readNumber(raw, is)
	if !ok {
		return 0, false
	}
	if v != math.Trunc(v) || !valid(int(v)) {
		is.add("", fmt.Sprintf("Invalid code %g. Expected one of %s", v, table))
		return 0, false
	}
	return int(v), true
}

const (
	includeDecisionTable = "0 (Include) | 1 (Do not include) | 2 (Include in other analysis)"
	analysisTypeTable    = "1 (ALLOWED_HEATING_USAGE) | -1 (ALLOWED_NON_HEATING_USAGE) | 0 (NOT_ALLOWED_IN_CALCULATIONS)"
)

func readIncludeDecision(raw json.RawMessage, is issues) (IncludeDecision, bool) {
	v, ok := readCode(raw, is, func(c int) bool { return IncludeDecision(c).Valid() }, includeDecisionTable)
	return IncludeDecision(v), ok
}

func readAnalysisType(raw json.RawMessage, is issues) (AnalysisType, bool) {
	v, ok := readCode(raw, is, func(c int) bool { return AnalysisType(c).Valid() }, analysisTypeTable)
	return AnalysisType(v), ok
}

func checkIncludeDecision(is issues, name string, d IncludeDecision) {
	if !d.Valid() {
		is.add(name, fmt.Sprintf("Invalid code %d. Expected one of %s", int(d), includeDecisionTable))
	}
}

func checkAnalysisType(is issues, name string, a AnalysisType) {
	if !a.Valid() {
		is.add(name, fmt.Sprintf("Invalid code %d. Expected one of %s", int(a), analysisTypeTable))
	}
}
