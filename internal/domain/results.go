package domain

import "encoding/json"

// ProcessedEnergyBill is one billing period after the rules engine classified it.
// InclusionOverride is the user's toggle; DefaultInclusion is the engine's own
// decision. Both are kept so the two can be shown side by side.
type ProcessedEnergyBill struct {
	PeriodStartDate       string       `json:"period_start_date"`
	PeriodEndDate         string       `json:"period_end_date"`
	Usage                 float64      `json:"usage"`
	InclusionOverride     bool         `json:"inclusion_override"`
	AnalysisType          AnalysisType `json:"analysis_type"`
	DefaultInclusion      bool         `json:"default_inclusion"`
	EliminatedAsOutlier   bool         `json:"eliminated_as_outlier"`
	WholeHomeHeatLossRate float64      `json:"whole_home_heat_loss_rate"`
}

// ValidateProcessedBill validates one processed bill document.
func ValidateProcessedBill(data []byte) (ProcessedEnergyBill, error) {
	is := newIssues()
	var b ProcessedEnergyBill
	if raw, ok := parseDocument(data, is); ok {
		b = decodeProcessedBill(raw, is)
	}
	return b, is.result(KindContract, SchemaProcessedEnergyBill)
}

// ValidateProcessedBills validates a list of processed bills, collecting the
// errors of every element. On failure the decoded elements are returned with
// the error, as every validator does.
func ValidateProcessedBills(data []byte) ([]ProcessedEnergyBill, error) {
	is := newIssues()
	var bills []ProcessedEnergyBill
	if raw, ok := parseDocument(data, is); ok {
		bills = decodeProcessedBills(raw, is)
	}
	return bills, is.result(KindContract, SchemaProcessedEnergyBills)
}

func decodeProcessedBill(raw json.RawMessage, is issues) ProcessedEnergyBill {
	var b ProcessedEnergyBill
	o, ok := decodeObject(raw, is)
	if !ok {
		return b
	}
	o.strInto("period_start_date", &b.PeriodStartDate)
	o.strInto("period_end_date", &b.PeriodEndDate)
	o.numberInto("usage", &b.Usage)
	o.boolInto("inclusion_override", &b.InclusionOverride)
	if v, ok := o.member("analysis_type"); ok {
		b.AnalysisType, _ = readAnalysisType(v, is.at("analysis_type"))
	}
	o.boolInto("default_inclusion", &b.DefaultInclusion)
	o.boolInto("eliminated_as_outlier", &b.EliminatedAsOutlier)
	o.numberInto("whole_home_heat_loss_rate", &b.WholeHomeHeatLossRate)
	return b
}

func decodeProcessedBills(raw json.RawMessage, is issues) []ProcessedEnergyBill {
	items, ok := decodeArray(raw, is)
	if !ok {
		return nil
	}
	bills := make([]ProcessedEnergyBill, len(items))
	for i, item := range items {
		bills[i] = decodeProcessedBill(item, is.index(i))
	}
	return bills
}

// Validate re-checks an already decoded bill.
func (b ProcessedEnergyBill) Validate() error {
	is := newIssues()
	b.check(is)
	return is.result(KindContract, SchemaProcessedEnergyBill)
}

func (b ProcessedEnergyBill) check(is issues) {
	checkNumber(is, "usage", b.Usage)
	checkAnalysisType(is, "analysis_type", b.AnalysisType)
	checkNumber(is, "whole_home_heat_loss_rate", b.WholeHomeHeatLossRate)
}

// SummaryOutput is the heat_load_output of one analysis run. Only the design
// temperature carries a bound.
type SummaryOutput struct {
	EstimatedBalancePoint           float64 `json:"estimated_balance_point"`
	OtherFuelUsage                  float64 `json:"other_fuel_usage"`
	AverageIndoorTemperature        float64 `json:"average_indoor_temperature"`
	DifferenceBetweenTiAndTbp       float64 `json:"difference_between_ti_and_tbp"`
	DesignTemperature               float64 `json:"design_temperature"` // °F
	WholeHomeHeatLossRate           float64 `json:"whole_home_heat_loss_rate"`
	StandardDeviationOfHeatLossRate float64 `json:"standard_deviation_of_heat_loss_rate"`
	AverageHeatLoad                 float64 `json:"average_heat_load"`
	MaximumHeatLoad                 float64 `json:"maximum_heat_load"`
}

var designTemperatureRules = []numberRule{atMost(50, ""), atLeast(-50, "")}

// ValidateSummaryOutput validates a heat_load_output document.
func ValidateSummaryOutput(data []byte) (SummaryOutput, error) {
	is := newIssues()
	var s SummaryOutput
	if raw, ok := parseDocument(data, is); ok {
		s = decodeSummaryOutput(raw, is)
	}
	return s, is.result(KindContract, SchemaSummaryOutput)
}

func decodeSummaryOutput(raw json.RawMessage, is issues) SummaryOutput {
	var s SummaryOutput
	o, ok := decodeObject(raw, is)
	if !ok {
		return s
	}
	o.numberInto("estimated_balance_point", &s.EstimatedBalancePoint)
	o.numberInto("other_fuel_usage", &s.OtherFuelUsage)
	o.numberInto("average_indoor_temperature", &s.AverageIndoorTemperature)
	o.numberInto("difference_between_ti_and_tbp", &s.DifferenceBetweenTiAndTbp)
	o.numberInto("design_temperature", &s.DesignTemperature, designTemperatureRules...)
	o.numberInto("whole_home_heat_loss_rate", &s.WholeHomeHeatLossRate)
	o.numberInto("standard_deviation_of_heat_loss_rate", &s.StandardDeviationOfHeatLossRate)
	o.numberInto("average_heat_load", &s.AverageHeatLoad)
	o.numberInto("maximum_heat_load", &s.MaximumHeatLoad)
	return s
}

// Validate re-checks an already decoded summary.
func (s SummaryOutput) Validate() error {
	is := newIssues()
	s.check(is)
	return is.result(KindContract, SchemaSummaryOutput)
}

func (s SummaryOutput) check(is issues) {
	checkNumber(is, "estimated_balance_point", s.EstimatedBalancePoint)
	checkNumber(is, "other_fuel_usage", s.OtherFuelUsage)
	checkNumber(is, "average_indoor_temperature", s.AverageIndoorTemperature)
	checkNumber(is, "difference_between_ti_and_tbp", s.DifferenceBetweenTiAndTbp)
	checkNumber(is, "design_temperature", s.DesignTemperature, designTemperatureRules...)
	checkNumber(is, "whole_home_heat_loss_rate", s.WholeHomeHeatLossRate)
	checkNumber(is, "standard_deviation_of_heat_loss_rate", s.StandardDeviationOfHeatLossRate)
	checkNumber(is, "average_heat_load", s.AverageHeatLoad)
	checkNumber(is, "maximum_heat_load", s.MaximumHeatLoad)
}

// BalancePointGraphRecord is one point of the balance-point sensitivity curve.
type BalancePointGraphRecord struct {
	BalancePoint                float64 `json:"balance_point"`
	HeatLossRate                float64 `json:"heat_loss_rate"`
	ChangeInHeatLossRate        float64 `json:"change_in_heat_loss_rate"`
	PercentChangeInHeatLossRate float64 `json:"percent_change_in_heat_loss_rate"`
	StandardDeviation           float64 `json:"standard_deviation"`
}

type BalancePointGraph struct {
	Records []BalancePointGraphRecord `json:"records"`
}

// ValidateBalancePointGraph validates a graph and each of its records.
func ValidateBalancePointGraph(data []byte) (BalancePointGraph, error) {
	is := newIssues()
	var g BalancePointGraph
	if raw, ok := parseDocument(data, is); ok {
		g = decodeBalancePointGraph(raw, is)
	}
	return g, is.result(KindContract, SchemaBalancePointGraph)
}

func decodeBalancePointGraph(raw json.RawMessage, is issues) BalancePointGraph {
	var g BalancePointGraph
	o, ok := decodeObject(raw, is)
	if !ok {
		return g
	}
	v, ok := o.member("records")
	if !ok {
		return g
	}
	items, ok := decodeArray(v, is.at("records"))
	if !ok {
		return g
	}
	g.Records = make([]BalancePointGraphRecord, len(items))
	for i, item := range items {
		g.Records[i] = decodeBalancePointGraphRecord(item, is.at("records").index(i))
	}
	return g
}

func decodeBalancePointGraphRecord(raw json.RawMessage, is issues) BalancePointGraphRecord {
	var r BalancePointGraphRecord
	o, ok := decodeObject(raw, is)
	if !ok {
		return r
	}
	o.numberInto("balance_point", &r.BalancePoint)
	o.numberInto("heat_loss_rate", &r.HeatLossRate)
	o.numberInto("change_in_heat_loss_rate", &r.ChangeInHeatLossRate)
	o.numberInto("percent_change_in_heat_loss_rate", &r.PercentChangeInHeatLossRate)
	o.numberInto("standard_deviation", &r.StandardDeviation)
	return r
}

// Validate re-checks every record of the graph.
func (g BalancePointGraph) Validate() error {
	is := newIssues()
	g.check(is)
	return is.result(KindContract, SchemaBalancePointGraph)
}

func (g BalancePointGraph) check(is issues) {
	for i, r := range g.Records {
		ris := is.at("records").index(i)
		checkNumber(ris, "balance_point", r.BalancePoint)
		checkNumber(ris, "heat_loss_rate", r.HeatLossRate)
		checkNumber(ris, "change_in_heat_loss_rate", r.ChangeInHeatLossRate)
		checkNumber(ris, "percent_change_in_heat_loss_rate", r.PercentChangeInHeatLossRate)
		checkNumber(ris, "standard_deviation", r.StandardDeviation)
	}
}

// MarshalJSON writes records as an array even when empty.
func (g BalancePointGraph) MarshalJSON() ([]byte, error) {
	type alias BalancePointGraph
	if g.Records == nil {
		g.Records = []BalancePointGraphRecord{}
	}
	return json.Marshal(alias(g))
}

// UsageData is the envelope the rules engine hands to presentation consumers.
type UsageData struct {
	HeatLoadOutput       SummaryOutput         `json:"heat_load_output"`
	BalancePointGraph    BalancePointGraph     `json:"balance_point_graph"`
	ProcessedEnergyBills []ProcessedEnergyBill `json:"processed_energy_bills"`
}

// ValidateUsageData validates the envelope and the three results it carries.
func ValidateUsageData(data []byte) (UsageData, error) {
	is := newIssues()
	var u UsageData
	if raw, ok := parseDocument(data, is); ok {
		u = decodeUsageData(raw, is)
	}
	return u, is.result(KindContract, SchemaUsageData)
}

func decodeUsageData(raw json.RawMessage, is issues) UsageData {
	var u UsageData
	o, ok := decodeObject(raw, is)
	if !ok {
		return u
	}
	if v, ok := o.member("heat_load_output"); ok {
		u.HeatLoadOutput = decodeSummaryOutput(v, is.at("heat_load_output"))
	}
	if v, ok := o.member("balance_point_graph"); ok {
		u.BalancePointGraph = decodeBalancePointGraph(v, is.at("balance_point_graph"))
	}
	if v, ok := o.member("processed_energy_bills"); ok {
		u.ProcessedEnergyBills = decodeProcessedBills(v, is.at("processed_energy_bills"))
	}
	return u
}

// Validate re-checks all nested results.
func (u UsageData) Validate() error {
	is := newIssues()
	u.HeatLoadOutput.check(is.at("heat_load_output"))
	u.BalancePointGraph.check(is.at("balance_point_graph"))
	for i, b := range u.ProcessedEnergyBills {
		b.check(is.at("processed_energy_bills").index(i))
	}
	return is.result(KindContract, SchemaUsageData)
}

// MarshalJSON writes empty collections as arrays so the output re-validates.
func (u UsageData) MarshalJSON() ([]byte, error) {
	type alias UsageData
	if u.ProcessedEnergyBills == nil {
		u.ProcessedEnergyBills = []ProcessedEnergyBill{}
	}
	return json.Marshal(alias(u))
}
