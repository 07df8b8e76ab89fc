package domain

import (
	"errors"
	"fmt"
	"sort"
)

// SchemaName identifies a document shape on the wire (Kafka "schema" header,
// HTTP path segment, CLI flag).
type SchemaName string

const (
	SchemaHome                 SchemaName = "home"
	SchemaLocation             SchemaName = "location"
	SchemaCase                 SchemaName = "case"
	SchemaEnergyUseUpload      SchemaName = "energy_use_upload"
	SchemaNaturalGasUsage      SchemaName = "natural_gas_usage"
	SchemaRawBillingRecord     SchemaName = "raw_billing_record"
	SchemaProcessedEnergyBill  SchemaName = "processed_energy_bill"
	SchemaProcessedEnergyBills SchemaName = "processed_energy_bills"
	SchemaSummaryOutput        SchemaName = "summary_output"
	SchemaBalancePointGraph    SchemaName = "balance_point_graph"
	SchemaUsageData            SchemaName = "usage_data"
)

// ErrUnknownSchema is returned for schema names outside the registry.
var ErrUnknownSchema = errors.New("unknown schema")

// Schema binds a name to its validator and error kind.
type Schema struct {
	Name     SchemaName
	Kind     ErrorKind
	validate func([]byte) (any, error)
}

// Validate returns the normalized value or a *ValidationError.
func (s Schema) Validate(data []byte) (any, error) {
	return s.validate(data)
}

func adapt[T any](f func([]byte) (T, error)) func([]byte) (any, error) {
	return func(data []byte) (any, error) {
		v, err := f(data)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var registry = map[SchemaName]Schema{
	SchemaHome:                 {SchemaHome, KindInput, adapt(ValidateHome)},
	SchemaLocation:             {SchemaLocation, KindInput, adapt(ValidateLocation)},
	SchemaCase:                 {SchemaCase, KindInput, adapt(ValidateCase)},
	SchemaEnergyUseUpload:      {SchemaEnergyUseUpload, KindInput, adapt(ValidateUploadForm)},
	SchemaNaturalGasUsage:      {SchemaNaturalGasUsage, KindContract, adapt(ValidateRawUsageBundle)},
	SchemaRawBillingRecord:     {SchemaRawBillingRecord, KindContract, adapt(ValidateRawBillingRecord)},
	SchemaProcessedEnergyBill:  {SchemaProcessedEnergyBill, KindContract, adapt(ValidateProcessedBill)},
	SchemaProcessedEnergyBills: {SchemaProcessedEnergyBills, KindContract, adapt(ValidateProcessedBills)},
	SchemaSummaryOutput:        {SchemaSummaryOutput, KindContract, adapt(ValidateSummaryOutput)},
	SchemaBalancePointGraph:    {SchemaBalancePointGraph, KindContract, adapt(ValidateBalancePointGraph)},
	SchemaUsageData:            {SchemaUsageData, KindContract, adapt(ValidateUsageData)},
}

// LookupSchema finds a registered schema by name.
func LookupSchema(name string) (Schema, bool) {
	s, ok := registry[SchemaName(name)]
	return s, ok
}

// SchemaNames lists every registered schema in sorted order.
func SchemaNames() []SchemaName {
	names := make([]SchemaName, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate runs the named schema against data.
func Validate(name SchemaName, data []byte) (any, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return s.Validate(data)
}
