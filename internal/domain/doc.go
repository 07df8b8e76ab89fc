// Package domain defines the data contract of the residential heat-load
// analysis pipeline and the validators that enforce it.
//
// # Document groups
//
// Intake documents come from the user-facing form: [Home], [Location], [Case]
// and the energy use upload ([UploadForm]). Their failures are
// [KindInput] errors the user can fix.
//
// Rules-engine documents come from the analysis service: the raw usage bundle
// ([RawUsageBundle], also called NaturalGasUsage), [ProcessedEnergyBill],
// [SummaryOutput], [BalancePointGraph] and the [UsageData] envelope that
// composes the three results. Their failures are [KindContract] errors and
// point at an upstream defect.
//
// # Wire conventions
//
// Bundle bounds are YYYY-MM-DD strings checked by pattern only, so
// "2024-13-01" passes. Raw record dates are real calendar instants.
//
// Classification codes are numeric on the wire:
//
//	inclusionOverride (raw records)   0 Include | 1 Do not include | 2 Include in other analysis
//	analysis_type (processed bills)   1 heating (winter) | -1 non-heating (summer) | 0 shoulder
//
// # Error collection
//
// Every validator collects all failures before returning. List elements are
// reported with their index, e.g. "records[3].usageQuantity". The upload field
// is the exception: any rejected value yields the single
// message [UploadRequiredMessage].
//
// # Inverted periods
//
// A billing period whose start date is after its end date is not rejected.
// [Warnings] reports it so ingestion can log and count it.
package domain
