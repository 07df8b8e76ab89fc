package domain

import "encoding/json"

// Home describes the building being analyzed, as entered on the intake form.
// LivingArea is in square feet. HeatingSystemEfficiency is a decimal fraction
// (0.85), never a percentage.
type Home struct {
	LivingArea                      float64  `json:"living_area"`
	FuelType                        FuelType `json:"fuel_type"`
	DesignTemperatureOverride       *float64 `json:"design_temperature_override,omitempty"`
	HeatingSystemEfficiency         float64  `json:"heating_system_efficiency"`
	ThermostatSetPoint              float64  `json:"thermostat_set_point"`
	SetbackTemperature              *float64 `json:"setback_temperature,omitempty"`
	SetbackHoursPerDay              *float64 `json:"setback_hours_per_day,omitempty"`
	NumberOfOccupants               float64  `json:"numberOfOccupants"`
	EstimatedWaterHeatingEfficiency float64  `json:"estimatedWaterHeatingEfficiency"`
	StandByLosses                   float64  `json:"standByLosses"`
}

const (
	msgEfficiencyLow  = "Efficiency must be at least 60%"
	msgEfficiencyHigh = "Efficiency cannot exceed 100%"
)

var (
	livingAreaRules = []numberRule{atLeast(500, ""), atMost(10000, "")}
	efficiencyRules = []numberRule{atLeast(0.6, msgEfficiencyLow), atMost(1, msgEfficiencyHigh)}
)

// ValidateHome decodes and range-checks a Home document.
func ValidateHome(data []byte) (Home, error) {
	is := newIssues()
	var h Home
	if raw, ok := parseDocument(data, is); ok {
		h = decodeHome(raw, is)
	}
	return h, is.result(KindInput, SchemaHome)
}

func decodeHome(raw json.RawMessage, is issues) Home {
	var h Home
	o, ok := decodeObject(raw, is)
	if !ok {
		return h
	}
	o.numberInto("living_area", &h.LivingArea, livingAreaRules...)
	if v, ok := o.str("fuel_type"); ok {
		h.FuelType = FuelType(v)
		checkFuelType(is, "fuel_type", h.FuelType)
	}
	o.optNumberInto("design_temperature_override", &h.DesignTemperatureOverride)
	o.numberInto("heating_system_efficiency", &h.HeatingSystemEfficiency, efficiencyRules...)
	o.numberInto("thermostat_set_point", &h.ThermostatSetPoint)
	o.optNumberInto("setback_temperature", &h.SetbackTemperature)
	o.optNumberInto("setback_hours_per_day", &h.SetbackHoursPerDay)
	o.numberInto("numberOfOccupants", &h.NumberOfOccupants)
	o.numberInto("estimatedWaterHeatingEfficiency", &h.EstimatedWaterHeatingEfficiency)
	o.numberInto("standByLosses", &h.StandByLosses)
	return h
}

// Validate applies the same rules as ValidateHome to a value built in Go.
func (h Home) Validate() error {
	is := newIssues()
	h.check(is)
	return is.result(KindInput, SchemaHome)
}

func (h Home) check(is issues) {
	checkNumber(is, "living_area", h.LivingArea, livingAreaRules...)
	checkFuelType(is, "fuel_type", h.FuelType)
	checkOptNumber(is, "design_temperature_override", h.DesignTemperatureOverride)
	checkNumber(is, "heating_system_efficiency", h.HeatingSystemEfficiency, efficiencyRules...)
	checkNumber(is, "thermostat_set_point", h.ThermostatSetPoint)
	checkOptNumber(is, "setback_temperature", h.SetbackTemperature)
	checkOptNumber(is, "setback_hours_per_day", h.SetbackHoursPerDay)
	checkNumber(is, "numberOfOccupants", h.NumberOfOccupants)
	checkNumber(is, "estimatedWaterHeatingEfficiency", h.EstimatedWaterHeatingEfficiency)
	checkNumber(is, "standByLosses", h.StandByLosses)
}

// Location is the street address of the home.
type Location struct {
	StreetAddress string `json:"street_address"`
	Town          string `json:"town"`
	State         string `json:"state"`
}

// ValidateLocation checks the shape of a Location document.
func ValidateLocation(data []byte) (Location, error) {
	is := newIssues()
	var loc Location
	if raw, ok := parseDocument(data, is); ok {
		if o, ok := decodeObject(raw, is); ok {
			o.strInto("street_address", &loc.StreetAddress)
			o.strInto("town", &loc.Town)
			o.strInto("state", &loc.State)
		}
	}
	return loc, is.result(KindInput, SchemaLocation)
}

// Validate always succeeds: every string, including "", is a valid component.
func (l Location) Validate() error { return nil }

// Query formats the location as a single geocoding query.
func (l Location) Query() string {
	q := l.StreetAddress
	for _, part := range []string{l.Town, l.State} {
		if part == "" {
			continue
		}
		if q != "" {
			q += ", "
		}
		q += part
	}
	return q
}

// Case groups a Home, Location and usage analysis under a label.
type Case struct {
	Name string `json:"name"`
}

// ValidateCase checks the shape of a Case document.
func ValidateCase(data []byte) (Case, error) {
	is := newIssues()
	var c Case
	if raw, ok := parseDocument(data, is); ok {
		if o, ok := decodeObject(raw, is); ok {
			o.strInto("name", &c.Name)
		}
	}
	return c, is.result(KindInput, SchemaCase)
}

// Validate always succeeds: any name, including "", is accepted.
func (c Case) Validate() error { return nil }
