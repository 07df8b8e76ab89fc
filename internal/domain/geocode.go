package domain

import (
	"context"
	"log/slog"
)

// Geocode sources reported on a LocationCheck.
const (
	GeoSourceForward  = "forward"
	GeoSourceNotFound = "not_found"
	GeoSourceFailed   = "failed"
)

// LocationCheck is the outcome of resolving a validated Location.
type LocationCheck struct {
	Query            string  `json:"query"`
	Matched          bool    `json:"matched"`
	Lat              float64 `json:"lat,omitempty"`
	Lon              float64 `json:"lon,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Source           string  `json:"source"`
}

// VerifyLocation geocodes the address. A Location is never invalidated by the
// result; failures degrade to Source "failed" so the caller can still proceed.
func VerifyLocation(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) LocationCheck {
	check := LocationCheck{Query: loc.Query()}
	if check.Query == "" {
		check.Source = GeoSourceNotFound
		return check
	}

	result, err := geocoder.ForwardGeocode(ctx, check.Query)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"query", check.Query,
			"error", err,
		)
		check.Source = GeoSourceFailed
		return check
	}
	if result.Lat == 0 && result.Lon == 0 {
		check.Source = GeoSourceNotFound
		return check
	}

	check.Matched = true
	check.Lat = result.Lat
	check.Lon = result.Lon
	check.FormattedAddress = result.FormattedAddress
	check.Confidence = result.Confidence
	check.Source = GeoSourceForward
	return check
}
