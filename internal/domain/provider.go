package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by providers when the requested data does not exist.
// Callers treat it as missing data and apply fallbacks; any other provider
// error is an upstream failure.
var ErrNotFound = errors.New("not found")

// ClimateSeriesProvider supplies climate time series and storm tracks.
type ClimateSeriesProvider interface {
	// Series returns the ordered samples of one variable for one scenario.
	Series(ctx context.Context, q SeriesQuery) (Series, error)

	// StormTracks returns historical cyclone track points near a location.
	StormTracks(ctx context.Context, q TrackQuery) ([]TrackPoint, error)
}

// LocationAttributeProvider supplies building and spatial attributes for a point.
type LocationAttributeProvider interface {
	Attributes(ctx context.Context, g Geo) (LocationAttributes, error)
}

// PersistenceSink stores hazard results with an idempotent upsert keyed by
// (location, hazard, scenario, year).
type PersistenceSink interface {
	Upsert(ctx context.Context, results []HazardResult) error
}
