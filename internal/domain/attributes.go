package domain

import (
	"context"
	"errors"
	"log/slog"
)

// LookupAttributes fetches location attributes with graceful degradation.
// A nil provider or a not-found response yields empty attributes tagged
// SourceFallback; scorers then substitute their documented defaults. Any other
// provider error is an upstream failure and is returned.
func LookupAttributes(ctx context.Context, g Geo, provider LocationAttributeProvider, logger *slog.Logger) (LocationAttributes, DataSource, error) {
	if provider == nil {
		return LocationAttributes{}, SourceFallback, nil
	}

	attrs, err := provider.Attributes(ctx, g)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("location attributes not found, using defaults",
				"lat", g.Lat,
				"lon", g.Lon,
			)
			return LocationAttributes{}, SourceFallback, nil
		}
		return LocationAttributes{}, "", err
	}
	return attrs, SourceReal, nil
}
