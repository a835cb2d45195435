// Package indicator turns raw climate and geospatial series into per-period
// hazard intensity indicators.
//
// Every extractor is a pure function of its inputs. Extractors return a
// *domain.DataError when input is missing or unusable; samples that cannot be
// computed are emitted as NaN so the bin estimator skips them. Deciding on a
// fallback is left to the caller.
package indicator
