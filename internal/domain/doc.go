// Package domain models physical climate risk at a geographic point.
//
// # Hazards and Scenarios
//
// Nine hazard categories are scored: extreme heat, extreme cold, drought, river
// flood, urban flood, sea-level rise, typhoon, wildfire and water stress. Each is
// evaluated for one emissions pathway (SSP1-2.6, SSP2-4.5, SSP3-7.0, SSP5-8.5,
// ordered low to high forcing) and one target year. Observed records (river
// discharge, storm tracks, water withdrawal) are queried under the "historical"
// selector, which is not a pathway.
//
// # Risk Model
//
// Risk is the product of three 0-100 factors:
//
//	H  hazard intensity, normalised from a climate indicator
//	E  exposure, from location attributes (distance to river/coast, land cover, ...)
//	V  vulnerability, from building attributes (age, structure, floors, ...)
//
//	integrated = clip(H * E * V / 10000, 0, 100)
//
// Loss is expressed as Annual Average Loss (AAL), a fraction of asset value per
// year. The indicator series is discretised into bins, each with a base damage
// rate; the bin occurrence probabilities weight those rates:
//
//	base_aal  = Σ p[i] * rate[i]
//	F_vuln    = clip(0.9 + 0.2 * V/100, 0.9, 1.1)
//	final_aal = base_aal * F_vuln * (1 - insurance_rate)
//
// # Severity Bands
//
// Every 0-100 score (H, E, V, integrated) shares one five-level scale:
//
//	≥80 Very High | ≥60 High | ≥40 Medium | ≥20 Low | else Very Low
//
// # Data Provenance
//
// A result is always produced. When climate series or location attributes are
// missing, a documented conservative fallback is substituted and the result is
// tagged DataSource "fallback" instead of "real". See [DataError].
//
// # Record IDs
//
// Hazard record IDs are deterministic SHA-256 hashes of lat|lon|hazard|scenario|year.
// Downstream sinks upsert on this key so replays and out-of-order writes converge.
// See [RecordID].
package domain
