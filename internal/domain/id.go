package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// LocationKey renders a coordinate at four decimals (~11 m), the precision at
// which two requests address the same site.
func LocationKey(g Geo) string {
	return fmt.Sprintf("%.4f,%.4f", g.Lat, g.Lon)
}

// RecordID produces a deterministic ID for a hazard result. Sinks upsert on it,
// so recomputing the same (location, hazard, scenario, year) overwrites rather
// than duplicates.
func RecordID(g Geo, h HazardType, s Scenario, year int) string {
	return string(h) + "-" + shortHash(fmt.Sprintf("%s|%s|%s|%d", LocationKey(g), h, s, year))
}

// AssessmentID produces a deterministic ID for a whole-location assessment.
func AssessmentID(g Geo, s Scenario, year int) string {
	return "asm-" + shortHash(fmt.Sprintf("%s|%s|%d", LocationKey(g), s, year))
}

func shortHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
