package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid assessment request")

// Year bounds accepted by the scenario datasets.
const (
	MinYear = 1950
	MaxYear = 2100
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// rawRequest is the JSON wire form of an assessment request.
type rawRequest struct {
	RequestID string              `json:"request_id"`
	Lat       *float64            `json:"lat"`
	Lon       *float64            `json:"lon"`
	Scenario  string              `json:"scenario"`
	Year      int                 `json:"year"`
	Hazards   []string            `json:"hazards"`
	Building  *BuildingAttributes `json:"building"`
	Asset     *AssetInfo          `json:"asset"`
}

// AssessmentRequest asks for the risk of one location under one scenario and year.
// An empty Hazards list means all nine hazards.
type AssessmentRequest struct {
	RequestID string              `json:"request_id,omitempty"`
	Geo       Geo                 `json:"geo"`
	Scenario  Scenario            `json:"scenario"`
	Year      int                 `json:"year"`
	Hazards   []HazardType        `json:"hazards,omitempty"`
	Building  *BuildingAttributes `json:"building,omitempty"`
	Asset     *AssetInfo          `json:"asset,omitempty"`
}

// HazardList returns the requested hazards, defaulting to all of them.
func (r AssessmentRequest) HazardList() []HazardType {
	if len(r.Hazards) == 0 {
		return AllHazards()
	}
	return r.Hazards
}

// Validate checks coordinates, scenario, year and hazard names. Each hazard
// may appear once.
func (r AssessmentRequest) Validate() error {
	if !r.Geo.Valid() {
		return fmt.Errorf("%w: coordinate out of range (%.4f, %.4f)", ErrInvalidRequest, r.Geo.Lat, r.Geo.Lon)
	}
	if !r.Scenario.IsPathway() {
		return fmt.Errorf("%w: scenario %q is not an emissions pathway", ErrInvalidRequest, r.Scenario)
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidRequest, r.Year, MinYear, MaxYear)
	}
	seen := make(map[HazardType]bool, len(r.Hazards))
	for _, h := range r.Hazards {
		if !h.Valid() {
			return fmt.Errorf("%w: unknown hazard %q", ErrInvalidRequest, h)
		}
		if seen[h] {
			return fmt.Errorf("%w: hazard %q listed twice", ErrInvalidRequest, h)
		}
		seen[h] = true
	}
	if r.Asset != nil && r.Asset.Value != nil && r.Asset.Value.IsNegative() {
		return fmt.Errorf("%w: negative asset value", ErrInvalidRequest)
	}
	return nil
}

// ParseAssessmentRequest deserializes and validates a RawEvent's value.
func ParseAssessmentRequest(raw RawEvent) (AssessmentRequest, error) {
	var rec rawRequest
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return AssessmentRequest{}, fmt.Errorf("parse assessment request: %w", err)
	}
	if rec.Lat == nil || rec.Lon == nil {
		return AssessmentRequest{}, fmt.Errorf("%w: lat and lon are required", ErrInvalidRequest)
	}

	scenario, err := ParseScenario(rec.Scenario)
	if err != nil {
		return AssessmentRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	hazards := make([]HazardType, 0, len(rec.Hazards))
	for _, s := range rec.Hazards {
		if strings.TrimSpace(s) == "" {
			continue
		}
		h, err := ParseHazardType(s)
		if err != nil {
			return AssessmentRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		hazards = append(hazards, h)
	}

	req := AssessmentRequest{
		RequestID: rec.RequestID,
		Geo:       Geo{Lat: *rec.Lat, Lon: *rec.Lon},
		Scenario:  scenario,
		Year:      rec.Year,
		Hazards:   hazards,
		Building:  rec.Building,
		Asset:     rec.Asset,
	}
	if req.RequestID == "" {
		req.RequestID = string(raw.Key)
	}
	if err := req.Validate(); err != nil {
		return AssessmentRequest{}, err
	}
	return req, nil
}
