package relocation

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Plan is the file form of a relocation study: the site in use today, the
// alternatives, and the assessment parameters shared by all of them.
type Plan struct {
	Scenario   string                     `yaml:"scenario"`
	Year       int                        `yaml:"year"`
	TopK       int                        `yaml:"top_k"`
	Hazards    []string                   `yaml:"hazards"`
	Building   *domain.BuildingAttributes `yaml:"building,omitempty"`
	Asset      *domain.AssetInfo          `yaml:"asset,omitempty"`
	Current    *Candidate                 `yaml:"current,omitempty"`
	Candidates []Candidate                `yaml:"candidates"`
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return p, nil
}

// Query converts the plan into a search query. Candidate coordinates are not
// checked here; invalid ones surface as failed candidates.
func (p Plan) Query() (Query, error) {
	scenario, err := domain.ParseScenario(p.Scenario)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	hazards := make([]domain.HazardType, 0, len(p.Hazards))
	for _, s := range p.Hazards {
		h, err := domain.ParseHazardType(s)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		if slices.Contains(hazards, h) {
			return Query{}, fmt.Errorf("%w: hazard %q listed twice", domain.ErrInvalidRequest, h)
		}
		hazards = append(hazards, h)
	}
	for i := range p.Candidates {
		if p.Candidates[i].Name == "" {
			p.Candidates[i].Name = fmt.Sprintf("candidate-%d", i)
		}
	}
	return Query{
		Candidates: p.Candidates,
		Scenario:   scenario,
		Year:       p.Year,
		Hazards:    hazards,
		Building:   p.Building,
		Asset:      p.Asset,
		TopK:       p.TopK,
	}, nil
}

// Find returns the candidate with the given name.
func (p Plan) Find(name string) (Candidate, bool) {
	for _, c := range p.Candidates {
		if c.Name == name {
			return c, true
		}
	}
	return Candidate{}, false
}
