package scheduler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Portfolio is a fixed set of sites re-scored on a schedule.
//
//	scenario: SSP2-4.5
//	year: 2050
//	sites:
//	  - name: head-office
//	    geo: {lat: 35.68, lon: 139.77}
//	    building: {structure: rc, build_year: 2004}
//	    asset: {value: "25000000", insurance_rate: 0.3}
type Portfolio struct {
	Scenario string    `yaml:"scenario"`
	Year     int       `yaml:"year"`
	Hazards  []string  `yaml:"hazards"`
	Sites    []Holding `yaml:"sites"`
}

// Holding is one site in a portfolio.
type Holding struct {
	Name     string                     `yaml:"name"`
	Geo      domain.Geo                 `yaml:"geo"`
	Building *domain.BuildingAttributes `yaml:"building,omitempty"`
	Asset    *domain.AssetInfo          `yaml:"asset,omitempty"`
}

// LoadPortfolio reads and validates a portfolio file.
func LoadPortfolio(path string) (Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Portfolio{}, fmt.Errorf("read portfolio: %w", err)
	}
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Portfolio{}, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	if _, err := p.Requests(); err != nil {
		return Portfolio{}, fmt.Errorf("portfolio %s: %w", path, err)
	}
	return p, nil
}

// Requests expands the portfolio into one validated request per site.
func (p Portfolio) Requests() ([]domain.AssessmentRequest, error) {
	if len(p.Sites) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no sites", domain.ErrInvalidRequest)
	}
	scenario, err := domain.ParseScenario(p.Scenario)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	hazards := make([]domain.HazardType, 0, len(p.Hazards))
	for _, s := range p.Hazards {
		h, err := domain.ParseHazardType(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		hazards = append(hazards, h)
	}

	reqs := make([]domain.AssessmentRequest, 0, len(p.Sites))
	for i, site := range p.Sites {
		req := domain.AssessmentRequest{
			RequestID: site.Name,
			Geo:       site.Geo,
			Scenario:  scenario,
			Year:      p.Year,
			Hazards:   hazards,
			Building:  site.Building,
			Asset:     site.Asset,
		}
		if req.RequestID == "" {
			req.RequestID = fmt.Sprintf("site-%d", i)
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("site %q: %w", req.RequestID, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
