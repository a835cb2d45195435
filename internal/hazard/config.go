package hazard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/indicator"
	"github.com/couchcryptid/climate-risk-engine/internal/scoring"
)

// Config is the full set of tables behind a Registry.
type Config struct {
	Tables            map[domain.HazardType]Table `yaml:"tables"`
	WaterStressCurves indicator.WaterStressCurves `yaml:"water_stress_curves"`
	Exposure          scoring.ExposureConfig      `yaml:"exposure"`
	Vulnerability     scoring.VulnerabilityConfig `yaml:"vulnerability"`
	Periods           Periods                     `yaml:"periods"`
}

// DefaultConfig returns the built-in tables.
func DefaultConfig() Config {
	return Config{
		Tables:            DefaultTables(),
		WaterStressCurves: indicator.DefaultWaterStressCurves(),
		Exposure:          scoring.DefaultExposureConfig(),
		Vulnerability:     scoring.DefaultVulnerabilityConfig(),
		Periods:           DefaultPeriods(),
	}
}

// overrides mirrors Config with optional sections so a file only has to
// name what it changes.
type overrides struct {
	Tables            map[string]Table             `yaml:"tables"`
	WaterStressCurves *indicator.WaterStressCurves `yaml:"water_stress_curves"`
	Exposure          *scoring.ExposureConfig      `yaml:"exposure"`
	Vulnerability     *scoring.VulnerabilityConfig `yaml:"vulnerability"`
	Periods           *Periods                     `yaml:"periods"`
}

// ParseOverrides applies a YAML document on top of base. Each hazard table
// and each named section replaces the default wholesale.
func ParseOverrides(data []byte, base Config) (Config, error) {
	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Config{}, fmt.Errorf("parse hazard tables: %w", err)
	}

	tables := make(map[domain.HazardType]Table, len(base.Tables))
	for h, t := range base.Tables {
		tables[h] = t
	}
	for name, t := range o.Tables {
		h, err := domain.ParseHazardType(name)
		if err != nil {
			return Config{}, fmt.Errorf("hazard tables: %w", err)
		}
		if t.Label == "" {
			t.Label = tables[h].Label
		}
		tables[h] = t
	}
	base.Tables = tables

	if o.WaterStressCurves != nil {
		base.WaterStressCurves = *o.WaterStressCurves
	}
	if o.Exposure != nil {
		base.Exposure = *o.Exposure
	}
	if o.Vulnerability != nil {
		base.Vulnerability = *o.Vulnerability
	}
	if o.Periods != nil {
		base.Periods = *o.Periods
	}
	return base, nil
}

// LoadConfig reads overrides from path on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read hazard tables: %w", err)
	}
	return ParseOverrides(data, DefaultConfig())
}
