package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssessmentRequest(t *testing.T) {
	t.Run("full request", func(t *testing.T) {
		data := []byte(`{"request_id":"req-1","lat":35.68,"lon":139.76,"scenario":"ssp245","year":2050,"hazards":["extreme-heat","Typhoon"],"building":{"build_year":1985,"structure":"wood"},"asset":{"value":"1000000","insurance_rate":0.2}}`)
		req, err := ParseAssessmentRequest(RawEvent{Value: data})

		require.NoError(t, err)
		assert.Equal(t, "req-1", req.RequestID)
		assert.Equal(t, Geo{Lat: 35.68, Lon: 139.76}, req.Geo)
		assert.Equal(t, SSP245, req.Scenario)
		assert.Equal(t, 2050, req.Year)
		assert.Equal(t, []HazardType{ExtremeHeat, Typhoon}, req.Hazards)
		require.NotNil(t, req.Building)
		assert.Equal(t, 1985, *req.Building.BuildYear)
		require.NotNil(t, req.Asset)
		assert.Equal(t, "1000000", req.Asset.Value.String())
		assert.InDelta(t, 0.2, req.Asset.InsuranceRate, 1e-12)
	})

	t.Run("empty hazards default to all", func(t *testing.T) {
		data := []byte(`{"lat":10,"lon":20,"scenario":"SSP5-8.5","year":2030}`)
		req, err := ParseAssessmentRequest(RawEvent{Key: []byte("k-9"), Value: data})

		require.NoError(t, err)
		assert.Len(t, req.HazardList(), 9)
		assert.Equal(t, "k-9", req.RequestID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseAssessmentRequest(RawEvent{Value: []byte("{nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse assessment request")
	})

	invalid := []struct {
		name string
		body string
		want string
	}{
		{"missing coordinates", `{"scenario":"ssp245","year":2050}`, "lat and lon"},
		{"latitude out of range", `{"lat":95,"lon":0,"scenario":"ssp245","year":2050}`, "coordinate"},
		{"unknown scenario", `{"lat":1,"lon":1,"scenario":"ssp999","year":2050}`, "unknown scenario"},
		{"historical is not a pathway", `{"lat":1,"lon":1,"scenario":"historical","year":2050}`, "not an emissions pathway"},
		{"year too late", `{"lat":1,"lon":1,"scenario":"ssp126","year":2200}`, "year 2200"},
		{"unknown hazard", `{"lat":1,"lon":1,"scenario":"ssp126","year":2050,"hazards":["hail"]}`, "unknown hazard"},
		{"duplicate hazard", `{"lat":1,"lon":1,"scenario":"ssp126","year":2050,"hazards":["drought","drought"]}`, "listed twice"},
		{"duplicate after normalising", `{"lat":1,"lon":1,"scenario":"ssp126","year":2050,"hazards":["extreme-heat","extreme_heat"]}`, "listed twice"},
		{"negative asset", `{"lat":1,"lon":1,"scenario":"ssp126","year":2050,"asset":{"value":"-5"}}`, "negative asset"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAssessmentRequest(RawEvent{Value: []byte(tc.body)})
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

func TestParseScenario(t *testing.T) {
	tests := []struct {
		in   string
		want Scenario
	}{
		{"SSP1-2.6", SSP126},
		{"ssp126", SSP126},
		{"SSP2_4.5", SSP245},
		{" ssp3-7.0 ", SSP370},
		{"ssp585", SSP585},
		{"Historical", Historical},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseScenario(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseScenario("rcp85")
	assert.Error(t, err)
}

func TestScenarioRank(t *testing.T) {
	assert.Equal(t, 0, SSP126.Rank())
	assert.Equal(t, 3, SSP585.Rank())
	assert.Equal(t, -1, Historical.Rank())
	assert.False(t, Historical.IsPathway())
}

func TestParseHazardType(t *testing.T) {
	h, err := ParseHazardType("Sea Level-Rise")
	require.NoError(t, err)
	assert.Equal(t, SeaLevelRise, h)

	_, err = ParseHazardType("hail")
	assert.Error(t, err)
	assert.Len(t, AllHazards(), 9)
}
