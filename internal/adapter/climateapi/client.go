package climateapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Client implements domain.ClimateSeriesProvider and
// domain.LocationAttributeProvider over a climate data HTTP API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a climate data API client. token may be empty.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Series fetches one climate variable. Null samples become NaN.
func (c *Client) Series(ctx context.Context, q domain.SeriesQuery) (domain.Series, error) {
	params := coords(q.Geo)
	params.Set("variable", q.Variable)
	params.Set("scenario", string(q.Scenario))
	params.Set("start", strconv.Itoa(q.Range.Start))
	params.Set("end", strconv.Itoa(q.Range.End))

	var resp seriesResponse
	if err := c.doRequest(ctx, "series", "/v1/series", params, &resp); err != nil {
		return domain.Series{}, err
	}

	out := domain.Series{Variable: resp.Variable, Unit: resp.Unit, Points: make([]domain.Point, len(resp.Points))}
	if out.Variable == "" {
		out.Variable = q.Variable
	}
	for i, p := range resp.Points {
		v := math.NaN()
		if p.Value != nil {
			v = *p.Value
		}
		out.Points[i] = domain.Point{Time: p.Time, Value: v}
	}
	return out, nil
}

// StormTracks fetches best-track points within the query radius.
func (c *Client) StormTracks(ctx context.Context, q domain.TrackQuery) ([]domain.TrackPoint, error) {
	params := coords(q.Geo)
	params.Set("radius_km", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
	params.Set("start", strconv.Itoa(q.Range.Start))
	params.Set("end", strconv.Itoa(q.Range.End))

	var resp tracksResponse
	if err := c.doRequest(ctx, "tracks", "/v1/tracks", params, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

// Attributes fetches the spatial and building attributes of a point.
func (c *Client) Attributes(ctx context.Context, g domain.Geo) (domain.LocationAttributes, error) {
	var attrs domain.LocationAttributes
	if err := c.doRequest(ctx, "attributes", "/v1/attributes", coords(g), &attrs); err != nil {
		return domain.LocationAttributes{}, err
	}
	return attrs, nil
}

func coords(g domain.Geo) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(g.Lat, 'f', 6, 64)},
		"lon": {strconv.FormatFloat(g.Lon, 'f', 6, 64)},
	}
}

// doRequest performs a GET and decodes the JSON body into out. A 404 maps to
// domain.ErrNotFound so callers can apply fallbacks.
func (c *Client) doRequest(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		c.metrics.ClimateAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		c.metrics.ClimateAPIRequests.WithLabelValues(endpoint, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		outcome = "not_found"
		c.logger.Debug("climate api: not found", "endpoint", endpoint, "params", params.Encode())
		return fmt.Errorf("climate api %s: %w", endpoint, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("climate API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s response: empty body", endpoint)
		}
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	outcome = "success"
	return nil
}

// API response types.

type seriesResponse struct {
	Variable string          `json:"variable"`
	Unit     domain.TimeUnit `json:"unit"`
	Points   []point         `json:"points"`
}

type point struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"` // null for a missing observation
}

type tracksResponse struct {
	Tracks []domain.TrackPoint `json:"tracks"`
}
