// Package weather pulls current conditions for a position from Open-Meteo.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

// Default endpoints.
const (
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultMarineURL   = "https://marine-api.open-meteo.com/v1/marine"
)

var forecastFields = "temperature_2m,wind_speed_10m,wind_direction_10m,pressure_msl,visibility," +
	"weather_code,precipitation,relative_humidity_2m,cloud_cover,dew_point_2m"

// Client fetches weather snapshots.
type Client struct {
	httpClient  *http.Client
	forecastURL string
	marineURL   string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithEndpoints overrides the forecast and marine URLs. Empty values keep the defaults.
func WithEndpoints(forecast, marine string) Option {
	return func(cl *Client) {
		if forecast != "" {
			cl.forecastURL = forecast
		}
		if marine != "" {
			cl.marineURL = marine
		}
	}
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient returns a Client with a 15 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		forecastURL: DefaultForecastURL,
		marineURL:   DefaultMarineURL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type currentResponse struct {
	Current map[string]any `json:"current"`
}

// Fetch returns the current conditions at lat/lon. The marine pull is best
// effort: when it fails the wave fields are left nil.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (logbook.Weather, error) {
	params := url.Values{}
	params.Set("latitude", coord(lat))
	params.Set("longitude", coord(lon))
	params.Set("current", forecastFields)
	params.Set("wind_speed_unit", "kn")
	params.Set("timezone", "auto")

	cur, err := c.getCurrent(ctx, c.forecastURL, params)
	if err != nil {
		return logbook.Weather{}, err
	}

	wx := logbook.Weather{
		TempC:       num(cur["temperature_2m"]),
		WindKts:     num(cur["wind_speed_10m"]),
		WindDir:     num(cur["wind_direction_10m"]),
		Pressure:    num(cur["pressure_msl"]),
		WeatherCode: num(cur["weather_code"]),
		PrecipMmHr:  num(cur["precipitation"]),
		HumidityPct: num(cur["relative_humidity_2m"]),
		CloudPct:    num(cur["cloud_cover"]),
		DewPointC:   num(cur["dew_point_2m"]),
	}
	if v := num(cur["visibility"]); v != nil {
		km := *v / 1000
		wx.VisibilityKm = &km
	}
	if wx.WeatherCode != nil {
		if cond, ok := Condition(int(*wx.WeatherCode)); ok {
			wx.Condition = &cond
		}
	}

	marine := url.Values{}
	marine.Set("latitude", coord(lat))
	marine.Set("longitude", coord(lon))
	marine.Set("current", "wave_height,wave_period,wave_direction")
	marine.Set("timezone", "auto")
	mc, err := c.getCurrent(ctx, c.marineURL, marine)
	if err != nil {
		c.logger.Debug("marine pull failed", "error", err)
		return wx, nil
	}
	wx.WaveHeightM = num(mc["wave_height"])
	wx.WavePeriodS = num(mc["wave_period"])
	wx.WaveDirDeg = num(mc["wave_direction"])
	return wx, nil
}

func (c *Client) getCurrent(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather HTTP %d: %s", resp.StatusCode, body)
	}

	var out currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if out.Current == nil {
		return map[string]any{}, nil
	}
	return out.Current, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func num(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
