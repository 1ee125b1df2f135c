package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/weather"
)

const (
	defaultOpenWeatherURL  = "https://api.openweathermap.org/data/2.5/weather"
	defaultOpenWeatherIcon = "https://openweathermap.org/img/wn/%s@2x.png"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	iconTmpl string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider returns an OpenWeatherMap client. Empty BaseURL and
// IconURLTemplate fall back to the public endpoints; retries default to none.
func NewOpenWeatherProvider(client *http.Client, opts Options) *OpenWeatherProvider {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenWeatherURL
	}
	iconTmpl := opts.IconURLTemplate
	if iconTmpl == "" {
		iconTmpl = defaultOpenWeatherIcon
	}

	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   opts.APIKey,
		baseURL:  baseURL,
		iconTmpl: iconTmpl,
		httpCfg: HTTPClientConfig{
			Client:   client,
			Backoff:  defaultBackoff(opts.MaxRetries),
			Classify: classifyOpenWeather,
		},
		circuit: newCircuitBreaker("openweather", logger.Named("openweather")),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) ByCoordinates(ctx context.Context, coords weather.Coordinates) (weather.Observation, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(coords.Latitude))
	values.Set("lon", formatCoord(coords.Longitude))
	return p.fetch(ctx, values)
}

func (p *OpenWeatherProvider) ByCity(ctx context.Context, city string) (weather.Observation, error) {
	values := url.Values{}
	values.Set("q", city)
	return p.fetch(ctx, values)
}

type openWeatherPayload struct {
	// Cod is a number on success and a string on error responses.
	Cod     interface{} `json:"cod"`
	Message string      `json:"message"`
	Name    string      `json:"name"`
	Dt      int64       `json:"dt"`
	Coord   *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, values url.Values) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("openweather api key is not configured")
	}

	values.Set("units", "metric")
	values.Set("appid", p.apiKey)

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return weather.Observation{}, err
	}

	var payload openWeatherPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", weather.ErrMalformedPayload, err)
	}

	if fmt.Sprint(payload.Cod) == "404" {
		return weather.Observation{}, fmt.Errorf("%w: %s", weather.ErrNotFound, payload.Message)
	}
	if len(payload.Weather) == 0 {
		return weather.Observation{}, fmt.Errorf("%w: missing weather conditions", weather.ErrMalformedPayload)
	}
	if payload.Coord == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing coord", weather.ErrMalformedPayload)
	}

	cond := payload.Weather[0]
	return weather.Observation{
		Snapshot: weather.Snapshot{
			LocationName: payload.Name,
			Description:  cond.Description,
			IconID:       cond.Icon,
			IconURL:      fmt.Sprintf(p.iconTmpl, cond.Icon),
			TemperatureC: payload.Main.Temp,
			HumidityPct:  int(math.Round(payload.Main.Humidity)),
			WindSpeedMps: payload.Wind.Speed,
		},
		Coordinates: weather.Coordinates{
			Latitude:  payload.Coord.Lat,
			Longitude: payload.Coord.Lon,
		},
		ObservedAt: observedAt(payload.Dt),
		Provider:   p.name,
	}, nil
}

func classifyOpenWeather(status int, body []byte) error {
	if status != http.StatusNotFound {
		return nil
	}
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return fmt.Errorf("%w: %s", weather.ErrNotFound, payload.Message)
}
