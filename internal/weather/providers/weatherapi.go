package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/weather"
)

const defaultWeatherAPIURL = "https://api.weatherapi.com/v1/current.json"

// weatherAPINoMatch is WeatherAPI's error code for an unknown location.
const weatherAPINoMatch = 1006

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherAPIProvider returns a WeatherAPI.com client. An empty BaseURL
// falls back to the public current-conditions endpoint.
func NewWeatherAPIProvider(client *http.Client, opts Options) *WeatherAPIProvider {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultWeatherAPIURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:   client,
			Backoff:  defaultBackoff(opts.MaxRetries),
			Classify: classifyWeatherAPI,
		},
		circuit: newCircuitBreaker("weatherapi", logger.Named("weatherapi")),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// ByCoordinates uses WeatherAPI's "lat,lon" form of the q parameter.
func (p *WeatherAPIProvider) ByCoordinates(ctx context.Context, coords weather.Coordinates) (weather.Observation, error) {
	return p.fetch(ctx, formatCoord(coords.Latitude)+","+formatCoord(coords.Longitude))
}

func (p *WeatherAPIProvider) ByCity(ctx context.Context, city string) (weather.Observation, error) {
	return p.fetch(ctx, city)
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, q string) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", q)

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

	var payload struct {
		Location *struct {
			Name           string  `json:"name"`
			Lat            float64 `json:"lat"`
			Lon            float64 `json:"lon"`
			LocaltimeEpoch int64   `json:"localtime_epoch"`
		} `json:"location"`
		Current *struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			TempC            float64 `json:"temp_c"`
			Humidity         float64 `json:"humidity"`
			WindKph          float64 `json:"wind_kph"`
			Condition        struct {
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", weather.ErrMalformedPayload, err)
	}
	if payload.Location == nil || payload.Current == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing location or current block", weather.ErrMalformedPayload)
	}

	icon := payload.Current.Condition.Icon
	iconURL := icon
	if strings.HasPrefix(icon, "//") {
		iconURL = "https:" + icon
	}

	ts := payload.Current.LastUpdatedEpoch
	if ts == 0 {
		ts = payload.Location.LocaltimeEpoch
	}

	return weather.Observation{
		Snapshot: weather.Snapshot{
			LocationName: payload.Location.Name,
			Description:  strings.ToLower(strings.TrimSpace(payload.Current.Condition.Text)),
			IconID:       strings.TrimSuffix(path.Base(icon), path.Ext(icon)),
			IconURL:      iconURL,
			TemperatureC: payload.Current.TempC,
			HumidityPct:  int(math.Round(payload.Current.Humidity)),
			// Convert wind from kph to m/s.
			WindSpeedMps: math.Round(payload.Current.WindKph/3.6*100) / 100,
		},
		Coordinates: weather.Coordinates{
			Latitude:  payload.Location.Lat,
			Longitude: payload.Location.Lon,
		},
		ObservedAt: observedAt(ts),
		Provider:   p.name,
	}, nil
}

func classifyWeatherAPI(status int, body []byte) error {
	if status == http.StatusNotFound {
		return weather.ErrNotFound
	}
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	if payload.Error.Code == weatherAPINoMatch {
		return fmt.Errorf("%w: %s", weather.ErrNotFound, payload.Error.Message)
	}
	return nil
}
