package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/view"
	"github.com/i474232898/weather-map/internal/weather"
)

type stubWeather struct{}

var londonObs = weather.Observation{
	Snapshot: weather.Snapshot{
		LocationName: "London",
		Description:  "clear sky",
		IconID:       "01d",
		IconURL:      "https://openweathermap.org/img/wn/01d@2x.png",
		TemperatureC: 15.2,
		HumidityPct:  60,
		WindSpeedMps: 3.1,
	},
	Coordinates: weather.Coordinates{Latitude: 51.5, Longitude: -0.12},
}

func (stubWeather) CurrentAt(_ context.Context, c weather.Coordinates) (weather.Observation, error) {
	return londonObs, nil
}

func (stubWeather) CurrentIn(_ context.Context, city string) (weather.Observation, error) {
	if city == "London" {
		return londonObs, nil
	}
	return weather.Observation{}, weather.ErrNotFound
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	fetcher := stubWeather{}
	sessions := store.NewSessionStore(time.Hour, func() *view.WeatherView {
		return view.New(fetcher, nil)
	})
	RegisterRoutes(app, Deps{
		Sessions: sessions,
		Weather:  fetcher,
		Map:      view.DefaultMapConfig(),
	})
	return app
}

// client keeps the session cookie across requests.
type client struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	resp, err := cl.app.Test(req)
	if err != nil {
		cl.t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cl.cookie = c
		}
	}
	return resp
}

func (cl *client) get(path string) (*http.Response, string) {
	cl.t.Helper()
	resp := cl.do(httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (cl *client) post(path string, form url.Values) *http.Response {
	cl.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("expected page to contain %q", w)
		}
	}
}

func TestFreshSessionShowsLoading(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}

	resp, body := cl.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if cl.cookie == nil {
		t.Fatal("expected a session cookie")
	}
	assertContains(t, body, "Weather App with Map Integration", "Loading weather data...", "getCurrentPosition")
}

func TestGeolocatedLondonScenario(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	cl.get("/")

	resp := cl.post("/locate", url.Values{"lat": {"51.5"}, "lon": {"-0.12"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	_, body := cl.get("/")
	assertContains(t, body,
		"Weather in London",
		"clear sky",
		"Temperature: 15.2°C",
		"Humidity: 60%",
		"Wind Speed: 3.1 m/s",
		`data-lat="51.5"`,
		`data-lon="-0.12"`,
	)
	if strings.Contains(body, "Loading weather data...") {
		t.Error("ready page should not show the loading line")
	}
}

func TestGeolocationDenied(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	cl.get("/")
	cl.post("/locate", url.Values{"error_code": {"1"}})

	_, body := cl.get("/")
	assertContains(t, body, view.MsgLocationUnavailable)
}

func TestSearchStopsLocationRequests(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	cl.get("/")
	cl.post("/search", url.Values{"city": {"London"}})

	_, body := cl.get("/")
	if strings.Contains(body, "getCurrentPosition") {
		t.Fatal("page should not request location after a search")
	}
	assertContains(t, body, "Weather in London")

	// A geolocation result that was already in flight must not replace the search.
	cl.post("/locate", url.Values{"error_code": {"1"}})

	_, body = cl.get("/")
	assertContains(t, body, "Weather in London")
	if strings.Contains(body, view.MsgLocationUnavailable) {
		t.Error("late geolocation failure overwrote the search result")
	}
}

func TestSearchUnknownCity(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	cl.post("/search", url.Values{"city": {"Atlantis"}})

	_, body := cl.get("/")
	assertContains(t, body, view.MsgCityNotFound, `value="Atlantis"`)
}

func TestSearchEmptyCityDoesNotCrash(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	resp := cl.post("/search", url.Values{"city": {""}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	_, body := cl.get("/")
	assertContains(t, body, view.MsgCityNotFound)
}

func TestViewStateJSON(t *testing.T) {
	cl := &client{t: t, app: newTestApp()}
	cl.post("/search", url.Values{"city": {"London"}})

	resp, body := cl.get("/api/v1/view")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var page view.Page
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.Status != "ready" || page.Map == nil {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Map.Center != [2]float64{51.5, -0.12} {
		t.Fatalf("unexpected centre %v", page.Map.Center)
	}
}

func TestCurrentWeatherValidation(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/weather/current", http.StatusBadRequest},
		{"/api/v1/weather/current?lat=91&lon=0", http.StatusBadRequest},
		{"/api/v1/weather/current?lat=abc&lon=0", http.StatusBadRequest},
		{"/api/v1/weather/current?q=Atlantis", http.StatusNotFound},
		{"/api/v1/weather/current?q=London", http.StatusOK},
		{"/api/v1/weather/current?lat=51.5&lon=-0.12", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}
