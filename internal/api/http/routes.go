package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/geolocation"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/view"
	"github.com/i474232898/weather-map/internal/weather"
)

// SessionCookie carries the session id between page loads.
const SessionCookie = "weather_session"

var validate = validator.New()

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Deps are the collaborators the routes need.
type Deps struct {
	Sessions *store.SessionStore
	Weather  view.Fetcher
	Map      view.MapConfig
	Logger   *zap.Logger
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &handlers{Deps: deps}

	app.Get("/", h.page)
	app.Post("/locate", h.locate)
	app.Post("/search", h.search)

	v1 := app.Group("/api/v1")
	v1.Get("/view", h.viewState)
	v1.Get("/weather/current", h.current)
}

func (h *handlers) session(c *fiber.Ctx) *store.Session {
	sess, created := h.Sessions.GetOrCreate(c.Cookies(SessionCookie))
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sess
}

type pageData struct {
	Page          view.Page
	NeedsLocation bool
}

func (h *handlers) page(c *fiber.Ctx) error {
	sess := h.session(c)

	data := pageData{
		Page:          view.Render(sess.View.State(), h.Map),
		NeedsLocation: !sess.View.Mounted(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.Logger.Error("failed to render page", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// locate receives the browser's geolocation outcome: either lat/lon or the
// GeolocationPositionError code.
func (h *handlers) locate(c *fiber.Ctx) error {
	sess := h.session(c)

	var reading geolocation.Reading
	if c.FormValue("lat") == "" && c.FormValue("lon") == "" {
		reading.Err = geolocation.FromErrorCode(c.FormValue("error_code"))
	} else {
		r, err := geolocation.Parse(c.FormValue("lat"), c.FormValue("lon"))
		if err != nil {
			reading.Err = errors.Join(geolocation.ErrPositionUnavailable, err)
		} else {
			reading = r
		}
	}

	sess.View.Mount(c.UserContext(), reading)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handlers) search(c *fiber.Ctx) error {
	sess := h.session(c)
	sess.View.SearchCity(c.UserContext(), c.FormValue("city"))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handlers) viewState(c *fiber.Ctx) error {
	sess := h.session(c)
	return c.JSON(view.Render(sess.View.State(), h.Map))
}

// current is a stateless lookup: ?q=<city> or ?lat=&lon=.
func (h *handlers) current(c *fiber.Ctx) error {
	var (
		obs weather.Observation
		err error
	)

	if c.Context().QueryArgs().Has("q") {
		obs, err = h.Weather.CurrentIn(c.UserContext(), c.Query("q"))
	} else {
		coords, perr := parseCoordinatesQuery(c)
		if perr != nil {
			return fiber.NewError(fiber.StatusBadRequest, perr.Error())
		}
		obs, err = h.Weather.CurrentAt(c.UserContext(), coords)
	}

	if err != nil {
		if errors.Is(err, weather.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}

	return c.JSON(obs)
}

func parseCoordinatesQuery(c *fiber.Ctx) (weather.Coordinates, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return weather.Coordinates{}, errors.New("either q or both lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("invalid lon")
	}

	coords := weather.Coordinates{Latitude: lat, Longitude: lon}
	if err := validate.Struct(coords); err != nil {
		return weather.Coordinates{}, err
	}
	return coords, nil
}
