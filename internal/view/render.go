package view

import (
	"fmt"

	"github.com/i474232898/weather-map/internal/common"
)

const (
	// PageTitle is the heading shown on every page.
	PageTitle = "Weather App with Map Integration"
	// LoadingLine is the status line while a lookup is in flight.
	LoadingLine = "Loading weather data..."
)

// MarkerAssets describes the marker icon images and their pixel geometry.
type MarkerAssets struct {
	IconURL     string `json:"iconUrl"`
	ShadowURL   string `json:"shadowUrl"`
	IconSize    [2]int `json:"iconSize"`
	IconAnchor  [2]int `json:"iconAnchor"`
	PopupAnchor [2]int `json:"popupAnchor"`
	ShadowSize  [2]int `json:"shadowSize"`
}

// MapConfig is the injected, session-independent part of the map widget.
type MapConfig struct {
	Zoom            int          `json:"zoom"`
	TileURL         string       `json:"tileUrl"`
	TileAttribution string       `json:"attribution"`
	Marker          MarkerAssets `json:"marker"`
}

// DefaultMapConfig returns the OpenStreetMap tiles and Leaflet 1.7.1 marker assets.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Zoom:            13,
		TileURL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileAttribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		Marker: MarkerAssets{
			IconURL:     "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.7.1/images/marker-icon.png",
			ShadowURL:   "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.7.1/images/marker-shadow.png",
			IconSize:    [2]int{25, 41},
			IconAnchor:  [2]int{12, 41},
			PopupAnchor: [2]int{1, -34},
			ShadowSize:  [2]int{41, 41},
		},
	}
}

// Page is everything the HTML template or a JSON client needs to draw the view.
type Page struct {
	Title      string        `json:"title"`
	Status     string        `json:"status"`
	StatusLine string        `json:"statusLine,omitempty"`
	SearchText string        `json:"searchText"`
	Weather    *WeatherPanel `json:"weather,omitempty"`
	Map        *MapSpec      `json:"map,omitempty"`
}

// WeatherPanel holds the formatted snapshot lines.
type WeatherPanel struct {
	Heading     string `json:"heading"`
	IconURL     string `json:"iconUrl"`
	IconAlt     string `json:"iconAlt"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
}

// MapSpec is a map centred on one marker.
type MapSpec struct {
	Center          [2]float64 `json:"center"`
	Zoom            int        `json:"zoom"`
	TileURL         string     `json:"tileUrl"`
	TileAttribution string     `json:"attribution"`
	Marker          MapMarker  `json:"marker"`
}

// MapMarker is the single marker placed on the map, with its popup text.
type MapMarker struct {
	Position [2]float64   `json:"position"`
	Assets   MarkerAssets `json:"assets"`
	Popup    string       `json:"popup"`
}

// Render derives the page from state alone.
func Render(state State, cfg MapConfig) Page {
	page := Page{
		Title:      PageTitle,
		Status:     state.Status.String(),
		SearchText: state.SearchText,
	}

	switch state.Status {
	case StatusLoading:
		page.StatusLine = LoadingLine
	case StatusError:
		page.StatusLine = state.Message
	case StatusReady:
		snap := state.Snapshot
		temp := common.FormatNumber(snap.TemperatureC)
		page.Weather = &WeatherPanel{
			Heading:     "Weather in " + snap.LocationName,
			IconURL:     snap.IconURL,
			IconAlt:     snap.Description,
			Description: snap.Description,
			Temperature: "Temperature: " + temp + "°C",
			Humidity:    "Humidity: " + common.FormatInt(snap.HumidityPct) + "%",
			WindSpeed:   "Wind Speed: " + common.FormatNumber(snap.WindSpeedMps) + " m/s",
		}

		pos := [2]float64{state.Coordinates.Latitude, state.Coordinates.Longitude}
		page.Map = &MapSpec{
			Center:          pos,
			Zoom:            cfg.Zoom,
			TileURL:         cfg.TileURL,
			TileAttribution: cfg.TileAttribution,
			Marker: MapMarker{
				Position: pos,
				Assets:   cfg.Marker,
				Popup:    fmt.Sprintf("Weather at %s: %s°C, %s.", snap.LocationName, temp, snap.Description),
			},
		}
	}

	return page
}
