package weather

import (
	"time"

	"github.com/i474232898/weather-map/internal/common"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns a canonical string for logging and comparisons.
func (c Coordinates) Key() string {
	return common.FormatNumber(c.Latitude) + "," + common.FormatNumber(c.Longitude)
}

// Snapshot is the current weather for one place, as shown to the user.
// It is always replaced wholesale, never patched.
type Snapshot struct {
	LocationName string  `json:"locationName"`
	Description  string  `json:"description"`
	IconID       string  `json:"iconId"`
	IconURL      string  `json:"iconUrl"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  int     `json:"humidityPct"`
	WindSpeedMps float64 `json:"windSpeedMps"`
}

// Observation is a provider's answer: the snapshot plus the coordinates the
// provider resolved the query to.
type Observation struct {
	Snapshot    Snapshot    `json:"snapshot"`
	Coordinates Coordinates `json:"coordinates"`
	ObservedAt  time.Time   `json:"observedAt"` // always UTC
	Provider    string      `json:"provider"`
}
