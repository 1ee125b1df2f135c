// Package geolocation models the device position capability. The browser does
// the actual reading; the server only replays the outcome it was handed.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/i474232898/weather-map/internal/weather"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
	ErrUnsupported         = errors.New("geolocation not supported")
)

// Locator yields the device's approximate position once.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// Reading is a Locator that replays a position (or failure) already obtained
// elsewhere, typically from the browser's getCurrentPosition callbacks.
type Reading struct {
	Coords weather.Coordinates
	Err    error
}

// Locate returns the stored outcome.
func (r Reading) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	if r.Err != nil {
		return weather.Coordinates{}, r.Err
	}
	return r.Coords, nil
}

// FromErrorCode maps a GeolocationPositionError code to a sentinel error.
// Unknown or empty codes mean the API was not available at all.
func FromErrorCode(code string) error {
	n, err := strconv.Atoi(code)
	if err != nil {
		return ErrUnsupported
	}
	switch n {
	case 1:
		return ErrPermissionDenied
	case 2:
		return ErrPositionUnavailable
	case 3:
		return ErrTimeout
	default:
		return fmt.Errorf("%w: code %d", ErrUnsupported, n)
	}
}

// Parse builds a Reading from the raw lat/lon strings posted by the browser.
func Parse(lat, lon string) (Reading, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return Reading{Coords: weather.Coordinates{Latitude: la, Longitude: lo}}, nil
}
