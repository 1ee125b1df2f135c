package weather

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the provider has no match for the query.
	ErrNotFound = errors.New("location not found")

	// ErrMalformedPayload is returned when a provider response cannot be turned
	// into an Observation.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// Provider abstracts a current-weather source (e.g. OpenWeatherMap, WeatherAPI).
type Provider interface {
	Name() string
	ByCoordinates(ctx context.Context, coords Coordinates) (Observation, error)
	ByCity(ctx context.Context, city string) (Observation, error)
}
