package weather

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type recordingProvider struct {
	coords []Coordinates
	cities []string
	err    error
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) ByCoordinates(_ context.Context, c Coordinates) (Observation, error) {
	p.coords = append(p.coords, c)
	return Observation{Coordinates: c}, p.err
}

func (p *recordingProvider) ByCity(_ context.Context, city string) (Observation, error) {
	p.cities = append(p.cities, city)
	return Observation{}, p.err
}

func TestCurrentAtRejectsOutOfRange(t *testing.T) {
	p := &recordingProvider{}
	svc := NewService(p, zap.NewNop())

	for _, c := range []Coordinates{{Latitude: 90.5}, {Longitude: -181}} {
		if _, err := svc.CurrentAt(context.Background(), c); err == nil {
			t.Errorf("expected %s to be rejected", c.Key())
		}
	}
	if len(p.coords) != 0 {
		t.Fatalf("provider should not be called for invalid coordinates, got %d calls", len(p.coords))
	}
}

func TestCurrentAtDelegates(t *testing.T) {
	p := &recordingProvider{}
	svc := NewService(p, zap.NewNop())

	obs, err := svc.CurrentAt(context.Background(), Coordinates{Latitude: 51.5, Longitude: -0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Coordinates.Latitude != 51.5 || len(p.coords) != 1 {
		t.Fatalf("unexpected delegation: %+v, calls=%d", obs, len(p.coords))
	}
}

func TestCurrentInForwardsEmptyName(t *testing.T) {
	p := &recordingProvider{err: ErrNotFound}
	svc := NewService(p, zap.NewNop())

	_, err := svc.CurrentIn(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(p.cities) != 1 || p.cities[0] != "" {
		t.Fatalf("expected the empty name to be forwarded, got %q", p.cities)
	}
}
