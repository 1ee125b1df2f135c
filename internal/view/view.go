// Package view holds the per-session weather view: its Loading/Error/Ready
// state, the last known coordinates and the search text.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/geolocation"
	"github.com/i474232898/weather-map/internal/weather"
)

// User-visible failure messages, one per call site.
const (
	MsgLocationUnavailable = "Could not get your location."
	MsgFetchFailed         = "Unable to fetch weather data."
	MsgCityNotFound        = "City not found."
)

// Status is the tri-state driving rendering.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of a WeatherView.
// Message is set only in StatusError; Snapshot is meaningful only in StatusReady.
type State struct {
	Status      Status
	Message     string
	Snapshot    weather.Snapshot
	Coordinates weather.Coordinates
	SearchText  string
}

// Fetcher is the weather lookup the view depends on; *weather.Service satisfies it.
type Fetcher interface {
	CurrentAt(ctx context.Context, coords weather.Coordinates) (weather.Observation, error)
	CurrentIn(ctx context.Context, city string) (weather.Observation, error)
}

// WeatherView orchestrates geolocation and weather lookups for one user.
//
// Every lookup is stamped with a sequence number when it starts. When lookups
// overlap, only the most recently started one may write its result; older
// completions are dropped.
type WeatherView struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	mounted bool
}

// New creates a view in the Loading state.
func New(fetcher Fetcher, logger *zap.Logger) *WeatherView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherView{
		fetcher: fetcher,
		logger:  logger,
		state:   State{Status: StatusLoading},
	}
}

// State returns a copy of the current state.
func (v *WeatherView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Mounted reports whether geolocation has been requested or superseded by a search.
func (v *WeatherView) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Mount requests the device position once and, on success, fetches weather
// for it. Later calls are no-ops.
func (v *WeatherView) Mount(ctx context.Context, locator geolocation.Locator) {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = true
	v.mu.Unlock()

	seq := v.begin(nil)

	coords, err := locator.Locate(ctx)
	if err != nil {
		v.logger.Info("geolocation failed", zap.Error(err))
		v.commit(seq, func(s *State) {
			s.Status = StatusError
			s.Message = MsgLocationUnavailable
		})
		return
	}

	if !v.commit(seq, func(s *State) { s.Coordinates = coords }) {
		return
	}
	v.fetchCoordinates(ctx, seq, coords)
}

// FetchByCoordinates loads weather for coords. On success the view's
// coordinates become exactly coords.
func (v *WeatherView) FetchByCoordinates(ctx context.Context, coords weather.Coordinates) {
	seq := v.begin(nil)
	v.fetchCoordinates(ctx, seq, coords)
}

// SearchCity loads weather for a free-text city name and moves the view's
// coordinates to wherever the provider resolved it. An empty name is sent as-is.
// A search supersedes the initial geolocation, so the view counts as mounted.
func (v *WeatherView) SearchCity(ctx context.Context, city string) {
	seq := v.begin(func(s *State) {
		s.SearchText = city
		v.mounted = true
	})

	obs, err := v.fetcher.CurrentIn(ctx, city)
	if err != nil {
		v.logger.Info("city search failed", zap.String("city", city), zap.Error(err))
		v.commit(seq, func(s *State) {
			s.Status = StatusError
			s.Message = MsgCityNotFound
		})
		return
	}

	v.commit(seq, func(s *State) {
		s.Status = StatusReady
		s.Message = ""
		s.Snapshot = obs.Snapshot
		s.Coordinates = obs.Coordinates
	})
}

func (v *WeatherView) fetchCoordinates(ctx context.Context, seq uint64, coords weather.Coordinates) {
	obs, err := v.fetcher.CurrentAt(ctx, coords)
	if err != nil {
		v.logger.Info("coordinate fetch failed", zap.String("coords", coords.Key()), zap.Error(err))
		v.commit(seq, func(s *State) {
			s.Status = StatusError
			s.Message = MsgFetchFailed
		})
		return
	}

	v.commit(seq, func(s *State) {
		s.Status = StatusReady
		s.Message = ""
		s.Snapshot = obs.Snapshot
		s.Coordinates = coords
	})
}

// begin issues a new sequence number and moves the view to Loading.
// mutate runs with v.mu held.
func (v *WeatherView) begin(mutate func(*State)) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	v.state.Status = StatusLoading
	v.state.Message = ""
	if mutate != nil {
		mutate(&v.state)
	}
	return v.seq
}

// commit applies mutate only if seq is still the latest issued lookup.
func (v *WeatherView) commit(seq uint64, mutate func(*State)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.logger.Debug("discarding stale result",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", v.seq))
		return false
	}
	mutate(&v.state)
	return true
}
