package weather

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// Service validates lookups and dispatches them to the configured provider.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger.Named("weather-service"),
	}
}

// ProviderName reports which provider backs the service.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// CurrentAt returns current weather at the given coordinates.
func (s *Service) CurrentAt(ctx context.Context, coords Coordinates) (Observation, error) {
	if err := validate.Struct(coords); err != nil {
		return Observation{}, fmt.Errorf("invalid coordinates %s: %w", coords.Key(), err)
	}

	s.logger.Debug("fetching weather by coordinates",
		zap.String("provider", s.provider.Name()),
		zap.String("coords", coords.Key()))

	obs, err := s.provider.ByCoordinates(ctx, coords)
	if err != nil {
		s.logger.Warn("coordinate fetch failed",
			zap.String("provider", s.provider.Name()),
			zap.String("coords", coords.Key()),
			zap.Error(err))
		return Observation{}, err
	}
	return obs, nil
}

// CurrentIn returns current weather for a free-text city name. The name is
// forwarded untouched, including when empty.
func (s *Service) CurrentIn(ctx context.Context, city string) (Observation, error) {
	s.logger.Debug("fetching weather by city",
		zap.String("provider", s.provider.Name()),
		zap.String("city", city))

	obs, err := s.provider.ByCity(ctx, city)
	if err != nil {
		s.logger.Warn("city fetch failed",
			zap.String("provider", s.provider.Name()),
			zap.String("city", city),
			zap.Error(err))
		return Observation{}, err
	}
	return obs, nil
}
