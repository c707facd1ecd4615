package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
)

// ObservationTransformer implements Transformer using domain transform
// functions with optional station registry enrichment.
type ObservationTransformer struct {
	resolver domain.StationResolver
	logger   *slog.Logger
}

// NewTransformer creates an ObservationTransformer. Pass a nil resolver to
// disable station enrichment.
func NewTransformer(resolver domain.StationResolver, logger *slog.Logger) *ObservationTransformer {
	return &ObservationTransformer{
		resolver: resolver,
		logger:   logger,
	}
}

func (t *ObservationTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Observation, error) {
	obs, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Observation{}, err
	}

	obs = domain.EnrichObservation(obs)
	obs = domain.EnrichWithStation(ctx, obs, t.resolver, t.logger)

	return obs, nil
}
