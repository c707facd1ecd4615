package domain

import (
	"context"
	"log/slog"
)

// StationInfo contains station metadata returned by a registry provider.
type StationInfo struct {
	Name      string
	Network   string
	Lat       float64
	Lon       float64
	Elevation float64
}

// StationResolver enriches observations with station registry metadata.
type StationResolver interface {
	// Resolve looks up a station by its identifier.
	Resolve(ctx context.Context, stationID string) (StationInfo, error)
}

// EnrichWithStation attempts to enrich an observation with registry metadata.
// If resolver is nil or the lookup fails, the observation is returned with
// StationSource set accordingly (graceful degradation).
func EnrichWithStation(ctx context.Context, obs Observation, resolver StationResolver, logger *slog.Logger) Observation {
	if resolver == nil {
		return obs
	}
	if obs.Station == "" {
		obs.StationSource = "original"
		return obs
	}

	info, err := resolver.Resolve(ctx, obs.Station)
	if err != nil {
		logger.Warn("station lookup failed",
			"observation_id", obs.ID,
			"station", obs.Station,
			"error", err,
		)
		obs.StationSource = "failed"
		return obs
	}
	if info.Name == "" {
		obs.StationSource = "original"
		return obs
	}

	obs.StationName = info.Name
	obs.Network = info.Network
	obs.StationSource = "registry"
	// Registry coordinates fill gaps but never override reported ones.
	if obs.Geo.Lat == 0 && obs.Geo.Lon == 0 {
		obs.Geo = Geo{Lat: info.Lat, Lon: info.Lon}
	}
	if obs.Elevation == 0 {
		obs.Elevation = info.Elevation
	}
	return obs
}
