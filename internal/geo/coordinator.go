// Package geo coordinates unit-aware nearby queries against the eBird API.
// The hotspot and recent-sighting legs run concurrently and independently;
// either may fail without blocking the other, and failures are reported to
// the caller rather than retried.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/featherquest/featherquest-go/internal/ebird"
	"github.com/featherquest/featherquest-go/internal/logging"
	"github.com/featherquest/featherquest-go/internal/units"
)

// Leg identifies one independent sub-query of a nearby fetch.
type Leg string

const (
	LegHotspots  Leg = "hotspots"
	LegSightings Leg = "sightings"
)

// QueryError records the failure of a single query leg.
type QueryError struct {
	Leg Leg
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Leg, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NearbyResult aggregates the outcome of both legs. Result lists replace any
// prior result wholesale; they are never merged across calls. Both legs
// failing yields empty lists and two errors, which is reportable, not fatal.
type NearbyResult struct {
	Hotspots  []ebird.HotspotLocation
	Sightings []ebird.BirdSighting
	Errors    []*QueryError
}

// NearbyAPI is the slice of the eBird client the coordinator depends on.
type NearbyAPI interface {
	GetNearbyHotspots(ctx context.Context, lat, lng float64, distKm int) ([]ebird.HotspotLocation, error)
	GetRecentSightings(ctx context.Context, lat, lng float64, distKm, backDays int) ([]ebird.BirdSighting, error)
}

// Coordinator issues nearby hotspot and sighting queries.
type Coordinator struct {
	api          NearbyAPI
	lookbackDays int
	log          *slog.Logger
}

// NewCoordinator creates a coordinator over the given API client. lookbackDays
// bounds the recent-sightings window (the eBird maximum is 30).
func NewCoordinator(api NearbyAPI, lookbackDays int) *Coordinator {
	return &Coordinator{
		api:          api,
		lookbackDays: lookbackDays,
		log:          logging.ForService("geo"),
	}
}

// FetchNearby converts radius to kilometers and runs the hotspot and
// recent-sighting legs concurrently. Once issued, a fetch runs to completion
// or failure; callers needing cancellation discard the result.
func (c *Coordinator) FetchNearby(ctx context.Context, location Location, radius int, unit units.Unit) *NearbyResult {
	distKm := units.Convert(radius, unit, units.Kilometers)

	result := &NearbyResult{}
	var hotspotErr, sightingErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		result.Hotspots, hotspotErr = c.api.GetNearbyHotspots(ctx, location.Latitude, location.Longitude, distKm)
	}()

	go func() {
		defer wg.Done()
		result.Sightings, sightingErr = c.api.GetRecentSightings(ctx, location.Latitude, location.Longitude, distKm, c.lookbackDays)
	}()

	wg.Wait()

	if hotspotErr != nil {
		result.Hotspots = nil
		result.Errors = append(result.Errors, &QueryError{Leg: LegHotspots, Err: hotspotErr})
		c.logWarn("hotspot query failed", "error", hotspotErr, "dist_km", distKm)
	}
	if sightingErr != nil {
		result.Sightings = nil
		result.Errors = append(result.Errors, &QueryError{Leg: LegSightings, Err: sightingErr})
		c.logWarn("recent sightings query failed", "error", sightingErr, "dist_km", distKm)
	}

	if c.log != nil {
		c.log.Debug("nearby fetch completed",
			"dist_km", distKm,
			"unit", unit.String(),
			"hotspots", len(result.Hotspots),
			"sightings", len(result.Sightings),
			"failed_legs", len(result.Errors))
	}

	return result
}

func (c *Coordinator) logWarn(msg string, args ...any) {
	if c.log != nil {
		c.log.Warn(msg, args...)
	}
}
