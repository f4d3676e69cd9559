// Package settings loads and saves per-user preferences: the distance unit
// system and the search radius used for nearby queries. Remote settings
// documents are loosely typed; the resolver validates them field by field and
// never assumes shape.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/antonholmquist/jason"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/logging"
	"github.com/featherquest/featherquest-go/internal/units"
)

// Default preference values, applied per field when the remote document or an
// individual field is absent or malformed.
const (
	DefaultMaxDistance = 50
)

// Settings are one user's preferences for nearby queries.
type Settings struct {
	UnitSystem  units.Unit `json:"unitSystem"`
	MaxDistance int        `json:"maxDistance"`
}

// Defaults returns the settings used when nothing has been saved remotely.
func Defaults() Settings {
	return Settings{
		UnitSystem:  units.Kilometers,
		MaxDistance: DefaultMaxDistance,
	}
}

// SettingsDocuments is the slice of the datastore the resolver depends on.
type SettingsDocuments interface {
	GetSettingsDocument(ctx context.Context, userID string) (string, error)
	SaveSettingsDocument(ctx context.Context, userID, document string) error
}

// Resolver loads and saves user settings. It does no caching: callers re-load
// when they need fresh values.
type Resolver struct {
	docs SettingsDocuments
	log  *slog.Logger
}

// NewResolver creates a resolver over the settings document store.
func NewResolver(docs SettingsDocuments) *Resolver {
	return &Resolver{
		docs: docs,
		log:  logging.ForService("settings"),
	}
}

// Load returns the user's settings with defaults applied field by field.
// An absent document is not an error; partial or malformed documents degrade
// to defaults per field, with a logged warning for malformed values. Only a
// store failure is returned as an error, alongside usable defaults.
func (r *Resolver) Load(ctx context.Context, userID string) (Settings, error) {
	resolved := Defaults()

	document, err := r.docs.GetSettingsDocument(ctx, userID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return resolved, nil
		}
		return resolved, err
	}

	doc, err := jason.NewObjectFromBytes([]byte(document))
	if err != nil {
		r.warn("settings document is not valid JSON, using defaults",
			"user_id", userID, "error", err)
		return resolved, nil
	}

	if unit, err := doc.GetString("unitSystem"); err == nil {
		resolved.UnitSystem = units.ParseUnit(unit)
	}

	if distance, err := doc.GetInt64("maxDistance"); err == nil {
		if distance > 0 {
			resolved.MaxDistance = int(distance)
		} else {
			r.warn("ignoring non-positive maxDistance in settings document",
				"user_id", userID, "max_distance", distance)
		}
	}

	return resolved, nil
}

// Save validates and persists the user's settings.
func (r *Resolver) Save(ctx context.Context, userID string, s Settings) error {
	if s.MaxDistance <= 0 {
		return errors.Newf("maxDistance must be positive, got %d", s.MaxDistance).
			Component("settings").
			Category(errors.CategoryValidation).
			Context("max_distance", s.MaxDistance).
			Build()
	}

	document, err := json.Marshal(map[string]any{
		"unitSystem":  s.UnitSystem.String(),
		"maxDistance": s.MaxDistance,
	})
	if err != nil {
		return errors.Newf("failed to encode settings document: %w", err).
			Component("settings").
			Category(errors.CategoryState).
			Build()
	}

	return r.docs.SaveSettingsDocument(ctx, userID, string(document))
}

func (r *Resolver) warn(msg string, args ...any) {
	if r.log != nil {
		r.log.Warn(msg, args...)
	} else {
		logging.Warn(msg, args...)
	}
}
