// Package observations maintains the live, ordered view of a user's bird
// observations against the remote observation log. All visible state
// transitions originate from a committed remote mutation; the store never
// applies optimistic local updates.
package observations

import (
	"sort"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/geo"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound reports a delete for an observation id that is absent at
	// execution time. Delete-of-missing is an error by policy, not a silent
	// success, so callers always learn whether the key existed.
	ErrNotFound = datastore.ErrNotFound

	// ErrSubscriptionLost reports a subscription terminated because its
	// listener could not keep up with snapshot delivery.
	ErrSubscriptionLost = errors.NewStd("subscription lost")
)

// Observation is a single recorded sighting. Immutable once created; the only
// way to change the collection is Create or Delete.
type Observation struct {
	ID            string       `json:"id"`
	BirdName      string       `json:"birdName"`
	Date          string       `json:"date"` // "2006-01-02"
	Time          string       `json:"time"` // "15:04:05"
	Location      geo.Location `json:"location"`
	NumberOfBirds int          `json:"numberOfBirds"`
	Notes         string       `json:"notes"`
}

// Validate checks the observation before it reaches the remote store.
// Validation failures never reach the store layer.
func (o *Observation) Validate() error {
	if o.BirdName == "" {
		return errors.Newf("bird name is required").
			Component("observations").
			Category(errors.CategoryValidation).
			Build()
	}
	if o.NumberOfBirds < 0 {
		return errors.Newf("number of birds must not be negative, got %d", o.NumberOfBirds).
			Component("observations").
			Category(errors.CategoryValidation).
			Context("number_of_birds", o.NumberOfBirds).
			Build()
	}
	if !o.Location.Valid() {
		return errors.Newf("location out of range: %.4f, %.4f", o.Location.Latitude, o.Location.Longitude).
			Component("observations").
			Category(errors.CategoryValidation).
			Context("latitude", o.Location.Latitude).
			Context("longitude", o.Location.Longitude).
			Build()
	}
	return nil
}

// Collection is a full, consistent snapshot of one user's observations at one
// point in remote commit order. Snapshots are read-only: consumers get a fully
// replaced Collection on every change and must not mutate it in place.
type Collection []Observation

// sortCollection orders newest first by (date, time), ties broken by id
// ascending so the order is deterministic.
func sortCollection(c Collection) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Date != c[j].Date {
			return c[i].Date > c[j].Date
		}
		if c[i].Time != c[j].Time {
			return c[i].Time > c[j].Time
		}
		return c[i].ID < c[j].ID
	})
}

func fromRecord(rec *datastore.Observation) Observation {
	return Observation{
		ID:            rec.KeyID,
		BirdName:      rec.BirdName,
		Date:          rec.Date,
		Time:          rec.Time,
		Location:      geo.Location{Latitude: rec.Latitude, Longitude: rec.Longitude},
		NumberOfBirds: rec.NumberOfBirds,
		Notes:         rec.Notes,
	}
}

func toRecord(userID string, o *Observation) *datastore.Observation {
	return &datastore.Observation{
		UserID:        userID,
		BirdName:      o.BirdName,
		Date:          o.Date,
		Time:          o.Time,
		Latitude:      o.Location.Latitude,
		Longitude:     o.Location.Longitude,
		NumberOfBirds: o.NumberOfBirds,
		Notes:         o.Notes,
	}
}
