// Package datastore persists observations, settings documents and users.
// It stands in for the remote store: append-with-generated-key, delete-by-key
// and full listing, backed by SQLite or MySQL.
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/featherquest/featherquest-go/internal/conf"
	"github.com/featherquest/featherquest-go/internal/errors"
)

// ErrNotFound reports a delete or lookup for a key that does not exist.
var ErrNotFound = errors.NewStd("record not found")

// Interface defines the operations the engine needs from the store.
type Interface interface {
	Open() error
	Close() error

	// SaveObservation assigns a fresh KeyID and appends the observation.
	SaveObservation(ctx context.Context, obs *Observation) error
	// DeleteObservation removes the observation with the given key.
	// Returns ErrNotFound when the key is absent.
	DeleteObservation(ctx context.Context, userID, keyID string) error
	// GetObservations returns all observations for the user, unordered.
	GetObservations(ctx context.Context, userID string) ([]Observation, error)

	// GetSettingsDocument returns the raw settings JSON for the user, or
	// ErrNotFound when no document has been saved.
	GetSettingsDocument(ctx context.Context, userID string) (string, error)
	SaveSettingsDocument(ctx context.Context, userID, document string) error

	// GetUser returns ErrNotFound for unknown account names.
	GetUser(ctx context.Context, name string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
}

// New creates the appropriate store backend based on the output settings.
func New(settings *conf.Settings) (Interface, error) {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}, nil
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}, nil
	default:
		return nil, errors.Newf("no observation store enabled in settings").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// DataStore implements the Interface over a gorm DB handle. The backend
// specific stores embed it and provide Open.
type DataStore struct {
	DB *gorm.DB
}

// SaveObservation assigns a time-ordered key and appends the record.
func (ds *DataStore) SaveObservation(ctx context.Context, obs *Observation) error {
	if ds.DB == nil {
		return errNotInitialized()
	}

	obs.KeyID = NewObservationKey()
	obs.CreatedAt = time.Now()

	if err := ds.DB.WithContext(ctx).Create(obs).Error; err != nil {
		return errors.Newf("failed to save observation: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", obs.UserID).
			Build()
	}
	return nil
}

// DeleteObservation removes the observation with the given key, reporting
// ErrNotFound when no row matched.
func (ds *DataStore) DeleteObservation(ctx context.Context, userID, keyID string) error {
	if ds.DB == nil {
		return errNotInitialized()
	}

	result := ds.DB.WithContext(ctx).
		Where("user_id = ? AND key_id = ?", userID, keyID).
		Delete(&Observation{})
	if result.Error != nil {
		return errors.Newf("failed to delete observation: %w", result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", userID).
			Context("key_id", keyID).
			Build()
	}
	if result.RowsAffected == 0 {
		return errors.New(fmt.Errorf("observation %s: %w", keyID, ErrNotFound)).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("user_id", userID).
			Context("key_id", keyID).
			Build()
	}
	return nil
}

// GetObservations returns every observation for the user. Ordering is applied
// by the caller; the store only guarantees completeness.
func (ds *DataStore) GetObservations(ctx context.Context, userID string) ([]Observation, error) {
	if ds.DB == nil {
		return nil, errNotInitialized()
	}

	var observations []Observation
	if err := ds.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&observations).Error; err != nil {
		return nil, errors.Newf("failed to load observations: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", userID).
			Build()
	}
	return observations, nil
}

// GetSettingsDocument returns the raw settings JSON for the user.
func (ds *DataStore) GetSettingsDocument(ctx context.Context, userID string) (string, error) {
	if ds.DB == nil {
		return "", errNotInitialized()
	}

	var doc SettingsDocument
	err := ds.DB.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New(fmt.Errorf("settings for %s: %w", userID, ErrNotFound)).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("user_id", userID).
				Build()
		}
		return "", errors.Newf("failed to load settings document: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", userID).
			Build()
	}
	return doc.Document, nil
}

// SaveSettingsDocument upserts the user's settings document.
func (ds *DataStore) SaveSettingsDocument(ctx context.Context, userID, document string) error {
	if ds.DB == nil {
		return errNotInitialized()
	}

	var doc SettingsDocument
	err := ds.DB.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		doc = SettingsDocument{UserID: userID, Document: document, UpdatedAt: time.Now()}
		err = ds.DB.WithContext(ctx).Create(&doc).Error
	case err == nil:
		doc.Document = document
		doc.UpdatedAt = time.Now()
		err = ds.DB.WithContext(ctx).Save(&doc).Error
	}
	if err != nil {
		return errors.Newf("failed to save settings document: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", userID).
			Build()
	}
	return nil
}

// GetUser looks up an account by name.
func (ds *DataStore) GetUser(ctx context.Context, name string) (*User, error) {
	if ds.DB == nil {
		return nil, errNotInitialized()
	}

	var user User
	err := ds.DB.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(fmt.Errorf("user %s: %w", name, ErrNotFound)).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("name", name).
				Build()
		}
		return nil, errors.Newf("failed to load user: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("name", name).
			Build()
	}
	return &user, nil
}

// CreateUser registers a new account.
func (ds *DataStore) CreateUser(ctx context.Context, user *User) error {
	if ds.DB == nil {
		return errNotInitialized()
	}

	user.CreatedAt = time.Now()
	if err := ds.DB.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Newf("failed to create user: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("name", user.Name).
			Build()
	}
	return nil
}

func errNotInitialized() error {
	return errors.Newf("database connection is not initialized").
		Component("datastore").
		Category(errors.CategoryState).
		Build()
}
