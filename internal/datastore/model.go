// model.go defines the persisted data model for the observation store
package datastore

import "time"

// Observation represents a single recorded bird observation. KeyID is the
// store-assigned, time-ordered public key; the numeric ID is internal to the
// database and never leaves this package.
type Observation struct {
	ID            uint   `gorm:"primaryKey"`
	KeyID         string `gorm:"uniqueIndex;size:36"`
	UserID        string `gorm:"index:idx_observations_user"`
	BirdName      string
	Date          string `gorm:"index:idx_observations_date"` // "2006-01-02"
	Time          string // "15:04:05"
	Latitude      float64
	Longitude     float64
	NumberOfBirds int
	Notes         string
	CreatedAt     time.Time
}

// SettingsDocument holds one user's preference document as raw JSON. The
// document is loosely typed on purpose: readers validate it field by field.
type SettingsDocument struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex"`
	Document  string `gorm:"type:text"`
	UpdatedAt time.Time
}

// User represents an account for the credential check.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
}
