// Package ebird provides a client for interacting with the eBird API v2
package ebird

import "time"

// HotspotLocation represents a birding hotspot returned by the hotspot search
type HotspotLocation struct {
	LocID             string  `json:"locId"`
	LocName           string  `json:"locName"`
	Latitude          float64 `json:"lat"`
	Longitude         float64 `json:"lng"`
	CountryCode       string  `json:"countryCode"`
	Subnational1Code  string  `json:"subnational1Code"`
	LatestObsDate     string  `json:"latestObsDt,omitempty"`
	NumSpeciesAllTime int     `json:"numSpeciesAllTime,omitempty"`
}

// BirdSighting represents a single recent observation reported to eBird
type BirdSighting struct {
	SpeciesCode string  `json:"speciesCode"`
	CommonName  string  `json:"comName"`
	SciName     string  `json:"sciName"`
	LocID       string  `json:"locId"`
	LocName     string  `json:"locName"`
	ObsDate     string  `json:"obsDt"`
	HowMany     int     `json:"howMany,omitempty"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

// BirdSpecies represents a taxonomy search match used for autocomplete
type BirdSpecies struct {
	CommonName  string `json:"comName"`
	SciName     string `json:"sciName"`
	SpeciesCode string `json:"speciesCode"`
}

// Config holds configuration for the eBird client
type Config struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	CacheTTL    time.Duration `json:"cache_ttl"`
	RateLimitMS int           `json:"rate_limit_ms"` // Milliseconds between requests
}

// Error represents an eBird API error response
type Error struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	return e.Detail
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.ebird.org/v2",
		Timeout:     30 * time.Second,
		CacheTTL:    15 * time.Minute, // species search results go stale quickly enough
		RateLimitMS: 100,              // 10 requests per second max
	}
}
