// Package models defines the data structures shared across services,
// storage and the HTTP boundary.
package models

import (
	"encoding/json"
)

// SentinelNA is the placeholder for a field the provider could not supply.
// It is distinct from an empty string.
const SentinelNA = "N/A"

// OptionalFloat is a float64 that marshals as "N/A" when the provider did
// not supply a value. Fields are exported for gob encoding in the cache.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float wraps a provider value that may be absent.
func Float(v *float64) OptionalFloat {
	if v == nil {
		return OptionalFloat{}
	}
	return OptionalFloat{Value: *v, Valid: true}
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return json.Marshal(SentinelNA)
	}
	return json.Marshal(o.Value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = OptionalFloat{Value: v, Valid: true}
	return nil
}

// OptionalInt is an int that marshals as "N/A" when absent.
type OptionalInt struct {
	Value int
	Valid bool
}

// Int wraps a provider value that may be absent.
func Int(v *int) OptionalInt {
	if v == nil {
		return OptionalInt{}
	}
	return OptionalInt{Value: *v, Valid: true}
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return json.Marshal(SentinelNA)
	}
	return json.Marshal(o.Value)
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = OptionalInt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = OptionalInt{Value: v, Valid: true}
	return nil
}

// PlaceRecord is one externally visible search result. The place ID used to
// correlate the website lookup is stripped before the record leaves the
// orchestrator.
type PlaceRecord struct {
	Name    string        `json:"name"`
	Rating  OptionalFloat `json:"rating"`
	Reviews OptionalInt   `json:"reviews"`
	Website string        `json:"website"`
}

// SearchPage is one merged page of a keyword+location query. An empty
// NextPageToken means no further pages exist upstream.
type SearchPage struct {
	Records       []PlaceRecord
	NextPageToken string
}

// MultiLocationResult aggregates per-location record lists for one keyword.
// Every requested (deduplicated) location has an entry, failed locations
// included.
type MultiLocationResult struct {
	Keyword        string
	Results        map[string][]PlaceRecord
	TotalLocations int
	LocationsFound int
}
