package rfc9111

import "time"

// Entry is the stored metadata record described in spec §3. It is
// immutable once written; freshening produces a new record that preserves
// ID, Method, and Status. Invalidated is the one field ever mutated in
// place.
type Entry struct {
	ID                            string
	ResponseTime                  time.Time
	LastModified                  time.Time
	HasLastModified               bool
	ETag                          string
	HasETag                       bool
	Vary                          map[string]string
	Method                        string
	Status                        int
	CorrectedInitialAgeMS         int64
	LifetimeMS                    int64
	MustRevalidateWhenStale       bool
	SharedMustRevalidateWhenStale bool
	AlwaysRevalidate              bool
	ResponseHeaders               Headers
	Invalidated                   bool
}

// Validators bundles the two response-side validators an entry may carry.
type Validators struct {
	ETag            string
	HasETag         bool
	LastModified    time.Time
	HasLastModified bool
}

// CurrentValidators extracts the entry's validators for comparison against
// an incoming response during freshening.
func (e *Entry) CurrentValidators() Validators {
	return Validators{
		ETag:            e.ETag,
		HasETag:         e.HasETag,
		LastModified:    e.LastModified,
		HasLastModified: e.HasLastModified,
	}
}
