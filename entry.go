package httpcache

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"

	"github.com/arnavsurve/httpcache/internal/rfc9111"
)

// wireEntry is the gob-encodable projection of rfc9111.Entry. It exists
// as its own type rather than encoding rfc9111.Entry directly so that the
// persisted layout can evolve independently of the decision package's
// in-memory shape.
type wireEntry struct {
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
	ResponseHeaders               map[string]string
	Invalidated                   bool
}

func toWireEntry(e rfc9111.Entry) wireEntry {
	return wireEntry{
		ID:                            e.ID,
		ResponseTime:                  e.ResponseTime,
		LastModified:                  e.LastModified,
		HasLastModified:               e.HasLastModified,
		ETag:                          e.ETag,
		HasETag:                       e.HasETag,
		Vary:                          e.Vary,
		Method:                        e.Method,
		Status:                        e.Status,
		CorrectedInitialAgeMS:         e.CorrectedInitialAgeMS,
		LifetimeMS:                    e.LifetimeMS,
		MustRevalidateWhenStale:       e.MustRevalidateWhenStale,
		SharedMustRevalidateWhenStale: e.SharedMustRevalidateWhenStale,
		AlwaysRevalidate:              e.AlwaysRevalidate,
		ResponseHeaders:               map[string]string(e.ResponseHeaders),
		Invalidated:                   e.Invalidated,
	}
}

func (w wireEntry) toEntry() rfc9111.Entry {
	return rfc9111.Entry{
		ID:                            w.ID,
		ResponseTime:                  w.ResponseTime,
		LastModified:                  w.LastModified,
		HasLastModified:               w.HasLastModified,
		ETag:                          w.ETag,
		HasETag:                       w.HasETag,
		Vary:                          w.Vary,
		Method:                        w.Method,
		Status:                        w.Status,
		CorrectedInitialAgeMS:         w.CorrectedInitialAgeMS,
		LifetimeMS:                    w.LifetimeMS,
		MustRevalidateWhenStale:       w.MustRevalidateWhenStale,
		SharedMustRevalidateWhenStale: w.SharedMustRevalidateWhenStale,
		AlwaysRevalidate:              w.AlwaysRevalidate,
		ResponseHeaders:               rfc9111.Headers(w.ResponseHeaders),
		Invalidated:                   w.Invalidated,
	}
}

// encodeEntry marshals an Entry to its persisted gob representation.
func encodeEntry(e rfc9111.Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toWireEntry(e)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeEntry unmarshals a persisted Entry.
func decodeEntry(b []byte) (rfc9111.Entry, error) {
	var w wireEntry
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return rfc9111.Entry{}, err
	}
	return w.toEntry(), nil
}

// newEntryID mints a fresh candidate entry id; it becomes the entry's id
// only when insertion finds no prior entry to inherit an id from.
func newEntryID() string {
	return uuid.NewString()
}
