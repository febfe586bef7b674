package rfc9111

import "time"

// LifetimeInputs mirrors spec §4.5's parameter list.
type LifetimeInputs struct {
	Shared               bool
	ExpiresHeader        string // raw "Expires" field value, "" if absent
	RequestCacheControl  Directives
	ResponseCacheControl Directives
	HeuristicLifetime    time.Duration
	Now                  time.Time
}

// Lifetime computes the freshness lifetime per spec §4.5's precedence
// order. ok is false when the response is not storable at all (distinct
// from a zero lifetime, which means "immediately stale").
func Lifetime(in LifetimeInputs) (lifetime time.Duration, ok bool) {
	if _, noStore := in.RequestCacheControl["no-store"]; noStore {
		return 0, false
	}
	if _, noStore := in.ResponseCacheControl["no-store"]; noStore {
		return 0, false
	}
	if in.Shared {
		if _, private := in.ResponseCacheControl["private"]; private {
			return 0, false
		}
	}
	if in.Shared {
		if seconds, valid := validDeltaSeconds(in.ResponseCacheControl, "s-maxage"); valid {
			return time.Duration(seconds) * time.Second, true
		}
	}
	if seconds, valid := validDeltaSeconds(in.ResponseCacheControl, "max-age"); valid {
		return time.Duration(seconds) * time.Second, true
	}
	if in.ExpiresHeader == "" {
		return in.HeuristicLifetime, true
	}
	if expires, err := time.Parse(time.RFC1123, in.ExpiresHeader); err == nil {
		d := expires.Sub(in.Now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// DefaultHeuristicLifetime is the configurable constant used when a
// response is cacheable but provides no explicit freshness signal. The
// common "10% of (now - Last-Modified)" heuristic is intentionally not
// applied here, per spec §4.5.
const DefaultHeuristicLifetime = 60 * time.Second
