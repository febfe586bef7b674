package rfc9111

import "time"

// LookupKind is the outcome class of a lookup decision.
type LookupKind int

const (
	// LookupMiss: no usable entry; the caller should go upstream.
	LookupMiss LookupKind = iota
	// LookupRevalidate: a conditional request should be issued upstream.
	LookupRevalidate
	// LookupServe: the stored entry may be served as-is (after the caller
	// loads its blob, for GET).
	LookupServe
)

// conditionalRequestHeaders are the headers whose presence means "the
// caller is doing its own conditional request" (spec §4.7 step 2).
var conditionalRequestHeaders = []string{
	"range", "if-match", "if-none-match", "if-modified-since",
	"if-unmodified-since", "if-range",
}

// passthroughMethods are the methods spec §4.7 step 1 lets pass through
// without invalidating (OPTIONS/TRACE).
var passthroughMethods = map[string]bool{
	"OPTIONS": true,
	"TRACE":   true,
}

// LookupInput is everything the pure lookup decision needs. Entry is nil
// when the store reported no metadata for the URL.
type LookupInput struct {
	Method  string
	Request Headers
	Entry   *Entry
	Shared  bool
	Now     time.Time
}

// LookupResult is the decision's outcome.
type LookupResult struct {
	Kind LookupKind

	// InvalidateURL is set when the caller should mark the entry
	// invalidated because an unrecognized/unsafe method reached the
	// lookup path (spec §4.7 step 1, §4.9).
	InvalidateURL bool

	// RevalidationHeaders carries If-None-Match / If-Modified-Since for a
	// LookupRevalidate outcome.
	RevalidationHeaders map[string]string

	// CurrentAge is populated for a LookupServe outcome, for rewriting the
	// Age response header.
	CurrentAge time.Duration
}

func missResult() LookupResult {
	return LookupResult{Kind: LookupMiss}
}

// DecideLookup implements spec §4.7 steps 1 through 11 (step 3's store
// fetch and step 11's blob fetch are the caller's responsibility; Entry
// being non-nil stands in for "fetch succeeded").
func DecideLookup(in LookupInput) LookupResult {
	// Step 1: method gating.
	if in.Method != "GET" && in.Method != "HEAD" {
		if !passthroughMethods[in.Method] {
			return LookupResult{Kind: LookupMiss, InvalidateURL: true}
		}
		return missResult()
	}

	// Step 2: caller-driven conditional request.
	for _, h := range conditionalRequestHeaders {
		if in.Request.Has(h) {
			return missResult()
		}
	}

	// Step 3: no entry.
	if in.Entry == nil {
		return missResult()
	}
	entry := in.Entry

	// Step 4: cross-method.
	if entry.Method == "HEAD" && in.Method == "GET" {
		return missResult()
	}

	// Step 5: vary.
	if !VaryMatches(entry.Vary, in.Request) {
		return missResult()
	}

	// Step 6: age/staleness.
	currentAge := CurrentAge(
		time.Duration(entry.CorrectedInitialAgeMS)*time.Millisecond,
		entry.ResponseTime,
		in.Now,
	)
	lifetime := time.Duration(entry.LifetimeMS) * time.Millisecond
	stale := currentAge - lifetime
	isStale := stale >= 0

	// Step 7: request Cache-Control.
	reqCC, _ := ParseCacheControl(in.Request.Get("cache-control"), in.Request.Has("cache-control"))
	_, noCache := reqCC["no-cache"]

	// Step 8: force revalidation.
	forceRevalidate := entry.Invalidated ||
		noCache ||
		entry.AlwaysRevalidate ||
		(isStale && entry.MustRevalidateWhenStale) ||
		(in.Shared && isStale && entry.SharedMustRevalidateWhenStale)

	// Step 9: strict max-stale / min-fresh.
	acceptStale := false
	if maxStaleRaw, ok := reqCC["max-stale"]; ok {
		if maxStaleRaw == "" {
			acceptStale = true // bare max-stale accepts any staleness
		} else if maxStaleSeconds, valid := ParsePositiveInt(maxStaleRaw); valid {
			maxStale := time.Duration(maxStaleSeconds) * time.Second
			acceptStale = maxStale >= stale
		}
	}

	minFresh := time.Duration(0)
	minFreshPresent := false
	if minFreshRaw, ok := reqCC["min-fresh"]; ok {
		if seconds, valid := ParsePositiveInt(minFreshRaw); valid {
			minFresh = time.Duration(seconds) * time.Second
			minFreshPresent = true
		}
	}
	freshEnough := (currentAge + minFresh) < lifetime

	// Step 10.
	if forceRevalidate || (minFreshPresent && freshEnough) || (isStale && !acceptStale) {
		headers := map[string]string{}
		if entry.HasLastModified {
			headers["If-Modified-Since"] = entry.LastModified.UTC().Format(time.RFC1123)
		}
		if entry.HasETag {
			headers["If-None-Match"] = entry.ETag
		}
		if len(headers) == 0 {
			return missResult()
		}
		return LookupResult{Kind: LookupRevalidate, RevalidationHeaders: headers}
	}

	// Step 11 (partial — blob presence is checked by the caller).
	return LookupResult{Kind: LookupServe, CurrentAge: currentAge}
}
