package rfc9111

import "time"

// InsertionOutcome classifies what spec §4.8's insertion state machine
// decided to do with an observed response.
type InsertionOutcome int

const (
	// InsertionStop: the response is not storable, or carries a partial
	// range, or otherwise ends the path before any write. No caller
	// action is needed.
	InsertionStop InsertionOutcome = iota
	// InsertionInvalidatePrior: a 304 arrived with validators that don't
	// match the prior entry. The caller must mark the prior entry
	// invalidated (if not already) and write nothing else.
	InsertionInvalidatePrior
	// InsertionStore: the caller should write Entry as the new metadata
	// record. IsFreshen distinguishes "304 matched, blob untouched" from
	// "fresh representation, blob must be (re)written".
	InsertionStore
)

// InsertionInputs mirrors spec §4.8's parameter list, plus a
// caller-provided candidate ID (minted fresh for every call; discarded in
// favor of the prior entry's ID whenever a prior entry exists). Callers are expected to have already rejected a body stream
// reported as already-consumed (spec §4.8 step 1) before reaching here;
// that check depends on the concrete stream type and has no pure
// representation.
type InsertionInputs struct {
	PriorEntry      *Entry
	CandidateID         string
	Method              string
	Status              int
	HasContentRange     bool
	RequestHeaders      Headers
	ResponseHeaders     Headers // raw, not yet hop-by-hop stripped
	RequestTime         time.Time
	ResponseTime        time.Time
	Shared              bool
	HasAuthorization    bool
	ForceMustUnderstand bool
	HeuristicLifetime   time.Duration
	Now                 time.Time
}

// InsertionResult is the decision's outcome.
type InsertionResult struct {
	Outcome   InsertionOutcome
	Entry     Entry
	IsFreshen bool
}

func stopResult() InsertionResult {
	return InsertionResult{Outcome: InsertionStop}
}

// PrepareInsertion implements spec §4.8 steps 2 through 9. Step 1 (stream
// already consumed) and step 10/11 (body drain, atomic write, rollback)
// are the caller's I/O responsibility.
func PrepareInsertion(in InsertionInputs) InsertionResult {
	// Step 2: partial content is out of scope.
	if in.HasContentRange {
		return stopResult()
	}

	responseCC, _ := ParseCacheControl(
		in.ResponseHeaders.Get("cache-control"),
		in.ResponseHeaders.Has("cache-control"),
	)
	requestCC, _ := ParseCacheControl(
		in.RequestHeaders.Get("cache-control"),
		in.RequestHeaders.Has("cache-control"),
	)

	// Step 3: can_store.
	storable := CanStore(StorabilityInputs{
		Shared:               in.Shared,
		Method:               in.Method,
		Status:               in.Status,
		HasAuthorization:     in.HasAuthorization,
		ResponseCacheControl: responseCC,
		HasExpires:           in.ResponseHeaders.Has("expires"),
		Vary:                 in.ResponseHeaders.Get("vary"),
		ForceMustUnderstand:  in.ForceMustUnderstand,
	})
	if !storable {
		return stopResult()
	}

	// Step 4: lifetime.
	lifetime, ok := Lifetime(LifetimeInputs{
		Shared:               in.Shared,
		ExpiresHeader:        in.ResponseHeaders.Get("expires"),
		RequestCacheControl:  requestCC,
		ResponseCacheControl: responseCC,
		HeuristicLifetime:    in.HeuristicLifetime,
		Now:                  in.Now,
	})
	if !ok {
		return stopResult()
	}

	// Step 5: corrected initial age.
	correctedInitialAge := CorrectedInitialAge(AgeInputs{
		AgeHeader:    in.ResponseHeaders.Get("age"),
		DateHeader:   in.ResponseHeaders.Get("date"),
		RequestTime:  in.RequestTime,
		ResponseTime: in.ResponseTime,
		Now:          in.Now,
	})

	// Step 6: normalize Last-Modified.
	lastModified, hasLastModified := NormalizeLastModified(in.ResponseHeaders.Get("last-modified"))
	etag := in.ResponseHeaders.Get("etag")
	hasETag := in.ResponseHeaders.Has("etag")

	strippedHeaders := StripHopByHop(in.ResponseHeaders,
		in.RequestHeaders.Get("connection")+","+in.ResponseHeaders.Get("connection"))

	// Step 8: freshening check. A prior entry exists and this exchange is
	// a 304 revalidation of a GET-stored resource.
	isFreshenAttempt := in.PriorEntry != nil && in.Method == "GET" && in.Status == 304
	if isFreshenAttempt {
		prior := ValidatorSetFrom(in.PriorEntry.ResponseHeaders)
		incoming := ValidatorSetFrom(strippedHeaders)
		switch DecideFreshening(true, prior, incoming) {
		case FreshenMismatch:
			return InsertionResult{Outcome: InsertionInvalidatePrior}
		case FreshenMatch:
			// fall through to step 9, inheriting id/method/status below.
		}
	}

	_, mustRevalidate := responseCC["must-revalidate"]
	_, proxyRevalidate := responseCC["proxy-revalidate"]
	_, noCache := responseCC["no-cache"]

	entry := Entry{
		ID:                            in.CandidateID,
		ResponseTime:                  in.ResponseTime,
		LastModified:                  lastModified,
		HasLastModified:               hasLastModified,
		ETag:                          etag,
		HasETag:                       hasETag,
		Method:                        in.Method,
		Status:                        in.Status,
		CorrectedInitialAgeMS:         correctedInitialAge.Milliseconds(),
		LifetimeMS:                    lifetime.Milliseconds(),
		MustRevalidateWhenStale:       mustRevalidate,
		SharedMustRevalidateWhenStale: proxyRevalidate,
		AlwaysRevalidate:              noCache,
		ResponseHeaders:               strippedHeaders,
		Invalidated:                   false,
	}

	if isFreshenAttempt {
		// Step 9: a matched 304 freshens in place — id, method, status,
		// and the request's vary snapshot carry over unchanged; the
		// blob is untouched (caller skips the blob write for status 304).
		entry.ID = in.PriorEntry.ID
		entry.Method = in.PriorEntry.Method
		entry.Status = in.PriorEntry.Status
		entry.Vary = in.PriorEntry.Vary
		return InsertionResult{Outcome: InsertionStore, Entry: entry, IsFreshen: true}
	}

	// Step 9: id = prior.id if a prior entry exists, else the fresh
	// candidate id. The id only changes when there was nothing to
	// persist through (invariant I1); a genuinely new entry has no prior
	// to inherit from, so CandidateID already is the right value.
	if in.PriorEntry != nil {
		entry.ID = in.PriorEntry.ID
	}
	entry.Vary = BuildVary(in.ResponseHeaders.Get("vary"), in.RequestHeaders)
	return InsertionResult{Outcome: InsertionStore, Entry: entry, IsFreshen: false}
}
