package httpcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arnavsurve/httpcache/internal/rfc9111"
)

// Engine is the storage-agnostic RFC 9111 cache decision engine. It owns
// no transport: callers drive it by reporting request/response pairs
// through OnResponse and asking Lookup what to do before issuing a
// request of their own. This mirrors the teacher's Transport in spirit
// (functional options, a pluggable Cache backend) but trades the
// http.RoundTripper shape for the three-verb contract spec.md's
// EXTERNAL INTERFACES section describes.
type Engine struct {
	metaStore MetadataStore
	blobStore BlobStore

	shared              bool
	forceMustUnderstand bool
	heuristicLifetime   time.Duration
	teeBufferCap        int

	metrics    Metrics
	resilience *StorageResilience
	onError    ErrorHook
	clock      rfc9111.Clock
}

// NewEngine builds an Engine from Options. WithMetadataStore and
// WithBlobStore are required; every other option has a spec-defined
// default.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		shared:            true,
		heuristicLifetime: 60 * time.Second,
		teeBufferCap:      defaultTeeBufferCap,
		metrics:           NoOpMetrics{},
		onError:           defaultErrorHook,
		clock:             rfc9111.RealClock{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.metaStore == nil {
		return nil, fmt.Errorf("httpcache: NewEngine requires WithMetadataStore")
	}
	if e.blobStore == nil {
		return nil, fmt.Errorf("httpcache: NewEngine requires WithBlobStore")
	}
	return e, nil
}

func (e *Engine) now() time.Time { return e.clock.Now() }

func (e *Engine) reportError(kind ErrKind, op, url string, err error) {
	e.metrics.IncError(kind)
	e.onError(newCacheError(kind, op, url, err))
}

func normalizeHeaders(m map[string]string) rfc9111.Headers {
	out := make(rfc9111.Headers, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func (e *Engine) fetchEntry(ctx context.Context, op, url string) (*rfc9111.Entry, error) {
	raw, ok, err := e.executeGet(func() ([]byte, bool, error) {
		return e.metaStore.Get(ctx, url)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		e.reportError(ErrStorage, op, url, err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		e.reportError(ErrStorage, op, url, err)
		return nil, err
	}
	return &entry, nil
}

func (e *Engine) putEntry(ctx context.Context, op, url string, entry rfc9111.Entry) error {
	encoded, err := encodeEntry(entry)
	if err != nil {
		e.reportError(ErrStorage, op, url, err)
		return err
	}
	if err := e.executeMutate(func() error {
		return e.metaStore.Set(ctx, url, encoded)
	}); err != nil {
		e.reportError(ErrStorage, op, url, err)
		return err
	}
	return nil
}

// LookupKind classifies a Lookup outcome.
type LookupKind int

const (
	// LookupMiss means the caller should issue a fresh upstream request.
	LookupMiss LookupKind = iota
	// LookupRevalidate means the caller should issue a conditional
	// request upstream using RevalidationHeaders.
	LookupRevalidate
	// LookupResponse means Response is a usable cached answer,
	// including the synthesized 504 for only-if-cached misses.
	LookupResponse
)

// Response is a cached answer returned by Lookup, with Age recomputed.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// LookupOutcome is the result of a Lookup call.
type LookupOutcome struct {
	Kind                LookupKind
	Response            *Response
	RevalidationHeaders map[string]string
}

// Lookup implements spec §6's lookup(url, method, request_headers)
// contract. It never returns an error for policy reasons (see §7); the
// returned error is reserved for storage failures, already reported
// through the error hook before Lookup returns.
func (e *Engine) Lookup(ctx context.Context, url, method string, requestHeaders map[string]string) (LookupOutcome, error) {
	reqHeaders := normalizeHeaders(requestHeaders)

	entry, err := e.fetchEntry(ctx, "lookup", url)
	if err != nil {
		return LookupOutcome{}, err
	}

	result := rfc9111.DecideLookup(rfc9111.LookupInput{
		Method:  method,
		Request: reqHeaders,
		Entry:   entry,
		Shared:  e.shared,
		Now:     e.now(),
	})

	if result.InvalidateURL {
		if ierr := e.Invalidate(ctx, url); ierr != nil {
			return LookupOutcome{}, ierr
		}
	}

	reqCC, _ := rfc9111.ParseCacheControl(reqHeaders.Get("cache-control"), reqHeaders.Has("cache-control"))
	_, onlyIfCached := reqCC["only-if-cached"]

	switch result.Kind {
	case rfc9111.LookupMiss:
		e.metrics.IncMiss()
		if onlyIfCached {
			return LookupOutcome{Kind: LookupResponse, Response: &Response{
				Status:  504,
				Headers: map[string]string{},
				Body:    nil,
			}}, nil
		}
		return LookupOutcome{Kind: LookupMiss}, nil

	case rfc9111.LookupRevalidate:
		e.metrics.IncRevalidate()
		return LookupOutcome{Kind: LookupRevalidate, RevalidationHeaders: result.RevalidationHeaders}, nil

	default: // rfc9111.LookupServe
		var body []byte
		if entry.Method == "GET" {
			blob, ok, berr := e.executeGet(func() ([]byte, bool, error) {
				return e.blobStore.Get(ctx, blobKey(entry.ID, url))
			})
			if berr != nil && !errors.Is(berr, ErrNotFound) {
				e.reportError(ErrStorage, "lookup", url, berr)
				return LookupOutcome{}, berr
			}
			if !ok {
				// §4.7 step 11 / invariant I3: a GET entry whose blob was
				// evicted out from under us (eviction is the store's
				// problem, §6) is not a usable cached answer. Miss.
				e.metrics.IncMiss()
				if onlyIfCached {
					return LookupOutcome{Kind: LookupResponse, Response: &Response{
						Status:  504,
						Headers: map[string]string{},
						Body:    nil,
					}}, nil
				}
				return LookupOutcome{Kind: LookupMiss}, nil
			}
			body = blob
		}

		e.metrics.IncHit()
		headers := make(map[string]string, len(entry.ResponseHeaders)+1)
		for k, v := range entry.ResponseHeaders {
			headers[k] = v
		}
		headers["age"] = fmt.Sprintf("%d", rfc9111.FormatAgeSeconds(result.CurrentAge))

		return LookupOutcome{Kind: LookupResponse, Response: &Response{
			Status:  entry.Status,
			Headers: headers,
			Body:    body,
		}}, nil
	}
}

// OnResponse implements spec §6's on_response(...) contract. body may be
// nil (e.g. 304, HEAD). Non-failing completion does not imply storage;
// the engine may legitimately decide not to cache. Failures are reported
// through the error hook and never returned to a caller that only wants
// to know "did the application-facing exchange succeed" — OnResponse's
// error return exists solely so tests can assert on storage failures
// directly.
func (e *Engine) OnResponse(
	ctx context.Context,
	url, method string,
	status int,
	requestHeaders, responseHeaders map[string]string,
	requestTime, responseTime time.Time,
	body io.Reader,
) error {
	reqHeaders := normalizeHeaders(requestHeaders)
	respHeaders := normalizeHeaders(responseHeaders)

	prior, err := e.fetchEntry(ctx, "insert", url)
	if err != nil {
		return err
	}

	result := rfc9111.PrepareInsertion(rfc9111.InsertionInputs{
		PriorEntry:          prior,
		CandidateID:         newEntryID(),
		Method:              method,
		Status:              status,
		HasContentRange:     respHeaders.Has("content-range"),
		RequestHeaders:      reqHeaders,
		ResponseHeaders:     respHeaders,
		RequestTime:         requestTime,
		ResponseTime:        responseTime,
		Shared:              e.shared,
		HasAuthorization:    reqHeaders.Has("authorization"),
		ForceMustUnderstand: e.forceMustUnderstand,
		HeuristicLifetime:   e.heuristicLifetime,
		Now:                 e.now(),
	})

	switch result.Outcome {
	case rfc9111.InsertionStop:
		return nil

	case rfc9111.InsertionInvalidatePrior:
		if prior != nil && !prior.Invalidated {
			prior.Invalidated = true
			if err := e.putEntry(ctx, "insert", url, *prior); err != nil {
				return err
			}
		}
		e.metrics.IncInvalidate()
		return nil

	default: // rfc9111.InsertionStore
		entry := result.Entry
		if !result.IsFreshen {
			var bodyBytes []byte
			if body != nil {
				b, rerr := io.ReadAll(body)
				if rerr != nil {
					e.reportError(ErrStream, "insert", url, rerr)
					return rerr
				}
				bodyBytes = b
			}
			if err := e.executeMutate(func() error {
				return e.blobStore.Set(ctx, blobKey(entry.ID, url), bodyBytes)
			}); err != nil {
				e.rollbackInsertion(ctx, url, entry.ID)
				e.reportError(ErrStorage, "insert", url, err)
				return err
			}
		}

		if err := e.putEntry(ctx, "insert", url, entry); err != nil {
			if !result.IsFreshen {
				e.rollbackInsertion(ctx, url, entry.ID)
			}
			return err
		}
		e.metrics.IncStore()
		return nil
	}
}

// rollbackInsertion best-effort deletes both halves of a failed
// insertion, per §7's "best-effort deletion of both halves of the pair"
// rule. Errors here are swallowed; the caller is already reporting the
// originating failure.
func (e *Engine) rollbackInsertion(ctx context.Context, url, id string) {
	_ = e.metaStore.Delete(ctx, url)
	_ = e.blobStore.Delete(ctx, blobKey(id, url))
}

// Invalidate implements spec §6's invalidate(url) contract: it sets the
// sticky invalidated flag on any current entry. It does not delete.
func (e *Engine) Invalidate(ctx context.Context, url string) error {
	entry, err := e.fetchEntry(ctx, "invalidate", url)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}
	if entry.Invalidated {
		return nil
	}
	entry.Invalidated = true
	if err := e.putEntry(ctx, "invalidate", url, *entry); err != nil {
		return err
	}
	e.metrics.IncInvalidate()
	return nil
}
