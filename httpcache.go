// Package httpcache provides an RFC 9111 compliant HTTP cache decision
// engine, plus a http.RoundTripper adapter (Transport) that drives it for
// applications that just want to drop a cache into an *http.Client.
//
// The decision logic itself lives in Engine (see engine.go); Transport is
// a thin wrapper that translates to and from net/http types and owns the
// one piece of policy that only a RoundTripper can decide: when to issue
// the network request and how to stream its body to both the caller and
// the cache at once.
package httpcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arnavsurve/httpcache/internal/rfc9111"
)

// XFromCache is the header added to responses that are returned from the cache.
const XFromCache = "X-From-Cache"

// Transport is an implementation of http.RoundTripper that consults an
// Engine before issuing requests, and reports every response back to the
// Engine so it can decide whether, and how, to cache it.
type Transport struct {
	// Transport is the underlying RoundTripper used to make requests that
	// the cache can't answer on its own. If nil, http.DefaultTransport is used.
	Transport http.RoundTripper
	// Engine is the RFC 9111 decision engine backing this Transport.
	Engine *Engine
	// MarkCachedResponses controls whether responses served from cache get
	// an extra X-From-Cache header.
	MarkCachedResponses bool
	// TeeBufferCap bounds the buffer used to stream a response body to the
	// cache while it is also being returned to the caller. Zero uses the
	// Engine's cap (WithTeeBufferCap), or the package default (see NewTee)
	// when that is unset too.
	TeeBufferCap int
}

// NewTransport returns a new Transport backed by engine, with
// MarkCachedResponses set to true.
func NewTransport(engine *Engine, opts ...TransportOption) *Transport {
	t := &Transport{Engine: engine, MarkCachedResponses: true}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			GetLogger().Error("failed to apply transport option", "error", err)
		}
	}
	return t
}

// Client returns an *http.Client that caches responses through t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

func (t *Transport) bufferCap() int {
	if t.TeeBufferCap > 0 {
		return t.TeeBufferCap
	}
	if t.Engine != nil && t.Engine.teeBufferCap > 0 {
		return t.Engine.teeBufferCap
	}
	return defaultTeeBufferCap
}

func cloneRequest(req *http.Request) *http.Request {
	return req.Clone(req.Context())
}

func requestHeaderMap(req *http.Request) map[string]string {
	return rfc9111.NewHeaders(req.Header)
}

func responseHeaderMap(h http.Header) map[string]string {
	return rfc9111.NewHeaders(h)
}

// RoundTrip asks Engine whether req can be answered from cache. A fresh
// entry is served directly; a stale one is revalidated with conditional
// headers added; a miss (or an entry the engine can't use) falls through
// to the network. Every network response is reported back to Engine so it
// can be cached, freshened, or discarded under RFC 9111's rules.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	url := req.URL.String()
	reqHeaders := requestHeaderMap(req)

	outcome, err := t.Engine.Lookup(ctx, url, req.Method, reqHeaders)
	if err != nil {
		// Storage failure: already reported through the error hook.
		// Fall through to the network rather than fail the request.
		return t.transport().RoundTrip(req)
	}

	switch outcome.Kind {
	case LookupResponse:
		return t.markFromCache(buildResponse(req, outcome.Response)), nil

	case LookupRevalidate:
		revalReq := cloneRequest(req)
		for k, v := range outcome.RevalidationHeaders {
			revalReq.Header.Set(k, v)
		}
		return t.forwardAndRecord(revalReq, req, reqHeaders)

	default: // LookupMiss
		return t.forwardAndRecord(req, req, reqHeaders)
	}
}

// forwardAndRecord issues forwardReq against the network and reports the
// result to Engine. origReq supplies the method/headers under which the
// exchange is recorded (forwardReq may carry extra validators origReq
// didn't have). A 304 is folded back into the freshened cache entry and
// that entry is served; any other response is streamed to the caller
// while a background goroutine drains a second copy into the cache.
func (t *Transport) forwardAndRecord(forwardReq, origReq *http.Request, reqHeaders map[string]string) (*http.Response, error) {
	requestTime := time.Now().UTC()
	resp, err := t.transport().RoundTrip(forwardReq)
	if err != nil {
		return nil, err
	}
	responseTime := time.Now().UTC()
	respHeaders := responseHeaderMap(resp.Header)

	if resp.StatusCode == http.StatusNotModified {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			GetLogger().Warn("error draining 304 response body", "url", origReq.URL.String(), "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			GetLogger().Warn("error closing 304 response body", "url", origReq.URL.String(), "error", err)
		}

		if err := t.Engine.OnResponse(origReq.Context(), origReq.URL.String(), origReq.Method, resp.StatusCode, reqHeaders, respHeaders, requestTime, responseTime, nil); err != nil {
			GetLogger().Warn("failed to record revalidation", "url", origReq.URL.String(), "error", err)
		}

		refreshed, err := t.Engine.Lookup(origReq.Context(), origReq.URL.String(), origReq.Method, reqHeaders)
		if err != nil || refreshed.Kind != LookupResponse {
			return resp, nil
		}
		return t.markFromCache(buildResponse(origReq, refreshed.Response)), nil
	}

	fast, slow := NewTee(resp.Body, t.bufferCap())
	resp.Body = fast

	url := origReq.URL.String()
	method := origReq.Method
	status := resp.StatusCode
	engine := t.Engine
	go func() {
		data, readErr := io.ReadAll(slow)
		_ = slow.Close()
		if readErr != nil {
			return
		}
		if err := engine.OnResponse(context.Background(), url, method, status, reqHeaders, respHeaders, requestTime, responseTime, bytes.NewReader(data)); err != nil {
			GetLogger().Warn("failed to record response", "url", url, "error", err)
		}
	}()

	return resp, nil
}

func (t *Transport) markFromCache(resp *http.Response) *http.Response {
	if t.MarkCachedResponses {
		resp.Header.Set(XFromCache, "1")
	}
	return resp
}

func buildResponse(req *http.Request, r *Response) *http.Response {
	header := make(http.Header, len(r.Headers))
	for k, v := range r.Headers {
		header.Set(k, v)
	}
	body := r.Body
	resp := &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	return resp
}
