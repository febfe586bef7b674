package httpcache

import (
	"fmt"
	"net/http"
)

// TransportOption is a function that configures a Transport.
// Use the With* functions to create TransportOptions.
type TransportOption func(*Transport) error

// WithMarkCachedResponses configures whether responses returned from cache
// should include the X-From-Cache header.
// Default: true when using NewTransport.
func WithMarkCachedResponses(mark bool) TransportOption {
	return func(t *Transport) error {
		t.MarkCachedResponses = mark
		return nil
	}
}

// WithTransport sets the underlying http.RoundTripper used for requests
// the cache can't answer on its own. If nil, http.DefaultTransport is used.
func WithTransport(rt http.RoundTripper) TransportOption {
	return func(t *Transport) error {
		t.Transport = rt
		return nil
	}
}

// WithTransportTeeBufferCap bounds the buffer used to stream a response
// body to the cache while it is also being returned to the caller.
func WithTransportTeeBufferCap(n int) TransportOption {
	return func(t *Transport) error {
		if n <= 0 {
			return fmt.Errorf("httpcache: tee buffer cap must be positive")
		}
		t.TeeBufferCap = n
		return nil
	}
}
