package httpcache

// Metrics receives counters for cache outcomes. It is the seam
// metrics/prometheus wires a real github.com/prometheus/client_golang
// collector into; NoOpMetrics is the default so the engine never pays for
// observability it hasn't been asked for.
type Metrics interface {
	// IncHit records a lookup served directly from a fresh entry.
	IncHit()
	// IncMiss records a lookup with no usable stored entry.
	IncMiss()
	// IncRevalidate records a lookup that returned a revalidation-request.
	IncRevalidate()
	// IncStore records a successful insertion of a new or freshened entry.
	IncStore()
	// IncInvalidate records a sticky invalidation of a stored entry.
	IncInvalidate()
	// IncError records a CacheError reported through the error hook,
	// tagged by its ErrKind.
	IncError(kind ErrKind)
}

// NoOpMetrics implements Metrics with no-ops. It is the default Engine
// metrics sink.
type NoOpMetrics struct{}

func (NoOpMetrics) IncHit()          {}
func (NoOpMetrics) IncMiss()         {}
func (NoOpMetrics) IncRevalidate()   {}
func (NoOpMetrics) IncStore()        {}
func (NoOpMetrics) IncInvalidate()   {}
func (NoOpMetrics) IncError(ErrKind) {}
