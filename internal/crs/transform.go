package crs

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// TransformationError records a point or bounds conversion failure. These
// are accumulated by callers, never thrown per point.
type TransformationError struct {
	X, Y    float64
	Message string

	// FeatureID and Layer tie the failure back to its feature, when known.
	FeatureID int64
	Layer     string
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("cannot transform (%g, %g): %s", e.X, e.Y, e.Message)
}

// ErrBatchTransform is returned when a batch conversion fails more than
// half of its points: the result would be a mostly-broken dataset, so the
// whole operation fails instead of silently returning it.
type ErrBatchTransform struct {
	Failed, Total int
	From, To      System
}

func (e *ErrBatchTransform) Error() string {
	return fmt.Sprintf("batch transform %s → %s failed for %d of %d points",
		e.From, e.To, e.Failed, e.Total)
}

// batchFailureRatio is the failed-point ratio above which a batch
// operation fails as a whole.
const batchFailureRatio = 0.5

// maxPointAttempts caps how often one distinct point may be retried
// within a single conversion pass; pathological inputs otherwise loop.
const maxPointAttempts = 3

// Transformer converts points and bounds between reference systems.
//
// Axis-order reconciliation is centralized here and nowhere else: Swiss
// systems store (Easting, Northing) while WGS84 stores (longitude,
// latitude). Each Projection takes and returns its system's native order,
// so a transformed pair always means what the target system says it
// means; call sites never swap axes themselves.
type Transformer struct {
	registry *Registry
	attempts map[attemptKey]int
}

type attemptKey struct {
	x, y     float64
	from, to System
}

// NewTransformer creates a transformer over the registry's systems.
func NewTransformer(r *Registry) *Transformer {
	return &Transformer{registry: r, attempts: make(map[attemptKey]int)}
}

// Reset starts a new conversion pass: attempt bookkeeping from earlier
// passes is discarded, so a point that failed before reports its real
// failure again instead of the attempt cap. Batch and Bounds reset
// themselves; callers driving Point directly reset between passes.
func (t *Transformer) Reset() {
	t.attempts = make(map[attemptKey]int)
}

// Point converts one coordinate pair. A nil error means the returned pair
// is valid in the target system. None on either side passes coordinates
// through unmodified.
func (t *Transformer) Point(x, y float64, from, to System) (float64, float64, *TransformationError) {
	if !isFinite(x) || !isFinite(y) {
		return 0, 0, &TransformationError{X: x, Y: y, Message: "coordinate is not finite"}
	}
	if from == to || from == None || to == None {
		return x, y, nil
	}

	key := attemptKey{x: x, y: y, from: from, to: to}
	t.attempts[key]++
	if t.attempts[key] > maxPointAttempts {
		return 0, 0, &TransformationError{X: x, Y: y,
			Message: fmt.Sprintf("transform attempt cap (%d) exceeded", maxPointAttempts)}
	}

	fromDef, ok := t.registry.Lookup(from)
	if !ok {
		return 0, 0, &TransformationError{X: x, Y: y, Message: "unknown source system " + from.String()}
	}
	toDef, ok := t.registry.Lookup(to)
	if !ok {
		return 0, 0, &TransformationError{X: x, Y: y, Message: "unknown target system " + to.String()}
	}

	lon, lat := fromDef.proj.ToWGS84(x, y)
	outX, outY := toDef.proj.FromWGS84(lon, lat)

	if !isFinite(outX) || !isFinite(outY) {
		return 0, 0, &TransformationError{X: x, Y: y, Message: "projection produced a non-finite result"}
	}
	if to == WGS84 && (outX < -180 || outX > 180 || outY < -90 || outY > 90) {
		return 0, 0, &TransformationError{X: x, Y: y,
			Message: fmt.Sprintf("result (%g, %g) outside valid longitude/latitude range", outX, outY)}
	}

	delete(t.attempts, key)
	return outX, outY, nil
}

// Batch converts a point slice. Failing points are returned at their
// original coordinates together with their errors, so data is never
// silently dropped; above the 50% failure ratio the whole batch fails
// with an aggregate error instead.
func (t *Transformer) Batch(points []orb.Point, from, to System) ([]orb.Point, []TransformationError, error) {
	t.Reset()
	out := make([]orb.Point, len(points))
	var errs []TransformationError
	for i, p := range points {
		x, y, terr := t.Point(p[0], p[1], from, to)
		if terr != nil {
			errs = append(errs, *terr)
			out[i] = p
			continue
		}
		out[i] = orb.Point{x, y}
	}
	if len(points) > 0 && float64(len(errs))/float64(len(points)) > batchFailureRatio {
		return nil, errs, &ErrBatchTransform{Failed: len(errs), Total: len(points), From: from, To: to}
	}
	return out, errs, nil
}

// Bounds converts an axis-aligned bound by pushing all four corners
// through the transform and taking the envelope of the results.
func (t *Transformer) Bounds(b orb.Bound, from, to System) (orb.Bound, *TransformationError) {
	t.Reset()
	corners := [4]orb.Point{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
	}
	out := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, c := range corners {
		x, y, terr := t.Point(c[0], c[1], from, to)
		if terr != nil {
			return orb.Bound{}, terr
		}
		out = out.Extend(orb.Point{x, y})
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
