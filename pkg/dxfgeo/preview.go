package dxfgeo

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/mapgrid/dxfgeo/internal/crs"
)

// TransformationError records one failed coordinate conversion during
// preview computation. The affected feature keeps its original
// coordinates and is flagged with a warning instead of being dropped.
type TransformationError struct {
	X, Y      float64
	Message   string
	FeatureID int64
	Layer     string
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("feature %d (layer %q): cannot transform (%g, %g): %s",
		e.FeatureID, e.Layer, e.X, e.Y, e.Message)
}

// ErrPreviewTransform is returned when more than half of all coordinate
// conversions in a preview computation fail; a mostly-broken preview is
// worse than an error.
type ErrPreviewTransform struct {
	FailedPoints, TotalPoints int
	Target                    ReferenceSystem
}

func (e *ErrPreviewTransform) Error() string {
	return fmt.Sprintf("preview transform to %s failed for %d of %d points",
		e.Target, e.FailedPoints, e.TotalPoints)
}

// Collections is a computed preview: features grouped by geometry kind,
// counts, and padded bounds over the visible set.
type Collections struct {
	Points   []*Feature
	Lines    []*Feature
	Polygons []*Feature

	// Total is the feature count before visibility filtering and
	// sampling; Visible is the count after both.
	Total   int
	Visible int

	// Bounds covers the visible features, padded by the configured
	// fraction, in System coordinates.
	Bounds Bounds

	// System is the reference system the grouped coordinates are in.
	System ReferenceSystem

	// TransformErrors lists coordinate conversions that failed; the
	// affected features are retained untransformed and flagged.
	TransformErrors []TransformationError

	index *rtreego.Rtree
}

// PreviewManager owns the current feature set and preview options, and
// computes grouped, sampled, bounded collections from them.
//
// Computations are cached keyed by (feature-set identity, active
// reference system, visible-layer set); changing any of the three
// invalidates the cached result. The manager assumes a single active
// import session: it is not safe for concurrent use.
type PreviewManager struct {
	registry    *crs.Registry
	transformer *crs.Transformer
	opts        PreviewOptions
	features    []*Feature
	setID       uint64
	cache       *previewCache
}

// previewCacheEntries bounds how many computed previews are kept; layer
// toggling flips between a handful of keys in practice.
const previewCacheEntries = 8

// NewPreviewManager creates a manager with the given options. Zero
// values in opts fall back to DefaultPreviewOptions.
func NewPreviewManager(opts PreviewOptions) *PreviewManager {
	registry := crs.NewRegistry()
	return &PreviewManager{
		registry:    registry,
		transformer: crs.NewTransformer(registry),
		opts:        normalizePreviewOptions(opts),
		cache:       newPreviewCache(previewCacheEntries),
	}
}

func normalizePreviewOptions(opts PreviewOptions) PreviewOptions {
	defaults := DefaultPreviewOptions()
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = defaults.MaxFeatures
	}
	if opts.BoundaryTolerance <= 0 {
		opts.BoundaryTolerance = defaults.BoundaryTolerance
	}
	if opts.BoundsPadding < 0 {
		opts.BoundsPadding = defaults.BoundsPadding
	}
	return opts
}

// SetFeatures replaces the current feature set. The previous set's
// cached previews are discarded.
func (m *PreviewManager) SetFeatures(features []*Feature) {
	m.features = features
	m.setID++
	m.cache.clear()
}

// SetOptions replaces the preview options. Cached previews survive only
// when the non-key options (budget, tolerances) are unchanged; the cache
// key itself covers the reference system and visible-layer set.
func (m *PreviewManager) SetOptions(opts PreviewOptions) {
	opts = normalizePreviewOptions(opts)
	if opts.MaxFeatures != m.opts.MaxFeatures ||
		opts.BoundaryTolerance != m.opts.BoundaryTolerance ||
		opts.BoundsPadding != m.opts.BoundsPadding {
		m.cache.clear()
	}
	m.opts = opts
}

// Options returns the current preview options.
func (m *PreviewManager) Options() PreviewOptions { return m.opts }

// Collections computes (or returns the cached) preview for the current
// feature set and options.
func (m *PreviewManager) Collections() (*Collections, error) {
	key := previewKey{
		setID:  m.setID,
		system: m.opts.ActiveReferenceSystem,
		layers: layerKey(m.opts.VisibleLayers),
	}
	if c, ok := m.cache.get(key); ok {
		return c, nil
	}
	c, err := m.compute()
	if err != nil {
		return nil, err
	}
	m.cache.add(key, c)
	return c, nil
}

func (m *PreviewManager) compute() (*Collections, error) {
	target := m.opts.ActiveReferenceSystem

	// 1. Reproject into the active system where it differs from a
	// feature's recorded source system.
	transformed, transformErrs, err := m.reproject(m.features, target)
	if err != nil {
		return nil, err
	}

	// 2. Visibility filter; the empty layer set means everything shows.
	visible := make([]*Feature, 0, len(transformed))
	for _, f := range transformed {
		if m.layerVisible(f.Layer()) {
			visible = append(visible, f)
		}
	}

	// 3. Down-sample to budget.
	sampled := Sample(visible, m.opts.MaxFeatures, m.opts.BoundaryTolerance)

	// 4. Group by geometry kind and collect bounds over the visible set.
	c := &Collections{
		Total:           len(m.features),
		Visible:         len(sampled),
		System:          m.presentedSystem(),
		TransformErrors: transformErrs,
	}
	bounds := emptyBounds()
	for _, f := range sampled {
		bounds = bounds.Extend(f.Bound())
		switch f.Geometry().GeoJSONType() {
		case "Point":
			c.Points = append(c.Points, f)
		case "LineString":
			c.Lines = append(c.Lines, f)
		case "Polygon":
			c.Polygons = append(c.Polygons, f)
		}
	}

	// 5. Padded bounds, then the spatial index for viewport queries.
	if len(sampled) > 0 {
		c.Bounds = bounds.Pad(m.opts.BoundsPadding)
	}
	c.index = buildSpatialIndex(sampled)
	return c, nil
}

// presentedSystem resolves SystemAuto to the features' source system.
func (m *PreviewManager) presentedSystem() ReferenceSystem {
	if m.opts.ActiveReferenceSystem != SystemAuto {
		return m.opts.ActiveReferenceSystem
	}
	if len(m.features) > 0 {
		return m.features[0].SourceSystem()
	}
	return SystemLocal
}

// reproject converts features into the target system. Per-point failures
// flag the feature and keep its original coordinates; a failure ratio
// above one half fails the whole computation.
func (m *PreviewManager) reproject(features []*Feature, target ReferenceSystem) ([]*Feature, []TransformationError, error) {
	if target == SystemAuto {
		return features, nil, nil
	}
	m.transformer.Reset()

	out := make([]*Feature, 0, len(features))
	var errs []TransformationError
	totalPoints, failedPoints := 0, 0

	for _, f := range features {
		if f.SourceSystem() == target {
			out = append(out, f)
			continue
		}
		points := geometryPoints(f.Geometry())
		totalPoints += len(points)

		// Every point is attempted so the failure ratio reflects the whole
		// feature, not just its first bad coordinate. One error per feature
		// keeps the error list readable.
		failed := 0
		newPoints := make([]orb.Point, len(points))
		for i, p := range points {
			x, y, terr := m.transformer.Point(p[0], p[1], toCRS(f.SourceSystem()), toCRS(target))
			if terr != nil {
				failed++
				if failed == 1 {
					errs = append(errs, TransformationError{
						X: terr.X, Y: terr.Y,
						Message:   terr.Message,
						FeatureID: f.ID(),
						Layer:     f.Layer(),
					})
				}
				continue
			}
			newPoints[i] = orb.Point{x, y}
		}
		failedPoints += failed

		if failed > 0 {
			// Keep the feature at its original coordinates, flagged.
			out = append(out, f.addWarning("coordinate transform to "+target.String()+" failed"))
			continue
		}
		out = append(out, f.withGeometry(rebuildGeometry(f.Geometry(), newPoints), target))
	}

	if totalPoints > 0 && float64(failedPoints)/float64(totalPoints) > 0.5 {
		return nil, errs, &ErrPreviewTransform{
			FailedPoints: failedPoints,
			TotalPoints:  totalPoints,
			Target:       target,
		}
	}
	return out, errs, nil
}

// layerVisible applies the empty-set-means-all convention. Every
// visibility check routes through here.
func (m *PreviewManager) layerVisible(layer string) bool {
	if len(m.opts.VisibleLayers) == 0 {
		return true
	}
	for _, l := range m.opts.VisibleLayers {
		if l == layer {
			return true
		}
	}
	return false
}

// FeaturesInBounds returns the sampled, visible features intersecting
// the given box, using the R-tree index built with the collections.
func (m *PreviewManager) FeaturesInBounds(b Bounds) ([]*Feature, error) {
	c, err := m.Collections()
	if err != nil {
		return nil, err
	}
	if c.index == nil {
		return nil, nil
	}

	lengths := []float64{b.MaxX - b.MinX, b.MaxY - b.MinY}
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = indexEpsilon
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, lengths)
	if err != nil {
		return nil, fmt.Errorf("viewport rect: %w", err)
	}

	spatials := c.index.SearchIntersect(rect)
	result := make([]*Feature, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(*indexedFeature).feature)
	}
	return result, nil
}

// Stats summarizes the manager's state and cache performance.
type PreviewStats struct {
	TotalFeatures int
	CacheHits     int
	CacheMisses   int
}

// Stats returns manager statistics.
func (m *PreviewManager) Stats() PreviewStats {
	return PreviewStats{
		TotalFeatures: len(m.features),
		CacheHits:     m.cache.hits,
		CacheMisses:   m.cache.misses,
	}
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *Feature
	bounds  Bounds
}

// indexEpsilon keeps zero-area entries (points, axis-aligned lines)
// representable; rtreego requires non-zero rectangle dimensions.
const indexEpsilon = 1e-9

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	lengths := []float64{
		f.bounds.MaxX - f.bounds.MinX,
		f.bounds.MaxY - f.bounds.MinY,
	}
	for i := range lengths {
		if lengths[i] < indexEpsilon {
			lengths[i] = indexEpsilon
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{f.bounds.MinX, f.bounds.MinY}, lengths)
	return rect
}

func buildSpatialIndex(features []*Feature) *rtreego.Rtree {
	if len(features) == 0 {
		return nil
	}
	tree := rtreego.NewTree(2, 25, 50)
	for _, f := range features {
		tree.Insert(&indexedFeature{feature: f, bounds: f.Bound()})
	}
	return tree
}
