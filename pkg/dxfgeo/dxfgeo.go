// Package dxfgeo turns CAD drawing interchange (DXF) text into
// geo-referenced vector features for map preview.
//
// The pipeline parses the drawing structure, converts raw records into
// typed entities, expands block references into flat world-space
// entities, detects the coordinate reference system from a coordinate
// sample, converts entities into point/line/polygon geometries, and hands
// the result to a PreviewManager for sampling, grouping and bounds.
//
// Example:
//
//	importer := dxfgeo.NewImporter()
//	result, err := importer.Import(string(fileBytes))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	preview := dxfgeo.NewPreviewManager(dxfgeo.PreviewOptions{
//	    MaxFeatures:           2000,
//	    ActiveReferenceSystem: dxfgeo.SystemWGS84,
//	})
//	preview.SetFeatures(result.Features())
//	collections, err := preview.Collections()
package dxfgeo

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/mapgrid/dxfgeo/internal/crs"
	"github.com/mapgrid/dxfgeo/internal/dxf"
	"github.com/mapgrid/dxfgeo/internal/geometry"
	"github.com/mapgrid/dxfgeo/internal/transform"
)

// Importer runs the DXF-to-features pipeline.
//
// Create one with NewImporter and use Import or ImportWithOptions. An
// importer holds no per-run state and may be reused across drawings, but
// is not safe for concurrent use.
type Importer interface {
	// Import runs the pipeline with default options.
	Import(text string) (*ImportResult, error)

	// ImportWithOptions runs the pipeline with custom options.
	ImportWithOptions(text string, opts ImportOptions) (*ImportResult, error)
}

// NewImporter creates an importer with the built-in reference systems.
func NewImporter() Importer {
	return &importer{registry: crs.NewRegistry()}
}

type importer struct {
	registry *crs.Registry
}

// Issue is a recoverable problem recorded during import. Issues never
// abort the pipeline; they are returned alongside the result.
type Issue struct {
	Kind    string // "syntax", "validation", "unsupported", "cycle", "canceled"
	Line    int    // 1-based input line, 0 when not line-bound
	Entity  string // DXF entity kind, if any
	Handle  string
	Message string
}

func issueFromInternal(i dxf.Issue) Issue {
	return Issue{
		Kind:    string(i.Kind),
		Line:    i.Line,
		Entity:  i.Entity,
		Handle:  i.Handle,
		Message: i.Message,
	}
}

// Layer describes one layer of the imported drawing.
type Layer struct {
	Name       string
	Color      int
	LineType   string
	LineWeight int
	Frozen     bool
	Locked     bool
	Off        bool
}

// ImportResult is the pipeline output: features in their detected source
// system plus everything the surrounding code needs to present them.
type ImportResult struct {
	features    []*Feature
	layers      []Layer
	header      map[string]string
	detected    ReferenceSystem
	confidence  float64
	issues      []Issue
	entityCount int
	canceled    bool
}

// Features returns the produced features.
func (r *ImportResult) Features() []*Feature { return r.features }

// Layers returns the drawing's layer table, default layer included.
func (r *ImportResult) Layers() []Layer { return r.layers }

// Header returns the drawing's header variables.
func (r *ImportResult) Header() map[string]string { return r.header }

// DetectedSystem returns the classified reference system of the raw
// coordinates, and the detector's confidence in [0, 1].
func (r *ImportResult) DetectedSystem() (ReferenceSystem, float64) {
	return r.detected, r.confidence
}

// Issues returns every recoverable problem found during import.
func (r *ImportResult) Issues() []Issue { return r.issues }

// EntityCount returns how many world-space entities the expanded drawing
// contained, converted or not.
func (r *ImportResult) EntityCount() int { return r.entityCount }

// Canceled reports whether the import was cooperatively canceled; the
// result then holds whatever was produced before the stop.
func (r *ImportResult) Canceled() bool { return r.canceled }

func (p *importer) Import(text string) (*ImportResult, error) {
	return p.ImportWithOptions(text, DefaultImportOptions())
}

func (p *importer) ImportWithOptions(text string, opts ImportOptions) (*ImportResult, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultImportOptions().ChunkSize
	}
	if opts.SegmentCount <= 0 {
		opts.SegmentCount = DefaultImportOptions().SegmentCount
	}

	parseOpts := dxf.ParseOptions{
		ChunkSize: opts.ChunkSize,
		Cancel:    opts.Cancel,
	}
	if opts.Progress != nil {
		parseOpts.Progress = func(done, total int) {
			opts.Progress(PhaseParse, fraction(done, total))
		}
	}

	drawing, parseIssues, err := dxf.Parse(text, parseOpts)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		header:   drawing.Header,
		canceled: drawing.Canceled,
	}
	for _, i := range parseIssues {
		result.issues = append(result.issues, issueFromInternal(i))
	}
	for _, l := range drawing.Layers {
		result.layers = append(result.layers, Layer{
			Name:       l.Name,
			Color:      l.Color,
			LineType:   l.LineType,
			LineWeight: l.LineWeight,
			Frozen:     l.Frozen,
			Locked:     l.Locked,
			Off:        l.Off,
		})
	}

	if drawing.Canceled {
		return result, nil
	}

	entities, expandIssues := transform.Expand(drawing)
	for _, i := range expandIssues {
		result.issues = append(result.issues, issueFromInternal(i))
	}
	result.entityCount = len(entities)

	detection := p.registry.Detect(samplePoints(entities), crs.DetectOptions{
		Override:    toCRS(opts.ReferenceSystem),
		HasOverride: opts.ReferenceSystem != SystemAuto,
		HeaderCode:  headerCRSHint(drawing.Header),
	})
	result.detected = fromCRS(detection.System)
	result.confidence = detection.Confidence

	// Geometry conversion, chunked like parsing so a host UI can keep
	// painting progress during large drawings.
	var id int64
	for start := 0; start < len(entities); start += opts.ChunkSize {
		if opts.Cancel != nil && opts.Cancel() {
			result.canceled = true
			result.issues = append(result.issues, Issue{
				Kind:    string(dxf.IssueCanceled),
				Message: "analysis canceled, result holds partial features",
			})
			break
		}
		end := start + opts.ChunkSize
		if end > len(entities) {
			end = len(entities)
		}
		for _, e := range entities[start:end] {
			geom, issue := geometry.Convert(e, opts.SegmentCount)
			if issue != nil {
				result.issues = append(result.issues, issueFromInternal(*issue))
				continue
			}
			if geom == nil {
				continue
			}
			id++
			result.features = append(result.features, &Feature{
				id:       id,
				layer:    e.Common().Layer,
				kind:     e.Kind(),
				geometry: geom,
				source:   result.detected,
			})
		}
		if opts.Progress != nil {
			opts.Progress(PhaseAnalyze, fraction(end, len(entities)))
		}
	}

	return result, nil
}

// samplePoints gathers raw coordinates for detection, up to the
// detector's own cap.
func samplePoints(entities []dxf.Entity) []orb.Point {
	points := make([]orb.Point, 0, crs.SampleCap)
	for _, e := range entities {
		for _, p := range entityPoints(e) {
			points = append(points, orb.Point{p.X, p.Y})
			if len(points) == crs.SampleCap {
				return points
			}
		}
	}
	return points
}

// entityPoints returns an entity's characteristic coordinates.
func entityPoints(e dxf.Entity) []dxf.Point3 {
	switch v := e.(type) {
	case *dxf.PointEntity:
		return []dxf.Point3{v.Location}
	case *dxf.Line:
		return []dxf.Point3{v.Start, v.End}
	case *dxf.Polyline:
		return v.Vertices
	case *dxf.Circle:
		return []dxf.Point3{v.Center}
	case *dxf.Arc:
		return []dxf.Point3{v.Center}
	case *dxf.Ellipse:
		return []dxf.Point3{v.Center}
	case *dxf.Spline:
		return v.ControlPoints
	case *dxf.Text:
		return []dxf.Point3{v.Position}
	case *dxf.MText:
		return []dxf.Point3{v.Position}
	case *dxf.Solid:
		return v.Corners
	case *dxf.Dimension:
		return []dxf.Point3{v.DefinitionPoint}
	case *dxf.Leader:
		return v.Vertices
	case *dxf.Ray:
		return []dxf.Point3{v.Origin}
	case *dxf.Hatch:
		if len(v.Loops) > 0 {
			return v.Loops[0]
		}
	}
	return nil
}

// headerCRSHint extracts an EPSG-style declaration from header variables.
// DXF has no standard header slot for a geodetic system, but exporters
// that write one use a custom variable holding an "EPSG:nnnn" value.
// Variables are scanned in sorted name order so a drawing carrying more
// than one such value resolves the same way on every run.
func headerCRSHint(header map[string]string) string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if value := header[name]; len(value) > 5 && strings.HasPrefix(value, "EPSG:") {
			return value
		}
	}
	return ""
}

func fraction(done, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}
