package dxfgeo

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

// swissDrawing is a minimal drawing with LV95 coordinates: a boundary
// polyline on the default layer and a labeled survey point.
const swissDrawing = `0
SECTION
2
ENTITIES
0
LWPOLYLINE
10
2600000
20
1200000
10
2600100
20
1200000
10
2600100
20
1200100
0
POINT
8
Survey
10
2600050
20
1200050
0
ENDSEC
0
EOF
`

func TestImportDetectsSwissCoordinates(t *testing.T) {
	result, err := NewImporter().Import(swissDrawing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Issues()) != 0 {
		t.Errorf("unexpected issues: %v", result.Issues())
	}

	system, confidence := result.DetectedSystem()
	if system != SystemLV95 {
		t.Fatalf("detected %s, want LV95", system)
	}
	if confidence < 0.8 {
		t.Errorf("confidence %g below threshold", confidence)
	}

	features := result.Features()
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	line := features[0]
	if line.Layer() != "0" || line.EntityKind() != "POLYLINE" {
		t.Errorf("unexpected first feature: layer %q, kind %q", line.Layer(), line.EntityKind())
	}
	if _, ok := line.Geometry().(orb.LineString); !ok {
		t.Errorf("open polyline should be a linestring, got %T", line.Geometry())
	}
	if line.SourceSystem() != SystemLV95 {
		t.Errorf("feature source system: %s", line.SourceSystem())
	}
	point := features[1]
	if point.Layer() != "Survey" {
		t.Errorf("point layer: %q", point.Layer())
	}
}

func TestImportThenPreviewInWGS84(t *testing.T) {
	result, err := NewImporter().Import(swissDrawing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := NewPreviewManager(PreviewOptions{ActiveReferenceSystem: SystemWGS84})
	m.SetFeatures(result.Features())
	c, err := m.Collections()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Lines) != 1 || len(c.Points) != 1 {
		t.Fatalf("grouping: %d lines, %d points", len(c.Lines), len(c.Points))
	}

	// The LV95 false origin is Bern; everything here sits within a couple
	// hundred meters of it.
	ls := c.Lines[0].Geometry().(orb.LineString)
	for _, p := range ls {
		if p[0] < 7.4 || p[0] > 7.5 || p[1] < 46.9 || p[1] > 47.0 {
			t.Errorf("point %v outside the Bern neighborhood", p)
		}
	}
	if c.Bounds.MinX < 7.4 || c.Bounds.MaxX > 7.5 {
		t.Errorf("bounds outside the Bern neighborhood: %+v", c.Bounds)
	}
}

func TestImportReferenceSystemOverride(t *testing.T) {
	opts := DefaultImportOptions()
	opts.ReferenceSystem = SystemLocal
	result, err := NewImporter().ImportWithOptions(swissDrawing, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	system, confidence := result.DetectedSystem()
	if system != SystemLocal || confidence != 1 {
		t.Errorf("override ignored: %s (%g)", system, confidence)
	}
}

func TestImportHeaderDeclarationWithoutEntities(t *testing.T) {
	text := strings.Join([]string{
		"0", "SECTION", "2", "HEADER",
		"9", "$GEOREFCRS", "1", "EPSG:2056",
		"0", "ENDSEC",
	}, "\n") + "\n"

	result, err := NewImporter().Import(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	system, confidence := result.DetectedSystem()
	if system != SystemLV95 || confidence != 1 {
		t.Errorf("header declaration should be trusted with no sample: %s (%g)", system, confidence)
	}
}

func TestImportHeaderDeclarationIsDeterministic(t *testing.T) {
	// Two EPSG-shaped header values: the scan resolves them in sorted
	// variable order, so every run picks the same one.
	text := strings.Join([]string{
		"0", "SECTION", "2", "HEADER",
		"9", "$ZZCUSTOMCRS", "1", "EPSG:4326",
		"9", "$AACUSTOMCRS", "1", "EPSG:2056",
		"0", "ENDSEC",
	}, "\n") + "\n"

	for i := 0; i < 20; i++ {
		result, err := NewImporter().Import(text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		system, _ := result.DetectedSystem()
		if system != SystemLV95 {
			t.Fatalf("run %d: detected %s, want the sorted-first declaration (LV95)", i, system)
		}
	}
}

func TestImportFatalOnGarbage(t *testing.T) {
	_, err := NewImporter().Import("completely unreadable\nnot a drawing\n")
	if err == nil {
		t.Fatal("expected an error for input with no DXF structure")
	}
}

func TestImportExpandsBlocks(t *testing.T) {
	text := strings.Join([]string{
		"0", "SECTION", "2", "BLOCKS",
		"0", "BLOCK", "2", "Tree", "10", "0", "20", "0",
		"0", "CIRCLE", "10", "0", "20", "0", "40", "1",
		"0", "ENDBLK",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "INSERT", "2", "Tree", "10", "50", "20", "50",
		"0", "INSERT", "2", "Tree", "10", "60", "20", "60",
		"0", "ENDSEC",
	}, "\n") + "\n"

	result, err := NewImporter().Import(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	features := result.Features()
	if len(features) != 2 {
		t.Fatalf("two inserts of one circle should yield 2 features, got %d", len(features))
	}
	for _, f := range features {
		if f.EntityKind() != "CIRCLE" {
			t.Errorf("expanded feature kind: %q", f.EntityKind())
		}
		if _, ok := f.Geometry().(orb.Polygon); !ok {
			t.Errorf("circle should convert to a polygon, got %T", f.Geometry())
		}
	}
	// Distinct IDs even though both came from the same block.
	if features[0].ID() == features[1].ID() {
		t.Error("feature ids must be unique")
	}
}

func TestImportProgressPhases(t *testing.T) {
	var phases []Phase
	var finals []float64
	opts := DefaultImportOptions()
	opts.ChunkSize = 1
	opts.Progress = func(phase Phase, fraction float64) {
		phases = append(phases, phase)
		finals = append(finals, fraction)
	}

	_, err := NewImporter().ImportWithOptions(swissDrawing, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sawParse, sawAnalyze := false, false
	for _, p := range phases {
		switch p {
		case PhaseParse:
			sawParse = true
		case PhaseAnalyze:
			sawAnalyze = true
		}
	}
	if !sawParse || !sawAnalyze {
		t.Errorf("expected both phases, got %v", phases)
	}
	if finals[len(finals)-1] != 1 {
		t.Errorf("progress should end at 1, got %g", finals[len(finals)-1])
	}
}

func TestImportCancelProducesPartialResult(t *testing.T) {
	opts := DefaultImportOptions()
	opts.Cancel = func() bool { return true }

	result, err := NewImporter().ImportWithOptions(swissDrawing, opts)
	if err != nil {
		t.Fatalf("cancellation is not an error: %v", err)
	}
	if !result.Canceled() {
		t.Fatal("result should be marked canceled")
	}
	canceledIssue := false
	for _, issue := range result.Issues() {
		if issue.Kind == "canceled" {
			canceledIssue = true
		}
	}
	if !canceledIssue {
		t.Error("expected a canceled issue")
	}
}

func TestImportDefaultLayerAlwaysPresent(t *testing.T) {
	result, err := NewImporter().Import(swissDrawing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, l := range result.Layers() {
		if l.Name == "0" {
			found = true
		}
	}
	if !found {
		t.Error("layer 0 missing from the layer table")
	}
}

func TestParseReferenceSystemSpellings(t *testing.T) {
	tests := []struct {
		in   string
		want ReferenceSystem
		ok   bool
	}{
		{"wgs84", SystemWGS84, true},
		{"EPSG:4326", SystemWGS84, true},
		{"lv95", SystemLV95, true},
		{"2056", SystemLV95, true},
		{"LV03", SystemLV03, true},
		{"local", SystemLocal, true},
		{"auto", SystemAuto, true},
		{"", SystemAuto, true},
		{"mars2000", SystemAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParseReferenceSystem(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseReferenceSystem(%q) = %s, %v", tt.in, got, ok)
		}
	}
}
