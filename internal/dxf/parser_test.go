package dxf

import (
	"errors"
	"strings"
	"testing"
)

// dxfDoc joins group code/value pairs into DXF text, one per line.
func dxfDoc(pairs ...string) string {
	return strings.Join(pairs, "\n") + "\n"
}

const sampleDrawing = `0
SECTION
2
HEADER
9
$ACADVER
1
AC1027
9
$EXTMIN
10
0.0
20
0.0
0
ENDSEC
0
SECTION
2
TABLES
0
TABLE
2
LAYER
0
LAYER
2
Walls
62
-3
70
5
0
ENDTAB
0
ENDSEC
0
SECTION
2
BLOCKS
0
BLOCK
2
Door
10
0
20
0
0
LINE
8
Walls
10
0
20
0
11
1
21
0
0
ENDBLK
0
ENDSEC
0
SECTION
2
ENTITIES
0
LWPOLYLINE
8
Walls
70
1
10
0
20
0
10
10
20
0
10
10
20
5
0
INSERT
2
Door
10
5
20
5
0
ENDSEC
0
EOF
`

func TestParseSampleDrawing(t *testing.T) {
	drawing, issues, err := Parse(sampleDrawing, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, issue := range issues {
		t.Errorf("unexpected issue: %s", issue)
	}

	if got := drawing.Header["$ACADVER"]; got != "AC1027" {
		t.Errorf("header $ACADVER = %q, want AC1027", got)
	}
	if got := drawing.Header["$EXTMIN"]; got != "0.0 0.0" {
		t.Errorf("header $EXTMIN = %q, want joined parts", got)
	}

	walls, ok := drawing.Layers["Walls"]
	if !ok {
		t.Fatal("layer Walls missing from layer table")
	}
	if !walls.Off || walls.Color != 3 {
		t.Errorf("negative color should mean off with color 3, got %+v", walls)
	}
	if !walls.Frozen || !walls.Locked {
		t.Errorf("flags 5 should set frozen and locked, got %+v", walls)
	}
	if _, ok := drawing.Layers[DefaultLayer]; !ok {
		t.Error("default layer 0 should always exist")
	}

	door, ok := drawing.Blocks["Door"]
	if !ok {
		t.Fatal("block Door missing")
	}
	if len(door.Entities) != 1 || door.Entities[0].Kind() != "LINE" {
		t.Fatalf("block Door should hold one LINE, got %v", door.Entities)
	}

	if len(drawing.Entities) != 2 {
		t.Fatalf("expected 2 top-level entities, got %d", len(drawing.Entities))
	}
	poly, ok := drawing.Entities[0].(*Polyline)
	if !ok {
		t.Fatalf("first entity should be a polyline, got %T", drawing.Entities[0])
	}
	if len(poly.Vertices) != 3 || !poly.Closed || poly.Common().Layer != "Walls" {
		t.Errorf("unexpected polyline: %+v", poly)
	}
	ins, ok := drawing.Entities[1].(*Insert)
	if !ok {
		t.Fatalf("second entity should be an insert, got %T", drawing.Entities[1])
	}
	if ins.BlockName != "Door" || ins.Common().Layer != DefaultLayer {
		t.Errorf("unexpected insert: %+v", ins)
	}
}

func TestParseFatalOnNoValidTags(t *testing.T) {
	_, _, err := Parse("this is not a dxf file\nat all\n", DefaultParseOptions())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestParseInvalidEntitiesDroppedWithIssues(t *testing.T) {
	text := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "CIRCLE", "10", "1", "20", "1", "40", "-5",
		"0", "LINE", "10", "0", "20", "0",
		"0", "POINT", "10", "3", "20", "4",
		"0", "ENDSEC",
	)
	drawing, issues, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawing.Entities) != 1 || drawing.Entities[0].Kind() != "POINT" {
		t.Fatalf("only the point should survive, got %v", drawing.Entities)
	}
	validation := 0
	for _, issue := range issues {
		if issue.Kind == IssueValidation {
			validation++
		}
	}
	if validation != 2 {
		t.Errorf("expected 2 validation issues, got %d: %v", validation, issues)
	}
}

func TestParseAggregatesUnsupportedKinds(t *testing.T) {
	text := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "WIPEOUT", "10", "0",
		"0", "WIPEOUT", "10", "1",
		"0", "ACAD_PROXY_ENTITY",
		"0", "POINT", "10", "0", "20", "0",
		"0", "ENDSEC",
	)
	drawing, issues, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawing.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(drawing.Entities))
	}
	var unsupported []Issue
	for _, issue := range issues {
		if issue.Kind == IssueUnsupported {
			unsupported = append(unsupported, issue)
		}
	}
	if len(unsupported) != 1 {
		t.Fatalf("unsupported kinds should aggregate into one issue, got %v", unsupported)
	}
	msg := unsupported[0].Message
	if !strings.Contains(msg, "3 entities") || !strings.Contains(msg, "WIPEOUT×2") {
		t.Errorf("unexpected aggregate message: %q", msg)
	}
}

func TestParseLegacyPolylineVertexChain(t *testing.T) {
	text := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "POLYLINE", "8", "Roads", "70", "1",
		"0", "VERTEX", "10", "0", "20", "0",
		"0", "VERTEX", "10", "5", "20", "0",
		"0", "VERTEX", "10", "5", "20", "5",
		"0", "SEQEND",
		"0", "ENDSEC",
	)
	drawing, _, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawing.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(drawing.Entities))
	}
	poly := drawing.Entities[0].(*Polyline)
	if len(poly.Vertices) != 3 || !poly.Closed {
		t.Errorf("unexpected polyline: %+v", poly)
	}
	if poly.Vertices[2] != (Point3{X: 5, Y: 5}) {
		t.Errorf("unexpected last vertex: %+v", poly.Vertices[2])
	}
}

func TestParseProgressAndCancel(t *testing.T) {
	var pairs []string
	pairs = append(pairs, "0", "SECTION", "2", "ENTITIES")
	for i := 0; i < 10; i++ {
		pairs = append(pairs, "0", "POINT", "10", "1", "20", "2")
	}
	pairs = append(pairs, "0", "ENDSEC")
	text := dxfDoc(pairs...)

	var progress [][2]int
	opts := ParseOptions{
		ChunkSize: 4,
		Progress:  func(done, total int) { progress = append(progress, [2]int{done, total}) },
	}
	drawing, _, err := Parse(text, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawing.Entities) != 10 {
		t.Fatalf("expected 10 entities, got %d", len(drawing.Entities))
	}
	want := [][2]int{{4, 10}, {8, 10}, {10, 10}}
	if len(progress) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, progress[i], want[i])
		}
	}

	calls := 0
	opts = ParseOptions{
		ChunkSize: 4,
		Cancel:    func() bool { calls++; return calls > 1 },
	}
	drawing, issues, err := Parse(text, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !drawing.Canceled {
		t.Error("drawing should be marked canceled")
	}
	if len(drawing.Entities) != 4 {
		t.Errorf("expected the first chunk's 4 entities, got %d", len(drawing.Entities))
	}
	found := false
	for _, issue := range issues {
		if issue.Kind == IssueCanceled {
			found = true
		}
	}
	if !found {
		t.Error("expected a canceled issue")
	}
}

func TestParseBlockWithoutNameDropped(t *testing.T) {
	text := dxfDoc(
		"0", "SECTION", "2", "BLOCKS",
		"0", "BLOCK", "10", "0", "20", "0",
		"0", "POINT", "10", "1", "20", "1",
		"0", "ENDBLK",
		"0", "ENDSEC",
	)
	drawing, issues, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawing.Blocks) != 0 {
		t.Errorf("nameless block should be dropped, got %v", drawing.Blocks)
	}
	if len(issues) != 1 || issues[0].Kind != IssueValidation {
		t.Errorf("expected one validation issue, got %v", issues)
	}
}

func TestParseSolidCornerReorder(t *testing.T) {
	text := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "SOLID",
		"10", "0", "20", "0",
		"11", "1", "21", "0",
		"12", "0", "22", "1",
		"13", "1", "23", "1",
		"0", "ENDSEC",
	)
	drawing, _, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	solid := drawing.Entities[0].(*Solid)
	want := []Point3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if len(solid.Corners) != len(want) {
		t.Fatalf("expected %d corners, got %d", len(want), len(solid.Corners))
	}
	for i, c := range solid.Corners {
		if c != want[i] {
			t.Errorf("corner %d = %+v, want %+v", i, c, want[i])
		}
	}
}
