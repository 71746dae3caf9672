package transform

import (
	"math"
	"testing"

	"github.com/mapgrid/dxfgeo/internal/dxf"
)

func newDrawing(blocks ...*dxf.Block) *dxf.Drawing {
	d := &dxf.Drawing{
		Header: map[string]string{},
		Layers: map[string]*dxf.LayerInfo{dxf.DefaultLayer: {Name: dxf.DefaultLayer}},
		Blocks: map[string]*dxf.Block{},
	}
	for _, b := range blocks {
		d.Blocks[b.Name] = b
	}
	return d
}

func unitScale() dxf.Point3 { return dxf.Point3{X: 1, Y: 1, Z: 1} }

func TestExpandNestedInserts(t *testing.T) {
	inner := &dxf.Block{
		Name: "inner",
		Entities: []dxf.Entity{
			&dxf.Line{Start: dxf.Point3{}, End: dxf.Point3{X: 1}},
		},
	}
	outer := &dxf.Block{
		Name: "outer",
		Entities: []dxf.Entity{
			&dxf.Insert{
				BlockName: "inner",
				Position:  dxf.Point3{X: 5, Y: 5},
				Rotation:  90,
				Scale:     dxf.Point3{X: 2, Y: 2, Z: 2},
				Rows:      1, Columns: 1,
			},
		},
	}
	d := newDrawing(inner, outer)
	d.Entities = []dxf.Entity{
		&dxf.Insert{BlockName: "outer", Position: dxf.Point3{X: 10}, Scale: unitScale(), Rows: 1, Columns: 1},
	}

	out, issues := Expand(d)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 expanded entity, got %d", len(out))
	}

	// Inner line end (1,0): scaled to (2,0), rotated to (0,2), moved to
	// (5,7) inside outer, then shifted by the outer insert to (15,7).
	line := out[0].(*dxf.Line)
	if !pointsClose(line.Start, dxf.Point3{X: 15, Y: 5}) {
		t.Errorf("line start: got %+v, want (15, 5)", line.Start)
	}
	if !pointsClose(line.End, dxf.Point3{X: 15, Y: 7}) {
		t.Errorf("line end: got %+v, want (15, 7)", line.End)
	}

	// Source blocks must not be mutated by expansion.
	orig := inner.Entities[0].(*dxf.Line)
	if !pointsClose(orig.End, dxf.Point3{X: 1}) {
		t.Errorf("block entity was mutated: %+v", orig)
	}
}

func TestExpandCycleIsPrunedOnce(t *testing.T) {
	a := &dxf.Block{
		Name: "A",
		Entities: []dxf.Entity{
			&dxf.PointEntity{Location: dxf.Point3{X: 1}},
			&dxf.Insert{BlockName: "B", Scale: unitScale(), Rows: 1, Columns: 1},
		},
	}
	b := &dxf.Block{
		Name: "B",
		Entities: []dxf.Entity{
			&dxf.PointEntity{Location: dxf.Point3{X: 2}},
			&dxf.Insert{BlockName: "A", Scale: unitScale(), Rows: 1, Columns: 1},
		},
	}
	standalone := &dxf.Block{
		Name: "C",
		Entities: []dxf.Entity{
			&dxf.PointEntity{Location: dxf.Point3{X: 3}},
		},
	}
	d := newDrawing(a, b, standalone)
	d.Entities = []dxf.Entity{
		&dxf.Insert{BlockName: "A", Scale: unitScale(), Rows: 1, Columns: 1},
		&dxf.Insert{BlockName: "C", Scale: unitScale(), Rows: 1, Columns: 1},
	}

	out, issues := Expand(d)

	cycles := 0
	for _, issue := range issues {
		if issue.Kind == dxf.IssueCycle {
			cycles++
		}
	}
	if cycles != 1 {
		t.Errorf("expected exactly one cycle issue, got %d: %v", cycles, issues)
	}

	// A's point, B's point through A, and C's point all survive.
	if len(out) != 3 {
		t.Fatalf("expected 3 entities after pruning, got %d", len(out))
	}
}

func TestExpandUnknownBlock(t *testing.T) {
	d := newDrawing()
	d.Entities = []dxf.Entity{
		&dxf.Insert{BlockName: "missing", Scale: unitScale(), Rows: 1, Columns: 1},
		&dxf.PointEntity{Location: dxf.Point3{X: 1}},
	}

	out, issues := Expand(d)
	if len(out) != 1 {
		t.Fatalf("expected the point to survive alone, got %d entities", len(out))
	}
	if len(issues) != 1 || issues[0].Kind != dxf.IssueValidation {
		t.Fatalf("expected one validation issue, got %v", issues)
	}
}

func TestExpandArrayInsert(t *testing.T) {
	marker := &dxf.Block{
		Name: "marker",
		Entities: []dxf.Entity{
			&dxf.PointEntity{Location: dxf.Point3{}},
		},
	}
	d := newDrawing(marker)
	d.Entities = []dxf.Entity{
		&dxf.Insert{
			BlockName: "marker",
			Scale:     unitScale(),
			Rows:      2, Columns: 3,
			RowSpacing: 10, ColumnSpacing: 20,
		},
	}

	out, issues := Expand(d)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(out) != 6 {
		t.Fatalf("2×3 array should produce 6 copies, got %d", len(out))
	}

	want := map[dxf.Point3]bool{}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			want[dxf.Point3{X: float64(col) * 20, Y: float64(row) * 10}] = false
		}
	}
	for _, e := range out {
		p := e.(*dxf.PointEntity).Location
		seen := false
		for w := range want {
			if pointsClose(p, w) {
				want[w] = true
				seen = true
			}
		}
		if !seen {
			t.Errorf("unexpected grid position %+v", p)
		}
	}
	for w, ok := range want {
		if !ok {
			t.Errorf("grid position %+v missing", w)
		}
	}
}

func TestExpandRotatedArrayOffsetsFollowRotation(t *testing.T) {
	marker := &dxf.Block{
		Name:     "marker",
		Entities: []dxf.Entity{&dxf.PointEntity{}},
	}
	d := newDrawing(marker)
	d.Entities = []dxf.Entity{
		&dxf.Insert{
			BlockName: "marker",
			Rotation:  90,
			Scale:     unitScale(),
			Rows:      1, Columns: 2,
			ColumnSpacing: 10,
		},
	}

	out, _ := Expand(d)
	if len(out) != 2 {
		t.Fatalf("expected 2 copies, got %d", len(out))
	}
	// The second column's +X offset rotates to +Y.
	second := out[1].(*dxf.PointEntity).Location
	if !pointsClose(second, dxf.Point3{Y: 10}) {
		t.Errorf("rotated column offset: got %+v, want (0, 10)", second)
	}
}

func TestExpandArcAnglesFollowRotation(t *testing.T) {
	quarter := &dxf.Block{
		Name: "quarter",
		Entities: []dxf.Entity{
			&dxf.Arc{Radius: 1, StartAngle: 0, EndAngle: 90},
		},
	}
	d := newDrawing(quarter)
	d.Entities = []dxf.Entity{
		&dxf.Insert{BlockName: "quarter", Rotation: 45, Scale: unitScale(), Rows: 1, Columns: 1},
	}

	out, _ := Expand(d)
	arc := out[0].(*dxf.Arc)
	if math.Abs(arc.StartAngle-45) > eps || math.Abs(arc.EndAngle-135) > eps {
		t.Errorf("arc angles: got (%g, %g), want (45, 135)", arc.StartAngle, arc.EndAngle)
	}
}
