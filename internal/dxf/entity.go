package dxf

// Point3 is a coordinate in drawing space.
type Point3 struct {
	X, Y, Z float64
}

// EntityData holds the attributes every DXF entity carries regardless of kind.
//
// Layer is never empty: entities without an explicit layer land on the
// default layer "0", which always exists in a parsed drawing.
type EntityData struct {
	Layer      string
	Handle     string
	Color      int
	LineType   string
	LineWeight int

	// Extrusion is the entity's extrusion direction (group codes 210/220/230)
	// when present. Nil means the default +Z.
	Extrusion *Point3
}

// Common gives access to the shared attributes through the Entity interface.
func (d *EntityData) Common() *EntityData { return d }

// Entity is a typed DXF drawing entity. Concrete kinds are the structs in
// this file; consumers dispatch with a type switch.
type Entity interface {
	Kind() string
	Common() *EntityData
}

// PointEntity is a POINT.
type PointEntity struct {
	EntityData
	Location Point3
}

func (*PointEntity) Kind() string { return "POINT" }

// Line is a LINE segment.
type Line struct {
	EntityData
	Start, End Point3
}

func (*Line) Kind() string { return "LINE" }

// Polyline covers LWPOLYLINE and legacy POLYLINE/VERTEX chains.
type Polyline struct {
	EntityData
	Vertices []Point3
	Closed   bool
}

func (*Polyline) Kind() string { return "POLYLINE" }

// Circle is a CIRCLE.
type Circle struct {
	EntityData
	Center Point3
	Radius float64
}

func (*Circle) Kind() string { return "CIRCLE" }

// Arc is an ARC. Angles are degrees, counterclockwise from +X.
type Arc struct {
	EntityData
	Center     Point3
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

func (*Arc) Kind() string { return "ARC" }

// Ellipse is an ELLIPSE. MajorAxis is the endpoint of the major axis
// relative to the center; Ratio is minor/major. Parameters are radians.
type Ellipse struct {
	EntityData
	Center     Point3
	MajorAxis  Point3
	Ratio      float64
	StartParam float64
	EndParam   float64
}

func (*Ellipse) Kind() string { return "ELLIPSE" }

// Spline is a SPLINE. Knots and Weights are optional; consumers that do
// not evaluate the basis functions approximate along the control points.
type Spline struct {
	EntityData
	ControlPoints []Point3
	Degree        int
	Knots         []float64
	Weights       []float64
	Closed        bool
}

func (*Spline) Kind() string { return "SPLINE" }

// Insert is an INSERT block reference. Rows/Columns describe an array
// insert; both default to 1.
type Insert struct {
	EntityData
	BlockName     string
	Position      Point3
	Rotation      float64 // degrees
	Scale         Point3
	Rows, Columns int
	RowSpacing    float64
	ColumnSpacing float64
}

func (*Insert) Kind() string { return "INSERT" }

// Text is a TEXT entity.
type Text struct {
	EntityData
	Position Point3
	Content  string
	Height   float64
	Rotation float64
}

func (*Text) Kind() string { return "TEXT" }

// MText is an MTEXT entity.
type MText struct {
	EntityData
	Position Point3
	Content  string
	Height   float64
	Rotation float64
}

func (*MText) Kind() string { return "MTEXT" }

// Hatch is a HATCH; only the boundary loops are kept.
type Hatch struct {
	EntityData
	Loops [][]Point3
}

func (*Hatch) Kind() string { return "HATCH" }

// Solid is a 2D SOLID (a filled triangle or quad).
type Solid struct {
	EntityData
	Corners []Point3
}

func (*Solid) Kind() string { return "SOLID" }

// ThreeDSolid is a 3DSOLID. Its ACIS body is opaque to this reader; the
// entity is carried for layer bookkeeping but produces no geometry.
type ThreeDSolid struct {
	EntityData
}

func (*ThreeDSolid) Kind() string { return "3DSOLID" }

// Dimension is a DIMENSION; only the anchor points survive.
type Dimension struct {
	EntityData
	DefinitionPoint Point3
	TextMidpoint    Point3
}

func (*Dimension) Kind() string { return "DIMENSION" }

// Leader covers LEADER and MLEADER vertex chains.
type Leader struct {
	EntityData
	Vertices []Point3
}

func (*Leader) Kind() string { return "LEADER" }

// Ray is a RAY or XLINE: an origin plus a unit direction. Infinite is
// true for XLINE (unbounded in both directions).
type Ray struct {
	EntityData
	Origin    Point3
	Direction Point3
	Infinite  bool
}

func (*Ray) Kind() string { return "RAY" }

// Block is a named, reusable group of entities. Inserts reference blocks
// by name; the block itself is owned by the drawing and never copied
// until expansion.
type Block struct {
	Name     string
	Base     Point3
	Layer    string
	Entities []Entity
}

// LayerInfo describes a layer table entry.
type LayerInfo struct {
	Name       string
	Color      int
	LineType   string
	LineWeight int
	Frozen     bool
	Locked     bool
	Off        bool
}

// Drawing is the parsed result: header variables, layer table, block
// definitions and the top-level entity list. A Drawing is built once per
// Parse call and not mutated afterwards; block expansion produces a new
// flat list and leaves the drawing intact.
type Drawing struct {
	Header   map[string]string
	Layers   map[string]*LayerInfo
	Blocks   map[string]*Block
	Entities []Entity

	// Canceled is set when parsing stopped at a chunk boundary due to
	// cooperative cancellation; the drawing then holds partial results.
	Canceled bool
}

// Layer resolves a layer by name, falling back to the default layer "0".
func (d *Drawing) Layer(name string) *LayerInfo {
	if l, ok := d.Layers[name]; ok {
		return l
	}
	return d.Layers[DefaultLayer]
}

// DefaultLayer is the layer every drawing has and unlayered entities
// default to.
const DefaultLayer = "0"
