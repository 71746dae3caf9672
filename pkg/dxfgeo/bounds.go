package dxfgeo

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds is an axis-aligned bounding box in the coordinates of whatever
// reference system its features are in.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Intersects reports whether the two boxes overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX &&
		b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// Extend grows the box to cover o.
func (b Bounds) Extend(o Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Pad enlarges the box by a fraction of its size on every side, so edge
// features are not clipped at render time. A zero-size box stays as-is.
func (b Bounds) Pad(fraction float64) Bounds {
	dx := (b.MaxX - b.MinX) * fraction
	dy := (b.MaxY - b.MinY) * fraction
	return Bounds{
		MinX: b.MinX - dx,
		MinY: b.MinY - dy,
		MaxX: b.MaxX + dx,
		MaxY: b.MaxY + dy,
	}
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float64 {
	return math.Hypot(b.MaxX-b.MinX, b.MaxY-b.MinY)
}

// ToOrb converts to an orb.Bound.
func (b Bounds) ToOrb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinX, b.MinY},
		Max: orb.Point{b.MaxX, b.MaxY},
	}
}

func boundsFromOrb(b orb.Bound) Bounds {
	return Bounds{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

// emptyBounds is the identity element for Extend.
func emptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}
