// Package transform provides affine matrix utilities and recursive block
// reference expansion for parsed drawings.
package transform

import (
	"math"

	"github.com/mapgrid/dxfgeo/internal/dxf"
)

// Matrix is a 4×4 affine transform in row-major order. Matrices are
// values: composition returns a new matrix, nothing mutates in place.
type Matrix [16]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a transform moving points by (x, y, z).
func Translation(x, y, z float64) Matrix {
	m := Identity()
	m[3], m[7], m[11] = x, y, z
	return m
}

// RotationZ returns a counterclockwise rotation about the Z axis.
func RotationZ(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	m := Identity()
	m[0], m[1] = cos, -sin
	m[4], m[5] = sin, cos
	return m
}

// Scaling returns a transform scaling each axis independently.
func Scaling(x, y, z float64) Matrix {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Mul returns m·n, the transform that applies n first and then m.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * n[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Apply transforms a point through homogeneous coordinates.
func (m Matrix) Apply(p dxf.Point3) dxf.Point3 {
	return dxf.Point3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// ApplyVector transforms a direction, ignoring the translation column.
func (m Matrix) ApplyVector(p dxf.Point3) dxf.Point3 {
	return dxf.Point3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z,
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z,
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z,
	}
}

// ApplyAngle transforms a rotation field (degrees, in the XY plane): the
// direction at the given angle is pushed through the linear part and the
// resulting angle returned.
func (m Matrix) ApplyAngle(degrees float64) float64 {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	v := m.ApplyVector(dxf.Point3{X: cos, Y: sin})
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// planarScale is the in-plane scale factor the matrix applies, measured
// along the transformed X basis vector. Used for scalar fields like radii
// and text height, which assumes near-uniform XY scaling.
func (m Matrix) planarScale() float64 {
	v := m.ApplyVector(dxf.Point3{X: 1})
	return math.Hypot(v.X, v.Y)
}

// BlockTransform builds the placement matrix for an insert: scale, then
// rotate, then translate to the insertion point, with the block's base
// point subtracted first so block-local coordinates land correctly.
func BlockTransform(ins *dxf.Insert, base dxf.Point3) Matrix {
	m := Translation(ins.Position.X, ins.Position.Y, ins.Position.Z)
	m = m.Mul(RotationZ(ins.Rotation))
	m = m.Mul(Scaling(ins.Scale.X, ins.Scale.Y, ins.Scale.Z))
	m = m.Mul(Translation(-base.X, -base.Y, -base.Z))
	return m
}
