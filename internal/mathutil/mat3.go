package mathutil

import "math"

// Mat3 is the row-major linear part of a placement: rotation times scale.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mat3Diag is a per-axis scale.
func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		row := Vec3{a[r*3], a[r*3+1], a[r*3+2]}
		for c := 0; c < 3; c++ {
			m[r*3+c] = row.Dot(Vec3{b[c], b[3+c], b[6+c]})
		}
	}
	return m
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		Vec3{m[0], m[1], m[2]}.Dot(v),
		Vec3{m[3], m[4], m[5]}.Dot(v),
		Vec3{m[6], m[7], m[8]}.Dot(v),
	}
}

// Det is negative for mirroring placements.
func (m Mat3) Det() float64 {
	return Vec3{m[0], m[1], m[2]}.Dot(Vec3{m[3], m[4], m[5]}.Cross(Vec3{m[6], m[7], m[8]}))
}

// Inverse returns identity for a singular matrix.
func (m Mat3) Inverse() Mat3 {
	d := m.Det()
	if d == 0 {
		return Mat3Identity()
	}
	// rows of the inverse are the cross products of the columns
	c0 := Vec3{m[0], m[3], m[6]}
	c1 := Vec3{m[1], m[4], m[7]}
	c2 := Vec3{m[2], m[5], m[8]}
	r0 := c1.Cross(c2).Scale(1 / d)
	r1 := c2.Cross(c0).Scale(1 / d)
	r2 := c0.Cross(c1).Scale(1 / d)
	return Mat3{r0[0], r0[1], r0[2], r1[0], r1[1], r1[2], r2[0], r2[1], r2[2]}
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

// RotX, RotY and RotZ rotate counter-clockwise about one axis, radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{1, 0, 0, 0, c, -s, 0, s, c}
}

func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, 0, s, 0, 1, 0, -s, 0, c}
}

func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, -s, 0, s, c, 0, 0, 0, 1}
}

// RotXYZ applies X, then Y, then Z: Rz · Ry · Rx.
func RotXYZ(rx, ry, rz float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotZ(rz), RotY(ry)), RotX(rx))
}

// EulerDegToMat3 is RotXYZ with angles in degrees, as scene files give them.
func EulerDegToMat3(deg Vec3) Mat3 {
	return RotXYZ(Deg2Rad(deg[0]), Deg2Rad(deg[1]), Deg2Rad(deg[2]))
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
