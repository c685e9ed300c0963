package core

import "math"

// Local shading frame helpers. Directions are expressed in a frame where
// +Z is the shading normal.

// CosTheta returns the cosine of the polar angle of v
func CosTheta(v Vec3) float64 {
	return v.Z
}

// Cos2Theta returns the squared cosine of the polar angle of v
func Cos2Theta(v Vec3) float64 {
	return v.Z * v.Z
}

// Sin2Theta returns the squared sine of the polar angle of v
func Sin2Theta(v Vec3) float64 {
	return v.X*v.X + v.Y*v.Y
}

// Tan2Theta returns the squared tangent of the polar angle of v
func Tan2Theta(v Vec3) float64 {
	return math.Max(0, 1-Cos2Theta(v)) / Cos2Theta(v)
}

// SinCosPhi returns sin and cos of the azimuth of v. A direction along the
// normal has an undefined azimuth and reports (0, 1).
func SinCosPhi(v Vec3) (sinPhi, cosPhi float64) {
	sin2Theta := Sin2Theta(v)
	if sin2Theta <= 4*epsilon {
		return 0, 1
	}
	inv := 1 / math.Sqrt(sin2Theta)
	return Clamp(v.Y*inv, -1, 1), Clamp(v.X*inv, -1, 1)
}

// SphericalDirection converts polar/azimuthal angles to a unit vector
func SphericalDirection(theta, phi float64) Vec3 {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return Vec3{cosPhi * sinTheta, sinPhi * sinTheta, cosTheta}
}

// machine epsilon for float64 (half ulp of 1)
const epsilon = 0x1p-53

// Frame is an orthonormal basis used to move between world and shading space
type Frame struct {
	S, T, N Vec3
}

// NewFrame builds a frame around the unit normal n
func NewFrame(n Vec3) Frame {
	// Duff et al., "Building an Orthonormal Basis, Revisited"
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	s := Vec3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	t := Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return Frame{S: s, T: t, N: n}
}

// ToLocal expresses the world-space vector v in this frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// ToWorld converts the local vector v back to world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}
