package chi2

import (
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// SphericalDomain parameterizes directions by (phi, cos(theta)) over
// [-pi, pi] x [-1, 1]. The map preserves area, so equally sized bins cover
// equal solid angles.
type SphericalDomain struct {
	PhiRes   int
	ThetaRes int
}

// Bins returns the number of histogram cells
func (d SphericalDomain) Bins() int {
	return d.PhiRes * d.ThetaRes
}

// BinArea returns the solid angle covered by one cell
func (d SphericalDomain) BinArea() float64 {
	return (2 * math.Pi / float64(d.PhiRes)) * (2 / float64(d.ThetaRes))
}

// ToDirection maps a point of the parameter domain to a unit vector
func (d SphericalDomain) ToDirection(phi, cosTheta float64) core.Vec3 {
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)
	sinPhi, cosPhi := math.Sincos(phi)
	return core.NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)
}

// FromDirection maps a unit vector to the parameter domain
func (d SphericalDomain) FromDirection(v core.Vec3) (phi, cosTheta float64) {
	return math.Atan2(v.Y, v.X), core.Clamp(v.Z, -1, 1)
}

// BinIndex returns the histogram cell containing v, row-major with rows
// along cos(theta)
func (d SphericalDomain) BinIndex(v core.Vec3) int {
	phi, cosTheta := d.FromDirection(v)
	i := int((phi + math.Pi) / (2 * math.Pi) * float64(d.PhiRes))
	j := int((cosTheta + 1) / 2 * float64(d.ThetaRes))
	i = min(max(i, 0), d.PhiRes-1)
	j = min(max(j, 0), d.ThetaRes-1)
	return j*d.PhiRes + i
}

// BinBounds returns the parameter ranges of cell (i, j)
func (d SphericalDomain) BinBounds(i, j int) (phi0, phi1, cos0, cos1 float64) {
	dPhi := 2 * math.Pi / float64(d.PhiRes)
	dCos := 2 / float64(d.ThetaRes)
	phi0 = -math.Pi + float64(i)*dPhi
	cos0 = -1 + float64(j)*dCos
	return phi0, phi0 + dPhi, cos0, cos0 + dCos
}

// Refinement limits for IntegrateBin. A quadrant is split again until its
// estimate changes by less than the tolerance or the depth runs out.
const (
	integrateRelTol   = 1e-3
	integrateAbsTol   = 1e-9
	integrateMaxDepth = 5
)

// rect is a rectangle of the (phi, cos(theta)) parameter domain
type rect struct {
	phi0, phi1 float64
	cos0, cos1 float64
}

func (r rect) quadrants() [4]rect {
	phiMid, cosMid := (r.phi0+r.phi1)/2, (r.cos0+r.cos1)/2
	return [4]rect{
		{r.phi0, phiMid, r.cos0, cosMid},
		{phiMid, r.phi1, r.cos0, cosMid},
		{r.phi0, phiMid, cosMid, r.cos1},
		{phiMid, r.phi1, cosMid, r.cos1},
	}
}

// midpoint integrates f over r with an n x n midpoint rule
func (d SphericalDomain) midpoint(r rect, n int, f func(core.Vec3) float64) float64 {
	dPhi := (r.phi1 - r.phi0) / float64(n)
	dCos := (r.cos1 - r.cos0) / float64(n)

	sum := 0.0
	for v := 0; v < n; v++ {
		cosTheta := r.cos0 + (float64(v)+0.5)*dCos
		for u := 0; u < n; u++ {
			phi := r.phi0 + (float64(u)+0.5)*dPhi
			sum += f(d.ToDirection(phi, cosTheta))
		}
	}
	return sum * dPhi * dCos
}

func (d SphericalDomain) integrateAdaptive(r rect, coarse float64, n, depth int, f func(core.Vec3) float64) float64 {
	quads := r.quadrants()
	var parts [4]float64
	fine := 0.0
	for k, q := range quads {
		parts[k] = d.midpoint(q, n, f)
		fine += parts[k]
	}
	if depth == 0 || math.Abs(fine-coarse) <= integrateRelTol*math.Abs(fine)+integrateAbsTol {
		return fine
	}

	sum := 0.0
	for k, q := range quads {
		sum += d.integrateAdaptive(q, parts[k], n, depth-1, f)
	}
	return sum
}

// IntegrateBin integrates f over cell (i, j). It starts from an n x n
// midpoint rule and subdivides where the estimate has not converged, so
// narrow peaks between the initial sample points are still resolved.
func (d SphericalDomain) IntegrateBin(i, j, n int, f func(core.Vec3) float64) float64 {
	phi0, phi1, cos0, cos1 := d.BinBounds(i, j)
	r := rect{phi0, phi1, cos0, cos1}
	return d.integrateAdaptive(r, d.midpoint(r, n, f), n, integrateMaxDepth, f)
}
