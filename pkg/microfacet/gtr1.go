package microfacet

import (
	"fmt"
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// ClearcoatShadowingAlpha is the fixed roughness of the clearcoat
// shadowing-masking term. It does not follow clearcoat_gloss.
const ClearcoatShadowingAlpha = 0.25

// GTR1 is the isotropic Generalized Trowbridge-Reitz distribution with
// exponent 1, used by the clearcoat lobe
type GTR1 struct {
	Alpha float64
}

// NewGTR1 creates a GTR1 distribution with the given roughness
func NewGTR1(alpha float64) GTR1 {
	return GTR1{Alpha: alpha}
}

// ClearcoatAlpha maps clearcoat_gloss in [0, 1] to a GTR1 roughness;
// glossier coats get a smaller alpha
func ClearcoatAlpha(gloss float64) float64 {
	return core.Lerp(0.1, 0.001, gloss)
}

// Eval returns the normal distribution function D(m)
func (g GTR1) Eval(m core.Vec3) float64 {
	cosTheta := core.CosTheta(m)
	cos2Theta := cosTheta * cosTheta
	alpha2 := g.Alpha * g.Alpha

	result := (alpha2 - 1) / (math.Pi * math.Log(alpha2) * (1 + (alpha2-1)*cos2Theta))
	if !(result*cosTheta > 1e-20) {
		return 0
	}
	return result
}

// PDF is the density of Sample: D(m) cos(theta_m) on the upper hemisphere
func (g GTR1) PDF(m core.Vec3) float64 {
	if m.Z < 0 {
		return 0
	}
	return core.CosTheta(m) * g.Eval(m)
}

// Sample draws a microfacet normal by inverting the GTR1 CDF
func (g GTR1) Sample(sample core.Vec2) core.Vec3 {
	sinPhi, cosPhi := math.Sincos(2 * math.Pi * sample.X)
	alpha2 := g.Alpha * g.Alpha

	cos2Theta := (1 - math.Pow(alpha2, 1-sample.Y)) / (1 - alpha2)
	sinTheta := core.SafeSqrt(1 - cos2Theta)
	cosTheta := core.SafeSqrt(cos2Theta)

	return core.NewVec3(cosPhi*sinTheta, sinPhi*sinTheta, cosTheta)
}

func (g GTR1) String() string {
	return fmt.Sprintf("GTR1[alpha=%g]", g.Alpha)
}

// SmithGGX1 is the single-direction Smith GGX masking term with roughness alpha
func SmithGGX1(v, wh core.Vec3, alpha float64) float64 {
	alpha2 := alpha * alpha
	cosTheta := math.Abs(core.CosTheta(v))
	cos2Theta := cosTheta * cosTheta
	tan2Theta := (1 - cos2Theta) / cos2Theta

	result := 2 / (1 + math.Sqrt(1+alpha2*tan2Theta))

	// Perpendicular incidence, no shadowing/masking
	if v.Z == 1 {
		result = 1
	}

	// Can't see the back of the microfacet from the front and vice versa
	if v.Dot(wh)*core.CosTheta(v) <= 0 {
		result = 0
	}
	return result
}

// ClearcoatG is the separable clearcoat shadowing-masking term
func ClearcoatG(wi, wo, wh core.Vec3) float64 {
	return SmithGGX1(wi, wh, ClearcoatShadowingAlpha) * SmithGGX1(wo, wh, ClearcoatShadowingAlpha)
}
