package microfacet

import (
	"fmt"
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// Type identifies the microfacet normal distribution family
type Type int

const (
	Beckmann Type = iota
	GGX
)

func (t Type) String() string {
	switch t {
	case Beckmann:
		return "beckmann"
	case GGX:
		return "ggx"
	}
	return "invalid"
}

// Distribution is an anisotropic microfacet distribution in the local
// shading frame. By default it samples the distribution of normals visible
// from the incident direction (Heitz and d'Eon 2014), which is what
// Distribution.PDF reports.
type Distribution struct {
	Type          Type
	AlphaU        float64
	AlphaV        float64
	SampleVisible bool
}

// NewDistribution creates a visible-normal sampled distribution
func NewDistribution(typ Type, alphaU, alphaV float64) Distribution {
	return Distribution{
		Type:          typ,
		AlphaU:        alphaU,
		AlphaV:        alphaV,
		SampleVisible: true,
	}
}

// IsIsotropic reports whether both roughness values agree
func (d Distribution) IsIsotropic() bool {
	return d.AlphaU == d.AlphaV
}

// Eval returns the microfacet normal density D(m)
func (d Distribution) Eval(m core.Vec3) float64 {
	alphaUV := d.AlphaU * d.AlphaV
	cosTheta := core.CosTheta(m)
	cos2Theta := cosTheta * cosTheta

	var result float64
	switch d.Type {
	case Beckmann:
		exponent := ((m.X*m.X)/(d.AlphaU*d.AlphaU) + (m.Y*m.Y)/(d.AlphaV*d.AlphaV)) / cos2Theta
		result = math.Exp(-exponent) / (math.Pi * alphaUV * cos2Theta * cos2Theta)
	default:
		x := m.X / d.AlphaU
		y := m.Y / d.AlphaV
		s := x*x + y*y + m.Z*m.Z
		result = 1 / (math.Pi * alphaUV * s * s)
	}

	// Prevent potential numerical issues in other stages of the model
	if !(result*cosTheta > 1e-20) {
		return 0
	}
	return result
}

// PDF returns the density of Sample for the normal m given wi
func (d Distribution) PDF(wi, m core.Vec3) float64 {
	result := d.Eval(m)
	if d.SampleVisible {
		result *= d.SmithG1(wi, m) * wi.AbsDot(m) / core.CosTheta(wi)
	} else {
		result *= core.CosTheta(m)
	}
	return result
}

// Sample draws a microfacet normal and returns it with its density
func (d Distribution) Sample(wi core.Vec3, sample core.Vec2) (core.Vec3, float64) {
	if d.SampleVisible {
		return d.sampleVisible(wi, sample)
	}
	return d.sampleAll(sample)
}

func (d Distribution) sampleVisible(wi core.Vec3, sample core.Vec2) (core.Vec3, float64) {
	// Step 1: stretch wi
	wiP := core.NewVec3(d.AlphaU*wi.X, d.AlphaV*wi.Y, wi.Z).Normalize()
	sinPhi, cosPhi := core.SinCosPhi(wiP)
	cosTheta := core.CosTheta(wiP)

	// Step 2: simulate P22_{wi}(slope.x, slope.y, 1, 1)
	slope := d.sampleVisible11(cosTheta, sample)

	// Step 3: rotate & unstretch
	slope = core.NewVec2(
		(cosPhi*slope.X-sinPhi*slope.Y)*d.AlphaU,
		(sinPhi*slope.X+cosPhi*slope.Y)*d.AlphaV,
	)

	// Step 4: compute normal & PDF
	m := core.NewVec3(-slope.X, -slope.Y, 1).Normalize()
	pdf := d.Eval(m) * d.SmithG1(wi, m) * wi.AbsDot(m) / core.CosTheta(wi)
	return m, pdf
}

func (d Distribution) sampleVisible11(cosThetaI float64, sample core.Vec2) core.Vec2 {
	if d.Type == Beckmann {
		return sampleVisible11Beckmann(cosThetaI, sample)
	}

	// Choose a projection direction and re-scale the sample
	p := core.SampleUniformDiskConcentric(sample)
	s := 0.5 * (1 + cosThetaI)
	p.Y = core.Lerp(core.SafeSqrt(1-p.X*p.X), p.Y, s)

	// Project onto chosen side of the hemisphere
	x, y := p.X, p.Y
	z := core.SafeSqrt(1 - x*x - y*y)

	// Convert to slope
	sinThetaI := core.SafeSqrt(1 - cosThetaI*cosThetaI)
	norm := 1 / (sinThetaI*y + cosThetaI*z)
	return core.NewVec2((cosThetaI*y-sinThetaI*z)*norm, x*norm)
}

func sampleVisible11Beckmann(cosThetaI float64, sample core.Vec2) core.Vec2 {
	sqrtPiInv := 1 / math.Sqrt(math.Pi)

	// Choose a projection direction and re-scale the sample
	tanThetaI := core.SafeSqrt(1-cosThetaI*cosThetaI) / cosThetaI
	cotThetaI := 1 / tanThetaI

	// Search interval, everything is parameterized in the erf() domain
	maxval := math.Erf(cotThetaI)

	// Start with a good initial guess (inverse of an approximation)
	sx := core.Clamp(sample.X, 1e-6, 1-1e-6)
	sy := core.Clamp(sample.Y, 1e-6, 1-1e-6)
	x := maxval - (maxval+1)*math.Erf(math.Sqrt(-math.Log(sx)))

	// Normalization factor for the CDF
	sx *= 1 + maxval + sqrtPiInv*tanThetaI*math.Exp(-cotThetaI*cotThetaI)

	// Three Newton iterations
	for i := 0; i < 3; i++ {
		slope := math.Erfinv(x)
		value := 1 + x + sqrtPiInv*tanThetaI*math.Exp(-slope*slope) - sx
		derivative := 1 - slope*tanThetaI
		x -= value / derivative
	}

	// Now convert back into a slope value
	return core.NewVec2(math.Erfinv(x), math.Erfinv(2*sy-1))
}

func (d Distribution) sampleAll(sample core.Vec2) (core.Vec3, float64) {
	var sinPhi, cosPhi, alpha2 float64
	if d.IsIsotropic() {
		sinPhi, cosPhi = math.Sincos(2 * math.Pi * sample.Y)
		alpha2 = d.AlphaU * d.AlphaU
	} else {
		ratio := d.AlphaV / d.AlphaU
		phi := math.Atan(ratio*math.Tan(math.Pi+2*math.Pi*sample.Y)) +
			math.Pi*math.Floor(2*sample.Y+0.5)
		sinPhi, cosPhi = math.Sincos(phi)
		cu := cosPhi / d.AlphaU
		sv := sinPhi / d.AlphaV
		alpha2 = 1 / (cu*cu + sv*sv)
	}

	var tan2Theta float64
	if d.Type == Beckmann {
		tan2Theta = -alpha2 * math.Log1p(-sample.X)
	} else {
		tan2Theta = alpha2 * sample.X / (1 - sample.X)
	}
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)

	m := core.NewVec3(cosPhi*sinTheta, sinPhi*sinTheta, cosTheta)
	return m, d.Eval(m) * cosTheta
}

// SmithG1 is the Smith shadowing-masking term for a single direction
func (d Distribution) SmithG1(v, m core.Vec3) float64 {
	xyAlpha2 := (d.AlphaU*v.X)*(d.AlphaU*v.X) + (d.AlphaV*v.Y)*(d.AlphaV*v.Y)
	tanThetaAlpha2 := xyAlpha2 / (v.Z * v.Z)

	var result float64
	switch {
	case xyAlpha2 == 0:
		// Perpendicular incidence, no shadowing/masking
		result = 1
	case d.Type == Beckmann:
		a := 1 / math.Sqrt(tanThetaAlpha2)
		if a >= 1.6 {
			result = 1
		} else {
			result = (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
		}
	default:
		result = 2 / (1 + math.Sqrt(1+tanThetaAlpha2))
	}

	// Ensure consistent orientation (can't see the back of the microfacet
	// from the front and vice versa)
	if v.Dot(m)*core.CosTheta(v) <= 0 {
		return 0
	}
	return result
}

// G is the separable shadowing-masking term for a pair of directions
func (d Distribution) G(wi, wo, m core.Vec3) float64 {
	return d.SmithG1(wi, m) * d.SmithG1(wo, m)
}

func (d Distribution) String() string {
	return fmt.Sprintf("Distribution[type=%s, alpha_u=%g, alpha_v=%g, sample_visible=%t]",
		d.Type, d.AlphaU, d.AlphaV, d.SampleVisible)
}
