package material

import (
	"math"

	"github.com/df07/go-principled/pkg/core"
)

// DielectricFresnel computes the unpolarized Fresnel reflectance of a smooth
// dielectric interface with relative index of refraction eta (interior over
// exterior). cosThetaI is measured against the normal; a negative value
// means the ray arrives from the interior.
//
// It returns the reflectance, the cosine of the refracted direction (with
// the sign opposite to cosThetaI) and the relative indices of refraction
// along the incident (etaIT) and the transmitted (etaTI) direction.
func DielectricFresnel(cosThetaI, eta float64) (f, cosThetaT, etaIT, etaTI float64) {
	outside := cosThetaI >= 0
	etaIT, etaTI = eta, 1/eta
	if !outside {
		etaIT, etaTI = etaTI, etaIT
	}

	// Snell's law; negative means total internal reflection
	cosThetaTSqr := 1 - etaTI*etaTI*(1-cosThetaI*cosThetaI)
	cosThetaIAbs := math.Abs(cosThetaI)
	cosThetaTAbs := core.SafeSqrt(cosThetaTSqr)

	indexMatched := eta == 1
	switch {
	case indexMatched:
		f = 0
	case cosThetaIAbs == 0:
		f = 1
	default:
		// Amplitudes of the reflected s- and p-polarized waves
		aS := (cosThetaIAbs - etaIT*cosThetaTAbs) / (cosThetaIAbs + etaIT*cosThetaTAbs)
		aP := (cosThetaTAbs - etaIT*cosThetaIAbs) / (cosThetaTAbs + etaIT*cosThetaIAbs)
		f = 0.5 * (aS*aS + aP*aP)
	}

	cosThetaT = cosThetaTAbs
	if !math.Signbit(cosThetaI) {
		cosThetaT = -cosThetaTAbs
	}
	return f, cosThetaT, etaIT, etaTI
}

// Reflect mirrors wi about the normal m
func Reflect(wi, m core.Vec3) core.Vec3 {
	return m.Multiply(2 * wi.Dot(m)).Subtract(wi)
}

// Refract refracts wi through the normal m using the cosThetaT and etaTI
// returned by DielectricFresnel
func Refract(wi, m core.Vec3, cosThetaT, etaTI float64) core.Vec3 {
	return m.Multiply(wi.Dot(m)*etaTI + cosThetaT).Subtract(wi.Multiply(etaTI))
}

// SchlickWeight is the (1 - cos)^5 blending weight of Schlick's approximation
func SchlickWeight(cosTheta float64) float64 {
	m := core.Clamp(1-cosTheta, 0, 1)
	m2 := m * m
	return m2 * m2 * m
}

// SchlickR0FromEta is the normal-incidence reflectance of an interface
func SchlickR0FromEta(eta float64) float64 {
	r := (eta - 1) / (eta + 1)
	return r * r
}

// schlickCosine selects the cosine Schlick's approximation is evaluated
// with: the incident one when entering the denser medium, the refracted one
// otherwise. TIR yields 0, i.e. full reflection.
func schlickCosine(cosThetaI, eta float64) float64 {
	etaIT, etaTI := eta, 1/eta
	if cosThetaI < 0 {
		etaIT, etaTI = etaTI, etaIT
	}
	if etaIT > 1 {
		return math.Abs(cosThetaI)
	}
	return core.SafeSqrt(1 - etaTI*etaTI*(1-cosThetaI*cosThetaI))
}

// SchlickFresnel is Schlick's approximation with normal-incidence
// reflectance r0
func SchlickFresnel(r0, cosThetaI, eta float64) float64 {
	return core.Lerp(SchlickWeight(schlickCosine(cosThetaI, eta)), 1, r0)
}

// SchlickFresnelRGB is SchlickFresnel with a per-channel r0
func SchlickFresnelRGB(r0 core.Vec3, cosThetaI, eta float64) core.Vec3 {
	w := SchlickWeight(schlickCosine(cosThetaI, eta))
	return core.Splat(w).Add(r0.Multiply(1 - w))
}
