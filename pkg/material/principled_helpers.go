package material

import (
	"math"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/texture"
)

// Sampled component identifiers shared by the principled models
const (
	ComponentDiffuse              = 0
	ComponentClearcoat            = 1 // opaque model only
	ComponentDiffuseTransmission  = 1 // thin model only
	ComponentSpecularTransmission = 2
	ComponentSpecularReflection   = 3
)

// minAlpha keeps GGX roughness away from the singular alpha = 0
const minAlpha = 0.001

// MacMicCompatible reports whether wi and wo lie on sides of the microfacet
// normal m consistent with the macro surface: the same side for a
// reflection, opposite sides for a refraction. m is flipped to the side of
// the incident direction given by cosThetaI.
func MacMicCompatible(m, wi, wo core.Vec3, cosThetaI float64, isReflection bool) bool {
	mi := m.MulSign(cosThetaI)
	if isReflection {
		return wi.Dot(mi) > 0 && wo.Dot(mi) > 0
	}
	return wi.Dot(mi) > 0 && wo.Dot(mi.Negate()) > 0
}

// AnisotropicAlpha maps the artist roughness and anisotropy controls to GGX
// alpha values
func AnisotropicAlpha(anisotropic, roughness float64, hasAnisotropic bool) (alphaU, alphaV float64) {
	roughness2 := roughness * roughness
	if !hasAnisotropic {
		a := math.Max(minAlpha, roughness2)
		return a, a
	}
	aspect := math.Sqrt(1 - 0.9*anisotropic)
	return math.Max(minAlpha, roughness2/aspect), math.Max(minAlpha, roughness2*aspect)
}

// tintColor normalizes the base color by its luminance
func tintColor(baseColor core.Vec3, lum float64) core.Vec3 {
	if lum > 0 {
		return baseColor.Multiply(1 / lum)
	}
	return core.Splat(1)
}

// PrincipledFresnel blends the dielectric Fresnel term with a metallic
// Schlick term tinted by the base color and a tinted dielectric Schlick
// term. From the back side only the dielectric term remains, scaled by the
// transmission weight bsdf.
func PrincipledFresnel(fDielectric, metallic, specTint float64, baseColor core.Vec3, lum, cosThetaI float64,
	frontSide bool, bsdf, eta float64, hasMetallic, hasSpecTint bool) core.Vec3 {
	if !frontSide {
		return core.Splat(bsdf * fDielectric)
	}

	etaIT := eta
	if cosThetaI < 0 {
		etaIT = 1 / eta
	}

	var fSchlick core.Vec3
	if hasMetallic {
		fSchlick = fSchlick.Add(SchlickFresnelRGB(baseColor, cosThetaI, eta).Multiply(metallic))
	}
	if hasSpecTint {
		f0SpecTint := tintColor(baseColor, lum).Multiply(SchlickR0FromEta(etaIT))
		fSchlick = fSchlick.Add(SchlickFresnelRGB(f0SpecTint, cosThetaI, eta).Multiply((1 - metallic) * specTint))
	}

	return core.Splat((1 - metallic) * (1 - specTint) * fDielectric).Add(fSchlick)
}

// ThinFresnel interpolates between the dielectric Fresnel term and a tinted
// Schlick term by specTint
func ThinFresnel(fDielectric, specTint float64, baseColor core.Vec3, lum, cosThetaI, eta float64, hasSpecTint bool) core.Vec3 {
	var fSchlick core.Vec3
	if hasSpecTint {
		f0SpecTint := tintColor(baseColor, lum).Multiply(SchlickR0FromEta(eta))
		fSchlick = SchlickFresnelRGB(f0SpecTint, cosThetaI, eta)
	}
	return core.Splat(fDielectric).Lerp(fSchlick, specTint)
}

// eval1 evaluates an optional scalar slot, treating a disabled slot as 0
func eval1(tex texture.Texture, si *core.SurfaceInteraction) float64 {
	if tex == nil {
		return 0
	}
	return tex.Eval1(si)
}

// sheenColor is the sheen tint: white blended towards the normalized base
// color
func sheenColor(baseColor core.Vec3, sheenTint float64, hasSheenTint bool) core.Vec3 {
	if !hasSheenTint {
		return core.Splat(1)
	}
	return core.Splat(1).Lerp(tintColor(baseColor, baseColor.Luminance()), sheenTint)
}

// diffuseLobes evaluates the Disney diffuse, retro-reflection and optional
// fake subsurface terms, without the brdf weight and the base color
func diffuseLobes(cosThetaI, cosThetaO, cosThetaD, roughness, flatness float64, hasFlatness bool) float64 {
	fo := SchlickWeight(math.Abs(cosThetaO))
	fi := SchlickWeight(math.Abs(cosThetaI))

	fDiff := (1 - 0.5*fi) * (1 - 0.5*fo)

	rr := 2 * roughness * cosThetaD * cosThetaD
	fRetro := rr * (fo + fi + fo*fi*(rr-1))

	if !hasFlatness {
		return fDiff + fRetro
	}

	// Hanrahan-Krueger inspired subsurface approximation
	fss90 := rr / 2
	fss := core.Lerp(1, fss90, fo) * core.Lerp(1, fss90, fi)
	fSS := 1.25 * (fss*(1/(math.Abs(cosThetaO)+math.Abs(cosThetaI))-0.5) + 0.5)
	return core.Lerp(fDiff+fRetro, fSS, flatness)
}
