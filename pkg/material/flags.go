package material

import "strings"

// BSDFFlags describe the kind of scattering a lobe (or a whole BSDF) performs
type BSDFFlags uint32

const (
	Empty               BSDFFlags = 0
	Null                BSDFFlags = 1 << 0
	DiffuseReflection   BSDFFlags = 1 << 1
	DiffuseTransmission BSDFFlags = 1 << 2
	GlossyReflection    BSDFFlags = 1 << 3
	GlossyTransmission  BSDFFlags = 1 << 4
	DeltaReflection     BSDFFlags = 1 << 5
	DeltaTransmission   BSDFFlags = 1 << 6
	Anisotropic         BSDFFlags = 1 << 7
	SpatiallyVarying    BSDFFlags = 1 << 8
	NonSymmetric        BSDFFlags = 1 << 9
	FrontSide           BSDFFlags = 1 << 10
	BackSide            BSDFFlags = 1 << 11

	Reflection   = DiffuseReflection | GlossyReflection | DeltaReflection
	Transmission = DiffuseTransmission | GlossyTransmission | DeltaTransmission | Null
	Diffuse      = DiffuseReflection | DiffuseTransmission
	Glossy       = GlossyReflection | GlossyTransmission
	Smooth       = Diffuse | Glossy
	Delta        = Null | DeltaReflection | DeltaTransmission
	All          = Diffuse | Glossy | Delta
)

// Has reports whether any of the given flags are set
func (f BSDFFlags) Has(flags BSDFFlags) bool {
	return f&flags != 0
}

var flagNames = []struct {
	flag BSDFFlags
	name string
}{
	{Null, "null"},
	{DiffuseReflection, "diffuse_reflection"},
	{DiffuseTransmission, "diffuse_transmission"},
	{GlossyReflection, "glossy_reflection"},
	{GlossyTransmission, "glossy_transmission"},
	{DeltaReflection, "delta_reflection"},
	{DeltaTransmission, "delta_transmission"},
	{Anisotropic, "anisotropic"},
	{SpatiallyVarying, "spatially_varying"},
	{NonSymmetric, "non_symmetric"},
	{FrontSide, "front_side"},
	{BackSide, "back_side"},
}

func (f BSDFFlags) String() string {
	if f == Empty {
		return "empty"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, " | ")
}

func unionFlags(components []BSDFFlags) BSDFFlags {
	var flags BSDFFlags
	for _, c := range components {
		flags |= c
	}
	return flags
}
