package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded by seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// FixedSampler replays a fixed sequence of values, cycling when exhausted.
// Useful for reproducing a specific sample in tests.
type FixedSampler struct {
	Values []float64
	next   int
}

// Get1D returns the next value of the sequence
func (f *FixedSampler) Get1D() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

// Get2D returns the next two values of the sequence
func (f *FixedSampler) Get2D() Vec2 {
	return NewVec2(f.Get1D(), f.Get1D())
}

// SampleUniformDiskConcentric maps the unit square to the unit disk with
// Shirley's low-distortion concentric mapping
func SampleUniformDiskConcentric(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	r1 := 2*sample.X - 1
	r2 := 2*sample.Y - 1
	if r1 == 0 && r2 == 0 {
		return Vec2{}
	}

	var r, phi float64
	if math.Abs(r1) < math.Abs(r2) {
		r = r2
		phi = math.Pi/2 - math.Pi/4*(r1/r2)
	} else {
		r = r1
		phi = math.Pi / 4 * (r2 / r1)
	}

	sinPhi, cosPhi := math.Sincos(phi)
	return Vec2{r * cosPhi, r * sinPhi}
}

// SampleCosineHemisphere generates a cosine-weighted direction on the +Z
// hemisphere of the local frame
func SampleCosineHemisphere(sample Vec2) Vec3 {
	p := SampleUniformDiskConcentric(sample)
	z := SafeSqrt(1 - p.X*p.X - p.Y*p.Y)
	return Vec3{p.X, p.Y, z}
}

// CosineHemispherePDF is the density of SampleCosineHemisphere
func CosineHemispherePDF(v Vec3) float64 {
	return v.Z / math.Pi
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	sinPhi, cosPhi := math.Sincos(phi)
	return NewVec3(r*cosPhi, r*sinPhi, z)
}

// UniformSpherePDF is the density of SampleOnUnitSphere
func UniformSpherePDF() float64 {
	return 1 / (4 * math.Pi)
}
