package material

import (
	"math"
	"testing"

	"github.com/df07/go-principled/pkg/core"
	"github.com/df07/go-principled/pkg/props"
)

var radiance = NewContext(Radiance)

func testInteraction(wi core.Vec3) *core.SurfaceInteraction {
	return core.NewSurfaceInteraction(wi.Normalize())
}

func newTestPrincipled(t *testing.T, set func(p *props.Properties)) *Principled {
	t.Helper()
	p := props.New("principled")
	if set != nil {
		set(p)
	}
	b, err := NewPrincipled(p)
	if err != nil {
		t.Fatalf("NewPrincipled failed: %v", err)
	}
	return b
}

func newTestPrincipledThin(t *testing.T, set func(p *props.Properties)) *PrincipledThin {
	t.Helper()
	p := props.New("principledthin")
	if set != nil {
		set(p)
	}
	b, err := NewPrincipledThin(p)
	if err != nil {
		t.Fatalf("NewPrincipledThin failed: %v", err)
	}
	return b
}

// integrateSphere integrates f over all directions with a midpoint rule
func integrateSphere(f func(w core.Vec3) float64) float64 {
	const nTheta, nPhi = 400, 800
	dTheta, dPhi := math.Pi/nTheta, 2*math.Pi/nPhi

	sum := 0.0
	for i := 0; i < nTheta; i++ {
		sinTheta, cosTheta := math.Sincos((float64(i) + 0.5) * dTheta)
		for j := 0; j < nPhi; j++ {
			sinPhi, cosPhi := math.Sincos((float64(j) + 0.5) * dPhi)
			sum += f(core.NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)) * sinTheta
		}
	}
	return sum * dTheta * dPhi
}

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

// relClose compares with a tolerance relative to the larger magnitude
func relClose(a, b, tolerance float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tolerance*math.Max(scale, 1e-12)
}
