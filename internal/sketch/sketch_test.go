package sketch

import (
	"math"
	"testing"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

func TestLine_ZeroRoughnessIsExact(t *testing.T) {
	g := New()

	got := g.Line(1, 2, 30, 40)
	want := []shape.Point{{X: 1, Y: 2}, {X: 30, Y: 40}}

	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Line() = %+v, want exact endpoints %+v", got, want)
	}
}

func TestPolygon_ClosesLoop(t *testing.T) {
	g := New()
	verts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}

	got := g.Polygon(verts)

	if len(got) == 0 {
		t.Fatal("empty polygon outline")
	}
	if got[0] != verts[0] {
		t.Errorf("outline starts at %+v, want %+v", got[0], verts[0])
	}
	if got[len(got)-1] != verts[0] {
		t.Errorf("outline ends at %+v, want closing vertex %+v", got[len(got)-1], verts[0])
	}
}

func TestEllipse_PointsLieOnEllipse(t *testing.T) {
	g := New()
	cx, cy, rx, ry := 5.0, -3.0, 20.0, 10.0

	for _, p := range g.Ellipse(cx, cy, rx, ry) {
		// Implicit ellipse equation should evaluate to 1 for every sample.
		v := math.Pow((p.X-cx)/rx, 2) + math.Pow((p.Y-cy)/ry, 2)
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("point %+v off the ellipse (implicit value %v)", p, v)
		}
	}
}

func TestLine_RoughnessDisplaces(t *testing.T) {
	g := New()
	g.Roughness = 2

	got := g.Line(0, 0, 100, 0)
	if len(got) < 3 {
		t.Fatalf("rough line should be subdivided, got %d points", len(got))
	}
}
