// Package sketch generates stroke polylines in a hand-drawn style. A
// Generator with zero roughness and bowing produces geometrically exact
// output, which is how the drawing engine configures it.
package sketch

import (
	"math"
	"math/rand"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

// Generator produces polylines for the primitive outlines. Roughness scales
// random endpoint/midpoint displacement; Bowing curves otherwise-straight
// segments. Both default to zero.
type Generator struct {
	Roughness float64
	Bowing    float64

	rng *rand.Rand
}

// New returns a Generator with zero roughness and bowing.
func New() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(1))}
}

// offset returns a displacement within [-amount, amount] scaled by roughness.
func (g *Generator) offset(amount float64) float64 {
	if g.Roughness == 0 {
		return 0
	}
	return g.Roughness * amount * (g.rng.Float64()*2 - 1)
}

// Line returns the stroke polyline for a segment.
func (g *Generator) Line(x1, y1, x2, y2 float64) []shape.Point {
	if g.Roughness == 0 && g.Bowing == 0 {
		return []shape.Point{{X: x1, Y: y1}, {X: x2, Y: y2}}
	}

	// Midpoint displaced along the segment normal gives the bowed, sketchy
	// look; endpoints jitter with roughness.
	mx := (x1+x2)/2 + g.offset(2) + g.Bowing*g.offsetNormal(x1, y1, x2, y2)
	my := (y1+y2)/2 + g.offset(2) + g.Bowing*g.offsetNormal(y1, x1, y2, x2)
	return []shape.Point{
		{X: x1 + g.offset(2), Y: y1 + g.offset(2)},
		{X: mx, Y: my},
		{X: x2 + g.offset(2), Y: y2 + g.offset(2)},
	}
}

func (g *Generator) offsetNormal(a1, b1, a2, b2 float64) float64 {
	length := math.Hypot(a2-a1, b2-b1)
	if length == 0 {
		return 0
	}
	return (b2 - b1) / length * g.rng.Float64()
}

// Polygon returns the closed outline polyline through the vertices.
func (g *Generator) Polygon(verts []shape.Point) []shape.Point {
	if len(verts) == 0 {
		return nil
	}

	out := make([]shape.Point, 0, len(verts)+1)
	for i := range verts {
		next := verts[(i+1)%len(verts)]
		seg := g.Line(verts[i].X, verts[i].Y, next.X, next.Y)
		// Skip the duplicate joint point after the first segment.
		if i > 0 {
			seg = seg[1:]
		}
		out = append(out, seg...)
	}
	return out
}

// Ellipse returns a closed polyline approximating an ellipse centered at
// (cx, cy). The step count grows with the perimeter so large ellipses stay
// smooth.
func (g *Generator) Ellipse(cx, cy, rx, ry float64) []shape.Point {
	rx, ry = math.Abs(rx), math.Abs(ry)

	steps := int(math.Max(16, math.Ceil(math.Pi*(rx+ry)/2)))
	if steps > 128 {
		steps = 128
	}

	out := make([]shape.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		out = append(out, shape.Point{
			X: cx + (rx+g.offset(rx*0.02))*math.Cos(a),
			Y: cy + (ry+g.offset(ry*0.02))*math.Sin(a),
		})
	}
	return out
}
