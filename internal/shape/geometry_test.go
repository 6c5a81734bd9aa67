package shape

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func rectsEqual(a, b Rect) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon &&
		math.Abs(a.Width-b.Width) < epsilon && math.Abs(a.Height-b.Height) < epsilon
}

func TestBounds_Normalization(t *testing.T) {
	tests := []struct {
		name string
		s    Shape
		want Rect
	}{
		{
			name: "rectangle positive extent",
			s:    Shape{Kind: KindRectangle, X: 10, Y: 10, Width: 100, Height: 50},
			want: Rect{X: 10, Y: 10, Width: 100, Height: 50},
		},
		{
			name: "rectangle dragged up-left stores negative extent",
			s:    Shape{Kind: KindRectangle, X: 110, Y: 60, Width: -100, Height: -50},
			want: Rect{X: 10, Y: 10, Width: 100, Height: 50},
		},
		{
			name: "diamond negative height",
			s:    Shape{Kind: KindDiamond, X: 0, Y: 20, Width: 40, Height: -20},
			want: Rect{X: 0, Y: 0, Width: 40, Height: 20},
		},
		{
			name: "ellipse centered anchor",
			s:    Shape{Kind: KindEllipse, X: 50, Y: 40, RadX: 30, RadY: 10},
			want: Rect{X: 20, Y: 30, Width: 60, Height: 20},
		},
		{
			name: "ellipse negative radii",
			s:    Shape{Kind: KindEllipse, X: 0, Y: 0, RadX: -5, RadY: -5},
			want: Rect{X: -5, Y: -5, Width: 10, Height: 10},
		},
		{
			name: "line endpoints reversed",
			s:    Shape{Kind: KindLine, X: 30, Y: 30, ToX: 10, ToY: 5},
			want: Rect{X: 10, Y: 5, Width: 20, Height: 25},
		},
		{
			name: "freedraw from samples",
			s: Shape{Kind: KindFreeDraw, Points: []Point{
				{X: 5, Y: 8}, {X: 1, Y: 12}, {X: 9, Y: 2},
			}},
			want: Rect{X: 1, Y: 2, Width: 8, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.Bounds()
			if !rectsEqual(got, tt.want) {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBounds_ZeroExtentShapeIsValid(t *testing.T) {
	// Clicking without dragging leaves a zero-area shape in the scene; its
	// bounds must be well-defined.
	s := Shape{Kind: KindRectangle, X: 10, Y: 10}
	got := s.Bounds()
	want := Rect{X: 10, Y: 10, Width: 0, Height: 0}
	if !rectsEqual(got, want) {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
}

func TestHit_Rectangle(t *testing.T) {
	s := Shape{Kind: KindRectangle, X: 110, Y: 60, Width: -100, Height: -50}

	if !s.Hit(50, 30, 1) {
		t.Error("point inside normalized box should hit")
	}
	if s.Hit(200, 200, 1) {
		t.Error("point outside box should not hit")
	}
}

func TestHit_Diamond(t *testing.T) {
	// Diamond filling the box (0,0)-(40,40): vertices at (20,0), (40,20),
	// (20,40), (0,20).
	s := Shape{Kind: KindDiamond, X: 0, Y: 0, Width: 40, Height: 40}

	if !s.Hit(20, 20, 1) {
		t.Error("center should hit")
	}
	// Inside the bounding box but outside the polygon.
	if s.Hit(2, 2, 1) {
		t.Error("box corner should not hit the diamond polygon")
	}
}

func TestHit_LineTolerance(t *testing.T) {
	s := Shape{Kind: KindLine, X: 0, Y: 0, ToX: 100, ToY: 0}

	tests := []struct {
		name      string
		x, y, tol float64
		want      bool
	}{
		{"on segment", 50, 0, 5, true},
		{"within tolerance", 50, 4, 5, true},
		{"beyond tolerance", 50, 6, 5, false},
		{"past endpoint within tolerance", 103, 0, 5, true},
		{"far past endpoint", 120, 0, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Hit(tt.x, tt.y, tt.tol); got != tt.want {
				t.Errorf("Hit(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.tol, got, tt.want)
			}
		})
	}
}

func TestHit_FreeDrawPolyline(t *testing.T) {
	s := Shape{Kind: KindFreeDraw, Points: []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
	}}

	if !s.Hit(5, 1, 2) {
		t.Error("point near first segment should hit")
	}
	if !s.Hit(11, 5, 2) {
		t.Error("point near second segment should hit")
	}
	if s.Hit(0, 10, 2) {
		t.Error("point far from the polyline should not hit")
	}
}

func TestHit_InsideBoundsImpliesContainment(t *testing.T) {
	// Spec'd consistency property: any point strictly inside the normalized
	// bounds of a rectangle or ellipse passes its containment test.
	shapes := []Shape{
		{Kind: KindRectangle, X: 40, Y: 70, Width: -30, Height: -60},
		{Kind: KindEllipse, X: 25, Y: 25, RadX: 15, RadY: 5},
	}
	for _, s := range shapes {
		b := s.Bounds()
		for _, frac := range []float64{0.1, 0.5, 0.9} {
			x := b.X + frac*b.Width
			y := b.Y + frac*b.Height
			if !s.Hit(x, y, 0) {
				t.Errorf("%s: point (%v, %v) inside bounds %+v did not hit", s.Kind, x, y, b)
			}
		}
	}
}

func TestTranslate(t *testing.T) {
	line := Shape{Kind: KindArrow, X: 1, Y: 2, ToX: 11, ToY: 12}
	line.Translate(5, -2)
	if line.X != 6 || line.Y != 0 || line.ToX != 16 || line.ToY != 10 {
		t.Errorf("arrow translate moved to (%v,%v)-(%v,%v)", line.X, line.Y, line.ToX, line.ToY)
	}

	fd := Shape{Kind: KindFreeDraw, Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	fd.Translate(3, 3)
	if fd.Points[0].X != 3 || fd.Points[1].Y != 4 {
		t.Errorf("freedraw translate produced %+v", fd.Points)
	}
}

func TestDistToSegment_DegenerateSegment(t *testing.T) {
	got := distToSegment(3, 4, 0, 0, 0, 0)
	if math.Abs(got-5) > epsilon {
		t.Errorf("distToSegment to a point = %v, want 5", got)
	}
}
