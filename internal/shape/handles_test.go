package shape

import "testing"

func TestHandleAt(t *testing.T) {
	b := Rect{X: 0, Y: 0, Width: 100, Height: 50}

	tests := []struct {
		name      string
		x, y, rad float64
		want      HandleKind
	}{
		{"top-left exact", 0, 0, 8, HandleTopLeft},
		{"top-left within radius", 5, 5, 8, HandleTopLeft},
		{"top midpoint", 50, 0, 8, HandleTop},
		{"bottom-right", 100, 50, 8, HandleBottomRight},
		{"left midpoint", 0, 25, 8, HandleLeft},
		{"interior miss", 50, 25, 8, HandleNone},
		{"near corner but outside radius", 12, 12, 8, HandleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleAt(b, tt.x, tt.y, tt.rad); got != tt.want {
				t.Errorf("HandleAt(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestResizeBox_OppositeCornerFixed(t *testing.T) {
	box := Rect{X: 10, Y: 10, Width: 100, Height: 50}

	// Drag the top-left corner by (+20, +20).
	got := ResizeBox(box, HandleTopLeft, 30, 30)
	want := Rect{X: 30, Y: 30, Width: 80, Height: 30}
	if !rectsEqual(got, want) {
		t.Errorf("ResizeBox = %+v, want %+v", got, want)
	}

	// Bottom-right corner of the result must be unchanged.
	if got.X+got.Width != box.X+box.Width || got.Y+got.Height != box.Y+box.Height {
		t.Error("opposite corner moved during resize")
	}
}

func TestResizeBox_EdgeHandleAffectsOneDimension(t *testing.T) {
	box := Rect{X: 0, Y: 0, Width: 100, Height: 50}

	got := ResizeBox(box, HandleRight, 130, 999)
	want := Rect{X: 0, Y: 0, Width: 130, Height: 50}
	if !rectsEqual(got, want) {
		t.Errorf("ResizeBox right = %+v, want %+v", got, want)
	}
}

func TestApplyBox_RemapsLineEndpoints(t *testing.T) {
	s := Shape{Kind: KindLine, X: 0, Y: 0, ToX: 100, ToY: 50}
	prev := s.Bounds()

	// Double the width, height unchanged.
	s.ApplyBox(prev, Rect{X: 0, Y: 0, Width: 200, Height: 50})

	if s.X != 0 || s.Y != 0 || s.ToX != 200 || s.ToY != 50 {
		t.Errorf("line after resize = (%v,%v)-(%v,%v)", s.X, s.Y, s.ToX, s.ToY)
	}
}

func TestApplyBox_EllipseRecenters(t *testing.T) {
	s := Shape{Kind: KindEllipse, X: 50, Y: 50, RadX: 10, RadY: 10}
	prev := s.Bounds()

	s.ApplyBox(prev, Rect{X: 40, Y: 40, Width: 40, Height: 20})

	if s.X != 60 || s.Y != 50 || s.RadX != 20 || s.RadY != 10 {
		t.Errorf("ellipse after resize: center (%v,%v) radii (%v,%v)", s.X, s.Y, s.RadX, s.RadY)
	}
}

func TestApplyBox_NormalizesInvertedBox(t *testing.T) {
	s := Shape{Kind: KindRectangle, X: 0, Y: 0, Width: 100, Height: 50}
	prev := s.Bounds()

	// Pointer crossed the fixed boundary: negative-extent box.
	s.ApplyBox(prev, Rect{X: 100, Y: 0, Width: -40, Height: 50})

	if s.X != 60 || s.Width != 40 {
		t.Errorf("rectangle after crossing resize: x=%v width=%v, want x=60 width=40", s.X, s.Width)
	}
}
