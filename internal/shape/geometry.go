package shape

import (
	"fmt"
	"math"
)

// Bounds returns the normalized world-space bounding box of the shape.
// Transiently negative extents (mid-drag) are absolute-valued and the anchor
// adjusted, so consumers always see a top-left box.
func (s Shape) Bounds() Rect {
	switch s.Kind {
	case KindRectangle, KindDiamond:
		return NormalizedRect(s.X, s.Y, s.Width, s.Height)

	case KindEllipse:
		rx, ry := math.Abs(s.RadX), math.Abs(s.RadY)
		return Rect{X: s.X - rx, Y: s.Y - ry, Width: 2 * rx, Height: 2 * ry}

	case KindLine, KindArrow:
		return NormalizedRect(s.X, s.Y, s.ToX-s.X, s.ToY-s.Y)

	case KindFreeDraw:
		if len(s.Points) == 0 {
			return Rect{X: s.X, Y: s.Y}
		}
		minX, minY := s.Points[0].X, s.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range s.Points[1:] {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}

	case KindText:
		w, h := MeasureText(s.Text, s.FontSize, s.FontFamily)
		return Rect{X: s.X, Y: s.Y, Width: w, Height: h}

	default:
		panic(fmt.Sprintf("shape: unhandled kind %q", s.Kind))
	}
}

// Hit reports whether the world point (x, y) selects the shape. The tolerance
// is the pick distance, in world units, used for stroke-based variants
// (line, arrow, free-draw); callers derive it from the current zoom so the
// pick area stays constant on screen.
func (s Shape) Hit(x, y, tolerance float64) bool {
	switch s.Kind {
	case KindRectangle, KindEllipse, KindText:
		return s.Bounds().Contains(x, y)

	case KindDiamond:
		b := s.Bounds()
		cx, cy := b.Center()
		verts := [4]Point{
			{X: cx, Y: b.Y},
			{X: b.X + b.Width, Y: cy},
			{X: cx, Y: b.Y + b.Height},
			{X: b.X, Y: cy},
		}
		return pointInPolygon(x, y, verts[:])

	case KindLine, KindArrow:
		return distToSegment(x, y, s.X, s.Y, s.ToX, s.ToY) <= tolerance

	case KindFreeDraw:
		if len(s.Points) == 1 {
			p := s.Points[0]
			return math.Hypot(x-p.X, y-p.Y) <= tolerance
		}
		for i := 0; i+1 < len(s.Points); i++ {
			a, b := s.Points[i], s.Points[i+1]
			if distToSegment(x, y, a.X, a.Y, b.X, b.Y) <= tolerance {
				return true
			}
		}
		return false

	default:
		panic(fmt.Sprintf("shape: unhandled kind %q", s.Kind))
	}
}

// distToSegment returns the shortest distance from (px, py) to the segment
// (x1, y1)-(x2, y2).
func distToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}

	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	t = max(0, min(1, t))

	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

// pointInPolygon is the even-odd ray-casting test.
func pointInPolygon(x, y float64, verts []Point) bool {
	inside := false
	j := len(verts) - 1
	for i := 0; i < len(verts); i++ {
		xi, yi := verts[i].X, verts[i].Y
		xj, yj := verts[j].X, verts[j].Y
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
