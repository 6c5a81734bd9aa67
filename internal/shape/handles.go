package shape

import "math"

// HandleKind identifies one of the eight resize handles on a selection box.
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

// Handle is a resize control point positioned in world coordinates.
type Handle struct {
	Kind HandleKind
	X    float64
	Y    float64
}

// HandlesFor returns the eight resize handles (four corners, four edge
// midpoints) of a normalized bounding box.
func HandlesFor(b Rect) [8]Handle {
	cx, cy := b.Center()
	x2, y2 := b.X+b.Width, b.Y+b.Height
	return [8]Handle{
		{HandleTopLeft, b.X, b.Y},
		{HandleTop, cx, b.Y},
		{HandleTopRight, x2, b.Y},
		{HandleRight, x2, cy},
		{HandleBottomRight, x2, y2},
		{HandleBottom, cx, y2},
		{HandleBottomLeft, b.X, y2},
		{HandleLeft, b.X, cy},
	}
}

// HandleAt returns the handle of b whose center lies within radius of the
// world point (x, y), or HandleNone. The radius is in world units; callers
// divide a fixed screen radius by the zoom so the hit area stays constant
// on screen.
func HandleAt(b Rect, x, y, radius float64) HandleKind {
	for _, h := range HandlesFor(b) {
		if math.Hypot(x-h.X, y-h.Y) <= radius {
			return h.Kind
		}
	}
	return HandleNone
}

// ResizeBox moves the edges of box selected by the handle to the world point
// (x, y), keeping the opposite corner/edge fixed. Corner handles move two
// edges, edge handles one. The result may have negative extent when the
// pointer crosses the fixed boundary; callers normalize as needed.
func ResizeBox(box Rect, handle HandleKind, x, y float64) Rect {
	x1, y1 := box.X, box.Y
	x2, y2 := box.X+box.Width, box.Y+box.Height

	switch handle {
	case HandleTopLeft:
		x1, y1 = x, y
	case HandleTop:
		y1 = y
	case HandleTopRight:
		x2, y1 = x, y
	case HandleRight:
		x2 = x
	case HandleBottomRight:
		x2, y2 = x, y
	case HandleBottom:
		y2 = y
	case HandleBottomLeft:
		x1, y2 = x, y
	case HandleLeft:
		x1 = x
	case HandleNone:
	}

	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// ApplyBox rewrites the shape's geometry so its bounding box becomes box.
// Interior geometry (line endpoints, free-draw samples) is remapped
// proportionally from the previous box, so the non-dragged boundary stays
// fixed during a resize.
func (s *Shape) ApplyBox(prev, box Rect) {
	norm := NormalizedRect(box.X, box.Y, box.Width, box.Height)

	switch s.Kind {
	case KindRectangle, KindDiamond:
		s.X, s.Y = norm.X, norm.Y
		s.Width, s.Height = norm.Width, norm.Height

	case KindEllipse:
		s.X, s.Y = norm.Center()
		s.RadX, s.RadY = norm.Width/2, norm.Height/2

	case KindLine, KindArrow:
		s.X, s.Y = remapPoint(s.X, s.Y, prev, norm)
		s.ToX, s.ToY = remapPoint(s.ToX, s.ToY, prev, norm)

	case KindFreeDraw:
		for i, p := range s.Points {
			s.Points[i].X, s.Points[i].Y = remapPoint(p.X, p.Y, prev, norm)
		}
		s.X, s.Y = norm.X, norm.Y

	case KindText:
		// Text keeps its glyph metrics; only the anchor follows the box.
		s.X, s.Y = norm.X, norm.Y

	default:
		panic("shape: unhandled kind " + string(s.Kind))
	}
}

// remapPoint maps a point proportionally from one box to another.
func remapPoint(x, y float64, from, to Rect) (float64, float64) {
	u, v := 0.0, 0.0
	if from.Width != 0 {
		u = (x - from.X) / from.Width
	}
	if from.Height != 0 {
		v = (y - from.Y) / from.Height
	}
	return to.X + u*to.Width, to.Y + v*to.Height
}
