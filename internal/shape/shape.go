// Package shape defines the drawable shape variants of a canvas scene and the
// pure geometry used for bounds computation and hit-testing.
package shape

import "fmt"

// Kind is the closed set of drawable shape variants.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindDiamond   Kind = "diamond"
	KindEllipse   Kind = "ellipse"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindFreeDraw  Kind = "freedraw"
	KindText      Kind = "text"
)

// StrokeStyle is the outline style of a vector shape.
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
)

// FillStyle is how a closed shape's interior is painted.
type FillStyle string

const (
	FillSolid       FillStyle = "solid"
	FillTransparent FillStyle = "transparent"
)

// CornerStyle is the corner treatment for rectangle/diamond. Only sharp
// corners are drawn today; the field rides along so stored scenes keep it.
type CornerStyle string

const CornerSharp CornerStyle = "sharp"

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one element of a scene. The Kind tag selects which variant fields
// are meaningful; every consumer (render, hit-test, bounds, resize) switches
// exhaustively on Kind and panics on an unknown value.
//
// Width/Height (and the drag-derived radii) may be transiently negative or
// zero while a shape is being drawn; Bounds always returns the normalized
// box.
type Shape struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`

	// Anchor. Rectangle/diamond: the original click corner (not necessarily
	// top-left). Ellipse: center. Line/arrow: first endpoint. Text: baseline
	// anchor of the first line.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Rectangle/diamond.
	Width          float64     `json:"width,omitempty"`
	Height         float64     `json:"height,omitempty"`
	BackgroundFill string      `json:"backgroundFill,omitempty"`
	FillStyle      FillStyle   `json:"fillStyle,omitempty"`
	StrokeStyle    StrokeStyle `json:"strokeStyle,omitempty"`
	CornerStyle    CornerStyle `json:"cornerStyle,omitempty"`

	// Ellipse.
	RadX float64 `json:"radX,omitempty"`
	RadY float64 `json:"radY,omitempty"`

	// Line/arrow.
	ToX float64 `json:"toX,omitempty"`
	ToY float64 `json:"toY,omitempty"`

	// Free-draw.
	Points []Point `json:"points,omitempty"`

	// Text.
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
}

// Clone returns a deep copy of the shape (the Points slice is copied).
func (s Shape) Clone() Shape {
	out := s
	if s.Points != nil {
		out.Points = make([]Point, len(s.Points))
		copy(out.Points, s.Points)
	}
	return out
}

// CloneScene deep-copies a scene slice.
func CloneScene(scene []Shape) []Shape {
	out := make([]Shape, len(scene))
	for i, s := range scene {
		out[i] = s.Clone()
	}
	return out
}

// Translate moves the shape by (dx, dy) in world space. For line/arrow both
// endpoints move; for free-draw every sampled point moves.
func (s *Shape) Translate(dx, dy float64) {
	s.X += dx
	s.Y += dy

	switch s.Kind {
	case KindRectangle, KindDiamond, KindEllipse, KindText:
		// Anchor-only.
	case KindLine, KindArrow:
		s.ToX += dx
		s.ToY += dy
	case KindFreeDraw:
		for i := range s.Points {
			s.Points[i].X += dx
			s.Points[i].Y += dy
		}
	default:
		panic(fmt.Sprintf("shape: unhandled kind %q", s.Kind))
	}
}
