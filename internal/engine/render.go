package engine

import (
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

// Arrowheads are derived from the segment angle at render time and never
// stored on the shape.
const (
	arrowHeadLength = 15.0
	arrowHeadSpread = math.Pi / 6 // 30 degrees either side
)

// redraw re-renders the full scene into the pixel buffer and presents it.
// No dirty-rectangle tracking: scenes are interactively small and the full
// pass keeps the transform handling trivial. Callers hold e.mu.
func (e *Engine) redraw() {
	if e.surface == nil {
		return
	}

	w, h := e.view.BufferSize()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if e.buf == nil || e.buf.Bounds().Dx() != w || e.buf.Bounds().Dy() != h {
		e.buf = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	dc := gg.NewContextForRGBA(e.buf)

	// Transform is composed fresh every frame, never accumulated.
	dc.Identity()
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Translate(e.view.PanX*e.view.DPR, e.view.PanY*e.view.DPR)
	dc.Scale(e.view.Scale*e.view.DPR, e.view.Scale*e.view.DPR)

	for i := range e.scene {
		e.drawShape(dc, e.scene[i])
	}
	if e.drawing != nil {
		e.drawShape(dc, *e.drawing)
	}

	if e.tool == ToolSelection {
		if i := e.sel.indexOf(e.scene); i >= 0 {
			e.drawSelectionOverlay(dc, e.scene[i].Bounds())
		}
	}

	e.surface.Present(e.buf)
}

// drawShape renders one shape in world coordinates under the current
// transform.
func (e *Engine) drawShape(dc *gg.Context, s shape.Shape) {
	dc.SetLineWidth(max(s.StrokeWidth, 0.5))
	if s.StrokeStyle == shape.StrokeDashed {
		dc.SetDash(8, 6)
	} else {
		dc.SetDash()
	}

	switch s.Kind {
	case shape.KindRectangle:
		b := s.Bounds()
		verts := []shape.Point{
			{X: b.X, Y: b.Y},
			{X: b.X + b.Width, Y: b.Y},
			{X: b.X + b.Width, Y: b.Y + b.Height},
			{X: b.X, Y: b.Y + b.Height},
		}
		e.fillAndStrokePolygon(dc, s, verts)

	case shape.KindDiamond:
		b := s.Bounds()
		cx, cy := b.Center()
		verts := []shape.Point{
			{X: cx, Y: b.Y},
			{X: b.X + b.Width, Y: cy},
			{X: cx, Y: b.Y + b.Height},
			{X: b.X, Y: cy},
		}
		e.fillAndStrokePolygon(dc, s, verts)

	case shape.KindEllipse:
		outline := e.gen.Ellipse(s.X, s.Y, s.RadX, s.RadY)
		if s.BackgroundFill != "" && s.FillStyle != shape.FillTransparent {
			tracePolyline(dc, outline)
			dc.SetHexColor(s.BackgroundFill)
			dc.Fill()
		}
		tracePolyline(dc, outline)
		dc.SetHexColor(s.StrokeColor)
		dc.Stroke()

	case shape.KindLine:
		tracePolyline(dc, e.gen.Line(s.X, s.Y, s.ToX, s.ToY))
		dc.SetHexColor(s.StrokeColor)
		dc.Stroke()

	case shape.KindArrow:
		dc.SetHexColor(s.StrokeColor)
		tracePolyline(dc, e.gen.Line(s.X, s.Y, s.ToX, s.ToY))
		dc.Stroke()

		angle := math.Atan2(s.ToY-s.Y, s.ToX-s.X)
		for _, da := range [2]float64{arrowHeadSpread, -arrowHeadSpread} {
			hx := s.ToX - arrowHeadLength*math.Cos(angle+da)
			hy := s.ToY - arrowHeadLength*math.Sin(angle+da)
			tracePolyline(dc, e.gen.Line(s.ToX, s.ToY, hx, hy))
			dc.Stroke()
		}

	case shape.KindFreeDraw:
		// Free-draw bypasses the sketch generator: the sampled polyline is
		// expanded by the stroke width into an outline polygon and filled.
		dc.SetHexColor(s.StrokeColor)
		if len(s.Points) < 2 {
			if len(s.Points) == 1 {
				dc.DrawCircle(s.Points[0].X, s.Points[0].Y, max(s.StrokeWidth, 1)/2)
				dc.Fill()
			}
			return
		}
		tracePolyline(dc, strokeOutline(s.Points, max(s.StrokeWidth, 1)))
		dc.ClosePath()
		dc.Fill()

	case shape.KindText:
		e.drawText(dc, s)

	default:
		panic("engine: render unhandled kind " + string(s.Kind))
	}
}

// fillAndStrokePolygon paints a closed polygon: background fill first (when
// opaque), then the sketch outline.
func (e *Engine) fillAndStrokePolygon(dc *gg.Context, s shape.Shape, verts []shape.Point) {
	if s.BackgroundFill != "" && s.FillStyle != shape.FillTransparent {
		tracePolyline(dc, verts)
		dc.ClosePath()
		dc.SetHexColor(s.BackgroundFill)
		dc.Fill()
	}

	tracePolyline(dc, e.gen.Polygon(verts))
	dc.SetHexColor(s.StrokeColor)
	dc.Stroke()
}

// drawText renders text outside the world transform: the font face is sized
// to the effective device scale so glyphs rasterize crisply at any zoom.
func (e *Engine) drawText(dc *gg.Context, s shape.Shape) {
	if s.Text == "" {
		return
	}

	k := e.view.Scale * e.view.DPR
	size := s.FontSize
	if size <= 0 {
		size = 20
	}

	dc.Push()
	dc.Identity()
	dc.SetHexColor(s.StrokeColor)
	dc.SetFontFace(shape.FaceForSize(size * k))

	ascent := float64(shape.FaceForSize(size * k).Metrics().Ascent.Ceil())
	lineHeight := shape.LineHeight(size * k)
	blockW, _ := shape.MeasureText(s.Text, size*k, s.FontFamily)

	lines := strings.Split(s.Text, "\n")
	for i, line := range lines {
		lw, _ := shape.MeasureText(line, size*k, s.FontFamily)

		x := (s.X*e.view.Scale + e.view.PanX) * e.view.DPR
		switch s.TextAlign {
		case "center":
			x += (blockW - lw) / 2
		case "right":
			x += blockW - lw
		}
		y := (s.Y*e.view.Scale+e.view.PanY)*e.view.DPR + ascent + lineHeight*float64(i)

		dc.DrawString(line, x, y)
	}
	dc.Pop()
}

// drawSelectionOverlay paints the selection box and the eight resize
// handles. Widths and handle sizes are divided by the zoom so they stay
// constant in display pixels.
func (e *Engine) drawSelectionOverlay(dc *gg.Context, b shape.Rect) {
	invScale := 1 / e.view.Scale

	dc.SetDash(4*invScale, 4*invScale)
	dc.SetLineWidth(1.5 * invScale)
	dc.SetHexColor("#6965db")
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.Stroke()
	dc.SetDash()

	hs := handleRadiusPx * invScale
	for _, h := range shape.HandlesFor(b) {
		dc.DrawRectangle(h.X-hs/2, h.Y-hs/2, hs, hs)
		dc.SetRGB(1, 1, 1)
		dc.FillPreserve()
		dc.SetHexColor("#6965db")
		dc.SetLineWidth(1 * invScale)
		dc.Stroke()
	}
}

// tracePolyline starts a new path through the points.
func tracePolyline(dc *gg.Context, pts []shape.Point) {
	if len(pts) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
}

// strokeOutline expands a sampled polyline into a closed outline polygon of
// the given width, pressure-independent: the half-width offset follows each
// point's local normal.
func strokeOutline(pts []shape.Point, width float64) []shape.Point {
	half := width / 2
	n := len(pts)

	normalAt := func(i int) (float64, float64) {
		a := pts[max(i-1, 0)]
		b := pts[min(i+1, n-1)]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			return 0, 0
		}
		return -dy / length, dx / length
	}

	out := make([]shape.Point, 0, 2*n)
	for i := 0; i < n; i++ {
		nx, ny := normalAt(i)
		out = append(out, shape.Point{X: pts[i].X + nx*half, Y: pts[i].Y + ny*half})
	}
	for i := n - 1; i >= 0; i-- {
		nx, ny := normalAt(i)
		out = append(out, shape.Point{X: pts[i].X - nx*half, Y: pts[i].Y - ny*half})
	}
	return out
}
