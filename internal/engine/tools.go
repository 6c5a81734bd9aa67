package engine

import (
	"github.com/aperture/aperture/backend-go/internal/shape"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

// PointerDown begins an interaction at a display-pixel position. What
// happens is keyed by the active tool: pan starts a pan session, eraser
// removes shapes under the pointer, selection picks a handle/shape, text
// opens an inline input, and any drawing tool starts a new in-progress
// shape of zero extent at the world position.
func (e *Engine) PointerDown(px, py float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	// The surface display size is cached for the duration of one
	// pointer-down -> pointer-up interaction.
	if !e.sizeCached && e.surface != nil {
		e.view.DisplayW, e.view.DisplayH = e.surface.DisplaySize()
		e.sizeCached = true
	}

	e.pointerDown = true
	e.lastPX, e.lastPY = px, py
	wx, wy := e.view.ToWorld(px, py)
	e.downWorld = shape.Point{X: wx, Y: wy}

	switch e.tool {
	case ToolPan:
		e.panning = true

	case ToolEraser:
		if e.readOnly {
			return
		}
		e.erasing = true
		e.eraseAt(wx, wy)

	case ToolSelection:
		e.selectionDown(wx, wy)

	case ToolText:
		if e.readOnly || e.opts.TextInput == nil {
			return
		}
		at := e.downWorld
		e.opts.TextInput(px, py, func(text string) {
			e.commitText(at, text)
		})

	default:
		if e.readOnly {
			return
		}
		kind, ok := e.tool.drawsKind()
		if !ok {
			return
		}
		s := e.newShape(kind, wx, wy)
		e.drawing = &s
		e.redraw()
	}
}

// PointerMove advances the active session: panning translates the view by
// the raw display-pixel delta, a drag session moves the selected shape by
// the world delta since session start, a resize session recomputes extents
// from the active handle, and a drawing tool mutates the in-progress
// shape's terminal fields. These are mutually exclusive per interaction.
func (e *Engine) PointerMove(px, py float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	wx, wy := e.view.ToWorld(px, py)

	switch {
	case e.panning:
		// Pan is screen-space: the raw delta, not divided by scale.
		e.view.PanX += px - e.lastPX
		e.view.PanY += py - e.lastPY
		e.redraw()

	case e.erasing && e.pointerDown:
		e.eraseAt(wx, wy)

	case e.drawing != nil:
		e.updateDrawing(wx, wy)
		e.redraw()

	case e.sel.mode == modeDragging:
		if i := e.sel.indexOf(e.scene); i >= 0 {
			s := e.sel.orig.Clone()
			s.Translate(wx-e.sel.startWorld.X, wy-e.sel.startWorld.Y)
			e.scene[i] = s
			e.redraw()
		}

	case e.sel.mode == modeResizing:
		if i := e.sel.indexOf(e.scene); i >= 0 {
			box := shape.ResizeBox(e.sel.origBounds, e.sel.handle, wx, wy)
			s := e.sel.orig.Clone()
			s.ApplyBox(e.sel.origBounds, box)
			e.scene[i] = s
			e.redraw()
		}
	}

	e.lastPX, e.lastPY = px, py
}

// PointerUp ends the active pan/drag/resize/draw session, commits any
// in-progress shape to the scene, schedules persistence for mutating
// sessions, and issues a redraw. The active tool never changes here.
func (e *Engine) PointerUp(px, py float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	switch {
	case e.panning:
		e.panning = false

	case e.erasing:
		e.erasing = false

	case e.drawing != nil:
		// Degenerate zero-extent shapes are committed too; drawing never
		// auto-discards.
		e.scene = append(e.scene, *e.drawing)
		e.drawing = nil
		e.scheduleSave()

	case e.sel.mode != modeNone:
		e.sel.endSession()
		e.scheduleSave()
	}

	e.pointerDown = false
	e.sizeCached = false
	e.redraw()
}

// selectionDown resolves what a pointer-down means in selection mode: a
// resize handle of the current selection wins over its body, then the
// topmost shape under the pointer (reverse draw order), else nothing.
func (e *Engine) selectionDown(wx, wy float64) {
	tol := pickTolerancePx / e.view.Scale

	if i := e.sel.indexOf(e.scene); i >= 0 {
		s := e.scene[i]
		b := s.Bounds()

		if h := shape.HandleAt(b, wx, wy, handleRadiusPx/e.view.Scale); h != shape.HandleNone {
			if !e.readOnly {
				e.sel.mode = modeResizing
				e.sel.handle = h
				e.sel.startWorld = shape.Point{X: wx, Y: wy}
				e.sel.orig = s.Clone()
				e.sel.origBounds = b
			}
			return
		}

		if s.Hit(wx, wy, tol) {
			if !e.readOnly {
				e.sel.mode = modeDragging
				e.sel.startWorld = shape.Point{X: wx, Y: wy}
				e.sel.orig = s.Clone()
			}
			return
		}
	}

	for i := len(e.scene) - 1; i >= 0; i-- {
		if e.scene[i].Hit(wx, wy, tol) {
			e.sel.id = e.scene[i].ID
			if !e.readOnly {
				e.sel.mode = modeDragging
				e.sel.startWorld = shape.Point{X: wx, Y: wy}
				e.sel.orig = e.scene[i].Clone()
			}
			e.redraw()
			return
		}
	}

	e.sel.clear()
	e.redraw()
}

// eraseAt removes every shape whose hit-test contains the world point and
// schedules persistence when the scene changed.
func (e *Engine) eraseAt(wx, wy float64) {
	tol := pickTolerancePx / e.view.Scale

	kept := e.scene[:0]
	removed := false
	for _, s := range e.scene {
		if s.Hit(wx, wy, tol) {
			removed = true
			if s.ID == e.sel.id {
				e.sel.clear()
			}
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return
	}

	e.scene = kept
	e.scheduleSave()
	e.redraw()
}

// newShape builds a zero-extent shape of the given kind at a world position,
// styled with the engine's current settings.
func (e *Engine) newShape(kind shape.Kind, wx, wy float64) shape.Shape {
	s := shape.Shape{
		ID:          typeid.NewElementID(),
		Kind:        kind,
		StrokeColor: e.style.StrokeColor,
		StrokeWidth: e.style.StrokeWidth,
		X:           wx,
		Y:           wy,
	}

	switch kind {
	case shape.KindRectangle, shape.KindDiamond, shape.KindEllipse:
		s.BackgroundFill = e.style.BackgroundFill
		s.FillStyle = e.style.FillStyle
		s.StrokeStyle = e.style.StrokeStyle
		if kind != shape.KindEllipse {
			s.CornerStyle = shape.CornerSharp
		}
	case shape.KindLine, shape.KindArrow:
		s.StrokeStyle = e.style.StrokeStyle
		s.ToX, s.ToY = wx, wy
	case shape.KindFreeDraw:
		s.Points = []shape.Point{{X: wx, Y: wy}}
	case shape.KindText:
		s.FontSize = e.style.FontSize
		s.FontFamily = e.style.FontFamily
		s.TextAlign = e.style.TextAlign
	default:
		panic("engine: tool produced unhandled kind " + string(kind))
	}
	return s
}

// updateDrawing mutates the in-progress shape's terminal fields from the
// current world position.
func (e *Engine) updateDrawing(wx, wy float64) {
	s := e.drawing

	switch s.Kind {
	case shape.KindRectangle, shape.KindDiamond:
		// Anchor stays at the original click point; extent may go negative
		// and is normalized by consumers.
		s.Width = wx - e.downWorld.X
		s.Height = wy - e.downWorld.Y

	case shape.KindEllipse:
		// Recenter every move: the anchor is the midpoint of the drag
		// rectangle, so radii are always half the drag distance from the
		// current center.
		s.X = (e.downWorld.X + wx) / 2
		s.Y = (e.downWorld.Y + wy) / 2
		s.RadX = (wx - e.downWorld.X) / 2
		s.RadY = (wy - e.downWorld.Y) / 2

	case shape.KindLine, shape.KindArrow:
		s.ToX, s.ToY = wx, wy

	case shape.KindFreeDraw:
		s.Points = append(s.Points, shape.Point{X: wx, Y: wy})

	default:
		panic("engine: drawing unhandled kind " + string(s.Kind))
	}
}

// commitText appends a text shape at the recorded world position once the
// host's inline input loses focus. Empty input appends nothing; the input
// surface is the host's to remove in either case.
func (e *Engine) commitText(at shape.Point, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || e.readOnly || text == "" {
		return
	}

	s := e.newShape(shape.KindText, at.X, at.Y)
	s.Text = text
	e.scene = append(e.scene, s)
	e.scheduleSave()
	e.redraw()
}
