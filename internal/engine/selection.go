package engine

import (
	"github.com/aperture/aperture/backend-go/internal/shape"
)

// Pick tolerances in display pixels. World-space radii are derived by
// dividing by the current zoom so hit areas stay constant on screen.
const (
	pickTolerancePx = 10.0
	handleRadiusPx  = 8.0
)

type interactionMode int

const (
	modeNone interactionMode = iota
	modeDragging
	modeResizing
)

// selection tracks the selected shape by stable identifier rather than by
// reference, so wholesale scene replacement cannot leave it dangling; it is
// re-resolved against the scene after every replacement. The drag/resize
// session fields exist only between pointer-down and pointer-up.
type selection struct {
	id string // "" = nothing selected

	mode       interactionMode
	handle     shape.HandleKind
	startWorld shape.Point
	orig       shape.Shape // snapshot at session start, session deltas apply to it
	origBounds shape.Rect
}

func (s *selection) clear() {
	*s = selection{}
}

func (s *selection) endSession() {
	s.mode = modeNone
	s.handle = shape.HandleNone
}

// resolve drops the selection if its shape no longer exists in the scene.
func (s *selection) resolve(scene []shape.Shape) {
	if s.id == "" {
		return
	}
	for i := range scene {
		if scene[i].ID == s.id {
			return
		}
	}
	s.clear()
}

// indexOf returns the scene index of the selected shape, or -1.
func (s *selection) indexOf(scene []shape.Shape) int {
	if s.id == "" {
		return -1
	}
	for i := range scene {
		if scene[i].ID == s.id {
			return i
		}
	}
	return -1
}

// Cursor names the pointer feedback the host should show.
type Cursor string

const (
	CursorDefault    Cursor = "default"
	CursorMove       Cursor = "move"
	CursorGrab       Cursor = "grab"
	CursorCross      Cursor = "crosshair"
	CursorText       Cursor = "text"
	CursorResizeNWSE Cursor = "nwse-resize"
	CursorResizeNESW Cursor = "nesw-resize"
	CursorResizeNS   Cursor = "ns-resize"
	CursorResizeEW   Cursor = "ew-resize"
)

func cursorForHandle(h shape.HandleKind) Cursor {
	switch h {
	case shape.HandleTopLeft, shape.HandleBottomRight:
		return CursorResizeNWSE
	case shape.HandleTopRight, shape.HandleBottomLeft:
		return CursorResizeNESW
	case shape.HandleTop, shape.HandleBottom:
		return CursorResizeNS
	case shape.HandleLeft, shape.HandleRight:
		return CursorResizeEW
	default:
		return CursorDefault
	}
}

// CursorHint reports the pointer cursor for a display-pixel position given
// the active tool and selection state.
func (e *Engine) CursorHint(px, py float64) Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.tool {
	case ToolPan:
		return CursorGrab
	case ToolText:
		return CursorText
	case ToolSelection:
		wx, wy := e.view.ToWorld(px, py)
		if i := e.sel.indexOf(e.scene); i >= 0 {
			b := e.scene[i].Bounds()
			if h := shape.HandleAt(b, wx, wy, handleRadiusPx/e.view.Scale); h != shape.HandleNone {
				return cursorForHandle(h)
			}
		}
		tol := pickTolerancePx / e.view.Scale
		for i := len(e.scene) - 1; i >= 0; i-- {
			if e.scene[i].Hit(wx, wy, tol) {
				return CursorMove
			}
		}
		return CursorDefault
	case ToolEraser:
		return CursorDefault
	default:
		return CursorCross
	}
}

// SelectedID returns the id of the selected shape, or "".
func (e *Engine) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.id
}
