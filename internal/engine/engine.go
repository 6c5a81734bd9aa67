// Package engine implements the interactive vector-drawing engine: a
// retained scene of shapes rendered to a pixel surface, manipulated through
// pointer input by a tool state machine, with pan/zoom coordinate
// transforms and debounced write-through persistence.
package engine

import (
	"image"
	"sync"
	"time"

	"github.com/aperture/aperture/backend-go/internal/shape"
	"github.com/aperture/aperture/backend-go/internal/sketch"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

// Tool is the active pointer tool. Exactly one tool is active at a time.
type Tool string

const (
	ToolSelection Tool = "selection"
	ToolPan       Tool = "pan"
	ToolEraser    Tool = "eraser"
	ToolText      Tool = "text"
	ToolRectangle Tool = "rectangle"
	ToolDiamond   Tool = "diamond"
	ToolEllipse   Tool = "ellipse"
	ToolLine      Tool = "line"
	ToolArrow     Tool = "arrow"
	ToolFreeDraw  Tool = "freedraw"
)

// drawsKind maps a drawing tool to the shape variant it creates.
func (t Tool) drawsKind() (shape.Kind, bool) {
	switch t {
	case ToolRectangle:
		return shape.KindRectangle, true
	case ToolDiamond:
		return shape.KindDiamond, true
	case ToolEllipse:
		return shape.KindEllipse, true
	case ToolLine:
		return shape.KindLine, true
	case ToolArrow:
		return shape.KindArrow, true
	case ToolFreeDraw:
		return shape.KindFreeDraw, true
	default:
		return "", false
	}
}

// Style holds the stroke/fill/font settings applied to the next drawing
// operation. Changing it never retroactively restyles existing shapes.
type Style struct {
	StrokeColor    string
	StrokeWidth    float64
	BackgroundFill string
	FillStyle      shape.FillStyle
	StrokeStyle    shape.StrokeStyle
	FontSize       float64
	FontFamily     string
	TextAlign      string
}

// DefaultStyle returns the style a fresh engine starts with.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#1e1e1e",
		StrokeWidth: 2,
		FillStyle:   shape.FillTransparent,
		StrokeStyle: shape.StrokeSolid,
		FontSize:    20,
		FontFamily:  "Virgil",
		TextAlign:   "left",
	}
}

// Surface is the pixel surface the engine is bound to. The host owns the
// actual display; the engine pushes a freshly rendered buffer through
// Present after every mutation.
type Surface interface {
	DisplaySize() (w, h int)
	DevicePixelRatio() float64
	Present(img *image.RGBA)
}

// TextInputFunc opens an inline text-input surface at a display-pixel
// position. The host calls commit exactly once with the entered text (empty
// when the input was dismissed) and removes the input surface afterward
// regardless of outcome.
type TextInputFunc func(px, py float64, commit func(text string))

// Options configures an engine instance. Store and Fallback may be nil for
// stateless presentation.
type Options struct {
	Store     ElementStore
	Fallback  FallbackStore
	SaveDelay time.Duration
	TextInput TextInputFunc
}

// Engine owns one canvas: its scene, view transform, selection, and
// persistence scheduling. Pointer events arrive from a single host event
// loop; the mutex exists because the debounced save timer and the initial
// remote reconcile run on their own goroutines.
type Engine struct {
	mu   sync.Mutex
	opts Options

	surface  Surface
	canvasID string
	readOnly bool

	scene   []shape.Shape // committed scene, draw order = index order
	drawing *shape.Shape  // in-progress shape, rendered but not yet committed
	sel     selection

	tool  Tool
	style Style
	view  Viewport

	buf *image.RGBA
	gen *sketch.Generator

	saver *saver

	// Pointer interaction state, valid between pointer-down and pointer-up.
	pointerDown bool
	panning     bool
	erasing     bool
	lastPX      float64
	lastPY      float64
	downWorld   shape.Point
	sizeCached  bool // display size cached for the current interaction
	destroyed   bool
}

// New creates an unbound engine. Call Init to attach it to a surface.
func New(opts Options) *Engine {
	return &Engine{
		opts:  opts,
		tool:  ToolSelection,
		style: DefaultStyle(),
		view:  NewViewport(),
		gen:   sketch.New(), // zero roughness: geometrically exact strokes
		saver: newSaver(opts.SaveDelay),
	}
}

// Init binds the engine to a pixel surface and canvas. The scene is
// populated synchronously from local fallback storage for instant display,
// then reconciled asynchronously from the remote store (a non-empty remote
// scene wins; an empty one never clobbers local). readOnly disables all
// mutation and persistence scheduling.
func (e *Engine) Init(surface Surface, canvasID string, readOnly bool) {
	e.mu.Lock()
	e.surface = surface
	e.canvasID = canvasID
	e.readOnly = readOnly
	e.view.DPR = surface.DevicePixelRatio()
	e.view.DisplayW, e.view.DisplayH = surface.DisplaySize()

	e.scene = e.loadLocal()
	e.redraw()
	e.mu.Unlock()

	if e.opts.Store != nil {
		go e.reconcileRemote()
	}
}

// SetTool switches the active tool, cancelling any in-progress draw, drag,
// or resize and clearing the selection.
func (e *Engine) SetTool(tool Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tool = tool
	e.drawing = nil
	e.panning = false
	e.erasing = false
	e.pointerDown = false
	e.sel.clear()
	e.redraw()
}

// ActiveTool returns the current tool.
func (e *Engine) ActiveTool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// Style setters apply to the next drawing operation.

func (e *Engine) SetStrokeColor(c string) { e.mu.Lock(); e.style.StrokeColor = c; e.mu.Unlock() }
func (e *Engine) SetStrokeWidth(w float64) {
	e.mu.Lock()
	e.style.StrokeWidth = w
	e.mu.Unlock()
}
func (e *Engine) SetBackgroundFill(c string) {
	e.mu.Lock()
	e.style.BackgroundFill = c
	e.mu.Unlock()
}
func (e *Engine) SetFillStyle(f shape.FillStyle) { e.mu.Lock(); e.style.FillStyle = f; e.mu.Unlock() }
func (e *Engine) SetStrokeStyle(s shape.StrokeStyle) {
	e.mu.Lock()
	e.style.StrokeStyle = s
	e.mu.Unlock()
}
func (e *Engine) SetTextAlign(a string) { e.mu.Lock(); e.style.TextAlign = a; e.mu.Unlock() }

func (e *Engine) SetFont(size float64, family string) {
	e.mu.Lock()
	e.style.FontSize = size
	e.style.FontFamily = family
	e.mu.Unlock()
}

// AddShapes appends shapes programmatically (paste/import), assigns ids to
// any that lack one, and triggers render + persistence.
func (e *Engine) AddShapes(shapes []shape.Shape) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly || len(shapes) == 0 {
		return
	}

	for _, s := range shapes {
		if s.ID == "" {
			s.ID = typeid.NewElementID()
		}
		e.scene = append(e.scene, s.Clone())
	}
	e.scheduleSave()
	e.redraw()
}

// LoadElements replaces the scene wholesale without persisting, for
// stateless or read-only presentation. The selection is re-resolved against
// the new scene.
func (e *Engine) LoadElements(elements []shape.Shape) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.scene = shape.CloneScene(elements)
	e.drawing = nil
	e.sel.resolve(e.scene)
	e.sel.endSession()
	e.redraw()
}

// Elements returns a copy of the committed scene.
func (e *Engine) Elements() []shape.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return shape.CloneScene(e.scene)
}

// Clear empties the scene and persists the empty scene.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return
	}

	e.scene = nil
	e.drawing = nil
	e.sel.clear()
	e.scheduleSave()
	e.redraw()
}

// Resize recomputes the pixel buffer from the surface's current display size
// and device pixel ratio and triggers a redraw. Shape world coordinates are
// never rewritten; only the transform changes.
func (e *Engine) Resize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return
	}

	e.view.DPR = e.surface.DevicePixelRatio()
	e.view.DisplayW, e.view.DisplayH = e.surface.DisplaySize()
	e.sizeCached = false
	e.redraw()
}

// ZoomAt rescales the view around a display-pixel position (e.g. the wheel
// cursor) and redraws.
func (e *Engine) ZoomAt(factor, px, py float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.ZoomAt(factor, px, py)
	e.redraw()
}

// View returns the current view transform.
func (e *Engine) View() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Destroy detaches the engine from its surface. A pending debounced write is
// flushed synchronously first, so the last mutation is not lost on teardown.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.surface = nil
	e.mu.Unlock()

	e.saver.flush()
}
