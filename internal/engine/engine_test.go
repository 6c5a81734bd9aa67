package engine

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

// fakeSurface is an 800x600 display at 1x for deterministic pointer math.
type fakeSurface struct {
	w, h     int
	dpr      float64
	presents int
}

func newFakeSurface() *fakeSurface { return &fakeSurface{w: 800, h: 600, dpr: 1} }

func (f *fakeSurface) DisplaySize() (int, int)   { return f.w, f.h }
func (f *fakeSurface) DevicePixelRatio() float64 { return f.dpr }
func (f *fakeSurface) Present(img *image.RGBA)   { f.presents++ }

type fakeStore struct {
	mu        sync.Mutex
	elements  []shape.Shape
	getErr    error
	saveErr   error
	saveCalls int
	lastSave  []shape.Shape
}

func (f *fakeStore) GetElements(_ context.Context, _ string) ([]shape.Shape, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elements, f.getErr
}

func (f *fakeStore) SaveElements(_ context.Context, _ string, elements []shape.Shape) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.lastSave = shape.CloneScene(elements)
	return f.saveErr
}

func (f *fakeStore) saves() (int, []shape.Shape) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCalls, f.lastSave
}

type fakeFallback struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeFallback() *fakeFallback { return &fakeFallback{data: map[string][]byte{}} }

func (f *fakeFallback) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeFallback) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeSurface) {
	t.Helper()
	e := New(opts)
	surf := newFakeSurface()
	e.Init(surf, "canvas_test", false)
	return e, surf
}

func TestDrawRectangleThenErase(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	e.SetTool(ToolRectangle)
	e.PointerDown(10, 10)
	e.PointerMove(110, 60)
	e.PointerUp(110, 60)

	els := e.Elements()
	if len(els) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(els))
	}
	s := els[0]
	if s.Kind != shape.KindRectangle || s.X != 10 || s.Y != 10 || s.Width != 100 || s.Height != 50 {
		t.Fatalf("rectangle = %+v, want anchor (10,10) extent 100x50", s)
	}

	e.SetTool(ToolEraser)
	e.PointerDown(50, 30)
	e.PointerUp(50, 30)

	if got := len(e.Elements()); got != 0 {
		t.Errorf("scene has %d shapes after erase, want 0", got)
	}
}

func TestZeroExtentShapeIsKept(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	e.SetTool(ToolEllipse)
	e.PointerDown(40, 40)
	e.PointerUp(40, 40)

	els := e.Elements()
	if len(els) != 1 {
		t.Fatalf("scene has %d shapes, want 1 (degenerate shapes are never auto-discarded)", len(els))
	}
	if els[0].RadX != 0 || els[0].RadY != 0 {
		t.Errorf("ellipse radii = (%v, %v), want zero", els[0].RadX, els[0].RadY)
	}
}

func TestEllipseRecentersWhileDrawing(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	e.SetTool(ToolEllipse)
	e.PointerDown(0, 0)
	e.PointerMove(100, 60)
	e.PointerUp(100, 60)

	s := e.Elements()[0]
	if s.X != 50 || s.Y != 30 || s.RadX != 50 || s.RadY != 30 {
		t.Errorf("ellipse = center (%v,%v) radii (%v,%v), want center (50,30) radii (50,30)", s.X, s.Y, s.RadX, s.RadY)
	}
}

func TestSelectionDragMovesShape(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.LoadElements([]shape.Shape{
		{ID: "el_a", Kind: shape.KindRectangle, X: 10, Y: 10, Width: 100, Height: 50},
	})

	e.SetTool(ToolSelection)
	e.PointerDown(60, 35)
	if e.SelectedID() != "el_a" {
		t.Fatalf("selected %q, want el_a", e.SelectedID())
	}
	e.PointerMove(80, 45)
	e.PointerUp(80, 45)

	s := e.Elements()[0]
	if s.X != 30 || s.Y != 20 {
		t.Errorf("anchor after drag = (%v, %v), want (30, 20)", s.X, s.Y)
	}
	if s.Width != 100 || s.Height != 50 {
		t.Errorf("extent changed during drag: %vx%v", s.Width, s.Height)
	}
}

func TestResizeTopLeftHandle(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.LoadElements([]shape.Shape{
		{ID: "el_a", Kind: shape.KindRectangle, X: 10, Y: 10, Width: 100, Height: 50},
	})
	e.SetTool(ToolSelection)

	// Select by clicking the body first.
	e.PointerDown(60, 35)
	e.PointerUp(60, 35)

	// Drag the top-left handle by (+20, +20).
	e.PointerDown(10, 10)
	e.PointerMove(30, 30)
	e.PointerUp(30, 30)

	s := e.Elements()[0]
	if s.X != 30 || s.Y != 30 || s.Width != 80 || s.Height != 30 {
		t.Fatalf("after resize: %+v, want anchor (30,30) extent 80x30", s)
	}
	// Bottom-right corner unchanged.
	if s.X+s.Width != 110 || s.Y+s.Height != 60 {
		t.Error("opposite corner moved during handle resize")
	}
}

func TestTopmostShapeWinsHitTest(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.LoadElements([]shape.Shape{
		{ID: "el_under", Kind: shape.KindRectangle, X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "el_over", Kind: shape.KindRectangle, X: 25, Y: 25, Width: 50, Height: 50},
	})
	e.SetTool(ToolSelection)

	e.PointerDown(50, 50)
	e.PointerUp(50, 50)

	if e.SelectedID() != "el_over" {
		t.Errorf("selected %q, want topmost el_over", e.SelectedID())
	}
}

func TestSwitchingToolCancelsDrawAndSelection(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	e.SetTool(ToolRectangle)
	e.PointerDown(0, 0)
	e.PointerMove(50, 50)
	// Tool switch mid-drag: the in-progress shape is discarded.
	e.SetTool(ToolSelection)

	if got := len(e.Elements()); got != 0 {
		t.Errorf("scene has %d shapes after cancelled draw, want 0", got)
	}
	if e.SelectedID() != "" {
		t.Errorf("selection %q survived tool switch", e.SelectedID())
	}
}

func TestPanTranslatesViewNotShapes(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.LoadElements([]shape.Shape{
		{ID: "el_a", Kind: shape.KindRectangle, X: 10, Y: 10, Width: 10, Height: 10},
	})

	e.SetTool(ToolPan)
	e.PointerDown(100, 100)
	e.PointerMove(140, 130)
	e.PointerUp(140, 130)

	v := e.View()
	if v.PanX != 40 || v.PanY != 30 {
		t.Errorf("pan = (%v, %v), want (40, 30)", v.PanX, v.PanY)
	}
	s := e.Elements()[0]
	if s.X != 10 || s.Y != 10 {
		t.Error("panning must not rewrite shape coordinates")
	}
}

func TestDebounceCoalescesWrites(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(t, Options{Store: store, SaveDelay: 30 * time.Millisecond})

	e.SetTool(ToolRectangle)
	for i := 0; i < 5; i++ {
		x := float64(i * 20)
		e.PointerDown(x, 0)
		e.PointerMove(x+10, 10)
		e.PointerUp(x+10, 10)
	}

	time.Sleep(150 * time.Millisecond)

	calls, last := store.saves()
	if calls != 1 {
		t.Fatalf("store received %d writes, want 1 coalesced write", calls)
	}
	if len(last) != 5 {
		t.Errorf("final write carried %d shapes, want 5", len(last))
	}
}

func TestFallbackOnSaveFailure(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("remote unavailable")}
	fb := newFakeFallback()
	e, _ := newTestEngine(t, Options{Store: store, Fallback: fb, SaveDelay: 10 * time.Millisecond})

	e.SetTool(ToolLine)
	e.PointerDown(0, 0)
	e.PointerMove(30, 40)
	e.PointerUp(30, 40)

	time.Sleep(100 * time.Millisecond)

	data, ok := fb.Get(FallbackKey("canvas_test"))
	if !ok {
		t.Fatal("fallback storage has no entry after failed remote write")
	}
	var saved []shape.Shape
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("fallback payload not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(saved, e.Elements()) {
		t.Error("fallback serialization differs from the in-memory scene")
	}
}

func TestEmptyRemoteNeverClobbersLocal(t *testing.T) {
	fb := newFakeFallback()
	local := []shape.Shape{
		{ID: "el_1", Kind: shape.KindRectangle, X: 0, Y: 0, Width: 10, Height: 10},
		{ID: "el_2", Kind: shape.KindEllipse, X: 5, Y: 5, RadX: 2, RadY: 2},
		{ID: "el_3", Kind: shape.KindLine, ToX: 9, ToY: 9},
	}
	data, _ := json.Marshal(local)
	fb.Set(FallbackKey("canvas_test"), data)

	store := &fakeStore{} // remote returns an empty scene
	e := New(Options{Store: nil, Fallback: fb})
	e.Init(newFakeSurface(), "canvas_test", false)

	e.opts.Store = store
	e.reconcileRemote()

	if got := len(e.Elements()); got != 3 {
		t.Errorf("scene has %d shapes, want the 3 local ones (empty remote must not clobber)", got)
	}
}

func TestNonEmptyRemoteWins(t *testing.T) {
	fb := newFakeFallback()
	data, _ := json.Marshal([]shape.Shape{{ID: "el_local", Kind: shape.KindRectangle}})
	fb.Set(FallbackKey("canvas_test"), data)

	store := &fakeStore{elements: []shape.Shape{
		{ID: "el_r1", Kind: shape.KindRectangle},
		{ID: "el_r2", Kind: shape.KindRectangle},
	}}
	e := New(Options{Store: nil, Fallback: fb})
	e.Init(newFakeSurface(), "canvas_test", false)

	e.opts.Store = store
	e.reconcileRemote()

	els := e.Elements()
	if len(els) != 2 || els[0].ID != "el_r1" {
		t.Errorf("scene = %+v, want the 2 remote shapes", els)
	}
}

func TestMalformedLocalSceneStartsEmpty(t *testing.T) {
	fb := newFakeFallback()
	fb.Set(FallbackKey("canvas_test"), []byte("{not json"))

	e := New(Options{Fallback: fb})
	e.Init(newFakeSurface(), "canvas_test", false)

	if got := len(e.Elements()); got != 0 {
		t.Errorf("scene has %d shapes from malformed local data, want 0", got)
	}
}

func TestTextCommit(t *testing.T) {
	var commit func(string)
	e, _ := newTestEngine(t, Options{
		TextInput: func(px, py float64, c func(string)) { commit = c },
	})

	e.SetTool(ToolText)
	e.PointerDown(100, 200)
	if commit == nil {
		t.Fatal("text tool did not open an input surface")
	}

	commit("hello")
	els := e.Elements()
	if len(els) != 1 || els[0].Kind != shape.KindText || els[0].Text != "hello" {
		t.Fatalf("scene = %+v, want one text shape", els)
	}
	if els[0].X != 100 || els[0].Y != 200 {
		t.Errorf("text anchored at (%v, %v), want recorded world position (100, 200)", els[0].X, els[0].Y)
	}
}

func TestTextCommitEmptyAppendsNothing(t *testing.T) {
	var commit func(string)
	e, _ := newTestEngine(t, Options{
		TextInput: func(px, py float64, c func(string)) { commit = c },
	})

	e.SetTool(ToolText)
	e.PointerDown(0, 0)
	commit("")

	if got := len(e.Elements()); got != 0 {
		t.Errorf("scene has %d shapes after empty commit, want 0", got)
	}
}

func TestLoadElementsDropsStaleSelection(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.LoadElements([]shape.Shape{{ID: "el_a", Kind: shape.KindRectangle, Width: 10, Height: 10}})
	e.SetTool(ToolSelection)
	e.PointerDown(5, 5)
	e.PointerUp(5, 5)

	e.LoadElements([]shape.Shape{{ID: "el_b", Kind: shape.KindRectangle, Width: 10, Height: 10}})

	if e.SelectedID() != "" {
		t.Errorf("selection %q survived scene replacement", e.SelectedID())
	}
}

func TestReadOnlyDisablesMutation(t *testing.T) {
	store := &fakeStore{}
	e := New(Options{Store: store, SaveDelay: 10 * time.Millisecond})
	e.Init(newFakeSurface(), "canvas_test", true)

	e.SetTool(ToolRectangle)
	e.PointerDown(0, 0)
	e.PointerMove(50, 50)
	e.PointerUp(50, 50)
	e.Clear()

	if got := len(e.Elements()); got != 0 {
		t.Errorf("read-only engine mutated scene: %d shapes", got)
	}
	time.Sleep(50 * time.Millisecond)
	if calls, _ := store.saves(); calls != 0 {
		t.Errorf("read-only engine scheduled %d writes", calls)
	}
}

func TestDestroyFlushesPendingWrite(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(t, Options{Store: store, SaveDelay: 10 * time.Second})

	e.SetTool(ToolRectangle)
	e.PointerDown(0, 0)
	e.PointerMove(10, 10)
	e.PointerUp(10, 10)

	e.Destroy()

	calls, last := store.saves()
	if calls != 1 {
		t.Fatalf("store received %d writes after Destroy, want 1 flushed write", calls)
	}
	if len(last) != 1 {
		t.Errorf("flushed write carried %d shapes, want 1", len(last))
	}
}

func TestClearPersistsEmptyScene(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(t, Options{Store: store, SaveDelay: 10 * time.Millisecond})

	e.AddShapes([]shape.Shape{{Kind: shape.KindRectangle, Width: 5, Height: 5}})
	e.Clear()
	time.Sleep(80 * time.Millisecond)

	calls, last := store.saves()
	if calls == 0 {
		t.Fatal("clear did not schedule persistence")
	}
	if len(last) != 0 {
		t.Errorf("final write carried %d shapes, want empty scene", len(last))
	}
}

func TestAddShapesAssignsIDs(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	e.AddShapes([]shape.Shape{{Kind: shape.KindRectangle, Width: 5, Height: 5}})

	if id := e.Elements()[0].ID; id == "" {
		t.Error("programmatically added shape has no id")
	}
}

func TestResizeRecomputesBuffer(t *testing.T) {
	e, surf := newTestEngine(t, Options{})
	surf.w, surf.h = 400, 300
	surf.dpr = 2

	e.Resize()

	v := e.View()
	w, h := v.BufferSize()
	if w != 800 || h != 600 {
		t.Errorf("buffer = %dx%d, want 800x600", w, h)
	}
}
