package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

// DefaultSaveDelay is the quiescence window before a scheduled write fires.
const DefaultSaveDelay = 500 * time.Millisecond

// fallbackNamespace prefixes local fallback keys.
const fallbackNamespace = "canvas_elements"

// ElementStore is the remote persistence collaborator, keyed by canvas
// identifier. Both operations are best-effort from the engine's point of
// view: a failed read keeps the current scene, a failed write falls back to
// local storage.
type ElementStore interface {
	GetElements(ctx context.Context, canvasID string) ([]shape.Shape, error)
	SaveElements(ctx context.Context, canvasID string, elements []shape.Shape) error
}

// FallbackStore is synchronous local storage used when the remote write
// fails and for instant display on startup.
type FallbackStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// FallbackKey derives the local storage key for a canvas.
func FallbackKey(canvasID string) string {
	return fallbackNamespace + "_" + canvasID
}

// saver debounces scene writes: scheduling cancels and replaces any pending
// write, and the write fires only after the delay elapses with no new
// schedule (last mutation wins).
type saver struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
}

func newSaver(delay time.Duration) *saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &saver{delay: delay}
}

func (s *saver) schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = fn
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		run := s.pending
		s.pending = nil
		s.timer = nil
		s.mu.Unlock()

		if run != nil {
			run()
		}
	})
}

// flush runs any pending write immediately and synchronously.
func (s *saver) flush() {
	s.mu.Lock()
	run := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if run != nil {
		run()
	}
}

// scheduleSave snapshots the committed scene and debounces a remote write.
// The in-progress shape is deliberately excluded: it joins the scene, and
// therefore persistence, only when the drawing completes.
func (e *Engine) scheduleSave() {
	if e.readOnly || e.destroyed || e.opts.Store == nil {
		return
	}

	canvasID := e.canvasID
	snapshot := shape.CloneScene(e.scene)
	e.saver.schedule(func() {
		e.writeElements(canvasID, snapshot)
	})
}

// writeElements performs the remote write, falling back synchronously to
// local storage on failure so the scene is never lost.
func (e *Engine) writeElements(canvasID string, elements []shape.Shape) {
	err := e.opts.Store.SaveElements(context.Background(), canvasID, elements)
	if err == nil {
		return
	}
	slog.Error("save elements", "error", err, "canvas", canvasID)

	if e.opts.Fallback == nil {
		return
	}
	data, merr := json.Marshal(elements)
	if merr != nil {
		slog.Error("marshal elements for fallback", "error", merr, "canvas", canvasID)
		return
	}
	if ferr := e.opts.Fallback.Set(FallbackKey(canvasID), data); ferr != nil {
		slog.Error("write fallback", "error", ferr, "canvas", canvasID)
	}
}

// loadLocal populates the scene synchronously from local fallback storage.
// Malformed or missing data is treated as an empty scene.
func (e *Engine) loadLocal() []shape.Shape {
	if e.opts.Fallback == nil {
		return nil
	}
	data, ok := e.opts.Fallback.Get(FallbackKey(e.canvasID))
	if !ok {
		return nil
	}

	var elements []shape.Shape
	if err := json.Unmarshal(data, &elements); err != nil {
		slog.Warn("malformed local scene, starting empty", "error", err, "canvas", e.canvasID)
		return nil
	}
	return elements
}

// reconcileRemote fetches the remote scene and adopts it only when
// non-empty, so an empty remote result never clobbers an unsaved local
// draft. Runs on its own goroutine; a failed read keeps the current scene.
func (e *Engine) reconcileRemote() {
	elements, err := e.opts.Store.GetElements(context.Background(), e.canvasID)
	if err != nil {
		slog.Error("load elements", "error", err, "canvas", e.canvasID)
		return
	}
	if len(elements) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.scene = elements
	e.sel.resolve(e.scene)
	e.redraw()
}
