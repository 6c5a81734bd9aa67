package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aperture/aperture/backend-go/internal/engine"
	"github.com/aperture/aperture/backend-go/internal/shape"
)

func mustMessage(t *testing.T, msgType string, payload interface{}) *Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return &Message{Type: msgType, Payload: raw}
}

// drain empties the send buffer so frame backpressure never interferes.
func drain(s *Session) {
	for {
		select {
		case <-s.send:
		default:
			return
		}
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New(NewManager(nil), nil, "sess_test", "canvas_test", "user_test", false, engine.Options{})
	drain(s)
	return s
}

func TestPointerMessagesDriveDrawing(t *testing.T) {
	s := newTestSession(t)

	s.handleMessage(mustMessage(t, TypeToolSet, ToolPayload{Tool: "rectangle"}))
	s.handleMessage(mustMessage(t, TypePointerDown, PointerPayload{X: 10, Y: 10}))
	drain(s)
	s.handleMessage(mustMessage(t, TypePointerMove, PointerPayload{X: 110, Y: 60}))
	drain(s)
	s.handleMessage(mustMessage(t, TypePointerUp, PointerPayload{X: 110, Y: 60}))

	els := s.eng.Elements()
	if len(els) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(els))
	}
	if els[0].Kind != shape.KindRectangle || els[0].Width != 100 || els[0].Height != 50 {
		t.Errorf("shape = %+v, want 100x50 rectangle", els[0])
	}
}

func TestStyleMessageAppliesToNextShape(t *testing.T) {
	s := newTestSession(t)

	color := "#e03131"
	width := 4.0
	s.handleMessage(mustMessage(t, TypeStyleSet, StylePayload{StrokeColor: &color, StrokeWidth: &width}))

	s.handleMessage(mustMessage(t, TypeToolSet, ToolPayload{Tool: "line"}))
	s.handleMessage(mustMessage(t, TypePointerDown, PointerPayload{X: 0, Y: 0}))
	drain(s)
	s.handleMessage(mustMessage(t, TypePointerUp, PointerPayload{X: 30, Y: 40}))

	els := s.eng.Elements()
	if els[0].StrokeColor != "#e03131" || els[0].StrokeWidth != 4 {
		t.Errorf("shape style = %q/%v, want applied style", els[0].StrokeColor, els[0].StrokeWidth)
	}
}

func TestResizeMessageUpdatesSurface(t *testing.T) {
	s := newTestSession(t)

	s.handleMessage(mustMessage(t, TypeViewResize, ResizePayload{Width: 640, Height: 480, DPR: 2}))

	w, h := s.DisplaySize()
	if w != 640 || h != 480 {
		t.Errorf("display = %dx%d, want 640x480", w, h)
	}
	if s.DevicePixelRatio() != 2 {
		t.Errorf("dpr = %v, want 2", s.DevicePixelRatio())
	}

	bw, bh := s.eng.View().BufferSize()
	if bw != 1280 || bh != 960 {
		t.Errorf("buffer = %dx%d, want 1280x960", bw, bh)
	}
}

func TestResizeMessageRejectsBadDimensions(t *testing.T) {
	s := newTestSession(t)

	s.handleMessage(mustMessage(t, TypeViewResize, ResizePayload{Width: 0, Height: 480, DPR: 1}))

	w, h := s.DisplaySize()
	if w != defaultWidth || h != defaultHeight {
		t.Errorf("display = %dx%d, zero-width resize must be ignored", w, h)
	}
}

func TestTextFlow(t *testing.T) {
	s := newTestSession(t)

	s.handleMessage(mustMessage(t, TypeToolSet, ToolPayload{Tool: "text"}))
	drain(s)
	s.handleMessage(mustMessage(t, TypePointerDown, PointerPayload{X: 100, Y: 200}))

	// The engine asked the client for inline text input.
	var sawRequest bool
	for {
		select {
		case f := <-s.send:
			if f.binary {
				continue
			}
			var msg Message
			if err := json.Unmarshal(f.data, &msg); err == nil && msg.Type == TypeTextRequest {
				sawRequest = true
			}
		default:
			goto done
		}
	}
done:
	if !sawRequest {
		t.Fatal("no text.request message sent")
	}

	s.handleMessage(mustMessage(t, TypeTextCommit, TextCommitPayload{Text: "hello"}))

	els := s.eng.Elements()
	if len(els) != 1 || els[0].Kind != shape.KindText || els[0].Text != "hello" {
		t.Fatalf("scene = %+v, want one text shape", els)
	}
}

func TestUnknownMessageType(t *testing.T) {
	s := newTestSession(t)

	s.handleMessage(&Message{Type: "bogus"})

	f := <-s.send
	var msg Message
	if err := json.Unmarshal(f.data, &msg); err != nil || msg.Type != TypeError {
		t.Errorf("got %q message, want error reply", msg.Type)
	}
}

type fakeBatchSaver struct {
	scenes map[string][]shape.Shape
}

func (f *fakeBatchSaver) SaveMany(_ context.Context, scenes map[string][]shape.Shape) error {
	f.scenes = scenes
	return nil
}

func TestManagerShutdownFlushesScenes(t *testing.T) {
	saver := &fakeBatchSaver{}
	m := NewManager(saver)

	s := New(m, nil, "sess_1", "canvas_1", "user_1", false, engine.Options{})
	drain(s)
	m.Register(s)

	s.handleMessage(mustMessage(t, TypeToolSet, ToolPayload{Tool: "ellipse"}))
	s.handleMessage(mustMessage(t, TypePointerDown, PointerPayload{X: 0, Y: 0}))
	drain(s)
	s.handleMessage(mustMessage(t, TypePointerUp, PointerPayload{X: 40, Y: 40}))

	m.Shutdown(context.Background())

	scene, ok := saver.scenes["canvas_1"]
	if !ok {
		t.Fatal("shutdown did not flush the open canvas")
	}
	if len(scene) != 1 || scene[0].Kind != shape.KindEllipse {
		t.Errorf("flushed scene = %+v, want the drawn ellipse", scene)
	}
}
