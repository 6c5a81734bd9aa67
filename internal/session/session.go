// Package session runs one interactive drawing session per websocket
// connection: pointer and tool messages stream in, rendered PNG frames
// stream back out through a single writer goroutine.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/aperture/aperture/backend-go/internal/engine"
	"github.com/aperture/aperture/backend-go/internal/shape"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024

	defaultWidth  = 1280
	defaultHeight = 720
)

type frame struct {
	data   []byte
	binary bool
}

// Session binds one websocket client to one engine instance. It is the
// engine's Surface: every Present encodes the buffer as PNG and queues it
// for the write pump.
type Session struct {
	id       string
	canvasID string
	userID   string

	conn    *websocket.Conn
	manager *Manager
	eng     *engine.Engine
	send    chan frame

	mu         sync.Mutex
	width      int
	height     int
	dpr        float64
	textCommit func(string)
}

func New(manager *Manager, conn *websocket.Conn, id, canvasID, userID string, readOnly bool, opts engine.Options) *Session {
	s := &Session{
		id:       id,
		canvasID: canvasID,
		userID:   userID,
		conn:     conn,
		manager:  manager,
		send:     make(chan frame, 16),
		width:    defaultWidth,
		height:   defaultHeight,
		dpr:      1,
	}

	opts.TextInput = s.requestText
	s.eng = engine.New(opts)
	s.eng.Init(s, canvasID, readOnly)

	s.sendJSON(TypeWelcome, WelcomePayload{CanvasID: canvasID, ReadOnly: readOnly})
	return s
}

// DisplaySize implements engine.Surface.
func (s *Session) DisplaySize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// DevicePixelRatio implements engine.Surface.
func (s *Session) DevicePixelRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dpr
}

// Present implements engine.Surface. Frames are dropped when the client
// cannot keep up; the next mutation produces a fresh one anyway.
func (s *Session) Present(img *image.RGBA) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Error("encode frame", "error", err, "session", s.id)
		return
	}

	select {
	case s.send <- frame{data: buf.Bytes(), binary: true}:
	default:
		slog.Debug("frame dropped, client behind", "session", s.id)
	}
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.manager.unregister(s)
		s.eng.Destroy()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", s.id)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", s.id)
			continue
		}

		s.handleMessage(&msg)
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case f, ok := <-s.send:
			if !ok {
				return
			}

			kind := websocket.MessageText
			if f.binary {
				kind = websocket.MessageBinary
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, kind, f.data)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.id)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(msg *Message) {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.eng.PointerDown(p.X, p.Y)

	case TypePointerMove:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.eng.PointerMove(p.X, p.Y)
		s.sendJSON(TypeCursor, CursorPayload{Cursor: string(s.eng.CursorHint(p.X, p.Y))})

	case TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.eng.PointerUp(p.X, p.Y)

	case TypeToolSet:
		var p ToolPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.eng.SetTool(engine.Tool(p.Tool))

	case TypeStyleSet:
		var p StylePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.applyStyle(p)

	case TypeViewZoom:
		var p ZoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.eng.ZoomAt(p.Factor, p.X, p.Y)

	case TypeViewResize:
		var p ResizePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		if p.Width <= 0 || p.Height <= 0 || p.DPR <= 0 {
			return
		}
		s.mu.Lock()
		s.width, s.height, s.dpr = p.Width, p.Height, p.DPR
		s.mu.Unlock()
		s.eng.Resize()

	case TypeTextCommit:
		var p TextCommitPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.mu.Lock()
		commit := s.textCommit
		s.textCommit = nil
		s.mu.Unlock()
		if commit != nil {
			commit(p.Text)
		}

	case TypeSceneClear:
		s.eng.Clear()

	default:
		s.sendJSON(TypeError, ErrorPayload{Reason: "unknown message type"})
	}
}

func (s *Session) applyStyle(p StylePayload) {
	if p.StrokeColor != nil {
		s.eng.SetStrokeColor(*p.StrokeColor)
	}
	if p.StrokeWidth != nil {
		s.eng.SetStrokeWidth(*p.StrokeWidth)
	}
	if p.BackgroundFill != nil {
		s.eng.SetBackgroundFill(*p.BackgroundFill)
	}
	if p.FillStyle != nil {
		s.eng.SetFillStyle(shape.FillStyle(*p.FillStyle))
	}
	if p.StrokeStyle != nil {
		s.eng.SetStrokeStyle(shape.StrokeStyle(*p.StrokeStyle))
	}
	if p.FontSize != nil || p.FontFamily != nil {
		size, family := 20.0, "Virgil"
		if p.FontSize != nil {
			size = *p.FontSize
		}
		if p.FontFamily != nil {
			family = *p.FontFamily
		}
		s.eng.SetFont(size, family)
	}
	if p.TextAlign != nil {
		s.eng.SetTextAlign(*p.TextAlign)
	}
}

// requestText is wired as the engine's TextInputFunc: ask the client to show
// an inline editor and park the commit callback until text.commit arrives.
func (s *Session) requestText(px, py float64, commit func(string)) {
	s.mu.Lock()
	s.textCommit = commit
	s.mu.Unlock()
	s.sendJSON(TypeTextRequest, TextRequestPayload{X: px, Y: py})
}

func (s *Session) sendJSON(msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "session", s.id)
		return
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "error", err, "session", s.id)
		return
	}

	select {
	case s.send <- frame{data: data}:
	default:
		slog.Warn("send buffer full, dropping message", "session", s.id)
	}
}
