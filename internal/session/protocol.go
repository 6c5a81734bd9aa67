package session

import "encoding/json"

// Message is the JSON envelope for control traffic in both directions.
// Rendered frames travel separately as binary PNG messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client -> server
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeToolSet     = "tool.set"
	TypeStyleSet    = "style.set"
	TypeViewZoom    = "view.zoom"
	TypeViewResize  = "view.resize"
	TypeTextCommit  = "text.commit"
	TypeSceneClear  = "scene.clear"

	// Server -> client
	TypeWelcome     = "welcome"
	TypeTextRequest = "text.request"
	TypeCursor      = "cursor"
	TypeError       = "error"
)

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type StylePayload struct {
	StrokeColor    *string  `json:"strokeColor,omitempty"`
	StrokeWidth    *float64 `json:"strokeWidth,omitempty"`
	BackgroundFill *string  `json:"backgroundFill,omitempty"`
	FillStyle      *string  `json:"fillStyle,omitempty"`
	StrokeStyle    *string  `json:"strokeStyle,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	FontFamily     *string  `json:"fontFamily,omitempty"`
	TextAlign      *string  `json:"textAlign,omitempty"`
}

type ZoomPayload struct {
	Factor float64 `json:"factor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type ResizePayload struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	DPR    float64 `json:"dpr"`
}

type TextCommitPayload struct {
	Text string `json:"text"`
}

type TextRequestPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type WelcomePayload struct {
	CanvasID string `json:"canvasId"`
	ReadOnly bool   `json:"readOnly"`
}

type CursorPayload struct {
	Cursor string `json:"cursor"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}
