// Desktop host for the drawing engine: a fyne window whose raster widget is
// the engine's surface. Drawings persist to the server API when configured,
// with the usual local fallback.
package main

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/kelseyhightower/envconfig"

	"github.com/aperture/aperture/backend-go/internal/engine"
	"github.com/aperture/aperture/backend-go/internal/store"
)

type desktopConfig struct {
	APIURL      string `envconfig:"APERTURE_API_URL" default:""`
	Token       string `envconfig:"APERTURE_TOKEN" default:""`
	CanvasID    string `envconfig:"APERTURE_CANVAS_ID" default:"canvas_local"`
	FallbackDir string `envconfig:"APERTURE_FALLBACK_DIR" default:""`
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	var cfg desktopConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.FallbackDir == "" {
		cache, _ := os.UserCacheDir()
		cfg.FallbackDir = filepath.Join(cache, "aperture")
	}

	fallback, err := store.NewLocal(cfg.FallbackDir)
	if err != nil {
		slog.Error("create fallback store", "error", err)
		os.Exit(1)
	}

	a := app.New()
	win := a.NewWindow("Aperture")
	win.Resize(fyne.NewSize(1280, 800))

	opts := engine.Options{Fallback: fallback}
	if cfg.APIURL != "" {
		opts.Store = store.NewClient(cfg.APIURL, cfg.Token)
	}
	// The inline text editor is a modal form; cancel commits empty text.
	opts.TextInput = func(px, py float64, commit func(string)) {
		entry := widget.NewEntry()
		items := []*widget.FormItem{widget.NewFormItem("Text", entry)}
		dialog.ShowForm("Add text", "Add", "Cancel", items, func(ok bool) {
			if ok {
				commit(entry.Text)
			} else {
				commit("")
			}
		}, win)
	}

	surface := newDrawSurface()
	eng := engine.New(opts)
	surface.eng = eng
	eng.Init(surface, cfg.CanvasID, false)

	win.SetContent(container.NewBorder(buildToolbar(eng), nil, nil, nil, surface))
	win.SetOnClosed(func() {
		eng.Destroy()
	})
	win.ShowAndRun()
}

func buildToolbar(eng *engine.Engine) fyne.CanvasObject {
	toolButton := func(label string, tool engine.Tool) *widget.Button {
		return widget.NewButton(label, func() { eng.SetTool(tool) })
	}
	return container.NewHBox(
		toolButton("Select", engine.ToolSelection),
		toolButton("Pan", engine.ToolPan),
		toolButton("Rect", engine.ToolRectangle),
		toolButton("Diamond", engine.ToolDiamond),
		toolButton("Ellipse", engine.ToolEllipse),
		toolButton("Line", engine.ToolLine),
		toolButton("Arrow", engine.ToolArrow),
		toolButton("Draw", engine.ToolFreeDraw),
		toolButton("Text", engine.ToolText),
		toolButton("Erase", engine.ToolEraser),
		widget.NewButton("Clear", func() { eng.Clear() }),
	)
}

// drawSurface is the engine's pixel surface: a raster widget that shows the
// last presented buffer and forwards pointer events.
type drawSurface struct {
	widget.BaseWidget

	eng    *engine.Engine
	raster *fynecanvas.Raster

	mu  sync.Mutex
	img *image.RGBA
	pxW int // raster pixel size from the last draw callback
	pxH int

	dragging bool
	lastX    float64
	lastY    float64
}

func newDrawSurface() *drawSurface {
	s := &drawSurface{}
	s.raster = fynecanvas.NewRaster(s.draw)
	s.ExtendBaseWidget(s)
	return s
}

func (s *drawSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

// DisplaySize implements engine.Surface using the widget's logical size.
func (s *drawSurface) DisplaySize() (int, int) {
	size := s.Size()
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return 800, 600
	}
	return w, h
}

// DevicePixelRatio implements engine.Surface, derived from the raster's
// physical width against the widget's logical width.
func (s *drawSurface) DevicePixelRatio() float64 {
	s.mu.Lock()
	pxW := s.pxW
	s.mu.Unlock()

	size := s.Size()
	if pxW <= 0 || size.Width <= 0 {
		return 1
	}
	return float64(pxW) / float64(size.Width)
}

// Present implements engine.Surface.
func (s *drawSurface) Present(img *image.RGBA) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
	fynecanvas.Refresh(s.raster)
}

// draw is the raster callback. A physical-size change is pushed back into
// the engine so the next frame matches the widget.
func (s *drawSurface) draw(w, h int) image.Image {
	s.mu.Lock()
	resized := w != s.pxW || h != s.pxH
	s.pxW, s.pxH = w, h
	img := s.img
	s.mu.Unlock()

	if resized && s.eng != nil {
		go s.eng.Resize()
	}
	if img == nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return img
}

func (s *drawSurface) Dragged(ev *fyne.DragEvent) {
	x, y := float64(ev.Position.X), float64(ev.Position.Y)

	if !s.dragging {
		s.dragging = true
		s.eng.PointerDown(x-float64(ev.Dragged.DX), y-float64(ev.Dragged.DY))
	}
	s.eng.PointerMove(x, y)
	s.lastX, s.lastY = x, y
}

func (s *drawSurface) DragEnd() {
	if !s.dragging {
		return
	}
	s.dragging = false
	s.eng.PointerUp(s.lastX, s.lastY)
}

func (s *drawSurface) Tapped(ev *fyne.PointEvent) {
	x, y := float64(ev.Position.X), float64(ev.Position.Y)
	s.eng.PointerDown(x, y)
	s.eng.PointerUp(x, y)
}

func (s *drawSurface) Scrolled(ev *fyne.ScrollEvent) {
	factor := 1.1
	if ev.Scrolled.DY < 0 {
		factor = 1 / 1.1
	}
	s.eng.ZoomAt(factor, float64(ev.Position.X), float64(ev.Position.Y))
}
