package engine

import (
	"math"
	"testing"
)

func TestViewport_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Viewport
	}{
		{"identity", Viewport{Scale: 1, DPR: 1}},
		{"zoomed in with pan", Viewport{Scale: 2.5, PanX: 120, PanY: -40, DPR: 1}},
		{"zoomed out on hidpi", Viewport{Scale: 0.33, PanX: -7.5, PanY: 300, DPR: 2}},
		{"fractional dpr", Viewport{Scale: 1.7, PanX: 11, PanY: 13, DPR: 1.25}},
	}

	points := [][2]float64{{0, 0}, {10, 10}, {-55.5, 1234.25}, {0.001, -0.001}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range points {
				px, py := tt.v.ToDisplay(p[0], p[1])
				wx, wy := tt.v.ToWorld(px, py)
				if math.Abs(wx-p[0]) > 1e-9 || math.Abs(wy-p[1]) > 1e-9 {
					t.Errorf("round trip of (%v, %v) via (%v, %v) gave (%v, %v)",
						p[0], p[1], px, py, wx, wy)
				}
			}
		})
	}
}

func TestViewport_PanIsScreenSpace(t *testing.T) {
	v := Viewport{Scale: 4, PanX: 100, PanY: 0, DPR: 1}

	// A pointer at panX maps to world origin regardless of scale.
	wx, wy := v.ToWorld(100, 0)
	if wx != 0 || wy != 0 {
		t.Errorf("ToWorld(panX, panY) = (%v, %v), want origin", wx, wy)
	}

	// One world unit spans Scale display pixels.
	wx, _ = v.ToWorld(104, 0)
	if wx != 1 {
		t.Errorf("ToWorld(panX+scale) x = %v, want 1", wx)
	}
}

func TestViewport_BufferSizeFloorsDPR(t *testing.T) {
	v := Viewport{Scale: 1, DPR: 1.5, DisplayW: 333, DisplayH: 201}
	w, h := v.BufferSize()
	if w != 499 || h != 301 {
		t.Errorf("BufferSize() = (%d, %d), want (499, 301)", w, h)
	}
}

func TestViewport_ZoomAtKeepsPointerFixed(t *testing.T) {
	v := Viewport{Scale: 1, PanX: 50, PanY: 50, DPR: 1}

	wantX, wantY := v.ToWorld(200, 150)
	v.ZoomAt(2, 200, 150)

	gotX, gotY := v.ToWorld(200, 150)
	if math.Abs(gotX-wantX) > 1e-9 || math.Abs(gotY-wantY) > 1e-9 {
		t.Errorf("world under cursor moved from (%v, %v) to (%v, %v)", wantX, wantY, gotX, gotY)
	}
	if v.Scale != 2 {
		t.Errorf("Scale = %v, want 2", v.Scale)
	}
}

func TestViewport_ZoomClamped(t *testing.T) {
	v := NewViewport()
	v.ZoomAt(100, 0, 0)
	if v.Scale != 10 {
		t.Errorf("Scale = %v, want clamp at 10", v.Scale)
	}
	v.ZoomAt(1e-6, 0, 0)
	if v.Scale != 0.1 {
		t.Errorf("Scale = %v, want clamp at 0.1", v.Scale)
	}
}
