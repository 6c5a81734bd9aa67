package engine

import "math"

// Viewport maps between device pointer coordinates (display pixels relative
// to the surface), the pixel buffer, and logical world coordinates. Pan and
// scale are expressed in display-pixel space, decoupled from the device
// pixel ratio; the DPR only enters when sizing the pixel buffer and
// composing the render transform.
type Viewport struct {
	Scale float64 // uniform zoom, default 1
	PanX  float64 // display-pixel translation
	PanY  float64
	DPR   float64 // device pixel ratio of the host surface

	DisplayW int // surface display size in display pixels
	DisplayH int
}

// NewViewport returns a viewport with identity zoom and pan.
func NewViewport() Viewport {
	return Viewport{Scale: 1, DPR: 1}
}

// ToWorld converts a pointer position in display pixels to world coordinates.
func (v Viewport) ToWorld(px, py float64) (float64, float64) {
	return (px - v.PanX) / v.Scale, (py - v.PanY) / v.Scale
}

// ToDisplay converts a world point to display-pixel coordinates.
func (v Viewport) ToDisplay(wx, wy float64) (float64, float64) {
	return wx*v.Scale + v.PanX, wy*v.Scale + v.PanY
}

// BufferSize returns the pixel-buffer dimensions: the display size scaled by
// the device pixel ratio, floored.
func (v Viewport) BufferSize() (int, int) {
	w := int(math.Floor(float64(v.DisplayW) * v.DPR))
	h := int(math.Floor(float64(v.DisplayH) * v.DPR))
	return w, h
}

// ZoomAt rescales the viewport by factor while keeping the world point under
// the display-pixel position (px, py) fixed on screen.
func (v *Viewport) ZoomAt(factor, px, py float64) {
	scale := v.Scale * factor
	if scale < 0.1 {
		scale = 0.1
	}
	if scale > 10 {
		scale = 10
	}

	wx, wy := v.ToWorld(px, py)
	v.Scale = scale
	v.PanX = px - wx*scale
	v.PanY = py - wy*scale
}
