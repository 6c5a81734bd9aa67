package shape

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Text bounds come from real glyph metrics rather than a per-character
// estimate. Faces are rasterized from the bundled Go Regular font; the
// stored fontFamily is carried through serialization for hosts that can
// honor it, but measurement always uses the bundled face so hit-testing is
// deterministic across hosts.

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font

	faceMu sync.Mutex
	faces  = map[float64]font.Face{}
)

// FaceForSize returns a cached font face for the given pixel size.
func FaceForSize(size float64) font.Face {
	if size <= 0 {
		size = 20
	}

	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			// The bundled font is a compile-time asset; failing to parse it
			// is unrecoverable.
			panic("shape: parse bundled font: " + err.Error())
		}
		parsedFont = f
	})

	faceMu.Lock()
	defer faceMu.Unlock()

	if face, ok := faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic("shape: build font face: " + err.Error())
	}
	faces[size] = face
	return face
}

// MeasureText returns the rendered width and height of a (possibly
// multi-line) text run at the given size. The family parameter is accepted
// for interface symmetry; see the package note above.
func MeasureText(text string, size float64, _ string) (w, h float64) {
	if text == "" {
		return 0, 0
	}
	if size <= 0 {
		size = 20
	}

	face := FaceForSize(size)
	metrics := face.Metrics()
	lineHeight := float64(metrics.Height.Ceil())

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		adv := font.MeasureString(face, line)
		w = max(w, float64(adv.Ceil()))
	}
	return w, lineHeight * float64(len(lines))
}

// LineHeight returns the line advance for a font size, used by the renderer
// to lay out multi-line text shapes.
func LineHeight(size float64) float64 {
	return float64(FaceForSize(size).Metrics().Height.Ceil())
}
