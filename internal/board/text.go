package board

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	colorText   = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	colorDim    = color.RGBA{R: 140, G: 140, B: 150, A: 255}
	colorWarn   = color.RGBA{R: 240, G: 170, B: 60, A: 255}
	colorHealth = color.RGBA{R: 90, G: 210, B: 110, A: 255}
)

// textDrawer draws single lines with the 7x13 bitmap face.
type textDrawer struct {
	face *text.GoXFace
}

func newTextDrawer() *textDrawer {
	return &textDrawer{face: text.NewGoXFace(basicfont.Face7x13)}
}

func (t *textDrawer) draw(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, t.face, op)
}

// width returns the advance of s in pixels.
func (t *textDrawer) width(s string) int {
	w, _ := text.Measure(s, t.face, 0)
	return int(w)
}
