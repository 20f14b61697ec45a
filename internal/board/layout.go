package board

import (
	"math"

	"github.com/Garsondee/hexfront/internal/hex"
)

var sqrt3 = math.Sqrt(3)

// Layout maps hexes to screen pixels for pointy-top odd-r boards. Size is
// the center-to-corner radius; Origin is the pixel center of hex (0,0).
type Layout struct {
	Size    float64
	OriginX float64
	OriginY float64
}

// HexToPixel returns the pixel center of c.
func (l Layout) HexToPixel(c hex.Coord) (float64, float64) {
	cb := hex.ToCube(c)
	x := l.Size * sqrt3 * (float64(cb.X) + float64(cb.Z)/2)
	y := l.Size * 1.5 * float64(cb.Z)
	return x + l.OriginX, y + l.OriginY
}

// PixelToHex returns the hex containing the pixel.
func (l Layout) PixelToHex(px, py float64) hex.Coord {
	px -= l.OriginX
	py -= l.OriginY
	fx := (sqrt3/3*px - py/3) / l.Size
	fz := (2.0 / 3 * py) / l.Size
	return hex.FromCube(cubeRound(fx, -fx-fz, fz))
}

// Corners returns the six corner points of c, clockwise from the top.
func (l Layout) Corners(c hex.Coord) [6][2]float32 {
	cx, cy := l.HexToPixel(c)
	var out [6][2]float32
	for i := range out {
		a := math.Pi/180*(60*float64(i)) - math.Pi/2
		out[i] = [2]float32{float32(cx + l.Size*math.Cos(a)), float32(cy + l.Size*math.Sin(a))}
	}
	return out
}

// Bounds is the pixel size needed to show a cols x rows board, origin
// included.
func (l Layout) Bounds(cols, rows int) (int, int) {
	w := l.OriginX + l.Size*sqrt3*(float64(cols)+0.5)
	h := l.OriginY + l.Size*(1.5*float64(rows-1)+1)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

func cubeRound(x, y, z float64) hex.Cube {
	rx, ry, rz := math.Round(x), math.Round(y), math.Round(z)
	dx, dy, dz := math.Abs(rx-x), math.Abs(ry-y), math.Abs(rz-z)
	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}
	return hex.Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}
