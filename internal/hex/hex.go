// Package hex implements the board's coordinate system: odd-r offset
// coordinates (odd rows are shoved right by half a hex), their cube
// equivalents, neighbor enumeration and the hex distance metric.
//
// Every caller (pathing, range checks, AI, renderer) goes through this
// package so the parity convention can never drift between them.
package hex

import "fmt"

// Coord is an odd-r offset position: Q is the column, R the row.
type Coord struct {
	Q int `json:"q" yaml:"q"`
	R int `json:"r" yaml:"r"`
}

// C is shorthand for Coord{Q: q, R: r}.
func C(q, r int) Coord { return Coord{Q: q, R: r} }

func (c Coord) String() string { return fmt.Sprintf("%d,%d", c.Q, c.R) }

// Cube is the cube-coordinate form of a hex. X+Y+Z is always 0.
type Cube struct {
	X, Y, Z int
}

// Neighbor deltas (dq, dr), clockwise from east. Even and odd rows differ
// because odd rows sit half a hex to the right.
var (
	evenRowDeltas = [6]Coord{{1, 0}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}}
	oddRowDeltas  = [6]Coord{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {0, 1}, {1, 1}}
)

// ToCube converts an odd-r offset coordinate to cube space.
// r&1 is 1 for negative odd rows as well, so the floor division stays exact.
func ToCube(c Coord) Cube {
	x := c.Q - (c.R-(c.R&1))/2
	z := c.R
	return Cube{X: x, Y: -x - z, Z: z}
}

// FromCube converts a cube coordinate back to odd-r offset form.
func FromCube(cb Cube) Coord {
	q := cb.X + (cb.Z-(cb.Z&1))/2
	return Coord{Q: q, R: cb.Z}
}

// Neighbors returns the six adjacent coordinates of c.
func Neighbors(c Coord) [6]Coord {
	deltas := &evenRowDeltas
	if c.R&1 == 1 {
		deltas = &oddRowDeltas
	}
	var out [6]Coord
	for i, d := range deltas {
		out[i] = Coord{Q: c.Q + d.Q, R: c.R + d.R}
	}
	return out
}

// Distance is the number of steps between a and b:
// max(|dx|, |dy|, |dz|) in cube space.
func Distance(a, b Coord) int {
	ca, cb := ToCube(a), ToCube(b)
	return max(abs(ca.X-cb.X), abs(ca.Y-cb.Y), abs(ca.Z-cb.Z))
}

// IsNeighbor reports whether a and b are adjacent.
func IsNeighbor(a, b Coord) bool {
	return Distance(a, b) == 1
}

// Within returns every coordinate at distance <= radius from center,
// center included, ordered by row then column.
func Within(center Coord, radius int) []Coord {
	if radius < 0 {
		return nil
	}
	cc := ToCube(center)
	out := make([]Coord, 0, 1+3*radius*(radius+1))
	for dz := -radius; dz <= radius; dz++ {
		for dx := max(-radius, -dz-radius); dx <= min(radius, -dz+radius); dx++ {
			x := cc.X + dx
			z := cc.Z + dz
			out = append(out, FromCube(Cube{X: x, Y: -x - z, Z: z}))
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
