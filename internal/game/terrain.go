package game

import (
	"sort"

	"github.com/Garsondee/hexfront/internal/hex"
)

// TerrainKind identifies the base surface of a tile.
type TerrainKind uint8

const (
	TerrainGrass    TerrainKind = iota // Default open ground
	TerrainPlains                      // Dry open land
	TerrainSand                        // Beach / desert
	TerrainSnow                        // Tundra
	TerrainSwamp                       // Wet lowland, still land for movement
	TerrainWater                       // Lakes and sea: naval only
	TerrainMountain                    // Impassable peaks
	terrainKindCount                   // sentinel
)

var terrainNames = [terrainKindCount]string{
	TerrainGrass:    "grass",
	TerrainPlains:   "plains",
	TerrainSand:     "sand",
	TerrainSnow:     "snow",
	TerrainSwamp:    "swamp",
	TerrainWater:    "water",
	TerrainMountain: "mountain",
}

func (k TerrainKind) String() string {
	if k < terrainKindCount {
		return terrainNames[k]
	}
	return "unknown"
}

// ParseTerrain maps a terrain name back to its kind. Unknown names are grass.
func ParseTerrain(name string) TerrainKind {
	for k, n := range terrainNames {
		if n == name {
			return TerrainKind(k)
		}
	}
	return TerrainGrass
}

// IsWater reports whether the surface only carries naval movers.
func (k TerrainKind) IsWater() bool { return k == TerrainWater }

// blocksMover returns true if a mover of the given kind cannot enter this terrain.
func (k TerrainKind) blocksMover(m MoverKind) bool {
	switch m {
	case MoverNaval:
		return k != TerrainWater
	default:
		return k == TerrainWater || k == TerrainMountain
	}
}

// Tile is one hex of the board. Occupancy is never stored here; it is
// derived from the unit collections on every query.
type Tile struct {
	Pos       hex.Coord   `json:"pos"`
	Terrain   TerrainKind `json:"terrain"`
	Elevation int         `json:"elevation"`
	HasForest bool        `json:"forest,omitempty"`
}

// TileSet is the read-only view of the board the pathfinder needs.
type TileSet interface {
	Tile(c hex.Coord) (*Tile, bool)
}

// TileMap is a bounded cols x rows board keyed by offset coordinate.
type TileMap struct {
	Cols  int
	Rows  int
	tiles map[hex.Coord]*Tile
}

// NewTileMap creates a board of flat grass tiles.
func NewTileMap(cols, rows int) *TileMap {
	tm := &TileMap{Cols: cols, Rows: rows, tiles: make(map[hex.Coord]*Tile, cols*rows)}
	for r := 0; r < rows; r++ {
		for q := 0; q < cols; q++ {
			c := hex.C(q, r)
			tm.tiles[c] = &Tile{Pos: c, Terrain: TerrainGrass}
		}
	}
	return tm
}

// Tile returns the tile at c, or false when c is off the board.
func (tm *TileMap) Tile(c hex.Coord) (*Tile, bool) {
	t, ok := tm.tiles[c]
	return t, ok
}

// InBounds reports whether c lies on the board.
func (tm *TileMap) InBounds(c hex.Coord) bool {
	_, ok := tm.tiles[c]
	return ok
}

// SetTerrain changes the surface of an existing tile.
func (tm *TileMap) SetTerrain(c hex.Coord, k TerrainKind) {
	if t, ok := tm.tiles[c]; ok {
		t.Terrain = k
	}
}

// SetElevation changes the height of an existing tile.
func (tm *TileMap) SetElevation(c hex.Coord, elev int) {
	if t, ok := tm.tiles[c]; ok {
		t.Elevation = elev
	}
}

// SetForest toggles forest cover on an existing tile.
func (tm *TileMap) SetForest(c hex.Coord, forest bool) {
	if t, ok := tm.tiles[c]; ok {
		t.HasForest = forest
	}
}

// Put inserts or replaces a tile. Used when restoring snapshots.
func (tm *TileMap) Put(t Tile) {
	cp := t
	tm.tiles[t.Pos] = &cp
}

// Tiles returns every tile ordered by row then column.
func (tm *TileMap) Tiles() []*Tile {
	out := make([]*Tile, 0, len(tm.tiles))
	for _, t := range tm.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.R != out[j].Pos.R {
			return out[i].Pos.R < out[j].Pos.R
		}
		return out[i].Pos.Q < out[j].Pos.Q
	})
	return out
}

// Len is the number of tiles on the board.
func (tm *TileMap) Len() int { return len(tm.tiles) }
