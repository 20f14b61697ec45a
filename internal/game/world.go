package game

import (
	"fmt"
	"sort"

	"github.com/Garsondee/hexfront/internal/hex"
)

// Participant is one entry of the fixed turn rotation.
type Participant struct {
	ID string `json:"id" yaml:"id"`
	AI bool   `json:"ai" yaml:"ai"`
}

// HazardZone is an area that damages units standing in it at the end of its
// owner's turn.
type HazardZone struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Source    string    `json:"source"` // ability id that created it
	Center    hex.Coord `json:"center"`
	Radius    int       `json:"radius"`
	Damage    int       `json:"damage"`
	TurnsLeft int       `json:"turnsLeft"`
}

// Covers reports whether c lies inside the zone.
func (h *HazardZone) Covers(c hex.Coord) bool {
	return hex.Distance(h.Center, c) <= h.Radius
}

// WorldState is the single mutable aggregate of a match. It is owned by the
// session and passed by reference into every component; no component keeps
// its own copy of the unit collections.
//
// Units holds every unit. PlayerUnits and EnemyUnits are the local
// participant's view split by side; a unit lives in Units and in exactly one
// of the side collections.
type WorldState struct {
	Tiles *TileMap

	Units       []*Unit
	PlayerUnits []*Unit
	EnemyUnits  []*Unit
	Selected    *Unit

	// LocalPlayer decides which side collection a unit is filed under.
	LocalPlayer string

	Rotation   []Participant
	TurnOwner  string
	TurnNumber int

	Hazards []*HazardZone
}

// NewWorld creates a world whose first turn belongs to rotation[0].
func NewWorld(tiles *TileMap, localPlayer string, rotation ...Participant) *WorldState {
	w := &WorldState{
		Tiles:       tiles,
		LocalPlayer: localPlayer,
		Rotation:    append([]Participant(nil), rotation...),
		TurnNumber:  1,
	}
	if len(rotation) > 0 {
		w.TurnOwner = rotation[0].ID
	}
	return w
}

// AddUnit normalizes u and files it into the unit collections.
func (w *WorldState) AddUnit(u *Unit) error {
	if u == nil {
		return fmt.Errorf("add unit: nil unit")
	}
	EnsureFields(u)
	assignID(u)
	if w.UnitByID(u.ID) != nil {
		return fmt.Errorf("add unit %s: duplicate id", u.ID)
	}
	if !w.Tiles.InBounds(u.Pos) {
		return fmt.Errorf("add unit %s: position %v off board", u.ID, u.Pos)
	}
	if other := w.UnitAt(u.Pos); other != nil {
		return fmt.Errorf("add unit %s: %v already occupied by %s", u.ID, u.Pos, other.ID)
	}
	w.Units = append(w.Units, u)
	if u.Owner == w.LocalPlayer {
		w.PlayerUnits = append(w.PlayerUnits, u)
	} else {
		w.EnemyUnits = append(w.EnemyUnits, u)
	}
	return nil
}

// allUnits returns the union of every collection, each unit once, in
// first-seen order.
func (w *WorldState) allUnits() []*Unit {
	seen := make(map[*Unit]bool, len(w.Units))
	out := make([]*Unit, 0, len(w.Units))
	for _, coll := range [][]*Unit{w.Units, w.PlayerUnits, w.EnemyUnits} {
		for _, u := range coll {
			if u == nil || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// UnitAt returns the live unit standing on c, or nil. Occupancy is always
// derived from the collections, never cached on tiles.
func (w *WorldState) UnitAt(c hex.Coord) *Unit {
	for _, u := range w.allUnits() {
		if u.Alive() && u.Pos == c {
			return u
		}
	}
	return nil
}

// UnitByID finds a unit by canonical id across every collection.
func (w *WorldState) UnitByID(id string) *Unit {
	if id == "" {
		return nil
	}
	for _, u := range w.allUnits() {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UnitsOf returns the live units of owner sorted by id.
func (w *WorldState) UnitsOf(owner string) []*Unit {
	var out []*Unit
	for _, u := range w.allUnits() {
		if u.Owner == owner && u.Alive() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveUnit drops u from every collection and from the selection.
func (w *WorldState) RemoveUnit(u *Unit) {
	w.Units = without(w.Units, u)
	w.PlayerUnits = without(w.PlayerUnits, u)
	w.EnemyUnits = without(w.EnemyUnits, u)
	if w.Selected == u {
		w.Selected = nil
	}
}

func without(coll []*Unit, u *Unit) []*Unit {
	out := coll[:0]
	for _, x := range coll {
		if x != u {
			out = append(out, x)
		}
	}
	for i := len(out); i < len(coll); i++ {
		coll[i] = nil
	}
	return out
}

// Participant looks up a rotation entry by id.
func (w *WorldState) Participant(id string) (Participant, bool) {
	for _, p := range w.Rotation {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IsAI reports whether the participant id is AI-controlled.
func (w *WorldState) IsAI(id string) bool {
	p, ok := w.Participant(id)
	return ok && p.AI
}

// Standing returns the participants that still have live units, in
// rotation order.
func (w *WorldState) Standing() []string {
	var out []string
	for _, p := range w.Rotation {
		if len(w.UnitsOf(p.ID)) > 0 {
			out = append(out, p.ID)
		}
	}
	return out
}

// Winner returns the last participant standing, if exactly one remains.
func (w *WorldState) Winner() (string, bool) {
	s := w.Standing()
	if len(s) == 1 {
		return s[0], true
	}
	return "", false
}

// Clone deep-copies the world, preserving which collections each unit is in.
func (w *WorldState) Clone() *WorldState {
	cp := &WorldState{
		LocalPlayer: w.LocalPlayer,
		Rotation:    append([]Participant(nil), w.Rotation...),
		TurnOwner:   w.TurnOwner,
		TurnNumber:  w.TurnNumber,
	}
	if w.Tiles != nil {
		cp.Tiles = &TileMap{Cols: w.Tiles.Cols, Rows: w.Tiles.Rows, tiles: make(map[hex.Coord]*Tile, w.Tiles.Len())}
		for _, t := range w.Tiles.Tiles() {
			cp.Tiles.Put(*t)
		}
	}
	copies := make(map[*Unit]*Unit)
	dup := func(coll []*Unit) []*Unit {
		out := make([]*Unit, 0, len(coll))
		for _, u := range coll {
			c, ok := copies[u]
			if !ok {
				c = u.clone()
				copies[u] = c
			}
			out = append(out, c)
		}
		return out
	}
	cp.Units = dup(w.Units)
	cp.PlayerUnits = dup(w.PlayerUnits)
	cp.EnemyUnits = dup(w.EnemyUnits)
	if w.Selected != nil {
		cp.Selected = copies[w.Selected]
	}
	for _, h := range w.Hazards {
		hz := *h
		cp.Hazards = append(cp.Hazards, &hz)
	}
	return cp
}
