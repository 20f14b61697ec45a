package game

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of a world, used for persistence and
// for syncing late joiners.
type Snapshot struct {
	Cols       int           `json:"cols"`
	Rows       int           `json:"rows"`
	Tiles      []Tile        `json:"tiles"`
	Units      []*Unit       `json:"units"`
	Rotation   []Participant `json:"rotation"`
	TurnOwner  string        `json:"turnOwner"`
	TurnNumber int           `json:"turnNumber"`
	Hazards    []*HazardZone `json:"hazards,omitempty"`

	// RawUnits are loosely-typed records from other tools; they are
	// normalized through DecodeUnitRecord on restore.
	RawUnits []map[string]any `json:"rawUnits,omitempty"`
}

// TakeSnapshot captures w. Units are deep-copied.
func TakeSnapshot(w *WorldState) Snapshot {
	cp := w.Clone()
	s := Snapshot{
		Cols:       cp.Tiles.Cols,
		Rows:       cp.Tiles.Rows,
		Units:      cp.Units,
		Rotation:   cp.Rotation,
		TurnOwner:  cp.TurnOwner,
		TurnNumber: cp.TurnNumber,
		Hazards:    cp.Hazards,
	}
	for _, t := range cp.Tiles.Tiles() {
		s.Tiles = append(s.Tiles, *t)
	}
	return s
}

// Restore rebuilds a world from the snapshot, filing units into side
// collections from the point of view of localPlayer.
func (s Snapshot) Restore(localPlayer string) (*WorldState, error) {
	if s.Cols <= 0 || s.Rows <= 0 {
		return nil, fmt.Errorf("restore snapshot: bad board size %dx%d", s.Cols, s.Rows)
	}
	tm := NewTileMap(s.Cols, s.Rows)
	for _, t := range s.Tiles {
		if !tm.InBounds(t.Pos) {
			return nil, fmt.Errorf("restore snapshot: tile %v off board", t.Pos)
		}
		tm.Put(t)
	}
	w := NewWorld(tm, localPlayer, s.Rotation...)
	if s.TurnOwner != "" {
		w.TurnOwner = s.TurnOwner
	}
	if s.TurnNumber > 0 {
		w.TurnNumber = s.TurnNumber
	}
	for _, u := range s.Units {
		if u == nil || u.Dead {
			continue
		}
		if err := w.AddUnit(u.clone()); err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
	}
	for i, raw := range s.RawUnits {
		u, err := DecodeUnitRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: raw unit %d: %w", i, err)
		}
		if u.Dead {
			continue
		}
		if err := w.AddUnit(u); err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
	}
	for _, h := range s.Hazards {
		hz := *h
		w.Hazards = append(w.Hazards, &hz)
	}
	return w, nil
}

// EncodeSnapshot serializes w as JSON.
func EncodeSnapshot(w *WorldState) ([]byte, error) {
	data, err := json.Marshal(TakeSnapshot(w))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a JSON snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
