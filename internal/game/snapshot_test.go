package game

import (
	"testing"

	"github.com/Garsondee/hexfront/internal/hex"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	m := newTestMatch(t,
		WithTile(3, 3, TerrainWater, 0, false),
		WithTile(4, 4, TerrainGrass, 1, true),
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 5, 5)),
	)
	m.Unit("b1").HP = 4
	m.World.Hazards = []*HazardZone{{ID: "z", Owner: "red", Center: hex.C(5, 5), Radius: 1, Damage: 2, TurnsLeft: 3}}
	m.Session.EndTurn("red")

	data, err := EncodeSnapshot(m.World)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w, err := snap.Restore("blue")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if w.TurnOwner != "blue" || w.TurnNumber != 2 {
		t.Fatalf("turn = %s/%d", w.TurnOwner, w.TurnNumber)
	}
	if tile, _ := w.Tiles.Tile(hex.C(3, 3)); tile.Terrain != TerrainWater {
		t.Fatal("terrain lost")
	}
	if tile, _ := w.Tiles.Tile(hex.C(4, 4)); tile.Elevation != 1 || !tile.HasForest {
		t.Fatal("elevation/forest lost")
	}
	b1 := w.UnitByID("b1")
	if b1 == nil || b1.HP != 2 {
		t.Fatalf("b1 = %+v, want hp 2 after one hazard tick", b1)
	}
	if len(w.PlayerUnits) != 1 || w.PlayerUnits[0] != b1 {
		t.Fatal("restore did not file units from the local player's side")
	}
	if len(w.Hazards) != 1 || w.Hazards[0].TurnsLeft != 2 {
		t.Fatalf("hazards = %+v", w.Hazards)
	}
}

func TestSnapshot_RawUnits(t *testing.T) {
	snap := Snapshot{
		Cols: 4, Rows: 4,
		Rotation:  []Participant{{ID: "red"}, {ID: "blue"}},
		TurnOwner: "red",
		RawUnits: []map[string]any{
			{"netId": "n1", "type": "Galley", "owner": "blue", "col": 2.0, "row": 2.0, "mover": "naval"},
			{"id": "gone", "owner": "red", "q": 0.0, "r": 0.0, "isDead": true},
		},
	}
	w, err := snap.Restore("red")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	u := ResolveUnitRef(w, "n1")
	if u == nil || u.Mover != MoverNaval || u.Pos != hex.C(2, 2) {
		t.Fatalf("raw unit = %+v", u)
	}
	if w.UnitByID("gone") != nil {
		t.Fatal("dead raw unit restored")
	}
}

func TestSnapshot_RejectsBadBoard(t *testing.T) {
	if _, err := (Snapshot{}).Restore("red"); err == nil {
		t.Fatal("expected error for empty board")
	}
	s := Snapshot{Cols: 2, Rows: 2, Tiles: []Tile{{Pos: hex.C(5, 5)}}}
	if _, err := s.Restore("red"); err == nil {
		t.Fatal("expected error for off-board tile")
	}
}

func TestJournal_FiltersAndSummary(t *testing.T) {
	j := NewJournal(false)
	j.Add(1, "r1", "red", CatMove, "commit", "0,0 -> 1,0", 1)
	j.Add(1, "r1", "red", CatCombat, "hit", "-> b1 with rifle for 4", 4)
	j.Add(2, "b1", "blue", CatCombat, "hit", "-> r1 with bow for 3", 3)
	j.AddVerbose(2, "b1", "blue", CatMove, "step", "2,2", 0)

	if j.Len() != 3 {
		t.Fatalf("len = %d; verbose entry should be skipped", j.Len())
	}
	if j.CountCategory(CatCombat, "hit") != 2 || j.SumCategory(CatCombat, "hit") != 7 {
		t.Fatal("combat counts wrong")
	}
	if e, ok := j.LastOf(CatCombat, "hit"); !ok || e.Unit != "b1" {
		t.Fatalf("last hit = %+v", e)
	}
	if len(j.FilterUnit("r1")) != 2 || len(j.FilterTurnRange(2, 2)) != 1 {
		t.Fatal("filters wrong")
	}
	if !j.HasEntry(CatCombat, "", "bow") {
		t.Fatal("substring search failed")
	}

	var nilJournal *Journal
	nilJournal.Add(1, "", "", CatTurn, "start", "", 0)
	if nilJournal.Len() != 0 {
		t.Fatal("nil journal recorded")
	}
}
