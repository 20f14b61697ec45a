package game

import (
	"testing"

	"github.com/Garsondee/hexfront/internal/hex"
)

func TestEndTurn_RotationWrapsAndCounts(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 5, 5)),
	)
	if m.World.TurnOwner != "red" || m.World.TurnNumber != 1 {
		t.Fatalf("start = %s/%d", m.World.TurnOwner, m.World.TurnNumber)
	}
	if res := m.Session.EndTurn("red"); !res.OK {
		t.Fatalf("end turn refused: %+v", res)
	}
	if m.World.TurnOwner != "blue" || m.World.TurnNumber != 2 {
		t.Fatalf("after one = %s/%d", m.World.TurnOwner, m.World.TurnNumber)
	}
	m.Session.EndTurn("blue")
	if m.World.TurnOwner != "red" || m.World.TurnNumber != 3 {
		t.Fatalf("after wrap = %s/%d", m.World.TurnOwner, m.World.TurnNumber)
	}
}

func TestEndTurn_ResetsNewOwnerOnly(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 5, 5)),
	)
	r1, b1 := m.Unit("r1"), m.Unit("b1")
	r1.MP, r1.AP = 0, 0
	b1.MP, b1.AP, b1.TempArmorBonus, b1.Defending = 1, 0, 2, true

	m.Session.EndTurn("red")
	if b1.MP != b1.MPMax || b1.AP != b1.APMax || b1.TempArmorBonus != 0 || b1.Defending {
		t.Fatalf("blue not reset: %+v", b1)
	}
	if r1.MP != 0 || r1.AP != 0 {
		t.Fatal("outgoing owner's units were reset")
	}
}

func TestEndTurn_ResetsAIUnitsEveryCycle(t *testing.T) {
	drone := unit("d1", "red", 2, 2)
	drone.AIControlled = true
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(drone),
		WithUnit(unit("b1", "blue", 7, 7)),
	)
	drone.AP = 0
	m.Session.EndTurn("red")
	if drone.AP != drone.APMax {
		t.Fatal("AI-controlled unit not reset on another owner's turn")
	}
}

func TestEndTurn_NotYourTurn(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)))
	if res := m.Session.EndTurn("blue"); res.Reason != ReasonNotYourTurn {
		t.Fatalf("result = %+v", res)
	}
	if m.World.TurnOwner != "red" {
		t.Fatal("turn passed anyway")
	}
}

// Scenario: EndTurn while the lock is held changes nothing.
func TestScenario_EndTurnWhileLocked(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 5, 5)),
	)
	b1 := m.Unit("b1")
	b1.AP = 0
	before := len(m.Journal.Entries())

	m.Session.Scheduler.Lock()
	if m.Session.Scheduler.EndTurn(m.World) {
		t.Fatal("EndTurn ran while locked")
	}
	if res := m.Session.EndTurn(""); res.OK || res.Reason != ReasonBusy {
		t.Fatalf("session end turn = %+v", res)
	}
	if m.World.TurnOwner != "red" || m.World.TurnNumber != 1 || b1.AP != 0 {
		t.Fatal("state changed while locked")
	}
	if len(m.Journal.Entries()) != before {
		t.Fatal("journal grew while locked")
	}

	m.Session.Scheduler.Unlock()
	if !m.Session.Scheduler.EndTurn(m.World) {
		t.Fatal("EndTurn refused after unlock")
	}
	if m.Session.Scheduler.Locked() {
		t.Fatal("lock left held after EndTurn")
	}
}

type countingTick struct{ owners []string }

func (c *countingTick) tick(_ *WorldState, owner string) { c.owners = append(c.owners, owner) }

func TestEndTurn_TicksRunForEndingOwner(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 5, 5)))
	ct := &countingTick{}
	m.Session.Scheduler.Ticks = append(m.Session.Scheduler.Ticks, ct.tick)
	m.Session.EndTurn("")
	m.Session.EndTurn("")
	if len(ct.owners) != 2 || ct.owners[0] != "red" || ct.owners[1] != "blue" {
		t.Fatalf("ticks ran for %v", ct.owners)
	}
}

func TestEndTurn_AIPlaysAndHandsBack(t *testing.T) {
	m := newAIMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 1, 0, "fists")),
	)
	r1 := m.Unit("r1")
	if res := m.Session.EndTurn("red"); !res.OK {
		t.Fatalf("end turn: %+v", res)
	}
	if m.World.TurnOwner != "red" || m.World.TurnNumber != 3 {
		t.Fatalf("turn = %s/%d, want red/3", m.World.TurnOwner, m.World.TurnNumber)
	}
	if r1.HP != 8 {
		t.Fatalf("red hp = %d, want 8 after one punch", r1.HP)
	}
	if m.Journal.CountCategory(CatAI, "turn") != 1 {
		dumpJournal(t, m)
		t.Fatal("AI turn not journaled")
	}
}

func TestEndTurn_AIChases(t *testing.T) {
	m := newAIMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 7, 0, "fists")),
	)
	m.Session.EndTurn("red")
	b1 := m.Unit("b1")
	if d := hex.Distance(b1.Pos, hex.C(0, 0)); d != 4 {
		dumpJournal(t, m)
		t.Fatalf("blue ended %d away at %v, want 4", d, b1.Pos)
	}
}

func TestEndTurn_AIStopsAdjacentAndAttacks(t *testing.T) {
	m := newAIMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 3, 0, "fists")),
	)
	m.Session.EndTurn("red")
	b1, r1 := m.Unit("b1"), m.Unit("r1")
	if !hex.IsNeighbor(b1.Pos, r1.Pos) {
		t.Fatalf("blue at %v is not adjacent to red", b1.Pos)
	}
	if r1.HP != 8 {
		t.Fatalf("red hp = %d, want 8", r1.HP)
	}
	assertInvariants(t, m.World)
}

// moatOpts floods every neighbor of c.
func moatOpts(c hex.Coord) []MatchOption {
	var opts []MatchOption
	for _, n := range hex.Neighbors(c) {
		opts = append(opts, WithTile(n.Q, n.R, TerrainWater, 0, false))
	}
	return opts
}

func TestEndTurn_AIGreedyStepTowardUnreachable(t *testing.T) {
	island := hex.C(6, 4)
	opts := append(moatOpts(island),
		WithUnit(unit("r1", "red", island.Q, island.R)),
		WithUnit(unit("b1", "blue", 0, 4, "fists")),
	)
	m := newAIMatch(t, opts...)
	m.Session.EndTurn("red")

	b1 := m.Unit("b1")
	if b1.Pos != hex.C(1, 4) {
		dumpJournal(t, m)
		t.Fatalf("blue at %v, want one step to 1,4", b1.Pos)
	}
	if d := hex.Distance(b1.Pos, island); d != 5 {
		t.Fatalf("distance = %d, want 5", d)
	}
	if m.Journal.CountCategory(CatAI, "greedy_step") != 1 || m.Journal.CountCategory(CatAI, "stuck") != 0 {
		dumpJournal(t, m)
		t.Fatal("want exactly one greedy step")
	}
	assertInvariants(t, m.World)
}

func TestEndTurn_AIStuckWithoutCloserNeighbor(t *testing.T) {
	island := hex.C(6, 4)
	opts := append(moatOpts(island),
		WithTile(1, 4, TerrainWater, 0, false),
		WithUnit(unit("r1", "red", island.Q, island.R)),
		WithUnit(unit("b1", "blue", 0, 4, "fists")),
	)
	m := newAIMatch(t, opts...)
	m.Session.EndTurn("red")

	b1 := m.Unit("b1")
	if b1.Pos != hex.C(0, 4) || b1.MP != b1.MPMax {
		t.Fatalf("blue moved to %v (mp %d)", b1.Pos, b1.MP)
	}
	if m.Journal.CountCategory(CatAI, "stuck") != 1 || m.Journal.CountCategory(CatAI, "greedy_step") != 0 {
		dumpJournal(t, m)
		t.Fatal("want one stuck entry and no step")
	}
}

func TestHazardTick_DamagesAndExpires(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 5, 5)),
		WithUnit(unit("r2", "red", 5, 4)),
	)
	m.World.Hazards = append(m.World.Hazards, &HazardZone{
		ID: "z1", Owner: "red", Source: "miasma", Center: hex.C(5, 5), Radius: 1, Damage: 3, TurnsLeft: 2,
	})
	b1, r2 := m.Unit("b1"), m.Unit("r2")

	m.Session.EndTurn("red")
	if b1.HP != 7 {
		t.Fatalf("after first tick hp = %d, want 7", b1.HP)
	}
	if r2.HP != 10 {
		t.Fatal("hazard hurt its owner's unit")
	}
	m.Session.EndTurn("blue")
	if b1.HP != 7 {
		t.Fatal("hazard ticked on the wrong owner's turn end")
	}
	m.Session.EndTurn("red")
	if b1.HP != 4 {
		t.Fatalf("after second tick hp = %d, want 4", b1.HP)
	}
	if len(m.World.Hazards) != 0 {
		t.Fatalf("zone did not expire: %+v", m.World.Hazards)
	}
	if m.Journal.CountCategory(CatHazard, "tick") != 2 {
		t.Fatal("hazard ticks not journaled")
	}
}

func TestHazardTick_Kills(t *testing.T) {
	weak := unit("b1", "blue", 5, 5)
	weak.HP = 2
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(weak))
	m.World.Hazards = []*HazardZone{{ID: "z", Owner: "red", Center: hex.C(5, 5), Radius: 0, Damage: 3, TurnsLeft: 1}}
	m.Session.EndTurn("red")
	if !weak.Dead || inAny(m.World, weak) {
		t.Fatal("hazard kill did not remove the unit")
	}
	if w, ok := m.World.Winner(); !ok || w != "red" {
		t.Fatalf("winner = %q %v", w, ok)
	}
}
