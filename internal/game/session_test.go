package game

import (
	"context"
	"errors"
	"testing"

	"github.com/Garsondee/hexfront/internal/hex"
)

type stubAuthority struct {
	err     error
	attacks []AttackIntent
}

func (s *stubAuthority) RequestAttack(_ context.Context, in AttackIntent) error {
	s.attacks = append(s.attacks, in)
	return s.err
}

func (s *stubAuthority) RequestAbility(_ context.Context, _ AbilityIntent) error { return s.err }

func (s *stubAuthority) RequestDefend(_ context.Context, _ DefendIntent) error { return s.err }

func TestSession_NotYourTurn(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 1, 0)),
	)
	b1, r1 := m.Unit("b1"), m.Unit("r1")
	if res := m.Session.RequestAttack(context.Background(), b1, r1, ""); res.Reason != ReasonNotYourTurn {
		t.Fatalf("attack = %+v", res)
	}
	if res := m.Session.Move(b1, hex.C(3, 3)); res.Reason != ReasonNotYourTurn {
		t.Fatalf("move = %+v", res)
	}
	if res := m.Session.Defend(context.Background(), b1); res.Reason != ReasonNotYourTurn {
		t.Fatalf("defend = %+v", res)
	}
	if b1.AP != 2 || b1.MP != 3 || b1.Pos != hex.C(1, 0) {
		t.Fatal("refused actions mutated the unit")
	}
}

func TestSession_MoveOntoOccupiedRefused(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("r2", "red", 2, 0)),
	)
	r1 := m.Unit("r1")
	if res := m.Session.Move(r1, hex.C(2, 0)); res.OK || res.Reason != ReasonNoPath {
		t.Fatalf("move = %+v", res)
	}
	if r1.MP != 3 || r1.Pos != hex.C(0, 0) {
		t.Fatal("refused move mutated the unit")
	}
	assertInvariants(t, m.World)
}

func TestSession_MoveStepMoverGetsCommittedState(t *testing.T) {
	var seenPos hex.Coord
	var seenMP int
	var pending func()
	sm := StepMoverFunc(func(u *Unit, path []hex.Coord, done func()) {
		seenPos, seenMP = u.Pos, u.MP
		pending = done
	})
	m := newTestMatch(t, WithStepMover(sm), WithUnit(unit("r1", "red", 0, 0)))
	r1 := m.Unit("r1")
	var synced []UnitSync
	m.Session.OnMoveCommitted = func(s UnitSync) { synced = append(synced, s) }

	res := m.Session.Move(r1, hex.C(2, 0))
	if !res.OK {
		t.Fatalf("move = %+v", res)
	}
	if seenPos != hex.C(2, 0) || seenMP != 1 {
		t.Fatalf("animation saw pos %v mp %d; commit should precede it", seenPos, seenMP)
	}
	if pending == nil {
		t.Fatal("step mover not called")
	}
	pending()
	if len(synced) != 1 || synced[0].UnitID != "r1" || synced[0].MP != 1 {
		t.Fatalf("sync = %+v", synced)
	}
}

func TestSession_Defend(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 5, 5)))
	r1 := m.Unit("r1")
	if res := m.Session.Defend(context.Background(), r1); !res.OK {
		t.Fatalf("defend = %+v", res)
	}
	if r1.AP != 1 || r1.TempArmorBonus != DefendArmorBonus || !r1.Defending {
		t.Fatalf("after defend: %+v", r1)
	}
	if res := m.Session.Defend(context.Background(), r1); res.Reason != ReasonInvalidTarget {
		t.Fatalf("second defend = %+v", res)
	}
	m.Session.EndTurn("red")
	m.Session.EndTurn("blue")
	if r1.Defending || r1.TempArmorBonus != 0 {
		t.Fatal("defend survived into the next own turn")
	}
}

func TestSession_DefendRefusedByAuthorityRefundsAP(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 5, 5)))
	m.Session.Authority = &stubAuthority{err: &RejectedError{Reason: ReasonNotYourTurn}}
	r1 := m.Unit("r1")
	if res := m.Session.Defend(context.Background(), r1); res.OK || res.Reason != ReasonNotYourTurn {
		t.Fatalf("defend = %+v", res)
	}
	if r1.AP != 2 || r1.Defending || r1.TempArmorBonus != 0 {
		t.Fatalf("refused defend left ap=%d defending=%v armor=%d", r1.AP, r1.Defending, r1.TempArmorBonus)
	}
}

func TestSession_DefendEventAppliedOnce(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 5, 5)))
	b1 := m.Unit("b1")
	ev := NewDefendEvent(m.World, b1, "d-1")
	*ev.AP = 1
	if res := m.Session.ApplyDefendEvent(ev); !res.Applied {
		t.Fatalf("apply = %+v", res)
	}
	if res := m.Session.ApplyDefendEvent(ev); res.Reason != ReasonDuplicate {
		t.Fatalf("replay = %+v", res)
	}
	if !b1.Defending || b1.TempArmorBonus != DefendArmorBonus || b1.AP != 1 {
		t.Fatalf("b1 defending=%v armor=%d ap=%d", b1.Defending, b1.TempArmorBonus, b1.AP)
	}
	if m.Journal.CountCategory(CatCombat, "defend") != 1 {
		t.Fatal("defend not journaled once")
	}
}

func TestSession_OwnUnitsKeepLocalAP(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 1, 0)))
	ap := 0
	ev := combatEvent("r1", "b1", 1)
	ev.AttackerAP = &ap
	m.Session.ApplyCombatEvent(ev)
	if r1 := m.Unit("r1"); r1.AP != 2 || !r1.AttackedThisTurn {
		t.Fatalf("local attacker ap=%d attacked=%v", r1.AP, r1.AttackedThisTurn)
	}

	ev = combatEvent("b1", "r1", 1)
	ev.AttackerAP = &ap
	m.Session.ApplyCombatEvent(ev)
	if b1 := m.Unit("b1"); b1.AP != 0 {
		t.Fatalf("remote attacker ap = %d, want the authority's 0", b1.AP)
	}
}

func TestSession_NonceLedger(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 1, 0)))
	ev := combatEvent("r1", "b1", 3)
	nonce := "n-1"
	ev.Nonce = &nonce

	if res := m.Session.ApplyCombatEvent(ev); !res.Applied {
		t.Fatalf("first apply: %+v", res)
	}
	if res := m.Session.ApplyCombatEvent(ev); res.Applied || res.Reason != ReasonDuplicate {
		t.Fatalf("replay: %+v", res)
	}
	if hp := m.Unit("b1").HP; hp != 7 {
		t.Fatalf("hp = %d, want 7 (applied once)", hp)
	}
}

func TestSession_AuthorityFailureRefundsAP(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 1, 0)))
	stub := &stubAuthority{err: errors.New("socket closed")}
	m.Session.Authority = stub
	r1 := m.Unit("r1")

	res := m.Session.RequestAttack(context.Background(), r1, m.Unit("b1"), "")
	if res.OK || res.Err == nil {
		t.Fatalf("result = %+v", res)
	}
	if r1.AP != 2 || r1.AttackedThisTurn {
		t.Fatal("AP not refunded after transport failure")
	}
	if len(stub.attacks) != 1 || stub.attacks[0].Nonce == "" || stub.attacks[0].From != "red" {
		t.Fatalf("intent = %+v", stub.attacks)
	}

	stub.err = &RejectedError{Reason: ReasonOutOfRange}
	res = m.Session.RequestAttack(context.Background(), r1, m.Unit("b1"), "")
	if res.Reason != ReasonOutOfRange || res.Err != nil {
		t.Fatalf("rejected = %+v", res)
	}
}

func TestSession_PendingRemoteAttackSpendsAP(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 1, 0)))
	m.Session.Authority = &stubAuthority{}
	r1, b1 := m.Unit("r1"), m.Unit("b1")
	if res := m.Session.RequestAttack(context.Background(), r1, b1, ""); !res.OK {
		t.Fatalf("result = %+v", res)
	}
	if r1.AP != 1 {
		t.Fatal("AP must be spent when the intent is sent")
	}
	if b1.HP != 10 {
		t.Fatal("requester applied damage itself instead of waiting for the host")
	}
}

func TestSession_CastAbility(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0)),
		WithUnit(unit("b1", "blue", 2, 0)),
		WithUnit(unit("b2", "blue", 3, 0)),
		WithUnit(unit("b3", "blue", 9, 7)),
	)
	r1 := m.Unit("r1")
	if res := m.Session.CastAbility(context.Background(), r1, "nope", hex.C(2, 0)); res.Reason != ReasonUnknownAbility {
		t.Fatalf("unknown ability = %+v", res)
	}
	if res := m.Session.CastAbility(context.Background(), r1, "firestorm", hex.C(7, 0)); res.Reason != ReasonOutOfRange {
		t.Fatalf("far cast = %+v", res)
	}
	res := m.Session.CastAbility(context.Background(), r1, "firestorm", hex.C(2, 0))
	if !res.OK {
		t.Fatalf("cast = %+v", res)
	}
	if r1.AP != 0 {
		t.Fatalf("ap = %d, want 0", r1.AP)
	}
	if m.Unit("b1").HP != 6 || m.Unit("b2").HP != 6 || m.Unit("b3").HP != 10 {
		t.Fatal("strike hit the wrong units")
	}
}

func TestSession_HazardAbilityPlacesZone(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 3, 0)))
	res := m.Session.CastAbility(context.Background(), m.Unit("r1"), "miasma", hex.C(3, 0))
	if !res.OK {
		t.Fatalf("cast = %+v", res)
	}
	if len(m.World.Hazards) != 1 || m.World.Hazards[0].Owner != "red" {
		t.Fatalf("hazards = %+v", m.World.Hazards)
	}
	m.Session.EndTurn("red")
	if m.Unit("b1").HP != 7 {
		t.Fatalf("hp = %d, want 7 after one tick", m.Unit("b1").HP)
	}
}

func TestSession_TargetingCancelCommitsNothing(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 1, 0)))
	r1, b1 := m.Unit("r1"), m.Unit("b1")
	if !m.Session.BeginAttackTargeting(r1) {
		t.Fatal("targeting refused")
	}
	hl := m.Session.Highlights()
	if len(hl) != 1 || hl[0] != b1.Pos {
		t.Fatalf("highlights = %v", hl)
	}
	m.Session.CancelTargeting()
	if m.Session.Targeting.Active() || r1.AP != 2 || b1.HP != 10 {
		t.Fatal("cancel committed something")
	}

	m.Session.BeginAttackTargeting(r1)
	if res := m.Session.ConfirmTarget(context.Background(), hex.C(6, 6)); res.OK {
		t.Fatal("click off the highlights acted")
	}
	if m.Session.Targeting.Active() || r1.AP != 2 {
		t.Fatal("off-highlight click did not cancel cleanly")
	}

	m.Session.BeginAttackTargeting(r1)
	if res := m.Session.ConfirmTarget(context.Background(), b1.Pos); !res.OK {
		t.Fatalf("confirm = %+v", res)
	}
	if b1.HP != 0 || !b1.Dead {
		t.Fatalf("rifle should kill a 10 hp target, hp=%d", b1.HP)
	}
}

func TestSession_ApplyUnitSync(t *testing.T) {
	m := newTestMatch(t, WithUnit(unit("r1", "red", 0, 0)), WithUnit(unit("b1", "blue", 4, 4)))
	ok := m.Session.ApplyUnitSync(UnitSync{UnitID: "b1", Path: []hex.Coord{hex.C(4, 4), hex.C(5, 4)}, MP: 2})
	if !ok || m.Unit("b1").Pos != hex.C(5, 4) || m.Unit("b1").MP != 2 {
		t.Fatal("sync not applied")
	}
	if m.Session.ApplyUnitSync(UnitSync{UnitID: "b1", Path: []hex.Coord{hex.C(0, 0)}}) {
		t.Fatal("sync onto an occupied hex applied")
	}
	if m.Session.ApplyUnitSync(UnitSync{UnitID: "zz", Path: []hex.Coord{hex.C(1, 1)}}) {
		t.Fatal("sync for unknown unit applied")
	}
}

// AI against AI over many rounds must never stack units or break clamps.
func TestScenario_AIBattleKeepsInvariants(t *testing.T) {
	opts := []MatchOption{
		WithWeapons(testArmory()),
		WithParticipant("red", true),
		WithParticipant("blue", true),
		WithGrid(12, 10),
		WithSeed(5),
		WithScatteredTerrain(25, 20),
	}
	for i := 0; i < 4; i++ {
		opts = append(opts,
			WithUnit(unit("r"+string(rune('a'+i)), "red", 0, i*2, "rifle")),
			WithUnit(unit("b"+string(rune('a'+i)), "blue", 11, i*2+1, "bow", "fists")),
		)
	}
	m := mustMatch(t, opts...)
	m.Start()
	assertInvariants(t, m.World)
	for round := 0; round < 30; round++ {
		m.RunRounds(1)
		assertInvariants(t, m.World)
		if _, over := m.World.Winner(); over {
			break
		}
	}
	if m.Journal.CountCategory(CatCombat, "hit") == 0 {
		dumpJournal(t, m)
		t.Fatal("no combat happened in 30 rounds")
	}
}
