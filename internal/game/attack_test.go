package game

import (
	"context"
	"testing"
)

func TestDamage_Formula(t *testing.T) {
	a := testArmory()
	cases := []struct {
		name     string
		weapon   string
		def      *Unit
		distance int
		want     int
	}{
		{"rifle point blank", "rifle", &Unit{ArmorClass: ArmorNone}, 1, 10},
		{"rifle into armor", "rifle", &Unit{ArmorClass: ArmorNone, ArmorPoints: 3}, 1, 7},
		{"temp armor counts", "rifle", &Unit{ArmorClass: ArmorNone, ArmorPoints: 3, TempArmorBonus: 2}, 2, 5},
		{"bow vs heavy with falloff", "bow", &Unit{ArmorClass: ArmorHeavy, ArmorPoints: 1}, 3, 2},
		{"bow past curve end", "bow", &Unit{ArmorClass: ArmorHeavy}, 9, 2},
		{"armor swallows hit", "fists", &Unit{ArmorPoints: 5}, 1, 0},
	}
	for _, tc := range cases {
		if got := Damage(a[tc.weapon], tc.def, tc.distance); got != tc.want {
			t.Errorf("%s: damage = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDamage_Floors(t *testing.T) {
	w := &WeaponDef{BaseDamage: 7, ArmorClassMultiplier: map[ArmorClass]float64{ArmorMedium: 0.5}}
	if got := Damage(w, &Unit{ArmorClass: ArmorMedium}, 1); got != 3 {
		t.Fatalf("damage = %d, want floor(3.5) = 3", got)
	}
}

func TestValidate_Reasons(t *testing.T) {
	r := NewAttackResolver(testArmory())
	att := unit("a", "red", 0, 0, "rifle")
	near := unit("b", "blue", 1, 0)
	far := unit("c", "blue", 3, 0)
	ally := unit("d", "red", 0, 1)

	if v := r.Validate(att, near, ""); !v.OK || v.Distance != 1 {
		t.Fatalf("adjacent attack: %+v", v)
	}
	if v := r.Validate(att, far, ""); v.OK || v.Reason != ReasonOutOfRange || v.Distance != 3 {
		t.Fatalf("distance 3: %+v", v)
	}
	if v := r.Validate(att, ally, ""); v.Reason != ReasonInvalidTarget {
		t.Fatalf("ally: %+v", v)
	}
	if v := r.Validate(att, att, ""); v.Reason != ReasonInvalidTarget {
		t.Fatalf("self: %+v", v)
	}
	if v := r.Validate(att, near, "bow"); v.Reason != ReasonNoWeapon {
		t.Fatalf("uncarried weapon: %+v", v)
	}
	ghost := unit("g", "red", 0, 2, "ghost-gun")
	if v := r.Validate(ghost, near, ""); v.Reason != ReasonNoWeapon {
		t.Fatalf("unknown weapon: %+v", v)
	}
	dead := unit("x", "blue", 1, 1)
	dead.Dead = true
	if v := r.Validate(att, dead, ""); v.Reason != ReasonInvalidTarget {
		t.Fatalf("dead target: %+v", v)
	}
}

func TestValidate_DistanceOnRefusals(t *testing.T) {
	r := NewAttackResolver(testArmory())
	att := unit("a", "red", 0, 0, "rifle")
	ally := unit("d", "red", 2, 0)
	near := unit("b", "blue", 1, 0)
	dead := unit("x", "blue", 3, 0)
	dead.Dead = true

	if v := r.Validate(att, ally, ""); v.Reason != ReasonInvalidTarget || v.Distance != 2 {
		t.Fatalf("ally: %+v", v)
	}
	if v := r.Validate(att, dead, ""); v.Reason != ReasonInvalidTarget || v.Distance != 3 {
		t.Fatalf("dead target: %+v", v)
	}
	if v := r.Validate(att, near, "bow"); v.Reason != ReasonNoWeapon || v.Distance != 1 {
		t.Fatalf("uncarried weapon: %+v", v)
	}
	if v := r.Validate(nil, near, ""); v.Reason != ReasonInvalidTarget || v.Distance != 0 {
		t.Fatalf("nil attacker: %+v", v)
	}
}

func TestValidate_Pure(t *testing.T) {
	r := NewAttackResolver(testArmory())
	att := unit("a", "red", 0, 0, "rifle")
	def := unit("b", "blue", 2, 0)
	before := *att
	first := r.Validate(att, def, "")
	second := r.Validate(att, def, "")
	if first != second {
		t.Fatalf("validate not idempotent: %+v vs %+v", first, second)
	}
	out1, _ := r.Resolve(att, def, "")
	out2, _ := r.Resolve(att, def, "")
	if out1 != out2 {
		t.Fatalf("resolve not deterministic: %+v vs %+v", out1, out2)
	}
	if att.AP != before.AP || def.HP != 10 {
		t.Fatal("validate/resolve mutated a unit")
	}
}

// Scenario: a range 1-2 weapon at distance 3 is refused with no AP spent
// and no event produced.
func TestScenario_OutOfRangeSpendsNothing(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0, "rifle")),
		WithUnit(unit("b1", "blue", 3, 0)),
	)
	r1, b1 := m.Unit("r1"), m.Unit("b1")
	res := m.Session.RequestAttack(context.Background(), r1, b1, "rifle")
	if res.OK || res.Reason != ReasonOutOfRange {
		t.Fatalf("result = %+v, want out_of_range", res)
	}
	if r1.AP != 2 {
		t.Fatalf("ap = %d, want 2", r1.AP)
	}
	if b1.HP != 10 || m.Journal.CountCategory(CatCombat, "hit") != 0 {
		t.Fatal("an attack event was applied")
	}
}

func TestRequestAttack_LocalAuthorityApplies(t *testing.T) {
	tough := unit("b1", "blue", 2, 0)
	tough.HP, tough.MaxHP = 25, 25
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0, "rifle")),
		WithUnit(tough),
	)
	r1, b1 := m.Unit("r1"), m.Unit("b1")
	res := m.Session.RequestAttack(context.Background(), r1, b1, "")
	if !res.OK {
		t.Fatalf("attack refused: %+v", res)
	}
	if r1.AP != 1 || !r1.AttackedThisTurn {
		t.Fatalf("ap = %d attacked = %v", r1.AP, r1.AttackedThisTurn)
	}
	if b1.HP != 15 {
		t.Fatalf("hp = %d, want 15", b1.HP)
	}
	if b1.LastHit == nil || b1.LastHit.AttackerID != "r1" || b1.LastHit.WeaponID != "rifle" {
		t.Fatalf("last hit = %+v", b1.LastHit)
	}
}

func TestRequestAttack_NoAP(t *testing.T) {
	m := newTestMatch(t,
		WithUnit(unit("r1", "red", 0, 0, "cannon")),
		WithUnit(unit("b1", "blue", 1, 0)),
	)
	r1 := m.Unit("r1")
	r1.AP = 1
	res := m.Session.RequestAttack(context.Background(), r1, m.Unit("b1"), "")
	if res.Reason != ReasonNoAP {
		t.Fatalf("result = %+v, want no_ap", res)
	}
	if r1.AP != 1 {
		t.Fatalf("ap changed to %d", r1.AP)
	}
}
