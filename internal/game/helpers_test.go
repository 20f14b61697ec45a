package game

import (
	"testing"

	"github.com/Garsondee/hexfront/internal/hex"
)

// testArmory returns the fallback weapon plus a rifle and a bow with
// armor and falloff tables.
func testArmory() Armory {
	a := BasicArmory()
	a["rifle"] = &WeaponDef{ID: "rifle", BaseDamage: 10, RangeMin: 1, RangeMax: 2, APCost: 1}
	a["bow"] = &WeaponDef{
		ID: "bow", BaseDamage: 8, RangeMin: 2, RangeMax: 4, APCost: 1,
		ArmorClassMultiplier: map[ArmorClass]float64{ArmorHeavy: 0.5},
		DistanceCurve:        []float64{1, 1, 1, 0.75, 0.5},
	}
	a["cannon"] = &WeaponDef{ID: "cannon", BaseDamage: 12, RangeMin: 1, RangeMax: 3, APCost: 2}
	return a
}

func testSpellbook() Spellbook {
	return Spellbook{
		"firestorm":  {ID: "firestorm", Name: "Firestorm", Kind: AbilityStrike, APCost: 2, Range: 3, Radius: 1, Amount: 4},
		"mend":       {ID: "mend", Name: "Mend", Kind: AbilityHeal, APCost: 1, Range: 2, Radius: 0, Amount: 3},
		"shieldwall": {ID: "shieldwall", Name: "Shield Wall", Kind: AbilityFortify, APCost: 1, Range: 0, Radius: 1, Amount: 2},
		"miasma":     {ID: "miasma", Name: "Miasma", Kind: AbilityHazard, APCost: 1, Range: 4, Radius: 1, Amount: 3, Duration: 2},
	}
}

// unit builds a fully populated unit with 10 hp, 3 mp and 2 ap.
func unit(id, owner string, q, r int, weapons ...string) *Unit {
	if len(weapons) == 0 {
		weapons = []string{"rifle"}
	}
	return &Unit{
		ID: id, Name: id, Owner: owner, Pos: hex.C(q, r),
		HP: 10, MaxHP: 10, MP: 3, MPMax: 3, AP: 2, APMax: 2,
		ArmorClass: ArmorNone, Weapons: weapons,
	}
}

// newTestMatch builds a match between two human participants, red and blue.
func newTestMatch(t *testing.T, opts ...MatchOption) *Match {
	t.Helper()
	base := []MatchOption{
		WithWeapons(testArmory()),
		WithAbilities(testSpellbook()),
		WithParticipant("red", false),
		WithParticipant("blue", false),
	}
	return mustMatch(t, append(base, opts...)...)
}

// newAIMatch builds a match where red is human and blue is played by ChaseAI.
func newAIMatch(t *testing.T, opts ...MatchOption) *Match {
	t.Helper()
	base := []MatchOption{
		WithWeapons(testArmory()),
		WithAbilities(testSpellbook()),
		WithParticipant("red", false),
		WithParticipant("blue", true),
	}
	return mustMatch(t, append(base, opts...)...)
}

func mustMatch(t *testing.T, opts ...MatchOption) *Match {
	t.Helper()
	m, err := NewMatch(opts...)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m
}

// dumpJournal prints the journal to t.Log so it appears in `go test -v` output.
func dumpJournal(t *testing.T, m *Match) {
	t.Helper()
	for _, e := range m.Journal.Entries() {
		t.Log(e.String())
	}
	t.Log(m.Journal.Summary(m.World))
}

// assertInvariants checks the resource clamps and the no-stacking rule.
func assertInvariants(t *testing.T, w *WorldState) {
	t.Helper()
	seen := map[hex.Coord]string{}
	for _, u := range w.allUnits() {
		if u.HP < 0 || u.HP > u.MaxHP || u.MP < 0 || u.MP > u.MPMax || u.AP < 0 || u.AP > u.APMax {
			t.Fatalf("unit %s out of clamps: hp=%d/%d mp=%d/%d ap=%d/%d",
				u.ID, u.HP, u.MaxHP, u.MP, u.MPMax, u.AP, u.APMax)
		}
		if !u.Alive() {
			t.Fatalf("dead unit %s still in a collection", u.ID)
		}
		if other, ok := seen[u.Pos]; ok {
			t.Fatalf("units %s and %s share %v", other, u.ID, u.Pos)
		}
		seen[u.Pos] = u.ID
	}
}
