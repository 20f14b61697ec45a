package game

import (
	"fmt"

	"github.com/Garsondee/hexfront/internal/hex"
)

// MoverKind selects which terrain a unit may enter.
type MoverKind uint8

const (
	MoverLand  MoverKind = iota // blocked by water and mountains
	MoverNaval                  // only moves on water
)

func (m MoverKind) String() string {
	if m == MoverNaval {
		return "naval"
	}
	return "land"
}

// ArmorClass keys a weapon's armor multiplier table.
type ArmorClass string

const (
	ArmorNone   ArmorClass = "none"
	ArmorLight  ArmorClass = "light"
	ArmorMedium ArmorClass = "medium"
	ArmorHeavy  ArmorClass = "heavy"
)

// HitStamp records who last damaged a unit. Presentation and debugging only.
type HitStamp struct {
	AttackerID string `json:"attackerId"`
	WeaponID   string `json:"weaponId"`
	Damage     int    `json:"damage"`
	Turn       int    `json:"turn"`
}

// Unit is the canonical unit record. Heterogeneous inputs are converted to
// this shape once, at ingestion (see DecodeUnitRecord).
type Unit struct {
	ID string `json:"id"`
	// Alternate identities carried by units that arrived from peers.
	// Only consulted when resolving references in incoming events.
	UnitID string `json:"unitId,omitempty"`
	UUID   string `json:"uuid,omitempty"`
	NetID  string `json:"netId,omitempty"`

	Name  string    `json:"name"`
	Owner string    `json:"owner"`
	Pos   hex.Coord `json:"pos"`
	Mover MoverKind `json:"mover"`

	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	MP    int `json:"mp"`
	MPMax int `json:"mpMax"`
	AP    int `json:"ap"`
	APMax int `json:"apMax"`

	ArmorPoints    int        `json:"armorPoints"`
	ArmorClass     ArmorClass `json:"armorClass"`
	TempArmorBonus int        `json:"tempArmorBonus"`

	Weapons      []string `json:"weapons"`
	ActiveWeapon int      `json:"activeWeapon"`

	AIControlled bool `json:"ai,omitempty"`
	Dead         bool `json:"dead,omitempty"`

	// Per-turn status, cleared by ResetForNewTurn.
	Defending        bool `json:"defending,omitempty"`
	AttackedThisTurn bool `json:"attackedThisTurn,omitempty"`

	LastHit *HitStamp `json:"lastHit,omitempty"`
}

// Alive reports whether the unit still takes part in play.
func (u *Unit) Alive() bool { return u != nil && !u.Dead && u.HP > 0 }

// ActiveWeaponID returns the id of the selected weapon, or "" if none.
func (u *Unit) ActiveWeaponID() string {
	if u.ActiveWeapon < 0 || u.ActiveWeapon >= len(u.Weapons) {
		return ""
	}
	return u.Weapons[u.ActiveWeapon]
}

// CycleWeapon selects the next weapon in the unit's list.
func (u *Unit) CycleWeapon() {
	if len(u.Weapons) == 0 {
		return
	}
	u.ActiveWeapon = (u.ActiveWeapon + 1) % len(u.Weapons)
}

// Label is the derived name@q,r identity, the last link of the
// identity fallback chain.
func (u *Unit) Label() string {
	return fmt.Sprintf("%s@%d,%d", u.Name, u.Pos.Q, u.Pos.R)
}

// EffectiveArmor is the flat damage reduction applied against hits.
func (u *Unit) EffectiveArmor() int {
	return u.ArmorPoints + u.TempArmorBonus
}

// clone returns a deep copy.
func (u *Unit) clone() *Unit {
	cp := *u
	cp.Weapons = append([]string(nil), u.Weapons...)
	if u.LastHit != nil {
		lh := *u.LastHit
		cp.LastHit = &lh
	}
	return &cp
}
