package game

import (
	"math"

	"github.com/Garsondee/hexfront/internal/hex"
)

// Reason tags why an action was refused. The values are stable wire strings.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNoAP           Reason = "no_ap"
	ReasonNoMP           Reason = "no_mp"
	ReasonNoWeapon       Reason = "no_weapon"
	ReasonOutOfRange     Reason = "out_of_range"
	ReasonInvalidTarget  Reason = "invalid_target"
	ReasonNoPath         Reason = "no_path"
	ReasonNotYourTurn    Reason = "not_your_turn"
	ReasonUnknownAbility Reason = "unknown_ability"
	ReasonUnknownUnit    Reason = "unknown_unit"
	ReasonDuplicate      Reason = "duplicate"
)

// Validation is the tagged result of checking an action without performing it.
type Validation struct {
	OK       bool   `json:"ok"`
	Reason   Reason `json:"reason,omitempty"`
	Distance int    `json:"distance"`
}

func fail(r Reason, distance int) Validation {
	return Validation{OK: false, Reason: r, Distance: distance}
}

// WeaponDef is static weapon reference data.
type WeaponDef struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	BaseDamage float64 `yaml:"baseDamage" json:"baseDamage"`
	RangeMin   int     `yaml:"rangeMin" json:"rangeMin"`
	RangeMax   int     `yaml:"rangeMax" json:"rangeMax"`
	APCost     int     `yaml:"apCost" json:"apCost"`

	// ArmorClassMultiplier scales damage by the defender's armor class.
	// Classes missing from the table use 1.
	ArmorClassMultiplier map[ArmorClass]float64 `yaml:"armorClassMultiplier" json:"armorClassMultiplier,omitempty"`

	// DistanceCurve is indexed by hex distance. Distances past the end use
	// the last entry; an empty curve means no falloff.
	DistanceCurve []float64 `yaml:"distanceCurve" json:"distanceCurve,omitempty"`
}

// Multiplier returns the armor-class factor for ac.
func (w *WeaponDef) Multiplier(ac ArmorClass) float64 {
	if m, ok := w.ArmorClassMultiplier[ac]; ok {
		return m
	}
	return 1
}

// Falloff returns the distance-curve factor at distance d.
func (w *WeaponDef) Falloff(d int) float64 {
	if len(w.DistanceCurve) == 0 {
		return 1
	}
	if d < 0 {
		d = 0
	}
	if d >= len(w.DistanceCurve) {
		return w.DistanceCurve[len(w.DistanceCurve)-1]
	}
	return w.DistanceCurve[d]
}

// Cost is the AP spent per attack, at least 1.
func (w *WeaponDef) Cost() int { return max(1, w.APCost) }

// WeaponLookup resolves weapon ids to definitions.
type WeaponLookup interface {
	Weapon(id string) (*WeaponDef, bool)
}

// Armory is a map-backed WeaponLookup.
type Armory map[string]*WeaponDef

// Weapon implements WeaponLookup.
func (a Armory) Weapon(id string) (*WeaponDef, bool) {
	w, ok := a[id]
	return w, ok
}

// AttackOutcome is the resolved result of one attack.
type AttackOutcome struct {
	WeaponID string
	Damage   int
	Distance int
}

// AttackResolver validates attacks and computes damage. Both operations are
// pure: nothing on either unit is touched.
type AttackResolver struct {
	Weapons WeaponLookup
}

// NewAttackResolver wraps a weapon catalogue.
func NewAttackResolver(weapons WeaponLookup) *AttackResolver {
	return &AttackResolver{Weapons: weapons}
}

// Validate checks whether att may fire weaponID at def. An empty weaponID
// means the attacker's active weapon. Checks run in order: target sanity,
// weapon, range. Every result carries the distance when both units exist.
func (r *AttackResolver) Validate(att, def *Unit, weaponID string) Validation {
	d := 0
	if att != nil && def != nil {
		d = hex.Distance(att.Pos, def.Pos)
	}
	if !att.Alive() || !def.Alive() || att == def || att.Owner == def.Owner {
		return fail(ReasonInvalidTarget, d)
	}
	w, ok := r.weaponFor(att, weaponID)
	if !ok {
		return fail(ReasonNoWeapon, d)
	}
	if d < w.RangeMin || d > w.RangeMax {
		return fail(ReasonOutOfRange, d)
	}
	return Validation{OK: true, Distance: d}
}

// Resolve validates and, on success, computes the attack's damage.
func (r *AttackResolver) Resolve(att, def *Unit, weaponID string) (AttackOutcome, Validation) {
	v := r.Validate(att, def, weaponID)
	if !v.OK {
		return AttackOutcome{}, v
	}
	w, _ := r.weaponFor(att, weaponID)
	return AttackOutcome{
		WeaponID: w.ID,
		Damage:   Damage(w, def, v.Distance),
		Distance: v.Distance,
	}, v
}

// Weapon returns the definition att would use for weaponID.
func (r *AttackResolver) Weapon(att *Unit, weaponID string) (*WeaponDef, bool) {
	return r.weaponFor(att, weaponID)
}

func (r *AttackResolver) weaponFor(att *Unit, weaponID string) (*WeaponDef, bool) {
	if weaponID == "" {
		weaponID = att.ActiveWeaponID()
	}
	if weaponID == "" || r.Weapons == nil {
		return nil, false
	}
	carried := false
	for _, id := range att.Weapons {
		if id == weaponID {
			carried = true
			break
		}
	}
	if !carried {
		return nil, false
	}
	return r.Weapons.Weapon(weaponID)
}

// Damage computes base * armor-class factor * falloff, minus the defender's
// flat armor, floored and clamped at zero.
func Damage(w *WeaponDef, def *Unit, distance int) int {
	raw := w.BaseDamage * w.Multiplier(def.ArmorClass) * w.Falloff(distance)
	dmg := int(math.Floor(raw - float64(def.EffectiveArmor())))
	return max(0, dmg)
}
