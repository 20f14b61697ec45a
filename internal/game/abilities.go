package game

import (
	"fmt"
	"sort"

	"github.com/Garsondee/hexfront/internal/hex"
)

// AbilityKind selects how an ability affects the units in its area.
type AbilityKind string

const (
	AbilityStrike  AbilityKind = "strike"  // damages enemies in the area
	AbilityHeal    AbilityKind = "heal"    // restores HP to allies
	AbilityFortify AbilityKind = "fortify" // temporary armor for allies
	AbilityHazard  AbilityKind = "hazard"  // places a damage-over-time zone
)

// AbilityDef is static ability reference data.
type AbilityDef struct {
	ID     string      `yaml:"id" json:"id"`
	Name   string      `yaml:"name" json:"name"`
	Kind   AbilityKind `yaml:"kind" json:"kind"`
	APCost int         `yaml:"apCost" json:"apCost"`
	Range  int         `yaml:"range" json:"range"`   // max distance from caster to center
	Radius int         `yaml:"radius" json:"radius"` // area around the center
	Amount int         `yaml:"amount" json:"amount"`
	// Turns a hazard zone lasts.
	Duration int `yaml:"duration" json:"duration,omitempty"`
}

// Cost is the AP spent per cast, at least 1.
func (d *AbilityDef) Cost() int { return max(1, d.APCost) }

// AbilityLookup is the ability registry.
type AbilityLookup interface {
	Ability(id string) (*AbilityDef, bool)
}

// Spellbook is a map-backed AbilityLookup.
type Spellbook map[string]*AbilityDef

// Ability implements AbilityLookup.
func (s Spellbook) Ability(id string) (*AbilityDef, bool) {
	d, ok := s[id]
	return d, ok
}

// IDs returns the registered ability ids, sorted.
func (s Spellbook) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveAbility computes the event for caster using def on center. It is
// pure; the caller spends AP and routes the event to the applier.
func ResolveAbility(w *WorldState, caster *Unit, def *AbilityDef, center hex.Coord, nonce string) (AbilityEvent, Validation) {
	if def == nil {
		return AbilityEvent{}, fail(ReasonUnknownAbility, 0)
	}
	if !caster.Alive() || !w.Tiles.InBounds(center) {
		return AbilityEvent{}, fail(ReasonInvalidTarget, 0)
	}
	d := hex.Distance(caster.Pos, center)
	if d > def.Range {
		return AbilityEvent{}, fail(ReasonOutOfRange, d)
	}

	ev := AbilityEvent{
		Type:      EventAbilityCast,
		CasterID:  UnitRef(caster),
		AbilityID: def.ID,
		Center:    center,
	}
	ev.TurnOwner, ev.TurnNumber = turnStamp(w)
	if nonce != "" {
		ev.Nonce = &nonce
	}

	if def.Kind == AbilityHazard {
		ev.Zone = &HazardZone{
			ID:        fmt.Sprintf("%s-%s-t%d-%d", def.ID, caster.ID, w.TurnNumber, len(w.Hazards)),
			Owner:     caster.Owner,
			Source:    def.ID,
			Center:    center,
			Radius:    def.Radius,
			Damage:    def.Amount,
			TurnsLeft: max(1, def.Duration),
		}
		return ev, Validation{OK: true, Distance: d}
	}

	for _, c := range hex.Within(center, def.Radius) {
		u := w.UnitAt(c)
		if u == nil {
			continue
		}
		ally := u.Owner == caster.Owner
		switch def.Kind {
		case AbilityStrike:
			if !ally {
				ev.Effects = append(ev.Effects, AbilityEffect{UnitID: UnitRef(u), Damage: max(0, def.Amount-u.EffectiveArmor())})
			}
		case AbilityHeal:
			if ally {
				ev.Effects = append(ev.Effects, AbilityEffect{UnitID: UnitRef(u), Heal: def.Amount})
			}
		case AbilityFortify:
			if ally {
				ev.Effects = append(ev.Effects, AbilityEffect{UnitID: UnitRef(u), Armor: def.Amount})
			}
		}
	}
	if len(ev.Effects) == 0 {
		return AbilityEvent{}, fail(ReasonInvalidTarget, d)
	}
	return ev, Validation{OK: true, Distance: d}
}
