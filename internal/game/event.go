package game

import (
	"github.com/google/uuid"

	"github.com/Garsondee/hexfront/internal/hex"
)

// Event type tags carried on the wire.
const (
	EventCombatAttack = "combat:attack"
	EventAbilityCast  = "ability:cast"
	EventUnitDefend   = "combat:defend"
)

// CombatEvent is an immutable, fully resolved attack. Damage and Distance
// were computed by the authority and are applied verbatim.
//
// Applying the same event twice applies the damage twice; callers dedupe
// on Nonce.
type CombatEvent struct {
	Type       string  `json:"type"`
	AttackerID string  `json:"attackerId"`
	DefenderID string  `json:"defenderId"`
	WeaponID   string  `json:"weaponId"`
	Damage     int     `json:"damage"`
	Distance   int     `json:"distance"`
	AttackerAP *int    `json:"attackerAp,omitempty"` // attacker AP after paying
	TurnOwner  *string `json:"turnOwner"`
	TurnNumber *int    `json:"turnNumber"`
	Nonce      *string `json:"nonce"`
}

// AbilityEffect is the change an ability makes to one unit.
type AbilityEffect struct {
	UnitID string `json:"unitId"`
	Damage int    `json:"damage,omitempty"`
	Heal   int    `json:"heal,omitempty"`
	Armor  int    `json:"armor,omitempty"`
}

// AbilityEvent is the resolved form of an ability cast.
type AbilityEvent struct {
	Type       string          `json:"type"`
	CasterID   string          `json:"casterId"`
	AbilityID  string          `json:"abilityId"`
	Center     hex.Coord       `json:"center"`
	Effects    []AbilityEffect `json:"effects"`
	Zone       *HazardZone     `json:"zone,omitempty"`
	CasterAP   *int            `json:"casterAp,omitempty"`
	TurnOwner  *string         `json:"turnOwner"`
	TurnNumber *int            `json:"turnNumber"`
	Nonce      *string         `json:"nonce"`
}

// DefendEvent puts a unit on guard until its owner's next turn.
type DefendEvent struct {
	Type       string  `json:"type"`
	UnitID     string  `json:"unitId"`
	Armor      int     `json:"armor"`
	AP         *int    `json:"ap,omitempty"`
	TurnOwner  *string `json:"turnOwner"`
	TurnNumber *int    `json:"turnNumber"`
	Nonce      *string `json:"nonce"`
}

// NewNonce returns a fresh random nonce for intents and events.
func NewNonce() string { return uuid.NewString() }

// NewCombatEvent stamps an outcome with the world's turn and the nonce.
func NewCombatEvent(w *WorldState, att, def *Unit, out AttackOutcome, nonce string) CombatEvent {
	ev := CombatEvent{
		Type:       EventCombatAttack,
		AttackerID: UnitRef(att),
		DefenderID: UnitRef(def),
		WeaponID:   out.WeaponID,
		Damage:     out.Damage,
		Distance:   out.Distance,
		AttackerAP: intPtr(att.AP),
	}
	ev.TurnOwner, ev.TurnNumber = turnStamp(w)
	if nonce != "" {
		ev.Nonce = &nonce
	}
	return ev
}

// NewDefendEvent stamps a guard on u, whose AP has already been paid.
func NewDefendEvent(w *WorldState, u *Unit, nonce string) DefendEvent {
	ev := DefendEvent{
		Type:   EventUnitDefend,
		UnitID: UnitRef(u),
		Armor:  DefendArmorBonus,
		AP:     intPtr(u.AP),
	}
	ev.TurnOwner, ev.TurnNumber = turnStamp(w)
	if nonce != "" {
		ev.Nonce = &nonce
	}
	return ev
}

// NonceOf returns the event nonce or "".
func (ev CombatEvent) NonceOf() string { return deref(ev.Nonce) }

// NonceOf returns the event nonce or "".
func (ev AbilityEvent) NonceOf() string { return deref(ev.Nonce) }

// NonceOf returns the event nonce or "".
func (ev DefendEvent) NonceOf() string { return deref(ev.Nonce) }

func turnStamp(w *WorldState) (*string, *int) {
	if w == nil || w.TurnOwner == "" {
		return nil, nil
	}
	owner, n := w.TurnOwner, w.TurnNumber
	return &owner, &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(n int) *int { return &n }
