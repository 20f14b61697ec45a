package game

import (
	"context"
	"fmt"

	"github.com/Garsondee/hexfront/internal/hex"
)

// AttackIntent asks the authority to resolve an attack.
type AttackIntent struct {
	From       string `json:"from"` // requesting participant
	AttackerID string `json:"attackerId"`
	DefenderID string `json:"defenderId"`
	WeaponID   string `json:"weaponId"`
	Nonce      string `json:"nonce"`
}

// AbilityIntent asks the authority to resolve an ability cast.
type AbilityIntent struct {
	From      string    `json:"from"`
	CasterID  string    `json:"casterId"`
	AbilityID string    `json:"abilityId"`
	Center    hex.Coord `json:"center"`
	Nonce     string    `json:"nonce"`
}

// DefendIntent asks the authority to put a unit on guard.
type DefendIntent struct {
	From   string `json:"from"`
	UnitID string `json:"unitId"`
	Nonce  string `json:"nonce"`
}

// RejectedError is returned when the authority refuses an intent.
type RejectedError struct {
	Nonce  string
	Reason Reason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("intent %s rejected: %s", e.Nonce, e.Reason)
}

// CombatAuthority is the single place combat math runs for a session. It is
// chosen once when the session starts.
type CombatAuthority interface {
	RequestAttack(ctx context.Context, in AttackIntent) error
	RequestAbility(ctx context.Context, in AbilityIntent) error
	RequestDefend(ctx context.Context, in DefendIntent) error
}

// EventSink receives resolved events for application.
type EventSink interface {
	ApplyCombatEvent(ev CombatEvent) ApplyResult
	ApplyAbilityEvent(ev AbilityEvent) ApplyResult
	ApplyDefendEvent(ev DefendEvent) ApplyResult
}

// Host resolves intents against the host's world. Only the host ever runs
// it, which is what keeps every participant agreeing on outcomes.
type Host struct {
	World     *WorldState
	Resolver  *AttackResolver
	Abilities AbilityLookup
}

// ResolveAttack validates and resolves an attack intent. When charge is set
// the host also checks and deducts the attacker's AP on its own world; the
// requester has already done so on its world otherwise.
func (h *Host) ResolveAttack(in AttackIntent, charge bool) (CombatEvent, Validation) {
	att := ResolveUnitRef(h.World, in.AttackerID)
	def := ResolveUnitRef(h.World, in.DefenderID)
	if att == nil || def == nil {
		return CombatEvent{}, fail(ReasonInvalidTarget, 0)
	}
	if att.Owner != h.World.TurnOwner {
		return CombatEvent{}, fail(ReasonNotYourTurn, 0)
	}
	out, v := h.Resolver.Resolve(att, def, in.WeaponID)
	if !v.OK {
		return CombatEvent{}, v
	}
	if charge {
		w, _ := h.Resolver.Weapon(att, in.WeaponID)
		if !CanSpend(att, ResourceAP, w.Cost()) {
			return CombatEvent{}, fail(ReasonNoAP, v.Distance)
		}
		Spend(att, ResourceAP, w.Cost())
		att.AttackedThisTurn = true
	}
	return NewCombatEvent(h.World, att, def, out, in.Nonce), v
}

// ResolveAbility validates and resolves an ability intent.
func (h *Host) ResolveAbility(in AbilityIntent, charge bool) (AbilityEvent, Validation) {
	caster := ResolveUnitRef(h.World, in.CasterID)
	if caster == nil {
		return AbilityEvent{}, fail(ReasonInvalidTarget, 0)
	}
	if caster.Owner != h.World.TurnOwner {
		return AbilityEvent{}, fail(ReasonNotYourTurn, 0)
	}
	var def *AbilityDef
	if h.Abilities != nil {
		def, _ = h.Abilities.Ability(in.AbilityID)
	}
	ev, v := ResolveAbility(h.World, caster, def, in.Center, in.Nonce)
	if !v.OK {
		return AbilityEvent{}, v
	}
	if charge {
		if !CanSpend(caster, ResourceAP, def.Cost()) {
			return AbilityEvent{}, fail(ReasonNoAP, v.Distance)
		}
		Spend(caster, ResourceAP, def.Cost())
	}
	ev.CasterAP = intPtr(caster.AP)
	return ev, v
}

// ResolveDefend validates a defend intent.
func (h *Host) ResolveDefend(in DefendIntent, charge bool) (DefendEvent, Validation) {
	u := ResolveUnitRef(h.World, in.UnitID)
	if u == nil {
		return DefendEvent{}, fail(ReasonInvalidTarget, 0)
	}
	if u.Owner != h.World.TurnOwner {
		return DefendEvent{}, fail(ReasonNotYourTurn, 0)
	}
	if !u.Alive() || u.Defending {
		return DefendEvent{}, fail(ReasonInvalidTarget, 0)
	}
	if charge {
		if !CanSpend(u, ResourceAP, DefendAPCost) {
			return DefendEvent{}, fail(ReasonNoAP, 0)
		}
		Spend(u, ResourceAP, DefendAPCost)
	}
	return NewDefendEvent(h.World, u, in.Nonce), Validation{OK: true}
}

// LocalAuthority resolves and applies in-process. It trusts the local
// client completely and is meant for single-player and development.
type LocalAuthority struct {
	Host *Host
	Sink EventSink
}

// RequestAttack implements CombatAuthority.
func (a *LocalAuthority) RequestAttack(_ context.Context, in AttackIntent) error {
	ev, v := a.Host.ResolveAttack(in, false)
	if !v.OK {
		return &RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	a.Sink.ApplyCombatEvent(ev)
	return nil
}

// RequestAbility implements CombatAuthority.
func (a *LocalAuthority) RequestAbility(_ context.Context, in AbilityIntent) error {
	ev, v := a.Host.ResolveAbility(in, false)
	if !v.OK {
		return &RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	a.Sink.ApplyAbilityEvent(ev)
	return nil
}

// RequestDefend implements CombatAuthority.
func (a *LocalAuthority) RequestDefend(_ context.Context, in DefendIntent) error {
	ev, v := a.Host.ResolveDefend(in, false)
	if !v.OK {
		return &RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	a.Sink.ApplyDefendEvent(ev)
	return nil
}
