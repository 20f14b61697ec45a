package netplay

import (
	"context"
	"fmt"

	"github.com/Garsondee/hexfront/internal/game"
)

// HostService is the combat authority on the host. Local intents (the
// host's own player and its AI) were already charged by the session;
// remote intents are charged here against the host's world.
type HostService struct {
	Transport Transport
	Session   *game.Session
}

// RequestAttack implements game.CombatAuthority for local intents.
func (h *HostService) RequestAttack(_ context.Context, in game.AttackIntent) error {
	ev, v := h.Session.Host().ResolveAttack(in, false)
	if !v.OK {
		return &game.RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	return h.publishAttack(ev)
}

// RequestAbility implements game.CombatAuthority for local intents.
func (h *HostService) RequestAbility(_ context.Context, in game.AbilityIntent) error {
	ev, v := h.Session.Host().ResolveAbility(in, false)
	if !v.OK {
		return &game.RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	return h.publishAbility(ev)
}

// RequestDefend implements game.CombatAuthority for local intents.
func (h *HostService) RequestDefend(_ context.Context, in game.DefendIntent) error {
	ev, v := h.Session.Host().ResolveDefend(in, false)
	if !v.OK {
		return &game.RejectedError{Nonce: in.Nonce, Reason: v.Reason}
	}
	return h.publishDefend(ev)
}

// HandleAttackIntent resolves an intent sent by another participant.
func (h *HostService) HandleAttackIntent(env Envelope) error {
	var in game.AttackIntent
	if err := env.Decode(&in); err != nil {
		return err
	}
	in.From = env.From
	if att := game.ResolveUnitRef(h.Session.World, in.AttackerID); att != nil && att.Owner != env.From {
		return h.reject(env.From, in.Nonce, game.ReasonNotYourTurn)
	}
	ev, v := h.Session.Host().ResolveAttack(in, true)
	if !v.OK {
		return h.reject(env.From, in.Nonce, v.Reason)
	}
	return h.publishAttack(ev)
}

// HandleAbilityIntent resolves an ability intent sent by another
// participant.
func (h *HostService) HandleAbilityIntent(env Envelope) error {
	var in game.AbilityIntent
	if err := env.Decode(&in); err != nil {
		return err
	}
	in.From = env.From
	if c := game.ResolveUnitRef(h.Session.World, in.CasterID); c != nil && c.Owner != env.From {
		return h.reject(env.From, in.Nonce, game.ReasonNotYourTurn)
	}
	ev, v := h.Session.Host().ResolveAbility(in, true)
	if !v.OK {
		return h.reject(env.From, in.Nonce, v.Reason)
	}
	return h.publishAbility(ev)
}

// HandleDefendIntent resolves a defend intent sent by another participant.
func (h *HostService) HandleDefendIntent(env Envelope) error {
	var in game.DefendIntent
	if err := env.Decode(&in); err != nil {
		return err
	}
	in.From = env.From
	if u := game.ResolveUnitRef(h.Session.World, in.UnitID); u != nil && u.Owner != env.From {
		return h.reject(env.From, in.Nonce, game.ReasonNotYourTurn)
	}
	ev, v := h.Session.Host().ResolveDefend(in, true)
	if !v.OK {
		return h.reject(env.From, in.Nonce, v.Reason)
	}
	return h.publishDefend(ev)
}

// SendSnapshot sends the host's world to one peer, or to the relay for
// storage when to is RelayPeer.
func (h *HostService) SendSnapshot(to string) error {
	env, err := NewEnvelope(TypeSnapshot, h.Transport.ID(), game.TakeSnapshot(h.Session.World))
	if err != nil {
		return err
	}
	env.To = to
	return h.Transport.Send(env)
}

// publishAttack applies on the host first, then broadcasts. Events the
// host's own ledger refuses are not sent. Once applied the event stands,
// so a failed broadcast is only journaled.
func (h *HostService) publishAttack(ev game.CombatEvent) error {
	if res := h.Session.ApplyCombatEvent(ev); !res.Applied {
		return fmt.Errorf("host apply %s: %s", ev.NonceOf(), res.Reason)
	}
	h.broadcast(TypeCombatAttack, ev.NonceOf(), ev)
	return nil
}

func (h *HostService) publishAbility(ev game.AbilityEvent) error {
	if res := h.Session.ApplyAbilityEvent(ev); !res.Applied {
		return fmt.Errorf("host apply %s: %s", ev.NonceOf(), res.Reason)
	}
	h.broadcast(TypeAbilityCast, ev.NonceOf(), ev)
	return nil
}

func (h *HostService) publishDefend(ev game.DefendEvent) error {
	if res := h.Session.ApplyDefendEvent(ev); !res.Applied {
		return fmt.Errorf("host apply %s: %s", ev.NonceOf(), res.Reason)
	}
	h.broadcast(TypeUnitDefend, ev.NonceOf(), ev)
	return nil
}

func (h *HostService) broadcast(typ, nonce string, payload any) {
	env, err := NewEnvelope(typ, h.Transport.ID(), payload)
	if err == nil {
		err = h.Transport.Send(env)
	}
	if err != nil {
		h.Session.Journal.Add(h.Session.World.TurnNumber, "", h.Transport.ID(), game.CatNet, "broadcast_failed",
			fmt.Sprintf("%s %s: %v", typ, nonce, err), 0)
	}
}

func (h *HostService) reject(to, nonce string, reason game.Reason) error {
	h.Session.Journal.Add(h.Session.World.TurnNumber, "", to, game.CatNet, "rejected",
		fmt.Sprintf("%s: %s", nonce, reason), 0)
	env, err := NewEnvelope(TypeIntentReject, h.Transport.ID(), Rejection{Nonce: nonce, Reason: reason})
	if err != nil {
		return err
	}
	env.To = to
	return h.Transport.Send(env)
}
