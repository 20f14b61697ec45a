package netplay

import (
	"context"
	"fmt"
	"sync"

	"github.com/Garsondee/hexfront/internal/game"
)

// RemoteHostAuthority sends intents to the host and returns at once. The
// resolved event arrives later through the inbox. The requester has
// already paid AP; a rejection from the host refunds it.
type RemoteHostAuthority struct {
	Transport Transport
	Session   *game.Session

	mu      sync.Mutex
	pending map[string]pendingIntent
}

type pendingIntent struct {
	unitID string
	cost   int
}

// NewRemoteHostAuthority binds an authority to a transport and session.
func NewRemoteHostAuthority(t Transport, s *game.Session) *RemoteHostAuthority {
	return &RemoteHostAuthority{Transport: t, Session: s, pending: make(map[string]pendingIntent)}
}

// RequestAttack implements game.CombatAuthority.
func (a *RemoteHostAuthority) RequestAttack(ctx context.Context, in game.AttackIntent) error {
	cost := 0
	if att := game.ResolveUnitRef(a.Session.World, in.AttackerID); att != nil {
		if w, ok := a.Session.Resolver.Weapon(att, in.WeaponID); ok {
			cost = w.Cost()
		}
	}
	return a.send(ctx, TypeCombatIntent, in, in.Nonce, in.AttackerID, cost)
}

// RequestAbility implements game.CombatAuthority.
func (a *RemoteHostAuthority) RequestAbility(ctx context.Context, in game.AbilityIntent) error {
	cost := 0
	if a.Session.Abilities != nil {
		if def, ok := a.Session.Abilities.Ability(in.AbilityID); ok {
			cost = def.Cost()
		}
	}
	return a.send(ctx, TypeAbilityIntent, in, in.Nonce, in.CasterID, cost)
}

// RequestDefend implements game.CombatAuthority.
func (a *RemoteHostAuthority) RequestDefend(ctx context.Context, in game.DefendIntent) error {
	return a.send(ctx, TypeDefendIntent, in, in.Nonce, in.UnitID, game.DefendAPCost)
}

func (a *RemoteHostAuthority) send(ctx context.Context, typ string, in any, nonce, unitID string, cost int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := NewEnvelope(typ, a.Transport.ID(), in)
	if err != nil {
		return err
	}
	if err := a.Transport.Send(env); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	a.mu.Lock()
	a.pending[nonce] = pendingIntent{unitID: unitID, cost: cost}
	a.mu.Unlock()
	return nil
}

// Settle forgets an intent once its event has arrived.
func (a *RemoteHostAuthority) Settle(nonce string) {
	a.mu.Lock()
	delete(a.pending, nonce)
	a.mu.Unlock()
}

// Reject refunds the AP of a refused intent. It reports whether the nonce
// was one of ours.
func (a *RemoteHostAuthority) Reject(rej Rejection) bool {
	a.mu.Lock()
	p, ok := a.pending[rej.Nonce]
	delete(a.pending, rej.Nonce)
	a.mu.Unlock()
	if !ok {
		return false
	}
	u := game.ResolveUnitRef(a.Session.World, p.unitID)
	game.Refund(u, game.ResourceAP, p.cost)
	a.Session.Journal.Add(a.Session.World.TurnNumber, p.unitID, a.Transport.ID(), game.CatNet, "rejected",
		fmt.Sprintf("%s: %s", rej.Nonce, rej.Reason), float64(p.cost))
	return true
}

// Pending returns the number of intents awaiting the host.
func (a *RemoteHostAuthority) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
