package netplay

import (
	"context"
	"fmt"

	"github.com/Garsondee/hexfront/internal/game"
)

// Peer binds a session to a transport. Handle, Drain and Next must be
// called from the goroutine that owns the session.
type Peer struct {
	Session   *game.Session
	Transport Transport
	IsHost    bool

	host      *HostService
	remote    *RemoteHostAuthority
	replaying bool
	backlog   []Envelope
}

// Attach selects the session's combat authority and hooks its moves and
// turn changes onto the transport. On non-host peers the AI is switched
// off; AI participants are played by the host.
func Attach(s *game.Session, t Transport, isHost bool) *Peer {
	p := &Peer{Session: s, Transport: t, IsHost: isHost}
	if isHost {
		p.host = &HostService{Transport: t, Session: s}
		s.Authority = p.host
	} else {
		p.remote = NewRemoteHostAuthority(t, s)
		s.Authority = p.remote
		s.Scheduler.AI = nil
	}

	prevMove := s.OnMoveCommitted
	s.OnMoveCommitted = func(sync game.UnitSync) {
		if prevMove != nil {
			prevMove(sync)
		}
		p.send(TypeUnitSync, sync)
	}
	prevTurn := s.Scheduler.OnTurnStart
	s.Scheduler.OnTurnStart = func(owner string, turn int) {
		if prevTurn != nil {
			prevTurn(owner, turn)
		}
		p.turnStarted(owner, turn)
	}
	return p
}

// Host returns the host service, or nil on other peers.
func (p *Peer) Host() *HostService { return p.host }

// Remote returns the remote authority, or nil on the host.
func (p *Peer) Remote() *RemoteHostAuthority { return p.remote }

// turnStarted announces a hand-off made on this peer. Hand-offs replayed
// from another peer are not echoed, except by the host, which relays them
// to anyone who has not seen them yet.
func (p *Peer) turnStarted(owner string, turn int) {
	if p.replaying && !p.IsHost {
		return
	}
	p.send(TypeTurnEnd, TurnEnd{Ending: previousOwner(p.Session.World, owner), Next: owner, Turn: turn})
	if p.IsHost {
		if err := p.host.SendSnapshot(RelayPeer); err != nil {
			p.journal("snapshot_failed", err.Error())
		}
	}
}

func previousOwner(w *game.WorldState, owner string) string {
	n := len(w.Rotation)
	for i, part := range w.Rotation {
		if part.ID == owner {
			return w.Rotation[(i+n-1)%n].ID
		}
	}
	return ""
}

// Drain handles every envelope already queued without blocking. It
// returns the number handled, and ErrClosed once the inbox is closed.
func (p *Peer) Drain() (int, error) {
	n := p.retryBacklog()
	for {
		select {
		case env, ok := <-p.Transport.Inbox():
			if !ok {
				return n, ErrClosed
			}
			p.dispatch(env)
			n++
		default:
			return n, nil
		}
	}
}

// Next blocks for one envelope and handles it.
func (p *Peer) Next(ctx context.Context) (Envelope, error) {
	select {
	case env, ok := <-p.Transport.Inbox():
		if !ok {
			return Envelope{}, ErrClosed
		}
		p.dispatch(env)
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (p *Peer) dispatch(env Envelope) {
	if err := p.Handle(env); err != nil {
		p.journal("error", err.Error())
	}
}

func (p *Peer) retryBacklog() int {
	if len(p.backlog) == 0 || p.Session.Scheduler.Locked() {
		return 0
	}
	queued := p.backlog
	p.backlog = nil
	for _, env := range queued {
		p.dispatch(env)
	}
	return len(queued)
}

// Handle applies one envelope to the session.
func (p *Peer) Handle(env Envelope) error {
	s := p.Session
	switch env.Type {
	case TypeCombatIntent:
		if p.host == nil {
			return nil
		}
		return p.host.HandleAttackIntent(env)

	case TypeAbilityIntent:
		if p.host == nil {
			return nil
		}
		return p.host.HandleAbilityIntent(env)

	case TypeDefendIntent:
		if p.host == nil {
			return nil
		}
		return p.host.HandleDefendIntent(env)

	case TypeCombatAttack:
		var ev game.CombatEvent
		if err := env.Decode(&ev); err != nil {
			return err
		}
		if p.remote != nil {
			p.remote.Settle(ev.NonceOf())
		}
		s.ApplyCombatEvent(ev)

	case TypeAbilityCast:
		var ev game.AbilityEvent
		if err := env.Decode(&ev); err != nil {
			return err
		}
		if p.remote != nil {
			p.remote.Settle(ev.NonceOf())
		}
		s.ApplyAbilityEvent(ev)

	case TypeUnitDefend:
		var ev game.DefendEvent
		if err := env.Decode(&ev); err != nil {
			return err
		}
		if p.remote != nil {
			p.remote.Settle(ev.NonceOf())
		}
		s.ApplyDefendEvent(ev)

	case TypeIntentReject:
		var rej Rejection
		if err := env.Decode(&rej); err != nil {
			return err
		}
		if p.remote != nil {
			p.remote.Reject(rej)
		}

	case TypeUnitSync:
		var sync game.UnitSync
		if err := env.Decode(&sync); err != nil {
			return err
		}
		if p.IsHost {
			if u := game.ResolveUnitRef(s.World, sync.UnitID); u != nil && u.Owner != env.From {
				s.Journal.Add(s.World.TurnNumber, u.ID, env.From, game.CatDrop, "foreign_sync", sync.UnitID, 0)
				return nil
			}
		}
		s.ApplyUnitSync(sync)

	case TypeTurnEnd:
		var te TurnEnd
		if err := env.Decode(&te); err != nil {
			return err
		}
		return p.applyTurnEnd(env, te)

	case TypeSnapshot:
		if p.IsHost {
			return nil
		}
		var snap game.Snapshot
		if err := env.Decode(&snap); err != nil {
			return err
		}
		w, err := snap.Restore(s.LocalID)
		if err != nil {
			return err
		}
		s.ResetWorld(w)
		p.journal("snapshot", fmt.Sprintf("from %s at turn %d", env.From, w.TurnNumber))

	case TypePeerJoined:
		var who string
		if err := env.Decode(&who); err != nil {
			return err
		}
		p.journal("joined", who)
		if p.host != nil {
			return p.host.SendSnapshot(who)
		}

	case TypePeerLeft:
		var who string
		if err := env.Decode(&who); err != nil {
			return err
		}
		p.journal("left", who)

	default:
		s.Journal.Add(s.World.TurnNumber, "", env.From, game.CatDrop, "unknown_message", env.Type, 0)
	}
	return nil
}

func (p *Peer) applyTurnEnd(env Envelope, te TurnEnd) error {
	s := p.Session
	if s.World.TurnOwner != te.Ending {
		s.Journal.AddVerbose(s.World.TurnNumber, "", env.From, game.CatDrop, "stale_turn",
			fmt.Sprintf("%s -> %s", te.Ending, te.Next), float64(te.Turn))
		return nil
	}
	if p.IsHost && env.From != te.Ending {
		s.Journal.Add(s.World.TurnNumber, "", env.From, game.CatDrop, "foreign_turn_end", te.Ending, 0)
		return nil
	}
	p.replaying = true
	res := s.EndTurn("")
	p.replaying = false
	if res.Reason == game.ReasonBusy {
		p.backlog = append(p.backlog, env)
	}
	return nil
}

func (p *Peer) send(typ string, payload any) {
	env, err := NewEnvelope(typ, p.Transport.ID(), payload)
	if err == nil {
		err = p.Transport.Send(env)
	}
	if err != nil {
		p.journal("send_failed", fmt.Sprintf("%s: %v", typ, err))
	}
}

func (p *Peer) journal(key, value string) {
	s := p.Session
	s.Journal.Add(s.World.TurnNumber, "", p.Transport.ID(), game.CatNet, key, value, 0)
}
