package game

import (
	"context"

	"github.com/Garsondee/hexfront/internal/hex"
)

// TargetMode is the client-side targeting mode.
type TargetMode uint8

const (
	TargetNone    TargetMode = iota
	TargetAttack             // picking a unit to attack
	TargetAbility            // picking a center hex for an ability
)

// TargetingState is pure selection state. Entering, leaving or cancelling
// it never touches the world.
type TargetingState struct {
	Mode      TargetMode
	ActorID   string
	AbilityID string
}

// Active reports whether a targeting mode is on.
func (t TargetingState) Active() bool { return t.Mode != TargetNone }

// BeginAttackTargeting enters attack targeting for u.
func (s *Session) BeginAttackTargeting(u *Unit) bool {
	if u == nil || u.Owner != s.World.TurnOwner || !u.Alive() {
		return false
	}
	s.Targeting = TargetingState{Mode: TargetAttack, ActorID: u.ID}
	return true
}

// BeginAbilityTargeting enters ability targeting for u.
func (s *Session) BeginAbilityTargeting(u *Unit, abilityID string) bool {
	if u == nil || u.Owner != s.World.TurnOwner || !u.Alive() {
		return false
	}
	if _, ok := s.lookupAbility(abilityID); !ok {
		return false
	}
	s.Targeting = TargetingState{Mode: TargetAbility, ActorID: u.ID, AbilityID: abilityID}
	return true
}

// CancelTargeting leaves any targeting mode.
func (s *Session) CancelTargeting() {
	s.Targeting = TargetingState{}
}

// Highlights returns the hexes the current targeting mode accepts.
func (s *Session) Highlights() []hex.Coord {
	actor := s.World.UnitByID(s.Targeting.ActorID)
	if actor == nil {
		return nil
	}
	var out []hex.Coord
	switch s.Targeting.Mode {
	case TargetAttack:
		for _, u := range s.World.allUnits() {
			if s.Resolver.Validate(actor, u, "").OK {
				out = append(out, u.Pos)
			}
		}
	case TargetAbility:
		def, ok := s.lookupAbility(s.Targeting.AbilityID)
		if !ok {
			return nil
		}
		for _, c := range hex.Within(actor.Pos, def.Range) {
			if s.World.Tiles.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ConfirmTarget acts on a click at c. A click outside the highlighted hexes
// cancels targeting and commits nothing.
func (s *Session) ConfirmTarget(ctx context.Context, c hex.Coord) ActionResult {
	mode := s.Targeting
	highlighted := false
	for _, h := range s.Highlights() {
		if h == c {
			highlighted = true
			break
		}
	}
	s.CancelTargeting()
	if !highlighted {
		return refused(ReasonInvalidTarget)
	}
	actor := s.World.UnitByID(mode.ActorID)
	switch mode.Mode {
	case TargetAttack:
		return s.RequestAttack(ctx, actor, s.World.UnitAt(c), "")
	case TargetAbility:
		return s.CastAbility(ctx, actor, mode.AbilityID, c)
	}
	return refused(ReasonInvalidTarget)
}
