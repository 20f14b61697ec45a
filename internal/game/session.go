package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/Garsondee/hexfront/internal/hex"
)

// Defend tuning.
const (
	DefendAPCost     = 1
	DefendArmorBonus = 2
)

// ReasonBusy is returned when a turn change is already in progress.
const ReasonBusy Reason = "busy"

// ActionResult is the tagged result of a player action.
type ActionResult struct {
	OK       bool
	Reason   Reason
	Distance int
	Err      error // transport failure reported by the authority
}

func refused(r Reason) ActionResult { return ActionResult{Reason: r} }

// UnitSync carries a committed move to other participants.
type UnitSync struct {
	UnitID string      `json:"unitId"`
	Path   []hex.Coord `json:"path"`
	MP     int         `json:"mp"`
}

// Session owns a match's world and routes every player action through
// turn checks, resources and the combat authority.
type Session struct {
	World     *WorldState
	LocalID   string
	Resolver  *AttackResolver
	Abilities AbilityLookup
	Applier   *Applier
	Scheduler *TurnScheduler
	Journal   *Journal
	Mover     StepMover
	Authority CombatAuthority
	Targeting TargetingState

	// OnMoveCommitted runs after a local move commits.
	OnMoveCommitted func(sync UnitSync)

	applied map[string]bool
}

// NewSession wires a session with a LocalAuthority and a scheduler that
// ticks hazards at the end of every turn.
func NewSession(w *WorldState, localID string, weapons WeaponLookup, abilities AbilityLookup, j *Journal) *Session {
	s := &Session{
		World:     w,
		LocalID:   localID,
		Resolver:  NewAttackResolver(weapons),
		Abilities: abilities,
		Journal:   j,
		applied:   make(map[string]bool),
	}
	s.Applier = &Applier{Journal: j}
	s.Scheduler = &TurnScheduler{Journal: j, Ticks: []EndTurnTick{HazardTick(s.Applier)}}
	s.Authority = &LocalAuthority{Host: s.Host(), Sink: s}
	return s
}

// Host returns a resolver bound to this session's world. Only the
// host participant should use it.
func (s *Session) Host() *Host {
	return &Host{World: s.World, Resolver: s.Resolver, Abilities: s.Abilities}
}

// Move commits a move of u toward goal for the turn owner.
func (s *Session) Move(u *Unit, goal hex.Coord) MoveResult {
	return s.move(u, goal, PathOptions{})
}

// Chase moves u toward the hex of target, stopping next to it.
func (s *Session) Chase(u *Unit, target hex.Coord) MoveResult {
	return s.move(u, target, PathOptions{IgnoreGoalOccupancy: true})
}

func (s *Session) move(u *Unit, goal hex.Coord, opts PathOptions) MoveResult {
	if u == nil || u.Owner != s.World.TurnOwner {
		return MoveResult{Reason: ReasonNotYourTurn}
	}
	res := CommitMove(s.World, u, goal, opts, s.Mover, nil, s.Journal)
	if res.OK && s.OnMoveCommitted != nil {
		s.OnMoveCommitted(UnitSync{UnitID: UnitRef(u), Path: res.Path, MP: u.MP})
	}
	return res
}

// RequestAttack validates an attack locally, spends AP and hands the intent
// to the authority. AP is refunded if the authority refuses or fails.
func (s *Session) RequestAttack(ctx context.Context, att, def *Unit, weaponID string) ActionResult {
	if att == nil || att.Owner != s.World.TurnOwner {
		return refused(ReasonNotYourTurn)
	}
	v := s.Resolver.Validate(att, def, weaponID)
	if !v.OK {
		return ActionResult{Reason: v.Reason, Distance: v.Distance}
	}
	w, _ := s.Resolver.Weapon(att, weaponID)
	if !CanSpend(att, ResourceAP, w.Cost()) {
		return ActionResult{Reason: ReasonNoAP, Distance: v.Distance}
	}

	prevAttacked := att.AttackedThisTurn
	Spend(att, ResourceAP, w.Cost())
	att.AttackedThisTurn = true
	in := AttackIntent{
		From:       s.LocalID,
		AttackerID: UnitRef(att),
		DefenderID: UnitRef(def),
		WeaponID:   w.ID,
		Nonce:      NewNonce(),
	}
	if err := s.Authority.RequestAttack(ctx, in); err != nil {
		Refund(att, ResourceAP, w.Cost())
		att.AttackedThisTurn = prevAttacked
		return s.authorityFailure(err, v.Distance)
	}
	return ActionResult{OK: true, Distance: v.Distance}
}

// CastAbility validates a cast locally, spends AP and hands the intent to
// the authority.
func (s *Session) CastAbility(ctx context.Context, caster *Unit, abilityID string, center hex.Coord) ActionResult {
	if caster == nil || caster.Owner != s.World.TurnOwner {
		return refused(ReasonNotYourTurn)
	}
	def, ok := s.lookupAbility(abilityID)
	if !ok {
		return refused(ReasonUnknownAbility)
	}
	if _, v := ResolveAbility(s.World, caster, def, center, ""); !v.OK {
		return ActionResult{Reason: v.Reason, Distance: v.Distance}
	}
	if !CanSpend(caster, ResourceAP, def.Cost()) {
		return refused(ReasonNoAP)
	}
	Spend(caster, ResourceAP, def.Cost())
	in := AbilityIntent{
		From:      s.LocalID,
		CasterID:  UnitRef(caster),
		AbilityID: abilityID,
		Center:    center,
		Nonce:     NewNonce(),
	}
	if err := s.Authority.RequestAbility(ctx, in); err != nil {
		Refund(caster, ResourceAP, def.Cost())
		return s.authorityFailure(err, 0)
	}
	return ActionResult{OK: true, Distance: hex.Distance(caster.Pos, center)}
}

func (s *Session) authorityFailure(err error, distance int) ActionResult {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return ActionResult{Reason: rej.Reason, Distance: distance}
	}
	s.Journal.Add(s.World.TurnNumber, "", s.LocalID, CatNet, "authority_error", err.Error(), 0)
	return ActionResult{Err: fmt.Errorf("combat authority: %w", err), Distance: distance}
}

func (s *Session) lookupAbility(id string) (*AbilityDef, bool) {
	if s.Abilities == nil {
		return nil, false
	}
	return s.Abilities.Ability(id)
}

// ResetWorld swaps in a world restored from a snapshot. The nonce ledger is
// kept so events already applied stay applied.
func (s *Session) ResetWorld(w *WorldState) {
	s.CancelTargeting()
	s.World = w
	if la, ok := s.Authority.(*LocalAuthority); ok {
		la.Host = s.Host()
	}
}

// Defend spends AP and asks the authority to raise u's armor until its
// next turn.
func (s *Session) Defend(ctx context.Context, u *Unit) ActionResult {
	if u == nil || u.Owner != s.World.TurnOwner {
		return refused(ReasonNotYourTurn)
	}
	if !u.Alive() || u.Defending {
		return refused(ReasonInvalidTarget)
	}
	if !CanSpend(u, ResourceAP, DefendAPCost) {
		return refused(ReasonNoAP)
	}
	Spend(u, ResourceAP, DefendAPCost)
	in := DefendIntent{From: s.LocalID, UnitID: UnitRef(u), Nonce: NewNonce()}
	if err := s.Authority.RequestDefend(ctx, in); err != nil {
		Refund(u, ResourceAP, DefendAPCost)
		return s.authorityFailure(err, 0)
	}
	return ActionResult{OK: true}
}

// EndTurn ends the turn on behalf of by. An empty by skips the ownership
// check; remote turn changes use that.
func (s *Session) EndTurn(by string) ActionResult {
	if by != "" && by != s.World.TurnOwner {
		return refused(ReasonNotYourTurn)
	}
	s.CancelTargeting()
	if !s.Scheduler.EndTurn(s.World) {
		return refused(ReasonBusy)
	}
	return ActionResult{OK: true}
}

// ApplyCombatEvent applies an authoritative event once per nonce.
func (s *Session) ApplyCombatEvent(ev CombatEvent) ApplyResult {
	nonce := ev.NonceOf()
	if s.seen(nonce) {
		s.Journal.Add(s.World.TurnNumber, "", "", CatDrop, "duplicate", nonce, 0)
		return ApplyResult{Reason: ReasonDuplicate}
	}
	if s.ownsRef(ev.AttackerID) {
		ev.AttackerAP = nil
	}
	res := s.Applier.ApplyCombatEvent(s.World, ev)
	if res.Applied {
		s.remember(nonce)
	}
	return res
}

// ApplyAbilityEvent applies an authoritative ability event once per nonce.
func (s *Session) ApplyAbilityEvent(ev AbilityEvent) ApplyResult {
	nonce := ev.NonceOf()
	if s.seen(nonce) {
		s.Journal.Add(s.World.TurnNumber, "", "", CatDrop, "duplicate", nonce, 0)
		return ApplyResult{Reason: ReasonDuplicate}
	}
	if s.ownsRef(ev.CasterID) {
		ev.CasterAP = nil
	}
	res := s.Applier.ApplyAbilityEvent(s.World, ev)
	if res.Applied {
		s.remember(nonce)
	}
	return res
}

// ApplyDefendEvent applies an authoritative guard once per nonce.
func (s *Session) ApplyDefendEvent(ev DefendEvent) ApplyResult {
	nonce := ev.NonceOf()
	if s.seen(nonce) {
		s.Journal.Add(s.World.TurnNumber, "", "", CatDrop, "duplicate", nonce, 0)
		return ApplyResult{Reason: ReasonDuplicate}
	}
	if s.ownsRef(ev.UnitID) {
		ev.AP = nil
	}
	res := s.Applier.ApplyDefendEvent(s.World, ev)
	if res.Applied {
		s.remember(nonce)
	}
	return res
}

// ownsRef reports whether ref names a unit this participant commands.
// Such units keep their locally paid AP; rejections refund it separately.
func (s *Session) ownsRef(ref string) bool {
	u := ResolveUnitRef(s.World, ref)
	return u != nil && u.Owner == s.LocalID
}

// ApplyUnitSync mirrors a move committed by another participant.
func (s *Session) ApplyUnitSync(sync UnitSync) bool {
	u := ResolveUnitRef(s.World, sync.UnitID)
	if u == nil || len(sync.Path) == 0 {
		s.Journal.Add(s.World.TurnNumber, "", "", CatDrop, "unknown_unit", "unit:sync "+sync.UnitID, 0)
		return false
	}
	dest := sync.Path[len(sync.Path)-1]
	if occ := s.World.UnitAt(dest); occ != nil && occ != u {
		s.Journal.Add(s.World.TurnNumber, u.ID, u.Owner, CatDrop, "occupied", dest.String(), 0)
		return false
	}
	from := u.Pos
	u.Pos = dest
	u.MP = clampInt(sync.MP, 0, u.MPMax)
	s.Journal.Add(s.World.TurnNumber, u.ID, u.Owner, CatMove, "sync", fmt.Sprintf("%v -> %v", from, dest), 0)
	if s.Mover != nil {
		s.Mover.StartStepMovement(u, sync.Path, func() {})
	}
	return true
}

func (s *Session) seen(nonce string) bool {
	return nonce != "" && s.applied[nonce]
}

func (s *Session) remember(nonce string) {
	if nonce != "" {
		s.applied[nonce] = true
	}
}
