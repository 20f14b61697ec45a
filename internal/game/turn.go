package game

import "fmt"

// EndTurnTick is an end-of-turn collaborator run for the owner whose turn
// is ending.
type EndTurnTick func(w *WorldState, owner string)

// AIRunner plays a whole turn for an AI-controlled participant.
type AIRunner interface {
	TakeTurn(w *WorldState, owner string)
}

// TurnScheduler advances turn ownership through the fixed rotation.
type TurnScheduler struct {
	Ticks   []EndTurnTick
	AI      AIRunner
	Journal *Journal

	// OnTurnStart runs after resources are reset for a new owner.
	OnTurnStart func(owner string, turn int)

	locked bool
}

// Lock blocks EndTurn until Unlock. The UI holds it while input is frozen.
func (s *TurnScheduler) Lock() { s.locked = true }

// Unlock releases Lock.
func (s *TurnScheduler) Unlock() { s.locked = false }

// Locked reports whether EndTurn is currently refused.
func (s *TurnScheduler) Locked() bool { return s.locked }

// EndTurn finishes the current owner's turn. While locked it returns false
// and changes nothing. Otherwise it runs the end-of-turn ticks, passes the
// turn to the next participant, resets their units and every AI unit, and
// plays AI participants synchronously until a human holds the turn. The
// hand-off is bounded by the rotation length.
func (s *TurnScheduler) EndTurn(w *WorldState) bool {
	if s.locked || len(w.Rotation) == 0 {
		return false
	}
	s.locked = true
	defer func() { s.locked = false }()

	for range w.Rotation {
		s.advance(w)
		if !w.IsAI(w.TurnOwner) || s.AI == nil {
			break
		}
		s.Journal.Add(w.TurnNumber, "", w.TurnOwner, CatAI, "turn", "ai playing", 0)
		s.AI.TakeTurn(w, w.TurnOwner)
		if _, over := w.Winner(); over {
			break
		}
	}
	return true
}

// advance performs one hand-off from the current owner to the next.
func (s *TurnScheduler) advance(w *WorldState) {
	ending := w.TurnOwner
	for _, tick := range s.Ticks {
		tick(w, ending)
	}

	next := 0
	for i, p := range w.Rotation {
		if p.ID == ending {
			next = (i + 1) % len(w.Rotation)
			break
		}
	}
	w.TurnOwner = w.Rotation[next].ID
	w.TurnNumber++

	for _, u := range w.allUnits() {
		if u.Owner == w.TurnOwner || u.AIControlled || w.IsAI(u.Owner) {
			ResetForNewTurn(u)
		}
	}
	s.Journal.Add(w.TurnNumber, "", w.TurnOwner, CatTurn, "start",
		fmt.Sprintf("%s -> %s", ending, w.TurnOwner), float64(w.TurnNumber))
	if s.OnTurnStart != nil {
		s.OnTurnStart(w.TurnOwner, w.TurnNumber)
	}
}

// HazardTick damages units standing in zones owned by the ending owner and
// expires zones whose duration has run out. Damage goes through the
// applier's HP path, so deaths are handled exactly like combat deaths.
func HazardTick(a *Applier) EndTurnTick {
	return func(w *WorldState, owner string) {
		kept := w.Hazards[:0]
		for _, z := range w.Hazards {
			if z.Owner != owner {
				kept = append(kept, z)
				continue
			}
			for _, u := range w.allUnits() {
				if !u.Alive() || u.Owner == z.Owner || !z.Covers(u.Pos) {
					continue
				}
				ch := a.damage(w, u, z.Damage, &HitStamp{AttackerID: z.Owner, WeaponID: z.Source, Damage: z.Damage, Turn: w.TurnNumber})
				a.journal().Add(w.TurnNumber, u.ID, u.Owner, CatHazard, "tick",
					fmt.Sprintf("%s hp %d->%d", z.ID, ch.HPBefore, ch.HPAfter), float64(z.Damage))
				if ch.Died {
					a.journal().Add(w.TurnNumber, u.ID, u.Owner, CatHazard, "killed", "by "+z.ID, 0)
				}
			}
			z.TurnsLeft--
			if z.TurnsLeft > 0 {
				kept = append(kept, z)
			} else {
				a.journal().Add(w.TurnNumber, "", z.Owner, CatHazard, "expired", z.ID, 0)
			}
		}
		for i := len(kept); i < len(w.Hazards); i++ {
			w.Hazards[i] = nil
		}
		w.Hazards = kept
	}
}
