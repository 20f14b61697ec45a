package game

import (
	"fmt"

	"github.com/Garsondee/hexfront/internal/hex"
)

// StepMover animates a committed move and calls onComplete once the unit has
// walked the whole path. Gameplay state is already final when it is called.
type StepMover interface {
	StartStepMovement(u *Unit, path []hex.Coord, onComplete func())
}

// StepMoverFunc adapts a function to StepMover.
type StepMoverFunc func(u *Unit, path []hex.Coord, onComplete func())

// StartStepMovement implements StepMover.
func (f StepMoverFunc) StartStepMovement(u *Unit, path []hex.Coord, onComplete func()) {
	f(u, path, onComplete)
}

// MoveResult is the tagged result of a move request.
type MoveResult struct {
	OK     bool        `json:"ok"`
	Reason Reason      `json:"reason,omitempty"`
	Full   []hex.Coord `json:"full,omitempty"` // untrimmed path
	Path   []hex.Coord `json:"path,omitempty"` // walked prefix
	Spent  int         `json:"spent"`
}

// PlanMove computes the full and affordable paths for u toward goal without
// changing anything. Hover previews use it.
func PlanMove(w *WorldState, u *Unit, goal hex.Coord, opts PathOptions) MoveResult {
	if !u.Alive() {
		return MoveResult{Reason: ReasonInvalidTarget}
	}
	opts.Goal = goal
	full := FindPath(u.Pos, goal, w.Tiles, w.Blocker(u, opts), MoveCost)
	if len(full) < 2 {
		return MoveResult{Reason: ReasonNoPath, Full: full}
	}
	// Trimming never suppresses occupancy, so a chase stops next to its target.
	walk, spent := TrimPath(full, float64(u.MP), w.Tiles, MoveCost, w.Blocker(u, PathOptions{}))
	if len(walk) < 2 {
		return MoveResult{Reason: ReasonNoMP, Full: full}
	}
	return MoveResult{OK: true, Full: full, Path: walk, Spent: int(spent)}
}

// CommitMove plans the move and commits it: MP is deducted and the unit's
// position set before the animation starts. A nil mover completes at once.
func CommitMove(w *WorldState, u *Unit, goal hex.Coord, opts PathOptions, mover StepMover, onComplete func(), j *Journal) MoveResult {
	res := PlanMove(w, u, goal, opts)
	if !res.OK {
		return res
	}
	dest := res.Path[len(res.Path)-1]
	if occ := w.UnitAt(dest); occ != nil && occ != u {
		return MoveResult{Reason: ReasonNoPath, Full: res.Full}
	}

	from := u.Pos
	Spend(u, ResourceMP, res.Spent)
	u.Pos = dest
	j.Add(w.TurnNumber, u.ID, u.Owner, CatMove, "commit",
		fmt.Sprintf("%v -> %v (%d steps, %d mp left)", from, dest, len(res.Path)-1, u.MP), float64(res.Spent))
	for _, c := range res.Path[1:] {
		j.AddVerbose(w.TurnNumber, u.ID, u.Owner, CatMove, "step", c.String(), 0)
	}

	done := onComplete
	if done == nil {
		done = func() {}
	}
	if mover != nil {
		mover.StartStepMovement(u, res.Path, done)
	} else {
		done()
	}
	return res
}
