package game

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Garsondee/hexfront/internal/hex"
)

// ChaseAI drives every unit of an AI participant toward the nearest enemy
// and attacks whenever it is in range and can pay for it.
type ChaseAI struct {
	Session *Session
}

// TakeTurn implements AIRunner.
func (ai *ChaseAI) TakeTurn(w *WorldState, owner string) {
	s := ai.Session
	for _, u := range w.UnitsOf(owner) {
		if !u.Alive() {
			continue
		}
		target := nearestEnemy(w, u)
		if target == nil {
			return
		}
		if ai.tryAttack(u, target) {
			continue
		}
		res := s.Chase(u, target.Pos)
		if !res.OK {
			ai.greedyStep(u, target)
		}
		ai.tryAttack(u, target)
	}
}

func (ai *ChaseAI) tryAttack(u, target *Unit) bool {
	s := ai.Session
	if !target.Alive() {
		return false
	}
	res := s.RequestAttack(context.Background(), u, target, "")
	if !res.OK && res.Reason != ReasonOutOfRange && res.Reason != ReasonNoAP {
		s.Journal.AddVerbose(s.World.TurnNumber, u.ID, u.Owner, CatAI, "attack_refused", string(res.Reason), 0)
	}
	return res.OK
}

// greedyStep is the fallback when no path exists: take the cheapest legal
// neighbor that gets closer to the target. Best effort only.
func (ai *ChaseAI) greedyStep(u, target *Unit) {
	s := ai.Session
	w := s.World
	here, ok := w.Tiles.Tile(u.Pos)
	if !ok {
		return
	}
	blocked := w.Blocker(u, PathOptions{})
	cur := hex.Distance(u.Pos, target.Pos)

	var best hex.Coord
	bestCost, bestDist := math.Inf(1), cur
	for _, n := range hex.Neighbors(u.Pos) {
		if blocked(n) {
			continue
		}
		t, _ := w.Tiles.Tile(n)
		c := MoveCost(here, t)
		d := hex.Distance(n, target.Pos)
		if math.IsInf(c, 1) || c > float64(u.MP) || d >= cur {
			continue
		}
		if c < bestCost || (c == bestCost && d < bestDist) {
			best, bestCost, bestDist = n, c, d
		}
	}
	if math.IsInf(bestCost, 1) {
		s.Journal.Add(w.TurnNumber, u.ID, u.Owner, CatAI, "stuck", fmt.Sprintf("no step toward %s", target.ID), 0)
		return
	}
	if res := s.Move(u, best); res.OK {
		s.Journal.Add(w.TurnNumber, u.ID, u.Owner, CatAI, "greedy_step", best.String(), bestCost)
	}
}

// nearestEnemy picks the closest live unit of another owner, ties by id.
func nearestEnemy(w *WorldState, u *Unit) *Unit {
	var enemies []*Unit
	for _, o := range w.allUnits() {
		if o.Alive() && o.Owner != u.Owner {
			enemies = append(enemies, o)
		}
	}
	if len(enemies) == 0 {
		return nil
	}
	sort.Slice(enemies, func(i, j int) bool {
		di, dj := hex.Distance(u.Pos, enemies[i].Pos), hex.Distance(u.Pos, enemies[j].Pos)
		if di != dj {
			return di < dj
		}
		return enemies[i].ID < enemies[j].ID
	})
	return enemies[0]
}
