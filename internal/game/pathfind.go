package game

import (
	"container/heap"
	"math"

	"github.com/Garsondee/hexfront/internal/hex"
)

// CostFunc prices a single step between adjacent tiles. +Inf means the step
// is impassable.
type CostFunc func(from, to *Tile) float64

// BlockFunc reports whether a coordinate may not be entered.
type BlockFunc func(c hex.Coord) bool

// MoveCost is the default movement rule: 1 per step, +1 into forest, +1
// when climbing. A step whose elevation changes by more than 1 is
// impassable regardless of anything else.
func MoveCost(from, to *Tile) float64 {
	if from == nil || to == nil {
		return math.Inf(1)
	}
	dz := to.Elevation - from.Elevation
	if dz > 1 || dz < -1 {
		return math.Inf(1)
	}
	cost := 1.0
	if to.HasForest {
		cost++
	}
	if dz > 0 {
		cost++
	}
	return cost
}

// PathOptions adjusts the blocking rules built by Blocker.
type PathOptions struct {
	// IgnoreGoalOccupancy lets a path end on an occupied hex. Used when
	// chasing a unit: the path leads toward the target, and committing the
	// move still stops before the occupied tile.
	IgnoreGoalOccupancy bool
	Goal                hex.Coord
}

// Blocker returns the blocking rule for mover: off-board hexes, terrain the
// mover cannot enter, and hexes held by any other live unit.
func (w *WorldState) Blocker(mover *Unit, opts PathOptions) BlockFunc {
	kind := MoverLand
	if mover != nil {
		kind = mover.Mover
	}
	return func(c hex.Coord) bool {
		t, ok := w.Tiles.Tile(c)
		if !ok || t.Terrain.blocksMover(kind) {
			return true
		}
		if opts.IgnoreGoalOccupancy && c == opts.Goal {
			return false
		}
		occ := w.UnitAt(c)
		return occ != nil && occ != mover
	}
}

// --- A* pathfinding ---

type pathNode struct {
	pos    hex.Coord
	g, h   float64
	seq    int // insertion order, breaks f ties
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)  { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x any)    { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() any      { old := *ol; n := old[len(old)-1]; old[len(old)-1] = nil; *ol = old[:len(old)-1]; return n }

// FindPath returns the cheapest hex sequence from start to goal, both
// included, or nil when the goal cannot be reached. The start hex is never
// tested against isBlocked since the mover stands on it. A nil cost uses
// MoveCost; a nil isBlocked blocks nothing.
func FindPath(start, goal hex.Coord, tiles TileSet, isBlocked BlockFunc, cost CostFunc) []hex.Coord {
	if cost == nil {
		cost = MoveCost
	}
	if isBlocked == nil {
		isBlocked = func(hex.Coord) bool { return false }
	}
	if _, ok := tiles.Tile(start); !ok {
		return nil
	}
	if _, ok := tiles.Tile(goal); !ok {
		return nil
	}
	if start == goal {
		return []hex.Coord{start}
	}
	if isBlocked(goal) {
		return nil
	}

	seq := 0
	startNode := &pathNode{pos: start, h: float64(hex.Distance(start, goal))}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[hex.Coord]bool)
	best := map[hex.Coord]*pathNode{start: startNode}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.pos == goal {
			return buildPath(cur)
		}
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true
		from, _ := tiles.Tile(cur.pos)

		for _, n := range hex.Neighbors(cur.pos) {
			if closed[n] || isBlocked(n) {
				continue
			}
			to, ok := tiles.Tile(n)
			if !ok {
				continue
			}
			step := cost(from, to)
			if math.IsInf(step, 1) {
				continue
			}
			g := cur.g + step
			if prev, ok := best[n]; ok && g >= prev.g {
				continue
			}
			seq++
			node := &pathNode{pos: n, g: g, h: float64(hex.Distance(n, goal)), seq: seq, parent: cur}
			best[n] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func buildPath(end *pathNode) []hex.Coord {
	var path []hex.Coord
	for n := end; n != nil; n = n.parent {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// TrimPath returns the longest prefix of path whose cumulative cost fits in
// budget, stopping before any step that enters a blocked hex. The prefix
// always starts with path[0]; spent is its total cost.
func TrimPath(path []hex.Coord, budget float64, tiles TileSet, cost CostFunc, isBlocked BlockFunc) ([]hex.Coord, float64) {
	if len(path) == 0 {
		return nil, 0
	}
	if cost == nil {
		cost = MoveCost
	}
	spent := 0.0
	end := 1
	for i := 1; i < len(path); i++ {
		if isBlocked != nil && isBlocked(path[i]) {
			break
		}
		from, _ := tiles.Tile(path[i-1])
		to, _ := tiles.Tile(path[i])
		step := cost(from, to)
		if math.IsInf(step, 1) || spent+step > budget {
			break
		}
		spent += step
		end = i + 1
	}
	return path[:end:end], spent
}

// PathCost sums the step costs along path.
func PathCost(path []hex.Coord, tiles TileSet, cost CostFunc) float64 {
	if cost == nil {
		cost = MoveCost
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		from, _ := tiles.Tile(path[i-1])
		to, _ := tiles.Tile(path[i])
		total += cost(from, to)
	}
	return total
}
