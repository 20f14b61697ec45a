package game

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/hexfront/internal/hex"
)

// BasicArmory holds only the weapon every unit falls back to.
func BasicArmory() Armory {
	return Armory{
		DefaultWeaponID: {ID: DefaultWeaponID, Name: "Fists", BaseDamage: 2, RangeMin: 1, RangeMax: 1, APCost: 1},
	}
}

// Match is a headless match: a world, its session and journal. Tests, the
// headless runner and the relay's scenario loader all build matches
// through NewMatch.
type Match struct {
	Cols    int
	Rows    int
	World   *WorldState
	Session *Session
	Journal *Journal

	rng       *rand.Rand
	weapons   WeaponLookup
	abilities AbilityLookup
	rotation  []Participant
	local     string
	mover     StepMover
	tiles     []Tile
	scatter   *scatterSpec
	units     []*Unit
	raw       []map[string]any
}

type scatterSpec struct {
	forestPct int
	hillPct   int
}

// matchOptionKind controls the pass in which an option is applied.
type matchOptionKind int

const (
	matchOptInfra   matchOptionKind = iota // size, seed, catalogues, rotation: applied first
	matchOptTerrain                        // tile edits: applied once the board exists
	matchOptUnit                           // units: applied after terrain
)

// MatchOption is a builder function applied to a Match during construction.
type MatchOption struct {
	kind matchOptionKind
	fn   func(*Match)
}

// WithGrid sets the board dimensions.
func WithGrid(cols, rows int) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Cols = cols
		m.Rows = rows
	}}
}

// WithSeed sets the RNG seed used for terrain scattering.
func WithSeed(seed int64) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- terrain variety only
	}}
}

// WithVerbose enables per-step journal entries.
func WithVerbose(v bool) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Journal = NewJournal(v)
	}}
}

// WithWeapons sets the weapon catalogue.
func WithWeapons(w WeaponLookup) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) { m.weapons = w }}
}

// WithAbilities sets the ability registry.
func WithAbilities(a AbilityLookup) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) { m.abilities = a }}
}

// WithParticipant appends a participant to the turn rotation.
func WithParticipant(id string, ai bool) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.rotation = append(m.rotation, Participant{ID: id, AI: ai})
	}}
}

// WithRotation replaces the whole turn rotation.
func WithRotation(ps ...Participant) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.rotation = append([]Participant(nil), ps...)
	}}
}

// WithLocalPlayer sets whose units count as player units.
func WithLocalPlayer(id string) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) { m.local = id }}
}

// WithStepMover sets the movement animation collaborator.
func WithStepMover(sm StepMover) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) { m.mover = sm }}
}

// WithTile overrides one tile.
func WithTile(q, r int, terrain TerrainKind, elevation int, forest bool) MatchOption {
	return MatchOption{matchOptTerrain, func(m *Match) {
		m.tiles = append(m.tiles, Tile{Pos: hex.C(q, r), Terrain: terrain, Elevation: elevation, HasForest: forest})
	}}
}

// WithScatteredTerrain sprinkles forest and low hills over the board.
// Percentages are per tile.
func WithScatteredTerrain(forestPct, hillPct int) MatchOption {
	return MatchOption{matchOptTerrain, func(m *Match) {
		m.scatter = &scatterSpec{forestPct: forestPct, hillPct: hillPct}
	}}
}

// WithUnit adds a unit.
func WithUnit(u *Unit) MatchOption {
	return MatchOption{matchOptUnit, func(m *Match) { m.units = append(m.units, u) }}
}

// WithUnitRecord adds a unit from a loosely-typed record.
func WithUnitRecord(raw map[string]any) MatchOption {
	return MatchOption{matchOptUnit, func(m *Match) { m.raw = append(m.raw, raw) }}
}

// NewMatch constructs a Match from the given options in ordered passes:
//  1. Infrastructure (size, seed, catalogues, rotation)
//  2. Board and terrain
//  3. Units
//  4. Session wiring
func NewMatch(opts ...MatchOption) (*Match, error) {
	m := &Match{
		Cols:    10,
		Rows:    8,
		Journal: NewJournal(false),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- deterministic default
		weapons: BasicArmory(),
	}
	for _, o := range opts {
		if o.kind == matchOptInfra {
			o.fn(m)
		}
	}
	if len(m.rotation) == 0 {
		m.rotation = []Participant{{ID: "red"}, {ID: "blue", AI: true}}
	}
	if m.local == "" {
		m.local = m.rotation[0].ID
	}

	for _, o := range opts {
		if o.kind == matchOptTerrain {
			o.fn(m)
		}
	}
	tm := NewTileMap(m.Cols, m.Rows)
	if m.scatter != nil {
		m.scatterTerrain(tm)
	}
	for _, t := range m.tiles {
		if !tm.InBounds(t.Pos) {
			return nil, fmt.Errorf("new match: tile %v off board", t.Pos)
		}
		tm.Put(t)
	}
	m.World = NewWorld(tm, m.local, m.rotation...)

	for _, o := range opts {
		if o.kind == matchOptUnit {
			o.fn(m)
		}
	}
	for _, u := range m.units {
		if err := m.World.AddUnit(u); err != nil {
			return nil, fmt.Errorf("new match: %w", err)
		}
	}
	for i, raw := range m.raw {
		u, err := DecodeUnitRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("new match: record %d: %w", i, err)
		}
		if err := m.World.AddUnit(u); err != nil {
			return nil, fmt.Errorf("new match: %w", err)
		}
	}

	m.Session = NewSession(m.World, m.local, m.weapons, m.abilities, m.Journal)
	m.Session.Mover = m.mover
	for _, p := range m.rotation {
		if p.AI {
			m.Session.Scheduler.AI = &ChaseAI{Session: m.Session}
			break
		}
	}
	return m, nil
}

// scatterTerrain leaves the outermost columns flat so deployment zones stay
// open.
func (m *Match) scatterTerrain(tm *TileMap) {
	for _, t := range tm.Tiles() {
		if t.Pos.Q == 0 || t.Pos.Q == tm.Cols-1 {
			continue
		}
		if m.rng.Intn(100) < m.scatter.forestPct {
			t.HasForest = true
		}
		if m.rng.Intn(100) < m.scatter.hillPct {
			t.Elevation = 1
		}
	}
}

// Start plays the opening owner's turn when it is AI-controlled.
func (m *Match) Start() {
	ai := m.Session.Scheduler.AI
	if ai != nil && m.World.IsAI(m.World.TurnOwner) {
		ai.TakeTurn(m.World, m.World.TurnOwner)
	}
}

// Unit returns the unit with the given id, or nil.
func (m *Match) Unit(id string) *Unit { return m.World.UnitByID(id) }

// RunRounds ends the turn n times, stopping early once a winner exists.
func (m *Match) RunRounds(n int) {
	for i := 0; i < n; i++ {
		if _, over := m.World.Winner(); over {
			return
		}
		m.Session.EndTurn("")
	}
}

// RunUntil ends turns up to maxRounds times, stopping as soon as predicate
// holds. Returns the turn number at which it held, or -1.
func (m *Match) RunUntil(predicate func(*Match) bool, maxRounds int) int {
	for i := 0; i < maxRounds; i++ {
		m.Session.EndTurn("")
		if predicate(m) {
			return m.World.TurnNumber
		}
	}
	return -1
}
