package catalog

import (
	"fmt"

	"github.com/Garsondee/hexfront/internal/game"
)

// Scenario is a starting position: board, rotation, terrain overrides and
// unit records.
type Scenario struct {
	Name      string `yaml:"name"`
	Cols      int    `yaml:"cols"`
	Rows      int    `yaml:"rows"`
	Seed      int64  `yaml:"seed"`
	ForestPct int    `yaml:"forestPct"`
	HillPct   int    `yaml:"hillPct"`

	Participants []game.Participant `yaml:"participants"`
	Tiles        []TileSpec         `yaml:"tiles"`

	// Units are loose records; they go through game.DecodeUnitRecord so
	// any of its field aliases may be used.
	Units []map[string]any `yaml:"units"`
}

// TileSpec overrides one tile.
type TileSpec struct {
	Q         int    `yaml:"q"`
	R         int    `yaml:"r"`
	Terrain   string `yaml:"terrain"`
	Elevation int    `yaml:"elevation"`
	Forest    bool   `yaml:"forest"`
}

// Validate checks the scenario against the catalog's weapons.
func (s *Scenario) Validate(c *Catalog) error {
	if s.Cols <= 0 || s.Rows <= 0 {
		return fmt.Errorf("scenario %s: bad board size %dx%d", s.Name, s.Cols, s.Rows)
	}
	if len(s.Participants) < 2 {
		return fmt.Errorf("scenario %s: need at least two participants", s.Name)
	}
	for i, raw := range s.Units {
		u, err := game.DecodeUnitRecord(raw)
		if err != nil {
			return fmt.Errorf("scenario %s: unit %d: %w", s.Name, i, err)
		}
		for _, w := range u.Weapons {
			if _, ok := c.Weapons.Weapon(w); !ok {
				return fmt.Errorf("scenario %s: unit %s: unknown weapon %q", s.Name, u.ID, w)
			}
		}
	}
	return nil
}

// Options turns the scenario into match builder options. Extra options are
// appended, so callers can override the rotation's AI flags or the seed.
func (s *Scenario) Options(c *Catalog, extra ...game.MatchOption) []game.MatchOption {
	opts := []game.MatchOption{
		game.WithGrid(s.Cols, s.Rows),
		game.WithSeed(s.Seed),
		game.WithWeapons(c.Weapons),
		game.WithAbilities(c.Abilities),
	}
	if s.ForestPct > 0 || s.HillPct > 0 {
		opts = append(opts, game.WithScatteredTerrain(s.ForestPct, s.HillPct))
	}
	for _, p := range s.Participants {
		opts = append(opts, game.WithParticipant(p.ID, p.AI))
	}
	for _, t := range s.Tiles {
		opts = append(opts, game.WithTile(t.Q, t.R, game.ParseTerrain(t.Terrain), t.Elevation, t.Forest))
	}
	for _, raw := range s.Units {
		opts = append(opts, game.WithUnitRecord(raw))
	}
	return append(opts, extra...)
}

// NewMatch builds a match from the scenario.
func (s *Scenario) NewMatch(c *Catalog, extra ...game.MatchOption) (*game.Match, error) {
	m, err := game.NewMatch(s.Options(c, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return m, nil
}
