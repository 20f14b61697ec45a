package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/hex"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, ok := c.Weapons.Weapon(game.DefaultWeaponID); !ok {
		t.Fatal("fallback weapon missing")
	}
	bow, ok := c.Weapons.Weapon("longbow")
	if !ok {
		t.Fatal("longbow missing")
	}
	if bow.Multiplier(game.ArmorHeavy) != 0.5 || bow.Falloff(4) != 0.6 {
		t.Fatalf("longbow tables not decoded: %+v", bow)
	}
	if d, ok := c.Abilities.Ability("miasma"); !ok || d.Kind != game.AbilityHazard || d.Duration != 3 {
		t.Fatalf("miasma = %+v", d)
	}
	if len(c.ScenarioNames()) < 2 {
		t.Fatalf("scenarios = %v", c.ScenarioNames())
	}
}

func TestScenario_BuildsMatch(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Scenario("skirmish")
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.NewMatch(c)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if m.World.Tiles.Cols != 12 || m.World.Tiles.Rows != 9 {
		t.Fatalf("board = %dx%d", m.World.Tiles.Cols, m.World.Tiles.Rows)
	}
	if tile, _ := m.World.Tiles.Tile(hex.C(5, 3)); tile.Terrain != game.TerrainWater {
		t.Fatal("tile override lost")
	}
	raider := m.Unit("blue-1")
	if raider == nil || raider.MPMax != 4 {
		t.Fatalf("blue-1 = %+v, want movementPoints alias applied", raider)
	}
	pike := m.Unit("red-1")
	if pike.MaxHP != 12 || pike.ArmorClass != game.ArmorMedium {
		t.Fatalf("red-1 = %+v", pike)
	}
	if !m.World.IsAI("blue") || m.World.IsAI("red") {
		t.Fatal("rotation AI flags wrong")
	}
}

func TestScenario_ExtraOptionsOverride(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	s, _ := c.Scenario("duel")
	m, err := s.NewMatch(c, game.WithRotation(
		game.Participant{ID: "red", AI: true},
		game.Participant{ID: "blue", AI: true},
	))
	if err != nil {
		t.Fatal(err)
	}
	if !m.World.IsAI("red") || !m.World.IsAI("blue") {
		t.Fatal("rotation override ignored")
	}
}

func writeCatalog(t *testing.T, weapons, abilities, scenario string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "scenarios"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"weapons.yaml":        weapons,
		"abilities.yaml":      abilities,
		"scenarios/test.yaml": scenario,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const okScenario = `
cols: 4
rows: 4
participants: [{id: a}, {id: b}]
units:
  - {id: u1, owner: a, q: 0, r: 0, weapons: [club]}
`

func TestLoadDir_Custom(t *testing.T) {
	dir := writeCatalog(t,
		"weapons:\n  - {id: club, baseDamage: 3, rangeMin: 1, rangeMax: 1}\n",
		"abilities: []\n",
		okScenario)
	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if _, ok := c.Weapons.Weapon(game.DefaultWeaponID); !ok {
		t.Fatal("fallback weapon should be added when missing")
	}
	if _, err := c.Scenario("test"); err != nil {
		t.Fatalf("scenario named after file: %v", err)
	}
}

func TestLoadDir_Errors(t *testing.T) {
	cases := []struct {
		name, weapons, abilities, scenario, want string
	}{
		{"dup weapon", "weapons:\n  - {id: club, rangeMax: 1}\n  - {id: club, rangeMax: 1}\n", "abilities: []\n", okScenario, "duplicate weapon"},
		{"bad range", "weapons:\n  - {id: club, rangeMin: 3, rangeMax: 1}\n", "abilities: []\n", okScenario, "bad range"},
		{"bad kind", "weapons:\n  - {id: club, rangeMax: 1}\n", "abilities:\n  - {id: x, kind: summon}\n", okScenario, "unknown kind"},
		{"unknown weapon", "weapons:\n  - {id: sword, rangeMax: 1}\n", "abilities: []\n", okScenario, "unknown weapon"},
		{"bad yaml", "weapons: [\n", "abilities: []\n", okScenario, "parse weapons.yaml"},
	}
	for _, tc := range cases {
		dir := writeCatalog(t, tc.weapons, tc.abilities, tc.scenario)
		_, err := LoadDir(dir)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}
