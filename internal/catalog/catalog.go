// Package catalog loads the game's static reference data (weapons,
// abilities and match scenarios) from YAML. Defaults are embedded so the
// binaries run without any files on disk; a directory with the same layout
// overrides them.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/hexfront/internal/game"
)

//go:embed data
var embedded embed.FS

// WeaponsConfig is the layout of weapons.yaml.
type WeaponsConfig struct {
	Weapons []WeaponSpec `yaml:"weapons"`
}

// WeaponSpec is one weapon entry as written in YAML.
type WeaponSpec struct {
	ID                   string             `yaml:"id"`
	Name                 string             `yaml:"name"`
	BaseDamage           float64            `yaml:"baseDamage"`
	RangeMin             int                `yaml:"rangeMin"`
	RangeMax             int                `yaml:"rangeMax"`
	APCost               int                `yaml:"apCost"`
	ArmorClassMultiplier map[string]float64 `yaml:"armorClassMultiplier"`
	DistanceCurve        []float64          `yaml:"distanceCurve"`
}

// AbilitiesConfig is the layout of abilities.yaml.
type AbilitiesConfig struct {
	Abilities []game.AbilityDef `yaml:"abilities"`
}

// Catalog is the loaded reference data.
type Catalog struct {
	Weapons   game.Armory
	Abilities game.Spellbook
	Scenarios map[string]*Scenario
}

// ScenarioNames returns the loaded scenario names, sorted.
func (c *Catalog) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for n := range c.Scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Scenario returns a scenario by name.
func (c *Catalog) Scenario(name string) (*Scenario, error) {
	s, ok := c.Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("scenario %q not found (have %s)", name, strings.Join(c.ScenarioNames(), ", "))
	}
	return s, nil
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return Load(sub)
}

// LoadDir loads a catalog from a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads weapons.yaml, abilities.yaml and scenarios/*.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var wc WeaponsConfig
	var ac AbilitiesConfig
	if err := loadYAML(fsys, "weapons.yaml", &wc); err != nil {
		return nil, err
	}
	if err := loadYAML(fsys, "abilities.yaml", &ac); err != nil {
		return nil, err
	}
	weapons, err := buildArmory(wc)
	if err != nil {
		return nil, err
	}
	abilities, err := buildSpellbook(ac)
	if err != nil {
		return nil, err
	}

	c := &Catalog{Weapons: weapons, Abilities: abilities, Scenarios: map[string]*Scenario{}}
	paths, err := fs.Glob(fsys, "scenarios/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	for _, p := range paths {
		var s Scenario
		if err := loadYAML(fsys, p, &s); err != nil {
			return nil, err
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(p), ".yaml")
		}
		if err := s.Validate(c); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		c.Scenarios[s.Name] = &s
	}
	return c, nil
}

func loadYAML(fsys fs.FS, path string, out any) error {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func buildArmory(wc WeaponsConfig) (game.Armory, error) {
	a := game.Armory{}
	for _, ws := range wc.Weapons {
		if ws.ID == "" {
			return nil, fmt.Errorf("weapons.yaml: weapon without id")
		}
		if _, dup := a[ws.ID]; dup {
			return nil, fmt.Errorf("weapons.yaml: duplicate weapon %q", ws.ID)
		}
		if ws.RangeMin < 0 || ws.RangeMax < ws.RangeMin {
			return nil, fmt.Errorf("weapons.yaml: %s: bad range %d-%d", ws.ID, ws.RangeMin, ws.RangeMax)
		}
		w := &game.WeaponDef{
			ID:            ws.ID,
			Name:          ws.Name,
			BaseDamage:    ws.BaseDamage,
			RangeMin:      ws.RangeMin,
			RangeMax:      ws.RangeMax,
			APCost:        ws.APCost,
			DistanceCurve: ws.DistanceCurve,
		}
		if len(ws.ArmorClassMultiplier) > 0 {
			w.ArmorClassMultiplier = make(map[game.ArmorClass]float64, len(ws.ArmorClassMultiplier))
			for k, v := range ws.ArmorClassMultiplier {
				w.ArmorClassMultiplier[game.ArmorClass(k)] = v
			}
		}
		a[ws.ID] = w
	}
	if _, ok := a[game.DefaultWeaponID]; !ok {
		for id, w := range game.BasicArmory() {
			a[id] = w
		}
	}
	return a, nil
}

func buildSpellbook(ac AbilitiesConfig) (game.Spellbook, error) {
	s := game.Spellbook{}
	for i := range ac.Abilities {
		d := ac.Abilities[i]
		if d.ID == "" {
			return nil, fmt.Errorf("abilities.yaml: ability without id")
		}
		if _, dup := s[d.ID]; dup {
			return nil, fmt.Errorf("abilities.yaml: duplicate ability %q", d.ID)
		}
		switch d.Kind {
		case game.AbilityStrike, game.AbilityHeal, game.AbilityFortify, game.AbilityHazard:
		default:
			return nil, fmt.Errorf("abilities.yaml: %s: unknown kind %q", d.ID, d.Kind)
		}
		s[d.ID] = &d
	}
	return s, nil
}
