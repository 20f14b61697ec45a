package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Garsondee/hexfront/internal/hex"
)

// Defaults used when a unit record arrives without a value.
const (
	DefaultMaxHP      = 10
	DefaultMPMax      = 3
	DefaultAPMax      = 2
	DefaultArmorClass = ArmorLight
	DefaultWeaponID   = "fists"
)

// ResourceKind names a spendable per-unit pool.
type ResourceKind uint8

const (
	ResourceMP ResourceKind = iota
	ResourceAP
	ResourceHP
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceMP:
		return "mp"
	case ResourceAP:
		return "ap"
	case ResourceHP:
		return "hp"
	default:
		return "unknown"
	}
}

// EnsureFields normalizes u in place. A maximum <= 0 counts as missing and is
// filled with a default; the current value is seeded from it only when it is
// zero as well. Current values are then clamped into [0, max]. Calling it
// again changes nothing.
func EnsureFields(u *Unit) {
	if u == nil {
		return
	}
	if u.MaxHP <= 0 {
		u.MaxHP = max(DefaultMaxHP, u.HP)
		if u.HP == 0 && !u.Dead {
			u.HP = u.MaxHP
		}
	}
	if u.MPMax <= 0 {
		u.MPMax = max(DefaultMPMax, u.MP)
		if u.MP == 0 {
			u.MP = u.MPMax
		}
	}
	if u.APMax <= 0 {
		u.APMax = max(DefaultAPMax, u.AP)
		if u.AP == 0 {
			u.AP = u.APMax
		}
	}
	u.HP = clampInt(u.HP, 0, u.MaxHP)
	u.MP = clampInt(u.MP, 0, u.MPMax)
	u.AP = clampInt(u.AP, 0, u.APMax)
	if u.ArmorPoints < 0 {
		u.ArmorPoints = 0
	}
	if u.TempArmorBonus < 0 {
		u.TempArmorBonus = 0
	}
	if u.ArmorClass == "" {
		u.ArmorClass = DefaultArmorClass
	}
	if len(u.Weapons) == 0 {
		u.Weapons = []string{DefaultWeaponID}
	}
	if u.ActiveWeapon < 0 || u.ActiveWeapon >= len(u.Weapons) {
		u.ActiveWeapon = 0
	}
	if u.ID == "" {
		u.ID = firstNonEmpty(u.UnitID, u.UUID, u.NetID)
	}
}

// CanSpend reports whether u holds at least amount of kind.
func CanSpend(u *Unit, kind ResourceKind, amount int) bool {
	if u == nil || amount < 0 {
		return false
	}
	return *pool(u, kind) >= amount
}

// Spend deducts amount from the pool, clamping at zero. It reports whether
// the full amount was available.
func Spend(u *Unit, kind ResourceKind, amount int) bool {
	if u == nil || amount < 0 {
		return false
	}
	p := pool(u, kind)
	full := *p >= amount
	*p = max(0, *p-amount)
	return full
}

// Refund gives back amount of a spent resource, capped at its maximum.
func Refund(u *Unit, kind ResourceKind, amount int) {
	if u == nil || amount <= 0 {
		return
	}
	p := pool(u, kind)
	*p = min(limit(u, kind), *p+amount)
}

// ResetForNewTurn restores MP and AP and clears per-turn status.
func ResetForNewTurn(u *Unit) {
	if u == nil {
		return
	}
	u.MP = u.MPMax
	u.AP = u.APMax
	u.TempArmorBonus = 0
	u.Defending = false
	u.AttackedThisTurn = false
}

func pool(u *Unit, kind ResourceKind) *int {
	switch kind {
	case ResourceMP:
		return &u.MP
	case ResourceAP:
		return &u.AP
	default:
		return &u.HP
	}
}

func limit(u *Unit, kind ResourceKind) int {
	switch kind {
	case ResourceMP:
		return u.MPMax
	case ResourceAP:
		return u.APMax
	default:
		return u.MaxHP
	}
}

// Field aliases accepted at the ingestion boundary, most preferred first.
var (
	aliasName    = []string{"name", "type", "kind"}
	aliasOwner   = []string{"owner", "factionOrOwner", "faction", "playerId"}
	aliasQ       = []string{"q", "col", "x"}
	aliasR       = []string{"r", "row", "y"}
	aliasHP      = []string{"hp", "health"}
	aliasMaxHP   = []string{"maxHp", "maxHP", "hpMax", "maxHealth"}
	aliasMP      = []string{"mp", "movementPoints", "movePoints"}
	aliasMPMax   = []string{"mpMax", "maxMp", "maxMP", "movementPointsMax", "maxMovementPoints"}
	aliasAP      = []string{"ap", "actionPoints"}
	aliasAPMax   = []string{"apMax", "maxAp", "maxAP", "actionPointsMax", "maxActionPoints"}
	aliasArmor   = []string{"armorPoints", "armor"}
	aliasActive  = []string{"activeWeaponIndex", "activeWeapon"}
	aliasAI      = []string{"ai", "isAI", "aiControlled"}
	aliasDead    = []string{"isDead", "dead"}
	aliasTempArm = []string{"tempArmorBonus", "tempArmor"}
)

// DecodeUnitRecord converts a loosely-typed unit record (decoded JSON or YAML)
// into a canonical Unit and normalizes it once. Missing current values take
// their maximum; missing maxima take the current value or a default.
func DecodeUnitRecord(raw map[string]any) (*Unit, error) {
	if raw == nil {
		return nil, fmt.Errorf("decode unit: nil record")
	}
	u := &Unit{
		ID:     str(raw, "id"),
		UnitID: str(raw, "unitId"),
		UUID:   str(raw, "uuid"),
		NetID:  str(raw, "netId"),
		Name:   str(raw, aliasName...),
		Owner:  str(raw, aliasOwner...),
	}
	posRaw := raw
	if pos, ok := raw["pos"].(map[string]any); ok {
		posRaw = pos
	}
	q, err := intOr(posRaw, 0, aliasQ...)
	if err != nil {
		return nil, err
	}
	r, err := intOr(posRaw, 0, aliasR...)
	if err != nil {
		return nil, err
	}
	u.Pos = hex.C(q, r)

	if u.HP, u.MaxHP, err = pair(raw, aliasHP, aliasMaxHP); err != nil {
		return nil, err
	}
	if u.MP, u.MPMax, err = pair(raw, aliasMP, aliasMPMax); err != nil {
		return nil, err
	}
	if u.AP, u.APMax, err = pair(raw, aliasAP, aliasAPMax); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst  *int
		keys []string
	}{
		{&u.ArmorPoints, aliasArmor},
		{&u.TempArmorBonus, aliasTempArm},
		{&u.ActiveWeapon, aliasActive},
	} {
		if *f.dst, err = intOr(raw, 0, f.keys...); err != nil {
			return nil, err
		}
	}
	u.ArmorClass = ArmorClass(str(raw, "armorClass"))
	u.AIControlled = boolOf(raw, aliasAI...)
	u.Dead = boolOf(raw, aliasDead...)
	if str(raw, "mover") == "naval" || boolOf(raw, "naval") {
		u.Mover = MoverNaval
	}
	switch ws := raw["weapons"].(type) {
	case []any:
		for _, w := range ws {
			if s, ok := w.(string); ok && s != "" {
				u.Weapons = append(u.Weapons, s)
			}
		}
	case []string:
		u.Weapons = append(u.Weapons, ws...)
	}
	if w := str(raw, "weapon", "weaponId"); w != "" && len(u.Weapons) == 0 {
		u.Weapons = []string{w}
	}

	EnsureFields(u)
	assignID(u)
	return u, nil
}

// pair decodes a current/max pair, filling whichever side is missing.
func pair(raw map[string]any, curKeys, maxKeys []string) (cur, mx int, err error) {
	c, hasCur, err := intField(raw, curKeys...)
	if err != nil {
		return 0, 0, err
	}
	m, hasMax, err := intField(raw, maxKeys...)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case hasCur && hasMax:
		return c, m, nil
	case hasMax:
		return m, m, nil
	case hasCur:
		return c, c, nil
	default:
		return 0, 0, nil
	}
}

func intField(raw map[string]any, keys ...string) (int, bool, error) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int:
			return n, true, nil
		case int64:
			return int(n), true, nil
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return 0, false, fmt.Errorf("decode unit: field %q: %v is not an integer", k, n)
			}
			return int(n), true, nil
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return 0, false, fmt.Errorf("decode unit: field %q: %w", k, err)
			}
			return int(i), true, nil
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return 0, false, fmt.Errorf("decode unit: field %q: %w", k, err)
			}
			return i, true, nil
		default:
			return 0, false, fmt.Errorf("decode unit: field %q has type %T", k, v)
		}
	}
	return 0, false, nil
}

func intOr(raw map[string]any, def int, keys ...string) (int, error) {
	v, ok, err := intField(raw, keys...)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func str(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolOf(raw map[string]any, keys ...string) bool {
	for _, k := range keys {
		if b, ok := raw[k].(bool); ok {
			return b
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
