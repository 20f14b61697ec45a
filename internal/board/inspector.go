package board

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/hex"
)

const (
	inspWidth = 210
	inspPad   = 4
	inspLineH = 14
)

// inspector shows the selected unit. raw toggles between the curated view
// and a field dump.
type inspector struct {
	raw bool
}

// inspectorLines builds the text rows for u. hover, when valid, adds an
// attack preview against the unit standing there.
func inspectorLines(s *game.Session, u *game.Unit, raw bool, hover hex.Coord, hoverOK bool) []string {
	if raw {
		return []string{
			fmt.Sprintf("id=%s uid=%s net=%s", u.ID, u.UnitID, u.NetID),
			fmt.Sprintf("owner=%s mover=%s", u.Owner, u.Mover),
			fmt.Sprintf("pos=%v", u.Pos),
			fmt.Sprintf("hp=%d/%d mp=%d/%d ap=%d/%d", u.HP, u.MaxHP, u.MP, u.MPMax, u.AP, u.APMax),
			fmt.Sprintf("armor=%d+%d class=%s", u.ArmorPoints, u.TempArmorBonus, u.ArmorClass),
			fmt.Sprintf("weapons=%v active=%d", u.Weapons, u.ActiveWeapon),
			fmt.Sprintf("def=%v atk=%v ai=%v", u.Defending, u.AttackedThisTurn, u.AIControlled),
		}
	}

	lines := []string{
		fmt.Sprintf("HP %d/%d  MP %d/%d  AP %d/%d", u.HP, u.MaxHP, u.MP, u.MPMax, u.AP, u.APMax),
		fmt.Sprintf("armor %d (%s)", u.EffectiveArmor(), u.ArmorClass),
	}
	if w, ok := s.Resolver.Weapon(u, ""); ok {
		lines = append(lines, fmt.Sprintf("weapon %s  rng %d-%d", w.ID, w.RangeMin, w.RangeMax))
	}
	if u.Defending {
		lines = append(lines, "guarding")
	}
	if h := u.LastHit; h != nil {
		lines = append(lines, fmt.Sprintf("hit by %s for %d (t%d)", h.AttackerID, h.Damage, h.Turn))
	}
	if !hoverOK {
		return lines
	}
	if target := s.World.UnitAt(hover); target != nil && target.Owner != u.Owner {
		out, v := s.Resolver.Resolve(u, target, "")
		if v.OK {
			lines = append(lines, fmt.Sprintf("vs %s: %d dmg at %d", target.ID, out.Damage, out.Distance))
		} else {
			lines = append(lines, fmt.Sprintf("vs %s: %s", target.ID, v.Reason))
		}
	}
	return lines
}

func (in *inspector) draw(screen *ebiten.Image, s *game.Session, u *game.Unit, hover hex.Coord, hoverOK bool, x, y int) {
	if u == nil {
		return
	}
	lines := inspectorLines(s, u, in.raw, hover, hoverOK)
	h := float32(inspPad*2 + inspLineH*(len(lines)+1))
	border := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, float32(x), float32(y), inspWidth, h, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(screen, float32(x), float32(y), inspWidth, h, 1, border, false)

	view := "curated"
	if in.raw {
		view = "raw"
	}
	lx, ly := x+inspPad, y+inspPad
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[ %s %s ] %s [I]", u.Owner, u.ID, view), lx, ly)
	for _, l := range lines {
		ly += inspLineH
		ebitenutil.DebugPrintAt(screen, truncate(l, 34), lx, ly)
	}
}
