// Package board is the ebiten front end: it draws the hex map, turns mouse
// and keyboard input into session actions and animates committed moves.
package board

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/hex"
)

const (
	hexSize     = 28
	boardMargin = 24
	hudHeight   = 54
	stepFrames  = 8 // frames per hex while a unit walks
)

// Drainer feeds network traffic into the session once per frame.
type Drainer interface {
	Drain() (int, error)
}

// Board implements ebiten.Game on top of a session.
type Board struct {
	Session *game.Session
	Journal *game.Journal
	Net     Drainer

	// HotSeat lets the board act for whichever human holds the turn.
	HotSeat bool

	layout Layout
	panel  *JournalPanel
	text   *textDrawer
	insp   inspector

	selected   string
	hover      hex.Coord
	hoverOK    bool
	abilityIdx int
	status     string
	netDown    bool

	walks   map[string]*walk
	holding bool

	width, height int
	boardW        int
	prevKeys      map[ebiten.Key]bool
	prevLeft      bool
	prevRight     bool

	copyText func(string) error
}

// walk is one in-flight move animation.
type walk struct {
	path   []hex.Coord
	frame  int
	onDone func()
}

// New builds a board for s and installs itself as the session's step
// mover and as a journal tap.
func New(s *game.Session, j *game.Journal) *Board {
	b := &Board{
		Session:  s,
		Journal:  j,
		layout:   Layout{Size: hexSize, OriginX: boardMargin + hexSize, OriginY: boardMargin + hexSize},
		panel:    NewJournalPanel(),
		text:     newTextDrawer(),
		walks:    make(map[string]*walk),
		prevKeys: make(map[ebiten.Key]bool),
		copyText: clipboard.WriteAll,
	}
	s.Mover = b
	if j != nil {
		prev := j.Tap
		j.Tap = func(e game.JournalEntry) {
			if prev != nil {
				prev(e)
			}
			b.panel.Add(e)
		}
	}
	tiles := s.World.Tiles
	bw, bh := b.layout.Bounds(tiles.Cols, tiles.Rows)
	b.boardW = bw + boardMargin
	b.width = b.boardW + panelWidth
	b.height = max(bh+boardMargin+hudHeight, 480)
	return b
}

// StartStepMovement implements game.StepMover. The turn stays locked
// until every walk has finished.
func (b *Board) StartStepMovement(u *game.Unit, path []hex.Coord, onComplete func()) {
	if len(path) < 2 {
		if onComplete != nil {
			onComplete()
		}
		return
	}
	b.walks[u.ID] = &walk{path: path, onDone: onComplete}
	b.syncLock()
}

// Animating reports whether any move is still being walked.
func (b *Board) Animating() bool { return len(b.walks) > 0 }

func (b *Board) advanceWalks() {
	for id, wk := range b.walks {
		wk.frame++
		if wk.frame >= (len(wk.path)-1)*stepFrames {
			delete(b.walks, id)
			if wk.onDone != nil {
				wk.onDone()
			}
		}
	}
	b.syncLock()
}

// syncLock holds the scheduler lock exactly while walks are running.
// EndTurn releases its own lock on return, so it is re-taken each frame.
func (b *Board) syncLock() {
	sch := b.Session.Scheduler
	switch {
	case len(b.walks) > 0:
		sch.Lock()
		b.holding = true
	case b.holding:
		sch.Unlock()
		b.holding = false
	}
}

// actor is the participant input acts for.
func (b *Board) actor() string {
	w := b.Session.World
	if b.HotSeat && !w.IsAI(w.TurnOwner) {
		return w.TurnOwner
	}
	return b.Session.LocalID
}

func (b *Board) selectedUnit() *game.Unit {
	u := b.Session.World.UnitByID(b.selected)
	if !u.Alive() {
		return nil
	}
	return u
}

// Click handles a left click on c.
func (b *Board) Click(c hex.Coord) {
	s := b.Session
	w := s.World
	if b.Animating() {
		return
	}
	if s.Targeting.Active() {
		res := s.ConfirmTarget(context.Background(), c)
		b.report("target", res)
		return
	}
	if u := w.UnitAt(c); u != nil && u.Owner == b.actor() {
		b.selected = u.ID
		b.status = ""
		return
	}
	sel := b.selectedUnit()
	if sel == nil {
		b.selected = ""
		if u := w.UnitAt(c); u != nil {
			b.selected = u.ID
		}
		return
	}
	if target := w.UnitAt(c); target != nil {
		res := s.RequestAttack(context.Background(), sel, target, "")
		b.report("attack", res)
		return
	}
	res := s.Move(sel, c)
	if !res.OK {
		b.status = fmt.Sprintf("move: %s", res.Reason)
	} else {
		b.status = fmt.Sprintf("moved %d hexes for %d MP", len(res.Path)-1, res.Spent)
	}
}

// Cancel leaves targeting, or clears the selection when not targeting.
func (b *Board) Cancel() {
	if b.Session.Targeting.Active() {
		b.Session.CancelTargeting()
		b.status = "targeting cancelled"
		return
	}
	b.selected = ""
}

// BeginAttack enters attack targeting for the selected unit.
func (b *Board) BeginAttack() {
	if !b.Session.BeginAttackTargeting(b.selectedUnit()) {
		b.status = "cannot attack now"
	}
}

// BeginAbility enters ability targeting with the current ability.
func (b *Board) BeginAbility() {
	id := b.currentAbility()
	if id == "" || !b.Session.BeginAbilityTargeting(b.selectedUnit(), id) {
		b.status = "cannot cast now"
	}
}

func (b *Board) abilityIDs() []string {
	if lister, ok := b.Session.Abilities.(interface{ IDs() []string }); ok {
		return lister.IDs()
	}
	return nil
}

func (b *Board) currentAbility() string {
	ids := b.abilityIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[b.abilityIdx%len(ids)]
}

// NextAbility cycles the ability used by BeginAbility.
func (b *Board) NextAbility() {
	if n := len(b.abilityIDs()); n > 0 {
		b.abilityIdx = (b.abilityIdx + 1) % n
		b.status = "ability: " + b.currentAbility()
	}
}

// Defend spends AP on the selected unit's guard.
func (b *Board) Defend() {
	b.report("defend", b.Session.Defend(context.Background(), b.selectedUnit()))
}

// CycleWeapon switches the selected unit's active weapon.
func (b *Board) CycleWeapon() {
	if u := b.selectedUnit(); u != nil && u.Owner == b.actor() {
		u.CycleWeapon()
		b.status = "weapon: " + u.ActiveWeaponID()
	}
}

// EndTurn ends the acting participant's turn.
func (b *Board) EndTurn() {
	if b.Animating() {
		b.status = "end turn: units still moving"
		return
	}
	res := b.Session.EndTurn(b.actor())
	b.report("end turn", res)
	if res.OK {
		b.selected = ""
	}
}

// CopyJournal puts the journal tail on the system clipboard.
func (b *Board) CopyJournal() {
	if err := b.copyText(b.panel.Text()); err != nil {
		b.status = "copy failed: " + err.Error()
		return
	}
	b.status = fmt.Sprintf("copied %d journal lines", len(b.panel.Recent()))
}

func (b *Board) report(what string, res game.ActionResult) {
	switch {
	case res.Err != nil:
		b.status = fmt.Sprintf("%s: %v", what, res.Err)
	case !res.OK:
		b.status = fmt.Sprintf("%s: %s", what, res.Reason)
	default:
		b.status = what + ": ok"
	}
}

// Update implements ebiten.Game.
func (b *Board) Update() error {
	if b.Net != nil && !b.netDown {
		if _, err := b.Net.Drain(); err != nil {
			log.Printf("board: network: %v", err)
			b.status = "disconnected from relay"
			b.netDown = true
		}
	}
	b.advanceWalks()
	b.handleInput()
	return nil
}

func (b *Board) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !b.prevKeys[k]
}

func (b *Board) handleInput() {
	cur := map[ebiten.Key]bool{}
	mx, my := ebiten.CursorPosition()
	b.hover = b.layout.PixelToHex(float64(mx), float64(my))
	b.hoverOK = b.Session.World.Tiles.InBounds(b.hover)

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !b.prevLeft && b.hoverOK {
		b.Click(b.hover)
	}
	b.prevLeft = left
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !b.prevRight {
		b.Cancel()
	}
	b.prevRight = right

	if b.pressed(cur, ebiten.KeyEscape) {
		b.Cancel()
	}
	if b.pressed(cur, ebiten.KeyA) {
		b.BeginAttack()
	}
	if b.pressed(cur, ebiten.KeyF) {
		b.BeginAbility()
	}
	if b.pressed(cur, ebiten.KeyQ) {
		b.NextAbility()
	}
	if b.pressed(cur, ebiten.KeyG) {
		b.Defend()
	}
	if b.pressed(cur, ebiten.KeyW) {
		b.CycleWeapon()
	}
	if b.pressed(cur, ebiten.KeyEnter) {
		b.EndTurn()
	}
	if b.pressed(cur, ebiten.KeyC) {
		b.CopyJournal()
	}
	if b.pressed(cur, ebiten.KeyI) {
		b.insp.raw = !b.insp.raw
	}
	b.prevKeys = cur
}

// Layout implements ebiten.Game.
func (b *Board) Layout(_, _ int) (int, int) { return b.width, b.height }

// Size returns the window size the board wants.
func (b *Board) Size() (int, int) { return b.width, b.height }

// Draw implements ebiten.Game.
func (b *Board) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 18, G: 20, B: 24, A: 255})
	b.drawTiles(screen)
	b.drawHazards(screen)
	b.drawHighlights(screen)
	b.drawPathPreview(screen)
	b.drawUnits(screen)
	b.drawHUD(screen)
	b.insp.draw(screen, b.Session, b.selectedUnit(), b.hover, b.hoverOK, b.boardW-inspWidth-8, 4)
	b.panel.Draw(screen, b.text, b.boardW, b.height)
}

func terrainColor(t *game.Tile) color.RGBA {
	var c color.RGBA
	switch t.Terrain {
	case game.TerrainPlains:
		c = color.RGBA{R: 150, G: 160, B: 90, A: 255}
	case game.TerrainSand:
		c = color.RGBA{R: 205, G: 185, B: 120, A: 255}
	case game.TerrainSnow:
		c = color.RGBA{R: 225, G: 230, B: 235, A: 255}
	case game.TerrainSwamp:
		c = color.RGBA{R: 80, G: 100, B: 70, A: 255}
	case game.TerrainWater:
		c = color.RGBA{R: 50, G: 90, B: 160, A: 255}
	case game.TerrainMountain:
		c = color.RGBA{R: 110, G: 100, B: 95, A: 255}
	default:
		c = color.RGBA{R: 90, G: 140, B: 70, A: 255}
	}
	// Higher ground reads lighter.
	lift := min(max(t.Elevation, 0)*18, 60)
	c.R = brighten(c.R, lift)
	c.G = brighten(c.G, lift)
	c.B = brighten(c.B, lift)
	return c
}

func brighten(v uint8, by int) uint8 {
	return uint8(min(int(v)+by, 255))
}

func (b *Board) hexPath(c hex.Coord) *vector.Path {
	var p vector.Path
	corners := b.layout.Corners(c)
	p.MoveTo(corners[0][0], corners[0][1])
	for _, pt := range corners[1:] {
		p.LineTo(pt[0], pt[1])
	}
	p.Close()
	return &p
}

func (b *Board) fillHex(dst *ebiten.Image, c hex.Coord, clr color.Color) {
	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(clr)
	vector.FillPath(dst, b.hexPath(c), &vector.FillOptions{}, op)
}

func (b *Board) strokeHex(dst *ebiten.Image, c hex.Coord, width float32, clr color.Color) {
	corners := b.layout.Corners(c)
	for i := range corners {
		a, z := corners[i], corners[(i+1)%len(corners)]
		vector.StrokeLine(dst, a[0], a[1], z[0], z[1], width, clr, true)
	}
}

func (b *Board) drawTiles(screen *ebiten.Image) {
	outline := color.RGBA{R: 20, G: 30, B: 20, A: 160}
	for _, t := range b.Session.World.Tiles.Tiles() {
		b.fillHex(screen, t.Pos, terrainColor(t))
		if t.HasForest {
			cx, cy := b.layout.HexToPixel(t.Pos)
			tree := color.RGBA{R: 30, G: 80, B: 35, A: 255}
			for _, off := range [][2]float32{{-7, -4}, {6, -6}, {0, 6}} {
				vector.FillCircle(screen, float32(cx)+off[0], float32(cy)+off[1], 4, tree, true)
			}
		}
		b.strokeHex(screen, t.Pos, 1, outline)
	}
}

func (b *Board) drawHazards(screen *ebiten.Image) {
	for _, z := range b.Session.World.Hazards {
		for _, c := range hex.Within(z.Center, z.Radius) {
			if b.Session.World.Tiles.InBounds(c) {
				b.fillHex(screen, c, color.RGBA{R: 120, G: 160, B: 30, A: 90})
			}
		}
	}
}

func (b *Board) drawHighlights(screen *ebiten.Image) {
	s := b.Session
	if !s.Targeting.Active() {
		return
	}
	clr := color.RGBA{R: 230, G: 60, B: 60, A: 255}
	if s.Targeting.Mode == game.TargetAbility {
		clr = color.RGBA{R: 170, G: 90, B: 230, A: 255}
	}
	for _, c := range s.Highlights() {
		b.strokeHex(screen, c, 3, clr)
	}
}

// drawPathPreview shows where the selected unit would walk this turn,
// with the unaffordable remainder dimmed.
func (b *Board) drawPathPreview(screen *ebiten.Image) {
	u := b.selectedUnit()
	if u == nil || !b.hoverOK || b.Session.Targeting.Active() || b.Animating() || u.Owner != b.Session.World.TurnOwner {
		return
	}
	plan := game.PlanMove(b.Session.World, u, b.hover, game.PathOptions{})
	if len(plan.Full) < 2 {
		return
	}
	for i, c := range plan.Full[1:] {
		clr := color.RGBA{R: 255, G: 255, B: 255, A: 110}
		if i+2 > len(plan.Path) {
			clr = color.RGBA{R: 90, G: 90, B: 90, A: 90}
		}
		b.fillHex(screen, c, clr)
	}
}

var ownerPalette = []color.RGBA{
	{R: 210, G: 70, B: 70, A: 255},
	{R: 70, G: 110, B: 210, A: 255},
	{R: 220, G: 190, B: 60, A: 255},
	{R: 90, G: 190, B: 120, A: 255},
}

func (b *Board) ownerColor(owner string) color.RGBA {
	for i, p := range b.Session.World.Rotation {
		if p.ID == owner {
			return ownerPalette[i%len(ownerPalette)]
		}
	}
	return color.RGBA{R: 160, G: 160, B: 160, A: 255}
}

// unitPixel is where u is drawn, following its walk if one is running.
func (b *Board) unitPixel(u *game.Unit) (float32, float32) {
	wk, ok := b.walks[u.ID]
	if !ok {
		x, y := b.layout.HexToPixel(u.Pos)
		return float32(x), float32(y)
	}
	seg := wk.frame / stepFrames
	if seg >= len(wk.path)-1 {
		x, y := b.layout.HexToPixel(wk.path[len(wk.path)-1])
		return float32(x), float32(y)
	}
	f := float64(wk.frame%stepFrames) / stepFrames
	ax, ay := b.layout.HexToPixel(wk.path[seg])
	zx, zy := b.layout.HexToPixel(wk.path[seg+1])
	return float32(ax + (zx-ax)*f), float32(ay + (zy-ay)*f)
}

func (b *Board) drawUnits(screen *ebiten.Image) {
	for _, u := range b.Session.World.Units {
		if !u.Alive() {
			continue
		}
		x, y := b.unitPixel(u)
		r := float32(hexSize * 0.55)
		vector.FillCircle(screen, x, y, r, b.ownerColor(u.Owner), true)
		if u.ID == b.selected {
			vector.StrokeCircle(screen, x, y, r+3, 2, color.White, true)
		}
		if u.Defending {
			vector.StrokeCircle(screen, x, y, r+1, 2, colorWarn, true)
		}
		// HP bar under the token.
		frac := float32(u.HP) / float32(max(u.MaxHP, 1))
		vector.FillRect(screen, x-r, y+r+2, 2*r, 3, color.RGBA{R: 40, G: 40, B: 40, A: 220}, false)
		vector.FillRect(screen, x-r, y+r+2, 2*r*frac, 3, colorHealth, false)

		label := u.Name
		if label == "" {
			label = u.ID
		}
		label = truncate(label, 6)
		b.text.draw(screen, label, int(x)-b.text.width(label)/2, int(y)-6, color.White)
	}
}

func (b *Board) drawHUD(screen *ebiten.Image) {
	w := b.Session.World
	y := b.height - hudHeight + 6
	vector.FillRect(screen, 0, float32(y-6), float32(b.boardW), hudHeight, color.RGBA{R: 12, G: 12, B: 16, A: 240}, false)
	turn := fmt.Sprintf("Turn %d  %s to act", w.TurnNumber, w.TurnOwner)
	if w.TurnOwner == b.actor() {
		turn += " (you)"
	}
	if winner, over := w.Winner(); over {
		turn = "Match over: " + winner + " wins"
	}
	b.text.draw(screen, turn, 10, y, b.ownerColor(w.TurnOwner))
	keys := "[A]ttack [F]ability [Q]next [G]uard [W]eapon [Enter] end [Esc] cancel"
	if id := b.currentAbility(); id != "" {
		keys += "  ability=" + id
	}
	b.text.draw(screen, keys, 10, y+16, colorDim)
	if b.status != "" {
		b.text.draw(screen, b.status, 10, y+32, colorWarn)
	}
}
