package board

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/hexfront/internal/game"
)

const (
	panelWidth     = 360
	panelMaxLines  = 80
	panelLineH     = 14
	panelTitleH    = 18
	panelHighlight = 3 // newest entries drawn on a highlighted row
)

// JournalPanel is a ring buffer of recent journal entries drawn beside the
// board. It is fed through Journal.Tap.
type JournalPanel struct {
	entries []game.JournalEntry
	head    int
	count   int
}

// NewJournalPanel creates a panel with a fixed capacity.
func NewJournalPanel() *JournalPanel {
	return &JournalPanel{entries: make([]game.JournalEntry, panelMaxLines)}
}

// Add appends an entry, overwriting the oldest once full.
func (p *JournalPanel) Add(e game.JournalEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % panelMaxLines
	if p.count < panelMaxLines {
		p.count++
	}
}

// Recent returns entries oldest first.
func (p *JournalPanel) Recent() []game.JournalEntry {
	out := make([]game.JournalEntry, p.count)
	for i := 0; i < p.count; i++ {
		out[i] = p.entries[(p.head-p.count+i+panelMaxLines)%panelMaxLines]
	}
	return out
}

// Text renders the buffered entries one per line, for the clipboard.
func (p *JournalPanel) Text() string {
	var sb strings.Builder
	for _, e := range p.Recent() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func categoryColor(cat string) color.RGBA {
	switch cat {
	case game.CatCombat, game.CatAbility:
		return color.RGBA{R: 220, G: 90, B: 70, A: 255}
	case game.CatMove:
		return color.RGBA{R: 90, G: 170, B: 230, A: 255}
	case game.CatHazard:
		return color.RGBA{R: 170, G: 220, B: 60, A: 255}
	case game.CatTurn:
		return color.RGBA{R: 230, G: 210, B: 90, A: 255}
	case game.CatDrop, game.CatNet:
		return color.RGBA{R: 200, G: 120, B: 220, A: 255}
	default:
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
}

// Draw renders the panel at panelX, full height.
func (p *JournalPanel) Draw(screen *ebiten.Image, t *textDrawer, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, panelWidth, float32(panelH), color.RGBA{R: 12, G: 12, B: 16, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1, color.RGBA{R: 60, G: 60, B: 80, A: 255}, false)
	vector.FillRect(screen, px, 0, panelWidth, panelTitleH, color.RGBA{R: 24, G: 24, B: 34, A: 255}, false)
	t.draw(screen, "JOURNAL  [C] copy", panelX+8, 3, colorText)

	entries := p.Recent()
	maxVisible := (panelH - panelTitleH - 6) / panelLineH
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	y := panelTitleH + 4
	for i, e := range entries {
		if i >= len(entries)-panelHighlight {
			vector.FillRect(screen, px+2, float32(y), panelWidth-4, panelLineH, color.RGBA{R: 34, G: 34, B: 48, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 6, categoryColor(e.Category), false)
		line := fmt.Sprintf("%3d %-8s %s %s", e.Turn, e.Unit, e.Key, e.Value)
		t.draw(screen, truncate(line, 52), panelX+12, y, colorText)
		y += panelLineH
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
