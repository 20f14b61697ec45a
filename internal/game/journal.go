package game

import (
	"fmt"
	"strings"
)

// Journal categories.
const (
	CatMove    = "move"
	CatCombat  = "combat"
	CatAbility = "ability"
	CatTurn    = "turn"
	CatHazard  = "hazard"
	CatAI      = "ai"
	CatNet     = "net"
	CatDrop    = "drop" // events dropped without mutation
)

// JournalEntry is one recorded match event.
type JournalEntry struct {
	Turn     int     `json:"turn"`
	Unit     string  `json:"unit"`  // unit id, or "--" for global events
	Owner    string  `json:"owner"` // participant id, or "--"
	Category string  `json:"category"`
	Key      string  `json:"key"`
	Value    string  `json:"value"`
	NumVal   float64 `json:"num,omitempty"`
}

// String formats the entry as a fixed-width log line.
//
//	[T=004] u-red-1   combat   hit             -> u-blue-2 for 7
func (e JournalEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-9s %-8s %-15s %s",
		e.Turn, e.Unit, e.Category, e.Key, e.Value)
}

// Journal collects structured match events. It is unbounded and
// machine-readable; the board keeps its own bounded tail for display.
// A nil *Journal discards everything.
type Journal struct {
	entries []JournalEntry
	verbose bool
	// Tap, when set, sees every recorded entry.
	Tap func(JournalEntry)
}

// NewJournal creates a Journal. Verbose adds per-step movement detail.
func NewJournal(verbose bool) *Journal {
	return &Journal{verbose: verbose}
}

// Add records a new entry.
func (j *Journal) Add(turn int, unit, owner, category, key, value string, numVal float64) {
	if j == nil {
		return
	}
	if unit == "" {
		unit = "--"
	}
	if owner == "" {
		owner = "--"
	}
	e := JournalEntry{
		Turn:     turn,
		Unit:     unit,
		Owner:    owner,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	j.entries = append(j.entries, e)
	if j.Tap != nil {
		j.Tap(e)
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (j *Journal) AddVerbose(turn int, unit, owner, category, key, value string, numVal float64) {
	if j == nil || !j.verbose {
		return
	}
	j.Add(turn, unit, owner, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (j *Journal) Entries() []JournalEntry {
	if j == nil {
		return nil
	}
	return j.entries
}

// Len is the number of entries recorded.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (j *Journal) Filter(category, key string) []JournalEntry {
	var out []JournalEntry
	for _, e := range j.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for one unit id.
func (j *Journal) FilterUnit(id string) []JournalEntry {
	var out []JournalEntry
	for _, e := range j.Entries() {
		if e.Unit == id {
			out = append(out, e)
		}
	}
	return out
}

// FilterTurnRange returns entries within [from, to] inclusive.
func (j *Journal) FilterTurnRange(from, to int) []JournalEntry {
	var out []JournalEntry
	for _, e := range j.Entries() {
		if e.Turn >= from && e.Turn <= to {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (j *Journal) CountCategory(category, key string) int {
	return len(j.Filter(category, key))
}

// SumCategory adds up NumVal over entries matching category and key.
func (j *Journal) SumCategory(category, key string) float64 {
	total := 0.0
	for _, e := range j.Filter(category, key) {
		total += e.NumVal
	}
	return total
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (j *Journal) LastOf(category, key string) (JournalEntry, bool) {
	entries := j.Filter(category, key)
	if len(entries) == 0 {
		return JournalEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (j *Journal) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range j.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full journal as text, one entry per line.
func (j *Journal) Format() string {
	return formatEntries(j.Entries())
}

// FormatRange returns the entries of a turn range as text.
func (j *Journal) FormatRange(from, to int) string {
	return formatEntries(j.FilterTurnRange(from, to))
}

func formatEntries(entries []JournalEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the match state.
func (j *Journal) Summary(w *WorldState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at turn %d (owner %s) ---\n", w.TurnNumber, w.TurnOwner)
	for _, p := range w.Rotation {
		units := w.UnitsOf(p.ID)
		hp := 0
		for _, u := range units {
			hp += u.HP
		}
		fmt.Fprintf(&sb, "%-8s alive=%d  hp=%d\n", p.ID, len(units), hp)
	}
	fmt.Fprintf(&sb, "Attacks: %d  kills: %d  moves: %d  hazard ticks: %d\n",
		j.CountCategory(CatCombat, "hit"),
		j.CountCategory(CatCombat, "killed")+j.CountCategory(CatHazard, "killed")+j.CountCategory(CatAbility, "killed"),
		j.CountCategory(CatMove, "commit"),
		j.CountCategory(CatHazard, "tick"))
	if n := j.CountCategory(CatDrop, ""); n > 0 {
		fmt.Fprintf(&sb, "Dropped events: %d\n", n)
	}
	return sb.String()
}
