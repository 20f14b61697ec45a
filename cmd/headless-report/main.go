package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/hexfront/internal/catalog"
	"github.com/Garsondee/hexfront/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64
	scenario string

	winner string
	turns  int

	firstHitTurn  int
	firstKillTurn int

	hits          int
	kills         int
	damage        float64
	moves         int
	abilityEffect int
	hazardTicks   int
	defends       int
	aiStuck       int
	aiRefused     int
	dropped       int

	totals    map[string]int
	survivors map[string]int
	damageBy  map[string]float64

	summary string
}

func main() {
	var runs int
	var rounds int
	var seedBase int64
	var seedStep int64
	var scenario string
	var catalogDir string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless AI-vs-AI runs")
	flag.IntVar(&rounds, "rounds", 40, "maximum rounds per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base terrain seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "skirmish", "scenario name, or \"all\"")
	flag.StringVar(&catalogDir, "catalog", "", "catalog directory (default: embedded)")
	flag.BoolVar(&verbose, "verbose", false, "print the full journal of every run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	if rounds <= 0 {
		fmt.Println("error: -rounds must be > 0")
		os.Exit(2)
	}

	cat, err := loadCatalog(catalogDir)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	names := []string{scenario}
	if scenario == "all" {
		names = cat.ScenarioNames()
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("scenarios=%s runs=%d rounds=%d seed_base=%d seed_step=%d\n\n",
		strings.Join(names, ","), runs, rounds, seedBase, seedStep)

	for _, name := range names {
		sc, err := cat.Scenario(name)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
		all := make([]runStats, 0, runs)
		for i := 0; i < runs; i++ {
			seed := seedBase + int64(i)*seedStep
			rs, m, err := runScenario(cat, sc, i+1, seed, rounds)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				os.Exit(1)
			}
			all = append(all, rs)
			printRun(rs)
			if verbose {
				fmt.Print(m.Journal.Format())
				fmt.Println()
			}
		}
		printAggregate(name, all)
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(dir)
}

// runScenario plays one match with every participant under AI control.
func runScenario(cat *catalog.Catalog, sc *catalog.Scenario, runIndex int, seed int64, rounds int) (runStats, *game.Match, error) {
	rotation := make([]game.Participant, len(sc.Participants))
	for i, p := range sc.Participants {
		rotation[i] = game.Participant{ID: p.ID, AI: true}
	}
	m, err := sc.NewMatch(cat, game.WithSeed(seed), game.WithRotation(rotation...))
	if err != nil {
		return runStats{}, nil, err
	}
	m.Start()
	m.RunRounds(rounds)
	return collectStats(m, runIndex, seed, sc.Name), m, nil
}

func collectStats(m *game.Match, runIndex int, seed int64, scenario string) runStats {
	j := m.Journal
	w := m.World
	winner, _ := w.Winner()
	totals, survivors := teamSurvivalCounts(w)

	damageBy := map[string]float64{}
	for _, e := range j.Filter(game.CatCombat, "hit") {
		damageBy[e.Owner] += e.NumVal
	}

	return runStats{
		runIndex:      runIndex,
		seed:          seed,
		scenario:      scenario,
		winner:        winner,
		turns:         w.TurnNumber,
		firstHitTurn:  firstTurn(j.Entries(), game.CatCombat, "hit", ""),
		firstKillTurn: firstKill(j.Entries()),
		hits:          j.CountCategory(game.CatCombat, "hit"),
		kills:         j.CountCategory(game.CatCombat, "killed") + j.CountCategory(game.CatAbility, "killed") + j.CountCategory(game.CatHazard, "killed"),
		damage:        j.SumCategory(game.CatCombat, "hit"),
		moves:         j.CountCategory(game.CatMove, "commit"),
		abilityEffect: j.CountCategory(game.CatAbility, "effect"),
		hazardTicks:   j.CountCategory(game.CatHazard, "tick"),
		defends:       j.CountCategory(game.CatCombat, "defend"),
		aiStuck:       j.CountCategory(game.CatAI, "stuck"),
		aiRefused:     j.CountCategory(game.CatAI, "attack_refused"),
		dropped:       j.CountCategory(game.CatDrop, ""),
		totals:        totals,
		survivors:     survivors,
		damageBy:      damageBy,
		summary:       j.Summary(w),
	}
}

// teamSurvivalCounts tallies units and living units per owner.
func teamSurvivalCounts(w *game.WorldState) (totals, survivors map[string]int) {
	totals = map[string]int{}
	survivors = map[string]int{}
	for _, p := range w.Rotation {
		totals[p.ID] = 0
		survivors[p.ID] = 0
	}
	for _, u := range w.Units {
		totals[u.Owner]++
		if u.Alive() {
			survivors[u.Owner]++
		}
	}
	return totals, survivors
}

func firstTurn(entries []game.JournalEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Turn
		}
	}
	return -1
}

func firstKill(entries []game.JournalEntry) int {
	for _, e := range entries {
		if e.Key == "killed" {
			return e.Turn
		}
	}
	return -1
}

// detectStalemate flags runs that ran out of rounds with every side mostly
// intact.
func detectStalemate(rs runStats) (bool, string) {
	if rs.winner != "" {
		return false, "winner=" + rs.winner
	}
	var reasons []string
	mutual := true
	for owner, total := range rs.totals {
		if total == 0 || rs.survivors[owner]*2 < total {
			mutual = false
		}
	}
	if mutual {
		reasons = append(reasons, "high_mutual_survival")
	}
	if rs.kills == 0 {
		reasons = append(reasons, "no_kills")
	}
	if rs.hits == 0 {
		reasons = append(reasons, "no_contact")
	}
	if rs.aiStuck > 0 && rs.aiStuck >= rs.moves {
		reasons = append(reasons, "ai_stuck")
	}
	if len(reasons) == 0 {
		return false, "attrition"
	}
	return mutual || rs.hits == 0, strings.Join(reasons, ",")
}

func printRun(rs runStats) {
	fmt.Printf("--- %s run %d (seed=%d) ---\n", rs.scenario, rs.runIndex, rs.seed)
	winner := rs.winner
	if winner == "" {
		winner = "none"
	}
	fmt.Printf("outcome: winner=%s turns=%d first_hit=%d first_kill=%d\n",
		winner, rs.turns, rs.firstHitTurn, rs.firstKillTurn)
	fmt.Printf("event_totals: hits=%d kills=%d damage=%.0f moves=%d ability_effects=%d hazard_ticks=%d defends=%d\n",
		rs.hits, rs.kills, rs.damage, rs.moves, rs.abilityEffect, rs.hazardTicks, rs.defends)
	fmt.Printf("ai: stuck=%d attack_refused=%d dropped_events=%d\n", rs.aiStuck, rs.aiRefused, rs.dropped)
	for _, owner := range sortedKeys(rs.totals) {
		fmt.Printf("  %-8s survivors=%d/%d damage_dealt=%.0f\n",
			owner, rs.survivors[owner], rs.totals[owner], rs.damageBy[owner])
	}
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", reason)
	}
	fmt.Print(rs.summary)
	fmt.Println()
}

func printAggregate(scenario string, all []runStats) {
	wins := map[string]int{}
	survivors := map[string]int{}
	totals := map[string]int{}
	damage := map[string]float64{}
	totalHits, totalKills, totalMoves, totalTurns, stalemates := 0, 0, 0, 0, 0
	hitTurns := make([]int, 0, len(all))
	killTurns := make([]int, 0, len(all))

	for _, rs := range all {
		if rs.winner != "" {
			wins[rs.winner]++
		}
		for owner, n := range rs.totals {
			totals[owner] += n
			survivors[owner] += rs.survivors[owner]
			damage[owner] += rs.damageBy[owner]
		}
		totalHits += rs.hits
		totalKills += rs.kills
		totalMoves += rs.moves
		totalTurns += rs.turns
		if rs.firstHitTurn >= 0 {
			hitTurns = append(hitTurns, rs.firstHitTurn)
		}
		if rs.firstKillTurn >= 0 {
			killTurns = append(killTurns, rs.firstKillTurn)
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
	}

	fmt.Printf("=== Aggregate: %s ===\n", scenario)
	fmt.Printf("runs=%d stalemates=%d avg_turns=%.1f\n", len(all), stalemates, avg(totalTurns, len(all)))
	fmt.Printf("avg_events_per_run: hits=%.1f kills=%.1f moves=%.1f\n",
		avg(totalHits, len(all)), avg(totalKills, len(all)), avg(totalMoves, len(all)))
	fmt.Printf("phase_marker_avg_turns: first_hit=%s first_kill=%s\n", avgTurnString(hitTurns), avgTurnString(killTurns))
	for _, owner := range sortedKeys(totals) {
		survRate := 0.0
		if totals[owner] > 0 {
			survRate = float64(survivors[owner]) / float64(totals[owner]) * 100
		}
		fmt.Printf("  %-8s wins=%d survival=%.0f%% avg_damage=%.1f\n",
			owner, wins[owner], survRate, damage[owner]/float64(max(len(all), 1)))
	}
	fmt.Println()
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTurnString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
