package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/hexfront/internal/catalog"
	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/hex"
)

func TestTeamSurvivalCounts(t *testing.T) {
	m, err := game.NewMatch(
		game.WithGrid(6, 4),
		game.WithParticipant("red", true),
		game.WithParticipant("blue", true),
		game.WithUnit(&game.Unit{ID: "r1", Owner: "red", Pos: hex.C(0, 0)}),
		game.WithUnit(&game.Unit{ID: "r2", Owner: "red", Pos: hex.C(0, 1), HP: 0, Dead: true}),
		game.WithUnit(&game.Unit{ID: "b1", Owner: "blue", Pos: hex.C(5, 0)}),
	)
	if err != nil {
		t.Fatal(err)
	}

	totals, survivors := teamSurvivalCounts(m.World)
	if totals["red"] != 2 || totals["blue"] != 1 {
		t.Fatalf("expected totals red=2 blue=1, got %v", totals)
	}
	if survivors["red"] != 1 || survivors["blue"] != 1 {
		t.Fatalf("expected survivors red=1 blue=1, got %v", survivors)
	}
}

func TestDetectStalemate_TrueWhenMutualSurvival(t *testing.T) {
	rs := runStats{
		totals:    map[string]int{"red": 4, "blue": 4},
		survivors: map[string]int{"red": 3, "blue": 4},
		hits:      6,
		kills:     1,
		moves:     20,
	}

	isStalemate, reason := detectStalemate(rs)
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "high_mutual_survival") {
		t.Fatalf("expected reason to mention high_mutual_survival, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWithWinner(t *testing.T) {
	rs := runStats{
		winner:    "red",
		totals:    map[string]int{"red": 4, "blue": 4},
		survivors: map[string]int{"red": 4, "blue": 0},
	}

	isStalemate, reason := detectStalemate(rs)
	if isStalemate {
		t.Fatalf("expected stalemate=false with a winner (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenAttritionDecisive(t *testing.T) {
	rs := runStats{
		totals:    map[string]int{"red": 6, "blue": 6},
		survivors: map[string]int{"red": 2, "blue": 5},
		hits:      14,
		kills:     5,
		moves:     30,
	}

	isStalemate, reason := detectStalemate(rs)
	if isStalemate {
		t.Fatalf("expected stalemate=false under decisive attrition (reason=%s)", reason)
	}
}

func TestRunScenario_AllAIPlaysOut(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	sc, err := cat.Scenario("duel")
	if err != nil {
		t.Fatal(err)
	}

	rs, m, err := runScenario(cat, sc, 1, 3, 30)
	if err != nil {
		t.Fatalf("runScenario: %v", err)
	}
	for _, p := range m.World.Rotation {
		if !p.AI {
			t.Fatalf("participant %s should be AI-controlled", p.ID)
		}
	}
	if rs.turns <= 1 || rs.moves == 0 {
		t.Fatalf("match did not progress: turns=%d moves=%d", rs.turns, rs.moves)
	}
	if rs.totals["red"] != 1 || rs.totals["blue"] != 1 {
		t.Fatalf("totals = %v", rs.totals)
	}
	if !strings.Contains(rs.summary, "Summary at turn") {
		t.Fatalf("summary missing:\n%s", rs.summary)
	}
}
