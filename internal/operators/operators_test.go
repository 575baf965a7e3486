package operators

import (
	"testing"

	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/types"
)

// linearGraph builds start -> mid -> a, start -> mid -> b (with mid a
// decision node); a leads to a death node and b to a safe event node with
// no outgoing edges.
func linearGraph(t *testing.T) *daygraph.Graph {
	t.Helper()
	gr := daygraph.New("g1", "scenario", types.TimeBounds{Start: "06:00", End: "22:00"})
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(gr.AddNode(types.NewNode("start", types.NodeEvent).TimeSlot("06:00").Label("start").Build()))
	must(gr.AddNode(types.NewNode("mid", types.NodeDecision).TimeSlot("07:00").Label("mid").Choices("go left", "go right").Build()))
	must(gr.AddNode(types.NewNode("a", types.NodeEvent).TimeSlot("08:00").Label("a").Build()))
	must(gr.AddNode(types.NewNode("b", types.NodeEvent).TimeSlot("08:00").Label("b").Build()))
	must(gr.AddNode(types.NewNode("death", types.NodeDeath).TimeSlot("09:00").Label("death").Build()))
	must(gr.AddNode(types.NewNode("safe", types.NodeEvent).TimeSlot("09:00").Label("safe").Build()))
	gr.SetStartNode("start")

	must(gr.AddEdge(types.NewEdge("e0", "start", "mid").Build()))
	must(gr.AddEdge(types.NewEdge("e1", "mid", "a").Type(types.EdgeChoice).Label("go left").Build()))
	must(gr.AddEdge(types.NewEdge("e2", "mid", "b").Type(types.EdgeChoice).Label("go right").Build()))
	must(gr.AddEdge(types.NewEdge("e3", "a", "death").Build()))
	must(gr.AddEdge(types.NewEdge("e4", "b", "safe").Build()))
	return gr
}

func TestCause_AnyModeFindsNearestTarget(t *testing.T) {
	gr := linearGraph(t)
	res := Cause(gr, "start", []string{"death", "safe"}, TargetAny)
	if !res.Success {
		t.Fatalf("expected success, got rationale: %s", res.Rationale)
	}
	if res.SuggestedPath[len(res.SuggestedPath)-1] != "death" && res.SuggestedPath[len(res.SuggestedPath)-1] != "safe" {
		t.Fatalf("unexpected terminal: %v", res.SuggestedPath)
	}
}

func TestCause_UnknownTargetFails(t *testing.T) {
	gr := linearGraph(t)
	res := Cause(gr, "start", []string{"nope"}, TargetAny)
	if res.Success {
		t.Fatal("expected failure for unknown target")
	}
}

func TestCause_UnreachableTargetFails(t *testing.T) {
	gr := linearGraph(t)
	res := Cause(gr, "death", []string{"safe"}, TargetAny)
	if res.Success {
		t.Fatal("expected failure: death cannot reach safe")
	}
}

func TestAvoid_RoutesAroundForbiddenNode(t *testing.T) {
	gr := linearGraph(t)
	res := Avoid(gr, "start", []string{"a"})
	if !res.Success {
		t.Fatalf("expected success, got: %s", res.Rationale)
	}
	for _, id := range res.SuggestedPath {
		if id == "a" {
			t.Fatalf("path should avoid node 'a': %v", res.SuggestedPath)
		}
	}
}

func TestAvoid_UnavoidableWhenAllPathsForbidden(t *testing.T) {
	gr := linearGraph(t)
	res := Avoid(gr, "start", []string{"mid"})
	if res.Success {
		t.Fatal("expected failure: every path from start passes through mid")
	}
}

func TestTrigger_ChecksHopsInOrder(t *testing.T) {
	gr := linearGraph(t)
	res := Trigger(gr, "start", []string{"mid", "a", "death"})
	if !res.Success {
		t.Fatalf("expected success, got: %s", res.Rationale)
	}
	want := []string{"start", "mid", "a", "death"}
	if len(res.SuggestedPath) != len(want) {
		t.Fatalf("got %v, want %v", res.SuggestedPath, want)
	}
}

func TestTrigger_FailsOnImpossibleHop(t *testing.T) {
	gr := linearGraph(t)
	res := Trigger(gr, "start", []string{"safe", "death"})
	if res.Success {
		t.Fatal("expected failure: safe cannot reach death")
	}
}

func TestRelive_ExactReplay(t *testing.T) {
	gr := linearGraph(t)
	ref := &types.Loop{
		Path:           []string{"start", "mid", "a", "death"},
		DecisionVector: []int{0},
		Outcome:        &types.Outcome{Type: types.OutcomeDeath, TerminalNodeID: "death"},
	}
	res := Relive(gr, ref, 0)
	if !res.Success {
		t.Fatalf("expected success, got: %s", res.Rationale)
	}
}

func TestVary_FailsWithoutDeviatingPath(t *testing.T) {
	gr := linearGraph(t)
	ref := &types.Loop{
		Path:           []string{"start", "mid", "a", "death"},
		DecisionVector: []int{0},
		Outcome:        &types.Outcome{Type: types.OutcomeDeath, TerminalNodeID: "death"},
	}
	// Only one path reaches "death" in this fixture, so varying within
	// [1,5] from the reference itself should fail (distance to itself is 0).
	res := Vary(gr, ref, 1, 5)
	if res.Success {
		t.Fatal("expected failure: no alternate path to the same terminal exists in this fixture")
	}
}
