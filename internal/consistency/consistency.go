// Package consistency cross-validates loops against their graph and
// knowledge-state lineage (spec §4.F): three independent passes —
// knowledge contradictions, outcome/path, and temporal — merged into one
// report with repair suggestions, plus a fast boolean short-circuit for UI
// feedback.
//
// Grounded on the teacher's validation pass style (formerly
// internal/validation/logic.go): a validator that runs several independent
// checks and accumulates every issue rather than stopping at the first.
package consistency

import (
	"fmt"
	"sort"

	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/types"
)

// Report is the merged result of all three passes.
type Report struct {
	Issues  []types.Issue
	Tallies Tallies
}

// Tallies counts issues by category and entity kind for a summary view.
type Tallies struct {
	ByCategory   map[string]int
	ByEntityKind map[string]int
}

func newTallies() Tallies {
	return Tallies{ByCategory: map[string]int{}, ByEntityKind: map[string]int{}}
}

func (r *Report) add(issue types.Issue) {
	r.Issues = append(r.Issues, issue)
	r.Tallies.ByCategory[issue.Category]++
	if issue.Entity != nil {
		r.Tallies.ByEntityKind[issue.Entity.Kind]++
	}
}

func issue(sev types.Severity, category, message string, entity *types.EntityRef, repairs ...string) types.Issue {
	var ra []types.RepairAction
	for _, r := range repairs {
		ra = append(ra, types.RepairAction{Description: r})
	}
	return types.Issue{Severity: sev, Category: category, Message: message, Entity: entity, Repairs: ra}
}

// CheckKnowledge runs pass 1: contradictions within a knowledge state, and
// (if parent is provided) fact disappearance across a lineage step.
func CheckKnowledge(state *types.KnowledgeState, parent *types.KnowledgeState) []types.Issue {
	var issues []types.Issue
	entity := &types.EntityRef{Kind: "knowledge_state", ID: state.ID}

	byKey := map[string][]*types.Fact{}
	for _, f := range state.Facts {
		byKey[f.Key] = append(byKey[f.Key], f)
	}
	keys := sortedKeys(byKey)
	for _, key := range keys {
		facts := byKey[key]
		values := map[string]bool{}
		for _, f := range facts {
			values[f.Value] = true
		}
		if len(values) >= 2 {
			issues = append(issues, issue(types.SeverityError, "knowledge",
				fmt.Sprintf("key %q has %d contradicting values", key, len(values)), entity,
				fmt.Sprintf("Mark one value for %q as contradicted_by the other", key)))
		}
	}

	for _, f := range state.Facts {
		for _, cid := range f.ContradictedBy {
			if _, ok := findFactByKeyOrID(state.Facts, cid); !ok {
				issues = append(issues, issue(types.SeverityWarning, "knowledge",
					fmt.Sprintf("fact %q references missing contradicted_by id %q", f.Key, cid), entity,
					fmt.Sprintf("Add fact with id %s or remove the reference", cid)))
			}
		}
	}

	if parent != nil {
		childKeys := map[string]bool{}
		contradictedKeys := map[string]bool{}
		for _, f := range state.Facts {
			childKeys[f.Key] = true
			for _, cid := range f.ContradictedBy {
				contradictedKeys[cid] = true
			}
		}
		for _, pf := range parent.Facts {
			if !childKeys[pf.Key] && !contradictedKeys[pf.Key] {
				issues = append(issues, issue(types.SeverityWarning, "knowledge",
					fmt.Sprintf("fact %q present in parent state disappeared without explanation", pf.Key), entity,
					fmt.Sprintf("Re-add fact %q or name it in a contradicted_by list", pf.Key)))
			}
		}
	}

	return issues
}

func findFactByKeyOrID(facts []*types.Fact, id string) (*types.Fact, bool) {
	for _, f := range facts {
		if f.Key == id {
			return f, true
		}
	}
	return nil, false
}

func sortedKeys(m map[string][]*types.Fact) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckOutcomePath runs pass 2: terminal existence, path connectivity,
// decision/path agreement.
func CheckOutcomePath(loop *types.Loop, gr *daygraph.Graph) []types.Issue {
	var issues []types.Issue
	entity := &types.EntityRef{Kind: "loop", ID: loop.ID}

	if loop.Outcome != nil {
		if _, ok := gr.Node(loop.Outcome.TerminalNodeID); !ok {
			issues = append(issues, issue(types.SeverityError, "reference",
				fmt.Sprintf("outcome terminal node %q does not exist in the graph", loop.Outcome.TerminalNodeID), entity,
				"Change terminal to a node id that exists in the graph"))
		}
	}

	if len(loop.Path) > 0 {
		for i := 0; i+1 < len(loop.Path); i++ {
			ok, err := edgeExists(gr, loop.Path[i], loop.Path[i+1])
			if err != nil || !ok {
				issues = append(issues, issue(types.SeverityError, "reference",
					fmt.Sprintf("path is not connected between %q and %q", loop.Path[i], loop.Path[i+1]), entity,
					fmt.Sprintf("Add an edge from %s to %s, or correct the path", loop.Path[i], loop.Path[i+1])))
			}
		}
		if loop.Outcome != nil && loop.Path[len(loop.Path)-1] != loop.Outcome.TerminalNodeID {
			issues = append(issues, issue(types.SeverityError, "reference",
				"path does not reach the outcome's terminal node", entity,
				"Extend the path to the terminal node, or correct the outcome"))
		}

		pathSet := map[string]bool{}
		for _, id := range loop.Path {
			pathSet[id] = true
		}
		for _, d := range loop.Decisions {
			if !pathSet[d.NodeID] {
				issues = append(issues, issue(types.SeverityError, "reference",
					fmt.Sprintf("decision at node %q does not appear on the path", d.NodeID), entity,
					"Add the decision node to the path, or remove the decision"))
			}
			if n, ok := gr.Node(d.NodeID); ok && n.Kind != types.NodeDecision {
				issues = append(issues, issue(types.SeverityWarning, "reference",
					fmt.Sprintf("decision recorded at node %q which is not a decision-kind node", d.NodeID), entity,
					"Move the decision to the nearest decision node, or change the node's kind"))
			}
		}
	}

	return issues
}

func edgeExists(gr *daygraph.Graph, source, target string) (bool, error) {
	for _, e := range gr.OutgoingEdges(source) {
		if e.Target == target {
			return true, nil
		}
	}
	return false, nil
}

// CheckTemporal runs pass 3: non-decreasing time slots along the path
// (unless either endpoint is time-flexible), and started_at <= ended_at.
func CheckTemporal(loop *types.Loop, gr *daygraph.Graph) []types.Issue {
	var issues []types.Issue
	entity := &types.EntityRef{Kind: "loop", ID: loop.ID}

	for i := 0; i+1 < len(loop.Path); i++ {
		a, aok := gr.Node(loop.Path[i])
		b, bok := gr.Node(loop.Path[i+1])
		if !aok || !bok {
			continue
		}
		if b.TimeSlot < a.TimeSlot && !a.TimeFlexible && !b.TimeFlexible {
			issues = append(issues, issue(types.SeverityError, "temporal",
				fmt.Sprintf("node %q (%s) precedes %q (%s) out of order", b.ID, b.TimeSlot, a.ID, a.TimeSlot), entity,
				fmt.Sprintf("Mark %s or %s time_flexible, or reorder the path", a.ID, b.ID)))
		}
	}

	if loop.EndedAt != nil && loop.StartedAt.After(*loop.EndedAt) {
		issues = append(issues, issue(types.SeverityError, "temporal",
			"started_at is after ended_at", entity,
			"Correct started_at/ended_at so the loop does not end before it starts"))
	}

	return issues
}

// CheckLoop runs passes 2 and 3 together and merges their tallies; pass 1
// is run separately per knowledge state via CheckKnowledge.
func CheckLoop(loop *types.Loop, gr *daygraph.Graph) *Report {
	report := &Report{Tallies: newTallies()}
	for _, iss := range CheckOutcomePath(loop, gr) {
		report.add(iss)
	}
	for _, iss := range CheckTemporal(loop, gr) {
		report.add(iss)
	}
	return report
}

// QuickLoopCheck short-circuits to a boolean plus the first few errors, for
// cheap UI feedback (spec §4.F).
func QuickLoopCheck(loop *types.Loop, gr *daygraph.Graph) (ok bool, firstErrors []string) {
	const limit = 3
	for _, iss := range CheckOutcomePath(loop, gr) {
		if iss.Severity == types.SeverityError {
			firstErrors = append(firstErrors, iss.Message)
			if len(firstErrors) >= limit {
				return false, firstErrors
			}
		}
	}
	for _, iss := range CheckTemporal(loop, gr) {
		if iss.Severity == types.SeverityError {
			firstErrors = append(firstErrors, iss.Message)
			if len(firstErrors) >= limit {
				return false, firstErrors
			}
		}
	}
	return len(firstErrors) == 0, firstErrors
}
