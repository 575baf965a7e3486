// Package operators implements the five narrative intent operators (spec
// §4.E): cause, avoid, trigger, relive, and vary. Every operator proposes a
// path and decision sequence; none of them execute the loop — that is the
// loop store's job once a caller accepts a proposal.
//
// Grounded on the day graph's pathing primitives (internal/daygraph) the
// same way the teacher's reasoning modes sit on top of its graph
// controller: thin, heuristic logic that calls into a shared traversal
// layer rather than reimplementing it.
package operators

import (
	"fmt"
	"sort"

	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/equivalence"
	"github.com/loomwright/dayloop/internal/types"
)

// TargetMode selects how Cause treats a multi-target request.
type TargetMode string

const (
	TargetAny TargetMode = "any"
	TargetAll TargetMode = "all"
)

// Result is the shared output shape every operator returns (spec §4.E).
// Operators never raise: a failure is success=false with a rationale, not
// an error return.
type Result struct {
	Success            bool
	SuggestedPath      []string
	SuggestedDecisions []types.Decision
	Probability        float64
	Rationale          string
}

func fail(rationale string, args ...any) Result {
	return Result{Success: false, Rationale: fmt.Sprintf(rationale, args...)}
}

func decisionsAlongPath(gr *daygraph.Graph, path []string) []types.Decision {
	var decisions []types.Decision
	for i, nodeID := range path {
		n, ok := gr.Node(nodeID)
		if !ok || n.Kind != types.NodeDecision || i+1 >= len(path) {
			continue
		}
		next := path[i+1]
		for _, e := range gr.OutgoingEdges(nodeID) {
			if e.Target == next {
				idx := choiceIndexFor(gr, n, e)
				decisions = append(decisions, types.Decision{NodeID: nodeID, ChoiceIndex: idx})
				break
			}
		}
	}
	return decisions
}

// choiceIndexFor resolves which declared choice an edge corresponds to,
// falling back to its position among outgoing choice edges when the node
// has no explicit Choices list.
func choiceIndexFor(gr *daygraph.Graph, n *types.Node, e *types.Edge) int {
	for _, c := range n.Choices {
		if c.Label == e.Label {
			return c.Index
		}
	}
	if len(n.Choices) == 0 {
		pos := 0
		for _, oe := range gr.OutgoingEdges(n.ID) {
			if oe.ID == e.ID {
				return pos
			}
			if oe.Type == types.EdgeChoice {
				pos++
			}
		}
	}
	return 0
}

// Cause proposes a path to target (or the nearest/all of targets). mode
// selects "any" (shortest path to the nearest reachable target) or "all"
// (checkpoint path visiting every target, in a greedy nearest-next order
// chosen by bestOrder).
func Cause(gr *daygraph.Graph, start string, targets []string, mode TargetMode) Result {
	if len(targets) == 0 {
		return fail("cause: no targets given")
	}
	for _, t := range targets {
		if _, ok := gr.Node(t); !ok {
			return fail("cause: unknown target %q", t)
		}
	}

	if mode == TargetAll {
		order := bestOrder(gr, start, targets)
		path, err := gr.PathThroughCheckpoints(start, order[:len(order)-1], order[len(order)-1])
		if err != nil {
			return fail("cause: unreachable target set: %v", err)
		}
		return Result{
			Success:            true,
			SuggestedPath:      path,
			SuggestedDecisions: decisionsAlongPath(gr, path),
			Probability:        1.0,
			Rationale:          fmt.Sprintf("checkpoint path visiting all %d targets", len(targets)),
		}
	}

	var best []string
	for _, t := range targets {
		path, found, err := gr.ShortestPath(start, t)
		if err != nil || !found {
			continue
		}
		if best == nil || len(path) < len(best) {
			best = path
		}
	}
	if best == nil {
		return fail("cause: no target in %v is reachable from %q", targets, start)
	}
	return Result{
		Success:            true,
		SuggestedPath:      best,
		SuggestedDecisions: decisionsAlongPath(gr, best),
		Probability:        1.0,
		Rationale:          fmt.Sprintf("shortest path to the nearest reachable target, %q", best[len(best)-1]),
	}
}

// bestOrder greedily orders targets by nearest-next distance from start; a
// cheap approximation of checkpoint-order minimisation adequate for the
// small graphs this engine targets.
func bestOrder(gr *daygraph.Graph, start string, targets []string) []string {
	remaining := append([]string(nil), targets...)
	order := make([]string, 0, len(targets))
	cur := start
	for len(remaining) > 0 {
		bestIdx, bestLen := -1, -1
		for i, t := range remaining {
			path, found, err := gr.ShortestPath(cur, t)
			if err != nil || !found {
				continue
			}
			if bestIdx == -1 || len(path) < bestLen {
				bestIdx, bestLen = i, len(path)
			}
		}
		if bestIdx == -1 {
			// no reachable target remains; append the rest in given order
			order = append(order, remaining...)
			break
		}
		order = append(order, remaining[bestIdx])
		cur = remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return order
}

// Avoid finds a path from start to any terminal node that never visits a
// forbidden node, by running BFS over the graph with forbidden nodes
// excised.
func Avoid(gr *daygraph.Graph, start string, forbidden []string) Result {
	forbiddenSet := make(map[string]bool, len(forbidden))
	for _, f := range forbidden {
		forbiddenSet[f] = true
	}
	if forbiddenSet[start] {
		return fail("avoid: start node %q is itself forbidden", start)
	}

	terminals := terminalNodes(gr)
	if len(terminals) == 0 {
		return fail("avoid: graph has no terminal nodes")
	}

	visited := map[string]bool{start: true}
	parent := map[string]string{}
	queue := []string{start}
	var reachedTerminal string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != start && isTerminal(gr, cur) {
			reachedTerminal = cur
			break
		}
		for _, e := range gr.OutgoingEdges(cur) {
			if forbiddenSet[e.Target] || visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			parent[e.Target] = cur
			queue = append(queue, e.Target)
		}
	}
	if reachedTerminal == "" {
		return fail("avoid: every path from %q to a terminal node passes through the forbidden set", start)
	}

	path := []string{reachedTerminal}
	cur := reachedTerminal
	for cur != start {
		cur = parent[cur]
		path = append([]string{cur}, path...)
	}
	return Result{
		Success:            true,
		SuggestedPath:      path,
		SuggestedDecisions: decisionsAlongPath(gr, path),
		Probability:        1.0,
		Rationale:          fmt.Sprintf("reaches terminal %q while avoiding %v", reachedTerminal, forbidden),
	}
}

func terminalNodes(gr *daygraph.Graph) []string {
	var out []string
	for _, n := range gr.Nodes() {
		if isTerminal(gr, n.ID) {
			out = append(out, n.ID)
		}
	}
	sort.Strings(out)
	return out
}

func isTerminal(gr *daygraph.Graph, id string) bool {
	n, ok := gr.Node(id)
	if !ok {
		return false
	}
	return n.Kind.IsTerminal() || len(gr.OutgoingEdges(id)) == 0
}

// Trigger proposes a path through sequence[] in order, failing on the
// first impossible hop.
func Trigger(gr *daygraph.Graph, start string, sequence []string) Result {
	if len(sequence) == 0 {
		return fail("trigger: empty sequence")
	}
	waypoints := append([]string{start}, sequence...)
	var full []string
	for i := 0; i < len(waypoints)-1; i++ {
		seg, found, err := gr.ShortestPath(waypoints[i], waypoints[i+1])
		if err != nil || !found {
			return fail("trigger: hop %d impossible: %q -> %q has no path", i+1, waypoints[i], waypoints[i+1])
		}
		if i > 0 {
			seg = seg[1:]
		}
		full = append(full, seg...)
	}
	return Result{
		Success:            true,
		SuggestedPath:      full,
		SuggestedDecisions: decisionsAlongPath(gr, full),
		Probability:        1.0,
		Rationale:          fmt.Sprintf("checkpoint path through sequence %v", sequence),
	}
}

// Relive proposes a path matching a reference loop exactly (max_deviation
// 0) or within max_deviation Hamming distance of its decision vector,
// requiring the same terminal node kind.
func Relive(gr *daygraph.Graph, refLoop *types.Loop, maxDeviation int) Result {
	if maxDeviation == 0 {
		if len(refLoop.Path) == 0 {
			return fail("relive: reference loop has no recorded path")
		}
		for i := 0; i+1 < len(refLoop.Path); i++ {
			ok, err := gr.CanReach(refLoop.Path[i], refLoop.Path[i+1])
			if err != nil || !ok {
				return fail("relive: reference path no longer reproducible at step %d", i)
			}
		}
		return Result{
			Success:            true,
			SuggestedPath:      append([]string(nil), refLoop.Path...),
			SuggestedDecisions: append([]types.Decision(nil), refLoop.Decisions...),
			Probability:        1.0,
			Rationale:          "exact replay of the reference loop's path",
		}
	}

	var refTerminalKind types.NodeKind
	if refLoop.Outcome != nil {
		if n, ok := gr.Node(refLoop.Outcome.TerminalNodeID); ok {
			refTerminalKind = n.Kind
		}
	}
	start := ""
	if len(refLoop.Path) > 0 {
		start = refLoop.Path[0]
	}
	candidates, err := gr.AllSimplePaths(start, terminalOrEmpty(refLoop), 0)
	if err != nil || len(candidates) == 0 {
		return fail("relive: no candidate paths found near the reference")
	}
	for _, path := range candidates {
		decisions := decisionsAlongPath(gr, path)
		vec := vectorOf(decisions)
		if equivalence.HammingDistance(vec, refLoop.DecisionVector) <= maxDeviation {
			if n, ok := gr.Node(path[len(path)-1]); !ok || refTerminalKind != "" && n.Kind != refTerminalKind {
				continue
			}
			return Result{
				Success:            true,
				SuggestedPath:      path,
				SuggestedDecisions: decisions,
				Probability:        0.8,
				Rationale:          fmt.Sprintf("path within %d decisions of the reference loop", maxDeviation),
			}
		}
	}
	return fail("relive: no path within max_deviation=%d of the reference matches its terminal kind", maxDeviation)
}

func terminalOrEmpty(loop *types.Loop) string {
	if loop.Outcome != nil {
		return loop.Outcome.TerminalNodeID
	}
	if len(loop.Path) > 0 {
		return loop.Path[len(loop.Path)-1]
	}
	return ""
}

func vectorOf(decisions []types.Decision) []int {
	v := make([]int, len(decisions))
	for i, d := range decisions {
		v[i] = d.ChoiceIndex
	}
	return v
}

// Vary searches for a reachable path whose Hamming distance to the
// reference loop's decision vector falls in [minDeviation, maxDeviation].
func Vary(gr *daygraph.Graph, refLoop *types.Loop, minDeviation, maxDeviation int) Result {
	if len(refLoop.Path) == 0 {
		return fail("vary: reference loop has no recorded path")
	}
	start := refLoop.Path[0]
	target := terminalOrEmpty(refLoop)

	candidates, err := gr.AllSimplePaths(start, target, 0)
	if err != nil {
		return fail("vary: path search failed: %v", err)
	}
	for _, path := range candidates {
		decisions := decisionsAlongPath(gr, path)
		vec := vectorOf(decisions)
		d := equivalence.HammingDistance(vec, refLoop.DecisionVector)
		if d >= minDeviation && d <= maxDeviation {
			return Result{
				Success:            true,
				SuggestedPath:      path,
				SuggestedDecisions: decisions,
				Probability:        0.6,
				Rationale:          fmt.Sprintf("path at Hamming distance %d from the reference, within [%d,%d]", d, minDeviation, maxDeviation),
			}
		}
	}
	return fail("vary: no reachable path has Hamming distance in [%d,%d] from the reference", minDeviation, maxDeviation)
}
