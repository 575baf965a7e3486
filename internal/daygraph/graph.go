// Package daygraph implements the day graph (spec §3 "Day graph", §4.B):
// nodes, edges, mutation with cascading deletes, structural validation, and
// the pathing / reachability algorithms the operators and consistency
// checker build on.
//
// Modeled on the teacher's graph-of-thoughts controller (formerly
// internal/modes/graph.go, graph_types.go), which already wraps
// github.com/dominikbraun/graph behind exactly this shape: a typed vertex
// map kept in sync with the library's adjacency structure, version-stamped
// on every mutation.
package daygraph

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/loomwright/dayloop/internal/engineerr"
	"github.com/loomwright/dayloop/internal/types"
)

func nodeHash(n *types.Node) string { return n.ID }

// Graph is the day graph: a directed structure of nodes and edges with a
// monotonically increasing version (spec §3 invariant: version increments
// on every structural mutation).
type Graph struct {
	ID          string
	Name        string
	Version     int
	TimeBounds  types.TimeBounds
	StartNodeID string

	g     graph.Graph[string, *types.Node]
	nodes map[string]*types.Node
	edges map[string]*types.Edge // edge id -> edge
}

// New creates an empty directed day graph.
func New(id, name string, bounds types.TimeBounds) *Graph {
	return &Graph{
		ID:         id,
		Name:       name,
		Version:    1,
		TimeBounds: bounds,
		g:          graph.New(nodeHash, graph.Directed()),
		nodes:      make(map[string]*types.Node),
		edges:      make(map[string]*types.Edge),
	}
}

// SetStartNode designates the day's entry node. Validate flags a missing
// start node once one is expected to exist.
func (gr *Graph) SetStartNode(id string) {
	gr.StartNodeID = id
	gr.Version++
}

// AddNode inserts a node, failing with DuplicateId on collision.
func (gr *Graph) AddNode(n *types.Node) error {
	if _, exists := gr.nodes[n.ID]; exists {
		return engineerr.Newf(engineerr.DuplicateId, "node %q already exists", n.ID)
	}
	if err := gr.g.AddVertex(n); err != nil {
		return engineerr.Wrap(engineerr.DuplicateId, err)
	}
	gr.nodes[n.ID] = n
	gr.Version++
	return nil
}

// AddEdge inserts an edge, failing with UnknownEndpoint, DuplicateId, or
// SelfLoopForbidden.
func (gr *Graph) AddEdge(e *types.Edge) error {
	if _, exists := gr.edges[e.ID]; exists {
		return engineerr.Newf(engineerr.DuplicateId, "edge %q already exists", e.ID)
	}
	if e.Source == e.Target {
		return engineerr.Newf(engineerr.SelfLoopForbidden, "edge %q: self-loop on %q", e.ID, e.Source)
	}
	if _, ok := gr.nodes[e.Source]; !ok {
		return engineerr.Newf(engineerr.UnknownEndpoint, "edge %q: unknown source %q", e.ID, e.Source)
	}
	if _, ok := gr.nodes[e.Target]; !ok {
		return engineerr.Newf(engineerr.UnknownEndpoint, "edge %q: unknown target %q", e.ID, e.Target)
	}
	if err := gr.g.AddEdge(e.Source, e.Target); err != nil {
		return engineerr.Wrap(engineerr.DuplicateId, err)
	}
	gr.edges[e.ID] = e
	gr.Version++
	return nil
}

// RemoveNode removes a node and cascades to all incident edges.
func (gr *Graph) RemoveNode(id string) error {
	if _, ok := gr.nodes[id]; !ok {
		return engineerr.Newf(engineerr.UnknownId, "node %q not found", id)
	}
	for eid, e := range gr.edges {
		if e.Source == id || e.Target == id {
			_ = gr.g.RemoveEdge(e.Source, e.Target)
			delete(gr.edges, eid)
		}
	}
	if err := gr.g.RemoveVertex(id); err != nil {
		return engineerr.Wrap(engineerr.UnknownId, err)
	}
	delete(gr.nodes, id)
	gr.Version++
	return nil
}

// RemoveEdge removes a single edge by id.
func (gr *Graph) RemoveEdge(id string) error {
	e, ok := gr.edges[id]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "edge %q not found", id)
	}
	if err := gr.g.RemoveEdge(e.Source, e.Target); err != nil {
		return engineerr.Wrap(engineerr.UnknownId, err)
	}
	delete(gr.edges, id)
	gr.Version++
	return nil
}

// Node returns a node by id.
func (gr *Graph) Node(id string) (*types.Node, bool) {
	n, ok := gr.nodes[id]
	return n, ok
}

// Nodes returns all nodes, unordered.
func (gr *Graph) Nodes() []*types.Node {
	out := make([]*types.Node, 0, len(gr.nodes))
	for _, n := range gr.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns all edges, unordered.
func (gr *Graph) Edges() []*types.Edge {
	out := make([]*types.Edge, 0, len(gr.edges))
	for _, e := range gr.edges {
		out = append(out, e)
	}
	return out
}

// adjacency builds a stable out-neighbor map, sorted by target id so that
// traversal order (and therefore discovery order for AllSimplePaths) is
// deterministic.
func (gr *Graph) adjacency() map[string][]*types.Edge {
	adj := make(map[string][]*types.Edge, len(gr.nodes))
	for _, e := range gr.edges {
		adj[e.Source] = append(adj[e.Source], e)
	}
	for src := range adj {
		sort.Slice(adj[src], func(i, j int) bool { return adj[src][i].Target < adj[src][j].Target })
	}
	return adj
}

func (gr *Graph) predecessorIDs() map[string][]string {
	pred := make(map[string][]string, len(gr.nodes))
	for _, e := range gr.edges {
		pred[e.Target] = append(pred[e.Target], e.Source)
	}
	return pred
}

// OutgoingEdges returns edges leaving node id.
func (gr *Graph) OutgoingEdges(id string) []*types.Edge {
	return gr.adjacency()[id]
}

// IncomingEdges returns edges entering node id.
func (gr *Graph) IncomingEdges(id string) []*types.Edge {
	var in []*types.Edge
	for _, e := range gr.edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Neighbors returns the out-neighbor nodes of id.
func (gr *Graph) Neighbors(id string) []*types.Node {
	var out []*types.Node
	for _, e := range gr.OutgoingEdges(id) {
		if n, ok := gr.nodes[e.Target]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Predecessors returns the in-neighbor nodes of id.
func (gr *Graph) Predecessors(id string) []*types.Node {
	var out []*types.Node
	for _, pid := range gr.predecessorIDs()[id] {
		if n, ok := gr.nodes[pid]; ok {
			out = append(out, n)
		}
	}
	return out
}

// NodesByKind filters nodes by kind.
func (gr *Graph) NodesByKind(kind types.NodeKind) []*types.Node {
	var out []*types.Node
	for _, n := range gr.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// NodesByTimeRange returns nodes whose time slot falls in [after, before]
// (inclusive); HH:MM sorts correctly as a plain string.
func (gr *Graph) NodesByTimeRange(after, before string) []*types.Node {
	var out []*types.Node
	for _, n := range gr.nodes {
		if n.TimeSlot >= after && n.TimeSlot <= before {
			out = append(out, n)
		}
	}
	return out
}

// CriticalNodes returns nodes flagged critical.
func (gr *Graph) CriticalNodes() []*types.Node {
	var out []*types.Node
	for _, n := range gr.nodes {
		if n.Critical {
			out = append(out, n)
		}
	}
	return out
}

// ShortestPath returns the fewest-edges path from source to target using
// breadth-first search (unweighted; weight is an authoring hint, not a
// traversal cost). found is false when target is unreachable.
func (gr *Graph) ShortestPath(source, target string) (path []string, found bool, err error) {
	if _, ok := gr.nodes[source]; !ok {
		return nil, false, engineerr.Newf(engineerr.UnknownId, "unknown source %q", source)
	}
	if _, ok := gr.nodes[target]; !ok {
		return nil, false, engineerr.Newf(engineerr.UnknownId, "unknown target %q", target)
	}
	if source == target {
		return []string{source}, true, nil
	}

	adj := gr.adjacency()
	visited := map[string]bool{source: true}
	parent := map[string]string{}
	queue := []string{source}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			parent[e.Target] = cur
			if e.Target == target {
				return reconstruct(parent, source, target), true, nil
			}
			queue = append(queue, e.Target)
		}
	}
	return nil, false, nil
}

func reconstruct(parent map[string]string, source, target string) []string {
	path := []string{target}
	cur := target
	for cur != source {
		cur = parent[cur]
		path = append([]string{cur}, path...)
	}
	return path
}

// AllSimplePaths enumerates simple (node-disjoint-from-itself) paths from
// source to target via bounded depth-first search, stopping once maxPaths
// have been found. maxPaths <= 0 means unbounded.
func (gr *Graph) AllSimplePaths(source, target string, maxPaths int) ([][]string, error) {
	if _, ok := gr.nodes[source]; !ok {
		return nil, engineerr.Newf(engineerr.UnknownId, "unknown source %q", source)
	}
	if _, ok := gr.nodes[target]; !ok {
		return nil, engineerr.Newf(engineerr.UnknownId, "unknown target %q", target)
	}

	adj := gr.adjacency()
	var results [][]string
	visited := map[string]bool{}
	var walk func(cur string, path []string)
	walk = func(cur string, path []string) {
		if maxPaths > 0 && len(results) >= maxPaths {
			return
		}
		if cur == target {
			cp := make([]string, len(path))
			copy(cp, path)
			results = append(results, cp)
			return
		}
		visited[cur] = true
		for _, e := range adj[cur] {
			if maxPaths > 0 && len(results) >= maxPaths {
				break
			}
			if visited[e.Target] {
				continue
			}
			walk(e.Target, append(path, e.Target))
		}
		visited[cur] = false
	}
	walk(source, []string{source})
	return results, nil
}

// PathThroughCheckpoints finds a path from source to target that passes
// through every checkpoint, in the order given, by chaining shortest-path
// segments between consecutive waypoints. The segments are joined without
// checking for shared nodes, so the result can revisit a node.
func (gr *Graph) PathThroughCheckpoints(source string, checkpoints []string, target string) ([]string, error) {
	waypoints := append([]string{source}, checkpoints...)
	waypoints = append(waypoints, target)

	var full []string
	for i := 0; i < len(waypoints)-1; i++ {
		seg, found, err := gr.ShortestPath(waypoints[i], waypoints[i+1])
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, engineerr.Newf(engineerr.NoPath, "no path from %q to %q", waypoints[i], waypoints[i+1])
		}
		if i > 0 {
			seg = seg[1:] // drop duplicate waypoint junction
		}
		full = append(full, seg...)
	}
	return full, nil
}

// ReachabilityAnalysis sweeps the graph from StartNodeID, classifying every
// node as reachable or unreachable and flagging dead ends (reachable,
// non-terminal nodes with no outgoing edges).
func (gr *Graph) ReachabilityAnalysis() (*Reachability, error) {
	if _, ok := gr.nodes[gr.StartNodeID]; !ok {
		return nil, engineerr.Newf(engineerr.UnknownId, "start node %q not set or not found", gr.StartNodeID)
	}

	adj := gr.adjacency()
	visited := map[string]bool{gr.StartNodeID: true}
	queue := []string{gr.StartNodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}

	res := &Reachability{}
	for id, n := range gr.nodes {
		if visited[id] {
			res.ReachableFromStart = append(res.ReachableFromStart, id)
			if len(adj[id]) == 0 && !n.Kind.IsTerminal() {
				res.DeadEnds = append(res.DeadEnds, id)
			}
		} else {
			res.Unreachable = append(res.Unreachable, id)
		}
	}
	sort.Strings(res.ReachableFromStart)
	sort.Strings(res.Unreachable)
	sort.Strings(res.DeadEnds)
	return res, nil
}

// ReverseReachability returns every node that can reach target.
func (gr *Graph) ReverseReachability(target string) ([]string, error) {
	if _, ok := gr.nodes[target]; !ok {
		return nil, engineerr.Newf(engineerr.UnknownId, "unknown target %q", target)
	}
	pred := gr.predecessorIDs()
	visited := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range pred[cur] {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	delete(visited, target)
	out := make([]string, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// CanReach reports whether target is reachable from source.
func (gr *Graph) CanReach(source, target string) (bool, error) {
	_, found, err := gr.ShortestPath(source, target)
	return found, err
}

// Validate runs structural checks (spec §4.B): unknown start node,
// unreachable nodes (warning), dead ends (warning), decision nodes with
// fewer than two outgoing choice edges or a declared/actual choice-count
// mismatch (error), time_slot outside time_bounds (warning), and
// time-backward edges between non-flexible nodes (warning).
func (gr *Graph) Validate() *Report {
	report := &Report{}

	if gr.StartNodeID == "" {
		report.addError("graph has no start node set")
	} else if _, ok := gr.nodes[gr.StartNodeID]; !ok {
		report.addError("start node %q does not exist", gr.StartNodeID)
	} else {
		reach, err := gr.ReachabilityAnalysis()
		if err == nil {
			for _, id := range reach.Unreachable {
				report.addWarning("node %q is unreachable from the start node", id)
			}
			for _, id := range reach.DeadEnds {
				report.addWarning("node %q is a dead end (no outgoing edges, non-terminal kind)", id)
			}
		}
	}

	for id, n := range gr.nodes {
		if n.Kind != types.NodeDecision {
			continue
		}
		choiceEdges := 0
		for _, e := range gr.OutgoingEdges(id) {
			if e.Type == types.EdgeChoice {
				choiceEdges++
			}
		}
		if choiceEdges < 2 {
			report.addError("decision node %q has %d outgoing choice edges, needs at least 2", id, choiceEdges)
		}
		if len(n.Choices) > 0 && choiceEdges != len(n.Choices) {
			report.addError("decision node %q declares %d choices but has %d choice edges", id, len(n.Choices), choiceEdges)
		}
	}

	if gr.TimeBounds.Start != "" && gr.TimeBounds.End != "" {
		for id, n := range gr.nodes {
			if n.TimeSlot == "" {
				continue
			}
			if n.TimeSlot < gr.TimeBounds.Start || n.TimeSlot > gr.TimeBounds.End {
				report.addWarning("node %q time_slot %q falls outside time_bounds [%s, %s]",
					id, n.TimeSlot, gr.TimeBounds.Start, gr.TimeBounds.End)
			}
		}
	}

	for _, e := range gr.edges {
		src, srcOK := gr.nodes[e.Source]
		tgt, tgtOK := gr.nodes[e.Target]
		if srcOK && tgtOK && !src.TimeFlexible && !tgt.TimeFlexible &&
			src.TimeSlot != "" && tgt.TimeSlot != "" && tgt.TimeSlot < src.TimeSlot {
			report.addWarning("edge %q goes backward in time from %q (%s) to %q (%s)",
				e.ID, e.Source, src.TimeSlot, e.Target, tgt.TimeSlot)
		}
		if e.Weight != nil && (*e.Weight < 0 || *e.Weight > 1) {
			report.addError("edge %q weight %v out of range [0,1]", e.ID, *e.Weight)
		}
	}

	return report
}
