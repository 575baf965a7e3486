package daygraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loomwright/dayloop/internal/types"
)

// ExportDOT renders the graph as Graphviz DOT source for visual debugging.
func (gr *Graph) ExportDOT() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("digraph %q {\n", gr.Name))
	for _, id := range gr.sortedNodeIDs() {
		n := gr.nodes[id]
		shape := "box"
		if n.Kind == types.NodeDecision {
			shape = "diamond"
		} else if n.Kind.IsTerminal() {
			shape = "doublecircle"
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, shape=%s];\n", n.ID, fmt.Sprintf("%s (%s)", n.Label, n.TimeSlot), shape))
	}
	for _, e := range gr.sortedEdges() {
		label := string(e.Type)
		if e.Label != "" {
			label = e.Label
		}
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.Source, e.Target, label))
	}
	b.WriteString("}\n")
	return b.String()
}

// ExportMermaid renders the graph as a Mermaid flowchart.
func (gr *Graph) ExportMermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, id := range gr.sortedNodeIDs() {
		n := gr.nodes[id]
		b.WriteString(fmt.Sprintf("  %s[%q]\n", sanitizeID(n.ID), n.Label))
	}
	for _, e := range gr.sortedEdges() {
		label := string(e.Type)
		if e.Label != "" {
			label = e.Label
		}
		b.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", sanitizeID(e.Source), label, sanitizeID(e.Target)))
	}
	return b.String()
}

func (gr *Graph) sortedNodeIDs() []string {
	ids := make([]string, 0, len(gr.nodes))
	for id := range gr.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (gr *Graph) sortedEdges() []*types.Edge {
	out := make([]*types.Edge, 0, len(gr.edges))
	for _, e := range gr.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sanitizeID makes a node id safe as a bare Mermaid identifier by
// prefixing it with "n" and replacing hyphens, which Mermaid's parser
// treats as token breaks, with underscores.
func sanitizeID(id string) string {
	return "n" + strings.ReplaceAll(id, "-", "_")
}
