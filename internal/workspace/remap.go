package workspace

import (
	"github.com/google/uuid"

	"github.com/loomwright/dayloop/internal/types"
)

// idMap assigns a fresh UUID-v4 to every id it is asked for exactly once,
// returning the same new id for repeat lookups of the same old id.
type idMap struct {
	m map[string]string
}

func newIDMap() *idMap { return &idMap{m: make(map[string]string)} }

func (m *idMap) get(old string) string {
	if old == "" {
		return ""
	}
	if n, ok := m.m[old]; ok {
		return n
	}
	n := uuid.NewString()
	m.m[old] = n
	return n
}

func (m *idMap) mapSlice(olds []string) []string {
	if olds == nil {
		return nil
	}
	out := make([]string, len(olds))
	for i, o := range olds {
		out[i] = m.get(o)
	}
	return out
}

// Import regenerates every id in doc and rewrites every cross-reference
// accordingly (spec §6 "Import/remap"), returning a freshly-keyed Document
// ready to become its own workspace, independent of the source project's
// id space.
func Import(doc *types.Document) (*types.Document, error) {
	nodeIDs := newIDMap()
	edgeIDs := newIDMap()
	loopIDs := newIDMap()
	epochIDs := newIDMap()
	classIDs := newIDMap()
	knowledgeIDs := newIDMap()
	subLoopIDs := newIDMap()

	out := &types.Document{
		ID:          uuid.NewString(),
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Settings:    doc.Settings,
	}

	out.Graph = types.DocumentGraph{
		ID:          uuid.NewString(),
		Name:        doc.Graph.Name,
		Version:     doc.Graph.Version,
		TimeBounds:  doc.Graph.TimeBounds,
		StartNodeID: nodeIDs.get(doc.Graph.StartNodeID),
	}
	for _, n := range doc.Graph.Nodes {
		cp := *n
		cp.ID = nodeIDs.get(n.ID)
		out.Graph.Nodes = append(out.Graph.Nodes, &cp)
	}
	for _, e := range doc.Graph.Edges {
		cp := *e
		cp.ID = edgeIDs.get(e.ID)
		cp.Source = nodeIDs.get(e.Source)
		cp.Target = nodeIDs.get(e.Target)
		out.Graph.Edges = append(out.Graph.Edges, &cp)
	}

	for _, k := range doc.KnowledgeStates {
		cp := *k
		cp.ID = knowledgeIDs.get(k.ID)
		cp.ParentID = knowledgeIDs.get(k.ParentID)
		out.KnowledgeStates = append(out.KnowledgeStates, &cp)
	}

	for _, e := range doc.Epochs {
		cp := *e
		cp.ID = epochIDs.get(e.ID)
		cp.AnchorLoopIDs = loopIDs.mapSlice(e.AnchorLoopIDs)
		out.Epochs = append(out.Epochs, &cp)
	}

	for _, l := range doc.Loops {
		cp := *l
		cp.ID = loopIDs.get(l.ID)
		cp.EpochID = epochIDs.get(l.EpochID)
		cp.GraphID = out.Graph.ID
		cp.KnowledgeStateStartID = knowledgeIDs.get(l.KnowledgeStateStartID)
		cp.KnowledgeStateEndID = knowledgeIDs.get(l.KnowledgeStateEndID)
		cp.EquivalenceClassID = classIDs.get(l.EquivalenceClassID)
		cp.Path = nodeIDs.mapSlice(l.Path)

		cp.Decisions = make([]types.Decision, len(l.Decisions))
		for i, d := range l.Decisions {
			d.NodeID = nodeIDs.get(d.NodeID)
			cp.Decisions[i] = d
		}

		if l.Outcome != nil {
			o := *l.Outcome
			o.TerminalNodeID = nodeIDs.get(l.Outcome.TerminalNodeID)
			cp.Outcome = &o
		}

		if l.SubLoops != nil {
			cp.SubLoops = make([]*types.SubLoop, len(l.SubLoops))
			for i, sl := range l.SubLoops {
				slcp := *sl
				slcp.ID = subLoopIDs.get(sl.ID)
				slcp.ParentLoopID = loopIDs.get(sl.ParentLoopID)
				slcp.ParentSubLoopID = subLoopIDs.get(sl.ParentSubLoopID)
				slcp.StartNodeID = nodeIDs.get(sl.StartNodeID)
				slcp.EndNodeID = nodeIDs.get(sl.EndNodeID)
				cp.SubLoops[i] = &slcp
			}
		}

		out.Loops = append(out.Loops, &cp)
	}

	for _, c := range doc.EquivalenceClasses {
		cp := *c
		cp.ID = classIDs.get(c.ID)
		cp.RepresentativeLoopID = loopIDs.get(c.RepresentativeLoopID)
		cp.SampleLoopIDs = loopIDs.mapSlice(c.SampleLoopIDs)
		cp.FirstOccurrenceLoopID = loopIDs.get(c.FirstOccurrenceLoopID)
		cp.LastOccurrenceLoopID = loopIDs.get(c.LastOccurrenceLoopID)
		if c.PerEpochDistribution != nil {
			cp.PerEpochDistribution = make(map[string]int, len(c.PerEpochDistribution))
			for oldEpochID, count := range c.PerEpochDistribution {
				cp.PerEpochDistribution[epochIDs.get(oldEpochID)] = count
			}
		}
		out.EquivalenceClasses = append(out.EquivalenceClasses, &cp)
	}

	return out, nil
}

// ImportWorkspace regenerates every id in doc (Import) and loads the result
// into a live Workspace.
func ImportWorkspace(doc *types.Document) (*Workspace, error) {
	remapped, err := Import(doc)
	if err != nil {
		return nil, err
	}
	return Load(remapped)
}
