package workspace

import (
	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/equivalence"
	"github.com/loomwright/dayloop/internal/loopstore"
	"github.com/loomwright/dayloop/internal/types"
)

// Snapshot serializes the live workspace into the persisted project
// artifact shape (spec §6): a single structured document with the graph,
// every epoch/loop/equivalence-class/knowledge-state, and free-form
// settings.
func (w *Workspace) Snapshot() *types.Document {
	nodes := w.Graph.Nodes()
	edges := w.Graph.Edges()

	doc := &types.Document{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Graph: types.DocumentGraph{
			ID:          w.Graph.ID,
			Name:        w.Graph.Name,
			Version:     w.Graph.Version,
			TimeBounds:  w.Graph.TimeBounds,
			StartNodeID: w.Graph.StartNodeID,
			Nodes:       nodes,
			Edges:       edges,
		},
		Epochs:             w.Epochs(),
		Loops:              w.Loops.List(),
		EquivalenceClasses: w.Equivalence.All(),
		KnowledgeStates:    w.Loops.ListKnowledgeStates(),
		Settings:           w.Settings(),
	}
	return doc
}

// Load rebuilds a live Workspace from a persisted document, restoring every
// node/edge, loop, knowledge state, equivalence class, and epoch exactly as
// recorded (no id regeneration — use Import for that).
func Load(doc *types.Document) (*Workspace, error) {
	gr := daygraph.New(doc.Graph.ID, doc.Graph.Name, doc.Graph.TimeBounds)

	for _, n := range doc.Graph.Nodes {
		if err := gr.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Graph.Edges {
		if err := gr.AddEdge(e); err != nil {
			return nil, err
		}
	}
	if doc.Graph.StartNodeID != "" {
		gr.SetStartNode(doc.Graph.StartNodeID)
	}
	// Restore the persisted version last so rebuilding the graph from its
	// nodes/edges (which bump Version as a side effect) doesn't inflate it
	// past what was actually saved.
	gr.Version = doc.Graph.Version

	loops := loopstore.New()
	for _, k := range doc.KnowledgeStates {
		loops.PutKnowledgeState(k)
	}
	for _, l := range doc.Loops {
		loops.Put(l)
	}

	idx := equivalence.New()
	for _, c := range doc.EquivalenceClasses {
		idx.Put(c)
	}

	w := &Workspace{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Graph:       gr,
		Loops:       loops,
		Equivalence: idx,
		epochs:      make(map[string]*types.Epoch),
		settings:    make(map[string]string),
	}
	for _, e := range doc.Epochs {
		w.epochs[e.ID] = e
	}
	for k, v := range doc.Settings {
		w.settings[k] = v
	}
	return w, nil
}
