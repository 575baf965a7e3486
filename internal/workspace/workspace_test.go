package workspace

import (
	"testing"

	"github.com/loomwright/dayloop/internal/types"
)

func buildSampleWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := New("proj-1", "Groundhog Project", types.TimeBounds{Start: "06:00", End: "22:00"})

	n1 := &types.Node{ID: "n1", Kind: types.NodeEvent, TimeSlot: "06:00", Label: "Wake up"}
	n2 := &types.Node{ID: "n2", Kind: types.NodeDecision, TimeSlot: "07:00", Label: "Choose path",
		Choices: []types.Choice{{Index: 0, Label: "left"}, {Index: 1, Label: "right"}}}
	n3 := &types.Node{ID: "n3", Kind: types.NodeDeath, TimeSlot: "08:00", Label: "Caught"}
	if err := w.Graph.AddNode(n1); err != nil {
		t.Fatalf("AddNode(n1) error = %v", err)
	}
	if err := w.Graph.AddNode(n2); err != nil {
		t.Fatalf("AddNode(n2) error = %v", err)
	}
	if err := w.Graph.AddNode(n3); err != nil {
		t.Fatalf("AddNode(n3) error = %v", err)
	}
	if err := w.Graph.AddEdge(&types.Edge{ID: "e1", Source: "n1", Target: "n2", Type: types.EdgeDefault}); err != nil {
		t.Fatalf("AddEdge(e1) error = %v", err)
	}
	if err := w.Graph.AddEdge(&types.Edge{ID: "e2", Source: "n2", Target: "n3", Type: types.EdgeChoice}); err != nil {
		t.Fatalf("AddEdge(e2) error = %v", err)
	}
	w.Graph.SetStartNode("n1")

	w.PutEpoch(&types.Epoch{ID: "epoch-1", Name: "Denial", Order: 0})

	ks := &types.KnowledgeState{ID: "ks-1", Version: 1, Facts: []*types.Fact{{Key: "trap", Value: "kitchen", Certainty: 1}}}
	w.Loops.PutKnowledgeState(ks)

	loop := w.Loops.StartLoop("epoch-1", w.Graph.ID, "ks-1", types.EmoCurious)
	if err := w.Loops.AppendDecision(loop.ID, types.Decision{NodeID: "n2", ChoiceIndex: 1}); err != nil {
		t.Fatalf("AppendDecision() error = %v", err)
	}
	outcome := &types.Outcome{Type: types.OutcomeDeath, TerminalNodeID: "n3"}
	if err := w.Loops.CompleteLoop(loop.ID, outcome, "ks-1", types.EmoFrustrated); err != nil {
		t.Fatalf("CompleteLoop() error = %v", err)
	}

	completed, _ := w.Loops.Get(loop.ID)
	class := w.Equivalence.Assign(completed, ks)
	if err := w.Loops.SetEquivalenceClass(loop.ID, class.ID); err != nil {
		t.Fatalf("SetEquivalenceClass() error = %v", err)
	}

	w.SetSetting("tone", "wry")
	return w
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := buildSampleWorkspace(t)
	doc := w.Snapshot()

	if doc.ID != "proj-1" || doc.Name != "Groundhog Project" {
		t.Fatalf("snapshot identity mismatch: %+v", doc)
	}
	if len(doc.Graph.Nodes) != 3 || len(doc.Graph.Edges) != 2 {
		t.Fatalf("graph size = %d nodes %d edges, want 3/2", len(doc.Graph.Nodes), len(doc.Graph.Edges))
	}
	if len(doc.Loops) != 1 {
		t.Fatalf("len(doc.Loops) = %d, want 1", len(doc.Loops))
	}
	if len(doc.EquivalenceClasses) != 1 {
		t.Fatalf("len(doc.EquivalenceClasses) = %d, want 1", len(doc.EquivalenceClasses))
	}
	if len(doc.KnowledgeStates) != 1 {
		t.Fatalf("len(doc.KnowledgeStates) = %d, want 1", len(doc.KnowledgeStates))
	}
	if doc.Settings["tone"] != "wry" {
		t.Errorf("Settings[tone] = %v, want wry", doc.Settings["tone"])
	}

	loaded, err := Load(doc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ID != w.ID || loaded.Name != w.Name {
		t.Errorf("loaded identity mismatch: %+v", loaded)
	}
	if len(loaded.Graph.Nodes()) != 3 {
		t.Errorf("loaded graph has %d nodes, want 3", len(loaded.Graph.Nodes()))
	}
	if len(loaded.Loops.List()) != 1 {
		t.Errorf("loaded loops = %d, want 1", len(loaded.Loops.List()))
	}
	if len(loaded.Equivalence.All()) != 1 {
		t.Errorf("loaded classes = %d, want 1", len(loaded.Equivalence.All()))
	}
	if _, ok := loaded.Epoch("epoch-1"); !ok {
		t.Error("loaded workspace missing epoch-1")
	}
	if v, _ := loaded.Setting("tone"); v != "wry" {
		t.Errorf("loaded setting tone = %v, want wry", v)
	}
}

func TestImportRegeneratesIDsAndRewritesReferences(t *testing.T) {
	w := buildSampleWorkspace(t)
	doc := w.Snapshot()

	remapped, err := Import(doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if remapped.ID == doc.ID {
		t.Error("Import should regenerate the document id")
	}
	if remapped.Graph.ID == doc.Graph.ID {
		t.Error("Import should regenerate the graph id")
	}
	if remapped.Graph.StartNodeID == doc.Graph.StartNodeID {
		t.Error("Import should remap start_node_id")
	}

	nodeIDSet := make(map[string]bool)
	for _, n := range remapped.Graph.Nodes {
		nodeIDSet[n.ID] = true
		if n.ID == "n1" || n.ID == "n2" || n.ID == "n3" {
			t.Errorf("node id %q was not regenerated", n.ID)
		}
	}
	if !nodeIDSet[remapped.Graph.StartNodeID] {
		t.Error("remapped start_node_id does not point at a remapped node")
	}

	for _, e := range remapped.Graph.Edges {
		if !nodeIDSet[e.Source] || !nodeIDSet[e.Target] {
			t.Errorf("edge endpoints %q -> %q do not reference remapped node ids", e.Source, e.Target)
		}
	}

	if len(remapped.Loops) != 1 {
		t.Fatalf("len(remapped.Loops) = %d, want 1", len(remapped.Loops))
	}
	loop := remapped.Loops[0]
	if loop.GraphID != remapped.Graph.ID {
		t.Errorf("loop.GraphID = %v, want remapped graph id %v", loop.GraphID, remapped.Graph.ID)
	}
	if loop.Outcome == nil || !nodeIDSet[loop.Outcome.TerminalNodeID] {
		t.Error("loop.Outcome.TerminalNodeID was not remapped to a remapped node")
	}
	for _, d := range loop.Decisions {
		if !nodeIDSet[d.NodeID] {
			t.Errorf("decision node id %q was not remapped", d.NodeID)
		}
	}

	classIDSet := make(map[string]bool)
	for _, c := range remapped.EquivalenceClasses {
		classIDSet[c.ID] = true
	}
	if loop.EquivalenceClassID == "" || !classIDSet[loop.EquivalenceClassID] {
		t.Error("loop.EquivalenceClassID was not remapped to a remapped class")
	}
	for _, c := range remapped.EquivalenceClasses {
		if c.RepresentativeLoopID != loop.ID {
			t.Errorf("class.RepresentativeLoopID = %v, want remapped loop id %v", c.RepresentativeLoopID, loop.ID)
		}
	}

	// Importing twice must not collide: every id differs again.
	remapped2, err := Import(doc)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if remapped2.ID == remapped.ID || remapped2.Graph.ID == remapped.Graph.ID {
		t.Error("two independent imports of the same document must not produce the same ids")
	}
}

func TestImportWorkspaceLoadsCleanly(t *testing.T) {
	w := buildSampleWorkspace(t)
	doc := w.Snapshot()

	imported, err := ImportWorkspace(doc)
	if err != nil {
		t.Fatalf("ImportWorkspace() error = %v", err)
	}
	if imported.ID == w.ID {
		t.Error("imported workspace should have a new id")
	}
	if len(imported.Graph.Nodes()) != 3 {
		t.Errorf("imported graph has %d nodes, want 3", len(imported.Graph.Nodes()))
	}
	if len(imported.Loops.List()) != 1 {
		t.Errorf("imported loops = %d, want 1", len(imported.Loops.List()))
	}
}

func TestSaveAndLoadSplit(t *testing.T) {
	w := buildSampleWorkspace(t)
	dir := t.TempDir()

	if err := w.SaveSplit(dir); err != nil {
		t.Fatalf("SaveSplit() error = %v", err)
	}

	loaded, err := LoadSplit(dir)
	if err != nil {
		t.Fatalf("LoadSplit() error = %v", err)
	}
	if loaded.ID != w.ID || loaded.Name != w.Name {
		t.Errorf("loaded identity mismatch: %+v", loaded)
	}
	if len(loaded.Graph.Nodes()) != 3 {
		t.Errorf("loaded graph has %d nodes, want 3", len(loaded.Graph.Nodes()))
	}
	if len(loaded.Loops.List()) != 1 {
		t.Errorf("loaded loops = %d, want 1", len(loaded.Loops.List()))
	}
	if v, _ := loaded.Setting("tone"); v != "wry" {
		t.Errorf("loaded setting tone = %v, want wry", v)
	}
}

func TestExportDOTAndMermaid(t *testing.T) {
	w := buildSampleWorkspace(t)

	dot := w.ExportDOT()
	if dot == "" {
		t.Error("ExportDOT() returned empty string")
	}
	mermaid := w.ExportMermaid()
	if mermaid == "" {
		t.Error("ExportMermaid() returned empty string")
	}
}

func TestRemoveEpochUnknown(t *testing.T) {
	w := buildSampleWorkspace(t)
	if err := w.RemoveEpoch("missing"); err == nil {
		t.Error("expected error removing unknown epoch")
	}
}
