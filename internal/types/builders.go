package types

import "time"

// NodeBuilder provides a fluent API for node construction.
type NodeBuilder struct {
	node *Node
}

// NewNode creates a NodeBuilder with sensible defaults.
func NewNode(id string, kind NodeKind) *NodeBuilder {
	return &NodeBuilder{node: &Node{ID: id, Kind: kind}}
}

func (b *NodeBuilder) TimeSlot(slot string) *NodeBuilder { b.node.TimeSlot = slot; return b }
func (b *NodeBuilder) Label(label string) *NodeBuilder    { b.node.Label = label; return b }
func (b *NodeBuilder) Description(d string) *NodeBuilder   { b.node.Description = d; return b }
func (b *NodeBuilder) Critical(c bool) *NodeBuilder         { b.node.Critical = c; return b }
func (b *NodeBuilder) TimeFlexible(f bool) *NodeBuilder      { b.node.TimeFlexible = f; return b }
func (b *NodeBuilder) Choices(labels ...string) *NodeBuilder {
	choices := make([]Choice, len(labels))
	for i, l := range labels {
		choices[i] = Choice{Index: i, Label: l}
	}
	b.node.Choices = choices
	return b
}
func (b *NodeBuilder) Build() *Node { return b.node }

// EdgeBuilder provides a fluent API for edge construction.
type EdgeBuilder struct {
	edge *Edge
}

// NewEdge creates an EdgeBuilder with sensible defaults.
func NewEdge(id, source, target string) *EdgeBuilder {
	return &EdgeBuilder{edge: &Edge{ID: id, Source: source, Target: target, Type: EdgeDefault}}
}

func (b *EdgeBuilder) Type(t EdgeType) *EdgeBuilder { b.edge.Type = t; return b }
func (b *EdgeBuilder) Weight(w float64) *EdgeBuilder { b.edge.Weight = &w; return b }
func (b *EdgeBuilder) Label(l string) *EdgeBuilder    { b.edge.Label = l; return b }
func (b *EdgeBuilder) RequiresKnowledge(keys ...string) *EdgeBuilder {
	if b.edge.Preconditions == nil {
		b.edge.Preconditions = &Preconditions{}
	}
	b.edge.Preconditions.RequiresKnowledge = keys
	return b
}
func (b *EdgeBuilder) Build() *Edge { return b.edge }

// NewKnowledgeState creates a fresh root knowledge state (version 1, no parent).
func NewKnowledgeState(id string, facts ...*Fact) *KnowledgeState {
	return &KnowledgeState{ID: id, Version: 1, Facts: facts}
}

// Derive creates a child knowledge state one version ahead of this one,
// inheriting all facts as a starting point for the caller to mutate.
func (k *KnowledgeState) Derive(childID string) *KnowledgeState {
	facts := make([]*Fact, len(k.Facts))
	for i, f := range k.Facts {
		cp := *f
		facts[i] = &cp
	}
	return &KnowledgeState{ID: childID, Version: k.Version + 1, ParentID: k.ID, Facts: facts}
}

// NewLoop creates an in-progress loop with the given identity fields.
func NewLoop(id string, seq int, epochID, graphID, knowledgeStartID string, emotion EmotionalState) *Loop {
	now := time.Now()
	return &Loop{
		ID:                    id,
		SequenceNumber:        seq,
		EpochID:               epochID,
		GraphID:               graphID,
		Status:                LoopInProgress,
		CreatedAt:             now,
		StartedAt:             now,
		KnowledgeStateStartID: knowledgeStartID,
		EmotionalStateStart:   emotion,
		Decisions:             []Decision{},
		DecisionVector:        []int{},
	}
}
