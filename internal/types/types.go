// Package types defines the core data structures for the time-loop narrative
// engine: day-graph nodes and edges, loops, decisions, outcomes, knowledge
// states, equivalence classes, epochs, and validation issues.
//
// These types are shared across every component (daygraph, loopstore,
// equivalence, operators, consistency, narrative, resolution) and are
// designed to support deep-copy semantics in the storage layer, the same
// way the teacher's types package backs concurrent access in its storage.
package types

import "time"

// NodeKind categorizes a day-graph node.
type NodeKind string

const (
	NodeEvent     NodeKind = "event"
	NodeDecision  NodeKind = "decision"
	NodeLocation  NodeKind = "location"
	NodeEncounter NodeKind = "encounter"
	NodeDiscovery NodeKind = "discovery"
	NodeDeath     NodeKind = "death"
	NodeReset     NodeKind = "reset"
)

// IsTerminal reports whether a node of this kind may have no outgoing edges.
func (k NodeKind) IsTerminal() bool {
	return k == NodeDeath || k == NodeReset
}

// EdgeType categorizes a day-graph edge.
type EdgeType string

const (
	EdgeDefault     EdgeType = "default"
	EdgeChoice      EdgeType = "choice"
	EdgeConditional EdgeType = "conditional"
	EdgeTimed       EdgeType = "timed"
	EdgeRandom      EdgeType = "random"
)

// TimeWindow bounds an edge's traversal to a slot range.
type TimeWindow struct {
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
}

// Preconditions gate an edge's traversal.
type Preconditions struct {
	RequiresKnowledge []string    `json:"requires_knowledge,omitempty"`
	RequiresItem      []string    `json:"requires_item,omitempty"`
	TimeWindow        *TimeWindow `json:"time_window,omitempty"`
}

// Choice is one option of a decision node.
type Choice struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Node is a vertex in the day graph.
type Node struct {
	ID              string         `json:"id"`
	Kind            NodeKind       `json:"kind"`
	TimeSlot        string         `json:"time_slot"` // HH:MM
	Label           string         `json:"label"`
	Description     string         `json:"description,omitempty"`
	LocationTag     string         `json:"location_tag,omitempty"`
	Critical        bool           `json:"critical,omitempty"`
	TimeFlexible    bool           `json:"time_flexible,omitempty"`
	Choices         []Choice       `json:"choices,omitempty"`
	KnowledgeAvail  []string       `json:"knowledge_available,omitempty"`
	ItemsAvail      []string       `json:"items_available,omitempty"`
	CharacterTags   []string       `json:"character_tags,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID            string         `json:"id"`
	Source        string         `json:"source"`
	Target        string         `json:"target"`
	Type          EdgeType       `json:"type"`
	Weight        *float64       `json:"weight,omitempty"`
	Preconditions *Preconditions `json:"preconditions,omitempty"`
	DurationMin   *int           `json:"duration_minutes,omitempty"`
	Label         string         `json:"label,omitempty"`
}

// TimeBounds is the day's valid time range.
type TimeBounds struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// OutcomeType categorizes how a loop ended.
type OutcomeType string

const (
	OutcomeDeath          OutcomeType = "death"
	OutcomeResetTrigger   OutcomeType = "reset_trigger"
	OutcomeDayEnd         OutcomeType = "day_end"
	OutcomeVoluntaryReset OutcomeType = "voluntary_reset"
	OutcomeSubLoopExit    OutcomeType = "sub_loop_exit"
	OutcomeSuccess        OutcomeType = "success"
	OutcomeFailure        OutcomeType = "failure"
	OutcomePartial        OutcomeType = "partial"
)

// Outcome records how a loop terminated.
type Outcome struct {
	Type              OutcomeType       `json:"type"`
	TerminalNodeID    string            `json:"terminal_node_id"`
	Timestamp         time.Time         `json:"timestamp"`
	Cause             string            `json:"cause,omitempty"`
	WorldStateDelta   map[string]string `json:"world_state_delta,omitempty"`
	CharactersAffected []string         `json:"characters_affected,omitempty"`
	Hash              string            `json:"hash,omitempty"` // 64-hex
}

// Decision records a choice made at a decision node during a loop.
type Decision struct {
	NodeID       string    `json:"node_id"`
	ChoiceIndex  int       `json:"choice_index"`
	Timestamp    time.Time `json:"timestamp"`
	Rationale    string    `json:"rationale,omitempty"`
	Confidence   *float64  `json:"confidence,omitempty"`
}

// Fact is a single piece of knowledge with a certainty and optional
// contradiction pointers.
type Fact struct {
	Key             string   `json:"key"`
	Value           string   `json:"value"`
	Certainty       float64  `json:"certainty"`
	ContradictedBy  []string `json:"contradicted_by,omitempty"`
}

// KnowledgeState is a versioned, lineage-linked bundle of facts.
type KnowledgeState struct {
	ID       string  `json:"id"`
	Version  int     `json:"version"`
	ParentID string  `json:"parent_id,omitempty"`
	Facts    []*Fact `json:"facts"`
}

// EmotionalState is the protagonist's emotional register.
type EmotionalState string

const (
	EmoHopeful     EmotionalState = "hopeful"
	EmoCurious     EmotionalState = "curious"
	EmoFrustrated  EmotionalState = "frustrated"
	EmoDesperate   EmotionalState = "desperate"
	EmoNumb        EmotionalState = "numb"
	EmoDetermined  EmotionalState = "determined"
	EmoBroken      EmotionalState = "broken"
	EmoCalm        EmotionalState = "calm"
	EmoAngry       EmotionalState = "angry"
	EmoResigned    EmotionalState = "resigned"
)

// LoopStatus is the lifecycle state of a loop.
type LoopStatus string

const (
	LoopInProgress LoopStatus = "in_progress"
	LoopCompleted  LoopStatus = "completed"
	LoopAborted    LoopStatus = "aborted"
)

// SubLoop records a repeated segment within a loop.
type SubLoop struct {
	ID                 string         `json:"id"`
	ParentLoopID       string         `json:"parent_loop_id"`
	ParentSubLoopID    string         `json:"parent_sub_loop_id,omitempty"`
	Depth              int            `json:"depth"`
	StartNodeID        string         `json:"start_node_id"`
	EndNodeID          string         `json:"end_node_id"`
	AttemptCount       int            `json:"attempt_count"`
	StrategiesTried    []string       `json:"strategies_tried,omitempty"`
	BestOutcomeID      string         `json:"best_outcome_id,omitempty"`
	FinalOutcomeID     string         `json:"final_outcome_id,omitempty"`
	KnowledgeGained    []string       `json:"knowledge_gained,omitempty"`
	PsychologicalEffect string        `json:"psychological_effect,omitempty"`
}

// Loop is one full traversal of the day graph.
type Loop struct {
	ID                    string          `json:"id"`
	SequenceNumber        int             `json:"sequence_number"`
	EpochID               string          `json:"epoch_id"`
	GraphID               string          `json:"graph_id"`
	Status                LoopStatus      `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	StartedAt             time.Time       `json:"started_at"`
	EndedAt               *time.Time      `json:"ended_at,omitempty"`
	KnowledgeStateStartID string          `json:"knowledge_state_start_id"`
	KnowledgeStateEndID   string          `json:"knowledge_state_end_id,omitempty"`
	EmotionalStateStart   EmotionalState  `json:"emotional_state_start"`
	EmotionalStateEnd     EmotionalState  `json:"emotional_state_end,omitempty"`
	Decisions             []Decision      `json:"decisions"`
	DecisionVector        []int           `json:"decision_vector"`
	Path                  []string        `json:"path,omitempty"`
	Outcome               *Outcome        `json:"outcome,omitempty"`
	SubLoops              []*SubLoop      `json:"sub_loops,omitempty"`
	EquivalenceClassID    string          `json:"equivalence_class_id,omitempty"`
	IsAnchor              bool            `json:"is_anchor"`
	Tags                  []string        `json:"tags,omitempty"`
}

// RiskTolerance is an epoch's author-declared appetite for risk.
type RiskTolerance string

const (
	RiskMinimal  RiskTolerance = "minimal"
	RiskLow      RiskTolerance = "low"
	RiskMedium   RiskTolerance = "medium"
	RiskHigh     RiskTolerance = "high"
	RiskReckless RiskTolerance = "reckless"
)

// StrategyProfile describes an epoch's authorial intent.
type StrategyProfile struct {
	PrimaryOperator string        `json:"primary_operator"`
	RiskTolerance   RiskTolerance `json:"risk_tolerance"`
	Goals           []string      `json:"goals,omitempty"`
}

// Epoch is a phase spanning many loops.
type Epoch struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Order             int              `json:"order"`
	Description       string           `json:"description,omitempty"`
	Strategy          *StrategyProfile `json:"strategy,omitempty"`
	EmotionalBaseline EmotionalState   `json:"emotional_baseline,omitempty"`
	EntryConditions   []string         `json:"entry_conditions,omitempty"`
	ExitConditions    []string         `json:"exit_conditions,omitempty"`
	AnchorLoopIDs     []string         `json:"anchor_loop_ids,omitempty"`
}

// EquivalenceClass is a bucket of behaviourally-indistinguishable loops.
type EquivalenceClass struct {
	ID                       string         `json:"id"`
	OutcomeHash              string         `json:"outcome_hash"`
	KnowledgeEndHash         string         `json:"knowledge_end_hash"`
	CompositeHash            string         `json:"composite_hash"`
	RepresentativeLoopID     string         `json:"representative_loop_id"`
	SampleLoopIDs            []string       `json:"sample_loop_ids"`
	MemberCount              int            `json:"member_count"`
	PerEpochDistribution     map[string]int `json:"per_epoch_distribution"`
	OutcomeSummary           string         `json:"outcome_summary"`
	KnowledgeDeltaSummary    string         `json:"knowledge_delta_summary"`
	CommonTags               []string       `json:"common_tags,omitempty"`
	DecisionVectorCentroid   []float64      `json:"decision_vector_centroid,omitempty"`
	DecisionVectorVariance   float64        `json:"decision_vector_variance"`
	FirstOccurrenceLoopID    string         `json:"first_occurrence_loop_id"`
	LastOccurrenceLoopID     string         `json:"last_occurrence_loop_id"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
	NarrativeTemplate        string         `json:"narrative_template,omitempty"`
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// RepairAction is a single suggested fix for an issue.
type RepairAction struct {
	Description string `json:"description"`
}

// EntityRef points at the entity a validation issue concerns.
type EntityRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// Issue is a single validation finding.
type Issue struct {
	Severity   Severity       `json:"severity"`
	Category   string         `json:"category"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Entity     *EntityRef     `json:"entity,omitempty"`
	Repairs    []RepairAction `json:"repairs,omitempty"`
}

// DocumentGraph is the graph section of a persisted project artifact
// (spec §6: "graph = {id, name, version?, time_bounds{start,end},
// start_node_id, nodes[], edges[]}").
type DocumentGraph struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     int         `json:"version,omitempty"`
	TimeBounds  TimeBounds  `json:"time_bounds"`
	StartNodeID string      `json:"start_node_id"`
	Nodes       []*Node     `json:"nodes"`
	Edges       []*Edge     `json:"edges"`
}

// Document is the single structured persisted project artifact (spec §6):
// a day graph, its epochs, every recorded loop, the equivalence classes
// they cluster into, and the knowledge-state lineage, plus free-form
// settings. A separate on-disk layout may split this into sibling
// config/graph/loops/equivalence_classes/knowledge_states files keyed by
// the same project id — semantically equivalent to this single document.
type Document struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Graph              DocumentGraph     `json:"graph"`
	Epochs             []*Epoch          `json:"epochs"`
	Loops              []*Loop           `json:"loops"`
	EquivalenceClasses []*EquivalenceClass `json:"equivalence_classes"`
	KnowledgeStates    []*KnowledgeState `json:"knowledge_states"`
	Settings           map[string]string `json:"settings,omitempty"`
}
