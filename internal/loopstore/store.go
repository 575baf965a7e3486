// Package loopstore holds completed and in-progress loops, their knowledge
// states, and the indices needed to query them by epoch, status, outcome,
// equivalence class, anchor flag, and date range (spec §3 "Loop",
// §4.C "Loop store").
//
// Modeled on the teacher's in-memory storage (formerly
// internal/storage/memory.go): a read-write mutex guarding plain maps, deep
// copies returned on every read so callers can never mutate internal state,
// and ordered slices kept sorted for deterministic pagination.
package loopstore

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomwright/dayloop/internal/engineerr"
	"github.com/loomwright/dayloop/internal/types"
)

// Store holds all loops and knowledge states for one workspace.
type Store struct {
	mu sync.RWMutex

	loops         map[string]*types.Loop
	bySequence    map[int]string
	loopsOrdered  []*types.Loop // sorted by sequence number
	knowledge     map[string]*types.KnowledgeState
	nextSequence  int
}

// New creates an empty loop store.
func New() *Store {
	return &Store{
		loops:        make(map[string]*types.Loop),
		bySequence:   make(map[int]string),
		knowledge:    make(map[string]*types.KnowledgeState),
		nextSequence: 1,
	}
}

// StartLoop begins a new in-progress loop, assigning it the next sequence
// number.
func (s *Store) StartLoop(epochID, graphID, knowledgeStartID string, emotion types.EmotionalState) *types.Loop {
	s.mu.Lock()
	defer s.mu.Unlock()

	loop := types.NewLoop(uuid.NewString(), s.nextSequence, epochID, graphID, knowledgeStartID, emotion)
	s.nextSequence++
	s.loops[loop.ID] = loop
	s.bySequence[loop.SequenceNumber] = loop.ID
	s.loopsOrdered = append(s.loopsOrdered, loop)
	return copyLoop(loop)
}

// AppendDecision records a choice made during an in-progress loop. It
// appends only d.NodeID to the loop's Path — callers that traverse
// intermediate non-decision nodes between two decisions must call
// AppendDecision once per traversed node (using that node's own decision,
// or a synthetic zero-choice one for a non-decision waypoint) so Path stays
// a fully connected walk through the day graph. A caller that skips
// waypoints produces a Path that fails the §3 connectivity invariant and
// trips consistency.CheckOutcomePath.
func (s *Store) AppendDecision(loopID string, d types.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loop, ok := s.loops[loopID]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "loop %q not found", loopID)
	}
	if loop.Status != types.LoopInProgress {
		return engineerr.Newf(engineerr.NotInProgress, "loop %q is %s, not in_progress", loopID, loop.Status)
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now()
	}
	loop.Decisions = append(loop.Decisions, d)
	loop.DecisionVector = append(loop.DecisionVector, d.ChoiceIndex)
	loop.Path = append(loop.Path, d.NodeID)
	return nil
}

// CompleteLoop finalizes an in-progress loop with its outcome and ending
// knowledge/emotional state.
func (s *Store) CompleteLoop(loopID string, outcome *types.Outcome, knowledgeEndID string, emotionEnd types.EmotionalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loop, ok := s.loops[loopID]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "loop %q not found", loopID)
	}
	if loop.Status != types.LoopInProgress {
		return engineerr.Newf(engineerr.NotCompletable, "loop %q is %s, not in_progress", loopID, loop.Status)
	}
	now := time.Now()
	loop.Status = types.LoopCompleted
	loop.EndedAt = &now
	loop.Outcome = outcome
	loop.KnowledgeStateEndID = knowledgeEndID
	loop.EmotionalStateEnd = emotionEnd
	if outcome != nil && len(loop.Path) > 0 && loop.Path[len(loop.Path)-1] != outcome.TerminalNodeID {
		loop.Path = append(loop.Path, outcome.TerminalNodeID)
	}
	return nil
}

// AbortLoop marks an in-progress loop as aborted without an outcome.
func (s *Store) AbortLoop(loopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loop, ok := s.loops[loopID]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "loop %q not found", loopID)
	}
	if loop.Status != types.LoopInProgress {
		return engineerr.Newf(engineerr.NotCompletable, "loop %q is %s, not in_progress", loopID, loop.Status)
	}
	now := time.Now()
	loop.Status = types.LoopAborted
	loop.EndedAt = &now
	return nil
}

// SetEquivalenceClass stamps a completed loop with its assigned class.
func (s *Store) SetEquivalenceClass(loopID, classID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loop, ok := s.loops[loopID]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "loop %q not found", loopID)
	}
	loop.EquivalenceClassID = classID
	return nil
}

// SetAnchor marks or unmarks a loop as an epoch anchor.
func (s *Store) SetAnchor(loopID string, anchor bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loop, ok := s.loops[loopID]
	if !ok {
		return engineerr.Newf(engineerr.UnknownId, "loop %q not found", loopID)
	}
	loop.IsAnchor = anchor
	return nil
}

// Get retrieves a loop by id (O(1), deep copy).
func (s *Store) Get(id string) (*types.Loop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loop, ok := s.loops[id]
	if !ok {
		return nil, false
	}
	return copyLoop(loop), true
}

// Put restores a fully-formed loop into the store as-is, re-indexing it by
// id and sequence number and advancing nextSequence past it if needed. Used
// when loading a workspace snapshot back from a persisted document, where
// loops arrive complete rather than built up via StartLoop/AppendDecision.
func (s *Store) Put(l *types.Loop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyLoop(l)
	s.loops[stored.ID] = stored
	s.bySequence[stored.SequenceNumber] = stored.ID
	s.loopsOrdered = append(s.loopsOrdered, stored)
	sort.Slice(s.loopsOrdered, func(i, j int) bool {
		return s.loopsOrdered[i].SequenceNumber < s.loopsOrdered[j].SequenceNumber
	})
	if stored.SequenceNumber >= s.nextSequence {
		s.nextSequence = stored.SequenceNumber + 1
	}
}

// GetBySequence retrieves a loop by sequence number (O(1), deep copy).
func (s *Store) GetBySequence(seq int) (*types.Loop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySequence[seq]
	if !ok {
		return nil, false
	}
	return copyLoop(s.loops[id]), true
}

// List returns all loops, ordered by sequence number.
func (s *Store) List() []*types.Loop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Loop, len(s.loopsOrdered))
	for i, l := range s.loopsOrdered {
		out[i] = copyLoop(l)
	}
	return out
}

// ByEpoch returns every loop belonging to epochID, in sequence order.
func (s *Store) ByEpoch(epochID string) []*types.Loop {
	return s.filter(func(l *types.Loop) bool { return l.EpochID == epochID })
}

// ByStatus returns every loop with the given status.
func (s *Store) ByStatus(status types.LoopStatus) []*types.Loop {
	return s.filter(func(l *types.Loop) bool { return l.Status == status })
}

// ByOutcomeType returns every completed loop with the given outcome type.
func (s *Store) ByOutcomeType(t types.OutcomeType) []*types.Loop {
	return s.filter(func(l *types.Loop) bool { return l.Outcome != nil && l.Outcome.Type == t })
}

// ByEquivalenceClass returns every loop assigned to classID.
func (s *Store) ByEquivalenceClass(classID string) []*types.Loop {
	return s.filter(func(l *types.Loop) bool { return l.EquivalenceClassID == classID })
}

// Anchors returns every loop flagged as an epoch anchor.
func (s *Store) Anchors() []*types.Loop {
	return s.filter(func(l *types.Loop) bool { return l.IsAnchor })
}

// ByDateRange returns loops started within [after, before].
func (s *Store) ByDateRange(after, before time.Time) []*types.Loop {
	return s.filter(func(l *types.Loop) bool {
		return !l.StartedAt.Before(after) && !l.StartedAt.After(before)
	})
}

func (s *Store) filter(pred func(*types.Loop) bool) []*types.Loop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Loop
	for _, l := range s.loopsOrdered {
		if pred(l) {
			out = append(out, copyLoop(l))
		}
	}
	return out
}

// PutKnowledgeState stores a knowledge state (create or update).
func (s *Store) PutKnowledgeState(k *types.KnowledgeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *k
	cp.Facts = make([]*types.Fact, len(k.Facts))
	for i, f := range k.Facts {
		fcp := *f
		cp.Facts[i] = &fcp
	}
	s.knowledge[k.ID] = &cp
}

// GetKnowledgeState retrieves a knowledge state by id.
func (s *Store) GetKnowledgeState(id string) (*types.KnowledgeState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.knowledge[id]
	if !ok {
		return nil, false
	}
	cp := *k
	cp.Facts = make([]*types.Fact, len(k.Facts))
	for i, f := range k.Facts {
		fcp := *f
		cp.Facts[i] = &fcp
	}
	return &cp, true
}

// ListKnowledgeStates returns every known knowledge state, sorted by id for
// deterministic output (used when snapshotting a workspace to a document).
func (s *Store) ListKnowledgeStates() []*types.KnowledgeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.KnowledgeState, 0, len(s.knowledge))
	for _, k := range s.knowledge {
		cp := *k
		cp.Facts = make([]*types.Fact, len(k.Facts))
		for i, f := range k.Facts {
			fcp := *f
			cp.Facts[i] = &fcp
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HashKnowledgeState computes a stable, order-independent hash of a
// knowledge state's facts, used to build the equivalence class's
// knowledge_end_hash.
func HashKnowledgeState(k *types.KnowledgeState) string {
	facts := append([]*types.Fact(nil), k.Facts...)
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].Key != facts[j].Key {
			return facts[i].Key < facts[j].Key
		}
		return facts[i].Value < facts[j].Value
	})

	var b strings.Builder
	for _, f := range facts {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func copyLoop(l *types.Loop) *types.Loop {
	cp := *l
	cp.Decisions = append([]types.Decision(nil), l.Decisions...)
	cp.DecisionVector = append([]int(nil), l.DecisionVector...)
	cp.Path = append([]string(nil), l.Path...)
	cp.Tags = append([]string(nil), l.Tags...)
	if l.Outcome != nil {
		outcome := *l.Outcome
		cp.Outcome = &outcome
	}
	if l.EndedAt != nil {
		ended := *l.EndedAt
		cp.EndedAt = &ended
	}
	cp.SubLoops = make([]*types.SubLoop, len(l.SubLoops))
	for i, sl := range l.SubLoops {
		slcp := *sl
		cp.SubLoops[i] = &slcp
	}
	return &cp
}
