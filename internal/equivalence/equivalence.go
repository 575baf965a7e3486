// Package equivalence groups behaviourally indistinguishable loops into
// equivalence classes by hashing outcome and ending knowledge state (spec
// §4.D), maintains per-class statistics as membership changes, and provides
// the decision-vector distance utilities the vary/relive operators use.
//
// Modeled on the teacher's in-memory storage bookkeeping style (counters,
// maps kept consistent under a single mutex) applied to a derived index
// rather than a primary store.
package equivalence

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomwright/dayloop/internal/loopstore"
	"github.com/loomwright/dayloop/internal/types"
)

const sampleCap = 8

// Index owns every equivalence class derived from a workspace's loops.
type Index struct {
	mu      sync.RWMutex
	classes map[string]*types.EquivalenceClass
	byHash  map[string]string // composite_hash -> class id

	// memberVectors retains every member's decision vector per class so
	// centroid/variance can be recomputed over the full membership on each
	// Assign (spec §4.D: "on every addition ... recompute"), not just the
	// founding loop. Not persisted — Put (restore from a snapshot) seeds it
	// with the class's existing centroid as its sole vector, since the raw
	// per-member vectors aren't part of the persisted artifact.
	memberVectors map[string][][]int
}

// New creates an empty equivalence index.
func New() *Index {
	return &Index{
		classes:       make(map[string]*types.EquivalenceClass),
		byHash:        make(map[string]string),
		memberVectors: make(map[string][][]int),
	}
}

func canonicalPairs(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k])
		b.WriteByte(';')
	}
	return b.String()
}

func canonicalList(items []string) string {
	cp := append([]string(nil), items...)
	sort.Strings(cp)
	return strings.Join(cp, ";")
}

func hashString(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// OutcomeHash computes the outcome's identity hash (spec §4.D step 1).
func OutcomeHash(o *types.Outcome) string {
	return hashString(
		string(o.Type),
		o.TerminalNodeID,
		canonicalPairs(o.WorldStateDelta),
		canonicalList(o.CharactersAffected),
	)
}

// KnowledgeEndHash computes the ending knowledge state's identity hash.
// Delegates to loopstore's stable, order-independent digest so both
// packages agree on one canonical form.
func KnowledgeEndHash(k *types.KnowledgeState) string {
	return loopstore.HashKnowledgeState(k)
}

// CompositeHash combines the two into the equivalence key (spec §4.D step 3).
func CompositeHash(outcomeHash, knowledgeEndHash string) string {
	return hashString(outcomeHash, knowledgeEndHash)
}

// Assign computes a loop's hashes and joins it to a class, creating one if
// no existing class matches. Assignment is idempotent: re-assigning a loop
// whose EquivalenceClassID already names the matching class, or that is
// recorded in sample_loop_ids for it, is a no-op
// (spec §9 open question 1 resolution — see the design ledger).
func (idx *Index) Assign(loop *types.Loop, knowledgeEnd *types.KnowledgeState) *types.EquivalenceClass {
	outcomeHash := OutcomeHash(loop.Outcome)
	knowledgeHash := KnowledgeEndHash(knowledgeEnd)
	composite := CompositeHash(outcomeHash, knowledgeHash)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	classID, exists := idx.byHash[composite]
	if !exists {
		now := time.Now()
		class := &types.EquivalenceClass{
			ID:                    uuid.NewString(),
			OutcomeHash:           outcomeHash,
			KnowledgeEndHash:      knowledgeHash,
			CompositeHash:         composite,
			RepresentativeLoopID:  loop.ID,
			SampleLoopIDs:         []string{loop.ID},
			MemberCount:           1,
			PerEpochDistribution:  map[string]int{loop.EpochID: 1},
			FirstOccurrenceLoopID: loop.ID,
			LastOccurrenceLoopID:  loop.ID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		class.OutcomeSummary = outcomeSummary(loop.Outcome)
		class.CommonTags = append([]string(nil), loop.Tags...)
		idx.memberVectors[class.ID] = [][]int{append([]int(nil), loop.DecisionVector...)}
		class.DecisionVectorCentroid, class.DecisionVectorVariance = centroidAndVariance(idx.memberVectors[class.ID])
		idx.classes[class.ID] = class
		idx.byHash[composite] = class.ID
		return cloneClass(class)
	}

	class := idx.classes[classID]
	if loop.EquivalenceClassID == classID || idempotentMember(class, loop.ID) {
		return cloneClass(class)
	}

	class.MemberCount++
	class.LastOccurrenceLoopID = loop.ID
	class.UpdatedAt = time.Now()
	class.PerEpochDistribution[loop.EpochID]++
	if len(class.SampleLoopIDs) < sampleCap {
		class.SampleLoopIDs = append(class.SampleLoopIDs, loop.ID)
	}
	class.CommonTags = intersectTags(class.CommonTags, loop.Tags)

	idx.memberVectors[classID] = append(idx.memberVectors[classID], append([]int(nil), loop.DecisionVector...))
	class.DecisionVectorCentroid, class.DecisionVectorVariance = centroidAndVariance(idx.memberVectors[classID])
	return cloneClass(class)
}

// idempotentMember reports whether loopID is already recorded as this
// class's representative or a sample member.
func idempotentMember(class *types.EquivalenceClass, loopID string) bool {
	if class.RepresentativeLoopID == loopID {
		return true
	}
	for _, id := range class.SampleLoopIDs {
		if id == loopID {
			return true
		}
	}
	return false
}

// Remove decrements a class's membership, recomputing its statistics. If
// this was the class's last member, the class is deleted.
func (idx *Index) Remove(classID, loopID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	class, ok := idx.classes[classID]
	if !ok {
		return
	}
	class.MemberCount--
	class.SampleLoopIDs = removeID(class.SampleLoopIDs, loopID)
	if class.MemberCount <= 0 {
		delete(idx.classes, classID)
		delete(idx.byHash, class.CompositeHash)
		delete(idx.memberVectors, classID)
		return
	}
	// The departing loop's specific vector isn't tracked by id, only by
	// class; drop the most recently added one as the closest approximation
	// and recompute over what remains.
	if vecs := idx.memberVectors[classID]; len(vecs) > 0 {
		idx.memberVectors[classID] = vecs[:len(vecs)-1]
		class.DecisionVectorCentroid, class.DecisionVectorVariance = centroidAndVariance(idx.memberVectors[classID])
	}
	class.UpdatedAt = time.Now()
}

// Get retrieves a class by id.
func (idx *Index) Get(id string) (*types.EquivalenceClass, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.classes[id]
	if !ok {
		return nil, false
	}
	return cloneClass(c), true
}

// ByCompositeHash finds a class by its composite hash.
func (idx *Index) ByCompositeHash(hash string) (*types.EquivalenceClass, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.byHash[hash]
	if !ok {
		return nil, false
	}
	return cloneClass(idx.classes[id]), true
}

// Put restores an equivalence class into the index as-is, re-indexing it by
// composite hash. Used when loading a workspace snapshot back from a
// persisted document, where classes arrive fully formed rather than built
// up via Assign.
func (idx *Index) Put(c *types.EquivalenceClass) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	stored := cloneClass(c)
	idx.classes[stored.ID] = stored
	if stored.CompositeHash != "" {
		idx.byHash[stored.CompositeHash] = stored.ID
	}
	if len(stored.DecisionVectorCentroid) > 0 {
		seed := make([]int, len(stored.DecisionVectorCentroid))
		for i, v := range stored.DecisionVectorCentroid {
			seed[i] = int(v)
		}
		idx.memberVectors[stored.ID] = [][]int{seed}
	}
}

// All returns every equivalence class.
func (idx *Index) All() []*types.EquivalenceClass {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*types.EquivalenceClass, 0, len(idx.classes))
	for _, c := range idx.classes {
		out = append(out, cloneClass(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func outcomeSummary(o *types.Outcome) string {
	if o == nil {
		return ""
	}
	if o.Cause != "" {
		return string(o.Type) + ": " + o.Cause
	}
	return string(o.Type) + " at " + o.TerminalNodeID
}

func intersectTags(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	var out []string
	for _, t := range a {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

func removeID(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// centroidAndVariance computes the per-position mean and the mean of
// per-position variances across a set of decision vectors, ignoring
// positions absent in shorter vectors (spec §4.D class maintenance).
func centroidAndVariance(vectors [][]int) ([]float64, float64) {
	maxLen := 0
	for _, v := range vectors {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}
	if maxLen == 0 {
		return nil, 0
	}
	centroid := make([]float64, maxLen)
	counts := make([]int, maxLen)
	for _, v := range vectors {
		for i, x := range v {
			centroid[i] += float64(x)
			counts[i]++
		}
	}
	for i := range centroid {
		if counts[i] > 0 {
			centroid[i] /= float64(counts[i])
		}
	}

	variances := make([]float64, maxLen)
	for _, v := range vectors {
		for i, x := range v {
			d := float64(x) - centroid[i]
			variances[i] += d * d
		}
	}
	total := 0.0
	for i := range variances {
		if counts[i] > 0 {
			variances[i] /= float64(counts[i])
		}
		total += variances[i]
	}
	meanVariance := 0.0
	if maxLen > 0 {
		meanVariance = total / float64(maxLen)
	}
	return centroid, meanVariance
}

// sentinel is a choice index no real decision can take; used to pad the
// shorter of two vectors when computing Hamming distance.
const sentinel = -1

// HammingDistance counts differing positions between two decision vectors,
// treating the shorter one as padded with sentinel.
func HammingDistance(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	dist := 0
	for i := 0; i < n; i++ {
		av, bv := sentinel, sentinel
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			dist++
		}
	}
	return dist
}

// Mutate flips k positions of v chosen uniformly at random, replacing each
// with a value drawn from choiceCounts[position] (the number of valid
// choices at that decision node); positions beyond len(choiceCounts) are
// left untouched.
func Mutate(v []int, k int, choiceCounts []int, rng *rand.Rand) []int {
	out := append([]int(nil), v...)
	if len(out) == 0 || k <= 0 {
		return out
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	positions := rng.Perm(len(out))
	flipped := 0
	for _, pos := range positions {
		if flipped >= k {
			break
		}
		if pos >= len(choiceCounts) {
			continue
		}
		n := 2
		if choiceCounts[pos] > 0 {
			n = choiceCounts[pos]
		}
		if n <= 1 {
			continue
		}
		cur := out[pos]
		next := cur
		for next == cur {
			next = rng.Intn(n)
		}
		out[pos] = next
		flipped++
	}
	return out
}

// Crossover performs single-point crossover of two decision vectors at a
// random point (or at point if point >= 0), returning one child.
func Crossover(a, b []int, point int, rng *rand.Rand) []int {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return append([]int(nil), a...)
	}
	if point < 0 {
		point = rng.Intn(n)
	}
	if point > n {
		point = n
	}
	child := append([]int(nil), a[:point]...)
	child = append(child, b[point:]...)
	return child
}

func cloneClass(c *types.EquivalenceClass) *types.EquivalenceClass {
	cp := *c
	cp.SampleLoopIDs = append([]string(nil), c.SampleLoopIDs...)
	cp.CommonTags = append([]string(nil), c.CommonTags...)
	cp.DecisionVectorCentroid = append([]float64(nil), c.DecisionVectorCentroid...)
	cp.PerEpochDistribution = make(map[string]int, len(c.PerEpochDistribution))
	for k, v := range c.PerEpochDistribution {
		cp.PerEpochDistribution[k] = v
	}
	return &cp
}

