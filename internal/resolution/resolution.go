// Package resolution models story arcs that can be resolved multiple ways
// (spec §4.H): mode unlocking gated by meta-level and knowledge flags, a
// weighted cost model over each mode's requirements, and a
// trivialization-progress metric tracking how cheap the arc's best
// unlocked mode has become relative to its theoretical floor.
package resolution

import (
	"fmt"
	"strings"
)

// Name identifies one of an arc's resolution modes.
type Name string

const (
	ModeOnsiteHeavy   Name = "ONSITE_HEAVY"
	ModeOnsiteLight   Name = "ONSITE_LIGHT"
	ModeRemoteSimple  Name = "REMOTE_SIMPLE"
	ModeRemoteComplex Name = "REMOTE_COMPLEX"
	ModeUnstable      Name = "UNSTABLE"
	ModeNotResolved   Name = "NOT_RESOLVED"
)

// Mode is one way an arc can be satisfied, with the requirements that gate
// it and the raw inputs to the cost model.
type Mode struct {
	Name                   Name
	MinMetaLevel           int
	RequiredKnowledgeFlags []string
	RequiredTimeSlots      []string
	RequiredLocations      []string
	RiskLevel              int
	BaseCost               float64
}

// Arc is a sub-goal with a fixed set of resolution modes, one of which may
// be the null ModeNotResolved.
type Arc struct {
	ID    string
	Name  string
	Modes []Mode
}

// Weights are the cost model's per-dimension coefficients.
type Weights struct {
	Time float64
	Risk float64
	Loc  float64
	Know float64
}

// DefaultWeights mirrors the spec's cost model with risk weighted heaviest.
func DefaultWeights() Weights {
	return Weights{Time: 1, Risk: 2, Loc: 1, Know: 0.5}
}

// Cost computes cost(mode) = base + w_time*|time_slots| + w_risk*risk_level
// + w_loc*|locations| + w_know*|knowledge_flags| (spec §4.H).
func Cost(mode Mode, w Weights) float64 {
	return mode.BaseCost +
		w.Time*float64(len(mode.RequiredTimeSlots)) +
		w.Risk*float64(mode.RiskLevel) +
		w.Loc*float64(len(mode.RequiredLocations)) +
		w.Know*float64(len(mode.RequiredKnowledgeFlags))
}

// UnlockResult is whether a mode is currently available and, if not, why.
type UnlockResult struct {
	Unlocked bool
	Reason   string
}

// CheckUnlock reports whether mode is unlocked: metaLevel at or above the
// mode's minimum, and every required knowledge flag present.
func CheckUnlock(mode Mode, metaLevel int, knownFlags map[string]bool) UnlockResult {
	var reasons []string
	if metaLevel < mode.MinMetaLevel {
		reasons = append(reasons, fmt.Sprintf("requires meta level %d, have %d", mode.MinMetaLevel, metaLevel))
	}
	missing := missingFlags(mode, knownFlags)
	if len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("missing knowledge flags: %s", strings.Join(missing, ", ")))
	}
	if len(reasons) == 0 {
		return UnlockResult{Unlocked: true}
	}
	return UnlockResult{Unlocked: false, Reason: strings.Join(reasons, "; ")}
}

func missingFlags(mode Mode, knownFlags map[string]bool) []string {
	var missing []string
	for _, f := range mode.RequiredKnowledgeFlags {
		if !knownFlags[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// OptimalMode returns the cheapest unlocked mode for the arc, excluding the
// null ModeNotResolved. found is false if no mode is currently unlocked.
func OptimalMode(arc Arc, metaLevel int, knownFlags map[string]bool, w Weights) (Mode, bool) {
	var best Mode
	found := false
	bestCost := 0.0
	for _, m := range arc.Modes {
		if m.Name == ModeNotResolved {
			continue
		}
		if !CheckUnlock(m, metaLevel, knownFlags).Unlocked {
			continue
		}
		c := Cost(m, w)
		if !found || c < bestCost {
			best, bestCost, found = m, c, true
		}
	}
	return best, found
}

// cheapestLocked returns the cheapest currently-locked mode, for reporting
// what the arc's next unlock would be.
func cheapestLocked(arc Arc, metaLevel int, knownFlags map[string]bool, w Weights) (Mode, bool) {
	var best Mode
	found := false
	bestCost := 0.0
	for _, m := range arc.Modes {
		if m.Name == ModeNotResolved {
			continue
		}
		if CheckUnlock(m, metaLevel, knownFlags).Unlocked {
			continue
		}
		c := Cost(m, w)
		if !found || c < bestCost {
			best, bestCost, found = m, c, true
		}
	}
	return best, found
}

// NextUnlock names the cheapest locked mode and the requirements it is
// still missing.
type NextUnlock struct {
	Mode     Name
	Missing  []string
}

// Progress is the arc's trivialization_progress report.
type Progress struct {
	PercentComplete float64
	CurrentBestMode Name
	NextUnlock      *NextUnlock
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TrivializationProgress computes 100*(initial_cost-current_best_cost) /
// (initial_cost-theoretical_optimal_cost), clamped to [0,100], plus the
// cheapest locked mode and the human-readable requirements it is missing
// (spec §4.H).
func TrivializationProgress(arc Arc, metaLevel int, knownFlags map[string]bool, w Weights, initialCost, theoreticalOptimalCost float64) Progress {
	best, found := OptimalMode(arc, metaLevel, knownFlags, w)
	currentBestCost := initialCost
	var currentName Name = ModeNotResolved
	if found {
		currentBestCost = Cost(best, w)
		currentName = best.Name
	}

	var pct float64
	denom := initialCost - theoreticalOptimalCost
	if denom != 0 {
		pct = clamp(100*(initialCost-currentBestCost)/denom, 0, 100)
	}

	progress := Progress{PercentComplete: pct, CurrentBestMode: currentName}
	if locked, ok := cheapestLocked(arc, metaLevel, knownFlags, w); ok {
		missing := requirementDescriptions(locked, metaLevel, knownFlags)
		progress.NextUnlock = &NextUnlock{Mode: locked.Name, Missing: missing}
	}
	return progress
}

// requirementDescriptions renders the human-readable list of requirements a
// locked mode is still missing.
func requirementDescriptions(mode Mode, metaLevel int, knownFlags map[string]bool) []string {
	var out []string
	if metaLevel < mode.MinMetaLevel {
		out = append(out, fmt.Sprintf("meta level %d (currently %d)", mode.MinMetaLevel, metaLevel))
	}
	for _, f := range missingFlags(mode, knownFlags) {
		out = append(out, fmt.Sprintf("knowledge flag %q", f))
	}
	return out
}
