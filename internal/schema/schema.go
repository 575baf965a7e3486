// Package schema implements structural validation of entity shapes (spec
// §4.A): required fields, enum membership, numeric ranges, and the
// HH:MM/UUID-v4/64-hex-hash formats used across the data model. Validation
// here is purely structural and local to one entity; cross-entity checks
// belong to internal/consistency.
//
// Schemas are compiled once at package init into field-check tables, and a
// single Validate entry point reports every violation in one pass — no
// early exit, matching the teacher's own validators
// (internal/validation/logic.go) which never short-circuit after the first
// hit.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/loomwright/dayloop/internal/types"
)

// EntityKind names a validatable entity shape.
type EntityKind string

const (
	KindNode             EntityKind = "node"
	KindEdge             EntityKind = "edge"
	KindGraph            EntityKind = "graph"
	KindDecision         EntityKind = "decision"
	KindOutcome          EntityKind = "outcome"
	KindKnowledgeState   EntityKind = "knowledge_state"
	KindFact             EntityKind = "fact"
	KindLoop             EntityKind = "loop"
	KindSubLoop          EntityKind = "sub_loop"
	KindEpoch            EntityKind = "epoch"
	KindEquivalenceClass EntityKind = "equivalence_class"
)

// fieldType is the structural type a field value must satisfy.
type fieldType int

const (
	ftString fieldType = iota
	ftEnum
	ftNumber
	ftBool
	ftTimeSlot
	ftUUID
	ftHash
	ftList
)

// fieldSpec describes one required/optional field of an entity shape.
type fieldSpec struct {
	name     string
	required bool
	typ      fieldType
	enum     []string
	min, max *float64
}

var (
	timeSlotRE = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	uuidRE     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	hashRE     = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// ValidTimeSlot reports whether s is a valid HH:MM time slot.
func ValidTimeSlot(s string) bool { return timeSlotRE.MatchString(s) }

// ValidUUID reports whether s is a valid UUID-v4 string.
func ValidUUID(s string) bool { return uuidRE.MatchString(strings.ToLower(s)) }

// ValidHash reports whether s is a 64-hex-digit hash.
func ValidHash(s string) bool { return hashRE.MatchString(strings.ToLower(s)) }

func f(name string, required bool, typ fieldType) fieldSpec {
	return fieldSpec{name: name, required: required, typ: typ}
}

func fenum(name string, required bool, values ...string) fieldSpec {
	return fieldSpec{name: name, required: required, typ: ftEnum, enum: values}
}

func frange(name string, required bool, min, max float64) fieldSpec {
	return fieldSpec{name: name, required: required, typ: ftNumber, min: &min, max: &max}
}

// schemas is compiled once at package init — the single pass of resolution
// spec §4.A calls for.
var schemas = map[EntityKind][]fieldSpec{
	KindNode: {
		f("id", true, ftUUID),
		fenum("kind", true, string(types.NodeEvent), string(types.NodeDecision), string(types.NodeLocation),
			string(types.NodeEncounter), string(types.NodeDiscovery), string(types.NodeDeath), string(types.NodeReset)),
		f("time_slot", true, ftTimeSlot),
		f("label", true, ftString),
	},
	KindEdge: {
		f("id", true, ftUUID),
		f("source", true, ftUUID),
		f("target", true, ftUUID),
		fenum("type", true, string(types.EdgeDefault), string(types.EdgeChoice), string(types.EdgeConditional),
			string(types.EdgeTimed), string(types.EdgeRandom)),
		frange("weight", false, 0, 1),
	},
	KindGraph: {
		f("id", true, ftUUID),
		f("name", true, ftString),
		f("start_node_id", true, ftUUID),
	},
	KindDecision: {
		f("node_id", true, ftUUID),
		frange("choice_index", true, 0, 1<<31),
	},
	KindOutcome: {
		fenum("type", true, string(types.OutcomeDeath), string(types.OutcomeResetTrigger), string(types.OutcomeDayEnd),
			string(types.OutcomeVoluntaryReset), string(types.OutcomeSubLoopExit), string(types.OutcomeSuccess),
			string(types.OutcomeFailure), string(types.OutcomePartial)),
		f("terminal_node_id", true, ftUUID),
	},
	KindFact: {
		f("key", true, ftString),
		f("value", true, ftString),
		frange("certainty", true, 0, 1),
	},
	KindKnowledgeState: {
		f("id", true, ftUUID),
		frange("version", true, 1, 1<<31),
	},
	KindLoop: {
		f("id", true, ftUUID),
		frange("sequence_number", true, 1, 1<<31),
		fenum("status", true, string(types.LoopInProgress), string(types.LoopCompleted), string(types.LoopAborted)),
		fenum("emotional_state_start", true,
			string(types.EmoHopeful), string(types.EmoCurious), string(types.EmoFrustrated), string(types.EmoDesperate),
			string(types.EmoNumb), string(types.EmoDetermined), string(types.EmoBroken), string(types.EmoCalm),
			string(types.EmoAngry), string(types.EmoResigned)),
	},
	KindSubLoop: {
		f("id", true, ftUUID),
		f("parent_loop_id", true, ftUUID),
		frange("depth", true, 0, 1<<10),
		frange("attempt_count", true, 0, 1<<20),
	},
	KindEpoch: {
		f("id", true, ftUUID),
		f("name", true, ftString),
		frange("order", true, 0, 1<<20),
	},
	KindEquivalenceClass: {
		f("id", true, ftUUID),
		f("outcome_hash", true, ftHash),
		f("knowledge_end_hash", true, ftHash),
		f("composite_hash", true, ftHash),
		frange("member_count", true, 1, 1<<31),
	},
}

// Report is the result of a structural validation pass.
type Report struct {
	Valid  bool
	Issues []types.Issue
}

// Validate checks raw (a decoded-JSON-shaped map) against the compiled
// schema for kind, reporting every violation found — required fields
// missing, enum membership, numeric range, and format checks — in a single
// pass.
func Validate(kind EntityKind, raw map[string]any) (*Report, error) {
	spec, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("schema: unknown entity kind %q", kind)
	}

	report := &Report{Valid: true}
	for _, fs := range spec {
		v, present := raw[fs.name]
		if !present || v == nil {
			if fs.required {
				report.Valid = false
				report.Issues = append(report.Issues, types.Issue{
					Severity: types.SeverityError,
					Category: "structural",
					Message:  fmt.Sprintf("%s: missing required field %q", kind, fs.name),
				})
			}
			continue
		}
		if issue, ok := checkField(kind, fs, v); !ok {
			report.Valid = false
			report.Issues = append(report.Issues, issue)
		}
	}
	return report, nil
}

func checkField(kind EntityKind, fs fieldSpec, v any) (types.Issue, bool) {
	fail := func(msg string) (types.Issue, bool) {
		return types.Issue{Severity: types.SeverityError, Category: "structural", Message: fmt.Sprintf("%s.%s: %s", kind, fs.name, msg)}, false
	}

	switch fs.typ {
	case ftString:
		s, ok := v.(string)
		if !ok || s == "" {
			return fail("expected non-empty string")
		}
	case ftEnum:
		s, ok := v.(string)
		if !ok {
			return fail("expected string enum value")
		}
		for _, allowed := range fs.enum {
			if s == allowed {
				return types.Issue{}, true
			}
		}
		return fail(fmt.Sprintf("value %q not in %v", s, fs.enum))
	case ftNumber:
		num, ok := asFloat(v)
		if !ok {
			return fail("expected numeric value")
		}
		if fs.min != nil && num < *fs.min {
			return fail(fmt.Sprintf("value %v below minimum %v", num, *fs.min))
		}
		if fs.max != nil && num > *fs.max {
			return fail(fmt.Sprintf("value %v above maximum %v", num, *fs.max))
		}
	case ftBool:
		if _, ok := v.(bool); !ok {
			return fail("expected boolean")
		}
	case ftTimeSlot:
		s, ok := v.(string)
		if !ok || !ValidTimeSlot(s) {
			return fail("expected HH:MM time slot")
		}
	case ftUUID:
		s, ok := v.(string)
		if !ok || !ValidUUID(s) {
			return fail("expected UUID-v4")
		}
	case ftHash:
		s, ok := v.(string)
		if !ok || !ValidHash(s) {
			return fail("expected 64-hex hash")
		}
	case ftList:
		if _, ok := v.([]any); !ok {
			return fail("expected list")
		}
	}
	return types.Issue{}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
