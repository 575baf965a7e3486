package narrative

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/types"
)

var (
	openingTmpl       = mustParse("{{pronoun_cap}} began the loop {{connector}}, {{adjective}}.")
	pathStepTmpl      = mustParse("At {{time}}, {{pronoun}} {{verb}} {{label}}.")
	pathStepNoTimeTmpl = mustParse("{{pronoun_cap}} {{verb}} {{label}}.")
	outcomeDeathTmpl  = mustParse("{{pronoun_cap}} {{death_verb}} at {{label}}{{#if cause}} ({{cause}}){{/if}}.")
	outcomeResetTmpl  = mustParse("The loop {{reset_verb}}.")
	outcomeOtherTmpl  = mustParse("The loop ended in {{outcome_type}} at {{label}}.")
	transitionTmpl    = mustParse("By the end, {{pronoun}} felt {{end_adjective}} instead.")
	montageSingleTmpl = mustParse("{{count}} loop played out this way: {{summary}}.")
	montagePluralTmpl = mustParse("{{count}} loops played out this way ({{examples}}): {{summary}}.")
	epochOpeningTmpl  = mustParse("{{name}} spans {{loop_count}} loop{{#if plural}}s{{/if}}, told in a {{tone}} register.")
	monologueTmpl     = mustParse("({{pronoun_cap}} privately: still {{thought}}{{#if intense}}, more than {{pronoun}} could say aloud{{/if}}.)")
)

func mustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("narrative: invalid built-in template %q: %v", src, err))
	}
	return t
}

func pronoun(p Perspective) (subject, subjectCap string) {
	switch p {
	case PerspectiveFirst:
		return "I", "I"
	case PerspectiveSecond:
		return "you", "You"
	case PerspectiveThirdLimited, PerspectiveThird:
		return "they", "They"
	default:
		return "they", "They"
	}
}

func pick(options []string, seed int) string {
	if len(options) == 0 {
		return ""
	}
	if seed < 0 {
		seed = -seed
	}
	return options[seed%len(options)]
}

func nodeLabel(gr *daygraph.Graph, id string) string {
	if gr == nil {
		return id
	}
	if n, ok := gr.Node(id); ok {
		return n.Label
	}
	return id
}

// RenderLoop renders a single loop's narrative per spec §4.G: an opening
// keyed on (emotional_state_start, tone), one sentence per path node
// honoring Detail, an outcome sentence keyed on (outcome.type, tone), and
// an optional emotional-transition sentence.
func RenderLoop(loop *types.Loop, gr *daygraph.Graph, style Style) (string, []string, error) {
	bank := Bank(style.Tone)
	sub, subCap := pronoun(style.Perspective)
	var sb strings.Builder
	var warnings []string

	// paragraphBreak separates the narrative's sections (opening / path /
	// outcome / transition). A non-empty paragraph_style (spec §4.G, Open
	// Question 2) requests visible paragraph breaks instead of running
	// everything into one block; "beats" additionally puts each path step
	// on its own line.
	paragraphBreak := " "
	stepSep := " "
	if style.ParagraphStyle != "" {
		paragraphBreak = "\n\n"
	}
	if style.ParagraphStyle == "beats" {
		stepSep = "\n"
	}

	startAdj := pick(bank.EmotionalAdjectives[loop.EmotionalStateStart], int(len(loop.Path)))
	connector := pick(bank.Connectors, loop.SequenceNumber)
	opening, w, err := openingTmpl.Render(map[string]any{
		"pronoun_cap": subCap,
		"connector":   connector,
		"adjective":   startAdj,
	})
	if err != nil {
		return "", nil, err
	}
	warnings = append(warnings, w...)
	sb.WriteString(opening)

	// include_internal_monologue (spec §4.G, Open Question 2): gate one
	// extra sentence revealing the loop's private emotional undertow,
	// intensified when emotional_emphasis runs high.
	if style.IncludeInternalMonologue {
		thought := pick(bank.EmotionalAdjectives[loop.EmotionalStateStart], loop.SequenceNumber+7)
		rendered, rw, err := monologueTmpl.Render(map[string]any{
			"pronoun_cap": subCap,
			"pronoun":     sub,
			"thought":     thought,
			"intense":     style.EmotionalEmphasis >= 0.66,
		})
		if err != nil {
			return "", nil, err
		}
		warnings = append(warnings, rw...)
		sb.WriteString(paragraphBreak)
		sb.WriteString(rendered)
	}

	if style.Detail != DetailMinimal {
		decisionByNode := map[string]types.Decision{}
		for _, d := range loop.Decisions {
			decisionByNode[d.NodeID] = d
		}
		for i, nodeID := range loop.Path {
			if i == 0 {
				continue // the opening already covers the start node
			}
			label := nodeLabel(gr, nodeID)
			verb := pick(bank.DecisionVerbs, i)
			if _, decided := decisionByNode[loop.Path[i-1]]; !decided {
				verb = "moved toward"
			}
			var rendered string
			var rw []string
			ctx := map[string]any{"pronoun": sub, "pronoun_cap": subCap, "verb": verb, "label": label}
			if style.IncludeTimestamps && i-1 < len(loop.Decisions) {
				ctx["time"] = loop.Decisions[i-1].Timestamp.Format("15:04")
				rendered, rw, err = pathStepTmpl.Render(ctx)
			} else {
				rendered, rw, err = pathStepNoTimeTmpl.Render(ctx)
			}
			if err != nil {
				return "", nil, err
			}
			warnings = append(warnings, rw...)
			if i == 1 {
				sb.WriteString(paragraphBreak)
			} else {
				sb.WriteString(stepSep)
			}
			sb.WriteString(rendered)
		}
	}

	if loop.Outcome != nil {
		label := nodeLabel(gr, loop.Outcome.TerminalNodeID)
		var rendered string
		var rw []string
		switch loop.Outcome.Type {
		case types.OutcomeDeath:
			rendered, rw, err = outcomeDeathTmpl.Render(map[string]any{
				"pronoun_cap": subCap,
				"death_verb":  pick(bank.DeathVerbs, loop.SequenceNumber),
				"label":       label,
				"cause":       loop.Outcome.Cause,
			})
		case types.OutcomeResetTrigger, types.OutcomeVoluntaryReset:
			rendered, rw, err = outcomeResetTmpl.Render(map[string]any{
				"reset_verb": pick(bank.ResetVerbs, loop.SequenceNumber),
			})
		default:
			rendered, rw, err = outcomeOtherTmpl.Render(map[string]any{
				"outcome_type": string(loop.Outcome.Type),
				"label":        label,
			})
		}
		if err != nil {
			return "", nil, err
		}
		warnings = append(warnings, rw...)
		sb.WriteString(paragraphBreak)
		sb.WriteString(rendered)
	}

	if style.Detail == DetailVerbose && loop.EmotionalStateEnd != "" && loop.EmotionalStateEnd != loop.EmotionalStateStart {
		endAdj := pick(bank.EmotionalAdjectives[loop.EmotionalStateEnd], int(len(loop.Path))+1)
		rendered, rw, err := transitionTmpl.Render(map[string]any{"pronoun": sub, "end_adjective": endAdj})
		if err != nil {
			return "", nil, err
		}
		warnings = append(warnings, rw...)
		sb.WriteString(paragraphBreak)
		sb.WriteString(rendered)
	}

	return sb.String(), warnings, nil
}

// RenderMontage renders an equivalence class's recurring pattern, with a
// count-aware opening (singular variant when member_count == 1, per
// spec §4.G scenario coverage).
func RenderMontage(class *types.EquivalenceClass, style Style) (string, []string, error) {
	count := class.MemberCount
	if count == 1 {
		return montageSingleTmpl.Render(map[string]any{
			"count":   "One",
			"summary": class.OutcomeSummary,
		})
	}
	examples := humanize.Comma(int64(count))
	return montagePluralTmpl.Render(map[string]any{
		"count":    examples,
		"examples": fmt.Sprintf("%s occurrences", examples),
		"summary":  class.OutcomeSummary,
	})
}

// RenderEpoch renders an epoch summary: a tone-keyed opening naming the
// epoch and its loop count, the epoch description, and the number of
// anchor loops. It renders no statistics block (no outcome histogram) and
// does not name individual anchor loops or equivalence classes.
func RenderEpoch(epoch *types.Epoch, loopCount int, style Style) (string, []string, error) {
	var sb strings.Builder
	var warnings []string

	opening, w, err := epochOpeningTmpl.Render(map[string]any{
		"name":       epoch.Name,
		"loop_count": humanize.Comma(int64(loopCount)),
		"plural":     loopCount != 1,
		"tone":       string(style.Tone),
	})
	if err != nil {
		return "", nil, err
	}
	warnings = append(warnings, w...)
	sb.WriteString(opening)

	if epoch.Description != "" {
		sb.WriteString(" ")
		sb.WriteString(epoch.Description)
	}

	if len(epoch.AnchorLoopIDs) > 0 {
		sb.WriteString(fmt.Sprintf(" %s of those loops %s kept as anchors.",
			humanize.Comma(int64(len(epoch.AnchorLoopIDs))),
			pluralVerb(len(epoch.AnchorLoopIDs))))
	}

	return sb.String(), warnings, nil
}

func pluralVerb(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}
