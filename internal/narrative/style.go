// Package narrative renders loops, equivalence classes, and epochs into
// prose via a Mustache-like template language and a tone/emotion
// vocabulary matrix (spec §4.G). Condition evaluation inside
// {{#if}}/{{#unless}} blocks is delegated to github.com/expr-lang/expr,
// grounded on the sibling pack's condition evaluator
// (smilemakc-mbflow's engine.ExprConditionEvaluator), which compiles
// expressions against a plain map[string]any environment the same way.
package narrative

// Tone is the narrative register requested by a style config.
type Tone string

const (
	ToneHopeful      Tone = "hopeful"
	ToneDesperate    Tone = "desperate"
	ToneClinical     Tone = "clinical"
	ToneMelancholic  Tone = "melancholic"
	ToneDarkHumor    Tone = "dark_humor"
	TonePhilosophical Tone = "philosophical"
	ToneTerse        Tone = "terse"
	TonePoetic       Tone = "poetic"
)

// Detail controls how much is rendered per path node.
type Detail string

const (
	DetailMinimal  Detail = "minimal"
	DetailStandard Detail = "standard"
	DetailDetailed Detail = "detailed"
	DetailVerbose  Detail = "verbose"
)

// Perspective is the grammatical person prose is rendered in.
type Perspective string

const (
	PerspectiveFirst        Perspective = "first"
	PerspectiveSecond       Perspective = "second"
	PerspectiveThird        Perspective = "third"
	PerspectiveThirdLimited Perspective = "third_limited"
)

// Style is the full rendering configuration (spec §4.G).
type Style struct {
	Tone                     Tone
	Detail                   Detail
	Perspective              Perspective
	IncludeInternalMonologue bool
	IncludeTimestamps        bool
	ParagraphStyle           string
	EmotionalEmphasis        float64 // 0..1
}

// DefaultStyle is a sensible starting configuration.
func DefaultStyle() Style {
	return Style{Tone: ToneClinical, Detail: DetailStandard, Perspective: PerspectiveThird, EmotionalEmphasis: 0.5}
}
