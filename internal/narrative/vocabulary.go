package narrative

import "github.com/loomwright/dayloop/internal/types"

// VocabularyBank is one tone's complete set of word banks (spec §4.G: every
// tone must define all banks for all emotions).
type VocabularyBank struct {
	DeathVerbs          []string
	ResetVerbs          []string
	DecisionVerbs       []string
	Connectors          []string
	EmotionalAdjectives map[types.EmotionalState][]string
}

func emoMap(hopeful, curious, frustrated, desperate, numb, determined, broken, calm, angry, resigned []string) map[types.EmotionalState][]string {
	return map[types.EmotionalState][]string{
		types.EmoHopeful:    hopeful,
		types.EmoCurious:    curious,
		types.EmoFrustrated: frustrated,
		types.EmoDesperate:  desperate,
		types.EmoNumb:       numb,
		types.EmoDetermined: determined,
		types.EmoBroken:     broken,
		types.EmoCalm:       calm,
		types.EmoAngry:      angry,
		types.EmoResigned:   resigned,
	}
}

// Vocabularies is the complete tone-by-emotion matrix.
var Vocabularies = map[Tone]VocabularyBank{
	ToneHopeful: {
		DeathVerbs:    []string{"fell", "slipped away", "was lost"},
		ResetVerbs:    []string{"woke again", "began anew", "returned to dawn"},
		DecisionVerbs: []string{"chose", "reached for", "decided on"},
		Connectors:    []string{"and so", "still,", "even then,"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "bright-eyed"}, []string{"curious", "eager"}, []string{"frustrated", "impatient"},
			[]string{"desperate", "straining"}, []string{"numb", "distant"}, []string{"determined", "steady"},
			[]string{"broken", "bruised"}, []string{"calm", "at ease"}, []string{"angry", "sharp"}, []string{"resigned", "quiet"},
		),
	},
	ToneDesperate: {
		DeathVerbs:    []string{"died screaming", "was cut down", "collapsed"},
		ResetVerbs:    []string{"snapped back", "was yanked into", "restarted"},
		DecisionVerbs: []string{"gambled on", "forced", "threw themselves at"},
		Connectors:    []string{"no time", "again,", "not again—"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "clinging"}, []string{"curious", "frantic"}, []string{"frustrated", "seething"},
			[]string{"desperate", "unraveling"}, []string{"numb", "hollow"}, []string{"determined", "grim"},
			[]string{"broken", "shattered"}, []string{"calm", "eerily still"}, []string{"angry", "furious"}, []string{"resigned", "defeated"},
		),
	},
	ToneClinical: {
		DeathVerbs:    []string{"died", "was terminated", "ceased"},
		ResetVerbs:    []string{"restarted", "reinitialized", "looped"},
		DecisionVerbs: []string{"selected", "executed", "chose"},
		Connectors:    []string{"subsequently,", "next,", "then,"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "optimistic"}, []string{"curious", "inquisitive"}, []string{"frustrated", "irritated"},
			[]string{"desperate", "urgent"}, []string{"numb", "flat"}, []string{"determined", "focused"},
			[]string{"broken", "impaired"}, []string{"calm", "composed"}, []string{"angry", "agitated"}, []string{"resigned", "accepting"},
		),
	},
	ToneMelancholic: {
		DeathVerbs:    []string{"faded", "was taken", "went still"},
		ResetVerbs:    []string{"drifted back", "circled again to", "returned, tired, to"},
		DecisionVerbs: []string{"settled for", "allowed", "let themselves choose"},
		Connectors:    []string{"as always,", "once more,", "and yet,"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "wistful"}, []string{"curious", "melancholy"}, []string{"frustrated", "weary"},
			[]string{"desperate", "aching"}, []string{"numb", "hollowed"}, []string{"determined", "tired but steady"},
			[]string{"broken", "worn"}, []string{"calm", "subdued"}, []string{"angry", "bitter"}, []string{"resigned", "heavy"},
		),
	},
	ToneDarkHumor: {
		DeathVerbs:    []string{"bit it", "checked out early", "met an untimely end"},
		ResetVerbs:    []string{"hit the cosmic reset button", "got yeeted back to dawn", "tried again, because of course"},
		DecisionVerbs: []string{"went with", "rolled the dice on", "figured why not and picked"},
		Connectors:    []string{"naturally,", "as one does,", "shockingly,"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "annoyingly upbeat"}, []string{"curious", "nosy"}, []string{"frustrated", "done with this"},
			[]string{"desperate", "unhinged"}, []string{"numb", "past caring"}, []string{"determined", "stubborn"},
			[]string{"broken", "a mess"}, []string{"calm", "suspiciously chill"}, []string{"angry", "ready to flip a table"}, []string{"resigned", "over it"},
		),
	},
	TonePhilosophical: {
		DeathVerbs:    []string{"passed beyond the loop's edge", "returned to the undifferentiated", "ended, as ends must"},
		ResetVerbs:    []string{"was reclaimed by the day's recursion", "circled back to first cause", "began the pattern again"},
		DecisionVerbs: []string{"willed into being", "resolved, against entropy, on", "chose, which is to say, became"},
		Connectors:    []string{"and so the pattern holds that", "which raises the question whether", "as before,"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "open to possibility"}, []string{"curious", "questioning"}, []string{"frustrated", "caught against the loop's walls"},
			[]string{"desperate", "straining against necessity"}, []string{"numb", "unmoored from feeling"}, []string{"determined", "oriented toward purpose"},
			[]string{"broken", "fractured in self"}, []string{"calm", "reconciled"}, []string{"angry", "at war with the given"}, []string{"resigned", "settled into fate"},
		),
	},
	ToneTerse: {
		DeathVerbs:    []string{"died.", "dead.", "gone."},
		ResetVerbs:    []string{"reset.", "again.", "loop."},
		DecisionVerbs: []string{"chose.", "picked.", "moved."},
		Connectors:    []string{"then.", "next.", "so."},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful"}, []string{"curious"}, []string{"frustrated"}, []string{"desperate"}, []string{"numb"},
			[]string{"determined"}, []string{"broken"}, []string{"calm"}, []string{"angry"}, []string{"resigned"},
		),
	},
	TonePoetic: {
		DeathVerbs:    []string{"was unwritten by the dark", "dissolved into the day's margin", "fell silent under an old sky"},
		ResetVerbs:    []string{"was folded back into morning", "woke inside the same unbroken line", "returned, again, to the first word"},
		DecisionVerbs: []string{"traced a path toward", "let the hour carry them to", "answered the day's question with"},
		Connectors:    []string{"and the dance repeated,", "still, the hour turned, and", "once more, the light found"},
		EmotionalAdjectives: emoMap(
			[]string{"hopeful", "luminous with hope"}, []string{"curious", "alight with wonder"}, []string{"frustrated", "taut as a drawn string"},
			[]string{"desperate", "burning at the edges"}, []string{"numb", "quiet as spent ash"}, []string{"determined", "unbending as stone"},
			[]string{"broken", "cracked like old glass"}, []string{"calm", "still as held breath"}, []string{"angry", "a struck match"}, []string{"resigned", "settled like dust"},
		),
	},
}

// Bank returns the vocabulary bank for tone, falling back to clinical if an
// unknown tone is given.
func Bank(tone Tone) VocabularyBank {
	if bank, ok := Vocabularies[tone]; ok {
		return bank
	}
	return Vocabularies[ToneClinical]
}
