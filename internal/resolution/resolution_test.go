package resolution

import "testing"

func sampleArc() Arc {
	return Arc{
		ID:   "a1",
		Name: "the server room",
		Modes: []Mode{
			{Name: ModeOnsiteHeavy, MinMetaLevel: 0, RequiredTimeSlots: []string{"06:00", "07:00"}, RiskLevel: 3, BaseCost: 2},
			{Name: ModeOnsiteLight, MinMetaLevel: 1, RequiredKnowledgeFlags: []string{"keycard_code"}, RiskLevel: 1, BaseCost: 3},
			{Name: ModeRemoteSimple, MinMetaLevel: 2, RequiredKnowledgeFlags: []string{"keycard_code", "admin_password"}, RiskLevel: 0, BaseCost: 1},
			{Name: ModeNotResolved, BaseCost: 0},
		},
	}
}

func TestCost_MatchesWeightedFormula(t *testing.T) {
	w := DefaultWeights()
	m := Mode{BaseCost: 2, RequiredTimeSlots: []string{"06:00", "07:00"}, RiskLevel: 3, RequiredLocations: []string{"a"}, RequiredKnowledgeFlags: []string{"x", "y"}}
	got := Cost(m, w)
	want := 2 + w.Time*2 + w.Risk*3 + w.Loc*1 + w.Know*2
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCheckUnlock_MetaLevelGate(t *testing.T) {
	mode := Mode{MinMetaLevel: 2}
	res := CheckUnlock(mode, 1, nil)
	if res.Unlocked {
		t.Fatal("expected mode to be locked by meta level")
	}
	res = CheckUnlock(mode, 2, nil)
	if !res.Unlocked {
		t.Fatalf("expected mode unlocked at meta level 2, reason: %s", res.Reason)
	}
}

func TestCheckUnlock_MissingKnowledgeFlags(t *testing.T) {
	mode := Mode{RequiredKnowledgeFlags: []string{"keycard_code", "admin_password"}}
	res := CheckUnlock(mode, 0, map[string]bool{"keycard_code": true})
	if res.Unlocked {
		t.Fatal("expected mode to be locked on missing knowledge flag")
	}
	if res.Reason == "" {
		t.Fatal("expected a reason naming the missing flag")
	}
}

func TestOptimalMode_PicksCheapestUnlocked(t *testing.T) {
	arc := sampleArc()
	w := DefaultWeights()
	best, found := OptimalMode(arc, 1, map[string]bool{"keycard_code": true}, w)
	if !found {
		t.Fatal("expected an unlocked mode")
	}
	if best.Name != ModeOnsiteLight {
		t.Fatalf("expected ONSITE_LIGHT (cheaper than ONSITE_HEAVY once unlocked), got %s", best.Name)
	}
}

func TestOptimalMode_NoneUnlockedReturnsFalse(t *testing.T) {
	arc := Arc{Modes: []Mode{{Name: ModeRemoteSimple, MinMetaLevel: 5}}}
	_, found := OptimalMode(arc, 0, nil, DefaultWeights())
	if found {
		t.Fatal("expected no unlocked mode")
	}
}

func TestOptimalMode_ExcludesNotResolved(t *testing.T) {
	arc := Arc{Modes: []Mode{{Name: ModeNotResolved, BaseCost: 0}}}
	_, found := OptimalMode(arc, 0, nil, DefaultWeights())
	if found {
		t.Fatal("NOT_RESOLVED must never be returned as an optimal mode")
	}
}

func TestTrivializationProgress_ClampsToRange(t *testing.T) {
	arc := sampleArc()
	w := DefaultWeights()
	progress := TrivializationProgress(arc, 2, map[string]bool{"keycard_code": true, "admin_password": true}, w, 20, 1)
	if progress.PercentComplete < 0 || progress.PercentComplete > 100 {
		t.Fatalf("expected progress in [0,100], got %v", progress.PercentComplete)
	}
	if progress.CurrentBestMode != ModeRemoteSimple {
		t.Fatalf("expected REMOTE_SIMPLE to be the fully-unlocked optimum, got %s", progress.CurrentBestMode)
	}
	if progress.NextUnlock != nil {
		t.Fatalf("expected no locked modes left, got %+v", progress.NextUnlock)
	}
}

func TestTrivializationProgress_ReportsNextUnlock(t *testing.T) {
	arc := sampleArc()
	w := DefaultWeights()
	progress := TrivializationProgress(arc, 0, nil, w, 20, 1)
	if progress.NextUnlock == nil {
		t.Fatal("expected a next_unlock report while modes remain locked")
	}
	if len(progress.NextUnlock.Missing) == 0 {
		t.Fatal("expected at least one missing requirement listed")
	}
}

func TestTrivializationProgress_ZeroDenominatorDoesNotPanic(t *testing.T) {
	arc := sampleArc()
	w := DefaultWeights()
	progress := TrivializationProgress(arc, 2, map[string]bool{"keycard_code": true, "admin_password": true}, w, 5, 5)
	if progress.PercentComplete != 0 {
		t.Fatalf("expected zero progress when initial equals theoretical optimal, got %v", progress.PercentComplete)
	}
}
