package schema

import "testing"

func TestValidateNode_Valid(t *testing.T) {
	raw := map[string]any{
		"id":        "3fae13a2-0000-4a11-8aaa-0123456789ab",
		"kind":      "event",
		"time_slot": "08:00",
		"label":     "Wake up",
	}
	report, err := Validate(KindNode, raw)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected valid node, got issues: %+v", report.Issues)
	}
}

func TestValidateNode_MissingFieldsReportedAllAtOnce(t *testing.T) {
	raw := map[string]any{
		"kind": "not-a-real-kind",
	}
	report, err := Validate(KindNode, raw)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	// id, time_slot, label missing + kind enum violation = 4 issues in one pass
	if len(report.Issues) != 4 {
		t.Fatalf("expected 4 issues in a single pass, got %d: %+v", len(report.Issues), report.Issues)
	}
}

func TestValidateEdge_WeightRange(t *testing.T) {
	raw := map[string]any{
		"id":     "3fae13a2-0000-4a11-8aaa-0123456789ab",
		"source": "3fae13a2-0000-4a11-8aaa-0123456789ac",
		"target": "3fae13a2-0000-4a11-8aaa-0123456789ad",
		"type":   "default",
		"weight": 1.5,
	}
	report, err := Validate(KindEdge, raw)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if report.Valid {
		t.Fatal("expected weight > 1 to be invalid")
	}
}

func TestValidTimeSlot(t *testing.T) {
	cases := map[string]bool{
		"00:00": true, "23:59": true, "24:00": false, "9:00": false, "09:60": false,
	}
	for in, want := range cases {
		if got := ValidTimeSlot(in); got != want {
			t.Errorf("ValidTimeSlot(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidHash(t *testing.T) {
	good := "a" // not 64 chars
	if ValidHash(good) {
		t.Error("expected short string to be invalid hash")
	}
	full := ""
	for i := 0; i < 64; i++ {
		full += "a"
	}
	if !ValidHash(full) {
		t.Error("expected 64 hex chars to be valid hash")
	}
}
