package narrative

import "testing"

func TestApplyFilter_Uppercase(t *testing.T) {
	out, err := applyFilter("uppercase", "abc", nil)
	if err != nil || out != "ABC" {
		t.Fatalf("got %q, err %v", out, err)
	}
}

func TestApplyFilter_Capitalize(t *testing.T) {
	out, err := applyFilter("capitalize", "gardener", nil)
	if err != nil || out != "Gardener" {
		t.Fatalf("got %q, err %v", out, err)
	}
}

func TestApplyFilter_Length(t *testing.T) {
	out, err := applyFilter("length", "hello", nil)
	if err != nil || out != "5" {
		t.Fatalf("got %q, err %v", out, err)
	}
}

func TestApplyFilter_JoinDefaultSeparator(t *testing.T) {
	out, err := applyFilter("join", "a\x1fb\x1fc", nil)
	if err != nil || out != "a, b, c" {
		t.Fatalf("got %q, err %v", out, err)
	}
}

func TestApplyFilter_JoinCustomSeparator(t *testing.T) {
	out, err := applyFilter("join", "a\x1fb", []string{"-"})
	if err != nil || out != "a-b" {
		t.Fatalf("got %q, err %v", out, err)
	}
}

func TestApplyFilter_PluralizeRules(t *testing.T) {
	cases := map[string]string{
		"loop":   "loops",
		"box":    "boxes",
		"city":   "cities",
		"day":    "days",
		"church": "churches",
	}
	for in, want := range cases {
		got, err := applyFilter("pluralize", in, nil)
		if err != nil {
			t.Fatalf("pluralize(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("pluralize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplyFilter_UnknownFilterErrors(t *testing.T) {
	_, err := applyFilter("nonexistent", "x", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown filter")
	}
}
