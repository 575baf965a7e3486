package narrative

import "testing"

func TestParseAndRender_SimpleVar(t *testing.T) {
	tmpl, err := Parse("Hello, {{name}}!")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, warnings, err := tmpl.Render(map[string]any{"name": "Sam"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello, Sam!" {
		t.Fatalf("got %q", out)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestRender_MissingVariableEmitsWarning(t *testing.T) {
	tmpl, err := Parse("{{missing}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, warnings, err := tmpl.Render(map[string]any{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestRender_FilterChain(t *testing.T) {
	tmpl, err := Parse("{{name | uppercase}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, _, err := tmpl.Render(map[string]any{"name": "sam"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "SAM" {
		t.Fatalf("got %q", out)
	}
}

func TestRender_IfElse(t *testing.T) {
	tmpl, err := Parse("{{#if score > 5}}high{{else}}low{{/if}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, _, err := tmpl.Render(map[string]any{"score": 9})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "high" {
		t.Fatalf("got %q", out)
	}
	out, _, err = tmpl.Render(map[string]any{"score": 1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "low" {
		t.Fatalf("got %q", out)
	}
}

func TestRender_UnlessTruthiness(t *testing.T) {
	tmpl, err := Parse("{{#unless seen}}new{{/unless}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, _, err := tmpl.Render(map[string]any{"seen": false})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "new" {
		t.Fatalf("got %q", out)
	}
	out, _, err = tmpl.Render(map[string]any{"seen": true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty, got %q", out)
	}
}

func TestRender_EachWithIndexAndThis(t *testing.T) {
	tmpl, err := Parse("{{#each items}}[{{@index}}:{{this}}]{{/each}}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, _, err := tmpl.Render(map[string]any{"items": []any{"a", "b"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[0:a][1:b]" {
		t.Fatalf("got %q", out)
	}
}

func TestParse_UnclosedBlockIsError(t *testing.T) {
	_, err := Parse("{{#if x}}yes")
	if err == nil {
		t.Fatal("expected an error for an unclosed if block")
	}
}

func TestValidate_UnknownFilterReported(t *testing.T) {
	res := Validate("{{name | nonexistent}}")
	if res.Valid {
		t.Fatal("expected an invalid result for an unknown filter")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one error message")
	}
}

func TestValidate_ValidTemplate(t *testing.T) {
	res := Validate("{{#if a}}{{b | uppercase}}{{/if}}")
	if !res.Valid {
		t.Fatalf("expected a valid template, got errors: %v", res.Errors)
	}
}
