package narrative

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/loomwright/dayloop/internal/engineerr"
)

// Template is a parsed Mustache-like document (spec §4.G).
type Template struct {
	source string
	root   []node
}

type node interface {
	render(ctx map[string]any, out *strings.Builder, warnings *[]string) error
}

type textNode struct{ text string }

func (n textNode) render(_ map[string]any, out *strings.Builder, _ *[]string) error {
	out.WriteString(n.text)
	return nil
}

type filterCall struct {
	name string
	args []string
}

type varNode struct {
	name    string
	filters []filterCall
}

func (n varNode) render(ctx map[string]any, out *strings.Builder, warnings *[]string) error {
	val, ok := lookup(ctx, n.name)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("missing variable %q", n.name))
		return nil
	}
	rendered := stringify(val)
	for _, f := range n.filters {
		next, err := applyFilter(f.name, rendered, f.args)
		if err != nil {
			return err
		}
		rendered = next
	}
	out.WriteString(rendered)
	return nil
}

type ifNode struct {
	cond string
	then []node
	els  []node
}

func (n ifNode) render(ctx map[string]any, out *strings.Builder, warnings *[]string) error {
	ok, err := evalCond(n.cond, ctx)
	if err != nil {
		return err
	}
	body := n.els
	if ok {
		body = n.then
	}
	return renderAll(body, ctx, out, warnings)
}

type unlessNode struct {
	cond string
	body []node
}

func (n unlessNode) render(ctx map[string]any, out *strings.Builder, warnings *[]string) error {
	ok, err := evalCond(n.cond, ctx)
	if err != nil {
		return err
	}
	if !ok {
		return renderAll(n.body, ctx, out, warnings)
	}
	return nil
}

type eachNode struct {
	arrName string
	body    []node
}

func (n eachNode) render(ctx map[string]any, out *strings.Builder, warnings *[]string) error {
	val, ok := lookup(ctx, n.arrName)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("missing array %q", n.arrName))
		return nil
	}
	items, ok := val.([]any)
	if !ok {
		items = coerceSlice(val)
	}
	for i, item := range items {
		inner := make(map[string]any, len(ctx)+2)
		for k, v := range ctx {
			inner[k] = v
		}
		inner["this"] = item
		inner["@index"] = i
		if err := renderAll(n.body, inner, out, warnings); err != nil {
			return err
		}
	}
	return nil
}

func renderAll(nodes []node, ctx map[string]any, out *strings.Builder, warnings *[]string) error {
	for _, n := range nodes {
		if err := n.render(ctx, out, warnings); err != nil {
			return err
		}
	}
	return nil
}

func evalCond(cond string, ctx map[string]any) (bool, error) {
	program, err := expr.Compile(cond, expr.Env(ctx), expr.AsBool())
	if err != nil {
		// Truthiness fallback for bare identifiers that expr can't type as bool
		// statically (e.g. a string or number used as a condition).
		val, ok := lookup(ctx, strings.TrimSpace(cond))
		if ok {
			return truthy(val), nil
		}
		return false, engineerr.Wrap(engineerr.UnknownTemplate, err)
	}
	out, err := expr.Run(program, ctx)
	if err != nil {
		return false, engineerr.Wrap(engineerr.UnknownTemplate, err)
	}
	b, _ := out.(bool)
	return b, nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	case nil:
		return false
	default:
		return true
	}
}

func lookup(ctx map[string]any, name string) (any, bool) {
	parts := strings.Split(name, ".")
	var cur any = ctx
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[p]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, "\x1f")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

func coerceSlice(v any) []any {
	switch x := v.(type) {
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Render executes the template against ctx, returning rendered text and any
// warnings (missing variables render as empty string and emit a warning,
// per spec §4.G).
func (t *Template) Render(ctx map[string]any) (string, []string, error) {
	var out strings.Builder
	var warnings []string
	if err := renderAll(t.root, ctx, &out, &warnings); err != nil {
		return "", warnings, err
	}
	return out.String(), warnings, nil
}

// Parse compiles a template string into a Template.
func Parse(source string) (*Template, error) {
	toks := tokenize(source)
	pos := 0
	root, newPos, err := parseNodes(toks, pos, "")
	if err != nil {
		return nil, err
	}
	if newPos != len(toks) {
		return nil, engineerr.New(engineerr.UnclosedBlock, "unexpected trailing block close")
	}
	return &Template{source: source, root: root}, nil
}

// ValidationResult is the outcome of a static template check (spec §4.G
// "a static validate(template) call").
type ValidationResult struct {
	Valid    bool
	Errors   []string
}

// Validate statically checks a template for unclosed blocks and unknown
// filter references, without rendering it.
func Validate(source string) *ValidationResult {
	res := &ValidationResult{Valid: true}
	if _, err := Parse(source); err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	for _, name := range referencedFilters(source) {
		if _, ok := filters[name]; !ok {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("unknown filter %q", name))
		}
	}
	return res
}

func referencedFilters(source string) []string {
	var names []string
	toks := tokenize(source)
	for _, tok := range toks {
		if tok.kind != tokVar {
			continue
		}
		segs := strings.Split(tok.content, "|")
		for _, seg := range segs[1:] {
			fields := strings.Fields(strings.TrimSpace(seg))
			if len(fields) > 0 {
				names = append(names, fields[0])
			}
		}
	}
	return names
}
