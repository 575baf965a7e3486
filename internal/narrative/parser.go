package narrative

import (
	"strings"

	"github.com/loomwright/dayloop/internal/engineerr"
)

type tokKind int

const (
	tokText tokKind = iota
	tokVar
	tokIf
	tokElse
	tokEndIf
	tokUnless
	tokEndUnless
	tokEach
	tokEndEach
)

type token struct {
	kind    tokKind
	content string // raw text, or the directive's inner content (without {{ }})
}

// tokenize splits a template source into a flat stream of text and
// directive tokens. Directives never nest braces, matching the spec's
// Mustache-like grammar.
func tokenize(source string) []token {
	var toks []token
	rest := source
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			if rest != "" {
				toks = append(toks, token{kind: tokText, content: rest})
			}
			break
		}
		if start > 0 {
			toks = append(toks, token{kind: tokText, content: rest[:start]})
		}
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			// Unterminated directive: treat the remainder as literal text.
			toks = append(toks, token{kind: tokText, content: "{{" + rest})
			break
		}
		inner := strings.TrimSpace(rest[:end])
		rest = rest[end+2:]
		toks = append(toks, classify(inner))
	}
	return toks
}

func classify(inner string) token {
	switch {
	case strings.HasPrefix(inner, "#if "):
		return token{kind: tokIf, content: strings.TrimSpace(strings.TrimPrefix(inner, "#if "))}
	case inner == "else":
		return token{kind: tokElse}
	case inner == "/if":
		return token{kind: tokEndIf}
	case strings.HasPrefix(inner, "#unless "):
		return token{kind: tokUnless, content: strings.TrimSpace(strings.TrimPrefix(inner, "#unless "))}
	case inner == "/unless":
		return token{kind: tokEndUnless}
	case strings.HasPrefix(inner, "#each "):
		return token{kind: tokEach, content: strings.TrimSpace(strings.TrimPrefix(inner, "#each "))}
	case inner == "/each":
		return token{kind: tokEndEach}
	default:
		return token{kind: tokVar, content: inner}
	}
}

// parseNodes consumes tokens starting at pos until it hits a block-closer
// matching until (one of "if", "unless", "each", or "" for the document
// root), returning the parsed node list and the position just
// past the closer (or len(toks) at the root).
func parseNodes(toks []token, pos int, until string) ([]node, int, error) {
	var nodes []node
	for pos < len(toks) {
		tok := toks[pos]
		switch tok.kind {
		case tokText:
			nodes = append(nodes, textNode{text: tok.content})
			pos++
		case tokVar:
			nodes = append(nodes, parseVar(tok.content))
			pos++
		case tokIf:
			cond := tok.content
			thenBody, next, err := parseNodes(toks, pos+1, "if")
			if err != nil {
				return nil, 0, err
			}
			var elseBody []node
			if next < len(toks) && toks[next].kind == tokElse {
				elseBody, next, err = parseNodes(toks, next+1, "if")
				if err != nil {
					return nil, 0, err
				}
			}
			nodes = append(nodes, ifNode{cond: cond, then: thenBody, els: elseBody})
			pos = next
		case tokUnless:
			cond := tok.content
			body, next, err := parseNodes(toks, pos+1, "unless")
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, unlessNode{cond: cond, body: body})
			pos = next
		case tokEach:
			arr := tok.content
			body, next, err := parseNodes(toks, pos+1, "each")
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, eachNode{arrName: arr, body: body})
			pos = next
		case tokElse:
			if until != "if" {
				return nil, 0, engineerr.New(engineerr.UnclosedBlock, "unexpected {{else}} without matching {{#if}}")
			}
			return nodes, pos, nil
		case tokEndIf:
			if until != "if" {
				return nil, 0, engineerr.New(engineerr.UnclosedBlock, "unexpected {{/if}} without matching {{#if}}")
			}
			return nodes, pos + 1, nil
		case tokEndUnless:
			if until != "unless" {
				return nil, 0, engineerr.New(engineerr.UnclosedBlock, "unexpected {{/unless}} without matching {{#unless}}")
			}
			return nodes, pos + 1, nil
		case tokEndEach:
			if until != "each" {
				return nil, 0, engineerr.New(engineerr.UnclosedBlock, "unexpected {{/each}} without matching {{#each}}")
			}
			return nodes, pos + 1, nil
		}
	}
	if until != "" {
		return nil, 0, engineerr.Newf(engineerr.UnclosedBlock, "unclosed {{#%s}} block", until)
	}
	return nodes, pos, nil
}

func parseVar(content string) varNode {
	segs := strings.Split(content, "|")
	name := strings.TrimSpace(segs[0])
	var calls []filterCall
	for _, seg := range segs[1:] {
		fields := strings.Fields(strings.TrimSpace(seg))
		if len(fields) == 0 {
			continue
		}
		calls = append(calls, filterCall{name: fields[0], args: fields[1:]})
	}
	return varNode{name: name, filters: calls}
}
