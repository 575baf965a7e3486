package narrative

import (
	"fmt"
	"strings"

	"github.com/loomwright/dayloop/internal/engineerr"
)

// filterFunc applies one named filter to a rendered value plus its args.
type filterFunc func(value string, args []string) (string, error)

var filters = map[string]filterFunc{
	"uppercase": func(v string, _ []string) (string, error) { return strings.ToUpper(v), nil },
	"lowercase": func(v string, _ []string) (string, error) { return strings.ToLower(v), nil },
	"capitalize": func(v string, _ []string) (string, error) {
		if v == "" {
			return v, nil
		}
		return strings.ToUpper(v[:1]) + v[1:], nil
	},
	"length": func(v string, _ []string) (string, error) {
		return fmt.Sprintf("%d", len([]rune(v))), nil
	},
	"join": func(v string, args []string) (string, error) {
		sep := ", "
		if len(args) > 0 {
			sep = args[0]
		}
		parts := strings.Split(v, "\x1f")
		return strings.Join(parts, sep), nil
	},
	"pluralize": func(v string, _ []string) (string, error) {
		return pluralize(v), nil
	},
}

func pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"), strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && len(word) > 1 && !isVowel(rune(lower[len(lower)-2])):
		return word[:len(word)-1] + "ies"
	default:
		return word + "s"
	}
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

func applyFilter(name, value string, args []string) (string, error) {
	fn, ok := filters[name]
	if !ok {
		return "", engineerr.Newf(engineerr.UnknownFilter, "unknown filter %q", name)
	}
	return fn(value, args)
}
