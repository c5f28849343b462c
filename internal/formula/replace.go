// Package formula substitutes @-references into arithmetic formulas and
// evaluates them in a restricted CEL environment.
package formula

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
)

var referencePattern = regexp.MustCompile(`@([a-zA-Z_]\w*(?:\.\w+|-[a-zA-Z_]\w*)*)`)

// ReplaceData substitutes every @path reference with its value from data.
// References rooted at one of the optional names resolve to 0 when missing.
// The unresolved references are returned without the leading @.
func ReplaceData(formula string, data map[string]any, optional ...string) (string, []string) {
	if !strings.Contains(formula, "@") {
		return formula, nil
	}

	var unresolved []string
	out := referencePattern.ReplaceAllStringFunc(formula, func(token string) string {
		path := token[1:]
		if value, ok := datatree.Lookup(data, path); ok {
			if text, ok := scalarText(value); ok {
				return text
			}
		}

		root, _, _ := strings.Cut(path, ".")
		for _, name := range optional {
			if root == name {
				return "0"
			}
		}
		unresolved = append(unresolved, path)
		return token
	})

	return out, unresolved
}

func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case float64:
		return wrapNegative(strconv.FormatFloat(v, 'f', -1, 64)), true
	case int:
		return wrapNegative(strconv.Itoa(v)), true
	case int64:
		return wrapNegative(strconv.FormatInt(v, 10)), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case string:
		return v, v != ""
	default:
		return "", false
	}
}

func wrapNegative(text string) string {
	if strings.HasPrefix(text, "-") {
		return "(" + text + ")"
	}
	return text
}
