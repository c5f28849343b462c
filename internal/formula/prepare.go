package formula

import (
	"regexp"
	"strings"
)

var bareDie = regexp.MustCompile(`^[dD]\d+$`)

// Prepare rewrites a formula into the evaluator's CEL dialect. Integer
// literals become doubles, dice terms become roll() calls, flavor text in
// square brackets is dropped and unary plus is removed.
func Prepare(expr string) string {
	var b strings.Builder
	last := byte(0)

	emit := func(s string) {
		b.WriteString(s)
		if t := strings.TrimSpace(s); t != "" {
			last = t[len(t)-1]
		}
	}

	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(expr) && expr[j] != c {
				if expr[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(expr) {
				j++
			}
			emit(expr[i:min(j, len(expr))])
			i = j

		case c == '[':
			j := strings.IndexByte(expr[i:], ']')
			if j < 0 {
				emit(expr[i:])
				i = len(expr)
				continue
			}
			i += j + 1

		case c == '+' && unaryPosition(last):
			i++

		case isDigit(c) || (c == '.' && i+1 < len(expr) && isDigit(expr[i+1])):
			j := i
			for j < len(expr) && isDigit(expr[j]) {
				j++
			}
			if j > i && j+1 < len(expr) && (expr[j] == 'd' || expr[j] == 'D') && isDigit(expr[j+1]) {
				k := j + 1
				for k < len(expr) && isDigit(expr[k]) {
					k++
				}
				if k == len(expr) || !isIdent(expr[k]) {
					emit(`roll("` + expr[i:j] + "d" + expr[j+1:k] + `")`)
					i = k
					continue
				}
			}
			if j < len(expr) && expr[j] == '.' {
				j++
				for j < len(expr) && isDigit(expr[j]) {
					j++
				}
				lit := expr[i:j]
				if lit[0] == '.' {
					lit = "0" + lit
				}
				if lit[len(lit)-1] == '.' {
					lit += "0"
				}
				emit(lit)
				i = j
				continue
			}
			emit(expr[i:j] + ".0")
			i = j

		case isIdentStart(c):
			j := i
			for j < len(expr) && isIdent(expr[j]) {
				j++
			}
			word := expr[i:j]
			if bareDie.MatchString(word) {
				emit(`roll("1d` + word[1:] + `")`)
			} else {
				emit(word)
			}
			i = j

		default:
			emit(string(c))
			i++
		}
	}

	return b.String()
}

func unaryPosition(last byte) bool {
	switch last {
	case 0, '(', ',', '+', '-', '*', '/', '%', '?', ':', '<', '>', '=', '&', '|', '!':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
