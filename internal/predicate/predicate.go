// Package predicate evaluates boolean statements over roll options.
package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operators understood by the predicate gate
const (
	OpAnd  = "and"
	OpAll  = "all"
	OpOr   = "or"
	OpAny  = "any"
	OpNand = "nand"
	OpNor  = "nor"
	OpNot  = "not"
	OpIf   = "if"
	OpEq   = "eq"
	OpGt   = "gt"
	OpGte  = "gte"
	OpLt   = "lt"
	OpLte  = "lte"
)

// Statement is one node of a predicate. Atom statements carry only Atom.
type Statement struct {
	Atom string
	Op   string
	Args []Statement

	// Binary comparison operands; Right is a string or a float64
	Left  string
	Right any

	invalid string
}

// Predicate is an implicit conjunction of statements
type Predicate struct {
	Statements []Statement
	invalid    string
}

// Parse decodes a predicate from JSON. Null or absent input is the empty predicate.
func Parse(raw json.RawMessage) Predicate {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Predicate{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Predicate{invalid: "predicate must be an array"}
	}

	p := Predicate{Statements: make([]Statement, 0, len(items))}
	for _, item := range items {
		st := parseStatement(item)
		if st.invalid != "" && p.invalid == "" {
			p.invalid = st.invalid
		}
		p.Statements = append(p.Statements, st)
	}
	return p
}

// New builds a predicate of plain atoms
func New(atoms ...string) Predicate {
	p := Predicate{}
	for _, a := range atoms {
		p.Statements = append(p.Statements, Atom(a))
	}
	return p
}

// Atom builds a literal statement
func Atom(option string) Statement {
	st := Statement{Atom: option}
	if strings.TrimSpace(option) == "" {
		st.invalid = "predicate atoms must be non-empty strings"
	}
	return st
}

func parseStatement(raw json.RawMessage) Statement {
	var atom string
	if err := json.Unmarshal(raw, &atom); err == nil {
		return Atom(atom)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Statement{invalid: fmt.Sprintf("malformed predicate statement %s", string(raw))}
	}

	switch {
	case len(obj) == 2 && obj[OpIf] != nil && obj["then"] != nil:
		cond, then := parseStatement(obj[OpIf]), parseStatement(obj["then"])
		return withChildren(Statement{Op: OpIf, Args: []Statement{cond, then}})
	case len(obj) != 1:
		return Statement{invalid: "predicate statements must have exactly one operator"}
	}

	for op, body := range obj {
		switch op {
		case OpAnd, OpAll, OpOr, OpAny, OpNand, OpNor:
			var items []json.RawMessage
			if err := json.Unmarshal(body, &items); err != nil {
				return Statement{Op: op, invalid: fmt.Sprintf("%q requires an array", op)}
			}
			st := Statement{Op: op}
			for _, item := range items {
				st.Args = append(st.Args, parseStatement(item))
			}
			return withChildren(st)
		case OpNot:
			return withChildren(Statement{Op: op, Args: []Statement{parseStatement(body)}})
		case OpEq, OpGt, OpGte, OpLt, OpLte:
			return parseBinary(op, body)
		default:
			return Statement{Op: op, invalid: fmt.Sprintf("unknown predicate operator %q", op)}
		}
	}
	return Statement{invalid: "empty predicate statement"}
}

func withChildren(st Statement) Statement {
	for _, arg := range st.Args {
		if arg.invalid != "" {
			st.invalid = arg.invalid
			break
		}
	}
	return st
}

func parseBinary(op string, body json.RawMessage) Statement {
	var operands []any
	if err := json.Unmarshal(body, &operands); err != nil || len(operands) != 2 {
		return Statement{Op: op, invalid: fmt.Sprintf("%q requires exactly two operands", op)}
	}

	left, ok := operands[0].(string)
	if !ok || left == "" {
		return Statement{Op: op, invalid: fmt.Sprintf("%q requires a string left operand", op)}
	}

	switch right := operands[1].(type) {
	case string:
		if right == "" {
			break
		}
		return Statement{Op: op, Left: left, Right: right}
	case float64:
		return Statement{Op: op, Left: left, Right: right}
	}
	return Statement{Op: op, invalid: fmt.Sprintf("%q requires a string or number right operand", op)}
}

// IsValid reports whether every statement is structurally sound
func (p Predicate) IsValid() bool {
	return p.invalid == ""
}

// Problem describes the first structural problem, if any
func (p Predicate) Problem() string {
	return p.invalid
}

// IsEmpty reports whether the predicate has no statements
func (p Predicate) IsEmpty() bool {
	return len(p.Statements) == 0
}

// Test evaluates the predicate. Empty predicates pass; invalid ones fail.
func (p Predicate) Test(options Options) bool {
	if !p.IsValid() {
		return false
	}
	for _, st := range p.Statements {
		if !st.test(options) {
			return false
		}
	}
	return true
}

func (s Statement) test(options Options) bool {
	if s.invalid != "" {
		return false
	}
	if s.Op == "" {
		return options.Has(s.Atom)
	}

	switch s.Op {
	case OpAnd, OpAll:
		for _, a := range s.Args {
			if !a.test(options) {
				return false
			}
		}
		return true
	case OpOr, OpAny:
		for _, a := range s.Args {
			if a.test(options) {
				return true
			}
		}
		return false
	case OpNand:
		return !Statement{Op: OpAnd, Args: s.Args}.test(options)
	case OpNor:
		return !Statement{Op: OpOr, Args: s.Args}.test(options)
	case OpNot:
		return !s.Args[0].test(options)
	case OpIf:
		return !s.Args[0].test(options) || s.Args[1].test(options)
	default:
		return s.compare(options)
	}
}

// compare reads numeric operands either as literals or from options shaped "<name>:<number>"
func (s Statement) compare(options Options) bool {
	lefts := operandValues(s.Left, options)
	var rights []float64
	switch r := s.Right.(type) {
	case float64:
		rights = []float64{r}
	case string:
		rights = operandValues(r, options)
	}
	if len(lefts) == 0 || len(rights) == 0 {
		return false
	}

	for _, l := range lefts {
		switch s.Op {
		case OpEq:
			for _, r := range rights {
				if l == r {
					return true
				}
			}
		default:
			all := true
			for _, r := range rights {
				if !compareOp(s.Op, l, r) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	return false
}

func compareOp(op string, l, r float64) bool {
	switch op {
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	}
	return false
}

func operandValues(operand string, options Options) []float64 {
	if n, err := strconv.ParseFloat(operand, 64); err == nil {
		return []float64{n}
	}

	prefix := operand + ":"
	var values []float64
	for opt := range options {
		if !strings.HasPrefix(opt, prefix) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimPrefix(opt, prefix), 64)
		if err == nil && !math.IsNaN(n) {
			values = append(values, n)
		}
	}
	return values
}

// Resolve returns a copy with every atom and string operand rewritten by fn
func (p Predicate) Resolve(fn func(string) string) Predicate {
	out := Predicate{invalid: p.invalid, Statements: make([]Statement, len(p.Statements))}
	for i, st := range p.Statements {
		out.Statements[i] = st.resolve(fn)
	}
	return out
}

func (s Statement) resolve(fn func(string) string) Statement {
	out := s
	if s.Op == "" && s.invalid == "" {
		out.Atom = fn(s.Atom)
		return out
	}
	if s.Left != "" {
		out.Left = fn(s.Left)
	}
	if r, ok := s.Right.(string); ok {
		out.Right = fn(r)
	}
	if len(s.Args) > 0 {
		out.Args = make([]Statement, len(s.Args))
		for i, a := range s.Args {
			out.Args[i] = a.resolve(fn)
		}
	}
	return out
}

// Atoms returns every atom and string operand, depth first
func (p Predicate) Atoms() []string {
	var out []string
	var walk func(Statement)
	walk = func(s Statement) {
		if s.Op == "" {
			out = append(out, s.Atom)
			return
		}
		if s.Left != "" {
			out = append(out, s.Left)
		}
		if r, ok := s.Right.(string); ok {
			out = append(out, r)
		}
		for _, a := range s.Args {
			walk(a)
		}
	}
	for _, st := range p.Statements {
		walk(st)
	}
	return out
}

// MarshalJSON implements json.Marshaler
func (p Predicate) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(p.Statements))
	for _, st := range p.Statements {
		out = append(out, st.encode())
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Predicate) UnmarshalJSON(raw []byte) error {
	*p = Parse(raw)
	return nil
}

func (s Statement) encode() any {
	switch s.Op {
	case "":
		return s.Atom
	case OpNot:
		return map[string]any{OpNot: s.Args[0].encode()}
	case OpIf:
		return map[string]any{OpIf: s.Args[0].encode(), "then": s.Args[1].encode()}
	case OpEq, OpGt, OpGte, OpLt, OpLte:
		return map[string]any{s.Op: []any{s.Left, s.Right}}
	default:
		args := make([]any, 0, len(s.Args))
		for _, a := range s.Args {
			args = append(args, a.encode())
		}
		return map[string]any{s.Op: args}
	}
}
