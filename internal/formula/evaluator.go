package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/KirkDiggler/rule-elements/internal/dice"
)

// Evaluator computes numeric formulas. Only arithmetic, comparisons and the
// helper functions registered below are available; there are no variables.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator builds an evaluator whose roll() function uses roller
func NewEvaluator(roller dice.Roller) (*Evaluator, error) {
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	unary := func(name string, fn func(float64) float64) cel.EnvOption {
		return cel.Function(name,
			cel.Overload(name+"_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					return types.Double(fn(float64(arg.(types.Double))))
				}),
			),
		)
	}
	binary := func(name string, fn func(a, b float64) float64) cel.EnvOption {
		return cel.Function(name,
			cel.Overload(name+"_double_double", []*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return types.Double(fn(float64(lhs.(types.Double)), float64(rhs.(types.Double))))
				}),
			),
		)
	}

	env, err := cel.NewEnv(
		unary("floor", math.Floor),
		unary("ceil", math.Ceil),
		unary("round", roundHalfUp),
		unary("abs", math.Abs),
		unary("trunc", math.Trunc),
		binary("min", math.Min),
		binary("max", math.Max),
		binary("gt", func(a, b float64) float64 { return truth(a > b) }),
		binary("gte", func(a, b float64) float64 { return truth(a >= b) }),
		binary("lt", func(a, b float64) float64 { return truth(a < b) }),
		binary("lte", func(a, b float64) float64 { return truth(a <= b) }),
		binary("eq", func(a, b float64) float64 { return truth(a == b) }),
		cel.Function("ternary",
			cel.Overload("ternary_double_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					if float64(args[0].(types.Double)) != 0 {
						return args[1]
					}
					return args[2]
				}),
			),
		),
		cel.Function("roll",
			cel.Overload("roll_string", []*cel.Type{cel.StringType}, cel.DoubleType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					result, err := dice.RollString(roller, string(arg.(types.String)))
					if err != nil {
						return types.NewErr("failed to roll %s: %v", arg, err)
					}
					return types.Double(result.Total)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create formula environment: %w", err)
	}

	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// Evaluate computes a substituted formula such as "floor(5/2) + 1d4"
func (e *Evaluator) Evaluate(expression string) (float64, error) {
	prepared := Prepare(expression)
	if strings.TrimSpace(prepared) == "" {
		return 0, errors.New("empty formula")
	}

	prog, err := e.program(prepared)
	if err != nil {
		return 0, err
	}

	out, _, err := prog.Eval(map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", expression, err)
	}

	var result float64
	switch v := out.Value().(type) {
	case float64:
		result = v
	case int64:
		result = float64(v)
	case bool:
		result = truth(v)
	default:
		return 0, fmt.Errorf("formula %q did not produce a number", expression)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("formula %q produced a non-finite result", expression)
	}
	return result, nil
}

func (e *Evaluator) program(prepared string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prog, ok := e.programs[prepared]; ok {
		return prog, nil
	}

	ast, iss := e.env.Compile(prepared)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", prepared, iss.Err())
	}
	prog, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program for %q: %w", prepared, err)
	}

	e.programs[prepared] = prog
	return prog, nil
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
