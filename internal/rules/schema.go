package rules

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
)

// Type is a set of JSON types a field accepts
type Type uint8

// JSON types
const (
	TypeString Type = 1 << iota
	TypeNumber
	TypeBoolean
	TypeObject
	TypeArray
	TypeNull
)

// TypeResolvable accepts literal numbers, formulas and bracketed values
const TypeResolvable = TypeNumber | TypeString | TypeObject

func (t Type) String() string {
	var names []string
	for _, c := range []struct {
		t    Type
		name string
	}{
		{TypeString, "string"},
		{TypeNumber, "number"},
		{TypeBoolean, "boolean"},
		{TypeObject, "object"},
		{TypeArray, "array"},
		{TypeNull, "null"},
	} {
		if t&c.t != 0 {
			names = append(names, c.name)
		}
	}
	return strings.Join(names, " or ")
}

func typeOf(r gjson.Result) Type {
	switch {
	case r.Type == gjson.String:
		return TypeString
	case r.Type == gjson.Number:
		return TypeNumber
	case r.Type == gjson.True || r.Type == gjson.False:
		return TypeBoolean
	case r.Type == gjson.Null:
		return TypeNull
	case r.IsArray():
		return TypeArray
	default:
		return TypeObject
	}
}

// Field describes one source field
type Field struct {
	Name     string
	Type     Type
	Required bool
	Nullable bool
	Choices  []string
	Check    func(gjson.Result) error
}

// Schema is the set of fields a kind declares
type Schema []Field

// BaseSchema holds the fields shared by every rule element
var BaseSchema = Schema{
	{Name: "key", Type: TypeString, Required: true},
	{Name: "slug", Type: TypeString, Nullable: true},
	{Name: "label", Type: TypeString},
	{Name: "priority", Type: TypeNumber},
	{Name: "predicate", Type: TypeArray},
	{Name: "ignored", Type: TypeBoolean},
	{Name: "requiresEquipped", Type: TypeBoolean, Nullable: true},
	{Name: "requiresInvestment", Type: TypeBoolean, Nullable: true},
	{Name: "removeUponCreate", Type: TypeBoolean},
}

// Validate checks raw against every field and returns one message per problem.
// Fields not in the schema are allowed.
func (s Schema) Validate(raw []byte) []string {
	var problems []string
	for _, f := range s {
		r := gjson.GetBytes(raw, datatree.EscapeKey(f.Name))
		if !r.Exists() {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: required", f.Name))
			}
			continue
		}

		t := typeOf(r)
		if t == TypeNull {
			if !f.Nullable && f.Type&TypeNull == 0 {
				problems = append(problems, fmt.Sprintf("%s: may not be null", f.Name))
			}
			continue
		}
		if f.Type != 0 && f.Type&t == 0 {
			problems = append(problems, fmt.Sprintf("%s: must be a %s", f.Name, f.Type))
			continue
		}
		if len(f.Choices) > 0 && t == TypeString && !contains(f.Choices, r.String()) {
			problems = append(problems, fmt.Sprintf("%s: must be one of %s", f.Name, strings.Join(f.Choices, ", ")))
			continue
		}
		if f.Check != nil {
			if err := f.Check(r); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", f.Name, err))
			}
		}
	}
	return problems
}

// Extend returns a schema holding s followed by fields
func (s Schema) Extend(fields ...Field) Schema {
	out := make(Schema, 0, len(s)+len(fields))
	out = append(out, s...)
	return append(out, fields...)
}

// StringArray checks that every element of an array is a non-empty string
func StringArray(r gjson.Result) error {
	if !r.IsArray() {
		return nil
	}
	for _, v := range r.Array() {
		if v.Type != gjson.String || v.String() == "" {
			return fmt.Errorf("must contain only non-empty strings")
		}
	}
	return nil
}

// NonNegative checks that a literal number is at least zero
func NonNegative(r gjson.Result) error {
	if r.Type == gjson.Number && r.Float() < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
