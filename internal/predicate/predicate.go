// Package predicate holds the canonical representation of an audience filter:
// a conjunction of (field, operator, value) constraints over the customer
// schema. The wire and store formats are both the Mongo operator-keyed object
// {"field": {"$op": value}}, so translating to the store's native filter is a
// pass-through.
package predicate

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/targetly/crm-backend/internal/errors"
)

// Operator is one of the closed set of comparison operators.
type Operator string

const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
	OpIn  Operator = "$in"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true, OpIn: true,
}

func (op Operator) ordering() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

// FieldType classifies a customer attribute for validation purposes.
type FieldType int

const (
	TypeString FieldType = iota
	TypeNumber
	TypeDate
	TypeEnum
)

type fieldSpec struct {
	Type FieldType
	Enum []string
}

// customerSchema is the fixed attribute table predicates are validated
// against. Every field name in a predicate must appear here.
var customerSchema = map[string]fieldSpec{
	"name":       {Type: TypeString},
	"email":      {Type: TypeString},
	"phone":      {Type: TypeString},
	"gender":     {Type: TypeEnum, Enum: []string{"male", "female", "other"}},
	"totalSpend": {Type: TypeNumber},
	"visits":     {Type: TypeNumber},
	"lastActive": {Type: TypeDate},
	"createdAt":  {Type: TypeDate},
}

// Rule is a single (field, operator, value) constraint.
type Rule struct {
	Field string
	Op    Operator
	Value any
}

// Predicate is an ordered conjunction of rules. Composition across fields is
// implicit AND; there is no disjunction, negation or nesting.
type Predicate struct {
	Rules []Rule
}

func (p Predicate) Empty() bool { return len(p.Rules) == 0 }

// FromWire builds a predicate from the decoded wire object. A bare value is
// Mongo shorthand for equality. Fields and operators are ordered
// lexicographically so the same wire object always yields the same rule list.
func FromWire(raw map[string]any) (Predicate, error) {
	fields := make([]string, 0, len(raw))
	for f := range raw {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var p Predicate
	for _, field := range fields {
		switch v := raw[field].(type) {
		case map[string]any:
			ops := make([]string, 0, len(v))
			for op := range v {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			for _, op := range ops {
				if !operators[Operator(op)] {
					return Predicate{}, apperrors.NewInvalidPredicate("unsupported operator %q for attribute %q", op, field)
				}
				p.Rules = append(p.Rules, Rule{Field: field, Op: Operator(op), Value: v[op]})
			}
		default:
			p.Rules = append(p.Rules, Rule{Field: field, Op: OpEq, Value: v})
		}
	}
	return p, nil
}

// Parse decodes the wire JSON form.
func Parse(data []byte) (Predicate, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Predicate{}, apperrors.NewInvalidPredicate("segment rules are not a JSON object: %v", err)
	}
	return FromWire(raw)
}

// Validate checks the predicate against the customer schema: non-empty, known
// fields only, values type-compatible with their field and operator.
func (p Predicate) Validate() error {
	if p.Empty() {
		return apperrors.NewInvalidPredicate("segment rules are empty")
	}
	for _, r := range p.Rules {
		spec, ok := customerSchema[r.Field]
		if !ok {
			return apperrors.NewInvalidPredicate("unknown customer attribute %q", r.Field)
		}
		if r.Op.ordering() && spec.Type != TypeNumber && spec.Type != TypeDate {
			return apperrors.NewInvalidPredicate("operator %s is not applicable to attribute %q", r.Op, r.Field)
		}
		if r.Op == OpIn {
			list, ok := asList(r.Value)
			if !ok || len(list) == 0 {
				return apperrors.NewInvalidPredicate("$in for attribute %q expects a non-empty list", r.Field)
			}
			for _, e := range list {
				if err := checkValue(r.Field, spec, e); err != nil {
					return err
				}
			}
			continue
		}
		if err := checkValue(r.Field, spec, r.Value); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(field string, spec fieldSpec, v any) error {
	switch spec.Type {
	case TypeNumber:
		switch v.(type) {
		case float64, int, int32, int64:
			return nil
		}
		return apperrors.NewInvalidPredicate("attribute %q expects a numeric value", field)
	case TypeDate:
		switch t := v.(type) {
		case time.Time:
			return nil
		case string:
			if _, err := time.Parse(time.RFC3339, t); err != nil {
				return apperrors.NewInvalidPredicate("attribute %q expects an RFC 3339 date, got %q", field, t)
			}
			return nil
		}
		return apperrors.NewInvalidPredicate("attribute %q expects a date value", field)
	case TypeEnum:
		s, ok := v.(string)
		if !ok {
			return apperrors.NewInvalidPredicate("attribute %q must be one of %s", field, strings.Join(spec.Enum, ", "))
		}
		for _, e := range spec.Enum {
			if e == s {
				return nil
			}
		}
		return apperrors.NewInvalidPredicate("attribute %q must be one of %s", field, strings.Join(spec.Enum, ", "))
	default:
		if _, ok := v.(string); !ok {
			return apperrors.NewInvalidPredicate("attribute %q expects a string value", field)
		}
		return nil
	}
}

// Filter exposes the predicate in the store's native filter form. Date values
// arriving as RFC 3339 strings are coerced to time.Time so the store compares
// them as dates rather than strings.
func (p Predicate) Filter() bson.M {
	filter := bson.M{}
	for _, r := range p.Rules {
		ops, ok := filter[r.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[r.Field] = ops
		}
		ops[string(r.Op)] = storeValue(r.Field, r.Value)
	}
	return filter
}

func storeValue(field string, v any) any {
	if list, ok := asList(v); ok {
		vals := make([]any, len(list))
		for i, e := range list {
			vals[i] = storeValue(field, e)
		}
		return vals
	}
	if customerSchema[field].Type == TypeDate {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UTC()
			}
		}
	}
	return v
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case primitive.A:
		return []any(t), true
	}
	return nil, false
}

func (p Predicate) wire() map[string]map[string]any {
	out := make(map[string]map[string]any, len(p.Rules))
	for _, r := range p.Rules {
		if out[r.Field] == nil {
			out[r.Field] = map[string]any{}
		}
		out[r.Field][string(r.Op)] = wireValue(r.Value)
	}
	return out
}

func wireValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.A:
		vals := make([]any, len(t))
		for i, e := range t {
			vals[i] = wireValue(e)
		}
		return vals
	case []any:
		vals := make([]any, len(t))
		for i, e := range t {
			vals[i] = wireValue(e)
		}
		return vals
	default:
		return v
	}
}

func (p Predicate) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

func (p *Predicate) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalBSON persists the predicate in its native filter form, so the stored
// document looks exactly like the query it produces.
func (p Predicate) MarshalBSON() ([]byte, error) {
	return bson.Marshal(p.Filter())
}

func (p *Predicate) UnmarshalBSON(data []byte) error {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	var out Predicate
	for _, elem := range doc {
		switch v := elem.Value.(type) {
		case bson.D:
			for _, opElem := range v {
				if !operators[Operator(opElem.Key)] {
					return apperrors.NewInvalidPredicate("unsupported operator %q for attribute %q", opElem.Key, elem.Key)
				}
				out.Rules = append(out.Rules, Rule{Field: elem.Key, Op: Operator(opElem.Key), Value: normalize(opElem.Value)})
			}
		default:
			out.Rules = append(out.Rules, Rule{Field: elem.Key, Op: OpEq, Value: normalize(v)})
		}
	}
	*p = out
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		vals := make([]any, len(t))
		for i, e := range t {
			vals[i] = normalize(e)
		}
		return vals
	default:
		return v
	}
}
