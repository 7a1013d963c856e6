package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTooManyInequalityFields is returned when a filter list holds inequality
// operators on two distinct fields. The datastore can only sort a composite
// index on a single range-filtered field, so the rule is enforced here once,
// before any query reaches storage.
var ErrTooManyInequalityFields = errors.New("inequality filter is allowed on only one field")

// InvalidFilterError reports an unknown field or operator symbol, or a value
// that cannot be coerced to the field's declared type.
type InvalidFilterError struct {
	Symbol string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Symbol, e.Reason)
}

// Filter is one raw (field, operator, value) triple from an untrusted caller.
type Filter struct {
	Field    string
	Operator string
	Value    string
}

// Predicate is one resolved, validated filter ready for execution.
type Predicate struct {
	Column string
	Op     string
	Value  any
	array  bool
}

// Plan is a compiled query: ordered predicates plus the single inequality
// column, if any, which drives the primary sort.
type Plan struct {
	InequalityColumn string
	Predicates       []Predicate
}

// Compile validates a filter list against the entity's registry and produces
// an executable plan. Predicates keep their input order; all are conjunctive.
//
// The first non-equality predicate fixes the plan's inequality column; a
// later non-equality predicate on a different column fails with
// ErrTooManyInequalityFields. Several inequality predicates on the same
// column (a range) are fine.
func Compile(entity Entity, filters []Filter) (*Plan, error) {
	plan := &Plan{Predicates: make([]Predicate, 0, len(filters))}

	for _, f := range filters {
		field, ok := entity.Fields[f.Field]
		if !ok {
			return nil, &InvalidFilterError{Symbol: f.Field, Reason: "unknown " + entity.Name + " field"}
		}
		op, ok := operators[f.Operator]
		if !ok {
			return nil, &InvalidFilterError{Symbol: f.Operator, Reason: "unknown operator"}
		}

		var value any = f.Value
		if field.Numeric {
			n, err := strconv.Atoi(strings.TrimSpace(f.Value))
			if err != nil {
				return nil, &InvalidFilterError{Symbol: f.Field, Reason: fmt.Sprintf("value %q is not an integer", f.Value)}
			}
			value = n
		}

		// Every operator except "=" is an inequality.
		if op != "=" {
			if plan.InequalityColumn != "" && plan.InequalityColumn != field.Column {
				return nil, ErrTooManyInequalityFields
			}
			plan.InequalityColumn = field.Column
		}

		plan.Predicates = append(plan.Predicates, Predicate{
			Column: field.Column,
			Op:     op,
			Value:  value,
			array:  field.Array,
		})
	}

	return plan, nil
}

// WhereClause renders the plan's predicates as an AND-joined SQL fragment
// with numbered placeholders starting at argOffset+1, preserving predicate
// order. It returns the fragment (without a leading WHERE) and the argument
// values; both are empty for a plan with no predicates.
func (p *Plan) WhereClause(argOffset int) (string, []any) {
	if len(p.Predicates) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(p.Predicates))
	args := make([]any, 0, len(p.Predicates))
	for i, pred := range p.Predicates {
		placeholder := fmt.Sprintf("$%d", argOffset+i+1)
		if pred.array {
			// Array columns use membership semantics: the predicate holds
			// when some element satisfies "element op value". ANY puts the
			// bound value on the left, so directional operators are
			// mirrored to keep the element on the conceptual left.
			clauses = append(clauses, fmt.Sprintf("%s %s ANY(%s)", placeholder, mirror(pred.Op), pred.Column))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s %s %s", pred.Column, pred.Op, placeholder))
		}
		args = append(args, pred.Value)
	}
	return strings.Join(clauses, " AND "), args
}

// mirror swaps the direction of a comparison operator so its operands can
// trade sides. Symmetric operators pass through.
func mirror(op string) string {
	switch op {
	case ">":
		return "<"
	case ">=":
		return "<="
	case "<":
		return ">"
	case "<=":
		return ">="
	}
	return op
}

// OrderClause renders the plan's sort contract: the inequality column first
// (when present) with the entity's name column as tiebreaker, otherwise the
// name column alone. Always ascending.
func (p *Plan) OrderClause(nameColumn string) string {
	if p.InequalityColumn != "" && p.InequalityColumn != nameColumn {
		return p.InequalityColumn + " ASC, " + nameColumn + " ASC"
	}
	return nameColumn + " ASC"
}
