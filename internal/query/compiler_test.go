package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileResolvesSymbols(t *testing.T) {
	plan, err := Compile(Conferences, []Filter{
		{Field: "CITY", Operator: "EQ", Value: "London"},
		{Field: "MAX_ATTENDEES", Operator: "GT", Value: "10"},
	})
	require.NoError(t, err)

	require.Len(t, plan.Predicates, 2)
	assert.Equal(t, "city", plan.Predicates[0].Column)
	assert.Equal(t, "=", plan.Predicates[0].Op)
	assert.Equal(t, "London", plan.Predicates[0].Value)
	assert.Equal(t, "max_attendees", plan.Predicates[1].Column)
	assert.Equal(t, ">", plan.Predicates[1].Op)
	assert.Equal(t, 10, plan.Predicates[1].Value, "numeric fields are coerced to int")
	assert.Equal(t, "max_attendees", plan.InequalityColumn)
}

func TestCompileUnknownField(t *testing.T) {
	_, err := Compile(Conferences, []Filter{{Field: "VENUE", Operator: "EQ", Value: "x"}})

	var invalid *InvalidFilterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "VENUE", invalid.Symbol)
}

func TestCompileUnknownOperator(t *testing.T) {
	_, err := Compile(Sessions, []Filter{{Field: "DURATION_IN_MINUTES", Operator: "LIKE", Value: "30"}})

	var invalid *InvalidFilterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "LIKE", invalid.Symbol)
}

func TestCompileNonNumericValueForNumericField(t *testing.T) {
	_, err := Compile(Conferences, []Filter{{Field: "MONTH", Operator: "EQ", Value: "June"}})

	var invalid *InvalidFilterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "MONTH", invalid.Symbol)
}

func TestCompileRejectsTwoInequalityFields(t *testing.T) {
	_, err := Compile(Conferences, []Filter{
		{Field: "MONTH", Operator: "GT", Value: "3"},
		{Field: "MAX_ATTENDEES", Operator: "LT", Value: "100"},
	})
	assert.True(t, errors.Is(err, ErrTooManyInequalityFields))
}

func TestCompileAllowsRangeOnSameField(t *testing.T) {
	plan, err := Compile(Conferences, []Filter{
		{Field: "MONTH", Operator: "GTEQ", Value: "3"},
		{Field: "CITY", Operator: "EQ", Value: "Paris"},
		{Field: "MONTH", Operator: "LTEQ", Value: "6"},
	})
	require.NoError(t, err)
	assert.Equal(t, "month", plan.InequalityColumn)
	require.Len(t, plan.Predicates, 3)
	// Input order is preserved even with the equality in the middle.
	assert.Equal(t, "month", plan.Predicates[0].Column)
	assert.Equal(t, "city", plan.Predicates[1].Column)
	assert.Equal(t, "month", plan.Predicates[2].Column)
}

func TestCompileEqualityOnlyHasNoInequalityColumn(t *testing.T) {
	plan, err := Compile(Conferences, []Filter{
		{Field: "CITY", Operator: "EQ", Value: "Tokyo"},
		{Field: "TOPIC", Operator: "EQ", Value: "Go"},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.InequalityColumn)
}

func TestWhereClausePreservesOrderAndOffsetsPlaceholders(t *testing.T) {
	plan, err := Compile(Conferences, []Filter{
		{Field: "MONTH", Operator: "GT", Value: "3"},
		{Field: "CITY", Operator: "EQ", Value: "Paris"},
	})
	require.NoError(t, err)

	where, args := plan.WhereClause(1)
	assert.Equal(t, "month > $2 AND city = $3", where)
	assert.Equal(t, []any{3, "Paris"}, args)
}

func TestWhereClauseArrayFieldUsesMembership(t *testing.T) {
	plan, err := Compile(Conferences, []Filter{{Field: "TOPIC", Operator: "EQ", Value: "Go"}})
	require.NoError(t, err)

	where, args := plan.WhereClause(0)
	assert.Equal(t, "$1 = ANY(topics)", where)
	assert.Equal(t, []any{"Go"}, args)
}

func TestWhereClauseArrayFieldMirrorsInequality(t *testing.T) {
	// ANY places the bound value on the left, so "some topic > M" must
	// render with the operator flipped or it would match topics below "M".
	plan, err := Compile(Conferences, []Filter{{Field: "TOPIC", Operator: "GT", Value: "M"}})
	require.NoError(t, err)

	where, args := plan.WhereClause(0)
	assert.Equal(t, "$1 < ANY(topics)", where)
	assert.Equal(t, []any{"M"}, args)

	plan, err = Compile(Conferences, []Filter{{Field: "TOPIC", Operator: "LTEQ", Value: "M"}})
	require.NoError(t, err)

	where, _ = plan.WhereClause(0)
	assert.Equal(t, "$1 >= ANY(topics)", where)

	// NE is symmetric and passes through unchanged.
	plan, err = Compile(Conferences, []Filter{{Field: "TOPIC", Operator: "NE", Value: "M"}})
	require.NoError(t, err)

	where, _ = plan.WhereClause(0)
	assert.Equal(t, "$1 != ANY(topics)", where)
}

func TestWhereClauseEmptyPlan(t *testing.T) {
	plan, err := Compile(Conferences, nil)
	require.NoError(t, err)

	where, args := plan.WhereClause(0)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestOrderClause(t *testing.T) {
	withIneq, err := Compile(Conferences, []Filter{{Field: "MONTH", Operator: "GT", Value: "3"}})
	require.NoError(t, err)
	assert.Equal(t, "month ASC, name ASC", withIneq.OrderClause(Conferences.NameColumn))

	equalityOnly, err := Compile(Conferences, []Filter{{Field: "CITY", Operator: "EQ", Value: "Oslo"}})
	require.NoError(t, err)
	assert.Equal(t, "name ASC", equalityOnly.OrderClause(Conferences.NameColumn))
}
