// Package query validates user-supplied filter triples against a closed
// field/operator registry and compiles them into an ordered, executable
// query plan.
package query

// Field describes one filterable column of an entity.
type Field struct {
	// Column is the storage column the symbol resolves to.
	Column string
	// Numeric forces integer coercion of the filter value.
	Numeric bool
	// Array marks columns of array type; predicates on them are rendered
	// as membership tests rather than scalar comparisons.
	Array bool
}

// Entity is the closed registry of filterable fields for one entity type,
// plus the columns its results are ordered by.
type Entity struct {
	// Name identifies the entity in error messages.
	Name string
	// NameColumn is the canonical sort tiebreaker column.
	NameColumn string
	// Fields maps filter symbols (e.g. "CITY") to storage fields. The map
	// is a deliberate explicit enumeration: only vetted columns are ever
	// filterable, so a caller can never smuggle in an arbitrary column name.
	Fields map[string]Field
}

// operators maps filter operator symbols to SQL comparison operators.
// Shared across all entity registries.
var operators = map[string]string{
	"EQ":   "=",
	"GT":   ">",
	"GTEQ": ">=",
	"LT":   "<",
	"LTEQ": "<=",
	"NE":   "!=",
}

// Conferences is the filter registry for the conference entity.
var Conferences = Entity{
	Name:       "conference",
	NameColumn: "name",
	Fields: map[string]Field{
		"CITY":          {Column: "city"},
		"TOPIC":         {Column: "topics", Array: true},
		"MONTH":         {Column: "month", Numeric: true},
		"MAX_ATTENDEES": {Column: "max_attendees", Numeric: true},
	},
}

// Sessions is the filter registry for the session entity.
var Sessions = Entity{
	Name:       "session",
	NameColumn: "name",
	Fields: map[string]Field{
		"DURATION_IN_MINUTES": {Column: "duration_in_minutes", Numeric: true},
	},
}
