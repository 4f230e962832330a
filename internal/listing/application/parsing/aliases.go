package parsing

import (
	"strings"

	shared "github.com/davicafu/hexaquery/shared/domain"
)

// aliasTable mapea la ortografía de una convención al operador canónico.
// Las claves se guardan en minúsculas.
type aliasTable map[string]shared.Operator

func newAliasTable(groups ...map[string]shared.Operator) aliasTable {
	t := aliasTable{}
	for _, op := range shared.AllOperators {
		t[strings.ToLower(string(op))] = op
	}
	for _, g := range groups {
		for k, op := range g {
			t[strings.ToLower(k)] = op
		}
	}
	return t
}

func (t aliasTable) lookup(s string) (shared.Operator, bool) {
	op, ok := t[strings.ToLower(strings.TrimSpace(s))]
	return op, ok
}

// Ortografías genéricas de APIs REST (simple y bracket).
var restAliases = map[string]shared.Operator{
	"eq": shared.OpEquals, "=": shared.OpEquals, "is": shared.OpEquals, "exact": shared.OpEquals,
	"ne": shared.OpNotEquals, "neq": shared.OpNotEquals, "!=": shared.OpNotEquals, "<>": shared.OpNotEquals,
	"not": shared.OpNotEquals, "notEqual": shared.OpNotEquals,
	"like": shared.OpContains, "ilike": shared.OpContains, "icontains": shared.OpContains, "has": shared.OpContains,
	"nlike": shared.OpNotContains, "ncontains": shared.OpNotContains, "not_contains": shared.OpNotContains,
	"startswith": shared.OpStartsWith, "starts_with": shared.OpStartsWith, "sw": shared.OpStartsWith, "prefix": shared.OpStartsWith,
	"endswith": shared.OpEndsWith, "ends_with": shared.OpEndsWith, "ew": shared.OpEndsWith, "suffix": shared.OpEndsWith,
	"nin": shared.OpNotIn, "not_in": shared.OpNotIn, "notin": shared.OpNotIn,
	">": shared.OpGt, "greaterThan": shared.OpGt, "after": shared.OpGt,
	"ge": shared.OpGte, ">=": shared.OpGte, "greaterThanOrEqual": shared.OpGte, "from": shared.OpGte, "min": shared.OpGte,
	"<": shared.OpLt, "lessThan": shared.OpLt, "before": shared.OpLt,
	"le": shared.OpLte, "<=": shared.OpLte, "lessThanOrEqual": shared.OpLte, "to": shared.OpLte, "max": shared.OpLte,
	"range": shared.OpBetween, "inRange": shared.OpBetween, "btw": shared.OpBetween,
	"null": shared.OpIsNull, "is_null": shared.OpIsNull, "isEmpty": shared.OpIsNull,
	"notnull": shared.OpIsNotNull, "not_null": shared.OpIsNotNull, "isNotEmpty": shared.OpIsNotNull,
}

// Operadores del DataGrid de MUI (filterModel.items[].operator).
var dataGridAliases = map[string]shared.Operator{
	"doesNotContain": shared.OpNotContains,
	"doesNotEqual":   shared.OpNotEquals,
	"is":             shared.OpEquals,
	"not":            shared.OpNotEquals,
	"isAnyOf":        shared.OpIn,
	"isEmpty":        shared.OpIsNull,
	"isNotEmpty":     shared.OpIsNotNull,
	"after":          shared.OpGt,
	"onOrAfter":      shared.OpGte,
	"before":         shared.OpLt,
	"onOrBefore":     shared.OpLte,
	"=":              shared.OpEquals,
	"!=":             shared.OpNotEquals,
	">":              shared.OpGt,
	">=":             shared.OpGte,
	"<":              shared.OpLt,
	"<=":             shared.OpLte,
}

// Tipos de filtro de AG Grid (filterModel[col].type).
var agGridAliases = map[string]shared.Operator{
	"notEqual":           shared.OpNotEquals,
	"lessThan":           shared.OpLt,
	"lessThanOrEqual":    shared.OpLte,
	"greaterThan":        shared.OpGt,
	"greaterThanOrEqual": shared.OpGte,
	"inRange":            shared.OpBetween,
	"blank":              shared.OpIsNull,
	"notBlank":           shared.OpIsNotNull,
	"set":                shared.OpIn,
}

var (
	restOperators     = newAliasTable(restAliases)
	dataGridOperators = newAliasTable(dataGridAliases)
	agGridOperators   = newAliasTable(agGridAliases)
)
