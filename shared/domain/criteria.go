package domain

// ---------------- Operadores ----------------

// Operator es el vocabulario canónico de comparación, independiente de la
// convención del cliente que lo envió.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
	OpIn          Operator = "in"
	OpNotIn       Operator = "notIn"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpBetween     Operator = "between"
	OpIsNull      Operator = "isNull"
	OpIsNotNull   Operator = "isNotNull"
)

// AllOperators en orden estable (se usa en mensajes de error y en la introspección).
var AllOperators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
	OpIn, OpNotIn, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIsNull, OpIsNotNull,
}

// IsValid indica si el operador pertenece al vocabulario canónico.
func (o Operator) IsValid() bool {
	for _, op := range AllOperators {
		if op == o {
			return true
		}
	}
	return false
}

// TakesNoValue es cierto para los operadores de nulidad.
func (o Operator) TakesNoValue() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// TakesList es cierto para los operadores de pertenencia.
func (o Operator) TakesList() bool {
	return o == OpIn || o == OpNotIn
}

// IsTextMatch es cierto para los operadores de subcadena.
func (o Operator) IsTextMatch() bool {
	switch o {
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// IsDisjunction indica si las condiciones deben unirse con OR.
func (c CompositeCriteria) IsDisjunction() bool {
	return c.Operator == OpOr
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}

// Single envuelve un Criterion suelto como Criteria.
type Single Criterion

func (s Single) ToConditions() []Criterion {
	return []Criterion{Criterion(s)}
}
