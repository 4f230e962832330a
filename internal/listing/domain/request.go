package domain

import (
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// FormatTag identifica la convención de cliente que envió la petición.
type FormatTag string

const (
	FormatSimple    FormatTag = "simple"
	FormatBracket   FormatTag = "bracket"
	FormatJSONModel FormatTag = "jsonModel"
	FormatRowRange  FormatTag = "rowRange"
)

// SearchMode es la forma de casar el término de búsqueda con cada campo.
type SearchMode string

const (
	SearchContains   SearchMode = "contains"
	SearchStartsWith SearchMode = "startsWith"
	SearchExact      SearchMode = "exact"
)

// Operator traduce el modo de búsqueda al operador canónico.
func (m SearchMode) Operator() (shared.Operator, bool) {
	switch m {
	case SearchContains:
		return shared.OpContains, true
	case SearchStartsWith:
		return shared.OpStartsWith, true
	case SearchExact:
		return shared.OpEquals, true
	}
	return "", false
}

// PaginationStyle es la forma en que el cliente expresó la paginación.
type PaginationStyle string

const (
	StylePage     PaginationStyle = "page"     // page + pageSize (0- o 1-based)
	StyleOffset   PaginationStyle = "offset"   // offset + limit
	StyleRowRange PaginationStyle = "rowRange" // startRow inclusivo, endRow exclusivo
	StyleCursor   PaginationStyle = "cursor"   // cursor opaco + limit
)

// ---------------- Petición intermedia (sin validar) ----------------

// RawFilter: el operador ya está en el vocabulario canónico; el valor sigue crudo.
// Value es nil para operadores de nulidad y []interface{} para listas y rangos.
type RawFilter struct {
	Field    string
	Operator shared.Operator
	Value    interface{}
}

// RawSort conserva la dirección tal cual la normalizó el parser; el validador la comprueba.
type RawSort struct {
	Field     string
	Direction sharedQuery.Direction
	Priority  int
}

type RawSearch struct {
	Term   string
	Fields []string
	Mode   SearchMode
}

// RawPagination: los punteros nil indican "no enviado".
// Invalid lista las claves con valores no numéricos.
type RawPagination struct {
	Style     PaginationStyle
	ZeroBased bool
	Page      *int
	PageSize  *int
	Offset    *int
	Limit     *int
	StartRow  *int
	EndRow    *int
	Cursor    string
	Invalid   []string
}

// ParsedRequest es la salida de un parser. Se consume una vez por el validador.
type ParsedRequest struct {
	Format      FormatTag
	Filters     []RawFilter
	FilterLogic shared.LogicalOperator
	Search      *RawSearch
	Sorting     []RawSort
	Pagination  RawPagination
}

// IntPtr facilita construir RawPagination en parsers y tests.
func IntPtr(v int) *int {
	return &v
}
