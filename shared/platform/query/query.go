package query

import "strings"

// ---------- Tipos de filtrado / paginación / ordenamiento ----------

// Direction es la dirección normalizada de un orden.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection acepta las variantes habituales de los clientes.
// Devuelve ok=false si el texto no es reconocible.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending", "up", "1", "+":
		return Asc, true
	case "desc", "descending", "down", "-1", "-":
		return Desc, true
	}
	return "", false
}

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// KeysetValue es el valor de una columna en la posición del cursor.
type KeysetValue struct {
	Field     string
	Direction Direction
	Value     interface{}
}

// CursorPagination para paginación tipo cursor.
// FetchLimit = Limit + 1 para detectar si hay más filas sin un COUNT extra.
type CursorPagination struct {
	Limit int
	After []KeysetValue // vacío => desde el principio
}

// FetchLimit devuelve el número de filas que hay que pedir al store.
func (p CursorPagination) FetchLimit() int {
	return p.Limit + 1
}

// Interfaz genérica para paginación
type Pagination interface{}

// Sort indica campo y dirección.
type Sort struct {
	Field     string // ej. "created_at", "price", "name"
	Direction Direction
}

// Desc indica si el orden es descendente.
func (s Sort) Desc() bool {
	return s.Direction == Desc
}
