package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// ---------------- Filtros validados ----------------

// ValidatedFilter: operador legal para el campo y valor ya normalizado.
type ValidatedFilter struct {
	Field    string          `json:"field"`
	Operator shared.Operator `json:"operator"`
	Value    interface{}     `json:"value,omitempty"`
}

// ToConditions parte 'between' en sus dos cotas; el resto pasa tal cual.
func (f ValidatedFilter) ToConditions() []shared.Criterion {
	if f.Operator == shared.OpBetween {
		bounds, _ := f.Value.([]interface{})
		if len(bounds) == 2 {
			return []shared.Criterion{
				{Field: f.Field, Op: shared.OpGte, Value: bounds[0]},
				{Field: f.Field, Op: shared.OpLte, Value: bounds[1]},
			}
		}
	}
	return []shared.Criterion{{Field: f.Field, Op: f.Operator, Value: f.Value}}
}

// ---------------- Búsqueda validada ----------------

type ValidatedSearch struct {
	Term   string     `json:"term"`
	Fields []string   `json:"fields"`
	Mode   SearchMode `json:"mode"`
}

// Criteria devuelve la disyunción de un predicado por campo.
func (s ValidatedSearch) Criteria() shared.CompositeCriteria {
	op, _ := s.Mode.Operator()
	parts := make([]shared.Criteria, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, shared.Single{Field: f, Op: op, Value: s.Term})
	}
	return shared.Or(parts...)
}

// ---------------- Paginación validada ----------------

// Strategy es el plan de paginación que se ejecutará.
type Strategy string

const (
	StrategyOffset Strategy = "offset"
	StrategyCursor Strategy = "cursor"
)

// ValidatedPagination: Page es siempre 1-based; ZeroBased recuerda la convención del cliente.
// Offset solo se usa en los estilos offset y rowRange.
type ValidatedPagination struct {
	Strategy  Strategy        `json:"strategy"`
	Style     PaginationStyle `json:"style"`
	Page      int             `json:"page"`
	PageSize  int             `json:"pageSize"`
	Offset    int             `json:"offset"`
	ZeroBased bool            `json:"zeroBased,omitempty"`
	Cursor    string          `json:"cursor,omitempty"`
	After     *CursorPosition `json:"-"`
}

// ---------------- Petición validada ----------------

// ValidatedRequest es seguro para el traductor sin más comprobaciones. No se muta.
type ValidatedRequest struct {
	Entity     string              `json:"entity"`
	Format     FormatTag           `json:"format"`
	Filters    []ValidatedFilter   `json:"filters"`
	Search     *ValidatedSearch    `json:"search,omitempty"`
	Sorting    []sharedQuery.Sort  `json:"sorting"`
	Pagination ValidatedPagination `json:"pagination"`
}

// Criteria combina filtros (AND) y la búsqueda (un único grupo OR).
func (r *ValidatedRequest) Criteria() shared.CompositeCriteria {
	parts := make([]shared.Criteria, 0, len(r.Filters)+1)
	for _, f := range r.Filters {
		parts = append(parts, f)
	}
	if r.Search != nil {
		parts = append(parts, r.Search.Criteria())
	}
	return shared.And(parts...)
}

// FilterFields lista los campos filtrados, en orden.
func (r *ValidatedRequest) FilterFields() []string {
	out := make([]string, 0, len(r.Filters))
	for _, f := range r.Filters {
		out = append(out, f.Field)
	}
	return out
}

// SortFields lista los campos de ordenación, en orden de prioridad.
func (r *ValidatedRequest) SortFields() []string {
	out := make([]string, 0, len(r.Sorting))
	for _, s := range r.Sorting {
		out = append(out, s.Field)
	}
	return out
}

// AsParsed reconstruye una ParsedRequest equivalente, para volver a validarla.
func (r *ValidatedRequest) AsParsed() ParsedRequest {
	p := ParsedRequest{Format: r.Format, FilterLogic: shared.OpAnd}
	for _, f := range r.Filters {
		p.Filters = append(p.Filters, RawFilter{Field: f.Field, Operator: f.Operator, Value: f.Value})
	}
	if r.Search != nil {
		p.Search = &RawSearch{
			Term:   r.Search.Term,
			Fields: append([]string(nil), r.Search.Fields...),
			Mode:   r.Search.Mode,
		}
	}
	for i, s := range r.Sorting {
		p.Sorting = append(p.Sorting, RawSort{Field: s.Field, Direction: s.Direction, Priority: i})
	}

	vp := r.Pagination
	rp := RawPagination{Style: vp.Style, ZeroBased: vp.ZeroBased}
	switch vp.Style {
	case StyleCursor:
		rp.Limit = IntPtr(vp.PageSize)
		rp.Cursor = vp.Cursor
	case StyleOffset:
		rp.Offset = IntPtr(vp.Offset)
		rp.Limit = IntPtr(vp.PageSize)
	case StyleRowRange:
		rp.StartRow = IntPtr(vp.Offset)
		rp.EndRow = IntPtr(vp.Offset + vp.PageSize)
	default:
		page := vp.Page
		if vp.ZeroBased {
			page--
		}
		rp.Page = IntPtr(page)
		rp.PageSize = IntPtr(vp.PageSize)
	}
	p.Pagination = rp
	return p
}

// Digest es la huella determinista de la petición, usada como clave de caché.
func (r *ValidatedRequest) Digest() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
