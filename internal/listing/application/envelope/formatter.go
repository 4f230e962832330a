package envelope

import (
	"net/http"
	"net/url"
	"time"

	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/domain"
)

// Shape es la forma del sobre de respuesta que espera cada convención de cliente.
type Shape string

const (
	ShapeGeneric  Shape = "generic"
	ShapeRowRange Shape = "rowRange"
	ShapeDataGrid Shape = "dataGrid"
	ShapeEdge     Shape = "edge"
)

// ShapeFor: cualquier plan cursor responde con edges; el resto según el formato.
func ShapeFor(format domain.FormatTag, cursor bool) Shape {
	switch {
	case cursor:
		return ShapeEdge
	case format == domain.FormatRowRange:
		return ShapeRowRange
	case format == domain.FormatJSONModel:
		return ShapeDataGrid
	}
	return ShapeGeneric
}

// Result es todo lo que el formateador necesita de una ejecución correcta.
type Result struct {
	Request  *domain.ValidatedRequest
	Page     paging.Page
	Warnings []domain.ValidationError
	Path     string
	Query    url.Values
}

// Response es el status HTTP junto al cuerpo serializable.
type Response struct {
	Status int
	Body   interface{}
}

// ---------------- Cuerpos ----------------

type ErrorBody struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Details []domain.ValidationError `json:"details"`
}

type SortMeta struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type GenericMeta struct {
	Pagination paging.PageMeta          `json:"pagination"`
	Filters    []domain.ValidatedFilter `json:"filters"`
	Sorting    []SortMeta               `json:"sorting"`
	Search     *domain.ValidatedSearch  `json:"search,omitempty"`
	Warnings   []domain.ValidationError `json:"warnings"`
}

type GenericBody struct {
	Success   bool         `json:"success"`
	Status    int          `json:"status"`
	Data      []domain.Row `json:"data"`
	Meta      GenericMeta  `json:"meta"`
	Links     *Links       `json:"links,omitempty"`
	Timestamp string       `json:"timestamp"`
	Error     *ErrorBody   `json:"error,omitempty"`
}

// RowRangeBody: LastRow es el total si se conoce y -1 si no.
type RowRangeBody struct {
	RowData  []domain.Row             `json:"rowData"`
	LastRow  int64                    `json:"lastRow"`
	StartRow int                      `json:"startRow"`
	EndRow   int                      `json:"endRow"`
	Warnings []domain.ValidationError `json:"warnings,omitempty"`
	Error    *ErrorBody               `json:"error,omitempty"`
}

// DataGridBody: Page sigue la convención 0-based del cliente.
type DataGridBody struct {
	Rows     []domain.Row             `json:"rows"`
	RowCount int64                    `json:"rowCount"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
	Warnings []domain.ValidationError `json:"warnings,omitempty"`
	Error    *ErrorBody               `json:"error,omitempty"`
}

type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
}

type Edge struct {
	Node   domain.Row `json:"node"`
	Cursor string     `json:"cursor"`
}

// EdgeBody: TotalCount es null porque la estrategia cursor no cuenta.
type EdgeBody struct {
	Data       []domain.Row             `json:"data"`
	PageInfo   PageInfo                 `json:"pageInfo"`
	Edges      []Edge                   `json:"edges"`
	TotalCount *int64                   `json:"totalCount"`
	Warnings   []domain.ValidationError `json:"warnings,omitempty"`
	Error      *ErrorBody               `json:"error,omitempty"`
}

// ---------------- Formatter ----------------

type Formatter struct {
	clock domain.Clock
}

func NewFormatter(clock domain.Clock) *Formatter {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Formatter{clock: clock}
}

// Format elige el sobre según el formato de la petición y la estrategia del plan.
func (f *Formatter) Format(res Result) Response {
	req := res.Request
	rows := res.Page.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	meta := res.Page.Meta

	switch ShapeFor(req.Format, meta.Strategy == domain.StrategyCursor) {
	case ShapeEdge:
		edges := make([]Edge, len(rows))
		for i, row := range rows {
			edges[i] = Edge{Node: row, Cursor: res.Page.Cursors[i]}
		}
		return Response{Status: http.StatusOK, Body: EdgeBody{
			Data: rows,
			PageInfo: PageInfo{
				HasNextPage:     meta.HasNext,
				HasPreviousPage: meta.HasPrevious,
				StartCursor:     meta.StartCursor,
				EndCursor:       meta.EndCursor,
			},
			Edges:      edges,
			TotalCount: meta.Total,
			Warnings:   res.Warnings,
		}}

	case ShapeRowRange:
		lastRow := int64(-1)
		if meta.Total != nil {
			lastRow = *meta.Total
		}
		start := req.Pagination.Offset
		return Response{Status: http.StatusOK, Body: RowRangeBody{
			RowData:  rows,
			LastRow:  lastRow,
			StartRow: start,
			EndRow:   start + len(rows),
			Warnings: res.Warnings,
		}}

	case ShapeDataGrid:
		return Response{Status: http.StatusOK, Body: DataGridBody{
			Rows:     rows,
			RowCount: derefTotal(meta.Total),
			Page:     clientPage(req.Pagination),
			PageSize: req.Pagination.PageSize,
			Warnings: res.Warnings,
		}}
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []domain.ValidationError{}
	}
	filters := req.Filters
	if filters == nil {
		filters = []domain.ValidatedFilter{}
	}
	sorting := make([]SortMeta, 0, len(req.Sorting))
	for _, s := range req.Sorting {
		sorting = append(sorting, SortMeta{Field: s.Field, Direction: string(s.Direction)})
	}
	return Response{Status: http.StatusOK, Body: GenericBody{
		Success: true,
		Status:  http.StatusOK,
		Data:    rows,
		Meta: GenericMeta{
			Pagination: meta,
			Filters:    filters,
			Sorting:    sorting,
			Search:     req.Search,
			Warnings:   warnings,
		},
		Links:     buildLinks(res.Path, res.Query, req.Pagination, meta),
		Timestamp: f.clock.Now().Format(time.RFC3339),
	}}
}

// FormatError produce el sobre de error con las mismas claves que el de éxito.
func (f *Formatter) FormatError(shape Shape, status int, code, message string, details []domain.ValidationError) Response {
	if details == nil {
		details = []domain.ValidationError{}
	}
	errBody := &ErrorBody{Code: code, Message: message, Details: details}
	zero := int64(0)

	switch shape {
	case ShapeEdge:
		return Response{Status: status, Body: EdgeBody{
			Data: []domain.Row{}, Edges: []Edge{}, Error: errBody,
		}}
	case ShapeRowRange:
		return Response{Status: status, Body: RowRangeBody{
			RowData: []domain.Row{}, LastRow: 0, Error: errBody,
		}}
	case ShapeDataGrid:
		return Response{Status: status, Body: DataGridBody{
			Rows: []domain.Row{}, Error: errBody,
		}}
	}
	return Response{Status: status, Body: GenericBody{
		Success: false,
		Status:  status,
		Data:    []domain.Row{},
		Meta: GenericMeta{
			Pagination: paging.PageMeta{Total: &zero},
			Filters:    []domain.ValidatedFilter{},
			Sorting:    []SortMeta{},
			Warnings:   []domain.ValidationError{},
		},
		Timestamp: f.clock.Now().Format(time.RFC3339),
		Error:     errBody,
	}}
}

func derefTotal(total *int64) int64 {
	if total == nil {
		return -1
	}
	return *total
}

// clientPage devuelve la página en la convención con la que llegó.
func clientPage(p domain.ValidatedPagination) int {
	if p.ZeroBased {
		return p.Page - 1
	}
	return p.Page
}
