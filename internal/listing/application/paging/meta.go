package paging

import (
	"github.com/davicafu/hexaquery/internal/listing/domain"
	"go.uber.org/zap"
)

// PageMeta son los metadatos de paginación que acompañan a cada página.
// Total es nil con la estrategia cursor: no se cuenta.
type PageMeta struct {
	Strategy    domain.Strategy `json:"strategy"`
	Page        int             `json:"page,omitempty"`
	PageSize    int             `json:"pageSize"`
	Total       *int64          `json:"totalCount"`
	TotalPages  *int            `json:"totalPages,omitempty"`
	From        int             `json:"from"`
	To          int             `json:"to"`
	HasNext     bool            `json:"hasNextPage"`
	HasPrevious bool            `json:"hasPreviousPage"`
	Pages       []PageItem      `json:"pages,omitempty"`
	StartCursor string          `json:"startCursor,omitempty"`
	EndCursor   string          `json:"endCursor,omitempty"`
}

// Page es el resultado ya recortado con sus metadatos.
// Cursors va alineado con Rows (solo con estrategia cursor).
type Page struct {
	Rows    []domain.Row
	Cursors []string
	Meta    PageMeta
}

// OffsetPage arma los metadatos de una página offset a partir del total.
func (p *Planner) OffsetPage(plan Plan, rows []domain.Row, total int64) Page {
	size := plan.PageSize
	if size < 1 {
		size = 1
	}
	offset := plan.Offset.Offset
	totalPages := int((total + int64(size) - 1) / int64(size))
	current := offset/size + 1

	meta := PageMeta{
		Strategy:    domain.StrategyOffset,
		Page:        current,
		PageSize:    size,
		Total:       &total,
		TotalPages:  &totalPages,
		HasNext:     int64(offset+len(rows)) < total,
		HasPrevious: offset > 0,
		Pages:       PageWindow(current, totalPages, p.window),
	}
	if len(rows) > 0 {
		meta.From = offset + 1
		meta.To = offset + len(rows)
	}
	return Page{Rows: rows, Meta: meta}
}

// CursorPage recorta la fila extra (pedida para saber si hay más) y firma un cursor por fila.
func (p *Planner) CursorPage(schema *domain.EntitySchema, plan Plan, rows []domain.Row) (Page, error) {
	hasNext := len(rows) > plan.Cursor.Limit
	if hasNext {
		rows = rows[:plan.Cursor.Limit]
	}

	cursors := make([]string, len(rows))
	for i, row := range rows {
		token, err := p.codec.Encode(domain.PositionFromRow(schema, plan.Primary, row))
		if err != nil {
			return Page{}, err
		}
		cursors[i] = token
	}

	meta := PageMeta{
		Strategy:    domain.StrategyCursor,
		PageSize:    plan.Cursor.Limit,
		HasNext:     hasNext,
		HasPrevious: len(plan.Cursor.After) > 0,
	}
	if len(rows) > 0 {
		meta.From, meta.To = 1, len(rows)
		meta.StartCursor = cursors[0]
		meta.EndCursor = cursors[len(cursors)-1]
	}
	p.log.Debug("Cursor page built",
		zap.String("entity", schema.Name()),
		zap.Int("rows", len(rows)),
		zap.Bool("hasNext", hasNext))
	return Page{Rows: rows, Cursors: cursors, Meta: meta}, nil
}
