package paging

import (
	"fmt"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"go.uber.org/zap"
)

// DefaultPageWindow es el radio de páginas visibles a cada lado de la actual.
const DefaultPageWindow = 2

// Plan es la forma concreta en que se recorrerá el resultado.
type Plan struct {
	Strategy domain.Strategy
	Style    domain.PaginationStyle
	Page     int
	PageSize int
	Offset   sharedQuery.OffsetPagination // estrategia offset
	Cursor   sharedQuery.CursorPagination // estrategia cursor
	Primary  sharedQuery.Sort             // orden del que depende el cursor
}

// IsCursor indica si el plan usa keyset.
func (p Plan) IsCursor() bool {
	return p.Strategy == domain.StrategyCursor
}

// Planner convierte la paginación validada en un plan y construye los metadatos de página.
type Planner struct {
	codec  domain.CursorCodec
	window int
	log    *zap.Logger
}

func NewPlanner(codec domain.CursorCodec, window int, log *zap.Logger) *Planner {
	if window <= 0 {
		window = DefaultPageWindow
	}
	return &Planner{codec: codec, window: window, log: log}
}

// Window devuelve el radio de la ventana de páginas.
func (p *Planner) Window() int {
	return p.window
}

// Plan elige la estrategia. Un cursor ya verificado aporta las columnas de reanudación.
func (p *Planner) Plan(schema *domain.EntitySchema, req *domain.ValidatedRequest) (Plan, error) {
	vp := req.Pagination
	plan := Plan{
		Strategy: vp.Strategy,
		Style:    vp.Style,
		Page:     vp.Page,
		PageSize: vp.PageSize,
	}

	if vp.Strategy != domain.StrategyCursor {
		plan.Offset = sharedQuery.OffsetPagination{Limit: vp.PageSize, Offset: vp.Offset}
		return plan, nil
	}

	if len(req.Sorting) == 0 {
		return Plan{}, fmt.Errorf("cursor plan for %s needs a primary sort", schema.Name())
	}
	plan.Primary = req.Sorting[0]
	plan.Cursor = sharedQuery.CursorPagination{Limit: vp.PageSize}
	if vp.After != nil {
		after, err := vp.After.Keyset(plan.Primary, schema.IDField())
		if err != nil {
			return Plan{}, err
		}
		plan.Cursor.After = after
	}
	return plan, nil
}
