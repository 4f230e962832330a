package translate

import (
	"errors"
	"fmt"

	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

var ErrUnsupportedOperator = errors.New("unsupported operator")

// Translate vuelca una petición ya validada sobre el builder abstracto.
// No vuelve a validar: solo traduce.
func Translate(schema *domain.EntitySchema, req *domain.ValidatedRequest, plan paging.Plan, qb domain.QueryBuilder) error {
	if err := TranslateCount(req, qb); err != nil {
		return err
	}

	if plan.IsCursor() {
		if len(plan.Cursor.After) > 0 {
			qb.AddKeyset(plan.Cursor.After...)
		}
		qb.AddOrder(plan.Primary.Field, plan.Primary.Direction)
		if plan.Primary.Field != schema.IDField() {
			qb.AddOrder(schema.IDField(), plan.Primary.Direction)
		}
		qb.SetLimit(plan.Cursor.FetchLimit())
		return nil
	}

	for _, s := range withTiebreaker(req.Sorting, schema) {
		qb.AddOrder(s.Field, s.Direction)
	}
	qb.SetOffset(plan.Offset.Offset)
	qb.SetLimit(plan.Offset.Limit)
	return nil
}

// TranslateCount aplica solo filtros y búsqueda: el total ignora orden y página.
func TranslateCount(req *domain.ValidatedRequest, qb domain.QueryBuilder) error {
	for _, f := range req.Filters {
		for _, c := range f.ToConditions() {
			if !c.Op.IsValid() {
				return fmt.Errorf("%w: %s", ErrUnsupportedOperator, c.Op)
			}
			qb.AddPredicate(c.Field, c.Op, c.Value)
		}
	}
	if req.Search != nil {
		conds := req.Search.Criteria().ToConditions()
		if len(conds) > 0 {
			qb.AddAnyOf(conds...)
		}
	}
	return nil
}

// withTiebreaker añade el id al final si no está, para que el orden offset sea estable.
func withTiebreaker(sorting []sharedQuery.Sort, schema *domain.EntitySchema) []sharedQuery.Sort {
	id := schema.IDField()
	if !schema.HasField(id) {
		return sorting
	}
	dir := sharedQuery.Asc
	for _, s := range sorting {
		if s.Field == id {
			return sorting
		}
		dir = s.Direction
	}
	return append(append([]sharedQuery.Sort(nil), sorting...), sharedQuery.Sort{Field: id, Direction: dir})
}

