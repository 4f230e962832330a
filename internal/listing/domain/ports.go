package domain

import (
	"context"
	"time"

	shared "github.com/davicafu/hexaquery/shared/domain"
	"github.com/davicafu/hexaquery/shared/events"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// Row es un registro devuelto por el store, indexado por nombre de campo.
type Row map[string]interface{}

// QueryBuilder es la interfaz abstracta que recibe las instrucciones ya validadas.
type QueryBuilder interface {
	AddPredicate(field string, op shared.Operator, value interface{})
	// AddAnyOf une las condiciones con OR dentro de un único grupo.
	AddAnyOf(conds ...shared.Criterion)
	// AddKeyset añade el predicado de reanudación "después de" para cursores.
	AddKeyset(after ...sharedQuery.KeysetValue)
	AddOrder(field string, dir sharedQuery.Direction)
	SetLimit(n int)
	SetOffset(n int)
}

// Query es un QueryBuilder ejecutable. Count ignora orden, límite y offset.
type Query interface {
	QueryBuilder
	Rows(ctx context.Context) ([]Row, error)
	Count(ctx context.Context) (int64, error)
}

// RowStore es el motor de ejecución externo.
type RowStore interface {
	NewQuery(schema *EntitySchema) Query
}

// QueryLogRepository persiste la analítica de consultas.
type QueryLogRepository interface {
	LogBatch(ctx context.Context, batch []events.QueryExecuted) error
}

// Clock es la fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock devuelve siempre el mismo instante.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// FieldUsage cuenta cuántas consultas filtraron por un campo.
type FieldUsage struct {
	Field   string `json:"field"`
	Queries uint64 `json:"queries"`
}

// QueryStatsReader lee la analítica agregada de consultas.
type QueryStatsReader interface {
	TopFilteredFields(ctx context.Context, entity string, since time.Time, limit int) ([]FieldUsage, error)
}
