package mocks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

var ErrStoreUnavailable = errors.New("store unavailable")

// InMemoryRowStore simula el motor de ejecución evaluando las instrucciones sobre filas en memoria.
type InMemoryRowStore struct {
	rows     map[string][]domain.Row
	failures int
	queries  int
	mu       sync.Mutex
}

// Verificación estática
var _ domain.RowStore = (*InMemoryRowStore)(nil)

func NewInMemoryRowStore() *InMemoryRowStore {
	return &InMemoryRowStore{rows: make(map[string][]domain.Row)}
}

// Seed añade filas a la tabla de la entidad.
func (s *InMemoryRowStore) Seed(table string, rows ...domain.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[table] = append(s.rows[table], rows...)
}

// FailNext hace fallar las próximas n ejecuciones.
func (s *InMemoryRowStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// Executions devuelve el número de ejecuciones (Rows + Count).
func (s *InMemoryRowStore) Executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *InMemoryRowStore) NewQuery(schema *domain.EntitySchema) domain.Query {
	hidden := map[string]bool{}
	for _, fd := range schema.Fields() {
		if fd.Kind() == domain.KindSecret {
			hidden[fd.Name()] = true
		}
	}
	return &inMemoryQuery{store: s, table: schema.Table(), hidden: hidden, limit: -1}
}

func (s *InMemoryRowStore) snapshot(table string) ([]domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.failures > 0 {
		s.failures--
		return nil, ErrStoreUnavailable
	}
	return append([]domain.Row(nil), s.rows[table]...), nil
}

// ---------------- Query ----------------

type inMemoryQuery struct {
	store  *InMemoryRowStore
	table  string
	hidden map[string]bool
	conds  []shared.Criterion
	anyOf  [][]shared.Criterion
	after  []sharedQuery.KeysetValue
	orders []sharedQuery.Sort
	limit  int
	offset int
}

func (q *inMemoryQuery) AddPredicate(field string, op shared.Operator, value interface{}) {
	q.conds = append(q.conds, shared.Criterion{Field: field, Op: op, Value: value})
}

func (q *inMemoryQuery) AddAnyOf(conds ...shared.Criterion) {
	q.anyOf = append(q.anyOf, conds)
}

func (q *inMemoryQuery) AddKeyset(after ...sharedQuery.KeysetValue) {
	q.after = after
}

func (q *inMemoryQuery) AddOrder(field string, dir sharedQuery.Direction) {
	q.orders = append(q.orders, sharedQuery.Sort{Field: field, Direction: dir})
}

func (q *inMemoryQuery) SetLimit(n int)  { q.limit = n }
func (q *inMemoryQuery) SetOffset(n int) { q.offset = n }

func (q *inMemoryQuery) Rows(ctx context.Context) ([]domain.Row, error) {
	all, err := q.store.snapshot(q.table)
	if err != nil {
		return nil, err
	}

	var out []domain.Row
	for _, row := range all {
		if q.matches(row) && afterKeyset(row, q.after) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.orders {
			c, _ := domain.CompareValues(out[i][o.Field], out[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc() {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if q.offset >= len(out) {
		return []domain.Row{}, nil
	}
	out = out[q.offset:]
	if q.limit >= 0 && q.limit < len(out) {
		out = out[:q.limit]
	}
	return q.project(out), nil
}

// project copia las filas sin las columnas secretas, como hacen los stores reales.
func (q *inMemoryQuery) project(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, len(rows))
	for i, row := range rows {
		cp := make(domain.Row, len(row))
		for k, v := range row {
			if !q.hidden[k] {
				cp[k] = v
			}
		}
		out[i] = cp
	}
	return out
}

func (q *inMemoryQuery) Count(ctx context.Context) (int64, error) {
	all, err := q.store.snapshot(q.table)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, row := range all {
		if q.matches(row) {
			n++
		}
	}
	return n, nil
}

func (q *inMemoryQuery) matches(row domain.Row) bool {
	for _, c := range q.conds {
		if !matchCriterion(row, c) {
			return false
		}
	}
	for _, group := range q.anyOf {
		hit := false
		for _, c := range group {
			if matchCriterion(row, c) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// afterKeyset compara la tupla de la fila con la posición, respetando la dirección de cada columna.
func afterKeyset(row domain.Row, after []sharedQuery.KeysetValue) bool {
	if len(after) == 0 {
		return true
	}
	for _, k := range after {
		c, _ := domain.CompareValues(row[k.Field], k.Value)
		if k.Direction == sharedQuery.Desc {
			c = -c
		}
		if c != 0 {
			return c > 0
		}
	}
	return false
}

// matchCriterion evalúa una condición. Las comparaciones de texto no distinguen mayúsculas.
func matchCriterion(row domain.Row, c shared.Criterion) bool {
	v, present := row[c.Field]
	if c.Op == shared.OpIsNull {
		return !present || v == nil
	}
	if c.Op == shared.OpIsNotNull {
		return present && v != nil
	}
	if v == nil {
		return false
	}

	switch c.Op {
	case shared.OpIn, shared.OpNotIn:
		found := false
		for _, item := range c.Value.([]interface{}) {
			if cmp, ok := domain.CompareValues(v, item); ok && cmp == 0 {
				found = true
				break
			}
		}
		return found == (c.Op == shared.OpIn)
	case shared.OpContains, shared.OpNotContains, shared.OpStartsWith, shared.OpEndsWith:
		s, ok1 := v.(string)
		needle, ok2 := c.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		s, needle = strings.ToLower(s), strings.ToLower(needle)
		switch c.Op {
		case shared.OpContains:
			return strings.Contains(s, needle)
		case shared.OpNotContains:
			return !strings.Contains(s, needle)
		case shared.OpStartsWith:
			return strings.HasPrefix(s, needle)
		default:
			return strings.HasSuffix(s, needle)
		}
	}

	cmp, ok := domain.CompareValues(v, c.Value)
	if !ok {
		return false
	}
	switch c.Op {
	case shared.OpEquals:
		return cmp == 0
	case shared.OpNotEquals:
		return cmp != 0
	case shared.OpGt:
		return cmp > 0
	case shared.OpGte:
		return cmp >= 0
	case shared.OpLt:
		return cmp < 0
	case shared.OpLte:
		return cmp <= 0
	}
	return false
}
