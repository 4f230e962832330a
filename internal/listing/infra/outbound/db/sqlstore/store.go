package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	sharedUtils "github.com/davicafu/hexaquery/shared/utils"
)

// Store implementa domain.RowStore sobre database/sql construyendo el SQL con squirrel.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

var _ domain.RowStore = (*Store)(nil)

func NewStore(db *sql.DB, dialect Dialect, log *zap.Logger) *Store {
	return &Store{db: db, dialect: dialect, log: log}
}

func (s *Store) NewQuery(schema *domain.EntitySchema) domain.Query {
	cols := make([]string, 0, len(schema.Fields()))
	for _, fd := range schema.Fields() {
		// Los campos secretos nunca salen del store.
		if fd.Kind() == domain.KindSecret {
			continue
		}
		cols = append(cols, s.dialect.Quote(fd.Name()))
	}
	return &Query{store: s, table: s.dialect.Quote(schema.Table()), columns: cols, limit: -1}
}

// ---------------- Query ----------------

// Query acumula las instrucciones del traductor y las ejecuta al final.
// El primer operador no soportado se guarda y se devuelve en Rows/Count.
type Query struct {
	store   *Store
	table   string
	columns []string
	where   sq.And
	orders  []string
	limit   int
	offset  int
	err     error
}

func (q *Query) col(field string) string {
	return q.store.dialect.Quote(field)
}

func (q *Query) AddPredicate(field string, op shared.Operator, value interface{}) {
	cond, err := q.condition(shared.Criterion{Field: field, Op: op, Value: value})
	if err != nil {
		q.fail(err)
		return
	}
	q.where = append(q.where, cond)
}

func (q *Query) AddAnyOf(conds ...shared.Criterion) {
	group := sq.Or{}
	for _, c := range conds {
		cond, err := q.condition(c)
		if err != nil {
			q.fail(err)
			return
		}
		group = append(group, cond)
	}
	if len(group) > 0 {
		q.where = append(q.where, group)
	}
}

// AddKeyset expande la tupla (a, b) > (x, y) como a > x OR (a = x AND b > y),
// respetando la dirección de cada columna.
func (q *Query) AddKeyset(after ...sharedQuery.KeysetValue) {
	if len(after) == 0 {
		return
	}
	d := q.store.dialect
	chain := sq.Or{}
	for i, k := range after {
		step := sq.And{}
		for _, prev := range after[:i] {
			step = append(step, sq.Eq{q.col(prev.Field): d.bind(prev.Value)})
		}
		if k.Direction == sharedQuery.Desc {
			step = append(step, sq.Lt{q.col(k.Field): d.bind(k.Value)})
		} else {
			step = append(step, sq.Gt{q.col(k.Field): d.bind(k.Value)})
		}
		chain = append(chain, step)
	}
	q.where = append(q.where, chain)
}

func (q *Query) AddOrder(field string, dir sharedQuery.Direction) {
	q.orders = append(q.orders, q.col(field)+" "+sharedUtils.Ternary(dir == sharedQuery.Desc, "DESC", "ASC"))
}

func (q *Query) SetLimit(n int)  { q.limit = n }
func (q *Query) SetOffset(n int) { q.offset = n }

func (q *Query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// condition traduce un operador canónico a un Sqlizer.
func (q *Query) condition(c shared.Criterion) (sq.Sqlizer, error) {
	d := q.store.dialect
	col := q.col(c.Field)
	v := d.bind(c.Value)

	switch c.Op {
	case shared.OpEquals:
		return sq.Eq{col: v}, nil
	case shared.OpNotEquals:
		return sq.NotEq{col: v}, nil
	case shared.OpGt:
		return sq.Gt{col: v}, nil
	case shared.OpGte:
		return sq.GtOrEq{col: v}, nil
	case shared.OpLt:
		return sq.Lt{col: v}, nil
	case shared.OpLte:
		return sq.LtOrEq{col: v}, nil
	case shared.OpIsNull:
		return sq.Eq{col: nil}, nil
	case shared.OpIsNotNull:
		return sq.NotEq{col: nil}, nil
	case shared.OpIn, shared.OpNotIn:
		list, ok := v.([]interface{})
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("%s on %s requires a non-empty list", c.Op, c.Field)
		}
		if c.Op == shared.OpIn {
			return sq.Eq{col: list}, nil
		}
		return sq.NotEq{col: list}, nil
	case shared.OpBetween:
		bounds, ok := v.([]interface{})
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("between on %s requires two bounds", c.Field)
		}
		return sq.And{sq.GtOrEq{col: bounds[0]}, sq.LtOrEq{col: bounds[1]}}, nil
	case shared.OpContains, shared.OpNotContains, shared.OpStartsWith, shared.OpEndsWith:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s on %s requires text", c.Op, c.Field)
		}
		pattern := escapeLike(s)
		switch c.Op {
		case shared.OpStartsWith:
			pattern += "%"
		case shared.OpEndsWith:
			pattern = "%" + pattern
		default:
			pattern = "%" + pattern + "%"
		}
		not := ""
		if c.Op == shared.OpNotContains {
			not = "NOT "
		}
		return sq.Expr(fmt.Sprintf(`%s %s%s ? ESCAPE '\'`, col, not, d.Like), pattern), nil
	}
	return nil, fmt.Errorf("unsupported operator: %s", c.Op)
}

// ---------------- SQL ----------------

func (q *Query) filtered(b sq.SelectBuilder) sq.SelectBuilder {
	if len(q.where) > 0 {
		b = b.Where(q.where)
	}
	return b.PlaceholderFormat(q.store.dialect.Placeholder)
}

// ToSQL devuelve la consulta de filas que se ejecutaría.
func (q *Query) ToSQL() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	b := q.filtered(sq.Select(q.columns...).From(q.table))
	if len(q.orders) > 0 {
		b = b.OrderBy(q.orders...)
	}
	if q.limit >= 0 {
		b = b.Limit(uint64(q.limit))
	}
	if q.offset > 0 {
		b = b.Offset(uint64(q.offset))
	}
	return b.ToSql()
}

// CountSQL devuelve el COUNT(*) con los mismos filtros, sin orden ni página.
func (q *Query) CountSQL() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return q.filtered(sq.Select("COUNT(*)").From(q.table)).ToSql()
}

func (q *Query) Rows(ctx context.Context) ([]domain.Row, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	q.store.log.Debug("sql list query", zap.String("sql", query), zap.Int("args", len(args)))

	rows, err := q.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db query error: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (q *Query) Count(ctx context.Context) (int64, error) {
	query, args, err := q.CountSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db count error: %w", err)
	}
	return n, nil
}

// scanRows vuelca cada fila en un mapa columna → valor.
func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []domain.Row{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("db scan error: %w", err)
		}
		row := make(domain.Row, len(cols))
		for i, name := range cols {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
