package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// idKey es la clave primaria de los documentos; se expone con el nombre del campo id del esquema.
const idKey = "_id"

// Connect abre el cliente y comprueba que el primario responde.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return client, nil
}

// Store implementa domain.RowStore traduciendo las instrucciones a filtros bson.
// Cada entidad vive en la colección con el nombre de su tabla.
type Store struct {
	db  *mongo.Database
	log *zap.Logger
}

var _ domain.RowStore = (*Store)(nil)

func NewStore(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) NewQuery(schema *domain.EntitySchema) domain.Query {
	hidden := bson.D{}
	for _, fd := range schema.Fields() {
		if fd.Kind() == domain.KindSecret {
			hidden = append(hidden, bson.E{Key: fd.Name(), Value: 0})
		}
	}
	q := &Query{idField: schema.IDField(), hidden: hidden, limit: -1}
	if s.db != nil {
		q.coll = s.db.Collection(schema.Table())
	}
	q.log = s.log
	return q
}

// ---------------- Query ----------------

type Query struct {
	coll    *mongo.Collection
	log     *zap.Logger
	idField string
	hidden  bson.D
	and     []bson.D
	sort    bson.D
	limit   int
	offset  int
	err     error
}

// key traduce el campo id del esquema a la clave primaria de Mongo.
func (q *Query) key(field string) string {
	if field == q.idField {
		return idKey
	}
	return field
}

func (q *Query) AddPredicate(field string, op shared.Operator, value interface{}) {
	cond, err := q.condition(shared.Criterion{Field: field, Op: op, Value: value})
	if err != nil {
		q.fail(err)
		return
	}
	q.and = append(q.and, cond)
}

func (q *Query) AddAnyOf(conds ...shared.Criterion) {
	var or bson.A
	for _, c := range conds {
		cond, err := q.condition(c)
		if err != nil {
			q.fail(err)
			return
		}
		or = append(or, cond)
	}
	if len(or) > 0 {
		q.and = append(q.and, bson.D{{Key: "$or", Value: or}})
	}
}

// AddKeyset expande la tupla como $or de prefijos iguales más una comparación estricta.
func (q *Query) AddKeyset(after ...sharedQuery.KeysetValue) {
	if len(after) == 0 {
		return
	}
	var or bson.A
	for i, k := range after {
		step := bson.D{}
		for _, prev := range after[:i] {
			step = append(step, bson.E{Key: q.key(prev.Field), Value: bson.D{{Key: "$eq", Value: prev.Value}}})
		}
		cmp := "$gt"
		if k.Direction == sharedQuery.Desc {
			cmp = "$lt"
		}
		step = append(step, bson.E{Key: q.key(k.Field), Value: bson.D{{Key: cmp, Value: k.Value}}})
		or = append(or, step)
	}
	q.and = append(q.and, bson.D{{Key: "$or", Value: or}})
}

func (q *Query) AddOrder(field string, dir sharedQuery.Direction) {
	v := 1
	if dir == sharedQuery.Desc {
		v = -1
	}
	q.sort = append(q.sort, bson.E{Key: q.key(field), Value: v})
}

func (q *Query) SetLimit(n int)  { q.limit = n }
func (q *Query) SetOffset(n int) { q.offset = n }

func (q *Query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// condition mapea los operadores canónicos a operadores de MongoDB.
// Las subcadenas usan $regex con la opción 'i' sobre el texto escapado.
func (q *Query) condition(c shared.Criterion) (bson.D, error) {
	key := q.key(c.Field)
	one := func(op string, v interface{}) bson.D {
		return bson.D{{Key: key, Value: bson.D{{Key: op, Value: v}}}}
	}

	switch c.Op {
	case shared.OpEquals:
		return one("$eq", c.Value), nil
	case shared.OpNotEquals:
		// $ne también casaría con nulos; se excluyen como en SQL.
		return bson.D{{Key: key, Value: bson.D{{Key: "$ne", Value: c.Value}, {Key: "$nin", Value: bson.A{nil}}}}}, nil
	case shared.OpGt:
		return one("$gt", c.Value), nil
	case shared.OpGte:
		return one("$gte", c.Value), nil
	case shared.OpLt:
		return one("$lt", c.Value), nil
	case shared.OpLte:
		return one("$lte", c.Value), nil
	case shared.OpIsNull:
		return one("$eq", nil), nil
	case shared.OpIsNotNull:
		return one("$ne", nil), nil
	case shared.OpIn, shared.OpNotIn:
		list, ok := c.Value.([]interface{})
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("%s on %s requires a non-empty list", c.Op, c.Field)
		}
		if c.Op == shared.OpIn {
			return one("$in", bson.A(list)), nil
		}
		nin := append(make(bson.A, 0, len(list)+1), list...)
		return one("$nin", append(nin, nil)), nil
	case shared.OpBetween:
		bounds, ok := c.Value.([]interface{})
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("between on %s requires two bounds", c.Field)
		}
		return bson.D{{Key: key, Value: bson.D{{Key: "$gte", Value: bounds[0]}, {Key: "$lte", Value: bounds[1]}}}}, nil
	case shared.OpContains, shared.OpNotContains, shared.OpStartsWith, shared.OpEndsWith:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s on %s requires text", c.Op, c.Field)
		}
		pattern := regexp.QuoteMeta(s)
		switch c.Op {
		case shared.OpStartsWith:
			pattern = "^" + pattern
		case shared.OpEndsWith:
			pattern = pattern + "$"
		}
		re := primitive.Regex{Pattern: pattern, Options: "i"}
		if c.Op == shared.OpNotContains {
			return bson.D{{Key: key, Value: bson.D{{Key: "$not", Value: re}, {Key: "$ne", Value: nil}}}}, nil
		}
		return one("$regex", re), nil
	}
	return nil, fmt.Errorf("unsupported operator: %s", c.Op)
}

// Filter devuelve el filtro combinado con $and.
func (q *Query) Filter() (bson.D, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.and) == 0 {
		return bson.D{}, nil
	}
	parts := make(bson.A, len(q.and))
	for i, d := range q.and {
		parts[i] = d
	}
	return bson.D{{Key: "$and", Value: parts}}, nil
}

// FindOptions devuelve orden, salto, límite y la proyección que oculta los secretos.
func (q *Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	if q.offset > 0 {
		opts.SetSkip(int64(q.offset))
	}
	if q.limit >= 0 {
		opts.SetLimit(int64(q.limit))
	}
	if len(q.hidden) > 0 {
		opts.SetProjection(q.hidden)
	}
	return opts
}

func (q *Query) Rows(ctx context.Context) ([]domain.Row, error) {
	filter, err := q.Filter()
	if err != nil {
		return nil, err
	}
	// Un límite de 0 en Mongo significa "sin límite".
	if q.limit == 0 {
		return []domain.Row{}, nil
	}
	q.log.Debug("mongo list query", zap.Any("filter", filter))

	cursor, err := q.coll.Find(ctx, filter, q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("mongo find error: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.Row{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, q.toRow(doc))
	}
	return out, cursor.Err()
}

func (q *Query) Count(ctx context.Context) (int64, error) {
	filter, err := q.Filter()
	if err != nil {
		return 0, err
	}
	n, err := q.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo count error: %w", err)
	}
	return n, nil
}

// toRow convierte un documento a Row con tipos neutrales.
func (q *Query) toRow(doc bson.M) domain.Row {
	row := make(domain.Row, len(doc))
	for k, v := range doc {
		if k == idKey {
			k = q.idField
		}
		row[k] = fromBSON(v)
	}
	return row
}

func fromBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	case time.Time:
		return t.UTC()
	}
	return v
}
