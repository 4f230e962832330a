package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

func widgets() *domain.EntitySchema {
	return domain.MustEntitySchema("widgets", []*domain.FieldDescriptor{
		domain.MustField("id", domain.KindIdentifier, nil),
		domain.MustField("name", domain.KindText, nil),
		domain.MustField("status", domain.KindEnum, &domain.FieldOverride{EnumOptions: []string{"active", "archived", "draft"}}),
		domain.MustField("price", domain.KindFloat, nil),
		domain.MustField("password", domain.KindSecret, nil),
	})
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE widgets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			price REAL,
			password TEXT
		)`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO widgets (id, name, status, price, password) VALUES
			(1, 'Desk lamp', 'active', 5.5, 'x'),
			(2, 'Floor LAMP', 'active', 15.5, 'x'),
			(3, 'Chair', 'archived', 25.5, 'x'),
			(4, 'Table', 'active', 35.5, 'x'),
			(5, 'Promo 50% off', 'draft', NULL, 'x')`)
	require.NoError(t, err)
	return db
}

func ids(rows []domain.Row) []int64 {
	out := []int64{}
	for _, r := range rows {
		out = append(out, r["id"].(int64))
	}
	return out
}

func TestSQLiteStore_FiltersAreCaseInsensitiveAndHideSecrets(t *testing.T) {
	// Arrange
	store := NewRowStore(setupTestDB(t), zap.NewNop())
	q := store.NewQuery(widgets())
	q.AddPredicate("name", shared.OpContains, "lamp")
	q.AddOrder("id", sharedQuery.Asc)

	// Act
	rows, err := q.Rows(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(rows))
	assert.Equal(t, "Floor LAMP", rows[1]["name"])
	assert.NotContains(t, rows[0], "password")
}

func TestSQLiteStore_LikeWildcardsAreLiteral(t *testing.T) {
	store := NewRowStore(setupTestDB(t), zap.NewNop())
	q := store.NewQuery(widgets())
	q.AddPredicate("name", shared.OpContains, "50%")

	rows, err := q.Rows(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(rows))
}

func TestSQLiteStore_CountIgnoresPaging(t *testing.T) {
	store := NewRowStore(setupTestDB(t), zap.NewNop())
	q := store.NewQuery(widgets())
	q.AddPredicate("status", shared.OpIn, []interface{}{"active", "draft"})
	q.AddOrder("id", sharedQuery.Asc)
	q.SetOffset(1)
	q.SetLimit(2)

	rows, err := q.Rows(context.Background())
	require.NoError(t, err)
	total, err := q.Count(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 4}, ids(rows))
	assert.Equal(t, int64(4), total)
}

func TestSQLiteStore_KeysetWalk(t *testing.T) {
	store := NewRowStore(setupTestDB(t), zap.NewNop())
	schema := widgets()

	page := func(after ...sharedQuery.KeysetValue) []domain.Row {
		q := store.NewQuery(schema)
		q.AddPredicate("price", shared.OpIsNotNull, nil)
		q.AddKeyset(after...)
		q.AddOrder("price", sharedQuery.Desc)
		q.AddOrder("id", sharedQuery.Desc)
		q.SetLimit(2)
		rows, err := q.Rows(context.Background())
		require.NoError(t, err)
		return rows
	}

	first := page()
	require.Equal(t, []int64{4, 3}, ids(first))

	last := first[len(first)-1]
	second := page(
		sharedQuery.KeysetValue{Field: "price", Direction: sharedQuery.Desc, Value: last["price"]},
		sharedQuery.KeysetValue{Field: "id", Direction: sharedQuery.Desc, Value: last["id"]},
	)
	assert.Equal(t, []int64{2, 1}, ids(second))
	assert.Equal(t, 15.5, second[0]["price"])
}

func TestSQLiteStore_UnsupportedOperator(t *testing.T) {
	store := NewRowStore(setupTestDB(t), zap.NewNop())
	q := store.NewQuery(widgets())
	q.AddPredicate("name", shared.Operator("soundsLike"), "x")

	_, err := q.Rows(context.Background())
	assert.Error(t, err)
	_, err = q.Count(context.Background())
	assert.Error(t, err)
}
