package paging

import (
	"errors"
	"testing"
	"time"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newCodec(t *testing.T) *HMACCursorCodec {
	t.Helper()
	c, err := NewCursorCodec(testSecret)
	require.NoError(t, err)
	return c
}

func widgets() *domain.EntitySchema {
	return domain.MustEntitySchema("widgets", []*domain.FieldDescriptor{
		domain.MustField("id", domain.KindIdentifier, nil),
		domain.MustField("name", domain.KindText, nil),
		domain.MustField("price", domain.KindFloat, nil),
		domain.MustField("created_at", domain.KindDateTime, nil),
	})
}

// ---------------- Codec ----------------

func TestCursorCodec_RoundTrip(t *testing.T) {
	codec := newCodec(t)
	tests := []struct {
		name string
		pos  domain.CursorPosition
	}{
		{
			name: "id entero",
			pos:  domain.CursorPosition{Entity: "widgets", Sort: "id:desc", ID: int64(42)},
		},
		{
			name: "uuid con clave flotante",
			pos: domain.CursorPosition{
				Entity: "widgets", Sort: "price:desc", ID: "7f1c3a52-1a2b-4c3d-8e9f-0a1b2c3d4e5f",
				KeyField: "price", KeyValue: 12.5,
			},
		},
		{
			name: "marca de tiempo",
			pos: domain.CursorPosition{
				Entity: "widgets", Sort: "created_at:asc", ID: int64(3),
				TimeField: "created_at", TimeValue: "2024-03-01T10:00:00Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			token, err := codec.Encode(tt.pos)
			require.NoError(t, err)
			got, err := codec.Decode(token)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.pos, *got)
		})
	}
}

func TestCursorCodec_RejectsEverySingleByteChange(t *testing.T) {
	codec := newCodec(t)
	token, err := codec.Encode(domain.CursorPosition{Entity: "widgets", Sort: "price:desc", ID: int64(9), KeyField: "price", KeyValue: 30.0})
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := codec.Decode(string(b))
		assert.ErrorIs(t, err, domain.ErrInvalidCursor, "posición %d", i)
	}
}

func TestCursorCodec_RejectsMalformedTokens(t *testing.T) {
	codec := newCodec(t)
	other, err := NewCursorCodec([]byte("another-secret-with-enough-bytes"))
	require.NoError(t, err)
	foreign, err := other.Encode(domain.CursorPosition{Entity: "widgets", Sort: "id:desc", ID: int64(1)})
	require.NoError(t, err)

	tokens := map[string]string{
		"empty":          "",
		"no separator":   "abcdef",
		"three parts":    "a.b.c",
		"bad base64":     "!!!.???",
		"foreign secret": foreign,
		"too long":       string(make([]byte, 4096)),
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(tok)
			assert.ErrorIs(t, err, domain.ErrInvalidCursor)
		})
	}
}

func TestNewCursorCodec_WeakSecret(t *testing.T) {
	_, err := NewCursorCodec([]byte("short"))
	assert.True(t, errors.Is(err, ErrWeakSecret))
}

// ---------------- Ventana ----------------

func pageNumbers(items []PageItem) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		if it.Gap {
			out = append(out, 0)
			continue
		}
		out = append(out, it.Number)
	}
	return out
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int // 0 = hueco
	}{
		{"una sola página", 1, 1, []int{1}},
		{"sin resultados", 1, 0, []int{1}},
		{"inicio", 1, 10, []int{1, 2, 3, 0, 10}},
		{"centro", 5, 10, []int{1, 0, 3, 4, 5, 6, 7, 0, 10}},
		{"final", 10, 10, []int{1, 0, 8, 9, 10}},
		{"pocas páginas sin huecos", 3, 5, []int{1, 2, 3, 4, 5}},
		{"actual fuera de rango", 20, 4, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := PageWindow(tt.current, tt.total, 2)
			assert.Equal(t, tt.want, pageNumbers(items))

			var current int
			for _, it := range items {
				if it.Current {
					current++
				}
			}
			assert.Equal(t, 1, current, "exactamente una página actual")
		})
	}
}

// ---------------- Planner ----------------

func TestPlanner_OffsetPlanAndMeta(t *testing.T) {
	// Arrange
	planner := NewPlanner(newCodec(t), 0, zap.NewNop())
	req := &domain.ValidatedRequest{
		Entity:  "widgets",
		Sorting: []sharedQuery.Sort{{Field: "price", Direction: sharedQuery.Desc}},
		Pagination: domain.ValidatedPagination{
			Strategy: domain.StrategyOffset, Style: domain.StylePage, Page: 2, PageSize: 2, Offset: 2,
		},
	}

	// Act
	plan, err := planner.Plan(widgets(), req)
	require.NoError(t, err)
	page := planner.OffsetPage(plan, []domain.Row{{"id": int64(3)}, {"id": int64(4)}}, 5)

	// Assert
	assert.False(t, plan.IsCursor())
	assert.Equal(t, sharedQuery.OffsetPagination{Limit: 2, Offset: 2}, plan.Offset)
	require.NotNil(t, page.Meta.Total)
	assert.Equal(t, int64(5), *page.Meta.Total)
	assert.Equal(t, 3, *page.Meta.TotalPages)
	assert.Equal(t, 2, page.Meta.Page)
	assert.Equal(t, 3, page.Meta.From)
	assert.Equal(t, 4, page.Meta.To)
	assert.True(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrevious)
	assert.Equal(t, []int{1, 2, 3}, pageNumbers(page.Meta.Pages))
}

func TestPlanner_OffsetMetaEmptyResult(t *testing.T) {
	planner := NewPlanner(newCodec(t), 2, zap.NewNop())
	plan := Plan{Strategy: domain.StrategyOffset, PageSize: 20, Offset: sharedQuery.OffsetPagination{Limit: 20}}

	page := planner.OffsetPage(plan, nil, 0)

	assert.Equal(t, 0, page.Meta.From)
	assert.Equal(t, 0, page.Meta.To)
	assert.False(t, page.Meta.HasNext)
	assert.False(t, page.Meta.HasPrevious)
	assert.Equal(t, 0, *page.Meta.TotalPages)
}

func TestPlanner_CursorPlanResumesFromPosition(t *testing.T) {
	schema := widgets()
	planner := NewPlanner(newCodec(t), 2, zap.NewNop())
	req := &domain.ValidatedRequest{
		Entity:  "widgets",
		Sorting: []sharedQuery.Sort{{Field: "price", Direction: sharedQuery.Desc}},
		Pagination: domain.ValidatedPagination{
			Strategy: domain.StrategyCursor, Style: domain.StyleCursor, Page: 1, PageSize: 2,
			After: &domain.CursorPosition{Entity: "widgets", Sort: "price:desc", ID: int64(7), KeyField: "price", KeyValue: 30.0},
		},
	}

	plan, err := planner.Plan(schema, req)

	require.NoError(t, err)
	assert.True(t, plan.IsCursor())
	assert.Equal(t, 3, plan.Cursor.FetchLimit())
	assert.Equal(t, []sharedQuery.KeysetValue{
		{Field: "price", Direction: sharedQuery.Desc, Value: 30.0},
		{Field: "id", Direction: sharedQuery.Desc, Value: int64(7)},
	}, plan.Cursor.After)
}

func TestPlanner_CursorPageTrimsExtraRowAndSignsRows(t *testing.T) {
	// Arrange
	schema := widgets()
	codec := newCodec(t)
	planner := NewPlanner(codec, 2, zap.NewNop())
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	plan := Plan{
		Strategy: domain.StrategyCursor,
		PageSize: 2,
		Primary:  sharedQuery.Sort{Field: "price", Direction: sharedQuery.Desc},
		Cursor:   sharedQuery.CursorPagination{Limit: 2},
	}
	rows := []domain.Row{
		{"id": int64(1), "price": 50.5, "created_at": ts},
		{"id": int64(2), "price": 40.5, "created_at": ts},
		{"id": int64(3), "price": 30.5, "created_at": ts},
	}

	// Act
	page, err := planner.CursorPage(schema, plan, rows)

	// Assert
	require.NoError(t, err)
	assert.Len(t, page.Rows, 2)
	assert.Len(t, page.Cursors, 2)
	assert.True(t, page.Meta.HasNext)
	assert.False(t, page.Meta.HasPrevious)
	assert.Nil(t, page.Meta.Total)
	assert.Equal(t, page.Cursors[1], page.Meta.EndCursor)

	pos, err := codec.Decode(page.Meta.EndCursor)
	require.NoError(t, err)
	assert.Equal(t, "price:desc", pos.Sort)
	assert.Equal(t, int64(2), pos.ID)
	assert.Equal(t, "price", pos.KeyField)
	assert.Equal(t, 40.5, pos.KeyValue)
}

func TestPlanner_CursorPageLastPage(t *testing.T) {
	planner := NewPlanner(newCodec(t), 2, zap.NewNop())
	plan := Plan{
		Strategy: domain.StrategyCursor,
		Primary:  sharedQuery.Sort{Field: "id", Direction: sharedQuery.Desc},
		Cursor: sharedQuery.CursorPagination{
			Limit: 2,
			After: []sharedQuery.KeysetValue{{Field: "id", Direction: sharedQuery.Desc, Value: int64(3)}},
		},
	}

	page, err := planner.CursorPage(widgets(), plan, []domain.Row{{"id": int64(2)}})

	require.NoError(t, err)
	assert.False(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrevious)
	assert.Equal(t, page.Meta.StartCursor, page.Meta.EndCursor)
}
