package validation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func widgetsSchema() *domain.EntitySchema {
	return domain.MustEntitySchema("widgets", []*domain.FieldDescriptor{
		domain.MustField("id", domain.KindIdentifier, nil),
		domain.MustField("name", domain.KindText, nil),
		domain.MustField("description", domain.KindText, nil),
		domain.MustField("status", domain.KindEnum, &domain.FieldOverride{
			Operators:   []shared.Operator{shared.OpEquals, shared.OpIn},
			EnumOptions: []string{"active", "archived", "draft"},
		}),
		domain.MustField("price", domain.KindFloat, &domain.FieldOverride{
			Operators: []shared.Operator{
				shared.OpEquals, shared.OpGt, shared.OpGte, shared.OpLt, shared.OpLte, shared.OpBetween,
			},
		}),
		domain.MustField("quantity", domain.KindInteger, nil),
		domain.MustField("created_at", domain.KindDateTime, nil),
		domain.MustField("password", domain.KindSecret, nil),
	})
}

func newCodec(t *testing.T) *paging.HMACCursorCodec {
	t.Helper()
	c, err := paging.NewCursorCodec([]byte("validator-test-secret-0123456789"))
	require.NoError(t, err)
	return c
}

func newValidator(t *testing.T) *Validator {
	return NewValidator(DefaultPolicy(), newCodec(t), zap.NewNop())
}

func pageReq(page, size int) domain.RawPagination {
	return domain.RawPagination{Style: domain.StylePage, Page: domain.IntPtr(page), PageSize: domain.IntPtr(size)}
}

func codes(entries []domain.ValidationError) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Code)
	}
	return out
}

// -------------------- Escenarios --------------------

func TestValidate_BetweenAndEnumFilter(t *testing.T) {
	// Arrange
	v := newValidator(t)
	parsed := domain.ParsedRequest{
		Format: domain.FormatBracket,
		Filters: []domain.RawFilter{
			{Field: "price", Operator: shared.OpBetween, Value: []interface{}{"10.0", "50.0"}},
			{Field: "status", Operator: shared.OpEquals, Value: "active"},
		},
		Sorting:    []domain.RawSort{{Field: "price", Direction: sharedQuery.Desc}},
		Pagination: pageReq(1, 2),
	}

	// Act
	req, errs := v.Validate(widgetsSchema(), parsed)

	// Assert
	require.NotNil(t, req)
	assert.Zero(t, errs.Len())
	assert.Equal(t, []domain.ValidatedFilter{
		{Field: "price", Operator: shared.OpBetween, Value: []interface{}{10.0, 50.0}},
		{Field: "status", Operator: shared.OpEquals, Value: "active"},
	}, req.Filters)
	assert.Equal(t, []sharedQuery.Sort{{Field: "price", Direction: sharedQuery.Desc}}, req.Sorting)
	assert.Equal(t, domain.ValidatedPagination{
		Strategy: domain.StrategyOffset, Style: domain.StylePage, Page: 1, PageSize: 2, Offset: 0,
	}, req.Pagination)
	assert.Equal(t, domain.FormatBracket, req.Format)
}

func TestValidate_DisallowedOperatorRejectsOnlyThatFilter(t *testing.T) {
	v := newValidator(t)
	parsed := domain.ParsedRequest{
		Filters:    []domain.RawFilter{{Field: "status", Operator: shared.OpContains, Value: "act"}},
		Sorting:    []domain.RawSort{{Field: "price", Direction: sharedQuery.Desc}},
		Pagination: pageReq(1, 2),
	}

	req, errs := v.Validate(widgetsSchema(), parsed)

	assert.Nil(t, req)
	require.Len(t, errs.Errors(), 1)
	e := errs.Errors()[0]
	assert.Equal(t, domain.CategoryFilter, e.Category)
	assert.Equal(t, "status", e.Field)
	assert.Equal(t, domain.CodeOperatorNotAllowed, e.Code)
	assert.ElementsMatch(t, []string{"equals", "in"}, e.Allowed)
	assert.Equal(t, "filter[status]=active", e.Example)
	assert.Empty(t, errs.Warnings())
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	v := newValidator(t)
	parsed := domain.ParsedRequest{
		Filters: []domain.RawFilter{
			{Field: "colour", Operator: shared.OpEquals, Value: "red"},
			{Field: "status", Operator: shared.OpGt, Value: "active"},
		},
		Sorting: []domain.RawSort{
			{Field: "id", Priority: 0},
			{Field: "name", Priority: 1},
			{Field: "price", Priority: 2},
			{Field: "quantity", Priority: 3},
		},
	}

	req, errs := v.Validate(widgetsSchema(), parsed)

	assert.Nil(t, req)
	assert.Equal(t, []string{
		domain.CodeUnknownField, domain.CodeOperatorNotAllowed, domain.CodeTooManySortFields,
	}, codes(errs.Errors()))
}

func TestValidate_SecretFieldIsClosed(t *testing.T) {
	v := newValidator(t)
	parsed := domain.ParsedRequest{
		Filters: []domain.RawFilter{{Field: "password", Operator: shared.OpEquals, Value: "hunter2"}},
		Sorting: []domain.RawSort{{Field: "password"}},
		Search:  &domain.RawSearch{Term: "x", Fields: []string{"password"}},
	}

	req, errs := v.Validate(widgetsSchema(), parsed)

	assert.Nil(t, req)
	assert.Equal(t, []string{
		domain.CodeNotFilterable, domain.CodeSearchFieldsInvalid, domain.CodeNotSortable,
	}, codes(errs.Errors()))
	for _, e := range errs.Errors() {
		assert.NotContains(t, e.Allowed, "password")
	}
}

// -------------------- Filtros --------------------

func TestValidate_FilterValues(t *testing.T) {
	tests := []struct {
		name     string
		filters  []domain.RawFilter
		wantCode string
		want     []domain.ValidatedFilter
	}{
		{
			name:    "gte y lte se unen en between",
			filters: []domain.RawFilter{{Field: "price", Operator: shared.OpGte, Value: "10"}, {Field: "price", Operator: shared.OpLte, Value: "50"}},
			want:    []domain.ValidatedFilter{{Field: "price", Operator: shared.OpBetween, Value: []interface{}{10.0, 50.0}}},
		},
		{
			name:     "rango invertido",
			filters:  []domain.RawFilter{{Field: "price", Operator: shared.OpGte, Value: "50"}, {Field: "price", Operator: shared.OpLte, Value: "10"}},
			wantCode: domain.CodeInvalidRange,
		},
		{
			name:     "between invertido",
			filters:  []domain.RawFilter{{Field: "quantity", Operator: shared.OpBetween, Value: []interface{}{"9", "1"}}},
			wantCode: domain.CodeInvalidRange,
		},
		{
			name:     "between con una sola cota",
			filters:  []domain.RawFilter{{Field: "quantity", Operator: shared.OpBetween, Value: []interface{}{"9"}}},
			wantCode: domain.CodeInvalidRange,
		},
		{
			name:    "in normaliza cada valor",
			filters: []domain.RawFilter{{Field: "quantity", Operator: shared.OpIn, Value: []interface{}{"1", "2"}}},
			want:    []domain.ValidatedFilter{{Field: "quantity", Operator: shared.OpIn, Value: []interface{}{int64(1), int64(2)}}},
		},
		{
			name:     "in vacío",
			filters:  []domain.RawFilter{{Field: "status", Operator: shared.OpIn, Value: []interface{}{}}},
			wantCode: domain.CodeEmptyList,
		},
		{
			name:     "opción de enum desconocida",
			filters:  []domain.RawFilter{{Field: "status", Operator: shared.OpEquals, Value: "deleted"}},
			wantCode: domain.CodeInvalidValue,
		},
		{
			name:     "número no parseable",
			filters:  []domain.RawFilter{{Field: "price", Operator: shared.OpGt, Value: "cheap"}},
			wantCode: domain.CodeInvalidValue,
		},
		{
			name:     "lista en operador escalar",
			filters:  []domain.RawFilter{{Field: "name", Operator: shared.OpEquals, Value: []interface{}{"a", "b"}}},
			wantCode: domain.CodeInvalidValue,
		},
		{
			name:     "contains vacío",
			filters:  []domain.RawFilter{{Field: "name", Operator: shared.OpContains, Value: "  "}},
			wantCode: domain.CodeInvalidValue,
		},
		{
			name:    "isNull no lleva valor",
			filters: []domain.RawFilter{{Field: "description", Operator: shared.OpIsNull, Value: "ignored"}},
			want:    []domain.ValidatedFilter{{Field: "description", Operator: shared.OpIsNull}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := newValidator(t).Validate(widgetsSchema(), domain.ParsedRequest{Filters: tt.filters})

			if tt.wantCode != "" {
				assert.Nil(t, req)
				assert.Equal(t, []string{tt.wantCode}, codes(errs.Errors()))
				return
			}
			require.NotNil(t, req, "errores inesperados: %v", errs.Entries())
			assert.Equal(t, tt.want, req.Filters)
		})
	}
}

func TestValidate_OrLogicIsRejected(t *testing.T) {
	parsed := domain.ParsedRequest{
		FilterLogic: shared.OpOr,
		Filters: []domain.RawFilter{
			{Field: "status", Operator: shared.OpEquals, Value: "active"},
			{Field: "name", Operator: shared.OpContains, Value: "lamp"},
		},
	}

	req, errs := newValidator(t).Validate(widgetsSchema(), parsed)

	assert.Nil(t, req)
	assert.Equal(t, []string{domain.CodeUnsupportedLogic}, codes(errs.Errors()))
}

func TestValidate_OrLogicWithSingleFilterIsHarmless(t *testing.T) {
	parsed := domain.ParsedRequest{
		FilterLogic: shared.OpOr,
		Filters:     []domain.RawFilter{{Field: "status", Operator: shared.OpEquals, Value: "active"}},
	}

	req, _ := newValidator(t).Validate(widgetsSchema(), parsed)

	assert.NotNil(t, req)
}

// -------------------- Búsqueda --------------------

func TestValidate_Search(t *testing.T) {
	tests := []struct {
		name      string
		search    *domain.RawSearch
		wantCode  string
		wantWarn  string
		wantField []string
	}{
		{
			name:      "sin campos usa todos los buscables",
			search:    &domain.RawSearch{Term: " lamp "},
			wantField: []string{"name", "description"},
		},
		{
			name:      "campos parcialmente válidos avisan",
			search:    &domain.RawSearch{Term: "lamp", Fields: []string{"name", "price"}},
			wantWarn:  domain.CodeSearchFieldIgnored,
			wantField: []string{"name"},
		},
		{
			name:     "ningún campo válido",
			search:   &domain.RawSearch{Term: "lamp", Fields: []string{"price"}},
			wantCode: domain.CodeSearchFieldsInvalid,
		},
		{
			name:     "término vacío",
			search:   &domain.RawSearch{Term: "   "},
			wantCode: domain.CodeSearchEmpty,
		},
		{
			name:     "término demasiado largo",
			search:   &domain.RawSearch{Term: strings.Repeat("a", 101)},
			wantCode: domain.CodeSearchTooLong,
		},
		{
			name:     "modo desconocido",
			search:   &domain.RawSearch{Term: "lamp", Mode: "fuzzy"},
			wantCode: domain.CodeSearchModeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := newValidator(t).Validate(widgetsSchema(), domain.ParsedRequest{Search: tt.search})

			if tt.wantCode != "" {
				assert.Nil(t, req)
				assert.Equal(t, []string{tt.wantCode}, codes(errs.Errors()))
				return
			}
			require.NotNil(t, req)
			require.NotNil(t, req.Search)
			assert.Equal(t, "lamp", req.Search.Term)
			assert.Equal(t, domain.SearchContains, req.Search.Mode)
			assert.Equal(t, tt.wantField, req.Search.Fields)
			if tt.wantWarn != "" {
				assert.Equal(t, []string{tt.wantWarn}, codes(errs.Warnings()))
			}
		})
	}
}

func TestValidate_SearchUnavailable(t *testing.T) {
	schema := domain.MustEntitySchema("counters", []*domain.FieldDescriptor{
		domain.MustField("id", domain.KindIdentifier, nil),
		domain.MustField("value", domain.KindInteger, nil),
	})

	req, errs := newValidator(t).Validate(schema, domain.ParsedRequest{Search: &domain.RawSearch{Term: "x"}})

	assert.Nil(t, req)
	assert.Equal(t, []string{domain.CodeSearchUnavailable}, codes(errs.Errors()))
}

// -------------------- Ordenación --------------------

func TestValidate_Sorting(t *testing.T) {
	t.Run("vacío usa el orden por defecto", func(t *testing.T) {
		req, _ := newValidator(t).Validate(widgetsSchema(), domain.ParsedRequest{})
		require.NotNil(t, req)
		assert.Equal(t, []sharedQuery.Sort{{Field: "id", Direction: sharedQuery.Desc}}, req.Sorting)
	})

	t.Run("respeta la prioridad y descarta duplicados", func(t *testing.T) {
		parsed := domain.ParsedRequest{Sorting: []domain.RawSort{
			{Field: "name", Direction: sharedQuery.Asc, Priority: 1},
			{Field: "price", Direction: sharedQuery.Desc, Priority: 0},
			{Field: "name", Direction: sharedQuery.Desc, Priority: 2},
		}}

		req, errs := newValidator(t).Validate(widgetsSchema(), parsed)

		require.NotNil(t, req)
		assert.Equal(t, []sharedQuery.Sort{
			{Field: "price", Direction: sharedQuery.Desc},
			{Field: "name", Direction: sharedQuery.Asc},
		}, req.Sorting)
		assert.Equal(t, []string{domain.CodeDuplicateSort}, codes(errs.Warnings()))
	})

	t.Run("dirección inválida", func(t *testing.T) {
		parsed := domain.ParsedRequest{Sorting: []domain.RawSort{{Field: "name", Direction: "sideways"}}}

		req, errs := newValidator(t).Validate(widgetsSchema(), parsed)

		assert.Nil(t, req)
		require.Len(t, errs.Errors(), 1)
		assert.Equal(t, domain.CodeInvalidDirection, errs.Errors()[0].Code)
		assert.Equal(t, []string{"asc", "desc"}, errs.Errors()[0].Allowed)
	})
}

// -------------------- Paginación --------------------

func TestValidate_PaginationClamps(t *testing.T) {
	tests := []struct {
		name       string
		pagination domain.RawPagination
		wantPage   int
		wantSize   int
		wantOffset int
		wantWarn   []string
	}{
		{
			name:       "valores por defecto",
			pagination: domain.RawPagination{Style: domain.StylePage},
			wantPage:   1, wantSize: 20, wantOffset: 0,
		},
		{
			name:       "tamaño por encima del máximo",
			pagination: pageReq(1, 500),
			wantPage:   1, wantSize: 100, wantOffset: 0,
			wantWarn: []string{domain.CodePageSizeClamped},
		},
		{
			name:       "página cero",
			pagination: pageReq(0, 10),
			wantPage:   1, wantSize: 10, wantOffset: 0,
			wantWarn: []string{domain.CodePageClamped},
		},
		{
			name:       "página cero en convención 0-based",
			pagination: domain.RawPagination{Style: domain.StylePage, ZeroBased: true, Page: domain.IntPtr(0), PageSize: domain.IntPtr(25)},
			wantPage:   1, wantSize: 25, wantOffset: 0,
		},
		{
			name:       "offset negativo y tamaño cero",
			pagination: domain.RawPagination{Style: domain.StyleOffset, Offset: domain.IntPtr(-5), Limit: domain.IntPtr(0)},
			wantPage:   1, wantSize: 1, wantOffset: 0,
			wantWarn: []string{domain.CodePageSizeClamped, domain.CodeOffsetClamped},
		},
		{
			name:       "rango de filas",
			pagination: domain.RawPagination{Style: domain.StyleRowRange, StartRow: domain.IntPtr(100), EndRow: domain.IntPtr(150)},
			wantPage:   3, wantSize: 50, wantOffset: 100,
		},
		{
			name:       "valor no numérico avisa",
			pagination: domain.RawPagination{Style: domain.StylePage, Invalid: []string{"page"}},
			wantPage:   1, wantSize: 20, wantOffset: 0,
			wantWarn: []string{domain.CodeInvalidPageValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := newValidator(t).Validate(widgetsSchema(), domain.ParsedRequest{Pagination: tt.pagination})

			require.NotNil(t, req)
			assert.False(t, errs.HasErrors())
			assert.Equal(t, tt.wantPage, req.Pagination.Page)
			assert.Equal(t, tt.wantSize, req.Pagination.PageSize)
			assert.Equal(t, tt.wantOffset, req.Pagination.Offset)
			assert.Equal(t, tt.wantWarn, codesOrNil(errs.Warnings()))
		})
	}
}

func codesOrNil(entries []domain.ValidationError) []string {
	if len(entries) == 0 {
		return nil
	}
	return codes(entries)
}

// -------------------- Cursor --------------------

func cursorReq(limit int, cursor string, sorts ...domain.RawSort) domain.ParsedRequest {
	return domain.ParsedRequest{
		Sorting:    sorts,
		Pagination: domain.RawPagination{Style: domain.StyleCursor, Limit: domain.IntPtr(limit), Cursor: cursor},
	}
}

func TestValidate_CursorTrimsSortToPrimary(t *testing.T) {
	req, errs := newValidator(t).Validate(widgetsSchema(), cursorReq(2, "",
		domain.RawSort{Field: "price", Direction: sharedQuery.Desc},
		domain.RawSort{Field: "name", Priority: 1},
	))

	require.NotNil(t, req)
	assert.Equal(t, []sharedQuery.Sort{{Field: "price", Direction: sharedQuery.Desc}}, req.Sorting)
	assert.Equal(t, []string{domain.CodeSortTrimmed}, codes(errs.Warnings()))
	assert.Equal(t, domain.StrategyCursor, req.Pagination.Strategy)
	assert.Nil(t, req.Pagination.After)
}

func TestValidate_CursorIsVerified(t *testing.T) {
	codec := newCodec(t)
	sign := func(pos domain.CursorPosition) string {
		tok, err := codec.Encode(pos)
		require.NoError(t, err)
		return tok
	}
	valid := sign(domain.CursorPosition{Entity: "widgets", Sort: "price:desc", ID: "7", KeyField: "price", KeyValue: "30"})
	tampered := valid[:len(valid)-1] + map[bool]string{true: "A", false: "B"}[valid[len(valid)-1] != 'A']

	tests := []struct {
		name      string
		cursor    string
		wantAfter *domain.CursorPosition
	}{
		{
			name:   "cursor válido se normaliza",
			cursor: valid,
			wantAfter: &domain.CursorPosition{
				Entity: "widgets", Sort: "price:desc", ID: int64(7), KeyField: "price", KeyValue: 30.0,
			},
		},
		{name: "cursor manipulado", cursor: tampered},
		{name: "cursor de otra entidad", cursor: sign(domain.CursorPosition{Entity: "gadgets", Sort: "price:desc", ID: int64(7), KeyField: "price", KeyValue: 30.0})},
		{name: "cursor de otro orden", cursor: sign(domain.CursorPosition{Entity: "widgets", Sort: "price:asc", ID: int64(7), KeyField: "price", KeyValue: 30.0})},
		{name: "cursor sin clave primaria", cursor: sign(domain.CursorPosition{Entity: "widgets", Sort: "price:desc", ID: int64(7)})},
		{name: "basura", cursor: "not-a-cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(DefaultPolicy(), codec, zap.NewNop())

			req, errs := v.Validate(widgetsSchema(), cursorReq(2, tt.cursor, domain.RawSort{Field: "price", Direction: sharedQuery.Desc}))

			// Un cursor inválido se trata como ausente y no genera entradas visibles.
			require.NotNil(t, req)
			assert.Zero(t, errs.Len())
			assert.Equal(t, tt.wantAfter, req.Pagination.After)
			if tt.wantAfter == nil {
				assert.Empty(t, req.Pagination.Cursor)
			}
		})
	}
}

func TestValidate_CursorWithoutCodecIsIgnored(t *testing.T) {
	v := NewValidator(DefaultPolicy(), nil, zap.NewNop())

	req, _ := v.Validate(widgetsSchema(), cursorReq(2, "anything"))

	require.NotNil(t, req)
	assert.Nil(t, req.Pagination.After)
}

// -------------------- Propiedades --------------------

func TestValidate_IsIdempotent(t *testing.T) {
	v := newValidator(t)
	parsed := domain.ParsedRequest{
		Format: domain.FormatSimple,
		Filters: []domain.RawFilter{
			{Field: "price", Operator: shared.OpGte, Value: "10"},
			{Field: "price", Operator: shared.OpLte, Value: "50"},
			{Field: "status", Operator: shared.OpIn, Value: []interface{}{"active", "draft"}},
			{Field: "created_at", Operator: shared.OpGt, Value: "2024-01-31T10:00:00+02:00"},
		},
		Search:     &domain.RawSearch{Term: " lamp ", Mode: domain.SearchStartsWith},
		Pagination: domain.RawPagination{Style: domain.StylePage, ZeroBased: true, Page: domain.IntPtr(2), PageSize: domain.IntPtr(500)},
	}

	first, _ := v.Validate(widgetsSchema(), parsed)
	require.NotNil(t, first)
	second, errs := v.Validate(widgetsSchema(), first.AsParsed())

	require.NotNil(t, second, "la revalidación falló: %v", errs.Entries())
	assert.Equal(t, first, second)
}

// TestValidate_RandomRequests comprueba las garantías del validador sobre peticiones aleatorias.
func TestValidate_RandomRequests(t *testing.T) {
	schema := widgetsSchema()
	v := newValidator(t)
	rng := rand.New(rand.NewSource(20240131))

	fields := append(schema.Fields(), domain.MustField("colour", domain.KindText, nil))
	randomFilter := func() domain.RawFilter {
		fd := fields[rng.Intn(len(fields))]
		op := shared.AllOperators[rng.Intn(len(shared.AllOperators))]
		sample := SampleValue(fd)
		var value interface{} = sample
		switch {
		case op.TakesNoValue():
			value = nil
		case op.TakesList():
			value = []interface{}{sample, sample}
		case op == shared.OpBetween:
			value = []interface{}{sample, sample}
		}
		return domain.RawFilter{Field: fd.Name(), Operator: op, Value: value}
	}

	for i := 0; i < 500; i++ {
		parsed := domain.ParsedRequest{Pagination: pageReq(rng.Intn(10)-2, rng.Intn(300)-5)}
		for n := rng.Intn(4); n > 0; n-- {
			parsed.Filters = append(parsed.Filters, randomFilter())
		}
		for n := rng.Intn(5); n > 0; n-- {
			fd := fields[rng.Intn(len(fields))]
			parsed.Sorting = append(parsed.Sorting, domain.RawSort{Field: fd.Name(), Direction: sharedQuery.Desc, Priority: n})
		}

		req, errs := v.Validate(schema, parsed)

		require.NotNil(t, errs)
		assert.Equal(t, errs.HasErrors(), req == nil, "caso %d", i)
		for _, e := range errs.Entries() {
			assert.NotEmpty(t, e.Code)
			assert.NotEmpty(t, e.Category)
		}
		if req == nil {
			continue
		}

		for _, f := range req.Filters {
			fd, ok := schema.Field(f.Field)
			require.True(t, ok, "campo desconocido aceptado: %s", f.Field)
			assert.True(t, fd.IsFilterable())
			assert.True(t, fd.Allows(f.Operator), "%s %s", f.Field, f.Operator)
		}
		for _, s := range req.Sorting {
			fd, ok := schema.Field(s.Field)
			require.True(t, ok)
			assert.True(t, fd.IsSortable())
		}
		assert.GreaterOrEqual(t, req.Pagination.Page, 1)
		assert.GreaterOrEqual(t, req.Pagination.PageSize, 1)
		assert.LessOrEqual(t, req.Pagination.PageSize, 100)

		again, _ := v.Validate(schema, req.AsParsed())
		assert.Equal(t, req, again, "caso %d", i)
	}
}
