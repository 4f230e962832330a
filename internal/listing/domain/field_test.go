package domain

import (
	"testing"
	"time"

	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestNewFieldDescriptor_KindDefaults(t *testing.T) {
	tests := []struct {
		name       string
		kind       FieldKind
		allows     []shared.Operator
		denies     []shared.Operator
		filterable bool
		searchable bool
		sortable   bool
	}{
		{
			name:       "texto admite subcadenas y es buscable",
			kind:       KindText,
			allows:     []shared.Operator{shared.OpContains, shared.OpStartsWith, shared.OpIn},
			denies:     []shared.Operator{shared.OpGt, shared.OpBetween},
			filterable: true, searchable: true, sortable: true,
		},
		{
			name:       "entero admite rangos",
			kind:       KindInteger,
			allows:     []shared.Operator{shared.OpGte, shared.OpBetween, shared.OpIn},
			denies:     []shared.Operator{shared.OpContains},
			filterable: true, sortable: true,
		},
		{
			name:       "booleano solo igualdad y nulidad",
			kind:       KindBoolean,
			allows:     []shared.Operator{shared.OpEquals, shared.OpIsNull},
			denies:     []shared.Operator{shared.OpGt, shared.OpIn},
			filterable: true, sortable: true,
		},
		{
			name:   "secreto cerrado por defecto",
			kind:   KindSecret,
			denies: shared.AllOperators,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := NewFieldDescriptor("f", tt.kind, nil)
			require.NoError(t, err)

			for _, op := range tt.allows {
				assert.True(t, fd.Allows(op), "debería permitir %s", op)
			}
			for _, op := range tt.denies {
				assert.False(t, fd.Allows(op), "no debería permitir %s", op)
			}
			assert.Equal(t, tt.filterable, fd.IsFilterable())
			assert.Equal(t, tt.searchable, fd.IsSearchable())
			assert.Equal(t, tt.sortable, fd.IsSortable())
		})
	}
}

func TestNewFieldDescriptor_Overrides(t *testing.T) {
	// Arrange
	override := &FieldOverride{
		Operators:  []shared.Operator{shared.OpEquals, shared.OpEquals, shared.OpIn},
		Filterable: boolPtr(true),
		Sortable:   boolPtr(false),
	}

	// Act
	fd, err := NewFieldDescriptor("password_hash", KindSecret, override)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []shared.Operator{shared.OpEquals, shared.OpIn}, fd.Operators(), "los duplicados se descartan")
	assert.True(t, fd.IsFilterable())
	assert.False(t, fd.IsSearchable())
	assert.False(t, fd.IsSortable())
}

func TestNewFieldDescriptor_Errors(t *testing.T) {
	_, err := NewFieldDescriptor("bad name", KindText, nil)
	assert.Error(t, err)

	_, err = NewFieldDescriptor("x", FieldKind("blob"), nil)
	assert.Error(t, err)

	_, err = NewFieldDescriptor("status", KindEnum, nil)
	assert.Error(t, err, "un enum sin opciones no es válido")

	_, err = NewFieldDescriptor("x", KindText, &FieldOverride{Operators: []shared.Operator{"like"}})
	assert.Error(t, err)
}

func TestFieldDescriptor_Normalize(t *testing.T) {
	status := MustField("status", KindEnum, &FieldOverride{EnumOptions: []string{"active", "archived"}})

	tests := []struct {
		name    string
		field   *FieldDescriptor
		in      interface{}
		want    interface{}
		wantErr error
	}{
		{"entero desde texto", MustField("qty", KindInteger, nil), " 42 ", int64(42), nil},
		{"entero rechaza decimales", MustField("qty", KindInteger, nil), "4.2", nil, ErrNotInteger},
		{"float desde texto", MustField("price", KindFloat, nil), "10.5", 10.5, nil},
		{"float rechaza texto", MustField("price", KindFloat, nil), "abc", nil, ErrNotNumber},
		{"booleano yes", MustField("flag", KindBoolean, nil), "Yes", true, nil},
		{"booleano off", MustField("flag", KindBoolean, nil), "off", false, nil},
		{"booleano desconocido", MustField("flag", KindBoolean, nil), "maybe", nil, ErrNotBoolean},
		{"fecha", MustField("day", KindDate, nil), "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil},
		{"fecha desde datetime", MustField("day", KindDate, nil), "2024-03-01T15:04:05Z", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil},
		{"datetime con zona", MustField("at", KindDateTime, nil), "2024-03-01T10:00:00+02:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), nil},
		{"enum válido", status, "active", "active", nil},
		{"enum fuera de opciones", status, "deleted", nil, ErrNotEnumOption},
		{"id numérico", MustField("id", KindIdentifier, nil), "7", int64(7), nil},
		{"id uuid", MustField("id", KindIdentifier, nil), "6F9619FF-8B86-D011-B42D-00C04FC964FF", "6f9619ff-8b86-d011-b42d-00c04fc964ff", nil},
		{"id inválido", MustField("id", KindIdentifier, nil), "abc", nil, ErrNotIdentifier},
		{"texto rechaza listas", MustField("name", KindText, nil), []interface{}{"a"}, nil, ErrNotScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Normalize(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Normalizar dos veces no cambia el valor.
			again, err := tt.field.Normalize(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestIsSafeFieldName(t *testing.T) {
	assert.True(t, IsSafeFieldName("created_at"))
	assert.True(t, IsSafeFieldName("author.name"))
	assert.False(t, IsSafeFieldName(""))
	assert.False(t, IsSafeFieldName("name;drop"))
	assert.False(t, IsSafeFieldName("a..b"))
	assert.False(t, IsSafeFieldName(".a"))
	assert.False(t, IsSafeFieldName("1abc"))
}

func TestCompareValues(t *testing.T) {
	c, ok := CompareValues(int64(1), 2.5)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = CompareValues("b", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = CompareValues("a", int64(1))
	assert.False(t, ok)
}

func TestEntitySchema_DefaultSortPreference(t *testing.T) {
	noSort := &FieldOverride{Sortable: boolPtr(false)}

	tests := []struct {
		name   string
		fields []*FieldDescriptor
		want   []sharedQuery.Sort
	}{
		{
			name:   "id descendente",
			fields: []*FieldDescriptor{MustField("id", KindIdentifier, nil), MustField("created_at", KindDateTime, nil)},
			want:   []sharedQuery.Sort{{Field: "id", Direction: sharedQuery.Desc}},
		},
		{
			name:   "creación descendente si id no es ordenable",
			fields: []*FieldDescriptor{MustField("id", KindIdentifier, noSort), MustField("createdAt", KindDateTime, nil)},
			want:   []sharedQuery.Sort{{Field: "createdAt", Direction: sharedQuery.Desc}},
		},
		{
			name:   "primer campo ordenable ascendente",
			fields: []*FieldDescriptor{MustField("id", KindIdentifier, noSort), MustField("name", KindText, nil)},
			want:   []sharedQuery.Sort{{Field: "name", Direction: sharedQuery.Asc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewEntitySchema("things", tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.DefaultSort())
		})
	}
}

func TestEntitySchema_Errors(t *testing.T) {
	_, err := NewEntitySchema("things", []*FieldDescriptor{
		MustField("id", KindIdentifier, nil),
		MustField("id", KindIdentifier, nil),
	})
	assert.Error(t, err)

	_, err = NewEntitySchema("things", []*FieldDescriptor{MustField("id", KindIdentifier, nil)},
		WithDefaultSort(sharedQuery.Sort{Field: "missing", Direction: sharedQuery.Asc}))
	assert.Error(t, err)
}

func TestStaticRegistry_Lookup(t *testing.T) {
	s := MustEntitySchema("widgets", []*FieldDescriptor{MustField("id", KindIdentifier, nil)})
	reg, err := NewStaticRegistry(s)
	require.NoError(t, err)

	got, err := reg.Lookup("widgets")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = reg.Lookup("gadgets")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	var lookupErr *SchemaLookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "gadgets", lookupErr.Entity)
}
