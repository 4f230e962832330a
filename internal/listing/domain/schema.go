package domain

import (
	"errors"
	"fmt"

	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// ---------- Errores de dominio ----------
var (
	ErrUnknownEntity = errors.New("unknown entity")
)

// SchemaLookupError es fatal para la petición: sin esquema no hay nada que validar.
type SchemaLookupError struct {
	Entity string
}

func (e *SchemaLookupError) Error() string {
	return fmt.Sprintf("entity %q is not registered", e.Entity)
}

func (e *SchemaLookupError) Unwrap() error {
	return ErrUnknownEntity
}

// ---------- Esquema de entidad ----------

// EntitySchema agrupa los descriptores de una entidad. Inmutable tras su construcción.
type EntitySchema struct {
	name         string
	table        string
	idField      string
	createdField string
	updatedField string
	fields       []*FieldDescriptor
	byName       map[string]*FieldDescriptor
	defaultSort  []sharedQuery.Sort
}

// SchemaOption ajusta la construcción de un EntitySchema.
type SchemaOption func(*EntitySchema)

// WithTable fija la tabla/colección física (por defecto, el nombre de la entidad).
func WithTable(table string) SchemaOption {
	return func(s *EntitySchema) { s.table = table }
}

// WithIDField fija el campo identificador (por defecto "id").
func WithIDField(field string) SchemaOption {
	return func(s *EntitySchema) { s.idField = field }
}

// WithTimestamps fija los campos de creación y actualización.
func WithTimestamps(created, updated string) SchemaOption {
	return func(s *EntitySchema) {
		s.createdField = created
		s.updatedField = updated
	}
}

// WithDefaultSort fija el orden por defecto configurado para la entidad.
func WithDefaultSort(sorts ...sharedQuery.Sort) SchemaOption {
	return func(s *EntitySchema) { s.defaultSort = append([]sharedQuery.Sort(nil), sorts...) }
}

// NewEntitySchema valida y congela el esquema de una entidad.
func NewEntitySchema(name string, fields []*FieldDescriptor, opts ...SchemaOption) (*EntitySchema, error) {
	if !IsSafeFieldName(name) {
		return nil, fmt.Errorf("invalid entity name %q", name)
	}
	s := &EntitySchema{
		name:    name,
		table:   name,
		idField: "id",
		byName:  make(map[string]*FieldDescriptor, len(fields)),
	}
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("entity %s: nil field descriptor", name)
		}
		if _, dup := s.byName[f.Name()]; dup {
			return nil, fmt.Errorf("entity %s: duplicate field %q", name, f.Name())
		}
		s.byName[f.Name()] = f
		s.fields = append(s.fields, f)
	}
	for _, opt := range opts {
		opt(s)
	}
	if !IsSafeFieldName(s.table) {
		return nil, fmt.Errorf("entity %s: invalid table name %q", name, s.table)
	}

	if s.createdField == "" {
		s.createdField = s.firstExisting("created_at", "createdAt")
	}
	if s.updatedField == "" {
		s.updatedField = s.firstExisting("updated_at", "updatedAt")
	}

	for _, srt := range s.defaultSort {
		f, ok := s.byName[srt.Field]
		if !ok || !f.IsSortable() {
			return nil, fmt.Errorf("entity %s: default sort field %q is not sortable", name, srt.Field)
		}
	}
	if len(s.defaultSort) == 0 {
		s.defaultSort = s.inferDefaultSort()
	}
	return s, nil
}

// MustEntitySchema hace panic si el esquema es inválido. Pensado para esquemas en código y tests.
func MustEntitySchema(name string, fields []*FieldDescriptor, opts ...SchemaOption) *EntitySchema {
	s, err := NewEntitySchema(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *EntitySchema) firstExisting(names ...string) string {
	for _, n := range names {
		if _, ok := s.byName[n]; ok {
			return n
		}
	}
	return ""
}

// inferDefaultSort: id desc, luego creación desc, luego el primer campo ordenable asc.
func (s *EntitySchema) inferDefaultSort() []sharedQuery.Sort {
	if s.isSortable(s.idField) {
		return []sharedQuery.Sort{{Field: s.idField, Direction: sharedQuery.Desc}}
	}
	if s.isSortable(s.createdField) {
		return []sharedQuery.Sort{{Field: s.createdField, Direction: sharedQuery.Desc}}
	}
	for _, f := range s.fields {
		if f.IsSortable() {
			return []sharedQuery.Sort{{Field: f.Name(), Direction: sharedQuery.Asc}}
		}
	}
	return nil
}

func (s *EntitySchema) isSortable(name string) bool {
	f, ok := s.byName[name]
	return ok && f.IsSortable()
}

func (s *EntitySchema) Name() string { return s.name }
func (s *EntitySchema) Table() string { return s.table }
func (s *EntitySchema) IDField() string { return s.idField }
func (s *EntitySchema) CreatedField() string { return s.createdField }
func (s *EntitySchema) UpdatedField() string { return s.updatedField }

// Field busca un descriptor por nombre.
func (s *EntitySchema) Field(name string) (*FieldDescriptor, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Fields devuelve los descriptores en orden de declaración.
func (s *EntitySchema) Fields() []*FieldDescriptor {
	return append([]*FieldDescriptor(nil), s.fields...)
}

// HasField indica si el campo existe en la entidad.
func (s *EntitySchema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// DefaultSort devuelve una copia del orden por defecto.
func (s *EntitySchema) DefaultSort() []sharedQuery.Sort {
	return append([]sharedQuery.Sort(nil), s.defaultSort...)
}

func (s *EntitySchema) names(pred func(*FieldDescriptor) bool) []string {
	var out []string
	for _, f := range s.fields {
		if pred(f) {
			out = append(out, f.Name())
		}
	}
	return out
}

// FilterableFields, SearchableFields y SortableFields listan campos visibles por capacidad.
func (s *EntitySchema) FilterableFields() []string {
	return s.names((*FieldDescriptor).IsFilterable)
}

func (s *EntitySchema) SearchableFields() []string {
	return s.names((*FieldDescriptor).IsSearchable)
}

func (s *EntitySchema) SortableFields() []string {
	return s.names((*FieldDescriptor).IsSortable)
}

// ---------- Registro de esquemas ----------

// SchemaRegistry entrega el esquema de una entidad o un *SchemaLookupError.
type SchemaRegistry interface {
	Lookup(entity string) (*EntitySchema, error)
}

// StaticRegistry es un registro inmutable en memoria.
type StaticRegistry struct {
	schemas map[string]*EntitySchema
	order   []string
}

// NewStaticRegistry falla si dos esquemas comparten nombre.
func NewStaticRegistry(schemas ...*EntitySchema) (*StaticRegistry, error) {
	r := &StaticRegistry{schemas: make(map[string]*EntitySchema, len(schemas))}
	for _, s := range schemas {
		if _, dup := r.schemas[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate entity %q", s.Name())
		}
		r.schemas[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r, nil
}

func (r *StaticRegistry) Lookup(entity string) (*EntitySchema, error) {
	s, ok := r.schemas[entity]
	if !ok {
		return nil, &SchemaLookupError{Entity: entity}
	}
	return s, nil
}

// Entities lista los nombres registrados en orden de alta.
func (r *StaticRegistry) Entities() []string {
	return append([]string(nil), r.order...)
}

// Verificación estática
var _ SchemaRegistry = (*StaticRegistry)(nil)
