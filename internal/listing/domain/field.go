package domain

import (
	"fmt"

	shared "github.com/davicafu/hexaquery/shared/domain"
)

// FieldKind es el tipo lógico de un campo de la entidad.
type FieldKind string

const (
	KindText       FieldKind = "text"
	KindInteger    FieldKind = "integer"
	KindFloat      FieldKind = "float"
	KindBoolean    FieldKind = "boolean"
	KindDate       FieldKind = "date"
	KindDateTime   FieldKind = "datetime"
	KindEnum       FieldKind = "enum"
	KindMultiEnum  FieldKind = "multiEnum"
	KindReference  FieldKind = "reference"
	KindIdentifier FieldKind = "identifier"
	KindSecret     FieldKind = "secret"
)

// IsValid indica si el tipo es conocido.
func (k FieldKind) IsValid() bool {
	_, ok := kindDefaults[k]
	return ok
}

// IsOrdered indica si los valores del tipo admiten comparación de orden.
func (k FieldKind) IsOrdered() bool {
	switch k {
	case KindInteger, KindFloat, KindDate, KindDateTime, KindIdentifier, KindText:
		return true
	}
	return false
}

// Normalizer convierte un valor crudo a la representación nativa del campo.
// Debe ser idempotente: normalizar un valor ya normalizado no lo cambia.
type Normalizer func(value interface{}) (interface{}, error)

type kindDefault struct {
	operators  []shared.Operator
	filterable bool
	searchable bool
	sortable   bool
}

var (
	nullOps  = []shared.Operator{shared.OpIsNull, shared.OpIsNotNull}
	rangeOps = []shared.Operator{
		shared.OpEquals, shared.OpNotEquals, shared.OpGt, shared.OpGte, shared.OpLt, shared.OpLte,
		shared.OpBetween, shared.OpIsNull, shared.OpIsNotNull,
	}
)

var kindDefaults = map[FieldKind]kindDefault{
	KindText: {
		operators: []shared.Operator{
			shared.OpEquals, shared.OpNotEquals, shared.OpContains, shared.OpNotContains,
			shared.OpStartsWith, shared.OpEndsWith, shared.OpIn, shared.OpNotIn,
			shared.OpIsNull, shared.OpIsNotNull,
		},
		filterable: true, searchable: true, sortable: true,
	},
	KindInteger: {
		operators:  append(append([]shared.Operator{}, rangeOps...), shared.OpIn, shared.OpNotIn),
		filterable: true, sortable: true,
	},
	KindFloat: {
		operators:  rangeOps,
		filterable: true, sortable: true,
	},
	KindBoolean: {
		operators:  append([]shared.Operator{shared.OpEquals, shared.OpNotEquals}, nullOps...),
		filterable: true, sortable: true,
	},
	KindDate:     {operators: rangeOps, filterable: true, sortable: true},
	KindDateTime: {operators: rangeOps, filterable: true, sortable: true},
	KindEnum: {
		operators: append([]shared.Operator{
			shared.OpEquals, shared.OpNotEquals, shared.OpIn, shared.OpNotIn,
		}, nullOps...),
		filterable: true, sortable: true,
	},
	KindMultiEnum: {
		operators: append([]shared.Operator{
			shared.OpContains, shared.OpIn, shared.OpNotIn,
		}, nullOps...),
		filterable: true,
	},
	KindReference: {
		operators: append([]shared.Operator{
			shared.OpEquals, shared.OpNotEquals, shared.OpIn, shared.OpNotIn,
		}, nullOps...),
		filterable: true, sortable: true,
	},
	KindIdentifier: {
		operators: []shared.Operator{
			shared.OpEquals, shared.OpNotEquals, shared.OpIn, shared.OpNotIn,
			shared.OpGt, shared.OpGte, shared.OpLt, shared.OpLte,
		},
		filterable: true, sortable: true,
	},
	// Campos sensibles: cerrados salvo configuración explícita.
	KindSecret: {},
}

// FieldOverride son los ajustes por campo que llegan de la configuración estática.
// Los punteros nil significan "usar el valor por defecto del tipo".
type FieldOverride struct {
	Operators   []shared.Operator
	Filterable  *bool
	Searchable  *bool
	Sortable    *bool
	EnumOptions []string
	Normalizer  Normalizer
}

// FieldDescriptor es el registro inmutable de capacidades de un campo.
type FieldDescriptor struct {
	name        string
	kind        FieldKind
	operators   []shared.Operator
	opSet       map[shared.Operator]struct{}
	filterable  bool
	searchable  bool
	sortable    bool
	enumOptions []string
	enumSet     map[string]struct{}
	normalizer  Normalizer
}

// NewFieldDescriptor construye el descriptor a partir del tipo y de los overrides opcionales.
func NewFieldDescriptor(name string, kind FieldKind, override *FieldOverride) (*FieldDescriptor, error) {
	if !IsSafeFieldName(name) {
		return nil, fmt.Errorf("invalid field name %q", name)
	}
	def, ok := kindDefaults[kind]
	if !ok {
		return nil, fmt.Errorf("field %s: unknown kind %q", name, kind)
	}

	fd := &FieldDescriptor{
		name:       name,
		kind:       kind,
		filterable: def.filterable,
		searchable: def.searchable,
		sortable:   def.sortable,
	}
	ops := def.operators

	if override != nil {
		if override.Operators != nil {
			ops = override.Operators
		}
		if override.Filterable != nil {
			fd.filterable = *override.Filterable
		}
		if override.Searchable != nil {
			fd.searchable = *override.Searchable
		}
		if override.Sortable != nil {
			fd.sortable = *override.Sortable
		}
		fd.enumOptions = append([]string(nil), override.EnumOptions...)
		fd.normalizer = override.Normalizer
	}

	fd.opSet = make(map[shared.Operator]struct{}, len(ops))
	for _, op := range ops {
		if !op.IsValid() {
			return nil, fmt.Errorf("field %s: unknown operator %q", name, op)
		}
		if _, dup := fd.opSet[op]; dup {
			continue
		}
		fd.opSet[op] = struct{}{}
		fd.operators = append(fd.operators, op)
	}

	if kind == KindEnum || kind == KindMultiEnum {
		if len(fd.enumOptions) == 0 {
			return nil, fmt.Errorf("field %s: %s kind requires enum options", name, kind)
		}
		fd.enumSet = make(map[string]struct{}, len(fd.enumOptions))
		for _, o := range fd.enumOptions {
			fd.enumSet[o] = struct{}{}
		}
	}

	if fd.normalizer == nil {
		fd.normalizer = defaultNormalizer(kind, fd.enumSet)
	}
	return fd, nil
}

// MustField es NewFieldDescriptor para esquemas declarados en código; hace panic si falla.
func MustField(name string, kind FieldKind, override *FieldOverride) *FieldDescriptor {
	fd, err := NewFieldDescriptor(name, kind, override)
	if err != nil {
		panic(err)
	}
	return fd
}

func (f *FieldDescriptor) Name() string { return f.name }
func (f *FieldDescriptor) Kind() FieldKind { return f.kind }
func (f *FieldDescriptor) IsFilterable() bool { return f.filterable }
func (f *FieldDescriptor) IsSearchable() bool { return f.searchable }
func (f *FieldDescriptor) IsSortable() bool { return f.sortable }

// Allows indica si el operador está permitido en este campo.
func (f *FieldDescriptor) Allows(op shared.Operator) bool {
	_, ok := f.opSet[op]
	return ok
}

// Operators devuelve una copia de los operadores permitidos, en orden de declaración.
func (f *FieldDescriptor) Operators() []shared.Operator {
	return append([]shared.Operator(nil), f.operators...)
}

// EnumOptions devuelve una copia de las opciones del enum (vacío si no aplica).
func (f *FieldDescriptor) EnumOptions() []string {
	return append([]string(nil), f.enumOptions...)
}

// Normalize aplica el normalizador del campo a un valor escalar.
func (f *FieldDescriptor) Normalize(value interface{}) (interface{}, error) {
	return f.normalizer(value)
}
