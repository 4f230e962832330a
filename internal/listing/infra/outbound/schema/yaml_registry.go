package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

// ---------------- Documento YAML ----------------

type fileDoc struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Name        string     `yaml:"name"`
	Table       string     `yaml:"table"`
	ID          string     `yaml:"id"`
	CreatedAt   string     `yaml:"createdAt"`
	UpdatedAt   string     `yaml:"updatedAt"`
	DefaultSort []string   `yaml:"defaultSort"`
	Fields      []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Operators  []string `yaml:"operators"`
	Options    []string `yaml:"options"`
	Filterable *bool    `yaml:"filterable"`
	Searchable *bool    `yaml:"searchable"`
	Sortable   *bool    `yaml:"sortable"`
}

// ---------------- Carga ----------------

// LoadFile lee el fichero de esquemas y construye el registro.
func LoadFile(path string) (*domain.StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(data)
}

// Parse construye el registro a partir del YAML. Las claves desconocidas son un error.
func Parse(data []byte) (*domain.StaticRegistry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc fileDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode schema file: %w", err)
	}
	if len(doc.Entities) == 0 {
		return nil, errors.New("schema file declares no entities")
	}

	schemas := make([]*domain.EntitySchema, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		s, err := e.build()
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return domain.NewStaticRegistry(schemas...)
}

func (e entityDoc) build() (*domain.EntitySchema, error) {
	fields := make([]*domain.FieldDescriptor, 0, len(e.Fields))
	for _, f := range e.Fields {
		fd, err := f.build()
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.Name, err)
		}
		fields = append(fields, fd)
	}

	var opts []domain.SchemaOption
	if e.Table != "" {
		opts = append(opts, domain.WithTable(e.Table))
	}
	if e.ID != "" {
		opts = append(opts, domain.WithIDField(e.ID))
	}
	if e.CreatedAt != "" || e.UpdatedAt != "" {
		opts = append(opts, domain.WithTimestamps(e.CreatedAt, e.UpdatedAt))
	}
	if len(e.DefaultSort) > 0 {
		sorts, err := parseSorts(e.DefaultSort)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.Name, err)
		}
		opts = append(opts, domain.WithDefaultSort(sorts...))
	}
	return domain.NewEntitySchema(e.Name, fields, opts...)
}

func (f fieldDoc) build() (*domain.FieldDescriptor, error) {
	kind := domain.FieldKind(f.Kind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("field %s: unknown kind %q", f.Name, f.Kind)
	}

	var override *domain.FieldOverride
	if f.Operators != nil || f.Options != nil || f.Filterable != nil || f.Searchable != nil || f.Sortable != nil {
		override = &domain.FieldOverride{
			EnumOptions: f.Options,
			Filterable:  f.Filterable,
			Searchable:  f.Searchable,
			Sortable:    f.Sortable,
		}
		for _, raw := range f.Operators {
			op := shared.Operator(raw)
			if !op.IsValid() {
				return nil, fmt.Errorf("field %s: unknown operator %q", f.Name, raw)
			}
			override.Operators = append(override.Operators, op)
		}
	}
	return domain.NewFieldDescriptor(f.Name, kind, override)
}

// parseSorts acepta "campo", "campo:desc" o "-campo".
func parseSorts(raw []string) ([]sharedQuery.Sort, error) {
	out := make([]sharedQuery.Sort, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		dir := sharedQuery.Asc
		if strings.HasPrefix(item, "-") {
			item, dir = item[1:], sharedQuery.Desc
		} else if name, d, found := strings.Cut(item, ":"); found {
			parsed, ok := sharedQuery.ParseDirection(d)
			if !ok {
				return nil, fmt.Errorf("invalid sort direction %q", d)
			}
			item, dir = name, parsed
		}
		if item == "" {
			return nil, errors.New("empty default sort field")
		}
		out = append(out, sharedQuery.Sort{Field: item, Direction: dir})
	}
	return out, nil
}
