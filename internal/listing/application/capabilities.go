package application

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/application/envelope"
	"github.com/davicafu/hexaquery/internal/listing/application/validation"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
)

// FieldCapability describe lo que un cliente puede hacer con un campo.
type FieldCapability struct {
	Name        string           `json:"name"`
	Kind        domain.FieldKind `json:"kind"`
	Filterable  bool             `json:"filterable"`
	Sortable    bool             `json:"sortable"`
	Searchable  bool             `json:"searchable"`
	Operators   []string         `json:"operators,omitempty"`
	EnumOptions []string         `json:"enumOptions,omitempty"`
}

type Limits struct {
	DefaultPageSize int `json:"defaultPageSize"`
	MaxPageSize     int `json:"maxPageSize"`
	MaxSortFields   int `json:"maxSortFields"`
	MaxSearchLength int `json:"maxSearchLength"`
	MaxInValues     int `json:"maxInValues"`
}

// Capabilities es la introspección de una entidad.
type Capabilities struct {
	Entity      string              `json:"entity"`
	Fields      []FieldCapability   `json:"fields"`
	Filterable  []string            `json:"filterable"`
	Sortable    []string            `json:"sortable"`
	Searchable  []string            `json:"searchable"`
	DefaultSort []envelope.SortMeta `json:"defaultSort"`
	Limits      Limits              `json:"limits"`
	Formats     []domain.FormatTag  `json:"formats"`
	Examples    map[string]string   `json:"examples"`
}

// Capabilities devuelve la introspección de la entidad. Los campos cerrados (secretos) no aparecen.
func (s *ListService) Capabilities(entity string) (*Capabilities, error) {
	schema, err := s.registry.Lookup(entity)
	if err != nil {
		return nil, err
	}

	p := s.validator.Policy()
	out := &Capabilities{
		Entity:     schema.Name(),
		Fields:     []FieldCapability{},
		Filterable: schema.FilterableFields(),
		Sortable:   schema.SortableFields(),
		Searchable: schema.SearchableFields(),
		Limits: Limits{
			DefaultPageSize: p.DefaultPageSize,
			MaxPageSize:     p.MaxPageSize,
			MaxSortFields:   p.MaxSortFields,
			MaxSearchLength: p.MaxSearchLength,
			MaxInValues:     p.MaxInValues,
		},
		Formats:  s.detector.Formats(),
		Examples: examples(schema, p.DefaultPageSize),
	}
	for _, fd := range schema.Fields() {
		if !fd.IsFilterable() && !fd.IsSortable() && !fd.IsSearchable() {
			continue
		}
		fc := FieldCapability{
			Name:        fd.Name(),
			Kind:        fd.Kind(),
			Filterable:  fd.IsFilterable(),
			Sortable:    fd.IsSortable(),
			Searchable:  fd.IsSearchable(),
			EnumOptions: fd.EnumOptions(),
		}
		if fd.IsFilterable() {
			for _, op := range fd.Operators() {
				fc.Operators = append(fc.Operators, string(op))
			}
		}
		out.Fields = append(out.Fields, fc)
	}
	for _, srt := range schema.DefaultSort() {
		out.DefaultSort = append(out.DefaultSort, envelope.SortMeta{Field: srt.Field, Direction: string(srt.Direction)})
	}
	return out, nil
}

// examples genera una query de ejemplo por convención a partir del primer campo filtrable y ordenable.
func examples(schema *domain.EntitySchema, size int) map[string]string {
	var filterField *domain.FieldDescriptor
	for _, fd := range schema.Fields() {
		if fd.IsFilterable() && len(fd.Operators()) > 0 {
			filterField = fd
			break
		}
	}
	sortField := schema.IDField()
	if sorts := schema.SortableFields(); len(sorts) > 0 {
		sortField = sorts[0]
	}

	simple := url.Values{}
	bracket := []string{}
	jsonFilter := `{"items":[]}`
	rowRange := url.Values{}
	if filterField != nil {
		sample := validation.SampleValue(filterField)
		op := filterField.Operators()[0]
		if op == shared.OpEquals {
			simple.Set(filterField.Name(), sample)
		} else {
			simple.Set(filterField.Name()+"__"+string(op), sample)
		}
		bracket = append(bracket, validation.FilterExample(filterField, op))
		jsonFilter = fmt.Sprintf(`{"items":[{"field":%q,"operator":%q,"value":%q}]}`, filterField.Name(), op, sample)
		rowRange.Set(fmt.Sprintf("filterModel[%s][filter]", filterField.Name()), sample)
		rowRange.Set(fmt.Sprintf("filterModel[%s][type]", filterField.Name()), string(op))
	}

	simple.Set("sort", sortField+":desc")
	simple.Set("page", "1")
	simple.Set("pageSize", fmt.Sprint(size))

	bracket = append(bracket, "sort=-"+sortField, "page[number]=1", fmt.Sprintf("page[size]=%d", size))

	model := url.Values{}
	model.Set("filterModel", jsonFilter)
	model.Set("sortModel", fmt.Sprintf(`[{"field":%q,"sort":"desc"}]`, sortField))
	model.Set("page", "0")
	model.Set("pageSize", fmt.Sprint(size))

	rowRange.Set("startRow", "0")
	rowRange.Set("endRow", fmt.Sprint(size))
	rowRange.Set("sortModel[0][colId]", sortField)
	rowRange.Set("sortModel[0][sort]", "desc")

	cursor := url.Values{}
	cursor.Set("limit", fmt.Sprint(size))
	cursor.Set("sort", sortField+":desc")

	return map[string]string{
		string(domain.FormatSimple):    "?" + simple.Encode(),
		string(domain.FormatBracket):   "?" + strings.Join(bracket, "&"),
		string(domain.FormatJSONModel): "?" + model.Encode(),
		string(domain.FormatRowRange):  "?" + rowRange.Encode(),
		"cursor":                       "?" + cursor.Encode(),
	}
}
