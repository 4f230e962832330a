package validation

import (
	"fmt"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
)

// ---------------- Filtros ----------------

func (v *Validator) validateFilters(schema *domain.EntitySchema, parsed domain.ParsedRequest, errs *domain.ValidationErrorSet) []domain.ValidatedFilter {
	if parsed.FilterLogic == shared.OpOr && len(parsed.Filters) > 1 {
		errs.Reject(domain.CategoryFilter, "", domain.CodeUnsupportedLogic,
			"OR filter logic is not supported; filters are combined with AND", []string{"and"}, "")
	}

	out := make([]domain.ValidatedFilter, 0, len(parsed.Filters))
	for _, f := range parsed.Filters {
		if vf, ok := v.validateFilter(schema, f, errs); ok {
			out = append(out, vf)
		}
	}
	return v.coalesceRanges(schema, out, errs)
}

// validateFilter aplica en orden: existencia, filtrable, operador permitido, forma y normalización.
func (v *Validator) validateFilter(schema *domain.EntitySchema, f domain.RawFilter, errs *domain.ValidationErrorSet) (domain.ValidatedFilter, bool) {
	fd, ok := schema.Field(f.Field)
	if !ok {
		errs.Reject(domain.CategoryFilter, f.Field, domain.CodeUnknownField,
			fmt.Sprintf("unknown field %q", f.Field), schema.FilterableFields(), "")
		return domain.ValidatedFilter{}, false
	}
	if !fd.IsFilterable() {
		errs.Reject(domain.CategoryFilter, f.Field, domain.CodeNotFilterable,
			fmt.Sprintf("field %q cannot be filtered", f.Field), schema.FilterableFields(), "")
		return domain.ValidatedFilter{}, false
	}
	if !fd.Allows(f.Operator) {
		errs.Reject(domain.CategoryFilter, f.Field, domain.CodeOperatorNotAllowed,
			fmt.Sprintf("operator %q is not allowed on field %q", f.Operator, f.Field),
			operatorNames(fd.Operators()), firstExample(fd))
		return domain.ValidatedFilter{}, false
	}

	value, code, err := v.shapeValue(fd, f.Operator, f.Value)
	if err != nil {
		errs.Reject(domain.CategoryFilter, f.Field, code,
			fmt.Sprintf("invalid value for %s %s: %v", f.Field, f.Operator, err),
			allowedValues(fd), FilterExample(fd, f.Operator))
		return domain.ValidatedFilter{}, false
	}
	return domain.ValidatedFilter{Field: fd.Name(), Operator: f.Operator, Value: value}, true
}

// shapeValue comprueba la aridad del operador y normaliza cada valor al tipo del campo.
func (v *Validator) shapeValue(fd *domain.FieldDescriptor, op shared.Operator, raw interface{}) (interface{}, string, error) {
	switch {
	case op.TakesNoValue():
		return nil, "", nil

	case op.TakesList():
		items := asList(raw)
		if len(items) == 0 {
			return nil, domain.CodeEmptyList, fmt.Errorf("%s requires a non-empty list", op)
		}
		if len(items) > v.policy.MaxInValues {
			return nil, domain.CodeTooManyValues, fmt.Errorf("at most %d values allowed", v.policy.MaxInValues)
		}
		out := make([]interface{}, 0, len(items))
		for _, it := range items {
			n, err := fd.Normalize(it)
			if err != nil {
				return nil, domain.CodeInvalidValue, fmt.Errorf("%v %w", it, err)
			}
			out = append(out, n)
		}
		return out, "", nil

	case op == shared.OpBetween:
		items := asList(raw)
		if len(items) != 2 {
			return nil, domain.CodeInvalidRange, fmt.Errorf("between requires exactly two bounds, got %d", len(items))
		}
		lo, err := fd.Normalize(items[0])
		if err != nil {
			return nil, domain.CodeInvalidValue, fmt.Errorf("lower bound %w", err)
		}
		hi, err := fd.Normalize(items[1])
		if err != nil {
			return nil, domain.CodeInvalidValue, fmt.Errorf("upper bound %w", err)
		}
		if c, ok := domain.CompareValues(lo, hi); ok && c > 0 {
			return nil, domain.CodeInvalidRange, fmt.Errorf("lower bound must not exceed upper bound")
		}
		return []interface{}{lo, hi}, "", nil
	}

	if _, isList := raw.([]interface{}); isList {
		return nil, domain.CodeInvalidValue, domain.ErrNotScalar
	}
	n, err := fd.Normalize(raw)
	if err != nil {
		return nil, domain.CodeInvalidValue, err
	}
	if op.IsTextMatch() {
		if s, ok := n.(string); ok && strings.TrimSpace(s) == "" {
			return nil, domain.CodeInvalidValue, fmt.Errorf("%s requires a non-empty value", op)
		}
	}
	return n, "", nil
}

// coalesceRanges une un gte y un lte del mismo campo en un único between cuando el campo lo admite.
func (v *Validator) coalesceRanges(schema *domain.EntitySchema, filters []domain.ValidatedFilter, errs *domain.ValidationErrorSet) []domain.ValidatedFilter {
	type bounds struct{ gte, lte, count int }
	idx := map[string]*bounds{}
	var order []string
	for i, f := range filters {
		b, ok := idx[f.Field]
		if !ok {
			b = &bounds{gte: -1, lte: -1}
			idx[f.Field] = b
			order = append(order, f.Field)
		}
		b.count++
		switch f.Operator {
		case shared.OpGte:
			b.gte = i
		case shared.OpLte:
			b.lte = i
		}
	}

	drop := map[int]bool{}
	for _, field := range order {
		b := idx[field]
		if b.count != 2 || b.gte < 0 || b.lte < 0 {
			continue
		}
		fd, _ := schema.Field(field)
		lo, hi := filters[b.gte].Value, filters[b.lte].Value
		if c, ok := domain.CompareValues(lo, hi); ok && c > 0 {
			errs.Reject(domain.CategoryFilter, field, domain.CodeInvalidRange,
				fmt.Sprintf("invalid range for %s: lower bound must not exceed upper bound", field),
				nil, FilterExample(fd, shared.OpBetween))
			continue
		}
		if !fd.Allows(shared.OpBetween) {
			continue
		}
		first, second := b.gte, b.lte
		if second < first {
			first, second = second, first
		}
		filters[first] = domain.ValidatedFilter{Field: field, Operator: shared.OpBetween, Value: []interface{}{lo, hi}}
		drop[second] = true
	}

	if len(drop) == 0 {
		return filters
	}
	out := make([]domain.ValidatedFilter, 0, len(filters)-len(drop))
	for i, f := range filters {
		if !drop[i] {
			out = append(out, f)
		}
	}
	return out
}

func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return []interface{}{v}
}

func allowedValues(fd *domain.FieldDescriptor) []string {
	if opts := fd.EnumOptions(); len(opts) > 0 {
		return opts
	}
	return nil
}
