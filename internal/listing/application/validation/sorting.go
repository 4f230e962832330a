package validation

import (
	"fmt"
	"sort"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

var directions = []string{string(sharedQuery.Asc), string(sharedQuery.Desc)}

// ---------------- Ordenación ----------------

// validateSorting: sin entradas se usa el orden por defecto de la entidad.
// Superar el máximo de campos es un error, no un recorte silencioso.
func (v *Validator) validateSorting(schema *domain.EntitySchema, raw []domain.RawSort, errs *domain.ValidationErrorSet) []sharedQuery.Sort {
	if len(raw) == 0 {
		return schema.DefaultSort()
	}

	if len(raw) > v.policy.MaxSortFields {
		errs.Reject(domain.CategorySorting, "", domain.CodeTooManySortFields,
			fmt.Sprintf("at most %d sort fields are allowed, got %d", v.policy.MaxSortFields, len(raw)),
			nil, "sort=price:desc,name")
	}

	entries := append([]domain.RawSort(nil), raw...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Priority < entries[j].Priority })

	out := make([]sharedQuery.Sort, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		fd, ok := schema.Field(e.Field)
		if !ok {
			errs.Reject(domain.CategorySorting, e.Field, domain.CodeUnknownField,
				fmt.Sprintf("unknown field %q", e.Field), schema.SortableFields(), "")
			continue
		}
		if !fd.IsSortable() {
			errs.Reject(domain.CategorySorting, e.Field, domain.CodeNotSortable,
				fmt.Sprintf("field %q cannot be sorted", e.Field), schema.SortableFields(), "")
			continue
		}

		dir := e.Direction
		if dir == "" {
			dir = sharedQuery.Asc
		}
		if dir != sharedQuery.Asc && dir != sharedQuery.Desc {
			errs.Reject(domain.CategorySorting, e.Field, domain.CodeInvalidDirection,
				fmt.Sprintf("invalid sort direction %q", e.Direction), directions, "sort="+e.Field+":desc")
			continue
		}

		if seen[e.Field] {
			errs.Warn(domain.CategorySorting, e.Field, domain.CodeDuplicateSort,
				fmt.Sprintf("duplicate sort field %q ignored", e.Field))
			continue
		}
		seen[e.Field] = true
		out = append(out, sharedQuery.Sort{Field: fd.Name(), Direction: dir})
	}
	return out
}
