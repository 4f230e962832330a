package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/davicafu/hexaquery/internal/listing/domain"
)

var searchModes = []string{
	string(domain.SearchContains), string(domain.SearchStartsWith), string(domain.SearchExact),
}

// ---------------- Búsqueda ----------------

func (v *Validator) validateSearch(schema *domain.EntitySchema, raw *domain.RawSearch, errs *domain.ValidationErrorSet) *domain.ValidatedSearch {
	if raw == nil {
		return nil
	}
	before := len(errs.Errors())

	term := strings.TrimSpace(raw.Term)
	switch {
	case term == "":
		errs.Reject(domain.CategorySearch, "", domain.CodeSearchEmpty,
			"search term must not be empty", nil, "search=lamp")
	case utf8.RuneCountInString(term) > v.policy.MaxSearchLength:
		errs.Reject(domain.CategorySearch, "", domain.CodeSearchTooLong,
			fmt.Sprintf("search term exceeds %d characters", v.policy.MaxSearchLength), nil, "")
	}

	mode := raw.Mode
	if mode == "" {
		mode = domain.SearchContains
	}
	if _, ok := mode.Operator(); !ok {
		errs.Reject(domain.CategorySearch, "", domain.CodeSearchModeInvalid,
			fmt.Sprintf("unknown search mode %q", raw.Mode), searchModes, "searchMode=startsWith")
	}

	searchable := schema.SearchableFields()
	fields := v.searchFields(schema, raw.Fields, searchable, errs)

	if len(errs.Errors()) > before {
		return nil
	}
	return &domain.ValidatedSearch{Term: term, Fields: fields, Mode: mode}
}

// searchFields intersecta lo pedido con los campos buscables.
// Sin campos pedidos se usan todos; si ninguno de los pedidos vale es un error.
func (v *Validator) searchFields(schema *domain.EntitySchema, requested, searchable []string, errs *domain.ValidationErrorSet) []string {
	if len(searchable) == 0 {
		errs.Reject(domain.CategorySearch, "", domain.CodeSearchUnavailable,
			fmt.Sprintf("entity %q has no searchable fields", schema.Name()), nil, "")
		return nil
	}
	if len(requested) == 0 {
		return searchable
	}

	var valid, invalid []string
	seen := map[string]bool{}
	for _, f := range requested {
		if seen[f] {
			continue
		}
		seen[f] = true
		if fd, ok := schema.Field(f); ok && fd.IsSearchable() {
			valid = append(valid, f)
		} else {
			invalid = append(invalid, f)
		}
	}

	if len(valid) == 0 {
		errs.Reject(domain.CategorySearch, strings.Join(invalid, ","), domain.CodeSearchFieldsInvalid,
			"none of the requested search fields are searchable", searchable, "searchFields="+searchable[0])
		return nil
	}
	for _, f := range invalid {
		errs.Warn(domain.CategorySearch, f, domain.CodeSearchFieldIgnored,
			fmt.Sprintf("field %q is not searchable and was ignored", f))
	}
	return valid
}
