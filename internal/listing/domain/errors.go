package domain

import (
	"fmt"
	"strings"
)

// Category agrupa las violaciones por la parte de la petición que las produjo.
type Category string

const (
	CategoryFilter     Category = "filter"
	CategorySearch     Category = "search"
	CategorySorting    Category = "sorting"
	CategoryPagination Category = "pagination"
)

// Severity: los errores invalidan la petición, los avisos no.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Códigos estables para que el cliente pueda reaccionar sin parsear mensajes.
const (
	CodeUnknownField       = "unknown_field"
	CodeNotFilterable      = "field_not_filterable"
	CodeOperatorNotAllowed = "operator_not_allowed"
	CodeInvalidValue       = "invalid_value"
	CodeInvalidRange       = "invalid_range"
	CodeEmptyList          = "empty_list"
	CodeTooManyValues      = "too_many_values"
	CodeUnsupportedLogic   = "unsupported_logic"

	CodeSearchEmpty         = "search_term_empty"
	CodeSearchTooLong       = "search_term_too_long"
	CodeSearchFieldsInvalid = "search_fields_invalid"
	CodeSearchFieldIgnored  = "search_field_ignored"
	CodeSearchModeInvalid   = "search_mode_invalid"
	CodeSearchUnavailable   = "search_unavailable"

	CodeNotSortable       = "field_not_sortable"
	CodeInvalidDirection  = "invalid_direction"
	CodeTooManySortFields = "too_many_sort_fields"
	CodeSortTrimmed       = "sort_trimmed_for_cursor"
	CodeDuplicateSort     = "duplicate_sort_field"

	CodePageClamped      = "page_clamped"
	CodePageSizeClamped  = "page_size_clamped"
	CodeOffsetClamped    = "offset_clamped"
	CodeInvalidPageValue = "invalid_pagination_value"
	CodeInvalidCursor    = "invalid_cursor"
)

// ValidationError es una violación con detalle suficiente para autocorregirse.
type ValidationError struct {
	Category Category `json:"category"`
	Field    string   `json:"field,omitempty"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Allowed  []string `json:"allowed,omitempty"`
	Example  string   `json:"example,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Category, e.Field, e.Message)
}

// ValidationErrorSet acumula violaciones en orden de detección.
// El valor cero está listo para usarse.
type ValidationErrorSet struct {
	entries []ValidationError
}

func (s *ValidationErrorSet) Add(e ValidationError) {
	if e.Severity == "" {
		e.Severity = SeverityError
	}
	s.entries = append(s.entries, e)
}

// Reject añade un error con los valores permitidos como sugerencia.
func (s *ValidationErrorSet) Reject(cat Category, field, code, msg string, allowed []string, example string) {
	s.Add(ValidationError{
		Category: cat, Field: field, Code: code, Message: msg,
		Severity: SeverityError, Allowed: allowed, Example: example,
	})
}

// Warn añade un aviso no fatal.
func (s *ValidationErrorSet) Warn(cat Category, field, code, msg string) {
	s.Add(ValidationError{Category: cat, Field: field, Code: code, Message: msg, Severity: SeverityWarning})
}

func (s *ValidationErrorSet) Entries() []ValidationError {
	return append([]ValidationError(nil), s.entries...)
}

func (s *ValidationErrorSet) Errors() []ValidationError {
	return s.filter(SeverityError)
}

func (s *ValidationErrorSet) Warnings() []ValidationError {
	return s.filter(SeverityWarning)
}

func (s *ValidationErrorSet) filter(sev Severity) []ValidationError {
	var out []ValidationError
	for _, e := range s.entries {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

func (s *ValidationErrorSet) HasErrors() bool {
	for _, e := range s.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (s *ValidationErrorSet) Len() int {
	return len(s.entries)
}

// Error resume los errores fatales; permite tratar el set como error en los logs.
func (s *ValidationErrorSet) Error() string {
	errs := s.Errors()
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d validation error(s): %s", len(errs), strings.Join(msgs, "; "))
}
