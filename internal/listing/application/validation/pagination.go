package validation

import (
	"fmt"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"go.uber.org/zap"
)

// ---------------- Paginación ----------------
//
// La paginación corrige y avisa en lugar de rechazar. Un cursor que no
// verifica se trata como ausente y solo se registra en el log.

func (v *Validator) validatePagination(schema *domain.EntitySchema, raw domain.RawPagination, sorting []sharedQuery.Sort, errs *domain.ValidationErrorSet) (domain.ValidatedPagination, []sharedQuery.Sort) {
	for _, key := range raw.Invalid {
		errs.Warn(domain.CategoryPagination, key, domain.CodeInvalidPageValue,
			fmt.Sprintf("%s must be an integer; default applied", key))
	}

	switch raw.Style {
	case domain.StyleOffset:
		return v.offsetPagination(raw, errs), sorting
	case domain.StyleRowRange:
		return v.rowRangePagination(raw, errs), sorting
	case domain.StyleCursor:
		if !schema.HasField(schema.IDField()) {
			v.log.Warn("Cursor pagination needs an id field, using pages",
				zap.String("entity", schema.Name()))
			return v.pagePagination(domain.RawPagination{Style: domain.StylePage, PageSize: raw.Limit}, errs), sorting
		}
		return v.cursorPagination(schema, raw, sorting, errs)
	}
	return v.pagePagination(raw, errs), sorting
}

func (v *Validator) pagePagination(raw domain.RawPagination, errs *domain.ValidationErrorSet) domain.ValidatedPagination {
	size := v.clampSize(raw.PageSize, "pageSize", errs)

	page := 1
	if raw.Page != nil {
		page = *raw.Page
		if raw.ZeroBased {
			page++
		}
		if page < 1 {
			errs.Warn(domain.CategoryPagination, "page", domain.CodePageClamped,
				fmt.Sprintf("page %d is below the minimum; using the first page", *raw.Page))
			page = 1
		}
	}
	return domain.ValidatedPagination{
		Strategy:  domain.StrategyOffset,
		Style:     domain.StylePage,
		Page:      page,
		PageSize:  size,
		Offset:    (page - 1) * size,
		ZeroBased: raw.ZeroBased,
	}
}

func (v *Validator) offsetPagination(raw domain.RawPagination, errs *domain.ValidationErrorSet) domain.ValidatedPagination {
	size := v.clampSize(raw.Limit, "limit", errs)
	offset := v.clampOffset(raw.Offset, "offset", errs)
	return domain.ValidatedPagination{
		Strategy: domain.StrategyOffset,
		Style:    domain.StyleOffset,
		Page:     offset/size + 1,
		PageSize: size,
		Offset:   offset,
	}
}

// rowRangePagination: startRow inclusivo, endRow exclusivo, ambos 0-based.
func (v *Validator) rowRangePagination(raw domain.RawPagination, errs *domain.ValidationErrorSet) domain.ValidatedPagination {
	start := v.clampOffset(raw.StartRow, "startRow", errs)

	var requested *int
	if raw.EndRow != nil {
		n := *raw.EndRow - start
		requested = &n
	}
	size := v.clampSize(requested, "endRow", errs)

	return domain.ValidatedPagination{
		Strategy: domain.StrategyOffset,
		Style:    domain.StyleRowRange,
		Page:     start/size + 1,
		PageSize: size,
		Offset:   start,
	}
}

// cursorPagination deja un único orden primario (el id se añade como desempate al traducir)
// y verifica el cursor contra la entidad y ese orden.
func (v *Validator) cursorPagination(schema *domain.EntitySchema, raw domain.RawPagination, sorting []sharedQuery.Sort, errs *domain.ValidationErrorSet) (domain.ValidatedPagination, []sharedQuery.Sort) {
	size := v.clampSize(raw.Limit, "limit", errs)
	out := domain.ValidatedPagination{
		Strategy: domain.StrategyCursor,
		Style:    domain.StyleCursor,
		Page:     1,
		PageSize: size,
	}

	if len(sorting) > 1 {
		errs.Warn(domain.CategorySorting, sorting[1].Field, domain.CodeSortTrimmed,
			fmt.Sprintf("cursor pagination orders by %s and %s only; extra sort fields ignored",
				sorting[0].Field, schema.IDField()))
		sorting = sorting[:1]
	}

	if raw.Cursor == "" || len(sorting) == 0 {
		return out, sorting
	}
	if pos, ok := v.decodeCursor(schema, raw.Cursor, sorting[0]); ok {
		out.Cursor = raw.Cursor
		out.After = pos
	}
	return out, sorting
}

// decodeCursor falla cerrado: cualquier problema equivale a no haber enviado cursor.
func (v *Validator) decodeCursor(schema *domain.EntitySchema, token string, primary sharedQuery.Sort) (*domain.CursorPosition, bool) {
	reject := func(reason string, err error) (*domain.CursorPosition, bool) {
		v.log.Warn("Ignoring cursor",
			zap.String("entity", schema.Name()),
			zap.String("reason", reason),
			zap.Error(err))
		return nil, false
	}

	if v.codec == nil {
		return reject("cursor pagination is not configured", nil)
	}
	pos, err := v.codec.Decode(token)
	if err != nil {
		return reject("integrity check failed", err)
	}
	if pos.Entity != schema.Name() || pos.Sort != domain.SortSignature(primary) {
		return reject("cursor belongs to another listing", nil)
	}

	norm := *pos
	normalize := func(field string, value interface{}) (interface{}, error) {
		if field == "" || value == nil {
			return value, nil
		}
		fd, ok := schema.Field(field)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %s", domain.ErrInvalidCursor, field)
		}
		return fd.Normalize(value)
	}
	if norm.ID, err = normalize(schema.IDField(), pos.ID); err != nil {
		return reject("invalid id", err)
	}
	if norm.TimeValue, err = normalize(pos.TimeField, pos.TimeValue); err != nil {
		return reject("invalid timestamp", err)
	}
	if norm.KeyValue, err = normalize(pos.KeyField, pos.KeyValue); err != nil {
		return reject("invalid sort key", err)
	}
	if _, err := norm.Keyset(primary, schema.IDField()); err != nil {
		return reject("incomplete position", err)
	}
	return &norm, true
}

// ---------------- Límites ----------------

// clampSize corrige el tamaño de página a [1, MaxPageSize]; nil usa el tamaño por defecto.
func (v *Validator) clampSize(n *int, key string, errs *domain.ValidationErrorSet) int {
	if n == nil {
		return v.policy.DefaultPageSize
	}
	switch {
	case *n < 1:
		errs.Warn(domain.CategoryPagination, key, domain.CodePageSizeClamped,
			fmt.Sprintf("%s %d is below the minimum; using 1", key, *n))
		return 1
	case *n > v.policy.MaxPageSize:
		errs.Warn(domain.CategoryPagination, key, domain.CodePageSizeClamped,
			fmt.Sprintf("%s %d exceeds the maximum; using %d", key, *n, v.policy.MaxPageSize))
		return v.policy.MaxPageSize
	}
	return *n
}

func (v *Validator) clampOffset(n *int, key string, errs *domain.ValidationErrorSet) int {
	if n == nil {
		return 0
	}
	if *n < 0 {
		errs.Warn(domain.CategoryPagination, key, domain.CodeOffsetClamped,
			fmt.Sprintf("%s %d is negative; using 0", key, *n))
		return 0
	}
	return *n
}
