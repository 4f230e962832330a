package parsing

import (
	"net/url"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	"go.uber.org/zap"
)

// opSeparator separa campo y operador en la convención simple: price__gte=10.
const opSeparator = "__"

// Claves que nunca se interpretan como filtro.
var reservedKeys = map[string]bool{
	"page": true, "pageSize": true, "per_page": true, "limit": true, "offset": true,
	"cursor": true, "after": true, "search": true, "q": true, "searchFields": true,
	"searchMode": true, "sort": true, "sortBy": true, "sortOrder": true,
	"format": true, "fields": true,
}

// SimpleParser entiende key=value plano. Es el último recurso: nunca rechaza.
type SimpleParser struct {
	log *zap.Logger
}

func NewSimpleParser(log *zap.Logger) *SimpleParser {
	return &SimpleParser{log: log}
}

func (p *SimpleParser) Format() domain.FormatTag { return domain.FormatSimple }

func (p *SimpleParser) CanHandle(url.Values) bool { return true }

func (p *SimpleParser) Parse(raw url.Values) domain.ParsedRequest {
	return domain.ParsedRequest{
		Format:      domain.FormatSimple,
		Filters:     p.parseFilters(raw),
		FilterLogic: shared.OpAnd,
		Search:      p.parseSearch(raw),
		Sorting:     p.parseSorting(raw),
		Pagination:  parsePlainPagination(raw),
	}
}

// ---------------- Filtros ----------------

func (p *SimpleParser) parseFilters(raw url.Values) []domain.RawFilter {
	var filters []domain.RawFilter
	for _, key := range sortedKeys(raw) {
		if reservedKeys[key] || strings.ContainsAny(key, "[]") {
			continue
		}
		values := raw[key]
		field, opName := key, ""
		if i := strings.LastIndex(key, opSeparator); i > 0 {
			field, opName = key[:i], key[i+len(opSeparator):]
		}
		name, ok := sanitizeField(p.log, field)
		if !ok {
			continue
		}

		op := shared.OpEquals
		if opName != "" {
			resolved, ok := restOperators.lookup(opName)
			if !ok {
				p.log.Debug("Dropping filter with unknown operator",
					zap.String("field", name), zap.String("operator", opName))
				continue
			}
			op = resolved
		} else if len(values) > 1 {
			// status=a&status=b equivale a status__in=a,b
			op = shared.OpIn
		}

		op, value := shapeFilter(op, values)
		filters = append(filters, domain.RawFilter{Field: name, Operator: op, Value: value})
	}
	return filters
}

// ---------------- Ordenación ----------------

func (p *SimpleParser) parseSorting(raw url.Values) []domain.RawSort {
	if by, ok := firstValue(raw, "sortBy"); ok {
		fields := splitList(by)
		orders := splitList(raw.Get("sortOrder"))
		var out []domain.RawSort
		for i, f := range fields {
			name, ok := sanitizeField(p.log, f)
			if !ok {
				continue
			}
			dir := ""
			switch {
			case i < len(orders):
				dir = orders[i]
			case len(orders) == 1:
				dir = orders[0]
			}
			out = append(out, domain.RawSort{Field: name, Direction: normalizeDirection(dir), Priority: len(out)})
		}
		return out
	}
	if expr, ok := firstValue(raw, "sort"); ok {
		return parseSortExpr(p.log, expr, 0)
	}
	return nil
}

// ---------------- Búsqueda ----------------

func (p *SimpleParser) parseSearch(raw url.Values) *domain.RawSearch {
	term, _ := firstValue(raw, "search", "q")
	return newSearch(p.log, term, listValues(raw["searchFields"]), raw.Get("searchMode"))
}

// ---------------- Paginación ----------------

// parsePlainPagination resuelve page/pageSize, limit/offset y cursor/after sin corchetes.
// Prioridad: cursor, luego offset, luego página. La clave cursor (aunque vaya vacía)
// o un limit sin page ni offset piden paginación por cursor desde el inicio.
func parsePlainPagination(raw url.Values) domain.RawPagination {
	var rp domain.RawPagination

	_, hasCursor := raw["cursor"]
	_, hasAfter := raw["after"]
	_, hasPage := raw["page"]
	_, hasOffset := raw["offset"]
	_, hasLimit := raw["limit"]
	if hasCursor || hasAfter || (hasLimit && !hasPage && !hasOffset) {
		rp.Style = domain.StyleCursor
		rp.Cursor, _ = firstValue(raw, "cursor", "after")
		rp.Limit = intParam(raw, &rp.Invalid, "limit", "pageSize", "per_page")
		return rp
	}
	if _, ok := firstValue(raw, "offset"); ok {
		rp.Style = domain.StyleOffset
		rp.Offset = intParam(raw, &rp.Invalid, "offset")
		rp.Limit = intParam(raw, &rp.Invalid, "limit", "pageSize", "per_page")
		return rp
	}

	rp.Style = domain.StylePage
	rp.Page = intParam(raw, &rp.Invalid, "page")
	rp.PageSize = intParam(raw, &rp.Invalid, "pageSize", "per_page", "limit")
	return rp
}
