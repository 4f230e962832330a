package parsing

import (
	"net/url"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	"go.uber.org/zap"
)

// BracketParser entiende filter[campo][op]=valor, sort[i][field] y page[number]/page[size].
type BracketParser struct {
	log *zap.Logger
}

func NewBracketParser(log *zap.Logger) *BracketParser {
	return &BracketParser{log: log}
}

func (p *BracketParser) Format() domain.FormatTag { return domain.FormatBracket }

func (p *BracketParser) CanHandle(raw url.Values) bool {
	return hasBracketRoot(raw, "filter", "sort", "page", "search")
}

func (p *BracketParser) Parse(raw url.Values) domain.ParsedRequest {
	return domain.ParsedRequest{
		Format:      domain.FormatBracket,
		Filters:     p.parseFilters(bracketTree(raw, "filter")),
		FilterLogic: shared.OpAnd,
		Search:      p.parseSearch(raw),
		Sorting:     p.parseSorting(bracketTree(raw, "sort")),
		Pagination:  p.parsePagination(raw),
	}
}

// ---------------- Filtros ----------------

func (p *BracketParser) parseFilters(tree *node) []domain.RawFilter {
	if tree == nil {
		return nil
	}
	var filters []domain.RawFilter
	for _, field := range tree.keys() {
		fnode := tree.children[field]
		name, ok := sanitizeField(p.log, field)
		if !ok {
			continue
		}

		// filter[f]=v, filter[f][]=a&filter[f][]=b o filter[f][0]=a
		if len(fnode.values) > 0 || fnode.isList() {
			values := fnode.flatValues()
			op := shared.OpEquals
			if len(values) > 1 {
				op = shared.OpIn
			}
			op, value := shapeFilter(op, values)
			filters = append(filters, domain.RawFilter{Field: name, Operator: op, Value: value})
			if fnode.isList() {
				continue
			}
		}

		for _, opName := range fnode.keys() {
			op, ok := restOperators.lookup(opName)
			if !ok {
				p.log.Debug("Dropping filter with unknown operator",
					zap.String("field", name), zap.String("operator", opName))
				continue
			}
			op, value := shapeFilter(op, fnode.children[opName].flatValues())
			filters = append(filters, domain.RawFilter{Field: name, Operator: op, Value: value})
		}
	}
	return filters
}

// ---------------- Ordenación ----------------

func (p *BracketParser) parseSorting(tree *node) []domain.RawSort {
	if tree == nil {
		return nil
	}
	var out []domain.RawSort
	for _, expr := range tree.values {
		out = append(out, parseSortExpr(p.log, expr, len(out))...)
	}

	if tree.isList() {
		// sort[0][field]=price&sort[0][direction]=desc
		for _, idx := range tree.keys() {
			entry := tree.children[idx]
			field := entry.child("field").first()
			if field == "" {
				field = entry.child("colId").first()
			}
			name, ok := sanitizeField(p.log, field)
			if !ok {
				continue
			}
			dir := entry.child("direction").first()
			if dir == "" {
				dir = entry.child("dir").first()
			}
			out = append(out, domain.RawSort{Field: name, Direction: normalizeDirection(dir), Priority: len(out)})
		}
		return out
	}

	// sort[price]=desc
	for _, field := range tree.keys() {
		name, ok := sanitizeField(p.log, field)
		if !ok {
			continue
		}
		out = append(out, domain.RawSort{
			Field:     name,
			Direction: normalizeDirection(tree.children[field].first()),
			Priority:  len(out),
		})
	}
	return out
}

// ---------------- Búsqueda ----------------

func (p *BracketParser) parseSearch(raw url.Values) *domain.RawSearch {
	tree := bracketTree(raw, "search")
	if tree == nil {
		term, _ := firstValue(raw, "q")
		return newSearch(p.log, term, listValues(raw["searchFields"]), raw.Get("searchMode"))
	}

	term := tree.first()
	if term == "" {
		term = tree.child("term").first()
	}
	fields := listValues(tree.child("fields").flatValues())
	if len(fields) == 0 {
		fields = listValues(raw["searchFields"])
	}
	mode := tree.child("mode").first()
	if mode == "" {
		mode = raw.Get("searchMode")
	}
	return newSearch(p.log, term, fields, mode)
}

// ---------------- Paginación ----------------

func (p *BracketParser) parsePagination(raw url.Values) domain.RawPagination {
	tree := bracketTree(raw, "page")
	if tree == nil || len(tree.children) == 0 {
		return parsePlainPagination(raw)
	}

	var rp domain.RawPagination
	leafInt := func(key string, n *node) *int {
		if s := n.first(); s != "" {
			return atoiOrInvalid(key, s, &rp.Invalid)
		}
		return nil
	}

	if after := firstNode(tree, "after", "cursor"); after != nil {
		rp.Style = domain.StyleCursor
		rp.Cursor = after.first()
		rp.Limit = leafInt("page[size]", firstNode(tree, "size", "limit"))
		if rp.Limit == nil {
			rp.Limit = intParam(raw, &rp.Invalid, "limit")
		}
		return rp
	}
	if off := tree.child("offset"); off != nil {
		rp.Style = domain.StyleOffset
		rp.Offset = leafInt("page[offset]", off)
		rp.Limit = leafInt("page[limit]", firstNode(tree, "limit", "size"))
		return rp
	}

	rp.Style = domain.StylePage
	rp.Page = leafInt("page[number]", tree.child("number"))
	rp.PageSize = leafInt("page[size]", tree.child("size"))
	if rp.PageSize == nil {
		rp.PageSize = intParam(raw, &rp.Invalid, "pageSize", "per_page")
	}
	return rp
}

func firstNode(tree *node, names ...string) *node {
	for _, n := range names {
		if c := tree.child(n); c != nil {
			return c
		}
	}
	return nil
}
