package parsing

import (
	"net/url"
	"sort"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	"go.uber.org/zap"
)

// RowRangeParser entiende el modelo de filas del servidor de AG Grid:
// startRow/endRow, filterModel por columna y sortModel con colId/sort.
// Los modelos pueden llegar como JSON o con corchetes.
type RowRangeParser struct {
	log *zap.Logger
}

func NewRowRangeParser(log *zap.Logger) *RowRangeParser {
	return &RowRangeParser{log: log}
}

func (p *RowRangeParser) Format() domain.FormatTag { return domain.FormatRowRange }

func (p *RowRangeParser) CanHandle(raw url.Values) bool {
	_, start := raw["startRow"]
	_, end := raw["endRow"]
	return start || end
}

func (p *RowRangeParser) Parse(raw url.Values) domain.ParsedRequest {
	req := domain.ParsedRequest{Format: domain.FormatRowRange, FilterLogic: shared.OpAnd}

	if model, ok := p.model(raw, "filterModel").(map[string]interface{}); ok {
		cols := make([]string, 0, len(model))
		for c := range model {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, col := range cols {
			name, ok := sanitizeField(p.log, col)
			if !ok {
				continue
			}
			colModel, ok := model[col].(map[string]interface{})
			if !ok {
				p.log.Debug("Dropping malformed column filter", zap.String("field", name))
				continue
			}
			filters, or := p.parseColumn(name, colModel)
			req.Filters = append(req.Filters, filters...)
			if or {
				req.FilterLogic = shared.OpOr
			}
		}
	}

	if items, ok := p.model(raw, "sortModel").([]interface{}); ok {
		for _, it := range items {
			m, ok := it.(map[string]interface{})
			if !ok {
				continue
			}
			name, ok := sanitizeField(p.log, stringOf(m["colId"]))
			if !ok {
				continue
			}
			req.Sorting = append(req.Sorting, domain.RawSort{
				Field: name, Direction: normalizeDirection(stringOf(m["sort"])), Priority: len(req.Sorting),
			})
		}
	}

	term, _ := firstValue(raw, "quickFilter", "search")
	req.Search = newSearch(p.log, term, listValues(raw["searchFields"]), raw.Get("searchMode"))

	req.Pagination = domain.RawPagination{Style: domain.StyleRowRange}
	req.Pagination.StartRow = intParam(raw, &req.Pagination.Invalid, "startRow")
	req.Pagination.EndRow = intParam(raw, &req.Pagination.Invalid, "endRow")
	return req
}

// model devuelve el modelo decodificado, venga como JSON o como árbol de corchetes.
func (p *RowRangeParser) model(raw url.Values, key string) interface{} {
	if s := strings.TrimSpace(raw.Get(key)); looksLikeJSON(s) {
		var out interface{}
		if err := decodeJSON(s, &out); err != nil {
			p.log.Warn("Malformed model, ignoring", zap.String("param", key), zap.Error(err))
			return nil
		}
		return out
	}
	return bracketTree(raw, key).toInterface()
}

// parseColumn admite condiciones simples y combinadas (operator + conditions, o condition1/condition2).
func (p *RowRangeParser) parseColumn(field string, m map[string]interface{}) ([]domain.RawFilter, bool) {
	var conds []interface{}
	if list, ok := m["conditions"].([]interface{}); ok {
		conds = list
	} else if c1, ok := m["condition1"]; ok {
		conds = []interface{}{c1, m["condition2"]}
	}
	if conds == nil {
		if f, ok := p.parseCondition(field, m); ok {
			return []domain.RawFilter{f}, false
		}
		return nil, false
	}

	filterType := m["filterType"]
	var out []domain.RawFilter
	for _, c := range conds {
		cm, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		if _, has := cm["filterType"]; !has {
			cm["filterType"] = filterType
		}
		if f, ok := p.parseCondition(field, cm); ok {
			out = append(out, f)
		}
	}
	return out, logicIsOr(stringOf(m["operator"])) && len(out) > 1
}

func (p *RowRangeParser) parseCondition(field string, m map[string]interface{}) (domain.RawFilter, bool) {
	filterType := stringOf(m["filterType"])
	if filterType == "set" {
		return domain.RawFilter{Field: field, Operator: shared.OpIn, Value: asList(m["values"])}, true
	}

	typeName := stringOf(m["type"])
	op, ok := agGridOperators.lookup(typeName)
	if !ok {
		p.log.Debug("Dropping filter with unknown operator",
			zap.String("field", field), zap.String("operator", typeName))
		return domain.RawFilter{}, false
	}

	from, to := m["filter"], m["filterTo"]
	if filterType == "date" {
		from, to = m["dateFrom"], m["dateTo"]
	}

	switch {
	case op.TakesNoValue():
		return domain.RawFilter{Field: field, Operator: op}, true
	case op == shared.OpBetween:
		if isBlank(from) || isBlank(to) {
			return domain.RawFilter{}, false
		}
		return domain.RawFilter{Field: field, Operator: op, Value: []interface{}{from, to}}, true
	case isBlank(from):
		return domain.RawFilter{}, false
	}
	return domain.RawFilter{Field: field, Operator: op, Value: from}, true
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// asList acepta una lista JSON, una hoja repetida o un único valor.
func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case nil:
		return []interface{}{}
	}
	return []interface{}{v}
}
