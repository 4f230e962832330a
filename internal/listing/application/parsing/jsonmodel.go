package parsing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	"go.uber.org/zap"
)

// JSONModelParser entiende los modelos JSON del DataGrid de MUI:
// filterModel={"items":[...]}, sortModel=[...] y page/pageSize 0-based.
type JSONModelParser struct {
	log *zap.Logger
}

func NewJSONModelParser(log *zap.Logger) *JSONModelParser {
	return &JSONModelParser{log: log}
}

func (p *JSONModelParser) Format() domain.FormatTag { return domain.FormatJSONModel }

func (p *JSONModelParser) CanHandle(raw url.Values) bool {
	return looksLikeJSON(raw.Get("filterModel")) || looksLikeJSON(raw.Get("sortModel"))
}

type dataGridItem struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`

	// Nombres de versiones anteriores del DataGrid.
	ColumnField   string `json:"columnField"`
	OperatorValue string `json:"operatorValue"`
}

type dataGridFilterModel struct {
	Items             []dataGridItem `json:"items"`
	LogicOperator     string         `json:"logicOperator"`
	LinkOperator      string         `json:"linkOperator"`
	QuickFilterValues []interface{}  `json:"quickFilterValues"`
}

type dataGridSortItem struct {
	Field string  `json:"field"`
	Sort  *string `json:"sort"`
}

type dataGridPagination struct {
	Page     *int `json:"page"`
	PageSize *int `json:"pageSize"`
}

func (p *JSONModelParser) Parse(raw url.Values) domain.ParsedRequest {
	req := domain.ParsedRequest{Format: domain.FormatJSONModel, FilterLogic: shared.OpAnd}

	var quick []string
	if s := strings.TrimSpace(raw.Get("filterModel")); s != "" {
		var model dataGridFilterModel
		if err := decodeJSON(s, &model); err != nil {
			p.log.Warn("Malformed filterModel, ignoring filters", zap.Error(err))
		} else {
			req.Filters = p.parseItems(model.Items)
			if logicIsOr(model.LogicOperator) || logicIsOr(model.LinkOperator) {
				req.FilterLogic = shared.OpOr
			}
			for _, v := range model.QuickFilterValues {
				if v == nil {
					continue
				}
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					quick = append(quick, s)
				}
			}
		}
	}

	if s := strings.TrimSpace(raw.Get("sortModel")); s != "" {
		var items []dataGridSortItem
		if err := decodeJSON(s, &items); err != nil {
			p.log.Warn("Malformed sortModel, ignoring sorting", zap.Error(err))
		} else {
			for _, it := range items {
				if it.Sort == nil {
					continue
				}
				name, ok := sanitizeField(p.log, it.Field)
				if !ok {
					continue
				}
				req.Sorting = append(req.Sorting, domain.RawSort{
					Field: name, Direction: normalizeDirection(*it.Sort), Priority: len(req.Sorting),
				})
			}
		}
	}

	term := strings.Join(quick, " ")
	if term == "" {
		term = raw.Get("search")
	}
	req.Search = newSearch(p.log, term, listValues(raw["searchFields"]), raw.Get("searchMode"))
	req.Pagination = p.parsePagination(raw)
	return req
}

func (p *JSONModelParser) parseItems(items []dataGridItem) []domain.RawFilter {
	var filters []domain.RawFilter
	for _, it := range items {
		field := it.Field
		if field == "" {
			field = it.ColumnField
		}
		opName := it.Operator
		if opName == "" {
			opName = it.OperatorValue
		}
		name, ok := sanitizeField(p.log, field)
		if !ok {
			continue
		}
		op, ok := dataGridOperators.lookup(opName)
		if !ok {
			p.log.Debug("Dropping filter with unknown operator",
				zap.String("field", name), zap.String("operator", opName))
			continue
		}

		value, present := jsonFilterValue(op, it.Value)
		if !present {
			// El DataGrid envía items sin valor mientras el usuario escribe.
			continue
		}
		filters = append(filters, domain.RawFilter{Field: name, Operator: op, Value: value})
	}
	return filters
}

// parsePagination: page es 0-based; paginationModel={"page":0,"pageSize":25} también vale.
func (p *JSONModelParser) parsePagination(raw url.Values) domain.RawPagination {
	rp := domain.RawPagination{Style: domain.StylePage, ZeroBased: true}
	if s := strings.TrimSpace(raw.Get("paginationModel")); s != "" {
		var pm dataGridPagination
		if err := decodeJSON(s, &pm); err != nil {
			p.log.Warn("Malformed paginationModel, using defaults", zap.Error(err))
		} else {
			rp.Page, rp.PageSize = pm.Page, pm.PageSize
		}
	}
	if rp.Page == nil {
		rp.Page = intParam(raw, &rp.Invalid, "page")
	}
	if rp.PageSize == nil {
		rp.PageSize = intParam(raw, &rp.Invalid, "pageSize")
	}
	if cursor, ok := firstValue(raw, "cursor"); ok {
		rp = domain.RawPagination{Style: domain.StyleCursor, Cursor: cursor, Limit: rp.PageSize, Invalid: rp.Invalid}
	}
	return rp
}

// ---------------- Helpers JSON ----------------

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// decodeJSON conserva los números como json.Number; los normalizadores deciden el tipo.
func decodeJSON(s string, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(dest)
}

func logicIsOr(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "or")
}

// jsonFilterValue adapta un valor JSON a la aridad del operador.
// present=false cuando un operador que necesita valor llega sin él.
func jsonFilterValue(op shared.Operator, v interface{}) (interface{}, bool) {
	if op.TakesNoValue() {
		return nil, true
	}
	if op.TakesList() || op == shared.OpBetween {
		switch t := v.(type) {
		case []interface{}:
			if len(t) == 0 {
				return nil, false
			}
			return t, true
		case string:
			parts := splitList(t)
			if len(parts) == 0 {
				return nil, false
			}
			return toInterfaces(parts), true
		case nil:
			return nil, false
		}
		return []interface{}{v}, true
	}
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
	}
	return v, true
}
