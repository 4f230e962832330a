package parsing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
	"go.uber.org/zap"
)

// ---------------- Parámetros escalares ----------------

// firstValue devuelve el primer valor no vacío de la primera clave presente.
func firstValue(raw url.Values, keys ...string) (string, bool) {
	for _, k := range keys {
		if vs, ok := raw[k]; ok {
			for _, v := range vs {
				if s := strings.TrimSpace(v); s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

// intParam lee un entero; si la clave existe pero no es numérica la apunta en invalid.
func intParam(raw url.Values, invalid *[]string, keys ...string) *int {
	for _, k := range keys {
		s, ok := firstValue(raw, k)
		if !ok {
			continue
		}
		return atoiOrInvalid(k, s, invalid)
	}
	return nil
}

func atoiOrInvalid(key, s string, invalid *[]string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		*invalid = append(*invalid, key)
		return nil
	}
	return &n
}

// splitList parte "a, b,,c" en ["a","b","c"].
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listValues acepta valores repetidos o una única lista separada por comas.
func listValues(values []string) []string {
	if len(values) == 1 {
		return splitList(values[0])
	}
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// ---------------- Nombres de campo ----------------

// sanitizeField descarta en silencio (debug) cualquier nombre fuera de [A-Za-z0-9_.].
func sanitizeField(log *zap.Logger, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if !domain.IsSafeFieldName(name) {
		log.Debug("Dropping unsafe field name", zap.String("field", name))
		return "", false
	}
	return name, true
}

// ---------------- Operadores y valores ----------------

var falsyFlags = map[string]bool{"false": true, "0": true, "no": true, "off": true, "n": true}

// shapeFilter ajusta el valor a la aridad del operador.
// filter[f][isNull]=false se interpreta como isNotNull (y viceversa).
func shapeFilter(op shared.Operator, values []string) (shared.Operator, interface{}) {
	switch {
	case op.TakesNoValue():
		if len(values) > 0 && falsyFlags[strings.ToLower(strings.TrimSpace(values[0]))] {
			if op == shared.OpIsNull {
				return shared.OpIsNotNull, nil
			}
			return shared.OpIsNull, nil
		}
		return op, nil
	case op.TakesList(), op == shared.OpBetween:
		return op, toInterfaces(listValues(values))
	}
	if len(values) == 0 {
		return op, ""
	}
	return op, values[0]
}

// ---------------- Ordenación ----------------

// normalizeDirection deja en minúsculas lo que no reconoce, para que el validador lo rechace.
func normalizeDirection(s string) sharedQuery.Direction {
	if d, ok := sharedQuery.ParseDirection(s); ok {
		return d
	}
	return sharedQuery.Direction(strings.ToLower(strings.TrimSpace(s)))
}

// parseSortExpr entiende "price:desc,name" y "-price,+name".
func parseSortExpr(log *zap.Logger, expr string, start int) []domain.RawSort {
	var out []domain.RawSort
	for _, part := range splitList(expr) {
		field, dir := part, ""
		switch {
		case strings.Contains(part, ":"):
			i := strings.LastIndexByte(part, ':')
			field, dir = part[:i], part[i+1:]
		case strings.HasPrefix(part, "-"):
			field, dir = part[1:], "desc"
		case strings.HasPrefix(part, "+"):
			field, dir = part[1:], "asc"
		}
		name, ok := sanitizeField(log, field)
		if !ok {
			continue
		}
		out = append(out, domain.RawSort{Field: name, Direction: normalizeDirection(dir), Priority: start + len(out)})
	}
	return out
}

// ---------------- Búsqueda ----------------

// newSearch devuelve nil para términos vacíos: no se pidió búsqueda.
func newSearch(log *zap.Logger, term string, fields []string, mode string) *domain.RawSearch {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	s := &domain.RawSearch{Term: term, Mode: domain.SearchMode(strings.TrimSpace(mode))}
	for _, f := range fields {
		if name, ok := sanitizeField(log, f); ok {
			s.Fields = append(s.Fields, name)
		}
	}
	return s
}
