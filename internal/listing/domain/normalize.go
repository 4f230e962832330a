package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotInteger    = errors.New("must be an integer")
	ErrNotNumber     = errors.New("must be a number")
	ErrNotBoolean    = errors.New("must be a boolean (true/false, yes/no, 1/0, on/off)")
	ErrNotDate       = errors.New("must be a date (YYYY-MM-DD)")
	ErrNotDateTime   = errors.New("must be a datetime (RFC3339 or YYYY-MM-DD[ HH:MM:SS])")
	ErrNotEnumOption = errors.New("is not one of the allowed options")
	ErrNotIdentifier = errors.New("must be an integer or UUID identifier")
	ErrNotScalar     = errors.New("must be a single value")
)

// ---------------- Nombres de campo ----------------

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

const maxFieldNameLength = 64

// IsSafeFieldName acepta alfanuméricos y guion bajo, con puntos solo para referencias anidadas.
func IsSafeFieldName(name string) bool {
	return len(name) > 0 && len(name) <= maxFieldNameLength && fieldNamePattern.MatchString(name)
}

// ---------------- Vocabulario booleano ----------------

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "on": true, "t": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "off": true, "f": true}
)

// ---------------- Formatos de fecha ----------------

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ---------------- Normalizadores por tipo ----------------

func defaultNormalizer(kind FieldKind, enumSet map[string]struct{}) Normalizer {
	switch kind {
	case KindInteger:
		return normalizeInteger
	case KindFloat:
		return normalizeFloat
	case KindBoolean:
		return normalizeBoolean
	case KindDate:
		return normalizeDate
	case KindDateTime:
		return normalizeDateTime
	case KindEnum, KindMultiEnum:
		return func(v interface{}) (interface{}, error) { return normalizeEnum(v, enumSet) }
	case KindIdentifier, KindReference:
		return normalizeIdentifier
	default:
		return normalizeText
	}
}

func normalizeText(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case int, int32, int64, float64, bool:
		return fmt.Sprint(t), nil
	}
	return nil, ErrNotScalar
}

func normalizeInteger(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, ErrNotInteger
		}
		return int64(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, ErrNotInteger
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, ErrNotInteger
		}
		return n, nil
	}
	return nil, ErrNotInteger
}

func normalizeFloat(v interface{}) (interface{}, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, ErrNotNumber
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, ErrNotNumber
		}
		f = n
	default:
		return nil, ErrNotNumber
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, ErrNotNumber
	}
	return f, nil
}

func normalizeBoolean(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if truthy[s] {
			return true, nil
		}
		if falsy[s] {
			return false, nil
		}
	}
	return nil, ErrNotBoolean
}

func normalizeDate(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.Parse(dateLayout, s); err == nil {
			return d, nil
		}
		// Un datetime completo se acepta y se trunca al día.
		for _, layout := range dateTimeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return normalizeDate(ts)
			}
		}
	}
	return nil, ErrNotDate
}

func normalizeDateTime(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateTimeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
	}
	return nil, ErrNotDateTime
}

func normalizeEnum(v interface{}, options map[string]struct{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, ErrNotEnumOption
	}
	s = strings.TrimSpace(s)
	if _, ok := options[s]; !ok {
		return nil, ErrNotEnumOption
	}
	return s, nil
}

// normalizeIdentifier deja enteros como int64 y UUIDs en forma canónica.
func normalizeIdentifier(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int64, int, int32, json.Number:
		return normalizeInteger(t)
	case float64:
		n, err := normalizeInteger(t)
		if err != nil {
			return nil, ErrNotIdentifier
		}
		return n, nil
	case uuid.UUID:
		return t.String(), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if id, err := uuid.Parse(s); err == nil {
			return id.String(), nil
		}
	}
	return nil, ErrNotIdentifier
}

// ---------------- Comparación ----------------

// CompareValues compara dos valores ya normalizados del mismo tipo.
// ok=false si los tipos no son comparables entre sí.
func CompareValues(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), true
		case float64:
			return cmpOrdered(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y), true
		case int64:
			return cmpOrdered(x, float64(y)), true
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
