package domain

import (
	"errors"
	"fmt"

	sharedQuery "github.com/davicafu/hexaquery/shared/platform/query"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CursorPosition es la posición de reanudación firmada dentro del cursor.
// Claves cortas: el cursor viaja en la URL.
type CursorPosition struct {
	Entity    string      `json:"e"`
	Sort      string      `json:"o"` // firma del orden primario, ej. "price:desc"
	ID        interface{} `json:"id"`
	TimeField string      `json:"tf,omitempty"`
	TimeValue interface{} `json:"tv,omitempty"`
	KeyField  string      `json:"kf,omitempty"`
	KeyValue  interface{} `json:"kv,omitempty"`
}

// CursorCodec codifica y verifica cursores opacos.
type CursorCodec interface {
	Encode(pos CursorPosition) (string, error)
	Decode(token string) (*CursorPosition, error)
}

// SortSignature identifica el orden primario al que pertenece un cursor.
func SortSignature(s sharedQuery.Sort) string {
	return s.Field + ":" + string(s.Direction)
}

// ValueOf devuelve el valor guardado para un campo de la posición.
func (p CursorPosition) ValueOf(field, idField string) (interface{}, bool) {
	switch field {
	case idField:
		return p.ID, p.ID != nil
	case p.TimeField:
		return p.TimeValue, p.TimeValue != nil
	case p.KeyField:
		return p.KeyValue, p.KeyValue != nil
	}
	return nil, false
}

// Keyset arma las columnas de reanudación: orden primario más el id como desempate.
func (p CursorPosition) Keyset(primary sharedQuery.Sort, idField string) ([]sharedQuery.KeysetValue, error) {
	if p.ID == nil {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidCursor)
	}
	tie := sharedQuery.KeysetValue{Field: idField, Direction: primary.Direction, Value: p.ID}
	if primary.Field == idField {
		return []sharedQuery.KeysetValue{tie}, nil
	}
	v, ok := p.ValueOf(primary.Field, idField)
	if !ok {
		return nil, fmt.Errorf("%w: no value for %s", ErrInvalidCursor, primary.Field)
	}
	return []sharedQuery.KeysetValue{
		{Field: primary.Field, Direction: primary.Direction, Value: v},
		tie,
	}, nil
}

// PositionFromRow construye la posición a partir de la fila frontera de una página.
func PositionFromRow(schema *EntitySchema, primary sharedQuery.Sort, row Row) CursorPosition {
	pos := CursorPosition{
		Entity: schema.Name(),
		Sort:   SortSignature(primary),
		ID:     row[schema.IDField()],
	}
	for _, tf := range []string{schema.CreatedField(), schema.UpdatedField()} {
		if tf == "" {
			continue
		}
		if v, ok := row[tf]; ok && v != nil {
			pos.TimeField, pos.TimeValue = tf, v
			break
		}
	}
	if primary.Field != schema.IDField() && primary.Field != pos.TimeField {
		pos.KeyField, pos.KeyValue = primary.Field, row[primary.Field]
	}
	return pos
}
