package sqlstore

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Dialect agrupa las diferencias entre motores SQL que afectan a la traducción.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	// Like es el operador de subcadena sin distinción de mayúsculas.
	Like string
	// TimeLayout, si no está vacío, convierte los time.Time a texto antes de enviarlos.
	TimeLayout string
}

var (
	// SQLite: LIKE ya ignora mayúsculas en ASCII y las fechas se guardan como texto RFC3339.
	SQLite = Dialect{Name: "sqlite", Placeholder: sq.Question, Like: "LIKE", TimeLayout: time.RFC3339Nano}
	// Postgres: placeholders $n e ILIKE.
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar, Like: "ILIKE"}
)

// Quote protege un identificador. Los nombres con punto se citan por partes.
func (d Dialect) Quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// bind adapta un valor normalizado al tipo que espera el driver.
func (d Dialect) bind(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		if d.TimeLayout != "" {
			return t.UTC().Format(d.TimeLayout)
		}
		return t.UTC()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = d.bind(item)
		}
		return out
	}
	return v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutraliza los comodines del valor del cliente.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
