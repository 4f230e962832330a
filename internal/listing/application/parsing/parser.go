package parsing

import (
	"net/url"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	"go.uber.org/zap"
)

// Parser convierte la bolsa de parámetros de una convención de cliente en una ParsedRequest.
// Parse nunca falla: las entradas mal formadas se descartan y se registran.
type Parser interface {
	Format() domain.FormatTag
	CanHandle(raw url.Values) bool
	Parse(raw url.Values) domain.ParsedRequest
}

// formatHintKey permite al cliente fijar la convención explícitamente.
const formatHintKey = "format"

// Detector elige un parser en orden fijo, del más específico al más genérico.
type Detector struct {
	parsers []Parser
	log     *zap.Logger
}

// NewDetector registra los parsers en orden: rowRange, jsonModel, bracket y simple.
// El último nunca rechaza, así que Detect es total.
func NewDetector(log *zap.Logger) *Detector {
	return &Detector{
		parsers: []Parser{
			NewRowRangeParser(log),
			NewJSONModelParser(log),
			NewBracketParser(log),
			NewSimpleParser(log),
		},
		log: log,
	}
}

// Detect devuelve siempre exactamente un parser; misma entrada, mismo parser.
func (d *Detector) Detect(raw url.Values) Parser {
	if hint := strings.TrimSpace(raw.Get(formatHintKey)); hint != "" {
		for _, p := range d.parsers {
			if string(p.Format()) == hint {
				return p
			}
		}
		d.log.Debug("Ignoring unknown format hint", zap.String("format", hint))
	}
	for _, p := range d.parsers {
		if p.CanHandle(raw) {
			return p
		}
	}
	return d.parsers[len(d.parsers)-1]
}

// Parse detecta y parsea en un solo paso.
func (d *Detector) Parse(raw url.Values) domain.ParsedRequest {
	p := d.Detect(raw)
	parsed := p.Parse(raw)
	d.log.Debug("Parsed list request",
		zap.String("format", string(parsed.Format)),
		zap.Int("filters", len(parsed.Filters)),
		zap.Int("sorts", len(parsed.Sorting)),
		zap.Bool("search", parsed.Search != nil))
	return parsed
}

// Formats lista las convenciones soportadas en orden de detección.
func (d *Detector) Formats() []domain.FormatTag {
	out := make([]domain.FormatTag, 0, len(d.parsers))
	for _, p := range d.parsers {
		out = append(out, p.Format())
	}
	return out
}
