package validation

import (
	"github.com/davicafu/hexaquery/internal/listing/domain"
	"go.uber.org/zap"
)

// Policy son los límites que aplica el validador.
type Policy struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxSortFields   int
	MaxSearchLength int
	MaxInValues     int
}

// DefaultPolicy devuelve los límites por defecto.
func DefaultPolicy() Policy {
	return Policy{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		MaxSortFields:   3,
		MaxSearchLength: 100,
		MaxInValues:     100,
	}
}

// withDefaults rellena los límites no configurados.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxPageSize <= 0 {
		p.MaxPageSize = d.MaxPageSize
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = d.DefaultPageSize
	}
	if p.DefaultPageSize > p.MaxPageSize {
		p.DefaultPageSize = p.MaxPageSize
	}
	if p.MaxSortFields <= 0 {
		p.MaxSortFields = d.MaxSortFields
	}
	if p.MaxSearchLength <= 0 {
		p.MaxSearchLength = d.MaxSearchLength
	}
	if p.MaxInValues <= 0 {
		p.MaxInValues = d.MaxInValues
	}
	return p
}

// Validator es la única autoridad que aprueba una ParsedRequest.
// No guarda estado entre peticiones; es seguro para uso concurrente.
type Validator struct {
	policy Policy
	codec  domain.CursorCodec
	log    *zap.Logger
}

// NewValidator: codec puede ser nil, en cuyo caso los cursores se ignoran.
func NewValidator(policy Policy, codec domain.CursorCodec, log *zap.Logger) *Validator {
	return &Validator{policy: policy.withDefaults(), codec: codec, log: log}
}

// Policy devuelve los límites efectivos.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate comprueba la petición completa contra el esquema y acumula todas las violaciones.
// Si hay algún error devuelve nil y el conjunto; los avisos viajan también en éxito.
func (v *Validator) Validate(schema *domain.EntitySchema, parsed domain.ParsedRequest) (*domain.ValidatedRequest, *domain.ValidationErrorSet) {
	errs := &domain.ValidationErrorSet{}

	filters := v.validateFilters(schema, parsed, errs)
	search := v.validateSearch(schema, parsed.Search, errs)
	sorting := v.validateSorting(schema, parsed.Sorting, errs)
	pagination, sorting := v.validatePagination(schema, parsed.Pagination, sorting, errs)

	if errs.HasErrors() {
		v.log.Info("List request rejected",
			zap.String("entity", schema.Name()),
			zap.Int("violations", len(errs.Errors())))
		return nil, errs
	}

	format := parsed.Format
	if format == "" {
		format = domain.FormatSimple
	}
	return &domain.ValidatedRequest{
		Entity:     schema.Name(),
		Format:     format,
		Filters:    filters,
		Search:     search,
		Sorting:    sorting,
		Pagination: pagination,
	}, errs
}
