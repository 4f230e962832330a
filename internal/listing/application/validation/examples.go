package validation

import (
	"fmt"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	shared "github.com/davicafu/hexaquery/shared/domain"
)

// SampleValue es un valor de ejemplo legible para cada tipo de campo.
func SampleValue(fd *domain.FieldDescriptor) string {
	switch fd.Kind() {
	case domain.KindInteger, domain.KindIdentifier, domain.KindReference:
		return "10"
	case domain.KindFloat:
		return "9.99"
	case domain.KindBoolean:
		return "true"
	case domain.KindDate:
		return "2024-01-31"
	case domain.KindDateTime:
		return "2024-01-31T10:00:00Z"
	case domain.KindEnum, domain.KindMultiEnum:
		if opts := fd.EnumOptions(); len(opts) > 0 {
			return opts[0]
		}
	}
	return "abc"
}

// FilterExample construye un ejemplo de uso con la convención de corchetes.
func FilterExample(fd *domain.FieldDescriptor, op shared.Operator) string {
	sample := SampleValue(fd)
	switch {
	case op.TakesNoValue():
		return fmt.Sprintf("filter[%s][%s]=true", fd.Name(), op)
	case op.TakesList():
		return fmt.Sprintf("filter[%s][%s]=%s,%s", fd.Name(), op, sample, sample)
	case op == shared.OpBetween:
		return fmt.Sprintf("filter[%s][%s]=%s,%s", fd.Name(), op, sample, sample)
	case op == shared.OpEquals:
		return fmt.Sprintf("filter[%s]=%s", fd.Name(), sample)
	}
	return fmt.Sprintf("filter[%s][%s]=%s", fd.Name(), op, sample)
}

// firstExample usa el primer operador permitido del campo.
func firstExample(fd *domain.FieldDescriptor) string {
	ops := fd.Operators()
	if len(ops) == 0 {
		return ""
	}
	return FilterExample(fd, ops[0])
}

func operatorNames(ops []shared.Operator) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return out
}
