package envelope

import (
	"net/url"
	"strconv"

	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/domain"
)

// Links son los enlaces de navegación construidos desde la query actual.
type Links struct {
	Self  string `json:"self"`
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// buildLinks sustituye solo la clave de página (o de offset) conservando el resto de la query.
func buildLinks(path string, query url.Values, p domain.ValidatedPagination, meta paging.PageMeta) *Links {
	if path == "" {
		return nil
	}
	key, value := pageKey(query, p)

	at := func(page int) string {
		q := cloneValues(query)
		q.Set(key, strconv.Itoa(value(page)))
		return path + "?" + q.Encode()
	}

	links := &Links{Self: path}
	if encoded := query.Encode(); encoded != "" {
		links.Self += "?" + encoded
	}
	links.First = at(1)
	if meta.HasPrevious {
		links.Prev = at(max(1, meta.Page-1))
	}
	if meta.HasNext {
		links.Next = at(meta.Page + 1)
	}
	if meta.TotalPages != nil && *meta.TotalPages > 0 {
		links.Last = at(*meta.TotalPages)
	}
	return links
}

// pageKey elige la clave que el cliente usó y cómo traducir un número de página a su valor.
func pageKey(query url.Values, p domain.ValidatedPagination) (string, func(int) int) {
	size := p.PageSize
	toOffset := func(page int) int { return (page - 1) * size }
	toPage := func(page int) int {
		if p.ZeroBased {
			return page - 1
		}
		return page
	}

	if p.Style == domain.StyleOffset {
		if _, ok := query["page[offset]"]; ok {
			return "page[offset]", toOffset
		}
		return "offset", toOffset
	}
	if _, ok := query["page[number]"]; ok {
		return "page[number]", toPage
	}
	return "page", toPage
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
