package paging

// PageItem es una entrada de la ventana de páginas: un número o un hueco ("…").
type PageItem struct {
	Number  int  `json:"number,omitempty"`
	Current bool `json:"current,omitempty"`
	Gap     bool `json:"gap,omitempty"`
}

// PageWindow devuelve la primera página, las vecinas de la actual, huecos donde la ventana
// no llega al borde y la última si hay más de una.
func PageWindow(current, totalPages, radius int) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	if radius < 0 {
		radius = 0
	}

	items := []PageItem{{Number: 1, Current: current == 1}}
	start := max(2, current-radius)
	end := min(totalPages-1, current+radius)
	if start > 2 {
		items = append(items, PageItem{Gap: true})
	}
	for p := start; p <= end; p++ {
		items = append(items, PageItem{Number: p, Current: p == current})
	}
	if end < totalPages-1 {
		items = append(items, PageItem{Gap: true})
	}
	if totalPages > 1 {
		items = append(items, PageItem{Number: totalPages, Current: current == totalPages})
	}
	return items
}
