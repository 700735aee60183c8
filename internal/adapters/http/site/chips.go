package site

import service "github.com/padelrpm/ranking/internal/app"

// CatChip is one category tab: the display label, the query value and the
// bucket size.
type CatChip struct {
	Label string
	Value string
	Count int
}

// chipLabels overrides display labels where the canonical code is not
// presentable as-is.
var chipLabels = map[string]string{
	"2_3": "2da y 3ra",
}

// chips builds the tab row for a category view, in taxonomy order.
func chips(view service.CategoryView) []CatChip {
	out := make([]CatChip, 0, len(view.Cats))
	for _, c := range view.Cats {
		label := c
		if l, ok := chipLabels[c]; ok {
			label = l
		}
		out = append(out, CatChip{
			Label: label,
			Value: c,
			Count: len(view.Groups[c]),
		})
	}
	return out
}
