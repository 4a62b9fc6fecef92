package transfer

import (
	"strings"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

// ParseItems zips the three column sequences into rows. Shorter sequences read as
// empty strings. Rows whose three cells are all blank after trimming are dropped.
func ParseItems(desc, qty, unit []string) []models.OfferItem {
	n := max(len(desc), len(qty), len(unit))

	items := make([]models.OfferItem, 0, n)
	for i := 0; i < n; i++ {
		item := models.OfferItem{
			Desc: cell(desc, i),
			Qty:  cell(qty, i),
			Unit: cell(unit, i),
		}
		if item.Desc == "" && item.Qty == "" && item.Unit == "" {
			continue
		}
		items = append(items, item)
	}

	return items
}

func cell(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}
