package transfer

// Older versions of the admin form posted line items under several names. Each list
// is tried in order and the first name that carries values wins. Drop this file once
// no client posts the old names.
var (
	itemDescFields = []string{"item_desc[]", "item_desc"}
	itemQtyFields  = []string{"item_qty[]", "item_qty"}
	itemUnitFields = []string{"item_unit[]", "item_price[]", "item_unit", "item_price"}
)

// ItemColumns resolves the line item aliases into the three sequences ParseItems takes.
func ItemColumns(values FormValues) (desc, qty, unit []string) {
	return values.firstOf(itemDescFields), values.firstOf(itemQtyFields), values.firstOf(itemUnitFields)
}

// heroTitle falls back to hero_text, the field name of the single-line hero form.
func heroTitle(f *HomeForm) string {
	if f.HeroTitle != "" {
		return f.HeroTitle
	}
	return f.HeroText
}

func (v FormValues) firstOf(names []string) []string {
	for _, name := range names {
		if vals, ok := v[name]; ok && len(vals) > 0 {
			return vals
		}
	}
	return nil
}
