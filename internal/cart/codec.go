package cart

import (
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
)

// encodeLines renders lines in the {id, name, price, img, qty} record shape
// shared by local storage and remote cart documents.
func encodeLines(lines []domain.CartLine) []any {
	out := make([]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, map[string]any{
			"id":    l.ProductID,
			"name":  l.Name,
			"price": l.Price.InexactFloat64(),
			"img":   l.ImageRef,
			"qty":   l.Qty,
		})
	}
	return out
}

// decodeLines skips records without an id and lifts non-positive quantities
// to 1. Records whose ids normalize to the same value collapse into the first
// one with their quantities summed.
func decodeLines(records []map[string]any) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, r := range records {
		id := domain.NormalizeID(r["id"])
		if id == "" {
			continue
		}
		qty := docstore.Int(r, "qty")
		if qty < 1 {
			qty = 1
		}
		if i, ok := seen[id]; ok {
			lines[i].Qty += qty
			continue
		}
		seen[id] = len(lines)
		lines = append(lines, domain.CartLine{
			ProductID: id,
			Name:      docstore.String(r, "name"),
			Price:     docstore.Decimal(r, "price"),
			ImageRef:  docstore.String(r, "img"),
			Qty:       qty,
		})
	}
	return lines
}
