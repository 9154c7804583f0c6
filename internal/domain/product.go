package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Brand       string          `json:"brand"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"img"`
	Gallery     []string        `json:"gallery,omitempty"`
	Description string          `json:"description,omitempty"`
}

// NormalizeID renders a product id to the string form used for every comparison.
// Seed ids arrive as small integers, remote ids as opaque strings.
func NormalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// SameID reports whether two ids refer to the same product.
func SameID(a, b any) bool {
	return NormalizeID(a) == NormalizeID(b)
}
