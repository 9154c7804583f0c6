package catalog

import (
	"strings"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/shopspring/decimal"
)

type seedEntry struct {
	id      int64
	brand   string
	name    string
	price   int64
	gallery []string
}

// New arrivals first, then featured, as laid out on the home page.
var seedEntries = []seedEntry{
	{1, "Chu", "Summer Loose Shirt", 78, []string{"img/ariival.png", "img/ar1.png", "img/ar2.png", "img/ar3.png"}},
	{2, "Chu", "Casual Polo Shirt", 79, []string{"img/arrival2.jpg", "img/arr11.png", "img/arr22.png", "img/arr33.png"}},
	{3, "Chu", "Classic Men Shirt", 71, []string{"img/arrival6.png", "img/rar1.png", "img/rar2.png", "img/rar3.png"}},
	{4, "Chu", "Minimalist Shirt", 82, []string{"img/arrival4.png", "img/adi1.png", "img/adi3.png", "img/adi4.png"}},
	{5, "Chu", "Tank Tops for Womens 2025 Summer Casual Crewneck Tunic", 78, []string{"img/fea1.png", "img/fe1.png", "img/fe2.png", "img/fe3.png"}},
	{6, "Asisi", "Palm Tree Tanks Tops for Mens", 88, []string{"img/fea2.png", "img/fea2_black.png", "img/fea2_white.png", "img/fea2_orange.png"}},
	{7, "Chu", "Firzero 3/4 Sleeve Vintage Embroidery Shirts", 94, []string{"img/fea3.png", "img/fea3_blue.png", "img/fea3_brown.png", "img/fea3_green.png"}},
	{8, "Sinzelimin", "Men's Shirts Fall Tops Vintage Plaid Printed Button", 102, []string{"img/fea4.png", "img/fea4_blue.png", "img/fea4_green.png", "img/fea4_orange.png"}},
	{9, "Chu", "Summer Soild Color Crew Neck Tees", 78, []string{"img/fea5.png", "img/fea5_black.png", "img/fea5_white.png", "img/fea5_yellow.png"}},
	{10, "Chu", "Sleeveless Athletic Workout Gym Shirts", 88, []string{"img/fea6.png", "img/fea6_blue.png", "img/fea6_red.png", "img/fea6_grey.png"}},
	{11, "Chu", "ace Bralettes for Women Sexy Floral", 94, []string{"img/fea7.png", "img/fea7_pink.png", "img/fea7_white.png", "img/fea7_black.png"}},
	{12, "Chu", "Cotton Linen Button Down Shirts Dressy", 102, []string{"img/fea8.png", "img/fea8_blue.png", "img/fea8_brown.png", "img/fea8_grey.png"}},
	{13, "Chu", "Crew Neck Tops Fashion Flowy Print", 94, []string{"img/fea9.png", "img/fea9_blue.png", "img/fea9_green.png", "img/fea9_yellow.png"}},
	{14, "Chu", "Saodimallsu Womens Cap Sleeve Crop Top", 102, []string{"img/fea10.png", "img/fea10_blue.png", "img/fea10_green.png", "img/fea10_red.png"}},
}

// newArrivalCount is how many leading seed entries are shown as new arrivals.
const newArrivalCount = 4

// SeedProducts returns a fresh copy of the compiled-in catalog.
func SeedProducts() []domain.Product {
	out := make([]domain.Product, 0, len(seedEntries))
	for _, e := range seedEntries {
		out = append(out, domain.Product{
			ID:       domain.NormalizeID(e.id),
			Brand:    e.brand,
			Name:     e.name,
			Price:    decimal.NewFromInt(e.price),
			ImageRef: e.gallery[0],
			Gallery:  append([]string(nil), e.gallery...),
		})
	}
	return out
}

var seedFingerprints = func() map[string]struct{} {
	set := make(map[string]struct{}, len(seedEntries))
	for _, e := range seedEntries {
		set[fingerprint(e.name, e.brand)] = struct{}{}
	}
	return set
}()

func fingerprint(name, brand string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(brand))
}

// IsSeed reports whether p carries the (name, brand) of a seed product.
func IsSeed(p domain.Product) bool {
	_, ok := seedFingerprints[fingerprint(p.Name, p.Brand)]
	return ok
}

// withoutSeedDuplicates drops seed-fingerprint entries, but only when at
// least one organically added product exists.
func withoutSeedDuplicates(products []domain.Product) []domain.Product {
	organic := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !IsSeed(p) {
			organic = append(organic, p)
		}
	}
	if len(organic) == 0 {
		return products
	}
	return organic
}
