package catalog

// Product is a catalog entry. JSON field names follow the snapshot wire
// format shared with the remote spreadsheet endpoint.
type Product struct {
	ID             int     `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	UnitQty        int     `json:"unitQty"`
	BoxQty         int     `json:"boxQty"`
	RetailPrice    float64 `json:"retailPrice"`
	WholesalePrice float64 `json:"wholesalePrice"`
	// PromoPrice zero means no promotion is available for the product.
	PromoPrice float64 `json:"promoPrice"`
}

// HasPromo reports whether the promo price tier may be selected.
func (p Product) HasPromo() bool {
	return p.PromoPrice > 0
}
