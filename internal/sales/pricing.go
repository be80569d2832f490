package sales

import "math"

// UnitPrice selects the per-unit price for a line's tier. Unknown tiers
// fall back to retail, the same default the terminal applies.
func UnitPrice(l Line) float64 {
	switch l.PriceType {
	case TierWholesale:
		return l.WholesalePrice
	case TierPromo:
		return l.PromoPrice
	default:
		return l.RetailPrice
	}
}

// LineTotal computes a line's final amount: unit price, times box quantity
// when sold by the box, times quantity, minus the percentage discount.
// The result keeps full precision; rounding happens only at display and
// when a sale total is frozen.
func LineTotal(l Line) float64 {
	multiplier := 1
	if l.Unit == UnitBox {
		multiplier = l.BoxQty
	}
	gross := UnitPrice(l) * float64(multiplier) * float64(l.Quantity)
	return gross - gross*(l.Discount/100)
}

// Round2 rounds to two decimal places for display amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
