package sales

import (
	"fmt"
	"strings"
)

// Receipt renders a plain-text receipt for a finalized sale, one line per
// item with unit, tier and discount annotations.
func Receipt(shopName string, sale Sale) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", shopName)
	fmt.Fprintf(&b, "Receipt #%d\n", sale.ID)
	fmt.Fprintf(&b, "Date: %s\n", sale.Date.Format("2006-01-02 15:04"))
	if sale.Customer != nil {
		fmt.Fprintf(&b, "Customer: %s\n", sale.Customer.Name)
	}
	fmt.Fprintf(&b, "Seller: %s\n", sale.Seller.FullName)
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, item := range sale.Items {
		unit := "pc"
		if item.Unit == UnitBox {
			unit = fmt.Sprintf("box(%d)", item.BoxQty)
		}
		fmt.Fprintf(&b, "%s x%d %s @%s", item.Name, item.Quantity, unit, FormatAmount(UnitPrice(item)))
		if item.PriceType != TierRetail {
			fmt.Fprintf(&b, " [%s]", item.PriceType)
		}
		if item.Discount > 0 {
			fmt.Fprintf(&b, " -%g%%", item.Discount)
		}
		fmt.Fprintf(&b, "  %s\n", FormatAmount(LineTotal(item)))
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", FormatAmount(sale.Total))
	return b.String()
}
