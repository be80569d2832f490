// Package sales implements the cart, the pricing engine and the frozen
// sale history.
package sales

import (
	"time"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/users"
)

// Units a line can be sold in.
const (
	UnitPiece = "piece"
	UnitBox   = "box"
)

// Price tiers a line can be charged at.
const (
	TierRetail    = "retail"
	TierWholesale = "wholesale"
	TierPromo     = "promo"
)

// Line is a draft cart entry: a value copy of the product taken at
// add-time plus the chosen quantity, unit, price tier and discount.
// Embedding keeps the wire shape flat, matching the snapshot format.
type Line struct {
	catalog.Product
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit"`
	PriceType string  `json:"priceType"`
	Discount  float64 `json:"discount"`
}

// Sale is a finalized checkout. Immutable once created: it is appended to
// the history and never mutated or deleted.
type Sale struct {
	ID       int                 `json:"id"`
	Date     time.Time           `json:"date"`
	Items    []Line              `json:"items"`
	Total    float64             `json:"total"`
	Customer *customers.Customer `json:"customer"`
	Seller   users.View          `json:"seller"`
}
