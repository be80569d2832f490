package sales

import (
	"fmt"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/shared"
)

// Cart is the in-progress sale draft. It is not safe for concurrent use
// on its own; the Service serializes access to the single terminal cart.
type Cart struct {
	lines    []Line
	customer *customers.Customer
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddProduct merges the product into the cart: an existing line for the
// same product id gets one more unit, keeping its chosen unit, tier and
// discount; otherwise a new line is appended with the defaults.
func (c *Cart) AddProduct(p catalog.Product) {
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		Product:   p,
		Quantity:  1,
		Unit:      UnitPiece,
		PriceType: TierRetail,
		Discount:  0,
	})
}

// SetQuantity sets a line's quantity by position.
func (c *Cart) SetQuantity(index, quantity int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.lines[index].Quantity = quantity
	return nil
}

// SetUnit sets a line's unit by position.
func (c *Cart) SetUnit(index int, unit string) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.lines[index].Unit = unit
	return nil
}

// SetPriceType sets a line's price tier by position.
func (c *Cart) SetPriceType(index int, tier string) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.lines[index].PriceType = tier
	return nil
}

// SetDiscount sets a line's discount percentage by position.
func (c *Cart) SetDiscount(index int, discount float64) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.lines[index].Discount = discount
	return nil
}

// Remove deletes the line at position; following lines shift down, so
// callers holding stale indices must re-fetch the cart.
func (c *Cart) Remove(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Clear empties the cart and detaches the selected customer.
func (c *Cart) Clear() {
	c.lines = nil
	c.customer = nil
}

// Total recomputes the cart total from scratch. Never cached.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, l := range c.lines {
		total += LineTotal(l)
	}
	return total
}

// Lines returns a copy of the draft lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line at position.
func (c *Cart) Line(index int) (Line, error) {
	if err := c.check(index); err != nil {
		return Line{}, err
	}
	return c.lines[index], nil
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// SelectCustomer attaches (or with nil detaches) the sale's customer.
func (c *Cart) SelectCustomer(customer *customers.Customer) {
	c.customer = customer
}

// Customer returns the attached customer, possibly nil.
func (c *Cart) Customer() *customers.Customer {
	return c.customer
}

func (c *Cart) check(index int) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("index %d with %d lines: %w", index, len(c.lines), shared.ErrLineIndex)
	}
	return nil
}
