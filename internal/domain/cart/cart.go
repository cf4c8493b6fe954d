// internal/domain/cart/cart.go
package cart

import (
	"math"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
)

// Cart is the working set of products a buyer intends to purchase. Lines
// keep insertion order and there is at most one line per product.
//
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// AddItem adds one unit of p: an existing line is incremented, otherwise a
// new line is appended.
func (c *Cart) AddItem(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		FarmerID:  p.FarmerID,
		Quantity:  1,
	})
}

// RemoveItem deletes the line for productID, if any
func (c *Cart) RemoveItem(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity sets the quantity of an existing line. q below 1 removes it.
// Unknown products are ignored.
func (c *Cart) SetQuantity(productID string, q int) {
	if q < 1 {
		c.RemoveItem(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = q
	}
}

// Contains reports whether productID has a line
func (c *Cart) Contains(productID string) bool {
	return c.index(productID) >= 0
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current lines
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct products
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalQuantity returns the sum of all line quantities
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal returns Σ unitPrice × quantity. Each line is rounded to cents
// once, after the multiplication.
func (c *Cart) Subtotal() float64 {
	var cents int64
	for _, l := range c.lines {
		cents += l.cents()
	}
	return fromCents(cents)
}

// Totals returns the derived figures for the current lines
func (c *Cart) Totals() Totals {
	return Totals{
		ItemCount:     c.Len(),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      c.Subtotal(),
	}
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (l Line) cents() int64 {
	return int64(math.Round(l.UnitPrice * float64(l.Quantity) * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
