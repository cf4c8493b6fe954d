// internal/domain/cart/entity.go
package cart

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	FarmerID  string  `json:"farmerId"`
	Quantity  int     `json:"quantity"`
}

// LineTotal returns unit price times quantity
func (l Line) LineTotal() float64 {
	return fromCents(l.cents())
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int     `json:"itemCount"`     // Number of distinct products
	TotalQuantity int     `json:"totalQuantity"` // Sum of all quantities
	Subtotal      float64 `json:"subtotal"`
}
