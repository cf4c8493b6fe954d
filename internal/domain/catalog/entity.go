// internal/domain/catalog/entity.go
package catalog

// Product is a catalog item as listed by the marketplace API
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
	FarmerID    string  `json:"farmerId"`
	FarmerName  string  `json:"farmerName"`
	Rating      float64 `json:"rating"`
	CreatedAt   string  `json:"createdAt"`
	Status      string  `json:"status,omitempty"` // moderation: pending, approved or rejected
}

// InStock reports whether any units are listed
func (p *Product) InStock() bool {
	return p.Quantity > 0
}
