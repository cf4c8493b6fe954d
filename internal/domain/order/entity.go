// internal/domain/order/entity.go
package order

// Status represents the order status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known order status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is one product line of an order
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Request is the order draft sent by checkout. Buyer fields use the wire
// names of the marketplace API.
type Request struct {
	BuyerID         string  `json:"userId"`
	BuyerName       string  `json:"userName"`
	BuyerContact    string  `json:"userContact"`
	ShippingAddress string  `json:"shippingAddress"`
	Items           []Item  `json:"products"`
	TotalAmount     float64 `json:"totalAmount"`
	FarmerID        string  `json:"farmerId"`
	Status          Status  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

// Order is an order as stored by the marketplace API
type Order struct {
	ID string `json:"id"`
	Request
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// StatusUpdate is the body of a status change
type StatusUpdate struct {
	Status Status `json:"status" binding:"required"`
}
