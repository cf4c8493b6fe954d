// internal/domain/analytics/entity.go
package analytics

// MonthlySales is the revenue of one calendar month
type MonthlySales struct {
	Month string  `json:"month"` // Short month name, e.g. "Jan"
	Sales float64 `json:"sales"`
}

// ProductSales is the revenue of one product, by name
type ProductSales struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// OrderSummary represents order statistics for a dashboard
type OrderSummary struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
}
