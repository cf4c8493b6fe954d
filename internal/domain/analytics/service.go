// internal/domain/analytics/service.go
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/agri-oasis/storefront/internal/domain/order"
)

// MonthlySalesFor aggregates order totals over the twelve months ending with
// now's month, oldest first. Orders outside the window or with an
// unparseable createdAt are skipped.
func MonthlySalesFor(orders []order.Order, now time.Time) []MonthlySales {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	cents := make([]int64, 12)
	for _, o := range orders {
		created, ok := parseCreatedAt(o.CreatedAt)
		if !ok {
			continue
		}
		idx := monthsBetween(start, created)
		if idx < 0 || idx >= 12 {
			continue
		}
		cents[idx] += toCents(o.TotalAmount)
	}

	out := make([]MonthlySales, 12)
	for i := range out {
		out[i] = MonthlySales{
			Month: start.AddDate(0, i, 0).Month().String()[:3],
			Sales: fromCents(cents[i]),
		}
	}
	return out
}

// ProductSalesFor aggregates price times quantity per product name, highest
// revenue first.
func ProductSalesFor(orders []order.Order) []ProductSales {
	byName := make(map[string]int64)
	for _, o := range orders {
		for _, it := range o.Items {
			byName[it.Name] += toCents(it.Price * float64(it.Quantity))
		}
	}

	out := make([]ProductSales, 0, len(byName))
	for name, c := range byName {
		out = append(out, ProductSales{Name: name, Value: fromCents(c)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Summarize returns dashboard counters for a set of orders
func Summarize(orders []order.Order) OrderSummary {
	var s OrderSummary
	var revenue int64
	for _, o := range orders {
		s.TotalOrders++
		switch o.Status {
		case order.StatusPending:
			s.PendingOrders++
		case order.StatusDelivered:
			s.DeliveredOrders++
		}
		if o.Status != order.StatusCancelled {
			revenue += toCents(o.TotalAmount)
		}
	}
	s.TotalRevenue = fromCents(revenue)
	if s.TotalOrders > 0 {
		s.AvgOrderValue = fromCents(revenue / int64(s.TotalOrders))
	}
	return s
}

func parseCreatedAt(v string) (time.Time, bool) {
	if len(v) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", v[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
