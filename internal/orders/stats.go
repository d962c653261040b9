package orders

import (
	"sort"

	"github.com/figpreorders/figorders/pkg/enums"
	"github.com/shopspring/decimal"
)

// Stats backs the dashboard KPIs and charts.
type Stats struct {
	Orders    int            `json:"orders"`
	LineItems int            `json:"lineItems"`
	Quantity  int            `json:"quantity"`
	Amount    float64        `json:"amount"`
	ByVariety []VarietyCount `json:"byVariety"`
	ByDay     []DayCount     `json:"byDay"`
	ByStatus  []StatusCount  `json:"byStatus"`
}

type VarietyCount struct {
	Variety  string `json:"variety"`
	Quantity int    `json:"quantity"`
}

type DayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Orders int               `json:"orders"`
}

// ComputeStats aggregates orders. Varieties keep first-seen order, days are
// UTC calendar days ascending, statuses follow the fixed status order.
// Orders with an unparseable createdAt are left out of the day series.
func ComputeStats(orders []Order) Stats {
	stats := Stats{Orders: len(orders)}
	amount := decimal.Zero
	varietyIndex := map[string]int{}
	days := map[string]int{}
	statuses := map[enums.OrderStatus]int{}

	for _, o := range orders {
		stats.LineItems += len(o.Items)
		amount = amount.Add(decimal.NewFromFloat(o.Total))
		statuses[o.Status]++
		for _, it := range o.Items {
			stats.Quantity += it.Quantity
			i, seen := varietyIndex[it.Variety]
			if !seen {
				i = len(stats.ByVariety)
				varietyIndex[it.Variety] = i
				stats.ByVariety = append(stats.ByVariety, VarietyCount{Variety: it.Variety})
			}
			stats.ByVariety[i].Quantity += it.Quantity
		}
		if created, ok := ParseTimestamp(o.CreatedAt); ok {
			days[created.Format("2006-01-02")]++
		}
	}
	stats.Amount = amount.InexactFloat64()

	stats.ByDay = make([]DayCount, 0, len(days))
	for day, n := range days {
		stats.ByDay = append(stats.ByDay, DayCount{Day: day, Orders: n})
	}
	sort.Slice(stats.ByDay, func(i, j int) bool { return stats.ByDay[i].Day < stats.ByDay[j].Day })

	for _, status := range enums.OrderStatuses() {
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: status, Orders: statuses[status]})
	}
	if stats.ByVariety == nil {
		stats.ByVariety = []VarietyCount{}
	}
	return stats
}
