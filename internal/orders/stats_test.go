package orders

import (
	"testing"

	"github.com/figpreorders/figorders/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	orders := []Order{
		{
			Status:    enums.OrderStatusPending,
			CreatedAt: "2026-08-15T23:30:00.000Z",
			Items:     []Item{NewItem("Kadota", 2, 150), NewItem("Black Mission", 1, 200)},
			Total:     500,
		},
		{
			Status:    enums.OrderStatusDelivered,
			CreatedAt: "2026-08-14T08:00:00.000Z",
			Items:     []Item{NewItem("Black Mission", 4, 200)},
			Total:     800,
		},
		{
			Status:    "archived",
			CreatedAt: "not a date",
			Items:     []Item{NewItem("Kadota", 1, 150)},
			Total:     150.5,
		},
	}

	stats := ComputeStats(orders)

	assert.Equal(t, 3, stats.Orders)
	assert.Equal(t, 4, stats.LineItems)
	assert.Equal(t, 8, stats.Quantity)
	assert.Equal(t, 1450.5, stats.Amount)
	assert.Equal(t, []VarietyCount{{Variety: "Kadota", Quantity: 3}, {Variety: "Black Mission", Quantity: 5}}, stats.ByVariety)
	assert.Equal(t, []DayCount{{Day: "2026-08-14", Orders: 1}, {Day: "2026-08-15", Orders: 1}}, stats.ByDay)

	require.Len(t, stats.ByStatus, 5)
	assert.Equal(t, StatusCount{Status: enums.OrderStatusPending, Orders: 1}, stats.ByStatus[0])
	assert.Equal(t, StatusCount{Status: enums.OrderStatusDelivered, Orders: 1}, stats.ByStatus[3])
	assert.Equal(t, 0, stats.ByStatus[4].Orders)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.Orders)
	assert.Empty(t, stats.ByVariety)
	assert.Empty(t, stats.ByDay)
	assert.Len(t, stats.ByStatus, 5)
}

func TestTimestampFormat(t *testing.T) {
	assert.Equal(t, "2026-08-14T09:00:00.123Z", Timestamp(baseTime.Add(123456789)))
	parsed, ok := ParseTimestamp("2026-08-14T11:00:00+02:00")
	require.True(t, ok)
	assert.True(t, baseTime.Equal(parsed))
}
