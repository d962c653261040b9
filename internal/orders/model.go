package orders

import (
	"time"

	"github.com/figpreorders/figorders/pkg/enums"
	"github.com/shopspring/decimal"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Order is one customer preorder. Field names match the persisted JSON shape.
type Order struct {
	ID             string            `json:"id"`
	CustomerName   string            `json:"customerName"`
	Phone          string            `json:"phone"`
	City           string            `json:"city"`
	Address        string            `json:"address"`
	Notes          string            `json:"notes"`
	Status         enums.OrderStatus `json:"status"`
	DeliveryMethod string            `json:"deliveryMethod"`
	DepositDZD     float64           `json:"depositDZD"`
	Items          []Item            `json:"items"`
	Total          float64           `json:"total"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}

// Item is a line of an order. Variety is a denormalized name and Total is
// frozen at the time the item was added.
type Item struct {
	Variety   string  `json:"variety" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Total     float64 `json:"total"`
}

// NewItem prices a line as quantity × unitPrice.
func NewItem(variety string, quantity int, unitPrice float64) Item {
	total := decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(unitPrice))
	return Item{
		Variety:   variety,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total.InexactFloat64(),
	}
}

// SumItems adds up the frozen item totals.
func SumItems(items []Item) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Total))
	}
	return sum.InexactFloat64()
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	out := o
	out.Items = cloneItems(o.Items)
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Timestamp renders t in the persisted timestamp format.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp.
func ParseTimestamp(value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// laterOf returns now, or previous when the clock went backwards.
func laterOf(previous string, now time.Time) string {
	if prev, ok := ParseTimestamp(previous); ok && prev.After(now) {
		return Timestamp(prev)
	}
	return Timestamp(now)
}
