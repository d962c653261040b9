package orders

import (
	"strings"
	"time"

	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/google/uuid"
)

// Collection is the in-memory ordered list of orders, most recent first.
// It is not safe for concurrent use; the workspace serializes access.
type Collection struct {
	orders []Order
	newID  func() string
}

// NewCollection wraps orders, keeping their order.
func NewCollection(orders []Order) *Collection {
	return &Collection{orders: cloneOrders(orders), newID: uuid.NewString}
}

// Len reports the number of orders.
func (c *Collection) Len() int { return len(c.orders) }

// Snapshot returns a deep copy of every order.
func (c *Collection) Snapshot() []Order {
	return cloneOrders(c.orders)
}

// Replace swaps the whole collection.
func (c *Collection) Replace(orders []Order) {
	c.orders = cloneOrders(orders)
}

// Find returns a copy of the order with id.
func (c *Collection) Find(id string) (Order, bool) {
	if i := c.index(id); i >= 0 {
		return c.orders[i].Clone(), true
	}
	return Order{}, false
}

// Create validates in and prepends a new order.
func (c *Collection) Create(in Input, now time.Time) (Order, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	stamp := Timestamp(now)
	order := Order{
		ID:        c.newID(),
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	apply(&order, in)
	c.orders = append([]Order{order}, c.orders...)
	return order.Clone(), nil
}

// Edit replaces the editable fields of id in place. id, createdAt and
// position are kept, and so is the status when in leaves it empty.
func (c *Collection) Edit(id string, in Input, now time.Time) (Order, error) {
	i := c.index(id)
	if i < 0 {
		return Order{}, notFound(id)
	}
	if strings.TrimSpace(string(in.Status)) == "" && c.orders[i].Status.IsValid() {
		in.Status = c.orders[i].Status
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	order := c.orders[i]
	apply(&order, in)
	order.UpdatedAt = laterOf(order.UpdatedAt, now)
	c.orders[i] = order
	return order.Clone(), nil
}

// SetStatus changes only the status and updatedAt.
func (c *Collection) SetStatus(id string, status enums.OrderStatus, now time.Time) (Order, error) {
	if !status.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]string{"status": "must be a known status"})
	}
	i := c.index(id)
	if i < 0 {
		return Order{}, notFound(id)
	}
	c.orders[i].Status = status
	c.orders[i].UpdatedAt = laterOf(c.orders[i].UpdatedAt, now)
	return c.orders[i].Clone(), nil
}

// Delete removes id. Deletion is irreversible so it must be confirmed.
func (c *Collection) Delete(id string, confirmed bool) error {
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "delete requires confirmation").
			WithDetails(map[string]string{"confirm": "must be true"})
	}
	i := c.index(id)
	if i < 0 {
		return notFound(id)
	}
	c.orders = append(c.orders[:i:i], c.orders[i+1:]...)
	return nil
}

// Filter returns the orders matching query and status without touching the collection.
func (c *Collection) Filter(query, status string) []Order {
	return Filter(c.orders, query, status)
}

// Select returns copies of the orders whose id is in ids, in collection order.
func (c *Collection) Select(ids []string) []Order {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := []Order{}
	for _, o := range c.orders {
		if _, ok := wanted[o.ID]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Filter is a pure case-insensitive search over the searchable text of each
// order plus an exact status match. An empty or "all" status matches everything.
func Filter(orders []Order, query, status string) []Order {
	q := strings.ToLower(strings.TrimSpace(query))
	status = strings.TrimSpace(status)
	out := []Order{}
	for _, o := range orders {
		if q != "" && !strings.Contains(haystack(o), q) {
			continue
		}
		if status != "" && status != enums.OrderStatusAll && string(o.Status) != status {
			continue
		}
		out = append(out, o.Clone())
	}
	return out
}

func haystack(o Order) string {
	varieties := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		varieties = append(varieties, it.Variety)
	}
	parts := []string{o.CustomerName, o.Phone, o.City, o.Address, strings.Join(varieties, " "), o.Notes}
	return strings.ToLower(strings.Join(parts, " "))
}

func apply(order *Order, in Input) {
	order.CustomerName = in.CustomerName
	order.Phone = in.Phone
	order.City = in.City
	order.Address = in.Address
	order.Notes = in.Notes
	order.Status = in.Status
	order.DeliveryMethod = in.DeliveryMethod
	order.DepositDZD = in.DepositDZD
	order.Items = cloneItems(in.Items)
	order.Total = SumItems(in.Items)
}

func (c *Collection) index(id string) int {
	for i, o := range c.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]string{"id": id})
}

func cloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
