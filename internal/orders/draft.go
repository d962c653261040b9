package orders

import (
	"strings"
	"time"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

// DraftMode says what a submit of the draft will do.
type DraftMode string

const (
	DraftIdle    DraftMode = "idle"
	DraftEditing DraftMode = "editing"
)

// PriceLookup resolves a variety's default unit price.
type PriceLookup interface {
	Lookup(name string) (price float64, ok bool)
}

// Draft holds the line items being assembled for a new order or for the order
// currently being edited. The zero value is an idle, empty draft.
type Draft struct {
	mode      DraftMode
	editingID string
	form      *Input
	items     []Item
}

// DraftState is the read model of a draft.
type DraftState struct {
	Mode    DraftMode `json:"mode"`
	OrderID string    `json:"orderId,omitempty"`
	Form    *Input    `json:"form,omitempty"`
	Items   []Item    `json:"items"`
	Total   float64   `json:"total"`
}

// Mode reports the current mode.
func (d *Draft) Mode() DraftMode {
	if d.mode == "" {
		return DraftIdle
	}
	return d.mode
}

// EditingID returns the id of the order being edited, if any.
func (d *Draft) EditingID() (string, bool) {
	if d.Mode() != DraftEditing {
		return "", false
	}
	return d.editingID, true
}

// Items returns a copy of the draft lines.
func (d *Draft) Items() []Item {
	return cloneItems(d.items)
}

// Total sums the draft lines.
func (d *Draft) Total() float64 {
	return SumItems(d.items)
}

// State snapshots the draft.
func (d *Draft) State() DraftState {
	state := DraftState{
		Mode:  d.Mode(),
		Items: d.Items(),
		Total: d.Total(),
	}
	if state.Items == nil {
		state.Items = []Item{}
	}
	if id, ok := d.EditingID(); ok {
		state.OrderID = id
		if d.form != nil {
			form := *d.form
			form.Items = nil
			state.Form = &form
		}
	}
	return state
}

// AddItem appends a line for a catalog variety. A nil unitPrice takes the
// catalog price.
func (d *Draft) AddItem(catalog PriceLookup, variety string, quantity int, unitPrice *float64) (Item, error) {
	variety = strings.TrimSpace(variety)
	details := map[string]string{}
	price, known := catalog.Lookup(variety)
	if variety == "" {
		details["variety"] = "is required"
	} else if !known {
		details["variety"] = "must be a known variety"
	}
	if quantity <= 0 {
		details["quantity"] = "must be greater than 0"
	}
	if unitPrice != nil {
		price = *unitPrice
	}
	if price < 0 {
		details["unitPrice"] = "must not be less than 0"
	}
	if len(details) > 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid draft item").WithDetails(details)
	}
	item := NewItem(variety, quantity, price)
	d.items = append(d.items, item)
	return item, nil
}

// RemoveItem drops the line at index.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.items) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft item not found").
			WithDetails(map[string]int{"index": index})
	}
	d.items = append(d.items[:index:index], d.items[index+1:]...)
	return nil
}

// BeginEdit loads order into the draft and switches to editing mode.
func (d *Draft) BeginEdit(order Order) {
	d.mode = DraftEditing
	d.editingID = order.ID
	d.items = cloneItems(order.Items)
	d.form = &Input{
		CustomerName:   order.CustomerName,
		Phone:          order.Phone,
		City:           order.City,
		Address:        order.Address,
		Notes:          order.Notes,
		Status:         order.Status,
		DeliveryMethod: order.DeliveryMethod,
		DepositDZD:     order.DepositDZD,
	}
}

// Reset clears the items and returns to idle.
func (d *Draft) Reset() {
	*d = Draft{}
}

// Submit creates a new order from form and the draft items, or edits the
// order being edited. The draft is cleared only on success.
func (d *Draft) Submit(c *Collection, form Input, now time.Time) (Order, bool, error) {
	form.Items = d.Items()
	var (
		order   Order
		err     error
		created bool
	)
	if id, editing := d.EditingID(); editing {
		order, err = c.Edit(id, form, now)
	} else {
		order, err = c.Create(form, now)
		created = true
	}
	if err != nil {
		return Order{}, false, err
	}
	d.Reset()
	return order, created, nil
}
