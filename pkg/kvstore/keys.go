package kvstore

import "github.com/figpreorders/figorders/pkg/enums"

// SlotKeys names the slot of each collection kind.
type SlotKeys struct {
	Orders    string
	Varieties string
}

// For returns the slot of kind.
func (k SlotKeys) For(kind enums.CollectionKind) (string, bool) {
	switch kind {
	case enums.CollectionOrders:
		return k.Orders, k.Orders != ""
	case enums.CollectionVarieties:
		return k.Varieties, k.Varieties != ""
	}
	return "", false
}
