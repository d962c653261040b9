package enums

import "fmt"

// CollectionKind names one of the persisted collections.
type CollectionKind string

const (
	CollectionOrders    CollectionKind = "orders"
	CollectionVarieties CollectionKind = "varieties"
)

var validCollectionKinds = []CollectionKind{
	CollectionOrders,
	CollectionVarieties,
}

// CollectionKinds returns every known kind.
func CollectionKinds() []CollectionKind {
	out := make([]CollectionKind, len(validCollectionKinds))
	copy(out, validCollectionKinds)
	return out
}

// String implements fmt.Stringer.
func (k CollectionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known CollectionKind.
func (k CollectionKind) IsValid() bool {
	for _, candidate := range validCollectionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseCollectionKind converts raw input into a CollectionKind.
func ParseCollectionKind(value string) (CollectionKind, error) {
	for _, candidate := range validCollectionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collection kind %q", value)
}
