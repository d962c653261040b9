package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses() {
		got, err := ParseOrderStatus(string(status))
		if err != nil || got != status {
			t.Fatalf("expected %s to parse, got %q err=%v", status, got, err)
		}
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if OrderStatus(OrderStatusAll).IsValid() {
		t.Fatalf("the all filter is not a storable status")
	}
}

func TestOrderStatusesReturnsCopy(t *testing.T) {
	list := OrderStatuses()
	list[0] = "mutated"
	if OrderStatuses()[0] != OrderStatusPending {
		t.Fatalf("mutating the returned slice must not leak")
	}
}

func TestParseCollectionKind(t *testing.T) {
	if kind, err := ParseCollectionKind("varieties"); err != nil || kind != CollectionVarieties {
		t.Fatalf("unexpected parse result %q %v", kind, err)
	}
	if _, err := ParseCollectionKind("customers"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}
