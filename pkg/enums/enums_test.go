package enums

import "testing"

func TestOrderStatusPositions(t *testing.T) {
	cases := map[OrderStatus]int{
		OrderStatusPending:    1,
		OrderStatusProcessing: 2,
		OrderStatusShipped:    3,
		OrderStatusDelivered:  4,
		OrderStatus("Lost"):   0,
	}
	for status, want := range cases {
		if got := status.Position(); got != want {
			t.Fatalf("status %q expected position %d got %d", status, want, got)
		}
	}
	if OrderStatus("Lost").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestParseOrderStatusIsExact(t *testing.T) {
	if got, err := ParseOrderStatus("Shipped"); err != nil || got != OrderStatusShipped {
		t.Fatalf("expected Shipped, got %q err=%v", got, err)
	}
	for _, raw := range []string{"shipped", " Shipped", ""} {
		if _, err := ParseOrderStatus(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestOrderStatusesReturnsCopy(t *testing.T) {
	statuses := OrderStatuses()
	statuses[0] = "Mutated"
	if OrderStatuses()[0] != OrderStatusPending {
		t.Fatal("expected OrderStatuses to return a defensive copy")
	}
}

func TestParseEventTopic(t *testing.T) {
	if got, err := ParseEventTopic("cart-updated"); err != nil || got != EventTopicCartUpdated {
		t.Fatalf("expected cart-updated, got %q err=%v", got, err)
	}
	if _, err := ParseEventTopic("cart"); err == nil {
		t.Fatal("expected unknown topic to be rejected")
	}
	if len(EventTopics()) != 3 {
		t.Fatalf("expected 3 topics")
	}
}
