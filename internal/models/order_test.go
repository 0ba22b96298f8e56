package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderApproved, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderDispatched, false},
		{OrderPending, OrderDelivered, false},
		{OrderApproved, OrderDispatched, true},
		{OrderApproved, OrderCancelled, true},
		{OrderApproved, OrderDelivered, false},
		{OrderDispatched, OrderDelivered, true},
		{OrderDispatched, OrderCancelled, true},
		{OrderDispatched, OrderApproved, false},
		{OrderDelivered, OrderApproved, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderApproved, false},
		{OrderPending, OrderPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsOrderStatus(t *testing.T) {
	for _, status := range []string{OrderPending, OrderApproved, OrderDispatched, OrderDelivered, OrderCancelled} {
		if !IsOrderStatus(status) {
			t.Errorf("expected %s to be a valid status", status)
		}
	}
	for _, status := range []string{"", "SHIPPED", "pending"} {
		if IsOrderStatus(status) {
			t.Errorf("expected %s to be rejected", status)
		}
	}
}
