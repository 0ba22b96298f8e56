package utils

import (
	"strings"
	"testing"
)

func TestOrderNumbersArePrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewOrderNumber()
		if !strings.HasPrefix(number, "FP-") {
			t.Fatalf("unexpected order number format: %s", number)
		}
		if seen[number] {
			t.Fatalf("duplicate order number: %s", number)
		}
		seen[number] = true
	}
}

func TestTransactionNumbersArePrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewTransactionNumber()
		if !strings.HasPrefix(number, "TX-") {
			t.Fatalf("unexpected transaction number format: %s", number)
		}
		if seen[number] {
			t.Fatalf("duplicate transaction number: %s", number)
		}
		seen[number] = true
	}
}
