package models

import "testing"

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      StockStatus
	}{
		{"zero quantity", 0, 10, StockCritical},
		{"exactly half threshold", 5, 10, StockCritical},
		{"just below half on odd threshold", 4, 9, StockCritical},
		{"just above half on odd threshold", 5, 9, StockLow},
		{"just above half", 6, 10, StockLow},
		{"at threshold", 10, 10, StockLow},
		{"just above threshold", 11, 10, StockAdequate},
		{"well stocked", 100, 10, StockAdequate},
		{"zero threshold zero quantity", 0, 0, StockCritical},
		{"zero threshold with stock", 1, 0, StockAdequate},
		{"threshold one empty", 0, 1, StockCritical},
		{"threshold one at level", 1, 1, StockLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStock(tt.quantity, tt.threshold); got != tt.want {
				t.Errorf("ClassifyStock(%d, %d) = %q, want %q", tt.quantity, tt.threshold, got, tt.want)
			}
		})
	}
}

// Every non-negative (quantity, threshold) pair must map to exactly one
// of the three statuses.
func TestClassifyStockExhaustive(t *testing.T) {
	for quantity := 0; quantity <= 50; quantity++ {
		for threshold := 0; threshold <= 50; threshold++ {
			status := ClassifyStock(quantity, threshold)
			switch status {
			case StockCritical, StockLow, StockAdequate:
			default:
				t.Fatalf("ClassifyStock(%d, %d) = %q, not a known status", quantity, threshold, status)
			}

			critical := 2*quantity <= threshold
			low := !critical && quantity <= threshold
			switch {
			case critical && status != StockCritical:
				t.Fatalf("ClassifyStock(%d, %d) = %q, want critical", quantity, threshold, status)
			case low && status != StockLow:
				t.Fatalf("ClassifyStock(%d, %d) = %q, want low", quantity, threshold, status)
			case !critical && !low && status != StockAdequate:
				t.Fatalf("ClassifyStock(%d, %d) = %q, want adequate", quantity, threshold, status)
			}
		}
	}
}

func TestMovementTypeValid(t *testing.T) {
	tests := []struct {
		typ  MovementType
		want bool
	}{
		{MovementIn, true},
		{MovementOut, true},
		{MovementType(""), false},
		{MovementType("transfer"), false},
		{MovementType("IN"), false},
	}

	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("MovementType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
