package services

import (
	"testing"

	"github.com/stocknexus/backend/internal/models"
)

func TestStockAlertText(t *testing.T) {
	branch := models.Branch{Name: "Mitte"}

	entry := func(name string, status models.StockStatus) models.StockEntry {
		return models.StockEntry{ItemName: name, Status: status}
	}

	tests := []struct {
		name    string
		entries []models.StockEntry
		want    string
	}{
		{
			"mixed digest",
			[]models.StockEntry{
				entry("Espresso Beans", models.StockCritical),
				entry("Paper Cups", models.StockLow),
			},
			"Stock Nexus: Mitte has 1 critical and 1 low items (Espresso Beans, Paper Cups)",
		},
		{
			"truncates after three names",
			[]models.StockEntry{
				entry("A", models.StockCritical),
				entry("B", models.StockCritical),
				entry("C", models.StockLow),
				entry("D", models.StockLow),
			},
			"Stock Nexus: Mitte has 2 critical and 2 low items (A, B, C, ...)",
		},
		{
			"empty digest has no name list",
			nil,
			"Stock Nexus: Mitte has 0 critical and 0 low items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stockAlertText(branch, tt.entries); got != tt.want {
				t.Errorf("stockAlertText() = %q, want %q", got, tt.want)
			}
		})
	}
}
