package api

import (
	"context"
	"testing"

	"github.com/stocknexus/backend/internal/models"
)

func ptr(s string) *string { return &s }

// Placement checks that need no database lookup: branch-bound viewers
// and region/district mismatches are decided from the request alone.
func TestStaffPlacementAllowed(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil)
	ctx := context.Background()

	branchManager := &models.Profile{
		ID: "m1", Role: models.RoleManager,
		BranchID: ptr("b1"), RegionID: ptr("r1"), DistrictID: ptr("d1"),
	}
	regionalManager := &models.Profile{
		ID: "rm1", Role: models.RoleRegionalManager, RegionID: ptr("r1"),
	}
	districtManager := &models.Profile{
		ID: "dm1", Role: models.RoleDistrictManager, DistrictID: ptr("d1"),
	}

	tests := []struct {
		name       string
		viewer     *models.Profile
		branchID   *string
		regionID   *string
		districtID *string
		want       bool
	}{
		{"branch manager in own branch", branchManager, ptr("b1"), ptr("r1"), ptr("d1"), true},
		{"branch manager names a foreign branch", branchManager, ptr("b2"), ptr("r1"), ptr("d1"), false},
		{"branch manager names a foreign region", branchManager, ptr("b1"), ptr("r2"), ptr("d1"), false},
		{"branch manager names a foreign district", branchManager, ptr("b1"), ptr("r1"), ptr("d2"), false},
		{"branch manager with no branch at all", branchManager, nil, ptr("r1"), ptr("d1"), false},
		{"regional manager in own region", regionalManager, nil, ptr("r1"), nil, true},
		{"regional manager names a foreign region", regionalManager, nil, ptr("r2"), nil, false},
		{"regional manager with no region requested", regionalManager, nil, nil, nil, false},
		{"district manager in own district", districtManager, nil, nil, ptr("d1"), true},
		{"district manager names a foreign district", districtManager, nil, nil, ptr("d2"), false},
		{"district manager with no district requested", districtManager, nil, nil, nil, false},
		{"staff may not place anyone", &models.Profile{ID: "s1", Role: models.RoleStaff}, ptr("b1"), nil, nil, false},
		{"admin is unrestricted", &models.Profile{ID: "a1", Role: models.RoleAdmin}, ptr("b9"), ptr("r9"), ptr("d9"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handler.staffPlacementAllowed(ctx, tt.viewer, tt.branchID, tt.regionID, tt.districtID)
			if got != tt.want {
				t.Errorf("staffPlacementAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinScope(t *testing.T) {
	tests := []struct {
		name   string
		viewer models.Profile
		target models.Profile
		want   bool
	}{
		{
			"same branch",
			models.Profile{Role: models.RoleManager, BranchID: ptr("b1")},
			models.Profile{Role: models.RoleStaff, BranchID: ptr("b1")},
			true,
		},
		{
			"different branch",
			models.Profile{Role: models.RoleManager, BranchID: ptr("b1")},
			models.Profile{Role: models.RoleStaff, BranchID: ptr("b2")},
			false,
		},
		{
			"branch context bounds the viewer",
			models.Profile{Role: models.RoleRegionalManager, RegionID: ptr("r1"), BranchContext: ptr("b3")},
			models.Profile{Role: models.RoleStaff, BranchID: ptr("b4"), RegionID: ptr("r1")},
			false,
		},
		{
			"regional manager over own region",
			models.Profile{Role: models.RoleRegionalManager, RegionID: ptr("r1")},
			models.Profile{Role: models.RoleStaff, RegionID: ptr("r1")},
			true,
		},
		{
			"regional manager over foreign region",
			models.Profile{Role: models.RoleRegionalManager, RegionID: ptr("r1")},
			models.Profile{Role: models.RoleStaff, RegionID: ptr("r2")},
			false,
		},
		{
			"admin over anyone",
			models.Profile{Role: models.RoleAdmin},
			models.Profile{Role: models.RoleRegionalManager, RegionID: ptr("r2")},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinScope(&tt.viewer, &tt.target); got != tt.want {
				t.Errorf("withinScope() = %v, want %v", got, tt.want)
			}
		})
	}
}
