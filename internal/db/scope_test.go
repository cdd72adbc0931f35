package db

import (
	"reflect"
	"testing"

	"github.com/stocknexus/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestProfileScope(t *testing.T) {
	tests := []struct {
		name     string
		viewer   models.Profile
		wantCond string
		wantArgs []interface{}
	}{
		{
			name:     "staff pinned to home branch",
			viewer:   models.Profile{ID: "u1", Role: models.RoleStaff, BranchID: strPtr("b1")},
			wantCond: "p.role = ANY($1) AND p.branch_id = $2",
			wantArgs: []interface{}{[]string{"staff"}, "b1"},
		},
		{
			name:     "branch context overrides home branch",
			viewer:   models.Profile{ID: "u2", Role: models.RoleManager, BranchID: strPtr("b1"), BranchContext: strPtr("b2")},
			wantCond: "p.role = ANY($1) AND p.branch_id = $2",
			wantArgs: []interface{}{[]string{"manager", "assistant_manager", "staff"}, "b2"},
		},
		{
			name:     "admin without branch is unrestricted",
			viewer:   models.Profile{ID: "u3", Role: models.RoleAdmin},
			wantCond: "p.role = ANY($1)",
			wantArgs: []interface{}{[]string{"admin", "regional_manager", "district_manager", "manager", "assistant_manager", "staff"}},
		},
		{
			name:     "regional manager without context scoped to region",
			viewer:   models.Profile{ID: "u4", Role: models.RoleRegionalManager, RegionID: strPtr("r1")},
			wantCond: "p.role = ANY($1) AND p.region_id = $2",
			wantArgs: []interface{}{[]string{"regional_manager", "district_manager", "manager", "assistant_manager", "staff"}, "r1"},
		},
		{
			name:     "district manager without context scoped to district",
			viewer:   models.Profile{ID: "u5", Role: models.RoleDistrictManager, DistrictID: strPtr("d1")},
			wantCond: "p.role = ANY($1) AND p.district_id = $2",
			wantArgs: []interface{}{[]string{"district_manager", "manager", "assistant_manager", "staff"}, "d1"},
		},
		{
			name:     "regional manager with branch context is branch scoped",
			viewer:   models.Profile{ID: "u6", Role: models.RoleRegionalManager, RegionID: strPtr("r1"), BranchContext: strPtr("b7")},
			wantCond: "p.role = ANY($1) AND p.branch_id = $2",
			wantArgs: []interface{}{[]string{"regional_manager", "district_manager", "manager", "assistant_manager", "staff"}, "b7"},
		},
		{
			name:     "unanchored viewer sees only themselves",
			viewer:   models.Profile{ID: "u7", Role: models.RoleManager},
			wantCond: "p.role = ANY($1) AND p.id = $2",
			wantArgs: []interface{}{[]string{"manager", "assistant_manager", "staff"}, "u7"},
		},
		{
			name:     "regional manager missing region sees only themselves",
			viewer:   models.Profile{ID: "u8", Role: models.RoleRegionalManager},
			wantCond: "p.role = ANY($1) AND p.id = $2",
			wantArgs: []interface{}{[]string{"regional_manager", "district_manager", "manager", "assistant_manager", "staff"}, "u8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, args := ProfileScope(&tt.viewer)
			if cond != tt.wantCond {
				t.Errorf("condition = %q, want %q", cond, tt.wantCond)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}
