package models

import "testing"

func TestRoleRank(t *testing.T) {
	ordered := []Role{RoleStaff, RoleAssistantManager, RoleManager, RoleDistrictManager, RoleRegionalManager, RoleAdmin}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("expected %s to rank below %s", ordered[i-1], ordered[i])
		}
	}
	if Role("superuser").Rank() != -1 {
		t.Errorf("unknown role should rank -1, got %d", Role("superuser").Rank())
	}
	if Role("superuser").Valid() {
		t.Error("unknown role should not be valid")
	}
}

func TestRoleCanView(t *testing.T) {
	tests := []struct {
		viewer Role
		target Role
		want   bool
	}{
		{RoleStaff, RoleStaff, true},
		{RoleStaff, RoleAssistantManager, false},
		{RoleStaff, RoleAdmin, false},
		{RoleManager, RoleStaff, true},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleDistrictManager, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleStaff, true},
		{Role("superuser"), RoleStaff, false},
		{RoleAdmin, Role("superuser"), false},
	}

	for _, tt := range tests {
		if got := tt.viewer.CanView(tt.target); got != tt.want {
			t.Errorf("%s.CanView(%s) = %v, want %v", tt.viewer, tt.target, got, tt.want)
		}
	}
}

func TestRoleCanManage(t *testing.T) {
	tests := []struct {
		viewer Role
		target Role
		want   bool
	}{
		{RoleManager, RoleStaff, true},
		{RoleManager, RoleAssistantManager, true},
		{RoleManager, RoleManager, false},
		{RoleManager, RoleDistrictManager, false},
		{RoleStaff, RoleStaff, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleRegionalManager, true},
		{RoleAdmin, Role("superuser"), false},
	}

	for _, tt := range tests {
		if got := tt.viewer.CanManage(tt.target); got != tt.want {
			t.Errorf("%s.CanManage(%s) = %v, want %v", tt.viewer, tt.target, got, tt.want)
		}
	}
}

// Staff listings must never surface any role other than staff.
func TestVisibleRolesStaff(t *testing.T) {
	visible := RoleStaff.VisibleRoles()
	if len(visible) != 1 || visible[0] != RoleStaff {
		t.Fatalf("staff should see only staff, got %v", visible)
	}
}

func TestVisibleRolesAdmin(t *testing.T) {
	visible := RoleAdmin.VisibleRoles()
	if len(visible) != len(roleRanks) {
		t.Fatalf("admin should see all %d roles, got %v", len(roleRanks), visible)
	}
	if visible[0] != RoleAdmin || visible[len(visible)-1] != RoleStaff {
		t.Errorf("admin visible roles should run highest first, got %v", visible)
	}
}

func TestEffectiveBranch(t *testing.T) {
	branch := "branch-1"
	ctx := "branch-2"
	empty := ""

	tests := []struct {
		name    string
		profile Profile
		want    *string
	}{
		{"no branch at all", Profile{}, nil},
		{"home branch only", Profile{BranchID: &branch}, &branch},
		{"context overrides home branch", Profile{BranchID: &branch, BranchContext: &ctx}, &ctx},
		{"context only", Profile{BranchContext: &ctx}, &ctx},
		{"empty context falls back", Profile{BranchID: &branch, BranchContext: &empty}, &branch},
		{"empty everywhere", Profile{BranchID: &empty, BranchContext: &empty}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.EffectiveBranch()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("EffectiveBranch() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("EffectiveBranch() = %q, want %q", *got, *tt.want)
			}
		})
	}
}
