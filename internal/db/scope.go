package db

import (
	"fmt"

	"github.com/stocknexus/backend/internal/models"
)

// ProfileScope builds the WHERE fragment that restricts a profile
// listing to what the viewer may see. This is the only place the
// role-hierarchy filter is expressed; every listing query composes it.
//
// The rules, in order:
//   - only roles at or below the viewer's rank are visible;
//   - with an effective branch (branch_context, else branch_id) the
//     listing is limited to that branch;
//   - without one, regional managers are limited to their region,
//     district managers to their district, admins are unrestricted,
//     and everyone else sees only their own profile.
//
// The fragment references the profiles table as "p". Returned args
// start at $1; callers appending further conditions must continue the
// placeholder numbering from len(args)+1.
func ProfileScope(viewer *models.Profile) (string, []interface{}) {
	roles := viewer.Role.VisibleRoles()
	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}

	args := []interface{}{roleNames}
	cond := "p.role = ANY($1)"

	if eff := viewer.EffectiveBranch(); eff != nil {
		args = append(args, *eff)
		return cond + fmt.Sprintf(" AND p.branch_id = $%d", len(args)), args
	}

	switch viewer.Role {
	case models.RoleAdmin:
		return cond, args
	case models.RoleRegionalManager:
		if viewer.RegionID != nil && *viewer.RegionID != "" {
			args = append(args, *viewer.RegionID)
			return cond + fmt.Sprintf(" AND p.region_id = $%d", len(args)), args
		}
	case models.RoleDistrictManager:
		if viewer.DistrictID != nil && *viewer.DistrictID != "" {
			args = append(args, *viewer.DistrictID)
			return cond + fmt.Sprintf(" AND p.district_id = $%d", len(args)), args
		}
	}

	// No branch and no hierarchy scope to pin the viewer to: the only
	// safely visible profile is their own.
	args = append(args, viewer.ID)
	return cond + fmt.Sprintf(" AND p.id = $%d", len(args)), args
}
