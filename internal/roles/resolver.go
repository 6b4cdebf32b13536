// Package roles derives the internal role and the branch-eligibility gate
// from directory attributes.
package roles

import (
	"github.com/campuskit/authcore/internal/common"
	"github.com/campuskit/authcore/internal/directory"
)

// Decision is the access-control outcome for one identity.
type Decision struct {
	Role           string
	BranchEligible bool
}

// Eligible reports whether a login may proceed. Branch eligibility is an
// authorization gate on top of authentication: admins always pass, everyone
// else needs the head-office branch.
func (d Decision) Eligible() bool {
	return d.Role == common.RoleAdmin || d.BranchEligible
}

// Resolver maps directory attributes to a Decision. All designations are
// injected from configuration; there are no package-level defaults.
type Resolver struct {
	managerialDepartment string
	headOfficeBranch     string
	admins               map[string]struct{}
}

// NewResolver builds a resolver. adminUsers is the static privileged
// allow-list of login names.
func NewResolver(managerialDepartment, headOfficeBranch string, adminUsers []string) *Resolver {
	admins := make(map[string]struct{}, len(adminUsers))
	for _, u := range adminUsers {
		admins[u] = struct{}{}
	}
	return &Resolver{
		managerialDepartment: managerialDepartment,
		headOfficeBranch:     headOfficeBranch,
		admins:               admins,
	}
}

// Resolve computes the role and branch eligibility for an identity.
// It never rejects by itself; the caller applies Decision.Eligible after
// password verification, so account existence does not leak through a
// different failure mode.
func (r *Resolver) Resolve(id *directory.Identity) Decision {
	role := common.RoleStudent
	if id.DepartmentName() == r.managerialDepartment {
		role = common.RoleAdmin
	} else if _, ok := r.admins[id.Username]; ok {
		role = common.RoleAdmin
	}

	branchEligible := id.ActiveBranchKey() == r.headOfficeBranch || role == common.RoleAdmin

	return Decision{Role: role, BranchEligible: branchEligible}
}
