package authz

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"taskhive/models"
)

// EntityRefs carries the entity ids a handler declared relevant for the
// request. Pointer fields distinguish "absent" (nil) from "present but
// empty" - the latter is malformed input and always denied.
type EntityRefs struct {
	OrganizationID *string
	TeamID         *string
	ProjectID      *string
}

// Evaluate walks the containment hierarchy for the given principal and
// returns nil on allow or an *Error on deny. Checks run in order
// organization, team, project, each short-circuiting on the first
// violation; the permission matrix is consulted last, against the first
// organization role resolved during the walk.
//
// A request with no entity ids at all is an unscoped action (for example
// "list my organizations") and is always allowed.
func Evaluate(db *gorm.DB, userID uint, refs EntityRefs, required []Permission) error {
	if refs.OrganizationID == nil && refs.TeamID == nil && refs.ProjectID == nil {
		return nil
	}

	var orgRole models.OrgRole
	haveOrgRole := false

	if refs.OrganizationID != nil {
		orgID, err := parseRef(*refs.OrganizationID, "organization")
		if err != nil {
			return err
		}
		member, found, err := ResolveOrgMembership(db, userID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "not a member of this organization")
		}
		if member.Status == models.MemberStatusBanned {
			return deny(KindBanned, "organization", "banned from this organization")
		}
		orgRole = member.Role
		haveOrgRole = true
	}

	if refs.TeamID != nil {
		teamID, err := parseRef(*refs.TeamID, "team")
		if err != nil {
			return err
		}
		var team models.Team
		if err := db.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return deny(KindEntityNotFound, "team", "team does not exist")
			}
			return err
		}
		orgMember, found, err := ResolveOrgMembership(db, userID, team.OrganizationID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "not a member of the team's organization")
		}
		if !haveOrgRole {
			orgRole = orgMember.Role
			haveOrgRole = true
		}
		// Org owners and admins satisfy the team check without a
		// membership row. Note this bypass does NOT exist for projects.
		if orgMember.Role != models.OrgRoleOwner && orgMember.Role != models.OrgRoleAdmin {
			teamMember, found, err := ResolveTeamMembership(db, userID, teamID)
			if err != nil {
				return err
			}
			if !found {
				return deny(KindNotAMember, "team", "not a team member")
			}
			if teamMember.Status == models.MemberStatusBanned {
				return deny(KindBanned, "team", "banned from team")
			}
		}
	}

	if refs.ProjectID != nil {
		projectID, err := parseRef(*refs.ProjectID, "project")
		if err != nil {
			return err
		}
		var project models.Project
		if err := db.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return deny(KindEntityNotFound, "project", "project does not exist")
			}
			return err
		}
		orgMember, found, err := ResolveOrgMembership(db, userID, project.OrganizationID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "not a member of the project's organization")
		}
		if orgMember.Status != models.MemberStatusActive {
			return deny(KindBanned, "organization", "banned from the project's organization")
		}
		if !haveOrgRole {
			orgRole = orgMember.Role
			haveOrgRole = true
		}
		// A project membership row is required regardless of org role:
		// the owner/admin bypass does not apply at project level.
		projectMember, found, err := ResolveProjectMembership(db, userID, projectID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "project", "not a project member")
		}
		if projectMember.Status == models.MemberStatusBanned {
			return deny(KindBanned, "project", "banned from project")
		}
	}

	if haveOrgRole {
		for _, perm := range required {
			if !RoleHas(orgRole, perm) {
				return deny(KindInsufficientPermission, "organization",
					"insufficient role permissions: missing %s", perm)
			}
		}
	}

	return nil
}

func parseRef(raw, scope string) (uint, *Error) {
	if raw == "" {
		return 0, deny(KindMalformedReference, scope, "empty %s id", scope)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, deny(KindMalformedReference, scope, "malformed %s id %q", scope, raw)
	}
	return uint(id), nil
}
