package authz

import (
	"gorm.io/gorm"

	"taskhive/models"
)

// The transfer guards mutate the three singleton roles (organization
// owner, team leader, project manager). Each demote+promote pair runs in
// one transaction so no reader ever observes zero or two holders.

// TransferOwnership moves the organization owner role from actingUserID
// to candidateID. The acting user keeps a plain member role afterwards.
func TransferOwnership(db *gorm.DB, orgID, actingUserID, candidateID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		actor, found, err := ResolveOrgMembership(tx, actingUserID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "not a member of this organization")
		}
		if actingUserID == candidateID {
			return deny(KindInvariantViolation, "organization", "cannot transfer ownership to yourself")
		}
		candidate, found, err := ResolveOrgMembership(tx, candidateID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "candidate is not a member of this organization")
		}
		if candidate.Role == models.OrgRoleOwner {
			return deny(KindInvariantViolation, "organization", "candidate is already owner")
		}
		if candidate.Status != models.MemberStatusActive {
			return deny(KindBanned, "organization", "candidate is banned from this organization")
		}
		if actor.Role != models.OrgRoleOwner {
			return deny(KindInsufficientPermission, "organization", "only the owner can transfer ownership")
		}

		if err := updateOrgMemberRole(tx, orgID, actingUserID, models.OrgRoleMember); err != nil {
			return err
		}
		return updateOrgMemberRole(tx, orgID, candidateID, models.OrgRoleOwner)
	})
}

// TransferLeadership moves the team leader role from actingUserID to
// candidateID. The acting user becomes a regular team member.
func TransferLeadership(db *gorm.DB, teamID, actingUserID, candidateID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		actor, found, err := ResolveTeamMembership(tx, actingUserID, teamID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "team", "not a team member")
		}
		if actingUserID == candidateID {
			return deny(KindInvariantViolation, "team", "cannot transfer leadership to yourself")
		}
		candidate, found, err := ResolveTeamMembership(tx, candidateID, teamID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "team", "candidate is not a team member")
		}
		if candidate.Role == models.TeamRoleLeader {
			return deny(KindInvariantViolation, "team", "candidate is already leader")
		}
		if candidate.Status != models.MemberStatusActive {
			return deny(KindBanned, "team", "candidate is banned from this team")
		}
		if actor.Role != models.TeamRoleLeader {
			return deny(KindInsufficientPermission, "team", "only the team leader can transfer leadership")
		}

		if err := updateTeamMemberRole(tx, teamID, actingUserID, models.TeamRoleMember); err != nil {
			return err
		}
		return updateTeamMemberRole(tx, teamID, candidateID, models.TeamRoleLeader)
	})
}

// TransferManagership moves the project manager role from actingUserID to
// candidateID. The acting user becomes a regular project member.
func TransferManagership(db *gorm.DB, projectID, actingUserID, candidateID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		actor, found, err := ResolveProjectMembership(tx, actingUserID, projectID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "project", "not a project member")
		}
		if actingUserID == candidateID {
			return deny(KindInvariantViolation, "project", "cannot transfer managership to yourself")
		}
		candidate, found, err := ResolveProjectMembership(tx, candidateID, projectID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "project", "candidate is not a project member")
		}
		if candidate.Role == models.ProjectRoleManager {
			return deny(KindInvariantViolation, "project", "candidate is already manager")
		}
		if candidate.Status != models.MemberStatusActive {
			return deny(KindBanned, "project", "candidate is banned from this project")
		}
		if actor.Role != models.ProjectRoleManager {
			return deny(KindInsufficientPermission, "project", "only the project manager can transfer managership")
		}

		if err := updateProjectMemberRole(tx, projectID, actingUserID, models.ProjectRoleMember); err != nil {
			return err
		}
		return updateProjectMemberRole(tx, projectID, candidateID, models.ProjectRoleManager)
	})
}

func updateOrgMemberRole(tx *gorm.DB, orgID, userID uint, role models.OrgRole) error {
	res := tx.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func updateTeamMemberRole(tx *gorm.DB, teamID, userID uint, role models.TeamRole) error {
	res := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func updateProjectMemberRole(tx *gorm.DB, projectID, userID uint, role models.ProjectRole) error {
	res := tx.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
