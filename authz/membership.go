package authz

import (
	"gorm.io/gorm"

	"taskhive/models"
)

// Guards for membership status and removal. These enforce the rules the
// generic evaluator cannot express: the owner is untouchable, banning
// destroys the role, and privileged roles must be transferred before
// their holder can be removed.

// BanOrgMember bans targetUserID from the organization. The role is
// forced to viewer in the same write, so an unban never restores the
// previous role.
func BanOrgMember(db *gorm.DB, orgID, actingUserID, targetUserID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		target, found, err := ResolveOrgMembership(tx, targetUserID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "target is not a member of this organization")
		}
		if target.Role == models.OrgRoleOwner {
			return deny(KindInvariantViolation, "organization", "the organization owner cannot be banned")
		}
		if actingUserID == targetUserID {
			return deny(KindInvariantViolation, "organization", "cannot ban yourself")
		}
		return tx.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, targetUserID).
			Updates(map[string]interface{}{
				"status": models.MemberStatusBanned,
				"role":   models.OrgRoleViewer,
			}).Error
	})
}

// UnbanOrgMember lifts a ban. The membership comes back as viewer; the
// pre-ban role is gone.
func UnbanOrgMember(db *gorm.DB, orgID, targetUserID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		target, found, err := ResolveOrgMembership(tx, targetUserID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "target is not a member of this organization")
		}
		if target.Status != models.MemberStatusBanned {
			return deny(KindInvariantViolation, "organization", "target is not banned")
		}
		return tx.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, targetUserID).
			Update("status", models.MemberStatusActive).Error
	})
}

// ChangeOrgMemberRole assigns a new role to targetUserID. Ownership is
// never assignable here - only TransferOwnership moves it - and the
// owner's own row is never modifiable through this path.
func ChangeOrgMemberRole(db *gorm.DB, orgID, targetUserID uint, newRole models.OrgRole) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if newRole == models.OrgRoleOwner {
			return deny(KindInvariantViolation, "organization", "ownership is assigned only by transfer")
		}
		switch newRole {
		case models.OrgRoleAdmin, models.OrgRoleMember, models.OrgRoleViewer:
		default:
			return deny(KindMalformedReference, "organization", "unknown role %q", newRole)
		}
		target, found, err := ResolveOrgMembership(tx, targetUserID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "target is not a member of this organization")
		}
		if target.Role == models.OrgRoleOwner {
			return deny(KindInvariantViolation, "organization", "the owner's role cannot be changed")
		}
		if target.Status != models.MemberStatusActive {
			return deny(KindInvariantViolation, "organization", "banned members hold the viewer role until unbanned")
		}
		return updateOrgMemberRole(tx, orgID, targetUserID, newRole)
	})
}

// LeaveOrganization removes the caller's own membership. The owner must
// transfer ownership first.
func LeaveOrganization(db *gorm.DB, orgID, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		member, found, err := ResolveOrgMembership(tx, userID, orgID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "organization", "not a member of this organization")
		}
		if member.Role == models.OrgRoleOwner {
			return deny(KindInvariantViolation, "organization", "transfer ownership before leaving the organization")
		}
		return tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&models.OrganizationMember{}).Error
	})
}

// RemoveTeamMember removes userID from the team. The leader cannot be
// removed while other members remain; when the leader is the sole member
// the removal deletes the team itself (and its project link).
func RemoveTeamMember(db *gorm.DB, teamID, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		member, found, err := ResolveTeamMembership(tx, userID, teamID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "team", "not a team member")
		}

		var count int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if member.Role == models.TeamRoleLeader && count > 1 {
			return deny(KindInvariantViolation, "team", "transfer leadership before leaving the team")
		}

		if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).
			Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if count == 1 {
			// Last membership gone: the team goes with it.
			if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamProject{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Team{}, teamID).Error
		}
		return nil
	})
}

// RemoveProjectMember removes userID from the project. The manager must
// transfer managership first; a project always keeps exactly one manager
// while it exists.
func RemoveProjectMember(db *gorm.DB, projectID, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		member, found, err := ResolveProjectMembership(tx, userID, projectID)
		if err != nil {
			return err
		}
		if !found {
			return deny(KindNotAMember, "project", "not a project member")
		}
		if member.Role == models.ProjectRoleManager {
			return deny(KindInvariantViolation, "project", "transfer managership before leaving the project")
		}
		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error
	})
}
