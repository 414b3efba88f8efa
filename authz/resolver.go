package authz

import (
	"errors"

	"gorm.io/gorm"

	"taskhive/models"
)

// The resolvers are the only part of the engine that reads membership rows.
// Absence of a row is not an error: callers decide whether it means deny.

// ResolveOrgMembership fetches the membership of userID in orgID
func ResolveOrgMembership(db *gorm.DB, userID, orgID uint) (*models.OrganizationMember, bool, error) {
	var m models.OrganizationMember
	err := db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// ResolveTeamMembership fetches the membership of userID in teamID
func ResolveTeamMembership(db *gorm.DB, userID, teamID uint) (*models.TeamMember, bool, error) {
	var m models.TeamMember
	err := db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// ResolveProjectMembership fetches the membership of userID in projectID
func ResolveProjectMembership(db *gorm.DB, userID, projectID uint) (*models.ProjectMember, bool, error) {
	var m models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}
