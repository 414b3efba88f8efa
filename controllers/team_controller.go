package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTeamController(db *gorm.DB, logger *logrus.Entry) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

type CreateTeamRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateTeamRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type AddTeamMemberRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type LinkProjectRequest struct {
	ProjectID uint `json:"project_id" validate:"required"`
}

// Create creates a team; the creator becomes its leader
func (tc *TeamController) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	team := models.Team{
		OrganizationID: utils.ParseUint(req.OrganizationID),
		Title:          req.Title,
		Description:    req.Description,
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		return tx.Create(&models.TeamMember{
			TeamID: team.ID,
			UserID: user.ID,
			Role:   models.TeamRoleLeader,
			Status: models.MemberStatusActive,
		}).Error
	})
	if err != nil {
		tc.Logger.WithError(err).Error("failed to create team")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create team",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(team)
}

// List returns the organization's teams (organizationId query param)
func (tc *TeamController) List(c *fiber.Ctx) error {
	orgID := utils.ParseUint(c.Query("organizationId"))

	var teams []models.Team
	if err := tc.DB.Where("organization_id = ?", orgID).Find(&teams).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch teams",
		})
	}
	return c.JSON(teams)
}

func (tc *TeamController) Get(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, utils.ParseUint(c.Params("teamId"))).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}
	return c.JSON(team)
}

func (tc *TeamController) Update(c *fiber.Ctx) error {
	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	teamID := utils.ParseUint(c.Params("teamId"))
	res := tc.DB.Model(&models.Team{}).Where("id = ?", teamID).
		Updates(map[string]interface{}{
			"title":       req.Title,
			"description": req.Description,
		})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update team",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Team updated",
	})
}

// Delete removes the team. Leader only.
func (tc *TeamController) Delete(c *fiber.Ctx) error {
	user := currentUser(c)
	teamID := utils.ParseUint(c.Params("teamId"))

	if err := tc.requireLeader(user.ID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamProject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		tc.Logger.WithError(err).Error("failed to delete team")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete team",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Team deleted",
	})
}

// LinkProject links the team to a project of the same organization.
// A team is linked to at most one project at a time.
func (tc *TeamController) LinkProject(c *fiber.Ctx) error {
	user := currentUser(c)

	var req LinkProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	teamID := utils.ParseUint(c.Params("teamId"))
	if err := tc.requireLeader(user.ID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "team does not exist",
		})
	}
	var project models.Project
	if err := tc.DB.First(&project, req.ProjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "project does not exist",
		})
	}
	if project.OrganizationID != team.OrganizationID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "team and project belong to different organizations",
		})
	}

	var existing models.TeamProject
	err := tc.DB.Where("team_id = ?", teamID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "team is already linked to a project",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to link project",
		})
	}

	link := models.TeamProject{
		TeamID:    teamID,
		ProjectID: req.ProjectID,
	}
	if err := tc.DB.Create(&link).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to link project",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

func (tc *TeamController) UnlinkProject(c *fiber.Ctx) error {
	user := currentUser(c)
	teamID := utils.ParseUint(c.Params("teamId"))

	if err := tc.requireLeader(user.ID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	if err := tc.DB.Where("team_id = ?", teamID).Delete(&models.TeamProject{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to unlink project",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Project unlinked",
	})
}

// AddMember adds an active organization member to the team. Leader only;
// org owners/admins pass the route check but still need the leader role
// to manage the roster.
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	user := currentUser(c)

	var req AddTeamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	teamID := utils.ParseUint(c.Params("teamId"))
	if err := tc.requireLeader(user.ID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "team does not exist",
		})
	}

	orgMember, found, err := authz.ResolveOrgMembership(tc.DB, req.UserID, team.OrganizationID)
	if err != nil {
		return respondGuardError(c, tc.Logger, err)
	}
	if !found || orgMember.Status != models.MemberStatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "candidate is not an active member of the organization",
		})
	}

	if _, found, err = authz.ResolveTeamMembership(tc.DB, req.UserID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	} else if found {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Already a team member",
		})
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: req.UserID,
		Role:   models.TeamRoleMember,
		Status: models.MemberStatusActive,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add member",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := currentUser(c)
	teamID := utils.ParseUint(c.Params("teamId"))
	targetID := utils.ParseUint(c.Params("userId"))

	if err := tc.requireLeader(user.ID, teamID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	if err := authz.RemoveTeamMember(tc.DB, teamID, targetID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Member removed",
	})
}

func (tc *TeamController) Leave(c *fiber.Ctx) error {
	user := currentUser(c)
	teamID := utils.ParseUint(c.Params("teamId"))

	if err := authz.RemoveTeamMember(tc.DB, teamID, user.ID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Left team",
	})
}

func (tc *TeamController) TransferLeadership(c *fiber.Ctx) error {
	user := currentUser(c)

	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	teamID := utils.ParseUint(c.Params("teamId"))
	if err := authz.TransferLeadership(tc.DB, teamID, user.ID, req.CandidateID); err != nil {
		return respondGuardError(c, tc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Leadership transferred",
	})
}

// requireLeader verifies the caller holds the team leader role
func (tc *TeamController) requireLeader(userID, teamID uint) error {
	member, found, err := authz.ResolveTeamMembership(tc.DB, userID, teamID)
	if err != nil {
		return err
	}
	if !found || member.Role != models.TeamRoleLeader {
		return &authz.Error{
			Kind:   authz.KindInsufficientPermission,
			Scope:  "team",
			Reason: "only the team leader can manage the team",
		}
	}
	return nil
}
