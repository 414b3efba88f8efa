package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/utils"
)

type ProjectController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewProjectController(db *gorm.DB, logger *logrus.Entry) *ProjectController {
	return &ProjectController{
		DB:     db,
		Logger: logger,
	}
}

type CreateProjectRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type AddProjectMemberRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// Create creates a project; the creator becomes its manager
func (pc *ProjectController) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	var req CreateProjectRequest
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

	project := models.Project{
		OrganizationID: utils.ParseUint(req.OrganizationID),
		Title:          req.Title,
		Description:    req.Description,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProjectMember{
			ProjectID: project.ID,
			UserID:    user.ID,
			Role:      models.ProjectRoleManager,
			Status:    models.MemberStatusActive,
		}).Error
	})
	if err != nil {
		pc.Logger.WithError(err).Error("failed to create project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

// List returns the organization's projects (organizationId query param)
func (pc *ProjectController) List(c *fiber.Ctx) error {
	orgID := utils.ParseUint(c.Query("organizationId"))

	var projects []models.Project
	if err := pc.DB.Where("organization_id = ?", orgID).Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}
	return c.JSON(projects)
}

func (pc *ProjectController) Get(c *fiber.Ctx) error {
	var project models.Project
	if err := pc.DB.Preload("Members").First(&project, utils.ParseUint(c.Params("projectId"))).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(project)
}

func (pc *ProjectController) Update(c *fiber.Ctx) error {
	var req UpdateProjectRequest
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

	projectID := utils.ParseUint(c.Params("projectId"))
	res := pc.DB.Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"title":       req.Title,
			"description": req.Description,
		})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update project",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Project updated",
	})
}

// Delete removes the project. Only the manager may do this; the façade
// has already verified project membership.
func (pc *ProjectController) Delete(c *fiber.Ctx) error {
	user := currentUser(c)
	projectID := utils.ParseUint(c.Params("projectId"))

	member, found, err := authz.ResolveProjectMembership(pc.DB, user.ID, projectID)
	if err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	if !found || member.Role != models.ProjectRoleManager {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the project manager can delete the project",
		})
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Timer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.TeamProject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		pc.Logger.WithError(err).Error("failed to delete project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete project",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Project deleted",
	})
}

// AddMember adds an active organization member to the project. Only the
// manager may add members.
func (pc *ProjectController) AddMember(c *fiber.Ctx) error {
	user := currentUser(c)

	var req AddProjectMemberRequest
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

	projectID := utils.ParseUint(c.Params("projectId"))

	var project models.Project
	if err := pc.DB.First(&project, projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "project does not exist",
		})
	}

	actor, found, err := authz.ResolveProjectMembership(pc.DB, user.ID, projectID)
	if err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	if !found || actor.Role != models.ProjectRoleManager {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the project manager can add members",
		})
	}

	orgMember, found, err := authz.ResolveOrgMembership(pc.DB, req.UserID, project.OrganizationID)
	if err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	if !found || orgMember.Status != models.MemberStatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "candidate is not an active member of the organization",
		})
	}

	if _, found, err = authz.ResolveProjectMembership(pc.DB, req.UserID, projectID); err != nil {
		return respondGuardError(c, pc.Logger, err)
	} else if found {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Already a project member",
		})
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      models.ProjectRoleMember,
		Status:    models.MemberStatusActive,
	}
	if err := pc.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add member",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// RemoveMember removes a member; the manager must transfer first
func (pc *ProjectController) RemoveMember(c *fiber.Ctx) error {
	user := currentUser(c)
	projectID := utils.ParseUint(c.Params("projectId"))
	targetID := utils.ParseUint(c.Params("userId"))

	actor, found, err := authz.ResolveProjectMembership(pc.DB, user.ID, projectID)
	if err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	if !found || actor.Role != models.ProjectRoleManager {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the project manager can remove members",
		})
	}

	if err := authz.RemoveProjectMember(pc.DB, projectID, targetID); err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Member removed",
	})
}

func (pc *ProjectController) Leave(c *fiber.Ctx) error {
	user := currentUser(c)
	projectID := utils.ParseUint(c.Params("projectId"))

	if err := authz.RemoveProjectMember(pc.DB, projectID, user.ID); err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Left project",
	})
}

func (pc *ProjectController) TransferManagership(c *fiber.Ctx) error {
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

	projectID := utils.ParseUint(c.Params("projectId"))
	if err := authz.TransferManagership(pc.DB, projectID, user.ID, req.CandidateID); err != nil {
		return respondGuardError(c, pc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Managership transferred",
	})
}
