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

type OrganizationController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewOrganizationController(db *gorm.DB, logger *logrus.Entry) *OrganizationController {
	return &OrganizationController{
		DB:     db,
		Logger: logger,
	}
}

type CreateOrganizationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type UpdateOrganizationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type JoinOrganizationRequest struct {
	JoinCode string `json:"join_code" validate:"required"`
}

type ChangeMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

type TransferRequest struct {
	CandidateID uint `json:"candidate_id" validate:"required"`
}

// Create creates an organization; the creator becomes its owner
func (oc *OrganizationController) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	var req CreateOrganizationRequest
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

	org := models.Organization{
		Title:    req.Title,
		JoinCode: utils.GenerateJoinCode(),
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.OrgRoleOwner,
			Status:         models.MemberStatusActive,
		}).Error
	})
	if err != nil {
		oc.Logger.WithError(err).Error("failed to create organization")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create organization",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(org)
}

// ListMine returns all organizations the caller belongs to
func (oc *OrganizationController) ListMine(c *fiber.Ctx) error {
	user := currentUser(c)

	var orgs []models.Organization
	err := oc.DB.
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ?", user.ID).
		Find(&orgs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch organizations",
		})
	}

	return c.JSON(orgs)
}

func (oc *OrganizationController) Get(c *fiber.Ctx) error {
	var org models.Organization
	if err := oc.DB.Preload("Members").First(&org, utils.ParseUint(c.Params("organizationId"))).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Organization not found",
		})
	}
	return c.JSON(org)
}

func (oc *OrganizationController) Update(c *fiber.Ctx) error {
	var req UpdateOrganizationRequest
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

	orgID := utils.ParseUint(c.Params("organizationId"))
	res := oc.DB.Model(&models.Organization{}).Where("id = ?", orgID).Update("title", req.Title)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update organization",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Organization not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Organization updated",
	})
}

// Delete removes the organization and everything under it
func (oc *OrganizationController) Delete(c *fiber.Ctx) error {
	orgID := utils.ParseUint(c.Params("organizationId"))

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).Where("organization_id = ?", orgID).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		var teamIDs []uint
		if err := tx.Model(&models.Team{}).Where("organization_id = ?", orgID).
			Pluck("id", &teamIDs).Error; err != nil {
			return err
		}
		if len(projectIDs) > 0 {
			var taskIDs []uint
			if err := tx.Model(&models.Task{}).Where("project_id IN ?", projectIDs).
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
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.TeamProject{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}
		if len(teamIDs) > 0 {
			if err := tx.Where("team_id IN ?", teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", teamIDs).Delete(&models.Team{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&models.OrganizationMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Organization{}, orgID).Error
	})
	if err != nil {
		oc.Logger.WithError(err).Error("failed to delete organization")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete organization",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Organization deleted",
	})
}

// Join adds the caller to an organization by join code, as viewer
func (oc *OrganizationController) Join(c *fiber.Ctx) error {
	user := currentUser(c)

	var req JoinOrganizationRequest
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

	var org models.Organization
	if err := oc.DB.Where("join_code = ?", req.JoinCode).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invalid join code",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join organization",
		})
	}

	existing, found, err := authz.ResolveOrgMembership(oc.DB, user.ID, org.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join organization",
		})
	}
	if found {
		if existing.Status == models.MemberStatusBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "banned from this organization",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Already a member of this organization",
		})
	}

	member := models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.OrgRoleViewer,
		Status:         models.MemberStatusActive,
	}
	if err := oc.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join organization",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Joined organization",
		"organization": org,
		"role":         member.Role,
	})
}

func (oc *OrganizationController) Members(c *fiber.Ctx) error {
	orgID := utils.ParseUint(c.Params("organizationId"))

	var members []models.OrganizationMember
	if err := oc.DB.Where("organization_id = ?", orgID).Find(&members).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch members",
		})
	}
	return c.JSON(members)
}

func (oc *OrganizationController) ChangeMemberRole(c *fiber.Ctx) error {
	var req ChangeMemberRoleRequest
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

	orgID := utils.ParseUint(c.Params("organizationId"))
	targetID := utils.ParseUint(c.Params("userId"))

	if err := authz.ChangeOrgMemberRole(oc.DB, orgID, targetID, models.OrgRole(req.Role)); err != nil {
		return respondGuardError(c, oc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Role updated",
	})
}

func (oc *OrganizationController) BanMember(c *fiber.Ctx) error {
	user := currentUser(c)
	orgID := utils.ParseUint(c.Params("organizationId"))
	targetID := utils.ParseUint(c.Params("userId"))

	if err := authz.BanOrgMember(oc.DB, orgID, user.ID, targetID); err != nil {
		return respondGuardError(c, oc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Member banned",
	})
}

func (oc *OrganizationController) UnbanMember(c *fiber.Ctx) error {
	orgID := utils.ParseUint(c.Params("organizationId"))
	targetID := utils.ParseUint(c.Params("userId"))

	if err := authz.UnbanOrgMember(oc.DB, orgID, targetID); err != nil {
		return respondGuardError(c, oc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Member unbanned",
	})
}

func (oc *OrganizationController) TransferOwnership(c *fiber.Ctx) error {
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

	orgID := utils.ParseUint(c.Params("organizationId"))
	if err := authz.TransferOwnership(oc.DB, orgID, user.ID, req.CandidateID); err != nil {
		return respondGuardError(c, oc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Ownership transferred",
	})
}

func (oc *OrganizationController) Leave(c *fiber.Ctx) error {
	user := currentUser(c)
	orgID := utils.ParseUint(c.Params("organizationId"))

	if err := authz.LeaveOrganization(oc.DB, orgID, user.ID); err != nil {
		return respondGuardError(c, oc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message": "Left organization",
	})
}
