package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTaskController(db *gorm.DB, logger *logrus.Entry) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
	}
}

type CreateTaskRequest struct {
	OrganizationID string     `json:"organizationId" validate:"required"`
	ProjectID      string     `json:"projectId" validate:"required"`
	TeamID         string     `json:"teamId" validate:"required"`
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"omitempty,max=5000"`
	AssigneeID     *uint      `json:"assignee_id"`
	DueAt          *time.Time `json:"due_at"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status" validate:"required,oneof=open in_progress done"`
}

type AssignTaskRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

// Create creates a task in a project, worked by a team that must be
// linked to that project
func (tc *TaskController) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	var req CreateTaskRequest
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

	projectID := utils.ParseUint(req.ProjectID)
	teamID := utils.ParseUint(req.TeamID)

	var link models.TeamProject
	err := tc.DB.Where("team_id = ? AND project_id = ?", teamID, projectID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "team is not linked to this project",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create task",
		})
	}

	if req.AssigneeID != nil {
		if err := tc.requireProjectMember(*req.AssigneeID, projectID); err != nil {
			return respondGuardError(c, tc.Logger, err)
		}
	}

	task := models.Task{
		ProjectID:   projectID,
		TeamID:      teamID,
		AuthorID:    user.ID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to create task")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create task",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

// List returns the project's tasks (projectId query param)
func (tc *TaskController) List(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Query("projectId"))

	var tasks []models.Task
	if err := tc.DB.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}
	return c.JSON(tasks)
}

func (tc *TaskController) Get(c *fiber.Ctx) error {
	task, err := loadScopedTask(tc.DB, c)
	if err != nil {
		return respondGuardError(c, tc.Logger, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) Update(c *fiber.Ctx) error {
	var req UpdateTaskRequest
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

	task, err := loadScopedTask(tc.DB, c)
	if err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	res := tc.DB.Model(task).Updates(map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"status":      req.Status,
	})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update task",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Task updated",
	})
}

func (tc *TaskController) Delete(c *fiber.Ctx) error {
	task, err := loadScopedTask(tc.DB, c)
	if err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Timer{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		tc.Logger.WithError(err).Error("failed to delete task")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete task",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Task deleted",
	})
}

// Assign sets or clears the assignee; the assignee must be an active
// project member
func (tc *TaskController) Assign(c *fiber.Ctx) error {
	var req AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	task, err := loadScopedTask(tc.DB, c)
	if err != nil {
		return respondGuardError(c, tc.Logger, err)
	}

	if req.AssigneeID != nil {
		if err := tc.requireProjectMember(*req.AssigneeID, task.ProjectID); err != nil {
			return respondGuardError(c, tc.Logger, err)
		}
	}

	if err := tc.DB.Model(task).Update("assignee_id", req.AssigneeID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to assign task",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Task assigned",
	})
}

func (tc *TaskController) requireProjectMember(userID, projectID uint) error {
	member, found, err := authz.ResolveProjectMembership(tc.DB, userID, projectID)
	if err != nil {
		return err
	}
	if !found || member.Status != models.MemberStatusActive {
		return &authz.Error{
			Kind:   authz.KindNotAMember,
			Scope:  "project",
			Reason: "assignee is not an active project member",
		}
	}
	return nil
}
