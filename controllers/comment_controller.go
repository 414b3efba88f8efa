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

type CommentController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewCommentController(db *gorm.DB, logger *logrus.Entry) *CommentController {
	return &CommentController{
		DB:     db,
		Logger: logger,
	}
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

func (cc *CommentController) Create(c *fiber.Ctx) error {
	user := currentUser(c)

	var req CreateCommentRequest
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

	task, err := loadScopedTask(cc.DB, c)
	if err != nil {
		return respondGuardError(c, cc.Logger, err)
	}

	comment := models.Comment{
		TaskID:   task.ID,
		AuthorID: user.ID,
		Body:     req.Body,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create comment",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (cc *CommentController) List(c *fiber.Ctx) error {
	task, err := loadScopedTask(cc.DB, c)
	if err != nil {
		return respondGuardError(c, cc.Logger, err)
	}

	var comments []models.Comment
	if err := cc.DB.Where("task_id = ?", task.ID).Order("created_at asc").Find(&comments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch comments",
		})
	}
	return c.JSON(comments)
}

// Update edits a comment; authors only
func (cc *CommentController) Update(c *fiber.Ctx) error {
	user := currentUser(c)

	var req UpdateCommentRequest
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

	comment, err := cc.loadComment(c)
	if err != nil {
		return respondGuardError(c, cc.Logger, err)
	}
	if comment.AuthorID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the author can edit a comment",
		})
	}

	if err := cc.DB.Model(comment).Update("body", req.Body).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update comment",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Comment updated",
	})
}

// Delete removes a comment; authors only
func (cc *CommentController) Delete(c *fiber.Ctx) error {
	user := currentUser(c)

	comment, err := cc.loadComment(c)
	if err != nil {
		return respondGuardError(c, cc.Logger, err)
	}
	if comment.AuthorID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "only the author can delete a comment",
		})
	}

	if err := cc.DB.Delete(comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete comment",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Comment deleted",
	})
}

func (cc *CommentController) loadComment(c *fiber.Ctx) (*models.Comment, error) {
	task, err := loadScopedTask(cc.DB, c)
	if err != nil {
		return nil, err
	}

	commentID := utils.ParseUint(c.Params("commentId"))
	var comment models.Comment
	if err := cc.DB.Where("id = ? AND task_id = ?", commentID, task.ID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &authz.Error{
				Kind:   authz.KindEntityNotFound,
				Scope:  "project",
				Reason: "comment does not exist",
			}
		}
		return nil, err
	}
	return &comment, nil
}
