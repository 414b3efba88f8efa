package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/models"
)

type TimerController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTimerController(db *gorm.DB, logger *logrus.Entry) *TimerController {
	return &TimerController{
		DB:     db,
		Logger: logger,
	}
}

// Start opens a new time tracking interval on a task. One running timer
// per user per task.
func (tmc *TimerController) Start(c *fiber.Ctx) error {
	user := currentUser(c)

	task, err := loadScopedTask(tmc.DB, c)
	if err != nil {
		return respondGuardError(c, tmc.Logger, err)
	}

	var running models.Timer
	err = tmc.DB.Where("task_id = ? AND user_id = ? AND stopped_at IS NULL", task.ID, user.ID).
		First(&running).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a timer is already running for this task",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start timer",
		})
	}

	timer := models.Timer{
		TaskID:    task.ID,
		UserID:    user.ID,
		StartedAt: time.Now(),
	}
	if err := tmc.DB.Create(&timer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start timer",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(timer)
}

// Stop closes the caller's running timer on the task
func (tmc *TimerController) Stop(c *fiber.Ctx) error {
	user := currentUser(c)

	task, err := loadScopedTask(tmc.DB, c)
	if err != nil {
		return respondGuardError(c, tmc.Logger, err)
	}

	var running models.Timer
	err = tmc.DB.Where("task_id = ? AND user_id = ? AND stopped_at IS NULL", task.ID, user.ID).
		First(&running).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no running timer for this task",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to stop timer",
		})
	}

	now := time.Now()
	if err := tmc.DB.Model(&running).Update("stopped_at", &now).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to stop timer",
		})
	}
	return c.JSON(running)
}

// List returns all timers on the task
func (tmc *TimerController) List(c *fiber.Ctx) error {
	task, err := loadScopedTask(tmc.DB, c)
	if err != nil {
		return respondGuardError(c, tmc.Logger, err)
	}

	var timers []models.Timer
	if err := tmc.DB.Where("task_id = ?", task.ID).Order("started_at desc").Find(&timers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch timers",
		})
	}
	return c.JSON(timers)
}
