package models

import (
	"time"

	"gorm.io/gorm"
)

// Task belongs to exactly one project and one team; the team must be
// linked to that project.
type Task struct {
	gorm.Model
	ProjectID   uint    `gorm:"not null;index" json:"project_id"`
	TeamID      uint    `gorm:"not null;index" json:"team_id"`
	AuthorID    uint    `gorm:"not null;index" json:"author_id"`
	AssigneeID  *uint   `gorm:"index" json:"assignee_id,omitempty"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `json:"description"`
	Status      string  `gorm:"default:'open'" json:"status"` // open, in_progress, done
	DueAt       *time.Time `json:"due_at,omitempty"`

	// Relations
	Project  Project   `json:"-"`
	Team     Team      `json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"-"`
	Assignee *User     `gorm:"foreignKey:AssigneeID" json:"-"`
	Comments []Comment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Timers   []Timer   `gorm:"foreignKey:TaskID" json:"timers,omitempty"`
}

// Comment is task-scoped discussion
type Comment struct {
	gorm.Model
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Body     string `gorm:"not null" json:"body"`

	// Relations
	Task   Task `json:"-"`
	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

// Timer is a task-scoped time tracking record. Scheduling and countdown
// behavior live in the client; the backend only stores intervals.
type Timer struct {
	gorm.Model
	TaskID    uint       `gorm:"not null;index" json:"task_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}
