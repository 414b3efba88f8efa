package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectRole is a user's role inside a project
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "manager"
	ProjectRoleMember  ProjectRole = "member"
)

// Project belongs to one organization and carries its own membership list
type Project struct {
	gorm.Model
	OrganizationID uint   `gorm:"not null;index" json:"organization_id"`
	Title          string `gorm:"not null" json:"title"`
	Description    string `json:"description"`

	// Relations
	Organization Organization    `json:"-"`
	Members      []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks        []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// ProjectMember links a user to a project. Exactly one membership per
// project holds ProjectRoleManager while the project exists.
type ProjectMember struct {
	ProjectID uint         `gorm:"primaryKey" json:"project_id"`
	UserID    uint         `gorm:"primaryKey" json:"user_id"`
	Role      ProjectRole  `gorm:"type:varchar(20);not null" json:"role"`
	Status    MemberStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Project Project `json:"-"`
	User    User    `json:"-"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}
