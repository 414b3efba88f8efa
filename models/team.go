package models

import (
	"time"

	"gorm.io/gorm"
)

// TeamRole is a user's role inside a team
type TeamRole string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleMember TeamRole = "member"
)

// Team belongs to one organization and may be linked to one of the
// organization's projects through a TeamProject record.
type Team struct {
	gorm.Model
	OrganizationID uint   `gorm:"not null;index" json:"organization_id"`
	Title          string `gorm:"not null" json:"title"`
	Description    string `json:"description"`

	// Relations
	Organization Organization `json:"-"`
	Members      []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember links a user to a team. Exactly one membership per team
// holds TeamRoleLeader while the team exists.
type TeamMember struct {
	TeamID    uint         `gorm:"primaryKey" json:"team_id"`
	UserID    uint         `gorm:"primaryKey" json:"user_id"`
	Role      TeamRole     `gorm:"type:varchar(20);not null" json:"role"`
	Status    MemberStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// TeamProject links a team to a project of the same organization.
// A team is linked to at most one project, hence TeamID is the key.
type TeamProject struct {
	TeamID    uint      `gorm:"primaryKey" json:"team_id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Team    Team    `json:"-"`
	Project Project `json:"-"`
}

func (TeamProject) TableName() string {
	return "team_projects"
}
