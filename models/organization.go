package models

import (
	"time"

	"gorm.io/gorm"
)

// OrgRole is a user's role inside an organization
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
	OrgRoleViewer OrgRole = "viewer"
)

// MemberStatus is shared by all membership records (org, project, team)
type MemberStatus string

const (
	MemberStatusActive MemberStatus = "active"
	MemberStatusBanned MemberStatus = "banned"
)

// Organization is the top level of the containment hierarchy
type Organization struct {
	gorm.Model
	Title string `gorm:"not null" json:"title"`

	// Self-service join code, handed out by the owner
	JoinCode string `gorm:"uniqueIndex;not null" json:"join_code"`

	// Relations
	Members  []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Projects []Project            `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
	Teams    []Team               `gorm:"foreignKey:OrganizationID" json:"teams,omitempty"`
}

// OrganizationMember links a user to an organization with a role and status.
// Exactly one membership per organization holds OrgRoleOwner at any time.
type OrganizationMember struct {
	OrganizationID uint         `gorm:"primaryKey" json:"organization_id"`
	UserID         uint         `gorm:"primaryKey" json:"user_id"`
	Role           OrgRole      `gorm:"type:varchar(20);not null" json:"role"`
	Status         MemberStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	Organization Organization `json:"-"`
	User         User         `json:"-"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}
