package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name     string `json:"name"`
	Timezone string `gorm:"default:'UTC'" json:"timezone"`

	// Account status
	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`

	// Relations
	OrganizationMemberships []OrganizationMember `gorm:"foreignKey:UserID" json:"organization_memberships,omitempty"`
	AuthoredTasks           []Task               `gorm:"foreignKey:AuthorID" json:"authored_tasks,omitempty"`
}

// RefreshToken tracks issued refresh tokens so they can be revoked per session
type RefreshToken struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	TokenHash string `gorm:"not null;uniqueIndex" json:"-"`
	Revoked   bool   `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
