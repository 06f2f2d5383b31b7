package models

import (
	"gorm.io/gorm"
)

// User is the learner/admin read model owned by the auth service.
// The certificate subsystem only reads display fields off it.
type User struct {
	gorm.Model
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Role      string `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	IsDeleted bool   `gorm:"default:false"`
}
