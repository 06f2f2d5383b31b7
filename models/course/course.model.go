package course

import (
	"gorm.io/gorm"
)

// Course is the catalog read model owned by the course service.
type Course struct {
	gorm.Model
	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description"`
	Level          string `json:"level"`    // BEGINNER, INTERMEDIATE, ADVANCED
	Category       string `json:"category"` // e.g. PROGRAMMING, DESIGN
	InstructorName string `json:"instructor_name"`
	Status         string `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, INACTIVE
	IsDeleted      bool   `gorm:"default:false"`
}

// Lesson is a published unit of course content.
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Position    int    `json:"position"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// Quiz is a course assessment; required quizzes gate certificate issuance.
type Quiz struct {
	gorm.Model
	CourseID     uint    `json:"course_id" gorm:"index;not null"`
	Title        string  `json:"title" gorm:"not null"`
	PassingScore float64 `json:"passing_score" gorm:"default:70"`
	IsRequired   bool    `json:"is_required" gorm:"default:true"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
}
