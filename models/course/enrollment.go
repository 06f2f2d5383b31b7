package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment links a user to a course. Owned by the enrollment service;
// read here for eligibility checks.
type Enrollment struct {
	gorm.Model
	UserID           uint      `json:"user_id" gorm:"index;not null"`
	CourseID         uint      `json:"course_id" gorm:"index;not null"`
	Status           string    `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, ACTIVE, COMPLETED, CANCELLED
	EnrolledAt       time.Time `json:"enrolled_at"`
	Progress         float64   `json:"progress" gorm:"default:0"`
	TimeSpentMinutes int64     `json:"time_spent_minutes" gorm:"default:0"`
	IsDeleted        bool      `gorm:"default:false"`
}

// LessonCompletion records a user finishing a lesson.
type LessonCompletion struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	LessonID  uint   `json:"lesson_id" gorm:"index;not null"`
	Status    string `json:"status" gorm:"default:'COMPLETED'"`
	IsDeleted bool   `gorm:"default:false"`
}

// QuizAttempt records one scored attempt at a quiz.
type QuizAttempt struct {
	gorm.Model
	UserID        uint    `json:"user_id" gorm:"index;not null"`
	QuizID        uint    `json:"quiz_id" gorm:"index;not null"`
	CourseID      uint    `json:"course_id" gorm:"index;not null"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Passed        bool    `json:"passed"`
	AttemptNumber int     `json:"attempt_number"`
	IsDeleted     bool    `gorm:"default:false"`
}
