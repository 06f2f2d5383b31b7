package certs

import (
	"errors"
	"fmt"

	"edcert/models"
	courseModels "edcert/models/course"

	"gorm.io/gorm"
)

// PlatformFacts is the GORM-backed implementation of the collaborator
// contracts, reading the read models the platform services maintain.
type PlatformFacts struct {
	db *gorm.DB
}

func NewPlatformFacts(db *gorm.DB) *PlatformFacts {
	return &PlatformFacts{db: db}
}

// Get returns the user's enrollment facts, or nil when not enrolled.
func (f *PlatformFacts) Get(userID, courseID uint) (*EnrollmentFacts, error) {
	var enrollment courseModels.Enrollment
	err := f.db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &EnrollmentFacts{
		Status:     enrollment.Status,
		EnrolledAt: enrollment.EnrolledAt,
		TimeSpent:  enrollment.TimeSpentMinutes,
	}, nil
}

// CountCompletedLessons counts published lessons and the user's completions.
func (f *PlatformFacts) CountCompletedLessons(userID, courseID uint) (LessonFacts, error) {
	var total int64
	if err := f.db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Count(&total).Error; err != nil {
		return LessonFacts{}, err
	}

	var completed int64
	err := f.db.Model(&courseModels.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id AND lessons.is_published = ? AND lessons.is_deleted = ?", true, false).
		Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ? AND lesson_completions.is_deleted = ?", userID, courseID, false).
		Count(&completed).Error
	if err != nil {
		return LessonFacts{}, err
	}

	return LessonFacts{Completed: int(completed), Total: int(total)}, nil
}

// CountPassedRequired counts required published quizzes with at least one
// passing attempt, plus the average score over the user's passing attempts.
func (f *PlatformFacts) CountPassedRequired(userID, courseID uint) (QuizFacts, error) {
	var quizzes []courseModels.Quiz
	if err := f.db.Where("course_id = ? AND is_required = ? AND is_published = ? AND is_deleted = ?",
		courseID, true, true, false).Find(&quizzes).Error; err != nil {
		return QuizFacts{}, err
	}

	facts := QuizFacts{Total: len(quizzes)}
	var scoreSum float64
	var scored int

	for _, quiz := range quizzes {
		var attempt courseModels.QuizAttempt
		err := f.db.Where("user_id = ? AND quiz_id = ? AND passed = ? AND is_deleted = ?",
			userID, quiz.ID, true, false).
			Order("score desc").First(&attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return QuizFacts{}, err
		}
		facts.Passed++
		if attempt.MaxScore > 0 {
			scoreSum += attempt.Score / attempt.MaxScore * 100
			scored++
		}
	}

	if scored > 0 {
		avg := scoreSum / float64(scored)
		facts.AverageScore = &avg
	}
	return facts, nil
}

// GetDisplayName returns the learner's display name.
func (f *PlatformFacts) GetDisplayName(userID uint) (string, error) {
	var user models.User
	err := f.db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// GetSummary returns the catalog facts for a course.
func (f *PlatformFacts) GetSummary(courseID uint) (*CourseSummary, error) {
	var course courseModels.Course
	err := f.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
	}
	if err != nil {
		return nil, err
	}
	return &CourseSummary{
		Name:           course.Title,
		Level:          course.Level,
		Category:       course.Category,
		InstructorName: course.InstructorName,
	}, nil
}
