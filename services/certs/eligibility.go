package certs

import (
	"fmt"
	"time"
)

// Collaborator contracts. Enrollment, progress and quiz data are owned by
// other services; the evaluator only reads completion facts through them.

type EnrollmentFacts struct {
	Status     string
	EnrolledAt time.Time
	TimeSpent  int64 // minutes
}

type LessonFacts struct {
	Completed int
	Total     int
}

type QuizFacts struct {
	Passed       int
	Total        int
	AverageScore *float64
}

type CourseSummary struct {
	Name           string
	Level          string
	Category       string
	InstructorName string
}

type EnrollmentReader interface {
	Get(userID, courseID uint) (*EnrollmentFacts, error)
}

type ProgressReader interface {
	CountCompletedLessons(userID, courseID uint) (LessonFacts, error)
}

type QuizAttemptReader interface {
	CountPassedRequired(userID, courseID uint) (QuizFacts, error)
}

type UserDirectory interface {
	GetDisplayName(userID uint) (string, error)
}

type CourseCatalog interface {
	GetSummary(courseID uint) (*CourseSummary, error)
}

// EligibilityDetails carries the completion counts behind a verdict.
type EligibilityDetails struct {
	CompletedLessons int      `json:"completed_lessons"`
	TotalLessons     int      `json:"total_lessons"`
	PassedQuizzes    int      `json:"passed_quizzes"`
	TotalQuizzes     int      `json:"total_quizzes"`
	AverageQuizScore *float64 `json:"average_quiz_score,omitempty"`
	TimeSpentMinutes int64    `json:"time_spent_minutes"`
}

// Eligibility is the evaluator's verdict.
type Eligibility struct {
	Eligible bool               `json:"eligible"`
	Reason   string             `json:"reason,omitempty"`
	Details  EligibilityDetails `json:"details"`
}

// issuedChecker is the slice of the store the evaluator needs.
type issuedChecker interface {
	HasNonRevoked(userID, courseID uint) (bool, error)
}

// Evaluator decides whether a certificate may be issued. It is a pure read
// over the collaborator interfaces plus the certificate store.
type Evaluator struct {
	enrollments EnrollmentReader
	progress    ProgressReader
	quizzes     QuizAttemptReader
	store       issuedChecker
}

func NewEvaluator(enrollments EnrollmentReader, progress ProgressReader, quizzes QuizAttemptReader, store issuedChecker) *Evaluator {
	return &Evaluator{
		enrollments: enrollments,
		progress:    progress,
		quizzes:     quizzes,
		store:       store,
	}
}

// enrollmentActive reports whether an enrollment status counts as live.
func enrollmentActive(status string) bool {
	switch status {
	case "ENROLLED", "ACTIVE", "COMPLETED":
		return true
	}
	return false
}

// Evaluate runs the eligibility rules in a fixed order, first failure wins:
// enrollment, lessons, quizzes, then no-existing-certificate. Collaborator
// outages surface as ErrEvaluation, never as an ineligible verdict.
func (e *Evaluator) Evaluate(userID, courseID uint) (*Eligibility, error) {
	enrollment, err := e.enrollments.Get(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: enrollment lookup: %v", ErrEvaluation, err)
	}

	result := &Eligibility{}
	if enrollment == nil || !enrollmentActive(enrollment.Status) {
		result.Reason = "You are not enrolled in this course!"
		return result, nil
	}
	result.Details.TimeSpentMinutes = enrollment.TimeSpent

	lessons, err := e.progress.CountCompletedLessons(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: lesson progress lookup: %v", ErrEvaluation, err)
	}
	result.Details.CompletedLessons = lessons.Completed
	result.Details.TotalLessons = lessons.Total

	quizzes, err := e.quizzes.CountPassedRequired(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: quiz attempt lookup: %v", ErrEvaluation, err)
	}
	result.Details.PassedQuizzes = quizzes.Passed
	result.Details.TotalQuizzes = quizzes.Total
	result.Details.AverageQuizScore = quizzes.AverageScore

	issued, err := e.store.HasNonRevoked(userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: certificate lookup: %v", ErrEvaluation, err)
	}

	// Ordered predicates over the collected facts, first failure wins:
	// lessons, quizzes, already-issued.
	checks := []func() string{
		func() string {
			if deficit := lessons.Total - lessons.Completed; deficit > 0 {
				return fmt.Sprintf("%d lessons not yet completed!", deficit)
			}
			return ""
		},
		func() string {
			if deficit := quizzes.Total - quizzes.Passed; deficit > 0 {
				return fmt.Sprintf("%d required quizzes not yet passed!", deficit)
			}
			return ""
		},
		func() string {
			if issued {
				return "Certificate already issued for this course!"
			}
			return ""
		},
	}

	for _, check := range checks {
		if reason := check(); reason != "" {
			result.Reason = reason
			return result, nil
		}
	}

	result.Eligible = true
	return result, nil
}
