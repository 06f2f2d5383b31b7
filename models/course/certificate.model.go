package course

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CertificateStatus is the lifecycle state of an issued certificate.
type CertificateStatus string

const (
	CertStatusPending   CertificateStatus = "PENDING"
	CertStatusGenerated CertificateStatus = "GENERATED"
	CertStatusFailed    CertificateStatus = "FAILED"
	CertStatusRevoked   CertificateStatus = "REVOKED"
)

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// REVOKED is terminal; FAILED may only be repaired back to GENERATED.
func (s CertificateStatus) CanTransitionTo(next CertificateStatus) bool {
	validTransitions := map[CertificateStatus][]CertificateStatus{
		CertStatusPending:   {CertStatusGenerated, CertStatusFailed},
		CertStatusFailed:    {CertStatusGenerated, CertStatusFailed},
		CertStatusGenerated: {CertStatusRevoked},
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, valid := range allowed {
		if valid == next {
			return true
		}
	}
	return false
}

// TransitionSourcesOf lists every status allowed to move into next. The
// store's guarded UPDATEs build their WHERE clauses from this, so the
// transition table above is the single place legality is defined.
func TransitionSourcesOf(next CertificateStatus) []CertificateStatus {
	all := []CertificateStatus{CertStatusPending, CertStatusGenerated, CertStatusFailed, CertStatusRevoked}

	var sources []CertificateStatus
	for _, status := range all {
		if status.CanTransitionTo(next) {
			sources = append(sources, status)
		}
	}
	return sources
}

// Certificate is an issued course-completion certificate. The content
// columns are a snapshot taken at issue time and never updated afterwards.
type Certificate struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null"`
	CourseID uint `json:"course_id" gorm:"index;not null"`

	// ActiveKey is "<userID>:<courseID>" while the certificate is live and
	// NULL once revoked, so the unique index admits one live certificate
	// per (user, course) while revoked rows never collide.
	ActiveKey *string `json:"-" gorm:"uniqueIndex"`

	VerificationCode string `json:"verification_code" gorm:"uniqueIndex;not null"`
	VerificationURL  string `json:"verification_url"`

	StudentName      string         `json:"student_name"`
	CourseName       string         `json:"course_name"`
	CourseLevel      string         `json:"course_level"`
	CourseCategory   string         `json:"course_category"`
	InstructorName   string         `json:"instructor_name"`
	CompletionDate   time.Time      `json:"completion_date"`
	IssuedAt         time.Time      `json:"issued_at"`
	FinalScore       *float64       `json:"final_score"`
	TimeSpentMinutes int64          `json:"time_spent_minutes"`
	Metadata         datatypes.JSON `json:"metadata"`

	Template string            `json:"template" gorm:"default:'STANDARD'"`
	Status   CertificateStatus `json:"status" gorm:"index;default:'PENDING'"`

	// Present only once GENERATED.
	FilePath     string `json:"file_path"`
	FileMimeType string `json:"file_mime_type"`
	FileSize     int64  `json:"file_size"`

	// Diagnostics for FAILED rows, inspected by the retry sweep.
	LastError string `json:"last_error,omitempty"`

	// Present only once REVOKED.
	RevokedReason string     `json:"revoked_reason,omitempty"`
	RevokedBy     *uint      `json:"revoked_by,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`

	VerificationCount int64 `json:"verification_count" gorm:"default:0"`
	DownloadCount     int64 `json:"download_count" gorm:"default:0"`
}

// CertificateMetadata is the achievement snapshot stored in the Metadata
// JSON column.
type CertificateMetadata struct {
	TotalLessons     int      `json:"total_lessons"`
	CompletedLessons int      `json:"completed_lessons"`
	TotalQuizzes     int      `json:"total_quizzes"`
	PassedQuizzes    int      `json:"passed_quizzes"`
	AverageQuizScore *float64 `json:"average_quiz_score,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
}

// ActiveKeyFor builds the uniqueness key for a live (user, course) pair.
func ActiveKeyFor(userID, courseID uint) string {
	return fmt.Sprintf("%d:%d", userID, courseID)
}
