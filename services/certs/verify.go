package certs

import (
	"log"
	"regexp"
	"time"

	courseModels "edcert/models/course"
)

// codePattern is the only shape ever handed to the store. Malformed input
// short-circuits to the same "not found" result as an unknown code, so the
// public endpoint leaks nothing about near-matches.
var codePattern = regexp.MustCompile(`^[A-Z]+-\d{4}-[A-Z0-9]{8}$`)

// VerifiedCertificate is the redacted public view: display fields only,
// no internal identifiers.
type VerifiedCertificate struct {
	VerificationCode string     `json:"verification_code"`
	StudentName      string     `json:"student_name"`
	CourseName       string     `json:"course_name"`
	CourseLevel      string     `json:"course_level,omitempty"`
	CourseCategory   string     `json:"course_category,omitempty"`
	InstructorName   string     `json:"instructor_name,omitempty"`
	CompletionDate   time.Time  `json:"completion_date"`
	IssuedAt         time.Time  `json:"issued_at"`
	FinalScore       *float64   `json:"final_score,omitempty"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
}

// VerificationResult is the public verification verdict.
type VerificationResult struct {
	IsValid     bool                 `json:"is_valid"`
	Message     string               `json:"message"`
	Certificate *VerifiedCertificate `json:"certificate,omitempty"`
}

const (
	msgNotFound = "Certificate not found."
	msgRevoked  = "This certificate has been revoked and is no longer valid."
	msgValid    = "Certificate is valid."
)

// Verify resolves a code to its public verdict. Valid only for GENERATED;
// a successful verification bumps the counter.
func (m *Manager) Verify(code string) (*VerificationResult, error) {
	normalized := NormalizeCode(code)
	if !codePattern.MatchString(normalized) {
		return &VerificationResult{IsValid: false, Message: msgNotFound}, nil
	}

	cert, err := m.store.FindByCode(normalized)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return &VerificationResult{IsValid: false, Message: msgNotFound}, nil
	}

	switch cert.Status {
	case courseModels.CertStatusGenerated:
		if err := m.store.IncrementVerificationCount(cert.ID); err != nil {
			log.Printf("[CERTS] verification count bump failed for %d: %v", cert.ID, err)
		}
		return &VerificationResult{
			IsValid:     true,
			Message:     msgValid,
			Certificate: redact(cert),
		}, nil
	case courseModels.CertStatusRevoked:
		return &VerificationResult{IsValid: false, Message: msgRevoked}, nil
	default:
		// PENDING and FAILED are indistinguishable from unknown codes.
		return &VerificationResult{IsValid: false, Message: msgNotFound}, nil
	}
}

func redact(cert *courseModels.Certificate) *VerifiedCertificate {
	return &VerifiedCertificate{
		VerificationCode: cert.VerificationCode,
		StudentName:      cert.StudentName,
		CourseName:       cert.CourseName,
		CourseLevel:      cert.CourseLevel,
		CourseCategory:   cert.CourseCategory,
		InstructorName:   cert.InstructorName,
		CompletionDate:   cert.CompletionDate,
		IssuedAt:         cert.IssuedAt,
		FinalScore:       cert.FinalScore,
	}
}
