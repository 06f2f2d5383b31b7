package certs

import (
	"fmt"
	"strings"
	"time"
)

// Template selects one of the closed set of certificate layouts.
type Template string

const (
	TemplateStandard Template = "STANDARD"
	TemplatePremium  Template = "PREMIUM"
	TemplateCustom   Template = "CUSTOM"
)

// ParseTemplate validates a template name, case-insensitively.
func ParseTemplate(s string) (Template, error) {
	switch Template(strings.ToUpper(strings.TrimSpace(s))) {
	case TemplateStandard:
		return TemplateStandard, nil
	case TemplatePremium:
		return TemplatePremium, nil
	case TemplateCustom:
		return TemplateCustom, nil
	}
	return "", fmt.Errorf("%w: unknown template %q", ErrData, s)
}

// CertificateData is the immutable content snapshot handed to the renderer.
// Timestamps embedded in the document come from here, never from the clock,
// so regeneration reproduces the same content.
type CertificateData struct {
	Code            string
	VerificationURL string

	StudentName    string
	CourseName     string
	CourseLevel    string
	CourseCategory string
	InstructorName string

	CompletionDate   time.Time
	IssuedAt         time.Time
	FinalScore       *float64
	TimeSpentMinutes int64
	Skills           []string
	Achievements     []string
}

// Validate checks the fields every template's required regions depend on.
// A miss is an ErrData failure: retrying cannot fix the record.
func (d *CertificateData) Validate() error {
	missing := []string{}
	if strings.TrimSpace(d.StudentName) == "" {
		missing = append(missing, "student name")
	}
	if strings.TrimSpace(d.CourseName) == "" {
		missing = append(missing, "course name")
	}
	if strings.TrimSpace(d.Code) == "" {
		missing = append(missing, "verification code")
	}
	if strings.TrimSpace(d.VerificationURL) == "" {
		missing = append(missing, "verification url")
	}
	if d.IssuedAt.IsZero() {
		missing = append(missing, "issue date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrData, strings.Join(missing, ", "))
	}
	return nil
}

// Artifact is a rendered binary document.
type Artifact struct {
	Bytes    []byte
	MimeType string
	Size     int64
}

// Renderer turns a content snapshot into a document artifact. Every
// template must render the shared required regions: title block, recipient
// name, course name, issuing metadata, QR verification block and the
// footer verification URL.
type Renderer interface {
	Render(data CertificateData, template Template) (*Artifact, error)
}
