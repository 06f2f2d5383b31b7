package certs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() CertificateData {
	score := 92.0
	return CertificateData{
		Code:             "CERT-2026-AB12CD34",
		VerificationURL:  "https://learn.example.com/api/verify/CERT-2026-AB12CD34",
		StudentName:      "Ada Lovelace",
		CourseName:       "Foundations of Go",
		CourseLevel:      "BEGINNER",
		CourseCategory:   "PROGRAMMING",
		InstructorName:   "Rob Cox",
		CompletionDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		IssuedAt:         time.Date(2026, 8, 2, 10, 30, 0, 0, time.UTC),
		FinalScore:       &score,
		TimeSpentMinutes: 480,
	}
}

func TestPDFRendererAllTemplates(t *testing.T) {
	renderer := NewPDFRenderer()

	for _, template := range []Template{TemplateStandard, TemplatePremium, TemplateCustom} {
		t.Run(string(template), func(t *testing.T) {
			artifact, err := renderer.Render(sampleData(), template)
			require.NoError(t, err)

			assert.Equal(t, "application/pdf", artifact.MimeType)
			assert.Equal(t, int64(len(artifact.Bytes)), artifact.Size)
			require.Greater(t, len(artifact.Bytes), 4)
			assert.Equal(t, "%PDF", string(artifact.Bytes[:4]))
		})
	}
}

// Identical input must reproduce identical bytes: the embedded creation
// date comes from the snapshot, not the wall clock.
func TestPDFRendererDeterministic(t *testing.T) {
	renderer := NewPDFRenderer()

	first, err := renderer.Render(sampleData(), TemplateStandard)
	require.NoError(t, err)
	second, err := renderer.Render(sampleData(), TemplateStandard)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestPDFRendererMissingRequiredFields(t *testing.T) {
	renderer := NewPDFRenderer()

	cases := map[string]func(*CertificateData){
		"student name":      func(d *CertificateData) { d.StudentName = " " },
		"course name":       func(d *CertificateData) { d.CourseName = "" },
		"verification code": func(d *CertificateData) { d.Code = "" },
		"verification url":  func(d *CertificateData) { d.VerificationURL = "" },
		"issue date":        func(d *CertificateData) { d.IssuedAt = time.Time{} },
	}

	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			data := sampleData()
			breakIt(&data)

			_, err := renderer.Render(data, TemplateStandard)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrData))
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestPDFRendererOptionalScoreOmitted(t *testing.T) {
	renderer := NewPDFRenderer()

	data := sampleData()
	data.FinalScore = nil

	artifact, err := renderer.Render(data, TemplatePremium)
	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Bytes)
}

func TestPDFRendererUnknownTemplate(t *testing.T) {
	renderer := NewPDFRenderer()

	_, err := renderer.Render(sampleData(), Template("GLITTER"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrData))
}

func TestParseTemplate(t *testing.T) {
	template, err := ParseTemplate(" premium ")
	require.NoError(t, err)
	assert.Equal(t, TemplatePremium, template)

	_, err = ParseTemplate("GLITTER")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrData))
}
