package certs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	courseModels "edcert/models/course"
)

// Config carries the subsystem settings, constructed once at boot and
// passed in explicitly.
type Config struct {
	Prefix              string
	VerificationBaseURL string
	DefaultTemplate     Template
	BulkWorkers         int
}

// Notifier receives certificate state transitions after they are
// committed. Implementations must treat delivery as best-effort; the
// manager never rolls back a committed status over a notification.
type Notifier interface {
	CertificateIssued(cert *courseModels.Certificate)
	CertificateRevoked(cert *courseModels.Certificate)
}

// Manager orchestrates evaluator, store, code generator, renderer and
// artifact storage into the certificate lifecycle.
type Manager struct {
	store     *Store
	evaluator *Evaluator
	codes     *CodeGenerator
	renderer  Renderer
	artifacts *ArtifactStorage
	users     UserDirectory
	courses   CourseCatalog
	notifier  Notifier
	cfg       Config
}

func NewManager(store *Store, evaluator *Evaluator, codes *CodeGenerator, renderer Renderer,
	artifacts *ArtifactStorage, users UserDirectory, courses CourseCatalog, notifier Notifier, cfg Config) *Manager {
	if cfg.BulkWorkers < 1 {
		cfg.BulkWorkers = 4
	}
	if cfg.DefaultTemplate == "" {
		cfg.DefaultTemplate = TemplateStandard
	}
	return &Manager{
		store:     store,
		evaluator: evaluator,
		codes:     codes,
		renderer:  renderer,
		artifacts: artifacts,
		users:     users,
		courses:   courses,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Evaluate exposes the eligibility verdict without side effects.
func (m *Manager) Evaluate(userID, courseID uint) (*Eligibility, error) {
	return m.evaluator.Evaluate(userID, courseID)
}

// GenerateCertificate runs the full issuance flow: eligibility, PENDING
// reservation, code mint, render, durable artifact write, then the
// GENERATED commit. A render or storage failure leaves the record FAILED
// for the retry sweep rather than deleting it.
func (m *Manager) GenerateCertificate(userID, courseID uint, template Template) (*courseModels.Certificate, error) {
	if template == "" {
		template = m.cfg.DefaultTemplate
	}

	eligibility, err := m.evaluator.Evaluate(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		if existing, ferr := m.store.FindActive(userID, courseID); ferr == nil && existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyIssued, eligibility.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, eligibility.Reason)
	}

	studentName, err := m.users.GetDisplayName(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user lookup: %v", ErrEvaluation, err)
	}
	course, err := m.courses.GetSummary(courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: course lookup: %v", ErrEvaluation, err)
	}

	code, err := m.codes.Generate()
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(courseModels.CertificateMetadata{
		TotalLessons:     eligibility.Details.TotalLessons,
		CompletedLessons: eligibility.Details.CompletedLessons,
		TotalQuizzes:     eligibility.Details.TotalQuizzes,
		PassedQuizzes:    eligibility.Details.PassedQuizzes,
		AverageQuizScore: eligibility.Details.AverageQuizScore,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: metadata snapshot: %v", ErrData, err)
	}

	activeKey := courseModels.ActiveKeyFor(userID, courseID)
	nowTime := time.Now()
	cert := &courseModels.Certificate{
		UserID:           userID,
		CourseID:         courseID,
		ActiveKey:        &activeKey,
		VerificationCode: code,
		VerificationURL:  fmt.Sprintf("%s/%s", m.cfg.VerificationBaseURL, code),
		StudentName:      studentName,
		CourseName:       course.Name,
		CourseLevel:      course.Level,
		CourseCategory:   course.Category,
		InstructorName:   course.InstructorName,
		CompletionDate:   nowTime,
		IssuedAt:         nowTime,
		FinalScore:       eligibility.Details.AverageQuizScore,
		TimeSpentMinutes: eligibility.Details.TimeSpentMinutes,
		Metadata:         metadata,
		Template:         string(template),
		Status:           courseModels.CertStatusPending,
	}

	// Storage-level uniqueness: a concurrent duplicate loses here with a
	// clean ErrAlreadyIssued, regardless of the eligibility pre-check.
	if err := m.store.Create(cert); err != nil {
		return nil, err
	}

	if err := m.renderAndCommit(cert); err != nil {
		return nil, err
	}

	issued, err := m.store.GetByID(cert.ID)
	if err != nil {
		return nil, err
	}
	m.notifyIssued(issued)
	return issued, nil
}

// renderAndCommit renders from the certificate's snapshot, writes the
// artifact, then commits GENERATED. Write-then-commit ordering: the status
// only flips after the bytes are fully on disk. On failure the record is
// marked FAILED and the taxonomy error (ErrData or ErrRender) propagates.
func (m *Manager) renderAndCommit(cert *courseModels.Certificate) error {
	artifact, err := m.renderer.Render(m.snapshotData(cert), Template(cert.Template))
	if err != nil {
		m.recordFailure(cert.ID, err)
		return err
	}

	path, err := m.artifacts.Save(cert.ID, artifact)
	if err != nil {
		m.recordFailure(cert.ID, err)
		return err
	}

	if err := m.store.MarkGenerated(cert.ID, path, artifact.MimeType, artifact.Size); err != nil {
		return err
	}
	return nil
}

func (m *Manager) recordFailure(certID uint, cause error) {
	if err := m.store.MarkFailed(certID, cause.Error()); err != nil {
		log.Printf("[CERTS] could not mark certificate %d FAILED: %v", certID, err)
	}
}

// snapshotData rebuilds the renderer input from the stored snapshot.
func (m *Manager) snapshotData(cert *courseModels.Certificate) CertificateData {
	data := CertificateData{
		Code:             cert.VerificationCode,
		VerificationURL:  cert.VerificationURL,
		StudentName:      cert.StudentName,
		CourseName:       cert.CourseName,
		CourseLevel:      cert.CourseLevel,
		CourseCategory:   cert.CourseCategory,
		InstructorName:   cert.InstructorName,
		CompletionDate:   cert.CompletionDate,
		IssuedAt:         cert.IssuedAt,
		FinalScore:       cert.FinalScore,
		TimeSpentMinutes: cert.TimeSpentMinutes,
	}
	if len(cert.Metadata) > 0 {
		var meta courseModels.CertificateMetadata
		if err := json.Unmarshal(cert.Metadata, &meta); err == nil {
			data.Skills = meta.Skills
			data.Achievements = meta.Achievements
		}
	}
	return data
}

// Regenerate re-renders a GENERATED certificate from its immutable
// snapshot, overwriting the artifact reference. Eligibility is not
// re-evaluated. On failure the old artifact stays in place and the
// certificate remains GENERATED.
func (m *Manager) Regenerate(certID uint) (*courseModels.Certificate, error) {
	cert, err := m.store.GetByID(certID)
	if err != nil {
		return nil, err
	}
	if cert.Status != courseModels.CertStatusGenerated {
		return nil, fmt.Errorf("%w: only GENERATED certificates can be regenerated (status %s)", ErrInvalidTransition, cert.Status)
	}

	artifact, err := m.renderer.Render(m.snapshotData(cert), Template(cert.Template))
	if err != nil {
		return nil, err
	}
	path, err := m.artifacts.Save(cert.ID, artifact)
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateArtifact(cert.ID, path, artifact.MimeType, artifact.Size); err != nil {
		return nil, err
	}

	return m.store.GetByID(certID)
}

// Revoke transitions GENERATED -> REVOKED with an audit record. The
// artifact is kept; only the public verification path goes invalid.
func (m *Manager) Revoke(certID uint, reason string, actorID uint) (*courseModels.Certificate, error) {
	if _, err := m.store.GetByID(certID); err != nil {
		return nil, err
	}
	if err := m.store.Revoke(certID, reason, actorID); err != nil {
		return nil, err
	}

	revoked, err := m.store.GetByID(certID)
	if err != nil {
		return nil, err
	}
	m.notifyRevoked(revoked)
	return revoked, nil
}

// ItemFailure is a per-certificate failure inside a batch operation.
type ItemFailure struct {
	CertificateID uint   `json:"certificate_id"`
	Reason        string `json:"reason"`
}

// BulkResult aggregates a bulk regeneration pass.
type BulkResult struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

// BulkFilter narrows a bulk regeneration to a course and/or template.
type BulkFilter struct {
	CourseID *uint
	Template *Template
}

// BulkRegenerate re-renders every matching GENERATED certificate on a
// bounded worker pool. One item's failure never aborts its siblings.
func (m *Manager) BulkRegenerate(filter BulkFilter) (*BulkResult, error) {
	certsToDo, err := m.store.ListGenerated(filter.CourseID, filter.Template)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Attempted: len(certsToDo)}
	failures := m.runPool(certsToDo, func(cert courseModels.Certificate) error {
		_, err := m.Regenerate(cert.ID)
		return err
	})

	result.Failures = failures
	result.Failed = len(failures)
	result.Succeeded = result.Attempted - result.Failed
	return result, nil
}

// RetryResult aggregates a repair pass over FAILED certificates.
type RetryResult struct {
	Attempted   int           `json:"attempted"`
	Succeeded   int           `json:"succeeded"`
	StillFailed int           `json:"still_failed"`
	Failures    []ItemFailure `json:"failures,omitempty"`
}

// RetryFailed re-attempts generation for every FAILED certificate from its
// stored snapshot, up to maxRetries per item. Eligibility is not
// re-checked. Data errors stop retrying immediately; items that exhaust
// the budget stay FAILED for manual inspection.
func (m *Manager) RetryFailed(maxRetries int) (*RetryResult, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	failed, err := m.store.ListFailed(nil)
	if err != nil {
		return nil, err
	}

	result := &RetryResult{Attempted: len(failed)}
	failures := m.runPool(failed, func(cert courseModels.Certificate) error {
		var lastErr error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			lastErr = m.renderAndCommit(&cert)
			if lastErr == nil {
				return nil
			}
			if errors.Is(lastErr, ErrData) {
				// Unfixable without operator intervention.
				return lastErr
			}
		}
		return lastErr
	})

	result.Failures = failures
	result.StillFailed = len(failures)
	result.Succeeded = result.Attempted - result.StillFailed

	if result.Attempted > 0 {
		log.Printf("[CERTS] retry sweep: %d attempted, %d recovered, %d still failed",
			result.Attempted, result.Succeeded, result.StillFailed)
	}
	return result, nil
}

// runPool processes items on a bounded worker pool, capturing per-item
// errors (and panics) so siblings always run to completion.
func (m *Manager) runPool(items []courseModels.Certificate, work func(courseModels.Certificate) error) []ItemFailure {
	jobs := make(chan courseModels.Certificate)
	var mu sync.Mutex
	var failures []ItemFailure
	var wg sync.WaitGroup

	record := func(id uint, reason string) {
		mu.Lock()
		failures = append(failures, ItemFailure{CertificateID: id, Reason: reason})
		mu.Unlock()
	}

	for i := 0; i < m.cfg.BulkWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cert := range jobs {
				func() {
					defer func() {
						if r := recover(); r != nil {
							record(cert.ID, fmt.Sprintf("panic: %v", r))
						}
					}()
					if err := work(cert); err != nil {
						record(cert.ID, err.Error())
					}
				}()
			}
		}()
	}

	for _, cert := range items {
		jobs <- cert
	}
	close(jobs)
	wg.Wait()

	return failures
}

func (m *Manager) notifyIssued(cert *courseModels.Certificate) {
	if m.notifier == nil {
		return
	}
	m.notifier.CertificateIssued(cert)
}

func (m *Manager) notifyRevoked(cert *courseModels.Certificate) {
	if m.notifier == nil {
		return
	}
	m.notifier.CertificateRevoked(cert)
}
