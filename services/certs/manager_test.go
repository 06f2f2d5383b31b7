package certs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	courseModels "edcert/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubRenderer is a controllable renderer double.
type stubRenderer struct {
	mu        sync.Mutex
	calls     int
	transient bool            // every render fails transiently
	dataErr   bool            // every render fails with a data error
	failCodes map[string]bool // codes that fail transiently
}

func (r *stubRenderer) Render(data CertificateData, template Template) (*Artifact, error) {
	r.mu.Lock()
	r.calls++
	transient, dataErr := r.transient, r.dataErr
	codeFails := r.failCodes[data.Code]
	r.mu.Unlock()

	if dataErr {
		return nil, fmt.Errorf("%w: missing student name", ErrData)
	}
	if transient || codeFails {
		return nil, fmt.Errorf("%w: renderer outage", ErrRender)
	}

	bytes := []byte("PDF:" + data.Code + ":" + string(template))
	return &Artifact{Bytes: bytes, MimeType: "application/pdf", Size: int64(len(bytes))}, nil
}

func (r *stubRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// recordingNotifier captures post-commit notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	issued  []uint
	revoked []uint
}

func (n *recordingNotifier) CertificateIssued(cert *courseModels.Certificate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.issued = append(n.issued, cert.ID)
}

func (n *recordingNotifier) CertificateRevoked(cert *courseModels.Certificate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.revoked = append(n.revoked, cert.ID)
}

type managerFixture struct {
	db       *gorm.DB
	store    *Store
	manager  *Manager
	renderer *stubRenderer
	notifier *recordingNotifier
	dir      string
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	db := newTestDB(t)
	store := NewStore(db)
	facts := NewPlatformFacts(db)
	renderer := &stubRenderer{failCodes: map[string]bool{}}
	notifier := &recordingNotifier{}
	dir := t.TempDir()

	manager := NewManager(
		store,
		NewEvaluator(facts, facts, facts, store),
		NewCodeGenerator("CERT", store),
		renderer,
		NewArtifactStorage(dir),
		facts, facts, notifier,
		Config{
			VerificationBaseURL: "http://localhost:3000/api/verify",
			DefaultTemplate:     TemplateStandard,
			BulkWorkers:         1,
		},
	)

	return &managerFixture{db: db, store: store, manager: manager, renderer: renderer, notifier: notifier, dir: dir}
}

func TestGenerateCertificateHappyPath(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	cert, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)

	assert.Equal(t, courseModels.CertStatusGenerated, cert.Status)
	assert.Regexp(t, `^[A-Z]+-\d{4}-[A-Z0-9]{8}$`, cert.VerificationCode)
	assert.Equal(t, "Ada Lovelace", cert.StudentName)
	assert.Equal(t, "Foundations of Go", cert.CourseName)
	assert.Equal(t, "Rob Cox", cert.InstructorName)
	require.NotNil(t, cert.FinalScore)
	assert.InDelta(t, 92.0, *cert.FinalScore, 0.001)
	assert.Equal(t, int64(480), cert.TimeSpentMinutes)
	assert.Contains(t, cert.VerificationURL, cert.VerificationCode)
	assert.Equal(t, "application/pdf", cert.FileMimeType)
	assert.NotZero(t, cert.FileSize)

	// The artifact must be fully on disk before the GENERATED commit.
	_, err = os.Stat(filepath.Join(f.dir, cert.FilePath))
	require.NoError(t, err)

	assert.Equal(t, []uint{cert.ID}, f.notifier.issued)
}

func TestGenerateCertificateNotEligible(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 80)

	// Remove two lesson completions: 3 of 5 done.
	var completions []courseModels.LessonCompletion
	require.NoError(t, f.db.Where("user_id = ?", userID).Limit(2).Find(&completions).Error)
	for _, completion := range completions {
		require.NoError(t, f.db.Unscoped().Delete(&completion).Error)
	}

	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotEligible))
	assert.Contains(t, err.Error(), "2")
	assert.Contains(t, err.Error(), "lesson")

	// No record may be left behind for an ineligible user.
	blocked, err := f.store.HasNonRevoked(userID, courseID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestGenerateCertificateSecondCallAlreadyIssued(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	first, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)

	_, err = f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyIssued))

	// Exactly one GENERATED record exists.
	var count int64
	require.NoError(t, f.db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, courseModels.CertStatusGenerated).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []uint{first.ID}, f.notifier.issued)
}

func TestGenerateCertificateRaceLoserFailsCleanly(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	// Simulate a concurrent winner that reserved PENDING between our
	// eligibility check and insert.
	insertCertificate(t, f.db, userID, courseID, courseModels.CertStatusPending)

	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyIssued))
}

func TestGenerateCertificateRenderFailureLeavesFailed(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)
	f.renderer.transient = true

	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))

	// The PENDING record was kept and marked FAILED for later repair.
	var cert courseModels.Certificate
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error)
	assert.Equal(t, courseModels.CertStatusFailed, cert.Status)
	assert.Contains(t, cert.LastError, "renderer outage")
	assert.Empty(t, f.notifier.issued)
}

func TestRetryFailedRecoversAfterOutage(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	f.renderer.transient = true
	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)

	// Renderer is healthy again.
	f.renderer.transient = false

	result, err := f.manager.RetryFailed(3)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.StillFailed)

	var cert courseModels.Certificate
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error)
	assert.Equal(t, courseModels.CertStatusGenerated, cert.Status)
	_, err = os.Stat(filepath.Join(f.dir, cert.FilePath))
	require.NoError(t, err)
}

func TestRetryFailedExhaustsBudgetAndStaysFailed(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	f.renderer.transient = true
	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)

	callsBefore := f.renderer.callCount()
	result, err := f.manager.RetryFailed(3)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.StillFailed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "renderer outage")

	// Each item gets exactly maxRetries render attempts.
	assert.Equal(t, 3, f.renderer.callCount()-callsBefore)

	var cert courseModels.Certificate
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error)
	assert.Equal(t, courseModels.CertStatusFailed, cert.Status)
}

func TestRetryFailedDoesNotRetryDataErrors(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	f.renderer.transient = true
	_, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.Error(t, err)

	f.renderer.transient = false
	f.renderer.dataErr = true

	callsBefore := f.renderer.callCount()
	result, err := f.manager.RetryFailed(5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StillFailed)

	// A data error is unfixable by retrying: one attempt only.
	assert.Equal(t, 1, f.renderer.callCount()-callsBefore)
}

func TestRegenerateReplacesArtifact(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	cert, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)
	oldPath := cert.FilePath

	regenerated, err := f.manager.Regenerate(cert.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusGenerated, regenerated.Status)
	assert.NotEqual(t, oldPath, regenerated.FilePath)

	// Content snapshot drives the render, so both artifacts are identical.
	oldBytes, err := os.ReadFile(filepath.Join(f.dir, oldPath))
	require.NoError(t, err)
	newBytes, err := os.ReadFile(filepath.Join(f.dir, regenerated.FilePath))
	require.NoError(t, err)
	assert.Equal(t, oldBytes, newBytes)

	// The immutable fields did not move.
	assert.Equal(t, cert.VerificationCode, regenerated.VerificationCode)
	assert.Equal(t, cert.IssuedAt.Unix(), regenerated.IssuedAt.Unix())
}

func TestRegenerateFailureKeepsOldArtifact(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	cert, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)

	f.renderer.transient = true
	_, err = f.manager.Regenerate(cert.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))

	current, err := f.store.GetByID(cert.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusGenerated, current.Status)
	assert.Equal(t, cert.FilePath, current.FilePath)
}

func TestRegenerateRejectsNonGenerated(t *testing.T) {
	f := newManagerFixture(t)
	cert := insertCertificate(t, f.db, 7, 8, courseModels.CertStatusPending)

	_, err := f.manager.Regenerate(cert.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestBulkRegenerateIsolatesFailures(t *testing.T) {
	f := newManagerFixture(t)

	var certIDs []uint
	var badCert *courseModels.Certificate
	for i := 0; i < 3; i++ {
		userID, courseID := seedCompletedCourse(t, f.db, 75+float64(i))
		cert, err := f.manager.GenerateCertificate(userID, courseID, "")
		require.NoError(t, err)
		certIDs = append(certIDs, cert.ID)
		if i == 1 {
			badCert = cert
			f.renderer.failCodes[cert.VerificationCode] = true
		}
	}

	result, err := f.manager.BulkRegenerate(BulkFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, badCert.ID, result.Failures[0].CertificateID)

	// Siblings completed despite the failure.
	for _, id := range certIDs {
		cert, err := f.store.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, courseModels.CertStatusGenerated, cert.Status)
	}
}

func TestBulkRegenerateFiltersByCourse(t *testing.T) {
	f := newManagerFixture(t)

	userA, courseA := seedCompletedCourse(t, f.db, 90)
	userB, courseB := seedCompletedCourse(t, f.db, 91)
	_, err := f.manager.GenerateCertificate(userA, courseA, "")
	require.NoError(t, err)
	_, err = f.manager.GenerateCertificate(userB, courseB, "")
	require.NoError(t, err)

	result, err := f.manager.BulkRegenerate(BulkFilter{CourseID: &courseA})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)
}

func TestRevokeThenReissue(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	cert, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)

	revoked, err := f.manager.Revoke(cert.ID, "policy violation", 99)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusRevoked, revoked.Status)
	assert.Equal(t, []uint{cert.ID}, f.notifier.revoked)

	// The artifact is kept for audit.
	_, err = os.Stat(filepath.Join(f.dir, revoked.FilePath))
	require.NoError(t, err)

	// A revoked certificate does not block a brand-new issuance.
	fresh, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertStatusGenerated, fresh.Status)
	assert.NotEqual(t, cert.VerificationCode, fresh.VerificationCode)
}

func TestVerifyLifecycle(t *testing.T) {
	f := newManagerFixture(t)
	userID, courseID := seedCompletedCourse(t, f.db, 92)

	cert, err := f.manager.GenerateCertificate(userID, courseID, "")
	require.NoError(t, err)

	result, err := f.manager.Verify(cert.VerificationCode)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	require.NotNil(t, result.Certificate)
	assert.Equal(t, "Ada Lovelace", result.Certificate.StudentName)

	// Lower-case lookups work; each valid verification bumps the counter.
	_, err = f.manager.Verify(strings.ToLower(cert.VerificationCode))
	require.NoError(t, err)
	current, err := f.store.GetByID(cert.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.VerificationCount)

	// Revocation flips the verdict immediately, with a distinct message.
	_, err = f.manager.Revoke(cert.ID, "policy violation", 99)
	require.NoError(t, err)

	result, err = f.manager.Verify(cert.VerificationCode)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, msgRevoked, result.Message)
	assert.Nil(t, result.Certificate)
}

func TestVerifyUnknownAndMalformedAreIdentical(t *testing.T) {
	f := newManagerFixture(t)

	unknown, err := f.manager.Verify("CERT-2026-AAAA1111")
	require.NoError(t, err)
	malformed, err := f.manager.Verify("'; DROP TABLE certificates; --")
	require.NoError(t, err)

	assert.Equal(t, unknown, malformed)
	assert.False(t, unknown.IsValid)
	assert.Equal(t, msgNotFound, unknown.Message)
}

func TestVerifyPendingAndFailedReadAsNotFound(t *testing.T) {
	f := newManagerFixture(t)

	pending := insertCertificate(t, f.db, 1, 2, courseModels.CertStatusPending)
	failed := insertCertificate(t, f.db, 3, 4, courseModels.CertStatusPending)
	require.NoError(t, f.store.MarkFailed(failed.ID, "boom"))

	for _, cert := range []*courseModels.Certificate{pending, failed} {
		result, err := f.manager.Verify(cert.VerificationCode)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, msgNotFound, result.Message)
	}
}
