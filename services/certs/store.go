package certs

import (
	"errors"
	"fmt"
	"time"

	courseModels "edcert/models/course"

	"gorm.io/gorm"
)

// Store is the durable record of certificates. All status transitions go
// through guarded UPDATEs so an illegal step can never be written, and the
// (user, course) uniqueness invariant lives in the active_key unique index
// rather than in caller pre-checks.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new PENDING certificate. A second live certificate for
// the same (user, course) loses the unique-index race and gets
// ErrAlreadyIssued, even when two requests pass their pre-checks together.
func (s *Store) Create(cert *courseModels.Certificate) error {
	if err := s.db.Create(cert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user %d, course %d", ErrAlreadyIssued, cert.UserID, cert.CourseID)
		}
		return err
	}
	return nil
}

// GetByID returns a certificate or ErrNotFound.
func (s *Store) GetByID(id uint) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	err := s.db.First(&cert, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindActive returns the PENDING or GENERATED certificate for the pair,
// or nil when none exists.
func (s *Store) FindActive(userID, courseID uint) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	err := s.db.Where("user_id = ? AND course_id = ? AND status IN ?",
		userID, courseID, []courseModels.CertificateStatus{courseModels.CertStatusPending, courseModels.CertStatusGenerated}).
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// HasNonRevoked reports whether any non-revoked certificate (PENDING,
// GENERATED or FAILED) holds the (user, course) slot.
func (s *Store) HasNonRevoked(userID, courseID uint) (bool, error) {
	var count int64
	err := s.db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ? AND status <> ?", userID, courseID, courseModels.CertStatusRevoked).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByCode resolves a verification code, case-normalized, or nil.
func (s *Store) FindByCode(code string) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	err := s.db.Where("verification_code = ?", NormalizeCode(code)).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// CodeExists reports whether a verification code was ever assigned.
func (s *Store) CodeExists(code string) (bool, error) {
	var count int64
	err := s.db.Model(&courseModels.Certificate{}).
		Where("verification_code = ?", NormalizeCode(code)).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMine returns the user's certificates, newest first, paginated.
func (s *Store) ListMine(userID uint, page, limit int) ([]courseModels.Certificate, int64, error) {
	query := s.db.Model(&courseModels.Certificate{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var certs []courseModels.Certificate
	err := query.Order("issued_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&certs).Error
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}

// AdminFilter narrows the admin listing.
type AdminFilter struct {
	CourseID *uint
	UserID   *uint
	Status   *courseModels.CertificateStatus
	Page     int
	Limit    int
}

// List returns certificates matching the filter, newest first, paginated.
func (s *Store) List(filter AdminFilter) ([]courseModels.Certificate, int64, error) {
	query := s.db.Model(&courseModels.Certificate{})
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var certs []courseModels.Certificate
	err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&certs).Error
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}

// ListGenerated returns GENERATED certificates for bulk regeneration,
// optionally narrowed by course and template.
func (s *Store) ListGenerated(courseID *uint, template *Template) ([]courseModels.Certificate, error) {
	query := s.db.Where("status = ?", courseModels.CertStatusGenerated)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	if template != nil {
		query = query.Where("template = ?", string(*template))
	}

	var certs []courseModels.Certificate
	if err := query.Order("id asc").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// ListFailed returns FAILED certificates, optionally only those whose last
// update is older than the given cutoff.
func (s *Store) ListFailed(olderThan *time.Time) ([]courseModels.Certificate, error) {
	query := s.db.Where("status = ?", courseModels.CertStatusFailed)
	if olderThan != nil {
		query = query.Where("updated_at < ?", *olderThan)
	}

	var certs []courseModels.Certificate
	if err := query.Order("id asc").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// MarkGenerated commits the artifact reference and transitions the
// certificate to GENERATED. Legal only from PENDING or FAILED; the guard
// lives in the WHERE clause so a racing writer cannot double-transition,
// with the legal source states taken from the model's transition table.
func (s *Store) MarkGenerated(id uint, path, mimeType string, size int64) error {
	result := s.db.Model(&courseModels.Certificate{}).
		Where("id = ? AND status IN ?", id,
			courseModels.TransitionSourcesOf(courseModels.CertStatusGenerated)).
		Updates(map[string]interface{}{
			"status":         courseModels.CertStatusGenerated,
			"file_path":      path,
			"file_mime_type": mimeType,
			"file_size":      size,
			"last_error":     "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: certificate %d is not PENDING or FAILED", ErrInvalidTransition, id)
	}
	return nil
}

// MarkFailed records a generation failure. Legal from PENDING or FAILED
// (a retry that failed again stays FAILED with a fresh cause).
func (s *Store) MarkFailed(id uint, cause string) error {
	result := s.db.Model(&courseModels.Certificate{}).
		Where("id = ? AND status IN ?", id,
			courseModels.TransitionSourcesOf(courseModels.CertStatusFailed)).
		Updates(map[string]interface{}{
			"status":     courseModels.CertStatusFailed,
			"last_error": cause,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: certificate %d cannot be marked FAILED", ErrInvalidTransition, id)
	}
	return nil
}

// UpdateArtifact overwrites the artifact reference of a GENERATED
// certificate after a successful regeneration. Status does not change.
func (s *Store) UpdateArtifact(id uint, path, mimeType string, size int64) error {
	result := s.db.Model(&courseModels.Certificate{}).
		Where("id = ? AND status = ?", id, courseModels.CertStatusGenerated).
		Updates(map[string]interface{}{
			"file_path":      path,
			"file_mime_type": mimeType,
			"file_size":      size,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: certificate %d is not GENERATED", ErrInvalidTransition, id)
	}
	return nil
}

// Revoke transitions GENERATED -> REVOKED, records the revocation and
// clears active_key so the (user, course) slot frees up for re-issuance.
func (s *Store) Revoke(id uint, reason string, actorID uint) error {
	nowTime := time.Now()
	result := s.db.Model(&courseModels.Certificate{}).
		Where("id = ? AND status IN ?", id,
			courseModels.TransitionSourcesOf(courseModels.CertStatusRevoked)).
		Updates(map[string]interface{}{
			"status":         courseModels.CertStatusRevoked,
			"active_key":     nil,
			"revoked_reason": reason,
			"revoked_by":     actorID,
			"revoked_at":     nowTime,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: only GENERATED certificates can be revoked", ErrInvalidTransition)
	}
	return nil
}

// IncrementVerificationCount bumps the counter atomically in SQL.
func (s *Store) IncrementVerificationCount(id uint) error {
	return s.db.Model(&courseModels.Certificate{}).Where("id = ?", id).
		UpdateColumn("verification_count", gorm.Expr("verification_count + 1")).Error
}

// IncrementDownloadCount bumps the counter atomically in SQL.
func (s *Store) IncrementDownloadCount(id uint) error {
	return s.db.Model(&courseModels.Certificate{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}
