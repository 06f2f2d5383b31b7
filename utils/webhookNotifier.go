package utils

import (
	"errors"
	"log"
	"time"

	"edcert/config"
	"edcert/models"
	courseModels "edcert/models/course"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

// CertificateNotifier delivers certificate state transitions to the
// learner (email) and the platform webhook. All delivery is best-effort:
// failures are logged and never bubble into the lifecycle operation.
type CertificateNotifier struct {
	db     *gorm.DB
	client *resty.Client
}

func NewCertificateNotifier(db *gorm.DB) *CertificateNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &CertificateNotifier{db: db, client: client}
}

// CertificateIssued notifies the learner and the platform of an issuance.
func (n *CertificateNotifier) CertificateIssued(cert *courseModels.Certificate) {
	if email, err := n.userEmail(cert.UserID); err == nil {
		if err := SendCertificateIssuedEmail(email, cert.StudentName, cert.CourseName,
			cert.VerificationCode, cert.VerificationURL); err != nil {
			log.Printf("[CERT-NOTIFY] issue email for certificate %d failed: %v", cert.ID, err)
		}
	} else {
		log.Printf("[CERT-NOTIFY] no email for user %d: %v", cert.UserID, err)
	}

	n.postWebhook("certificate.issued", cert)
}

// CertificateRevoked notifies the learner and the platform of a revocation.
func (n *CertificateNotifier) CertificateRevoked(cert *courseModels.Certificate) {
	if email, err := n.userEmail(cert.UserID); err == nil {
		if err := SendCertificateRevokedEmail(email, cert.StudentName, cert.CourseName, cert.RevokedReason); err != nil {
			log.Printf("[CERT-NOTIFY] revoke email for certificate %d failed: %v", cert.ID, err)
		}
	} else {
		log.Printf("[CERT-NOTIFY] no email for user %d: %v", cert.UserID, err)
	}

	n.postWebhook("certificate.revoked", cert)
}

func (n *CertificateNotifier) userEmail(userID uint) (string, error) {
	var user models.User
	err := n.db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New("user not found")
	}
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (n *CertificateNotifier) postWebhook(event string, cert *courseModels.Certificate) {
	url := config.AppConfig.WebhookURL
	if url == "" {
		return
	}

	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+config.AppConfig.WebhookToken).
		SetBody(map[string]interface{}{
			"event":             event,
			"certificate_id":    cert.ID,
			"user_id":           cert.UserID,
			"course_id":         cert.CourseID,
			"verification_code": cert.VerificationCode,
			"status":            cert.Status,
			"occurred_at":       time.Now().UTC(),
		}).
		Post(url)
	if err != nil {
		log.Printf("[CERT-NOTIFY] webhook %s for certificate %d failed: %v", event, cert.ID, err)
		return
	}
	if resp.IsError() {
		log.Printf("[CERT-NOTIFY] webhook %s for certificate %d returned %d", event, cert.ID, resp.StatusCode())
	}
}
