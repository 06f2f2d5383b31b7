package controllers

import (
	"edcert/middleware"
	courseModels "edcert/models/course"
	"edcert/services/certs"

	"github.com/gofiber/fiber/v2"
)

// RevokeCertificate revokes a GENERATED certificate with an audit trail
func RevokeCertificate(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)

	reqData, ok := c.Locals("validatedRevoke").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	cert, err := certService.Revoke(uint(certID), reqData.Reason, actorID)
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

// RegenerateCertificate re-renders the artifact from the stored snapshot
func RegenerateCertificate(c *fiber.Ctx) error {
	certID := c.Locals("certificateID").(int)

	cert, err := certService.Regenerate(uint(certID))
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate regenerated successfully!", cert)
}

// BulkRegenerateCertificates re-renders all matching GENERATED certificates
func BulkRegenerateCertificates(c *fiber.Ctx) error {
	filter := certs.BulkFilter{}
	if reqData, ok := c.Locals("validatedBulkRegenerate").(*struct {
		CourseID *uint  `json:"course_id"`
		Template string `json:"template"`
	}); ok {
		filter.CourseID = reqData.CourseID
		if reqData.Template != "" {
			template, err := certs.ParseTemplate(reqData.Template)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template!", nil)
			}
			filter.Template = &template
		}
	}

	result, err := certService.BulkRegenerate(filter)
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bulk regeneration finished!", result)
}

// RetryFailedCertificates re-attempts generation for FAILED certificates
func RetryFailedCertificates(c *fiber.Ctx) error {
	maxRetries := 3
	if reqData, ok := c.Locals("validatedRetryFailed").(*struct {
		MaxRetries *int `json:"max_retries"`
	}); ok && reqData.MaxRetries != nil {
		maxRetries = *reqData.MaxRetries
	}

	result, err := certService.RetryFailed(maxRetries)
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Retry pass finished!", result)
}

// ListCertificates is the admin listing with filters and pagination
func ListCertificates(c *fiber.Ctx) error {
	filter := certs.AdminFilter{Page: 1, Limit: 20}
	if reqData, ok := c.Locals("validatedAdminList").(*struct {
		CourseID *uint   `json:"course_id"`
		UserID   *uint   `json:"user_id"`
		Status   *string `json:"status"`
		Page     *int    `json:"page"`
		Limit    *int    `json:"limit"`
	}); ok {
		filter.CourseID = reqData.CourseID
		filter.UserID = reqData.UserID
		if reqData.Status != nil {
			status := courseModels.CertificateStatus(*reqData.Status)
			filter.Status = &status
		}
		if reqData.Page != nil {
			filter.Page = *reqData.Page
		}
		if reqData.Limit != nil {
			filter.Limit = *reqData.Limit
		}
	}

	certificates, total, err := certStore.List(filter)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	response := map[string]interface{}{
		"certificates": certificates,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  filter.Page,
			"limit": filter.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", response)
}

// GetCertificateAnalytics returns the admin analytics aggregate
func GetCertificateAnalytics(c *fiber.Ctx) error {
	report, err := certStore.Analytics()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build analytics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analytics fetched successfully!", report)
}
