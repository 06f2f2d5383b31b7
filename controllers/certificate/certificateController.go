package controllers

import (
	"edcert/middleware"
	courseModels "edcert/models/course"
	"edcert/services/certs"

	"github.com/gofiber/fiber/v2"
)

// GenerateCertificate issues a certificate for a completed course
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	template := certs.Template("")
	if reqData, ok := c.Locals("validatedGenerate").(*struct {
		Template string `json:"template"`
	}); ok && reqData.Template != "" {
		parsed, err := certs.ParseTemplate(reqData.Template)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid template!", nil)
		}
		template = parsed
	}

	cert, err := certService.GenerateCertificate(userID, uint(courseID), template)
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully!", cert)
}

// GetEligibility returns the eligibility verdict without issuing anything
func GetEligibility(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	eligibility, err := certService.Evaluate(userID, uint(courseID))
	if err != nil {
		return respondError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligibility evaluated successfully!", eligibility)
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page, limit := 1, 20
	if reqData, ok := c.Locals("validatedCertList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	}); ok {
		page = *reqData.Page
		limit = *reqData.Limit
	}

	certificates, total, err := certStore.ListMine(userID, page, limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	response := map[string]interface{}{
		"certificates": certificates,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", response)
}

// DownloadCertificate streams the rendered artifact. Only the owner or an
// admin may download; each successful download bumps the counter.
func DownloadCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certID := c.Locals("certificateID").(int)

	cert, err := certStore.GetByID(uint(certID))
	if err != nil {
		return respondError(c, err)
	}

	if cert.UserID != userID && !middleware.IsAdmin(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this certificate!", nil)
	}

	if cert.Status != courseModels.CertStatusGenerated || cert.FilePath == "" {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate file is not available!", nil)
	}

	fileBytes, err := artifactStore.Read(cert.FilePath)
	if err != nil {
		return respondError(c, err)
	}

	// Counter failures must not block the download itself.
	_ = certStore.IncrementDownloadCount(cert.ID)

	c.Set(fiber.HeaderContentType, cert.FileMimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="certificate-`+cert.VerificationCode+`.pdf"`)
	return c.Send(fileBytes)
}
