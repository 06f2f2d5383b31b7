package certificateValidator

import (
	"strconv"
	"strings"

	"edcert/middleware"

	"github.com/gofiber/fiber/v2"
)

func CourseIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("courseId"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		// Validate CourseID is a valid integer
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func CertificateIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		certIDStr := strings.TrimSpace(c.Params("id"))
		if certIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate ID is required!", nil)
		}

		certID, err := strconv.Atoi(certIDStr)
		if err != nil || certID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Certificate ID!", nil)
		}

		c.Locals("certificateID", certID)
		return c.Next()
	}
}

func GenerateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Template string `json:"template"`
		})

		// Body is optional; an empty body means the default template.
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)

		if reqData.Template != "" {
			switch strings.ToUpper(strings.TrimSpace(reqData.Template)) {
			case "STANDARD", "PREMIUM", "CUSTOM":
			default:
				errors["template"] = "Template must be one of STANDARD, PREMIUM or CUSTOM!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGenerate", reqData)
		return c.Next()
	}
}

func CertificateList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		// Default pagination when not supplied
		if reqData.Page == nil {
			page := 1
			reqData.Page = &page
		}
		if reqData.Limit == nil {
			limit := 20
			reqData.Limit = &limit
		}

		errors := make(map[string]string)

		if *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if *reqData.Limit < 1 || *reqData.Limit > 100 {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCertList", reqData)
		return c.Next()
	}
}

func RevokeCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Reason) == "" {
			errors["reason"] = "Revocation reason is required!"
		} else if len(strings.TrimSpace(reqData.Reason)) < 5 {
			errors["reason"] = "Revocation reason must be at least 5 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRevoke", reqData)
		return c.Next()
	}
}

func BulkRegenerate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID *uint  `json:"course_id"`
			Template string `json:"template"`
		})

		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)

		if reqData.CourseID != nil && *reqData.CourseID == 0 {
			errors["course_id"] = "Course ID must be greater than 0!"
		}
		if reqData.Template != "" {
			switch strings.ToUpper(strings.TrimSpace(reqData.Template)) {
			case "STANDARD", "PREMIUM", "CUSTOM":
			default:
				errors["template"] = "Template must be one of STANDARD, PREMIUM or CUSTOM!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBulkRegenerate", reqData)
		return c.Next()
	}
}

func RetryFailed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			MaxRetries *int `json:"max_retries"`
		})

		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)

		if reqData.MaxRetries != nil && (*reqData.MaxRetries < 1 || *reqData.MaxRetries > 10) {
			errors["max_retries"] = "Max retries must be between 1 and 10!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRetryFailed", reqData)
		return c.Next()
	}
}

func AdminCertificateList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID *uint   `json:"course_id"`
			UserID   *uint   `json:"user_id"`
			Status   *string `json:"status"`
			Page     *int    `json:"page"`
			Limit    *int    `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Status != nil {
			switch strings.ToUpper(strings.TrimSpace(*reqData.Status)) {
			case "PENDING", "GENERATED", "FAILED", "REVOKED":
				normalized := strings.ToUpper(strings.TrimSpace(*reqData.Status))
				reqData.Status = &normalized
			default:
				errors["status"] = "Status must be one of PENDING, GENERATED, FAILED or REVOKED!"
			}
		}
		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminList", reqData)
		return c.Next()
	}
}
