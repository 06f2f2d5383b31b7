package controllers

import (
	"edcert/middleware"

	"github.com/gofiber/fiber/v2"
)

// VerifyCertificate is the public verification endpoint. It always answers
// 200 with an is_valid verdict; unknown and malformed codes produce an
// identical response shape.
func VerifyCertificate(c *fiber.Ctx) error {
	code := c.Params("code")

	result, err := certService.Verify(code)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Verification is unavailable right now. Please try again.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, result.Message, result)
}
