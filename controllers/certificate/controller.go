package controllers

import (
	"errors"

	"edcert/middleware"
	"edcert/services/certs"

	"github.com/gofiber/fiber/v2"
)

// Package-level service instances, wired once at boot.
var (
	certService   *certs.Manager
	certStore     *certs.Store
	artifactStore *certs.ArtifactStorage
)

// Setup injects the certificate services into the handlers.
func Setup(manager *certs.Manager, store *certs.Store, artifacts *certs.ArtifactStorage) {
	certService = manager
	certStore = store
	artifactStore = artifacts
}

// respondError maps the subsystem error taxonomy to HTTP responses.
// Transient internals get a generic try-again message without detail.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, certs.ErrAlreadyIssued):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already exists for this course!", nil)
	case errors.Is(err, certs.ErrNotEligible):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, certs.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	case errors.Is(err, certs.ErrUnauthorized):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this certificate!", nil)
	case errors.Is(err, certs.ErrInvalidTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, certs.ErrData):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Certificate data is incomplete. Please contact support.", nil)
	case errors.Is(err, certs.ErrEvaluation):
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Could not evaluate eligibility right now. Please try again.", nil)
	case errors.Is(err, certs.ErrRender):
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Certificate generation failed. Please try again.", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong. Please try again.", nil)
	}
}
