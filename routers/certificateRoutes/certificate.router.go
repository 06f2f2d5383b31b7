package certificateRoutes

import (
	controllers "edcert/controllers/certificate"
	"edcert/middleware"
	validators "edcert/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes sets up all certificate routes
func SetupCertificateRoutes(app *fiber.App) {
	// Public verification, no auth, no internal identifiers in the response
	app.Get("/api/verify/:code", controllers.VerifyCertificate)

	userGroup := app.Group("/api/certificates")

	userGroup.Post("/courses/:courseId/generate", middleware.JWTMiddleware, validators.CourseIDParam(), validators.GenerateCertificate(), controllers.GenerateCertificate)
	userGroup.Get("/courses/:courseId/eligibility", middleware.JWTMiddleware, validators.CourseIDParam(), controllers.GetEligibility)
	userGroup.Get("/mine", middleware.JWTMiddleware, validators.CertificateList(), controllers.GetUserCertificates)
	userGroup.Get("/:id/download", middleware.JWTMiddleware, validators.CertificateIDParam(), controllers.DownloadCertificate)

	adminGroup := app.Group("/api/admin/certificates", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	adminGroup.Get("/", validators.AdminCertificateList(), controllers.ListCertificates)
	adminGroup.Get("/analytics", controllers.GetCertificateAnalytics)
	adminGroup.Post("/bulk-regenerate", validators.BulkRegenerate(), controllers.BulkRegenerateCertificates)
	adminGroup.Post("/retry-failed", validators.RetryFailed(), controllers.RetryFailedCertificates)
	adminGroup.Post("/:id/revoke", validators.CertificateIDParam(), validators.RevokeCertificate(), controllers.RevokeCertificate)
	adminGroup.Post("/:id/regenerate", validators.CertificateIDParam(), controllers.RegenerateCertificate)
}
