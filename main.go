package main

import (
	"log"

	"edcert/config"
	certControllers "edcert/controllers/certificate"
	"edcert/database"
	certificateRoutes "edcert/routers/certificateRoutes"
	"edcert/services/certs"
	"edcert/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	// Wire the certificate subsystem. Config is constructed once here and
	// handed in; the services carry no ambient globals.
	store := certs.NewStore(db)
	facts := certs.NewPlatformFacts(db)
	evaluator := certs.NewEvaluator(facts, facts, facts, store)
	codes := certs.NewCodeGenerator(config.AppConfig.CertPrefix, store)
	renderer := certs.NewPDFRenderer()
	artifacts := certs.NewArtifactStorage(config.AppConfig.CertStorageDir)
	notifier := utils.NewCertificateNotifier(db)

	defaultTemplate, err := certs.ParseTemplate(config.AppConfig.CertDefaultTemplate)
	if err != nil {
		log.Fatalf("Invalid CERT_DEFAULT_TEMPLATE: %v", err)
	}

	manager := certs.NewManager(store, evaluator, codes, renderer, artifacts, facts, facts, notifier, certs.Config{
		Prefix:              config.AppConfig.CertPrefix,
		VerificationBaseURL: config.AppConfig.VerificationBaseURL,
		DefaultTemplate:     defaultTemplate,
		BulkWorkers:         config.AppConfig.CertBulkWorkers,
	})

	certControllers.Setup(manager, store, artifacts)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	certificateRoutes.SetupCertificateRoutes(app)

	// Nightly repair sweep over FAILED certificates
	scheduler := utils.StartCertScheduler(manager)
	defer scheduler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
