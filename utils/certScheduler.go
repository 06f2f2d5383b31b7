package utils

import (
	"fmt"
	"log"
	"time"

	"edcert/config"
	"edcert/services/certs"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[CERT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// retrySweepMaxAttempts is the per-certificate retry budget of the nightly
// sweep.
const retrySweepMaxAttempts = 3

// StartCertScheduler runs the nightly repair sweep over FAILED
// certificates. Returns the cron so the caller owns its lifecycle.
func StartCertScheduler(manager *certs.Manager) *cron.Cron {
	scheduler := cron.New()

	schedule := config.AppConfig.CertRetrySchedule
	_, err := scheduler.AddFunc(schedule, func() {
		logScheduler("Starting failed-certificate retry sweep")
		result, err := manager.RetryFailed(retrySweepMaxAttempts)
		if err != nil {
			logScheduler("Retry sweep aborted: " + err.Error())
			return
		}
		logScheduler(formatSweepResult(result))
	})
	if err != nil {
		log.Fatalf("Invalid CERT_RETRY_SCHEDULE %q: %v", schedule, err)
	}

	scheduler.Start()
	logScheduler("Certificate retry scheduler started with schedule " + schedule)
	return scheduler
}

func formatSweepResult(result *certs.RetryResult) string {
	if result.Attempted == 0 {
		return "Retry sweep: nothing to repair"
	}
	return fmt.Sprintf("Retry sweep finished: %d attempted, %d recovered, %d still failed",
		result.Attempted, result.Succeeded, result.StillFailed)
}
