// Package scheduler runs periodic background jobs, currently the nightly
// device token expiry sweep.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/api/dispatch"
	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/databases"
)

const tokenExpiryJobName = "token_expiry_job"

// Scheduler handles periodic background jobs for push token hygiene
type Scheduler struct {
	cron       *cron.Cron
	Lifecycle  *dispatch.Lifecycle
	LockDB     databases.SchedulerLockDatabase
	Config     *config.Config
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(lifecycle *dispatch.Lifecycle, lockDB databases.SchedulerLockDatabase, cfg *config.Config) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Lifecycle:  lifecycle,
		LockDB:     lockDB,
		Config:     cfg,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Expire tokens that have not taken a delivery inside the retention
	// window, daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.ExpireStaleTokens)
	if err != nil {
		zap.S().Errorw("failed to register token expiry job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Token expiry scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Token expiry scheduler stopped")
}

// ExpireStaleTokens runs a single expiry sweep. Exported so it can be driven
// directly in tests and from operational tooling.
func (s *Scheduler) ExpireStaleTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, tokenExpiryJobName, s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for token expiry job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Token expiry job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, tokenExpiryJobName, s.instanceID)

	zap.S().Infow("Running token expiry sweep", "instance", s.instanceID, "retention", s.Config.RetentionWindow)

	expired, err := s.Lifecycle.ExpireStale(ctx, s.Config.RetentionWindow)
	if err != nil {
		zap.S().Errorw("token expiry sweep failed", "error", err)
		return
	}

	zap.S().Infow("Token expiry sweep complete", "expired", expired)

	if expired > 0 {
		s.sendSweepReport(expired)
	}
}

// sendSweepReport emails the ops inbox a one-line summary of the sweep.
// Skipped entirely when sendgrid is not configured.
func (s *Scheduler) sendSweepReport(expired int64) {
	if s.Config.SendgridAPIKey == "" || s.Config.OpsEmail == "" {
		return
	}

	from := mail.NewEmail("TaskDeck", "no-reply@taskdeck.app")
	to := mail.NewEmail("TaskDeck Ops", s.Config.OpsEmail)
	subject := "Push token expiry sweep report"
	body := fmt.Sprintf("The nightly sweep deactivated %d stale push tokens (retention %s).", expired, s.Config.RetentionWindow)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(s.Config.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send sweep report email", "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}
