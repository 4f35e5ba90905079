package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

type OTPCleanupJobParams struct {
	Logger     *logger.Logger
	Repository otpCleanupRepo
}

type otpCleanupRepo interface {
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// NewOTPCleanupJob clears password-reset codes whose expiry has passed, so a
// stale code cannot linger on the user row indefinitely.
func NewOTPCleanupJob(params OTPCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &otpCleanupJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type otpCleanupJob struct {
	logg *logger.Logger
	repo otpCleanupRepo
	now  func() time.Time
}

func (j *otpCleanupJob) Name() string { return "otp-cleanup" }

func (j *otpCleanupJob) Run(ctx context.Context) error {
	cleared, err := j.repo.ClearExpiredOTPs(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("otp cleanup: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_cleared", cleared)
	j.logg.Info(logCtx, "otp cleanup complete")
	return nil
}
