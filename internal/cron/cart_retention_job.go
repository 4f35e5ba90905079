package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

const defaultCartRetentionDays = 90

type CartRetentionJobParams struct {
	Logger     *logger.Logger
	Repository cartRetentionRepo
	Retention  int
}

type cartRetentionRepo interface {
	DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewCartRetentionJob drops cart lines untouched for the retention window.
// Cart rows themselves are left in place; a cart is only ever emptied.
func NewCartRetentionJob(params CartRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultCartRetentionDays
	}
	return &cartRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type cartRetentionJob struct {
	logg      *logger.Logger
	repo      cartRetentionRepo
	retention int
	now       func() time.Time
}

func (j *cartRetentionJob) Name() string { return "cart-retention" }

func (j *cartRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteItemsOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cart retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "cart retention complete")
	return nil
}
