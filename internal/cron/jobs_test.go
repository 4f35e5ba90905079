package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

type stubOTPRepo struct {
	sawNow  time.Time
	cleared int64
	err     error
}

func (s *stubOTPRepo) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	s.sawNow = now
	return s.cleared, s.err
}

type stubCartRepo struct {
	sawCutoff time.Time
	deleted   int64
}

func (s *stubCartRepo) DeleteItemsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.sawCutoff = cutoff
	return s.deleted, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestOTPCleanupPassesCurrentTime(t *testing.T) {
	t.Parallel()
	repo := &stubOTPRepo{cleared: 3}
	job, err := NewOTPCleanupJob(OTPCleanupJobParams{Logger: testLogger(), Repository: repo})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	job.(*otpCleanupJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !repo.sawNow.Equal(fixed) {
		t.Fatalf("expected cleanup at %s, got %s", fixed, repo.sawNow)
	}
}

func TestCartRetentionCutoffUsesWindow(t *testing.T) {
	t.Parallel()
	repo := &stubCartRepo{}
	job, err := NewCartRetentionJob(CartRetentionJobParams{Logger: testLogger(), Repository: repo, Retention: 30})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	fixed := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	job.(*cartRetentionJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixed.Add(-30 * 24 * time.Hour)
	if !repo.sawCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.sawCutoff)
	}
}

func TestCartRetentionDefaultsWindow(t *testing.T) {
	t.Parallel()
	job, err := NewCartRetentionJob(CartRetentionJobParams{Logger: testLogger(), Repository: &stubCartRepo{}})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if got := job.(*cartRetentionJob).retention; got != defaultCartRetentionDays {
		t.Fatalf("expected %d day default, got %d", defaultCartRetentionDays, got)
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	t.Parallel()
	job, err := NewOTPCleanupJob(OTPCleanupJobParams{Logger: testLogger(), Repository: &stubOTPRepo{}})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	registry := NewRegistry(nil, job, nil)
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("expected one job, got %d", got)
	}
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRunCycleContinuesPastFailingJob(t *testing.T) {
	t.Parallel()
	failing := &recordingJob{name: "first", err: fmt.Errorf("boom")}
	healthy := &recordingJob{name: "second"}

	lock, err := NewRedisLock(newFakeRedisStore(), "lock:cycle", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	runErr := service.runCycle(context.Background())
	if runErr == nil {
		t.Fatal("expected the failing job error to surface")
	}
	if healthy.runs != 1 {
		t.Fatalf("expected the second job to still run, got %d runs", healthy.runs)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	t.Parallel()
	store := newFakeRedisStore()
	store.values["lock:held"] = "someone-else"

	job := &recordingJob{name: "only"}
	lock, err := NewRedisLock(store, "lock:held", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs while lock is held, got %d", job.runs)
	}
}
