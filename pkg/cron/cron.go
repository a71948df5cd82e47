package cron

import (
	"context"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

type TaskScheduler struct {
	cronJob *cron.Cron
	logger  logger.LoggerI
	storage storage.StorageI
	heroes  []models.Hero
}

type TaskSchedulerI interface {
	RunJobs(ctx context.Context, schedule string) error
	ResetHeroes(ctx context.Context) error
	Stop() context.Context
}

// New starts a scheduler that restores heroes whenever the reset job fires.
func New(log logger.LoggerI, storage storage.StorageI, heroes []models.Hero) TaskSchedulerI {
	var cronJob = cron.New()
	defer cronJob.Start()
	return &TaskScheduler{
		cronJob: cronJob,
		logger:  log,
		storage: storage,
		heroes:  heroes,
	}
}

// RunJobs registers the demo reset job. An empty schedule disables it.
func (t *TaskScheduler) RunJobs(ctx context.Context, schedule string) error {
	if schedule == "" {
		t.logger.Info("Demo reset disabled")
		return nil
	}

	t.logger.Info("Jobs Started:", logger.String("schedule", schedule))

	_, err := t.cronJob.AddFunc(schedule, func() {
		err := t.ResetHeroes(ctx)
		if err != nil {
			t.logger.Error("error in ResetHeroes", logger.Error(err))
		}
	})

	return errors.Wrapf(err, "schedule %q", schedule)
}

func (t *TaskScheduler) ResetHeroes(ctx context.Context) error {
	t.logger.Info("Running ResetHeroes job ...", logger.Int("heroes", len(t.heroes)))

	return t.storage.Hero().Reset(ctx, t.heroes)
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (t *TaskScheduler) Stop() context.Context {
	return t.cronJob.Stop()
}
