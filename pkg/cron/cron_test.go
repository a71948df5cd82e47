package cron_test

import (
	"context"
	"testing"
	"time"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/cron"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage/fake"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResetHeroes(t *testing.T) {
	ctx := context.Background()
	strg := fake.New()

	_, err := strg.Hero().Create(ctx, &models.Hero{Name: "Intruder"})
	require.NoError(t, err)

	scheduler := cron.New(logger.NewNop(), strg, []models.Hero{{Name: "Magma"}, {Name: "Tornado"}})
	defer func() { <-scheduler.Stop().Done() }()

	require.NoError(t, scheduler.ResetHeroes(ctx))

	heroes, err := strg.Hero().Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, heroes, 2)
	assert.Equal(t, "Magma", heroes[0].Name)
	assert.EqualValues(t, 1, heroes[0].ID)

	strg.SetErr(errors.New("db down"))
	assert.Error(t, scheduler.ResetHeroes(ctx))
}

func TestRunJobs(t *testing.T) {
	strg := fake.New()
	scheduler := cron.New(logger.NewNop(), strg, nil)

	assert.NoError(t, scheduler.RunJobs(context.Background(), ""))
	assert.Error(t, scheduler.RunJobs(context.Background(), "not a schedule"))

	require.NoError(t, scheduler.RunJobs(context.Background(), "@every 1s"))
	assert.Eventually(t, func() bool { return strg.ResetCount() > 0 }, 3*time.Second, 50*time.Millisecond)

	<-scheduler.Stop().Done()
}
