package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/seed"
	"heroes/heroes_go_service/storage/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	data, err := seed.Default()
	require.NoError(t, err)

	assert.Len(t, data.Heroes, 9)
	assert.Equal(t, "Dr. Nice", data.Heroes[0].Name)
	require.NotNil(t, data.Heroes[1].Rating)
	assert.Equal(t, 4, *data.Heroes[1].Rating)

	require.Len(t, data.Users, 2)
	assert.Contains(t, data.Users[0].Privileges, config.PrivilegeAdmin)
	assert.NotContains(t, data.Users[1].Privileges, config.PrivilegeAdmin)
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	_, err := seed.Parse([]byte("heroes:\n  - power: Flight\n"))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("users:\n  - username: bob\n"))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("heroes: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
heroes:
  - name: Storm
    alterEgo: Ororo Munroe
    power: Weather
    powerDate: 2023-04-01T00:00:00Z
`), 0o600))

	data, err := seed.Load(path)
	require.NoError(t, err)
	require.Len(t, data.Heroes, 1)

	heroes := data.HeroModels()
	assert.Equal(t, "Ororo Munroe", heroes[0].AlterEgo)
	assert.Nil(t, heroes[0].Rating)
	require.NotNil(t, heroes[0].PowerDate)
	assert.Equal(t, 2023, heroes[0].PowerDate.Year())

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	strg := fake.New()

	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Apply(ctx, strg, data, logger.NewNop()))

	top, err := strg.Hero().FindTop(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, top, 5)
	assert.Equal(t, 5, *top[0].Rating)

	userID, err := strg.LoginInfo().Authenticate(ctx, "gru", "minions")
	require.NoError(t, err)

	user, err := strg.User().GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.HasPrivilege(config.PrivilegeAdmin))
}
