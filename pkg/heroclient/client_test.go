package heroclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"heroes/heroes_go_service/api"
	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/heroclient"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/seed"
	"heroes/heroes_go_service/pkg/uifilter"
	"heroes/heroes_go_service/storage/fake"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func newServer(t *testing.T) (*httptest.Server, *fake.Store) {
	t.Helper()

	strg := fake.New()
	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), strg, data, logger.NewNop()))

	cfg := config.Config{
		Environment:    config.TestMode,
		LoginRPS:       100,
		LoginBurst:     100,
		TopHeroesCount: 5,
	}
	srv := httptest.NewServer(api.SetUpAPI(cfg, logger.NewNop(), strg, strg.Objects(), prometheus.NewRegistry()))
	t.Cleanup(srv.Close)

	return srv, strg
}

func TestLoginThenRead(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	client := heroclient.New(srv.URL, logger.NewNop())

	_, err := client.GetTopHeroes(ctx)
	var statusErr *heroclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	user, err := client.Login(ctx, "gru", "minions")
	require.NoError(t, err)
	assert.True(t, user.HasPrivilege(config.PrivilegeAdmin))

	top, err := client.GetTopHeroes(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 5)

	hero, err := client.GetHero(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Nice", hero.Name)
}

func TestFailuresReturnEmptyResults(t *testing.T) {
	srv, strg := newServer(t)
	ctx := context.Background()
	client := heroclient.New(srv.URL, logger.NewNop(), heroclient.WithBasicAuth("gru", "minions"))

	_, err := client.Login(ctx, "gru", "wrong")
	assert.Error(t, err)

	hero, err := client.GetHero(ctx, 404)
	assert.Error(t, err)
	assert.Nil(t, hero)

	strg.SetErr(errors.New("database down"))

	top, err := client.GetTopHeroes(ctx)
	assert.Error(t, err)
	assert.Equal(t, []models.Hero{}, top)

	result, err := client.GetHeroesLazy(ctx, uifilter.LazyLoadEvent{Rows: intp(5)})
	assert.Error(t, err)
	assert.Equal(t, []models.Hero{}, result.Records)
	assert.Zero(t, result.TotalRecords)
}

func TestGetHeroesLazy(t *testing.T) {
	srv, strg := newServer(t)
	ctx := context.Background()
	client := heroclient.New(srv.URL, logger.NewNop(), heroclient.WithBasicAuth("reed", "fantastic"))

	event := uifilter.LazyLoadEvent{
		First:     intp(5),
		Last:      intp(10),
		SortField: uifilter.FieldNames{"name"},
		SortOrder: intp(-1),
		Filters: map[string]uifilter.MetadataList{
			"name":   {{Value: uifilter.String(""), MatchMode: uifilter.MatchContains}},
			"rating": {{Value: uifilter.Int(3), MatchMode: uifilter.MatchDateAfter}},
		},
	}

	result, err := client.GetHeroesLazy(ctx, event)
	require.NoError(t, err)
	assert.Len(t, result.Records, 4)
	assert.EqualValues(t, 9, result.TotalRecords)

	filters := strg.FilterLog()
	require.Len(t, filters, 1)
	sent := filters[0]
	assert.Equal(t, 5, *sent.First)
	assert.Equal(t, 5, *sent.Rows)
	assert.Equal(t, []uifilter.SortField{{Field: "name", Order: -1}}, sent.SortFields)
	assert.NotContains(t, sent.Filters, "name")
	require.Len(t, sent.Filters["rating"], 1)
	assert.Equal(t, uifilter.MatchGt, sent.Filters["rating"][0].MatchMode)
}

func TestSaveSearchDelete(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	client := heroclient.New(srv.URL, logger.NewNop(), heroclient.WithBasicAuth("gru", "minions"))

	saved, err := client.SaveHero(ctx, models.Hero{Name: "Storm Rider"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	found, err := client.SearchHeroes(ctx, "storm r")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, saved.ID, found[0].ID)

	found, err = client.SearchHeroes(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)

	deleted, err := client.DeleteHero(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Storm Rider", deleted.Name)

	viewer := heroclient.New(srv.URL, logger.NewNop(), heroclient.WithBasicAuth("reed", "fantastic"))
	_, err = viewer.SaveHero(ctx, models.Hero{Name: "Nope"})
	var statusErr *heroclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestUpdateTheme(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	client := heroclient.New(srv.URL, logger.NewNop(), heroclient.WithBasicAuth("reed", "fantastic"))

	user, err := client.FindByUsername(ctx, "reed")
	require.NoError(t, err)

	updated, err := client.UpdateTheme(ctx, user.ID, "arya-green")
	require.NoError(t, err)
	assert.Equal(t, "arya-green", updated.PreferredTheme)
}
