package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"heroes/heroes_go_service/api"
	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/seed"
	"heroes/heroes_go_service/storage/fake"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Users from the default seed: gru is ADMIN, reed is VIEW only.
const (
	adminUser, adminPass = "gru", "minions"
	viewUser, viewPass   = "reed", "fantastic"
)

type testAPI struct {
	router *gin.Engine
	strg   *fake.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	strg := fake.New()
	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), strg, data, logger.NewNop()))

	cfg := config.Config{
		Environment:      config.TestMode,
		LoginRPS:         100,
		LoginBurst:       100,
		DefaultSortField: "id",
		TopHeroesCount:   5,
	}

	return &testAPI{
		router: api.SetUpAPI(cfg, logger.NewNop(), strg, strg.Objects(), prometheus.NewRegistry()),
		strg:   strg,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, user, pass string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/healthz", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	a.strg.SetPingErr(errors.New("connection refused"))
	w = a.do(t, http.MethodGet, "/healthz", nil, "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = a.do(t, http.MethodGet, "/metrics", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "heroes_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)

	t.Run("json", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: adminUser, Password: adminPass}, "", "")
		require.Equal(t, http.StatusOK, w.Code)

		user := decode[models.User](t, w)
		assert.Contains(t, user.Privileges, config.PrivilegeAdmin)
	})

	t.Run("form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/auth/login", strings.NewReader("username=reed&password=fantastic"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{config.PrivilegeView}, decode[models.User](t, w).Privileges)
	})

	t.Run("bad password", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: adminUser, Password: "nope"}, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": adminUser}, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginRateLimit(t *testing.T) {
	strg := fake.New()
	cfg := config.Config{Environment: config.TestMode, LoginRPS: 0.001, LoginBurst: 2}
	router := api.SetUpAPI(cfg, logger.NewNop(), strg, strg.Objects(), prometheus.NewRegistry())

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"x","password":"y"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestBasicAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/hero/top", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))

	w = a.do(t, http.MethodGet, "/api/hero/top", nil, adminUser, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHeroReads(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/hero/top", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]models.Hero](t, w)
	require.Len(t, top, 5)
	assert.Equal(t, 5, *top[0].Rating)

	w = a.do(t, http.MethodGet, "/api/hero/1", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dr. Nice", decode[models.Hero](t, w).Name)

	w = a.do(t, http.MethodGet, "/api/hero/999", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decode[models.ErrorResponse](t, w).Error)

	w = a.do(t, http.MethodGet, "/api/hero/abc", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/hero/search?name=ma", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	for _, hero := range decode[[]models.Hero](t, w) {
		assert.Contains(t, strings.ToLower(hero.Name), "ma")
	}

	w = a.do(t, http.MethodGet, "/api/hero/search?name=%20", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestFilterHeroes(t *testing.T) {
	a := newTestAPI(t)

	body := `{"first":0,"rows":5,"sortFields":[{"field":"name","order":1}],"filters":{"name":[{"value":"a","matchMode":"contains"}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/hero/filter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(viewUser, viewPass)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	result := decode[models.HeroFilterResult](t, w)
	assert.Len(t, result.Records, 5)
	assert.EqualValues(t, 9, result.TotalRecords)

	filters := a.strg.FilterLog()
	require.Len(t, filters, 1)
	assert.Equal(t, 5, *filters[0].Rows)
	assert.Equal(t, "name", filters[0].SortFields[0].Field)

	invalid := map[string]any{
		"filters": map[string]any{"rating": []map[string]any{{"value": "lots", "matchMode": "gt"}}},
	}
	w = a.do(t, http.MethodPost, "/api/hero/filter", invalid, viewUser, viewPass)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHeroes(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/hero/filter/export?format=csv", map[string]any{"first": 0, "rows": 2}, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 10, "pagination is ignored on export")

	w = a.do(t, http.MethodPost, "/api/hero/filter/export", map[string]any{}, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "heroes.xlsx")

	w = a.do(t, http.MethodPost, "/api/hero/filter/export?format=pdf", map[string]any{}, viewUser, viewPass)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAndDeleteHero(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPut, "/api/hero", models.Hero{Name: "Storm"}, viewUser, viewPass)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPut, "/api/hero", models.Hero{Name: "Storm", Power: "Weather"}, adminUser, adminPass)
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[models.Hero](t, w)
	assert.EqualValues(t, 10, created.ID)

	created.AlterEgo = "Ororo Munroe"
	w = a.do(t, http.MethodPut, "/api/hero", created, adminUser, adminPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ororo Munroe", decode[models.Hero](t, w).AlterEgo)

	w = a.do(t, http.MethodPut, "/api/hero", models.Hero{ID: 999, Name: "Ghost"}, adminUser, adminPass)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPut, "/api/hero", models.Hero{Name: " "}, adminUser, adminPass)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodDelete, "/api/hero/10", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodDelete, "/api/hero/10", nil, adminUser, adminPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Storm", decode[models.Hero](t, w).Name)

	w = a.do(t, http.MethodGet, "/api/hero/10", nil, adminUser, adminPass)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorageFailureIsHidden(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/hero/top", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)

	a.strg.SetErr(errors.New("dial tcp: connection refused"))
	w = a.do(t, http.MethodGet, "/api/hero/top", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode[models.ErrorResponse](t, w).Error)
}

func TestUserRoutes(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/user/username/reed", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[models.User](t, w)

	w = a.do(t, http.MethodGet, "/api/user/updateTheme/"+itoa(user.ID)+"?theme=vela-blue", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vela-blue", decode[models.User](t, w).PreferredTheme)

	w = a.do(t, http.MethodGet, "/api/user/"+itoa(user.ID), nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vela-blue", decode[models.User](t, w).PreferredTheme)

	w = a.do(t, http.MethodGet, "/api/user/updateTheme/"+itoa(user.ID), nil, viewUser, viewPass)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/user/username/nobody", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateThemeOwnership(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/user/username/gru", nil, adminUser, adminPass)
	require.Equal(t, http.StatusOK, w.Code)
	admin := decode[models.User](t, w)

	w = a.do(t, http.MethodGet, "/api/user/updateTheme/"+itoa(admin.ID)+"?theme=vela-blue", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodGet, "/api/user/username/reed", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	viewer := decode[models.User](t, w)

	w = a.do(t, http.MethodGet, "/api/user/updateTheme/"+itoa(viewer.ID)+"?theme=arya-green", nil, adminUser, adminPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "arya-green", decode[models.User](t, w).PreferredTheme)
}

func uploadAvatar(t *testing.T, a *testAPI, user, pass string, userID int64, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/avatar/"+itoa(userID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(user, pass)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestAvatar(t *testing.T) {
	a := newTestAPI(t)
	png := []byte("\x89PNG\r\n\x1a\n fake image bytes")

	w := a.do(t, http.MethodGet, "/api/avatar/data/1", nil, viewUser, viewPass)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = uploadAvatar(t, a, adminUser, adminPass, 1, "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadAvatar(t, a, adminUser, adminPass, 1, "application/octet-stream", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	avatar := decode[models.Avatar](t, w)
	assert.Equal(t, "image/png", avatar.MimeType)
	assert.EqualValues(t, 1, avatar.UserID)

	w = a.do(t, http.MethodGet, "/api/avatar/data/1", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		UserID   int64  `json:"userId"`
		MimeType string `json:"mimeType"`
		Avatar   string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, base64.StdEncoding.EncodeToString(png), data.Avatar)

	w = a.do(t, http.MethodGet, "/api/avatar/image/1", nil, viewUser, viewPass)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())

	w = uploadAvatar(t, a, adminUser, adminPass, 42, "image/png", png)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvatarUploadOwnership(t *testing.T) {
	a := newTestAPI(t)
	png := []byte("\x89PNG\r\n\x1a\n fake image bytes")

	// reed is user 2 and has no ADMIN privilege
	w := uploadAvatar(t, a, viewUser, viewPass, 1, "image/png", png)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := a.strg.Avatar().GetByUserID(context.Background(), 1)
	assert.Error(t, err, "avatar of user 1 must be untouched")

	w = uploadAvatar(t, a, viewUser, viewPass, 2, "image/png", png)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = uploadAvatar(t, a, adminUser, adminPass, 2, "image/png", png)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
