// Package heroclient calls the heroes HTTP API the way the web UI does: failures are logged and an
// empty result stands in for the response, while the error is still returned.
package heroclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/uifilter"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBasicAuth sets the credentials sent on every call except Login.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) { c.username, c.password = username, password }
}

type Client struct {
	baseURL  string
	http     *http.Client
	log      logger.LoggerI
	username string
	password string
}

func New(baseURL string, log logger.LoggerI, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetHeroesLazy converts the grid event into a filter request and fetches that page of heroes.
func (c *Client) GetHeroesLazy(ctx context.Context, event uifilter.LazyLoadEvent) (models.HeroFilterResult, error) {
	empty := models.HeroFilterResult{Records: []models.Hero{}}

	var result models.HeroFilterResult
	if err := c.do(ctx, http.MethodPost, "/api/hero/filter", uifilter.Build(event), &result); err != nil {
		return empty, c.fail("getHeroes", err)
	}
	if result.Records == nil {
		result.Records = []models.Hero{}
	}

	c.log.Debug("HeroService: fetched heroes", logger.Int64("total", result.TotalRecords))
	return result, nil
}

func (c *Client) GetTopHeroes(ctx context.Context) ([]models.Hero, error) {
	var heroes []models.Hero
	if err := c.do(ctx, http.MethodGet, "/api/hero/top", nil, &heroes); err != nil {
		return []models.Hero{}, c.fail("getTop", err)
	}

	c.log.Debug("HeroService: fetched top heroes")
	return nonNil(heroes), nil
}

func (c *Client) GetHero(ctx context.Context, id int64) (*models.Hero, error) {
	var hero models.Hero
	if err := c.do(ctx, http.MethodGet, "/api/hero/"+strconv.FormatInt(id, 10), nil, &hero); err != nil {
		return nil, c.fail(fmt.Sprintf("getHero id=%d", id), err)
	}

	c.log.Debug("HeroService: fetched hero", logger.Int64("id", id))
	return &hero, nil
}

// SaveHero adds the hero when its id is zero and updates it otherwise.
func (c *Client) SaveHero(ctx context.Context, hero models.Hero) (*models.Hero, error) {
	op := "updateHero"
	if hero.ID == 0 {
		op = "addHero"
	}

	var saved models.Hero
	if err := c.do(ctx, http.MethodPut, "/api/hero", hero, &saved); err != nil {
		return nil, c.fail(op, err)
	}

	c.log.Debug("HeroService: saved hero", logger.Int64("id", saved.ID))
	return &saved, nil
}

func (c *Client) DeleteHero(ctx context.Context, id int64) (*models.Hero, error) {
	var hero models.Hero
	if err := c.do(ctx, http.MethodDelete, "/api/hero/"+strconv.FormatInt(id, 10), nil, &hero); err != nil {
		return nil, c.fail("deleteHero", err)
	}

	c.log.Debug("HeroService: deleted hero", logger.Int64("id", id))
	return &hero, nil
}

// SearchHeroes finds heroes whose name contains term. A blank term returns nothing without a call.
func (c *Client) SearchHeroes(ctx context.Context, term string) ([]models.Hero, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Hero{}, nil
	}

	var heroes []models.Hero
	if err := c.do(ctx, http.MethodGet, "/api/hero/search?name="+url.QueryEscape(term), nil, &heroes); err != nil {
		return []models.Hero{}, c.fail("searchHeroes", err)
	}

	if len(heroes) == 0 {
		c.log.Debug("HeroService: no heroes matching", logger.String("term", term))
	} else {
		c.log.Debug("HeroService: found heroes matching", logger.String("term", term))
	}
	return nonNil(heroes), nil
}

// Login posts the credentials as a form and, on success, uses them for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	form := url.Values{"username": {username}, "password": {password}}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, c.fail("login", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var user models.User
	if err := c.send(req, &user); err != nil {
		return nil, c.fail("login", err)
	}

	c.username, c.password = username, password
	return &user, nil
}

func (c *Client) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/user/username/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, c.fail("find id="+username, err)
	}
	return &user, nil
}

func (c *Client) UpdateTheme(ctx context.Context, id int64, theme string) (*models.User, error) {
	path := fmt.Sprintf("/api/user/updateTheme/%d?theme=%s", id, url.QueryEscape(theme))

	var user models.User
	if err := c.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, c.fail(fmt.Sprintf("updateTheme id=%d", id), err)
	}

	c.log.Debug("UserService: updated theme", logger.Int64("id", id), logger.String("theme", theme))
	return &user, nil
}

func (c *Client) fail(op string, err error) error {
	c.log.Error(op+" failed", logger.Error(err))
	return errors.Wrap(err, op)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	span, _ := opentracing.StartSpanFromContext(req.Context(), "heroclient."+req.Method)
	defer span.Finish()

	ext.SpanKindRPCClient.Set(span)
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())
	_ = span.Tracer().Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		ext.Error.Set(span, true)
		return errors.Wrap(err, "http do")
	}
	defer resp.Body.Close()

	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func nonNil(heroes []models.Hero) []models.Hero {
	if heroes == nil {
		return []models.Hero{}
	}
	return heroes
}
