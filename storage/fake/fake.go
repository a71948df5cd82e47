// Package fake is an in-memory StorageI and ObjectStoreI for tests. Hero filters are
// validated but not evaluated: FindByFilter pages over all heroes ordered by id.
package fake

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/helper"
	"heroes/heroes_go_service/pkg/uifilter"
	"heroes/heroes_go_service/storage"

	"github.com/pkg/errors"
)

var heroDescriptors = uifilter.DescriptorsFor(models.Hero{})

type login struct {
	hash   string
	userID int64
}

type Store struct {
	mu sync.Mutex

	heroes     map[int64]models.Hero
	nextHeroID int64
	users      map[int64]models.User
	nextUserID int64
	logins     map[string]login
	avatars    map[int64]models.Avatar
	objects    map[string][]byte

	// Err, when set, is returned by every repository call.
	Err error
	// PingErr is returned by Ping.
	PingErr error
	// Filters records every FilterRequest passed to FindByFilter.
	Filters []uifilter.FilterRequest
	// Resets counts calls to Hero().Reset.
	Resets int
}

func New() *Store {
	return &Store{
		heroes:  map[int64]models.Hero{},
		users:   map[int64]models.User{},
		logins:  map[string]login{},
		avatars: map[int64]models.Avatar{},
		objects: map[string][]byte{},
	}
}

func (s *Store) CloseDB() {}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PingErr
}

func (s *Store) SetPingErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PingErr = err
}

func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// FilterLog returns a copy of the filter requests seen so far.
func (s *Store) FilterLog() []uifilter.FilterRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Filters)
}

func (s *Store) ResetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Resets
}

func (s *Store) Hero() storage.HeroRepoI           { return heroRepo{s} }
func (s *Store) User() storage.UserRepoI           { return userRepo{s} }
func (s *Store) LoginInfo() storage.LoginInfoRepoI { return loginInfoRepo{s} }
func (s *Store) Avatar() storage.AvatarRepoI       { return avatarRepo{s} }
func (s *Store) Objects() storage.ObjectStoreI     { return objectStore{s} }

type heroRepo struct{ s *Store }

func (r heroRepo) Create(_ context.Context, req *models.Hero) (*models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	r.s.nextHeroID++
	hero := *req
	hero.ID = r.s.nextHeroID
	r.s.heroes[hero.ID] = hero
	return &hero, nil
}

func (r heroRepo) Update(_ context.Context, req *models.Hero) (*models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	if _, ok := r.s.heroes[req.ID]; !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "hero %d", req.ID)
	}
	hero := *req
	r.s.heroes[hero.ID] = hero
	return &hero, nil
}

func (r heroRepo) GetByID(_ context.Context, id int64) (*models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	hero, ok := r.s.heroes[id]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "hero %d", id)
	}
	return &hero, nil
}

func (r heroRepo) Delete(_ context.Context, id int64) (*models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	hero, ok := r.s.heroes[id]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "hero %d", id)
	}
	delete(r.s.heroes, id)
	return &hero, nil
}

func (r heroRepo) FindByFilter(_ context.Context, req uifilter.FilterRequest) ([]models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	r.s.Filters = append(r.s.Filters, req)

	if _, err := (uifilter.Specification{Request: req, Descriptors: heroDescriptors}).Predicate(); err != nil {
		return nil, err
	}

	heroes := r.s.sortedHeroes()
	if limit, offset, ok := uifilter.Page(req); ok {
		if int(offset) >= len(heroes) {
			return []models.Hero{}, nil
		}
		heroes = heroes[offset:min(int(offset+limit), len(heroes))]
	}
	return heroes, nil
}

func (r heroRepo) CountByFilter(_ context.Context, req uifilter.FilterRequest) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}

	if _, err := (uifilter.Specification{Request: req, Descriptors: heroDescriptors}).Predicate(); err != nil {
		return 0, err
	}
	return int64(len(r.s.heroes)), nil
}

func (r heroRepo) FindTop(_ context.Context, count int) ([]models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	rated := []models.Hero{}
	for _, hero := range r.s.sortedHeroes() {
		if hero.Rating != nil {
			rated = append(rated, hero)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return *rated[i].Rating > *rated[j].Rating })

	return rated[:min(count, len(rated))], nil
}

func (r heroRepo) Search(_ context.Context, name string) ([]models.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	found := []models.Hero{}
	for _, hero := range r.s.sortedHeroes() {
		if strings.Contains(strings.ToLower(hero.Name), strings.ToLower(name)) {
			found = append(found, hero)
		}
	}
	return found, nil
}

func (r heroRepo) Reset(_ context.Context, heroes []models.Hero) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	r.s.Resets++
	r.s.heroes = map[int64]models.Hero{}
	r.s.nextHeroID = 0
	for _, hero := range heroes {
		r.s.nextHeroID++
		hero.ID = r.s.nextHeroID
		r.s.heroes[hero.ID] = hero
	}
	return nil
}

func (s *Store) sortedHeroes() []models.Hero {
	heroes := make([]models.Hero, 0, len(s.heroes))
	for _, hero := range s.heroes {
		heroes = append(heroes, hero)
	}
	sort.Slice(heroes, func(i, j int) bool { return heroes[i].ID < heroes[j].ID })
	return heroes
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, req *models.CreateUserRequest) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	r.s.nextUserID++
	user := models.User{
		ID:             r.s.nextUserID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PreferredTheme: req.PreferredTheme,
		Privileges:     slices.Clone(req.Privileges),
	}
	r.s.users[user.ID] = user
	return &user, nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	user, ok := r.s.users[id]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "user %d", id)
	}
	return &user, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	l, ok := r.s.logins[username]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "user %s", username)
	}
	user := r.s.users[l.userID]
	return &user, nil
}

func (r userRepo) UpdateTheme(_ context.Context, id int64, theme string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	user, ok := r.s.users[id]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "user %d", id)
	}
	user.PreferredTheme = theme
	r.s.users[id] = user
	return &user, nil
}

type loginInfoRepo struct{ s *Store }

func (r loginInfoRepo) Create(_ context.Context, req *models.LoginInfo) error {
	hash, err := helper.HashPasswordBcrypt(req.Password)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	r.s.logins[req.Username] = login{hash: hash, userID: req.UserID}
	return nil
}

func (r loginInfoRepo) Authenticate(_ context.Context, username, password string) (int64, error) {
	r.s.mu.Lock()
	l, ok := r.s.logins[username]
	err := r.s.Err
	r.s.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if !ok || !helper.CheckPasswordBcrypt(l.hash, password) {
		return 0, storage.ErrInvalidCredentials
	}
	return l.userID, nil
}

type avatarRepo struct{ s *Store }

func (r avatarRepo) GetByUserID(_ context.Context, userID int64) (*models.Avatar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	avatar, ok := r.s.avatars[userID]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "avatar for user %d", userID)
	}
	return &avatar, nil
}

func (r avatarRepo) Upsert(_ context.Context, req *models.Avatar) (*models.Avatar, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	avatar := *req
	if existing, ok := r.s.avatars[req.UserID]; ok {
		avatar.ID = existing.ID
	} else {
		avatar.ID = int64(len(r.s.avatars) + 1)
	}
	r.s.avatars[avatar.UserID] = avatar
	return &avatar, nil
}

type objectStore struct{ s *Store }

func (o objectStore) EnsureBucket(context.Context) error { return nil }

func (o objectStore) Put(_ context.Context, key, _ string, data []byte) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	o.s.objects[key] = slices.Clone(data)
	return nil
}

func (o objectStore) Get(_ context.Context, key string) ([]byte, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	data, ok := o.s.objects[key]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "object %s", key)
	}
	return slices.Clone(data), nil
}
