package storage

import (
	"context"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/uifilter"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type StorageI interface {
	CloseDB()
	Ping(ctx context.Context) error
	Hero() HeroRepoI
	User() UserRepoI
	LoginInfo() LoginInfoRepoI
	Avatar() AvatarRepoI
}

type HeroRepoI interface {
	Create(ctx context.Context, req *models.Hero) (*models.Hero, error)
	Update(ctx context.Context, req *models.Hero) (*models.Hero, error)
	GetByID(ctx context.Context, id int64) (*models.Hero, error)
	Delete(ctx context.Context, id int64) (*models.Hero, error)
	FindByFilter(ctx context.Context, req uifilter.FilterRequest) ([]models.Hero, error)
	CountByFilter(ctx context.Context, req uifilter.FilterRequest) (int64, error)
	FindTop(ctx context.Context, count int) ([]models.Hero, error)
	Search(ctx context.Context, name string) ([]models.Hero, error)
	Reset(ctx context.Context, heroes []models.Hero) error
}

type UserRepoI interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateTheme(ctx context.Context, id int64, theme string) (*models.User, error)
}

type LoginInfoRepoI interface {
	Create(ctx context.Context, req *models.LoginInfo) error
	Authenticate(ctx context.Context, username, password string) (userID int64, err error)
}

type AvatarRepoI interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Avatar, error)
	Upsert(ctx context.Context, req *models.Avatar) (*models.Avatar, error)
}

// ObjectStoreI keeps binary blobs such as avatar images.
type ObjectStoreI interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
