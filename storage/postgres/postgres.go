package postgres

import (
	"context"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/migrations"
	"heroes/heroes_go_service/pkg/logger"
	psqlpool "heroes/heroes_go_service/pool"
	"heroes/heroes_go_service/storage"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

var sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct {
	db        *psqlpool.Pool
	log       logger.LoggerI
	cfg       config.Config
	hero      storage.HeroRepoI
	user      storage.UserRepoI
	loginInfo storage.LoginInfoRepoI
	avatar    storage.AvatarRepoI
}

func NewPostgres(ctx context.Context, cfg config.Config, log logger.LoggerI) (storage.StorageI, error) {
	if cfg.MigrateOnStart {
		if err := Migrate(cfg, log); err != nil {
			return nil, err
		}
	}

	pool, err := psqlpool.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Repos never change after construction, the store is shared by handlers.
	return &Store{
		db:        pool,
		log:       log,
		cfg:       cfg,
		hero:      NewHeroRepo(pool, cfg.DefaultSortField),
		user:      NewUserRepo(pool),
		loginInfo: NewLoginInfoRepo(pool),
		avatar:    NewAvatarRepo(pool),
	}, nil
}

// Migrate applies every pending migration embedded in the binary.
func Migrate(cfg config.Config, log logger.LoggerI) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, "iofs.New")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.PostgresURL())
	if err != nil {
		return errors.Wrap(err, "migrate.NewWithSourceInstance")
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}

	version, dirty, _ := m.Version()
	log.Info("migrations applied", logger.Any("version", version), logger.Any("dirty", dirty))

	return nil
}

func (s *Store) CloseDB() {
	s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Hero() storage.HeroRepoI {
	return s.hero
}

func (s *Store) User() storage.UserRepoI {
	return s.user
}

func (s *Store) LoginInfo() storage.LoginInfoRepoI {
	return s.loginInfo
}

func (s *Store) Avatar() storage.AvatarRepoI {
	return s.avatar
}
