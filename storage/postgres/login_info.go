package postgres

import (
	"context"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/helper"
	psqlpool "heroes/heroes_go_service/pool"
	"heroes/heroes_go_service/storage"

	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

type loginInfoRepo struct {
	db *psqlpool.Pool
}

func NewLoginInfoRepo(db *psqlpool.Pool) storage.LoginInfoRepoI {
	return &loginInfoRepo{
		db: db,
	}
}

func (l *loginInfoRepo) Create(ctx context.Context, req *models.LoginInfo) error {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "login_info.Create")
	defer dbSpan.Finish()

	if req.Password == "" {
		return errors.New("password is required")
	}

	hash, err := helper.HashPasswordBcrypt(req.Password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	query := `
		INSERT INTO login_info (username, password, user_id) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, user_id = EXCLUDED.user_id`

	if _, err = l.db.Exec(ctx, query, req.Username, hash, req.UserID); err != nil {
		return errors.Wrap(err, "insert login_info")
	}

	return nil
}

func (l *loginInfoRepo) Authenticate(ctx context.Context, username, password string) (int64, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "login_info.Authenticate")
	defer dbSpan.Finish()

	var (
		userID int64
		hash   string
	)

	err := l.db.QueryRow(ctx, `SELECT user_id, password FROM login_info WHERE username = $1`, username).Scan(&userID, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, storage.ErrInvalidCredentials
	}
	if err != nil {
		return 0, errors.Wrap(err, "select login_info")
	}

	if !helper.CheckPasswordBcrypt(hash, password) {
		return 0, storage.ErrInvalidCredentials
	}

	return userID, nil
}
