package postgres

import (
	"context"
	"encoding/json"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	psqlpool "heroes/heroes_go_service/pool"
	"heroes/heroes_go_service/storage"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

const userSelect = `
	SELECT
		u.user_id,
		u.first_name,
		u.last_name,
		u.preferred_theme,
		COALESCE(
			jsonb_agg(p.privilege ORDER BY p.privilege) FILTER (WHERE p.privilege IS NOT NULL),
			'[]'::jsonb
		)
	FROM user_info u
	LEFT JOIN privilege p ON p.user_id = u.user_id
`

type userRepo struct {
	db *psqlpool.Pool
}

func NewUserRepo(db *psqlpool.Pool) storage.UserRepoI {
	return &userRepo{
		db: db,
	}
}

func (u *userRepo) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "user.Create")
	defer dbSpan.Finish()

	theme := req.PreferredTheme
	if theme == "" {
		theme = config.DefaultTheme
	}

	var userID int64

	err := u.db.InTx(ctx, func(tx pgx.Tx) error {
		query := `INSERT INTO user_info (first_name, last_name, preferred_theme) VALUES ($1, $2, $3) RETURNING user_id`

		if err := tx.QueryRow(ctx, query, req.FirstName, req.LastName, theme).Scan(&userID); err != nil {
			return errors.Wrap(err, "insert user_info")
		}

		for _, privilege := range req.Privileges {
			_, err := tx.Exec(ctx,
				`INSERT INTO privilege (user_id, privilege) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, privilege,
			)
			if err != nil {
				return errors.Wrapf(err, "insert privilege %s", privilege)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.GetByID(ctx, userID)
}

func (u *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "user.GetByID")
	defer dbSpan.Finish()

	query := userSelect + ` WHERE u.user_id = $1 GROUP BY u.user_id`

	user, err := scanUser(u.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "get user")
	}

	return user, nil
}

func (u *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "user.GetByUsername")
	defer dbSpan.Finish()

	query := userSelect + `
		JOIN login_info l ON l.user_id = u.user_id
		WHERE l.username = $1
		GROUP BY u.user_id`

	user, err := scanUser(u.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, wrapNotFound(err, "get user by username")
	}

	return user, nil
}

func (u *userRepo) UpdateTheme(ctx context.Context, id int64, theme string) (*models.User, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "user.UpdateTheme")
	defer dbSpan.Finish()

	tag, err := u.db.Exec(ctx, `UPDATE user_info SET preferred_theme = $2 WHERE user_id = $1`, id, theme)
	if err != nil {
		return nil, errors.Wrap(err, "update theme")
	}

	if tag.RowsAffected() == 0 {
		return nil, errors.Wrapf(storage.ErrNotFound, "user %d", id)
	}

	return u.GetByID(ctx, id)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user       models.User
		privileges pgtype.JSONB
	)

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.PreferredTheme,
		&privileges,
	)
	if err != nil {
		return nil, err
	}

	user.Privileges = []string{}
	if privileges.Status == pgtype.Present {
		if err := json.Unmarshal(privileges.Bytes, &user.Privileges); err != nil {
			return nil, errors.Wrap(err, "unmarshal privileges")
		}
	}

	return &user, nil
}
