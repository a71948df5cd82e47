package postgres

import (
	"context"

	"heroes/heroes_go_service/models"
	psqlpool "heroes/heroes_go_service/pool"
	"heroes/heroes_go_service/storage"

	"github.com/opentracing/opentracing-go"
)

type avatarRepo struct {
	db *psqlpool.Pool
}

func NewAvatarRepo(db *psqlpool.Pool) storage.AvatarRepoI {
	return &avatarRepo{
		db: db,
	}
}

func (a *avatarRepo) GetByUserID(ctx context.Context, userID int64) (*models.Avatar, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "avatar.GetByUserID")
	defer dbSpan.Finish()

	var avatar models.Avatar

	err := a.db.QueryRow(ctx,
		`SELECT id, user_id, mime_type, object_key FROM avatar WHERE user_id = $1`,
		userID,
	).Scan(&avatar.ID, &avatar.UserID, &avatar.MimeType, &avatar.ObjectKey)
	if err != nil {
		return nil, wrapNotFound(err, "get avatar")
	}

	return &avatar, nil
}

func (a *avatarRepo) Upsert(ctx context.Context, req *models.Avatar) (*models.Avatar, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "avatar.Upsert")
	defer dbSpan.Finish()

	query := `
		INSERT INTO avatar (user_id, mime_type, object_key) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET mime_type = EXCLUDED.mime_type, object_key = EXCLUDED.object_key
		RETURNING id, user_id, mime_type, object_key`

	var avatar models.Avatar

	err := a.db.QueryRow(ctx, query, req.UserID, req.MimeType, req.ObjectKey).
		Scan(&avatar.ID, &avatar.UserID, &avatar.MimeType, &avatar.ObjectKey)
	if err != nil {
		return nil, wrapNotFound(err, "upsert avatar")
	}

	return &avatar, nil
}
