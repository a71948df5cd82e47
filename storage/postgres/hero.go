package postgres

import (
	"context"
	"strings"

	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/uifilter"
	psqlpool "heroes/heroes_go_service/pool"
	"heroes/heroes_go_service/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

var (
	heroColumns     = []string{"id", "name", "alter_ego", "power", "rating", "power_date"}
	heroDescriptors = uifilter.DescriptorsFor(models.Hero{})
)

type heroRepo struct {
	db          *psqlpool.Pool
	defaultSort string
}

func NewHeroRepo(db *psqlpool.Pool, defaultSort string) storage.HeroRepoI {
	return &heroRepo{
		db:          db,
		defaultSort: defaultSort,
	}
}

func (h *heroRepo) Create(ctx context.Context, req *models.Hero) (*models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.Create")
	defer dbSpan.Finish()

	query, args, err := sb.Insert("hero").
		Columns("name", "alter_ego", "power", "rating", "power_date").
		Values(req.Name, req.AlterEgo, req.Power, req.Rating, req.PowerDate).
		Suffix("RETURNING " + strings.Join(heroColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build insert")
	}

	hero, err := scanHero(h.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, errors.Wrap(err, "insert hero")
	}

	return hero, nil
}

func (h *heroRepo) Update(ctx context.Context, req *models.Hero) (*models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.Update")
	defer dbSpan.Finish()

	query, args, err := sb.Update("hero").
		SetMap(map[string]any{
			"name":       req.Name,
			"alter_ego":  req.AlterEgo,
			"power":      req.Power,
			"rating":     req.Rating,
			"power_date": req.PowerDate,
		}).
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("RETURNING " + strings.Join(heroColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build update")
	}

	hero, err := scanHero(h.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, wrapNotFound(err, "update hero")
	}

	return hero, nil
}

func (h *heroRepo) GetByID(ctx context.Context, id int64) (*models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.GetByID")
	defer dbSpan.Finish()

	query := `SELECT ` + strings.Join(heroColumns, ", ") + ` FROM hero WHERE id = $1`

	hero, err := scanHero(h.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "get hero")
	}

	return hero, nil
}

func (h *heroRepo) Delete(ctx context.Context, id int64) (*models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.Delete")
	defer dbSpan.Finish()

	query := `DELETE FROM hero WHERE id = $1 RETURNING ` + strings.Join(heroColumns, ", ")

	hero, err := scanHero(h.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "delete hero")
	}

	return hero, nil
}

func (h *heroRepo) FindByFilter(ctx context.Context, req uifilter.FilterRequest) ([]models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.FindByFilter")
	defer dbSpan.Finish()

	q, err := uifilter.Select(sb.Select(heroColumns...).From("hero"), req, h.defaultSort, heroDescriptors)
	if err != nil {
		return nil, err
	}

	return h.list(ctx, q)
}

func (h *heroRepo) CountByFilter(ctx context.Context, req uifilter.FilterRequest) (int64, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.CountByFilter")
	defer dbSpan.Finish()

	q, err := uifilter.Count(sb.Select("COUNT(*)").From("hero"), req, heroDescriptors)
	if err != nil {
		return 0, err
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build count")
	}

	var count int64
	if err = h.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count heroes")
	}

	return count, nil
}

func (h *heroRepo) FindTop(ctx context.Context, count int) ([]models.Hero, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.FindTop")
	defer dbSpan.Finish()

	if count <= 0 {
		return []models.Hero{}, nil
	}

	q := sb.Select(heroColumns...).
		From("hero").
		Where("rating IS NOT NULL").
		OrderBy("rating DESC", "id ASC").
		Limit(uint64(count))

	return h.list(ctx, q)
}

func (h *heroRepo) Search(ctx context.Context, name string) ([]models.Hero, error) {
	req := uifilter.FilterRequest{
		Filters: map[string][]uifilter.FilterData{
			"name": {{Value: uifilter.String(name), MatchMode: uifilter.MatchContains}},
		},
	}

	return h.FindByFilter(ctx, req)
}

// Reset replaces every hero with heroes and restarts the id sequence.
func (h *heroRepo) Reset(ctx context.Context, heroes []models.Hero) error {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "hero.Reset")
	defer dbSpan.Finish()

	return h.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE hero RESTART IDENTITY`); err != nil {
			return errors.Wrap(err, "truncate hero")
		}

		if len(heroes) == 0 {
			return nil
		}

		insert := sb.Insert("hero").Columns("name", "alter_ego", "power", "rating", "power_date")
		for _, hero := range heroes {
			insert = insert.Values(hero.Name, hero.AlterEgo, hero.Power, hero.Rating, hero.PowerDate)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return errors.Wrap(err, "build insert")
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "insert heroes")
		}

		return nil
	})
}

func (h *heroRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.Hero, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select")
	}

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select heroes")
	}
	defer rows.Close()

	heroes := []models.Hero{}
	for rows.Next() {
		hero, err := scanHero(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan hero")
		}
		heroes = append(heroes, *hero)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}

	return heroes, nil
}

func scanHero(row pgx.Row) (*models.Hero, error) {
	var hero models.Hero

	err := row.Scan(
		&hero.ID,
		&hero.Name,
		&hero.AlterEgo,
		&hero.Power,
		&hero.Rating,
		&hero.PowerDate,
	)
	if err != nil {
		return nil, err
	}

	return &hero, nil
}
