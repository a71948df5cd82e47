package postgres

import (
	"fmt"

	"heroes/heroes_go_service/storage"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// wrapNotFound maps pgx.ErrNoRows onto storage.ErrNotFound, keeping both in the chain.
func wrapNotFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrNotFound, err)
	}

	return errors.Wrap(err, op)
}
