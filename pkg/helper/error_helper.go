package helper

import (
	"net/http"

	"heroes/heroes_go_service/pkg/uifilter"
	"heroes/heroes_go_service/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// HTTPStatus maps a storage or filter error onto a response status and a message that is
// safe to show the client. Unrecognised errors become 500 with a generic message.
func HTTPStatus(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, uifilter.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			// unique violation
			return http.StatusConflict, "already exists"
		case "23503":
			// foreign key violation
			return http.StatusConflict, "referenced record does not exist"
		case "23514", "23502", "22001", "22003", "22P02":
			// check, not null, too long, out of range, bad text representation
			return http.StatusBadRequest, pgErr.Message
		case "40001", "40P01":
			// serialization failure, deadlock
			return http.StatusServiceUnavailable, "please retry"
		case "08006", "08001", "57P01":
			// connection failure, admin shutdown
			return http.StatusServiceUnavailable, "database unavailable"
		}
	}

	return http.StatusInternalServerError, "internal error"
}
