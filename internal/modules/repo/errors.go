package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"gorm.io/gorm"
)

// inChunk bounds IN (...) lists well below driver parameter limits.
const inChunk = 500

// storeErr maps gorm/driver errors onto the record layer's error kinds.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("record not found")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperr.Error{Kind: apperr.KindInvalidReference, Msg: "referenced record does not exist", Err: err}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &apperr.Error{Kind: apperr.KindConstraintViolation, Msg: "value violates a field constraint", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Internal("duplicate key", err)
	case isValueError(err):
		return &apperr.Error{Kind: apperr.KindConstraintViolation, Msg: "value rejected by the store", Err: err}
	default:
		return apperr.Unavailable(err)
	}
}

// isValueError reports driver errors caused by the written values rather than
// by the store: postgres data exceptions (SQLSTATE class 22) and sqlite
// constraint failures gorm leaves untranslated.
func isValueError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "22") || pgErr.Code == "23514"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintCheck ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintNotNull ||
			liteErr.Code == sqlite3.ErrMismatch
	}
	return false
}

func chunks[T any](in []T, size int) [][]T {
	var out [][]T
	for len(in) > size {
		out = append(out, in[:size])
		in = in[size:]
	}
	if len(in) > 0 {
		out = append(out, in)
	}
	return out
}
