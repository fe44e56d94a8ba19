package gormrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

const pgUniqueViolation = "23505"

// translateError maps driver errors onto the domain error kinds
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", entities.ErrNotFound, what)
	case isDuplicate(err):
		return fmt.Errorf("%w: %s", entities.ErrDuplicate, what)
	default:
		return fmt.Errorf("%w: %s: %v", entities.ErrPersistence, what, err)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, entities.ErrNotFound)
}
