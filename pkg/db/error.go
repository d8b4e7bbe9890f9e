package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgCode(err) == pgUniqueViolation {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"),
		strings.Contains(msg, "Error 1062"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return true
	}
	return false
}

// IsForeignKeyErr reports whether err is a referential integrity violation,
// e.g. deleting a product that order items still point at.
func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if pgCode(err) == pgForeignKeyViolation {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "Error 1451"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return true
	}
	return false
}

func IsCheckViolationErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	if pgCode(err) == pgCheckViolation {
		return true
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		return pgErr.Code
	}
	return ""
}
