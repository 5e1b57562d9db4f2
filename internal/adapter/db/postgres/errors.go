package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// constraintFields maps unique constraint names to the column they guard.
var constraintFields = map[string]string{
	"idx_users_email": "email",
	"users_pkey":      "id",
}

// sqliteUniquePrefix precedes "<table>.<column>" in SQLite unique violations
const sqliteUniquePrefix = "UNIQUE constraint failed: "

// duplicateKeyField reports whether err is a unique constraint violation and,
// when the driver identifies it, the name of the conflicting column.
func duplicateKeyField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return "", false
		}
		if field, ok := constraintFields[pgErr.ConstraintName]; ok {
			return field, true
		}
		return pgErr.ColumnName, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	// SQLite has no structured constraint name, only the message
	msg := err.Error()
	i := strings.Index(msg, sqliteUniquePrefix)
	if i < 0 {
		return "", false
	}
	rest := strings.Fields(msg[i+len(sqliteUniquePrefix):])
	if len(rest) == 0 {
		return "", true
	}
	column := strings.TrimRight(rest[0], ",")
	if j := strings.LastIndex(column, "."); j >= 0 {
		column = column[j+1:]
	}
	return column, true
}
