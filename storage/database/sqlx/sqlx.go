// Package sqlxrepos implements the core repositories on top of jmoiron/sqlx.
// Queries are written with `?` placeholders and rebound for the active driver.
package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/taskbell/core"
)

func sqlxGet(ctx context.Context, db core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return sqlx.GetContext(ctx, db, dest, q, args...)
}

func sqlxSelect(ctx context.Context, db core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, db, dest, q, args...)
}
