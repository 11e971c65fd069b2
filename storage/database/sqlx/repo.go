// Package sqlxrepos implements the core repositories on top of sqlx and squirrel, for postgres and sqlite.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// repo holds what every repository needs: the DB and a statement builder using its placeholders.
type repo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func newRepo(db *sqlx.DB) repo {
	var ph sq.PlaceholderFormat = sq.Dollar
	if db.DriverName() == "sqlite" {
		ph = sq.Question
	}
	return repo{db: db, sb: sq.StatementBuilder.PlaceholderFormat(ph)}
}

func (r repo) get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

func (r repo) sel(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func (r repo) exec(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// withTx runs fn in a transaction, committed when fn succeeds.
func (r repo) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505"
	case *sqlite.Error:
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || e.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			isConstraint(e, "UNIQUE")
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23503"
	case *sqlite.Error:
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY || isConstraint(e, "FOREIGN KEY")
	}
	return false
}

// isConstraint matches sqlite errors reported with the primary result code only.
func isConstraint(e *sqlite.Error, kind string) bool {
	return e.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(e.Error(), kind+" constraint failed")
}

// trapErr maps "no rows" to notFound and unique violations to a 403, and wraps anything else with msg.
func trapErr(err error, notFound error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Cause(err) == sql.ErrNoRows:
		return notFound
	case isUniqueViolation(err):
		return core.NewForbiddenError(fmt.Sprintf("%s: record already exists", msg))
	case isForeignKeyViolation(err):
		return core.NewNotFoundError(fmt.Sprintf("%s: related record not found", msg))
	}
	return errors.Wrap(err, msg)
}

// orderBy renders orderings for squirrel's OrderBy.
func orderBy(ords []core.DBOrdering) []string {
	clauses := make([]string, 0, len(ords))
	for _, ord := range ords {
		clauses = append(clauses, ord.String())
	}
	return clauses
}

// like returns the pattern matching values containing s, case-insensitively once both sides are lowered.
func like(s string) string { return "%" + s + "%" }
