package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medisched/scheduler-api/pkg/errors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) *BaseRepository {
	return &BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

const foreignKeyViolation = "23503"

// mapLookupErr translates driver errors on reads into the repository
// error taxonomy.
func mapLookupErr(err error, resource string) error {
	if err == sql.ErrNoRows {
		return errors.NotFound(resource, nil)
	}
	return errors.Internal(err)
}

// mapWriteErr translates driver errors on writes. A foreign key
// violation means a referenced entity is absent, which the contract
// reports as NotFound.
func mapWriteErr(err error, resource string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
		return errors.NotFound(resource+" reference", pqErr)
	}
	return errors.Internal(err)
}

func sqlAnd(column string, pos int) string {
	return fmt.Sprintf(" AND %s = $%d", column, pos)
}
