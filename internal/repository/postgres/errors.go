package postgres

import (
	"database/sql"
	"errors"

	"cluster-ledger-backend/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// conflictReasons names the unique constraints in schema.sql.
var conflictReasons = map[string]string{
	"users_phone_number_key":    "phone number already registered",
	"loans_one_active_per_user": "user already has an active loan",
}

// wrapErr converts driver errors into domain errors.
func wrapErr(op, entity string, id int32, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		reason, ok := conflictReasons[pqErr.Constraint]
		if !ok {
			reason = "duplicate " + entity
		}
		return &domain.ConflictError{Reason: reason}
	}
	return domain.NewStoreError(op, err)
}

// requireAffected turns a zero-row update into a NotFoundError.
func requireAffected(op, entity string, id int32, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStoreError(op, err)
	}
	if n == 0 {
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}
