package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Dump flattens an error chain into a loggable map, pulling out driver
// detail when the chain contains a Postgres error.
func Dump(err error) map[string]any {
	if err == nil {
		return nil
	}

	out := map[string]any{"error": err.Error()}

	if coded, ok := As(err); ok {
		out["code"] = string(coded.Code)
		for k, v := range coded.Metadata {
			out[k] = v
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out["pg_code"] = pgErr.Code
		out["pg_detail"] = pgErr.Detail
		out["pg_constraint"] = pgErr.ConstraintName
		out["pg_table"] = pgErr.TableName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		out["pg_code"] = string(pqErr.Code)
		out["pg_detail"] = pqErr.Detail
		out["pg_constraint"] = pqErr.Constraint
		out["pg_table"] = pqErr.Table
	}

	return out
}
