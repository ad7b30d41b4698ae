package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint. The string fallback covers sqlite in
// tests.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return constraint == "" || pgErr.ConstraintName == constraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return constraint == "" || pqErr.Constraint == constraint
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return constraint == "" || strings.Contains(msg, constraint) || sqliteColumnFor(constraint, msg)
	}
	return false
}

// sqliteColumnFor matches sqlite's table.column message form against the
// postgres constraint names used in production.
func sqliteColumnFor(constraint, msg string) bool {
	switch constraint {
	case "ux_sales_payfast_payment_id":
		return strings.Contains(msg, "sales.payfast_payment_id")
	case "ux_sales_reports_order_id":
		return strings.Contains(msg, "sales_reports.order_id")
	default:
		return false
	}
}
