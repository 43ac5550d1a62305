package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (email)=(a@b.edu) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table "events"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table "clubs"."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// tableNames maps tables to the nouns users see in messages.
var tableNames = map[string]string{
	"users":               "user",
	"clubs":               "club",
	"events":              "event",
	"event_registrations": "registration",
	"notifications":       "notification",
}

// MapDBError converts driver and context failures into AppErrors:
// no rows become NotFound, unique violations Conflict, FK violations ForeignKey,
// CHECK and NOT NULL violations Validation, and context errors Timeout or Canceled.
// Anything unrecognized is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, "This value already exists.")
		e.Field = uniqueField(pgErr)
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, ErrCodeForeignKey, foreignKeyMessage(pgErr))
	case pgerrcode.CheckViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.NotNullViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Required field is missing.")
		e.Field = pgErr.ColumnName
		return e
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique violation,
// either raw or already mapped to a Conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return strings.ReplaceAll(m[1], " ", "")
	}
	return fieldFromConstraint(pgErr.ConstraintName)
}

// fieldFromConstraint infers "email" from "users_email_key". Multi-column
// constraints are ambiguous and yield "".
func fieldFromConstraint(name string) string {
	for table := range tableNames {
		rest, ok := strings.CutPrefix(name, table+"_")
		if !ok {
			continue
		}
		for _, suffix := range []string{"_key", "_unique", "_idx"} {
			if field, ok := strings.CutSuffix(rest, suffix); ok && !strings.Contains(field, "_") {
				return field
			}
		}
	}
	return ""
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "Cannot delete because " + tableNoun(m[1]) + " records still reference it."
	}
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "The referenced " + tableNoun(m[1]) + " does not exist."
	}
	if pgErr.TableName != "" {
		return "Cannot complete operation because this " + tableNoun(pgErr.TableName) + " is in use."
	}
	return "Cannot complete operation because this item is in use."
}

func tableNoun(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if n, ok := tableNames[table]; ok {
		return n
	}
	return strings.ReplaceAll(table, "_", " ")
}
