// Package sqlerr translates database driver errors into API errors.
//
// Postgres errors (pgconn.PgError) and SQLite errors (modernc sqlite.Error)
// are normalised into *Error, whose Code is driver independent, and then
// mapped to *errs.HTTPError by HandleError.
package sqlerr

import (
	"regexp"
	"strings"

	"modernc.org/sqlite"
)

// Code is a driver independent constraint category.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
)

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalised database error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// pgCodes maps Postgres SQLSTATE values to codes.
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
}

// MapCode maps a Postgres SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}
	return Other
}

func MapSeverity(severity string) Severity {
	switch s := Severity(strings.ToUpper(severity)); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// SQLite extended result codes for constraint failures.
const (
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// MapSQLiteCode maps a SQLite extended result code to a Code.
func MapSQLiteCode(code int) Code {
	switch code {
	case sqliteConstraintNotNull:
		return NotNullViolation
	case sqliteConstraintForeignKey:
		return ForeignKeyViolation
	case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
		return UniqueViolation
	case sqliteConstraintCheck:
		return CheckViolation
	default:
		return Other
	}
}

// "UNIQUE constraint failed: users.username"
var sqliteColumnRe = regexp.MustCompile(`constraint failed: (\w+)\.(\w+)`)

// ConvertSQLiteError normalises a modernc sqlite error. SQLite reports the
// offending table and column only in the message text.
func ConvertSQLiteError(src *sqlite.Error) *Error {
	out := &Error{
		Code:         MapSQLiteCode(src.Code()),
		Severity:     SeverityError,
		DatabaseCode: sqlite.ErrorCodeString[src.Code()],
		Message:      src.Error(),
		driverErr:    src,
	}

	if m := sqliteColumnRe.FindStringSubmatch(src.Error()); len(m) == 3 {
		out.TableName = m[1]
		out.ColumnName = m[2]
		if out.Code == UniqueViolation {
			out.ConstraintName = m[1] + "_" + m[2] + "_key"
		}
	}

	return out
}
