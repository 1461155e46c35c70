package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorDump is the log-only view of an error. It never reaches clients.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	// DBKind classifies constraint failures. gorm translates driver errors
	// into sentinels, so this is often the only database signal left.
	DBKind string `json:"db_kind,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

var dbKinds = []struct {
	sentinel error
	kind     string
}{
	{gorm.ErrDuplicatedKey, "unique_violation"},
	{gorm.ErrForeignKeyViolated, "foreign_key_violation"},
	{gorm.ErrCheckConstraintViolated, "check_violation"},
	{gorm.ErrRecordNotFound, "record_not_found"},
}

var pgKinds = map[string]string{
	"23505": "unique_violation",
	"23503": "foreign_key_violation",
	"23514": "check_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock_detected",
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	for _, k := range dbKinds {
		if errors.Is(err, k.sentinel) {
			d.DBKind = k.kind
			break
		}
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
	} else {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			d.PGCode = string(pqErr.Code)
			d.PGConstraint = pqErr.Constraint
			d.PGTable = pqErr.Table
			d.PGColumn = pqErr.Column
			d.PGDetail = pqErr.Detail
			d.PGMessage = pqErr.Message
		}
	}

	if d.DBKind == "" && d.PGCode != "" {
		d.DBKind = pgKinds[d.PGCode]
	}
	return d
}
