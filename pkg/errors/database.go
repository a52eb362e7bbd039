package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE values the API maps to client-facing codes.
const (
	sqlStateNotNull          = "23502"
	sqlStateForeignKey       = "23503"
	sqlStateUnique           = "23505"
	sqlStateCheck            = "23514"
	sqlStateSerialization    = "40001"
	sqlStateDeadlock         = "40P01"
	sqlStateLockNotAvailable = "55P03"
)

// DatabaseFault is the server-side detail of a Postgres error, from either
// the pgx or the lib/pq driver.
type DatabaseFault struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

func DatabaseFaultOf(err error) (DatabaseFault, bool) {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return DatabaseFault{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return DatabaseFault{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}
	return DatabaseFault{}, false
}

// Classify returns err as a typed error. Typed errors other than internal
// pass through unchanged; a Postgres fault under an internal error is
// re-coded by its SQLSTATE so lock races and constraint hits reach the
// client as 409 or 400 instead of 500.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	typed := As(err)
	if typed != nil && typed.Code() != CodeInternal {
		return typed
	}
	if fault, ok := DatabaseFaultOf(err); ok {
		if mapped := fromFault(err, fault); mapped != nil {
			return mapped
		}
	}
	if typed != nil {
		return typed
	}
	return Wrap(CodeInternal, err, "unexpected error")
}

func fromFault(err error, fault DatabaseFault) *Error {
	switch fault.SQLState {
	case sqlStateUnique:
		return Wrap(CodeConflict, err, "record already exists")
	case sqlStateSerialization, sqlStateDeadlock, sqlStateLockNotAvailable:
		return Wrap(CodeConflict, err, "asset is being changed by another request, retry")
	case sqlStateForeignKey, sqlStateCheck, sqlStateNotNull:
		field := fault.Column
		if field == "" {
			field = fault.Constraint
		}
		mapped := Wrap(CodeValidation, err, "invalid value")
		if field != "" {
			mapped = mapped.WithDetails(map[string]string{field: "invalid value"})
		}
		return mapped
	}
	return nil
}

// LogFields flattens err for a structured log line: the message, the typed
// code, the unwrap chain, and any Postgres detail.
func LogFields(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	fields := map[string]any{"error": err.Error()}
	if typed := As(err); typed != nil {
		fields["error_code"] = typed.Code()
	}
	var chain []string
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	fields["error_chain"] = chain
	if fault, ok := DatabaseFaultOf(err); ok {
		fields["pg_code"] = fault.SQLState
		fields["pg_constraint"] = fault.Constraint
		fields["pg_table"] = fault.Table
		fields["pg_column"] = fault.Column
		fields["pg_detail"] = fault.Detail
		fields["pg_message"] = fault.Message
	}
	return fields
}
