package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgresDetail is the subset of a server error worth logging. Both the pgx
// and lib/pq drivers are recognised.
type PostgresDetail struct {
	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// ErrorDump is the log-side view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	PostgresDetail
}

func Dump(err error) ErrorDump {
	var d ErrorDump
	if err == nil {
		return d
	}
	d.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if pg, ok := postgresDetail(err); ok {
		d.PostgresDetail = pg
	}
	return d
}

func postgresDetail(err error) (PostgresDetail, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return PostgresDetail{
			PGCode:       pgErr.Code,
			PGConstraint: pgErr.ConstraintName,
			PGTable:      pgErr.TableName,
			PGColumn:     pgErr.ColumnName,
			PGDetail:     pgErr.Detail,
			PGMessage:    pgErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return PostgresDetail{
			PGCode:       string(pqErr.Code),
			PGConstraint: pqErr.Constraint,
			PGTable:      pqErr.Table,
			PGColumn:     pqErr.Column,
			PGDetail:     pqErr.Detail,
			PGMessage:    pqErr.Message,
		}, true
	}
	return PostgresDetail{}, false
}

// Fields flattens the dump into log fields; empty Postgres values are dropped.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	for k, v := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_constraint": d.PGConstraint,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_detail":     d.PGDetail,
		"pg_message":    d.PGMessage,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
