// Package pgaudit appends one row per changed cell to a Postgres
// commit-history table via jackc/pgx/v5's pooled connection, giving the
// workbook an append-only audit log of every recomputation.
package pgaudit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"gridcalc/value"
	"gridcalc/workbook"
)

// Schema is the table pgaudit appends to. Callers run it once against a
// fresh database before wiring a Logger.
const Schema = `
CREATE TABLE IF NOT EXISTS cell_commits (
	id           BIGSERIAL PRIMARY KEY,
	sheet        TEXT NOT NULL,
	addr         TEXT NOT NULL,
	value_kind   TEXT NOT NULL,
	display      TEXT NOT NULL,
	observed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Logger is a workbook.Callback backed by a pgxpool.Pool. It never
// blocks the recomputation that triggered it on a failed insert: a
// write error is logged by the caller-supplied errFn and otherwise
// swallowed, matching spec.md §6's "a callback must not affect the
// commit that triggered it".
type Logger struct {
	pool  *pgxpool.Pool
	errFn func(error)
}

// Open connects to dsn and wires a Logger as w's notification callback.
// errFn receives any insert failure; pass nil to discard errors.
func Open(ctx context.Context, dsn string, w *workbook.Workbook, errFn func(error)) (*Logger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgaudit: connect: %w", err)
	}
	if errFn == nil {
		errFn = func(error) {}
	}
	l := &Logger{pool: pool, errFn: errFn}
	w.RegisterCallback(l.onChanged)
	return l, nil
}

// Close releases the pool.
func (l *Logger) Close() {
	l.pool.Close()
}

func (l *Logger) onChanged(w *workbook.Workbook, changed []workbook.ChangedCell) {
	ctx := context.Background()
	for _, c := range changed {
		v, err := w.GetCellValue(c.Sheet, c.Addr)
		if err != nil {
			continue
		}
		kind, display := classify(v)
		_, err = l.pool.Exec(ctx,
			`INSERT INTO cell_commits (sheet, addr, value_kind, display) VALUES ($1, $2, $3, $4)`,
			c.Sheet, c.Addr, kind, display)
		if err != nil {
			l.errFn(fmt.Errorf("pgaudit: insert %s!%s: %w", c.Sheet, c.Addr, err))
		}
	}
}

func classify(v value.Value) (kind, display string) {
	switch tv := v.(type) {
	case value.EmptyValue:
		return "empty", ""
	case value.NumberValue:
		return "number", tv.CanonicalString()
	case value.StringValue:
		return "string", tv.Value
	case value.BoolValue:
		if tv.Value {
			return "bool", "TRUE"
		}
		return "bool", "FALSE"
	case value.ErrorValue:
		return "error", tv.Kind_.Spelling()
	default:
		return "unknown", ""
	}
}
