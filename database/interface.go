package database

import (
	"context"
	"database/sql"
)

// Handler sql.DB、sql.Conn、sql.Tx 都满足它
type Handler interface {
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}
