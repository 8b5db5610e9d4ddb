// Package db — репозитории поверх database/sql (драйвер pgx).
// Все выборки тенант-скоупированы: каждый запрос фильтрует по school_id,
// чтобы исключить утечку данных между школами на уровне конструкции.
package db

import (
	"context"
	"database/sql"
)

// DBTX — общий контракт *sql.DB и *sql.Tx: одни и те же функции
// репозитория работают и вне, и внутри транзакции (rollover, смена ролей).
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// WithTx — единица работы: fn выполняется в одной транзакции,
// любая ошибка откатывает всё целиком.
func WithTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
