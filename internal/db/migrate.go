package db

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/ecoleplus/server/internal/db/migrations"
)

// Migrate накатывает embedded-миграции goose.
func Migrate(database *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(database, ".")
}
