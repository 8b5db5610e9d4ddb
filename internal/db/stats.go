package db

import (
	"context"

	"github.com/ecoleplus/server/internal/ctxutil"
)

// Агрегаты для фоновых gauge-метрик.

func CountActiveSchools(ctx context.Context, q DBTX) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := q.QueryRowContext(ctx, `
		SELECT count(*) FROM schools WHERE active_school_year_id IS NOT NULL
	`).Scan(&n)
	return n, err
}

func CountActiveEnrollments(ctx context.Context, q DBTX) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := q.QueryRowContext(ctx, `
		SELECT count(*)
		FROM enrollments e
		JOIN schools s ON s.active_school_year_id = e.school_year_id
		WHERE e.status = 'ACTIVE'
	`).Scan(&n)
	return n, err
}
