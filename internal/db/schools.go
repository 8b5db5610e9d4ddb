package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetSchoolBySlug(ctx context.Context, q DBTX, slug string) (*models.School, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, slug, name, active_school_year_id
		FROM schools WHERE slug = $1
	`, slug)
	var s models.School
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.ActiveSchoolYearID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func GetSchoolByID(ctx context.Context, q DBTX, id int64) (*models.School, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, slug, name, active_school_year_id
		FROM schools WHERE id = $1
	`, id)
	var s models.School
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.ActiveSchoolYearID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func CreateSchool(ctx context.Context, q DBTX, slug, name string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO schools (slug, name) VALUES ($1, $2) RETURNING id
	`, slug, name).Scan(&id)
	return id, err
}

// SetActiveSchoolYear назначает активный год; год обязан принадлежать школе.
func SetActiveSchoolYear(ctx context.Context, q DBTX, schoolID, yearID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		UPDATE schools SET active_school_year_id = $2
		WHERE id = $1
		  AND EXISTS (SELECT 1 FROM school_years y WHERE y.id = $2 AND y.school_id = $1)
	`, schoolID, yearID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
