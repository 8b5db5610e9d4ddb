package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetSchoolYearByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.SchoolYear, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, label FROM school_years
		WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var y models.SchoolYear
	if err := row.Scan(&y.ID, &y.SchoolID, &y.Label); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &y, nil
}

func GetSchoolYearByLabel(ctx context.Context, q DBTX, schoolID int64, label string) (*models.SchoolYear, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, label FROM school_years
		WHERE school_id = $1 AND label = $2
	`, schoolID, label)
	var y models.SchoolYear
	if err := row.Scan(&y.ID, &y.SchoolID, &y.Label); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &y, nil
}

func CreateSchoolYear(ctx context.Context, q DBTX, schoolID int64, label string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO school_years (school_id, label) VALUES ($1, $2) RETURNING id
	`, schoolID, label).Scan(&id)
	return id, err
}

// GetOrCreateSchoolYearByLabel — label уникален в рамках школы, поэтому
// ON CONFLICT DO NOTHING + повторное чтение закрывают гонку создания.
func GetOrCreateSchoolYearByLabel(ctx context.Context, q DBTX, schoolID int64, label string) (*models.SchoolYear, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := q.ExecContext(ctx, `
		INSERT INTO school_years (school_id, label) VALUES ($1, $2)
		ON CONFLICT (school_id, label) DO NOTHING
	`, schoolID, label); err != nil {
		return nil, err
	}
	return GetSchoolYearByLabel(ctx, q, schoolID, label)
}
