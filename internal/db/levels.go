package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetAcademicLevelByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.AcademicLevel, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, code, label FROM academic_levels
		WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var l models.AcademicLevel
	if err := row.Scan(&l.ID, &l.SchoolID, &l.Code, &l.Label); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func CreateAcademicLevel(ctx context.Context, q DBTX, schoolID int64, code, label string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO academic_levels (school_id, code, label) VALUES ($1, $2, $3) RETURNING id
	`, schoolID, code, label).Scan(&id)
	return id, err
}

func GetTrackByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.Track, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, code, label FROM tracks
		WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var t models.Track
	if err := row.Scan(&t.ID, &t.SchoolID, &t.Code, &t.Label); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func CreateTrack(ctx context.Context, q DBTX, schoolID int64, code, label string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO tracks (school_id, code, label) VALUES ($1, $2, $3) RETURNING id
	`, schoolID, code, label).Scan(&id)
	return id, err
}
