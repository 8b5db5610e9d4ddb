package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetClassByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, school_year_id, name, academic_level_id, track_id, curriculum_id
		FROM classes WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	return scanClass(row)
}

// GetClassByName — класс по имени в рамках (школа, учебный год); опора
// идемпотентности rollover.
func GetClassByName(ctx context.Context, q DBTX, schoolID, yearID int64, name string) (*models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, school_year_id, name, academic_level_id, track_id, curriculum_id
		FROM classes WHERE school_id = $1 AND school_year_id = $2 AND name = $3
	`, schoolID, yearID, name)
	return scanClass(row)
}

func ListClassesByYear(ctx context.Context, q DBTX, schoolID, yearID int64) ([]models.Class, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, school_id, school_year_id, name, academic_level_id, track_id, curriculum_id
		FROM classes WHERE school_id = $1 AND school_year_id = $2
		ORDER BY name
	`, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.SchoolYearID, &c.Name, &c.AcademicLevelID, &c.TrackID, &c.CurriculumID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func CreateClass(ctx context.Context, q DBTX, c models.Class) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO classes (school_id, school_year_id, name, academic_level_id, track_id, curriculum_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, c.SchoolID, c.SchoolYearID, c.Name, c.AcademicLevelID, c.TrackID, c.CurriculumID).Scan(&id)
	return id, err
}

// UpdateClassRefs — запись согласованной тройки (curriculum, level, track),
// рассчитанной academics.ResolveClassRefs.
func UpdateClassRefs(ctx context.Context, q DBTX, schoolID, classID int64, curriculumID, levelID, trackID *int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE classes
		SET curriculum_id = $3, academic_level_id = $4, track_id = $5
		WHERE id = $2 AND school_id = $1
	`, schoolID, classID, curriculumID, levelID, trackID)
	return err
}

func scanClass(row *sql.Row) (*models.Class, error) {
	var c models.Class
	if err := row.Scan(&c.ID, &c.SchoolID, &c.SchoolYearID, &c.Name, &c.AcademicLevelID, &c.TrackID, &c.CurriculumID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
