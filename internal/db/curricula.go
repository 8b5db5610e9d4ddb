package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetCurriculumByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.Curriculum, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, academic_level_id, track_id, name FROM curricula
		WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var c models.Curriculum
	if err := row.Scan(&c.ID, &c.SchoolID, &c.AcademicLevelID, &c.TrackID, &c.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func CreateCurriculum(ctx context.Context, q DBTX, c models.Curriculum) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO curricula (school_id, academic_level_id, track_id, name)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, c.SchoolID, c.AcademicLevelID, c.TrackID, c.Name).Scan(&id)
	return id, err
}

func UpdateCurriculum(ctx context.Context, q DBTX, c models.Curriculum) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE curricula SET academic_level_id = $3, track_id = $4, name = $5
		WHERE id = $1 AND school_id = $2
	`, c.ID, c.SchoolID, c.AcademicLevelID, c.TrackID, c.Name)
	return err
}

// HasCurriculumSubject — входит ли предмет в дефолтный список программы.
func HasCurriculumSubject(ctx context.Context, q DBTX, curriculumID, subjectID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM curriculum_subjects
			WHERE curriculum_id = $1 AND subject_id = $2
		)
	`, curriculumID, subjectID).Scan(&ok)
	return ok, err
}

func UpsertCurriculumSubject(ctx context.Context, q DBTX, cs models.CurriculumSubject) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		INSERT INTO curriculum_subjects (curriculum_id, subject_id, is_mandatory, coefficient, weekly_hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (curriculum_id, subject_id)
		DO UPDATE SET is_mandatory = excluded.is_mandatory,
		              coefficient = excluded.coefficient,
		              weekly_hours = excluded.weekly_hours
	`, cs.CurriculumID, cs.SubjectID, cs.IsMandatory, cs.Coefficient, cs.WeeklyHours)
	return err
}

func ListCurriculumSubjects(ctx context.Context, q DBTX, curriculumID int64) ([]models.CurriculumSubject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, curriculum_id, subject_id, is_mandatory, coefficient, weekly_hours
		FROM curriculum_subjects WHERE curriculum_id = $1
		ORDER BY subject_id
	`, curriculumID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.CurriculumSubject
	for rows.Next() {
		var cs models.CurriculumSubject
		if err := rows.Scan(&cs.ID, &cs.CurriculumID, &cs.SubjectID, &cs.IsMandatory, &cs.Coefficient, &cs.WeeklyHours); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
