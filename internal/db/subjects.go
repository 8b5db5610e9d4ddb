package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetSubjectByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.Subject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, code, name FROM subjects
		WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var s models.Subject
	if err := row.Scan(&s.ID, &s.SchoolID, &s.Code, &s.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func CreateSubject(ctx context.Context, q DBTX, schoolID int64, code, name string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO subjects (school_id, code, name) VALUES ($1, $2, $3) RETURNING id
	`, schoolID, code, name).Scan(&id)
	return id, err
}

// CountSubjectRefs — сколько назначений/программ/оверрайдов ссылаются на
// предмет. Удаление заблокировано, пока счётчик не нулевой.
func CountSubjectRefs(ctx context.Context, q DBTX, subjectID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM teacher_class_subjects WHERE subject_id = $1)
		     + (SELECT count(*) FROM curriculum_subjects WHERE subject_id = $1)
		     + (SELECT count(*) FROM class_subject_overrides WHERE subject_id = $1)
	`, subjectID).Scan(&n)
	return n, err
}

func DeleteSubject(ctx context.Context, q DBTX, schoolID, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1 AND school_id = $2`, id, schoolID)
	return err
}
