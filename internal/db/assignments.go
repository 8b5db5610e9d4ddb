package db

import (
	"context"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

// InsertAssignmentSkipDup — вставка назначения с пропуском дубликата по
// уникальному ключу (year, teacher, class, subject). Возвращает true,
// если строка реально вставлена.
func InsertAssignmentSkipDup(ctx context.Context, q DBTX, a models.TeacherClassSubject) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		INSERT INTO teacher_class_subjects (school_year_id, teacher_user_id, class_id, subject_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (school_year_id, teacher_user_id, class_id, subject_id) DO NOTHING
	`, a.SchoolYearID, a.TeacherUserID, a.ClassID, a.SubjectID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func ListAssignmentsByYear(ctx context.Context, q DBTX, yearID int64) ([]models.TeacherClassSubject, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, school_year_id, teacher_user_id, class_id, subject_id
		FROM teacher_class_subjects WHERE school_year_id = $1
		ORDER BY id
	`, yearID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.TeacherClassSubject
	for rows.Next() {
		var a models.TeacherClassSubject
		if err := rows.Scan(&a.ID, &a.SchoolYearID, &a.TeacherUserID, &a.ClassID, &a.SubjectID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TeacherAssignedToClass — есть ли у учителя хотя бы одно назначение на
// (класс, год) независимо от предмета.
func TeacherAssignedToClass(ctx context.Context, q DBTX, teacherID, classID, yearID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM teacher_class_subjects
			WHERE teacher_user_id = $1 AND class_id = $2 AND school_year_id = $3
		)
	`, teacherID, classID, yearID).Scan(&ok)
	return ok, err
}

func DeleteAssignment(ctx context.Context, q DBTX, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `DELETE FROM teacher_class_subjects WHERE id = $1`, id)
	return err
}
