package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

// UpsertEnrollment — запись на год уникальна по (year, student): повторная
// запись того же ученика в том же году перезаписывает класс/статус.
func UpsertEnrollment(ctx context.Context, q DBTX, e models.Enrollment) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO enrollments (school_id, school_year_id, student_id, class_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (school_year_id, student_id)
		DO UPDATE SET class_id = excluded.class_id, status = excluded.status
		RETURNING id
	`, e.SchoolID, e.SchoolYearID, e.StudentID, e.ClassID, e.Status).Scan(&id)
	return id, err
}

// InsertEnrollmentSkipDup — вариант для rollover: существующая запись
// (year, student) не трогается. Возвращает true при реальной вставке.
func InsertEnrollmentSkipDup(ctx context.Context, q DBTX, e models.Enrollment) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		INSERT INTO enrollments (school_id, school_year_id, student_id, class_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (school_year_id, student_id) DO NOTHING
	`, e.SchoolID, e.SchoolYearID, e.StudentID, e.ClassID, e.Status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func GetEnrollment(ctx context.Context, q DBTX, yearID, studentID int64) (*models.Enrollment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, school_year_id, student_id, class_id, status, created_at
		FROM enrollments WHERE school_year_id = $1 AND student_id = $2
	`, yearID, studentID)
	return scanEnrollment(row)
}

// GetLatestEnrollment — последняя по времени создания запись ученика в
// рамках школы, любой статус.
func GetLatestEnrollment(ctx context.Context, q DBTX, schoolID, studentID int64) (*models.Enrollment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, school_id, school_year_id, student_id, class_id, status, created_at
		FROM enrollments WHERE school_id = $1 AND student_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, schoolID, studentID)
	return scanEnrollment(row)
}

func ListActiveEnrollmentsByYear(ctx context.Context, q DBTX, yearID int64) ([]models.Enrollment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, school_id, school_year_id, student_id, class_id, status, created_at
		FROM enrollments WHERE school_year_id = $1 AND status = 'ACTIVE'
		ORDER BY id
	`, yearID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.SchoolID, &e.SchoolYearID, &e.StudentID, &e.ClassID, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEnrollment(row *sql.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := row.Scan(&e.ID, &e.SchoolID, &e.SchoolYearID, &e.StudentID, &e.ClassID, &e.Status, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
