package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

const lifeEventCols = `id, school_id, student_id, class_id, school_year_id, author_id,
	type, occurred_at, duration_minutes, justified, reason, comment, created_at`

func InsertLifeEvent(ctx context.Context, q DBTX, e models.StudentLifeEvent) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO student_life_events
			(school_id, student_id, class_id, school_year_id, author_id,
			 type, occurred_at, duration_minutes, justified, reason, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, e.SchoolID, e.StudentID, e.ClassID, e.SchoolYearID, e.AuthorID,
		e.Type, e.OccurredAt, e.DurationMinutes, e.Justified, e.Reason, e.Comment).Scan(&id)
	return id, err
}

func GetLifeEventByID(ctx context.Context, q DBTX, schoolID, id int64) (*models.StudentLifeEvent, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT `+lifeEventCols+`
		FROM student_life_events WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	var e models.StudentLifeEvent
	if err := scanLifeEvent(row.Scan, &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func UpdateLifeEvent(ctx context.Context, q DBTX, e models.StudentLifeEvent) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE student_life_events
		SET class_id = $3, school_year_id = $4, type = $5, occurred_at = $6,
		    duration_minutes = $7, justified = $8, reason = $9, comment = $10
		WHERE id = $1 AND school_id = $2
	`, e.ID, e.SchoolID, e.ClassID, e.SchoolYearID, e.Type, e.OccurredAt,
		e.DurationMinutes, e.Justified, e.Reason, e.Comment)
	return err
}

func DeleteLifeEvent(ctx context.Context, q DBTX, schoolID, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		DELETE FROM student_life_events WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	return err
}

func ListLifeEventsByStudent(ctx context.Context, q DBTX, schoolID, studentID int64) ([]models.StudentLifeEvent, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT `+lifeEventCols+`
		FROM student_life_events
		WHERE school_id = $1 AND student_id = $2
		ORDER BY occurred_at DESC
	`, schoolID, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectLifeEvents(rows)
}

// ListLifeEventsByYear — все события года (для экспорта журнала).
func ListLifeEventsByYear(ctx context.Context, q DBTX, schoolID, yearID int64) ([]models.StudentLifeEvent, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT `+lifeEventCols+`
		FROM student_life_events
		WHERE school_id = $1 AND school_year_id = $2
		ORDER BY class_id NULLS LAST, occurred_at
	`, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectLifeEvents(rows)
}

func collectLifeEvents(rows *sql.Rows) ([]models.StudentLifeEvent, error) {
	var out []models.StudentLifeEvent
	for rows.Next() {
		var e models.StudentLifeEvent
		if err := scanLifeEvent(rows.Scan, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanLifeEvent(scan func(dest ...any) error, e *models.StudentLifeEvent) error {
	return scan(&e.ID, &e.SchoolID, &e.StudentID, &e.ClassID, &e.SchoolYearID, &e.AuthorID,
		&e.Type, &e.OccurredAt, &e.DurationMinutes, &e.Justified, &e.Reason, &e.Comment, &e.CreatedAt)
}
