package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetOverride(ctx context.Context, q DBTX, classID, subjectID int64) (*models.ClassSubjectOverride, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, class_id, subject_id, action, coefficient, weekly_hours
		FROM class_subject_overrides
		WHERE class_id = $1 AND subject_id = $2
	`, classID, subjectID)
	var o models.ClassSubjectOverride
	if err := row.Scan(&o.ID, &o.ClassID, &o.SubjectID, &o.Action, &o.Coefficient, &o.WeeklyHours); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func UpsertOverride(ctx context.Context, q DBTX, o models.ClassSubjectOverride) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		INSERT INTO class_subject_overrides (class_id, subject_id, action, coefficient, weekly_hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (class_id, subject_id)
		DO UPDATE SET action = excluded.action,
		              coefficient = excluded.coefficient,
		              weekly_hours = excluded.weekly_hours
	`, o.ClassID, o.SubjectID, o.Action, o.Coefficient, o.WeeklyHours)
	return err
}

func DeleteOverride(ctx context.Context, q DBTX, classID, subjectID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		DELETE FROM class_subject_overrides WHERE class_id = $1 AND subject_id = $2
	`, classID, subjectID)
	return err
}
