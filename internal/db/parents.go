package db

import (
	"context"

	"github.com/ecoleplus/server/internal/ctxutil"
)

// ParentContact — получатель уведомления о событии ученика.
type ParentContact struct {
	UserID         int64
	Name           string
	Email          string
	TelegramChatID *int64
}

func LinkParentStudent(ctx context.Context, q DBTX, parentID, studentID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		INSERT INTO parents_students (parent_id, student_id) VALUES ($1, $2)
		ON CONFLICT (parent_id, student_id) DO NOTHING
	`, parentID, studentID)
	return err
}

// ParentLinked — связан ли родитель с учеником (гейт чтения журнала).
func ParentLinked(ctx context.Context, q DBTX, parentID, studentID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM parents_students WHERE parent_id = $1 AND student_id = $2
		)
	`, parentID, studentID).Scan(&ok)
	return ok, err
}

// ListParentsForStudent — контакты всех родителей ученика, у которых есть
// e-mail; рассылка событий идёт по этому списку.
func ListParentsForStudent(ctx context.Context, q DBTX, studentID int64) ([]ParentContact, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.telegram_chat_id
		FROM users u
		JOIN parents_students ps ON ps.parent_id = u.id
		WHERE ps.student_id = $1 AND u.is_active = TRUE AND u.email <> ''
		ORDER BY u.name
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ParentContact
	for rows.Next() {
		var c ParentContact
		if err := rows.Scan(&c.UserID, &c.Name, &c.Email, &c.TelegramChatID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
