package db

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/models"
)

func GetUserByID(ctx context.Context, q DBTX, id int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, telegram_chat_id, is_active, created_at
		FROM users WHERE id = $1
	`, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.TelegramChatID, &u.IsActive, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func GetUserByEmail(ctx context.Context, q DBTX, email string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, telegram_chat_id, is_active, created_at
		FROM users WHERE email = $1
	`, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.TelegramChatID, &u.IsActive, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserWithRoles — пользователь вместе с платформенными ролями и всеми
// членствами; то, что транспортный слой кладёт в контекст запроса.
func GetUserWithRoles(ctx context.Context, q DBTX, id int64) (*models.User, error) {
	u, err := GetUserByID(ctx, q, id)
	if err != nil || u == nil {
		return u, err
	}
	if u.PlatformRoles, err = GetPlatformRoles(ctx, q, id); err != nil {
		return nil, err
	}
	if u.Memberships, err = ListMemberships(ctx, q, id); err != nil {
		return nil, err
	}
	return u, nil
}

func CreateUser(ctx context.Context, q DBTX, email, name, passwordHash string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id
	`, email, name, passwordHash).Scan(&id)
	return id, err
}

func DeleteUser(ctx context.Context, q DBTX, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func GetPlatformRoles(ctx context.Context, q DBTX, userID int64) ([]models.PlatformRole, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT role FROM user_platform_roles WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PlatformRole
	for rows.Next() {
		var r models.PlatformRole
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func ListMemberships(ctx context.Context, q DBTX, userID int64) ([]models.SchoolMembership, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT school_id, role FROM school_memberships WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.SchoolMembership
	for rows.Next() {
		var m models.SchoolMembership
		if err := rows.Scan(&m.SchoolID, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMembershipRoles — роли пользователя в конкретной школе.
func ListMembershipRoles(ctx context.Context, q DBTX, schoolID, userID int64) ([]models.SchoolRole, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT role FROM school_memberships
		WHERE school_id = $1 AND user_id = $2
	`, schoolID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.SchoolRole
	for rows.Next() {
		var r models.SchoolRole
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplacePlatformRoles — полная замена платформенных ролей; вызывается
// только внутри транзакции (см. accounts.Service.ReplaceRoles).
func ReplacePlatformRoles(ctx context.Context, tx *sql.Tx, userID int64, roles []models.PlatformRole) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_platform_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, r := range roles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_platform_roles (user_id, role) VALUES ($1, $2)
			ON CONFLICT (user_id, role) DO NOTHING
		`, userID, r); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceMemberships — полная замена членств пользователя в школах.
func ReplaceMemberships(ctx context.Context, tx *sql.Tx, userID int64, ms []models.SchoolMembership) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := tx.ExecContext(ctx, `DELETE FROM school_memberships WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, m := range ms {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO school_memberships (school_id, user_id, role) VALUES ($1, $2, $3)
			ON CONFLICT (school_id, user_id, role) DO NOTHING
		`, m.SchoolID, userID, m.Role); err != nil {
			return err
		}
	}
	return nil
}

func AddMembership(ctx context.Context, q DBTX, schoolID, userID int64, role models.SchoolRole) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		INSERT INTO school_memberships (school_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (school_id, user_id, role) DO NOTHING
	`, schoolID, userID, role)
	return err
}

func AddPlatformRole(ctx context.Context, q DBTX, userID int64, role models.PlatformRole) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		INSERT INTO user_platform_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`, userID, role)
	return err
}
