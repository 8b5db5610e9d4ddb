package models

import "time"

type User struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	PasswordHash   string    `db:"password_hash"`
	TelegramChatID *int64    `db:"telegram_chat_id"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`

	// заполняются отдельными выборками, не колонки users
	PlatformRoles []PlatformRole
	Memberships   []SchoolMembership
}

// SchoolMembership — пара (школа, роль); у пользователя может быть
// несколько ролей в одной школе и членства в разных школах.
type SchoolMembership struct {
	SchoolID int64      `db:"school_id"`
	Role     SchoolRole `db:"role"`
}

// RolesInSchool — эффективные роли пользователя в данном тенанте.
func (u *User) RolesInSchool(schoolID int64) []SchoolRole {
	var out []SchoolRole
	for _, m := range u.Memberships {
		if m.SchoolID == schoolID {
			out = append(out, m.Role)
		}
	}
	return out
}
