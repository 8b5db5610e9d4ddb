// Package tenant — разрешение тенанта по slug и сборка скоупа запроса.
// Скоуп — capability-объект: считается заново на каждый запрос (роли
// могут меняться между запросами) и передаётся по цепочке вызовов явно.
package tenant

import (
	"context"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/roles"
)

// Scope — тенант + эффективные роли вызывающего в нём.
type Scope struct {
	SchoolID int64
	Slug     string
	School   *models.School

	UserID        int64
	PlatformRoles []models.PlatformRole
	Roles         []models.SchoolRole // роли именно в этой школе
}

func (s *Scope) Has(r models.SchoolRole) bool {
	for _, x := range s.Roles {
		if x == r {
			return true
		}
	}
	return false
}

func (s *Scope) IsPower() bool {
	return roles.IsPowerRole(s.PlatformRoles, s.Roles)
}

// Resolve — slug → школа, затем эффективные роли вызывающего.
// Доступ: платформенный override (SUPER_ADMIN/ADMIN) либо хотя бы одно
// членство в этой школе; иначе Forbidden (fail closed).
func Resolve(ctx context.Context, q db.DBTX, slug string, user *models.User) (*Scope, error) {
	school, err := db.GetSchoolBySlug(ctx, q, slug)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, apperr.NotFoundf("school %q not found", slug)
	}

	effective := user.RolesInSchool(school.ID)

	if !roles.IsPlatformOverride(user.PlatformRoles) && len(effective) == 0 {
		return nil, apperr.Forbiddenf("user is not bound to a school")
	}

	return &Scope{
		SchoolID:      school.ID,
		Slug:          school.Slug,
		School:        school,
		UserID:        user.ID,
		PlatformRoles: user.PlatformRoles,
		Roles:         effective,
	}, nil
}
