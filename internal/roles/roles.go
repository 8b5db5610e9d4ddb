// Package roles — чистые предикаты иерархии ролей. Никакого I/O:
// роли целевого аккаунта подгружает вызывающий (accounts, tenant).
package roles

import "github.com/ecoleplus/server/internal/models"

// PrimaryRole — «основная» роль для отображения: первое совпадение по
// приоритету среди платформенных, затем среди школьных; иначе пусто.
func PrimaryRole(platform []models.PlatformRole, school []models.SchoolRole) string {
	for _, p := range models.PlatformRolePriority {
		for _, r := range platform {
			if r == p {
				return string(p)
			}
		}
	}
	for _, p := range models.SchoolRolePriority {
		for _, r := range school {
			if r == p {
				return string(p)
			}
		}
	}
	return ""
}

func hasPlatform(roles []models.PlatformRole, want models.PlatformRole) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func hasSchool(roles []models.SchoolRole, want models.SchoolRole) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// CanManageAdmins — создавать/менять/удалять аккаунты ADMIN может только SUPER_ADMIN.
func CanManageAdmins(platform []models.PlatformRole) bool {
	return hasPlatform(platform, models.RoleSuperAdmin)
}

// CanManageAccounts — управлять любыми аккаунтами: SUPER_ADMIN или ADMIN.
func CanManageAccounts(platform []models.PlatformRole) bool {
	return hasPlatform(platform, models.RoleSuperAdmin) || hasPlatform(platform, models.RoleAdmin)
}

// TargetIsSuperAdmin — жёсткий инвариант: такой аккаунт не модифицируется
// и не удаляется никем через этот путь.
func TargetIsSuperAdmin(targetPlatform []models.PlatformRole) bool {
	return hasPlatform(targetPlatform, models.RoleSuperAdmin)
}

// TargetIsAdmin — модификация/удаление требует SUPER_ADMIN у вызывающего.
func TargetIsAdmin(targetPlatform []models.PlatformRole) bool {
	return hasPlatform(targetPlatform, models.RoleAdmin)
}

// GrantsPlatformRole — выдаются ли в наборе роли ADMIN/SUPER_ADMIN
// (их раздача — прерогатива SUPER_ADMIN).
func GrantsPlatformRole(roles []models.PlatformRole) bool {
	return hasPlatform(roles, models.RoleAdmin) || hasPlatform(roles, models.RoleSuperAdmin)
}

// IsPowerRole — роль, обходящая узкие проверки (журнал ученика и т.п.):
// платформенные SUPER_ADMIN/ADMIN либо школьные ADMIN/MANAGER/SUPERVISOR.
func IsPowerRole(platform []models.PlatformRole, school []models.SchoolRole) bool {
	if hasPlatform(platform, models.RoleSuperAdmin) || hasPlatform(platform, models.RoleAdmin) {
		return true
	}
	return hasSchool(school, models.RoleSchoolAdmin) ||
		hasSchool(school, models.RoleSchoolManager) ||
		hasSchool(school, models.RoleSupervisor)
}

// IsPlatformOverride — платформенные роли с кросс-тенантным доступом.
func IsPlatformOverride(platform []models.PlatformRole) bool {
	return hasPlatform(platform, models.RoleSuperAdmin) || hasPlatform(platform, models.RoleAdmin)
}
