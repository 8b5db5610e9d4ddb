package models

// PlatformRole — роль уровня платформы, вне какого-либо тенанта.
type PlatformRole string

const (
	RoleSuperAdmin PlatformRole = "SUPER_ADMIN"
	RoleAdmin      PlatformRole = "ADMIN"
	RoleSales      PlatformRole = "SALES"
	RoleSupport    PlatformRole = "SUPPORT"
)

// PlatformRolePriority — от старшей к младшей; используется при выборе
// «основной» роли для отображения.
var PlatformRolePriority = []PlatformRole{
	RoleSuperAdmin, RoleAdmin, RoleSales, RoleSupport,
}

func (r PlatformRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleSales, RoleSupport:
		return true
	}
	return false
}

// SchoolRole — роль в рамках одной школы (членства).
type SchoolRole string

const (
	RoleSchoolAdmin      SchoolRole = "SCHOOL_ADMIN"
	RoleSchoolManager    SchoolRole = "SCHOOL_MANAGER"
	RoleSupervisor       SchoolRole = "SUPERVISOR"
	RoleSchoolAccountant SchoolRole = "SCHOOL_ACCOUNTANT"
	RoleTeacher          SchoolRole = "TEACHER"
	RoleParent           SchoolRole = "PARENT"
	RoleStudent          SchoolRole = "STUDENT"
)

var SchoolRolePriority = []SchoolRole{
	RoleSchoolAdmin, RoleSchoolManager, RoleSupervisor,
	RoleSchoolAccountant, RoleTeacher, RoleParent, RoleStudent,
}

func (r SchoolRole) Valid() bool {
	switch r {
	case RoleSchoolAdmin, RoleSchoolManager, RoleSupervisor,
		RoleSchoolAccountant, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}
