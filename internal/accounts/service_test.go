//go:build testutil
// +build testutil

package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/accounts"
	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/notify"
	"github.com/ecoleplus/server/internal/testutil/testdb"
)

func mustActor(t *testing.T, database *sql.DB, email string, roles ...models.PlatformRole) accounts.Actor {
	t.Helper()
	ctx := context.Background()
	id, err := db.CreateUser(ctx, database, email, email, "x")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range roles {
		if err := db.AddPlatformRole(ctx, database, id, r); err != nil {
			t.Fatal(err)
		}
	}
	return accounts.Actor{UserID: id, PlatformRoles: roles}
}

func TestCreate_RoleGrantsAndTempPassword(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	console := notify.NewConsole(zap.NewNop())
	svc := accounts.New(h.DB, zap.NewNop(), console)

	admin := mustActor(t, h.DB, "admin@plateforme.org", models.RoleAdmin)
	super := mustActor(t, h.DB, "super@plateforme.org", models.RoleSuperAdmin)
	sales := mustActor(t, h.DB, "sales@plateforme.org", models.RoleSales)

	schoolID, err := db.CreateSchool(ctx, h.DB, "lycee-jaures", "Lycée Jean Jaurès")
	if err != nil {
		t.Fatal(err)
	}

	// SALES не создаёт аккаунты
	_, err = svc.Create(ctx, sales, accounts.CreateInput{Email: "a@b.org", Name: "A"})
	if !apperr.IsForbidden(err) {
		t.Fatalf("SALES — Forbidden, получили %v", err)
	}

	// ADMIN не раздаёт платформенные роли
	_, err = svc.Create(ctx, admin, accounts.CreateInput{
		Email: "a@b.org", Name: "A",
		PlatformRoles: []models.PlatformRole{models.RoleAdmin},
	})
	if !apperr.IsForbidden(err) {
		t.Fatalf("выдача ADMIN админом — Forbidden, получили %v", err)
	}

	// SUPER_ADMIN создаёт менеджера школы с временным паролем
	id, err := svc.Create(ctx, super, accounts.CreateInput{
		Email: "manager@lycee.org", Name: "Mme Girard",
		TempPassword: "s3cret",
		Memberships:  []models.SchoolMembership{{SchoolID: schoolID, Role: models.RoleSchoolManager}},
	})
	if err != nil {
		t.Fatal(err)
	}
	roles, err := db.ListMembershipRoles(ctx, h.DB, schoolID, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0] != models.RoleSchoolManager {
		t.Fatalf("членство не записалось: %v", roles)
	}
}

func TestHierarchyGuards(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	svc := accounts.New(h.DB, zap.NewNop(), notify.NewConsole(zap.NewNop()))

	admin := mustActor(t, h.DB, "admin@plateforme.org", models.RoleAdmin)
	super := mustActor(t, h.DB, "super@plateforme.org", models.RoleSuperAdmin)
	admin2 := mustActor(t, h.DB, "admin2@plateforme.org", models.RoleAdmin)

	// SUPER_ADMIN-аккаунт неприкасаем даже для SUPER_ADMIN
	if err := svc.Delete(ctx, super, super.UserID); !apperr.IsValidation(err) {
		t.Fatalf("самоудаление — валидация, получили %v", err)
	}
	super2 := mustActor(t, h.DB, "super2@plateforme.org", models.RoleSuperAdmin)
	if err := svc.Delete(ctx, super, super2.UserID); !apperr.IsForbidden(err) {
		t.Fatalf("SUPER_ADMIN неприкасаем, получили %v", err)
	}

	// ADMIN не трогает другого ADMIN
	if err := svc.ReplaceRoles(ctx, admin, admin2.UserID, nil, nil); !apperr.IsForbidden(err) {
		t.Fatalf("ADMIN над ADMIN — Forbidden, получили %v", err)
	}

	// SUPER_ADMIN понижает ADMIN до SUPPORT
	if err := svc.ReplaceRoles(ctx, super, admin2.UserID,
		[]models.PlatformRole{models.RoleSupport}, nil); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetPlatformRoles(ctx, h.DB, admin2.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != models.RoleSupport {
		t.Fatalf("роли не заменились: %v", got)
	}

	// после понижения бывшего ADMIN может удалить обычный ADMIN
	if err := svc.Delete(ctx, admin, admin2.UserID); err != nil {
		t.Fatal(err)
	}
	if u, _ := db.GetUserByID(ctx, h.DB, admin2.UserID); u != nil {
		t.Fatal("аккаунт должен быть удалён")
	}
}
