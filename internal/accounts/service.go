// Package accounts — управление аккаунтами с защитами иерархии:
// SUPER_ADMIN-аккаунт неприкасаем, ADMIN-аккаунты трогает только
// SUPER_ADMIN, самоудаление запрещено. Замена ролей — одна транзакция.
package accounts

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/notify"
	"github.com/ecoleplus/server/internal/roles"
)

type Service struct {
	DB       *sql.DB
	Log      *zap.Logger
	Notifier notify.Notifier
}

func New(database *sql.DB, log *zap.Logger, notifier notify.Notifier) *Service {
	return &Service{DB: database, Log: log, Notifier: notifier}
}

// Actor — вызывающий: id и платформенные роли (школьные роли на
// платформенные защиты не влияют).
type Actor struct {
	UserID        int64
	PlatformRoles []models.PlatformRole
}

type CreateInput struct {
	Email        string
	Name         string
	PasswordHash string
	TempPassword string // рассылается письмом, не хранится

	PlatformRoles []models.PlatformRole
	Memberships   []models.SchoolMembership
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (int64, error) {
	if in.Email == "" || in.Name == "" {
		return 0, apperr.Validationf("email and name are required")
	}
	for _, r := range in.PlatformRoles {
		if !r.Valid() {
			return 0, apperr.Validationf("unknown platform role %q", r)
		}
	}
	for _, m := range in.Memberships {
		if !m.Role.Valid() {
			return 0, apperr.Validationf("unknown school role %q", m.Role)
		}
	}

	if !roles.CanManageAccounts(actor.PlatformRoles) {
		return 0, apperr.Forbiddenf("not allowed to create accounts")
	}
	if roles.GrantsPlatformRole(in.PlatformRoles) && !roles.CanManageAdmins(actor.PlatformRoles) {
		return 0, apperr.Forbiddenf("only SUPER_ADMIN may grant platform roles")
	}

	var id int64
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		id, err = db.CreateUser(ctx, tx, in.Email, in.Name, in.PasswordHash)
		if err != nil {
			return err
		}
		if err := db.ReplacePlatformRoles(ctx, tx, id, in.PlatformRoles); err != nil {
			return err
		}
		return db.ReplaceMemberships(ctx, tx, id, in.Memberships)
	})
	if err != nil {
		return 0, err
	}

	if in.TempPassword != "" {
		s.Notifier.SendTemporaryPassword(ctx, in.Email, in.Name, in.TempPassword)
	}
	return id, nil
}

// ReplaceRoles — полная замена платформенных ролей и членств одной
// транзакцией; частичное применение — баг, а не деградация.
func (s *Service) ReplaceRoles(ctx context.Context, actor Actor, targetID int64,
	platform []models.PlatformRole, memberships []models.SchoolMembership) error {

	for _, r := range platform {
		if !r.Valid() {
			return apperr.Validationf("unknown platform role %q", r)
		}
	}
	for _, m := range memberships {
		if !m.Role.Valid() {
			return apperr.Validationf("unknown school role %q", m.Role)
		}
	}

	if err := s.guardMutation(ctx, actor, targetID); err != nil {
		return err
	}
	if roles.GrantsPlatformRole(platform) && !roles.CanManageAdmins(actor.PlatformRoles) {
		return apperr.Forbiddenf("only SUPER_ADMIN may grant platform roles")
	}

	return db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := db.ReplacePlatformRoles(ctx, tx, targetID, platform); err != nil {
			return err
		}
		return db.ReplaceMemberships(ctx, tx, targetID, memberships)
	})
}

func (s *Service) Delete(ctx context.Context, actor Actor, targetID int64) error {
	if actor.UserID == targetID {
		return apperr.Validationf("cannot delete your own account")
	}
	if err := s.guardMutation(ctx, actor, targetID); err != nil {
		return err
	}
	return db.DeleteUser(ctx, s.DB, targetID)
}

// guardMutation — защита целевого аккаунта. Роли цели подгружаются здесь,
// сами предикаты (roles.*) остаются чистыми.
func (s *Service) guardMutation(ctx context.Context, actor Actor, targetID int64) error {
	target, err := db.GetUserByID(ctx, s.DB, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFoundf("user not found")
	}
	targetPlatform, err := db.GetPlatformRoles(ctx, s.DB, targetID)
	if err != nil {
		return err
	}

	switch {
	case roles.TargetIsSuperAdmin(targetPlatform):
		return apperr.Forbiddenf("SUPER_ADMIN account cannot be modified")
	case roles.TargetIsAdmin(targetPlatform) && !roles.CanManageAdmins(actor.PlatformRoles):
		return apperr.Forbiddenf("only SUPER_ADMIN may modify ADMIN accounts")
	case !roles.CanManageAccounts(actor.PlatformRoles):
		return apperr.Forbiddenf("not allowed to manage accounts")
	}
	return nil
}
