//go:build testutil
// +build testutil

package lifeevents_test

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/lifeevents"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/notify"
	"github.com/ecoleplus/server/internal/tenant"
	"github.com/ecoleplus/server/internal/testutil/testdb"
)

type world struct {
	schoolID, yearID, classID int64
	teacher, student, parent  int64
	supervisor                int64
}

// школа «lycee-jaures», активный год 2024-2025, класс 6A: учитель назначен
// на 6A, ученик зачислен в 6A, родитель привязан к ученику.
func mustSeedWorld(t *testing.T, database *sql.DB) world {
	t.Helper()
	ctx := context.Background()
	var w world
	var err error

	if w.schoolID, err = db.CreateSchool(ctx, database, "lycee-jaures", "Lycée Jean Jaurès"); err != nil {
		t.Fatal(err)
	}
	if w.yearID, err = db.CreateSchoolYear(ctx, database, w.schoolID, "2024-2025"); err != nil {
		t.Fatal(err)
	}
	if err = db.SetActiveSchoolYear(ctx, database, w.schoolID, w.yearID); err != nil {
		t.Fatal(err)
	}
	if w.classID, err = db.CreateClass(ctx, database, models.Class{
		SchoolID: w.schoolID, SchoolYearID: w.yearID, Name: "6A",
	}); err != nil {
		t.Fatal(err)
	}

	mkUser := func(email, name string, role models.SchoolRole) int64 {
		id, err := db.CreateUser(ctx, database, email, name, "x")
		if err != nil {
			t.Fatal(err)
		}
		if err := db.AddMembership(ctx, database, w.schoolID, id, role); err != nil {
			t.Fatal(err)
		}
		return id
	}
	w.teacher = mkUser("prof@example.org", "Mme Bernard", models.RoleTeacher)
	w.student = mkUser("paul@example.org", "Dupont Paul", models.RoleStudent)
	w.parent = mkUser("parent@example.org", "Dupont Marie", models.RoleParent)
	w.supervisor = mkUser("cpe@example.org", "M. Roche", models.RoleSupervisor)

	subj, err := db.CreateSubject(ctx, database, w.schoolID, "MATH", "Mathématiques")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = db.InsertAssignmentSkipDup(ctx, database, models.TeacherClassSubject{
		SchoolYearID: w.yearID, TeacherUserID: w.teacher, ClassID: w.classID, SubjectID: subj,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err = db.UpsertEnrollment(ctx, database, models.Enrollment{
		SchoolID: w.schoolID, SchoolYearID: w.yearID, StudentID: w.student,
		ClassID: w.classID, Status: models.EnrollmentActive,
	}); err != nil {
		t.Fatal(err)
	}
	if err = db.LinkParentStudent(ctx, database, w.parent, w.student); err != nil {
		t.Fatal(err)
	}
	return w
}

func mustScope(t *testing.T, database *sql.DB, userID int64) *tenant.Scope {
	t.Helper()
	ctx := context.Background()
	u, err := db.GetUserWithRoles(ctx, database, userID)
	if err != nil {
		t.Fatal(err)
	}
	scope, err := tenant.Resolve(ctx, database, "lycee-jaures", u)
	if err != nil {
		t.Fatal(err)
	}
	return scope
}

func TestCreate_TeacherStampsAndNotifiesParent(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	w := mustSeedWorld(t, h.DB)

	console := notify.NewConsole(zap.NewNop())
	svc := lifeevents.New(h.DB, zap.NewNop(), console)

	scope := mustScope(t, h.DB, w.teacher)
	e, err := svc.Create(ctx, scope, lifeevents.CreateInput{
		StudentID: w.student,
		Type:      models.LifeEventRetard,
		Reason:    "Retard de 10 minutes",
	})
	if err != nil {
		t.Fatal(err)
	}

	// класс и год проставлены из текущей записи ученика
	if e.ClassID == nil || *e.ClassID != w.classID {
		t.Fatalf("класс должен проставиться из записи: %#v", e.ClassID)
	}
	if e.SchoolYearID == nil || *e.SchoolYearID != w.yearID {
		t.Fatalf("год должен проставиться из записи: %#v", e.SchoolYearID)
	}
	if e.AuthorID != w.teacher {
		t.Fatalf("автор — учитель: %d", e.AuthorID)
	}
	if e.OccurredAt.IsZero() {
		t.Fatal("дата события должна быть проставлена")
	}

	sent := console.Sent()
	if len(sent) != 1 {
		t.Fatalf("родитель должен получить одно уведомление, получил %d", len(sent))
	}
	if sent[0].ParentEmail != "parent@example.org" || sent[0].StudentName != "Dupont Paul" {
		t.Fatalf("уведомление не тому: %#v", sent[0])
	}
}

func TestCreate_Authorization(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	w := mustSeedWorld(t, h.DB)

	svc := lifeevents.New(h.DB, zap.NewNop(), notify.NewConsole(zap.NewNop()))

	// учитель без назначения на класс ученика
	outsider, err := db.CreateUser(ctx, h.DB, "autre-prof@example.org", "M. Faure", "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddMembership(ctx, h.DB, w.schoolID, outsider, models.RoleTeacher); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Create(ctx, mustScope(t, h.DB, outsider), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventAbsence, Reason: "Absence matinée",
	})
	if !apperr.IsForbidden(err) {
		t.Fatalf("ненезначенный учитель — Forbidden, получили %v", err)
	}

	// родитель писать не может
	_, err = svc.Create(ctx, mustScope(t, h.DB, w.parent), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventAbsence, Reason: "Absence matinée",
	})
	if !apperr.IsForbidden(err) {
		t.Fatalf("родитель — Forbidden, получили %v", err)
	}

	// supervisor (власть-роль) пишет без назначения
	if _, err = svc.Create(ctx, mustScope(t, h.DB, w.supervisor), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventSanction, Reason: "Bavardage répété",
	}); err != nil {
		t.Fatal(err)
	}

	// причина обязательна
	_, err = svc.Create(ctx, mustScope(t, h.DB, w.supervisor), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventSanction,
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("пустая причина — валидация, получили %v", err)
	}
}

func TestUpdate_AuthorNarrowingForTeachers(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	w := mustSeedWorld(t, h.DB)

	svc := lifeevents.New(h.DB, zap.NewNop(), notify.NewConsole(zap.NewNop()))

	e, err := svc.Create(ctx, mustScope(t, h.DB, w.teacher), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventRetard, Reason: "Retard de 10 minutes",
	})
	if err != nil {
		t.Fatal(err)
	}

	// второй учитель тоже назначен на 6A, но автором не является
	second, err := db.CreateUser(ctx, h.DB, "prof2@example.org", "M. Caron", "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddMembership(ctx, h.DB, w.schoolID, second, models.RoleTeacher); err != nil {
		t.Fatal(err)
	}
	subj, err := db.CreateSubject(ctx, h.DB, w.schoolID, "HIST", "Histoire")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertAssignmentSkipDup(ctx, h.DB, models.TeacherClassSubject{
		SchoolYearID: w.yearID, TeacherUserID: second, ClassID: w.classID, SubjectID: subj,
	}); err != nil {
		t.Fatal(err)
	}

	reason := "Retard de 20 minutes"
	_, err = svc.Update(ctx, mustScope(t, h.DB, second), e.ID, lifeevents.UpdateInput{Reason: &reason})
	if !apperr.IsForbidden(err) {
		t.Fatalf("чужую запись учитель не правит, получили %v", err)
	}
	if err := svc.Delete(ctx, mustScope(t, h.DB, second), e.ID); !apperr.IsForbidden(err) {
		t.Fatalf("чужую запись учитель не удаляет, получили %v", err)
	}

	// автор правит свою
	upd, err := svc.Update(ctx, mustScope(t, h.DB, w.teacher), e.ID, lifeevents.UpdateInput{Reason: &reason})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Reason != reason {
		t.Fatalf("причина не обновилась: %q", upd.Reason)
	}

	// власть-роль не ограничена авторством
	if err := svc.Delete(ctx, mustScope(t, h.DB, w.supervisor), e.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, mustScope(t, h.DB, w.supervisor), e.ID); !apperr.IsNotFound(err) {
		t.Fatalf("повторное удаление — NotFound, получили %v", err)
	}
}

func TestListForParent(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	w := mustSeedWorld(t, h.DB)

	svc := lifeevents.New(h.DB, zap.NewNop(), notify.NewConsole(zap.NewNop()))

	if _, err := svc.Create(ctx, mustScope(t, h.DB, w.teacher), lifeevents.CreateInput{
		StudentID: w.student, Type: models.LifeEventAbsence, Reason: "Absence matinée",
	}); err != nil {
		t.Fatal(err)
	}

	events, err := svc.ListForParent(ctx, mustScope(t, h.DB, w.parent), w.student)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("привязанный родитель видит журнал: %d", len(events))
	}

	// непривязанный родитель — Forbidden
	other, err := db.CreateUser(ctx, h.DB, "autre-parent@example.org", "Mme Leroy", "x")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddMembership(ctx, h.DB, w.schoolID, other, models.RoleParent); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListForParent(ctx, mustScope(t, h.DB, other), w.student); !apperr.IsForbidden(err) {
		t.Fatalf("непривязанный родитель — Forbidden, получили %v", err)
	}
}
