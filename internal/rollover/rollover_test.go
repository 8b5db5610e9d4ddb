//go:build testutil
// +build testutil

package rollover_test

import (
	"context"
	"database/sql"
	"testing"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/rollover"
	"github.com/ecoleplus/server/internal/testutil/testdb"
)

type seed struct {
	schoolID, sourceYear int64
	classA, classB       int64
	teacher, maths       int64
	st1, st2, st3        int64
}

// школа с активным годом 2024-2025: два класса, назначение учителя на 6A,
// два ACTIVE-ученика и один WITHDRAWN.
func mustSeedRollover(t *testing.T, database *sql.DB) seed {
	t.Helper()
	ctx := context.Background()
	var s seed
	var err error

	if s.schoolID, err = db.CreateSchool(ctx, database, "lycee-jaures", "Lycée Jean Jaurès"); err != nil {
		t.Fatal(err)
	}
	if s.sourceYear, err = db.CreateSchoolYear(ctx, database, s.schoolID, "2024-2025"); err != nil {
		t.Fatal(err)
	}
	if err = db.SetActiveSchoolYear(ctx, database, s.schoolID, s.sourceYear); err != nil {
		t.Fatal(err)
	}

	if s.classA, err = db.CreateClass(ctx, database, models.Class{
		SchoolID: s.schoolID, SchoolYearID: s.sourceYear, Name: "6A",
	}); err != nil {
		t.Fatal(err)
	}
	if s.classB, err = db.CreateClass(ctx, database, models.Class{
		SchoolID: s.schoolID, SchoolYearID: s.sourceYear, Name: "6B",
	}); err != nil {
		t.Fatal(err)
	}

	if s.teacher, err = db.CreateUser(ctx, database, "prof@example.org", "Mme Bernard", "x"); err != nil {
		t.Fatal(err)
	}
	if s.maths, err = db.CreateSubject(ctx, database, s.schoolID, "MATH", "Mathématiques"); err != nil {
		t.Fatal(err)
	}
	if _, err = db.InsertAssignmentSkipDup(ctx, database, models.TeacherClassSubject{
		SchoolYearID: s.sourceYear, TeacherUserID: s.teacher, ClassID: s.classA, SubjectID: s.maths,
	}); err != nil {
		t.Fatal(err)
	}

	mkStudent := func(email, name string, classID int64, status models.EnrollmentStatus) int64 {
		id, err := db.CreateUser(ctx, database, email, name, "x")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.UpsertEnrollment(ctx, database, models.Enrollment{
			SchoolID: s.schoolID, SchoolYearID: s.sourceYear, StudentID: id,
			ClassID: classID, Status: status,
		}); err != nil {
			t.Fatal(err)
		}
		return id
	}
	s.st1 = mkStudent("paul@example.org", "Dupont Paul", s.classA, models.EnrollmentActive)
	s.st2 = mkStudent("lea@example.org", "Martin Léa", s.classB, models.EnrollmentActive)
	s.st3 = mkStudent("hugo@example.org", "Petit Hugo", s.classB, models.EnrollmentWithdrawn)
	return s
}

func TestRun_CopiesStructureAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	s := mustSeedRollover(t, h.DB)
	log := zap.NewNop()

	in := rollover.Input{
		SchoolID:        s.schoolID,
		TargetLabel:     "2025-2026",
		CopyAssignments: true,
		CopyEnrollments: true,
		SetTargetActive: true,
	}

	res, err := rollover.Run(ctx, h.DB, log, in)
	if err != nil {
		t.Fatal(err)
	}
	if res.ClassesCreated != 2 || res.AssignmentsCreated != 1 || res.EnrollmentsCreated != 2 {
		t.Fatalf("неожиданные счётчики: %+v", res)
	}
	if !res.TargetActivated {
		t.Fatal("целевой год должен стать активным")
	}

	school, err := db.GetSchoolByID(ctx, h.DB, s.schoolID)
	if err != nil {
		t.Fatal(err)
	}
	if school.ActiveSchoolYearID == nil || *school.ActiveSchoolYearID != res.TargetYearID {
		t.Fatalf("активный год не переключился: %#v", school.ActiveSchoolYearID)
	}

	// WITHDRAWN не переносится
	if e, _ := db.GetEnrollment(ctx, h.DB, res.TargetYearID, s.st3); e != nil {
		t.Fatalf("WITHDRAWN-ученик не должен переноситься: %#v", e)
	}
	// ACTIVE перенесён в одноимённый класс
	e, err := db.GetEnrollment(ctx, h.DB, res.TargetYearID, s.st1)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.Status != models.EnrollmentActive {
		t.Fatalf("ACTIVE-ученик должен быть в целевом году: %#v", e)
	}
	newClass, _ := db.GetClassByID(ctx, h.DB, s.schoolID, e.ClassID)
	if newClass == nil || newClass.Name != "6A" || newClass.SchoolYearID != res.TargetYearID {
		t.Fatalf("ученик должен попасть в клон 6A: %#v", newClass)
	}

	// повторный прогон — нули: классы найдены по имени, копии пропущены.
	// источник задаём явно: активный год уже переключён на целевой.
	in.SourceYearID = &s.sourceYear
	res2, err := rollover.Run(ctx, h.DB, log, in)
	if err != nil {
		t.Fatal(err)
	}
	if res2.ClassesCreated != 0 || res2.AssignmentsCreated != 0 || res2.EnrollmentsCreated != 0 {
		t.Fatalf("повторный прогон должен дать нули: %+v", res2)
	}
}

func TestRun_SourceEqualsTarget(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	s := mustSeedRollover(t, h.DB)

	_, err = rollover.Run(ctx, h.DB, zap.NewNop(), rollover.Input{
		SchoolID:    s.schoolID,
		TargetLabel: "2024-2025", // резолвится в активный (он же источник)
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("источник и цель обязаны различаться, получили %v", err)
	}
}

func TestRun_NoSourceYear(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	schoolID, err := db.CreateSchool(ctx, h.DB, "college-neuf", "Collège Neuf")
	if err != nil {
		t.Fatal(err)
	}

	_, err = rollover.Run(ctx, h.DB, zap.NewNop(), rollover.Input{
		SchoolID:    schoolID,
		TargetLabel: "2025-2026",
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("без активного года и без источника — валидация, получили %v", err)
	}
}

func TestRun_MissingTargetLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	s := mustSeedRollover(t, h.DB)

	missing := int64(9999)
	_, err = rollover.Run(ctx, h.DB, zap.NewNop(), rollover.Input{
		SchoolID:     s.schoolID,
		TargetYearID: &missing,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("несуществующая цель — NotFound, получили %v", err)
	}

	// транзакция откатилась: новых годов не появилось
	if y, _ := db.GetSchoolYearByLabel(ctx, h.DB, s.schoolID, "2025-2026"); y != nil {
		t.Fatalf("после отката не должно быть новых годов: %#v", y)
	}
}
