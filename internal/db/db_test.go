//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/testutil/testdb"
)

func mustSeedSchool(t *testing.T, database *sql.DB) (schoolID, yearID int64) {
	t.Helper()
	ctx := context.Background()

	schoolID, err := db.CreateSchool(ctx, database, "lycee-jaures", "Lycée Jean Jaurès")
	if err != nil {
		t.Fatal(err)
	}
	yearID, err = db.CreateSchoolYear(ctx, database, schoolID, "2024-2025")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SetActiveSchoolYear(ctx, database, schoolID, yearID); err != nil {
		t.Fatal(err)
	}
	return schoolID, yearID
}

func mustSeedUser(t *testing.T, database *sql.DB, email, name string) int64 {
	t.Helper()
	id, err := db.CreateUser(context.Background(), database, email, name, "x")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	schoolID, yearID := mustSeedSchool(t, h.DB)

	boom := errors.New("boom")
	err = db.WithTx(ctx, h.DB, func(tx *sql.Tx) error {
		if _, err := db.CreateClass(ctx, tx, models.Class{
			SchoolID: schoolID, SchoolYearID: yearID, Name: "6A",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ожидали boom, получили %v", err)
	}

	classes, err := db.ListClassesByYear(ctx, h.DB, schoolID, yearID)
	if err != nil {
		t.Fatal(err)
	}
	if len(classes) != 0 {
		t.Fatalf("транзакция не откатилась: %d классов", len(classes))
	}
}

func TestEnrollment_UpsertAndSkipDup(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	schoolID, yearID := mustSeedSchool(t, h.DB)
	studentID := mustSeedUser(t, h.DB, "paul@example.org", "Dupont Paul")

	classA, err := db.CreateClass(ctx, h.DB, models.Class{SchoolID: schoolID, SchoolYearID: yearID, Name: "6A"})
	if err != nil {
		t.Fatal(err)
	}
	classB, err := db.CreateClass(ctx, h.DB, models.Class{SchoolID: schoolID, SchoolYearID: yearID, Name: "6B"})
	if err != nil {
		t.Fatal(err)
	}

	// upsert по (год, ученик): повтор с другим классом перезаписывает класс
	if _, err := db.UpsertEnrollment(ctx, h.DB, models.Enrollment{
		SchoolID: schoolID, SchoolYearID: yearID, StudentID: studentID,
		ClassID: classA, Status: models.EnrollmentActive,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertEnrollment(ctx, h.DB, models.Enrollment{
		SchoolID: schoolID, SchoolYearID: yearID, StudentID: studentID,
		ClassID: classB, Status: models.EnrollmentActive,
	}); err != nil {
		t.Fatal(err)
	}
	e, err := db.GetEnrollment(ctx, h.DB, yearID, studentID)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.ClassID != classB {
		t.Fatalf("ожидали класс %d, получили %#v", classB, e)
	}

	// skip-dup не трогает существующую запись
	inserted, err := db.InsertEnrollmentSkipDup(ctx, h.DB, models.Enrollment{
		SchoolID: schoolID, SchoolYearID: yearID, StudentID: studentID,
		ClassID: classA, Status: models.EnrollmentActive,
	})
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("повторная вставка должна быть пропущена")
	}
	e, _ = db.GetEnrollment(ctx, h.DB, yearID, studentID)
	if e.ClassID != classB {
		t.Fatal("skip-dup не должен перезаписывать класс")
	}
}

func TestSetActiveSchoolYear_ForeignYearRejected(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	schoolID, _ := mustSeedSchool(t, h.DB)

	otherID, err := db.CreateSchool(ctx, h.DB, "college-pasteur", "Collège Pasteur")
	if err != nil {
		t.Fatal(err)
	}
	foreignYear, err := db.CreateSchoolYear(ctx, h.DB, otherID, "2024-2025")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SetActiveSchoolYear(ctx, h.DB, schoolID, foreignYear); err == nil {
		t.Fatal("чужой год не должен становиться активным")
	}
}

func TestGetOrCreateSchoolYearByLabel(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	schoolID, _ := mustSeedSchool(t, h.DB)

	y1, err := db.GetOrCreateSchoolYearByLabel(ctx, h.DB, schoolID, "2025-2026")
	if err != nil {
		t.Fatal(err)
	}
	y2, err := db.GetOrCreateSchoolYearByLabel(ctx, h.DB, schoolID, "2025-2026")
	if err != nil {
		t.Fatal(err)
	}
	if y1.ID != y2.ID {
		t.Fatalf("повторный вызов должен вернуть тот же год: %d != %d", y1.ID, y2.ID)
	}
}
