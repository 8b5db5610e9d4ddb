// Package rollover — перенос академической структуры школы из одного
// учебного года в другой одной транзакцией: классы (идемпотентно, по
// имени), затем опционально назначения учителей и записи учеников со
// skip-duplicate-семантикой по уникальным ключам.
package rollover

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/metrics"
	"github.com/ecoleplus/server/internal/models"
)

type Input struct {
	SchoolID int64

	// источник: явный год либо активный год школы
	SourceYearID *int64

	// цель: существующий год либо get-or-create по label
	TargetYearID *int64
	TargetLabel  string

	CopyAssignments bool
	CopyEnrollments bool
	SetTargetActive bool
}

// Result — счётчики реально созданного (повторный прогон даёт нули).
type Result struct {
	TargetYearID       int64
	ClassesCreated     int
	AssignmentsCreated int
	EnrollmentsCreated int
	TargetActivated    bool
}

// Run выполняет перенос целиком в одной транзакции: частичный результат
// (часть классов скопирована, остальное нет) невозможен.
func Run(ctx context.Context, database *sql.DB, log *zap.Logger, in Input) (Result, error) {
	var res Result
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		res, err = run(ctx, tx, in)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	metrics.RolloverRuns.Inc()
	metrics.RolloverCreated.WithLabelValues("class").Add(float64(res.ClassesCreated))
	metrics.RolloverCreated.WithLabelValues("assignment").Add(float64(res.AssignmentsCreated))
	metrics.RolloverCreated.WithLabelValues("enrollment").Add(float64(res.EnrollmentsCreated))
	log.Info("rollover выполнен",
		zap.Int64("school_id", in.SchoolID),
		zap.Int64("target_year_id", res.TargetYearID),
		zap.Int("classes", res.ClassesCreated),
		zap.Int("assignments", res.AssignmentsCreated),
		zap.Int("enrollments", res.EnrollmentsCreated),
	)
	return res, nil
}

func run(ctx context.Context, tx *sql.Tx, in Input) (Result, error) {
	var res Result

	school, err := db.GetSchoolByID(ctx, tx, in.SchoolID)
	if err != nil {
		return res, err
	}
	if school == nil {
		return res, apperr.NotFoundf("school not found")
	}

	// 1. источник
	sourceID := in.SourceYearID
	if sourceID == nil {
		sourceID = school.ActiveSchoolYearID
	}
	if sourceID == nil {
		return res, apperr.Validationf("school has no active school year and no source year was given")
	}
	source, err := db.GetSchoolYearByID(ctx, tx, in.SchoolID, *sourceID)
	if err != nil {
		return res, err
	}
	if source == nil {
		return res, apperr.NotFoundf("source school year not found")
	}

	// 2. цель
	var target *models.SchoolYear
	switch {
	case in.TargetYearID != nil:
		target, err = db.GetSchoolYearByID(ctx, tx, in.SchoolID, *in.TargetYearID)
		if err != nil {
			return res, err
		}
		if target == nil {
			return res, apperr.NotFoundf("target school year not found")
		}
	case in.TargetLabel != "":
		target, err = db.GetOrCreateSchoolYearByLabel(ctx, tx, in.SchoolID, in.TargetLabel)
		if err != nil {
			return res, err
		}
	default:
		return res, apperr.Validationf("either target school year or target label is required")
	}
	if target.ID == source.ID {
		return res, apperr.Validationf("source and target school years must differ")
	}
	res.TargetYearID = target.ID

	// 3. классы: reuse по имени, иначе клон
	classes, err := db.ListClassesByYear(ctx, tx, in.SchoolID, source.ID)
	if err != nil {
		return res, err
	}
	classMap := make(map[int64]int64, len(classes)) // old class id -> new class id
	for _, c := range classes {
		existing, err := db.GetClassByName(ctx, tx, in.SchoolID, target.ID, c.Name)
		if err != nil {
			return res, err
		}
		if existing != nil {
			classMap[c.ID] = existing.ID
			continue
		}
		newID, err := db.CreateClass(ctx, tx, models.Class{
			SchoolID:        in.SchoolID,
			SchoolYearID:    target.ID,
			Name:            c.Name,
			AcademicLevelID: c.AcademicLevelID,
			TrackID:         c.TrackID,
			CurriculumID:    c.CurriculumID,
		})
		if err != nil {
			return res, err
		}
		classMap[c.ID] = newID
		res.ClassesCreated++
	}

	// 4. назначения учителей
	if in.CopyAssignments {
		assignments, err := db.ListAssignmentsByYear(ctx, tx, source.ID)
		if err != nil {
			return res, err
		}
		for _, a := range assignments {
			newClassID, ok := classMap[a.ClassID]
			if !ok {
				continue
			}
			inserted, err := db.InsertAssignmentSkipDup(ctx, tx, models.TeacherClassSubject{
				SchoolYearID:  target.ID,
				TeacherUserID: a.TeacherUserID,
				ClassID:       newClassID,
				SubjectID:     a.SubjectID,
			})
			if err != nil {
				return res, err
			}
			if inserted {
				res.AssignmentsCreated++
			}
		}
	}

	// 5. записи учеников (только ACTIVE)
	if in.CopyEnrollments {
		enrollments, err := db.ListActiveEnrollmentsByYear(ctx, tx, source.ID)
		if err != nil {
			return res, err
		}
		for _, e := range enrollments {
			newClassID, ok := classMap[e.ClassID]
			if !ok {
				continue
			}
			inserted, err := db.InsertEnrollmentSkipDup(ctx, tx, models.Enrollment{
				SchoolID:     in.SchoolID,
				SchoolYearID: target.ID,
				StudentID:    e.StudentID,
				ClassID:      newClassID,
				Status:       models.EnrollmentActive,
			})
			if err != nil {
				return res, err
			}
			if inserted {
				res.EnrollmentsCreated++
			}
		}
	}

	// 6. активация целевого года
	if in.SetTargetActive {
		if err := db.SetActiveSchoolYear(ctx, tx, in.SchoolID, target.ID); err != nil {
			return res, err
		}
		res.TargetActivated = true
	}

	return res, nil
}
