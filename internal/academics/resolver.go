// Package academics — согласование академической структуры тенанта:
// программы (curriculum), уровни, направления, классы и назначаемость
// предметов. Бизнес-инварианты живут здесь, хранение — в internal/db.
package academics

import (
	"context"
	"fmt"

	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
)

// TroncCommun — метка программы без направления.
const TroncCommun = "TRONC_COMMUN"

// CurriculumName — отображаемое имя программы всегда производное,
// пользовательский ввод игнорируется.
func CurriculumName(levelCode string, trackCode *string) string {
	if trackCode == nil {
		return fmt.Sprintf("%s - %s", levelCode, TroncCommun)
	}
	return fmt.Sprintf("%s - %s", levelCode, *trackCode)
}

// ClassRefs — согласованная тройка ссылок класса.
type ClassRefs struct {
	CurriculumID    *int64
	AcademicLevelID *int64
	TrackID         *int64
}

// ResolveClassRefs сводит три независимых входа — программу, уровень и
// направление — к согласованной тройке. Прецедент:
//  1. программа (явная или из дефолтов существующего класса) авторитетна:
//     её уровень/направление возвращаются как есть, явный конфликтующий
//     ввод — ошибка валидации;
//  2. без программы явные уровень/направление проверяются на существование
//     в тенанте и возвращаются как есть;
//  3. явно переданная, но несуществующая программа — NotFound.
//
// Явная очистка программы («tronc commun» без привязки) отцепляет класс от
// программы, сохраняя прежние уровень/направление, если их не трогали.
func ResolveClassRefs(ctx context.Context, q db.DBTX, schoolID int64,
	curriculum, level, track FieldState[int64], existing *models.Class) (ClassRefs, error) {

	curID, curExplicit := curriculum.Get()
	if !curriculum.IsSet() && existing != nil && existing.CurriculumID != nil {
		curID, curExplicit = *existing.CurriculumID, false
		// дефолт из существующей записи тоже разрешаем как программу
		return resolveWithCurriculum(ctx, q, schoolID, curID, false, level, track)
	}
	if curExplicit {
		return resolveWithCurriculum(ctx, q, schoolID, curID, true, level, track)
	}

	// программы нет (не задана или явно очищена)
	var refs ClassRefs
	if lv, ok := level.Get(); ok {
		l, err := db.GetAcademicLevelByID(ctx, q, schoolID, lv)
		if err != nil {
			return ClassRefs{}, err
		}
		if l == nil {
			return ClassRefs{}, apperr.NotFoundf("academic level not found")
		}
		refs.AcademicLevelID = &lv
	} else if !level.IsSet() && existing != nil {
		refs.AcademicLevelID = existing.AcademicLevelID
	}
	if tv, ok := track.Get(); ok {
		t, err := db.GetTrackByID(ctx, q, schoolID, tv)
		if err != nil {
			return ClassRefs{}, err
		}
		if t == nil {
			return ClassRefs{}, apperr.NotFoundf("track not found")
		}
		refs.TrackID = &tv
	} else if !track.IsSet() && existing != nil {
		refs.TrackID = existing.TrackID
	}
	return refs, nil
}

func resolveWithCurriculum(ctx context.Context, q db.DBTX, schoolID, curID int64,
	explicit bool, level, track FieldState[int64]) (ClassRefs, error) {

	cur, err := db.GetCurriculumByID(ctx, q, schoolID, curID)
	if err != nil {
		return ClassRefs{}, err
	}
	if cur == nil {
		if explicit {
			return ClassRefs{}, apperr.NotFoundf("curriculum not found")
		}
		return ClassRefs{}, apperr.NotFoundf("class curriculum no longer exists")
	}

	// явный ввод обязан совпадать с программой; дефолты игнорируются
	if level.IsSet() {
		lv, ok := level.Get()
		if !ok || lv != cur.AcademicLevelID {
			return ClassRefs{}, apperr.Validationf("academic level must match curriculum academic level")
		}
	}
	if track.IsSet() {
		tv, ok := track.Get()
		switch {
		case !ok && cur.TrackID != nil:
			return ClassRefs{}, apperr.Validationf("track must match curriculum track")
		case ok && (cur.TrackID == nil || *cur.TrackID != tv):
			return ClassRefs{}, apperr.Validationf("track must match curriculum track")
		}
	}

	levelID := cur.AcademicLevelID
	return ClassRefs{
		CurriculumID:    &cur.ID,
		AcademicLevelID: &levelID,
		TrackID:         cur.TrackID,
	}, nil
}

// CreateClass — новый класс с согласованной тройкой ссылок.
func CreateClass(ctx context.Context, q db.DBTX, c models.Class,
	curriculum, level, track FieldState[int64]) (int64, error) {

	if c.Name == "" {
		return 0, apperr.Validationf("class name is required")
	}
	year, err := db.GetSchoolYearByID(ctx, q, c.SchoolID, c.SchoolYearID)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, apperr.NotFoundf("school year not found")
	}
	refs, err := ResolveClassRefs(ctx, q, c.SchoolID, curriculum, level, track, nil)
	if err != nil {
		return 0, err
	}
	c.CurriculumID, c.AcademicLevelID, c.TrackID = refs.CurriculumID, refs.AcademicLevelID, refs.TrackID
	return db.CreateClass(ctx, q, c)
}

// UpdateClassRefs — пересогласование ссылок существующего класса;
// непереданные поля наследуют текущие значения класса.
func UpdateClassRefs(ctx context.Context, q db.DBTX, schoolID, classID int64,
	curriculum, level, track FieldState[int64]) (*models.Class, error) {

	class, err := db.GetClassByID(ctx, q, schoolID, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperr.NotFoundf("class not found")
	}
	refs, err := ResolveClassRefs(ctx, q, schoolID, curriculum, level, track, class)
	if err != nil {
		return nil, err
	}
	if err := db.UpdateClassRefs(ctx, q, schoolID, classID,
		refs.CurriculumID, refs.AcademicLevelID, refs.TrackID); err != nil {
		return nil, err
	}
	class.CurriculumID, class.AcademicLevelID, class.TrackID = refs.CurriculumID, refs.AcademicLevelID, refs.TrackID
	return class, nil
}

// CanAssignSubject — назначаемость предмета классу. Оверрайд класса
// старше программы: REMOVE запрещает всегда, ADD разрешает всегда.
// Без оверрайда решает членство в программе; класс без программы не
// ограничен по предметам.
func CanAssignSubject(ctx context.Context, q db.DBTX, class *models.Class, subjectID int64) error {
	o, err := db.GetOverride(ctx, q, class.ID, subjectID)
	if err != nil {
		return err
	}
	if o != nil {
		if o.Action == models.OverrideRemove {
			return apperr.Validationf("subject is excluded from this class by override")
		}
		return nil
	}
	if class.CurriculumID == nil {
		return nil
	}
	ok, err := db.HasCurriculumSubject(ctx, q, *class.CurriculumID, subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validationf("subject is not part of the class curriculum")
	}
	return nil
}

// CreateAssignment — назначение учителя на (класс, предмет, год).
// Год назначения обязан совпадать с годом класса; предмет должен быть
// назначаем по правилам CanAssignSubject.
func CreateAssignment(ctx context.Context, q db.DBTX, schoolID int64, a models.TeacherClassSubject) (bool, error) {
	class, err := db.GetClassByID(ctx, q, schoolID, a.ClassID)
	if err != nil {
		return false, err
	}
	if class == nil {
		return false, apperr.NotFoundf("class not found")
	}
	if a.SchoolYearID != class.SchoolYearID {
		return false, apperr.Validationf("assignment school year must match class school year")
	}
	subj, err := db.GetSubjectByID(ctx, q, schoolID, a.SubjectID)
	if err != nil {
		return false, err
	}
	if subj == nil {
		return false, apperr.NotFoundf("subject not found")
	}
	if err := CanAssignSubject(ctx, q, class, a.SubjectID); err != nil {
		return false, err
	}
	return db.InsertAssignmentSkipDup(ctx, q, a)
}

// SaveCurriculum — создание/обновление программы с пересчётом имени.
func SaveCurriculum(ctx context.Context, q db.DBTX, c models.Curriculum) (int64, error) {
	level, err := db.GetAcademicLevelByID(ctx, q, c.SchoolID, c.AcademicLevelID)
	if err != nil {
		return 0, err
	}
	if level == nil {
		return 0, apperr.NotFoundf("academic level not found")
	}
	var trackCode *string
	if c.TrackID != nil {
		track, err := db.GetTrackByID(ctx, q, c.SchoolID, *c.TrackID)
		if err != nil {
			return 0, err
		}
		if track == nil {
			return 0, apperr.NotFoundf("track not found")
		}
		trackCode = &track.Code
	}
	c.Name = CurriculumName(level.Code, trackCode)

	if c.ID == 0 {
		return db.CreateCurriculum(ctx, q, c)
	}
	return c.ID, db.UpdateCurriculum(ctx, q, c)
}

// DeleteSubject — удаление предмета блокируется, пока на него ссылаются
// назначения, программы или оверрайды (referential guard, без каскада).
func DeleteSubject(ctx context.Context, q db.DBTX, schoolID, subjectID int64) error {
	subj, err := db.GetSubjectByID(ctx, q, schoolID, subjectID)
	if err != nil {
		return err
	}
	if subj == nil {
		return apperr.NotFoundf("subject not found")
	}
	n, err := db.CountSubjectRefs(ctx, q, subjectID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Validationf("subject is referenced by assignments, curricula or overrides")
	}
	return db.DeleteSubject(ctx, q, schoolID, subjectID)
}
