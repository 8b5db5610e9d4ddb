// Package lifeevents — журнал жизни ученика: абсансы, опоздания, санкции,
// наказания. Запись жёстко гейтится ролями (учитель — только по своему
// назначению на текущую запись ученика), уведомление родителей —
// best-effort после фиксации в БД.
package lifeevents

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/academics"
	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/metrics"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/notify"
	"github.com/ecoleplus/server/internal/tenant"
)

type Service struct {
	DB       *sql.DB
	Log      *zap.Logger
	Notifier notify.Notifier
}

func New(database *sql.DB, log *zap.Logger, notifier notify.Notifier) *Service {
	return &Service{DB: database, Log: log, Notifier: notifier}
}

// CurrentEnrollmentContext — «текущая» запись ученика: запись активного
// года школы, если она есть, иначе последняя созданная запись любого
// статуса; nil, если записей нет вовсе.
func CurrentEnrollmentContext(ctx context.Context, q db.DBTX, school *models.School, studentID int64) (*models.Enrollment, error) {
	if school.ActiveSchoolYearID != nil {
		e, err := db.GetEnrollment(ctx, q, *school.ActiveSchoolYearID, studentID)
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
	}
	return db.GetLatestEnrollment(ctx, q, school.ID, studentID)
}

// CanWrite — власть-роли пишут всегда; TEACHER — только при наличии
// назначения на (класс, год) текущей записи ученика; остальные — никогда.
func (s *Service) CanWrite(ctx context.Context, scope *tenant.Scope, studentID int64) (bool, error) {
	if scope.IsPower() {
		return true, nil
	}
	if !scope.Has(models.RoleTeacher) {
		return false, nil
	}
	enr, err := CurrentEnrollmentContext(ctx, s.DB, scope.School, studentID)
	if err != nil {
		return false, err
	}
	if enr == nil {
		return false, nil
	}
	return db.TeacherAssignedToClass(ctx, s.DB, scope.UserID, enr.ClassID, enr.SchoolYearID)
}

type CreateInput struct {
	StudentID       int64
	ClassID         *int64 // явный класс; иначе из текущей записи ученика
	Type            models.LifeEventType
	OccurredAt      sql.NullTime
	DurationMinutes *int
	Justified       *bool
	Reason          string
	Comment         *string
}

func (s *Service) Create(ctx context.Context, scope *tenant.Scope, in CreateInput) (*models.StudentLifeEvent, error) {
	if !in.Type.Valid() {
		return nil, apperr.Validationf("unknown life event type %q", in.Type)
	}
	if in.Reason == "" {
		return nil, apperr.Validationf("reason is required")
	}

	ok, err := s.CanWrite(ctx, scope, in.StudentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbiddenf("not allowed to write student life events")
	}

	classID, yearID, err := s.stamp(ctx, scope, in.ClassID, in.StudentID)
	if err != nil {
		return nil, err
	}

	e := models.StudentLifeEvent{
		SchoolID:        scope.SchoolID,
		StudentID:       in.StudentID,
		ClassID:         classID,
		SchoolYearID:    yearID,
		AuthorID:        scope.UserID,
		Type:            in.Type,
		DurationMinutes: in.DurationMinutes,
		Justified:       in.Justified,
		Reason:          in.Reason,
		Comment:         in.Comment,
	}
	if in.OccurredAt.Valid {
		e.OccurredAt = in.OccurredAt.Time
	} else {
		e.OccurredAt = time.Now()
	}

	id, err := db.InsertLifeEvent(ctx, s.DB, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	metrics.LifeEvents.WithLabelValues(string(e.Type)).Inc()

	// запись уже зафиксирована; рассылка не влияет на результат
	s.notifyParents(ctx, scope, &e)
	return &e, nil
}

type UpdateInput struct {
	ClassID         academics.FieldState[int64] // Value: перештамповать по классу; Clear: вывести из текущей записи
	Type            *models.LifeEventType
	OccurredAt      sql.NullTime
	DurationMinutes *int
	Justified       *bool
	Reason          *string
	Comment         *string
}

func (s *Service) Update(ctx context.Context, scope *tenant.Scope, id int64, in UpdateInput) (*models.StudentLifeEvent, error) {
	e, err := db.GetLifeEventByID(ctx, s.DB, scope.SchoolID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFoundf("life event not found")
	}
	if err := s.authorizeMutation(ctx, scope, e); err != nil {
		return nil, err
	}

	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, apperr.Validationf("unknown life event type %q", *in.Type)
		}
		e.Type = *in.Type
	}
	if in.OccurredAt.Valid {
		e.OccurredAt = in.OccurredAt.Time
	}
	if in.DurationMinutes != nil {
		e.DurationMinutes = in.DurationMinutes
	}
	if in.Justified != nil {
		e.Justified = in.Justified
	}
	if in.Reason != nil {
		if *in.Reason == "" {
			return nil, apperr.Validationf("reason is required")
		}
		e.Reason = *in.Reason
	}
	if in.Comment != nil {
		e.Comment = in.Comment
	}

	if in.ClassID.IsSet() {
		classID, yearID, err := s.stamp(ctx, scope, in.ClassID.Ptr(), e.StudentID)
		if err != nil {
			return nil, err
		}
		e.ClassID, e.SchoolYearID = classID, yearID
	}

	if err := db.UpdateLifeEvent(ctx, s.DB, *e); err != nil {
		return nil, err
	}

	s.notifyParents(ctx, scope, e)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, scope *tenant.Scope, id int64) error {
	e, err := db.GetLifeEventByID(ctx, s.DB, scope.SchoolID, id)
	if err != nil {
		return err
	}
	if e == nil {
		return apperr.NotFoundf("life event not found")
	}
	if err := s.authorizeMutation(ctx, scope, e); err != nil {
		return err
	}
	return db.DeleteLifeEvent(ctx, s.DB, scope.SchoolID, id)
}

// ListForParent — чтение журнала родителем только по связи parents_students.
func (s *Service) ListForParent(ctx context.Context, scope *tenant.Scope, studentID int64) ([]models.StudentLifeEvent, error) {
	linked, err := db.ParentLinked(ctx, s.DB, scope.UserID, studentID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperr.Forbiddenf("parent is not linked to this student")
	}
	return db.ListLifeEventsByStudent(ctx, s.DB, scope.SchoolID, studentID)
}

// authorizeMutation — право записи плюс сужение для учителя: учитель
// (и только он, власть-роли не ограничены) правит и удаляет лишь свои записи.
func (s *Service) authorizeMutation(ctx context.Context, scope *tenant.Scope, e *models.StudentLifeEvent) error {
	ok, err := s.CanWrite(ctx, scope, e.StudentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbiddenf("not allowed to write student life events")
	}
	if !scope.IsPower() && scope.Has(models.RoleTeacher) && e.AuthorID != scope.UserID {
		return apperr.Forbiddenf("only the author may modify this life event")
	}
	return nil
}

// stamp — (classId, schoolYearId) из явного класса либо из текущей записи
// ученика; обе ссылки могут остаться пустыми, если записей нет.
func (s *Service) stamp(ctx context.Context, scope *tenant.Scope, explicitClassID *int64, studentID int64) (*int64, *int64, error) {
	if explicitClassID != nil {
		class, err := db.GetClassByID(ctx, s.DB, scope.SchoolID, *explicitClassID)
		if err != nil {
			return nil, nil, err
		}
		if class == nil {
			return nil, nil, apperr.NotFoundf("class not found")
		}
		return &class.ID, &class.SchoolYearID, nil
	}
	enr, err := CurrentEnrollmentContext(ctx, s.DB, scope.School, studentID)
	if err != nil {
		return nil, nil, err
	}
	if enr == nil {
		return nil, nil, nil
	}
	return &enr.ClassID, &enr.SchoolYearID, nil
}

func (s *Service) notifyParents(ctx context.Context, scope *tenant.Scope, e *models.StudentLifeEvent) {
	parents, err := db.ListParentsForStudent(ctx, s.DB, e.StudentID)
	if err != nil {
		s.Log.Warn("не удалось получить родителей для рассылки", zap.Int64("student_id", e.StudentID), zap.Error(err))
		return
	}
	student, err := db.GetUserByID(ctx, s.DB, e.StudentID)
	if err != nil || student == nil {
		s.Log.Warn("не удалось получить ученика для рассылки", zap.Int64("student_id", e.StudentID), zap.Error(err))
		return
	}
	for _, p := range parents {
		s.Notifier.SendLifeEventNotice(ctx, notify.LifeEventNotice{
			ParentName:     p.Name,
			ParentEmail:    p.Email,
			ParentChatID:   p.TelegramChatID,
			StudentName:    student.Name,
			SchoolName:     scope.School.Name,
			EventType:      e.Type,
			OccurredAt:     e.OccurredAt,
			Reason:         e.Reason,
			DurationMinute: e.DurationMinutes,
		})
	}
}
