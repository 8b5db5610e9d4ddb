package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ecoleplus/server/internal/academics"
	"github.com/ecoleplus/server/internal/apperr"
	"github.com/ecoleplus/server/internal/ctxutil"
	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/export"
	"github.com/ecoleplus/server/internal/lifeevents"
	"github.com/ecoleplus/server/internal/models"
	"github.com/ecoleplus/server/internal/rollover"
	"github.com/ecoleplus/server/internal/tenant"
)

// Services — прикладные сервисы, которые обслуживает тонкий HTTP-слой.
// Аутентификация внешняя: идентичность приходит заголовком X-User-ID.
type Services struct {
	DB         *sql.DB
	Log        *zap.Logger
	LifeEvents *lifeevents.Service
}

// Register вешает прикладные маршруты на mux health-сервера.
func (s *Services) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /schools/{slug}/life-events", s.handleCreateLifeEvent)
	mux.HandleFunc("PATCH /schools/{slug}/classes/{id}", s.handleUpdateClassRefs)
	mux.HandleFunc("POST /schools/{slug}/rollover", s.handleRollover)
	mux.HandleFunc("GET /schools/{slug}/journal", s.handleJournal)
}

// resolveScope — идентичность из заголовка + скоуп тенанта из slug.
// Возвращает запрос с обогащённым контекстом (user/school id для логов).
func (s *Services) resolveScope(r *http.Request) (*http.Request, *tenant.Scope, error) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		return r, nil, apperr.Forbiddenf("missing or malformed identity")
	}
	user, err := db.GetUserWithRoles(r.Context(), s.DB, userID)
	if err != nil {
		return r, nil, err
	}
	if user == nil {
		return r, nil, apperr.Forbiddenf("unknown user")
	}
	scope, err := tenant.Resolve(r.Context(), s.DB, r.PathValue("slug"), user)
	if err != nil {
		return r, nil, err
	}
	ctx := ctxutil.WithUserID(r.Context(), scope.UserID)
	ctx = ctxutil.WithSchoolID(ctx, scope.SchoolID)
	return r.WithContext(ctx), scope, nil
}

type lifeEventRequest struct {
	StudentID       int64   `json:"studentId"`
	ClassID         *int64  `json:"classId"`
	Type            string  `json:"type"`
	DurationMinutes *int    `json:"durationMinutes"`
	Justified       *bool   `json:"justified"`
	Reason          string  `json:"reason"`
	Comment         *string `json:"comment"`
}

func (s *Services) handleCreateLifeEvent(w http.ResponseWriter, r *http.Request) {
	r, scope, err := s.resolveScope(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req lifeEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, apperr.Validationf("malformed request body"))
		return
	}
	event, err := s.LifeEvents.Create(r.Context(), scope, lifeevents.CreateInput{
		StudentID:       req.StudentID,
		ClassID:         req.ClassID,
		Type:            models.LifeEventType(req.Type),
		DurationMinutes: req.DurationMinutes,
		Justified:       req.Justified,
		Reason:          req.Reason,
		Comment:         req.Comment,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, event)
}

// classRefsRequest различает «поле не передано» (ключа нет), «явно
// очищено» (null) и «значение» — ровно та трёхзначность, которую ждёт
// academics.FieldState.
type classRefsRequest struct {
	CurriculumID    json.RawMessage `json:"curriculumId"`
	AcademicLevelID json.RawMessage `json:"academicLevelId"`
	TrackID         json.RawMessage `json:"trackId"`
}

func fieldState(raw json.RawMessage) (academics.FieldState[int64], error) {
	if len(raw) == 0 {
		return academics.Unset[int64](), nil
	}
	if string(raw) == "null" {
		return academics.Clear[int64](), nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return academics.Unset[int64](), apperr.Validationf("reference must be an id or null")
	}
	return academics.Value(v), nil
}

func (s *Services) handleUpdateClassRefs(w http.ResponseWriter, r *http.Request) {
	r, scope, err := s.resolveScope(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if !scope.IsPower() {
		s.writeErr(w, r, apperr.Forbiddenf("not allowed to modify classes"))
		return
	}
	classID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeErr(w, r, apperr.Validationf("malformed class id"))
		return
	}
	var req classRefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, apperr.Validationf("malformed request body"))
		return
	}
	cur, err := fieldState(req.CurriculumID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	level, err := fieldState(req.AcademicLevelID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	track, err := fieldState(req.TrackID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	class, err := academics.UpdateClassRefs(r.Context(), s.DB, scope.SchoolID, classID, cur, level, track)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, class)
}

type rolloverRequest struct {
	SourceYearID    *int64 `json:"sourceSchoolYearId"`
	TargetYearID    *int64 `json:"targetSchoolYearId"`
	TargetLabel     string `json:"targetLabel"`
	CopyAssignments bool   `json:"copyAssignments"`
	CopyEnrollments bool   `json:"copyEnrollments"`
	SetTargetActive bool   `json:"setTargetAsActive"`
}

func (s *Services) handleRollover(w http.ResponseWriter, r *http.Request) {
	r, scope, err := s.resolveScope(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if !scope.IsPower() {
		s.writeErr(w, r, apperr.Forbiddenf("not allowed to run rollover"))
		return
	}
	var req rolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, apperr.Validationf("malformed request body"))
		return
	}
	res, err := rollover.Run(r.Context(), s.DB, s.Log, rollover.Input{
		SchoolID:        scope.SchoolID,
		SourceYearID:    req.SourceYearID,
		TargetYearID:    req.TargetYearID,
		TargetLabel:     req.TargetLabel,
		CopyAssignments: req.CopyAssignments,
		CopyEnrollments: req.CopyEnrollments,
		SetTargetActive: req.SetTargetActive,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Services) handleJournal(w http.ResponseWriter, r *http.Request) {
	r, scope, err := s.resolveScope(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if !scope.IsPower() {
		s.writeErr(w, r, apperr.Forbiddenf("not allowed to export the journal"))
		return
	}
	yearID, err := strconv.ParseInt(r.URL.Query().Get("year"), 10, 64)
	if err != nil {
		s.writeErr(w, r, apperr.Validationf("year query parameter is required"))
		return
	}
	year, err := db.GetSchoolYearByID(r.Context(), s.DB, scope.SchoolID, yearID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if year == nil {
		s.writeErr(w, r, apperr.NotFoundf("school year not found"))
		return
	}
	book, err := export.BuildYearJournal(r.Context(), s.DB, scope.SchoolID, yearID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="journal_`+year.Label+`.xlsx"`)
	if err := book.Write(w); err != nil {
		s.Log.Warn("не удалось отдать журнал", zap.Error(err))
	}
}

func (s *Services) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr — стабильный маппинг таксономии на статусы: 400/404/403,
// прочее — 500 без деталей наружу.
func (s *Services) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case apperr.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case apperr.KindForbidden:
		status, msg = http.StatusForbidden, err.Error()
	default:
		if !errors.Is(err, sql.ErrNoRows) {
			fields := []zap.Field{zap.Error(err), zap.String("path", r.URL.Path)}
			if uid, ok := ctxutil.UserID(r.Context()); ok {
				fields = append(fields, zap.Int64("user_id", uid))
			}
			if sid, ok := ctxutil.SchoolID(r.Context()); ok {
				fields = append(fields, zap.Int64("school_id", sid))
			}
			s.Log.Error("внутренняя ошибка", fields...)
		}
	}
	http.Error(w, msg, status)
}
