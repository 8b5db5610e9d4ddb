package models

import "time"

type School struct {
	ID                 int64  `db:"id"`
	Slug               string `db:"slug"`
	Name               string `db:"name"`
	ActiveSchoolYearID *int64 `db:"active_school_year_id"`
}

type SchoolYear struct {
	ID       int64  `db:"id"`
	SchoolID int64  `db:"school_id"`
	Label    string `db:"label"` // уникален в рамках школы, напр. "2024-2025"
}

type AcademicLevel struct {
	ID       int64  `db:"id"`
	SchoolID int64  `db:"school_id"`
	Code     string `db:"code"`
	Label    string `db:"label"`
}

type Track struct {
	ID       int64  `db:"id"`
	SchoolID int64  `db:"school_id"`
	Code     string `db:"code"`
	Label    string `db:"label"`
}

type Subject struct {
	ID       int64  `db:"id"`
	SchoolID int64  `db:"school_id"`
	Code     string `db:"code"`
	Name     string `db:"name"`
}

// Curriculum — пара (уровень, направление); имя всегда производное,
// см. academics.CurriculumName.
type Curriculum struct {
	ID              int64  `db:"id"`
	SchoolID        int64  `db:"school_id"`
	AcademicLevelID int64  `db:"academic_level_id"`
	TrackID         *int64 `db:"track_id"`
	Name            string `db:"name"`
}

type CurriculumSubject struct {
	ID           int64    `db:"id"`
	CurriculumID int64    `db:"curriculum_id"`
	SubjectID    int64    `db:"subject_id"`
	IsMandatory  bool     `db:"is_mandatory"`
	Coefficient  *float64 `db:"coefficient"`
	WeeklyHours  *int     `db:"weekly_hours"`
}

type Class struct {
	ID              int64  `db:"id"`
	SchoolID        int64  `db:"school_id"`
	SchoolYearID    int64  `db:"school_year_id"`
	Name            string `db:"name"`
	AcademicLevelID *int64 `db:"academic_level_id"`
	TrackID         *int64 `db:"track_id"`
	CurriculumID    *int64 `db:"curriculum_id"`
}

type OverrideAction string

const (
	OverrideAdd    OverrideAction = "ADD"
	OverrideRemove OverrideAction = "REMOVE"
)

type ClassSubjectOverride struct {
	ID          int64          `db:"id"`
	ClassID     int64          `db:"class_id"`
	SubjectID   int64          `db:"subject_id"`
	Action      OverrideAction `db:"action"`
	Coefficient *float64       `db:"coefficient"`
	WeeklyHours *int           `db:"weekly_hours"`
}

type TeacherClassSubject struct {
	ID            int64 `db:"id"`
	SchoolYearID  int64 `db:"school_year_id"`
	TeacherUserID int64 `db:"teacher_user_id"`
	ClassID       int64 `db:"class_id"`
	SubjectID     int64 `db:"subject_id"`
}

type EnrollmentStatus string

const (
	EnrollmentActive      EnrollmentStatus = "ACTIVE"
	EnrollmentTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentWithdrawn   EnrollmentStatus = "WITHDRAWN"
	EnrollmentGraduated   EnrollmentStatus = "GRADUATED"
)

type Enrollment struct {
	ID           int64            `db:"id"`
	SchoolID     int64            `db:"school_id"`
	SchoolYearID int64            `db:"school_year_id"`
	StudentID    int64            `db:"student_id"`
	ClassID      int64            `db:"class_id"`
	Status       EnrollmentStatus `db:"status"`
	CreatedAt    time.Time        `db:"created_at"`
}
