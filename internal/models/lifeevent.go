package models

import "time"

// LifeEventType — тип записи «журнала жизни» ученика. Значения наследуем
// из продукта как есть (французская номенклатура).
type LifeEventType string

const (
	LifeEventAbsence  LifeEventType = "ABSENCE"
	LifeEventRetard   LifeEventType = "RETARD"
	LifeEventSanction LifeEventType = "SANCTION"
	LifeEventPunition LifeEventType = "PUNITION"
)

func (t LifeEventType) Valid() bool {
	switch t {
	case LifeEventAbsence, LifeEventRetard, LifeEventSanction, LifeEventPunition:
		return true
	}
	return false
}

type StudentLifeEvent struct {
	ID              int64         `db:"id"`
	SchoolID        int64         `db:"school_id"`
	StudentID       int64         `db:"student_id"`
	ClassID         *int64        `db:"class_id"`
	SchoolYearID    *int64        `db:"school_year_id"`
	AuthorID        int64         `db:"author_id"`
	Type            LifeEventType `db:"type"`
	OccurredAt      time.Time     `db:"occurred_at"`
	DurationMinutes *int          `db:"duration_minutes"`
	Justified       *bool         `db:"justified"`
	Reason          string        `db:"reason"`
	Comment         *string       `db:"comment"`
	CreatedAt       time.Time     `db:"created_at"`
}

// ParentStudent — связь «родитель видит ученика» в рамках школы.
type ParentStudent struct {
	ParentID  int64 `db:"parent_id"`
	StudentID int64 `db:"student_id"`
}
