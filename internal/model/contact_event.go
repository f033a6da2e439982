package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayLayout is the format of ContactEvent.Day.
const DayLayout = "2006-01-02"

// ContactEvent records that a viewer consumed quota for a developer on a UTC day.
// The (viewer, developer, day) triple is unique; rows are never updated.
type ContactEvent struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ViewerUserID uuid.UUID `json:"viewer_user_id" gorm:"type:char(36);not null;uniqueIndex:ux_contact_viewer_developer_day,priority:1;index:ix_contact_viewer_day,priority:1"`
	DeveloperID  uuid.UUID `json:"developer_id" gorm:"type:char(36);not null;uniqueIndex:ux_contact_viewer_developer_day,priority:2"`
	Day          string    `json:"day" gorm:"type:char(10);not null;uniqueIndex:ux_contact_viewer_developer_day,priority:3;index:ix_contact_viewer_day,priority:2"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Viewer    User      `json:"-" gorm:"foreignKey:ViewerUserID;constraint:OnDelete:CASCADE"`
	Developer Developer `json:"-" gorm:"foreignKey:DeveloperID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (e *ContactEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DayOf returns the UTC calendar day of t in DayLayout.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// NextDay returns the UTC midnight following t, when a day's quota resets.
func NextDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
}
