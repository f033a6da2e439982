package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkType is the kind of engagement a developer is looking for.
type WorkType string

const (
	WorkTypeRemote WorkType = "remote"
	WorkTypeOnsite WorkType = "onsite"
	WorkTypeHybrid WorkType = "hybrid"
)

// Field is a developer's area of expertise.
type Field string

const (
	FieldWeb       Field = "web"
	FieldMobile    Field = "mobile"
	FieldAI        Field = "ai"
	FieldBackend   Field = "backend"
	FieldFrontend  Field = "frontend"
	FieldFullstack Field = "fullstack"
)

// Developer is a published developer profile. Each user owns at most one.
type Developer struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUserID uuid.UUID `json:"owner_user_id" gorm:"type:char(36);not null;uniqueIndex"`
	FirstName   string    `json:"first_name" gorm:"size:100;not null"`
	LastName    string    `json:"last_name" gorm:"size:100;not null"`
	WorkType    WorkType  `json:"work_type" gorm:"type:varchar(20);not null;index"`
	Field       Field     `json:"field" gorm:"type:varchar(20);not null;index"`
	GitHub      *string   `json:"github,omitempty" gorm:"size:255"`
	LinkedIn    *string   `json:"linkedin,omitempty" gorm:"size:255"`
	Email       string    `json:"email" gorm:"size:255;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:OwnerUserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Developer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
