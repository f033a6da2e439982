// Package policy holds the single visibility rule every developer read path consults.
package policy

import (
	"time"

	"github.com/google/uuid"

	"devdir/internal/identity"
	"devdir/internal/model"
)

// DeveloperView is the projection of a developer record returned to a caller.
// Nil contact fields mean "not disclosed" and are omitted from JSON.
type DeveloperView struct {
	ID          uuid.UUID      `json:"id"`
	OwnerUserID uuid.UUID      `json:"owner_user_id"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	WorkType    model.WorkType `json:"work_type"`
	Field       model.Field    `json:"field"`
	Email       *string        `json:"email,omitempty"`
	GitHub      *string        `json:"github,omitempty"`
	LinkedIn    *string        `json:"linkedin,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CanSeeContactInfo reports whether p may see email, github and linkedin on read paths.
// Anonymous, invalid and company principals may not.
func CanSeeContactInfo(p identity.Principal) bool {
	return p.HasRole(model.RoleStudent) || p.HasRole(model.RoleAdmin)
}

// Project returns the view of d that p is allowed to see.
func Project(p identity.Principal, d *model.Developer) DeveloperView {
	if CanSeeContactInfo(p) {
		return Full(d)
	}
	return redacted(d)
}

// ProjectAll applies Project to every record, preserving order.
func ProjectAll(p identity.Principal, devs []model.Developer) []DeveloperView {
	views := make([]DeveloperView, 0, len(devs))
	for i := range devs {
		views = append(views, Project(p, &devs[i]))
	}
	return views
}

// Full returns the unredacted view of d. Callers must already have authorized disclosure.
func Full(d *model.Developer) DeveloperView {
	v := redacted(d)
	email := d.Email
	v.Email = &email
	v.GitHub = copyString(d.GitHub)
	v.LinkedIn = copyString(d.LinkedIn)
	return v
}

func redacted(d *model.Developer) DeveloperView {
	return DeveloperView{
		ID:          d.ID,
		OwnerUserID: d.OwnerUserID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		WorkType:    d.WorkType,
		Field:       d.Field,
		CreatedAt:   d.CreatedAt,
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
