package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationStatus is a closed enumeration. Approved and rejected are
// re-openable: an organizer reset moves them back to pending.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is one volunteer's request to participate in one event.
// At most one live row exists per (event_id, volunteer_id) pair.
type Application struct {
	ApplicationID uuid.UUID         `gorm:"column:application_id;type:uuid;primaryKey" json:"application_id"`
	EventID       uuid.UUID         `gorm:"column:event_id;type:uuid;not null;uniqueIndex:uniq_event_volunteer" json:"event_id"`
	VolunteerID   uuid.UUID         `gorm:"column:volunteer_id;type:uuid;not null;uniqueIndex:uniq_event_volunteer" json:"volunteer_id"`
	Status        ApplicationStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	// Skills are advisory only; they never gate a transition.
	Skills           datatypes.JSON `gorm:"column:skills;type:json" json:"skills"`
	Message          string         `gorm:"column:message" json:"message"`
	Feedback         *string        `gorm:"column:feedback" json:"feedback"`
	HoursContributed float64        `gorm:"column:hours_contributed;not null;default:0" json:"hours_contributed"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Application) TableName() string {
	return "Applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == uuid.Nil {
		a.ApplicationID = uuid.New()
	}
	return nil
}
