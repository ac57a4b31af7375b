package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventStatus is a closed enumeration. The application engine owns only the
// active<->full edge; completed and cancelled are set by event management and
// close the event to further applications and decisions.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventFull      EventStatus = "full"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Open reports whether the event still accepts applications and decisions.
func (s EventStatus) Open() bool {
	return s == EventActive || s == EventFull
}

type Event struct {
	EventID     uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	OrganizerID uuid.UUID `gorm:"column:organizer_id;type:uuid;not null;index" json:"organizer_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Location    string    `gorm:"column:location" json:"location"`
	// MaxVolunteers is the hard cap on approved applications.
	MaxVolunteers int         `gorm:"column:max_volunteers;not null" json:"max_volunteers"`
	Status        EventStatus `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	// CurrentVolunteers is a denormalized read-model counter, refreshed inside
	// lifecycle transitions. Decisions never trust it; they recount live rows.
	CurrentVolunteers int            `gorm:"column:current_volunteers;not null;default:0" json:"current_volunteers"`
	StartDate         time.Time      `gorm:"column:start_date;not null" json:"start_date"`
	EndDate           time.Time      `gorm:"column:end_date;not null" json:"end_date"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return "Events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
