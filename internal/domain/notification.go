package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types for the in-app feed.
const (
	NotifyApplicationReceived = "application_received"
	NotifyApplicationApproved = "application_approved"
	NotifyApplicationRejected = "application_rejected"
	NotifyApplicationReset    = "application_reset"
)

// Notification is created after a lifecycle transition commits. Creation
// failure is logged, never rolled into the transition.
type Notification struct {
	NotificationID uuid.UUID      `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	UserID         uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	EventID        uuid.UUID      `gorm:"column:event_id;type:uuid;not null;index" json:"event_id"`
	Type           string         `gorm:"column:type;type:varchar(40);not null" json:"type"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Body           string         `gorm:"column:body" json:"body"`
	Read           bool           `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
