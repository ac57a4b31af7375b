package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event types, one per lifecycle transition.
const (
	AuditApplied       = "APPLIED"
	AuditApproved      = "APPROVED"
	AuditRejected      = "REJECTED"
	AuditReset         = "RESET"
	AuditHoursRecorded = "HOURS_RECORDED"
)

// ApplicationEvent is an append-only audit row written in the same transaction
// as the transition it records. Rows are never updated.
type ApplicationEvent struct {
	AuditID       uuid.UUID      `gorm:"column:audit_id;type:uuid;primaryKey" json:"audit_id"`
	ApplicationID uuid.UUID      `gorm:"column:application_id;type:uuid;not null;index" json:"application_id"`
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;not null;index" json:"event_id"`
	EventType     string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData     datatypes.JSON `gorm:"column:event_data;type:json;not null" json:"event_data"`
	ActorID       uuid.UUID      `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	CreatedAt     time.Time      `json:"createdAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ApplicationEvent) TableName() string {
	return "ApplicationEvents"
}

func (ae *ApplicationEvent) BeforeCreate(tx *gorm.DB) error {
	if ae.AuditID == uuid.Nil {
		ae.AuditID = uuid.New()
	}
	return nil
}
