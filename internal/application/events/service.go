package events

import (
	"context"
	"errors"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/pkg/keylock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryInvalidator drops the cached capacity summary for an event. The
// application engine's Redis-backed cache satisfies it.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, eventID uuid.UUID)
}

// Service manages the event aggregate. It owns the completed/cancelled edges
// of the status machine and capacity edits; the application engine owns
// active<->full. Both share one lock table so capacity edits serialize with
// concurrent approvals on the same event.
type Service struct {
	DB    *gorm.DB
	Locks *keylock.KeyedMutex
	Cache SummaryInvalidator
}

// invalidateSummary drops the cached capacity summary after any mutation that
// changes what the summary reports, so reads never pair a fresh event row with
// a stale summary.
func (s *Service) invalidateSummary(ctx context.Context, eventID uuid.UUID) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, eventID)
	}
}

type CreateEventInput struct {
	Title         string
	Description   string
	Location      string
	MaxVolunteers int
	StartDate     time.Time
	EndDate       time.Time
}

func (s *Service) Create(ctx context.Context, organizerID uuid.UUID, in CreateEventInput) (*domain.Event, error) {
	if in.MaxVolunteers <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidDates
	}

	event := domain.Event{
		OrganizerID:   organizerID,
		Title:         in.Title,
		Description:   in.Description,
		Location:      in.Location,
		MaxVolunteers: in.MaxVolunteers,
		Status:        domain.EventActive,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
	}
	if err := s.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListUpcoming returns open events that have not started yet.
func (s *Service) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	if err := s.DB.WithContext(ctx).
		Where("status IN ? AND start_date > ?", []domain.EventStatus{domain.EventActive, domain.EventFull}, time.Now()).
		Order("start_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]domain.Event, error) {
	var out []domain.Event
	if err := s.DB.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("start_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type UpdateEventInput struct {
	Title         *string
	Description   *string
	Location      *string
	MaxVolunteers *int
	StartDate     *time.Time
	EndDate       *time.Time
}

// Update edits event fields. A capacity change re-evaluates full/active
// coherence against the live approved count, under the event lock so no
// concurrent approval sees a stale maximum. Lowering the maximum below the
// approved count is refused.
func (s *Service) Update(ctx context.Context, eventID, actorID uuid.UUID, in UpdateEventInput) (*domain.Event, error) {
	s.Locks.Lock(eventID.String())
	defer s.Locks.Unlock(eventID.String())

	var event domain.Event
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}
		if !event.Status.Open() {
			return ErrEventClosed
		}

		if in.Title != nil {
			event.Title = *in.Title
		}
		if in.Description != nil {
			event.Description = *in.Description
		}
		if in.Location != nil {
			event.Location = *in.Location
		}
		if in.StartDate != nil {
			event.StartDate = *in.StartDate
		}
		if in.EndDate != nil {
			event.EndDate = *in.EndDate
		}
		if !event.EndDate.After(event.StartDate) {
			return ErrInvalidDates
		}

		if in.MaxVolunteers != nil {
			if *in.MaxVolunteers <= 0 {
				return ErrInvalidCapacity
			}
			var approved int64
			if err := tx.Model(&domain.Application{}).
				Where("event_id = ? AND status = ?", eventID, domain.ApplicationApproved).
				Count(&approved).Error; err != nil {
				return err
			}
			if int(approved) > *in.MaxVolunteers {
				return ErrCapacityBelowApproved
			}
			event.MaxVolunteers = *in.MaxVolunteers
			if int(approved) >= event.MaxVolunteers {
				event.Status = domain.EventFull
			} else {
				event.Status = domain.EventActive
			}
		}

		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, eventID)
	return &event, nil
}

// Cancel moves an open event to cancelled, closing it to the application engine.
func (s *Service) Cancel(ctx context.Context, eventID, actorID uuid.UUID) (*domain.Event, error) {
	return s.close(ctx, eventID, actorID, domain.EventCancelled)
}

// Complete moves an open event to completed, closing it to the application engine.
func (s *Service) Complete(ctx context.Context, eventID, actorID uuid.UUID) (*domain.Event, error) {
	return s.close(ctx, eventID, actorID, domain.EventCompleted)
}

func (s *Service) close(ctx context.Context, eventID, actorID uuid.UUID, to domain.EventStatus) (*domain.Event, error) {
	s.Locks.Lock(eventID.String())
	defer s.Locks.Unlock(eventID.String())

	var event domain.Event
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}
		if !event.Status.Open() {
			return ErrEventClosed
		}
		event.Status = to
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, eventID)
	return &event, nil
}

// Delete soft-deletes the event and cascades to its applications, audit rows,
// and notifications.
func (s *Service) Delete(ctx context.Context, eventID, actorID uuid.UUID) error {
	s.Locks.Lock(eventID.String())
	defer s.Locks.Unlock(eventID.String())

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event domain.Event
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}

		if err := tx.Where("event_id = ?", eventID).Delete(&domain.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&domain.ApplicationEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return err
	}
	s.invalidateSummary(ctx, eventID)
	return nil
}
