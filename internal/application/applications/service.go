package applications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/pkg/keylock"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Decision is an organizer's verdict on a pending application.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Notifier delivers side effects after a transition commits. Dispatch is
// at-least-once and fire-and-forget: a failure is logged and never rolls back
// the committed transition.
type Notifier interface {
	ApplicationReceived(ctx context.Context, event *domain.Event, app *domain.Application) error
	DecisionMade(ctx context.Context, event *domain.Event, app *domain.Application, decision Decision) error
	DecisionReset(ctx context.Context, event *domain.Event, app *domain.Application) error
}

// Service is the application lifecycle engine. Decide and Reset serialize
// per event: the capacity recount and the write that consumes or frees a slot
// run as one atomic unit against other decisions on the same event.
type Service struct {
	DB       *gorm.DB
	Locks    *keylock.KeyedMutex
	Cache    *SummaryCache
	Notifier Notifier
}

// NewService wires the engine with its per-event lock table. Cache and
// Notifier may be nil (reads skip the cache, side effects are skipped).
func NewService(db *gorm.DB, cache *SummaryCache, notifier Notifier) *Service {
	return &Service{DB: db, Locks: keylock.New(), Cache: cache, Notifier: notifier}
}

// ApplyInput carries the volunteer-provided fields of a new application.
type ApplyInput struct {
	Skills  []string
	Message string
}

// Apply creates a pending application for (eventID, volunteerID).
// Capacity is a soft cap at apply time: a full event still accepts
// applications; only approval enforces the hard cap.
func (s *Service) Apply(ctx context.Context, eventID, volunteerID uuid.UUID, in ApplyInput) (*domain.Application, error) {
	var app domain.Application
	var event domain.Event

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if !event.Status.Open() {
			return ErrEventClosed
		}
		if !event.StartDate.After(time.Now()) {
			return ErrEventStarted
		}

		var dup int64
		if err := tx.Model(&domain.Application{}).
			Where("event_id = ? AND volunteer_id = ?", eventID, volunteerID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateApplication
		}

		skills, err := json.Marshal(in.Skills)
		if err != nil {
			return err
		}
		app = domain.Application{
			EventID:     eventID,
			VolunteerID: volunteerID,
			Status:      domain.ApplicationPending,
			Skills:      datatypes.JSON(skills),
			Message:     in.Message,
		}
		if err := tx.Create(&app).Error; err != nil {
			// Unique index on (event_id, volunteer_id) backstops the
			// pre-check under concurrent applies by the same volunteer.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateApplication
			}
			return err
		}

		return writeAudit(tx, &app, domain.AuditApplied, volunteerID, map[string]interface{}{
			"status": string(domain.ApplicationPending),
		})
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, eventID)
	s.notify(ctx, "application received", func() error {
		return s.Notifier.ApplicationReceived(ctx, &event, &app)
	})
	return &app, nil
}

// DecideResult reports the state after a successful Decide or Reset.
type DecideResult struct {
	Application domain.Application `json:"application"`
	Event       domain.Event       `json:"event"`
	Summary     CapacitySummary    `json:"summary"`
}

// Decide approves or rejects a pending application. Approval recounts the
// authoritative approved total inside the transaction and fails with
// ErrCapacityExceeded when no slot remains. Reaching the cap flips the event
// to full. Exactly one notification is dispatched per successful decision.
func (s *Service) Decide(ctx context.Context, eventID, applicationID, actorID uuid.UUID, decision Decision, feedback *string) (*DecideResult, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, ErrInvalidDecision
	}

	s.Locks.Lock(eventID.String())
	defer s.Locks.Unlock(eventID.String())

	var result DecideResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, event, err := s.loadPair(tx, eventID, applicationID)
		if err != nil {
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}
		if !event.Status.Open() {
			return ErrEventClosed
		}
		if app.Status != domain.ApplicationPending {
			return ErrInvalidState
		}

		from := app.Status
		auditType := domain.AuditRejected
		if decision == DecisionApprove {
			n, err := approvedCount(tx, eventID)
			if err != nil {
				return err
			}
			if n >= event.MaxVolunteers {
				return ErrCapacityExceeded
			}
			app.Status = domain.ApplicationApproved
			auditType = domain.AuditApproved
		} else {
			app.Status = domain.ApplicationRejected
		}
		app.Feedback = feedback
		if err := tx.Save(app).Error; err != nil {
			return err
		}

		summary, err := s.reconcileEvent(tx, event)
		if err != nil {
			return err
		}

		if err := writeAudit(tx, app, auditType, actorID, map[string]interface{}{
			"from":           string(from),
			"to":             string(app.Status),
			"feedback":       feedback,
			"approved_count": summary.ApprovedCount,
		}); err != nil {
			return err
		}

		result = DecideResult{Application: *app, Event: *event, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, eventID)
	s.notify(ctx, "decision", func() error {
		return s.Notifier.DecisionMade(ctx, &result.Event, &result.Application, decision)
	})
	return &result, nil
}

// Reset re-opens a decided application back to pending. Undoing an approval
// frees a slot and flips a full event back to active.
func (s *Service) Reset(ctx context.Context, eventID, applicationID, actorID uuid.UUID) (*DecideResult, error) {
	s.Locks.Lock(eventID.String())
	defer s.Locks.Unlock(eventID.String())

	var result DecideResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, event, err := s.loadPair(tx, eventID, applicationID)
		if err != nil {
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}
		if !event.Status.Open() {
			return ErrEventClosed
		}
		if app.Status != domain.ApplicationApproved && app.Status != domain.ApplicationRejected {
			return ErrNotDecided
		}

		from := app.Status
		app.Status = domain.ApplicationPending
		app.Feedback = nil
		if err := tx.Save(app).Error; err != nil {
			return err
		}

		summary, err := s.reconcileEvent(tx, event)
		if err != nil {
			return err
		}

		if err := writeAudit(tx, app, domain.AuditReset, actorID, map[string]interface{}{
			"from":           string(from),
			"to":             string(domain.ApplicationPending),
			"approved_count": summary.ApprovedCount,
		}); err != nil {
			return err
		}

		result = DecideResult{Application: *app, Event: *event, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, eventID)
	s.notify(ctx, "reset", func() error {
		return s.Notifier.DecisionReset(ctx, &result.Event, &result.Application)
	})
	return &result, nil
}

// RecordHours sets the contributed hours of an approved application. It is
// independent of the lifecycle: no status change, no capacity effect.
func (s *Service) RecordHours(ctx context.Context, eventID, applicationID, actorID uuid.UUID, hours float64) (*domain.Application, error) {
	if hours < 0 {
		return nil, ErrInvalidHours
	}

	var app *domain.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event *domain.Event
		var err error
		app, event, err = s.loadPair(tx, eventID, applicationID)
		if err != nil {
			return err
		}
		if event.OrganizerID != actorID {
			return ErrForbidden
		}
		if app.Status != domain.ApplicationApproved {
			return ErrNotApproved
		}

		app.HoursContributed = hours
		if err := tx.Save(app).Error; err != nil {
			return err
		}
		return writeAudit(tx, app, domain.AuditHoursRecorded, actorID, map[string]interface{}{
			"hours": hours,
		})
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the event's applications with the derived capacity summary.
// Organizer only.
func (s *Service) List(ctx context.Context, eventID, actorID uuid.UUID) ([]domain.Application, CapacitySummary, error) {
	var event domain.Event
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CapacitySummary{}, ErrEventNotFound
		}
		return nil, CapacitySummary{}, err
	}
	if event.OrganizerID != actorID {
		return nil, CapacitySummary{}, ErrForbidden
	}

	var apps []domain.Application
	if err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&apps).Error; err != nil {
		return nil, CapacitySummary{}, err
	}

	summary, err := s.Summary(ctx, eventID)
	if err != nil {
		return nil, CapacitySummary{}, err
	}
	return apps, summary, nil
}

// ListByVolunteer returns the volunteer's own applications, newest first.
func (s *Service) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]domain.Application, error) {
	var apps []domain.Application
	if err := s.DB.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Summary builds the capacity read model for one event, using the Redis cache
// when warm. Decisions never read from here.
func (s *Service) Summary(ctx context.Context, eventID uuid.UUID) (CapacitySummary, error) {
	if cached, ok := s.Cache.Get(ctx, eventID); ok {
		return *cached, nil
	}

	var event domain.Event
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CapacitySummary{}, ErrEventNotFound
		}
		return CapacitySummary{}, err
	}
	n, err := approvedCount(s.DB.WithContext(ctx), eventID)
	if err != nil {
		return CapacitySummary{}, err
	}
	summary := buildSummary(n, event.MaxVolunteers)
	s.Cache.Put(ctx, eventID, summary)
	return summary, nil
}

// loadPair loads the application and its event, verifying the application
// belongs to the event in the URL.
func (s *Service) loadPair(tx *gorm.DB, eventID, applicationID uuid.UUID) (*domain.Application, *domain.Event, error) {
	var app domain.Application
	if err := tx.Where("application_id = ? AND event_id = ?", applicationID, eventID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, err
	}
	var event domain.Event
	if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	return &app, &event, nil
}

// reconcileEvent recounts approvals, refreshes the denormalized counter, and
// keeps status coherence: full exactly when approved == max (only while the
// event is otherwise active).
func (s *Service) reconcileEvent(tx *gorm.DB, event *domain.Event) (CapacitySummary, error) {
	n, err := approvedCount(tx, event.EventID)
	if err != nil {
		return CapacitySummary{}, err
	}
	event.CurrentVolunteers = n
	if event.Status == domain.EventActive || event.Status == domain.EventFull {
		if n >= event.MaxVolunteers {
			event.Status = domain.EventFull
		} else {
			event.Status = domain.EventActive
		}
	}
	if err := tx.Save(event).Error; err != nil {
		return CapacitySummary{}, err
	}
	return buildSummary(n, event.MaxVolunteers), nil
}

func writeAudit(tx *gorm.DB, app *domain.Application, eventType string, actorID uuid.UUID, data map[string]interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return tx.Create(&domain.ApplicationEvent{
		ApplicationID: app.ApplicationID,
		EventID:       app.EventID,
		EventType:     eventType,
		EventData:     datatypes.JSON(b),
		ActorID:       actorID,
	}).Error
}

// notify runs one post-commit side effect, logging (not returning) failures.
func (s *Service) notify(ctx context.Context, kind string, fn func() error) {
	if s.Notifier == nil {
		return
	}
	if err := fn(); err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("notification dispatch failed")
	}
}
