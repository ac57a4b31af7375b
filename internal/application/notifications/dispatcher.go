package notifications

import (
	"context"
	"errors"
	"fmt"

	"volunhub-backend/internal/application/applications"
	"volunhub-backend/internal/application/emails"
	"volunhub-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Dispatcher implements the engine's Notifier: it persists an in-app
// notification row and sends the matching email. Invoked after the lifecycle
// transaction has committed; failures here never undo the transition.
type Dispatcher struct {
	DB         *gorm.DB
	Emails     emails.Sender
	AppBaseURL string
}

func (d *Dispatcher) ApplicationReceived(ctx context.Context, event *domain.Event, app *domain.Application) error {
	volunteer, err := d.user(ctx, app.VolunteerID)
	if err != nil {
		return err
	}
	organizer, err := d.user(ctx, event.OrganizerID)
	if err != nil {
		return err
	}

	d.record(ctx, domain.Notification{
		UserID:  event.OrganizerID,
		EventID: event.EventID,
		Type:    domain.NotifyApplicationReceived,
		Title:   fmt.Sprintf("New application for %s", event.Title),
		Body:    fmt.Sprintf("%s applied to volunteer.", volunteer.Fullname),
	})

	if d.Emails == nil {
		return nil
	}
	link := fmt.Sprintf("%s/events/%s/applications", d.AppBaseURL, event.EventID)
	return d.Emails.SendApplicationReceived(ctx, organizer.Email, volunteer.Fullname, event.Title, link)
}

func (d *Dispatcher) DecisionMade(ctx context.Context, event *domain.Event, app *domain.Application, decision applications.Decision) error {
	volunteer, err := d.user(ctx, app.VolunteerID)
	if err != nil {
		return err
	}

	approved := decision == applications.DecisionApprove
	notifType := domain.NotifyApplicationRejected
	title := fmt.Sprintf("Your application for %s was not selected", event.Title)
	if approved {
		notifType = domain.NotifyApplicationApproved
		title = fmt.Sprintf("Your application for %s was approved", event.Title)
	}
	feedback := ""
	if app.Feedback != nil {
		feedback = *app.Feedback
	}

	d.record(ctx, domain.Notification{
		UserID:  app.VolunteerID,
		EventID: event.EventID,
		Type:    notifType,
		Title:   title,
		Body:    feedback,
	})

	if d.Emails == nil {
		return nil
	}
	return d.Emails.SendDecision(ctx, volunteer.Email, event.Title, approved, feedback)
}

func (d *Dispatcher) DecisionReset(ctx context.Context, event *domain.Event, app *domain.Application) error {
	volunteer, err := d.user(ctx, app.VolunteerID)
	if err != nil {
		return err
	}

	d.record(ctx, domain.Notification{
		UserID:  app.VolunteerID,
		EventID: event.EventID,
		Type:    domain.NotifyApplicationReset,
		Title:   fmt.Sprintf("Your application for %s is under review again", event.Title),
	})

	if d.Emails == nil {
		return nil
	}
	return d.Emails.SendReset(ctx, volunteer.Email, event.Title)
}

func (d *Dispatcher) user(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := d.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification recipient %s not found", id)
		}
		return nil, err
	}
	return &u, nil
}

// record persists the in-app row; a failure is logged so the email attempt
// still happens.
func (d *Dispatcher) record(ctx context.Context, n domain.Notification) {
	if err := d.DB.WithContext(ctx).Create(&n).Error; err != nil {
		log.Error().Err(err).Str("type", n.Type).Msg("notification row create failed")
	}
}
