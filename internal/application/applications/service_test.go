package applications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"volunhub-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier counts dispatches per kind, safe for concurrent use.
type recordingNotifier struct {
	mu       sync.Mutex
	received int
	decided  int
	resets   int
	lastDec  Decision
}

func (n *recordingNotifier) ApplicationReceived(ctx context.Context, event *domain.Event, app *domain.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received++
	return nil
}

func (n *recordingNotifier) DecisionMade(ctx context.Context, event *domain.Event, app *domain.Application, decision Decision) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided++
	n.lastDec = decision
	return nil
}

func (n *recordingNotifier) DecisionReset(ctx context.Context, event *domain.Event, app *domain.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets++
	return nil
}

func (n *recordingNotifier) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.received, n.decided, n.resets
}

func setupEngineTest(t *testing.T) (*Service, *gorm.DB, *recordingNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Event{}, &domain.Application{},
		&domain.ApplicationEvent{}, &domain.Notification{},
	))
	notifier := &recordingNotifier{}
	svc := NewService(db, nil, notifier)
	return svc, db, notifier
}

func createEvent(t *testing.T, db *gorm.DB, organizerID uuid.UUID, maxVolunteers int) *domain.Event {
	event := &domain.Event{
		OrganizerID:   organizerID,
		Title:         "Beach Cleanup",
		MaxVolunteers: maxVolunteers,
		Status:        domain.EventActive,
		StartDate:     time.Now().Add(48 * time.Hour),
		EndDate:       time.Now().Add(54 * time.Hour),
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	event := createEvent(t, db, uuid.New(), 5)
	volunteer := uuid.New()

	app, err := svc.Apply(context.Background(), event.EventID, volunteer, ApplyInput{
		Skills:  []string{"first-aid"},
		Message: "happy to help",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)
	assert.Equal(t, event.EventID, app.EventID)
	assert.Equal(t, volunteer, app.VolunteerID)

	var audits []domain.ApplicationEvent
	require.NoError(t, db.Where("application_id = ?", app.ApplicationID).Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditApplied, audits[0].EventType)

	received, _, _ := notifier.counts()
	assert.Equal(t, 1, received)
}

func TestApply_DuplicateRejected(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	event := createEvent(t, db, uuid.New(), 5)
	volunteer := uuid.New()

	_, err := svc.Apply(context.Background(), event.EventID, volunteer, ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), event.EventID, volunteer, ApplyInput{})
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	var n int64
	db.Model(&domain.Application{}).Where("event_id = ?", event.EventID).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestApply_SameVolunteerDifferentEvents(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	volunteer := uuid.New()
	first := createEvent(t, db, uuid.New(), 5)
	second := createEvent(t, db, uuid.New(), 5)

	_, err := svc.Apply(context.Background(), first.EventID, volunteer, ApplyInput{})
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), second.EventID, volunteer, ApplyInput{})
	require.NoError(t, err)
}

func TestApply_EventNotFound(t *testing.T) {
	svc, _, _ := setupEngineTest(t)
	_, err := svc.Apply(context.Background(), uuid.New(), uuid.New(), ApplyInput{})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestApply_ClosedEventRefused(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	for _, status := range []domain.EventStatus{domain.EventCompleted, domain.EventCancelled} {
		event := createEvent(t, db, uuid.New(), 5)
		require.NoError(t, db.Model(event).Update("status", status).Error)

		_, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
		assert.ErrorIs(t, err, ErrEventClosed, "status %s", status)
	}
}

func TestApply_StartedEventRefused(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	event := createEvent(t, db, uuid.New(), 5)
	require.NoError(t, db.Model(event).Update("start_date", time.Now().Add(-time.Hour)).Error)

	_, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	assert.ErrorIs(t, err, ErrEventStarted)
}

func TestApply_FullEventStillAcceptsApplications(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 1)

	first, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	_, err = svc.Decide(context.Background(), event.EventID, first.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)

	var got domain.Event
	require.NoError(t, db.Where("event_id = ?", event.EventID).First(&got).Error)
	require.Equal(t, domain.EventFull, got.Status)

	// Capacity is a soft cap at apply time
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)
}

func TestDecide_ApproveRejectAndNotify(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)

	approved, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	rejected, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	res, err := svc.Decide(context.Background(), event.EventID, approved.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, res.Application.Status)
	assert.Equal(t, 1, res.Summary.ApprovedCount)
	assert.Equal(t, 4, res.Summary.RemainingSlots)
	assert.Equal(t, domain.EventActive, res.Event.Status)
	assert.Equal(t, 1, res.Event.CurrentVolunteers)

	feedback := "looking for locals"
	res, err = svc.Decide(context.Background(), event.EventID, rejected.ApplicationID, organizer, DecisionReject, &feedback)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, res.Application.Status)
	require.NotNil(t, res.Application.Feedback)
	assert.Equal(t, feedback, *res.Application.Feedback)
	// rejection never consumes a slot
	assert.Equal(t, 1, res.Summary.ApprovedCount)

	_, decided, _ := notifier.counts()
	assert.Equal(t, 2, decided)
	assert.Equal(t, DecisionReject, notifier.lastDec)
}

func TestDecide_ReachingCapFlipsEventFull(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 2)

	for i := 0; i < 2; i++ {
		app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
		require.NoError(t, err)
		res, err := svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, domain.EventActive, res.Event.Status)
		} else {
			assert.Equal(t, domain.EventFull, res.Event.Status)
			assert.True(t, res.Summary.IsFull)
			assert.Equal(t, 0, res.Summary.RemainingSlots)
		}
	}
}

func TestDecide_CapacityExceededLeavesPending(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 1)

	winner, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	loser, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), event.EventID, winner.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), event.EventID, loser.ApplicationID, organizer, DecisionApprove, nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	var got domain.Application
	require.NoError(t, db.Where("application_id = ?", loser.ApplicationID).First(&got).Error)
	assert.Equal(t, domain.ApplicationPending, got.Status)

	// only the successful approval notified
	_, decided, _ := notifier.counts()
	assert.Equal(t, 1, decided)

	// rejecting the loser still works on a full event
	_, err = svc.Decide(context.Background(), event.EventID, loser.ApplicationID, organizer, DecisionReject, nil)
	require.NoError(t, err)
}

func TestDecide_NonOrganizerForbidden(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	event := createEvent(t, db, uuid.New(), 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, uuid.New(), DecisionApprove, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDecide_AlreadyDecidedConflict(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)

	// retransmitted decision is a conflict, not a second transition
	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionReject, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, decided, _ := notifier.counts()
	assert.Equal(t, 1, decided)
}

func TestDecide_InvalidDecision(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, Decision("maybe"), nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecide_ClosedEventRefused(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Event{}).Where("event_id = ?", event.EventID).Update("status", domain.EventCancelled).Error)

	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestDecide_ApplicationEventMismatch(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	other := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), other.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestReset_FreesSlotAndReopensEvent(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 1)

	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	feedback := "welcome aboard"
	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, &feedback)
	require.NoError(t, err)

	res, err := svc.Reset(context.Background(), event.EventID, app.ApplicationID, organizer)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, res.Application.Status)
	assert.Nil(t, res.Application.Feedback)
	assert.Equal(t, 0, res.Summary.ApprovedCount)
	assert.Equal(t, domain.EventActive, res.Event.Status)

	_, _, resets := notifier.counts()
	assert.Equal(t, 1, resets)

	// the freed slot can be consumed again
	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)
}

func TestReset_PendingNotDecided(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.Reset(context.Background(), event.EventID, app.ApplicationID, organizer)
	assert.ErrorIs(t, err, ErrNotDecided)
}

func TestRecordHours(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, err = svc.RecordHours(context.Background(), event.EventID, app.ApplicationID, organizer, 4)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)

	_, err = svc.RecordHours(context.Background(), event.EventID, app.ApplicationID, organizer, -1)
	assert.ErrorIs(t, err, ErrInvalidHours)
	_, err = svc.RecordHours(context.Background(), event.EventID, app.ApplicationID, uuid.New(), 4)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.RecordHours(context.Background(), event.EventID, app.ApplicationID, organizer, 4.5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.HoursContributed)
	// hours are bookkeeping, not a lifecycle transition
	assert.Equal(t, domain.ApplicationApproved, got.Status)
}

func TestList_OrganizerOnly(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 5)
	_, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	_, _, err = svc.List(context.Background(), event.EventID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	apps, summary, err := svc.List(context.Background(), event.EventID, organizer)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 0, summary.ApprovedCount)
	assert.Equal(t, 5, summary.MaxVolunteers)
}

func TestListByVolunteer(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	volunteer := uuid.New()
	first := createEvent(t, db, uuid.New(), 5)
	second := createEvent(t, db, uuid.New(), 5)

	_, err := svc.Apply(context.Background(), first.EventID, volunteer, ApplyInput{})
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), second.EventID, volunteer, ApplyInput{})
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), first.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	apps, err := svc.ListByVolunteer(context.Background(), volunteer)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestConcurrentApprovals_OneSlot(t *testing.T) {
	svc, db, notifier := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 1)

	first, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	second, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{first.ApplicationID, second.ApplicationID} {
		wg.Add(1)
		go func(appID uuid.UUID) {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), event.EventID, appID, organizer, DecisionApprove, nil)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var ok, exceeded int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCapacityExceeded):
			exceeded++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, exceeded)

	var approved int64
	db.Model(&domain.Application{}).
		Where("event_id = ? AND status = ?", event.EventID, domain.ApplicationApproved).
		Count(&approved)
	assert.Equal(t, int64(1), approved)

	var got domain.Event
	require.NoError(t, db.Where("event_id = ?", event.EventID).First(&got).Error)
	assert.Equal(t, domain.EventFull, got.Status)

	_, decided, _ := notifier.counts()
	assert.Equal(t, 1, decided)
}

func TestSummary_Uncached(t *testing.T) {
	svc, db, _ := setupEngineTest(t)
	organizer := uuid.New()
	event := createEvent(t, db, organizer, 3)
	app, err := svc.Apply(context.Background(), event.EventID, uuid.New(), ApplyInput{})
	require.NoError(t, err)
	_, err = svc.Decide(context.Background(), event.EventID, app.ApplicationID, organizer, DecisionApprove, nil)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, CapacitySummary{ApprovedCount: 1, MaxVolunteers: 3, RemainingSlots: 2, IsFull: false}, summary)

	_, err = svc.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}
