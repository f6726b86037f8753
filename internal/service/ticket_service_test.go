package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	"github.com/spec-kit/maintenance-tracker/internal/workflow"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

var (
	teacher     = domain.Actor{Name: "J. Doe", Role: domain.RoleTeacher}
	admin       = domain.Actor{Name: "Priya Admin", Role: domain.RoleAdmin}
	maintenance = domain.Actor{Name: "Facilities Desk", Role: domain.RoleMaintenance}
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestService() (*TicketService, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repository.NewMemoryTicketRepository(),
		Dispatcher: dispatcher,
	})
	return svc, dispatcher
}

func createSample(t *testing.T, svc *TicketService) *domain.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), teacher, TicketCreateInput{
		Issue:       "Projector broken",
		Category:    domain.CategoryHardware,
		Description: "No image",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketStartsPending(t *testing.T) {
	svc, dispatcher := newTestService()
	ticket := createSample(t, svc)

	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, "J. Doe", ticket.TeacherName)
	assert.Nil(t, ticket.AssignedTo)
	assert.Len(t, dispatcher.byType(events.EventTicketCreated), 1)
}

func TestCreateTicketRequiresTeacherRole(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateTicket(context.Background(), admin, TicketCreateInput{
		Issue:       "x",
		Category:    domain.CategoryOther,
		Description: "y",
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "FORBIDDEN"))
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateTicket(context.Background(), teacher, TicketCreateInput{
		Issue:       "",
		Category:    domain.CategoryHardware,
		Description: "No image",
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "VALIDATION_FAILED"))
}

func TestApproveTransition(t *testing.T) {
	svc, dispatcher := newTestService()
	ticket := createSample(t, svc)

	updated, err := svc.Transition(context.Background(), admin, ticket.ID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusApproved, updated.Status)
	assert.Len(t, dispatcher.byType(events.EventTicketStatusChanged), 1)
}

func TestAssignSetsAssignee(t *testing.T) {
	svc, dispatcher := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	_, err := svc.Transition(ctx, admin, ticket.ID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, maintenance, ticket.ID, workflow.ActionAssign, workflow.Payload{Assignee: "Sarah"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "Sarah", *updated.AssignedTo)
	assert.Len(t, dispatcher.byType(events.EventTicketAssigned), 1)
}

func TestCompleteWithoutProofLeavesStatus(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	_, err := svc.Transition(ctx, admin, ticket.ID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, maintenance, ticket.ID, workflow.ActionAssign, workflow.Payload{Assignee: "Sarah"})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, maintenance, ticket.ID, workflow.ActionStartWork, workflow.Payload{})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, maintenance, ticket.ID, workflow.ActionComplete, workflow.Payload{})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "MISSING_PROOF"))

	stored, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	assert.Nil(t, stored.ProofImage)

	updated, err := svc.Transition(ctx, maintenance, ticket.ID, workflow.ActionComplete, workflow.Payload{ProofImage: "blob:proof/1"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, updated.Status)
	require.NotNil(t, updated.ProofImage)
	assert.Equal(t, "blob:proof/1", *updated.ProofImage)
}

func TestRepeatedApproveIsIllegalAndLeavesTimestamp(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	approved, err := svc.Transition(ctx, admin, ticket.ID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, admin, ticket.ID, workflow.ActionApprove, workflow.Payload{})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "ILLEGAL_TRANSITION"))

	stored, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusApproved, stored.Status)
	assert.Equal(t, approved.LastUpdated, stored.LastUpdated)
}

func TestTransitionUnknownAction(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	_, err := svc.Transition(context.Background(), admin, ticket.ID, workflow.Action("ESCALATE"), workflow.Payload{})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "VALIDATION_FAILED"))
}

func TestTransitionNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Transition(context.Background(), admin, "TKT-MISSING1", workflow.ActionApprove, workflow.Payload{})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "NOT_FOUND"))
}

func TestFullLifecycleWithReopen(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	steps := []struct {
		actor   domain.Actor
		action  workflow.Action
		payload workflow.Payload
		want    domain.TicketStatus
	}{
		{admin, workflow.ActionApprove, workflow.Payload{}, domain.TicketStatusApproved},
		{maintenance, workflow.ActionAssign, workflow.Payload{Assignee: "Sarah"}, domain.TicketStatusAssigned},
		{maintenance, workflow.ActionStartWork, workflow.Payload{}, domain.TicketStatusInProgress},
		{maintenance, workflow.ActionComplete, workflow.Payload{ProofImage: "blob:proof"}, domain.TicketStatusCompleted},
		{admin, workflow.ActionVerifyClose, workflow.Payload{}, domain.TicketStatusClosed},
		{teacher, workflow.ActionReopen, workflow.Payload{}, domain.TicketStatusReopened},
		{admin, workflow.ActionApprove, workflow.Payload{}, domain.TicketStatusApproved},
	}
	for _, step := range steps {
		updated, err := svc.Transition(ctx, step.actor, ticket.ID, step.action, step.payload)
		require.NoError(t, err, "action %s", step.action)
		assert.Equal(t, step.want, updated.Status)
	}

	// Reopening cleared the previous cycle's assignment and proof.
	stored, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTo)
	assert.Nil(t, stored.ProofImage)
}

func TestPatchTicketRestrictedToOwnerFields(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	newDescription := "Actually the lamp is dead"
	updated, err := svc.PatchTicket(ctx, teacher, ticket.ID, repository.TicketPatchInput{Description: &newDescription})
	require.NoError(t, err)
	assert.Equal(t, newDescription, updated.Description)
	assert.Equal(t, domain.TicketStatusPending, updated.Status)

	_, err = svc.PatchTicket(ctx, domain.Actor{Name: "Someone Else", Role: domain.RoleTeacher}, ticket.ID, repository.TicketPatchInput{Description: &newDescription})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "FORBIDDEN"))

	_, err = svc.PatchTicket(ctx, admin, ticket.ID, repository.TicketPatchInput{Description: &newDescription})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "FORBIDDEN"))
}

func TestListTicketsScopedAndFiltered(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := createSample(t, svc)
	other := domain.Actor{Name: "Jane Smith", Role: domain.RoleTeacher}
	_, err := svc.CreateTicket(ctx, other, TicketCreateInput{
		Issue:       "AC leaking",
		Category:    domain.CategoryAppliance,
		Description: "Water on desks",
	})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, admin, first.ID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)

	mine, err := svc.ListTickets(ctx, teacher, ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	queue, err := svc.ListTickets(ctx, maintenance, ListFilter{})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, domain.TicketStatusApproved, queue[0].Status)

	all, err := svc.ListTickets(ctx, admin, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListTickets(ctx, admin, ListFilter{Status: domain.TicketStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.ListTickets(ctx, admin, ListFilter{Status: "BOGUS"})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "VALIDATION_FAILED"))
}

func TestCountsSumToTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	const total = 4
	var firstID string
	for i := 0; i < total; i++ {
		ticket, err := svc.CreateTicket(ctx, teacher, TicketCreateInput{
			Issue:       "Issue",
			Category:    domain.CategoryOther,
			Description: "Details",
		})
		require.NoError(t, err)
		if i == 0 {
			firstID = ticket.ID
		}
	}
	_, err := svc.Transition(ctx, admin, firstID, workflow.ActionApprove, workflow.Payload{})
	require.NoError(t, err)

	counts, err := svc.Counts(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, total-1, counts[domain.TicketStatusPending])
	assert.Equal(t, 1, counts[domain.TicketStatusApproved])

	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, total, sum)
}

func TestLegalActionsForActor(t *testing.T) {
	svc, _ := newTestService()
	ticket := createSample(t, svc)
	ctx := context.Background()

	actions, err := svc.LegalActions(ctx, admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []workflow.Action{workflow.ActionApprove, workflow.ActionReject}, actions)

	actions, err = svc.LegalActions(ctx, maintenance, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
