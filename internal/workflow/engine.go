// Package workflow holds the pure decision logic for ticket transitions.
//
// The whole lifecycle is a single declarative table keyed by (status,
// action): role guard, target status, payload application. Screens enumerate
// LegalActions and render one control per entry instead of re-encoding the
// rules per view.
package workflow

import (
	"strings"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// Action names a workflow edge.
type Action string

const (
	ActionApprove     Action = "APPROVE"
	ActionReject      Action = "REJECT"
	ActionAssign      Action = "ASSIGN"
	ActionStartWork   Action = "START_WORK"
	ActionComplete    Action = "COMPLETE"
	ActionVerifyClose Action = "VERIFY_CLOSE"
	ActionReopen      Action = "REOPEN"
)

// IsValidAction reports whether a is a known action.
func IsValidAction(a Action) bool {
	switch a {
	case ActionApprove, ActionReject, ActionAssign, ActionStartWork, ActionComplete, ActionVerifyClose, ActionReopen:
		return true
	default:
		return false
	}
}

// Payload carries transition-specific input.
type Payload struct {
	// Assignee is required by ASSIGN.
	Assignee string
	// ProofImage is required by COMPLETE.
	ProofImage string
}

// Patch is the mutation a successful decision produces. Decide never touches
// the ticket itself; the store applies the patch under its own lock.
type Patch struct {
	Status     domain.TicketStatus
	AssignedTo *string
	ProofImage *string
	// ClearWork drops assignment and proof when a ticket re-enters the
	// pipeline, keeping AssignedTo bound to the post-assign statuses.
	ClearWork bool
}

type rule struct {
	role  domain.Role
	to    domain.TicketStatus
	apply func(ticket *domain.Ticket, actor domain.Actor, payload Payload, patch *Patch) error
}

// transitions is the single source of truth for the lifecycle. REJECTED has
// no entry: it is terminal.
var transitions = map[domain.TicketStatus]map[Action]rule{
	domain.TicketStatusPending: {
		ActionApprove: {role: domain.RoleAdmin, to: domain.TicketStatusApproved},
		ActionReject:  {role: domain.RoleAdmin, to: domain.TicketStatusRejected},
	},
	domain.TicketStatusApproved: {
		ActionAssign: {role: domain.RoleMaintenance, to: domain.TicketStatusAssigned, apply: applyAssignee},
	},
	domain.TicketStatusAssigned: {
		ActionStartWork: {role: domain.RoleMaintenance, to: domain.TicketStatusInProgress},
	},
	domain.TicketStatusInProgress: {
		ActionComplete: {role: domain.RoleMaintenance, to: domain.TicketStatusCompleted, apply: applyProof},
	},
	domain.TicketStatusCompleted: {
		ActionVerifyClose: {role: domain.RoleAdmin, to: domain.TicketStatusClosed},
	},
	domain.TicketStatusClosed: {
		ActionReopen: {role: domain.RoleTeacher, to: domain.TicketStatusReopened, apply: applyReopen},
	},
	domain.TicketStatusReopened: {
		ActionApprove: {role: domain.RoleAdmin, to: domain.TicketStatusApproved},
	},
}

// actionOrder fixes enumeration order for LegalActions.
var actionOrder = []Action{
	ActionApprove,
	ActionReject,
	ActionAssign,
	ActionStartWork,
	ActionComplete,
	ActionVerifyClose,
	ActionReopen,
}

// Decide validates action against the ticket's current status and the
// actor's role, returning the patch to apply. The ticket is never mutated;
// on any error the caller must leave it untouched.
func Decide(ticket *domain.Ticket, actor domain.Actor, action Action, payload Payload) (Patch, error) {
	matched, ok := transitions[ticket.Status][action]
	if !ok || matched.role != actor.Role {
		return Patch{}, errorutil.NewIllegalTransition(string(ticket.Status), string(action), string(actor.Role))
	}
	patch := Patch{Status: matched.to}
	if matched.apply != nil {
		if err := matched.apply(ticket, actor, payload, &patch); err != nil {
			return Patch{}, err
		}
	}
	return patch, nil
}

// LegalActions enumerates the actions role may perform on a ticket in the
// given status, in table order. Owner-only guards (REOPEN) are still checked
// at Decide time.
func LegalActions(status domain.TicketStatus, role domain.Role) []Action {
	rules := transitions[status]
	actions := make([]Action, 0, len(rules))
	for _, action := range actionOrder {
		if matched, ok := rules[action]; ok && matched.role == role {
			actions = append(actions, action)
		}
	}
	return actions
}

func applyAssignee(_ *domain.Ticket, _ domain.Actor, payload Payload, patch *Patch) error {
	assignee := strings.TrimSpace(payload.Assignee)
	if assignee == "" {
		return errorutil.NewValidationError("assignee required", map[string]any{"field": "assignee"})
	}
	patch.AssignedTo = &assignee
	return nil
}

func applyProof(_ *domain.Ticket, _ domain.Actor, payload Payload, patch *Patch) error {
	proof := strings.TrimSpace(payload.ProofImage)
	if proof == "" {
		return errorutil.NewMissingProof()
	}
	patch.ProofImage = &proof
	return nil
}

func applyReopen(ticket *domain.Ticket, actor domain.Actor, _ Payload, patch *Patch) error {
	if actor.Name != ticket.TeacherName {
		return errorutil.NewIllegalTransition(string(ticket.Status), string(ActionReopen), string(actor.Role))
	}
	patch.ClearWork = true
	return nil
}
