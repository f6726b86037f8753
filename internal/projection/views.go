// Package projection computes read-only views over the ticket collection.
// Everything here is a pure function over a snapshot; nothing is cached.
package projection

import "github.com/spec-kit/maintenance-tracker/internal/domain"

// maintenanceVisible lists the statuses maintenance staff work from. Pending
// and rejected tickets never reach the maintenance queue.
var maintenanceVisible = map[domain.TicketStatus]struct{}{
	domain.TicketStatusApproved:   {},
	domain.TicketStatusAssigned:   {},
	domain.TicketStatusInProgress: {},
	domain.TicketStatusCompleted:  {},
	domain.TicketStatusClosed:     {},
}

// ForRole returns the subset of tickets visible to the actor. Teachers see
// the tickets they created, maintenance sees the working queue, admins see
// everything.
func ForRole(tickets []domain.Ticket, actor domain.Actor) []domain.Ticket {
	switch actor.Role {
	case domain.RoleAdmin:
		return append([]domain.Ticket(nil), tickets...)
	case domain.RoleMaintenance:
		out := make([]domain.Ticket, 0, len(tickets))
		for _, ticket := range tickets {
			if _, ok := maintenanceVisible[ticket.Status]; ok {
				out = append(out, ticket)
			}
		}
		return out
	case domain.RoleTeacher:
		out := make([]domain.Ticket, 0, len(tickets))
		for _, ticket := range tickets {
			if ticket.TeacherName == actor.Name {
				out = append(out, ticket)
			}
		}
		return out
	default:
		return []domain.Ticket{}
	}
}

// FilterStatus returns tickets matching exactly the given status. An empty
// status means no filtering.
func FilterStatus(tickets []domain.Ticket, status domain.TicketStatus) []domain.Ticket {
	if status == "" {
		return append([]domain.Ticket(nil), tickets...)
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Status == status {
			out = append(out, ticket)
		}
	}
	return out
}

// CountByStatus tallies tickets per status over the given subset. Every
// known status appears in the result, zero included, so dashboard cards
// render without key checks.
func CountByStatus(tickets []domain.Ticket) map[domain.TicketStatus]int {
	counts := make(map[domain.TicketStatus]int, len(domain.Statuses()))
	for _, status := range domain.Statuses() {
		counts[status] = 0
	}
	for _, ticket := range tickets {
		counts[ticket.Status]++
	}
	return counts
}

// timelineOrder is the canonical progress sequence rendered by the status
// timeline.
var timelineOrder = []domain.TicketStatus{
	domain.TicketStatusPending,
	domain.TicketStatusApproved,
	domain.TicketStatusAssigned,
	domain.TicketStatusInProgress,
	domain.TicketStatusCompleted,
	domain.TicketStatusClosed,
}

// TimelinePosition maps a status to its ordinal on the progress timeline.
// REOPENED restarts the pipeline at 0; REJECTED maps one past CLOSED and is
// rendered as a terminal error state rather than completed progress.
func TimelinePosition(status domain.TicketStatus) int {
	switch status {
	case domain.TicketStatusReopened:
		return 0
	case domain.TicketStatusRejected:
		return len(timelineOrder)
	}
	for i, candidate := range timelineOrder {
		if candidate == status {
			return i
		}
	}
	return 0
}

// TimelineSteps exposes the canonical progress order for rendering.
func TimelineSteps() []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), timelineOrder...)
}
