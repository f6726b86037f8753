package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/pkg/errorutil"
)

// TicketCreateInput describes ticket creation fields.
type TicketCreateInput struct {
	Issue         string
	Description   string
	Category      domain.TicketCategory
	TeacherName   string
	EvidenceImage *string
}

// TicketPatchInput carries collaborator-confirmed field edits. Status and
// assignee are deliberately absent: those change only through transitions.
type TicketPatchInput struct {
	Issue         *string
	Description   *string
	EvidenceImage *string
}

// TicketRepository encapsulates ticket storage. Apply is the only
// read-modify-write primitive: the mutate callback runs under the store
// lock, so two racing transitions on one ticket can never both pass a guard
// against the same stale status.
type TicketRepository interface {
	Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error)
	Apply(ctx context.Context, id string, mutate func(ticket *domain.Ticket) error) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

type memoryTicketRepository struct {
	mu      sync.Mutex
	tickets []*domain.Ticket
	byID    map[string]*domain.Ticket
	clock   func() time.Time
}

// Option customizes the repository instance.
type Option func(*memoryTicketRepository)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(r *memoryTicketRepository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewMemoryTicketRepository builds the in-memory store. Tickets are held in
// creation order, newest first; nothing is ever physically deleted.
func NewMemoryTicketRepository(opts ...Option) TicketRepository {
	repo := &memoryTicketRepository{
		byID:  make(map[string]*domain.Ticket),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *memoryTicketRepository) Create(_ context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	issue := strings.TrimSpace(input.Issue)
	description := strings.TrimSpace(input.Description)
	teacherName := strings.TrimSpace(input.TeacherName)
	if issue == "" {
		return nil, errorutil.NewValidationError("issue required", map[string]any{"field": "issue"})
	}
	if description == "" {
		return nil, errorutil.NewValidationError("description required", map[string]any{"field": "description"})
	}
	if input.Category == "" {
		return nil, errorutil.NewValidationError("category required", map[string]any{"field": "category"})
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, errorutil.NewValidationError("unknown category", map[string]any{"category": string(input.Category)})
	}
	if teacherName == "" {
		return nil, errorutil.NewValidationError("teacher name required", map[string]any{"field": "teacher_name"})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := &domain.Ticket{
		ID:            r.nextID(),
		Issue:         issue,
		Description:   description,
		Category:      input.Category,
		Status:        domain.TicketStatusPending,
		TeacherName:   teacherName,
		EvidenceImage: input.EvidenceImage,
		LastUpdated:   r.clock(),
	}
	r.insert(ticket)
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) Apply(_ context.Context, id string, mutate func(ticket *domain.Ticket) error) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}

	// Mutate a copy; commit only on success so a failed transition leaves
	// the ticket unchanged, LastUpdated included.
	working := stored.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.LastUpdated = r.monotonicNow(stored.LastUpdated)
	*stored = *working
	return stored.Clone(), nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return stored.Clone(), nil
}

func (r *memoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket.Clone())
	}
	return out, nil
}

// insert prepends so List returns newest-created first.
func (r *memoryTicketRepository) insert(ticket *domain.Ticket) {
	r.tickets = append([]*domain.Ticket{ticket}, r.tickets...)
	r.byID[ticket.ID] = ticket
}

// nextID generates a "TKT-XXXXXXXX" key from a v4 UUID, retrying on the
// unlikely collision. Callers hold the lock.
func (r *memoryTicketRepository) nextID() string {
	for {
		id := "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		if _, exists := r.byID[id]; !exists {
			return id
		}
	}
}

// monotonicNow keeps LastUpdated non-decreasing even if the injected clock
// steps backwards.
func (r *memoryTicketRepository) monotonicNow(previous time.Time) time.Time {
	now := r.clock()
	if now.Before(previous) {
		return previous
	}
	return now
}
