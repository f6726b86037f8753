package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/workflow"
)

// seedStep replays one workflow action while seeding.
type seedStep struct {
	actor   domain.Actor
	action  workflow.Action
	payload workflow.Payload
}

// seedFixture is a demo ticket driven to its target status through the
// regular workflow, never by writing fields directly.
type seedFixture struct {
	issue       string
	description string
	category    domain.TicketCategory
	teacher     string
	steps       []seedStep
}

// Seeder populates the store with demo tickets after a startup delay,
// mimicking the initial asynchronous load of the reference UI. The load is
// one-shot and aborts cleanly if the context is cancelled before it fires.
type Seeder struct {
	service *TicketService
	delay   time.Duration
	logger  *zap.Logger
	once    sync.Once
}

// NewSeeder constructs a seeder.
func NewSeeder(service *TicketService, delay time.Duration, logger *zap.Logger) *Seeder {
	return &Seeder{service: service, delay: delay, logger: logger}
}

// Start schedules the one-time load on a background goroutine.
func (s *Seeder) Start(ctx context.Context) {
	s.once.Do(func() {
		go func() {
			timer := time.NewTimer(s.delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				s.logger.Info("seed load aborted before firing")
			case <-timer.C:
				s.Run(ctx)
			}
		}()
	})
}

// Run seeds synchronously. Exposed separately so tests and tooling can load
// fixtures without the delay.
func (s *Seeder) Run(ctx context.Context) {
	seeded := 0
	for _, fixture := range fixtures() {
		ticket, err := s.service.CreateTicket(ctx, domain.Actor{Name: fixture.teacher, Role: domain.RoleTeacher}, TicketCreateInput{
			Issue:       fixture.issue,
			Description: fixture.description,
			Category:    fixture.category,
		})
		if err != nil {
			s.logger.Warn("seed create failed", zap.String("issue", fixture.issue), zap.Error(err))
			continue
		}
		for _, step := range fixture.steps {
			if _, err := s.service.Transition(ctx, step.actor, ticket.ID, step.action, step.payload); err != nil {
				s.logger.Warn("seed transition failed",
					zap.String("ticket_id", ticket.ID),
					zap.String("action", string(step.action)),
					zap.Error(err))
				break
			}
		}
		seeded++
	}
	s.logger.Info("seed load complete", zap.Int("tickets", seeded))
}

func fixtures() []seedFixture {
	admin := domain.Actor{Name: "Priya Admin", Role: domain.RoleAdmin}
	crew := domain.Actor{Name: "Facilities Desk", Role: domain.RoleMaintenance}

	approve := seedStep{actor: admin, action: workflow.ActionApprove}
	assignTo := func(employee string) seedStep {
		return seedStep{actor: crew, action: workflow.ActionAssign, payload: workflow.Payload{Assignee: employee}}
	}
	start := seedStep{actor: crew, action: workflow.ActionStartWork}
	completeWith := func(proof string) seedStep {
		return seedStep{actor: crew, action: workflow.ActionComplete, payload: workflow.Payload{ProofImage: proof}}
	}
	verify := seedStep{actor: admin, action: workflow.ActionVerifyClose}

	return []seedFixture{
		{
			issue:       "Projector not working in Room 101",
			description: "No image on screen, power LED blinks red.",
			category:    domain.CategoryHardware,
			teacher:     "John Doe",
		},
		{
			issue:       "AC leaking in Staff Room",
			description: "Water dripping from the indoor unit onto the desks.",
			category:    domain.CategoryAppliance,
			teacher:     "Jane Smith",
			steps:       []seedStep{approve, assignTo("Sarah Technician"), start},
		},
		{
			issue:       "Broken chair in Lab 3",
			description: "Rear left leg snapped off, chair unusable.",
			category:    domain.CategoryFurniture,
			teacher:     "Mike Johnson",
			steps:       []seedStep{approve, assignTo("Mike Carpenter"), start, completeWith("blob:proof/broken-chair-fixed")},
		},
		{
			issue:       "Whiteboard needs replacement",
			description: "Surface no longer erases, permanently stained.",
			category:    domain.CategoryFurniture,
			teacher:     "Emily Davis",
			steps:       []seedStep{approve, assignTo("Mike Carpenter"), start, completeWith("blob:proof/whiteboard-replaced"), verify},
		},
		{
			issue:       "Internet slow in Library",
			description: "Pages take over a minute to load on all machines.",
			category:    domain.CategoryNetwork,
			teacher:     "Sarah Wilson",
			steps:       []seedStep{approve, assignTo("John Network")},
		},
	}
}
