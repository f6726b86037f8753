package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

func sampleEvent() Event {
	return Event{
		ID:        "evt-1",
		Type:      EventTicketStatusChanged,
		TicketID:  "TKT-ABCD1234",
		Actor:     Actor{Name: "Priya Admin", Role: domain.RoleAdmin},
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Payload: TicketStatusChangedPayload{
			Action:    "APPROVE",
			OldStatus: domain.TicketStatusPending,
			NewStatus: domain.TicketStatusApproved,
		},
	}
}

func TestRedisDispatcherForwardsEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	event := sampleEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	mock.ExpectPublish("tickets.events", payload).SetVal(1)

	dispatcher := NewRedisDispatcher(NewInMemoryDispatcher(), client, "", zap.NewNop())

	delivered := 0
	dispatcher.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		delivered++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), event))
	assert.Equal(t, 1, delivered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDispatcherUsesConfiguredChannel(t *testing.T) {
	client, mock := redismock.NewClientMock()
	event := sampleEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	mock.ExpectPublish("custom.channel", payload).SetVal(1)

	dispatcher := NewRedisDispatcher(NewInMemoryDispatcher(), client, "custom.channel", zap.NewNop())
	require.NoError(t, dispatcher.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDispatcherServesLocalSubscribersOnRedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	event := sampleEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	mock.ExpectPublish("tickets.events", payload).SetErr(errors.New("connection refused"))

	dispatcher := NewRedisDispatcher(NewInMemoryDispatcher(), client, DefaultChannel, zap.NewNop())

	delivered := 0
	dispatcher.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		delivered++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), event))
	assert.Equal(t, 1, delivered, "local delivery must not depend on redis")
	assert.NoError(t, mock.ExpectationsWereMet())
}
