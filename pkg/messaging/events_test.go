package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(EventRestockApproved, "pharmacy-api", "corr-1", RestockTransitionEvent{
		RequestID: "r-1",
		Status:    "APPROVED",
		Quantity:  12,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventRestockApproved, event.Type)
	assert.Equal(t, "corr-1", event.CorrelationID)

	var data RestockTransitionEvent
	require.NoError(t, event.UnmarshalData(&data))
	assert.Equal(t, "r-1", data.RequestID)
	assert.Equal(t, 12, data.Quantity)
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, CorrelationID(context.Background()))

	ctx := context.WithValue(context.Background(), httputil.RequestIDKey, "req-9")
	assert.Equal(t, "req-9", CorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "explicit")
	assert.Equal(t, "explicit", CorrelationID(ctx))
}
