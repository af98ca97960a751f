package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ReachPilot/internal/models"
)

func TestDispatcherSend(t *testing.T) {
	box := new(MockMailbox)
	box.On("Send", mock.Anything, mock.Anything).Return(nil)

	d := NewDispatcher(box, time.Millisecond, zap.NewNop())

	err := d.Send(context.Background(), models.Outbound{To: "a@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	require.Len(t, box.Sends, 1)
	assert.Equal(t, "a@x.com", box.Sends[0].To)
}

func TestDispatcherWrapsSendError(t *testing.T) {
	box := new(MockMailbox)
	box.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	d := NewDispatcher(box, time.Millisecond, zap.NewNop())

	err := d.Send(context.Background(), models.Outbound{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@x.com")
}

func TestDispatcherSpacesSends(t *testing.T) {
	box := new(MockMailbox)
	box.On("Send", mock.Anything, mock.Anything).Return(nil)

	delay := 50 * time.Millisecond
	d := NewDispatcher(box, delay, zap.NewNop())

	start := time.Now()
	require.NoError(t, d.Send(context.Background(), models.Outbound{To: "a@x.com"}))
	require.NoError(t, d.Send(context.Background(), models.Outbound{To: "b@x.com"}))

	// The second send must wait out the inter-send delay.
	assert.GreaterOrEqual(t, time.Since(start), delay)
	require.Len(t, box.Sends, 2)
}

func TestDispatcherCancelledContext(t *testing.T) {
	box := new(MockMailbox)

	// A long delay with the burst already spent forces a wait.
	d := NewDispatcher(box, time.Hour, zap.NewNop())
	d.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Send(ctx, models.Outbound{To: "a@x.com"})
	require.Error(t, err)
	assert.Empty(t, box.Sends)
}
