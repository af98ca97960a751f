package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ReachPilot/internal/metrics"
	"ReachPilot/internal/models"
)

// Dispatcher serializes outbound sends and spaces them by a fixed
// delay so the mailbox provider's rate limit is never hit. There is no
// automatic retry: a failed send is reported to the caller, which
// decides whether to hold state for a future sweep.
type Dispatcher struct {
	mailbox Mailbox
	limiter *rate.Limiter
	log     *zap.Logger

	mu sync.Mutex
}

// NewDispatcher builds a dispatcher with one send allowed per delay.
func NewDispatcher(mailbox Mailbox, delay time.Duration, log *zap.Logger) *Dispatcher {
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	return &Dispatcher{
		mailbox: mailbox,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		log:     log,
	}
}

// Send blocks until the inter-send delay has elapsed since the last
// send, then issues exactly one send. Waiting is cancellable through
// ctx.
func (d *Dispatcher) Send(ctx context.Context, out models.Outbound) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := d.mailbox.Send(ctx, out); err != nil {
		metrics.EmailFailures.Inc()
		return fmt.Errorf("send to %s: %w", out.To, err)
	}

	metrics.EmailsSent.Inc()
	d.log.Info("email sent",
		zap.String("to", out.To),
		zap.String("subject", out.Subject),
	)
	return nil
}
