// Package engine drives the lead lifecycle: it triages unread inbound
// mail, advances stages, sends due pending emails, and serializes all
// outbound mail through a throttled dispatcher.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ReachPilot/internal/metrics"
	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

// LeadStore is the durable lead record store, keyed by lowercased
// email. Upsert has merge semantics; see models.LeadPatch.
type LeadStore interface {
	GetLead(ctx context.Context, email string) (*models.Lead, error)
	UpsertLead(ctx context.Context, patch models.LeadPatch) (*models.Lead, error)
	ListPendingDue(ctx context.Context, now time.Time) ([]models.Lead, error)
}

// Mailbox is the external mail provider.
type Mailbox interface {
	ListUnread(ctx context.Context, max int) ([]models.Message, error)
	Send(ctx context.Context, out models.Outbound) error
	MarkRead(ctx context.Context, id string) error
}

// TemplateResolver maps a stage, or a pending email type, plus lead
// context to a subject/body pair. A false return means no template
// exists and nothing should be sent.
type TemplateResolver interface {
	ForStage(s stage.Stage, lead *models.Lead) (models.Content, bool)
	ForPendingType(t models.PendingEmailType, lead *models.Lead) (models.Content, bool)
}

// ErrSweepInProgress is returned when a sweep is requested while the
// previous one is still running against the store.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Options tune a single engine instance.
type Options struct {
	// InboxBatchSize bounds how many unread messages one sweep fetches.
	InboxBatchSize int

	// Delays between an external trigger and the pending email it
	// schedules.
	SkillOfferDelay time.Duration
	ReviewDelay     time.Duration
	RejectDelay     time.Duration
}

func (o *Options) fill() {
	if o.InboxBatchSize <= 0 {
		o.InboxBatchSize = 50
	}
	if o.SkillOfferDelay <= 0 {
		o.SkillOfferDelay = time.Hour
	}
	if o.ReviewDelay <= 0 {
		o.ReviewDelay = time.Hour
	}
	if o.RejectDelay <= 0 {
		o.RejectDelay = 24 * time.Hour
	}
}

// Engine owns every mutation of the lead store. A single engine
// instance with its sweep mutex is what guarantees the no-overlap
// invariant: two sweeps never race on the same lead record.
type Engine struct {
	store     LeadStore
	mailbox   Mailbox
	templates TemplateResolver
	dispatch  *Dispatcher
	log       *zap.Logger
	opts      Options

	now func() time.Time

	sweepMu sync.Mutex
}

func New(
	store LeadStore,
	mailbox Mailbox,
	templates TemplateResolver,
	dispatch *Dispatcher,
	log *zap.Logger,
	opts Options,
) *Engine {
	opts.fill()
	return &Engine{
		store:     store,
		mailbox:   mailbox,
		templates: templates,
		dispatch:  dispatch,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// SweepStats aggregates one inbox pass and one pending pass.
type SweepStats struct {
	Inbox   InboxStats   `json:"inbox"`
	Pending PendingStats `json:"pending"`
}

// RunSweep runs the inbound processor and then the pending-email
// scheduler, strictly in that order. If another sweep is still running
// it returns ErrSweepInProgress instead of queueing behind it.
func (e *Engine) RunSweep(ctx context.Context) (SweepStats, error) {
	if !e.sweepMu.TryLock() {
		return SweepStats{}, ErrSweepInProgress
	}
	defer e.sweepMu.Unlock()

	var stats SweepStats

	inbox, err := e.ProcessInbox(ctx)
	stats.Inbox = inbox
	if err != nil {
		metrics.SweepFailures.Inc()
		return stats, err
	}

	pending, err := e.ProcessPending(ctx)
	stats.Pending = pending
	if err != nil {
		metrics.SweepFailures.Inc()
		return stats, err
	}

	metrics.Sweeps.Inc()
	return stats, nil
}

// namePatch fills a lead's name from an inbound message, but only when
// the record has none yet.
func namePatch(lead *models.Lead, name string) *string {
	if name == "" {
		return nil
	}
	if lead != nil && lead.Name != "" {
		return nil
	}
	return &name
}
