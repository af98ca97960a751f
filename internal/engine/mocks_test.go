package engine

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// MockLeadStore
type MockLeadStore struct {
	mock.Mock
	Upserts []models.LeadPatch
}

func (m *MockLeadStore) GetLead(ctx context.Context, email string) (*models.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadStore) UpsertLead(ctx context.Context, patch models.LeadPatch) (*models.Lead, error) {
	m.Upserts = append(m.Upserts, patch)
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadStore) ListPendingDue(ctx context.Context, now time.Time) ([]models.Lead, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

// MockMailbox
type MockMailbox struct {
	mock.Mock
	Sends []models.Outbound
	Reads []string
}

func (m *MockMailbox) ListUnread(ctx context.Context, max int) ([]models.Message, error) {
	args := m.Called(ctx, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMailbox) Send(ctx context.Context, out models.Outbound) error {
	m.Sends = append(m.Sends, out)
	args := m.Called(ctx, out)
	return args.Error(0)
}

func (m *MockMailbox) MarkRead(ctx context.Context, id string) error {
	m.Reads = append(m.Reads, id)
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTemplates
type MockTemplates struct {
	mock.Mock
}

func (m *MockTemplates) ForStage(s stage.Stage, lead *models.Lead) (models.Content, bool) {
	args := m.Called(s, lead)
	return args.Get(0).(models.Content), args.Bool(1)
}

func (m *MockTemplates) ForPendingType(t models.PendingEmailType, lead *models.Lead) (models.Content, bool) {
	args := m.Called(t, lead)
	return args.Get(0).(models.Content), args.Bool(1)
}

func newTestEngine(store *MockLeadStore, box *MockMailbox, tmpl *MockTemplates) *Engine {
	log := zap.NewNop()
	dispatcher := NewDispatcher(box, time.Millisecond, log)
	eng := New(store, box, tmpl, dispatcher, log, Options{
		InboxBatchSize:  10,
		SkillOfferDelay: time.Hour,
		ReviewDelay:     2 * time.Hour,
		RejectDelay:     24 * time.Hour,
	})
	eng.now = func() time.Time { return fixedNow }
	return eng
}

func leadAt(email string, s stage.Stage) *models.Lead {
	return &models.Lead{
		Email:         email,
		Stage:         s,
		PaymentStatus: "unpaid",
	}
}
