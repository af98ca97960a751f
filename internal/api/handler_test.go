package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ReachPilot/internal/engine"
	"ReachPilot/internal/models"
)

// MockFunnel
type MockFunnel struct {
	mock.Mock
}

func (m *MockFunnel) RecordAssessment(ctx context.Context, email, name string, score float64) error {
	args := m.Called(ctx, email, name, score)
	return args.Error(0)
}

func (m *MockFunnel) RecordSkillAssessment(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockFunnel) RecordPayment(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockFunnel) RecordRejection(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockFunnel) ImportLeads(ctx context.Context, rows []models.ImportRow) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockFunnel) RunSweep(ctx context.Context) (engine.SweepStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(engine.SweepStats), args.Error(1)
}

func newTestServer(funnel *MockFunnel) *httptest.Server {
	h := &Handler{Funnel: funnel, Log: zap.NewNop()}
	mux := http.NewServeMux()
	h.Register(mux)
	return httptest.NewServer(mux)
}

func TestAssessmentEvent(t *testing.T) {
	funnel := new(MockFunnel)
	funnel.On("RecordAssessment", mock.Anything, "a@x.com", "Ada", 82.5).Return(nil)

	srv := newTestServer(funnel)
	defer srv.Close()

	body := `{"email":"a@x.com","name":"Ada","score":82.5}`
	resp, err := http.Post(srv.URL+"/events/assessment", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	funnel.AssertExpectations(t)
}

func TestAssessmentEventRequiresEmail(t *testing.T) {
	funnel := new(MockFunnel)

	srv := newTestServer(funnel)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/events/assessment", "application/json", strings.NewReader(`{"score":10}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	funnel.AssertNotCalled(t, "RecordAssessment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentEvent(t *testing.T) {
	funnel := new(MockFunnel)
	funnel.On("RecordPayment", mock.Anything, "a@x.com").Return(nil)

	srv := newTestServer(funnel)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/events/payment", "application/json", strings.NewReader(`{"email":"a@x.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	funnel.AssertExpectations(t)
}

func TestImportLeads(t *testing.T) {
	funnel := new(MockFunnel)
	funnel.On("ImportLeads", mock.Anything, []models.ImportRow{
		{Email: "a@x.com", Name: "Ada"},
	}).Return(1, nil)

	srv := newTestServer(funnel)
	defer srv.Close()

	csv := "Email,Name\na@x.com,Ada\n"
	resp, err := http.Post(srv.URL+"/leads/import", "text/csv", strings.NewReader(csv))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	funnel.AssertExpectations(t)
}

func TestRunSweepConflict(t *testing.T) {
	funnel := new(MockFunnel)
	funnel.On("RunSweep", mock.Anything).Return(engine.SweepStats{}, engine.ErrSweepInProgress)

	srv := newTestServer(funnel)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sweep", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(new(MockFunnel))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
