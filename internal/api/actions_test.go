package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touchbase/internal/config"
	"touchbase/internal/types"
)

// --- Mock repo ---

type mockActionRepo struct {
	inserted  []*types.Action
	insertErr error

	byID   map[string]*types.Action
	listed []*types.Action

	lastListTenant string
	lastListStatus types.ActionStatus
	lastListLimit  int
}

func (m *mockActionRepo) Insert(_ context.Context, a *types.Action) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	a.CreatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m.inserted = append(m.inserted, a)
	return nil
}

func (m *mockActionRepo) GetByID(_ context.Context, tenantID, actionID string) (*types.Action, error) {
	if a, ok := m.byID[tenantID+"/"+actionID]; ok {
		return a, nil
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundAction, "action not found", nil)
}

func (m *mockActionRepo) ListByTenant(_ context.Context, tenantID string, status types.ActionStatus, limit int) ([]*types.Action, error) {
	m.lastListTenant = tenantID
	m.lastListStatus = status
	m.lastListLimit = limit
	return m.listed, nil
}

// --- Helpers ---

func newTestServer(repo *mockActionRepo) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(&config.Config{Environment: "local"}, logger, repo)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

// --- Tests ---

func TestCreateAction_Success(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	body := `{
		"trigger_time": "2025-06-02T09:00:00+02:00",
		"frequency": "weekly",
		"command": {"tag": "followup", "contact_id": "contact-1", "note": "check in"}
	}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, repo.inserted, 1)

	a := repo.inserted[0]
	assert.True(t, strings.HasPrefix(a.ID, "act_"))
	assert.Equal(t, "tenant-1", a.TenantID)
	assert.Equal(t, types.ActionPending, a.Status)
	assert.Equal(t, types.FrequencyWeekly, a.Frequency)
	assert.Equal(t, types.CommandFollowUp, a.Command.Tag)

	// Client offsets are normalized to UTC before storage.
	want := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	assert.True(t, a.TriggerTime.Equal(want), "got %v", a.TriggerTime)
	assert.Equal(t, time.UTC, a.TriggerTime.Location())
}

func TestCreateAction_PastTriggerTimeAccepted(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	body := `{
		"trigger_time": "2020-01-01T00:00:00Z",
		"frequency": "single",
		"command": {"tag": "followup", "contact_id": "contact-1", "note": ""}
	}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", body)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateAction_InvalidFrequency(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	body := `{
		"trigger_time": "2025-06-02T09:00:00Z",
		"frequency": "fortnightly",
		"command": {"tag": "followup", "contact_id": "contact-1", "note": ""}
	}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationInvalidFrequency), detail.Code)
	assert.Empty(t, repo.inserted)
}

func TestCreateAction_MissingTriggerTime(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	body := `{
		"frequency": "weekly",
		"command": {"tag": "followup", "contact_id": "contact-1", "note": ""}
	}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationInvalidTime), detail.Code)
}

func TestCreateAction_UnknownCommandTag(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	body := `{
		"trigger_time": "2025-06-02T09:00:00Z",
		"frequency": "weekly",
		"command": {"tag": "send_invoice", "contact_id": "contact-1", "note": ""}
	}`
	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.inserted)
}

func TestCreateAction_MalformedJSON(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	rec := doRequest(t, s, http.MethodPost, "/v1/tenants/tenant-1/actions", `{"trigger_time": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "validation_invalid_json", detail.Code)
}

func TestGetAction_Found(t *testing.T) {
	action := &types.Action{
		ID:          "act_1",
		TenantID:    "tenant-1",
		Status:      types.ActionPending,
		TriggerTime: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		Frequency:   types.FrequencyWeekly,
	}
	repo := &mockActionRepo{byID: map[string]*types.Action{"tenant-1/act_1": action}}
	s := newTestServer(repo)

	rec := doRequest(t, s, http.MethodGet, "/v1/tenants/tenant-1/actions/act_1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data types.Action `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "act_1", resp.Data.ID)
}

func TestGetAction_NotFound(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	rec := doRequest(t, s, http.MethodGet, "/v1/tenants/tenant-1/actions/act_missing", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeNotFoundAction), detail.Code)
	assert.NotEmpty(t, detail.RequestID)
}

func TestListActions_PassesFilters(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	rec := doRequest(t, s, http.MethodGet, "/v1/tenants/tenant-1/actions?status=pending&limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant-1", repo.lastListTenant)
	assert.Equal(t, types.ActionPending, repo.lastListStatus)
	assert.Equal(t, 5, repo.lastListLimit)

	// Empty result serializes as [] rather than null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListActions_InvalidStatus(t *testing.T) {
	repo := &mockActionRepo{}
	s := newTestServer(repo)

	rec := doRequest(t, s, http.MethodGet, "/v1/tenants/tenant-1/actions?status=archived", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&mockActionRepo{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
