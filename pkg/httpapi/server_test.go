package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// fakeStore is a single-posting in-memory db.Database
type fakeStore struct {
	posting      model.JobPosting
	applications map[string]model.Application
	attendance   map[string]model.AttendanceRecord
	failWith     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posting: model.JobPosting{
			ID:     "p1",
			Title:  "Winter Series",
			Status: model.PostingOpen,
			DateSpecificRequirements: []model.DateSpecificRequirement{{
				Date: dates.FromString("2024-01-05"),
				TimeSlots: []model.TimeSlot{
					{Time: "18:00", Roles: []model.RoleRequirement{{Name: "dealer", Count: 1}}},
				},
			}},
		},
		applications: map[string]model.Application{
			"a1": {
				ID:            "a1",
				ApplicantID:   "u1",
				ApplicantName: "Kim",
				PostingID:     "p1",
				Status:        model.StatusApplied,
				DateAssignments: []model.DateAssignment{
					{Date: "2024-01-05", Selections: []model.DateSelection{{TimeSlot: "18:00", Role: "dealer"}}},
				},
			},
		},
		attendance: map[string]model.AttendanceRecord{},
	}
}

func (f *fakeStore) GetPosting(ctx context.Context, id string) (*model.JobPosting, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if id != f.posting.ID {
		return nil, db.ErrNotFound
	}
	p := f.posting
	p.ConfirmedStaff = append([]model.ConfirmedStaff(nil), f.posting.ConfirmedStaff...)
	return &p, nil
}

func (f *fakeStore) InsertPosting(ctx context.Context, posting *model.JobPosting) error {
	f.posting = *posting
	return nil
}

func (f *fakeStore) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	app, ok := f.applications[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &app, nil
}

func (f *fakeStore) ListApplications(ctx context.Context, postingID string) ([]model.Application, error) {
	var out []model.Application
	for _, app := range f.applications {
		if app.PostingID == postingID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertApplication(ctx context.Context, app *model.Application) error {
	f.applications[app.ID] = *app
	return nil
}

func (f *fakeStore) UpdateApplicationAndPosting(ctx context.Context, applicationID string, fn db.UpdateFunc) error {
	app, ok := f.applications[applicationID]
	if !ok {
		return db.ErrNotFound
	}
	posting, _ := f.GetPosting(ctx, app.PostingID)
	if err := fn(&app, posting); err != nil {
		return err
	}
	f.applications[applicationID] = app
	f.posting = *posting
	return nil
}

func (f *fakeStore) GetAttendance(ctx context.Context, postingID, staffID, date string) (*model.AttendanceRecord, error) {
	rec, ok := f.attendance[postingID+staffID+date]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeStore) PutAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	f.attendance[rec.PostingID+rec.StaffID+rec.Date] = *rec
	return nil
}

func (f *fakeStore) Close(ctx context.Context) {}

func newTestServer(store *fakeStore, overlay attendance.Overlay) http.Handler {
	logger := zap.NewNop()
	srv := NewServer(store, selection.NewNormalizer(logger, nil, nil), grouping.New(logger, nil), logger, Options{Overlay: overlay})
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	code, body := do(t, newTestServer(newFakeStore(), nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestListApplicants(t *testing.T) {
	code, body := do(t, newTestServer(newFakeStore(), nil), http.MethodGet, "/postings/p1/applicants", "")
	require.Equal(t, http.StatusOK, code)

	applicants := body["applicants"].([]interface{})
	require.Len(t, applicants, 1)
	first := applicants[0].(map[string]interface{})
	assert.Equal(t, "Kim", first["applicantName"])
	assert.Equal(t, "dateAssignments", first["schema"])
}

func TestViewSelections(t *testing.T) {
	h := newTestServer(newFakeStore(), nil)

	code, body := do(t, h, http.MethodGet, "/postings/p1/applications/a1/selections", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dateAssignments", body["schema"])
	groups := body["groups"].([]interface{})
	require.Len(t, groups, 1)
	assert.Equal(t, float64(1), groups[0].(map[string]interface{})["requiredCount"])
	assert.NotNil(t, body["unconfirmed"])

	code, body = do(t, h, http.MethodGet, "/postings/p1/applications/missing/selections", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])
}

func TestStaffCounts(t *testing.T) {
	h := newTestServer(newFakeStore(), nil)

	code, body := do(t, h, http.MethodGet, "/postings/p1/staff-counts?role=dealer&time=18:00&date=2024-01-05", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["confirmed"])
	assert.Equal(t, float64(1), body["required"])

	code, body = do(t, h, http.MethodGet, "/postings/p1/staff-counts?role=dealer", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "role_and_time_required", body["error"])
}

func TestConfirmFlow(t *testing.T) {
	store := newFakeStore()
	h := newTestServer(store, nil)
	confirm := `{"assignments":[{"timeSlot":"18:00","role":"dealer","dates":["2024-01-05"]}]}`

	code, body := do(t, h, http.MethodPost, "/applications/a1/confirm", confirm)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["staff"], 1)
	assert.Equal(t, model.StatusConfirmed, store.applications["a1"].Status)

	store.applications["a2"] = model.Application{ID: "a2", ApplicantID: "u2", PostingID: "p1", Status: model.StatusApplied}
	code, body = do(t, h, http.MethodPost, "/applications/a2/confirm", confirm)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "role_full", body["error"])

	code, _ = do(t, h, http.MethodPost, "/applications/a1/cancel-confirmation", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, store.posting.ConfirmedStaff)

	code, body = do(t, h, http.MethodPost, "/applications/a1/cancel-confirmation", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "not_confirmed", body["error"])

	code, body = do(t, h, http.MethodPost, "/applications/a1/cancel", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", body["status"])

	code, body = do(t, h, http.MethodPost, "/applications/a1/confirm", confirm)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "application_cancelled", body["error"])
}

func TestConfirmBadRequests(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"assignments":`, http.StatusBadRequest, "invalid_json"},
		{"unknown field", `{"assignment":[]}`, http.StatusBadRequest, "invalid_json"},
		{"no assignments", `{"assignments":[]}`, http.StatusUnprocessableEntity, "no_assignments"},
		{"missing role", `{"assignments":[{"timeSlot":"18:00","dates":["2024-01-05"]}]}`, http.StatusUnprocessableEntity, "invalid_assignment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, newTestServer(newFakeStore(), nil), http.MethodPost, "/applications/a1/confirm", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestAttendance(t *testing.T) {
	overlay := attendance.NewMemoryOverlay(attendance.DefaultRevertWindow)
	defer overlay.Close()
	store := newFakeStore()
	h := newTestServer(store, overlay)

	code, body := do(t, h, http.MethodPut, "/postings/p1/attendance/u1/2024-01-05", `{"status":"checked_in"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "checked_in", body["effective"])

	code, body = do(t, h, http.MethodGet, "/postings/p1/attendance/u1/2024-01-05", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "checked_in", body["effective"])

	code, body = do(t, h, http.MethodPut, "/postings/p1/attendance/u1/2024-01-05", `{"status":"absent"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_transition", body["error"])

	code, body = do(t, h, http.MethodPut, "/postings/p1/attendance/u1/2024-01-05", `{"status":"late"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_status", body["error"])
}

func TestInternalError(t *testing.T) {
	store := newFakeStore()
	store.failWith = fmt.Errorf("connection reset")

	code, body := do(t, newTestServer(store, nil), http.MethodGet, "/postings/p1/staff-counts?role=dealer&time=18:00", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal", body["error"])
}
