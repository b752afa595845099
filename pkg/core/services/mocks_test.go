package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tholdem/holdem-staff/pkg/clients/sheetsclient"
	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// mockStore is an in-memory db.Database. Updates run on copies and are only
// kept when the update function succeeds.
type mockStore struct {
	postings     map[string]*model.JobPosting
	applications map[string]*model.Application
	attendance   map[string]*model.AttendanceRecord
	order        []string

	getPostingErr    error
	listErr          error
	putAttendanceErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		postings:     map[string]*model.JobPosting{},
		applications: map[string]*model.Application{},
		attendance:   map[string]*model.AttendanceRecord{},
	}
}

func clone[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

func (m *mockStore) GetPosting(ctx context.Context, id string) (*model.JobPosting, error) {
	if m.getPostingErr != nil {
		return nil, m.getPostingErr
	}
	p, ok := m.postings[id]
	if !ok {
		return nil, fmt.Errorf("posting %s: %w", id, db.ErrNotFound)
	}
	return clone(p), nil
}

func (m *mockStore) InsertPosting(ctx context.Context, posting *model.JobPosting) error {
	m.postings[posting.ID] = clone(posting)
	return nil
}

func (m *mockStore) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	a, ok := m.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, db.ErrNotFound)
	}
	return clone(a), nil
}

func (m *mockStore) ListApplications(ctx context.Context, postingID string) ([]model.Application, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Application
	for _, id := range m.order {
		if a := m.applications[id]; a.PostingID == postingID {
			out = append(out, *clone(a))
		}
	}
	return out, nil
}

func (m *mockStore) InsertApplication(ctx context.Context, app *model.Application) error {
	if _, ok := m.applications[app.ID]; !ok {
		m.order = append(m.order, app.ID)
	}
	m.applications[app.ID] = clone(app)
	return nil
}

func (m *mockStore) UpdateApplicationAndPosting(ctx context.Context, applicationID string, fn db.UpdateFunc) error {
	stored, ok := m.applications[applicationID]
	if !ok {
		return fmt.Errorf("application %s: %w", applicationID, db.ErrNotFound)
	}
	posting, ok := m.postings[stored.PostingID]
	if !ok {
		return fmt.Errorf("posting %s: %w", stored.PostingID, db.ErrNotFound)
	}

	app, p := clone(stored), clone(posting)
	if err := fn(app, p); err != nil {
		return err
	}
	m.applications[app.ID] = app
	m.postings[p.ID] = p
	return nil
}

func attendanceKey(postingID, staffID, date string) string {
	return postingID + "/" + staffID + "/" + date
}

func (m *mockStore) GetAttendance(ctx context.Context, postingID, staffID, date string) (*model.AttendanceRecord, error) {
	rec, ok := m.attendance[attendanceKey(postingID, staffID, date)]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (m *mockStore) PutAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	if m.putAttendanceErr != nil {
		return m.putAttendanceErr
	}
	stored := *rec
	m.attendance[attendanceKey(rec.PostingID, rec.StaffID, rec.Date)] = &stored
	return nil
}

func (m *mockStore) Close(ctx context.Context) {}

var _ db.Database = (*mockStore)(nil)

// mockNotifier records sent emails
type mockNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to, subject, body string
}

func (m *mockNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

// mockPublisher records published rosters
type mockPublisher struct {
	spreadsheetID string
	roster        *sheetsclient.Roster
	err           error
}

func (m *mockPublisher) PublishRoster(spreadsheetID string, roster *sheetsclient.Roster) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.spreadsheetID = spreadsheetID
	m.roster = roster
	return roster.Title + " tab", nil
}

// mockOverlay is an overlay without expiry
type mockOverlay struct {
	statuses map[attendance.Key]model.AttendanceStatus
	setErr   error
}

func newMockOverlay() *mockOverlay {
	return &mockOverlay{statuses: map[attendance.Key]model.AttendanceStatus{}}
}

func (m *mockOverlay) Set(ctx context.Context, key attendance.Key, status model.AttendanceStatus) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.statuses[key] = status
	return nil
}

func (m *mockOverlay) Get(ctx context.Context, key attendance.Key) (model.AttendanceStatus, bool, error) {
	status, ok := m.statuses[key]
	return status, ok, nil
}

var errBoom = errors.New("boom")
