package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/validation"
	"github.com/tholdem/holdem-staff/pkg/db"
)

func TestConfirmApplication_GroupAssignment(t *testing.T) {
	freezeTime(t)
	store := seededStore(t)
	notifier := &mockNotifier{}

	result, err := ConfirmApplication(context.Background(), store, notifier, zap.NewNop(), "a1", []model.Assignment{groupAssignment()})
	require.NoError(t, err)

	require.Len(t, result.Staff, 2)
	for i, date := range []string{"2024-01-05", "2024-01-06"} {
		staff := result.Staff[i]
		assert.Equal(t, "u1", staff.UserID)
		assert.Equal(t, "Kim", staff.Name)
		assert.Equal(t, date, staff.Date)
		assert.Equal(t, model.ApplicationMulti, staff.ApplicationType)
		assert.Equal(t, "g1", staff.ApplicationGroupID)
		assert.Equal(t, "a1", staff.ApplicationID)
		require.NotNil(t, staff.ConfirmedAt)
		assert.True(t, fixedNow.Equal(*staff.ConfirmedAt))
	}

	app := store.applications["a1"]
	assert.Equal(t, model.StatusConfirmed, app.Status)
	require.NotNil(t, app.OriginalApplication)
	require.Len(t, app.ConfirmationHistory, 1)
	assert.Len(t, store.postings["p1"].ConfirmedStaff, 2)

	assert.True(t, result.Notified)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "kim@example.com", notifier.sent[0].to)
	assert.Contains(t, notifier.sent[0].body, "01-05(금) 18:00 dealer")
	assert.Contains(t, notifier.sent[0].body, "01-06(토) 18:00 dealer")
}

func TestConfirmApplication_ReconfirmReplacesEntries(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := ConfirmApplication(ctx, store, nil, zap.NewNop(), "a1", []model.Assignment{groupAssignment()})
	require.NoError(t, err)

	single := model.Assignment{TimeSlot: "18:00", Role: "floor", Dates: []string{"2024-01-05"}}
	result, err := ConfirmApplication(ctx, store, nil, zap.NewNop(), "a1", []model.Assignment{single})
	require.NoError(t, err)
	assert.False(t, result.Notified)

	staff := store.postings["p1"].ConfirmedStaff
	require.Len(t, staff, 1)
	assert.Equal(t, "floor", staff[0].Role)
	assert.Equal(t, model.ApplicationSingle, staff[0].ApplicationType)
	assert.Empty(t, staff[0].ApplicationGroupID)
	assert.Len(t, store.applications["a1"].ConfirmationHistory, 2)
}

func TestConfirmApplication_GeneratesGroupID(t *testing.T) {
	store := seededStore(t)
	assignment := groupAssignment()
	assignment.GroupID = ""

	result, err := ConfirmApplication(context.Background(), store, nil, zap.NewNop(), "a1", []model.Assignment{assignment})
	require.NoError(t, err)

	require.Len(t, result.Staff, 2)
	_, err = uuid.Parse(result.Staff[0].ApplicationGroupID)
	assert.NoError(t, err)
	assert.Equal(t, result.Staff[0].ApplicationGroupID, result.Staff[1].ApplicationGroupID)
}

func TestConfirmApplication_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(store *mockStore)
		assignments []model.Assignment
		wantErr     error
	}{
		{
			name:        "no assignments",
			assignments: nil,
			wantErr:     ErrNoAssignments,
		},
		{
			name:        "missing time slot",
			assignments: []model.Assignment{{Role: "dealer", Dates: []string{"2024-01-05"}}},
			wantErr:     ErrInvalidAssignment,
		},
		{
			name:        "empty date",
			assignments: []model.Assignment{{TimeSlot: "18:00", Role: "dealer", Dates: []string{""}}},
			wantErr:     ErrInvalidAssignment,
		},
		{
			name: "already confirmed elsewhere on date",
			setup: func(store *mockStore) {
				store.postings["p1"].ConfirmedStaff = []model.ConfirmedStaff{
					{UserID: "u1", Role: "floor", TimeSlot: "12:00", Date: "2024-01-06", ApplicationID: "older"},
				}
			},
			assignments: []model.Assignment{groupAssignment()},
			wantErr:     ErrDuplicateConfirmation,
		},
		{
			name: "two roles on the same date",
			assignments: []model.Assignment{
				{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05"}},
				{TimeSlot: "18:00", Role: "floor", Dates: []string{"2024-01-05"}},
			},
			wantErr: ErrDuplicateConfirmation,
		},
		{
			name: "role full",
			setup: func(store *mockStore) {
				store.postings["p1"].ConfirmedStaff = []model.ConfirmedStaff{
					{UserID: "u9", Role: "floor", TimeSlot: "18:00", Date: "2024-01-05", ApplicationID: "a9"},
				}
			},
			assignments: []model.Assignment{{TimeSlot: "18:00", Role: "floor", Dates: []string{"2024-01-05"}}},
			wantErr:     ErrRoleFull,
		},
		{
			name: "cancelled application",
			setup: func(store *mockStore) {
				store.applications["a1"].Status = model.StatusCancelled
			},
			assignments: []model.Assignment{groupAssignment()},
			wantErr:     ErrApplicationCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(t)
			if tt.setup != nil {
				tt.setup(store)
			}
			before := len(store.postings["p1"].ConfirmedStaff)

			_, err := ConfirmApplication(context.Background(), store, nil, zap.NewNop(), "a1", tt.assignments)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, store.postings["p1"].ConfirmedStaff, before)
			assert.NotEqual(t, model.StatusConfirmed, store.applications["a1"].Status)
		})
	}
}

func TestConfirmApplication_NotifierFailureIsNotFatal(t *testing.T) {
	store := seededStore(t)
	notifier := &mockNotifier{err: errBoom}

	result, err := ConfirmApplication(context.Background(), store, notifier, zap.NewNop(), "a1", []model.Assignment{groupAssignment()})
	require.NoError(t, err)
	assert.False(t, result.Notified)
	assert.Equal(t, model.StatusConfirmed, store.applications["a1"].Status)
}

func TestConfirmApplication_MissingApplication(t *testing.T) {
	store := seededStore(t)

	_, err := ConfirmApplication(context.Background(), store, nil, zap.NewNop(), "missing", []model.Assignment{groupAssignment()})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestCancelConfirmation(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	store.postings["p1"].ConfirmedStaff = []model.ConfirmedStaff{
		{UserID: "u2", Role: "floor", TimeSlot: "18:00", Date: "2024-01-06", ApplicationID: "a2"},
	}

	_, err := CancelConfirmation(ctx, store, zap.NewNop(), "a1")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	confirmed := model.Assignment{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05"}}
	_, err = ConfirmApplication(ctx, store, nil, zap.NewNop(), "a1", []model.Assignment{confirmed})
	require.NoError(t, err)
	require.Len(t, store.postings["p1"].ConfirmedStaff, 2)

	app, err := CancelConfirmation(ctx, store, zap.NewNop(), "a1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusApplied, app.Status)
	assert.Equal(t, []model.Assignment{groupAssignment()}, store.applications["a1"].Assignments)
	require.Len(t, app.ConfirmationHistory, 1)
	assert.NotNil(t, app.ConfirmationHistory[0].CancelledAt)

	staff := store.postings["p1"].ConfirmedStaff
	require.Len(t, staff, 1)
	assert.Equal(t, "u2", staff[0].UserID)
}

func TestCancelApplication(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	store.postings["p1"].ConfirmedStaff = []model.ConfirmedStaff{
		{UserID: "u1", Role: "dealer", TimeSlot: "18:00", Date: "2024-01-05"},
		{UserID: "u2", Role: "floor", TimeSlot: "18:00", Date: "2024-01-06", ApplicationID: "a2"},
	}

	app, err := CancelApplication(ctx, store, zap.NewNop(), "a1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, app.Status)
	assert.NotNil(t, app.CancelledAt)

	staff := store.postings["p1"].ConfirmedStaff
	require.Len(t, staff, 1)
	assert.Equal(t, "u2", staff[0].UserID)

	_, err = CancelApplication(ctx, store, zap.NewNop(), "a1")
	assert.ErrorIs(t, err, ErrApplicationCancelled)
}

func TestStaffCounts(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	_, err := ConfirmApplication(ctx, store, nil, zap.NewNop(), "a1", []model.Assignment{groupAssignment()})
	require.NoError(t, err)

	counts, err := StaffCounts(ctx, store, zap.NewNop(), "p1", "dealer", "18:00", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, validation.StaffCounts{Confirmed: 1, Required: 2}, counts)

	counts, err = StaffCounts(ctx, store, zap.NewNop(), "p1", "dealer", "18:00", "")
	require.NoError(t, err)
	assert.Equal(t, validation.StaffCounts{Confirmed: 2, Required: 2}, counts)

	_, err = StaffCounts(ctx, store, zap.NewNop(), "missing", "dealer", "18:00", "")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAssignmentsFromSelections(t *testing.T) {
	selections := []model.Selection{
		{Role: "dealer", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05", "2024-01-06"}, IsGrouped: true, GroupID: "g1", CheckMethod: model.CheckMethodGroup},
		{Role: "floor", Time: "12:00", Date: "2024-01-07"},
		{Role: "", Time: "12:00", Date: "2024-01-07"},
		{Role: "chip", Time: "12:00"},
	}

	got, skipped := AssignmentsFromSelections(selections)

	assert.Equal(t, []model.Assignment{
		{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05", "2024-01-06"}, IsGrouped: true, GroupID: "g1", CheckMethod: model.CheckMethodGroup},
		{TimeSlot: "12:00", Role: "floor", Dates: []string{"2024-01-07"}},
	}, got)
	assert.Equal(t, selections[2:], skipped)
}

func TestAssignmentsFromSelections_OneSlotPerDate(t *testing.T) {
	tests := []struct {
		name        string
		selections  []model.Selection
		want        []model.Assignment
		wantSkipped []model.Selection
	}{
		{
			name: "group with two roles keeps the first role",
			selections: []model.Selection{
				{Role: "dealer", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05", "2024-01-06"}, CheckMethod: model.CheckMethodGroup, GroupID: "g1"},
				{Role: "floor", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05", "2024-01-06"}, CheckMethod: model.CheckMethodGroup, GroupID: "g1"},
			},
			want: []model.Assignment{
				{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05", "2024-01-06"}, CheckMethod: model.CheckMethodGroup, GroupID: "g1"},
			},
			wantSkipped: []model.Selection{
				{Role: "floor", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05", "2024-01-06"}, CheckMethod: model.CheckMethodGroup, GroupID: "g1"},
			},
		},
		{
			name: "partial overlap keeps the free dates",
			selections: []model.Selection{
				{Role: "dealer", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05"}},
				{Role: "floor", Time: "12:00", Date: "2024-01-05", Dates: []string{"2024-01-05", "2024-01-06"}},
			},
			want: []model.Assignment{
				{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05"}},
				{TimeSlot: "12:00", Role: "floor", Dates: []string{"2024-01-06"}},
			},
			wantSkipped: []model.Selection{
				{Role: "floor", Time: "12:00", Date: "2024-01-05", Dates: []string{"2024-01-05"}},
			},
		},
		{
			name: "exact repeat is dropped",
			selections: []model.Selection{
				{Role: "dealer", Time: "18:00", Date: "2024-01-05"},
				{Role: "dealer", Time: "18:00", Date: "2024-01-05"},
			},
			want: []model.Assignment{
				{TimeSlot: "18:00", Role: "dealer", Dates: []string{"2024-01-05"}},
			},
			wantSkipped: []model.Selection{
				{Role: "dealer", Time: "18:00", Date: "2024-01-05", Dates: []string{"2024-01-05"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped := AssignmentsFromSelections(tt.selections)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestConfirmApplication_AsSelected(t *testing.T) {
	tests := []struct {
		name      string
		app       *model.Application
		wantRoles []string
	}{
		{
			name: "group with two roles",
			app: &model.Application{
				ID: "a3", ApplicantID: "u3", ApplicantName: "Park", PostingID: "p1", Status: model.StatusApplied,
				Assignments: []model.Assignment{{
					TimeSlot:    "18:00",
					Roles:       []string{"dealer", "floor"},
					Dates:       []string{"2024-01-05", "2024-01-06"},
					CheckMethod: model.CheckMethodGroup,
					GroupID:     "g3",
				}},
			},
			wantRoles: []string{"dealer", "dealer"},
		},
		{
			name: "two roles on one date",
			app: &model.Application{
				ID: "a3", ApplicantID: "u3", ApplicantName: "Park", PostingID: "p1", Status: model.StatusApplied,
				DateAssignments: []model.DateAssignment{{
					Date: "2024-01-05",
					Selections: []model.DateSelection{
						{TimeSlot: "18:00", Role: "floor"},
						{TimeSlot: "18:00", Role: "dealer"},
					},
				}},
			},
			wantRoles: []string{"floor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := seededStore(t)
			require.NoError(t, store.InsertApplication(ctx, tt.app))

			view, err := ViewApplicantSelections(ctx, store, testNormalizer(), testGrouper(), zap.NewNop(), "", "a3")
			require.NoError(t, err)
			require.Len(t, view.Selections, 2)

			assignments, skipped := AssignmentsFromSelections(view.Selections)
			assert.Len(t, skipped, 1)

			result, err := ConfirmApplication(ctx, store, nil, zap.NewNop(), "a3", assignments)
			require.NoError(t, err)

			var roles []string
			for _, s := range result.Staff {
				roles = append(roles, s.Role)
			}
			assert.Equal(t, tt.wantRoles, roles)
		})
	}
}
