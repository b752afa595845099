package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
)

var fixedNow = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = prev })
}

func testPosting() *model.JobPosting {
	slots := func() []model.TimeSlot {
		return []model.TimeSlot{
			{Time: "18:00", Roles: []model.RoleRequirement{{Name: "dealer", Count: 2}, {Name: "floor", Count: 1}}},
		}
	}
	return &model.JobPosting{
		ID:     "p1",
		Title:  "Winter Series",
		Status: model.PostingOpen,
		DateSpecificRequirements: []model.DateSpecificRequirement{
			{Date: dates.FromString("2024-01-05"), TimeSlots: slots()},
			{Date: dates.FromString("2024-01-06"), TimeSlots: slots()},
		},
	}
}

func groupAssignment() model.Assignment {
	return model.Assignment{
		TimeSlot:    "18:00",
		Role:        "dealer",
		Dates:       []string{"2024-01-05", "2024-01-06"},
		CheckMethod: model.CheckMethodGroup,
		GroupID:     "g1",
	}
}

// seededStore holds posting p1 with applications from Kim (a1) and Lee (a2)
func seededStore(t *testing.T) *mockStore {
	t.Helper()
	ctx := context.Background()
	store := newMockStore()
	require.NoError(t, store.InsertPosting(ctx, testPosting()))
	require.NoError(t, store.InsertApplication(ctx, &model.Application{
		ID:            "a1",
		ApplicantID:   "u1",
		ApplicantName: "Kim",
		Email:         "kim@example.com",
		PostingID:     "p1",
		Status:        model.StatusApplied,
		Assignments:   []model.Assignment{groupAssignment()},
	}))
	require.NoError(t, store.InsertApplication(ctx, &model.Application{
		ID:            "a2",
		ApplicantID:   "u2",
		ApplicantName: "Lee",
		PostingID:     "p1",
		Status:        model.StatusApplied,
		DateAssignments: []model.DateAssignment{
			{Date: "2024-01-06", Selections: []model.DateSelection{{TimeSlot: "18:00", Role: "floor"}}},
		},
	}))
	return store
}

func testNormalizer() *selection.Normalizer {
	return selection.NewNormalizer(zap.NewNop(), nil, nil)
}

func testGrouper() *grouping.Grouper {
	return grouping.New(zap.NewNop(), nil)
}
