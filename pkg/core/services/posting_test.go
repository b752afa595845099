package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/internal/config"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

func testConfig() *config.Config {
	return &config.Config{
		PostingTemplates: []config.PostingTemplate{
			{
				Name:     "weekend",
				RRule:    "FREQ=WEEKLY;BYDAY=SA,SU",
				Location: "Gangnam",
				TimeSlots: []config.TimeSlotTemplate{
					{Time: "18:00", Roles: []model.RoleRequirement{{Name: "dealer", Count: 4}}},
					{TimeToBeAnnounced: true, Roles: []model.RoleRequirement{{Name: "floor", Count: 1}}},
				},
			},
			{
				Name:  "opening",
				RRule: "FREQ=DAILY;COUNT=2",
				TimeSlots: []config.TimeSlotTemplate{
					{Time: "12:00", Roles: []model.RoleRequirement{{Name: "dealer", Count: 2}}},
				},
			},
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDefinePosting_Weekends(t *testing.T) {
	freezeTime(t)
	store := newMockStore()

	posting, err := DefinePosting(context.Background(), store, testConfig(), zap.NewNop(), "weekend", "January Weekends", day("2024-01-01"), day("2024-01-14"))
	require.NoError(t, err)

	assert.NotEmpty(t, posting.ID)
	assert.Equal(t, "January Weekends", posting.Title)
	assert.Equal(t, "Gangnam", posting.Location)
	assert.Equal(t, model.PostingOpen, posting.Status)

	var got []string
	for _, req := range posting.DateSpecificRequirements {
		got = append(got, req.Date.String())
	}
	assert.Equal(t, []string{"2024-01-06", "2024-01-07", "2024-01-13", "2024-01-14"}, got)

	slots := posting.DateSpecificRequirements[0].TimeSlots
	require.Len(t, slots, 2)
	assert.Equal(t, "18:00", slots[0].Time)
	assert.Equal(t, model.TimeToBeAnnounced, slots[1].Time)
	assert.True(t, slots[1].IsTimeToBeAnnounced)

	_, stored := store.postings[posting.ID]
	assert.True(t, stored)
}

func TestDefinePosting_CountLimitsDates(t *testing.T) {
	store := newMockStore()

	posting, err := DefinePosting(context.Background(), store, testConfig(), zap.NewNop(), "opening", "", day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, "opening", posting.Title)
	require.Len(t, posting.DateSpecificRequirements, 2)
	assert.Equal(t, "2024-03-02", posting.DateSpecificRequirements[1].Date.String())
}

func TestDefinePosting_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		from, to string
		wantErr  error
	}{
		{"unknown template", "weekday", "2024-01-01", "2024-01-31", ErrUnknownTemplate},
		{"no weekend in range", "weekend", "2024-01-01", "2024-01-05", ErrNoOccurrences},
		{"end before start", "weekend", "2024-01-14", "2024-01-01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			_, err := DefinePosting(context.Background(), store, testConfig(), zap.NewNop(), tt.template, "t", day(tt.from), day(tt.to))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, store.postings)
		})
	}
}
