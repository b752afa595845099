package sheetsclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSheet struct {
	exists   bool
	existing [][]interface{}
	created  []string
	cleared  []string
	written  map[string][][]interface{}
	hasErr   error
}

func (m *mockSheet) HasSheet(spreadsheetID, sheetTitle string) (bool, error) {
	return m.exists, m.hasErr
}

func (m *mockSheet) CreateSheet(spreadsheetID, sheetTitle string) (int64, error) {
	m.created = append(m.created, sheetTitle)
	return 1, nil
}

func (m *mockSheet) GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error) {
	return m.existing, nil
}

func (m *mockSheet) ClearValues(spreadsheetID, sheetRange string) error {
	m.cleared = append(m.cleared, sheetRange)
	return nil
}

func (m *mockSheet) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	if m.written == nil {
		m.written = map[string][][]interface{}{}
	}
	m.written[sheetRange] = values
	return nil
}

func testRoster() *Roster {
	return &Roster{
		PostingID: "posting-1",
		Title:     "Main event",
		Rows: []RosterRow{
			{Date: "2024-01-05", Time: "18:00", Role: "dealer", Required: 3, Staff: []string{"Kim", "Lee"}},
			{Date: "2024-01-05", Time: "18:00", Role: "floor", Required: 1, Staff: []string{"Park"}},
			{Date: "2024-01-07", Time: "13:00", Role: "dealer", Required: 2, Staff: []string{}},
		},
	}
}

func TestGenerateTabTitle(t *testing.T) {
	tests := []struct {
		name    string
		roster  *Roster
		want    string
		wantErr bool
	}{
		{name: "date range", roster: testRoster(), want: "Main event Fri Jan 05 2024 - Sun Jan 07 2024"},
		{
			name:   "untitled posting",
			roster: &Roster{PostingID: "posting-9", Rows: []RosterRow{{Date: "2024-02-01"}}},
			want:   "posting-9 Thu Feb 01 2024 - Thu Feb 01 2024",
		},
		{name: "no rows", roster: &Roster{Title: "Empty"}, wantErr: true},
		{name: "invalid date", roster: &Roster{Title: "Bad", Rows: []RosterRow{{Date: "someday"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generateTabTitle(tt.roster)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRosterValues(t *testing.T) {
	values := buildRosterValues(testRoster(), map[string]interface{}{"2024-01-05|18:00|floor": "late start"})

	require.Len(t, values, 6)
	assert.Equal(t, []interface{}{"Main event"}, values[0])
	assert.Empty(t, values[1])
	assert.Equal(t, []interface{}{"Date", "Time", "Role", "Required", "Staff 1", "Staff 2", "Notes"}, values[2])
	assert.Equal(t, []interface{}{"2024-01-05", "18:00", "dealer", 3, "Kim", "Lee", ""}, values[3])
	assert.Equal(t, []interface{}{"2024-01-05", "18:00", "floor", 1, "Park", "", "late start"}, values[4])
	assert.Equal(t, []interface{}{"2024-01-07", "13:00", "dealer", 2, "", "", ""}, values[5])
}

func TestReadNotes(t *testing.T) {
	existing := [][]interface{}{
		{"Main event"},
		{},
		{"Date", "Time", "Role", "Required", "Staff 1", "Notes"},
		{"2024-01-05", "18:00", "dealer", "3", "Kim", "bring cards"},
		{"2024-01-05", "18:00", "floor", "1", "Park"},
	}

	notes := readNotes(existing)
	assert.Equal(t, map[string]interface{}{"2024-01-05|18:00|dealer": "bring cards"}, notes)

	assert.Empty(t, readNotes(existing[:2]))
	assert.Empty(t, readNotes([][]interface{}{{}, {}, {"Date", "Time", "Role"}}))
}

func TestPublishRoster_NewTab(t *testing.T) {
	sheet := &mockSheet{}

	title, err := NewPublisher(sheet).PublishRoster("sheet-1", testRoster())
	require.NoError(t, err)

	assert.Equal(t, "Main event Fri Jan 05 2024 - Sun Jan 07 2024", title)
	assert.Equal(t, []string{title}, sheet.created)
	assert.Empty(t, sheet.cleared)
	require.Contains(t, sheet.written, title+"!A1")
	assert.Len(t, sheet.written[title+"!A1"], 6)
}

func TestPublishRoster_ExistingTabKeepsNotes(t *testing.T) {
	sheet := &mockSheet{
		exists: true,
		existing: [][]interface{}{
			{"Main event"},
			{},
			{"Date", "Time", "Role", "Required", "Staff 1", "Notes"},
			{"2024-01-07", "13:00", "dealer", "2", "", "needs cover"},
		},
	}

	title, err := NewPublisher(sheet).PublishRoster("sheet-1", testRoster())
	require.NoError(t, err)

	assert.Empty(t, sheet.created)
	assert.Equal(t, []string{title + "!A1:ZZ"}, sheet.cleared)
	written := sheet.written[title+"!A1"]
	require.Len(t, written, 6)
	assert.Equal(t, "needs cover", written[5][len(written[5])-1])
}

func TestPublishRoster_MetadataError(t *testing.T) {
	sheet := &mockSheet{hasErr: errors.New("forbidden")}

	_, err := NewPublisher(sheet).PublishRoster("sheet-1", testRoster())
	assert.Error(t, err)
	assert.Nil(t, sheet.written)
}
