package sheetsclient

import (
	"fmt"
	"strings"
	"time"
)

const (
	tabDateLayout = "Mon Jan 02 2006"
	// header sits below a title row and a blank row
	headerRow   = 2
	notesColumn = "Notes"
)

// RosterRow is the confirmed staff of one role in one time slot on one date
type RosterRow struct {
	Date     string // Format: "2006-01-02"
	Time     string
	Role     string
	Required int
	Staff    []string
}

// Roster is the confirmed staffing of a posting
type Roster struct {
	PostingID string
	Title     string
	Rows      []RosterRow
}

// Sheet is the subset of Client used to publish a roster
type Sheet interface {
	HasSheet(spreadsheetID, sheetTitle string) (bool, error)
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	ClearValues(spreadsheetID, sheetRange string) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
}

// Publisher writes rosters to tabs of a spreadsheet
type Publisher struct {
	sheet Sheet
}

// NewPublisher creates a publisher over sheet, usually a *Client
func NewPublisher(sheet Sheet) *Publisher {
	return &Publisher{sheet: sheet}
}

// PublishRoster writes roster to a tab named after the posting and its
// date range. An existing tab is rewritten with notes carried over by
// date, time and role.
func (p *Publisher) PublishRoster(spreadsheetID string, roster *Roster) (string, error) {
	tabTitle, err := generateTabTitle(roster)
	if err != nil {
		return "", fmt.Errorf("failed to generate tab title: %w", err)
	}

	exists, err := p.sheet.HasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}

	notes := map[string]interface{}{}
	fullRange := fmt.Sprintf("%s!A1:ZZ", tabTitle)
	if exists {
		existing, err := p.sheet.GetValues(spreadsheetID, fullRange)
		if err != nil {
			return "", fmt.Errorf("failed to read existing tab data: %w", err)
		}
		notes = readNotes(existing)
		if err := p.sheet.ClearValues(spreadsheetID, fullRange); err != nil {
			return "", fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else if _, err := p.sheet.CreateSheet(spreadsheetID, tabTitle); err != nil {
		return "", fmt.Errorf("failed to create tab: %w", err)
	}

	values := buildRosterValues(roster, notes)
	if err := p.sheet.UpdateValues(spreadsheetID, fmt.Sprintf("%s!A1", tabTitle), values); err != nil {
		return "", fmt.Errorf("failed to write roster: %w", err)
	}
	return tabTitle, nil
}

// generateTabTitle creates a tab title like "Main event Fri Jan 05 2024 - Sun Jan 07 2024"
func generateTabTitle(roster *Roster) (string, error) {
	if len(roster.Rows) == 0 {
		return "", fmt.Errorf("roster has no rows")
	}

	first, last := roster.Rows[0].Date, roster.Rows[0].Date
	for _, row := range roster.Rows[1:] {
		if row.Date < first {
			first = row.Date
		}
		if row.Date > last {
			last = row.Date
		}
	}

	start, err := time.Parse("2006-01-02", first)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", last)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}

	title := strings.TrimSpace(roster.Title)
	if title == "" {
		title = roster.PostingID
	}
	return fmt.Sprintf("%s %s - %s", title, start.Format(tabDateLayout), end.Format(tabDateLayout)), nil
}

func rowKey(date, timeSlot, role string) string {
	return date + "|" + timeSlot + "|" + role
}

func cell(row []interface{}, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

// readNotes collects the Notes column of a previously published roster keyed by row
func readNotes(existing [][]interface{}) map[string]interface{} {
	notes := map[string]interface{}{}
	if len(existing) <= headerRow {
		return notes
	}

	header := existing[headerRow]
	col := map[string]int{}
	for i := range header {
		col[cell(header, i)] = i
	}
	notesCol, ok := col[notesColumn]
	if !ok {
		return notes
	}

	for _, row := range existing[headerRow+1:] {
		if note := cell(row, notesCol); note != "" {
			notes[rowKey(cell(row, col["Date"]), cell(row, col["Time"]), cell(row, col["Role"]))] = note
		}
	}
	return notes
}

// buildRosterValues lays out the title, header and one row per roster row
func buildRosterValues(roster *Roster, notes map[string]interface{}) [][]interface{} {
	maxStaff := 0
	for _, row := range roster.Rows {
		if len(row.Staff) > maxStaff {
			maxStaff = len(row.Staff)
		}
	}

	header := []interface{}{"Date", "Time", "Role", "Required"}
	for i := 0; i < maxStaff; i++ {
		header = append(header, fmt.Sprintf("Staff %d", i+1))
	}
	header = append(header, notesColumn)

	values := [][]interface{}{
		{roster.Title},
		{},
		header,
	}
	for _, row := range roster.Rows {
		sheetRow := []interface{}{row.Date, row.Time, row.Role, row.Required}
		for i := 0; i < maxStaff; i++ {
			if i < len(row.Staff) {
				sheetRow = append(sheetRow, row.Staff[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		note, ok := notes[rowKey(row.Date, row.Time, row.Role)]
		if !ok {
			note = ""
		}
		values = append(values, append(sheetRow, note))
	}
	return values
}
