package postgres

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_attendance.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_init.sql":       {Data: []byte("SELECT 1;")},
		"migrations/README.md":          {Data: []byte("notes")},
		"migrations/old/000_legacy.sql": {Data: []byte("SELECT 0;")},
	}

	tests := []struct {
		name    string
		applied map[string]bool
		want    []string
	}{
		{name: "fresh database", applied: map[string]bool{}, want: []string{"001_init.sql", "002_attendance.sql"}},
		{name: "partially applied", applied: map[string]bool{"001_init.sql": true}, want: []string{"002_attendance.sql"}},
		{name: "up to date", applied: map[string]bool{"001_init.sql": true, "002_attendance.sql": true}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pendingMigrations(fsys, "migrations", tt.applied)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPendingMigrations_MissingDir(t *testing.T) {
	_, err := pendingMigrations(fstest.MapFS{}, "migrations", nil)
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := pendingMigrations(migrationsFS, "migrations", nil)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "001_init.sql", got[0])

	content, err := fs.ReadFile(migrationsFS, "migrations/001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS application")
}

func TestDecodeDocuments(t *testing.T) {
	posting, err := decodePosting([]byte(`{"id":"posting-1","title":"Main event","dateSpecificRequirements":[{"date":{"seconds":1704067200,"nanoseconds":0},"timeSlots":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "posting-1", posting.ID)
	require.Len(t, posting.DateSpecificRequirements, 1)

	app, err := decodeApplication([]byte(`{"id":"app-1","eventId":"posting-1","status":"confirmed"}`))
	require.NoError(t, err)
	assert.Equal(t, "posting-1", app.PostingID)

	_, err = decodeApplication([]byte(`{"id":`))
	assert.Error(t, err)
}
