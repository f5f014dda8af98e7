package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

func TestStore_AddList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err)

	summary := finding.Summary{Total: 3, High: 1, Medium: 2, RiskScore: 15}
	for _, pkg := range []string{"com.example.one", "com.example.two", "com.example.three"} {
		record := NewAnalysisRecord(pkg, "1.0", "abc", "/out/"+pkg, summary, []string{"/out/" + pkg + "/report.pdf"})
		require.NoError(t, s.Add(&record))
		assert.NotZero(t, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
	}
	require.NoError(t, s.Close())

	// reopen to make sure the records were persisted
	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	records, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "com.example.three", records[0].Package)
	assert.Equal(t, "com.example.two", records[1].Package)
	assert.Equal(t, []string{"/out/com.example.three/report.pdf"}, records[0].ReportPaths)
	assert.Equal(t, 15, records[0].RiskScore)
	assert.Equal(t, 2, records[0].Medium)

	all, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	records, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, records)

	record := NewAnalysisRecord("com.example.app", "", "", "/p", finding.Summary{}, nil)
	require.NoError(t, s.Add(&record))

	records, err = s.List(10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
