package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	e := NewCSVExporter()

	data, err := e.Render(
		[]string{"timestamp", "action"},
		[][]string{
			{"2026-09-01T00:00:00Z", "SUBMISSION_APPROVE"},
			{"2026-09-01T01:00:00Z", "MOSQUE_DELETE"},
		},
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "timestamp,action", lines[0])
	require.Equal(t, "2026-09-01T00:00:00Z,SUBMISSION_APPROVE", lines[1])
}

func TestRenderRequiresHeaders(t *testing.T) {
	e := NewCSVExporter()

	_, err := e.Render(nil, nil)
	require.Error(t, err)
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	e := NewCSVExporter()

	_, err := e.Render([]string{"a", "b"}, [][]string{{"only-one"}})
	require.Error(t, err)
}

func TestFilename(t *testing.T) {
	name := Filename("audit")
	require.True(t, strings.HasPrefix(name, "audit-"))
	require.True(t, strings.HasSuffix(name, ".csv"))
}
