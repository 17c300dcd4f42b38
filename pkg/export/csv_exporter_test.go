package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Timetable{
		Headers: []string{"Course", "Teacher"},
		Rows: [][]string{
			{"MATH-1", "Ada"},
			{"BIO-1"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Course,Teacher", strings.TrimSpace(lines[0]))
	require.Equal(t, "MATH-1,Ada", strings.TrimSpace(lines[1]))
	// Short rows are padded to the header width.
	require.Equal(t, "BIO-1,", strings.TrimSpace(lines[2]))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Timetable{})
	require.Error(t, err)
}
