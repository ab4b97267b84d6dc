package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Table{
		Columns: []string{"co_id", "percentage"},
		Rows: [][]string{
			{"co-1", "70.00"},
			{"co-2", "55.50"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "co_id,percentage\nco-1,70.00\nco-2,55.50\n", string(payload))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Table{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"only one cell"}},
	})
	require.Error(t, err)
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Table{})
	require.Error(t, err)
}
