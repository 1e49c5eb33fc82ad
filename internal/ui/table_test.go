package ui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seventhstate/rabbitmigrate/internal/ui"
)

func TestTableRendersAlignedColumns(testInstance *testing.T) {
	table := ui.NewTable([]string{"Queue", "Type"})
	table.AddRow("orders", "classic")
	table.AddRow("inventory-events", "quorum")

	rendered := table.Render()
	renderedLines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")

	require.Len(testInstance, renderedLines, 3)
	require.Contains(testInstance, renderedLines[1], "orders")
	require.Contains(testInstance, renderedLines[2], "inventory-events")
	require.Equal(testInstance, 2, table.RowCount())
}

func TestTableToleratesShortRows(testInstance *testing.T) {
	table := ui.NewTable([]string{"Queue", "Type", "State"})
	table.AddRow("orders")

	rendered := table.Render()
	require.Contains(testInstance, rendered, "orders")
}
