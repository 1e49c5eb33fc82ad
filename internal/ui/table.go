package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	columnSeparatorConstant = "  "
	lineBreakConstant       = "\n"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true)
	tableCellStyle   = lipgloss.NewStyle()
)

// Table accumulates rows under fixed headers and renders them with columns
// padded to the widest cell.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable constructs a table with the provided column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row; short rows render with trailing blank cells.
func (table *Table) AddRow(cells ...string) {
	table.rows = append(table.rows, cells)
}

// RowCount reports the number of appended rows.
func (table *Table) RowCount() int {
	return len(table.rows)
}

// Render produces the formatted table.
func (table *Table) Render() string {
	if len(table.headers) == 0 {
		return ""
	}

	columnWidths := make([]int, len(table.headers))
	for columnIndex, header := range table.headers {
		columnWidths[columnIndex] = len(header)
	}
	for _, row := range table.rows {
		for columnIndex, cell := range row {
			if columnIndex < len(columnWidths) && len(cell) > columnWidths[columnIndex] {
				columnWidths[columnIndex] = len(cell)
			}
		}
	}

	var rendered strings.Builder

	headerCells := make([]string, len(table.headers))
	for columnIndex, header := range table.headers {
		headerCells[columnIndex] = tableHeaderStyle.Render(padCell(header, columnWidths[columnIndex]))
	}
	rendered.WriteString(strings.Join(headerCells, columnSeparatorConstant))
	rendered.WriteString(lineBreakConstant)

	for _, row := range table.rows {
		rowCells := make([]string, len(table.headers))
		for columnIndex := range table.headers {
			cell := ""
			if columnIndex < len(row) {
				cell = row[columnIndex]
			}
			rowCells[columnIndex] = tableCellStyle.Render(padCell(cell, columnWidths[columnIndex]))
		}
		rendered.WriteString(strings.Join(rowCells, columnSeparatorConstant))
		rendered.WriteString(lineBreakConstant)
	}

	return rendered.String()
}

func padCell(cell string, width int) string {
	if len(cell) >= width {
		return cell
	}
	return cell + strings.Repeat(" ", width-len(cell))
}
