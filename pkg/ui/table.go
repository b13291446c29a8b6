package ui

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// TableColumn represents a column in the table
type TableColumn struct {
	Header string
	Width  int
	Align  string // "left", "right", "center"
}

// Table represents a data table
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

// NewTable creates a new table with specified columns
func NewTable(columns []TableColumn) *Table {
	return &Table{
		Columns: columns,
		Rows:    [][]string{},
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	var builder strings.Builder
	table := tablewriter.NewWriter(&builder)

	headers := make([]string, len(t.Columns))
	aligns := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = padRight(col.Header, col.Width)
		aligns[i] = alignment(col.Align)
	}
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment(aligns)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		copy(cells, row)
		table.Append(cells)
	}
	table.Render()

	lines := strings.Split(strings.TrimRight(builder.String(), "\n"), "\n")
	var out strings.Builder
	for i, line := range lines {
		switch {
		case i == 0:
			out.WriteString(StyleTableHeader.Render(line))
		case i == 1:
			out.WriteString(StyleTableBorder.Render(line))
		case i%2 == 0:
			out.WriteString(StyleTableRow.Render(line))
		default:
			out.WriteString(StyleTableRowAlt.Render(line))
		}
		out.WriteString("\n")
	}
	return out.String()
}

func alignment(align string) int {
	switch align {
	case "right":
		return tablewriter.ALIGN_RIGHT
	case "center":
		return tablewriter.ALIGN_CENTER
	default:
		return tablewriter.ALIGN_LEFT
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderKeyValues renders aligned "key: value" lines
func RenderKeyValues(pairs [][2]string) string {
	var builder strings.Builder
	table := tablewriter.NewWriter(&builder)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, pair := range pairs {
		table.Append([]string{StyleAccent.Render(pair[0] + ":"), pair[1]})
	}
	table.Render()
	return builder.String()
}

// RenderSimpleList renders a simple bulleted list
func RenderSimpleList(items []string) string {
	var builder strings.Builder
	for _, item := range items {
		builder.WriteString(StyleInfo.Render("  • "))
		builder.WriteString(item)
		builder.WriteString("\n")
	}
	return builder.String()
}

// RenderKeyValue renders a key-value pair
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s",
		StyleAccent.Render(key),
		value,
	)
}
