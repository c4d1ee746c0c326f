package exporter

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderTable lays out headers and rows as a plain-text grid, suitable for
// embedding in a log record
func RenderTable(headers []string, rows [][]string) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	return buf.String()
}
