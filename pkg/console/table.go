package console

import (
	"strings"

	"github.com/angelsen/ry-tool/pkg/styles"
)

// TableConfig describes a table for RenderTable.
type TableConfig struct {
	Title     string
	Headers   []string
	Rows      [][]string
	ShowTotal bool
	TotalRow  []string
}

// RenderTable renders a left-aligned column table. Returns the empty
// string when there is nothing to show.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 && len(config.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(config.Headers))
	for i, h := range config.Headers {
		widths[i] = len(h)
	}
	measure := func(row []string) {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, row := range config.Rows {
		measure(row)
	}
	if config.ShowTotal {
		measure(config.TotalRow)
	}

	formatRow := func(row []string) string {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cell += strings.Repeat(" ", widths[i]-len(cell))
			}
			cells = append(cells, cell)
		}
		return strings.TrimRight(strings.Join(cells, "  "), " ")
	}

	var sb strings.Builder
	if config.Title != "" {
		sb.WriteString(render(styles.Bold, config.Title))
		sb.WriteString("\n")
	}
	sb.WriteString(render(styles.Bold, formatRow(config.Headers)))
	sb.WriteString("\n")
	for _, row := range config.Rows {
		sb.WriteString(formatRow(row))
		sb.WriteString("\n")
	}
	if config.ShowTotal && len(config.TotalRow) > 0 {
		total := len(widths)*2 - 2
		for _, w := range widths {
			total += w
		}
		sb.WriteString(strings.Repeat("─", total))
		sb.WriteString("\n")
		sb.WriteString(render(styles.Bold, formatRow(config.TotalRow)))
		sb.WriteString("\n")
	}
	return sb.String()
}
