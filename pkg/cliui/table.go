package cliui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

// NoData is printed in place of an empty table.
const NoData = "(no data)"

var (
	cellStyle = lipgloss.NewStyle().PaddingRight(2)
	headStyle = cellStyle.Bold(true)
)

// Table writes rows under headers as aligned columns with a rule below the
// header. Rows shorter than headers are padded with "-".
func Table(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, DimStyle.Render(NoData))
		return err
	}

	t := lgtable.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(DimStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderRow(false).
		BorderHeader(true).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headStyle
			}
			return cellStyle
		})

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range cells {
			cells[i] = "-"
			if i < len(row) && row[i] != "" {
				cells[i] = row[i]
			}
		}
		t.Row(cells...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
