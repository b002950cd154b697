package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

const maxCellWidth = 80

// TableFormatter renders each result table as a bordered grid. The header
// is the union of the rows' columns; a row without a column gets an empty
// cell.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, rep Report) error {
	for i, t := range rep.Tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(t.Source)

		cols := t.Columns()
		if len(cols) == 0 {
			tw.AppendHeader(table.Row{"(no rows)"})
		} else {
			header := make(table.Row, 0, len(cols)+1)
			header = append(header, "#")
			for _, c := range cols {
				header = append(header, c)
			}
			tw.AppendHeader(header)

			configs := make([]table.ColumnConfig, 0, len(cols))
			for i := range cols {
				configs = append(configs, table.ColumnConfig{Number: i + 2, WidthMax: maxCellWidth})
			}
			tw.SetColumnConfigs(configs)
		}

		for n, row := range t.Rows {
			cells := make(table.Row, 0, len(cols)+1)
			cells = append(cells, n)
			for _, c := range cols {
				v, ok := row.Get(c)
				if !ok {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, v.String())
			}
			tw.AppendRow(cells)
		}

		if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
			return err
		}
	}
	return nil
}
