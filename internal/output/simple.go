package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vitalis-app/hostenum/internal/models"
)

// SimpleFormatter prints each table as a "==[source]==" banner followed by
// numbered rows of "column : value" lines.
//
//	==[Antivirus]==
//	 [0]
//		displayName : Windows Defender
type SimpleFormatter struct{}

func (f *SimpleFormatter) Format(w io.Writer, rep Report) error {
	bw := bufio.NewWriter(w)
	for i, table := range rep.Tables {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		writeSimpleTable(bw, table)
	}
	return bw.Flush()
}

func writeSimpleTable(w io.Writer, table models.Table) {
	fmt.Fprintf(w, "==[%s]==\n", table.Source)
	for i, row := range table.Rows {
		fmt.Fprintf(w, " [%d]\n", i)
		for _, col := range row.Columns() {
			v, _ := row.Get(col)
			fmt.Fprintf(w, "\t%s : %s\n", col, v.String())
		}
	}
}
