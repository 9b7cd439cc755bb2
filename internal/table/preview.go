package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const previewCellWidth = 40

// Fprint writes the first n rows as an aligned text grid
func Fprint(w io.Writer, t *Table, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\t"+strings.Join(truncateAll(t.Columns), "\t"))

	head := t.Head(n)
	for i := range head.Rows {
		values := make([]string, len(head.Columns))
		for j, cell := range head.Record(i) {
			values[j] = cell.String()
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(truncateAll(values), "\t"))
	}

	if t.Len() > head.Len() {
		fmt.Fprintf(tw, "... %d more row(s)\n", t.Len()-head.Len())
	}

	return tw.Flush()
}

func truncateAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = truncate(v)
	}
	return out
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewCellWidth {
		return s
	}
	return string(runes[:previewCellWidth-3]) + "..."
}
