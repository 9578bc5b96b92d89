package cli

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"

	"marketclock/internal/format"
)

func (a *app) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = a.out.Write(pretty.Pretty(data))
	return err
}

// printTable writes rows as space-separated, ANSI-aware aligned columns.
func (a *app) printTable(header []string, rows [][]string) error {
	cols := make([][]string, len(header))
	for i, h := range header {
		cols[i] = append(cols[i], h)
	}
	for _, row := range rows {
		for i := range cols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cols[i] = append(cols[i], cell)
		}
	}
	_, err := fmt.Fprintln(a.out, format.Adjoin(2, cols...))
	return err
}
