// Package reporting renders decoded recycle bin records for the
// console, either as a table for humans or as JSONL for machines.
package reporting

import (
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	recyclebin "www.velocidex.com/golang/recyclebin"
	"www.velocidex.com/golang/recyclebin/json"
	"www.velocidex.com/golang/recyclebin/utils"
)

// Row builds the presentation row for one decoded record. Key order
// here is column order in every output format.
func Row(ifile string, record *recyclebin.Record) *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("IFile", ifile).
		Set("Version", record.Version).
		Set("Size", record.DeclaredSize).
		Set("Deleted", utils.FormatTime(record.DeletionTime)).
		Set("DeletedPath", record.DeletedPath).
		Set("RestorePath", record.RestorePath())
}

// OutputRowsToTable renders the rows as an ascii table. The caller
// calls Render() on the result.
func OutputRowsToTable(rows []*ordereddict.Dict, out io.Writer) *tablewriter.Table {
	var columns []string

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		if columns == nil {
			columns = row.Keys()
			table.SetHeader(columns)
		}

		string_row := []string{}
		for _, key := range columns {
			cell := ""
			value, pres := row.Get(key)
			if pres {
				cell = fmt.Sprintf("%v", value)

				// Declared sizes read better humanized.
				if key == "Size" {
					size, ok := value.(uint64)
					if ok {
						cell = humanize.Bytes(size)
					}
				}
			}
			string_row = append(string_row, cell)
		}

		table.Append(string_row)
	}

	table.SetCaption(true, fmt.Sprintf("%v records", len(rows)))
	return table
}

// OutputRowsToJSON writes one JSON object per row (JSONL). The
// ordereddict encoder keeps the column order stable.
func OutputRowsToJSON(rows []*ordereddict.Dict, out io.Writer) error {
	for _, row := range rows {
		serialized, err := json.Marshal(row)
		if err != nil {
			return err
		}

		_, err = out.Write(append(serialized, '\n'))
		if err != nil {
			return err
		}
	}

	return nil
}
