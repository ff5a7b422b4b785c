package extraction

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Row is one extracted document: its source and one value per table column.
type Row struct {
	Source string
	Values []int64
}

// Table is the tabular form of extraction results, one column per category.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table whose columns follow the catalog order.
func NewTable(c *Catalog) *Table {
	return &Table{Columns: c.Labels()}
}

// Append adds a result as a new row.
func (t *Table) Append(source string, r Result) {
	values := make([]int64, len(t.Columns))
	for i, col := range t.Columns {
		values[i], _ = r.Get(col)
	}
	t.Rows = append(t.Rows, Row{Source: source, Values: values})
}

// Value returns the value at row i for column label.
func (t *Table) Value(i int, label string) (int64, bool) {
	if i < 0 || i >= len(t.Rows) {
		return 0, false
	}
	for j, col := range t.Columns {
		if col == label {
			return t.Rows[i].Values[j], true
		}
	}
	return 0, false
}

// Result returns row i as a Result keyed by column label.
func (t *Table) Result(i int) Result {
	values := make(map[string]int64, len(t.Columns))
	for j, col := range t.Columns {
		values[col] = t.Rows[i].Values[j]
	}
	return Result{labels: t.Columns, values: values}
}

// WriteText renders the table with one line per category and one column
// per document, figures grouped by thousands.
func (t *Table) WriteText(w io.Writer) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "CATEGORY\t")
	for i, row := range t.Rows {
		name := row.Source
		if name == "" {
			name = strconv.Itoa(i)
		}
		fmt.Fprintf(tw, "%s\t", name)
	}
	fmt.Fprintln(tw)

	for j, col := range t.Columns {
		fmt.Fprintf(tw, "%s\t", col)
		for _, row := range t.Rows {
			p.Fprintf(tw, "%d\t", row.Values[j])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// WriteCSV writes a header row followed by one record per document. When
// withSource is set the first column holds the document source.
func (t *Table) WriteCSV(w io.Writer, withSource bool) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	if withSource {
		header = append(header, "source")
	}
	header = append(header, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Values)+1)
		if withSource {
			record = append(record, row.Source)
		}
		for _, v := range row.Values {
			record = append(record, strconv.FormatInt(v, 10))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Source, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Source string `json:"source,omitempty"`
	Values Result `json:"values"`
}

// WriteJSON writes an array with one object per document. Value keys keep
// catalog order.
func (t *Table) WriteJSON(w io.Writer) error {
	rows := make([]jsonRow, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = jsonRow{Source: row.Source, Values: t.Result(i)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Write renders the table in the named format: text, csv or json.
func (t *Table) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return t.WriteText(w)
	case "csv":
		return t.WriteCSV(w, len(t.Rows) > 1)
	case "json":
		return t.WriteJSON(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
