// Package export serializes a selection of the current view.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"

	"dataview/domain/core"
	"dataview/domain/format"
	"dataview/domain/table"
)

// Format is an export output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// SupportedFormats lists every export format.
func SupportedFormats() []Format {
	return []Format{FormatCSV, FormatTSV, FormatHTML, FormatMarkdown}
}

// SelectionKind names the shape of an export selection.
type SelectionKind string

const (
	SelectSingleCell    SelectionKind = "single_cell"
	SelectCellRange     SelectionKind = "cell_range"
	SelectRowRange      SelectionKind = "row_range"
	SelectColumnRange   SelectionKind = "column_range"
	SelectRowIndices    SelectionKind = "row_indices"
	SelectColumnIndices SelectionKind = "column_indices"
)

// Selection describes cells in view coordinates. Which fields apply depends
// on Kind.
type Selection struct {
	Kind             SelectionKind `json:"kind"`
	RowIndex         int           `json:"row_index"`
	ColumnIndex      int           `json:"column_index"`
	FirstRowIndex    int           `json:"first_row_index"`
	LastRowIndex     int           `json:"last_row_index"`
	FirstColumnIndex int           `json:"first_column_index"`
	LastColumnIndex  int           `json:"last_column_index"`
	Indices          []int         `json:"indices,omitempty"`
}

// Result is a serialized payload tagged with its format.
type Result struct {
	Data   string `json:"data"`
	Format Format `json:"format"`
}

// Exporter renders selections through the display formatting rules.
type Exporter struct {
	opts format.Options
}

func NewExporter(opts format.Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export renders sel over the view rows of frame. Indices outside the view or
// the table are dropped.
func (e *Exporter) Export(frame *table.Frame, rows []int, sel Selection, f Format) (Result, error) {
	if !validFormat(f) {
		return Result{}, core.NewInvalidRequestError(fmt.Sprintf("unsupported export format '%s'", f))
	}

	if sel.Kind == SelectSingleCell {
		data := ""
		if r, c, ok := cellAt(frame, rows, sel.RowIndex, sel.ColumnIndex); ok {
			col, _ := frame.Column(c)
			data = format.Value(col.Value(r), col.Type, e.opts).String()
		}
		return Result{Data: data, Format: f}, nil
	}

	positions, columns, err := resolve(frame, len(rows), sel)
	if err != nil {
		return Result{}, err
	}

	records := make([][]string, 0, len(positions)+1)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = frame.Columns[c].Name
	}
	records = append(records, header)
	for _, p := range positions {
		record := make([]string, len(columns))
		for i, c := range columns {
			col := frame.Columns[c]
			record[i] = format.Value(col.Value(rows[p]), col.Type, e.opts).String()
		}
		records = append(records, record)
	}

	data, err := render(records, f)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: data, Format: f}, nil
}

func validFormat(f Format) bool {
	for _, known := range SupportedFormats() {
		if f == known {
			return true
		}
	}
	return false
}

func cellAt(frame *table.Frame, rows []int, row, column int) (int, int, bool) {
	if row < 0 || row >= len(rows) || column < 0 || column >= frame.NumColumns() {
		return 0, 0, false
	}
	return rows[row], column, true
}

// resolve returns the view positions and column indices a selection covers.
func resolve(frame *table.Frame, numRows int, sel Selection) ([]int, []int, error) {
	numCols := frame.NumColumns()
	allRows := span(0, numRows-1, numRows)
	allCols := span(0, numCols-1, numCols)

	switch sel.Kind {
	case SelectCellRange:
		return span(sel.FirstRowIndex, sel.LastRowIndex, numRows),
			span(sel.FirstColumnIndex, sel.LastColumnIndex, numCols), nil
	case SelectRowRange:
		return span(sel.FirstRowIndex, sel.LastRowIndex, numRows), allCols, nil
	case SelectColumnRange:
		return allRows, span(sel.FirstColumnIndex, sel.LastColumnIndex, numCols), nil
	case SelectRowIndices:
		return within(sel.Indices, numRows), allCols, nil
	case SelectColumnIndices:
		return allRows, within(sel.Indices, numCols), nil
	}
	return nil, nil, core.NewInvalidRequestError(fmt.Sprintf("unknown selection kind '%s'", sel.Kind))
}

func span(first, last, limit int) []int {
	first = max(first, 0)
	last = min(last, limit-1)
	out := make([]int, 0, max(last-first+1, 0))
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}

func within(indices []int, limit int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < limit {
			out = append(out, i)
		}
	}
	return out
}

func render(records [][]string, f Format) (string, error) {
	switch f {
	case FormatCSV, FormatTSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if f == FormatTSV {
			w.Comma = '\t'
		}
		if err := w.WriteAll(records); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", f, err)
		}
		return buf.String(), nil
	case FormatMarkdown:
		return markdownTable(records), nil
	case FormatHTML:
		return htmlTable(records), nil
	}
	return "", core.NewInvalidRequestError(fmt.Sprintf("unsupported export format '%s'", f))
}

// htmlTable renders records as an HTML table. Cells become text nodes, so
// their content is escaped rather than parsed as markup.
func htmlTable(records [][]string) string {
	tbl := &ast.Table{}
	var body ast.Node
	for i, record := range records {
		row := &ast.TableRow{}
		for _, cell := range record {
			td := &ast.TableCell{IsHeader: i == 0}
			ast.AppendChild(td, &ast.Text{Leaf: ast.Leaf{Literal: []byte(cell)}})
			ast.AppendChild(row, td)
		}
		if i == 0 {
			head := &ast.TableHeader{}
			ast.AppendChild(head, row)
			ast.AppendChild(tbl, head)
			continue
		}
		if body == nil {
			body = &ast.TableBody{}
			ast.AppendChild(tbl, body)
		}
		ast.AppendChild(body, row)
	}
	doc := &ast.Document{}
	ast.AppendChild(doc, tbl)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	return string(markdown.Render(doc, renderer))
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func markdownTable(records [][]string) string {
	var b strings.Builder
	for i, record := range records {
		b.WriteString("|")
		for _, cell := range record {
			b.WriteString(" ")
			b.WriteString(markdownEscaper.Replace(cell))
			b.WriteString(" |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for range record {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
