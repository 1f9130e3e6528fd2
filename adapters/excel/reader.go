package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dataview/adapters/coercer"
	"dataview/domain/table"
)

// DataReader reads Excel and CSV files into frames
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "tsv"
	sheet    string
	coercer  *coercer.TypeCoercer
	logger   *zap.Logger
}

// NewDataReader creates a reader for filePath. The file type follows the
// extension; anything other than .csv and .tsv is opened as a workbook.
func NewDataReader(filePath string, cfg Config, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	fileType := "xlsx"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".tsv":
		fileType = "tsv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		sheet:    cfg.Sheet,
		coercer:  coercer.NewTypeCoercer(cfg.Coercion),
		logger:   logger,
	}
}

// ReadFrame reads the file and infers a type for every column. A blank first
// header marks a column of row labels.
func (r *DataReader) ReadFrame(name string) (*table.Frame, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv", "tsv":
		rows, err = r.readDelimited()
	default:
		rows, err = r.readWorkbook()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file has no header row: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	frame := r.processRows(name, rows)
	r.logger.Debug("file read",
		zap.String("path", r.filePath),
		zap.Int("rows", frame.NumRows()),
		zap.Int("columns", frame.NumColumns()),
		zap.Duration("elapsed", time.Since(start)))
	return frame, nil
}

// readWorkbook reads the configured sheet, or the first one
func (r *DataReader) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// readDelimited reads CSV or TSV data
func (r *DataReader) readDelimited() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(r.fileType), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if r.fileType == "tsv" {
		reader.Comma = '\t'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", strings.ToUpper(r.fileType), err)
	}
	return rows, nil
}

// processRows turns raw rows into typed columns. Short rows are padded with
// missing cells.
func (r *DataReader) processRows(name string, rows [][]string) *table.Frame {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	data := rows[1:]

	var labels []string
	first := 0
	if len(headers) > 0 && headers[0] == "" {
		first = 1
		labels = make([]string, len(data))
		for i, row := range data {
			if len(row) > 0 {
				labels[i] = strings.TrimSpace(row[0])
			}
		}
	}

	columns := make([]table.Column, 0, len(headers)-first)
	for j := first; j < len(headers); j++ {
		cells := make([]any, len(data))
		for i, row := range data {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		columns = append(columns, r.coercer.InferColumn(headers[j], cells))
	}

	frame := table.NewFrame(name, columns...)
	frame.RowLabels = labels
	return frame
}
