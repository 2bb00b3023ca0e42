package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"modelbench/domain/dataset"
	"modelbench/internal"
)

// DataReader handles reading Excel and CSV uploads
type DataReader struct {
	fileName string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension, defaulting to CSV
func NewDataReader(fileName string, config ExcelConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(fileName))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{
		fileName: fileName,
		fileType: fileType,
		sheet:    config.InputSheet,
		logger:   internal.DefaultLogger.With("excel"),
	}
}

// FileType returns "csv" or "xlsx"
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadData reads the upload into headers and string rows
func (r *DataReader) ReadData(content io.Reader) (*ExcelData, error) {
	r.logger.Debug("reading %s upload %s", r.fileType, r.fileName)

	switch r.fileType {
	case "csv":
		return r.readCSVData(content)
	case "xlsx":
		return r.readExcelData(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadDataset reads the upload and coerces cells like a dataframe export
func (r *DataReader) ReadDataset(content io.Reader) (dataset.Dataset, []string, error) {
	data, err := r.ReadData(content)
	if err != nil {
		return nil, nil, err
	}
	return ToDataset(data), data.Headers, nil
}

func (r *DataReader) readExcelData(content io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	r.logger.Debug("%s read in %s (%d rows)", sheet, time.Since(startTime), len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have a header row")
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSVData(content io.Reader) (*ExcelData, error) {
	reader := csv.NewReader(content)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("No columns to parse from file")
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData. Short rows leave the
// missing cells empty.
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ToDataset converts string rows to ordered records with typed values
func ToDataset(data *ExcelData) dataset.Dataset {
	out := make(dataset.Dataset, 0, len(data.Rows))
	for _, raw := range data.Rows {
		fields := make([]dataset.Field, 0, len(data.Headers))
		for _, h := range data.Headers {
			fields = append(fields, dataset.Field{Key: h, Value: CoerceCell(raw[h])})
		}
		out = append(out, dataset.NewRow(fields...))
	}
	return out
}

// CoerceCell maps a cell to null, a boolean, a number or the original string
func CoerceCell(cell string) dataset.Value {
	switch cell {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return nil
	case "True", "true", "TRUE":
		return true
	case "False", "false", "FALSE":
		return false
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(f) {
			return nil
		}
		if !math.IsInf(f, 0) {
			return f
		}
	}
	return cell
}
