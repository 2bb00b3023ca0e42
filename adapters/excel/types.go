package excel

// RawRowData represents a row of raw spreadsheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents a parsed sheet or CSV file
type ExcelData struct {
	Headers []string     // Column headers, in file order
	Rows    []RawRowData // Data rows
}
