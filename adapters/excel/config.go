package excel

// ExcelConfig names the sheets read and written by this package
type ExcelConfig struct {
	// InputSheet is read from uploaded workbooks; empty means the first sheet
	InputSheet   string `json:"input_sheet"`
	ModelsSheet  string `json:"models_sheet"`
	HistorySheet string `json:"history_sheet"`
}

// DefaultExcelConfig returns the sheet names used by the export
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		ModelsSheet:  "models",
		HistorySheet: "history",
	}
}
