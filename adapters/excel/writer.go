package excel

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"modelbench/domain/training"
)

// ResultsWriter exports a training outcome as a workbook
type ResultsWriter struct {
	config ExcelConfig
}

// NewResultsWriter creates a writer with the given sheet names
func NewResultsWriter(config ExcelConfig) *ResultsWriter {
	defaults := DefaultExcelConfig()
	if config.ModelsSheet == "" {
		config.ModelsSheet = defaults.ModelsSheet
	}
	if config.HistorySheet == "" {
		config.HistorySheet = defaults.HistorySheet
	}
	return &ResultsWriter{config: config}
}

// WriteFile writes the workbook to path, creating parent directories
func (w *ResultsWriter) WriteFile(path string, outcome *training.Outcome) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := w.Write(f, outcome); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write builds the models and history sheets and writes the workbook to out
func (w *ResultsWriter) Write(out io.Writer, outcome *training.Outcome) error {
	if outcome == nil {
		return fmt.Errorf("no training outcome to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.config.ModelsSheet); err != nil {
		return fmt.Errorf("failed to name models sheet: %w", err)
	}
	if err := w.writeModels(f, outcome); err != nil {
		return err
	}
	if _, err := f.NewSheet(w.config.HistorySheet); err != nil {
		return fmt.Errorf("failed to add history sheet: %w", err)
	}
	if err := w.writeHistory(f, outcome.Results); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *ResultsWriter) writeModels(f *excelize.File, outcome *training.Outcome) error {
	sheet := w.config.ModelsSheet
	header := []interface{}{"Model", "Best Score", "Trials", "Best Params"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write models header: %w", err)
	}

	for i, m := range outcome.Results {
		trials := 0
		if m.History != nil {
			trials = len(m.History.Values)
		}
		params := ""
		if len(m.BestParams) > 0 {
			b, err := json.Marshal(m.BestParams)
			if err != nil {
				return fmt.Errorf("failed to encode params of %s: %w", m.Name, err)
			}
			params = string(b)
		}
		row := []interface{}{m.Name, m.BestScore, trials, params}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", m.Name, err)
		}
	}

	next := len(outcome.Results) + 3
	meta := [][]interface{}{
		{"Run", outcome.RunID.String()},
		{"Message", outcome.Message},
	}
	if !outcome.CompletedAt.IsZero() {
		meta = append(meta, []interface{}{"Completed", outcome.CompletedAt.String()})
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, next+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write run metadata: %w", err)
		}
	}
	return nil
}

// writeHistory lays out one column per model with history, one row per trial.
// Missing trials stay blank.
func (w *ResultsWriter) writeHistory(f *excelize.File, results training.Results) error {
	sheet := w.config.HistorySheet
	header := []interface{}{"Trial"}
	var columns []training.ModelResult
	longest := 0
	for _, m := range results {
		if !m.HasHistory() {
			continue
		}
		header = append(header, m.Name)
		columns = append(columns, m)
		if n := len(m.History.Values); n > longest {
			longest = n
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}

	for trial := 0; trial < longest; trial++ {
		row := make([]interface{}, 1+len(columns))
		row[0] = trial + 1
		for j, m := range columns {
			if trial < len(m.History.Values) && !math.IsNaN(m.History.Values[trial]) {
				row[j+1] = m.History.Values[trial]
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, trial+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write trial %d: %w", trial+1, err)
		}
	}
	return nil
}
