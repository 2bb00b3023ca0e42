package excel

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"modelbench/domain/core"
	"modelbench/domain/training"
)

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"", nil},
		{"NaN", nil},
		{"42", 42.0},
		{"-1.5e3", -1500.0},
		{"True", true},
		{"false", false},
		{"red", "red"},
		{"Inf", "Inf"},
		{"007", 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceCell(tt.in))
		})
	}
}

func TestDataReader_CSV(t *testing.T) {
	csv := "age, color ,target\n30,red,1\n41,,0\n\n52,blue\n"
	reader := NewDataReader("data.CSV", DefaultExcelConfig())
	assert.Equal(t, "csv", reader.FileType())

	data, columns, err := reader.ReadDataset(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "color", "target"}, columns)
	require.Len(t, data, 3, "blank line skipped")

	assert.Equal(t, []string{"age", "color", "target"}, data[0].Keys())
	v, ok := data[0].Get("age")
	require.True(t, ok)
	assert.Equal(t, 30.0, v)

	v, ok = data[1].Get("color")
	require.True(t, ok)
	assert.Nil(t, v)

	v, ok = data[2].Get("target")
	require.True(t, ok, "short rows still carry every column")
	assert.Nil(t, v)
}

func TestDataReader_EmptyCSV(t *testing.T) {
	_, err := NewDataReader("empty.csv", DefaultExcelConfig()).ReadData(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDataReader_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"income", "segment"},
		{1200.5, "a"},
		{980, "b"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	reader := NewDataReader("upload.xlsx", DefaultExcelConfig())
	assert.Equal(t, "xlsx", reader.FileType())
	data, columns, err := reader.ReadDataset(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"income", "segment"}, columns)
	require.Len(t, data, 2)

	v, _ := data[0].Get("income")
	assert.Equal(t, 1200.5, v)
	v, _ = data[1].Get("segment")
	assert.Equal(t, "b", v)
}

func TestResultsWriter(t *testing.T) {
	outcome := &training.Outcome{
		RunID:   core.RunID("run-1"),
		Message: "Training completed successfully",
		Results: training.Results{
			{
				Name:       "random_forest",
				BestScore:  0.95,
				BestParams: map[string]interface{}{"n_estimators": 100.0},
				History:    &training.History{Values: []float64{0.9, math.NaN(), 0.95}},
			},
			{Name: "svm", BestScore: 0.91},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewResultsWriter(ExcelConfig{}).Write(&buf, outcome))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"models", "history"}, f.GetSheetList())

	models, err := f.GetRows("models")
	require.NoError(t, err)
	assert.Equal(t, []string{"Model", "Best Score", "Trials", "Best Params"}, models[0])
	assert.Equal(t, []string{"random_forest", "0.95", "3", `{"n_estimators":100}`}, models[1])
	assert.Equal(t, []string{"svm", "0.91", "0"}, models[2])
	assert.Equal(t, []string{"Run", "run-1"}, models[4])

	history, err := f.GetRows("history")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, []string{"Trial", "random_forest"}, history[0])
	assert.Equal(t, []string{"1", "0.9"}, history[1])
	assert.Equal(t, []string{"2"}, history[2], "missing trial left blank")
	assert.Equal(t, []string{"3", "0.95"}, history[3])
}

func TestResultsWriter_NilOutcome(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewResultsWriter(DefaultExcelConfig()).Write(&buf, nil))
}
