package results

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "modelbench/domain/training"
	"modelbench/internal"
	"modelbench/internal/testkit"
)

func scenario(t *testing.T) domain.Results {
	t.Helper()
	var r domain.Results
	require.NoError(t, json.Unmarshal([]byte(`{
		"RF": {"best_score": 0.8, "optimization_history": {"values": [0.5, 0.7, 0.8]}},
		"SVM": {"best_score": 0.6}
	}`), &r))
	return r
}

func TestRender_Scenario(t *testing.T) {
	var logs bytes.Buffer
	page := testkit.NewPage()
	r := NewRenderer(page, internal.NewLoggerTo(&logs, internal.LogLevelInfo, true))

	out, ok := r.Render(scenario(t))
	require.True(t, ok)

	require.Len(t, page.Comparisons, 1)
	bars := page.Comparisons[0]
	assert.Equal(t, []string{"RF", "SVM"}, bars.Labels)
	assert.Equal(t, []float64{0.8, 0.6}, bars.Values)
	assert.Equal(t, LabelRotation, bars.LabelRotation)

	require.Len(t, page.Histories, 1)
	require.Len(t, page.Histories[0].Series, 1)
	rf := page.Histories[0].Series[0]
	assert.Equal(t, "RF", rf.Name)
	assert.Equal(t, []int{1, 2, 3}, rf.X)
	assert.Equal(t, "RF\nTrial: 2\nScore: 0.7000", rf.Hover[1])

	assert.Equal(t, []string{"SVM"}, out.Skipped)
	assert.Contains(t, logs.String(), "no optimization history for SVM")
	assert.Equal(t, 1, page.DownloadsShown)
	assert.Empty(t, page.Placeholders)
}

func TestBuild_NullTrialsKeepTrialNumbers(t *testing.T) {
	results := domain.Results{{Name: "xgb", BestScore: 0.9, History: &domain.History{Values: []float64{0.4, math.NaN(), 0.9}}}}
	out := Build(results)
	require.NotNil(t, out.History)

	points := out.History.Series[0].Points()
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Trial)
	assert.Equal(t, 3, points[1].Trial)
	assert.Equal(t, 0.9, points[1].Score)
}

func TestRender_NoHistoryPlaceholder(t *testing.T) {
	page := testkit.NewPage()
	r := NewRenderer(page, nil)

	_, ok := r.Render(domain.Results{
		{Name: "a", BestScore: 1},
		{Name: "b", BestScore: 2, History: &domain.History{}},
	})
	require.True(t, ok)
	assert.Empty(t, page.Histories)
	assert.Equal(t, []string{NoHistoryText}, page.Placeholders)
	assert.Equal(t, 1, page.DownloadsShown)
}

func TestRender_EmptyOrMissingSurface(t *testing.T) {
	page := testkit.NewPage()
	_, ok := NewRenderer(page, nil).Render(nil)
	assert.False(t, ok)
	assert.Empty(t, page.Comparisons)
	assert.Zero(t, page.DownloadsShown)

	_, ok = NewRenderer(nil, nil).Render(domain.Results{{Name: "a"}})
	assert.False(t, ok)
}
