package testkit

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
	apperrors "modelbench/internal/errors"
)

func labelled(target string, labels ...dataset.Value) dataset.Dataset {
	rows := make(dataset.Dataset, len(labels))
	for i, l := range labels {
		rows[i] = dataset.NewRow(
			dataset.Field{Key: "x", Value: float64(i)},
			dataset.Field{Key: target, Value: l},
		)
	}
	return rows
}

func repeat(v dataset.Value, n int) []dataset.Value {
	out := make([]dataset.Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newKit(t *testing.T, config FixtureConfig) *TestKit {
	t.Helper()
	kit, err := NewTestKitWithConfig(config)
	require.NoError(t, err)
	t.Cleanup(kit.Close)
	return kit
}

func TestFixture_Upload(t *testing.T) {
	kit := newKit(t, DefaultFixtureConfig())
	data := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()

	resp, err := kit.UploadDataset(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, MsgUploadCompleted, resp.Message)
	assert.Equal(t, CustomerColumns, resp.Columns)
	require.Equal(t, data.Len(), resp.Data.Len())
	assert.Equal(t, CustomerColumns, resp.Data[0].Keys())

	expedited, _ := resp.Data[0].Get(ColExpedited)
	assert.IsType(t, true, expedited)
}

func TestFixture_UploadErrors(t *testing.T) {
	kit := newKit(t, DefaultFixtureConfig())

	resp, err := http.Post(kit.Server.URL+"/upload", "application/x-www-form-urlencoded", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "No file uploaded", decoded["error"])

	_, err = kit.Client.Upload(context.Background(), "empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, "No columns to parse from file", apperrors.UserMessage(err))
}

func TestFixture_TrainClassification(t *testing.T) {
	kit := newKit(t, DefaultFixtureConfig())
	data := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()

	outcome, err := kit.Client.Train(context.Background(), training.Request{
		Data: data, TargetColumn: ColChurned, TaskType: training.Classification,
	})
	require.NoError(t, err)

	assert.Equal(t, MsgTrainingCompleted, outcome.Message)
	assert.Equal(t, []dataset.Value{0.0, 1.0}, outcome.TargetClasses)
	assert.Equal(t, []string{"logistic_regression", "random_forest", "svm", "knn", "lightgbm", "xgboost"}, outcome.Results.Names())

	for _, m := range outcome.Results {
		require.True(t, m.HasHistory(), m.Name)
		assert.Len(t, m.History.Values, 10)
		assert.Len(t, m.History.Params, 10)
		for _, v := range m.History.Values {
			assert.LessOrEqual(t, v, m.BestScore, m.Name)
		}
	}

	rf, ok := outcome.Results.Get("random_forest")
	require.True(t, ok)
	depth, ok := rf.BestParams["max_depth"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 9, depth, 6)
}

func TestFixture_TrainRegression(t *testing.T) {
	kit := newKit(t, FixtureConfig{Trials: 6, Seed: 7, FailedTrialEvery: 3})
	data := NewCustomerDataGenerator(DefaultCustomerConfig()).Generate()

	outcome, err := kit.Client.Train(context.Background(), training.Request{
		Data: data, TargetColumn: ColLifetimeValue, TaskType: training.Regression,
	})
	require.NoError(t, err)

	assert.Nil(t, outcome.TargetClasses)
	assert.Equal(t, []string{"linear_regression", "random_forest", "svr", "lightgbm", "xgboost"}, outcome.Results.Names())

	lr, _ := outcome.Results.Get("linear_regression")
	assert.Empty(t, lr.BestParams)

	for _, m := range outcome.Results {
		values := m.History.Values
		require.Len(t, values, 6)
		assert.True(t, math.IsNaN(values[2]), "every third trial is null")
		assert.True(t, math.IsNaN(values[5]))
		for _, v := range values {
			if !math.IsNaN(v) {
				assert.GreaterOrEqual(t, v, m.BestScore, m.Name)
			}
		}
	}
}

func TestFixture_TrainIsDeterministic(t *testing.T) {
	kit := newKit(t, DefaultFixtureConfig())
	req := training.Request{
		Data:         NewCustomerDataGenerator(DefaultCustomerConfig()).Generate(),
		TargetColumn: ColChurned,
		TaskType:     training.Classification,
	}

	first, err := kit.Client.Train(context.Background(), req)
	require.NoError(t, err)
	second, err := kit.Client.Train(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
}

func TestFixture_TrainValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    FixtureConfig
		data      dataset.Dataset
		task      training.TaskType
		wantError string
	}{
		{
			name:      "all null target",
			data:      labelled("y", nil, nil, nil),
			task:      training.Classification,
			wantError: "Target column contains only null values.",
		},
		{
			name:      "single class",
			data:      labelled("y", "yes", "yes", nil),
			task:      training.Classification,
			wantError: "Data must contain at least 2 classes for classification tasks. Currently found classes: ['yes']",
		},
		{
			name:      "severe imbalance",
			data:      labelled("y", append(repeat(0.0, 19), 1.0)...),
			task:      training.Classification,
			wantError: "Severe class imbalance detected. Minimum class has 1 samples, maximum class has 19 samples.",
		},
		{
			name:      "every model fails",
			config:    FixtureConfig{FailModels: []string{"linear_regression", "random_forest", "svr", "lightgbm", "xgboost"}},
			data:      labelled("y", 1.0, 2.0, 3.0),
			task:      training.Regression,
			wantError: "All models failed to train. Please check your data and try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kit := newKit(t, tt.config)
			_, err := kit.Client.Train(context.Background(), training.Request{Data: tt.data, TargetColumn: "y", TaskType: tt.task})
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeServerReported, apperrors.GetCode(err))
			assert.Equal(t, tt.wantError, apperrors.UserMessage(err))
		})
	}
}

func TestFixture_PartialFailureDropsModel(t *testing.T) {
	kit := newKit(t, FixtureConfig{FailModels: []string{"svm"}})
	outcome, err := kit.Client.Train(context.Background(), training.Request{
		Data: labelled("y", 0.0, 1.0, 0.0, 1.0), TargetColumn: "y", TaskType: training.Classification,
	})
	require.NoError(t, err)
	assert.NotContains(t, outcome.Results.Names(), "svm")

	_, ok := kit.Fixture.Artifact("svm")
	assert.False(t, ok)
}

func TestFixture_Download(t *testing.T) {
	kit := newKit(t, DefaultFixtureConfig())
	_, err := kit.Client.Train(context.Background(), training.Request{
		Data: labelled("y", "a", "b", "a", "b"), TargetColumn: "y", TaskType: training.Classification,
	})
	require.NoError(t, err)

	body, err := kit.Client.DownloadModel(context.Background(), "svm")
	require.NoError(t, err)
	defer body.Close()
	var artifact map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&artifact))
	assert.Equal(t, "svm", artifact["model"])
	assert.Equal(t, []interface{}{"a", "b"}, artifact["target_classes"])

	rec := httptest.NewRecorder()
	kit.Fixture.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download_model/knn", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=knn_model.pkl", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	kit.Fixture.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download_model/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Model missing not found"}`, rec.Body.String())

	_, err = kit.Client.DownloadModel(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Failed to download model", apperrors.UserMessage(err))
}

func TestFormatClasses(t *testing.T) {
	assert.Equal(t, "[0]", formatClasses([]dataset.Value{0.0}))
	assert.Equal(t, "['a' 'b']", formatClasses([]dataset.Value{"a", "b"}))
	assert.Equal(t, "[]", formatClasses(nil))
}
