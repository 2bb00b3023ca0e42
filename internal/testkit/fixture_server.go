package testkit

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"modelbench/adapters/excel"
	"modelbench/domain/dataset"
	"modelbench/domain/training"
	"modelbench/internal"
)

// ParamRange is the search interval of one hyperparameter. Integer ranges
// draw whole numbers.
type ParamRange struct {
	Name    string
	Min     float64
	Max     float64
	Integer bool
}

// ModelSpec is one entry of the fixture's model registry
type ModelSpec struct {
	Name   string
	Params []ParamRange
}

// ClassificationModels mirrors the classifiers the real server optimizes, in its order
var ClassificationModels = []ModelSpec{
	{Name: "logistic_regression", Params: []ParamRange{{"C", 0.01, 100, false}, {"max_iter", 100, 500, true}}},
	{Name: "random_forest", Params: []ParamRange{{"n_estimators", 50, 300, true}, {"max_depth", 3, 15, true}, {"min_samples_split", 2, 20, true}}},
	{Name: "svm", Params: []ParamRange{{"C", 0.01, 100, false}, {"gamma", 0.001, 1.0, false}}},
	{Name: "knn", Params: []ParamRange{{"n_neighbors", 3, 15, true}, {"leaf_size", 20, 50, true}}},
	{Name: "lightgbm", Params: []ParamRange{{"num_leaves", 20, 100, true}, {"learning_rate", 0.01, 0.3, false}, {"n_estimators", 50, 300, true}}},
	{Name: "xgboost", Params: []ParamRange{{"max_depth", 3, 15, true}, {"learning_rate", 0.01, 0.3, false}, {"n_estimators", 50, 300, true}}},
}

// RegressionModels mirrors the regressors the real server optimizes, in its order
var RegressionModels = []ModelSpec{
	{Name: "linear_regression"},
	{Name: "random_forest", Params: []ParamRange{{"n_estimators", 50, 300, true}, {"max_depth", 3, 15, true}, {"min_samples_split", 2, 20, true}}},
	{Name: "svr", Params: []ParamRange{{"C", 0.01, 100, false}, {"gamma", 0.001, 1.0, false}}},
	{Name: "lightgbm", Params: []ParamRange{{"num_leaves", 20, 100, true}, {"learning_rate", 0.01, 0.3, false}, {"n_estimators", 50, 300, true}}},
	{Name: "xgboost", Params: []ParamRange{{"max_depth", 3, 15, true}, {"learning_rate", 0.01, 0.3, false}, {"n_estimators", 50, 300, true}}},
}

const (
	MsgTrainingCompleted = "Training completed successfully"
	MsgUploadCompleted   = "File uploaded successfully"
	// MinImbalanceRatio is the smallest accepted min/max class count ratio
	MinImbalanceRatio = 0.1
)

// FixtureConfig tunes the canned training output
type FixtureConfig struct {
	Trials int
	Seed   int64
	// FailedTrialEvery reports every n-th trial as null; zero disables it
	FailedTrialEvery int
	// FailModels lists models that fail to train and are left out of the results
	FailModels []string
	GinMode    string
}

// DefaultFixtureConfig returns a small deterministic setup
func DefaultFixtureConfig() FixtureConfig {
	return FixtureConfig{Trials: 10, Seed: 42, GinMode: gin.TestMode}
}

// FixtureServer speaks the training server's HTTP contract with
// deterministic canned output. It trains nothing.
type FixtureServer struct {
	router *gin.Engine
	config FixtureConfig
	logger *internal.Logger

	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewFixtureServer builds the gin router
func NewFixtureServer(config FixtureConfig, logger *internal.Logger) *FixtureServer {
	if config.Trials <= 0 {
		config.Trials = DefaultFixtureConfig().Trials
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &FixtureServer{
		router:    gin.New(),
		config:    config,
		logger:    logger.With("fixture"),
		artifacts: make(map[string][]byte),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.router.MaxMultipartMemory = 32 << 20
	s.setupRoutes()
	return s
}

func (s *FixtureServer) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/train", s.handleTrain)
	s.router.GET("/download_model/:name", s.handleDownload)
}

// requestLogger logs one line per request with the caller's request ID
func (s *FixtureServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("%s %s -> %d (request %s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.GetHeader("X-Request-ID"))
	}
}

// Handler exposes the router
func (s *FixtureServer) Handler() http.Handler {
	return s.router
}

// Run listens on addr
func (s *FixtureServer) Run(addr string) error {
	s.logger.Info("fixture server listening on %s", addr)
	return s.router.Run(addr)
}

// Artifact returns the stored artifact of a trained model
func (s *FixtureServer) Artifact(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.artifacts[name]
	return b, ok
}

func (s *FixtureServer) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}

	data, columns, err := excel.NewDataReader(header.Filename, excel.DefaultExcelConfig()).ReadDataset(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("parsed %s: %d rows, %d columns", header.Filename, data.Len(), len(columns))
	c.JSON(http.StatusOK, gin.H{
		"message": MsgUploadCompleted,
		"columns": columns,
		"sample":  data.Head(5),
		"data":    data,
	})
}

func (s *FixtureServer) handleTrain(c *gin.Context) {
	var req training.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := req.Data.Column(req.TargetColumn)
	if req.Data.Len() == 0 || !hasColumn(target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("\"['%s'] not found in axis\"", req.TargetColumn)})
		return
	}

	var classes []dataset.Value
	if req.TaskType.IsClassification() {
		var msg string
		classes, msg = validateClasses(target)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	specs := RegressionModels
	if req.TaskType.IsClassification() {
		specs = ClassificationModels
	}

	results := make(training.Results, 0, len(specs))
	for _, spec := range specs {
		if s.fails(spec.Name) {
			s.logger.Warn("model %s failed to train", spec.Name)
			continue
		}
		result := s.optimize(spec, req)
		results = append(results, result)
		s.storeArtifact(result, classes)
	}
	if len(results) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All models failed to train. Please check your data and try again."})
		return
	}

	c.JSON(http.StatusOK, training.Outcome{
		Message:       MsgTrainingCompleted,
		Results:       results,
		TargetClasses: classes,
	})
}

func (s *FixtureServer) handleDownload(c *gin.Context) {
	name := c.Param("name")
	artifact, ok := s.Artifact(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Model %s not found", name)})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_model.pkl", strings.ToLower(name)))
	c.Data(http.StatusOK, "application/octet-stream", artifact)
}

func (s *FixtureServer) fails(name string) bool {
	for _, f := range s.config.FailModels {
		if f == name {
			return true
		}
	}
	return false
}

// optimize draws the trial history of one model. The same request and seed
// always give the same scores.
func (s *FixtureServer) optimize(spec ModelSpec, req training.Request) training.ModelResult {
	seed := s.config.Seed + int64(hashString(spec.Name)) + int64(req.Data.Len())*31 + int64(hashString(req.TargetColumn))
	rng := rand.New(rand.NewSource(seed))

	classification := req.TaskType.IsClassification()
	values := make([]float64, s.config.Trials)
	params := make([]map[string]interface{}, s.config.Trials)
	best := -1
	for i := range values {
		params[i] = sampleParams(rng, spec.Params)
		if s.config.FailedTrialEvery > 0 && (i+1)%s.config.FailedTrialEvery == 0 {
			values[i] = math.NaN()
			continue
		}
		if classification {
			values[i] = round4(0.6 + 0.39*rng.Float64())
		} else {
			values[i] = round4(-(0.05 + 2*rng.Float64()))
		}
		if best < 0 || better(values[i], values[best], classification) {
			best = i
		}
	}

	result := training.ModelResult{
		Name:    spec.Name,
		History: &training.History{Values: values, Params: params},
	}
	if best >= 0 {
		result.BestScore = values[best]
		result.BestParams = params[best]
	}
	return result
}

// better follows the optimization direction: accuracy is maximized, the
// regression score minimized
func better(a, b float64, classification bool) bool {
	if classification {
		return a > b
	}
	return a < b
}

func sampleParams(rng *rand.Rand, ranges []ParamRange) map[string]interface{} {
	out := make(map[string]interface{}, len(ranges))
	for _, p := range ranges {
		if p.Integer {
			out[p.Name] = int(p.Min) + rng.Intn(int(p.Max-p.Min)+1)
			continue
		}
		out[p.Name] = round4(p.Min + (p.Max-p.Min)*rng.Float64())
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func (s *FixtureServer) storeArtifact(result training.ModelResult, classes []dataset.Value) {
	blob, err := json.Marshal(map[string]interface{}{
		"model":          result.Name,
		"best_params":    result.BestParams,
		"best_score":     result.BestScore,
		"target_classes": classes,
	})
	if err != nil {
		s.logger.Error("encode artifact %s: %v", result.Name, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[result.Name] = blob
}

func hasColumn(cells []dataset.Cell) bool {
	for _, c := range cells {
		if c.Present {
			return true
		}
	}
	return false
}

// validateClasses applies the server's classification checks and returns the
// sorted distinct classes, or the error text
func validateClasses(target []dataset.Cell) ([]dataset.Value, string) {
	type class struct {
		value dataset.Value
		count int
	}
	var classes []*class
	index := make(map[interface{}]*class)
	for _, c := range target {
		if !c.Present || c.Value == nil {
			continue
		}
		key := classKey(c.Value)
		if cl, ok := index[key]; ok {
			cl.count++
			continue
		}
		cl := &class{value: c.Value, count: 1}
		index[key] = cl
		classes = append(classes, cl)
	}

	if len(classes) == 0 {
		return nil, "Target column contains only null values."
	}

	sort.SliceStable(classes, func(i, j int) bool { return classBefore(classes[i].value, classes[j].value) })
	values := make([]dataset.Value, len(classes))
	for i, cl := range classes {
		values[i] = cl.value
	}

	if len(classes) < 2 {
		return nil, fmt.Sprintf("Data must contain at least 2 classes for classification tasks. Currently found classes: %s", formatClasses(values))
	}

	lo, hi := classes[0].count, classes[0].count
	for _, cl := range classes[1:] {
		lo = min(lo, cl.count)
		hi = max(hi, cl.count)
	}
	if float64(lo)/float64(hi) < MinImbalanceRatio {
		return nil, fmt.Sprintf("Severe class imbalance detected. Minimum class has %d samples, maximum class has %d samples.", lo, hi)
	}
	return values, ""
}

// classKey makes a value usable as a map key; composite values group by their JSON text
func classKey(v dataset.Value) interface{} {
	switch v.(type) {
	case float64, string, bool:
		return v
	default:
		b, _ := json.Marshal(v)
		return "json:" + string(b)
	}
}

func classBefore(a, b dataset.Value) bool {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	switch {
	case aNum && bNum:
		return af < bf
	case aNum != bNum:
		return aNum
	default:
		return dataset.FormatValue(a, true) < dataset.FormatValue(b, true)
	}
}

// formatClasses renders classes like a printed array: [0] or ['a' 'b']
func formatClasses(values []dataset.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = "'" + s + "'"
			continue
		}
		parts[i] = dataset.FormatValue(v, true)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
