package training

import (
	"bytes"
	"encoding/json"
	"math"

	"modelbench/domain/core"
	"modelbench/domain/dataset"
)

// TaskType is sent to the server as-is; anything but classification is drawn as a histogram
type TaskType string

const (
	Classification TaskType = "classification"
	Regression     TaskType = "regression"
)

// IsClassification reports whether the target is treated as class labels
func (t TaskType) IsClassification() bool {
	return t == Classification
}

// Request is the body of POST /train
type Request struct {
	Data         dataset.Dataset `json:"data"`
	TargetColumn string          `json:"target_column"`
	TaskType     TaskType        `json:"task_type"`
}

// History is one model's trial scores in trial order. Null trials decode to NaN
// so they keep their trial number.
type History struct {
	Values []float64                 `json:"values"`
	Params []map[string]interface{} `json:"params,omitempty"`
}

type historyJSON struct {
	Values []*float64                `json:"values"`
	Params []map[string]interface{} `json:"params,omitempty"`
}

func (h *History) UnmarshalJSON(data []byte) error {
	var raw historyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.Values = make([]float64, len(raw.Values))
	for i, v := range raw.Values {
		if v == nil {
			h.Values[i] = math.NaN()
			continue
		}
		h.Values[i] = *v
	}
	h.Params = raw.Params
	return nil
}

func (h History) MarshalJSON() ([]byte, error) {
	raw := historyJSON{Values: make([]*float64, len(h.Values)), Params: h.Params}
	for i := range h.Values {
		if !math.IsNaN(h.Values[i]) {
			raw.Values[i] = &h.Values[i]
		}
	}
	return json.Marshal(raw)
}

// ModelResult is the outcome of optimizing one model
type ModelResult struct {
	Name       string                 `json:"-"`
	BestScore  float64                `json:"best_score"`
	BestParams map[string]interface{} `json:"best_params,omitempty"`
	History    *History               `json:"optimization_history,omitempty"`
}

// HasHistory reports whether the model has at least one trial
func (m ModelResult) HasHistory() bool {
	return m.History != nil && len(m.History.Values) > 0
}

// Results maps model name to outcome, in the order the server listed them
type Results []ModelResult

// Names returns the model names in result order
func (r Results) Names() []string {
	out := make([]string, len(r))
	for i, m := range r {
		out[i] = m.Name
	}
	return out
}

// Get looks a model up by name
func (r Results) Get(name string) (ModelResult, bool) {
	for _, m := range r {
		if m.Name == name {
			return m, true
		}
	}
	return ModelResult{}, false
}

func (r *Results) UnmarshalJSON(data []byte) error {
	if core.IsJSONNull(data) {
		*r = nil
		return nil
	}
	out := Results{}
	err := core.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var m ModelResult
		if !core.IsJSONNull(raw) {
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
		}
		m.Name = key
		out = append(out, m)
		return nil
	})
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func (r Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(m.Name)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Outcome is a successful POST /train response
type Outcome struct {
	RunID         core.RunID      `json:"-"`
	Results       Results         `json:"results"`
	Message       string          `json:"message,omitempty"`
	TargetClasses []dataset.Value `json:"target_classes,omitempty"`
	Request       Request         `json:"-"`
	CompletedAt   core.Timestamp  `json:"-"`
}
