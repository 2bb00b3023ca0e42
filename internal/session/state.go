// Package session holds the process-wide application state: the uploaded
// dataset, the server's column list and the operator's current selections.
package session

import (
	"sync"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
)

// Snapshot is a consistent read of the state
type Snapshot struct {
	Dataset  dataset.Dataset
	Columns  []string
	Filename string
	Target   string
	Task     training.TaskType
}

// HasDataset reports whether an upload has succeeded
func (s Snapshot) HasDataset() bool {
	return s.Dataset != nil
}

// State is safe for concurrent use. Only SetDataset replaces the dataset.
type State struct {
	mu       sync.RWMutex
	data     dataset.Dataset
	columns  []string
	filename string
	target   string
	task     training.TaskType
}

// NewState returns an empty state with classification selected, matching the
// task selector's first option
func NewState() *State {
	return &State{task: training.Classification}
}

// SetDataset replaces the dataset and column list after a successful upload.
// The target selection is cleared because the selector is repopulated.
func (s *State) SetDataset(filename string, data dataset.Dataset, columns []string) {
	if data == nil {
		data = dataset.Dataset{}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
	s.columns = cols
	s.filename = filename
	s.target = ""
}

// SelectTarget records the target column; empty means unselected
func (s *State) SelectTarget(column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = column
}

// SelectTask records the task type
func (s *State) SelectTask(task training.TaskType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = task
}

// Snapshot returns the current state. The dataset slice is shared but never
// written after SetDataset, so readers may hold it.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return Snapshot{
		Dataset:  s.data,
		Columns:  cols,
		Filename: s.filename,
		Target:   s.target,
		Task:     s.task,
	}
}

// TargetOptions returns the selector entries: an empty sentinel, then each column
func (s Snapshot) TargetOptions() []string {
	return TargetOptions(s.Columns)
}

// TargetOptions builds selector entries for columns
func TargetOptions(columns []string) []string {
	out := make([]string, 0, len(columns)+1)
	out = append(out, "")
	return append(out, columns...)
}
