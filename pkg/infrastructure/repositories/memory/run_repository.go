// Package memory provides in-memory repository implementations, used by
// tests and by CLI runs that do not configure a database.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/supplymatch/orderassign/pkg/domain/entities"
	"github.com/supplymatch/orderassign/pkg/domain/repositories"
)

// RunRepository provides in-memory processing-run storage.
type RunRepository struct {
	mutex sync.RWMutex
	runs  []entities.ProcessingRun
	byID  map[string]int
}

// NewRunRepository creates a new in-memory run repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		byID: make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// SaveRun stores a copy of the run.
func (r *RunRepository) SaveRun(run *entities.ProcessingRun) error {
	if run.RunID == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byID[run.RunID]; exists {
		return fmt.Errorf("run %s already recorded", run.RunID)
	}
	r.byID[run.RunID] = len(r.runs)
	r.runs = append(r.runs, *run)
	return nil
}

// GetRun returns a run by its identifier.
func (r *RunRepository) GetRun(runID string) (*entities.ProcessingRun, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idx, ok := r.byID[runID]
	if !ok {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	run := r.runs[idx]
	return &run, nil
}

// ListRuns returns all runs for an order, oldest first.
func (r *RunRepository) ListRuns(orderID string) ([]*entities.ProcessingRun, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []*entities.ProcessingRun
	for i := range r.runs {
		if r.runs[i].OrderID == orderID {
			run := r.runs[i]
			out = append(out, &run)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
