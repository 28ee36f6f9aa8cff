package repositories

import (
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// RunRepository is the storage boundary for processing runs. Relational
// persistence of orders and assignments lives behind this interface; the
// pipeline itself never talks to a database directly.
type RunRepository interface {
	// SaveRun persists the outcome of one pipeline run.
	SaveRun(run *entities.ProcessingRun) error

	// GetRun returns a run by its identifier.
	GetRun(runID string) (*entities.ProcessingRun, error)

	// ListRuns returns all runs recorded for an order, oldest first.
	ListRuns(orderID string) ([]*entities.ProcessingRun, error)
}
