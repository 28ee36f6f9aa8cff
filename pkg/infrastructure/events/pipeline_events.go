package events

import (
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// Pipeline stage event types. The stream id is the run id.
const (
	OrderClassifiedEvent = "order.classified"
	StatusEvaluatedEvent = "order.status_evaluated"
	ModelBuiltEvent      = "order.model_built"
	OrderSolvedEvent     = "order.solved"
	OrderReconciledEvent = "order.reconciled"
	RunRecordedEvent     = "order.run_recorded"
)

// OrderClassified is emitted after candidate classification.
type OrderClassified struct {
	OrderID string              `json:"order_id"`
	Stats   entities.OrderStats `json:"stats"`
}

// StatusEvaluated is emitted after the fulfilment-status rollup.
type StatusEvaluated struct {
	OrderID     string                `json:"order_id"`
	OrderStatus entities.OrderStatus  `json:"order_status"`
	Counts      entities.StatusCounts `json:"counts"`
}

// ModelBuilt is emitted after the assignment model is formulated.
type ModelBuilt struct {
	OrderID string              `json:"order_id"`
	Stats   entities.ModelStats `json:"model_stats"`
}

// OrderSolved is emitted after the backend returns, whatever the verdict.
type OrderSolved struct {
	OrderID string                  `json:"order_id"`
	Status  entities.SolutionStatus `json:"status"`
}

// OrderReconciled is emitted when infeasibility demotes lines.
type OrderReconciled struct {
	OrderID      string `json:"order_id"`
	LinesDemoted int    `json:"lines_demoted"`
}

// RunRecorded is emitted after the run is persisted.
type RunRecorded struct {
	OrderID string `json:"order_id"`
	RunID   string `json:"run_id"`
	Success bool   `json:"success"`
}

// NewOrderClassifiedEvent wraps classification stats for the stream.
func NewOrderClassifiedEvent(runID string, enriched *entities.EnrichedOrder) Event {
	return NewEvent(OrderClassifiedEvent, runID, OrderClassified{
		OrderID: enriched.OrderID,
		Stats:   enriched.Stats,
	})
}

// NewStatusEvaluatedEvent wraps the status rollup outcome.
func NewStatusEvaluatedEvent(runID, orderID string, details *entities.StatusDetails) Event {
	return NewEvent(StatusEvaluatedEvent, runID, StatusEvaluated{
		OrderID:     orderID,
		OrderStatus: details.OrderStatus,
		Counts:      details.Counts,
	})
}

// NewModelBuiltEvent wraps the model shape.
func NewModelBuiltEvent(runID, orderID string, stats entities.ModelStats) Event {
	return NewEvent(ModelBuiltEvent, runID, ModelBuilt{OrderID: orderID, Stats: stats})
}

// NewOrderSolvedEvent wraps the backend verdict.
func NewOrderSolvedEvent(runID, orderID string, status entities.SolutionStatus) Event {
	return NewEvent(OrderSolvedEvent, runID, OrderSolved{OrderID: orderID, Status: status})
}

// NewOrderReconciledEvent wraps the demotion count.
func NewOrderReconciledEvent(runID, orderID string, linesDemoted int) Event {
	return NewEvent(OrderReconciledEvent, runID, OrderReconciled{
		OrderID:      orderID,
		LinesDemoted: linesDemoted,
	})
}

// NewRunRecordedEvent wraps the persistence confirmation.
func NewRunRecordedEvent(runID, orderID string, success bool) Event {
	return NewEvent(RunRecordedEvent, runID, RunRecorded{
		OrderID: orderID,
		RunID:   runID,
		Success: success,
	})
}
