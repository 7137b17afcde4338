package hierarchy

import (
	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Options holds the dropdown choices derived from a component list, keyed by
// row identity. Each component row carries its own parent choice list so that
// edits to one row never clobber the choices shown on another.
type Options struct {
	// Parent maps a component row ID to its parent_component choices. The
	// first entry is always the empty string (no parent).
	Parent map[string][]string
	// OperationMap maps an operation row ID to its component choices. These
	// are unfiltered: an operation may reference any named component.
	OperationMap map[string][]string
}

// Refresher is notified after a recomputation so the presentation layer can
// redraw both grids. Implementations must be cheap; the engine calls them
// synchronously.
type Refresher interface {
	RefreshComponents()
	RefreshOperationMap()
}

// Engine keeps component and operation-map dropdowns consistent with the
// current component list. All work is synchronous and single-threaded: by the
// time a call returns, every row's choices reflect the list state at call time.
type Engine struct {
	refresher Refresher
	logger    *zap.Logger
}

// NewEngine wires an engine instance. refresher may be nil.
func NewEngine(refresher Refresher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{refresher: refresher, logger: logger}
}

// OnComponentNameChanged handles any structural change to the component list:
// a rename, an added row, or a removed row. editedID identifies the row that
// triggered the change (it may no longer exist after a removal). The whole
// option set is recomputed so every row stays consistent, not just the edited
// one.
func (e *Engine) OnComponentNameChanged(order *models.TrackingOrder, editedID string) Options {
	opts := ComputeOptions(order)

	e.logger.Debug("component options recomputed",
		zap.String("order", order.Name),
		zap.String("edited_row", editedID),
		zap.Int("components", len(order.Components)),
		zap.Int("operation_rows", len(order.OperationMap)))

	if e.refresher != nil {
		e.refresher.RefreshComponents()
		e.refresher.RefreshOperationMap()
	}
	return opts
}

// ComputeOptions derives the full per-row option set from the current list.
// Pure: the same list always yields the same options.
func ComputeOptions(order *models.TrackingOrder) Options {
	opts := Options{
		Parent:       make(map[string][]string, len(order.Components)),
		OperationMap: make(map[string][]string, len(order.OperationMap)),
	}

	names := componentNames(order.Components)

	for _, row := range order.Components {
		choices := make([]string, 0, len(names)+1)
		choices = append(choices, "")
		for _, other := range order.Components {
			if other.ID == row.ID || other.Name == "" {
				continue
			}
			choices = append(choices, other.Name)
		}
		opts.Parent[row.ID] = choices
	}

	for _, entry := range order.OperationMap {
		// Operation rows may target any component, including the edited one.
		opts.OperationMap[entry.ID] = names
	}

	return opts
}

// componentNames returns the non-empty component names in list order.
func componentNames(components []models.Component) []string {
	names := make([]string, 0, len(components))
	for _, c := range components {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
