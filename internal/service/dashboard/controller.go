package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Backend is the slice of the document store contract the dashboard consumes.
// Satisfied by the frappe API client.
type Backend interface {
	GetWorkOrders(ctx context.Context, search string) ([]models.AuditRow, error)
	CreateAQLAudit(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error)
	GetEnabledUsers(ctx context.Context) ([]models.User, error)
	InsertDocument(ctx context.Context, doc map[string]any) (string, error)
}

// Ledger guards against double submission of a work order's decision.
type Ledger interface {
	HasSubmission(ctx context.Context, workOrder string) (bool, error)
	RecordSubmission(ctx context.Context, sub models.AuditSubmission) error
}

// Validation failures surfaced as inline notices. None of these reach the
// backing store.
var (
	ErrAuditResultRequired = errors.New("please select an audit result")
	ErrAlreadySubmitted    = errors.New("audit already submitted for this work order")
	ErrUnknownWorkOrder    = errors.New("work order is not on the dashboard")
	ErrInvalidAuditResult  = errors.New("audit result must be Pass or Fail")
	ErrWorkOrderRequired   = errors.New("please select a work order")
)

// rowEdit is the canonical not-yet-submitted state of one row's editable
// selections. Rendering and submission both read from here, never from
// rendered output.
type rowEdit struct {
	auditResult string
	inspectedBy string
}

// Controller owns the audit dashboard state: the cached user roster, the
// current row snapshot, per-row edit state, and the debounced search binding.
// One controller corresponds to one dashboard session.
type Controller struct {
	client      Backend
	ledger      Ledger
	sessionUser string
	debouncer   *Debouncer
	logger      *zap.Logger

	mu         sync.Mutex
	users      []models.User
	haveRoster bool
	seq        uint64
	snapshot   Snapshot
	edits      map[string]rowEdit
}

// NewController wires a dashboard controller. ledger may be nil when the
// exactly-once guard is not wanted (tests).
func NewController(client Backend, ledger Ledger, sessionUser string, debounce time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:      client,
		ledger:      ledger,
		sessionUser: sessionUser,
		debouncer:   NewDebouncer(debounce),
		logger:      logger,
		snapshot:    Snapshot{State: StateEmpty, Rows: []RowView{}},
		edits:       map[string]rowEdit{},
	}
}

// LoadUsers fetches the enabled-user roster once and memoizes it for the
// controller's lifetime. Staleness within a session is accepted.
func (c *Controller) LoadUsers(ctx context.Context) ([]models.User, error) {
	c.mu.Lock()
	if c.haveRoster {
		users := c.users
		c.mu.Unlock()
		return users, nil
	}
	c.mu.Unlock()

	users, err := c.client.GetEnabledUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveRoster {
		c.users = users
		c.haveRoster = true
	}
	return c.users, nil
}

// LoadWorkOrders fetches the work orders matching query (empty = unfiltered)
// and replaces the row snapshot. A Loading placeholder is published
// synchronously before the fetch. Overlapping calls are tolerated: each load
// takes a monotonically increasing sequence number and a response is dropped
// if a newer load was issued while it was in flight.
func (c *Controller) LoadWorkOrders(ctx context.Context, query string) (Snapshot, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.snapshot = Snapshot{State: StateLoading, Query: query, Message: loadingMessage, Rows: []RowView{}}
	c.mu.Unlock()

	users, err := c.LoadUsers(ctx)
	if err != nil {
		c.logger.Warn("user roster unavailable, dropdowns will be empty", zap.Error(err))
		users = nil
	}

	rows, err := c.client.GetWorkOrders(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.seq {
		// A newer load superseded this one while it was in flight.
		c.logger.Debug("discarding stale work order response",
			zap.Uint64("seq", seq), zap.Uint64("latest", c.seq), zap.String("query", query))
		return c.snapshot, nil
	}

	if err != nil {
		c.snapshot = Snapshot{State: StateError, Query: query, Message: errorMessage, Rows: []RowView{}}
		c.logger.Error("failed loading work orders", zap.String("query", query), zap.Error(err))
		return c.snapshot, err
	}

	if len(rows) == 0 {
		c.snapshot = Snapshot{State: StateEmpty, Query: query, Message: emptyMessage, Rows: []RowView{}}
		c.edits = map[string]rowEdit{}
		return c.snapshot, nil
	}

	views := make([]RowView, 0, len(rows))
	edits := make(map[string]rowEdit, len(rows))
	for _, row := range rows {
		views = append(views, RenderRow(row))

		inspector := row.InspectedBy
		if inspector == "" {
			inspector = c.sessionUser
		}
		edits[row.WorkOrder] = rowEdit{auditResult: row.AuditResult, inspectedBy: inspector}
	}
	PopulateInspectorOptions(views, users, c.sessionUser)

	c.snapshot = Snapshot{State: StateLoaded, Query: query, Rows: views}
	c.edits = edits
	return c.snapshot, nil
}

// Search schedules a debounced reload for the given query. The reload only
// fires once the input has been quiet for the configured window.
func (c *Controller) Search(query string) {
	c.debouncer.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.LoadWorkOrders(ctx, query); err != nil {
			c.logger.Error("debounced search failed", zap.String("query", query), zap.Error(err))
		}
	})
}

// Refresh bypasses the debouncer and reloads the unfiltered list immediately.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	return c.LoadWorkOrders(ctx, "")
}

// Snapshot returns the currently published table state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// SetAuditResult records a local, not-yet-submitted audit decision for a row.
func (c *Controller) SetAuditResult(workOrder, result string) error {
	switch result {
	case "", "Pass", "Fail":
	default:
		return ErrInvalidAuditResult
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	edit, ok := c.edits[workOrder]
	if !ok {
		return ErrUnknownWorkOrder
	}
	edit.auditResult = result
	c.edits[workOrder] = edit
	return nil
}

// SetInspector records a local inspector selection for a row.
func (c *Controller) SetInspector(workOrder, user string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	edit, ok := c.edits[workOrder]
	if !ok {
		return ErrUnknownWorkOrder
	}
	edit.inspectedBy = user
	c.edits[workOrder] = edit
	return nil
}

// SubmitAudit submits the row's pending decision to the backing store. With no
// audit result selected it aborts before any remote call. Rows the ledger
// already knows about are refused, so a decision is submitted at most once
// even across process restarts. On success the full list is reloaded rather
// than patched, so concurrently changed server state is always reflected. On
// failure the row state is left untouched and nothing is retried.
func (c *Controller) SubmitAudit(ctx context.Context, workOrder string) (models.SubmitResult, error) {
	c.mu.Lock()
	edit, ok := c.edits[workOrder]
	if !ok {
		c.mu.Unlock()
		return models.SubmitResult{}, ErrUnknownWorkOrder
	}

	var view *RowView
	for i := range c.snapshot.Rows {
		if c.snapshot.Rows[i].WorkOrder == workOrder {
			view = &c.snapshot.Rows[i]
			break
		}
	}
	if view == nil {
		c.mu.Unlock()
		return models.SubmitResult{}, ErrUnknownWorkOrder
	}

	sub := models.AuditSubmission{
		WorkOrder:   workOrder,
		AuditResult: edit.auditResult,
		InspectedBy: edit.inspectedBy,
		Style:       view.Style,
		Color:       view.Color,
		OrderQty:    view.OrderQty,
		AuditDate:   view.AuditDate,
	}
	c.mu.Unlock()

	if sub.AuditResult == "" {
		return models.SubmitResult{}, ErrAuditResultRequired
	}

	if c.ledger != nil {
		done, err := c.ledger.HasSubmission(ctx, workOrder)
		if err != nil {
			return models.SubmitResult{}, fmt.Errorf("check submission ledger: %w", err)
		}
		if done {
			return models.SubmitResult{}, ErrAlreadySubmitted
		}
	}

	result, err := c.client.CreateAQLAudit(ctx, sub)
	if err != nil {
		return models.SubmitResult{}, fmt.Errorf("submit audit for %s: %w", workOrder, err)
	}
	if !result.Success() {
		// Server rejected the decision; surface its message, leave row state as-is.
		return result, nil
	}

	if c.ledger != nil {
		if err := c.ledger.RecordSubmission(ctx, sub); err != nil {
			c.logger.Error("failed recording submission in ledger",
				zap.String("work_order", workOrder), zap.Error(err))
		}
	}

	// Full unfiltered reload, not a local patch, so server-side changes made
	// in the meantime always show up.
	if _, err := c.LoadWorkOrders(ctx, ""); err != nil {
		c.logger.Warn("reload after submit failed", zap.Error(err))
	}
	return result, nil
}

// CreateBlankAudit creates an empty audit document linked to a work order, the
// starting point for an audit filled in later on the form itself.
func (c *Controller) CreateBlankAudit(ctx context.Context, workOrder string) (string, error) {
	if workOrder == "" {
		return "", ErrWorkOrderRequired
	}

	name, err := c.client.InsertDocument(ctx, map[string]any{
		"doctype":    "AQL Audit",
		"work_order": workOrder,
	})
	if err != nil {
		return "", fmt.Errorf("create blank audit for %s: %w", workOrder, err)
	}

	c.logger.Info("blank audit created",
		zap.String("work_order", workOrder), zap.String("name", name))
	return name, nil
}

// Close stops any pending debounced work.
func (c *Controller) Close() {
	c.debouncer.Stop()
}
