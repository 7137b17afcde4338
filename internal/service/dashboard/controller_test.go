package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

type fakeBackend struct {
	getWorkOrders func(ctx context.Context, search string) ([]models.AuditRow, error)
	createAudit   func(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error)
	getUsers      func(ctx context.Context) ([]models.User, error)

	userCalls  int32
	auditCalls int32
}

func (f *fakeBackend) GetWorkOrders(ctx context.Context, search string) ([]models.AuditRow, error) {
	if f.getWorkOrders != nil {
		return f.getWorkOrders(ctx, search)
	}
	return nil, nil
}

func (f *fakeBackend) CreateAQLAudit(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error) {
	atomic.AddInt32(&f.auditCalls, 1)
	if f.createAudit != nil {
		return f.createAudit(ctx, sub)
	}
	return models.SubmitResult{Status: "success", Message: "ok"}, nil
}

func (f *fakeBackend) GetEnabledUsers(ctx context.Context) ([]models.User, error) {
	atomic.AddInt32(&f.userCalls, 1)
	if f.getUsers != nil {
		return f.getUsers(ctx)
	}
	return []models.User{{Name: "qc@example.com", FullName: "QC One"}}, nil
}

func (f *fakeBackend) InsertDocument(ctx context.Context, doc map[string]any) (string, error) {
	return "AQL-0001", nil
}

type fakeLedger struct {
	mu       sync.Mutex
	recorded []models.AuditSubmission
	existing map[string]bool
	hasErr   error
}

func (f *fakeLedger) HasSubmission(ctx context.Context, workOrder string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.existing[workOrder], nil
}

func (f *fakeLedger) RecordSubmission(ctx context.Context, sub models.AuditSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[sub.WorkOrder] = true
	f.recorded = append(f.recorded, sub)
	return nil
}

func sampleRows() []models.AuditRow {
	return []models.AuditRow{
		{WorkOrder: "WO-0001", Style: "Crew Tee", Color: "Navy", OrderQty: 500, AuditResult: ""},
		{WorkOrder: "WO-0002", Style: "Polo", Color: "White", OrderQty: 250, AuditResult: "Fail", InspectedBy: "qc@example.com"},
	}
}

func newTestController(backend *fakeBackend, ledger Ledger) *Controller {
	return NewController(backend, ledger, "operator@example.com", 10*time.Millisecond, nil)
}

func TestLoadWorkOrdersRendersRows(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return sampleRows(), nil
		},
	}
	ctrl := newTestController(backend, nil)

	snapshot, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, StateLoaded, snapshot.State)
	require.Len(t, snapshot.Rows, 2)
	assert.False(t, snapshot.Rows[0].FailHighlight)
	assert.True(t, snapshot.Rows[1].FailHighlight)

	// Roster options present, with the session user preselected where the row
	// carries no inspector.
	require.NotEmpty(t, snapshot.Rows[0].InspectorOptions)
	assert.Equal(t, "qc@example.com", snapshot.Rows[1].InspectorOptions[0].Value)
	assert.True(t, snapshot.Rows[1].InspectorOptions[0].Selected)
}

func TestLoadWorkOrdersEmptyState(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return nil, nil
		},
	}
	ctrl := newTestController(backend, nil)

	snapshot, err := ctrl.LoadWorkOrders(context.Background(), "WO-100")
	require.NoError(t, err)

	assert.Equal(t, StateEmpty, snapshot.State)
	assert.Equal(t, "No work orders found.", snapshot.Message)
	assert.Empty(t, snapshot.Rows)
}

func TestLoadWorkOrdersErrorState(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return nil, errors.New("boom")
		},
	}
	ctrl := newTestController(backend, nil)

	snapshot, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, StateError, snapshot.State)
	assert.Equal(t, "Error loading work orders", snapshot.Message)
}

func TestLoadUsersMemoized(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := newTestController(backend, nil)

	_, err := ctrl.LoadUsers(context.Background())
	require.NoError(t, err)
	_, err = ctrl.LoadUsers(context.Background())
	require.NoError(t, err)
	_, err = ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.userCalls))
}

func TestOverlappingLoadsDropStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			if search == "" {
				close(entered)
				<-release
				return sampleRows(), nil
			}
			return []models.AuditRow{{WorkOrder: "WO-0099"}}, nil
		},
	}
	ctrl := newTestController(backend, nil)

	done := make(chan Snapshot, 1)
	go func() {
		snapshot, _ := ctrl.LoadWorkOrders(context.Background(), "")
		done <- snapshot
	}()

	<-entered

	// A second load is issued while the first is still in flight.
	latest, err := ctrl.LoadWorkOrders(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, StateLoaded, latest.State)
	require.Equal(t, "x", latest.Query)

	close(release)
	stale := <-done

	// The earlier load's response is discarded; the published state keeps the
	// newer query's rows.
	assert.Equal(t, "x", stale.Query)
	assert.Equal(t, "x", ctrl.Snapshot().Query)
	require.Len(t, ctrl.Snapshot().Rows, 1)
	assert.Equal(t, "WO-0099", ctrl.Snapshot().Rows[0].WorkOrder)
}

func TestSubmitAuditRequiresResult(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return sampleRows(), nil
		},
	}
	ctrl := newTestController(backend, nil)

	_, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)

	_, err = ctrl.SubmitAudit(context.Background(), "WO-0001")
	assert.ErrorIs(t, err, ErrAuditResultRequired)
	assert.Zero(t, atomic.LoadInt32(&backend.auditCalls), "no remote call may be made")
}

func TestSubmitAuditSuccessReloadsList(t *testing.T) {
	var submitted models.AuditSubmission
	loads := int32(0)

	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			if atomic.AddInt32(&loads, 1) > 1 {
				// Server state after the submit: WO-0001 passed.
				return []models.AuditRow{{WorkOrder: "WO-0001", AuditResult: "Pass"}}, nil
			}
			return sampleRows(), nil
		},
		createAudit: func(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error) {
			submitted = sub
			return models.SubmitResult{Status: "success", Message: "AQL Audit created for WO-0001"}, nil
		},
	}
	ledger := &fakeLedger{}
	ctrl := newTestController(backend, ledger)

	_, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, ctrl.SetAuditResult("WO-0001", "Pass"))
	require.NoError(t, ctrl.SetInspector("WO-0001", "qc@example.com"))

	result, err := ctrl.SubmitAudit(context.Background(), "WO-0001")
	require.NoError(t, err)
	assert.True(t, result.Success())

	// The submission reads from the canonical row state, not the fetch payload.
	assert.Equal(t, "Pass", submitted.AuditResult)
	assert.Equal(t, "qc@example.com", submitted.InspectedBy)
	assert.Equal(t, "Crew Tee", submitted.Style)

	// Reloaded snapshot reflects server state: the passed row is locked.
	snapshot := ctrl.Snapshot()
	require.Len(t, snapshot.Rows, 1)
	assert.True(t, snapshot.Rows[0].SubmitDisabled)

	require.Len(t, ledger.recorded, 1)
	assert.Equal(t, "WO-0001", ledger.recorded[0].WorkOrder)
}

func TestSubmitAuditExactlyOnce(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return sampleRows(), nil
		},
	}
	ledger := &fakeLedger{existing: map[string]bool{"WO-0001": true}}
	ctrl := newTestController(backend, ledger)

	_, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, ctrl.SetAuditResult("WO-0001", "Fail"))

	_, err = ctrl.SubmitAudit(context.Background(), "WO-0001")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Zero(t, atomic.LoadInt32(&backend.auditCalls))
}

func TestSubmitAuditServerRejection(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return sampleRows(), nil
		},
		createAudit: func(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error) {
			return models.SubmitResult{Status: "error", Message: "audit already passed"}, nil
		},
	}
	ledger := &fakeLedger{}
	ctrl := newTestController(backend, ledger)

	_, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, ctrl.SetAuditResult("WO-0001", "Fail"))

	result, err := ctrl.SubmitAudit(context.Background(), "WO-0001")
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, "audit already passed", result.Message)
	assert.Empty(t, ledger.recorded, "rejected submissions must not enter the ledger")
}

func TestSetAuditResultValidation(t *testing.T) {
	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			return sampleRows(), nil
		},
	}
	ctrl := newTestController(backend, nil)

	_, err := ctrl.LoadWorkOrders(context.Background(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, ctrl.SetAuditResult("WO-0001", "Maybe"), ErrInvalidAuditResult)
	assert.ErrorIs(t, ctrl.SetAuditResult("WO-9999", "Pass"), ErrUnknownWorkOrder)
	assert.NoError(t, ctrl.SetAuditResult("WO-0001", "Fail"))
}

func TestCreateBlankAudit(t *testing.T) {
	ctrl := newTestController(&fakeBackend{}, nil)

	name, err := ctrl.CreateBlankAudit(context.Background(), "WO-0007")
	require.NoError(t, err)
	assert.Equal(t, "AQL-0001", name)

	_, err = ctrl.CreateBlankAudit(context.Background(), "")
	assert.ErrorIs(t, err, ErrWorkOrderRequired)
}

func TestSearchDebounces(t *testing.T) {
	var queries []string
	var mu sync.Mutex
	loaded := make(chan struct{}, 4)

	backend := &fakeBackend{
		getWorkOrders: func(ctx context.Context, search string) ([]models.AuditRow, error) {
			mu.Lock()
			queries = append(queries, search)
			mu.Unlock()
			loaded <- struct{}{}
			return nil, nil
		},
	}
	ctrl := newTestController(backend, nil)
	defer ctrl.Close()

	// A quick burst of keystrokes; only the trailing query may fire.
	ctrl.Search("W")
	ctrl.Search("WO")
	ctrl.Search("WO-1")

	select {
	case <-loaded:
	case <-time.After(time.Second):
		t.Fatal("debounced load never fired")
	}

	// Allow a grace period to catch spurious extra loads.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"WO-1"}, queries)
}
