package frappe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitionx/trackerx/internal/config"
	"github.com/cognitionx/trackerx/internal/domain/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.FrappeConfig{
		BaseURL:   srv.URL,
		APIKey:    "key",
		APISecret: "secret",
	})
}

func TestGetWorkOrdersUnwrapsEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "get_work_orders")
		assert.Equal(t, "token key:secret", r.Header.Get("Authorization"))

		var args map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "WO-1", args["search"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": []map[string]any{
				{"work_order": "WO-0001", "style": "Tee", "audit_result": "Pending"},
			},
		})
	})

	rows, err := client.GetWorkOrders(context.Background(), "WO-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WO-0001", rows[0].WorkOrder)
	assert.Equal(t, "Pending", rows[0].AuditResult)
}

func TestCreateAQLAuditSurfacesServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "not permitted"})
	})

	_, err := client.CreateAQLAudit(context.Background(), models.AuditSubmission{WorkOrder: "WO-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not permitted")
}

func TestGetWorkOrdersToleratesMissingContentType(t *testing.T) {
	// A JSON body served without a Content-Type header must still decode.
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": [{"work_order": "WO-0002"}]}`))
	})

	rows, err := client.GetWorkOrders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WO-0002", rows[0].WorkOrder)
}

func TestInsertDocumentReturnsName(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"name": "AQL-0007"},
		})
	})

	name, err := client.InsertDocument(context.Background(), map[string]any{
		"doctype":    "AQL Audit",
		"work_order": "WO-0007",
	})
	require.NoError(t, err)
	assert.Equal(t, "AQL-0007", name)
}
