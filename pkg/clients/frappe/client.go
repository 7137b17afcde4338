package frappe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cognitionx/trackerx/internal/config"
	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Remote method paths exposed by the backing document store.
const (
	methodGetWorkOrders   = "trackerx_live.trackerx_live.doctype.aql_audit.aql_audit.get_work_orders"
	methodCreateAQLAudit  = "trackerx_live.trackerx_live.doctype.aql_audit.aql_audit.create_aql_audit"
	methodCheckOrderState = "trackerx_live.trackerx_live.api.tracking_order.check_tracking_order_status"
	methodGetUserList     = "frappe.client.get_list"
	methodInsertDoc       = "frappe.client.insert"
	methodCancelDoc       = "frappe.client.cancel"
)

// Client exposes the backing store operations used by the application.
type Client interface {
	GetWorkOrders(ctx context.Context, search string) ([]models.AuditRow, error)
	CreateAQLAudit(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error)
	GetEnabledUsers(ctx context.Context) ([]models.User, error)
	CheckTrackingOrderStatus(ctx context.Context, bundleID string) (models.StatusCheck, error)
	CancelDocument(ctx context.Context, doctype, name string) error
	InsertDocument(ctx context.Context, doc map[string]any) (string, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

var _ Client = (*APIClient)(nil)

// NewClient builds a backing store client using the provided configuration values.
func NewClient(cfg config.FrappeConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("token %s:%s", cfg.APIKey, cfg.APISecret)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// apiError represents the document store's error payload.
type apiError struct {
	Message   string `json:"message"`
	Exception string `json:"exception"`
}

func (e *apiError) text() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Exception
}

// envelope wraps every RPC response body.
type envelope[T any] struct {
	Message T `json:"message"`
}

func call[T any](ctx context.Context, c *APIClient, method string, args map[string]any) (T, error) {
	result := new(envelope[T])
	apiErr := new(apiError)

	// Some deployments answer without a JSON content type; force the decode so
	// the envelope and error payloads are unmarshalled regardless.
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(args).
		SetResult(result).
		SetError(apiErr).
		ForceContentType("application/json").
		Post(fmt.Sprintf("/api/method/%s", method))
	if err != nil {
		return result.Message, fmt.Errorf("call %s: %w", method, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return result.Message, fmt.Errorf("document store error: method=%s, status=%d, message=%s",
			method, resp.StatusCode(), apiErr.text())
	}

	return result.Message, nil
}

// GetWorkOrders fetches the work orders awaiting audit, optionally filtered.
func (c *APIClient) GetWorkOrders(ctx context.Context, search string) ([]models.AuditRow, error) {
	rows, err := call[[]models.AuditRow](ctx, c, methodGetWorkOrders, map[string]any{"search": search})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateAQLAudit records an audit decision for a work order.
func (c *APIClient) CreateAQLAudit(ctx context.Context, sub models.AuditSubmission) (models.SubmitResult, error) {
	return call[models.SubmitResult](ctx, c, methodCreateAQLAudit, map[string]any{
		"work_order":   sub.WorkOrder,
		"audit_result": sub.AuditResult,
		"inspected_by": sub.InspectedBy,
		"style":        sub.Style,
		"color":        sub.Color,
		"order_qty":    sub.OrderQty,
		"audit_date":   sub.AuditDate,
	})
}

// GetEnabledUsers fetches the roster used for the inspector dropdown.
func (c *APIClient) GetEnabledUsers(ctx context.Context) ([]models.User, error) {
	users, err := call[[]models.User](ctx, c, methodGetUserList, map[string]any{
		"doctype":           "User",
		"filters":           map[string]any{"enabled": 1},
		"fields":            []string{"name", "full_name"},
		"limit_page_length": 1000,
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CheckTrackingOrderStatus probes whether cancelling a bundle needs operator
// confirmation first.
func (c *APIClient) CheckTrackingOrderStatus(ctx context.Context, bundleID string) (models.StatusCheck, error) {
	return call[models.StatusCheck](ctx, c, methodCheckOrderState, map[string]any{"bundle_id": bundleID})
}

// CancelDocument cancels a document in the backing store.
func (c *APIClient) CancelDocument(ctx context.Context, doctype, name string) error {
	_, err := call[any](ctx, c, methodCancelDoc, map[string]any{
		"doctype": doctype,
		"name":    name,
	})
	return err
}

// InsertDocument creates a new document and returns its assigned name.
func (c *APIClient) InsertDocument(ctx context.Context, doc map[string]any) (string, error) {
	created, err := call[struct {
		Name string `json:"name"`
	}](ctx, c, methodInsertDoc, map[string]any{"doc": doc})
	if err != nil {
		return "", err
	}
	return created.Name, nil
}
