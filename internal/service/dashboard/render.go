package dashboard

import (
	"fmt"
	"strings"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// ListState classifies what the dashboard table currently shows.
type ListState string

const (
	StateLoading ListState = "loading"
	StateLoaded  ListState = "loaded"
	StateEmpty   ListState = "empty"
	StateError   ListState = "error"
)

// Placeholder texts for the non-loaded states.
const (
	loadingMessage = "Loading..."
	emptyMessage   = "No work orders found."
	errorMessage   = "Error loading work orders"
)

// InspectorOption is one entry of a row's inspector dropdown.
type InspectorOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// RowView is the visual form of an AuditRow.
type RowView struct {
	WorkOrder   string  `json:"work_order"`
	Link        string  `json:"link"`
	Style       string  `json:"style"`
	Color       string  `json:"color"`
	OrderQty    float64 `json:"order_qty"`
	ReceivedQty float64 `json:"received_qty"`
	Vendor      string  `json:"vendor"`
	AuditDate   string  `json:"audit_date"`
	AuditResult string  `json:"audit_result"`
	InspectedBy string  `json:"inspected_by"`

	// FailHighlight marks the row red; matched case-insensitively.
	FailHighlight bool `json:"fail_highlight"`
	// SubmitDisabled locks the row once the audit passed. Only the exact
	// spellings "Pass" and "pass" disable it; "fail" styling above is
	// case-insensitive. The mismatch is long-standing observed behavior and
	// is kept as-is.
	SubmitDisabled bool `json:"submit_disabled"`

	ResultOptions    []string          `json:"result_options"`
	InspectorOptions []InspectorOption `json:"inspector_options"`
}

// Snapshot is what the dashboard table shows at a point in time.
type Snapshot struct {
	State   ListState `json:"state"`
	Query   string    `json:"query"`
	Message string    `json:"message,omitempty"`
	Rows    []RowView `json:"rows"`
}

// RenderRow derives the visual row for an audit row. Pure: the same input
// always produces the same view.
func RenderRow(row models.AuditRow) RowView {
	result := strings.ToLower(row.AuditResult)

	return RowView{
		WorkOrder:      row.WorkOrder,
		Link:           fmt.Sprintf("/app/work-order/%s", row.WorkOrder),
		Style:          row.Style,
		Color:          row.Color,
		OrderQty:       row.OrderQty,
		ReceivedQty:    row.ReceivedQty,
		Vendor:         row.Vendor,
		AuditDate:      row.AuditDate,
		AuditResult:    row.AuditResult,
		InspectedBy:    row.InspectedBy,
		FailHighlight:  result == "fail",
		SubmitDisabled: row.AuditResult == "Pass" || row.AuditResult == "pass",
		ResultOptions:  []string{"", "Pass", "Fail"},
	}
}

// PopulateInspectorOptions fills every row's inspector dropdown from the
// cached roster. The row's own inspector wins the preselection; otherwise the
// session user is offered as a default. The default is presentation only and
// is not persisted until submit.
func PopulateInspectorOptions(rows []RowView, users []models.User, sessionUser string) {
	for i := range rows {
		want := rows[i].InspectedBy
		if want == "" {
			want = sessionUser
		}
		opts := make([]InspectorOption, 0, len(users))
		for _, u := range users {
			opts = append(opts, InspectorOption{
				Value:    u.Name,
				Label:    u.DisplayName(),
				Selected: u.Name == want,
			})
		}
		rows[i].InspectorOptions = opts
	}
}
