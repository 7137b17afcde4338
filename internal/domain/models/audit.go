package models

// AuditRow is one work order awaiting an AQL decision, as returned by the
// backing store. Rows are ephemeral: rebuilt on every dashboard load and
// mutated only through the two editable selections until submit.
type AuditRow struct {
	WorkOrder   string  `json:"work_order"`
	Style       string  `json:"style"`
	Color       string  `json:"color"`
	OrderQty    float64 `json:"order_qty"`
	ReceivedQty float64 `json:"received_qty"`
	Vendor      string  `json:"vendor"`
	AuditDate   string  `json:"audit_date"`
	AuditResult string  `json:"audit_result"`
	InspectedBy string  `json:"inspected_by"`
}

// User is a roster entry for the inspector dropdown.
type User struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// DisplayName prefers the human-readable name, falling back to the identity.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Name
}

// AuditSubmission is the payload sent to the backing store when an operator
// submits a decision for a work order.
type AuditSubmission struct {
	WorkOrder   string  `json:"work_order"`
	AuditResult string  `json:"audit_result"`
	InspectedBy string  `json:"inspected_by"`
	Style       string  `json:"style"`
	Color       string  `json:"color"`
	OrderQty    float64 `json:"order_qty"`
	AuditDate   string  `json:"audit_date"`
}

// SubmitResult mirrors the backing store's response envelope for audit creation.
type SubmitResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success reports whether the backing store accepted the submission.
func (r SubmitResult) Success() bool {
	return r.Status == "success"
}

// StatusCheck is the backing store's answer to a pre-cancellation probe.
type StatusCheck struct {
	NeedsConfirmation   bool   `json:"needs_confirmation"`
	ConfirmationMessage string `json:"confirmation_message"`
}
