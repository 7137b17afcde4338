package hierarchy

import "github.com/cognitionx/trackerx/internal/domain/models"

const defaultReferencePlaceholder = "Enter Reference Order Number"

// ReferenceNumberPlaceholder derives the hint text for the reference order
// number input from the selected reference order type. Total: every input maps
// to some placeholder.
func ReferenceNumberPlaceholder(t models.ReferenceOrderType) string {
	switch t {
	case models.ReferenceSalesOrder:
		return "Enter Sales Order Number (SO-XXXXX)"
	case models.ReferenceWorkOrder:
		return "Enter Work Order Number (WO-XXXXX)"
	case models.ReferenceCutOrder:
		return "Enter Cut Order Number (CO-XXXXX)"
	default:
		return defaultReferencePlaceholder
	}
}
