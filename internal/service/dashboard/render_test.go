package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

func TestRenderRowIsPure(t *testing.T) {
	row := models.AuditRow{WorkOrder: "WO-0005", Style: "Hoodie", AuditResult: "Fail"}

	first := RenderRow(row)
	second := RenderRow(row)
	assert.Equal(t, first, second)
}

func TestRenderRowFailHighlightCaseInsensitive(t *testing.T) {
	for _, result := range []string{"fail", "Fail", "FAIL"} {
		view := RenderRow(models.AuditRow{WorkOrder: "WO-1", AuditResult: result})
		assert.True(t, view.FailHighlight, "result %q", result)
	}

	view := RenderRow(models.AuditRow{WorkOrder: "WO-1", AuditResult: "Pass"})
	assert.False(t, view.FailHighlight)
}

func TestRenderRowSubmitDisabledSpellings(t *testing.T) {
	// Only the two observed spellings lock the row; this asymmetry with the
	// fail highlight is intentional.
	tests := map[string]bool{
		"Pass": true,
		"pass": true,
		"PASS": false,
		"Fail": false,
		"":     false,
	}

	for result, want := range tests {
		view := RenderRow(models.AuditRow{WorkOrder: "WO-1", AuditResult: result})
		assert.Equal(t, want, view.SubmitDisabled, "result %q", result)
	}
}

func TestPopulateInspectorOptionsDefaults(t *testing.T) {
	users := []models.User{
		{Name: "a@example.com", FullName: "Inspector A"},
		{Name: "b@example.com"},
	}
	rows := []RowView{
		{WorkOrder: "WO-1", InspectedBy: "b@example.com"},
		{WorkOrder: "WO-2"},
	}

	PopulateInspectorOptions(rows, users, "a@example.com")

	assert.Equal(t, "Inspector A", rows[0].InspectorOptions[0].Label)
	assert.Equal(t, "b@example.com", rows[0].InspectorOptions[1].Label, "identity is the fallback label")

	assert.False(t, rows[0].InspectorOptions[0].Selected)
	assert.True(t, rows[0].InspectorOptions[1].Selected, "row's own inspector wins")
	assert.True(t, rows[1].InspectorOptions[0].Selected, "session user is the default")
}
