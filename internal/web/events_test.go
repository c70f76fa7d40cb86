package web

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/sales-dashboard/internal/sales"
)

func TestDatasetReloadedEvent_Shape(t *testing.T) {
	event := DatasetReloadedEvent(sales.LoadStats{Rows: 12, Orders: 10, Dropped: 2})

	assert.JSONEq(t, `{"type":"dataset.reloaded","payload":{"orders":10,"dropped":2}}`, string(event))
}

func TestReportGeneratedEvent_CreatesValidJSON(t *testing.T) {
	event := ReportGeneratedEvent("sales_report_None_None.csv", 4)

	var wsEvent WSEvent
	require.NoError(t, json.Unmarshal(event, &wsEvent))
	assert.Equal(t, EventReportGenerated, wsEvent.Type)

	payload, ok := wsEvent.Payload.(map[string]interface{})
	require.True(t, ok, "payload is not a map")
	assert.Equal(t, "sales_report_None_None.csv", payload["filename"])
	assert.EqualValues(t, 4, payload["rows"])
}
