package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
	"github.com/blockedby/sales-dashboard/internal/web"
)

// MockDataset is a mock for Dataset
type MockDataset struct {
	mock.Mock
}

func (m *MockDataset) Reload(ctx context.Context) (sales.LoadStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(sales.LoadStats), args.Error(1)
}

func (m *MockDataset) Stats() (sales.LoadStats, time.Time) {
	args := m.Called()
	return args.Get(0).(sales.LoadStats), args.Get(1).(time.Time)
}

func TestDataset_Reload(t *testing.T) {
	stats := sales.LoadStats{Rows: 12, Orders: 10, Dropped: 2}
	loaded := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	ds := new(MockDataset)
	ds.On("Reload", mock.Anything).Return(stats, nil)
	ds.On("Stats").Return(stats, loaded)

	instance := uuid.New()
	pub := new(MockEventPublisher)
	pub.On("PublishDatasetReloaded", mock.Anything, mock.MatchedBy(func(e models.DatasetReloadedEvent) bool {
		return e.InstanceID == instance && e.Orders == 10 && e.Dropped == 2
	})).Return(nil)

	hub := &MockBroadcaster{}
	handler := NewDatasetHandler(ds, pub, hub, instance)

	rec := httptest.NewRecorder()
	handler.Reload(rec, httptest.NewRequest(http.MethodPost, "/api/dataset/reload", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DatasetStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 10, resp.Orders)
	assert.Equal(t, 2, resp.Dropped)
	require.NotNil(t, resp.LoadedAt)

	require.Len(t, hub.messages, 1)
	assert.JSONEq(t, `{"type":"dataset.reloaded","payload":{"orders":10,"dropped":2}}`, string(hub.messages[0].([]byte)))

	pub.AssertExpectations(t)
}

func TestDataset_ReloadError(t *testing.T) {
	ds := new(MockDataset)
	ds.On("Reload", mock.Anything).Return(sales.LoadStats{}, errors.New("open dataset: no such file"))

	hub := &MockBroadcaster{}
	pub := new(MockEventPublisher)
	handler := NewDatasetHandler(ds, pub, hub, uuid.New())

	rec := httptest.NewRecorder()
	handler.Reload(rec, httptest.NewRequest(http.MethodPost, "/api/dataset/reload", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, hub.messages)
	pub.AssertNotCalled(t, "PublishDatasetReloaded", mock.Anything, mock.Anything)
}

func TestDataset_Status(t *testing.T) {
	ds := new(MockDataset)
	ds.On("Stats").Return(sales.LoadStats{Rows: 3, Orders: 3}, time.Time{})

	handler := NewDatasetHandler(ds, nil, nil, uuid.New())

	rec := httptest.NewRecorder()
	handler.Status(rec, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":3,"orders":3,"dropped":0}`, rec.Body.String())
}

func TestDataset_HandleRemoteReload(t *testing.T) {
	self := uuid.New()

	t.Run("peer event reloads and broadcasts", func(t *testing.T) {
		ds := new(MockDataset)
		ds.On("Reload", mock.Anything).Return(sales.LoadStats{Orders: 4}, nil)
		hub := &MockBroadcaster{}
		handler := NewDatasetHandler(ds, nil, hub, self)

		data, _ := json.Marshal(models.DatasetReloadedEvent{InstanceID: uuid.New(), Orders: 4})
		require.NoError(t, handler.HandleRemoteReload(context.Background(), data))

		ds.AssertCalled(t, "Reload", mock.Anything)
		require.Len(t, hub.messages, 1)
		var evt web.WSEvent
		require.NoError(t, json.Unmarshal(hub.messages[0].([]byte), &evt))
		assert.Equal(t, web.EventDatasetReloaded, evt.Type)
	})

	t.Run("shared dataset only broadcasts", func(t *testing.T) {
		ds := new(MockDataset)
		hub := &MockBroadcaster{}
		handler := NewDatasetHandler(ds, nil, hub, self)
		handler.SetShared(true)

		data, _ := json.Marshal(models.DatasetReloadedEvent{InstanceID: uuid.New(), Orders: 7, Dropped: 2})
		require.NoError(t, handler.HandleRemoteReload(context.Background(), data))

		ds.AssertNotCalled(t, "Reload", mock.Anything)
		require.Len(t, hub.messages, 1)
		var evt struct {
			Type    string                     `json:"type"`
			Payload web.DatasetReloadedPayload `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(hub.messages[0].([]byte), &evt))
		assert.Equal(t, 7, evt.Payload.Orders)
		assert.Equal(t, 2, evt.Payload.Dropped)
	})

	t.Run("own event is ignored", func(t *testing.T) {
		ds := new(MockDataset)
		handler := NewDatasetHandler(ds, nil, nil, self)

		data, _ := json.Marshal(models.DatasetReloadedEvent{InstanceID: self})
		require.NoError(t, handler.HandleRemoteReload(context.Background(), data))

		ds.AssertNotCalled(t, "Reload", mock.Anything)
	})

	t.Run("malformed message is acked", func(t *testing.T) {
		ds := new(MockDataset)
		handler := NewDatasetHandler(ds, nil, nil, self)

		assert.NoError(t, handler.HandleRemoteReload(context.Background(), []byte("{")))
		ds.AssertNotCalled(t, "Reload", mock.Anything)
	})

	t.Run("reload failure is returned for redelivery", func(t *testing.T) {
		ds := new(MockDataset)
		ds.On("Reload", mock.Anything).Return(sales.LoadStats{}, errors.New("boom"))
		handler := NewDatasetHandler(ds, nil, nil, self)

		data, _ := json.Marshal(models.DatasetReloadedEvent{InstanceID: uuid.New()})
		assert.Error(t, handler.HandleRemoteReload(context.Background(), data))
	})
}
