package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tempobook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-token", 2*time.Second, zap.NewNop()), srv
}

func TestListServices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/services", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"svc1","name":"Haircut","duration":10,"price":15,"type":"hair"}]`))
	})

	services, err := client.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "svc1", services[0].ID)
	assert.Equal(t, 10, services[0].Duration)
}

func TestListEstablishmentsJoinsServiceIDs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/establishments/establishments-by-services", r.URL.Path)
		assert.Equal(t, "svc1,svc2", r.URL.Query().Get("services"))

		w.Write([]byte(`[{"_id":"est1","name":"Downtown Studio","employees":[{"_id":"emp1"}]}]`))
	})

	establishments, err := client.ListEstablishments(context.Background(), []string{"svc1", "svc2"})
	require.NoError(t, err)
	require.Len(t, establishments, 1)
	assert.Equal(t, "est1", establishments[0].ID)
	assert.Len(t, establishments[0].Employees, 1)
}

func TestListTimeSlotsPostsFullServices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings/availableTime", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2025-12-22", payload["date"])
		assert.Equal(t, "est1", payload["establishmentId"])
		assert.Equal(t, float64(40), payload["duration"])
		// The remote expects full service objects, not id strings.
		services := payload["services"].([]any)
		require.Len(t, services, 1)
		assert.Equal(t, "svc1", services[0].(map[string]any)["_id"])

		w.Write([]byte(`[{"hour":{"startTime":"11:00","endTime":"11:40"},"establishment":{"_id":"est1","name":"Downtown Studio"},"duration":40}]`))
	})

	slots, err := client.ListTimeSlots(context.Background(), SlotQuery{
		Date:            "2025-12-22",
		EstablishmentID: "est1",
		Duration:        40,
		Services:        []models.ServiceOffering{{ID: "svc1", Name: "Haircut", Duration: 40}},
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "11:00", slots[0].Hour.StartTime)
	assert.Equal(t, "est1", slots[0].Establishment.ID)
}

func TestCreateBookingPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings/", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		customer := payload["customerInfo"].(map[string]any)
		assert.Equal(t, "ana@example.com", customer["email"])
		assert.Equal(t, "+593", customer["phoneCode"])
		source := customer["source"].(map[string]any)
		assert.Equal(t, "whatsapp", source["type"])
		assert.Equal(t, "AI Agent", source["detail"])

		schedule := payload["scheduleSelected"].(map[string]any)
		hour := schedule["hour"].(map[string]any)
		assert.Equal(t, "11:00", hour["startTime"])
		assert.Equal(t, "2025-12-22", schedule["date"])

		assert.Nil(t, payload["employeeSelected"])

		w.Write([]byte(`{"booking":{"_id":"bk-1","date":"2025-12-22","startTime":"11:00","endTime":"11:10","establishment":{"_id":"est1","name":"Downtown Studio"},"state":"confirmed"}}`))
	})

	txn, err := client.CreateBooking(context.Background(), BookingRequest{
		Customer: models.CustomerInfo{
			Name:        "Ana",
			LastName:    "Lopez",
			Email:       "ana@example.com",
			PhoneNumber: "991234567",
			PhoneCode:   "+593",
		},
		Duration: 10,
		Services: []models.ServiceOffering{{ID: "svc1", Duration: 10}},
		Slot: models.TimeSlot{
			Establishment: models.Establishment{ID: "est1", Name: "Downtown Studio"},
			Hour:          models.SlotHour{StartTime: "11:00", EndTime: "11:10"},
		},
		Date: "2025-12-22",
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", txn.BookingID)
	assert.Equal(t, "confirmed", txn.State)
}

func TestNon2xxBecomesRejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"slot taken"}`))
	})

	_, err := client.ListServices(context.Background())
	require.Error(t, err)
	assert.Equal(t, 409, RejectedStatus(err))
	assert.False(t, IsUnavailable(err))
}

func TestTransportFailureBecomesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewHTTPClient(url, "", time.Second, zap.NewNop())
	_, err := client.ListServices(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, 0, RejectedStatus(err))
}
