package booking

import (
	"context"
	"testing"
	"time"

	"tempobook/models"
	"tempobook/services/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient scripts the four remote operations.
type fakeClient struct {
	services       []models.ServiceOffering
	establishments []models.Establishment

	slotResponses [][]models.TimeSlot
	slotErr       error
	slotCalls     int

	bookErr   error
	booked    []availability.BookingRequest
	txn       *models.BookingTransaction
	listCalls int
}

func (f *fakeClient) ListServices(ctx context.Context) ([]models.ServiceOffering, error) {
	f.listCalls++
	return f.services, nil
}

func (f *fakeClient) ListEstablishments(ctx context.Context, serviceIDs []string) ([]models.Establishment, error) {
	return f.establishments, nil
}

func (f *fakeClient) ListTimeSlots(ctx context.Context, query availability.SlotQuery) ([]models.TimeSlot, error) {
	if f.slotErr != nil {
		return nil, f.slotErr
	}
	idx := f.slotCalls
	if idx >= len(f.slotResponses) {
		idx = len(f.slotResponses) - 1
	}
	f.slotCalls++
	return f.slotResponses[idx], nil
}

func (f *fakeClient) CreateBooking(ctx context.Context, req availability.BookingRequest) (*models.BookingTransaction, error) {
	f.booked = append(f.booked, req)
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.txn, nil
}

var (
	svc1 = models.ServiceOffering{ID: "svc1", Name: "Haircut", Duration: 10, Price: 15}
	svc2 = models.ServiceOffering{ID: "svc2", Name: "Manicure", Duration: 30, Price: 25}
	est1 = models.Establishment{ID: "est1", Name: "Downtown Studio"}

	slot1100 = models.TimeSlot{
		Establishment: est1,
		Hour:          models.SlotHour{StartTime: "11:00", EndTime: "11:10"},
		Duration:      10,
	}
	slot1130 = models.TimeSlot{
		Establishment: est1,
		Hour:          models.SlotHour{StartTime: "11:30", EndTime: "11:40"},
		Duration:      10,
	}
)

var fixedNow = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func newTestOrchestrator(client availability.Client) *Orchestrator {
	o := NewOrchestrator(client, 10*time.Minute, zap.NewNop())
	o.now = func() time.Time { return fixedNow }
	return o
}

func completeCustomer() models.CustomerInfo {
	return models.CustomerInfo{
		Name:        "Ana",
		LastName:    "Lopez",
		Email:       "ana@example.com",
		PhoneNumber: "991234567",
		PhoneCode:   "+593",
	}
}

// advanceToCustomerInfo walks a fresh orchestrator up to AwaitingCustomerInfo.
func advanceToCustomerInfo(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx := context.Background()

	_, err := o.LoadServices(ctx)
	require.NoError(t, err)
	require.NoError(t, o.SelectServices(ctx, []string{"svc1"}))
	require.NoError(t, o.SelectEstablishment("est1"))
	require.NoError(t, o.SelectDate(ctx, "2025-12-22"))
	require.NoError(t, o.SelectTime("11:00"))
}

func TestHappyPathCommit(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1, svc2},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100, slot1130}},
		txn: &models.BookingTransaction{
			BookingID:     "bk-1",
			Establishment: est1,
			Date:          "2025-12-22",
			StartTime:     "11:00",
			EndTime:       "11:10",
			Services:      []models.ServiceOffering{svc1},
		},
	}
	o := newTestOrchestrator(client)

	advanceToCustomerInfo(t, o)
	require.NoError(t, o.SetCustomerInfo(completeCustomer()))
	assert.Equal(t, StateCommitting, o.State())

	txn, err := o.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, o.State())
	assert.Equal(t, "11:00", txn.StartTime)
	assert.Equal(t, "bk-1", txn.BookingID)

	// Commit re-fetched the slot list before submitting.
	assert.Equal(t, 2, client.slotCalls)
	require.Len(t, client.booked, 1)
	assert.Equal(t, "11:00", client.booked[0].Slot.Hour.StartTime)
	assert.Equal(t, 10, client.booked[0].Duration)
}

func TestCommitSlotExpiredReverts(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses: [][]models.TimeSlot{
			{slot1100, slot1130}, // shown to the user
			{slot1130},           // fresh fetch inside commit: 11:00 is gone
		},
	}
	o := newTestOrchestrator(client)

	advanceToCustomerInfo(t, o)
	require.NoError(t, o.SetCustomerInfo(completeCustomer()))

	_, err := o.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeSlotExpired))
	assert.Equal(t, StateAwaitingTime, o.State())
	assert.Nil(t, o.Draft().Slot)
	// Nothing was submitted with the stale slot.
	assert.Empty(t, client.booked)
	// The fresh list is what the user re-selects from.
	assert.Equal(t, []models.TimeSlot{slot1130}, o.SlotOptions())
}

func TestCommitConcurrentRejectionReverts(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100, slot1130}},
		bookErr:        availability.NewRejectedError(409, `{"error":"slot taken"}`),
	}
	o := newTestOrchestrator(client)

	advanceToCustomerInfo(t, o)
	require.NoError(t, o.SetCustomerInfo(completeCustomer()))

	_, err := o.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeSlotExpired))
	assert.Equal(t, StateAwaitingTime, o.State())
}

func TestCommitSubmissionFailureIsRetryable(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100, slot1130}},
		bookErr:        availability.NewRejectedError(500, "internal error"),
	}
	o := newTestOrchestrator(client)

	advanceToCustomerInfo(t, o)
	require.NoError(t, o.SetCustomerInfo(completeCustomer()))

	_, err := o.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeBookingSubmissionFailed))
	// Still committing: customer info survives and commit can be retried.
	assert.Equal(t, StateCommitting, o.State())
	assert.Equal(t, "ana@example.com", o.Draft().Customer.Email)

	client.bookErr = nil
	client.txn = &models.BookingTransaction{BookingID: "bk-2", StartTime: "11:00"}
	txn, err := o.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bk-2", txn.BookingID)
	assert.Equal(t, StateCompleted, o.State())
}

func TestSelectServicesResetsLaterSelections(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1, svc2},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100}},
	}
	o := newTestOrchestrator(client)
	advanceToCustomerInfo(t, o)

	require.NoError(t, o.SelectServices(context.Background(), []string{"svc2"}))

	draft := o.Draft()
	assert.Equal(t, StateAwaitingEstablishment, o.State())
	assert.Equal(t, []string{"svc2"}, draft.ServiceIDs())
	assert.Nil(t, draft.Establishment)
	assert.Empty(t, draft.Date)
	assert.Nil(t, draft.Slot)
}

func TestSelectEstablishmentBeforeServicesFails(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{})

	err := o.SelectEstablishment("est1")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidTransition))
	assert.Equal(t, StateAwaitingServices, o.State())
	assert.Equal(t, models.BookingDraft{}, o.Draft())
}

func TestSelectServicesUnknownID(t *testing.T) {
	client := &fakeClient{services: []models.ServiceOffering{svc1}}
	o := newTestOrchestrator(client)
	_, err := o.LoadServices(context.Background())
	require.NoError(t, err)

	err = o.SelectServices(context.Background(), []string{"nope"})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeUnknownService))
	assert.Equal(t, StateAwaitingServices, o.State())
}

func TestSelectDateInPast(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100}},
	}
	o := newTestOrchestrator(client)
	ctx := context.Background()
	_, err := o.LoadServices(ctx)
	require.NoError(t, err)
	require.NoError(t, o.SelectServices(ctx, []string{"svc1"}))
	require.NoError(t, o.SelectEstablishment("est1"))

	err = o.SelectDate(ctx, "2025-11-30")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidDate))
	assert.Equal(t, StateAwaitingDate, o.State())

	err = o.SelectDate(ctx, "not-a-date")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidDate))
}

func TestSelectTimeNotOffered(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100}},
	}
	o := newTestOrchestrator(client)
	ctx := context.Background()
	_, err := o.LoadServices(ctx)
	require.NoError(t, err)
	require.NoError(t, o.SelectServices(ctx, []string{"svc1"}))
	require.NoError(t, o.SelectEstablishment("est1"))
	require.NoError(t, o.SelectDate(ctx, "2025-12-22"))

	err = o.SelectTime("15:00")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeSlotNoLongerOffered))
	assert.Equal(t, StateAwaitingTime, o.State())
}

func TestSetCustomerInfoIncremental(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100}},
	}
	o := newTestOrchestrator(client)
	advanceToCustomerInfo(t, o)

	err := o.SetCustomerInfo(models.CustomerInfo{Name: "Ana", LastName: "Lopez"})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeIncompleteCustomerInfo))
	assert.Equal(t, StateAwaitingCustomerInfo, o.State())

	// A bare email is rejected as malformed.
	err = o.SetCustomerInfo(models.CustomerInfo{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeIncompleteCustomerInfo))

	err = o.SetCustomerInfo(models.CustomerInfo{
		Email:       "ana@example.com",
		PhoneNumber: "991234567",
		PhoneCode:   "+593",
	})
	require.NoError(t, err)
	assert.Equal(t, StateCommitting, o.State())
	// Earlier fields were kept across the retries.
	assert.Equal(t, "Ana", o.Draft().Customer.Name)
}

func TestLoadServicesUsesCatalogTTL(t *testing.T) {
	client := &fakeClient{services: []models.ServiceOffering{svc1}}
	o := newTestOrchestrator(client)
	ctx := context.Background()

	_, err := o.LoadServices(ctx)
	require.NoError(t, err)
	_, err = o.LoadServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, client.listCalls)

	o.now = func() time.Time { return fixedNow.Add(11 * time.Minute) }
	_, err = o.LoadServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, client.listCalls)
}

func TestAbandonFromAnyNonTerminalState(t *testing.T) {
	client := &fakeClient{
		services:       []models.ServiceOffering{svc1},
		establishments: []models.Establishment{est1},
		slotResponses:  [][]models.TimeSlot{{slot1100}},
	}
	o := newTestOrchestrator(client)
	advanceToCustomerInfo(t, o)

	require.NoError(t, o.Abandon())
	assert.Equal(t, StateAbandoned, o.State())

	err := o.SelectTime("11:00")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidTransition))
	require.Error(t, o.Abandon())
}
