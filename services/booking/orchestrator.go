package booking

import (
	"context"
	"strings"
	"time"

	"tempobook/models"
	"tempobook/services/availability"

	"go.uber.org/zap"
)

// Orchestrator drives one conversation's booking flow from service selection
// through commit. It is not internally synchronized: the session cache
// serializes access per identity.
type Orchestrator struct {
	client availability.Client
	logger *zap.Logger
	now    func() time.Time

	catalogTTL time.Duration

	state State
	draft models.BookingDraft

	// Advisory option sets, each valid only for the selection it was
	// fetched against.
	catalog        []models.ServiceOffering
	catalogAt      time.Time
	establishments []models.Establishment
	slots          []models.TimeSlot

	txn *models.BookingTransaction
}

// NewOrchestrator returns an orchestrator in AwaitingServices with an empty
// draft. catalogTTL bounds how long a fetched service list is reused before
// LoadServices refreshes it.
func NewOrchestrator(client availability.Client, catalogTTL time.Duration, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		client:     client,
		logger:     logger,
		now:        time.Now,
		catalogTTL: catalogTTL,
		state:      StateAwaitingServices,
	}
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	return o.state
}

// Draft returns a copy of the working selection.
func (o *Orchestrator) Draft() models.BookingDraft {
	return o.draft
}

// Transaction returns the committed booking, or nil before completion.
func (o *Orchestrator) Transaction() *models.BookingTransaction {
	return o.txn
}

// ServiceOptions is the most recently fetched service catalog.
func (o *Orchestrator) ServiceOptions() []models.ServiceOffering {
	return o.catalog
}

// EstablishmentOptions is the establishment set fetched for the current
// service selection.
func (o *Orchestrator) EstablishmentOptions() []models.Establishment {
	return o.establishments
}

// SlotOptions is the slot list fetched for the current date selection.
func (o *Orchestrator) SlotOptions() []models.TimeSlot {
	return o.slots
}

// LoadServices fetches the service catalog, reusing a cached copy younger
// than the catalog TTL. Valid in any non-terminal state.
func (o *Orchestrator) LoadServices(ctx context.Context) ([]models.ServiceOffering, error) {
	if o.state.Terminal() {
		return nil, newFlowError(CodeInvalidTransition, "conversation already %s", o.state)
	}
	if o.catalog != nil && o.now().Sub(o.catalogAt) < o.catalogTTL {
		return o.catalog, nil
	}

	services, err := o.client.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	o.catalog = services
	o.catalogAt = o.now()
	return services, nil
}

// SelectServices sets the service selection and invalidates every later
// choice. Each id must appear in the most recently fetched catalog.
func (o *Orchestrator) SelectServices(ctx context.Context, ids []string) error {
	if !o.state.within(StateAwaitingServices, StateAwaitingCustomerInfo) {
		return newFlowError(CodeInvalidTransition, "cannot select services in state %s", o.state)
	}
	if len(ids) == 0 {
		return newFlowError(CodeUnknownService, "no services selected")
	}

	byID := make(map[string]models.ServiceOffering, len(o.catalog))
	for _, s := range o.catalog {
		byID[s.ID] = s
	}

	seen := make(map[string]bool, len(ids))
	selected := make([]models.ServiceOffering, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		svc, ok := byID[id]
		if !ok {
			return newFlowError(CodeUnknownService, "service %s is not in the current catalog", id)
		}
		selected = append(selected, svc)
	}

	// Fetch the establishments for this selection before touching the
	// draft, so a remote failure leaves the previous selection intact.
	establishments, err := o.client.ListEstablishments(ctx, models.ServiceIDs(selected))
	if err != nil {
		return err
	}

	o.draft.Services = selected
	o.draft.Establishment = nil
	o.draft.Date = ""
	o.draft.Slot = nil
	o.establishments = establishments
	o.slots = nil
	o.state = StateAwaitingEstablishment

	o.logger.Debug("services selected",
		zap.Strings("serviceIds", models.ServiceIDs(selected)),
		zap.Int("establishments", len(establishments)))
	return nil
}

// SelectEstablishment sets the establishment and invalidates date and slot.
func (o *Orchestrator) SelectEstablishment(id string) error {
	if !o.state.within(StateAwaitingEstablishment, StateAwaitingCustomerInfo) {
		return newFlowError(CodeInvalidTransition, "cannot select establishment in state %s", o.state)
	}

	for i := range o.establishments {
		if o.establishments[i].ID == id {
			est := o.establishments[i]
			o.draft.Establishment = &est
			o.draft.Date = ""
			o.draft.Slot = nil
			o.slots = nil
			o.state = StateAwaitingDate
			return nil
		}
	}
	return newFlowError(CodeUnknownEstablishment, "establishment %s does not offer the selected services", id)
}

// SelectDate sets the appointment date and fetches the slot list for it.
// The date must be ISO formatted and not in the past.
func (o *Orchestrator) SelectDate(ctx context.Context, date string) error {
	if !o.state.within(StateAwaitingDate, StateAwaitingCustomerInfo) {
		return newFlowError(CodeInvalidTransition, "cannot select date in state %s", o.state)
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return newFlowError(CodeInvalidDate, "date %q is not a valid ISO date", date)
	}
	today := o.now().Truncate(24 * time.Hour)
	if parsed.Before(today) {
		return newFlowError(CodeInvalidDate, "date %s is in the past", date)
	}

	slots, err := o.client.ListTimeSlots(ctx, availability.SlotQuery{
		Date:            date,
		EstablishmentID: o.draft.Establishment.ID,
		Duration:        o.draft.TotalDuration(),
		Services:        o.draft.Services,
	})
	if err != nil {
		return err
	}

	o.draft.Date = date
	o.draft.Slot = nil
	o.slots = slots
	o.state = StateAwaitingTime

	o.logger.Debug("date selected",
		zap.String("date", date),
		zap.Int("slots", len(slots)))
	return nil
}

// SelectTime picks the slot starting at the given time from the most
// recently fetched slot list. A miss is a soft error: the caller should
// refresh the options and re-prompt.
func (o *Orchestrator) SelectTime(startTime string) error {
	if !o.state.within(StateAwaitingTime, StateAwaitingCustomerInfo) {
		return newFlowError(CodeInvalidTransition, "cannot select time in state %s", o.state)
	}

	for i := range o.slots {
		if o.slots[i].Hour.StartTime == startTime {
			slot := o.slots[i]
			o.draft.Slot = &slot
			o.state = StateAwaitingCustomerInfo
			return nil
		}
	}
	return newFlowError(CodeSlotNoLongerOffered, "slot starting at %s is not in the offered list", startTime)
}

// SetCustomerInfo merges the provided contact fields into the draft. The
// conversation stays in AwaitingCustomerInfo until every field is present
// and well-formed, so missing fields can be supplied one at a time.
func (o *Orchestrator) SetCustomerInfo(info models.CustomerInfo) error {
	if o.state != StateAwaitingCustomerInfo {
		return newFlowError(CodeInvalidTransition, "cannot set customer info in state %s", o.state)
	}

	if info.Name != "" {
		o.draft.Customer.Name = info.Name
	}
	if info.LastName != "" {
		o.draft.Customer.LastName = info.LastName
	}
	if info.Email != "" {
		o.draft.Customer.Email = info.Email
	}
	if info.PhoneNumber != "" {
		o.draft.Customer.PhoneNumber = info.PhoneNumber
	}
	if info.PhoneCode != "" {
		o.draft.Customer.PhoneCode = info.PhoneCode
	}

	if missing := missingCustomerFields(o.draft.Customer); len(missing) > 0 {
		return newFlowError(CodeIncompleteCustomerInfo, "missing or malformed fields: %s", strings.Join(missing, ", "))
	}

	o.state = StateCommitting
	return nil
}

func missingCustomerFields(c models.CustomerInfo) []string {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.LastName == "" {
		missing = append(missing, "lastName")
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		missing = append(missing, "email")
	}
	if c.PhoneNumber == "" {
		missing = append(missing, "phoneNumber")
	}
	if c.PhoneCode == "" {
		missing = append(missing, "phoneCode")
	}
	return missing
}

// Commit re-validates the chosen slot against a fresh fetch and submits the
// booking. Slots carry no reservation on the remote side, so skipping the
// re-check would race slot display against booking creation.
func (o *Orchestrator) Commit(ctx context.Context) (*models.BookingTransaction, error) {
	if o.state != StateCommitting {
		return nil, newFlowError(CodeInvalidTransition, "cannot commit in state %s", o.state)
	}

	fresh, err := o.client.ListTimeSlots(ctx, availability.SlotQuery{
		Date:            o.draft.Date,
		EstablishmentID: o.draft.Establishment.ID,
		Duration:        o.draft.TotalDuration(),
		Services:        o.draft.Services,
	})
	if err != nil {
		// Remote errors are retryable; the draft stays intact.
		return nil, err
	}

	chosen := *o.draft.Slot
	stillOffered := false
	for _, slot := range fresh {
		if slot.SameWindow(chosen) {
			stillOffered = true
			break
		}
	}
	if !stillOffered {
		o.revertToTimeSelection(fresh)
		return nil, newFlowError(CodeSlotExpired, "slot %s-%s was taken while the conversation was in progress",
			chosen.Hour.StartTime, chosen.Hour.EndTime)
	}

	txn, err := o.client.CreateBooking(ctx, availability.BookingRequest{
		Customer: o.draft.Customer,
		Duration: o.draft.TotalDuration(),
		Services: o.draft.Services,
		Slot:     chosen,
		Date:     o.draft.Date,
	})
	if err != nil {
		status := availability.RejectedStatus(err)
		if status == 409 || status == 422 {
			// The remote refused the slot: someone else got there first
			// between our re-check and the submission.
			o.revertToTimeSelection(fresh)
			return nil, wrapFlowError(CodeSlotExpired, err, "slot %s was booked concurrently", chosen.Hour.StartTime)
		}
		return nil, wrapFlowError(CodeBookingSubmissionFailed, err, "booking submission failed")
	}

	o.txn = txn
	o.state = StateCompleted

	o.logger.Info("booking committed",
		zap.String("bookingId", txn.BookingID),
		zap.String("date", txn.Date),
		zap.String("startTime", txn.StartTime))
	return txn, nil
}

// revertToTimeSelection discards the stale slot and forces a re-selection
// from the fresh list.
func (o *Orchestrator) revertToTimeSelection(fresh []models.TimeSlot) {
	o.draft.Slot = nil
	o.slots = fresh
	o.state = StateAwaitingTime
}

// Abandon terminates the conversation from any non-terminal state.
func (o *Orchestrator) Abandon() error {
	if o.state.Terminal() {
		return newFlowError(CodeInvalidTransition, "conversation already %s", o.state)
	}
	o.state = StateAbandoned
	return nil
}
