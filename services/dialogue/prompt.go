package dialogue

import (
	"fmt"
	"strings"

	"tempobook/models"
	"tempobook/services/booking"
)

const systemPrompt = `You are a friendly booking assistant for a beauty and wellness platform, talking to a customer over WhatsApp.

Guide the customer through booking an appointment: pick services, pick an establishment, pick a date, pick a time, collect contact details (first name, last name, email, phone number with country code), then confirm.

You must answer with a single JSON object and nothing else:
{"action": "...", "reply": "..."}
where action is one of: chat, select_services, select_establishment, select_date, select_time, set_customer_info, commit, abandon.
- select_services also needs "service_ids" (array of ids from the catalog below).
- select_establishment also needs "establishment_id".
- select_date also needs "date" in YYYY-MM-DD.
- select_time also needs "start_time" as shown in the slot list, e.g. "11:00".
- set_customer_info also needs "customer": {"name","lastName","email","phoneNumber","phoneCode"} with whatever fields the customer just provided.
- commit only after the customer explicitly confirms the summary.
- abandon when the customer wants to stop.
"reply" is the message the customer will read. Keep it concise and friendly. Always confirm selections before moving on. Only reference ids, dates and times that appear in the data below.`

// buildPrompt assembles the full prompt for one turn: the standing
// instructions, the machine-readable flow position, the option data for the
// current step, the recent history, and the new message.
func buildPrompt(orch *booking.Orchestrator, history []models.Turn, message string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nCurrent booking state: ")
	sb.WriteString(string(orch.State()))
	sb.WriteString("\n")
	sb.WriteString(renderDraft(orch.Draft()))

	switch orch.State() {
	case booking.StateAwaitingServices:
		sb.WriteString(renderServices(orch.ServiceOptions()))
	case booking.StateAwaitingEstablishment:
		sb.WriteString(renderEstablishments(orch.EstablishmentOptions()))
	case booking.StateAwaitingTime:
		sb.WriteString(renderSlots(orch.SlotOptions()))
	}

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			sb.WriteString(turn.Role)
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nCustomer's new message:\n")
	sb.WriteString(message)
	return sb.String()
}

func renderDraft(draft models.BookingDraft) string {
	var sb strings.Builder
	if len(draft.Services) > 0 {
		names := make([]string, 0, len(draft.Services))
		for _, s := range draft.Services {
			names = append(names, s.Name)
		}
		fmt.Fprintf(&sb, "Selected services: %s (total %d min)\n", strings.Join(names, ", "), models.TotalDuration(draft.Services))
	}
	if draft.Establishment != nil {
		fmt.Fprintf(&sb, "Selected establishment: %s\n", draft.Establishment.Name)
	}
	if draft.Date != "" {
		fmt.Fprintf(&sb, "Selected date: %s\n", draft.Date)
	}
	if draft.Slot != nil {
		fmt.Fprintf(&sb, "Selected time: %s - %s\n", draft.Slot.Hour.StartTime, draft.Slot.Hour.EndTime)
	}
	return sb.String()
}

func renderServices(services []models.ServiceOffering) string {
	if len(services) == 0 {
		return "\nNo services are currently available.\n"
	}
	var sb strings.Builder
	sb.WriteString("\nAvailable services:\n")
	for _, s := range services {
		fmt.Fprintf(&sb, "- %s (%d min, $%.2f), id: %s\n", s.Name, s.Duration, s.Price, s.ID)
		if s.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", s.Description)
		}
	}
	return sb.String()
}

func renderEstablishments(establishments []models.Establishment) string {
	if len(establishments) == 0 {
		return "\nNo establishments offer this combination of services.\n"
	}
	var sb strings.Builder
	sb.WriteString("\nAvailable establishments:\n")
	for _, e := range establishments {
		fmt.Fprintf(&sb, "- %s, id: %s", e.Name, e.ID)
		if len(e.Employees) > 0 {
			fmt.Fprintf(&sb, " (%d staff available)", len(e.Employees))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderSlots(slots []models.TimeSlot) string {
	if len(slots) == 0 {
		return "\nNo time slots are available for this date.\n"
	}
	var sb strings.Builder
	sb.WriteString("\nAvailable times:\n")
	for _, slot := range slots {
		fmt.Fprintf(&sb, "- %s - %s\n", slot.Hour.StartTime, slot.Hour.EndTime)
	}
	return sb.String()
}

func renderConfirmation(txn *models.BookingTransaction) string {
	var sb strings.Builder
	sb.WriteString("Booking confirmed!\n\n")
	fmt.Fprintf(&sb, "Name: %s %s\n", txn.Customer.Name, txn.Customer.LastName)
	fmt.Fprintf(&sb, "Date: %s\n", txn.Date)
	fmt.Fprintf(&sb, "Time: %s - %s\n", txn.StartTime, txn.EndTime)
	fmt.Fprintf(&sb, "Location: %s\n", txn.Establishment.Name)
	sb.WriteString("Services:\n")
	for _, s := range txn.Services {
		fmt.Fprintf(&sb, "  - %s (%d min)\n", s.Name, s.Duration)
	}
	return sb.String()
}
