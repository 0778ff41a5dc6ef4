package dialogue

import (
	"encoding/json"
	"fmt"
	"strings"

	"tempobook/models"
)

// Directive actions the responder may pick. Each maps to one orchestrator
// operation; "chat" means no operation, just a reply.
const (
	ActionChat                = "chat"
	ActionSelectServices      = "select_services"
	ActionSelectEstablishment = "select_establishment"
	ActionSelectDate          = "select_date"
	ActionSelectTime          = "select_time"
	ActionSetCustomerInfo     = "set_customer_info"
	ActionCommit              = "commit"
	ActionAbandon             = "abandon"
)

// directive is the structured interpretation of one user message. The
// responder produces it as JSON; the bridge executes it. The responder never
// mutates the draft directly.
type directive struct {
	Action          string              `json:"action"`
	ServiceIDs      []string            `json:"service_ids,omitempty"`
	EstablishmentID string              `json:"establishment_id,omitempty"`
	Date            string              `json:"date,omitempty"`
	StartTime       string              `json:"start_time,omitempty"`
	Customer        models.CustomerInfo `json:"customer,omitempty"`
	Reply           string              `json:"reply"`
}

// parseDirective extracts the first JSON object from the responder's output.
// Models wrap JSON in prose or code fences often enough that plain
// unmarshaling is not an option.
func parseDirective(raw string) (*directive, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in responder output")
	}

	var d directive
	if err := json.Unmarshal([]byte(raw[start:end+1]), &d); err != nil {
		return nil, fmt.Errorf("failed to parse directive: %w", err)
	}
	if d.Action == "" {
		d.Action = ActionChat
	}
	return &d, nil
}
