package dialogue

import (
	"context"
	"errors"
	"time"

	recordsRepo "tempobook/database/repository/records"
	"tempobook/models"
	"tempobook/services/availability"
	"tempobook/services/booking"
	"tempobook/services/conversation"
	"tempobook/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unreachableReply = "I'm having trouble reaching the scheduling system right now. Please try again in a moment."

// Service is the dialogue bridge: it owns the turn loop between the
// messaging channel, the language responder and the booking orchestrator.
// The responder only ever proposes structured directives; every state change
// goes through the orchestrator's operations.
type Service struct {
	cache     *session.Cache
	store     conversation.Store
	records   recordsRepo.BookingRecordRepository
	responder Responder
	window    int
	logger    *zap.Logger
}

func NewService(
	cache *session.Cache,
	store conversation.Store,
	records recordsRepo.BookingRecordRepository,
	responder Responder,
	window int,
	logger *zap.Logger,
) *Service {
	return &Service{
		cache:     cache,
		store:     store,
		records:   records,
		responder: responder,
		window:    window,
		logger:    logger,
	}
}

// HandleMessage processes one inbound message for one identity and returns
// the reply to deliver. Concurrent messages for the same identity serialize
// on the session lock; different identities run in parallel.
func (s *Service) HandleMessage(ctx context.Context, identity, text string) (string, error) {
	sess := s.cache.GetOrCreate(identity)
	sess.Acquire()
	defer sess.Release()

	orch := sess.Orchestrator
	s.appendTurn(ctx, identity, "user", text)

	// The first step needs the catalog on hand before the responder can
	// offer anything.
	if orch.State() == booking.StateAwaitingServices {
		if _, err := orch.LoadServices(ctx); err != nil {
			s.logger.Warn("failed to load service catalog",
				zap.String("identity", identity), zap.Error(err))
			reply := unreachableReply
			s.appendTurn(ctx, identity, "assistant", reply)
			return reply, nil
		}
	}

	history, err := s.store.Recent(ctx, identity, s.window)
	if err != nil {
		s.logger.Warn("failed to load conversation history",
			zap.String("identity", identity), zap.Error(err))
	}

	d := s.interpret(ctx, orch, history, text)
	reply := s.apply(ctx, identity, orch, d)

	s.appendTurn(ctx, identity, "assistant", reply)
	if orch.State().Terminal() {
		s.cache.Remove(identity)
	}
	return reply, nil
}

// interpret asks the responder for a directive; anything unusable degrades
// to a plain chat directive so the flow re-prompts instead of erroring out.
func (s *Service) interpret(ctx context.Context, orch *booking.Orchestrator, history []models.Turn, text string) *directive {
	raw, err := s.responder.Generate(ctx, buildPrompt(orch, history, text))
	if err != nil {
		s.logger.Warn("responder failed", zap.Error(err))
		return &directive{Action: ActionChat}
	}
	d, err := parseDirective(raw)
	if err != nil {
		s.logger.Warn("unparseable responder output", zap.Error(err))
		return &directive{Action: ActionChat}
	}
	return d
}

// apply executes the directive against the orchestrator and produces the
// user-facing reply.
func (s *Service) apply(ctx context.Context, identity string, orch *booking.Orchestrator, d *directive) string {
	switch d.Action {
	case ActionSelectServices:
		if err := orch.SelectServices(ctx, d.ServiceIDs); err != nil {
			return s.errorReply(orch, err)
		}
	case ActionSelectEstablishment:
		if err := orch.SelectEstablishment(d.EstablishmentID); err != nil {
			return s.errorReply(orch, err)
		}
	case ActionSelectDate:
		if err := orch.SelectDate(ctx, d.Date); err != nil {
			return s.errorReply(orch, err)
		}
	case ActionSelectTime:
		if err := orch.SelectTime(d.StartTime); err != nil {
			return s.errorReply(orch, err)
		}
	case ActionSetCustomerInfo:
		if err := orch.SetCustomerInfo(d.Customer); err != nil {
			return s.errorReply(orch, err)
		}
	case ActionCommit:
		txn, err := orch.Commit(ctx)
		if err != nil {
			return s.errorReply(orch, err)
		}
		s.recordBooking(ctx, identity, txn)
		return renderConfirmation(txn)
	case ActionAbandon:
		if err := orch.Abandon(); err != nil {
			return s.errorReply(orch, err)
		}
		if d.Reply != "" {
			return d.Reply
		}
		return "No problem, I've cancelled this booking. Message me whenever you want to start again."
	}

	if d.Reply != "" {
		return d.Reply
	}
	return statePrompt(orch)
}

// errorReply maps an operation failure to a corrective message that keeps
// the conversation moving.
func (s *Service) errorReply(orch *booking.Orchestrator, err error) string {
	switch booking.ErrCode(err) {
	case booking.CodeUnknownService:
		return "I couldn't match that to our services." + renderServices(orch.ServiceOptions()) + "Which would you like?"
	case booking.CodeUnknownEstablishment:
		return "That location doesn't offer the selected services." + renderEstablishments(orch.EstablishmentOptions()) + "Which one works for you?"
	case booking.CodeInvalidDate:
		return "That date won't work, it needs to be today or later. What date would you like? (for example 2025-12-22)"
	case booking.CodeIncompleteCustomerInfo:
		return "I still need a few details before I can book: " + flowMessage(err) + "."
	case booking.CodeSlotNoLongerOffered, booking.CodeSlotExpired:
		return "That time was just taken." + renderSlots(orch.SlotOptions()) + "Which of these works instead?"
	case booking.CodeBookingSubmissionFailed:
		return "I couldn't confirm the booking just now. Say \"confirm\" and I'll try again."
	case booking.CodeInvalidTransition:
		return statePrompt(orch)
	}
	if availability.IsUnavailable(err) || availability.RejectedStatus(err) != 0 {
		return unreachableReply
	}
	s.logger.Error("unexpected booking flow error", zap.Error(err))
	return statePrompt(orch)
}

func flowMessage(err error) string {
	var fe *booking.FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

// statePrompt is the templated question for the current step, used when the
// responder gives no reply of its own.
func statePrompt(orch *booking.Orchestrator) string {
	switch orch.State() {
	case booking.StateAwaitingServices:
		return "Hi! I can book an appointment for you." + renderServices(orch.ServiceOptions()) + "Which service would you like?"
	case booking.StateAwaitingEstablishment:
		return "Great choice." + renderEstablishments(orch.EstablishmentOptions()) + "Which location works for you?"
	case booking.StateAwaitingDate:
		return "What date would you like to come in? (for example 2025-12-22)"
	case booking.StateAwaitingTime:
		return "Here's what's open:" + renderSlots(orch.SlotOptions()) + "Which time works for you?"
	case booking.StateAwaitingCustomerInfo:
		return "Almost done. I need your first name, last name, email, and phone number with country code."
	case booking.StateCommitting:
		return "Here's your booking:\n" + renderDraft(orch.Draft()) + "Shall I confirm it?"
	case booking.StateCompleted:
		return "Your booking is confirmed. Anything else I can help with?"
	default:
		return "This conversation has ended. Message me again to start a new booking."
	}
}

// recordBooking writes the audit record for a committed booking. A write
// failure is logged, not surfaced: the remote booking already exists.
func (s *Service) recordBooking(ctx context.Context, identity string, txn *models.BookingTransaction) {
	if s.records == nil {
		return
	}

	names := make([]string, 0, len(txn.Services))
	for _, svc := range txn.Services {
		names = append(names, svc.Name)
	}
	record := models.BookingRecord{
		ID:                uuid.New().String(),
		Identity:          identity,
		BookingID:         txn.BookingID,
		EstablishmentID:   txn.Establishment.ID,
		EstablishmentName: txn.Establishment.Name,
		Date:              txn.Date,
		StartTime:         txn.StartTime,
		EndTime:           txn.EndTime,
		Services:          names,
	}
	if _, err := s.records.Create(ctx, record); err != nil {
		s.logger.Error("failed to persist booking record",
			zap.String("identity", identity),
			zap.String("bookingId", txn.BookingID),
			zap.Error(err))
	}
}

func (s *Service) appendTurn(ctx context.Context, identity, role, content string) {
	turn := models.Turn{
		ID:      uuid.New().String(),
		Role:    role,
		Content: content,
		At:      time.Now(),
	}
	if err := s.store.Append(ctx, identity, turn); err != nil {
		s.logger.Warn("failed to append conversation turn",
			zap.String("identity", identity), zap.Error(err))
	}
}
