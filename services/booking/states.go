package booking

// State names one position in the booking flow. Forward order is strict;
// the only backward moves are replacing an earlier selection (which clears
// everything after it) and the automatic revert to AwaitingTime when a slot
// goes stale.
type State string

const (
	StateAwaitingServices      State = "awaitingServices"
	StateAwaitingEstablishment State = "awaitingEstablishment"
	StateAwaitingDate          State = "awaitingDate"
	StateAwaitingTime          State = "awaitingTime"
	StateAwaitingCustomerInfo  State = "awaitingCustomerInfo"
	StateCommitting            State = "committing"
	StateCompleted             State = "completed"
	StateAbandoned             State = "abandoned"
)

// Terminal reports whether no further operations are accepted.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

var stateOrder = map[State]int{
	StateAwaitingServices:      0,
	StateAwaitingEstablishment: 1,
	StateAwaitingDate:          2,
	StateAwaitingTime:          3,
	StateAwaitingCustomerInfo:  4,
	StateCommitting:            5,
	StateCompleted:             6,
	StateAbandoned:             6,
}

// within reports whether s sits between min and max in flow order. Selection
// operations use it to allow replacing an earlier choice from any later
// pre-commit state.
func (s State) within(min, max State) bool {
	if s.Terminal() {
		return false
	}
	order := stateOrder[s]
	return order >= stateOrder[min] && order <= stateOrder[max]
}
