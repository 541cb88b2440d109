package account

// State is the two-factor enrollment state of an account.
type State string

const (
	StateNotEnrolled         State = "not_enrolled"
	StatePendingVerification State = "pending_verification"
	StateEnabled             State = "enabled"
	StateDisabled            State = "disabled"
)

func (s State) String() string { return string(s) }

// Event is an enrollment operation.
type Event string

const (
	EventBegin    Event = "begin_enrollment"
	EventConfirm  Event = "confirm_enrollment"
	EventValidate Event = "validate_login"
	EventDisable  Event = "disable"
)

// transitions maps event -> from -> to. A missing entry means the event is
// not allowed from that state.
var transitions = map[Event]map[State]State{
	EventBegin: {
		StateNotEnrolled:         StatePendingVerification,
		StatePendingVerification: StatePendingVerification,
		StateEnabled:             StatePendingVerification,
		StateDisabled:            StatePendingVerification,
	},
	EventConfirm: {
		StatePendingVerification: StateEnabled,
		StateEnabled:             StateEnabled,
		StateDisabled:            StateEnabled,
	},
	EventValidate: {
		StateEnabled: StateEnabled,
	},
	EventDisable: {
		StateEnabled:  StateDisabled,
		StateDisabled: StateDisabled,
	},
}

var preconditionErrors = map[Event]error{
	EventConfirm:  ErrNotEnrolled,
	EventValidate: ErrTwoFactorNotEnabled,
	EventDisable:  ErrTwoFactorNotEnabled,
}

// Next returns the state reached by applying e, or the precondition error
// for e when it is not allowed from s.
func (s State) Next(e Event) (State, error) {
	if to, ok := transitions[e][s]; ok {
		return to, nil
	}
	if err, ok := preconditionErrors[e]; ok {
		return s, err
	}
	return s, ErrTwoFactorNotEnabled
}

// Can reports whether e is allowed from s.
func (s State) Can(e Event) bool {
	_, ok := transitions[e][s]
	return ok
}
