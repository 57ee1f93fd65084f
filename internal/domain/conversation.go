package domain

// PendingStep identifies the single piece of information the conversation
// is waiting for before it can finish an in-progress multi-turn action.
type PendingStep int

const (
	StepNone PendingStep = iota
	StepLogConfirmation
	StepDonorName
	StepDonorPhone
)

func (s PendingStep) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepLogConfirmation:
		return "awaiting_log_confirmation"
	case StepDonorName:
		return "awaiting_name"
	case StepDonorPhone:
		return "awaiting_phone"
	default:
		return "unknown"
	}
}

// ConversationState is the transient, conversation-scoped record mutated
// exclusively by the message router. At most one pending step is active at
// a time and DonorPhone is only ever set after DonorName.
type ConversationState struct {
	Pending    PendingStep
	DonorName  string
	DonorPhone string
}

// Idle reports whether no multi-turn action is in progress.
func (s *ConversationState) Idle() bool {
	return s.Pending == StepNone
}

// Reset returns the conversation to its rest state, discarding any
// partially collected donor identity.
func (s *ConversationState) Reset() {
	s.Pending = StepNone
	s.DonorName = ""
	s.DonorPhone = ""
}
