package checkout

type State string

const (
	StateInitiated       State = "INITIATED"
	StateLeased          State = "LEASED"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateCommitted       State = "COMMITTED"
	StateRejected        State = "REJECTED"
	StateExpired         State = "EXPIRED"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateInitiated, StateLeased, StateAwaitingPayment, StateCommitted, StateRejected, StateExpired:
		return true
	default:
		return false
	}
}

// IsTerminal is true once a settlement decision is final. EXPIRED is not
// terminal: a late payment success may still settle it.
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateRejected
}

type RejectReason string

const (
	ReasonSlotUnavailable RejectReason = "slot_unavailable"
	ReasonPaymentFailed   RejectReason = "payment_failed"
	ReasonAmountMismatch  RejectReason = "amount_mismatch"
)

func (r RejectReason) String() string {
	return string(r)
}

// RequiresRefund is true when money may have been captured for the attempt.
func (r RejectReason) RequiresRefund() bool {
	return r == ReasonSlotUnavailable || r == ReasonAmountMismatch
}
