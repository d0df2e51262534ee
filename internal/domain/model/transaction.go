package model

// TransactionState describes remote transaction state reported by BML Connect.
type TransactionState string

const (
	StateQRCodeGenerated TransactionState = "QR_CODE_GENERATED"
	StateConfirmed       TransactionState = "CONFIRMED"
	StateCancelled       TransactionState = "CANCELLED"
	StateRefunded        TransactionState = "REFUNDED"
	StateRefundRequested TransactionState = "REFUND_REQUESTED"
	// StateUnrecognized covers any state value this integration does not know.
	// Unrecognized states are treated as still pending, never as errors.
	StateUnrecognized TransactionState = "UNRECOGNIZED"
)

// ParseTransactionState maps a raw state string onto the closed enumeration.
func ParseTransactionState(raw string) TransactionState {
	switch state := TransactionState(raw); state {
	case StateQRCodeGenerated, StateConfirmed, StateCancelled, StateRefunded, StateRefundRequested:
		return state
	default:
		return StateUnrecognized
	}
}

// Known reports whether the state belongs to the documented enumeration.
func (s TransactionState) Known() bool {
	return s != StateUnrecognized
}

// RemoteTransaction is the processor's view of a payment. It is a read-through
// snapshot of remote authoritative state and is never mutated locally.
type RemoteTransaction struct {
	ID       string
	LocalID  int64
	Amount   int64
	Currency string
	State    TransactionState
	RawState string
	URL      string
}
