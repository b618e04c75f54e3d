package client

import "fmt"

// ProtocolErrorKind classifies protocol-level failures.
type ProtocolErrorKind string

const (
	// MalformedResponse indicates the bank's reply could not be parsed
	MalformedResponse ProtocolErrorKind = "malformed-response"
	// BankRejected indicates a well-formed reply carrying a failure code
	BankRejected ProtocolErrorKind = "bank-rejected"
)

// ProtocolError is returned when the bank's reply is malformed or
// carries a failure return code. A bank rejection is not a transport
// error: the exchange succeeded, the order did not. The key ring is
// never mutated on a ProtocolError.
type ProtocolError struct {
	Kind   ProtocolErrorKind
	Code   string
	Report string
	Err    error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Kind == BankRejected && e.Report != "":
		return fmt.Sprintf("bank rejected request: %s (%s)", e.Code, e.Report)
	case e.Kind == BankRejected:
		return fmt.Sprintf("bank rejected request: %s", e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// StateError is returned when an operation is invoked from a bootstrap
// state that does not admit it, before anything is generated or sent.
type StateError struct {
	Operation string
	State     State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not valid in state %s", e.Operation, e.State)
}
