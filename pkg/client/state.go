package client

import "github.com/sirosfoundation/go-ebics/pkg/keyring"

// State is the bootstrap protocol state, derived entirely from the key
// ring's populated slots; there is no hidden state beside the ring.
type State int

const (
	// StateNoKeys means no user key has been submitted yet
	StateNoKeys State = iota
	// StateSignatureKeySubmitted means the A006 key exists
	StateSignatureKeySubmitted
	// StateEncryptionAndAuthKeysSubmitted means the E002 and X002 keys exist
	StateEncryptionAndAuthKeysSubmitted
	// StateBankKeysKnown means the bank's public keys are in the ring
	StateBankKeysKnown
)

func (s State) String() string {
	switch s {
	case StateNoKeys:
		return "NoKeys"
	case StateSignatureKeySubmitted:
		return "SignatureKeySubmitted"
	case StateEncryptionAndAuthKeysSubmitted:
		return "EncryptionAndAuthKeysSubmitted"
	case StateBankKeysKnown:
		return "BankKeysKnown"
	default:
		return "Unknown"
	}
}

// StateOf derives the bootstrap state from a key ring. The protocol
// admits INI and HIA in either order, so the derivation reads the most
// advanced condition first.
func StateOf(ring *keyring.KeyRing) State {
	if ring.BankEncryption() != nil && ring.BankAuthentication() != nil {
		return StateBankKeysKnown
	}
	if ring.UserEncryption() != nil && ring.UserAuthentication() != nil {
		return StateEncryptionAndAuthKeysSubmitted
	}
	if ring.UserSignature() != nil {
		return StateSignatureKeySubmitted
	}
	return StateNoKeys
}
