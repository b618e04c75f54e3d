package crypto

import "fmt"

// CryptoErrorKind classifies cryptographic failures.
type CryptoErrorKind string

const (
	// GenerationFailure indicates RSA key pair generation failed
	GenerationFailure CryptoErrorKind = "generation-failure"
	// KeyAbsent indicates a required private key is missing from the ring
	KeyAbsent CryptoErrorKind = "key-absent"
	// CanonicalizationFailure indicates the input XML could not be canonicalized
	CanonicalizationFailure CryptoErrorKind = "canonicalization-failure"
	// SignatureFailure indicates the signature computation failed
	SignatureFailure CryptoErrorKind = "signature-failure"
	// DecryptionFailure indicates bank order data could not be decrypted
	DecryptionFailure CryptoErrorKind = "decryption-failure"
)

// CryptoError is returned for key generation, canonicalization, signing
// and decryption failures. These abort the current operation; no retry.
type CryptoError struct {
	Kind CryptoErrorKind
	Op   string
	Err  error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}
