// Package keyring holds the key material for one user/bank EBICS relationship
package keyring

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"
)

// Version identifies the protocol role of a certificate.
type Version string

const (
	// VersionA006 is the electronic signature key (order type INI)
	VersionA006 Version = "A006"
	// VersionE002 is the encryption key (order type HIA)
	VersionE002 Version = "E002"
	// VersionX002 is the authentication key (order type HIA)
	VersionX002 Version = "X002"
)

// Certificate is an RSA key pair (or public half only, for bank keys)
// tagged with its protocol version. Certificates are immutable; a new
// certificate replaces an existing one, never mutates it.
type Certificate struct {
	version    Version
	publicKey  *rsa.PublicKey
	privateKey *rsa.PrivateKey
}

// NewCertificate creates a certificate from an existing key pair.
// privateKey may be nil for bank-owned certificates.
func NewCertificate(version Version, publicKey *rsa.PublicKey, privateKey *rsa.PrivateKey) *Certificate {
	return &Certificate{
		version:    version,
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// Version returns the protocol version tag (A006, E002 or X002).
func (c *Certificate) Version() Version {
	return c.version
}

// PublicKey returns the RSA public key.
func (c *Certificate) PublicKey() *rsa.PublicKey {
	return c.publicKey
}

// PrivateKey returns the RSA private key, or nil for public-only certificates.
func (c *Certificate) PrivateKey() *rsa.PrivateKey {
	return c.privateKey
}

// HasPrivateKey reports whether the private half is present.
func (c *Certificate) HasPrivateKey() bool {
	return c.privateKey != nil
}

// Modulus returns the base64 encoding of the public modulus.
func (c *Certificate) Modulus() string {
	return base64.StdEncoding.EncodeToString(c.publicKey.N.Bytes())
}

// Exponent returns the base64 encoding of the public exponent.
func (c *Certificate) Exponent() string {
	return base64.StdEncoding.EncodeToString(big.NewInt(int64(c.publicKey.E)).Bytes())
}

// KeyRing owns all certificates for one user/bank pair: the user's
// signature, encryption and authentication key pairs, and the bank's
// encryption and authentication public keys.
//
// A slot is either nil or holds a structurally complete certificate
// (public key always present; private key only for user-owned slots).
// Slots are mutated exclusively by the client orchestrator after a
// successful protocol step. A KeyRing is not safe for concurrent use.
type KeyRing struct {
	password string

	userSignature      *Certificate
	userEncryption     *Certificate
	userAuthentication *Certificate
	bankEncryption     *Certificate
	bankAuthentication *Certificate
}

// New creates an empty key ring protected by the given password.
func New(password string) *KeyRing {
	return &KeyRing{password: password}
}

// Password returns the password protecting private keys at rest.
func (r *KeyRing) Password() string {
	return r.password
}

// UserSignature returns the user's A006 certificate, or nil.
func (r *KeyRing) UserSignature() *Certificate { return r.userSignature }

// UserEncryption returns the user's E002 certificate, or nil.
func (r *KeyRing) UserEncryption() *Certificate { return r.userEncryption }

// UserAuthentication returns the user's X002 certificate, or nil.
func (r *KeyRing) UserAuthentication() *Certificate { return r.userAuthentication }

// BankEncryption returns the bank's E002 public certificate, or nil.
func (r *KeyRing) BankEncryption() *Certificate { return r.bankEncryption }

// BankAuthentication returns the bank's X002 public certificate, or nil.
func (r *KeyRing) BankAuthentication() *Certificate { return r.bankAuthentication }

// SetUserSignature stores the user's A006 certificate.
func (r *KeyRing) SetUserSignature(c *Certificate) { r.userSignature = c }

// SetUserEncryption stores the user's E002 certificate.
func (r *KeyRing) SetUserEncryption(c *Certificate) { r.userEncryption = c }

// SetUserAuthentication stores the user's X002 certificate.
func (r *KeyRing) SetUserAuthentication(c *Certificate) { r.userAuthentication = c }

// SetBankKeys stores the bank's encryption and authentication public
// certificates together. Bank keys are only ever learned as a pair
// from an HPB response, never one at a time.
func (r *KeyRing) SetBankKeys(encryption, authentication *Certificate) {
	r.bankEncryption = encryption
	r.bankAuthentication = authentication
}

// IsEmpty reports whether no certificate slot is populated.
func (r *KeyRing) IsEmpty() bool {
	return r.userSignature == nil &&
		r.userEncryption == nil &&
		r.userAuthentication == nil &&
		r.bankEncryption == nil &&
		r.bankAuthentication == nil
}
