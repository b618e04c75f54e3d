package crypto

import (
	"crypto/rand"
	"crypto/rsa"

	"github.com/sirosfoundation/go-ebics/pkg/keyring"
)

// KeySize is the RSA modulus size mandated by EBICS 2.5.
const KeySize = 2048

// CertificateFactory generates fresh RSA key pairs wrapped into typed
// certificates. The factory is stateless; private keys are produced in
// the clear in memory, and encryption at rest is the key ring manager's
// responsibility.
type CertificateFactory struct{}

// NewCertificateFactory creates a certificate factory.
func NewCertificateFactory() *CertificateFactory {
	return &CertificateFactory{}
}

// GenerateSignatureCertificate generates a fresh A006 signature key pair.
func (f *CertificateFactory) GenerateSignatureCertificate() (*keyring.Certificate, error) {
	return f.generate(keyring.VersionA006)
}

// GenerateEncryptionCertificate generates a fresh E002 encryption key pair.
func (f *CertificateFactory) GenerateEncryptionCertificate() (*keyring.Certificate, error) {
	return f.generate(keyring.VersionE002)
}

// GenerateAuthenticationCertificate generates a fresh X002 authentication key pair.
func (f *CertificateFactory) GenerateAuthenticationCertificate() (*keyring.Certificate, error) {
	return f.generate(keyring.VersionX002)
}

func (f *CertificateFactory) generate(version keyring.Version) (*keyring.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, &CryptoError{Kind: GenerationFailure, Op: "generate " + string(version), Err: err}
	}
	return keyring.NewCertificate(version, &key.PublicKey, key), nil
}
