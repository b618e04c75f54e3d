// Package crypto implements the cryptographic primitives of the EBICS
// handshake: XML canonicalization, digests, request authentication
// signatures, and decryption of bank order data.
package crypto

import (
	stdcrypto "crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/leifj/signedxml"

	"github.com/sirosfoundation/go-ebics/pkg/compression"
	"github.com/sirosfoundation/go-ebics/pkg/keyring"
)

// Service performs the cryptographic operations of the protocol against
// one key ring. Every operation is pure given its inputs and the ring;
// the service holds no mutable state.
type Service struct {
	ring *keyring.KeyRing
}

// NewService creates a crypto service bound to the given key ring.
func NewService(ring *keyring.KeyRing) *Service {
	return &Service{ring: ring}
}

// Canonicalize converts an XML fragment into its exclusive canonical
// form, so that signing and verification agree regardless of serializer
// quirks. Canonicalization is idempotent.
func (s *Service) Canonicalize(fragment []byte) ([]byte, error) {
	canonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	out, err := canonicalizer.Process(string(fragment), "")
	if err != nil {
		return nil, &CryptoError{Kind: CanonicalizationFailure, Op: "canonicalize", Err: err}
	}
	return []byte(out), nil
}

// Digest computes the SHA-256 digest over canonical bytes.
func (s *Service) Digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sign computes the RSA PKCS#1 v1.5 signature over a SHA-256 digest
// using the user's X002 authentication private key.
func (s *Service) Sign(digest []byte) ([]byte, error) {
	auth := s.ring.UserAuthentication()
	if auth == nil || !auth.HasPrivateKey() {
		return nil, &CryptoError{Kind: KeyAbsent, Op: "sign", Err: fmt.Errorf("authentication private key not in ring")}
	}

	signature, err := rsa.SignPKCS1v15(rand.Reader, auth.PrivateKey(), stdcrypto.SHA256, digest)
	if err != nil {
		return nil, &CryptoError{Kind: SignatureFailure, Op: "sign", Err: err}
	}
	return signature, nil
}

// DecryptOrderData decrypts bank order data: the transaction key is
// RSA-decrypted with the user's E002 private key, the payload is
// AES-128-CBC decrypted with a zero IV, then ZLIB-decompressed.
func (s *Service) DecryptOrderData(transactionKey, encrypted []byte) ([]byte, error) {
	enc := s.ring.UserEncryption()
	if enc == nil || !enc.HasPrivateKey() {
		return nil, &CryptoError{Kind: KeyAbsent, Op: "decrypt order data", Err: fmt.Errorf("encryption private key not in ring")}
	}

	key, err := rsa.DecryptPKCS1v15(nil, enc.PrivateKey(), transactionKey)
	if err != nil {
		return nil, &CryptoError{Kind: DecryptionFailure, Op: "decrypt order data", Err: fmt.Errorf("decrypting transaction key: %w", err)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &CryptoError{Kind: DecryptionFailure, Op: "decrypt order data", Err: err}
	}
	if len(encrypted) == 0 || len(encrypted)%block.BlockSize() != 0 {
		return nil, &CryptoError{Kind: DecryptionFailure, Op: "decrypt order data", Err: fmt.Errorf("ciphertext length %d not a multiple of block size", len(encrypted))}
	}

	// E002 mandates a zero IV; randomness comes from the per-transaction key.
	iv := make([]byte, block.BlockSize())
	plain := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, encrypted)

	// The ZLIB stream carries its own end marker, so trailing block
	// padding after the stream is ignored.
	data, err := compression.NewCompressor().Decompress(plain)
	if err != nil {
		return nil, &CryptoError{Kind: DecryptionFailure, Op: "decrypt order data", Err: fmt.Errorf("decompressing order data: %w", err)}
	}

	return data, nil
}

// PublicDigest computes the EBICS digest of an RSA public key: SHA-256
// over the lowercase hex exponent, a space, and the lowercase hex
// modulus, without leading zeros. Banks print this value on INI/HIA
// letters for out-of-band confirmation.
func PublicDigest(cert *keyring.Certificate) []byte {
	pub := cert.PublicKey()
	input := fmt.Sprintf("%x %x", pub.E, pub.N)
	sum := sha256.Sum256([]byte(input))
	return sum[:]
}
