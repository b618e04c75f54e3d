// Package keyring provides the password-protected file persistence for key rings
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfName        = "PBKDF2-SHA256"
	kdfIterations  = 100000
	kdfSaltLength  = 32
	cipherName     = "AES-256-GCM"
	cipherKeyBytes = 32
)

// Manager is the sole authority on the key ring file format. Every other
// component accesses key material only through the KeyRing object.
//
// The file is pretty-printed JSON mapping slot names to certificate
// records. Public keys are stored in clear; user-owned private keys are
// sealed with AES-256-GCM under a PBKDF2-SHA256 derived key, so a ring
// written by one process can be read by another holding the same password.
type Manager struct {
	path     string
	password string
}

// NewManager creates a manager for the key ring file at path.
func NewManager(path, password string) *Manager {
	return &Manager{path: path, password: password}
}

// ringFile is the on-disk representation
type ringFile struct {
	Version string    `json:"version"`
	User    userSlots `json:"user"`
	Bank    bankSlots `json:"bank"`
}

type userSlots struct {
	Signature      *certRecord `json:"signature,omitempty"`
	Encryption     *certRecord `json:"encryption,omitempty"`
	Authentication *certRecord `json:"authentication,omitempty"`
}

type bankSlots struct {
	Encryption     *certRecord `json:"encryption,omitempty"`
	Authentication *certRecord `json:"authentication,omitempty"`
}

type certRecord struct {
	Version    string           `json:"version"`
	PublicKey  publicKeyRecord  `json:"publicKey"`
	PrivateKey *sealedKeyRecord `json:"privateKey,omitempty"`
}

type publicKeyRecord struct {
	Modulus  string `json:"modulus"`
	Exponent string `json:"exponent"`
}

// sealedKeyRecord carries the encrypted private key blob together with
// the KDF and cipher parameters needed to open it.
type sealedKeyRecord struct {
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Salt       string `json:"salt"`
	Cipher     string `json:"cipher"`
	Nonce      string `json:"nonce"`
	Blob       string `json:"blob"`
}

// Load reads the key ring from disk. A missing or empty file yields a
// fresh empty ring; a file that cannot be decoded (or whose private keys
// cannot be opened with the configured password) yields a
// PersistenceError of kind corrupt-data.
func (m *Manager) Load() (*KeyRing, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(m.password), nil
		}
		return nil, &PersistenceError{Kind: PersistenceRead, Path: m.path, Err: err}
	}
	if len(data) == 0 {
		return New(m.password), nil
	}

	var file ringFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &PersistenceError{Kind: PersistenceCorrupt, Path: m.path, Err: err}
	}

	ring := New(m.password)

	decode := func(rec *certRecord, set func(*Certificate)) error {
		if rec == nil {
			return nil
		}
		cert, err := m.decodeCertificate(rec)
		if err != nil {
			return err
		}
		set(cert)
		return nil
	}

	steps := []error{
		decode(file.User.Signature, ring.SetUserSignature),
		decode(file.User.Encryption, ring.SetUserEncryption),
		decode(file.User.Authentication, ring.SetUserAuthentication),
		decode(file.Bank.Encryption, func(c *Certificate) { ring.bankEncryption = c }),
		decode(file.Bank.Authentication, func(c *Certificate) { ring.bankAuthentication = c }),
	}
	for _, err := range steps {
		if err != nil {
			return nil, &PersistenceError{Kind: PersistenceCorrupt, Path: m.path, Err: err}
		}
	}

	return ring, nil
}

// Save serializes the ring to disk. The write is atomic: content goes to
// a temp file in the same directory which then replaces the target, so a
// half-written file is never interpretable as a valid ring.
func (m *Manager) Save(ring *KeyRing) error {
	file := ringFile{Version: "H004"}

	encode := func(cert *Certificate, dst **certRecord) error {
		if cert == nil {
			return nil
		}
		rec, err := m.encodeCertificate(cert)
		if err != nil {
			return err
		}
		*dst = rec
		return nil
	}

	steps := []error{
		encode(ring.UserSignature(), &file.User.Signature),
		encode(ring.UserEncryption(), &file.User.Encryption),
		encode(ring.UserAuthentication(), &file.User.Authentication),
		encode(ring.BankEncryption(), &file.Bank.Encryption),
		encode(ring.BankAuthentication(), &file.Bank.Authentication),
	}
	for _, err := range steps {
		if err != nil {
			return &PersistenceError{Kind: PersistenceWrite, Path: m.path, Err: err}
		}
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return &PersistenceError{Kind: PersistenceWrite, Path: m.path, Err: err}
	}

	tmp := filepath.Join(filepath.Dir(m.path), "."+filepath.Base(m.path)+".tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &PersistenceError{Kind: PersistenceWrite, Path: m.path, Err: err}
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Kind: PersistenceWrite, Path: m.path, Err: err}
	}

	return nil
}

func (m *Manager) encodeCertificate(cert *Certificate) (*certRecord, error) {
	rec := &certRecord{
		Version: string(cert.Version()),
		PublicKey: publicKeyRecord{
			Modulus:  cert.Modulus(),
			Exponent: cert.Exponent(),
		},
	}

	if !cert.HasPrivateKey() {
		return rec, nil
	}

	salt := make([]byte, kdfSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	aead, err := newAEAD(m.password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	der := x509.MarshalPKCS1PrivateKey(cert.PrivateKey())
	blob := aead.Seal(nil, nonce, der, nil)

	rec.PrivateKey = &sealedKeyRecord{
		KDF:        kdfName,
		Iterations: kdfIterations,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Cipher:     cipherName,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Blob:       base64.StdEncoding.EncodeToString(blob),
	}

	return rec, nil
}

func (m *Manager) decodeCertificate(rec *certRecord) (*Certificate, error) {
	modulus, err := base64.StdEncoding.DecodeString(rec.PublicKey.Modulus)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	exponent, err := base64.StdEncoding.DecodeString(rec.PublicKey.Exponent)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	publicKey := &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(new(big.Int).SetBytes(exponent).Int64()),
	}

	var privateKey *rsa.PrivateKey
	if rec.PrivateKey != nil {
		privateKey, err = m.openPrivateKey(rec.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	return NewCertificate(Version(rec.Version), publicKey, privateKey), nil
}

func (m *Manager) openPrivateKey(rec *sealedKeyRecord) (*rsa.PrivateKey, error) {
	if rec.KDF != kdfName {
		return nil, fmt.Errorf("unsupported KDF: %s", rec.KDF)
	}
	if rec.Cipher != cipherName {
		return nil, fmt.Errorf("unsupported cipher: %s", rec.Cipher)
	}

	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(rec.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decoding nonce: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(rec.Blob)
	if err != nil {
		return nil, fmt.Errorf("decoding key blob: %w", err)
	}

	iterations := rec.Iterations
	if iterations == 0 {
		iterations = kdfIterations
	}

	key := pbkdf2.Key([]byte(m.password), salt, iterations, cipherKeyBytes, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	der, err := aead.Open(nil, nonce, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("opening key blob: %w", err)
	}

	return x509.ParsePKCS1PrivateKey(der)
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, cipherKeyBytes, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
