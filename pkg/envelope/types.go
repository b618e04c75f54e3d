// Package envelope assembles and parses EBICS H004 XML envelopes
package envelope

import (
	"crypto/rand"
	"fmt"
	"time"
)

// EBICS H004 namespaces
const (
	// NamespaceH004 is the EBICS 2.5 schema namespace
	NamespaceH004 = "urn:org:ebics:H004"
	// NamespaceS001 is the EBICS signature schema namespace
	NamespaceS001 = "http://www.ebics.org/S001"
	// NamespaceXMLDSig is the XML digital signature namespace
	NamespaceXMLDSig = "http://www.w3.org/2000/09/xmldsig#"
)

// Bootstrap order types
const (
	// OrderTypeINI submits the user's signature public key
	OrderTypeINI = "INI"
	// OrderTypeHIA submits the user's encryption and authentication public keys
	OrderTypeHIA = "HIA"
	// OrderTypeHPB retrieves the bank's public keys
	OrderTypeHPB = "HPB"
)

// Order attributes per H004
const (
	// OrderAttributeDZNNN marks unsigned order data (INI, HIA)
	OrderAttributeDZNNN = "DZNNN"
	// OrderAttributeDZHNN marks download orders without ES (HPB)
	OrderAttributeDZHNN = "DZHNN"
)

const (
	// SecurityMedium 0000 means no additional security medium
	SecurityMedium = "0000"
	// ProtocolVersion is the H004 protocol version string
	ProtocolVersion = "H004"
	// ProtocolRevision is the H004 schema revision
	ProtocolRevision = "1"
	// DefaultProduct identifies this client in the Product header field
	DefaultProduct = "go-ebics client"
	// ProductLanguage is the language attribute of the Product field
	ProductLanguage = "en"
)

// TimestampFormat is the xs:dateTime layout used in EBICS headers.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Bank is the immutable server-side configuration: EBICS host identifier
// and server URL. Supplied by the caller, read-only to the core.
type Bank struct {
	HostID string
	URL    string
}

// User identifies the corporate user: partner (company) and user IDs.
type User struct {
	PartnerID string
	UserID    string
}

// FormatTimestamp renders a timestamp as EBICS xs:dateTime in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// GenerateNonce produces the 16-byte random nonce of a secured header,
// encoded as 32 uppercase hex digits.
func GenerateNonce() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return fmt.Sprintf("%X", nonce), nil
}
