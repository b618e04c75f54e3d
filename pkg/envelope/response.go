package envelope

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-ebics/pkg/keyring"
)

// ReturnCodeOK is the EBICS_OK technical and business return code.
const ReturnCodeOK = "000000"

// Response is the parsed XML reply of the bank server. Its technical
// and business return codes determine whether a key ring mutation may
// proceed.
type Response struct {
	doc *etree.Document

	// TechnicalCode is the transport-level return code (header/mutable)
	TechnicalCode string
	// TechnicalReport is the human-readable report text
	TechnicalReport string
	// BusinessCode is the order-level return code (body)
	BusinessCode string

	// OrderData is the base64-decoded order data, still encrypted and
	// compressed; empty when the response carries none
	OrderData []byte
	// TransactionKey is the RSA-encrypted symmetric key for OrderData
	TransactionKey []byte
	// EncryptionPubKeyDigest names the user key the bank encrypted against
	EncryptionPubKeyDigest string
}

// ParseResponse parses a bank reply body into a Response.
func ParseResponse(body []byte) (*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parsing response XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("response has no root element")
	}

	resp := &Response{doc: doc}

	if code := root.FindElement("./header/mutable/ReturnCode"); code != nil {
		resp.TechnicalCode = code.Text()
	} else {
		return nil, fmt.Errorf("response missing technical return code")
	}
	if report := root.FindElement("./header/mutable/ReportText"); report != nil {
		resp.TechnicalReport = report.Text()
	}
	if code := root.FindElement("./body/ReturnCode"); code != nil {
		resp.BusinessCode = code.Text()
	}

	if orderData := root.FindElement("./body/DataTransfer/OrderData"); orderData != nil {
		data, err := base64.StdEncoding.DecodeString(orderData.Text())
		if err != nil {
			return nil, fmt.Errorf("decoding order data: %w", err)
		}
		resp.OrderData = data
	}
	if key := root.FindElement("./body/DataTransfer/DataEncryptionInfo/TransactionKey"); key != nil {
		data, err := base64.StdEncoding.DecodeString(key.Text())
		if err != nil {
			return nil, fmt.Errorf("decoding transaction key: %w", err)
		}
		resp.TransactionKey = data
	}
	if digest := root.FindElement("./body/DataTransfer/DataEncryptionInfo/EncryptionPubKeyDigest"); digest != nil {
		resp.EncryptionPubKeyDigest = digest.Text()
	}

	return resp, nil
}

// Name returns the local name of the response's root element.
func (r *Response) Name() string {
	return r.doc.Root().Tag
}

// TechnicalOK reports whether the bank accepted the request at the
// transport level.
func (r *Response) TechnicalOK() bool {
	return r.TechnicalCode == ReturnCodeOK
}

// BusinessOK reports whether the order itself was accepted. A response
// without a business code (key-management replies carry it only on
// rejection paths) counts as accepted.
func (r *Response) BusinessOK() bool {
	return r.BusinessCode == "" || r.BusinessCode == ReturnCodeOK
}

// ParseHPBOrderData extracts the bank's encryption and authentication
// public certificates from decrypted HPBResponseOrderData. Both keys
// are always present together; a document carrying only one is
// malformed.
func ParseHPBOrderData(data []byte) (encryption, authentication *keyring.Certificate, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, fmt.Errorf("parsing HPB order data: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("HPB order data has no root element")
	}

	encryption, err = parseBankKey(root, "EncryptionPubKeyInfo", "EncryptionVersion", keyring.VersionE002)
	if err != nil {
		return nil, nil, err
	}
	authentication, err = parseBankKey(root, "AuthenticationPubKeyInfo", "AuthenticationVersion", keyring.VersionX002)
	if err != nil {
		return nil, nil, err
	}

	return encryption, authentication, nil
}

func parseBankKey(root *etree.Element, infoName, versionName string, fallback keyring.Version) (*keyring.Certificate, error) {
	info := root.FindElement("./" + infoName)
	if info == nil {
		return nil, fmt.Errorf("HPB order data missing %s", infoName)
	}

	// The ds: prefix on RSAKeyValue is schema-mandated but some servers
	// emit it unprefixed.
	modulusEl := findFirst(info, "./PubKeyValue/ds:RSAKeyValue/ds:Modulus", "./PubKeyValue/RSAKeyValue/Modulus")
	exponentEl := findFirst(info, "./PubKeyValue/ds:RSAKeyValue/ds:Exponent", "./PubKeyValue/RSAKeyValue/Exponent")
	if modulusEl == nil || exponentEl == nil {
		return nil, fmt.Errorf("%s missing RSA key value", infoName)
	}

	modulus, err := base64.StdEncoding.DecodeString(modulusEl.Text())
	if err != nil {
		return nil, fmt.Errorf("decoding %s modulus: %w", infoName, err)
	}
	exponent, err := base64.StdEncoding.DecodeString(exponentEl.Text())
	if err != nil {
		return nil, fmt.Errorf("decoding %s exponent: %w", infoName, err)
	}

	version := fallback
	if v := info.FindElement("./" + versionName); v != nil {
		version = keyring.Version(v.Text())
	}

	publicKey := &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(new(big.Int).SetBytes(exponent).Int64()),
	}

	return keyring.NewCertificate(version, publicKey, nil), nil
}

func findFirst(parent *etree.Element, paths ...string) *etree.Element {
	for _, path := range paths {
		if el := parent.FindElement(path); el != nil {
			return el
		}
	}
	return nil
}
