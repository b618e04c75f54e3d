package envelope

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-ebics/pkg/keyring"
)

// OrderDataHandler serializes public-key order data for the two
// key-submission operations. The output is an XML fragment of its own
// (S001 schema for INI, H004 for HIA) that the body handler then embeds
// compressed and base64-encoded.
type OrderDataHandler struct {
	user User
}

// NewOrderDataHandler creates an order-data handler for one user.
func NewOrderDataHandler(user User) *OrderDataHandler {
	return &OrderDataHandler{user: user}
}

// BuildSignaturePubKeyOrderData serializes the user's new A006 public
// key with its metadata into the S001 SignaturePubKeyOrderData schema.
func (o *OrderDataHandler) BuildSignaturePubKeyOrderData(cert *keyring.Certificate, timestamp time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("SignaturePubKeyOrderData")
	root.CreateAttr("xmlns", NamespaceS001)
	root.CreateAttr("xmlns:ds", NamespaceXMLDSig)

	info := root.CreateElement("SignaturePubKeyInfo")
	appendPubKeyValue(info, cert, timestamp)
	info.CreateElement("SignatureVersion").SetText(string(cert.Version()))

	root.CreateElement("PartnerID").SetText(o.user.PartnerID)
	root.CreateElement("UserID").SetText(o.user.UserID)

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing signature order data: %w", err)
	}
	return data, nil
}

// BuildHIARequestOrderData serializes the E002 and X002 public keys
// together into the H004 HIARequestOrderData schema. Both keys travel
// in one document; the protocol never submits them separately.
func (o *OrderDataHandler) BuildHIARequestOrderData(encryption, authentication *keyring.Certificate, timestamp time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("HIARequestOrderData")
	root.CreateAttr("xmlns", NamespaceH004)
	root.CreateAttr("xmlns:ds", NamespaceXMLDSig)

	auth := root.CreateElement("AuthenticationPubKeyInfo")
	appendPubKeyValue(auth, authentication, timestamp)
	auth.CreateElement("AuthenticationVersion").SetText(string(authentication.Version()))

	enc := root.CreateElement("EncryptionPubKeyInfo")
	appendPubKeyValue(enc, encryption, timestamp)
	enc.CreateElement("EncryptionVersion").SetText(string(encryption.Version()))

	root.CreateElement("PartnerID").SetText(o.user.PartnerID)
	root.CreateElement("UserID").SetText(o.user.UserID)

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing HIA order data: %w", err)
	}
	return data, nil
}

func appendPubKeyValue(parent *etree.Element, cert *keyring.Certificate, timestamp time.Time) {
	value := parent.CreateElement("PubKeyValue")

	rsaKeyValue := value.CreateElement("ds:RSAKeyValue")
	rsaKeyValue.CreateElement("ds:Modulus").SetText(cert.Modulus())
	rsaKeyValue.CreateElement("ds:Exponent").SetText(cert.Exponent())

	value.CreateElement("TimeStamp").SetText(FormatTimestamp(timestamp))
}
