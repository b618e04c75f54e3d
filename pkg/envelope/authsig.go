package envelope

import (
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-ebics/pkg/crypto"
)

// XML-DSig algorithm identifiers used by the authentication signature.
const (
	algorithmC14N      = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	algorithmRSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	algorithmSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"
	authenticatedXPath = "#xpointer(//*[@authenticate='true'])"
)

// AuthSignatureHandler computes the authentication signature of a
// request and inserts it as the AuthSignature element of the envelope.
//
// The signature covers every element carrying authenticate="true": each
// is canonicalized, the concatenation is digested, and the digest goes
// into a ds:SignedInfo whose canonical form is then RSA-SHA256 signed
// with the user's X002 key. The two key-submission operations are
// unsigned by protocol definition; only bank-key retrieval uses this.
type AuthSignatureHandler struct {
	service *crypto.Service
}

// NewAuthSignatureHandler creates a handler bound to a crypto service.
func NewAuthSignatureHandler(service *crypto.Service) *AuthSignatureHandler {
	return &AuthSignatureHandler{service: service}
}

// Sign computes the signature over the assembled request and inserts
// the AuthSignature element between header and body. Any failure here
// aborts the operation before a network call is made; a request that
// the protocol expects signed must never leave unsigned.
func (h *AuthSignatureHandler) Sign(req *Request) error {
	digest, err := h.digestAuthenticated(req)
	if err != nil {
		return err
	}

	signedInfo := buildSignedInfo(digest)

	canonical, err := h.canonicalizeStandalone(signedInfo)
	if err != nil {
		return err
	}

	signature, err := h.service.Sign(h.service.Digest(canonical))
	if err != nil {
		return err
	}

	authSig := etree.NewElement("AuthSignature")
	authSig.AddChild(signedInfo)
	authSig.CreateElement("ds:SignatureValue").SetText(base64.StdEncoding.EncodeToString(signature))

	root := req.Root()
	if body := root.FindElement("./body"); body != nil {
		root.InsertChildAt(body.Index(), authSig)
	} else {
		root.AddChild(authSig)
	}

	return nil
}

// digestAuthenticated canonicalizes every element flagged
// authenticate="true" and digests their concatenation.
func (h *AuthSignatureHandler) digestAuthenticated(req *Request) ([]byte, error) {
	elements := req.Document().FindElements("//*[@authenticate='true']")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no authenticated elements in request")
	}

	var canonical []byte
	for _, el := range elements {
		data, err := h.canonicalizeStandalone(el)
		if err != nil {
			return nil, err
		}
		canonical = append(canonical, data...)
	}

	return h.service.Digest(canonical), nil
}

// canonicalizeStandalone serializes a subtree with the envelope's
// namespace declarations pulled down onto it, then canonicalizes. The
// declarations would otherwise be lost when the subtree leaves its
// document context.
func (h *AuthSignatureHandler) canonicalizeStandalone(el *etree.Element) ([]byte, error) {
	standalone := el.Copy()
	if standalone.SelectAttr("xmlns") == nil {
		standalone.CreateAttr("xmlns", NamespaceH004)
	}
	if standalone.SelectAttr("xmlns:ds") == nil {
		standalone.CreateAttr("xmlns:ds", NamespaceXMLDSig)
	}

	doc := etree.NewDocument()
	doc.SetRoot(standalone)
	serialized, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing subtree: %w", err)
	}

	return h.service.Canonicalize(serialized)
}

func buildSignedInfo(digest []byte) *etree.Element {
	signedInfo := etree.NewElement("ds:SignedInfo")

	c14n := signedInfo.CreateElement("ds:CanonicalizationMethod")
	c14n.CreateAttr("Algorithm", algorithmC14N)

	sigMethod := signedInfo.CreateElement("ds:SignatureMethod")
	sigMethod.CreateAttr("Algorithm", algorithmRSASHA256)

	ref := signedInfo.CreateElement("ds:Reference")
	ref.CreateAttr("URI", authenticatedXPath)

	transforms := ref.CreateElement("ds:Transforms")
	transform := transforms.CreateElement("ds:Transform")
	transform.CreateAttr("Algorithm", algorithmC14N)

	digestMethod := ref.CreateElement("ds:DigestMethod")
	digestMethod.CreateAttr("Algorithm", algorithmSHA256)

	ref.CreateElement("ds:DigestValue").SetText(base64.StdEncoding.EncodeToString(digest))

	return signedInfo
}
