package envelope

import (
	"fmt"

	"github.com/beevik/etree"
)

// Request is a well-formed EBICS XML document under construction. It is
// a plain owned XML tree; the header, body and signature handlers
// populate it, and it is discarded once the HTTP exchange completes.
type Request struct {
	doc *etree.Document
}

// NewUnsecuredRequest creates an ebicsUnsecuredRequest envelope, the
// variant used for the two key-submission operations (INI, HIA) that
// need no prior key material.
func NewUnsecuredRequest() *Request {
	return newRequest("ebicsUnsecuredRequest")
}

// NewNoPubKeyDigestsRequest creates an ebicsNoPubKeyDigestsRequest
// envelope, used for bank-key retrieval (HPB) before the client holds
// bank keys to digest against.
func NewNoPubKeyDigestsRequest() *Request {
	return newRequest("ebicsNoPubKeyDigestsRequest")
}

func newRequest(rootName string) *Request {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement(rootName)
	root.CreateAttr("xmlns", NamespaceH004)
	root.CreateAttr("xmlns:ds", NamespaceXMLDSig)
	root.CreateAttr("Version", ProtocolVersion)
	root.CreateAttr("Revision", ProtocolRevision)

	return &Request{doc: doc}
}

// Document exposes the underlying XML tree to the handlers.
func (r *Request) Document() *etree.Document {
	return r.doc
}

// Root returns the envelope's root element.
func (r *Request) Root() *etree.Element {
	return r.doc.Root()
}

// Bytes serializes the envelope for transmission.
func (r *Request) Bytes() ([]byte, error) {
	data, err := r.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing request: %w", err)
	}
	return data, nil
}
