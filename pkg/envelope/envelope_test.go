package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-ebics/pkg/compression"
	"github.com/sirosfoundation/go-ebics/pkg/keyring"
)

var (
	testBank = Bank{HostID: "EBIXHOST", URL: "https://bank.example.com/ebicsweb"}
	testUser = User{PartnerID: "PARTNER1", UserID: "USER1"}
	testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
)

func testCertificate(t *testing.T, version keyring.Version) *keyring.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return keyring.NewCertificate(version, &key.PublicKey, key)
}

func parseRequest(t *testing.T, req *Request) *etree.Document {
	t.Helper()
	data, err := req.Bytes()
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	return doc
}

func TestNewUnsecuredRequest_Envelope(t *testing.T) {
	req := NewUnsecuredRequest()

	root := req.Root()
	assert.Equal(t, "ebicsUnsecuredRequest", root.Tag)
	assert.Equal(t, NamespaceH004, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "H004", root.SelectAttrValue("Version", ""))
	assert.Equal(t, "1", root.SelectAttrValue("Revision", ""))
}

func TestHeaderHandler_INI(t *testing.T) {
	handler := NewHeaderHandler(testBank, testUser)
	req := NewUnsecuredRequest()
	handler.AppendINIHeader(req)

	doc := parseRequest(t, req)
	header := doc.FindElement("//header")
	require.NotNil(t, header)
	assert.Equal(t, "true", header.SelectAttrValue("authenticate", ""))

	static := header.FindElement("./static")
	require.NotNil(t, static)
	assert.Equal(t, "EBIXHOST", static.FindElement("./HostID").Text())
	assert.Equal(t, "PARTNER1", static.FindElement("./PartnerID").Text())
	assert.Equal(t, "USER1", static.FindElement("./UserID").Text())
	assert.Equal(t, OrderTypeINI, static.FindElement("./OrderDetails/OrderType").Text())
	assert.Equal(t, OrderAttributeDZNNN, static.FindElement("./OrderDetails/OrderAttribute").Text())
	assert.Equal(t, SecurityMedium, static.FindElement("./SecurityMedium").Text())

	// unsecured headers carry no nonce or timestamp
	assert.Nil(t, static.FindElement("./Nonce"))
	assert.Nil(t, static.FindElement("./Timestamp"))

	require.NotNil(t, header.FindElement("./mutable"))
}

func TestHeaderHandler_HIA(t *testing.T) {
	handler := NewHeaderHandler(testBank, testUser)
	req := NewUnsecuredRequest()
	handler.AppendHIAHeader(req)

	doc := parseRequest(t, req)
	assert.Equal(t, OrderTypeHIA, doc.FindElement("//OrderType").Text())
	assert.Equal(t, OrderAttributeDZNNN, doc.FindElement("//OrderAttribute").Text())
}

func TestHeaderHandler_HPB(t *testing.T) {
	handler := NewHeaderHandler(testBank, testUser)
	req := NewNoPubKeyDigestsRequest()
	handler.AppendHPBHeader(req, "0F0E0D0C0B0A09080706050403020100", testTime)

	doc := parseRequest(t, req)
	assert.Equal(t, "ebicsNoPubKeyDigestsRequest", doc.Root().Tag)

	static := doc.FindElement("//header/static")
	require.NotNil(t, static)
	assert.Equal(t, "0F0E0D0C0B0A09080706050403020100", static.FindElement("./Nonce").Text())
	assert.Equal(t, "2026-03-14T09:26:53Z", static.FindElement("./Timestamp").Text())
	assert.Equal(t, OrderTypeHPB, static.FindElement("./OrderDetails/OrderType").Text())
	assert.Equal(t, OrderAttributeDZHNN, static.FindElement("./OrderDetails/OrderAttribute").Text())
}

func TestBodyHandler_OrderDataDoubleEncoding(t *testing.T) {
	handler := NewBodyHandler()
	req := NewUnsecuredRequest()

	orderData := []byte(`<SignaturePubKeyOrderData>inner</SignaturePubKeyOrderData>`)
	require.NoError(t, handler.AppendOrderDataBody(req, orderData))

	doc := parseRequest(t, req)
	encoded := doc.FindElement("//body/DataTransfer/OrderData")
	require.NotNil(t, encoded)

	compressed, err := base64.StdEncoding.DecodeString(encoded.Text())
	require.NoError(t, err)

	decompressed, err := compression.NewCompressor().Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, orderData, decompressed)
}

func TestBodyHandler_EmptyBody(t *testing.T) {
	handler := NewBodyHandler()
	req := NewNoPubKeyDigestsRequest()
	handler.AppendEmptyBody(req)

	doc := parseRequest(t, req)
	body := doc.FindElement("//body")
	require.NotNil(t, body)
	assert.Empty(t, body.ChildElements())
}

func TestGenerateNonce(t *testing.T) {
	first, err := GenerateNonce()
	require.NoError(t, err)
	second, err := GenerateNonce()
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
	assert.Regexp(t, "^[0-9A-F]{32}$", first)
}
