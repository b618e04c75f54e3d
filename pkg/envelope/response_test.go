package envelope

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyManagementResponse(technicalCode, report, businessCode string) []byte {
	business := ""
	if businessCode != "" {
		business = "<ReturnCode>" + businessCode + "</ReturnCode>"
	}
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ebicsKeyManagementResponse xmlns="urn:org:ebics:H004" Version="H004" Revision="1">
  <header authenticate="true">
    <static/>
    <mutable>
      <ReturnCode>%s</ReturnCode>
      <ReportText>%s</ReportText>
    </mutable>
  </header>
  <body>%s</body>
</ebicsKeyManagementResponse>`, technicalCode, report, business))
}

func TestParseResponse_Accepted(t *testing.T) {
	resp, err := ParseResponse(keyManagementResponse("000000", "[EBICS_OK] OK", ""))
	require.NoError(t, err)

	assert.Equal(t, "ebicsKeyManagementResponse", resp.Name())
	assert.Equal(t, "000000", resp.TechnicalCode)
	assert.Equal(t, "[EBICS_OK] OK", resp.TechnicalReport)
	assert.True(t, resp.TechnicalOK())
	assert.True(t, resp.BusinessOK())
	assert.Empty(t, resp.OrderData)
}

func TestParseResponse_Rejected(t *testing.T) {
	resp, err := ParseResponse(keyManagementResponse("091002", "[EBICS_INVALID_USER_STATE] user locked", ""))
	require.NoError(t, err)

	assert.False(t, resp.TechnicalOK())
	assert.Equal(t, "091002", resp.TechnicalCode)
	assert.Equal(t, "[EBICS_INVALID_USER_STATE] user locked", resp.TechnicalReport)
}

func TestParseResponse_BusinessRejected(t *testing.T) {
	resp, err := ParseResponse(keyManagementResponse("000000", "[EBICS_OK] OK", "090003"))
	require.NoError(t, err)

	assert.True(t, resp.TechnicalOK())
	assert.False(t, resp.BusinessOK())
	assert.Equal(t, "090003", resp.BusinessCode)
}

func TestParseResponse_OrderData(t *testing.T) {
	orderData := []byte{0x01, 0x02, 0x03, 0x04}
	transactionKey := []byte{0xAA, 0xBB, 0xCC}
	body := []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ebicsKeyManagementResponse xmlns="urn:org:ebics:H004" Version="H004" Revision="1">
  <header authenticate="true">
    <static/>
    <mutable>
      <ReturnCode>000000</ReturnCode>
      <ReportText>[EBICS_OK] OK</ReportText>
    </mutable>
  </header>
  <body>
    <DataTransfer>
      <DataEncryptionInfo authenticate="true">
        <EncryptionPubKeyDigest Version="E002" Algorithm="http://www.w3.org/2001/04/xmlenc#sha256">DIGEST</EncryptionPubKeyDigest>
        <TransactionKey>%s</TransactionKey>
      </DataEncryptionInfo>
      <OrderData>%s</OrderData>
    </DataTransfer>
  </body>
</ebicsKeyManagementResponse>`,
		base64.StdEncoding.EncodeToString(transactionKey),
		base64.StdEncoding.EncodeToString(orderData)))

	resp, err := ParseResponse(body)
	require.NoError(t, err)

	assert.Equal(t, orderData, resp.OrderData)
	assert.Equal(t, transactionKey, resp.TransactionKey)
	assert.Equal(t, "DIGEST", resp.EncryptionPubKeyDigest)
}

func TestParseResponse_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"not XML", []byte("HTTP 500 backend unavailable")},
		{"missing return code", []byte(`<?xml version="1.0"?><ebicsKeyManagementResponse><header><mutable/></header></ebicsKeyManagementResponse>`)},
		{"bad order data base64", []byte(`<?xml version="1.0"?><ebicsKeyManagementResponse><header><mutable><ReturnCode>000000</ReturnCode></mutable></header><body><DataTransfer><OrderData>!!not-base64!!</OrderData></DataTransfer></body></ebicsKeyManagementResponse>`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse(tc.body)
			assert.Error(t, err)
		})
	}
}

func hpbOrderData(t *testing.T, prefixed bool) ([]byte, string, string) {
	t.Helper()

	enc := testCertificate(t, "E002")
	auth := testCertificate(t, "X002")

	keyValue := func(modulus, exponent string) string {
		if prefixed {
			return "<ds:RSAKeyValue><ds:Modulus>" + modulus + "</ds:Modulus><ds:Exponent>" + exponent + "</ds:Exponent></ds:RSAKeyValue>"
		}
		return "<RSAKeyValue><Modulus>" + modulus + "</Modulus><Exponent>" + exponent + "</Exponent></RSAKeyValue>"
	}

	data := []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<HPBResponseOrderData xmlns="urn:org:ebics:H004" xmlns:ds="http://www.w3.org/2000/09/xmldsig#">
  <AuthenticationPubKeyInfo>
    <PubKeyValue>%s</PubKeyValue>
    <AuthenticationVersion>X002</AuthenticationVersion>
  </AuthenticationPubKeyInfo>
  <EncryptionPubKeyInfo>
    <PubKeyValue>%s</PubKeyValue>
    <EncryptionVersion>E002</EncryptionVersion>
  </EncryptionPubKeyInfo>
  <HostID>%s</HostID>
</HPBResponseOrderData>`,
		keyValue(auth.Modulus(), auth.Exponent()),
		keyValue(enc.Modulus(), enc.Exponent()),
		testBank.HostID))

	return data, enc.Modulus(), auth.Modulus()
}

func TestParseHPBOrderData(t *testing.T) {
	for _, prefixed := range []bool{true, false} {
		name := "unprefixed key values"
		if prefixed {
			name = "ds-prefixed key values"
		}
		t.Run(name, func(t *testing.T) {
			data, encModulus, authModulus := hpbOrderData(t, prefixed)

			enc, auth, err := ParseHPBOrderData(data)
			require.NoError(t, err)

			assert.Equal(t, "E002", string(enc.Version()))
			assert.Equal(t, "X002", string(auth.Version()))
			assert.Equal(t, encModulus, enc.Modulus())
			assert.Equal(t, authModulus, auth.Modulus())
			assert.Equal(t, "AQAB", enc.Exponent())

			// bank certificates are public-only
			assert.Nil(t, enc.PrivateKey())
			assert.Nil(t, auth.PrivateKey())
		})
	}
}

func TestParseHPBOrderData_Malformed(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"not XML", []byte("garbage")},
		{"missing encryption key", []byte(`<?xml version="1.0"?><HPBResponseOrderData><AuthenticationPubKeyInfo><PubKeyValue><RSAKeyValue><Modulus>AAAA</Modulus><Exponent>AQAB</Exponent></RSAKeyValue></PubKeyValue></AuthenticationPubKeyInfo></HPBResponseOrderData>`)},
		{"missing key value", []byte(`<?xml version="1.0"?><HPBResponseOrderData><EncryptionPubKeyInfo><PubKeyValue/></EncryptionPubKeyInfo><AuthenticationPubKeyInfo><PubKeyValue/></AuthenticationPubKeyInfo></HPBResponseOrderData>`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseHPBOrderData(tc.data)
			assert.Error(t, err)
		})
	}
}
