package envelope

import (
	"time"

	"github.com/beevik/etree"
)

// HeaderHandler writes the protocol header block of a request. Each
// bootstrap operation has its own header shape, so the handler exposes
// one method per operation rather than a generic path: field presence
// differs per operation and the schema is not a union.
//
// The handler is stateless per call; bank, user and product name are
// immutable configuration.
type HeaderHandler struct {
	bank    Bank
	user    User
	product string
}

// NewHeaderHandler creates a header handler for one bank/user pair.
func NewHeaderHandler(bank Bank, user User) *HeaderHandler {
	return &HeaderHandler{
		bank:    bank,
		user:    user,
		product: DefaultProduct,
	}
}

// AppendINIHeader writes the unsecured header for a signature-key
// submission (order type INI, attribute DZNNN).
func (h *HeaderHandler) AppendINIHeader(req *Request) {
	h.appendUnsecuredHeader(req, OrderTypeINI)
}

// AppendHIAHeader writes the unsecured header for an encryption and
// authentication key submission (order type HIA, attribute DZNNN).
func (h *HeaderHandler) AppendHIAHeader(req *Request) {
	h.appendUnsecuredHeader(req, OrderTypeHIA)
}

// AppendHPBHeader writes the secured header for a bank-key retrieval
// (order type HPB, attribute DZHNN). Nonce and timestamp are explicit
// inputs so the envelope is reproducible under test.
func (h *HeaderHandler) AppendHPBHeader(req *Request, nonce string, timestamp time.Time) {
	header := req.Root().CreateElement("header")
	header.CreateAttr("authenticate", "true")

	static := header.CreateElement("static")
	static.CreateElement("HostID").SetText(h.bank.HostID)
	static.CreateElement("Nonce").SetText(nonce)
	static.CreateElement("Timestamp").SetText(FormatTimestamp(timestamp))
	static.CreateElement("PartnerID").SetText(h.user.PartnerID)
	static.CreateElement("UserID").SetText(h.user.UserID)
	h.appendProduct(static)

	orderDetails := static.CreateElement("OrderDetails")
	orderDetails.CreateElement("OrderType").SetText(OrderTypeHPB)
	orderDetails.CreateElement("OrderAttribute").SetText(OrderAttributeDZHNN)

	static.CreateElement("SecurityMedium").SetText(SecurityMedium)

	header.CreateElement("mutable")
}

func (h *HeaderHandler) appendUnsecuredHeader(req *Request, orderType string) {
	header := req.Root().CreateElement("header")
	header.CreateAttr("authenticate", "true")

	static := header.CreateElement("static")
	static.CreateElement("HostID").SetText(h.bank.HostID)
	static.CreateElement("PartnerID").SetText(h.user.PartnerID)
	static.CreateElement("UserID").SetText(h.user.UserID)
	h.appendProduct(static)

	orderDetails := static.CreateElement("OrderDetails")
	orderDetails.CreateElement("OrderType").SetText(orderType)
	orderDetails.CreateElement("OrderAttribute").SetText(OrderAttributeDZNNN)

	static.CreateElement("SecurityMedium").SetText(SecurityMedium)

	header.CreateElement("mutable")
}

func (h *HeaderHandler) appendProduct(static *etree.Element) {
	product := static.CreateElement("Product")
	product.CreateAttr("Language", ProductLanguage)
	product.SetText(h.product)
}
