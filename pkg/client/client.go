// Package client orchestrates the EBICS bootstrap operations: INI, HIA and HPB
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-ebics/pkg/crypto"
	"github.com/sirosfoundation/go-ebics/pkg/envelope"
	"github.com/sirosfoundation/go-ebics/pkg/keyring"
	"github.com/sirosfoundation/go-ebics/pkg/transport"
)

// Transport posts an assembled envelope and returns the raw reply body.
// The production implementation is transport.Client; tests substitute a
// synthetic bank.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Config holds client construction parameters
type Config struct {
	Bank    envelope.Bank
	User    envelope.User
	KeyRing *keyring.KeyRing

	// Transport defaults to transport.NewClient(nil)
	Transport Transport
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Client sequences the bootstrap operations against one bank. It owns
// immutable references to its stateless handler components, constructed
// once; the only mutable collaborator is the key ring, which is updated
// strictly after a parsed, technically accepted response.
//
// A Client must not be used concurrently: each operation reads the
// ring's current certificates and later mutates them.
type Client struct {
	bank      envelope.Bank
	user      envelope.User
	ring      *keyring.KeyRing
	factory   *crypto.CertificateFactory
	service   *crypto.Service
	header    *envelope.HeaderHandler
	body      *envelope.BodyHandler
	orderData *envelope.OrderDataHandler
	authSig   *envelope.AuthSignatureHandler
	transport Transport
	logger    *slog.Logger
}

// New creates a bootstrap client
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Bank.HostID == "" || cfg.Bank.URL == "" {
		return nil, fmt.Errorf("bank host ID and URL are required")
	}
	if cfg.User.PartnerID == "" || cfg.User.UserID == "" {
		return nil, fmt.Errorf("partner ID and user ID are required")
	}
	if cfg.KeyRing == nil {
		return nil, fmt.Errorf("key ring is required")
	}

	tr := cfg.Transport
	if tr == nil {
		tr = transport.NewClient(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	service := crypto.NewService(cfg.KeyRing)

	return &Client{
		bank:      cfg.Bank,
		user:      cfg.User,
		ring:      cfg.KeyRing,
		factory:   crypto.NewCertificateFactory(),
		service:   service,
		header:    envelope.NewHeaderHandler(cfg.Bank, cfg.User),
		body:      envelope.NewBodyHandler(),
		orderData: envelope.NewOrderDataHandler(cfg.User),
		authSig:   envelope.NewAuthSignatureHandler(service),
		transport: tr,
		logger:    logger,
	}, nil
}

// State returns the current bootstrap state derived from the key ring.
func (c *Client) State() State {
	return StateOf(c.ring)
}

// Option adjusts a single operation invocation.
type Option func(*operationOptions)

type operationOptions struct {
	timestamp time.Time
	nonce     string
}

// WithTimestamp fixes the operation timestamp instead of using the
// current time. Timestamps are pure inputs so envelopes are
// reproducible under test.
func WithTimestamp(t time.Time) Option {
	return func(o *operationOptions) {
		o.timestamp = t
	}
}

// WithNonce fixes the header nonce of a secured request (HPB).
func WithNonce(nonce string) Option {
	return func(o *operationOptions) {
		o.nonce = nonce
	}
}

func resolveOptions(opts []Option) operationOptions {
	options := operationOptions{timestamp: time.Now()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// SubmitSignatureKey runs order type INI: it generates a fresh A006
// signature key pair, submits the public half in an unsecured envelope,
// and on technical acceptance stores the certificate into the ring.
func (c *Client) SubmitSignatureKey(ctx context.Context, opts ...Option) (*envelope.Response, error) {
	options := resolveOptions(opts)

	if c.ring.UserSignature() != nil {
		return nil, &StateError{Operation: envelope.OrderTypeINI, State: c.State()}
	}

	cert, err := c.factory.GenerateSignatureCertificate()
	if err != nil {
		return nil, err
	}

	orderData, err := c.orderData.BuildSignaturePubKeyOrderData(cert, options.timestamp)
	if err != nil {
		return nil, err
	}

	req := envelope.NewUnsecuredRequest()
	c.header.AppendINIHeader(req)
	if err := c.body.AppendOrderDataBody(req, orderData); err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, envelope.OrderTypeINI, req)
	if err != nil {
		return resp, err
	}

	c.ring.SetUserSignature(cert)
	return resp, nil
}

// SubmitEncryptionAuthKeys runs order type HIA: it generates fresh E002
// and X002 key pairs, submits both public halves in one unsecured
// envelope, and on technical acceptance stores both certificates. The
// two slots are populated together, never partially.
func (c *Client) SubmitEncryptionAuthKeys(ctx context.Context, opts ...Option) (*envelope.Response, error) {
	options := resolveOptions(opts)

	if c.ring.UserEncryption() != nil || c.ring.UserAuthentication() != nil {
		return nil, &StateError{Operation: envelope.OrderTypeHIA, State: c.State()}
	}

	encryption, err := c.factory.GenerateEncryptionCertificate()
	if err != nil {
		return nil, err
	}
	authentication, err := c.factory.GenerateAuthenticationCertificate()
	if err != nil {
		return nil, err
	}

	orderData, err := c.orderData.BuildHIARequestOrderData(encryption, authentication, options.timestamp)
	if err != nil {
		return nil, err
	}

	req := envelope.NewUnsecuredRequest()
	c.header.AppendHIAHeader(req)
	if err := c.body.AppendOrderDataBody(req, orderData); err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, envelope.OrderTypeHIA, req)
	if err != nil {
		return resp, err
	}

	c.ring.SetUserEncryption(encryption)
	c.ring.SetUserAuthentication(authentication)
	return resp, nil
}

// RetrieveBankKeys runs order type HPB: it posts a signed
// no-public-key-digest envelope and extracts the bank's encryption and
// authentication public certificates from the decrypted response order
// data. Requires the user's X002 private key; absent that, it fails
// before any network call.
func (c *Client) RetrieveBankKeys(ctx context.Context, opts ...Option) (*envelope.Response, error) {
	options := resolveOptions(opts)

	auth := c.ring.UserAuthentication()
	if auth == nil || !auth.HasPrivateKey() {
		return nil, &crypto.CryptoError{
			Kind: crypto.KeyAbsent,
			Op:   "retrieve bank keys",
			Err:  fmt.Errorf("authentication private key not in ring"),
		}
	}

	nonce := options.nonce
	if nonce == "" {
		var err error
		if nonce, err = envelope.GenerateNonce(); err != nil {
			return nil, err
		}
	}

	req := envelope.NewNoPubKeyDigestsRequest()
	c.header.AppendHPBHeader(req, nonce, options.timestamp)
	c.body.AppendEmptyBody(req)
	if err := c.authSig.Sign(req); err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, envelope.OrderTypeHPB, req)
	if err != nil {
		return resp, err
	}

	if len(resp.TransactionKey) == 0 || len(resp.OrderData) == 0 {
		return resp, &ProtocolError{Kind: MalformedResponse, Err: fmt.Errorf("HPB response carries no order data")}
	}

	orderData, err := c.service.DecryptOrderData(resp.TransactionKey, resp.OrderData)
	if err != nil {
		return resp, err
	}

	bankEncryption, bankAuthentication, err := envelope.ParseHPBOrderData(orderData)
	if err != nil {
		return resp, &ProtocolError{Kind: MalformedResponse, Err: err}
	}

	c.ring.SetBankKeys(bankEncryption, bankAuthentication)
	return resp, nil
}

// exchange serializes the request, posts it, parses the reply, and
// checks the return codes. The parsed response is returned alongside a
// rejection error, so callers always see what the bank said.
func (c *Client) exchange(ctx context.Context, orderType string, req *envelope.Request) (*envelope.Response, error) {
	body, err := req.Bytes()
	if err != nil {
		return nil, err
	}

	correlationID := uuid.New().String()
	c.logger.Info("posting request",
		"orderType", orderType,
		"host", c.bank.HostID,
		"correlationId", correlationID,
	)

	raw, err := c.transport.Post(ctx, c.bank.URL, body)
	if err != nil {
		return nil, err
	}

	resp, err := envelope.ParseResponse(raw)
	if err != nil {
		return nil, &ProtocolError{Kind: MalformedResponse, Err: err}
	}

	if !resp.TechnicalOK() {
		c.logger.Warn("bank rejected request",
			"orderType", orderType,
			"returnCode", resp.TechnicalCode,
			"correlationId", correlationID,
		)
		return resp, &ProtocolError{Kind: BankRejected, Code: resp.TechnicalCode, Report: resp.TechnicalReport}
	}
	if !resp.BusinessOK() {
		c.logger.Warn("bank rejected order",
			"orderType", orderType,
			"returnCode", resp.BusinessCode,
			"correlationId", correlationID,
		)
		return resp, &ProtocolError{Kind: BankRejected, Code: resp.BusinessCode, Report: resp.TechnicalReport}
	}

	c.logger.Info("request accepted",
		"orderType", orderType,
		"correlationId", correlationID,
	)
	return resp, nil
}
