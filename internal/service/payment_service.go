package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/payrelay/internal/config"
	"github.com/GTDGit/payrelay/internal/envelope"
	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/utils"
	"github.com/GTDGit/payrelay/pkg/gateway"
)

const (
	defaultDescription   = "Online Purchase"
	defaultCustomerEmail = "no-email"
)

// StartPaymentRequest is the storefront checkout request.
type StartPaymentRequest struct {
	Amount        json.Number     `json:"amount"`
	Description   string          `json:"description"`
	CustomerEmail string          `json:"customerEmail"`
	Products      json.RawMessage `json:"products,omitempty"`
	BookingDate   string          `json:"bookingDate,omitempty"`
}

// StartPaymentResponse is returned to the storefront. Payload and Signature
// are set when the storefront forwards the request to the gateway itself;
// PaymentToken is set when the gateway was called directly.
type StartPaymentResponse struct {
	PaymentURL   string `json:"paymentURL"`
	Payload      string `json:"payload,omitempty"`
	Signature    string `json:"signature,omitempty"`
	PaymentToken string `json:"paymentToken,omitempty"`
	InvoiceNo    string `json:"invoiceNo"`
}

// TokenRequester obtains a payment token from the gateway.
type TokenRequester interface {
	RequestPaymentToken(ctx context.Context, signedPayload string) (*gateway.TokenResponse, error)
}

// PaymentService builds and seals payment requests for the gateway.
type PaymentService struct {
	merchant config.MerchantConfig
	gw       config.GatewayConfig
	sealer   *envelope.Sealer
	invoices *InvoiceGenerator
	tokens   TokenRequester
}

// NewPaymentService constructs a PaymentService. tokens may be nil, in which
// case the sealed request is handed back to the storefront.
func NewPaymentService(cfg *config.Config, sealer *envelope.Sealer, invoices *InvoiceGenerator, tokens TokenRequester) *PaymentService {
	return &PaymentService{
		merchant: cfg.Merchant,
		gw:       cfg.Gateway,
		sealer:   sealer,
		invoices: invoices,
		tokens:   tokens,
	}
}

// BuildRequest maps a storefront request to a gateway payment request with a
// fresh invoice number.
func (s *PaymentService) BuildRequest(req *StartPaymentRequest) (*models.PaymentRequest, error) {
	amount, err := models.NewAmount(req.Amount.String())
	if err != nil {
		return nil, err
	}
	if s.gw.AmountFormat == config.AmountFormatMinor {
		amount = amount.AsMinor()
	} else {
		amount = amount.AsDecimal()
	}

	products, err := compactProducts(req.Products)
	if err != nil {
		return nil, err
	}

	return &models.PaymentRequest{
		Version:           s.gw.Version,
		MerchantID:        s.merchant.ID,
		InvoiceNo:         s.invoices.Next(),
		Description:       orDefault(req.Description, defaultDescription),
		Amount:            amount,
		CurrencyCode:      s.merchant.CurrencyCode,
		PaymentChannel:    s.gw.Channels,
		FrontendReturnURL: s.merchant.FrontendReturnURL,
		BackendReturnURL:  s.merchant.BackendReturnURL,
		UserDefined1:      orDefault(req.CustomerEmail, defaultCustomerEmail),
		UserDefined2:      products,
		UserDefined3:      req.BookingDate,
	}, nil
}

// StartPayment builds, seals and, when a token requester is configured,
// submits a payment request.
func (s *PaymentService) StartPayment(ctx context.Context, req *StartPaymentRequest) (*StartPaymentResponse, error) {
	pr, err := s.BuildRequest(req)
	if err != nil {
		return nil, err
	}

	env, err := s.sealer.Seal(pr)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_no", pr.InvoiceNo).
		Str("amount", pr.Amount.String()).
		Str("state", string(models.StateInitiated)).
		Msg("payment request sealed")

	if s.tokens == nil {
		return &StartPaymentResponse{
			PaymentURL: s.gw.PaymentURL,
			Payload:    env.Payload,
			Signature:  env.Signature,
			InvoiceNo:  pr.InvoiceNo,
		}, nil
	}

	tok, err := s.requestToken(ctx, env)
	if err != nil {
		log.Error().Err(err).Str("invoice_no", pr.InvoiceNo).Msg("payment token request failed")
		return nil, err
	}

	log.Info().
		Str("invoice_no", pr.InvoiceNo).
		Str("state", string(models.StateAwaitingGateway)).
		Msg("payment token issued")

	return &StartPaymentResponse{
		PaymentURL:   tok.WebPaymentURL,
		PaymentToken: tok.PaymentToken,
		InvoiceNo:    pr.InvoiceNo,
	}, nil
}

// requestToken submits env to the gateway and verifies its signed answer.
func (s *PaymentService) requestToken(ctx context.Context, env envelope.Envelope) (*gateway.PaymentToken, error) {
	resp, err := s.tokens.RequestPaymentToken(ctx, env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, err)
	}
	if resp.Payload == "" {
		return nil, fmt.Errorf("%w: respCode=%s %s", utils.ErrGateway, resp.RespCode, resp.RespDesc)
	}

	var tok gateway.PaymentToken
	if err := s.sealer.Open(envelope.Envelope{Payload: resp.Payload}, &tok); err != nil {
		// A bad gateway answer is the gateway's fault, not the caller's.
		return nil, fmt.Errorf("%w: response rejected: %v", utils.ErrGateway, err)
	}
	if !gateway.IsSuccess(tok.RespCode) {
		return nil, fmt.Errorf("%w: respCode=%s %s", utils.ErrGateway, tok.RespCode, tok.RespDesc)
	}
	return &tok, nil
}

// compactProducts serializes the optional product bundle onto one line.
func compactProducts(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("%w: products: %v", utils.ErrDecode, err)
	}
	return buf.String(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
