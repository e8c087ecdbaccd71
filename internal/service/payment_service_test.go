package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/payrelay/internal/codec"
	"github.com/GTDGit/payrelay/internal/config"
	"github.com/GTDGit/payrelay/internal/envelope"
	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/signature"
	"github.com/GTDGit/payrelay/internal/utils"
	"github.com/GTDGit/payrelay/pkg/gateway"
)

func paymentConfig(scheme signature.Scheme, format string) *config.Config {
	return &config.Config{
		Merchant: config.MerchantConfig{
			ID:                "JT01",
			SecretKey:         testSecret,
			Scheme:            scheme,
			CurrencyCode:      "764",
			FrontendReturnURL: "https://shop.example/return",
			BackendReturnURL:  "https://relay.example/api/payment-callback",
		},
		Gateway: config.GatewayConfig{
			PaymentURL:   "https://gw.example/pay",
			Version:      "8.5",
			Channels:     models.Channels{"ALL"},
			AmountFormat: format,
		},
	}
}

func newPaymentService(t *testing.T, cfg *config.Config, tokens TokenRequester) (*PaymentService, *envelope.Sealer) {
	t.Helper()
	s := sealer(t, cfg.Merchant.Scheme)
	gen, err := NewInvoiceGenerator("INV", 1)
	require.NoError(t, err)
	return NewPaymentService(cfg, s, gen, tokens), s
}

func TestStartPayment_HMACReturnsSealedRequest(t *testing.T) {
	svc, s := newPaymentService(t, paymentConfig(signature.SchemeHMAC, config.AmountFormatMinor), nil)

	resp, err := svc.StartPayment(context.Background(), &StartPaymentRequest{
		Amount:        "100.00",
		Description:   "Ticket",
		CustomerEmail: "a@b.com",
		Products:      json.RawMessage(`[ {"sku": "A1",  "qty": 2} ]`),
		BookingDate:   "2026-10-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/pay", resp.PaymentURL)
	assert.True(t, strings.HasPrefix(resp.InvoiceNo, "INV"))
	assert.NotEmpty(t, resp.Signature)
	assert.Empty(t, resp.PaymentToken)

	var pr models.PaymentRequest
	require.NoError(t, s.Open(envelope.Envelope{Payload: resp.Payload, Signature: resp.Signature}, &pr))
	assert.Equal(t, "JT01", pr.MerchantID)
	assert.Equal(t, resp.InvoiceNo, pr.InvoiceNo)
	assert.Equal(t, "Ticket", pr.Description)
	assert.Equal(t, int64(10000), pr.Amount.Minor())
	assert.Equal(t, "a@b.com", pr.UserDefined1)
	assert.Equal(t, `[{"sku":"A1","qty":2}]`, pr.UserDefined2)
	assert.Equal(t, "2026-10-20", pr.UserDefined3)

	obj, err := codec.DecodeObject(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"version", "merchantID", "invoiceNo", "description", "amount", "currencyCode",
		"paymentChannel", "frontendReturnUrl", "backendReturnUrl",
		"userDefined1", "userDefined2", "userDefined3",
	}, obj.Keys())
	assert.Equal(t, "10000", obj.String("amount"))
}

func TestStartPayment_DecimalAmountKeepsTwoDigits(t *testing.T) {
	svc, _ := newPaymentService(t, paymentConfig(signature.SchemeHMAC, config.AmountFormatDecimal), nil)

	resp, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: "100"})
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "paymentToken")

	obj, err := codec.DecodeObject(resp.Payload)
	require.NoError(t, err)
	amount, _ := obj.Get("amount")
	assert.Equal(t, json.Number("100.00"), amount)
	assert.Equal(t, "Online Purchase", obj.String("description"))
	assert.Equal(t, "no-email", obj.String("userDefined1"))
}

func TestStartPayment_InvalidAmount(t *testing.T) {
	svc, _ := newPaymentService(t, paymentConfig(signature.SchemeHMAC, config.AmountFormatMinor), nil)
	for _, amt := range []json.Number{"", "0", "-5", "1.005", "abc"} {
		_, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: amt})
		assert.ErrorIs(t, err, utils.ErrInvalidAmount, "amount %q", amt)
	}
}

func TestStartPayment_InvoiceNumbersDiffer(t *testing.T) {
	svc, _ := newPaymentService(t, paymentConfig(signature.SchemeHMAC, config.AmountFormatMinor), nil)
	a, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: "10"})
	require.NoError(t, err)
	b, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: "10"})
	require.NoError(t, err)
	assert.NotEqual(t, a.InvoiceNo, b.InvoiceNo)
}

// fakeGateway answers token requests with a response sealed by seal.
type fakeGateway struct {
	seal func(req string) (*gateway.TokenResponse, error)
	got  string
}

func (f *fakeGateway) RequestPaymentToken(_ context.Context, payload string) (*gateway.TokenResponse, error) {
	f.got = payload
	return f.seal(payload)
}

func TestStartPayment_TokenSchemeCallsGateway(t *testing.T) {
	cfg := paymentConfig(signature.SchemeToken, config.AmountFormatDecimal)
	gw := &fakeGateway{}
	svc, s := newPaymentService(t, cfg, gw)
	gw.seal = func(string) (*gateway.TokenResponse, error) {
		env, err := s.Seal(gateway.PaymentToken{
			WebPaymentURL: "https://gw.example/pay/abc",
			PaymentToken:  "tok-abc",
			RespCode:      "0000",
			RespDesc:      "Success",
		})
		return &gateway.TokenResponse{Payload: env.Payload}, err
	}

	resp, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: "100.00"})
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/pay/abc", resp.PaymentURL)
	assert.Equal(t, "tok-abc", resp.PaymentToken)
	assert.Empty(t, resp.Payload)

	var pr models.PaymentRequest
	require.NoError(t, s.Open(envelope.Envelope{Payload: gw.got}, &pr))
	assert.Equal(t, resp.InvoiceNo, pr.InvoiceNo)
}

func TestStartPayment_TokenSchemeGatewayFailures(t *testing.T) {
	cfg := paymentConfig(signature.SchemeToken, config.AmountFormatDecimal)
	forger, err := envelope.NewSealer(signature.SchemeToken, []byte("not-the-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		seal func(s *envelope.Sealer) (*gateway.TokenResponse, error)
	}{
		{"transport error", func(*envelope.Sealer) (*gateway.TokenResponse, error) {
			return nil, errors.New("connection reset")
		}},
		{"error body", func(*envelope.Sealer) (*gateway.TokenResponse, error) {
			return &gateway.TokenResponse{RespCode: "9042", RespDesc: "Invalid merchant"}, nil
		}},
		{"forged response", func(*envelope.Sealer) (*gateway.TokenResponse, error) {
			env, err := forger.Seal(gateway.PaymentToken{RespCode: "0000", WebPaymentURL: "https://evil.example"})
			return &gateway.TokenResponse{Payload: env.Payload}, err
		}},
		{"declined", func(s *envelope.Sealer) (*gateway.TokenResponse, error) {
			env, err := s.Seal(gateway.PaymentToken{RespCode: "4001", RespDesc: "Refer to issuer"})
			return &gateway.TokenResponse{Payload: env.Payload}, err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc, s := newPaymentService(t, cfg, gw)
			gw.seal = func(string) (*gateway.TokenResponse, error) { return tt.seal(s) }

			_, err := svc.StartPayment(context.Background(), &StartPaymentRequest{Amount: "100.00"})
			assert.ErrorIs(t, err, utils.ErrGateway)
			assert.NotErrorIs(t, err, utils.ErrSignature)
			assert.Equal(t, 502, utils.HTTPStatus(err))
		})
	}
}

func TestCompactProducts(t *testing.T) {
	s, err := compactProducts(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = compactProducts(json.RawMessage("null"))
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = compactProducts(json.RawMessage("{\n  \"a\": 1\n}"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)
}
