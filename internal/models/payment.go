package models

import (
	"encoding/json"
	"strings"
)

// TransactionState is the position of one payment in its lifecycle.
type TransactionState string

const (
	StateInitiated        TransactionState = "INITIATED"
	StateAwaitingGateway  TransactionState = "AWAITING_GATEWAY"
	StateSignatureValid   TransactionState = "SIGNATURE_VALID"
	StateSignatureInvalid TransactionState = "SIGNATURE_INVALID"
	StateMalformedResult  TransactionState = "MALFORMED_RESULT"
	StatePaymentSuccess   TransactionState = "PAYMENT_SUCCESS"
	StatePaymentFailed    TransactionState = "PAYMENT_FAILED"
)

// Channels is the payment channel selector. The gateway accepts either a
// single string ("ALL") or a list; one channel encodes as a string.
type Channels []string

// ParseChannels splits a comma separated list.
func ParseChannels(s string) Channels {
	var out Channels
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (c Channels) MarshalJSON() ([]byte, error) {
	switch len(c) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Channels) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*c = nil
			return nil
		}
		*c = Channels{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	if len(many) == 0 {
		*c = nil
		return nil
	}
	*c = Channels(many)
	return nil
}

// PaymentRequest is the outbound request sent to the payment gateway.
// Field order is the wire order.
type PaymentRequest struct {
	Version           string   `json:"version"`
	MerchantID        string   `json:"merchantID"`
	InvoiceNo         string   `json:"invoiceNo"`
	Description       string   `json:"description"`
	Amount            Amount   `json:"amount"`
	CurrencyCode      string   `json:"currencyCode"`
	PaymentChannel    Channels `json:"paymentChannel"`
	FrontendReturnURL string   `json:"frontendReturnUrl"`
	BackendReturnURL  string   `json:"backendReturnUrl"`
	UserDefined1      string   `json:"userDefined1"`
	UserDefined2      string   `json:"userDefined2"`
	UserDefined3      string   `json:"userDefined3"`
}

// PaymentResult is the verified payment-result callback from the gateway.
type PaymentResult struct {
	InvoiceNo          string     `json:"invoiceNo"`
	PaymentStatus      string     `json:"paymentStatus"`
	Amount             PaidAmount `json:"amount"`
	CurrencyCode       string     `json:"currencyCode"`
	PaymentChannelCode string     `json:"paymentChannelCode"`
	UserDefined1       string     `json:"userDefined1"`
	UserDefined2       string     `json:"userDefined2"`
	UserDefined3       string     `json:"userDefined3"`
}

// UnmarshalJSON reads paymentStatus and falls back to respCode, which newer
// gateway versions send instead.
func (r *PaymentResult) UnmarshalJSON(b []byte) error {
	type plain PaymentResult
	aux := struct {
		*plain
		RespCode    *string `json:"respCode"`
		ChannelCode *string `json:"channelCode"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.PaymentStatus == "" && aux.RespCode != nil {
		r.PaymentStatus = *aux.RespCode
	}
	if r.PaymentChannelCode == "" && aux.ChannelCode != nil {
		r.PaymentChannelCode = *aux.ChannelCode
	}
	return nil
}

// CustomerEmail returns the email carried through the gateway in userDefined1.
func (r *PaymentResult) CustomerEmail() string {
	if r.UserDefined1 == "" {
		return "unknown"
	}
	return r.UserDefined1
}
