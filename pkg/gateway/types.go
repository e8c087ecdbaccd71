package gateway

// TokenRequest is the body posted to the payment-token endpoint. Payload is a
// signed token whose claims are the payment request.
type TokenRequest struct {
	Payload string `json:"payload"`
}

// TokenResponse is the raw payment-token response. A signed Payload is present
// on success; on some errors the gateway answers with only RespCode/RespDesc.
type TokenResponse struct {
	Payload  string `json:"payload,omitempty"`
	RespCode string `json:"respCode,omitempty"`
	RespDesc string `json:"respDesc,omitempty"`
}

// PaymentToken is the verified claim set inside TokenResponse.Payload.
type PaymentToken struct {
	WebPaymentURL string `json:"webPaymentUrl"`
	PaymentToken  string `json:"paymentToken"`
	RespCode      string `json:"respCode"`
	RespDesc      string `json:"respDesc"`
}
