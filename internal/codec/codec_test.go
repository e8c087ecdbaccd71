package codec

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/utils"
)

func TestEncode_KeepsInsertionOrder(t *testing.T) {
	obj := Object{}.
		Set("zeta", "last-alphabetically").
		Set("amount", json.Number("100.00")).
		Set("alpha", nil).
		Set("url", "https://shop.example/return?a=1&b=2")

	b, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"last-alphabetically","amount":100.00,"alpha":null,"url":"https://shop.example/return?a=1&b=2"}`, string(b))

	payload, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(b), payload)
}

func TestObject_RoundTrip(t *testing.T) {
	cases := []Object{
		{},
		Object{}.Set("amount", json.Number("100.00")).Set("description", "Ticket").Set("customerEmail", "a@b.com"),
		Object{}.
			Set("invoiceNo", "INV1").
			Set("paid", true).
			Set("note", nil).
			Set("userDefined", Object{}.Set("b", "2").Set("a", "1")).
			Set("channels", []any{"CC", json.Number("3"), false}),
	}
	for _, x := range cases {
		payload, err := Encode(x)
		require.NoError(t, err)
		got, err := DecodeObject(payload)
		require.NoError(t, err)
		assert.Equal(t, x, got)
	}
}

func TestObject_SetLeavesReceiverUntouched(t *testing.T) {
	base := make(Object, 0, 4).Set("invoiceNo", "INV1")

	a := base.Set("amount", json.Number("1.00"))
	b := base.Set("amount", json.Number("2.00"))
	v, _ := a.Get("amount")
	assert.Equal(t, json.Number("1.00"), v)
	v, _ = b.Get("amount")
	assert.Equal(t, json.Number("2.00"), v)
	assert.Equal(t, []string{"invoiceNo"}, base.Keys())

	c := a.Set("invoiceNo", "INV2")
	assert.Equal(t, "INV1", a.String("invoiceNo"))
	assert.Equal(t, "INV2", c.String("invoiceNo"))
	assert.Equal(t, []string{"invoiceNo", "amount"}, c.Keys())
}

func TestStruct_RoundTrip(t *testing.T) {
	amount, err := models.NewAmount("100.00")
	require.NoError(t, err)

	for _, a := range []models.Amount{amount, amount.AsMinor()} {
		req := models.PaymentRequest{
			Version:           "8.5",
			MerchantID:        "JT01",
			InvoiceNo:         "INV1745000000001",
			Description:       "Ticket",
			Amount:            a,
			CurrencyCode:      "764",
			PaymentChannel:    models.Channels{"ALL"},
			FrontendReturnURL: "https://shop.example/done",
			BackendReturnURL:  "https://relay.example/api/payment-callback",
			UserDefined1:      "a@b.com",
			UserDefined2:      `{"sku":"T1","qty":2}`,
			UserDefined3:      "2026-10-17",
		}
		payload, err := Encode(req)
		require.NoError(t, err)

		var back models.PaymentRequest
		require.NoError(t, Decode(payload, &back))
		assert.Equal(t, req, back)
	}
}

func TestScenario_AmountPrecisionSurvives(t *testing.T) {
	obj := Object{}.
		Set("amount", json.Number("100.00")).
		Set("description", "Ticket").
		Set("customerEmail", "a@b.com")

	payload, err := Encode(obj)
	require.NoError(t, err)
	got, err := DecodeObject(payload)
	require.NoError(t, err)

	amount, _ := got.Get("amount")
	assert.Equal(t, json.Number("100.00"), amount)
	assert.Equal(t, "Ticket", got.String("description"))
}

func TestEncode_NonSerializable(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	selfObj := Object{{Key: "self"}}
	selfObj[0].Value = selfObj

	inputs := map[string]any{
		"channel":    map[string]any{"c": make(chan int)},
		"func":       Object{}.Set("f", func() {}),
		"cyclic map": cyclic,
		"cyclic obj": selfObj,
		"bad number": Object{}.Set("n", json.Number("1.2.3")),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(in)
			assert.ErrorIs(t, err, utils.ErrEncoding)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	inputs := map[string]string{
		"empty":       "",
		"not base64":  "%%%not-base64%%%",
		"bad padding": "eyJhIjoxfQ",
		"not json":    base64.StdEncoding.EncodeToString([]byte("not json")),
		"trailing":    base64.StdEncoding.EncodeToString([]byte(`{"a":1} x`)),
		"wrong type":  base64.StdEncoding.EncodeToString([]byte(`{"invoiceNo":5}`)),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			var out models.PaymentResult
			err := Decode(in, &out)
			assert.ErrorIs(t, err, utils.ErrDecode)
			assert.NotErrorIs(t, err, utils.ErrSignature)
		})
	}
}

func TestDecodeObject_RejectsNonObject(t *testing.T) {
	_, err := DecodeObject(base64.StdEncoding.EncodeToString([]byte(`[1,2]`)))
	assert.ErrorIs(t, err, utils.ErrDecode)
}
