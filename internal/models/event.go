package models

// OrderEvent is the document posted to the order-ingestion endpoint.
type OrderEvent struct {
	OrderRef      string     `json:"orderRef"`
	Email         string     `json:"email"`
	Amount        PaidAmount `json:"amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
}

// TicketEvent is the document posted to the ticketing webhook.
type TicketEvent struct {
	OrderID  string `json:"orderId"`
	Customer string `json:"customer"`
	Issue    string `json:"issue"`
}

// NewOrderEvent maps a paid result to the order document.
func NewOrderEvent(r *PaymentResult) OrderEvent {
	return OrderEvent{
		OrderRef:      r.InvoiceNo,
		Email:         r.CustomerEmail(),
		Amount:        r.Amount,
		Currency:      r.CurrencyCode,
		PaymentMethod: r.PaymentChannelCode,
		Status:        "Paid",
	}
}

// NewTicketEvent maps a paid result to the ticket document.
func NewTicketEvent(r *PaymentResult) TicketEvent {
	return TicketEvent{
		OrderID:  r.InvoiceNo,
		Customer: r.CustomerEmail(),
		Issue:    "New paid order",
	}
}
