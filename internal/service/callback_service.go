package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/payrelay/internal/envelope"
	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/utils"
	"github.com/GTDGit/payrelay/pkg/gateway"
)

// ReplayGuard claims an invoice before its paid event is dispatched.
type ReplayGuard interface {
	Acquire(ctx context.Context, invoiceNo string) (bool, error)
	Release(ctx context.Context, invoiceNo string) error
}

// CallbackOutcome describes where one callback ended up.
type CallbackOutcome struct {
	State     models.TransactionState
	InvoiceNo string
	Status    string
	Duplicate bool
	Dispatch  []DispatchResult
}

// CallbackService verifies payment-result callbacks from the gateway and
// forwards paid results downstream.
type CallbackService struct {
	sealer     *envelope.Sealer
	dispatcher Dispatcher
	guard      ReplayGuard
}

// NewCallbackService constructs a CallbackService. guard may be nil.
func NewCallbackService(sealer *envelope.Sealer, dispatcher Dispatcher, guard ReplayGuard) *CallbackService {
	return &CallbackService{
		sealer:     sealer,
		dispatcher: dispatcher,
		guard:      guard,
	}
}

// ProcessCallback verifies env and, for a paid result, dispatches it.
// An error is returned only when env is forged or malformed; dispatch
// failures are reported in the outcome and never as an error.
func (s *CallbackService) ProcessCallback(ctx context.Context, env envelope.Envelope) (*CallbackOutcome, error) {
	var result models.PaymentResult
	if err := s.sealer.Open(env, &result); err != nil {
		// Nothing from the payload is logged here; it is not trusted.
		state, reason := models.StateMalformedResult, "malformed"
		if errors.Is(err, utils.ErrSignature) {
			state, reason = models.StateSignatureInvalid, "signature"
		}
		log.Warn().Err(err).Str("reason", reason).Msg("payment callback rejected")
		return &CallbackOutcome{State: state}, err
	}

	out := &CallbackOutcome{
		State:     models.StateSignatureValid,
		InvoiceNo: result.InvoiceNo,
		Status:    result.PaymentStatus,
	}

	if !gateway.IsSuccess(result.PaymentStatus) {
		out.State = models.StatePaymentFailed
		msg := "payment not successful"
		if gateway.IsPending(result.PaymentStatus) {
			msg = "payment still pending, nothing dispatched"
		}
		log.Info().
			Str("invoice_no", result.InvoiceNo).
			Str("status", result.PaymentStatus).
			Str("status_desc", gateway.GetRCDescription(result.PaymentStatus)).
			Msg(msg)
		return out, nil
	}
	out.State = models.StatePaymentSuccess

	// The gateway may drop the connection once it has the ack; dispatch
	// must still run to completion.
	ctx = context.WithoutCancel(ctx)

	claimed := false
	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, result.InvoiceNo)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("invoice_no", result.InvoiceNo).Msg("replay guard unavailable, dispatching anyway")
		case !ok:
			out.Duplicate = true
			log.Info().Str("invoice_no", result.InvoiceNo).Msg("duplicate paid callback, dispatch skipped")
			return out, nil
		default:
			claimed = true
		}
	}

	log.Info().
		Str("invoice_no", result.InvoiceNo).
		Str("amount", result.Amount.String()).
		Str("currency", result.CurrencyCode).
		Msg("payment successful, dispatching")

	out.Dispatch = s.dispatcher.Dispatch(ctx, &result)

	if claimed && noneDelivered(out.Dispatch) {
		if err := s.guard.Release(ctx, result.InvoiceNo); err != nil {
			log.Warn().Err(err).Str("invoice_no", result.InvoiceNo).Msg("failed to release replay guard")
		}
	}
	return out, nil
}

// noneDelivered reports whether every attempted dispatch failed.
func noneDelivered(results []DispatchResult) bool {
	attempted := false
	for _, r := range results {
		if r.Skipped {
			continue
		}
		attempted = true
		if r.Err == nil {
			return false
		}
	}
	return attempted
}
