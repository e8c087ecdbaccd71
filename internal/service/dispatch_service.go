package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/payrelay/internal/config"
	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/utils"
)

// Downstream collaborators.
const (
	TargetOrder  = "order"
	TargetTicket = "ticket"
)

// DispatchResult records the outcome of forwarding one event to one collaborator.
type DispatchResult struct {
	Target     string
	Attempts   int
	StatusCode int
	Skipped    bool
	Err        error
}

// Dispatcher forwards a paid result to downstream collaborators.
type Dispatcher interface {
	Dispatch(ctx context.Context, result *models.PaymentResult) []DispatchResult
}

// DispatchService posts order and ticket documents to their configured URLs.
// Each collaborator is retried on its own; one failing never stops the other.
type DispatchService struct {
	orderURL  string
	ticketURL string
	client    *resty.Client
}

// NewDispatchService constructs a DispatchService from config.
func NewDispatchService(cfg *config.DispatchConfig) *DispatchService {
	client := resty.New().
		SetLogger(restyLogger{}).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.Backoff).
		SetRetryMaxWaitTime(4 * cfg.Backoff).
		AddRetryCondition(shouldRetry)

	return &DispatchService{
		orderURL:  cfg.OrderURL,
		ticketURL: cfg.TicketURL,
		client:    client,
	}
}

// shouldRetry retries transport errors, 429 and 5xx. Other 4xx are final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Dispatch sends both documents concurrently and returns one result per
// collaborator, order first. It never returns early on failure.
func (s *DispatchService) Dispatch(ctx context.Context, result *models.PaymentResult) []DispatchResult {
	results := make([]DispatchResult, 2)

	var g errgroup.Group
	g.Go(func() error {
		results[0] = s.post(ctx, TargetOrder, s.orderURL, models.NewOrderEvent(result))
		return nil
	})
	g.Go(func() error {
		results[1] = s.post(ctx, TargetTicket, s.ticketURL, models.NewTicketEvent(result))
		return nil
	})
	_ = g.Wait()

	return results
}

func (s *DispatchService) post(ctx context.Context, target, url string, body any) DispatchResult {
	res := DispatchResult{Target: target}
	if url == "" {
		res.Skipped = true
		return res
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if resp != nil {
		res.StatusCode = resp.StatusCode()
		if resp.Request != nil {
			res.Attempts = resp.Request.Attempt
		}
	}

	switch {
	case err != nil:
		res.Err = fmt.Errorf("%w: %s: %v", utils.ErrDownstreamDispatch, target, err)
	case resp.IsError():
		res.Err = fmt.Errorf("%w: %s: HTTP %d", utils.ErrDownstreamDispatch, target, res.StatusCode)
	}

	if res.Err != nil {
		log.Error().Err(res.Err).
			Str("target", target).
			Int("attempts", res.Attempts).
			Msg("downstream dispatch failed")
	} else {
		log.Info().
			Str("target", target).
			Int("status", res.StatusCode).
			Int("attempts", res.Attempts).
			Msg("downstream dispatch delivered")
	}
	return res
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { log.Error().Msgf("[DISPATCH] "+format, v...) }
func (restyLogger) Warnf(format string, v ...interface{}) { log.Warn().Msgf("[DISPATCH] "+format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { log.Debug().Msgf("[DISPATCH] "+format, v...) }
