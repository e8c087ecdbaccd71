package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// maxResponseSize is the maximum allowed response body size (1MB)
const maxResponseSize = 1 << 20

// Config holds payment gateway API configuration
type Config struct {
	TokenURL string
	Timeout  time.Duration
}

// Client is a minimal HTTP client for the payment gateway's token API.
type Client struct {
	httpClient *http.Client
	config     Config
	debug      bool
}

// NewClient constructs a new gateway client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		debug:      os.Getenv("ENV") == "development",
	}
}

// RequestPaymentToken posts a signed payment request and returns the raw
// response. The caller verifies resp.Payload before trusting any field in it.
func (c *Client) RequestPaymentToken(ctx context.Context, signedPayload string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.doRequest(ctx, TokenRequest{Payload: signedPayload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest performs the HTTP POST to the token endpoint with a JSON body and
// decodes the JSON response into result.
func (c *Client) doRequest(ctx context.Context, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", c.config.TokenURL).
			Int("payload_bytes", len(payload)).
			Msg("[GATEWAY] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Int("status_code", resp.StatusCode).
			Int("response_bytes", len(respBody)).
			Msg("[GATEWAY] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
