// Package rest is the request/response side of the broker contract: the two
// one-shot startup reads and the order submit/cancel commands.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danapple/openbroker/internal/domain"
)

// StatusBusinessReject is the status the server uses for vetting rejections
// on order submission; the body carries the reject reason. Anything else
// non-2xx is a plain failure.
const StatusBusinessReject = http.StatusPreconditionFailed

// ResultFunc receives the outcome of a command: the HTTP status and the raw
// response body (JSON when the server sent any). err is non-nil only for
// transport-level failures, in which case status is zero.
type ResultFunc func(status int, body json.RawMessage, err error)

// Client talks to the broker's REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a REST client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Instruments performs the one-shot GET /instruments read. Consumed once at
// startup before any push subscription begins.
func (c *Client) Instruments(ctx context.Context) (map[string]domain.Instrument, error) {
	var instruments map[string]domain.Instrument
	if err := c.getJSON(ctx, "/instruments", &instruments); err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}
	return instruments, nil
}

// Accounts performs the one-shot GET /accounts read.
func (c *Client) Accounts(ctx context.Context) (map[string]domain.Account, error) {
	var accounts map[string]domain.Account
	if err := c.getJSON(ctx, "/accounts", &accounts); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

// SubmitOrder posts a new order for the account. Fire-and-forget: the
// callback reports only the request outcome; the order's state updates
// arrive later on the push channel like any other update.
func (c *Client) SubmitOrder(ctx context.Context, accountKey string, req domain.NewOrderRequest, result ResultFunc) {
	body, err := json.Marshal(req)
	if err != nil {
		result(0, nil, fmt.Errorf("failed to encode order: %w", err))
		return
	}
	go c.command(ctx, http.MethodPost, ordersPath(accountKey, ""), body, result)
}

// CancelOrder requests cancellation of an order by its external id. The
// eventual Canceled (or still-Filled) state arrives on the push channel.
func (c *Client) CancelOrder(ctx context.Context, accountKey, extOrderID string, result ResultFunc) {
	go c.command(ctx, http.MethodDelete, ordersPath(accountKey, extOrderID), nil, result)
}

func ordersPath(accountKey, extOrderID string) string {
	path := "/accounts/" + accountKey + "/orders"
	if extOrderID != "" {
		path += "/" + extOrderID
	}
	return path
}

// command runs one write request and funnels the outcome to the callback.
func (c *Client) command(ctx context.Context, method, path string, body []byte, result ResultFunc) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		result(0, nil, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result(0, nil, err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		result(0, nil, fmt.Errorf("failed to read response: %w", err))
		return
	}
	slog.Debug("command complete", "method", method, "path", path, "status", resp.StatusCode)
	result(resp.StatusCode, respBody, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
