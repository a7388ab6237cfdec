package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"momo-telegram/config"
	"momo-telegram/models"

	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned without touching the network while the breaker is open.
var ErrUnavailable = errors.New("backend unavailable")

type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func New(cfg config.BackendConfig) *Client {
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// 4xx means the backend is up; only transport errors and 5xx count.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil
		},
	})
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		cb:      cb,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", path, err)
		}
		payload = b
	}

	out, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: truncate(string(data), 200)}
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnavailable)
	}
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var v T
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

// FetchMenu returns the raw GET /menu payload; decoding is left to the caller so it can be cached as-is.
func (c *Client) FetchMenu(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/menu", nil)
}

func (c *Client) PlaceOrder(ctx context.Context, order models.OrderRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/order", order)
	return err
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	return getJSON[[]models.Order](ctx, c, "/admin/orders")
}

func (c *Client) History(ctx context.Context) ([]models.Order, error) {
	return getJSON[[]models.Order](ctx, c, "/admin/history")
}

func (c *Client) ExportMenu(ctx context.Context) ([]models.MenuItem, error) {
	return getJSON[[]models.MenuItem](ctx, c, "/admin/export-menu")
}

// SaveMenu replaces the whole menu.
func (c *Client) SaveMenu(ctx context.Context, items []models.MenuItem) error {
	if items == nil {
		items = []models.MenuItem{}
	}
	_, err := c.do(ctx, http.MethodPost, "/admin/menu", items)
	return err
}

func (c *Client) ClearOrders(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/clear", nil)
	return err
}
