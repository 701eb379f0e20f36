// Package httpclient es el cliente JSON que usa la CLI para hablar con otra
// instancia del API (vetsheet push).
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "vetsheet-cli"

	maxBody = 1 << 20
)

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	// Retries extra ante errores de red o 502/503/504.
	Retries int
	Backoff time.Duration

	log logger.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTP.Timeout = d
		}
	}
}

// WithTransport permite inyectar un Transport (p.ej. para tests).
func WithTransport(tr http.RoundTripper) Option {
	return func(c *Client) { c.HTTP.Transport = tr }
}

func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) { c.Retries, c.Backoff = n, backoff }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New valida baseURL (vacío = sólo URLs absolutas).
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		HTTP:      &http.Client{Timeout: DefaultTimeout},
		UserAgent: DefaultUserAgent,
		Backoff:   200 * time.Millisecond,
		log:       logger.NewNop(),
	}
	if b := strings.TrimSpace(baseURL); b != "" {
		u, err := url.ParseRequestURI(b)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid base url %q", baseURL)
		}
		c.BaseURL = strings.TrimRight(b, "/")
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// StatusCode devuelve el status de un *HTTPError envuelto, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// DoJSON envía in como JSON (si no es nil) y decodifica la respuesta en out
// (si no es nil). Un status no-2xx es *HTTPError.
func (c *Client) DoJSON(ctx context.Context, method, pathOrURL string, headers map[string]string, in, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(pathOrURL)
	if err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
	}

	var raw []byte
	for attempt := 0; ; attempt++ {
		raw, err = c.once(ctx, method, fullURL, headers, payload)
		if err == nil || attempt >= c.Retries || !retryable(err) {
			break
		}
		c.log.Warn("httpclient.retry", map[string]any{"url": fullURL, "attempt": attempt + 1, "error": err})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Backoff * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}

func (c *Client) once(ctx context.Context, method, fullURL string, headers map[string]string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch StatusCode(err) {
	case 0:
		return true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL, nil
	}
	if c.BaseURL == "" {
		return "", errors.New("httpclient: relative path requires BaseURL")
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.BaseURL + pathOrURL, nil
}
