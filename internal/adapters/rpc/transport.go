package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const (
	contentTypeJSON        = "application/json"
	connectProtocolVersion = "1"
	requestIDHeader        = "X-Request-Id"
	maxErrorBodyBytes      = 4096
)

// HTTPTransport speaks the Connect unary JSON protocol to the voting backend.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type TransportOption func(*HTTPTransport)

func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout. The client is
// copied first so a shared client keeps its own setting.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		client := *t.client
		client.Timeout = timeout
		t.client = &client
	}
}

func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *HTTPTransport) {
		t.logger = services.ResolveLogger(logger)
	}
}

func NewHTTPTransport(baseURL string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ ports.Transport = (*HTTPTransport)(nil)

func (t *HTTPTransport) Send(ctx context.Context, operation string, req any, resp any) error {
	body, err := encodeRequest(req)
	if err != nil {
		return &domain.TransportError{Operation: operation, Cause: fmt.Errorf("failed to encode request: %w", err)}
	}

	url := t.baseURL + ports.ProcedurePath(operation)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Operation: operation, Cause: err}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("Connect-Protocol-Version", connectProtocolVersion)
	httpReq.Header.Set(requestIDHeader, requestID)

	logger := t.logger.With("operation", operation, "request_id", requestID)
	logger.Debug("sending request", "url", url)

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return &domain.TransportError{Operation: operation, Cause: err}
	}
	defer httpResp.Body.Close()

	logger.Debug("response received", "status", httpResp.StatusCode)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBodyBytes))
		return &domain.TransportError{
			Operation: operation,
			Status:    httpResp.StatusCode,
			Body:      strings.TrimSpace(string(raw)),
		}
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return &domain.TransportError{Operation: operation, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// encodeRequest always yields a JSON object. Nil requests become {}.
func encodeRequest(req any) ([]byte, error) {
	if req == nil {
		return []byte("{}"), nil
	}
	if v := reflect.ValueOf(req); v.Kind() == reflect.Pointer && v.IsNil() {
		return []byte("{}"), nil
	}
	return json.Marshal(req)
}
