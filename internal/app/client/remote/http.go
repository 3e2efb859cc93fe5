package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

const userAgent = "Helpdesk-Client/1.0"

type HTTPOptions struct {
	BaseURL string
	Token   string
	// WriteRate limits writes per second. Zero disables the limit.
	WriteRate  float64
	WriteBurst int
	Timeout    time.Duration
}

// HTTPClient is the Store served by cmd/server.
type HTTPClient struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	token   string
	limiter *rate.Limiter
}

var _ Store = (*HTTPClient)(nil)

func NewHTTPClient(opts HTTPOptions, log *slog.Logger) *HTTPClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.WriteRate > 0 {
		limit = rate.Limit(opts.WriteRate)
	}
	burst := opts.WriteBurst
	if burst <= 0 {
		burst = 1
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:     log.With("component", "remote"),
		baseURL: opts.BaseURL,
		token:   opts.Token,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// HealthCheck reports whether the server answers its health endpoint.
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	resp, err := h.do(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) Upsert(ctx context.Context, collection, id string, doc Document) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := h.do(ctx, http.MethodPut, documentPath(collection, id), doc)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) Get(ctx context.Context, collection, id string) (Document, error) {
	resp, err := h.do(ctx, http.MethodGet, documentPath(collection, id), nil)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := h.parseResponse(resp, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (h *HTTPClient) Update(ctx context.Context, collection, id string, fields Document) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := h.do(ctx, http.MethodPatch, documentPath(collection, id), fields)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) AppendToArrayField(ctx context.Context, collection, id, field string, element any) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	body := struct {
		Element any `json:"element"`
	}{Element: element}

	resp, err := h.do(ctx, http.MethodPost, documentPath(collection, id)+"/arrays/"+url.PathEscape(field), body)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func documentPath(collection, id string) string {
	return "/api/v1/documents/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (h *HTTPClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	h.log.Debug("got response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= 400 {
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		msg := ""
		if err := json.Unmarshal(body, &problem); err == nil {
			msg = problem.Detail
			if msg == "" {
				msg = problem.Title
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
