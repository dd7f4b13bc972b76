package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/pkg/version"
)

// ProviderVercel is the manifest provider name of the real blob store
const ProviderVercel = "vercel-blob"

const listPageLimit = 1000

// VercelStore talks to the Vercel Blob REST API
type VercelStore struct {
	httpClient *http.Client
	apiURL     string
	apiVersion string
	token      string
	retrier    *Retrier
}

// VercelOptions contains options for creating a VercelStore
type VercelOptions struct {
	APIURL     string
	APIVersion string
	Token      string
	Timeout    time.Duration
	Retrier    RetrierOptions
	HTTPClient *http.Client
}

// NewVercelStore creates a blob store client for the Vercel Blob API
func NewVercelStore(opts VercelOptions) *VercelStore {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &VercelStore{
		httpClient: client,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		apiVersion: opts.APIVersion,
		token:      opts.Token,
		retrier:    NewRetrier(opts.Retrier),
	}
}

// Name returns the provider name
func (s *VercelStore) Name() string {
	return ProviderVercel
}

// putResponse is the body returned by a successful upload
type putResponse struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// listResponse is one page of a listing
type listResponse struct {
	Blobs   []domain.Object `json:"blobs"`
	Cursor  string          `json:"cursor"`
	HasMore bool            `json:"hasMore"`
}

// errorResponse is the error envelope of the API
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Put uploads body under key
func (s *VercelStore) Put(ctx context.Context, key string, body []byte, opts domain.PutOptions) (*domain.Object, error) {
	return RetryWithValue(ctx, s.retrier, func() (*domain.Object, error) {
		return s.put(ctx, key, body, opts)
	})
}

func (s *VercelStore) put(ctx context.Context, key string, body []byte, opts domain.PutOptions) (*domain.Object, error) {
	// the API only serves public objects
	if opts.Access != "" && opts.Access != domain.AccessPublic {
		return nil, domain.NewStoreError(ProviderVercel, "put", key, 0, fmt.Errorf("unsupported access %q", opts.Access))
	}

	endpoint := s.apiURL + "/?" + url.Values{"pathname": {key}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	if opts.ContentType != "" {
		req.Header.Set("x-content-type", opts.ContentType)
	}
	if maxAge, ok := cacheMaxAge(opts.CacheControl); ok {
		req.Header.Set("x-cache-control-max-age", strconv.Itoa(maxAge))
	}
	req.Header.Set("x-add-random-suffix", "0")
	if opts.AllowOverwrite {
		req.Header.Set("x-allow-overwrite", "1")
	} else {
		req.Header.Set("x-allow-overwrite", "0")
	}

	payload, err := s.do(req, "put", key)
	if err != nil {
		return nil, err
	}

	var out putResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, domain.NewStoreError(ProviderVercel, "put", key, 0, fmt.Errorf("decode response: %w", err))
	}
	if out.URL == "" {
		return nil, domain.NewStoreError(ProviderVercel, "put", key, 0, errors.New("response has no url"))
	}
	if out.Pathname == "" {
		out.Pathname = key
	}
	return &domain.Object{Key: out.Pathname, URL: out.URL}, nil
}

// List returns every object whose key starts with prefix, following cursors
func (s *VercelStore) List(ctx context.Context, prefix string) ([]domain.Object, error) {
	var objects []domain.Object
	cursor := ""
	for {
		page, err := RetryWithValue(ctx, s.retrier, func() (*listResponse, error) {
			return s.listPage(ctx, prefix, cursor)
		})
		if err != nil {
			return nil, err
		}
		objects = append(objects, page.Blobs...)
		if !page.HasMore || page.Cursor == "" {
			return objects, nil
		}
		cursor = page.Cursor
	}
}

func (s *VercelStore) listPage(ctx context.Context, prefix, cursor string) (*listResponse, error) {
	query := url.Values{
		"prefix": {prefix},
		"limit":  {strconv.Itoa(listPageLimit)},
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	payload, err := s.do(req, "list", prefix)
	if err != nil {
		return nil, err
	}

	var out listResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, domain.NewStoreError(ProviderVercel, "list", prefix, 0, fmt.Errorf("decode response: %w", err))
	}
	return &out, nil
}

func (s *VercelStore) setHeaders(req *http.Request) {
	req.Header.Set("authorization", "Bearer "+s.token)
	req.Header.Set("user-agent", version.UserAgent())
	if s.apiVersion != "" {
		req.Header.Set("x-api-version", s.apiVersion)
	}
}

// do performs the request and classifies failures
func (s *VercelStore) do(req *http.Request, op, key string) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, domain.NewStoreError(ProviderVercel, op, key, 0, fmt.Errorf("%w: %v", domain.ErrTimeout, err))
		}
		return nil, &domain.RetryableError{Err: domain.NewStoreError(ProviderVercel, op, key, 0, err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		cause := errors.New(apiMessage(payload, resp.Status))
		if resp.StatusCode == http.StatusTooManyRequests {
			cause = fmt.Errorf("%w: %v", domain.ErrRateLimited, cause)
		}
		storeErr := domain.NewStoreError(ProviderVercel, op, key, resp.StatusCode, cause)
		if ShouldRetryStatus(resp.StatusCode) || resp.StatusCode >= 500 {
			return nil, &domain.RetryableError{
				Err:        storeErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return nil, storeErr
	}

	return payload, nil
}

// apiMessage extracts the error message from an API error body
func apiMessage(payload []byte, fallback string) string {
	var env errorResponse
	if err := json.Unmarshal(payload, &env); err == nil && env.Error.Message != "" {
		if env.Error.Code != "" {
			return env.Error.Code + ": " + env.Error.Message
		}
		return env.Error.Message
	}
	return fallback
}

// cacheMaxAge extracts max-age seconds from a Cache-Control value
func cacheMaxAge(cacheControl string) (int, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return 0, false
		}
		return seconds, true
	}
	return 0, false
}
