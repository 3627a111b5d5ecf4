package medicalinfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ResourcePath is the REST route of the MedicalInfo resource.
const ResourcePath = "/api/MedicalInfo"

// TokenSource supplies bearer tokens for outgoing requests.
type TokenSource interface {
	Token() (string, error)
}

// RESTOption configures a RESTStore.
type RESTOption func(*RESTStore)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(s *RESTStore) { s.httpClient = c }
}

// WithTokenSource attaches an Authorization: Bearer header to every request.
func WithTokenSource(ts TokenSource) RESTOption {
	return func(s *RESTStore) { s.tokens = ts }
}

// RESTStore is a Store backed by the MedicalInfo REST resource.
type RESTStore struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

var _ Store = (*RESTStore)(nil)

// NewRESTStore creates a store talking to the server at baseURL.
func NewRESTStore(baseURL string, opts ...RESTOption) *RESTStore {
	s := &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RESTStore) List(ctx context.Context) ([]*Record, error) {
	var out []*Record
	if err := s.do(ctx, http.MethodGet, ResourcePath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RESTStore) Create(ctx context.Context, p *CreatePayload) error {
	return s.do(ctx, http.MethodPost, ResourcePath, p, nil)
}

func (s *RESTStore) Update(ctx context.Context, id string, p *UpdatePayload) error {
	return s.do(ctx, http.MethodPut, recordPath(id), p, nil)
}

func (s *RESTStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

func (s *RESTStore) Get(ctx context.Context, id string) (*Record, error) {
	var out Record
	if err := s.do(ctx, http.MethodGet, recordPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func recordPath(id string) string {
	return ResourcePath + "/" + url.PathEscape(id)
}

// do issues one request. A transport failure becomes a connectivity error,
// a 404 becomes RouteNotFound and any other non-2xx status becomes
// "<code> - <status text>".
func (s *RESTStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Other(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return Other(err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.tokens != nil {
		tok, err := s.tokens.Token()
		if err != nil {
			return Other(fmt.Sprintf("sign token: %v", err))
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ConnectivityError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return RouteNotFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return Other(fmt.Sprintf("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Other(fmt.Sprintf("decode response: %v", err))
	}
	return nil
}
