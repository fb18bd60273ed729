package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vmunix/vidfmt/pkg/sites"
)

const mappingsPath = "/api/v1/mappings"

// envelope is the document store's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RemoteStore talks to a document store exposing GET and POST on /api/v1/mappings.
type RemoteStore struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// NewRemoteStore creates a remote store client. A non-positive reqPerSec uses 2.
func NewRemoteStore(baseURL, apiKey string, timeout time.Duration, reqPerSec float64) *RemoteStore {
	if reqPerSec <= 0 {
		reqPerSec = 2
	}
	return &RemoteStore{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(reqPerSec), 5),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Load fetches the remote mappings.
func (s *RemoteStore) Load(ctx context.Context) (map[string]string, error) {
	env, err := s.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return map[string]string{}, nil
	}

	m, err := sites.DecodeMappings(env.Data)
	if err != nil {
		return nil, fmt.Errorf("remote load: %w", err)
	}
	return m, nil
}

// Save replaces the remote mappings with a flat JSON object.
func (s *RemoteStore) Save(ctx context.Context, mappings map[string]string) error {
	if mappings == nil {
		mappings = map[string]string{}
	}
	body, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("remote save: %w", err)
	}
	_, err = s.do(ctx, http.MethodPost, body)
	return err
}

func (s *RemoteStore) do(ctx context.Context, method string, body []byte) (*envelope, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+mappingsPath, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, mappingsPath, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRejected, resp.StatusCode, env.Message)
	case decodeErr != nil:
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, decodeErr)
	case !env.Success:
		return nil, fmt.Errorf("%w: %s", ErrRejected, env.Message)
	}
	return &env, nil
}
