// Package explorer is the client side of the SBS API: a typed HTTP client, a
// volume cache, result assembly and the search session driving them.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/pkg/id"
	"github.com/kart-io/sbs-x/pkg/utils/json"
)

// DefaultBaseURL is where a locally started sbs-api serves the SBS routes.
const DefaultBaseURL = "http://localhost:8088/api/sbs"

// HeaderClientID identifies one client process across requests.
const HeaderClientID = "X-Client-ID"

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx API response.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sbs api: %d %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("sbs api: %d %s", e.Status, e.Message)
}

// Unwrap maps 404 responses to ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

func (e *APIError) retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// VolumeFetcher fetches full volumes.
type VolumeFetcher interface {
	Volume(ctx context.Context, volume int) (*model.Volume, error)
}

// API is the part of the REST contract a Session needs.
type API interface {
	VolumeFetcher
	Search(ctx context.Context, term string, typ model.SearchType) ([]model.MatchResult, error)
}

// Client talks to the SBS REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	clientID string
	attempts uint
	delay    time.Duration
}

var _ API = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets how often a GET is attempted and the base delay between attempts.
func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// WithClientID overrides the generated client id.
func WithClientID(clientID string) ClientOption {
	return func(c *Client) { c.clientID = clientID }
}

// NewClient creates a client for the API rooted at baseURL, e.g. DefaultBaseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		clientID: id.NewUUID(),
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientID returns the id sent with every request.
func (c *Client) ClientID() string {
	return c.clientID
}

// Volumes lists every volume, ascending.
func (c *Client) Volumes(ctx context.Context) ([]model.VolumeSummary, error) {
	var out []model.VolumeSummary
	if err := c.get(ctx, "/volumes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Volume fetches one full volume.
func (c *Client) Volume(ctx context.Context, volume int) (*model.Volume, error) {
	var out model.Volume
	if err := c.get(ctx, "/volumes/"+strconv.Itoa(volume), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VolumeTags fetches the annotations of one volume.
func (c *Client) VolumeTags(ctx context.Context, volume int) (*model.VolumeTags, error) {
	var out model.VolumeTags
	if err := c.get(ctx, "/volumes/"+strconv.Itoa(volume)+"/tags", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a typ search for term.
func (c *Client) Search(ctx context.Context, term string, typ model.SearchType) ([]model.MatchResult, error) {
	out := []model.MatchResult{}
	if err := c.get(ctx, "/search/"+string(typ)+"/"+url.PathEscape(term), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tags lists every distinct tag.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/tags", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Characters lists every distinct character.
func (c *Client) Characters(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/characters", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get issues a GET, retrying transport failures and 5xx responses.
func (c *Client) get(ctx context.Context, path string, out any) error {
	target := c.baseURL + path

	return retry.Do(
		func() error {
			return c.do(ctx, target, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.retryable()
			}
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Debugw("Retrying SBS API request", "url", target, "attempt", n+1, "error", err.Error())
		}),
	)
}

func (c *Client) do(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderClientID, c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode %s: %w", target, err))
	}
	return nil
}
