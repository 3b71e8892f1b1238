package storyapiimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	"github.com/orgball2608/story-explorer/pkg/config"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

const (
	defaultUserAgent = "story-explorer/1.0"
	maxErrorBody     = 64 << 10
)

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	logger    logger.Logger
	userAgent string
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	// Transport, when provided, carries every API request. The app wires
	// the network interceptor here.
	Transport http.RoundTripper `name:"storyapi" optional:"true"`
}

func New(opts Opts) (*Client, error) {
	if opts.Transport != nil {
		return NewClientWithTransport(opts.Config.API.BaseURL, opts.Config.API.Timeout, opts.Transport, opts.Logger)
	}
	return NewClient(opts.Config.API.BaseURL, opts.Config.API.Timeout, opts.Logger)
}

// NewClient builds a Client for the API rooted at baseURL. Requests go
// directly to the network through an instrumented transport.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	return NewClientWithTransport(baseURL, timeout, http.DefaultTransport, log)
}

// NewClientWithTransport is NewClient with requests sent through rt.
func NewClientWithTransport(baseURL string, timeout time.Duration, rt http.RoundTripper, log logger.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(rt),
		},
		logger:    log.WithComponent("StoryAPI"),
		userAgent: defaultUserAgent,
	}, nil
}

var _ storyapi.Client = (*Client)(nil)

type storyDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
}

type envelope struct {
	Error     bool       `json:"error"`
	Message   string     `json:"message"`
	ListStory []storyDTO `json:"listStory"`
}

func (c *Client) FetchStories(ctx context.Context, token string, location int) ([]domain.Story, error) {
	values := url.Values{}
	values.Set("location", strconv.Itoa(location))
	req, err := c.newRequest(ctx, http.MethodGet, "stories", values, token, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var payload envelope
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	stories := make([]domain.Story, 0, len(payload.ListStory))
	for _, s := range payload.ListStory {
		story := domain.Story{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			PhotoURL:    s.PhotoURL,
			CreatedAt:   s.CreatedAt,
		}
		if s.Lat != nil {
			story.Lat = *s.Lat
		}
		if s.Lon != nil {
			story.Lon = *s.Lon
		}
		stories = append(stories, story)
	}

	c.logger.Debug("Stories fetched", "count", len(stories))
	return stories, nil
}

func (c *Client) SubmitStory(ctx context.Context, submission storyapi.Submission) error {
	req, err := c.newRequest(ctx, http.MethodPost, "stories", nil, submission.Token, bytes.NewReader(submission.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", submission.ContentType)
	req.Header.Set("Accept", "application/json")
	if submission.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", submission.IdempotencyKey)
	}

	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, token string, body io.Reader) (*http.Request, error) {
	rel := &url.URL{Path: path}
	if query != nil {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NetworkFailure(err, fmt.Sprintf("%s %s", req.Method, req.URL.Path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rejection(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func rejection(resp *http.Response) error {
	rr := &apperrors.RemoteRejection{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return rr
	}
	var payload envelope
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		rr.Message = payload.Message
	}
	return rr
}

// parseBaseURL keeps the path so relative endpoints resolve under it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
