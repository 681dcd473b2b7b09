// Package client is a Go client for the Wampin API plus the browse-side
// logic the web frontend runs on top of it: secondary filtering and
// sorting, curated collections and debounced search.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/pkg/httpclient"
	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
)

// HTTPDoer executes requests. httpclient.Client and httpclient.BreakerClient
// both satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to a Wampin API server.
type Client struct {
	baseURL string
	http    HTTPDoer
	token   string
	logger  *slog.Logger
}

// New creates a Client for baseURL, e.g. "http://localhost:5000".
func New(baseURL string, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// NewResilient creates a Client whose GETs are retried with backoff and
// whose calls go through a circuit breaker. metrics may be nil.
func NewResilient(baseURL string, metrics *httpclient.BreakerMetrics, logger *slog.Logger) *Client {
	base := httpclient.New(httpclient.DefaultConfig())
	breaker := httpclient.NewBreakerClient(base, httpclient.DefaultBreakerConfig("wampin-api"), metrics, logger)
	return New(baseURL, breaker, logger)
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type envelope struct {
	Success    bool                 `json:"success"`
	Data       json.RawMessage      `json:"data"`
	Message    string               `json:"message"`
	Pagination *httputil.Pagination `json:"pagination"`
}

// call sends a request and decodes the envelope. Non-2xx responses are
// returned as *httpclient.APIError.
func (c *Client) call(ctx context.Context, method, path string, body any) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := httpclient.NewRequest(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return &env, nil
}

func decodeInto[T any](env *envelope) (T, error) {
	var v T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decode data: %w", err)
	}
	return v, nil
}

// DiscoveryValues encodes q as GET /api/restaurants query parameters.
func DiscoveryValues(q domain.DiscoveryQuery) url.Values {
	v := url.Values{}
	if q.HasLocation() {
		v.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(*q.Lng, 'f', -1, 64))
		if q.MaxDistanceMeters > 0 && q.MaxDistanceMeters != domain.DefaultMaxDistanceMeters {
			v.Set("maxDistance", strconv.FormatFloat(q.MaxDistanceMeters, 'f', -1, 64))
		}
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Verified {
		v.Set("verified", "true")
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// Discover runs a discovery query.
func (c *Client) Discover(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	path := "/api/restaurants"
	if enc := DiscoveryValues(q).Encode(); enc != "" {
		path += "?" + enc
	}
	env, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[[]domain.Restaurant](env)
}

// Get fetches one restaurant by id or slug.
func (c *Client) Get(ctx context.Context, idOrSlug string) (*domain.Restaurant, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/restaurants/"+url.PathEscape(idOrSlug), nil)
	if err != nil {
		return nil, err
	}
	r, err := decodeInto[domain.Restaurant](env)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Register submits a new listing.
func (c *Client) Register(ctx context.Context, in service.CreateRestaurantInput) (*domain.Restaurant, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/restaurants", in)
	if err != nil {
		return nil, err
	}
	r, err := decodeInto[domain.Restaurant](env)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SubmitReview posts a review.
func (c *Client) SubmitReview(ctx context.Context, in service.SubmitReviewInput) (*domain.Review, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/reviews", in)
	if err != nil {
		return nil, err
	}
	rv, err := decodeInto[domain.Review](env)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// ReviewPage is one page of a restaurant's reviews.
type ReviewPage struct {
	Reviews    []domain.Review
	Pagination httputil.Pagination
}

// ListReviews fetches a page of reviews, newest first. Zero page or limit
// use the server defaults.
func (c *Client) ListReviews(ctx context.Context, restaurantID string, page, limit int) (*ReviewPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/reviews/" + url.PathEscape(restaurantID)
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}

	env, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	reviews, err := decodeInto[[]domain.Review](env)
	if err != nil {
		return nil, err
	}
	out := &ReviewPage{Reviews: reviews}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return out, nil
}

// SuggestTags returns tag suggestions for a partial query.
func (c *Client) SuggestTags(ctx context.Context, q string) ([]string, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/tags/suggest?q="+url.QueryEscape(q), nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[[]string](env)
}

// SeedResult is the outcome of a seed request.
type SeedResult struct {
	Seeded      bool
	Message     string
	Restaurants []domain.Restaurant
}

// Seed asks the server to load the sample catalogue. A refusal because data
// already exists is not an error.
func (c *Client) Seed(ctx context.Context) (*SeedResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/restaurants/seed", nil)
	if err != nil {
		return nil, err
	}
	rs, err := decodeInto[[]domain.Restaurant](env)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "seed response",
		slog.Bool("seeded", env.Success),
		slog.String("message", env.Message),
	)
	return &SeedResult{Seeded: env.Success, Message: env.Message, Restaurants: rs}, nil
}
