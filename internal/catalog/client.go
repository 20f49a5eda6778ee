// Package catalog is a read-only client for the Dattebayo catalog API.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meur/dattebayo/internal/models"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://dattebayo-api.onrender.com"

// Client fetches pages and single entities. It never retries: every failure
// is returned to the caller as-is.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage returns one page of a collection. A limit of 0 leaves the page
// size to the server.
func (c *Client) FetchPage(ctx context.Context, collection string, page, limit int) (Page, error) {
	adapt, ok := adapters[collection]
	if !ok {
		return Page{}, fmt.Errorf("fetch page: %w: %s", ErrUnknownCollection, collection)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := c.baseURL + "/" + collection + "?" + q.Encode()

	body, status, err := c.get(ctx, collection, "page", endpoint)
	if err != nil {
		return Page{}, err
	}
	if status < 200 || status > 299 {
		c.observe(collection, "page", "status")
		return Page{}, &NetworkError{Collection: collection, URL: endpoint, StatusCode: status}
	}

	p, err := adapt(collection, body)
	if err != nil {
		c.observe(collection, "page", "shape")
		return Page{}, err
	}
	c.observe(collection, "page", "ok")
	c.logger.Debug("fetched page",
		slog.String("collection", collection),
		slog.Int("page", page),
		slog.Int("items", len(p.Items)),
		slog.Int("total", p.Total))
	return p, nil
}

// FetchByID returns a single entity.
func (c *Client) FetchByID(ctx context.Context, collection string, id int) (models.Entity, error) {
	if _, ok := adapters[collection]; !ok {
		return models.Entity{}, fmt.Errorf("fetch by id: %w: %s", ErrUnknownCollection, collection)
	}
	endpoint := c.baseURL + "/" + collection + "/" + strconv.Itoa(id)

	body, status, err := c.get(ctx, collection, "id", endpoint)
	if err != nil {
		return models.Entity{}, err
	}
	if status == http.StatusNotFound {
		c.observe(collection, "id", "not_found")
		return models.Entity{}, &NotFoundError{Collection: collection, ID: id}
	}
	if status < 200 || status > 299 {
		c.observe(collection, "id", "status")
		return models.Entity{}, &NetworkError{Collection: collection, URL: endpoint, StatusCode: status}
	}
	if !gjson.ValidBytes(body) {
		c.observe(collection, "id", "shape")
		return models.Entity{}, &ShapeError{Collection: collection, Missing: "valid JSON"}
	}
	if !gjson.GetBytes(body, "id").Exists() {
		c.observe(collection, "id", "not_found")
		return models.Entity{}, &NotFoundError{Collection: collection, ID: id}
	}

	e, err := decodeEntity(collection, body)
	if err != nil {
		c.observe(collection, "id", "shape")
		return models.Entity{}, err
	}
	c.observe(collection, "id", "ok")
	return e, nil
}

// FetchAll walks pages from 1 until the collection is drained: either the
// accumulated length reaches the reported total or a page comes back empty.
func (c *Client) FetchAll(ctx context.Context, collection string, limit int) ([]models.Entity, error) {
	var all []models.Entity
	for page := 1; ; page++ {
		p, err := c.FetchPage(ctx, collection, page, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) == 0 || len(all) >= p.Total {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, collection, op, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &NetworkError{Collection: collection, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(collection, op, "transport")
		c.logger.Warn("catalog request failed",
			slog.String("url", endpoint),
			slog.String("error", err.Error()))
		return nil, 0, &NetworkError{Collection: collection, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(collection, op, "transport")
		return nil, 0, &NetworkError{Collection: collection, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if c.metrics != nil {
		c.metrics.duration.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	}
	return body, resp.StatusCode, nil
}

func (c *Client) observe(collection, op, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.requests.WithLabelValues(collection, op, outcome).Inc()
}
