// Package wikimedia implements the reference encyclopedia, media search and
// category catalog ports against the MediaWiki action API.
package wikimedia

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// Default endpoints.
const (
	DefaultCommonsURL = "https://commons.wikimedia.org"
	DefaultUploadURL  = "https://upload.wikimedia.org/wikipedia/commons"
)

// maxBody caps response sizes read from the API.
const maxBody = 4 << 20

// Client talks to a language wiki and to Commons. It is safe for
// concurrent use; all requests share one rate limiter.
type Client struct {
	http       *http.Client
	wikiURL    string
	commonsURL string
	uploadURL  string
	userAgent  string
	category   string
	qualifier  string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithEndpoints overrides the wiki, Commons and upload base URLs.
func WithEndpoints(wiki, commons, upload string) Option {
	return func(cl *Client) {
		if wiki != "" {
			cl.wikiURL = strings.TrimSuffix(wiki, "/")
		}
		if commons != "" {
			cl.commonsURL = strings.TrimSuffix(commons, "/")
		}
		if upload != "" {
			cl.uploadURL = strings.TrimSuffix(upload, "/")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a client from configuration.
func NewClient(cfg config.WikimediaConfig, opts ...Option) *Client {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	c := &Client{
		http:       &http.Client{Timeout: timeout},
		wikiURL:    fmt.Sprintf("https://%s.wikipedia.org", lang),
		commonsURL: DefaultCommonsURL,
		uploadURL:  DefaultUploadURL,
		userAgent:  cfg.UserAgent,
		category:   cfg.CatalogCategory,
		qualifier:  cfg.SearchQualifier,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("wikimedia")
	return c
}

// get issues a rate-limited GET against base/w/api.php and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, base string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("format", "json")
	params.Set("formatversion", "2")
	endpoint := base + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("requesting %s: %w: %w", params.Get("action"), entities.ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("wikimedia status %d: %w", resp.StatusCode, entities.ErrTransient)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("wikimedia status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w: %w", entities.ErrInvalidResponse, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("wikimedia error %s: %s: %w", envelope.Error.Code, envelope.Error.Info, entities.ErrInvalidResponse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w: %w", entities.ErrInvalidResponse, err)
	}
	return nil
}

// FileURL returns the direct upload URL of a Commons file, following the
// md5-sharded layout of the upload server.
func (c *Client) FileURL(title string) string {
	name := strings.TrimPrefix(title, "File:")
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	sum := md5.Sum([]byte(name))
	h := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s/%s/%s/%s", c.uploadURL, h[:1], h[:2], url.PathEscape(name))
}
